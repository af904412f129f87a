package importer

import "strings"

// NameToID converts a generation label such as "Generation II" into the
// snake_case identifier used in roster file names. Runs of spaces, hyphens
// and underscores collapse to one underscore; other punctuation is dropped.
//
// Postcondition: result contains only [a-z0-9_], has no leading, trailing or
// doubled underscore, and NameToID(NameToID(s)) == NameToID(s).
func NameToID(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '\t':
			pending = true
		}
	}
	return b.String()
}

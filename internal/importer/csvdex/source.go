// Package csvdex reads combatant records from a header-led CSV export, the
// format most public creature datasets are distributed in.
package csvdex

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/cory-johannsen/tourney/internal/game/battle"
)

// ErrMissingColumn is returned when a required column is absent from the
// header row.
var ErrMissingColumn = errors.New("missing required column")

// columnAliases maps each combatant field to the header names accepted for it.
// Header matching is case-insensitive.
var columnAliases = map[string][]string{
	"name":          {"name"},
	"attack":        {"attack"},
	"health_points": {"health_points", "hp"},
	"abilities":     {"abilities"},
	"type":          {"type", "type1"},
	"generation":    {"generation"},
}

// Source loads combatants from a CSV file.
type Source struct{}

// NewSource returns a CSV Source.
func NewSource() *Source { return &Source{} }

// Load reads the CSV file at path.
//
// Precondition: the first row is a header naming every required column.
// Postcondition: returns one Combatant per data row in file order, or an
// error naming the offending line.
func (s *Source) Load(path string) ([]battle.Combatant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads combatants from r.
func Parse(r io.Reader) ([]battle.Combatant, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var out []battle.Combatant
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		line, _ := cr.FieldPos(0)
		c, err := toCombatant(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cols := make(map[string]int, len(columnAliases))
	var missing []string
	for field, aliases := range columnAliases {
		found := false
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				cols[field] = i
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func toCombatant(rec []string, cols map[string]int) (battle.Combatant, error) {
	attack, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["attack"]]), 64)
	if err != nil {
		return battle.Combatant{}, fmt.Errorf("attack: %w", err)
	}
	hp, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["health_points"]]), 64)
	if err != nil {
		return battle.Combatant{}, fmt.Errorf("health_points: %w", err)
	}
	return battle.Combatant{
		Name:         strings.TrimSpace(rec[cols["name"]]),
		Attack:       attack,
		HealthPoints: hp,
		Abilities:    ParseAbilities(rec[cols["abilities"]]),
		Type:         strings.TrimSpace(rec[cols["type"]]),
		Generation:   strings.TrimSpace(rec[cols["generation"]]),
	}, nil
}

// ParseAbilities splits an ability cell. Both the list literal form
// "['Overgrow', 'Chlorophyll']" and a plain "Overgrow;Chlorophyll" or
// "Overgrow, Chlorophyll" list are accepted. In the list literal form each
// quoted token is one ability, so a quoted name may contain commas. Blank
// entries are dropped.
func ParseAbilities(cell string) []string {
	s := strings.TrimSpace(cell)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
		if quoted, ok := quotedTokens(s); ok {
			return quoted
		}
	}
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		a := strings.Trim(strings.TrimSpace(part), `'"`)
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// quotedTokens returns the contents of every '...' or "..." token in s. It
// reports false when s holds no quotes or a quote is left unterminated.
func quotedTokens(s string) ([]string, bool) {
	var out []string
	found := false
	for {
		start := strings.IndexAny(s, `'"`)
		if start < 0 {
			return out, found
		}
		end := strings.IndexByte(s[start+1:], s[start])
		if end < 0 {
			return nil, false
		}
		found = true
		if a := strings.TrimSpace(s[start+1 : start+1+end]); a != "" {
			out = append(out, a)
		}
		s = s[start+1+end+1:]
	}
}

package importer

import "github.com/cory-johannsen/tourney/internal/game/battle"

// Source loads combatant records from a format-specific file.
//
// Precondition: path must exist and hold data in the source's format.
// Postcondition: returns the records in source order, or a non-nil error.
// Records are not yet validated; the Importer validates before writing.
type Source interface {
	Load(path string) ([]battle.Combatant, error)
}

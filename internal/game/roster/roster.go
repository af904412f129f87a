// Package roster loads tournament participants from YAML.
package roster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tourney/internal/game/battle"
)

// ErrDuplicateName is returned when two roster entries share a name.
var ErrDuplicateName = errors.New("duplicate combatant name")

// File is the YAML shape of one roster file.
type File struct {
	Combatants []battle.Combatant `yaml:"combatants"`
}

// Validate checks every combatant and rejects duplicate names.
//
// Postcondition: Returns nil iff every combatant passes battle.Combatant.Validate
// and all names are distinct.
func Validate(combatants []battle.Combatant) error {
	seen := make(map[string]bool, len(combatants))
	for i, c := range combatants {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("roster entry %d: %w", i, err)
		}
		if seen[c.Name] {
			return fmt.Errorf("roster entry %d: %w %q", i, ErrDuplicateName, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// LoadBytes parses a roster from raw YAML bytes.
//
// Postcondition: Returns a validated roster in file order, or an error.
func LoadBytes(data []byte) ([]battle.Combatant, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing roster YAML: %w", err)
	}
	if err := Validate(f.Combatants); err != nil {
		return nil, err
	}
	return f.Combatants, nil
}

// Load reads path, which is either a single YAML file or a directory whose
// *.yaml files are concatenated in lexicographic order.
//
// Precondition: path must be readable.
// Postcondition: Returns a validated roster or an error; on error, the partial
// result is discarded.
func Load(path string) ([]battle.Combatant, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster %q: %w", path, err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		out, err := LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		return out, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster dir %q: %w", path, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var all []battle.Combatant
	for _, name := range names {
		file := filepath.Join(path, name)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", file, err)
		}
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("loading %q: parsing roster YAML: %w", file, err)
		}
		all = append(all, f.Combatants...)
	}
	if err := Validate(all); err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return all, nil
}

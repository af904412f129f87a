// Package importer converts external combatant data into roster YAML files.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tourney/internal/game/battle"
	"github.com/cory-johannsen/tourney/internal/game/roster"
)

// Importer orchestrates content import from a Source to a roster directory.
type Importer struct {
	source Source
	logger *zap.Logger
}

// New constructs an Importer backed by the given Source.
//
// Precondition: source and logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, logger *zap.Logger) *Importer {
	return &Importer{source: source, logger: logger}
}

// Run loads combatants from sourcePath, validates the whole roster, and
// writes one YAML file per generation to outputDir, named gen_<id>.yaml.
// Generations are written in order of first appearance and each file keeps
// source order.
//
// Precondition: outputDir must exist or be creatable.
// Postcondition: the files written to outputDir load back through
// roster.Load as exactly the imported roster, or an error is returned.
func (imp *Importer) Run(sourcePath, outputDir string) ([]string, error) {
	overall := time.Now()

	combatants, err := imp.source.Load(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}
	if err := roster.Validate(combatants); err != nil {
		return nil, fmt.Errorf("validating source: %w", err)
	}
	imp.logger.Info("source loaded", zap.String("path", sourcePath), zap.Int("combatants", len(combatants)))

	var order []string
	groups := make(map[string][]battle.Combatant)
	for _, c := range combatants {
		if _, ok := groups[c.Generation]; !ok {
			order = append(order, c.Generation)
		}
		groups[c.Generation] = append(groups[c.Generation], c)
	}

	fileIDs := make(map[string]string, len(order))
	owners := make(map[string]string, len(order))
	for _, gen := range order {
		id := NameToID(gen)
		if id == "" {
			id = "unknown"
		}
		if prev, ok := owners[id]; ok {
			return nil, fmt.Errorf("generations %q and %q both map to gen_%s.yaml", prev, gen, id)
		}
		owners[id] = gen
		fileIDs[gen] = id
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	written := make([]string, 0, len(order))
	for _, gen := range order {
		data, err := yaml.Marshal(roster.File{Combatants: groups[gen]})
		if err != nil {
			return nil, fmt.Errorf("serialising generation %q: %w", gen, err)
		}

		// Validate output is loadable before writing.
		if _, err := roster.LoadBytes(data); err != nil {
			return nil, fmt.Errorf("generation %q failed validation: %w", gen, err)
		}

		outPath := filepath.Join(outputDir, "gen_"+fileIDs[gen]+".yaml")
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return nil, fmt.Errorf("writing generation %q to %s: %w", gen, outPath, err)
		}
		imp.logger.Info("roster file written",
			zap.String("path", outPath),
			zap.Int("combatants", len(groups[gen])),
		)
		written = append(written, outPath)
	}

	imp.logger.Info("import complete", zap.Duration("elapsed", time.Since(overall)))
	return written, nil
}

// Command import-content converts an external combatant dataset into roster
// YAML files, one per generation.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tourney/internal/config"
	"github.com/cory-johannsen/tourney/internal/importer"
	"github.com/cory-johannsen/tourney/internal/importer/csvdex"
	"github.com/cory-johannsen/tourney/internal/observability"
)

func main() {
	format := flag.String("format", "csv", "source format: csv")
	source := flag.String("source", "", "path to source data file")
	outputDir := flag.String("output", "", "path to output roster directory")
	flag.Parse()

	if *source == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "usage: import-content [-format csv] -source <file> -output <dir>")
		os.Exit(1)
	}

	logger, err := observability.NewLogger(config.LoggingConfig{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	var src importer.Source
	switch *format {
	case "csv":
		src = csvdex.NewSource()
	default:
		logger.Fatal("unknown format", zap.String("format", *format), zap.Strings("supported", []string{"csv"}))
	}

	if _, err := importer.New(src, logger).Run(*source, *outputDir); err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
}

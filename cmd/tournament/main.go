// Package main provides the tournament binary: it loads a roster, plays a
// single-elimination bracket through the Monte-Carlo battle engine, persists
// the report and logs the tournament summary.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tourney/internal/config"
	"github.com/cory-johannsen/tourney/internal/game/battle"
	"github.com/cory-johannsen/tourney/internal/game/dice"
	"github.com/cory-johannsen/tourney/internal/game/roster"
	"github.com/cory-johannsen/tourney/internal/observability"
	"github.com/cory-johannsen/tourney/internal/report"
	"github.com/cory-johannsen/tourney/internal/scripting"
	"github.com/cory-johannsen/tourney/internal/storage/postgres"
	"github.com/cory-johannsen/tourney/internal/summary"
	"github.com/cory-johannsen/tourney/internal/tournament"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	rosterPath := flag.String("roster", "", "roster YAML file or directory; overrides roster.path")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *rosterPath != "" {
		cfg.Roster.Path = *rosterPath
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = dice.RandomSeed(dice.NewCryptoSource())
	}
	tournamentID := uuid.New()

	logger, err := observability.NewLogger(cfg.Logging, observability.RunFields(tournamentID.String(), seed)...)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	participants, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		logger.Fatal("loading roster", zap.Error(err))
	}
	logger.Info("roster loaded", zap.String("path", cfg.Roster.Path), zap.Int("count", len(participants)))

	if cfg.Roster.FilterScript != "" {
		filter, err := scripting.LoadFilterFile(cfg.Roster.FilterScript, cfg.Roster.InstructionLimit, logger)
		if err != nil {
			logger.Fatal("loading roster filter", zap.Error(err))
		}
		participants, err = filter.Apply(participants)
		filter.Close()
		if err != nil {
			logger.Fatal("applying roster filter", zap.Error(err))
		}
	}

	var persister report.Persister
	switch cfg.Report.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("database health check", zap.Error(err))
		}
		persister = pool.Reports(tournamentID)
	default:
		store := report.NewFileStore(cfg.Report.Dir)
		logger.Info("writing report file", zap.String("path", store.Path()))
		persister = store
	}

	roller := dice.NewLoggedRoller(dice.NewSeededSource(seed), logger)
	sim := battle.NewSimulator(roller, cfg.Simulation.Trials, cfg.Simulation.MaxRounds, logger)
	rep := report.New()
	runner := tournament.NewRunner(sim, rep, persister, seed, logger)

	champion, err := runner.Run(ctx, participants)
	if err != nil {
		logger.Fatal("running tournament", zap.Error(err))
	}

	stats, err := summary.New(participants, rep).Snapshot()
	if err != nil {
		logger.Warn("no summary available", zap.String("champion", champion), zap.Error(err))
		return
	}
	logger.Info("tournament complete",
		zap.String("champion", stats.Champion),
		zap.String("strongest_type", stats.StrongestType),
		zap.String("strongest_generation", stats.StrongestGeneration),
		zap.String("most_common_ability", stats.MostCommonAbility),
		zap.String("most_endurant", stats.MostEndurant),
		zap.Int("max_rounds", stats.MaxRounds),
		zap.Int("participants", stats.NumParticipants),
		zap.Int("stages", rep.NumStages()),
		zap.Any("participants_per_type", stats.ParticipantsPerType),
		zap.Any("participants_per_generation", stats.ParticipantsPerGeneration),
		zap.Any("in_top_fifty_per_type", stats.InTopFiftyPerType),
		zap.Any("in_top_fifty_per_generation", stats.InTopFiftyPerGeneration),
		zap.Strings("top_fifty", stats.TopFifty),
		zap.Duration("elapsed", time.Since(start)),
	)
}

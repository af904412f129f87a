// Package tournament runs a single-elimination bracket through the battle
// engine and records each stage in a report.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tourney/internal/game/battle"
	"github.com/cory-johannsen/tourney/internal/game/roster"
	"github.com/cory-johannsen/tourney/internal/report"
)

// ErrNoParticipants is returned when the roster is empty.
var ErrNoParticipants = errors.New("tournament needs at least one participant")

// Runner plays a bracket stage by stage.
//
// Matchups are simulated strictly one at a time in bracket order so that the
// shared random stream yields reproducible results.
type Runner struct {
	sim       *battle.Simulator
	rep       *report.Report
	persister report.Persister
	seed      int64
	logger    *zap.Logger
}

// NewRunner creates a Runner. persister may be nil, in which case the report
// is only kept in memory.
//
// Precondition: sim, rep and logger must be non-nil.
func NewRunner(sim *battle.Simulator, rep *report.Report, persister report.Persister, seed int64, logger *zap.Logger) *Runner {
	return &Runner{sim: sim, rep: rep, persister: persister, seed: seed, logger: logger}
}

// Run validates the roster and plays it to a single champion. Stage s pairs
// the surviving combatants in order (0 vs 1, 2 vs 3, ...); an odd combatant
// left over advances without a battle. Every matchup is seeded with the
// runner's seed. After each stage the report is recorded and persisted.
//
// Postcondition: on success returns the champion's name and the report holds
// one entry per simulated matchup. A roster of one is its own champion and no
// stage is recorded.
func (r *Runner) Run(ctx context.Context, participants []battle.Combatant) (string, error) {
	if len(participants) == 0 {
		return "", ErrNoParticipants
	}
	if err := roster.Validate(participants); err != nil {
		return "", err
	}

	alive := participants
	for stage := 1; len(alive) > 1; stage++ {
		start := time.Now()
		outcomes := make([]battle.Outcome, 0, len(alive)/2)
		next := make([]battle.Combatant, 0, (len(alive)+1)/2)

		for i := 0; i+1 < len(alive); i += 2 {
			if err := ctx.Err(); err != nil {
				return "", fmt.Errorf("stage %d interrupted: %w", stage, err)
			}
			out := r.sim.SimulateMatchup(alive[i], alive[i+1], r.seed)
			outcomes = append(outcomes, out)
			next = append(next, out.Winner)
		}
		if len(alive)%2 == 1 {
			bye := alive[len(alive)-1]
			r.logger.Debug("bye", zap.Int("stage", stage), zap.String("name", bye.Name))
			next = append(next, bye)
		}

		if err := r.rep.Record(stage, outcomes); err != nil {
			return "", fmt.Errorf("recording stage %d: %w", stage, err)
		}
		if r.persister != nil {
			if err := r.persister.Save(ctx, r.rep); err != nil {
				return "", fmt.Errorf("persisting stage %d: %w", stage, err)
			}
		}

		r.logger.Info("stage complete",
			zap.Int("stage", stage),
			zap.Int("battles", len(outcomes)),
			zap.Int("advancing", len(next)),
			zap.Duration("elapsed", time.Since(start)),
		)
		alive = next
	}

	return alive[0].Name, nil
}

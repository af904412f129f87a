package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/tourney/internal/game/dice"
)

// DefaultTrials is the number of encounters simulated per matchup.
const DefaultTrials = 1000

// TrialStats is the per-name tally accumulated over one matchup.
type TrialStats struct {
	// Wins maps each combatant name to the number of trials it won.
	Wins map[string]int
}

// Simulator resolves matchups by majority vote over repeated encounters.
//
// A Simulator owns its Roller; matchups must run one at a time.
type Simulator struct {
	roller    *dice.Roller
	trials    int
	maxRounds int
	logger    *zap.Logger
}

// NewSimulator creates a Simulator drawing from roller.
//
// Precondition: roller and logger must be non-nil. trials <= 0 selects
// DefaultTrials; maxRounds <= 0 selects DefaultMaxRounds.
func NewSimulator(roller *dice.Roller, trials, maxRounds int, logger *zap.Logger) *Simulator {
	if trials <= 0 {
		trials = DefaultTrials
	}
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Simulator{roller: roller, trials: trials, maxRounds: maxRounds, logger: logger}
}

// Trials returns the number of encounters run per matchup.
func (s *Simulator) Trials() int { return s.trials }

// SimulateMatchup resolves a matchup between p1 and p2 with the stream seeded
// once from seed.
//
// Precondition: p1 and p2 pass Validate.
// Postcondition: same seed and same combatants always yield the same Outcome.
func (s *Simulator) SimulateMatchup(p1, p2 Combatant, seed int64) Outcome {
	out, _ := s.SimulateMatchupStats(p1, p2, seed)
	return out
}

// SimulateMatchupStats is SimulateMatchup that also returns the win tally.
//
// If p1 and p2 share a name the matchup is not simulated: p1 wins, p2 is
// defeated, Rounds is empty and no random values are drawn. Otherwise the
// winner is the name with strictly more wins (p1 on a tie) and Rounds is the
// shortest round log among the winner's victories.
//
// Postcondition: for distinct names, the Wins values sum to Trials().
func (s *Simulator) SimulateMatchupStats(p1, p2 Combatant, seed int64) (Outcome, TrialStats) {
	if p1.Name == p2.Name {
		return Outcome{Winner: p1, Defeated: p2, Rounds: []Round{}}, TrialStats{Wins: map[string]int{p1.Name: 0}}
	}

	s.roller.Seed(seed)
	weights := Weights(p1, p2)

	wins := map[string]int{p1.Name: 0, p2.Name: 0}
	shortest := make(map[string][]Round, 2)
	for i := 0; i < s.trials; i++ {
		enc := RunEncounter(p1, p2, weights, s.roller, s.maxRounds)
		name := enc.Winner.Name
		wins[name]++
		if best, ok := shortest[name]; !ok || len(enc.Rounds) < len(best) {
			shortest[name] = enc.Rounds
		}
	}

	winner, defeated := p1, p2
	if wins[p2.Name] > wins[p1.Name] {
		winner, defeated = p2, p1
	}

	s.logger.Debug("matchup resolved",
		zap.String("winner", winner.Name),
		zap.String("defeated", defeated.Name),
		zap.Int("winner_wins", wins[winner.Name]),
		zap.Int("trials", s.trials),
		zap.Int("rounds", len(shortest[winner.Name])),
		zap.Int64("seed", seed),
	)

	return Outcome{Winner: winner, Defeated: defeated, Rounds: shortest[winner.Name]}, TrialStats{Wins: wins}
}

package tournament_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tourney/internal/game/battle"
	"github.com/cory-johannsen/tourney/internal/game/dice"
	"github.com/cory-johannsen/tourney/internal/game/roster"
	"github.com/cory-johannsen/tourney/internal/report"
	"github.com/cory-johannsen/tourney/internal/summary"
	"github.com/cory-johannsen/tourney/internal/tournament"
)

func makeRoster(n int) []battle.Combatant {
	out := make([]battle.Combatant, n)
	for i := range out {
		out[i] = battle.Combatant{
			Name:         fmt.Sprintf("c%02d", i),
			Attack:       float64(20 + (i*7)%31),
			HealthPoints: float64(50 + (i*11)%37),
			Abilities:    []string{"Strike", "Guard", "Feint"}[:1+i%3],
			Type:         []string{"fire", "water", "grass", "rock"}[i%4],
			Generation:   fmt.Sprintf("%d", 1+i%3),
		}
	}
	return out
}

func newSimulator(trials int) *battle.Simulator {
	return battle.NewSimulator(dice.NewLoggedRoller(dice.NewSeededSource(0), zap.NewNop()), trials, battle.DefaultMaxRounds, zap.NewNop())
}

// memPersister records every saved snapshot.
type memPersister struct {
	saves []int
	err   error
}

func (m *memPersister) Save(_ context.Context, r *report.Report) error {
	if m.err != nil {
		return m.err
	}
	m.saves = append(m.saves, r.NumStages())
	return nil
}

func (m *memPersister) Load(_ context.Context) (*report.Report, error) {
	return report.New(), nil
}

func TestRun_BracketShape(t *testing.T) {
	rep := report.New()
	p := &memPersister{}
	runner := tournament.NewRunner(newSimulator(20), rep, p, 42, zaptest.NewLogger(t))

	champ, err := runner.Run(context.Background(), makeRoster(5))
	require.NoError(t, err)

	// 5 -> 3 (one bye) -> 2 (one bye) -> 1
	assert.Equal(t, 3, rep.NumStages())
	assert.Len(t, rep.OutcomesAt(1), 2)
	assert.Len(t, rep.OutcomesAt(2), 1)
	assert.Len(t, rep.OutcomesAt(3), 1)
	assert.Equal(t, []int{1, 2, 3}, p.saves)

	got, err := summary.New(makeRoster(5), rep).Champion()
	require.NoError(t, err)
	assert.Equal(t, champ, got)
}

func TestRun_Reproducible(t *testing.T) {
	play := func() []report.Entry {
		rep := report.New()
		_, err := tournament.NewRunner(newSimulator(30), rep, nil, 7, zap.NewNop()).Run(context.Background(), makeRoster(8))
		require.NoError(t, err)
		return rep.Entries()
	}
	assert.Equal(t, play(), play())
}

func TestRun_WinnersAdvance(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 24).Draw(rt, "n")
		rep := report.New()
		champ, err := tournament.NewRunner(newSimulator(5), rep, nil, rapid.Int64Range(0, 99).Draw(rt, "seed"), zap.NewNop()).
			Run(context.Background(), makeRoster(n))
		require.NoError(rt, err)

		assert.Len(rt, rep.AllOutcomes(), n-1, "single elimination plays n-1 battles")
		final := rep.OutcomesAt(rep.NumStages())
		require.Len(rt, final, 1)
		assert.Equal(rt, champ, final[0].Winner)

		for stage := 2; stage <= rep.NumStages(); stage++ {
			defeatedEarlier := map[string]bool{}
			for s := 1; s < stage; s++ {
				for _, p := range rep.OutcomesAt(s) {
					defeatedEarlier[p.Defeated] = true
				}
			}
			for _, p := range rep.OutcomesAt(stage) {
				assert.False(rt, defeatedEarlier[p.Winner], "eliminated %q fought again", p.Winner)
				assert.False(rt, defeatedEarlier[p.Defeated], "eliminated %q fought again", p.Defeated)
			}
		}
	})
}

func TestRun_SingleParticipant(t *testing.T) {
	rep := report.New()
	champ, err := tournament.NewRunner(newSimulator(5), rep, nil, 1, zap.NewNop()).Run(context.Background(), makeRoster(1))
	require.NoError(t, err)
	assert.Equal(t, "c00", champ)
	assert.Equal(t, 0, rep.NumStages())
}

func TestRun_RejectsInvalidRoster(t *testing.T) {
	runner := tournament.NewRunner(newSimulator(5), report.New(), nil, 1, zap.NewNop())

	_, err := runner.Run(context.Background(), nil)
	assert.ErrorIs(t, err, tournament.ErrNoParticipants)

	bad := makeRoster(2)
	bad[1].Abilities = nil
	_, err = runner.Run(context.Background(), bad)
	assert.ErrorIs(t, err, battle.ErrInvalidCombatant)

	dup := makeRoster(2)
	dup[1].Name = dup[0].Name
	_, err = runner.Run(context.Background(), dup)
	assert.ErrorIs(t, err, roster.ErrDuplicateName)
}

func TestRun_PersistError(t *testing.T) {
	boom := errors.New("disk full")
	_, err := tournament.NewRunner(newSimulator(5), report.New(), &memPersister{err: boom}, 1, zap.NewNop()).
		Run(context.Background(), makeRoster(4))
	assert.ErrorIs(t, err, boom)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tournament.NewRunner(newSimulator(5), report.New(), nil, 1, zap.NewNop()).Run(ctx, makeRoster(4))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_FileStoreIntegration(t *testing.T) {
	dir := t.TempDir()
	store := report.NewFileStore(dir)
	rep := report.New()
	champ, err := tournament.NewRunner(newSimulator(10), rep, store, 42, zap.NewNop()).Run(context.Background(), makeRoster(6))
	require.NoError(t, err)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rep.Entries(), loaded.Entries())
	got, err := summary.New(makeRoster(6), loaded).Champion()
	require.NoError(t, err)
	assert.Equal(t, champ, got)
}

package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tourney/internal/game/battle"
	"github.com/cory-johannsen/tourney/internal/report"
)

func combatant(name string) battle.Combatant {
	return battle.Combatant{Name: name, Attack: 10, HealthPoints: 50, Abilities: []string{"Bite"}, Type: "dark", Generation: "2"}
}

func outcome(winner, defeated string, rounds ...battle.Round) battle.Outcome {
	return battle.Outcome{Winner: combatant(winner), Defeated: combatant(defeated), Rounds: rounds}
}

func TestRecord_StageSemantics(t *testing.T) {
	r := report.New()
	require.NoError(t, r.Record(1, []battle.Outcome{outcome("a", "b"), outcome("c", "d")}))
	require.NoError(t, r.Record(2, []battle.Outcome{outcome("a", "c")}))
	assert.Equal(t, 2, r.NumStages())
	assert.Len(t, r.AllOutcomes(), 3)

	entries := r.Entries()
	assert.Equal(t, 1, entries[0].Stage)
	assert.Equal(t, 1, entries[0].Battle)
	assert.Equal(t, 2, entries[1].Battle)
	assert.Equal(t, 2, entries[2].Stage)
	assert.Equal(t, 1, entries[2].Battle)

	require.NoError(t, r.Record(1, []battle.Outcome{outcome("x", "y")}))
	assert.Equal(t, 1, r.NumStages())
	assert.Equal(t, []report.Pairing{{Winner: "x", Defeated: "y"}}, r.OutcomesAt(1))
	assert.Empty(t, r.OutcomesAt(2))
}

func TestRecord_RejectsInvalidStage(t *testing.T) {
	r := report.New()
	err := r.Record(0, nil)
	assert.True(t, errors.Is(err, report.ErrInvalidStage))
	assert.Equal(t, 0, r.NumStages())
}

func TestRecord_LaterStageDoesNotAlterPrior(t *testing.T) {
	r := report.New()
	require.NoError(t, r.Record(1, []battle.Outcome{outcome("a", "b"), outcome("c", "d")}))
	before := r.FullOutcomesAt(1)
	require.NoError(t, r.Record(2, []battle.Outcome{outcome("a", "c")}))
	assert.Equal(t, before, r.FullOutcomesAt(1))
	stage2 := r.FullOutcomesAt(2)
	require.Len(t, stage2, 1)
	assert.Equal(t, "a", stage2[0].Winner.Name)
	assert.Equal(t, "c", stage2[0].Defeated.Name)
	assert.NotNil(t, stage2[0].Rounds)
}

func TestWinnerOf(t *testing.T) {
	r := report.New()
	require.NoError(t, r.Record(1, []battle.Outcome{outcome("a", "b"), outcome("d", "c")}))

	w, err := r.WinnerOf("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a", w)
	w, err = r.WinnerOf("b", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", w)
	w, err = r.WinnerOf("c", "d")
	require.NoError(t, err)
	assert.Equal(t, "d", w)

	_, err = r.WinnerOf("a", "a")
	assert.ErrorIs(t, err, report.ErrSelfPairing)
	assert.ErrorIs(t, err, report.ErrNotFound)

	_, err = r.WinnerOf("a", "c")
	assert.ErrorIs(t, err, report.ErrPairingNotFound)
	assert.ErrorIs(t, err, report.ErrNotFound)
	assert.NotEqual(t, report.ErrSelfPairing.Error(), report.ErrPairingNotFound.Error())
}

func TestWinnerOf_SymmetricProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 16).Draw(rt, "n")
		r := report.New()
		var outs []battle.Outcome
		for i := 0; i+1 < n; i += 2 {
			outs = append(outs, outcome(fmt.Sprintf("c%d", i), fmt.Sprintf("c%d", i+1)))
		}
		require.NoError(rt, r.Record(1, outs))

		for _, o := range outs {
			w1, err1 := r.WinnerOf(o.Winner.Name, o.Defeated.Name)
			w2, err2 := r.WinnerOf(o.Defeated.Name, o.Winner.Name)
			require.NoError(rt, err1)
			require.NoError(rt, err2)
			assert.Equal(rt, w1, w2)
			assert.Equal(rt, o.Winner.Name, w1)
		}
	})
}

func TestJSON_DocumentShape(t *testing.T) {
	r := report.New()
	require.NoError(t, r.Record(1, []battle.Outcome{
		outcome("a", "b", battle.Round{Attacker: "a", Defendant: "b", Damage: 12.5, Ability: "Bite"}),
		outcome("c", "c"),
	}))

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var doc map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc["tournament"], 2)
	first := doc["tournament"][0]
	assert.EqualValues(t, 1, first["stage"])
	assert.EqualValues(t, 1, first["battle"])
	summary := first["summary"].(map[string]any)
	assert.Equal(t, "a", summary["winner"].(map[string]any)["name"])
	assert.Equal(t, "b", summary["defeated"].(map[string]any)["name"])
	rounds := summary["rounds"].([]any)
	require.Len(t, rounds, 1)
	round := rounds[0].(map[string]any)
	for _, k := range []string{"attacker", "defendant", "damage", "ability"} {
		assert.Contains(t, round, k)
	}
	second := doc["tournament"][1]["summary"].(map[string]any)
	assert.Equal(t, []any{}, second["rounds"], "empty round logs serialize as []")
}

func TestJSON_RoundTripIsByteStable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r := report.New()
		stages := rapid.IntRange(1, 3).Draw(rt, "stages")
		for s := 1; s <= stages; s++ {
			var outs []battle.Outcome
			battles := rapid.IntRange(0, 3).Draw(rt, fmt.Sprintf("battles%d", s))
			for i := 0; i < battles; i++ {
				dmg := rapid.Float64Range(0, 100).Draw(rt, fmt.Sprintf("dmg%d_%d", s, i))
				outs = append(outs, outcome("w", "d", battle.Round{Attacker: "w", Defendant: "d", Damage: dmg, Ability: "Bite"}))
			}
			require.NoError(rt, r.Record(s, outs))
		}

		first, err := json.Marshal(r)
		require.NoError(rt, err)
		loaded := report.New()
		require.NoError(rt, json.Unmarshal(first, loaded))
		second, err := json.Marshal(loaded)
		require.NoError(rt, err)
		assert.Equal(rt, string(first), string(second))
		assert.Equal(rt, len(r.Entries()), len(loaded.Entries()))
	})
}

func TestUnmarshal_RestoresNumStages(t *testing.T) {
	r := report.New()
	require.NoError(t, json.Unmarshal([]byte(`{"tournament":[{"stage":1,"battle":1,"summary":{"winner":{"name":"a"},"defeated":{"name":"b"},"rounds":[]}},{"stage":2,"battle":1,"summary":{"winner":{"name":"a"},"defeated":{"name":"c"},"rounds":[]}}]}`), r))
	assert.Equal(t, 2, r.NumStages())
	assert.Equal(t, []report.Pairing{{Winner: "a", Defeated: "c"}}, r.OutcomesAt(2))
}

func TestUnmarshal_RejectsGarbage(t *testing.T) {
	r := report.New()
	assert.Error(t, json.Unmarshal([]byte(`{"tournament": 3}`), r))
}

func TestReport_ConcurrentReadersSeeWholeStages(t *testing.T) {
	r := report.New()
	stage := []battle.Outcome{outcome("a", "b"), outcome("c", "d"), outcome("e", "f")}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = r.Record(1, stage)
		}
	}()
	for i := 0; i < 200; i++ {
		n := len(r.AllOutcomes())
		assert.True(t, n == 0 || n == len(stage), "partial stage observed: %d", n)
	}
	wg.Wait()
}

func TestFileStore_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	store := report.NewFileStore(dir)
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NumStages())

	r := report.New()
	require.NoError(t, r.Record(1, []battle.Outcome{outcome("a", "b", battle.Round{Attacker: "a", Defendant: "b", Damage: 3.25, Ability: "Bite"})}))
	require.NoError(t, store.Save(ctx, r))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1, "the report document is the only artifact")
	assert.Equal(t, report.FileName, files[0].Name())
	assert.Equal(t, filepath.Join(dir, report.FileName), store.Path())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.Entries(), loaded.Entries())
	assert.Equal(t, 1, loaded.NumStages())
}

func TestFileStore_SaveHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := report.NewFileStore(t.TempDir()).Save(ctx, report.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromEntries(t *testing.T) {
	src := report.New()
	require.NoError(t, src.Record(1, []battle.Outcome{outcome("a", "b"), outcome("c", "d")}))
	require.NoError(t, src.Record(2, []battle.Outcome{outcome("a", "c")}))

	rebuilt := report.FromEntries(src.Entries())
	assert.Equal(t, src.Entries(), rebuilt.Entries())
	assert.Equal(t, 2, rebuilt.NumStages())
	assert.Equal(t, 0, report.FromEntries(nil).NumStages())
}

func TestReport_ReadersCannotRewriteHistory(t *testing.T) {
	r := report.New()
	rounds := []battle.Round{{Attacker: "a", Defendant: "b", Damage: 3, Ability: "Bite"}}
	require.NoError(t, r.Record(1, []battle.Outcome{outcome("a", "b", rounds...)}))

	r.AllOutcomes()[0].Rounds[0].Ability = "Crunch"
	r.FullOutcomesAt(1)[0].Rounds[0].Damage = 99
	r.Entries()[0].Summary.Winner.Abilities[0] = "Crunch"

	got := r.Entries()[0].Summary
	assert.Equal(t, "Bite", got.Rounds[0].Ability)
	assert.Equal(t, 3.0, got.Rounds[0].Damage)
	assert.Equal(t, []string{"Bite"}, got.Winner.Abilities)
}

func TestReport_CallerBufferReuseDoesNotLeak(t *testing.T) {
	r := report.New()
	buf := []battle.Outcome{outcome("a", "b", battle.Round{Attacker: "a", Defendant: "b", Damage: 1, Ability: "Bite"})}
	require.NoError(t, r.Record(1, buf))

	buf[0].Rounds[0].Ability = "Tackle"
	buf[0].Defeated.Abilities[0] = "Tackle"

	got := r.FullOutcomesAt(1)[0]
	assert.Equal(t, "Bite", got.Rounds[0].Ability)
	assert.Equal(t, []string{"Bite"}, got.Defeated.Abilities)
}

func TestNumStages_IsMostRecentlyRecordedStage(t *testing.T) {
	r := report.New()
	require.NoError(t, r.Record(1, []battle.Outcome{outcome("a", "b")}))
	require.NoError(t, r.Record(3, []battle.Outcome{outcome("a", "c")}))
	require.NoError(t, r.Record(2, []battle.Outcome{outcome("a", "d")}))
	assert.Equal(t, 2, r.NumStages())
	assert.Len(t, r.AllOutcomes(), 3)
}

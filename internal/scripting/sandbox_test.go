package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"
)

func TestEffectiveLimit(t *testing.T) {
	assert.Equal(t, DefaultInstructionLimit, effectiveLimit(0))
	assert.Equal(t, DefaultInstructionLimit, effectiveLimit(-3))
	assert.Equal(t, 42, effectiveLimit(42))
}

func TestSandbox_RosterScriptsCannotReachHost(t *testing.T) {
	L := NewSandboxedState(0)
	defer L.Close()

	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "%s must not be reachable", name)
	}
}

func TestSandbox_FilterHelpersAvailable(t *testing.T) {
	L := NewSandboxedState(0)
	defer L.Close()

	err := L.DoString(`
		assert(string.lower("GRASS") == "grass")
		assert(math.floor(2.7) == 2)
		local t = {"b", "a"}
		table.sort(t)
		assert(t[1] == "a")
	`)
	assert.NoError(t, err)
}

func TestResetBudget_RestoresExhaustedState(t *testing.T) {
	L := NewSandboxedState(20)
	defer L.Close()

	require.Error(t, L.DoString(`while true do end`))

	cancel := resetBudget(L, 20)
	defer cancel()
	assert.NoError(t, L.DoString(`local x = 1`))
}

func TestProperty_AnyPositiveLimitStopsRunawayScript(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 500).Draw(t, "limit")
		L := NewSandboxedState(limit)
		defer L.Close()
		if err := L.DoString(`local n = 0 while true do n = n + 1 end`); err == nil {
			t.Fatalf("runaway script finished with limit=%d", limit)
		}
	})
}

package scripting

import (
	"errors"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tourney/internal/game/battle"
)

// FilterFunc is the Lua global a filter script must define:
//
//	function include(c) return c.type ~= "ghost" end
const FilterFunc = "include"

// ErrNoFilterFunc is returned when a filter script does not define include.
var ErrNoFilterFunc = errors.New("filter script does not define function " + FilterFunc)

// Filter selects roster entries with a sandboxed Lua predicate.
//
// A Filter is single-threaded; calls must not overlap.
type Filter struct {
	L         *lua.LState
	instLimit int
	logger    *zap.Logger
}

// LoadFilterFile compiles the filter script at path.
//
// Precondition: path must be a readable Lua file defining include(c).
// Postcondition: Returns a ready Filter or an error; the caller must Close it.
func LoadFilterFile(path string, instLimit int, logger *zap.Logger) (*Filter, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading filter %q: %w", path, err)
	}
	f, err := LoadFilterString(string(src), instLimit, logger)
	if err != nil {
		return nil, fmt.Errorf("scripting: loading filter %q: %w", path, err)
	}
	return f, nil
}

// LoadFilterString compiles a filter script from source.
//
// Postcondition: Returns a ready Filter or an error; the caller must Close it.
func LoadFilterString(src string, instLimit int, logger *zap.Logger) (*Filter, error) {
	L := NewSandboxedState(instLimit)
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, err
	}
	if fn, ok := L.GetGlobal(FilterFunc).(*lua.LFunction); !ok || fn == nil {
		L.Close()
		return nil, ErrNoFilterFunc
	}
	return &Filter{L: L, instLimit: instLimit, logger: logger}, nil
}

// Close releases the Lua state.
func (f *Filter) Close() {
	f.L.Close()
}

// Include calls include(c) with a fresh instruction budget and reports whether
// the result is truthy.
//
// Postcondition: Lua runtime errors, including an exhausted budget, are
// returned rather than treated as exclusion.
func (f *Filter) Include(c battle.Combatant) (bool, error) {
	cancel := resetBudget(f.L, f.instLimit)
	defer cancel()

	if err := f.L.CallByParam(lua.P{
		Fn:      f.L.GetGlobal(FilterFunc),
		NRet:    1,
		Protect: true,
	}, combatantTable(f.L, c)); err != nil {
		return false, fmt.Errorf("scripting: %s(%q): %w", FilterFunc, c.Name, err)
	}
	ret := f.L.Get(-1)
	f.L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// Apply returns the combatants for which Include is true, in input order.
func (f *Filter) Apply(combatants []battle.Combatant) ([]battle.Combatant, error) {
	kept := make([]battle.Combatant, 0, len(combatants))
	for _, c := range combatants {
		ok, err := f.Include(c)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, c)
			continue
		}
		f.logger.Debug("combatant excluded by filter", zap.String("name", c.Name))
	}
	f.logger.Info("roster filtered",
		zap.Int("before", len(combatants)),
		zap.Int("after", len(kept)),
	)
	return kept, nil
}

// combatantTable converts c into a Lua table with the record's field names.
func combatantTable(L *lua.LState, c battle.Combatant) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("attack", lua.LNumber(c.Attack))
	t.RawSetString("health_points", lua.LNumber(c.HealthPoints))
	t.RawSetString("type", lua.LString(c.Type))
	t.RawSetString("generation", lua.LString(c.Generation))
	abilities := L.NewTable()
	for _, a := range c.Abilities {
		abilities.Append(lua.LString(a))
	}
	t.RawSetString("abilities", abilities)
	return t
}

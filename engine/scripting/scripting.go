// Package scripting runs the combat math in Lua. A script directory may
// define any of the hooks below; a hook that is missing or fails falls
// back to the Go combat table.
//
//	calc_hit_result(ctx)      -> "none" | "miss" | "resist" | ...
//	calc_reflect(ctx)         -> "none" | "reflect"
//	calc_crit_chance(ctx)     -> percent
//	calc_resist_pushback(ctx) -> boolean
//	calc_mechanic_resist(ctx) -> percent
//
// Scripts draw random numbers through roll(n) and chance(pct) so every
// draw stays on the engine RNG.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/nathoo/spellcore/engine/spell"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// APIVersion is exposed to scripts as API_VERSION.
const APIVersion = 1

// Engine wraps a single gopher-lua VM. Single-goroutine access only.
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	rnd      spell.Rand
	fallback spell.Combat
}

var _ spell.Combat = (*Engine)(nil)

var missByName = func() map[string]types.SpellMissInfo {
	m := make(map[string]types.SpellMissInfo, len(types.MissNames))
	for k, v := range types.MissNames {
		m[v] = k
	}
	return m
}()

// NewEngine creates a VM and loads every .lua file of dir in name order.
// fallback answers every hook the scripts leave out and must not be nil.
func NewEngine(dir string, rnd spell.Rand, fallback spell.Combat, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(vm)
	lua.OpenTable(vm)
	lua.OpenString(vm)
	lua.OpenMath(vm)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage"} {
		vm.SetGlobal(name, lua.LNil)
	}
	if m, ok := vm.GetGlobal("math").(*lua.LTable); ok {
		m.RawSetString("random", lua.LNil)
		m.RawSetString("randomseed", lua.LNil)
	}
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{vm: vm, log: log, rnd: rnd, fallback: fallback}
	vm.SetGlobal("roll", vm.NewFunction(e.luaRoll))
	vm.SetGlobal("chance", vm.NewFunction(e.luaChance))

	if err := e.loadDir(dir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load combat scripts: %w", err)
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".lua") {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no .lua files found in %s", dir)
	}
	sort.Strings(files)
	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Has reports whether a script defined the named hook.
func (e *Engine) Has(hook string) bool {
	_, ok := e.vm.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// roll(n) returns 1..n.
func (e *Engine) luaRoll(L *lua.LState) int {
	n := L.CheckInt(1)
	if n <= 0 {
		L.ArgError(1, "roll needs a positive size")
		return 0
	}
	L.Push(lua.LNumber(e.rnd.Intn(n) + 1))
	return 1
}

// chance(pct) succeeds with pct percent.
func (e *Engine) luaChance(L *lua.LState) int {
	pct := float64(L.CheckNumber(1))
	L.Push(lua.LBool(pct > 0 && e.rnd.Float64()*100 < pct))
	return 1
}

// call runs hook with one context table and returns its single result,
// or nil when the hook is missing or failed.
func (e *Engine) call(hook string, ctx *lua.LTable) lua.LValue {
	fn, ok := e.vm.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, ctx); err != nil {
		e.log.Error("lua hook error", zap.String("hook", hook), zap.Error(err))
		return nil
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret
}

func (e *Engine) unitTable(u *world.Unit) *lua.LTable {
	t := e.vm.NewTable()
	if u == nil {
		return t
	}
	t.RawSetString("guid", lua.LNumber(u.GUID))
	t.RawSetString("name", lua.LString(u.Name))
	t.RawSetString("level", lua.LNumber(u.Level))
	t.RawSetString("team", lua.LNumber(u.Team))
	t.RawSetString("player", lua.LBool(u.IsPlayer()))
	t.RawSetString("health", lua.LNumber(u.Health))
	t.RawSetString("max_health", lua.LNumber(u.MaxHealth))
	t.RawSetString("resist_pushback", lua.LNumber(u.ResistPushback))
	t.RawSetString("combo_points", lua.LNumber(u.ComboPoints))
	t.RawSetString("x", lua.LNumber(u.Pos.X))
	t.RawSetString("y", lua.LNumber(u.Pos.Y))
	t.RawSetString("o", lua.LNumber(u.Pos.O))

	auras := e.vm.NewTable()
	for _, a := range u.Auras {
		at := e.vm.NewTable()
		at.RawSetString("spell", lua.LNumber(a.SpellID))
		at.RawSetString("type", lua.LNumber(a.Type))
		at.RawSetString("amount", lua.LNumber(a.Amount))
		at.RawSetString("charges", lua.LNumber(a.Charges))
		at.RawSetString("mechanic", lua.LNumber(a.Mechanic))
		auras.Append(at)
	}
	t.RawSetString("auras", auras)
	return t
}

func (e *Engine) spellTable(s *types.SpellDef) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(s.ID))
	t.RawSetString("name", lua.LString(s.Name))
	t.RawSetString("school", lua.LNumber(s.School))
	t.RawSetString("dmg_class", lua.LNumber(s.DmgClass))
	t.RawSetString("level", lua.LNumber(s.Level))
	t.RawSetString("positive", lua.LBool(state.IsPositiveSpell(s)))
	return t
}

func (e *Engine) context(caster, target *world.Unit, s *types.SpellDef) *lua.LTable {
	ctx := e.vm.NewTable()
	ctx.RawSetString("caster", e.unitTable(caster))
	if target != nil {
		ctx.RawSetString("target", e.unitTable(target))
	}
	if s != nil {
		ctx.RawSetString("spell", e.spellTable(s))
	}
	return ctx
}

func (e *Engine) missResult(hook string, v lua.LValue) (types.SpellMissInfo, bool) {
	str, ok := v.(lua.LString)
	if !ok {
		if v != nil {
			e.log.Error("lua hook returned non-string", zap.String("hook", hook))
		}
		return types.MissNone, false
	}
	m, ok := missByName[string(str)]
	if !ok {
		e.log.Error("lua hook returned unknown miss", zap.String("hook", hook), zap.String("miss", string(str)))
	}
	return m, ok
}

// HitResult runs calc_hit_result. A spell that cannot miss never reaches
// the script.
func (e *Engine) HitResult(caster, target *world.Unit, s *types.SpellDef, canMiss bool) types.SpellMissInfo {
	if caster == nil || target == nil || !canMiss {
		return e.fallback.HitResult(caster, target, s, canMiss)
	}
	ctx := e.context(caster, target, s)
	ctx.RawSetString("self", lua.LBool(caster == target))
	if m, ok := e.missResult("calc_hit_result", e.call("calc_hit_result", ctx)); ok {
		return m
	}
	return e.fallback.HitResult(caster, target, s, canMiss)
}

// ReflectResult runs calc_reflect.
func (e *Engine) ReflectResult(caster, target *world.Unit, s *types.SpellDef) types.SpellMissInfo {
	if m, ok := e.missResult("calc_reflect", e.call("calc_reflect", e.context(caster, target, s))); ok {
		return m
	}
	return e.fallback.ReflectResult(caster, target, s)
}

// CritChance runs calc_crit_chance.
func (e *Engine) CritChance(caster *world.Unit, s *types.SpellDef) float64 {
	if n, ok := e.call("calc_crit_chance", e.context(caster, nil, s)).(lua.LNumber); ok {
		return float64(n)
	}
	return e.fallback.CritChance(caster, s)
}

// ResistPushback runs calc_resist_pushback.
func (e *Engine) ResistPushback(caster *world.Unit) bool {
	if b, ok := e.call("calc_resist_pushback", e.context(caster, nil, nil)).(lua.LBool); ok {
		return bool(b)
	}
	return e.fallback.ResistPushback(caster)
}

// MechanicResistChance runs calc_mechanic_resist with the mechanic as
// ctx.mechanic.
func (e *Engine) MechanicResistChance(target *world.Unit, m types.Mechanic) int {
	ctx := e.context(nil, target, nil)
	ctx.RawSetString("mechanic", lua.LNumber(m))
	if n, ok := e.call("calc_mechanic_resist", ctx).(lua.LNumber); ok {
		return int(n)
	}
	return e.fallback.MechanicResistChance(target, m)
}

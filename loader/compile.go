// Package loader loads the Lua world DSL into Go structs at startup.
// The Lua VM is discarded after loading; nothing runs Lua per cast.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/types"
)

// rawSpell holds a spell table before compilation.
type rawSpell struct {
	id    uint32
	table *lua.LTable
}

// rawNamed holds a unit, game object or item table before compilation.
type rawNamed struct {
	name  string
	table *lua.LTable
}

// rawLink is one LinkedSpell call.
type rawLink struct {
	source uint32
	cast   int32
	line   string
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

func getUint32(tbl *lua.LTable, key string) uint32 {
	return uint32(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings reads a list of names. A bare string counts as a list of one.
func getStrings(tbl *lua.LTable, key string) []string {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.MaxN(); i++ {
			if s, ok := v.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	}
	return nil
}

// getPos reads a { x, y, z, o } table, as built by Pos().
func getPos(tbl *lua.LTable, key string) types.Position {
	p := getTable(tbl, key)
	if p == nil {
		return types.Position{}
	}
	return types.Position{
		X: getNumber(p, "x"),
		Y: getNumber(p, "y"),
		Z: getNumber(p, "z"),
		O: getNumber(p, "o"),
	}
}

// eachRow calls fn for every table in the array part of tbl[key].
func eachRow(tbl *lua.LTable, key string, fn func(row *lua.LTable)) {
	list := getTable(tbl, key)
	if list == nil {
		return
	}
	for i := 1; i <= list.MaxN(); i++ {
		if row, ok := list.RawGetInt(i).(*lua.LTable); ok {
			fn(row)
		}
	}
}

// fieldErrs keeps the first error of a run of field decodes.
type fieldErrs struct {
	err error
}

func (f *fieldErrs) add(err error) {
	if f.err == nil && err != nil {
		f.err = err
	}
}

type flagBits interface {
	~uint8 | ~uint32 | ~uint64
}

// enumInto maps a name field through a name table. A missing field leaves
// dst alone.
func enumInto[T any](fe *fieldErrs, dst *T, tbl *lua.LTable, key string, names map[string]T) {
	name := getString(tbl, key)
	if name == "" {
		return
	}
	v, ok := names[name]
	if !ok {
		fe.add(fmt.Errorf("unknown %s %q", key, name))
		return
	}
	*dst = v
}

// flagsInto ORs every named flag of a list field into dst.
func flagsInto[T flagBits](fe *fieldErrs, dst *T, tbl *lua.LTable, key string, names map[string]T) {
	for _, name := range getStrings(tbl, key) {
		v, ok := names[name]
		if !ok {
			fe.add(fmt.Errorf("unknown %s %q", key, name))
			continue
		}
		*dst |= v
	}
}

// powerMap reads { mana = 100, rage = 0 } keyed by power name.
func powerMap(fe *fieldErrs, tbl *lua.LTable, key string) map[types.PowerType]int {
	src := getTable(tbl, key)
	if src == nil {
		return nil
	}
	m := map[types.PowerType]int{}
	src.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok {
			return
		}
		p, ok := types.PowerNames[string(name)]
		if !ok {
			fe.add(fmt.Errorf("unknown power %q", string(name)))
			return
		}
		if n, ok := v.(lua.LNumber); ok {
			m[p] = int(n)
		}
	})
	return m
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	if coll.world == nil {
		return nil, fmt.Errorf("no World{} definition found")
	}
	defs := state.NewDefs()
	defs.World = compileWorld(coll.world)
	state.ApplyWorldDefaults(&defs.World)

	for _, raw := range coll.spells {
		if _, dup := defs.Spells[raw.id]; dup {
			return nil, fmt.Errorf("spell %d defined twice", raw.id)
		}
		s, err := compileSpell(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling spell %d: %w", raw.id, err)
		}
		defs.Spells[s.ID] = s
	}

	for _, l := range coll.links {
		s := defs.Spells[l.source]
		if s == nil {
			return nil, fmt.Errorf("%s LinkedSpell source %d is not defined", l.line, l.source)
		}
		s.LinkedOnHit = append(s.LinkedOnHit, l.cast)
	}

	for _, raw := range coll.units {
		u, err := compileUnit(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling unit %s: %w", raw.name, err)
		}
		defs.Units = append(defs.Units, u)
	}

	for _, raw := range coll.gameObjects {
		g, err := compileGameObject(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling game object %s: %w", raw.name, err)
		}
		defs.GameObjects = append(defs.GameObjects, g)
	}

	for _, raw := range coll.items {
		it, err := compileItem(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling item %s: %w", raw.name, err)
		}
		defs.Items = append(defs.Items, it)
	}

	for _, tbl := range coll.scripts {
		var fe fieldErrs
		st := types.ScriptTarget{
			Spell: getUint32(tbl, "spell"),
			Type:  types.ScriptTargetCreature,
			Entry: getUint32(tbl, "entry"),
		}
		enumInto(&fe, &st.Type, tbl, "type", types.ScriptTargetTypeNames)
		if fe.err != nil {
			return nil, fmt.Errorf("compiling script target for spell %d: %w", st.Spell, fe.err)
		}
		defs.ScriptTargets = append(defs.ScriptTargets, st)
	}

	for _, tbl := range coll.teleports {
		tp := types.TeleportPosition{
			Spell: getUint32(tbl, "spell"),
			MapID: getUint32(tbl, "map_id"),
			Pos:   getPos(tbl, "pos"),
		}
		if _, dup := defs.TeleportPositions[tp.Spell]; dup {
			return nil, fmt.Errorf("teleport position for spell %d defined twice", tp.Spell)
		}
		defs.TeleportPositions[tp.Spell] = tp
	}

	return defs, nil
}

func compileWorld(tbl *lua.LTable) types.WorldDef {
	w := types.WorldDef{
		Title:           getString(tbl, "title"),
		Version:         getString(tbl, "version"),
		Author:          getString(tbl, "author"),
		Intro:           getString(tbl, "intro"),
		Seed:            int64(getNumber(tbl, "seed")),
		MapID:           getUint32(tbl, "map_id"),
		TickMS:          getInt(tbl, "tick_ms"),
		FakeDelayMS:     getInt(tbl, "fake_delay_ms"),
		MaxVisibility:   getNumber(tbl, "max_visibility"),
		ChainJumpRadius: getNumber(tbl, "chain_jump_radius"),
		MinGCD:          getInt(tbl, "min_gcd"),
		MaxGCD:          getInt(tbl, "max_gcd"),
		Player:          getString(tbl, "player"),
		Ground:          getNumber(tbl, "ground"),
	}
	eachRow(tbl, "walls", func(row *lua.LTable) {
		w.Walls = append(w.Walls, types.WallDef{A: getPos(row, "a"), B: getPos(row, "b")})
	})
	eachRow(tbl, "water", func(row *lua.LTable) {
		w.Water = append(w.Water, types.WaterDef{
			MinX:  getNumber(row, "min_x"),
			MinY:  getNumber(row, "min_y"),
			MaxX:  getNumber(row, "max_x"),
			MaxY:  getNumber(row, "max_y"),
			Level: getNumber(row, "level"),
		})
	})
	return w
}

func compileSpell(raw rawSpell) (*types.SpellDef, error) {
	tbl := raw.table
	var fe fieldErrs
	s := &types.SpellDef{
		ID:                     raw.id,
		Name:                   getString(tbl, "name"),
		LegacyAttributes:       getUint32(tbl, "legacy_attributes"),
		CastTimeMS:             getInt(tbl, "cast_time_ms"),
		DurationMS:             getInt(tbl, "duration_ms"),
		Speed:                  getNumber(tbl, "speed"),
		PowerCost:              getInt(tbl, "power_cost"),
		PowerCostPct:           getInt(tbl, "power_cost_pct"),
		RequiresSpellFocus:     getUint32(tbl, "requires_spell_focus"),
		Level:                  getInt(tbl, "level"),
		MaxAffectedTargets:     getInt(tbl, "max_affected_targets"),
		Category:               getUint32(tbl, "category"),
		RecoveryTimeMS:         getInt(tbl, "recovery_ms"),
		CategoryRecoveryTimeMS: getInt(tbl, "category_recovery_ms"),
		StartRecoveryTimeMS:    getInt(tbl, "start_recovery_ms"),
		StartRecoveryCategory:  getUint32(tbl, "start_recovery_category"),
		CasterAuraState:        getUint32(tbl, "caster_aura_state"),
		CasterAuraStateNot:     getUint32(tbl, "caster_aura_state_not"),
		TargetAuraState:        getUint32(tbl, "target_aura_state"),
		TargetAuraStateNot:     getUint32(tbl, "target_aura_state_not"),
		Stances:                getUint32(tbl, "stances"),
		StancesNot:             getUint32(tbl, "stances_not"),
		TargetCreatureType:     getUint32(tbl, "target_creature_type"),
		AreaID:                 getUint32(tbl, "area_id"),
		Family:                 getUint32(tbl, "family"),
		FamilyFlags:            uint64(getNumber(tbl, "family_flags")),
	}
	enumInto(&fe, &s.School, tbl, "school", types.SchoolNames)
	enumInto(&fe, &s.DmgClass, tbl, "dmg_class", types.DamageClassNames)
	enumInto(&fe, &s.PowerType, tbl, "power_type", types.PowerNames)
	enumInto(&fe, &s.PreventionType, tbl, "prevention", types.PreventionNames)
	flagsInto(&fe, &s.Flags, tbl, "flags", types.AttrNames)
	flagsInto(&fe, &s.InterruptFlags, tbl, "interrupt", types.InterruptNames)
	flagsInto(&fe, &s.ChannelInterruptFlags, tbl, "channel_interrupt", types.ChannelInterruptNames)
	flagsInto(&fe, &s.RequiredTargetFlags, tbl, "required_target_flags", types.TargetFlagNames)
	flagsInto(&fe, &s.Disabled, tbl, "disabled", types.DisableNames)

	if r := getTable(tbl, "range"); r != nil {
		s.Range.Min = getNumber(r, "min")
		s.Range.Max = getNumber(r, "max")
		enumInto(&fe, &s.Range.Type, r, "type", types.RangeTypeNames)
	}

	eachRow(tbl, "reagents", func(row *lua.LTable) {
		count := getInt(row, "count")
		if count <= 0 {
			count = 1
		}
		s.Reagents = append(s.Reagents, types.Reagent{Item: getUint32(row, "item"), Count: count})
	})

	eachRow(tbl, "triggers", func(row *lua.LTable) {
		s.TriggerChance = append(s.TriggerChance, types.ChanceTrigger{
			Spell:  getUint32(row, "spell"),
			Chance: getNumber(row, "chance"),
		})
	})

	n := 0
	eachRow(tbl, "effects", func(row *lua.LTable) {
		if n >= types.MaxEffectIndex {
			fe.add(fmt.Errorf("more than %d effects", types.MaxEffectIndex))
			return
		}
		s.Effects[n] = compileEffect(&fe, row)
		n++
	})

	if fe.err != nil {
		return nil, fe.err
	}
	return s, nil
}

func compileEffect(fe *fieldErrs, tbl *lua.LTable) types.EffectDef {
	e := types.EffectDef{
		Radius:       getNumber(tbl, "radius"),
		ChainTargets: getInt(tbl, "chain_targets"),
		BasePoints:   getInt(tbl, "base_points"),
		DieSides:     getInt(tbl, "die_sides"),
		MiscValue:    getInt(tbl, "misc_value"),
		TriggerSpell: getUint32(tbl, "trigger_spell"),
		AmplitudeMS:  getInt(tbl, "amplitude_ms"),
	}
	if getString(tbl, "type") == "" {
		fe.add(fmt.Errorf("effect without a type"))
	}
	enumInto(fe, &e.Type, tbl, "type", types.EffectNames)
	enumInto(fe, &e.TargetA, tbl, "target_a", types.TargetNames)
	enumInto(fe, &e.TargetB, tbl, "target_b", types.TargetNames)
	enumInto(fe, &e.Aura, tbl, "aura", types.AuraNames)
	enumInto(fe, &e.Mechanic, tbl, "mechanic", types.MechanicNames)

	switch p := getString(tbl, "polarity"); p {
	case "":
	case "positive":
		e.Polarity = 1
	case "negative":
		e.Polarity = -1
	default:
		fe.add(fmt.Errorf("unknown polarity %q", p))
	}
	return e
}

func compileUnit(raw rawNamed) (types.UnitDef, error) {
	tbl := raw.table
	var fe fieldErrs
	u := types.UnitDef{
		Name:           raw.name,
		Entry:          getUint32(tbl, "entry"),
		Kind:           types.KindCreature,
		Class:          getInt(tbl, "class"),
		Race:           getInt(tbl, "race"),
		Team:           getInt(tbl, "team"),
		Level:          getInt(tbl, "level"),
		Health:         getInt(tbl, "health"),
		MaxHealth:      getInt(tbl, "max_health"),
		Pos:            getPos(tbl, "pos"),
		MapID:          getUint32(tbl, "map_id"),
		AreaID:         getUint32(tbl, "area_id"),
		Group:          getInt(tbl, "group"),
		SubGroup:       getInt(tbl, "sub_group"),
		Owner:          getString(tbl, "owner"),
		Pet:            getString(tbl, "pet"),
		Charm:          getString(tbl, "charm"),
		Form:           getUint32(tbl, "form"),
		AuraState:      getUint32(tbl, "aura_state"),
		CreatureType:   getUint32(tbl, "creature_type"),
		Home:           getPos(tbl, "home"),
		HomeMapID:      getUint32(tbl, "home_map_id"),
		BoundingRadius: getNumber(tbl, "bounding_radius"),
		CombatReach:    getNumber(tbl, "combat_reach"),
		CastSpeed:      getNumber(tbl, "cast_speed"),
		ResistPushback: getInt(tbl, "resist_pushback"),
		ComboPoints:    getInt(tbl, "combo_points"),
	}
	enumInto(&fe, &u.Kind, tbl, "kind", types.KindNames)
	flagsInto(&fe, &u.Flags, tbl, "flags", types.UnitFlagNames)
	u.Power = powerMap(&fe, tbl, "power")
	u.MaxPower = powerMap(&fe, tbl, "max_power")

	eachRow(tbl, "auras", func(row *lua.LTable) {
		ad := types.AuraDef{
			Spell:      getUint32(row, "spell"),
			EffIndex:   getInt(row, "eff_index"),
			Charges:    getInt(row, "charges"),
			Amount:     getInt(row, "amount"),
			DurationMS: getInt(row, "duration_ms"),
			Caster:     getString(row, "caster"),
		}
		enumInto(&fe, &ad.Type, row, "type", types.AuraNames)
		u.Auras = append(u.Auras, ad)
	})

	if items := getTable(tbl, "items"); items != nil {
		u.Items = map[uint32]int{}
		items.ForEach(func(k, v lua.LValue) {
			entry, ok := k.(lua.LNumber)
			count, ok2 := v.(lua.LNumber)
			if ok && ok2 {
				u.Items[uint32(entry)] += int(count)
			}
		})
	}

	return u, fe.err
}

func compileGameObject(raw rawNamed) (types.GameObjectDef, error) {
	tbl := raw.table
	var fe fieldErrs
	g := types.GameObjectDef{
		Name:    raw.name,
		Entry:   getUint32(tbl, "entry"),
		Pos:     getPos(tbl, "pos"),
		FocusID: getUint32(tbl, "focus_id"),
		Spawned: getBool(tbl, "spawned", true),
		Owner:   getString(tbl, "owner"),
	}
	enumInto(&fe, &g.Type, tbl, "type", types.GameObjectTypeNames)
	return g, fe.err
}

func compileItem(raw rawNamed) (types.ItemDef, error) {
	tbl := raw.table
	var fe fieldErrs
	it := types.ItemDef{
		Name:       raw.name,
		Entry:      getUint32(tbl, "entry"),
		Owner:      getString(tbl, "owner"),
		Charges:    getInt(tbl, "charges"),
		Expendable: getBool(tbl, "expendable", false),
		Spell:      getUint32(tbl, "spell"),
		CooldownMS: getInt(tbl, "cooldown_ms"),
	}
	enumInto(&fe, &it.Class, tbl, "class", types.ItemClassNames)
	return it, fe.err
}

// sortedLuaFiles returns .lua files with world.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var worldFile string
	var others []string
	for _, f := range files {
		if f == "world.lua" {
			worldFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if worldFile != "" {
		return append([]string{worldFile}, others...)
	}
	return others
}

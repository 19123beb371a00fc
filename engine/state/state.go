// Package state holds the immutable definitions loaded from Lua and the
// read-only helpers that classify spells and effects.
package state

import "github.com/nathoo/spellcore/types"

// Defs holds the immutable world definitions loaded from Lua.
type Defs struct {
	World             types.WorldDef
	Spells            map[uint32]*types.SpellDef
	Units             []types.UnitDef
	GameObjects       []types.GameObjectDef
	Items             []types.ItemDef
	ScriptTargets     []types.ScriptTarget
	TeleportPositions map[uint32]types.TeleportPosition
}

// NewDefs returns an empty definition set with world defaults applied.
func NewDefs() *Defs {
	d := &Defs{
		Spells:            map[uint32]*types.SpellDef{},
		TeleportPositions: map[uint32]types.TeleportPosition{},
	}
	ApplyWorldDefaults(&d.World)
	return d
}

// ApplyWorldDefaults fills zero-valued world settings with engine defaults.
func ApplyWorldDefaults(w *types.WorldDef) {
	if w.TickMS <= 0 {
		w.TickMS = 100
	}
	if w.FakeDelayMS <= 0 {
		w.FakeDelayMS = 500
	}
	if w.MaxVisibility <= 0 {
		w.MaxVisibility = 100
	}
	if w.ChainJumpRadius <= 0 {
		w.ChainJumpRadius = 10
	}
	if w.MinGCD <= 0 {
		w.MinGCD = 1000
	}
	if w.MaxGCD <= 0 {
		w.MaxGCD = 1500
	}
}

// Spell returns the definition for id, or nil.
func (d *Defs) Spell(id uint32) *types.SpellDef {
	return d.Spells[id]
}

// SpellByName returns the first spell whose name matches exactly.
func (d *Defs) SpellByName(name string) *types.SpellDef {
	for _, s := range d.Spells {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// ScriptTargetsFor returns the script target records bound to a spell.
func (d *Defs) ScriptTargetsFor(spellID uint32) []types.ScriptTarget {
	var out []types.ScriptTarget
	for _, st := range d.ScriptTargets {
		if st.Spell == spellID {
			out = append(out, st)
		}
	}
	return out
}

// SpellsInCategory returns the IDs of every spell sharing a cooldown category.
func (d *Defs) SpellsInCategory(category uint32) []uint32 {
	if category == 0 {
		return nil
	}
	var out []uint32
	for id, s := range d.Spells {
		if s.Category == category {
			out = append(out, id)
		}
	}
	return out
}

// HasAttr reports whether a spell carries an attribute flag.
func HasAttr(s *types.SpellDef, a types.SpellAttr) bool {
	return s.Flags&a != 0
}

// IsChanneled reports whether the spell is a channel.
func IsChanneled(s *types.SpellDef) bool {
	return HasAttr(s, types.AttrChanneled)
}

// IsAutoRepeat reports whether the spell repeats until cancelled.
func IsAutoRepeat(s *types.SpellDef) bool {
	return HasAttr(s, types.AttrAutorepeat)
}

// IsNextMeleeSwing reports whether the spell fires on the next melee swing.
func IsNextMeleeSwing(s *types.SpellDef) bool {
	return HasAttr(s, types.AttrNextMeleeSwing)
}

// HasEffect reports whether any slot carries the given effect type.
func HasEffect(s *types.SpellDef, t types.EffectType) bool {
	for i := range s.Effects {
		if s.Effects[i].Type == t {
			return true
		}
	}
	return false
}

// IsPositiveEffect classifies one effect slot. An explicit polarity wins,
// then the spell flags, then a table of effect and aura types.
func IsPositiveEffect(s *types.SpellDef, idx int) bool {
	if idx < 0 || idx >= types.MaxEffectIndex {
		return false
	}
	e := s.Effects[idx]
	switch {
	case e.Polarity > 0:
		return true
	case e.Polarity < 0:
		return false
	case HasAttr(s, types.AttrNegative):
		return false
	case HasAttr(s, types.AttrPositive):
		return true
	}

	switch e.Type {
	case types.EffectSchoolDamage, types.EffectInstakill, types.EffectHealthLeech,
		types.EffectPowerDrain, types.EffectWeaponDamage, types.EffectAttackMe,
		types.EffectThreat, types.EffectInterruptCast, types.EffectKnockBack,
		types.EffectEnvironmentalDamage, types.EffectDispel, types.EffectCharge:
		return false
	case types.EffectApplyAura, types.EffectApplyAreaAuraParty, types.EffectPersistentAreaAura:
		switch e.Aura {
		case types.AuraPeriodicDamage, types.AuraPeriodicLeech, types.AuraPeriodicDamagePercent,
			types.AuraModStun, types.AuraModConfuse, types.AuraModFear, types.AuraModRoot,
			types.AuraModSilence, types.AuraModPacify, types.AuraModTaunt:
			return false
		}
	}
	return true
}

// IsPositiveSpell is true when every non-empty effect slot is positive.
func IsPositiveSpell(s *types.SpellDef) bool {
	for i := range s.Effects {
		if s.Effects[i].Type == types.EffectNone {
			continue
		}
		if !IsPositiveEffect(s, i) {
			return false
		}
	}
	return true
}

// IsAreaAuraEffect reports effect types that build their own target list.
func IsAreaAuraEffect(t types.EffectType) bool {
	return t == types.EffectApplyAreaAuraParty || t == types.EffectPersistentAreaAura
}

// Duration returns the channel or aura duration of a spell in ms.
func Duration(s *types.SpellDef) int {
	if s.DurationMS < 0 {
		return 0
	}
	return s.DurationMS
}

// Package effects applies one spell effect to one target. Every handler
// is one atomic mutation plus the notifications it produced; target
// selection and hit rolls happen before a handler is called.
package effects

import (
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// Rand is the slice of the seeded RNG the handlers need.
type Rand interface {
	Intn(n int) int
}

// Context carries one (target, effect) application.
type Context struct {
	CastID   string
	Spell    *types.SpellDef
	EffIndex int

	Caster     *world.Unit
	OrigCaster *world.Unit

	// At most one of Unit, GO and Item is set. Dest is set for effects
	// that land on a point.
	Unit    *world.Unit
	GO      *world.GameObject
	Item    *world.Item
	Dest    types.Position
	HasDest bool
	DestMap uint32

	BasePoints int
	Now        int64
	Rand       Rand

	// Accumulators drained by the caller after every effect of a target
	// has run.
	Damage  *int
	Healing *int
	Leech   *int

	// Trigger queues a spell to be cast when the attempt finishes. Cast
	// fires a triggered spell right away. Interrupt cancels the target's
	// current casts.
	Trigger   func(spellID uint32)
	Cast      func(spellID uint32, target *world.Unit)
	Interrupt func(u *world.Unit)
}

// Effect returns the effect definition being applied.
func (c *Context) Effect() types.EffectDef {
	return c.Spell.Effects[c.EffIndex]
}

// Amount rolls the effect value: base points plus 1..DieSides.
func (c *Context) Amount() int {
	n := c.BasePoints
	if d := c.Effect().DieSides; d > 0 && c.Rand != nil {
		n += 1 + c.Rand.Intn(d)
	}
	return n
}

func (c *Context) event(typ string, data map[string]any) types.Event {
	if data == nil {
		data = map[string]any{}
	}
	data["spell"] = c.Spell.ID
	data["effect"] = c.EffIndex
	if c.Caster != nil {
		data["caster"] = c.Caster.GUID
	}
	if c.CastID != "" {
		data["cast_id"] = c.CastID
	}
	return types.Event{Type: typ, Data: data}
}

// Handler applies one effect and returns the notifications it produced.
type Handler func(*Context) []types.Event

// Registry maps effect types to handlers.
type Registry map[types.EffectType]Handler

// Apply runs the handler for the context's effect. Effect types with no
// handler do nothing.
func (r Registry) Apply(c *Context) []types.Event {
	if c == nil || c.Spell == nil || c.EffIndex < 0 || c.EffIndex >= types.MaxEffectIndex {
		return nil
	}
	h, ok := r[c.Effect().Type]
	if !ok {
		return nil
	}
	return h(c)
}

// Default returns the built-in handler set.
func Default() Registry {
	return Registry{
		types.EffectInstakill:           instakill,
		types.EffectSchoolDamage:        damage,
		types.EffectEnvironmentalDamage: damage,
		types.EffectWeaponDamage:        damage,
		types.EffectHeal:                heal,
		types.EffectHealthLeech:         healthLeech,
		types.EffectPowerDrain:          powerDrain,
		types.EffectEnergize:            energize,
		types.EffectApplyAura:           applyAura,
		types.EffectApplyAreaAuraParty:  applyAura,
		types.EffectPersistentAreaAura:  persistentAreaAura,
		types.EffectTeleportUnits:       teleport,
		types.EffectTriggerSpell:        triggerSpell,
		types.EffectTriggerMissile:      triggerMissile,
		types.EffectAddExtraAttacks:     extraAttacks,
		types.EffectResurrect:           resurrect,
		types.EffectResurrectNew:        resurrect,
		types.EffectSelfResurrect:       resurrect,
		types.EffectInterruptCast:       interruptCast,
		types.EffectAttackMe:            attackMe,
		types.EffectThreat:              attackMe,
		types.EffectCharge:              charge,
		types.EffectKnockBack:           knockBack,
		types.EffectDispel:              dispel,
		types.EffectCreateItem:          createItem,
		types.EffectOpenLock:            openLock,
		types.EffectSendEvent:           sendEvent,
		types.EffectEnchantItem:         enchantItem,
	}
}

func instakill(c *Context) []types.Event {
	if c.Unit == nil || !c.Unit.IsAlive() {
		return nil
	}
	amount := c.Unit.Health
	c.Unit.Health = 0
	return []types.Event{c.event("spell_damage", map[string]any{
		"target": c.Unit.GUID, "amount": amount, "remaining": 0, "kill": true,
	})}
}

func damage(c *Context) []types.Event {
	if c.Unit == nil || c.Damage == nil {
		return nil
	}
	*c.Damage += c.Amount()
	return nil
}

func heal(c *Context) []types.Event {
	if c.Unit == nil || c.Healing == nil {
		return nil
	}
	*c.Healing += c.Amount()
	return nil
}

func healthLeech(c *Context) []types.Event {
	if c.Unit == nil || c.Damage == nil {
		return nil
	}
	amount := c.Amount()
	if amount > c.Unit.Health {
		amount = c.Unit.Health
	}
	*c.Damage += amount
	if c.Leech != nil {
		*c.Leech += amount
	}
	return nil
}

func powerDrain(c *Context) []types.Event {
	if c.Unit == nil || c.Caster == nil {
		return nil
	}
	p := types.PowerType(c.Effect().MiscValue)
	if p < 0 || p >= types.MaxPowers {
		return nil
	}
	drained := -c.Unit.ModifyPower(p, -c.Amount())
	gained := c.Caster.ModifyPower(p, drained)
	return []types.Event{c.event("energize", map[string]any{
		"target": c.Caster.GUID, "from": c.Unit.GUID, "power": int(p), "amount": gained,
	})}
}

func energize(c *Context) []types.Event {
	if c.Unit == nil {
		return nil
	}
	p := types.PowerType(c.Effect().MiscValue)
	gained := c.Unit.ModifyPower(p, c.Amount())
	return []types.Event{c.event("energize", map[string]any{
		"target": c.Unit.GUID, "power": int(p), "amount": gained,
	})}
}

func applyAura(c *Context) []types.Event {
	if c.Unit == nil {
		return nil
	}
	e := c.Effect()
	caster := c.Caster
	if c.OrigCaster != nil {
		caster = c.OrigCaster
	}
	a := &world.Aura{
		SpellID:    c.Spell.ID,
		EffIndex:   c.EffIndex,
		Type:       e.Aura,
		Amount:     c.Amount(),
		DurationMS: state.Duration(c.Spell),
		Positive:   state.IsPositiveEffect(c.Spell, c.EffIndex),
		Mechanic:   e.Mechanic,
	}
	a.RemainingMS = a.DurationMS
	if caster != nil {
		a.CasterGUID = caster.GUID
	}
	switch e.Aura {
	case types.AuraSpellMagnet, types.AuraAddCasterHitTrigger:
		a.Charges = e.MiscValue
		if a.Charges <= 0 {
			a.Charges = 1
		}
	case types.AuraMechanicImmunity, types.AuraSchoolImmunity:
		a.Amount = e.MiscValue
	}
	c.Unit.AddAura(a)
	return []types.Event{c.event("aura_applied", map[string]any{
		"target": c.Unit.GUID, "aura": int(e.Aura), "duration": a.DurationMS,
	})}
}

func persistentAreaAura(c *Context) []types.Event {
	if !c.HasDest {
		return nil
	}
	return []types.Event{c.event("area_aura", map[string]any{
		"x": c.Dest.X, "y": c.Dest.Y, "z": c.Dest.Z,
		"radius": c.Effect().Radius, "duration": state.Duration(c.Spell),
	})}
}

func teleport(c *Context) []types.Event {
	if c.Unit == nil || !c.HasDest {
		return nil
	}
	c.Unit.Pos = c.Dest
	c.Unit.MapID = c.DestMap
	return []types.Event{c.event("teleport", map[string]any{
		"target": c.Unit.GUID, "map": c.DestMap,
		"x": c.Dest.X, "y": c.Dest.Y, "z": c.Dest.Z,
	})}
}

func triggerSpell(c *Context) []types.Event {
	if id := c.Effect().TriggerSpell; id != 0 && c.Trigger != nil {
		c.Trigger(id)
	}
	return nil
}

func triggerMissile(c *Context) []types.Event {
	if id := c.Effect().TriggerSpell; id != 0 && c.Cast != nil {
		c.Cast(id, c.Unit)
	}
	return nil
}

func extraAttacks(c *Context) []types.Event {
	if c.Unit == nil {
		return nil
	}
	c.Unit.ExtraAttacks = c.Amount()
	return nil
}

func resurrect(c *Context) []types.Event {
	target := c.Unit
	if c.Effect().Type == types.EffectSelfResurrect {
		target = c.Caster
	}
	if target == nil || target.IsAlive() {
		return nil
	}
	health := c.Amount()
	if health <= 0 || health > target.MaxHealth {
		health = target.MaxHealth
	}
	target.Health = health
	return []types.Event{c.event("resurrect", map[string]any{
		"target": target.GUID, "health": health,
	})}
}

func interruptCast(c *Context) []types.Event {
	if c.Unit == nil || c.Interrupt == nil {
		return nil
	}
	c.Interrupt(c.Unit)
	return nil
}

func attackMe(c *Context) []types.Event {
	if c.Unit == nil || c.Caster == nil || c.Unit == c.Caster {
		return nil
	}
	c.Unit.Victim = c.Caster.GUID
	c.Unit.Attacking = true
	return nil
}

func charge(c *Context) []types.Event {
	if c.Unit == nil || c.Caster == nil {
		return nil
	}
	angle := world.AngleTo(c.Unit.Pos, c.Caster.Pos) - c.Unit.Pos.O
	p := world.NearPoint(c.Unit.Pos, c.Unit.BoundingRadius+c.Caster.BoundingRadius, angle)
	p.O = world.AngleTo(p, c.Unit.Pos)
	c.Caster.Pos = p
	return nil
}

func knockBack(c *Context) []types.Event {
	if c.Unit == nil || c.Caster == nil || c.Unit == c.Caster {
		return nil
	}
	dist := float64(c.Effect().MiscValue) / 10
	if dist <= 0 {
		return nil
	}
	angle := world.AngleTo(c.Caster.Pos, c.Unit.Pos) - c.Unit.Pos.O
	c.Unit.Pos = world.NearPoint(c.Unit.Pos, dist, angle)
	return nil
}

func dispel(c *Context) []types.Event {
	if c.Unit == nil || c.Caster == nil {
		return nil
	}
	// Hostile targets lose buffs, friendly ones lose debuffs.
	wantPositive := c.Caster.IsHostileTo(c.Unit)
	for _, a := range c.Unit.Auras {
		if a.Positive != wantPositive {
			continue
		}
		c.Unit.RemoveAuraInstance(a)
		return []types.Event{c.event("aura_removed", map[string]any{
			"target": c.Unit.GUID, "aura_spell": a.SpellID, "reason": "dispel",
		})}
	}
	return nil
}

func createItem(c *Context) []types.Event {
	if c.Unit == nil {
		return nil
	}
	entry := uint32(c.Effect().MiscValue)
	if entry == 0 {
		return nil
	}
	count := c.Amount()
	if count <= 0 {
		count = 1
	}
	if c.Unit.Inventory == nil {
		c.Unit.Inventory = map[uint32]int{}
	}
	c.Unit.Inventory[entry] += count
	return []types.Event{c.event("item_created", map[string]any{
		"target": c.Unit.GUID, "item": entry, "count": count,
	})}
}

func openLock(c *Context) []types.Event {
	if c.GO == nil {
		return nil
	}
	c.GO.Used++
	return []types.Event{c.event("gameobject_used", map[string]any{
		"target": c.GO.GUID, "entry": c.GO.Entry,
	})}
}

func sendEvent(c *Context) []types.Event {
	data := map[string]any{"event_id": c.Effect().MiscValue}
	if c.HasDest {
		data["x"], data["y"], data["z"] = c.Dest.X, c.Dest.Y, c.Dest.Z
	}
	return []types.Event{c.event("script_event", data)}
}

func enchantItem(c *Context) []types.Event {
	if c.Item == nil {
		return nil
	}
	return []types.Event{c.event("item_enchanted", map[string]any{
		"item": c.Item.GUID, "enchant": c.Effect().MiscValue,
	})}
}

package spell

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/nathoo/spellcore/engine/rules"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/targets"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// Lifecycle events. Finish is legal from every live state.
const (
	evPrepare = "prepare"
	evChannel = "channel"
	evDelay   = "delay"
	evFinish  = "finish"
)

var (
	stNull      = string(types.StateNull)
	stPreparing = string(types.StatePreparing)
	stCasting   = string(types.StateCasting)
	stDelayed   = string(types.StateDelayed)
	stFinished  = string(types.StateFinished)
)

// UnitTarget is one affected unit. Records are created once per GUID and
// are never removed; Deleted and Processed guard every later pass.
type UnitTarget struct {
	GUID       types.GUID
	EffectMask uint8
	Miss       types.SpellMissInfo
	Reflect    types.SpellMissInfo
	Damage     int
	Delay      int64
	Crit       bool
	Processed  bool
	Deleted    bool
}

// GOTarget is one affected game object. Objects always hit.
type GOTarget struct {
	GUID       types.GUID
	EffectMask uint8
	Delay      int64
	Processed  bool
	Deleted    bool
}

// ItemTarget is one affected item. Items are applied in the immediate
// phase and carry no delay.
type ItemTarget struct {
	GUID       types.GUID
	EffectMask uint8
}

// Attempt is one cast of one spell by one caster.
type Attempt struct {
	ID      ulid.ULID
	Spell   *types.SpellDef
	Targets *targets.Snapshot

	env *Env
	fsm *fsm.FSM

	caster         *world.Unit
	casterGUID     types.GUID
	origCasterGUID types.GUID
	origCaster     *world.Unit
	castItemGUID   types.GUID
	castItem       *world.Item

	slot            types.SlotType
	triggered       bool
	triggeredByAura *world.Aura
	explicit        bool
	forceHit        bool
	executing       bool
	cancelling      bool
	canReflect      bool
	canTrigger      bool
	movementLocked  bool
	castPos         types.Position

	immediateHandled bool
	needLog          bool

	timer      int
	castTime   int
	channelMS  int
	powerCost  int
	basePoints [types.MaxEffectIndex]int

	delayStart  int64
	delayMoment int64

	units     []*UnitTarget
	gos       []*GOTarget
	items     []*ItemTarget
	hits      int
	misses    int
	needAlive uint8

	leech    int
	triggers []uint32
}

// Option configures an attempt before it is prepared.
type Option func(*Attempt)

// Triggered marks a cast started by another spell. Triggered casts skip
// the slot table, reagents and most checks.
func Triggered() Option {
	return func(a *Attempt) { a.triggered = true }
}

// ByAura marks a cast triggered by a periodic aura.
func ByAura(aura *world.Aura) Option {
	return func(a *Attempt) {
		a.triggered = true
		a.triggeredByAura = aura
	}
}

// WithCastItem starts the cast from an item.
func WithCastItem(it *world.Item) Option {
	return func(a *Attempt) {
		if it != nil {
			a.castItemGUID = it.GUID
			a.castItem = it
		}
	}
}

// WithOrigCaster attributes the cast to another unit, such as the owner
// of a totem.
func WithOrigCaster(g types.GUID) Option {
	return func(a *Attempt) {
		if g != 0 {
			a.origCasterGUID = g
		}
	}
}

// ForceHit skips the hit roll: every target is hit unless immune.
func ForceHit() Option {
	return func(a *Attempt) { a.forceHit = true }
}

// Explicit marks a cast requested directly by the caster's controller.
// Only explicit casts are refused while another cast is in progress.
func Explicit() Option {
	return func(a *Attempt) { a.explicit = true }
}

// New builds an attempt in the Null state.
func New(env *Env, caster *world.Unit, s *types.SpellDef, opts ...Option) (*Attempt, error) {
	if s == nil {
		return nil, oops.In("spell").Code("unknown_spell").Errorf("no spell definition")
	}
	if caster == nil {
		return nil, oops.In("spell").Code("no_caster").With("spell_id", s.ID).Errorf("no caster")
	}
	a := &Attempt{
		ID:             ulid.Make(),
		Spell:          s,
		Targets:        &targets.Snapshot{},
		env:            env,
		caster:         caster,
		casterGUID:     caster.GUID,
		origCasterGUID: caster.GUID,
		slot:           slotFor(s),
		needLog:        true,
	}
	for i := range s.Effects {
		a.basePoints[i] = s.Effects[i].BasePoints
	}
	for _, o := range opts {
		o(a)
	}
	// Aura ticks and item uses never start chance triggers.
	a.canTrigger = a.triggeredByAura == nil && a.castItemGUID == 0
	if a.origCasterGUID == caster.GUID {
		a.origCaster = caster
	} else if env.Dir != nil {
		a.origCaster = env.Dir.Unit(a.origCasterGUID)
	}
	a.canReflect = s.DmgClass == types.DamageClassMagic &&
		!state.HasAttr(s, types.AttrAbility) &&
		!state.HasAttr(s, types.AttrCantBeReflected) &&
		!state.HasAttr(s, types.AttrUnaffectedByInvulnerability) &&
		!state.HasAttr(s, types.AttrPassive) &&
		!state.IsPositiveSpell(s)

	a.fsm = fsm.NewFSM(stNull, fsm.Events{
		{Name: evPrepare, Src: []string{stNull}, Dst: stPreparing},
		{Name: evChannel, Src: []string{stPreparing}, Dst: stCasting},
		{Name: evDelay, Src: []string{stPreparing}, Dst: stDelayed},
		{Name: evFinish, Src: []string{stNull, stPreparing, stCasting, stDelayed}, Dst: stFinished},
	}, fsm.Callbacks{})
	return a, nil
}

func slotFor(s *types.SpellDef) types.SlotType {
	switch {
	case state.IsNextMeleeSwing(s):
		return types.SlotMelee
	case state.IsAutoRepeat(s):
		return types.SlotAutorepeat
	case state.IsChanneled(s):
		return types.SlotChanneled
	}
	return types.SlotGeneric
}

// SetBasePoints overrides the rolled base of one effect.
func (a *Attempt) SetBasePoints(idx, v int) {
	if idx >= 0 && idx < types.MaxEffectIndex {
		a.basePoints[idx] = v
	}
}

// State is the lifecycle state.
func (a *Attempt) State() types.SpellState { return types.SpellState(a.fsm.Current()) }

// IsFinished is true once the attempt is finished or being cancelled.
func (a *Attempt) IsFinished() bool {
	return a.cancelling || a.fsm.Current() == stFinished
}

// Deletable is true when nothing can reach the attempt any more.
func (a *Attempt) Deletable() bool {
	return a.fsm.Current() == stFinished && !a.executing &&
		(a.env.Slots == nil || !a.env.Slots.Holds(a))
}

func (a *Attempt) Caster() *world.Unit { return a.caster }
func (a *Attempt) CasterGUID() types.GUID { return a.casterGUID }
func (a *Attempt) Slot() types.SlotType { return a.slot }
func (a *Attempt) Units() []*UnitTarget { return a.units }
func (a *Attempt) GameObjects() []*GOTarget { return a.gos }
func (a *Attempt) Items() []*ItemTarget { return a.items }
func (a *Attempt) Hits() int { return a.hits }
func (a *Attempt) Misses() int { return a.misses }
func (a *Attempt) DelayMoment() int64 { return a.delayMoment }
func (a *Attempt) Timer() int { return a.timer }
func (a *Attempt) PowerCost() int { return a.powerCost }
func (a *Attempt) IsTriggered() bool { return a.triggered }
func (a *Attempt) Executing() bool { return a.executing }
func (a *Attempt) CastTime() int { return a.castTime }
func (a *Attempt) ChannelDuration() int { return a.channelMS }
func (a *Attempt) OrigCasterGUID() types.GUID { return a.origCasterGUID }

// UnitTarget returns the live record for a GUID, or nil.
func (a *Attempt) UnitTarget(g types.GUID) *UnitTarget {
	for _, t := range a.units {
		if !t.Deleted && t.GUID == g {
			return t
		}
	}
	return nil
}

func (a *Attempt) transition(ev string) {
	err := a.fsm.Event(context.Background(), ev)
	if err == nil {
		return
	}
	var nt fsm.NoTransitionError
	if errors.As(err, &nt) {
		return
	}
	a.structural(oops.In("spell").Code("illegal_transition").
		With("event", ev).With("state", a.fsm.Current()).Wrap(err))
}

// structural logs an engine defect. Defects never reach the caster.
func (a *Attempt) structural(err error) {
	a.env.log().Error("spell engine error",
		zap.Uint32("spell_id", a.Spell.ID),
		zap.Uint64("caster", uint64(a.casterGUID)),
		zap.String("cast_id", a.ID.String()),
		zap.Error(err))
}

func (a *Attempt) debug(msg string, fields ...zap.Field) {
	fields = append(fields,
		zap.Uint32("spell_id", a.Spell.ID),
		zap.Uint64("caster", uint64(a.casterGUID)))
	a.env.log().Debug(msg, fields...)
}

func (a *Attempt) has(attr types.SpellAttr) bool { return state.HasAttr(a.Spell, attr) }

func (a *Attempt) isDelayed() bool { return a.delayMoment > 0 }

func (a *Attempt) isAutoShoot() bool { return a.has(types.AttrAutoShoot) }

// resolveUnit maps a GUID to a live unit. The caster resolves to itself
// even when it has left the directory.
func (a *Attempt) resolveUnit(g types.GUID) *world.Unit {
	if g == a.casterGUID {
		return a.caster
	}
	return a.env.Dir.Unit(g)
}

// updatePointers re-derives every held pointer from its GUID. It fails
// only when a player's cast item has vanished.
func (a *Attempt) updatePointers() bool {
	if a.origCasterGUID == a.casterGUID {
		a.origCaster = a.caster
	} else {
		a.origCaster = a.env.Dir.Unit(a.origCasterGUID)
	}
	if a.castItemGUID != 0 && a.caster.IsPlayer() {
		a.castItem = a.env.Dir.Item(a.castItemGUID)
		if a.castItem == nil {
			return false
		}
	}
	a.Targets.Update(a.env.Dir)
	return true
}

// lostUnitTarget reports an explicit unit target that no longer resolves.
func (a *Attempt) lostUnitTarget() bool {
	g := a.Targets.UnitGUID()
	return g != 0 && g != a.casterGUID && a.Targets.Unit() == nil
}

func (a *Attempt) ruleContext(strict bool) *rules.Context {
	c := &rules.Context{
		Spell:           a.Spell,
		Caster:          a.caster,
		Targets:         a.Targets,
		Target:          a.Targets.Unit(),
		GO:              a.Targets.GameObject(),
		Item:            a.Targets.Item(),
		CastItem:        a.castItem,
		HasCastItem:     a.castItemGUID != 0,
		Strict:          strict,
		Triggered:       a.triggered,
		TriggeredByAura: a.triggeredByAura != nil,
		PowerCost:       a.powerCost,
		Now:             a.env.now(),
		World:           ruleWorld{a.env},
		Sight:           a.env.Terrain,
		Defs:            a.env.Defs,
	}
	return c
}

// ownerPlayer is the player controlling u, or u itself when it is one.
func (a *Attempt) ownerPlayer(u *world.Unit) *world.Unit {
	if u == nil {
		return nil
	}
	if u.IsPlayer() {
		return u
	}
	if m := a.env.Dir.Master(u); m != nil && m.IsPlayer() {
		return m
	}
	return nil
}

func (a *Attempt) castTriggered(spellID uint32, target *world.Unit) {
	if a.env.CastTriggered == nil || spellID == 0 {
		return
	}
	a.env.CastTriggered(a.caster, spellID, target, 0)
}

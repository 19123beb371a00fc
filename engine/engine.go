// Package engine wires the spell engine to one world map. It owns the
// map, the scheduler, the slot table, the RNG and the notification
// sinks, and it runs the console commands the CLI and TUI send.
package engine

import (
	"sort"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/nathoo/spellcore/engine/effects"
	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/scheduler"
	"github.com/nathoo/spellcore/engine/spell"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/targets"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// maxTriggerDepth bounds chains of spells triggering spells.
const maxTriggerDepth = 8

// Engine holds the definitions and the live simulation.
type Engine struct {
	Defs    *state.Defs
	Map     *world.Map
	Queue   *scheduler.Queue
	Slots   *spell.SlotTable
	RNG     *RNG
	Session uuid.UUID

	// Player is the unit console commands act as by default.
	Player     types.GUID
	CommandLog []string

	log   *zap.Logger
	rec   *events.Recorder
	sinks []events.Sink
	hits  *HitTable
	env   *spell.Env
	depth int
}

// Option configures an engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithSink adds a notification sink after the built-in recorder.
func WithSink(s events.Sink) Option {
	return func(e *Engine) { e.sinks = append(e.sinks, s) }
}

// New spawns the world described by defs.
func New(defs *state.Defs, opts ...Option) (*Engine, error) {
	if defs == nil {
		return nil, oops.In("engine").Code("no_defs").Errorf("no definitions")
	}
	e := &Engine{
		Defs:    defs,
		Map:     world.NewMap(defs.World.MapID, world.NewTerrain(defs.World)),
		Queue:   scheduler.New(),
		Slots:   spell.NewSlotTable(),
		RNG:     NewRNG(defs.World.Seed),
		Session: uuid.New(),
		log:     zap.NewNop(),
		rec:     &events.Recorder{},
	}
	for _, o := range opts {
		o(e)
	}
	if err := spawn(e.Map, defs); err != nil {
		return nil, oops.In("engine").Code("spawn").Wrapf(err, "spawn world")
	}
	e.hits = NewHitTable(e.RNG)

	sink := events.Multi{e.rec, events.LogSink{Log: e.log}}
	sink = append(sink, e.sinks...)
	e.env = &spell.Env{
		Dir:           e.Map,
		Space:         e.Map,
		Terrain:       e.Map.Terrain,
		Combat:        e.hits,
		Ledger:        e.Map,
		Effects:       effects.Default(),
		Sink:          sink,
		Rand:          e.RNG,
		Defs:          defs,
		Log:           e.log,
		Slots:         e.Slots,
		Now:           e.Map.Now,
		CastTriggered: e.castTriggered,
	}

	if u := e.Map.UnitByName(defs.World.Player); u != nil {
		e.Player = u.GUID
	} else {
		for _, u := range e.Map.Units() {
			if u.IsPlayer() {
				e.Player = u.GUID
				break
			}
		}
	}
	e.log.Info("world spawned",
		zap.String("title", defs.World.Title),
		zap.Int("units", len(e.Map.Units())),
		zap.String("session", e.Session.String()))
	return e, nil
}

// HitTable is the built-in combat table, the fallback for scripted
// combat math.
func (e *Engine) HitTable() *HitTable { return e.hits }

// Combat returns the combat table casts currently roll against.
func (e *Engine) Combat() spell.Combat { return e.env.Combat }

// SetCombat replaces the combat table for every later roll.
func (e *Engine) SetCombat(c spell.Combat) {
	if c == nil {
		c = e.hits
	}
	e.env.Combat = c
}

// Env exposes the collaborator wiring shared by every attempt.
func (e *Engine) Env() *spell.Env { return e.env }

// Drain returns the notifications emitted since the last drain.
func (e *Engine) Drain() []types.Event { return e.rec.Drain() }

// Now is the simulation clock in ms.
func (e *Engine) Now() int64 { return e.Map.Now() }

// PlayerUnit is the default console actor, or nil.
func (e *Engine) PlayerUnit() *world.Unit { return e.Map.Unit(e.Player) }

// Cast starts a cast of spellID by caster. Attempts still running after
// Prepare are handed to the scheduler.
func (e *Engine) Cast(caster *world.Unit, spellID uint32, snap *targets.Snapshot, opts ...spell.Option) (*spell.Attempt, types.CastResult) {
	a, err := spell.New(e.env, caster, e.Defs.Spell(spellID), opts...)
	if err != nil {
		e.log.Error("cast rejected", zap.Uint32("spell_id", spellID), zap.Error(err))
		return nil, types.CastFailedError
	}
	if snap == nil {
		snap = &targets.Snapshot{}
	}
	r := a.Prepare(snap)
	e.track(a)
	return a, r
}

func (e *Engine) track(a *spell.Attempt) {
	if a.IsFinished() {
		e.Slots.Clear(a)
		return
	}
	if err := e.Queue.Schedule(e.Map.Now(), "cast "+a.ID.String(), a.Task()); err != nil {
		e.log.Error("schedule cast", zap.String("cast_id", a.ID.String()), zap.Error(err))
		a.Cancel(types.CastFailedError)
	}
}

func (e *Engine) castTriggered(caster *world.Unit, spellID uint32, target *world.Unit, origCaster types.GUID) {
	if e.depth >= maxTriggerDepth {
		e.log.Warn("trigger chain too deep",
			zap.Uint32("spell_id", spellID),
			zap.Uint64("caster", uint64(caster.GUID)))
		return
	}
	if e.Defs.Spell(spellID) == nil {
		e.log.Debug("unknown triggered spell", zap.Uint32("spell_id", spellID))
		return
	}
	e.depth++
	defer func() { e.depth-- }()

	snap := &targets.Snapshot{}
	if target != nil {
		snap.SetUnit(target)
	}
	e.Cast(caster, spellID, snap, spell.Triggered(), spell.WithOrigCaster(origCaster))
}

// Tick advances the simulation by ms in steps of the world tick. Each
// step expires auras, prunes cooldowns and runs the due tasks.
func (e *Engine) Tick(ms int) {
	step := e.Defs.World.TickMS
	if step <= 0 {
		step = 100
	}
	for ms > 0 {
		d := min(step, ms)
		ms -= d
		e.expire(e.Map.Advance(d))
		now := e.Map.Now()
		for _, u := range e.Map.Units() {
			u.Cooldowns.Prune(now)
		}
		e.Queue.RunUntil(now)
	}
}

func (e *Engine) expire(gone map[types.GUID][]*world.Aura) {
	owners := make([]types.GUID, 0, len(gone))
	for g := range gone {
		owners = append(owners, g)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	for _, g := range owners {
		for _, a := range gone[g] {
			e.env.Sink.Emit(types.Event{Type: events.AuraRemoved, Data: map[string]any{
				"target":     g,
				"aura_spell": a.SpellID,
				"reason":     "expired",
			}})
		}
	}
}

// Cancel interrupts the caster's attempt in slot. It reports whether
// there was one.
func (e *Engine) Cancel(caster *world.Unit, slot types.SlotType) bool {
	a := e.Slots.Get(caster.GUID, slot)
	if a == nil || a.IsFinished() {
		return false
	}
	a.Cancel(types.CastFailedInterrupted)
	return true
}

// CancelAll interrupts every slot of the caster and returns how many
// attempts were stopped.
func (e *Engine) CancelAll(caster *world.Unit) int {
	n := 0
	for s := types.SlotType(0); s < types.MaxSlots; s++ {
		if e.Cancel(caster, s) {
			n++
		}
	}
	return n
}

// Reset cancels every running attempt and drops the pending tasks. The
// notifications the cancels produce are discarded.
func (e *Engine) Reset() {
	for _, u := range e.Map.Units() {
		e.CancelAll(u)
	}
	e.Queue = scheduler.New()
	e.rec.Drain()
}

// RestoreRNG rewinds the RNG to a saved position. The RNG is replaced in
// place so the combat table keeps drawing from it.
func (e *Engine) RestoreRNG(seed, position int64) {
	*e.RNG = *RestoreRNG(seed, position)
}

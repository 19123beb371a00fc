// Package spell drives one cast attempt from prepare to finish: target
// resolution, hit rolls, delayed application, channel upkeep and
// cancellation. Everything outside the attempt is reached through the
// collaborator interfaces in this file.
package spell

import (
	"go.uber.org/zap"

	"github.com/nathoo/spellcore/engine/effects"
	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/rules"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/targets"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// Directory resolves GUIDs and the relations between units.
type Directory interface {
	targets.Resolver
	Pet(u *world.Unit) *world.Unit
	Master(u *world.Unit) *world.Unit
	GroupMembers(group int) []*world.Unit
	NearestCorpse(center types.Position, radius float64) *world.Corpse
}

// Spatial answers range queries. Results come back in a stable order.
type Spatial interface {
	UnitsInRange(center types.Position, radius float64, pred func(*world.Unit) bool) []*world.Unit
	NearestUnit(center types.Position, radius float64, pred func(*world.Unit) bool) *world.Unit
	GameObjectsInRange(center types.Position, radius float64, pred func(*world.GameObject) bool) []*world.GameObject
	NearestGameObject(center types.Position, radius float64, pred func(*world.GameObject) bool) *world.GameObject
}

// Terrain answers height, water and sight queries.
type Terrain interface {
	GroundHeight(x, y float64) float64
	WaterLevel(x, y float64) (float64, bool)
	LineOfSight(a, b types.Position) bool
	ValidPointInAngle(from types.Position, dist, angle, maxHeight float64) types.Position
	FirstCollision(from types.Position, dist, angle float64) types.Position
}

// Combat is the hit table. Implementations may be scripted.
type Combat interface {
	HitResult(caster, target *world.Unit, s *types.SpellDef, canMiss bool) types.SpellMissInfo
	ReflectResult(caster, target *world.Unit, s *types.SpellDef) types.SpellMissInfo
	CritChance(caster *world.Unit, s *types.SpellDef) float64
	ResistPushback(caster *world.Unit) bool
	MechanicResistChance(target *world.Unit, m types.Mechanic) int
}

// Ledger owns the resources a cast consumes.
type Ledger interface {
	Power(u *world.Unit, p types.PowerType) int
	SpendPower(u *world.Unit, p types.PowerType, cost int) int
	HasItemCount(u *world.Unit, entry uint32, count int) bool
	DestroyItemCount(u *world.Unit, entry uint32, count int)
	ConsumeCharge(it *world.Item) bool
	Cooldowns(u *world.Unit) *world.Cooldowns
}

// Rand is the seeded source every roll goes through.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// TriggerFunc starts a triggered cast. origCaster is zero when the caster
// is also the original caster.
type TriggerFunc func(caster *world.Unit, spellID uint32, target *world.Unit, origCaster types.GUID)

// Env wires an attempt to its collaborators. One Env is shared by every
// attempt on a map.
type Env struct {
	Dir     Directory
	Space   Spatial
	Terrain Terrain
	Combat  Combat
	Ledger  Ledger
	Effects effects.Registry
	Sink    events.Sink
	Rand    Rand
	Defs    *state.Defs
	Log     *zap.Logger
	Slots   *SlotTable

	// Now reads the simulation clock in ms.
	Now func() int64

	// CastTriggered is called for linked, chance and queued trigger
	// spells. A nil func drops them.
	CastTriggered TriggerFunc
}

func (e *Env) now() int64 {
	if e.Now == nil {
		return 0
	}
	return e.Now()
}

func (e *Env) log() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func (e *Env) emit(ev types.Event) {
	if e.Sink != nil {
		e.Sink.Emit(ev)
	}
}

// ruleWorld narrows the environment to what the validation checks read.
type ruleWorld struct{ env *Env }

func (w ruleWorld) Pet(u *world.Unit) *world.Unit { return w.env.Dir.Pet(u) }
func (w ruleWorld) Master(u *world.Unit) *world.Unit { return w.env.Dir.Master(u) }

func (w ruleWorld) HasItemCount(u *world.Unit, entry uint32, count int) bool {
	return w.env.Ledger.HasItemCount(u, entry, count)
}

func (w ruleWorld) GameObjectsInRange(center types.Position, radius float64, pred func(*world.GameObject) bool) []*world.GameObject {
	return w.env.Space.GameObjectsInRange(center, radius, pred)
}

func (w ruleWorld) Cooldowns(u *world.Unit) *world.Cooldowns { return w.env.Ledger.Cooldowns(u) }

var _ rules.World = ruleWorld{}

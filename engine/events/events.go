// Package events holds the notification sinks. The engine emits every
// caster-facing notification through a Sink; sinks never feed back into
// the simulation.
package events

import (
	"go.uber.org/zap"

	"github.com/nathoo/spellcore/types"
)

// Notification types emitted by the spell engine.
const (
	CastFailed     = "cast_failed"
	SpellStart     = "spell_start"
	SpellGo        = "spell_go"
	SpellCooldown  = "spell_cooldown"
	ChannelStart   = "channel_start"
	ChannelUpdate  = "channel_update"
	Interrupted    = "interrupted"
	LogExecute     = "log_execute"
	SpellMiss      = "spell_miss"
	SpellDamage    = "spell_damage"
	SpellHeal      = "spell_heal"
	AuraApplied    = "aura_applied"
	AuraRemoved    = "aura_removed"
	CreatureCredit = "creature_credit"
	Pushback       = "pushback"
	PowerSpent     = "power_spent"
	Energize       = "energize"
	Teleport       = "teleport"
)

// Sink receives notifications.
type Sink interface {
	Emit(types.Event)
}

// Recorder keeps every event in order. The CLI drains it after each step.
type Recorder struct {
	Events []types.Event
}

func (r *Recorder) Emit(e types.Event) { r.Events = append(r.Events, e) }

// Drain returns the recorded events and forgets them.
func (r *Recorder) Drain() []types.Event {
	out := r.Events
	r.Events = nil
	return out
}

// OfType returns the recorded events of one type.
func (r *Recorder) OfType(typ string) []types.Event {
	var out []types.Event
	for _, e := range r.Events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Count is the number of recorded events of one type.
func (r *Recorder) Count(typ string) int {
	return len(r.OfType(typ))
}

// Multi fans an event out to several sinks in order.
type Multi []Sink

func (m Multi) Emit(e types.Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// LogSink mirrors notifications to a zap logger at debug level.
type LogSink struct {
	Log *zap.Logger
}

func (l LogSink) Emit(e types.Event) {
	if l.Log == nil {
		return
	}
	fields := make([]zap.Field, 0, len(e.Data)+1)
	fields = append(fields, zap.String("event", e.Type))
	for _, k := range SortedKeys(e.Data) {
		fields = append(fields, zap.Any(k, e.Data[k]))
	}
	l.Log.Debug("notify", fields...)
}

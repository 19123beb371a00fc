package spell

import (
	"github.com/nathoo/spellcore/engine/scheduler"
	"github.com/nathoo/spellcore/types"
)

func (e *Env) tickMS() int64 {
	if e.Defs == nil || e.Defs.World.TickMS <= 0 {
		return 100
	}
	return int64(e.Defs.World.TickMS)
}

// Task returns the continuation that drives a on the scheduler. Preparing
// and channeling attempts are updated every tick; delayed attempts wake
// up when the next missile lands. The task retires once a finishes and
// releases a's slot.
func (a *Attempt) Task() scheduler.Task {
	last := a.env.now()
	waited := false
	return func(now int64) int64 {
		switch a.State() {
		case types.StatePreparing, types.StateCasting:
			diff := now - last
			last = now
			a.Update(int(diff))
		}

		switch a.State() {
		case types.StatePreparing, types.StateCasting:
			return a.env.tickMS()
		case types.StateDelayed:
			elapsed := now - a.delayStart
			if !waited {
				waited = true
				if elapsed < a.delayMoment {
					return a.delayMoment - elapsed
				}
			}
			if next := a.HandleDelayed(elapsed); next > 0 {
				return next
			}
		}
		if a.env.Slots != nil {
			a.env.Slots.Clear(a)
		}
		return 0
	}
}

package spell

import (
	"github.com/samber/oops"

	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/rules"
	"github.com/nathoo/spellcore/types"
)

// Ranged shot categories whose cooldown is the ranged attack time.
const (
	categoryAutoShot  uint32 = 76
	categoryShootWand uint32 = 351
)

const (
	defaultMinGCD = 1000
	defaultMaxGCD = 1500

	missRefundFraction = 4
)

// takePower spends the cast's power cost. A rage or energy ability that
// misses its explicit target refunds all but a random quarter.
func (a *Attempt) takePower() {
	if a.castItem != nil || a.triggeredByAura != nil {
		return
	}
	p := a.Spell.PowerType
	hit := true
	if a.caster.IsPlayer() && (p == types.PowerRage || p == types.PowerEnergy) {
		if g := a.Targets.UnitGUID(); g != 0 {
			if t := a.UnitTarget(g); t != nil && t.Miss != types.MissNone {
				hit = false
			}
		}
	}
	if a.powerCost == 0 {
		return
	}
	if p != types.PowerHealth && (p < 0 || p >= types.MaxPowers) {
		a.structural(oops.In("spell").Code("unknown_power").With("power", int(p)).Errorf("unknown power type"))
		return
	}

	cost := a.powerCost
	if !hit {
		cost = a.env.Rand.Intn(a.powerCost/missRefundFraction + 1)
	}
	spent := a.env.Ledger.SpendPower(a.caster, p, cost)
	a.notify(events.PowerSpent, map[string]any{
		"power":  int(p),
		"amount": spent,
		"hit":    hit,
	})
}

// takeReagents destroys the spell's reagents. A cast item that is its
// own reagent is consumed with them.
func (a *Attempt) takeReagents() {
	if a.triggered || !a.caster.IsPlayer() {
		return
	}
	for _, r := range a.Spell.Reagents {
		if r.Item == 0 || r.Count <= 0 {
			continue
		}
		count := r.Count
		if a.castItem != nil && a.castItem.Entry == r.Item {
			if a.castItem.Expendable && a.castItem.Charges < 2 {
				count++
			}
			a.castItem = nil
			a.castItemGUID = 0
		}
		if it := a.Targets.Item(); it != nil && it.Entry == r.Item {
			a.Targets.SetItem(nil)
		}
		a.env.Ledger.DestroyItemCount(a.caster, r.Item, count)
	}
}

// takeCastItem spends one charge of the cast item. An expendable item
// with no charges left is destroyed.
func (a *Attempt) takeCastItem() {
	it := a.castItem
	if it == nil || !a.caster.IsPlayer() || a.triggered || it.MaxCharges == 0 {
		return
	}
	if !a.env.Ledger.ConsumeCharge(it) {
		return
	}
	if a.Targets.Item() == it {
		a.Targets.SetItem(nil)
	}
	a.castItem = nil
	a.castItemGUID = 0
}

// sendSpellCooldown starts the spell or item cooldown on the controlling
// player and the category cooldown on every spell sharing the category.
func (a *Attempt) sendSpellCooldown() {
	p := a.ownerPlayer(a.caster)
	if p == nil {
		return
	}
	cat := a.Spell.Category
	rec := a.Spell.RecoveryTimeMS
	catrec := a.Spell.CategoryRecoveryTimeMS
	if it := a.castItem; it != nil && it.Spell == a.Spell.ID && it.CooldownMS > 0 {
		cat, rec, catrec = it.Category, it.CooldownMS, 0
		if it.Category != 0 {
			catrec = it.CooldownMS
		}
	}
	if rec <= 0 && catrec <= 0 && (cat == categoryAutoShot || cat == categoryShootWand) {
		rec = p.RangedAttackMS
	}
	if rec < 0 {
		rec = 0
	}
	if catrec < 0 {
		catrec = 0
	}
	if rec == 0 && catrec == 0 {
		return
	}
	if rec == 0 {
		rec = catrec
	}

	now := a.env.now()
	cds := a.env.Ledger.Cooldowns(p)
	if a.castItem != nil {
		cds.AddItem(a.castItem.Entry, now+int64(rec))
	} else {
		cds.AddSpell(a.Spell.ID, now+int64(rec))
		if cat != 0 && catrec > 0 && a.env.Defs != nil {
			for _, id := range a.env.Defs.SpellsInCategory(cat) {
				if id != a.Spell.ID {
					cds.AddSpell(id, now+int64(catrec))
				}
			}
		}
	}
	a.notify(events.SpellCooldown, map[string]any{
		"player":   p.GUID,
		"cooldown": rec,
		"category": cat,
	})
}

func (a *Attempt) gcdBounds() (int, int) {
	lo, hi := defaultMinGCD, defaultMaxGCD
	if a.env.Defs != nil {
		if w := a.env.Defs.World; w.MinGCD > 0 && w.MaxGCD >= w.MinGCD {
			lo, hi = w.MinGCD, w.MaxGCD
		}
	}
	return lo, hi
}

// triggerGlobalCooldown locks the owner out of the spell's start recovery
// category. Pets and charmed creatures always get one.
func (a *Attempt) triggerGlobalCooldown() {
	owner := a.ownerPlayer(a.caster)
	if owner == nil {
		return
	}
	lo, hi := a.gcdBounds()
	gcd := a.Spell.StartRecoveryTimeMS
	if gcd == 0 && !a.caster.IsPlayer() && !a.caster.IsTotem() {
		gcd = hi
	}
	if gcd == 0 {
		return
	}
	if gcd >= lo && gcd <= hi {
		if s := a.caster.CastSpeed; s > 0 {
			gcd = int(float64(gcd) * s)
		}
		gcd = min(max(gcd, lo), hi)
	}
	a.env.Ledger.Cooldowns(owner).AddGlobal(rules.GCDCategory(a.caster, a.Spell), a.env.now()+int64(gcd))
}

// cancelGlobalCooldown lifts the lock when a generic cast is interrupted
// while preparing.
func (a *Attempt) cancelGlobalCooldown() {
	owner := a.ownerPlayer(a.caster)
	if owner == nil || a.Spell.StartRecoveryTimeMS == 0 {
		return
	}
	if a.env.Slots == nil || a.env.Slots.Get(a.casterGUID, types.SlotGeneric) != a {
		return
	}
	a.env.Ledger.Cooldowns(owner).CancelGlobal(a.Spell.StartRecoveryCategory)
}

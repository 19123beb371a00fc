package spell

import (
	"go.uber.org/zap"

	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// selectMagnetTarget lets an interceptor on the explicit target take the
// spell instead. The interceptor replaces the snapshot unit and is
// committed for the first effect without target checks.
func (a *Attempt) selectMagnetTarget() {
	target := a.Targets.Unit()
	if target == nil {
		return
	}

	switch a.Spell.DmgClass {
	case types.DamageClassMagic:
		if a.has(types.AttrAbility) || a.has(types.AttrUnaffectedByInvulnerability) || a.has(types.AttrCantBeRedirected) {
			return
		}
		for _, aura := range target.AurasOfType(types.AuraSpellMagnet) {
			magnet := a.env.Dir.Unit(aura.CasterGUID)
			if magnet == nil || aura.Charges <= 0 {
				continue
			}
			aura.Charges--
			a.redirect(magnet)
			if t := a.UnitTarget(magnet.GUID); t != nil {
				t.Damage = magnet.Health
			}
			return
		}

	case types.DamageClassMelee, types.DamageClassRanged:
		for _, aura := range target.AurasOfType(types.AuraAddCasterHitTrigger) {
			guard := a.env.Dir.Unit(aura.CasterGUID)
			if guard == nil {
				continue
			}
			// A chargeless aura keeps redirecting until it expires.
			if aura.Charges > 0 {
				aura.Charges--
				if aura.Charges <= 0 {
					target.RemoveAuraByCaster(aura.SpellID, aura.CasterGUID)
				}
			}
			a.redirect(guard)
			return
		}
	}
}

func (a *Attempt) redirect(to *world.Unit) {
	a.debug("spell redirected", zap.Uint64("to", uint64(to.GUID)))
	a.Targets.SetUnit(to)
	a.addUnitTarget(to, 0, true)
}

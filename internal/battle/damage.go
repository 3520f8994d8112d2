package battle

import (
	"math"

	"github.com/samdwyer/monstertower/internal/gamedata"
	"github.com/samdwyer/monstertower/internal/monster"
)

// Effectiveness supplies the damage multiplier for an element matchup.
// *gamedata.EffectivenessTable implements it.
type Effectiveness interface {
	Effectiveness(attacking, defending gamedata.Element) float64
}

// ComputeDamage calculates the damage attacker deals to defender without applying it.
//
//	defense < attack/2:  attack - defense
//	defense < attack:    attack*5/8 - defense/4
//	otherwise:           attack/4
//
// The result is scaled by the element multiplier and rounded up.
func ComputeDamage(attacker, defender *monster.Monster, eff Effectiveness) int {
	attack := float64(attacker.Attack())
	defense := float64(defender.Defense())

	var raw float64
	switch {
	case defense < attack/2:
		raw = attack - defense
	case defense < attack:
		raw = attack*5/8 - defense/4
	default:
		raw = attack / 4
	}

	mult := eff.Effectiveness(attacker.Element(), defender.Element())
	return int(math.Ceil(raw * mult))
}

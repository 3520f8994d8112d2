// Package monster provides the leveled, damageable monster entity.
package monster

import (
	"errors"
	"fmt"

	"github.com/samdwyer/monstertower/internal/gamedata"
)

var (
	// ErrNilSpecies is returned when a monster is created without a species.
	ErrNilSpecies = errors.New("monster species is nil")
	// ErrInvalidLevel is returned when a monster is created below level 1.
	ErrInvalidLevel = errors.New("monster level must be at least 1")
)

// Monster is a single creature instance. Name, element and evolution come
// from its species; level and HP are per-instance state.
type Monster struct {
	species    *gamedata.Species
	simple     bool
	level      int
	startLevel int
	hp         int
}

// New creates a monster of species at level with full HP. simple selects
// the fixed stats over the level formulas.
func New(species *gamedata.Species, simple bool, level int) (*Monster, error) {
	if species == nil {
		return nil, ErrNilSpecies
	}
	if level < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLevel, level)
	}
	m := &Monster{
		species:    species,
		simple:     simple,
		level:      level,
		startLevel: level,
	}
	m.hp = m.MaxHP()
	return m, nil
}

// MustNew creates a monster, panicking on error.
func MustNew(species *gamedata.Species, simple bool, level int) *Monster {
	m, err := New(species, simple, level)
	if err != nil {
		panic(err)
	}
	return m
}

// Fresh returns a new full-HP instance of the same species at the starting level.
func (m *Monster) Fresh() *Monster {
	return MustNew(m.species, m.simple, m.startLevel)
}

func (m *Monster) stats() gamedata.Stats {
	return m.species.Stats(m.simple)
}

// Species returns the monster's species descriptor.
func (m *Monster) Species() *gamedata.Species { return m.species }

// Name returns the species name.
func (m *Monster) Name() string { return m.species.Name }

// Element returns the species element.
func (m *Monster) Element() gamedata.Element { return m.species.Element }

// SimpleMode reports whether the fixed stats are in use.
func (m *Monster) SimpleMode() bool { return m.simple }

// Level returns the current level.
func (m *Monster) Level() int { return m.level }

// StartLevel returns the level this instance was created at.
func (m *Monster) StartLevel() int { return m.startLevel }

// HP returns current HP. It may be negative right after a heavy hit.
func (m *Monster) HP() int { return m.hp }

// MaxHP returns maximum HP at the current level.
func (m *Monster) MaxHP() int { return m.stats().MaxHP(m.level) }

// Attack returns attack at the current level.
func (m *Monster) Attack() int { return m.stats().Attack(m.level) }

// Defense returns defense at the current level.
func (m *Monster) Defense() int { return m.stats().Defense(m.level) }

// Speed returns speed at the current level.
func (m *Monster) Speed() int { return m.stats().Speed(m.level) }

// Alive returns true if the monster has HP remaining.
func (m *Monster) Alive() bool { return m.hp > 0 }

// TakeDamage subtracts amount from HP without flooring at zero and
// returns the amount applied.
func (m *Monster) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	m.hp -= amount
	return amount
}

// missingHP is the gap between max HP and current HP.
func (m *Monster) missingHP() int {
	return m.MaxHP() - m.hp
}

// LevelUp raises the level by one. Current HP grows by the same amount as
// max HP so missing HP is preserved. The result is the evolved instance
// when the monster becomes eligible, otherwise the receiver.
func (m *Monster) LevelUp() *Monster {
	prevMax := m.MaxHP()
	m.level++
	m.hp += m.MaxHP() - prevMax
	return m.Evolve()
}

// ReadyToEvolve reports whether the species has an evolution and the
// monster has gained a level since it was created.
func (m *Monster) ReadyToEvolve() bool {
	return m.species.Evolution() != nil && m.level > m.startLevel
}

// Evolve returns a new instance of the evolved species at the same level,
// carrying over missing HP. Monsters that are not ready are returned as is.
func (m *Monster) Evolve() *Monster {
	if !m.ReadyToEvolve() {
		return m
	}

	evolved := MustNew(m.species.Evolution(), m.simple, m.level)
	evolved.hp = evolved.MaxHP() - m.missingHP()
	return evolved
}

// String returns a short description such as "LV.3 Flamikin, 7/10 HP".
func (m *Monster) String() string {
	return fmt.Sprintf("LV.%d %s, %d/%d HP", m.level, m.Name(), m.hp, m.MaxHP())
}

package gamedata

import (
	"errors"
	"fmt"
	"math/rand"
)

// SpeciesRegistry holds resolved species and provides lookup and spawning utilities.
type SpeciesRegistry struct {
	species     []*Species
	byName      map[string]*Species
	totalWeight int
}

// NewSpeciesRegistry resolves definitions into a registry. Names must be
// unique, every evolution must name a species in defs, and every formula
// must compile.
func NewSpeciesRegistry(defs []SpeciesDef) (*SpeciesRegistry, error) {
	r := &SpeciesRegistry{
		species: make([]*Species, 0, len(defs)),
		byName:  make(map[string]*Species, len(defs)),
	}

	for _, def := range defs {
		if def.Name == "" {
			return nil, errors.New("species with empty name")
		}
		if _, dup := r.byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate species %q", def.Name)
		}
		if def.SpawnWeight < 0 {
			return nil, fmt.Errorf("species %s: negative spawn weight", def.Name)
		}
		s, err := newSpecies(def)
		if err != nil {
			return nil, err
		}
		r.species = append(r.species, s)
		r.byName[def.Name] = s
		if s.Spawnable {
			r.totalWeight += s.SpawnWeight
		}
	}

	for _, s := range r.species {
		if s.SpeciesDef.Evolution == "" {
			continue
		}
		evo, ok := r.byName[s.SpeciesDef.Evolution]
		if !ok {
			return nil, fmt.Errorf("species %s evolves into unknown species %q", s.Name, s.SpeciesDef.Evolution)
		}
		if evo == s {
			return nil, fmt.Errorf("species %s evolves into itself", s.Name)
		}
		s.evolution = evo
	}

	return r, nil
}

// LoadSpeciesRegistry loads and creates a registry from the embedded species.json.
func LoadSpeciesRegistry() (*SpeciesRegistry, error) {
	defs, err := LoadSpecies()
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, errors.New("no species loaded from species.json")
	}
	return NewSpeciesRegistry(defs)
}

// MustLoadSpeciesRegistry loads a registry, panicking on error.
func MustLoadSpeciesRegistry() *SpeciesRegistry {
	registry, err := LoadSpeciesRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// CheckElements verifies that every species uses an element known to t.
func (r *SpeciesRegistry) CheckElements(t *EffectivenessTable) error {
	for _, s := range r.species {
		if !t.Known(s.Element) {
			return fmt.Errorf("species %s has unknown element %q", s.Name, s.Element)
		}
	}
	return nil
}

// SpawnRandom selects a random spawnable species using weighted probability.
// Species with higher spawnWeight are more likely to be selected.
func (r *SpeciesRegistry) SpawnRandom(rng *rand.Rand) *Species {
	if r.totalWeight <= 0 {
		return nil
	}

	roll := rng.Intn(r.totalWeight)

	cumulative := 0
	for _, s := range r.species {
		if !s.Spawnable {
			continue
		}
		cumulative += s.SpawnWeight
		if roll < cumulative {
			return s
		}
	}

	return nil
}

// GetByName returns the species with the given name, or nil if not found.
func (r *SpeciesRegistry) GetByName(name string) *Species {
	return r.byName[name]
}

// All returns every species in declaration order.
func (r *SpeciesRegistry) All() []*Species {
	return r.species
}

// Spawnable returns the species that can be placed on a team directly.
func (r *SpeciesRegistry) Spawnable() []*Species {
	out := make([]*Species, 0, len(r.species))
	for _, s := range r.species {
		if s.Spawnable {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of species in the registry.
func (r *SpeciesRegistry) Count() int {
	return len(r.species)
}

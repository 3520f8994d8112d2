package gamedata

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// SpeciesDef defines a monster species loaded from JSON.
type SpeciesDef struct {
	Name        string          `json:"name"`                // Unique species name (e.g., "Flamikin")
	Description string          `json:"description"`         // Flavour text
	Element     Element         `json:"element"`             // Elemental affinity
	Evolution   string          `json:"evolution,omitempty"` // Name of the species this one evolves into
	Spawnable   bool            `json:"spawnable"`           // Whether teams may be built with it directly
	SpawnWeight int             `json:"spawnWeight"`         // Relative random selection frequency
	Glyph       string          `json:"glyph"`               // Single character for rendering
	Color       string          `json:"color"`               // Hex color code (e.g., "#FF6600")
	Simple      SimpleStats     `json:"simpleStats"`
	Complex     ComplexStatsDef `json:"complexStats"`
}

// SpeciesFile represents the structure of species.json.
type SpeciesFile struct {
	Species []SpeciesDef `json:"species"`
}

// LoadSpecies loads species definitions from the embedded species.json file.
func LoadSpecies() ([]SpeciesDef, error) {
	file, err := Load[SpeciesFile]("species.json")
	if err != nil {
		return nil, err
	}
	return file.Species, nil
}

// Species is a resolved species: its definition plus the compiled stat
// providers and a link to the species it evolves into.
type Species struct {
	SpeciesDef

	evolution *Species
	complex   *ComplexStats
}

func newSpecies(def SpeciesDef) (*Species, error) {
	s := &Species{SpeciesDef: def}
	if !def.Complex.IsZero() {
		cs, err := NewComplexStats(def.Complex)
		if err != nil {
			return nil, fmt.Errorf("species %s: %w", def.Name, err)
		}
		s.complex = cs
	}
	return s, nil
}

// Evolution returns the species this one evolves into, or nil.
func (s *Species) Evolution() *Species {
	return s.evolution
}

// Stats returns the simple stats provider when simple is true, and the
// formula-driven provider otherwise. Species without formulas always
// fall back to simple stats.
func (s *Species) Stats(simple bool) Stats {
	if simple || s.complex == nil {
		return s.Simple
	}
	return s.complex
}

// HasComplexStats reports whether formulas were defined for this species.
func (s *Species) HasComplexStats() bool {
	return s.complex != nil
}

// GlyphRune returns the glyph as a rune for rendering.
func (s *Species) GlyphRune() rune {
	if len(s.Glyph) == 0 {
		return '?'
	}
	return rune(s.Glyph[0])
}

// TCellColor returns the species color, falling back to white.
func (s *Species) TCellColor() tcell.Color {
	if c := tcell.GetColor(s.Color); c != tcell.ColorDefault {
		return c
	}
	return tcell.ColorWhite
}

// String returns the species name.
func (s *Species) String() string {
	return s.Name
}

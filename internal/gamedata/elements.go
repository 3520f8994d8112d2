package gamedata

import (
	"errors"
	"fmt"
	"strings"
)

// Element is a monster's elemental affinity (e.g., "fire").
type Element string

// String returns the element name.
func (e Element) String() string { return string(e) }

// ElementsFile represents the structure of elements.json.
//
// Effectiveness maps attacking element -> defending element -> multiplier.
// Pairs that are not listed default to 1.
type ElementsFile struct {
	Elements      []Element                       `json:"elements"`
	Effectiveness map[Element]map[Element]float64 `json:"effectiveness"`
}

// EffectivenessTable is a static lookup of damage multipliers per element pair.
type EffectivenessTable struct {
	elements []Element
	known    map[Element]bool
	table    map[Element]map[Element]float64
}

// NewEffectivenessTable builds a table, rejecting unknown elements and negative multipliers.
func NewEffectivenessTable(file ElementsFile) (*EffectivenessTable, error) {
	t := &EffectivenessTable{
		elements: file.Elements,
		known:    make(map[Element]bool, len(file.Elements)),
		table:    make(map[Element]map[Element]float64, len(file.Effectiveness)),
	}
	for _, e := range file.Elements {
		t.known[normalize(e)] = true
	}

	for atk, row := range file.Effectiveness {
		atk = normalize(atk)
		if !t.known[atk] {
			return nil, fmt.Errorf("effectiveness row for unknown element %q", atk)
		}
		t.table[atk] = make(map[Element]float64, len(row))
		for def, mult := range row {
			def = normalize(def)
			if !t.known[def] {
				return nil, fmt.Errorf("effectiveness %s->%s: unknown element %q", atk, def, def)
			}
			if mult < 0 {
				return nil, fmt.Errorf("effectiveness %s->%s: negative multiplier %v", atk, def, mult)
			}
			t.table[atk][def] = mult
		}
	}
	return t, nil
}

// LoadEffectivenessTable loads the table from the embedded elements.json.
func LoadEffectivenessTable() (*EffectivenessTable, error) {
	file, err := Load[ElementsFile]("elements.json")
	if err != nil {
		return nil, err
	}
	if len(file.Elements) == 0 {
		return nil, errors.New("no elements loaded from elements.json")
	}
	return NewEffectivenessTable(file)
}

// MustLoadEffectivenessTable loads the table, panicking on error.
func MustLoadEffectivenessTable() *EffectivenessTable {
	t, err := LoadEffectivenessTable()
	if err != nil {
		panic(err)
	}
	return t
}

// Effectiveness returns the damage multiplier for attacking against defending.
func (t *EffectivenessTable) Effectiveness(attacking, defending Element) float64 {
	row, ok := t.table[normalize(attacking)]
	if !ok {
		return 1
	}
	mult, ok := row[normalize(defending)]
	if !ok {
		return 1
	}
	return mult
}

// Known reports whether e is one of the table's elements.
func (t *EffectivenessTable) Known(e Element) bool {
	return t.known[normalize(e)]
}

// Elements returns all elements in declaration order.
func (t *EffectivenessTable) Elements() []Element {
	return t.elements
}

func normalize(e Element) Element {
	return Element(strings.ToLower(strings.TrimSpace(string(e))))
}

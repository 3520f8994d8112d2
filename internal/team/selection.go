package team

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/samdwyer/monstertower/internal/gamedata"
)

var (
	// ErrTooManyMonsters is returned when more than Capacity species are provided.
	ErrTooManyMonsters = errors.New("too many monsters provided")
	// ErrNotSpawnable is returned when a provided species cannot be placed on a team.
	ErrNotSpawnable = errors.New("species cannot be spawned")
)

// Selector picks the species a team starts with, in insertion order.
type Selector interface {
	Select(limit int) ([]*gamedata.Species, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(limit int) ([]*gamedata.Species, error)

// Select calls f.
func (f SelectorFunc) Select(limit int) ([]*gamedata.Species, error) {
	return f(limit)
}

// =============================================================================
// Random selection
// =============================================================================

// RandomSelection picks between 1 and limit spawnable species from registry.
func RandomSelection(registry *gamedata.SpeciesRegistry, rng *rand.Rand) Selector {
	return SelectorFunc(func(limit int) ([]*gamedata.Species, error) {
		size := rng.Intn(limit) + 1
		out := make([]*gamedata.Species, 0, size)
		for i := 0; i < size; i++ {
			s := registry.SpawnRandom(rng)
			if s == nil {
				return nil, errors.New("no spawnable species in registry")
			}
			out = append(out, s)
		}
		return out, nil
	})
}

// =============================================================================
// Provided selection
// =============================================================================

// ProvidedSelection uses exactly the given species.
func ProvidedSelection(species ...*gamedata.Species) Selector {
	return SelectorFunc(func(limit int) ([]*gamedata.Species, error) {
		if len(species) > limit {
			return nil, fmt.Errorf("%w: %d, maximum is %d", ErrTooManyMonsters, len(species), limit)
		}
		for _, s := range species {
			if s == nil {
				return nil, errors.New("provided species is nil")
			}
			if !s.Spawnable {
				return nil, fmt.Errorf("%w: %s", ErrNotSpawnable, s.Name)
			}
		}
		return species, nil
	})
}

// ProvidedByName looks species up by name and uses them as provided.
func ProvidedByName(registry *gamedata.SpeciesRegistry, names ...string) (Selector, error) {
	species := make([]*gamedata.Species, 0, len(names))
	for _, name := range names {
		s := registry.GetByName(name)
		if s == nil {
			return nil, fmt.Errorf("unknown species %q", name)
		}
		species = append(species, s)
	}
	return ProvidedSelection(species...), nil
}

// =============================================================================
// Manual selection
// =============================================================================

// Picker asks a user for a team size and for each species.
type Picker interface {
	PickCount(limit int) (int, error)
	PickSpecies(all []*gamedata.Species) (*gamedata.Species, error)
}

// ManualSelection lets picker choose the team from every species in registry.
func ManualSelection(registry *gamedata.SpeciesRegistry, picker Picker) Selector {
	return SelectorFunc(func(limit int) ([]*gamedata.Species, error) {
		n, err := picker.PickCount(limit)
		if err != nil {
			return nil, err
		}
		out := make([]*gamedata.Species, 0, n)
		for i := 0; i < n; i++ {
			s, err := picker.PickSpecies(registry.All())
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	})
}

// PromptPicker reads answers line by line and asks again on invalid input.
type PromptPicker struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPromptPicker creates a picker reading from r and prompting on w.
func NewPromptPicker(r io.Reader, w io.Writer) *PromptPicker {
	return &PromptPicker{in: bufio.NewScanner(r), out: w}
}

func (p *PromptPicker) readInt(prompt string) (int, error) {
	for {
		fmt.Fprint(p.out, prompt)
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}
		n, err := strconv.Atoi(strings.TrimSpace(p.in.Text()))
		if err != nil {
			fmt.Fprintln(p.out, "Please enter a number")
			continue
		}
		return n, nil
	}
}

// PickCount asks for a team size between 1 and limit.
func (p *PromptPicker) PickCount(limit int) (int, error) {
	for {
		n, err := p.readInt("How many monsters are there? ")
		if err != nil {
			return 0, err
		}
		if n > 0 && n <= limit {
			return n, nil
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d\n", limit)
	}
}

// PickSpecies lists all species (1-indexed) and asks for a spawnable one.
func (p *PromptPicker) PickSpecies(all []*gamedata.Species) (*gamedata.Species, error) {
	fmt.Fprintln(p.out, "MONSTERS Are:")
	for i, s := range all {
		mark := "x"
		if s.Spawnable {
			mark = "ok"
		}
		fmt.Fprintf(p.out, "%d %s [%s]\n", i+1, s.Name, mark)
	}

	for {
		n, err := p.readInt("Which monster are you spawning? ")
		if err != nil {
			return nil, err
		}
		idx := n - 1
		if idx < 0 || idx >= len(all) || !all[idx].Spawnable {
			fmt.Fprintln(p.out, "This monster cannot be spawned")
			continue
		}
		return all[idx], nil
	}
}

package team

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/samdwyer/monstertower/internal/gamedata"
	"github.com/samdwyer/monstertower/internal/monster"
)

// Simple stats used below (attack/defense/speed/hp):
//   Flamikin 6/4/8/10, Aquariuma 4/8/6/12, Vineon 5/5/5/11,
//   Strikeon 7/3/11/9, Normake 5/5/5/10, Rockodile 6/9/3/13

var registry = gamedata.MustLoadSpeciesRegistry()

func newTeam(t *testing.T, mode Mode, names []string, opts ...Option) *Team {
	t.Helper()
	sel, err := ProvidedByName(registry, names...)
	if err != nil {
		t.Fatalf("ProvidedByName: %v", err)
	}
	tm, err := New(mode, sel, opts...)
	if err != nil {
		t.Fatalf("New(%s): %v", mode, err)
	}
	return tm
}

func drain(t *testing.T, tm *Team) []string {
	t.Helper()
	var names []string
	for tm.Len() > 0 {
		m, err := tm.Retrieve()
		if err != nil {
			t.Fatalf("Retrieve: %v", err)
		}
		names = append(names, m.Name())
	}
	return names
}

func names(ms []*monster.Monster) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name()
	}
	return out
}

func TestModeAndSortKeyParsing(t *testing.T) {
	modes := []struct {
		in   string
		want Mode
	}{
		{"front", ModeFront},
		{"BACK", ModeBack},
		{"priority", ModePriority},
		{"optimise", ModePriority},
	}
	for _, tt := range modes {
		got, err := ParseMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseMode("sideways"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("ParseMode(sideways) error = %v, want ErrInvalidMode", err)
	}

	for _, k := range []SortKey{SortHP, SortAttack, SortDefense, SortSpeed, SortLevel} {
		got, err := ParseSortKey(k.String())
		if err != nil || got != k {
			t.Errorf("ParseSortKey(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseSortKey("luck"); !errors.Is(err, ErrInvalidSortKey) {
		t.Errorf("ParseSortKey(luck) error = %v, want ErrInvalidSortKey", err)
	}
}

func TestFrontRetrieveOrder(t *testing.T) {
	tm := newTeam(t, ModeFront, []string{"Flamikin", "Aquariuma", "Vineon"})

	got := drain(t, tm)
	want := []string{"Vineon", "Aquariuma", "Flamikin"}
	if !slices.Equal(got, want) {
		t.Errorf("retrieve order = %v, want %v", got, want)
	}
}

func TestFrontSpecial(t *testing.T) {
	tests := []struct {
		name  string
		added []string
		want  []string
	}{
		{"three", []string{"Flamikin", "Aquariuma", "Vineon"}, []string{"Flamikin", "Aquariuma", "Vineon"}},
		{"four", []string{"Flamikin", "Aquariuma", "Vineon", "Strikeon"}, []string{"Aquariuma", "Vineon", "Strikeon", "Flamikin"}},
		{"two", []string{"Flamikin", "Aquariuma"}, []string{"Flamikin", "Aquariuma"}},
		{"one", []string{"Flamikin"}, []string{"Flamikin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := newTeam(t, ModeFront, tt.added)
			tm.Special()
			if got := drain(t, tm); !slices.Equal(got, tt.want) {
				t.Errorf("after special = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrontSpecialEmpty(t *testing.T) {
	tm := newTeam(t, ModeFront, nil)
	tm.Special()
	if tm.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tm.Len())
	}
}

func TestBackRetrieveOrder(t *testing.T) {
	tm := newTeam(t, ModeBack, []string{"Flamikin", "Aquariuma", "Vineon"})

	got := drain(t, tm)
	want := []string{"Flamikin", "Aquariuma", "Vineon"}
	if !slices.Equal(got, want) {
		t.Errorf("retrieve order = %v, want %v", got, want)
	}
}

func TestBackSpecial(t *testing.T) {
	tests := []struct {
		name  string
		added []string
		want  []string
	}{
		{"odd", []string{"Flamikin", "Aquariuma", "Vineon", "Strikeon", "Normake"},
			[]string{"Normake", "Strikeon", "Vineon", "Flamikin", "Aquariuma"}},
		{"even", []string{"Flamikin", "Aquariuma", "Vineon", "Strikeon"},
			[]string{"Strikeon", "Vineon", "Flamikin", "Aquariuma"}},
		{"full", []string{"Flamikin", "Aquariuma", "Vineon", "Strikeon", "Normake", "Rockodile"},
			[]string{"Rockodile", "Normake", "Strikeon", "Flamikin", "Aquariuma", "Vineon"}},
		{"single", []string{"Flamikin"}, []string{"Flamikin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := newTeam(t, ModeBack, tt.added)
			tm.Special()
			if got := names(tm.Monsters()); !slices.Equal(got, tt.want) {
				t.Errorf("Monsters() after special = %v, want %v", got, tt.want)
			}
			if got := drain(t, tm); !slices.Equal(got, tt.want) {
				t.Errorf("retrieve after special = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackWrapsAround(t *testing.T) {
	tm := newTeam(t, ModeBack, []string{"Flamikin", "Aquariuma", "Vineon", "Strikeon", "Normake", "Rockodile"})

	// Rotate the ring buffer several times through swaps.
	for i := 0; i < 8; i++ {
		m, err := tm.Retrieve()
		if err != nil {
			t.Fatalf("Retrieve: %v", err)
		}
		if err := tm.Add(m); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	want := []string{"Vineon", "Strikeon", "Normake", "Rockodile", "Flamikin", "Aquariuma"}
	if got := drain(t, tm); !slices.Equal(got, want) {
		t.Errorf("order after rotation = %v, want %v", got, want)
	}
}

func TestPriorityOrder(t *testing.T) {
	added := []string{"Aquariuma", "Flamikin", "Vineon", "Strikeon"}

	desc := newTeam(t, ModePriority, added, WithSortKey(SortSpeed))
	if !desc.Descending() {
		t.Error("priority teams should start descending")
	}
	want := []string{"Strikeon", "Flamikin", "Aquariuma", "Vineon"}
	if got := drain(t, desc); !slices.Equal(got, want) {
		t.Errorf("descending speed order = %v, want %v", got, want)
	}

	asc := newTeam(t, ModePriority, added, WithSortKey(SortDefense), WithDescending(false))
	want = []string{"Strikeon", "Flamikin", "Vineon", "Aquariuma"}
	if got := drain(t, asc); !slices.Equal(got, want) {
		t.Errorf("ascending defense order = %v, want %v", got, want)
	}
}

func TestPriorityTiesKeepInsertionOrder(t *testing.T) {
	tm := newTeam(t, ModePriority, []string{"Vineon", "Normake", "Strikeon"}, WithSortKey(SortSpeed))

	want := []string{"Strikeon", "Vineon", "Normake"}
	if got := names(tm.Monsters()); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	tm.Special()
	want = []string{"Vineon", "Normake", "Strikeon"}
	if got := names(tm.Monsters()); !slices.Equal(got, want) {
		t.Errorf("order after special = %v, want %v", got, want)
	}
}

func TestPrioritySpecialTwiceIsIdentity(t *testing.T) {
	tm := newTeam(t, ModePriority, []string{"Aquariuma", "Flamikin", "Vineon", "Normake", "Rockodile"},
		WithSortKey(SortAttack))

	before := names(tm.Monsters())
	tm.Special()
	if tm.Descending() {
		t.Error("special should flip direction to ascending")
	}
	flipped := names(tm.Monsters())
	if slices.Equal(before, flipped) {
		t.Errorf("special should reorder, still %v", flipped)
	}

	tm.Special()
	if !tm.Descending() {
		t.Error("second special should restore descending")
	}
	if got := names(tm.Monsters()); !slices.Equal(got, before) {
		t.Errorf("after two specials = %v, want %v", got, before)
	}
}

func TestPriorityKeySampledAtInsertion(t *testing.T) {
	tm := newTeam(t, ModePriority, []string{"Aquariuma", "Vineon"}, WithSortKey(SortHP))

	first, _ := tm.Retrieve() // Aquariuma, 12 HP
	if first.Name() != "Aquariuma" {
		t.Fatalf("first = %s, want Aquariuma", first.Name())
	}
	first.TakeDamage(10) // 2 HP
	if err := tm.Add(first); err != nil {
		t.Fatalf("Add: %v", err)
	}

	want := []string{"Vineon", "Aquariuma"}
	if got := names(tm.Monsters()); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestCapacity(t *testing.T) {
	full := []string{"Flamikin", "Aquariuma", "Vineon", "Strikeon", "Normake", "Rockodile"}
	for _, mode := range []Mode{ModeFront, ModeBack} {
		tm := newTeam(t, mode, full)
		if tm.Len() != Capacity {
			t.Fatalf("%s: Len() = %d, want %d", mode, tm.Len(), Capacity)
		}
		extra := monster.MustNew(registry.GetByName("Normake"), true, 1)
		if err := tm.Add(extra); !errors.Is(err, ErrTeamFull) {
			t.Errorf("%s: 7th Add error = %v, want ErrTeamFull", mode, err)
		}
		if tm.Len() != Capacity {
			t.Errorf("%s: Len() after rejected add = %d", mode, tm.Len())
		}
	}

	tm := newTeam(t, ModePriority, full, WithSortKey(SortLevel))
	extra := monster.MustNew(registry.GetByName("Normake"), true, 1)
	if err := tm.Add(extra); !errors.Is(err, ErrTeamFull) {
		t.Errorf("priority: 7th Add error = %v, want ErrTeamFull", err)
	}
}

func TestRetrieveEmpty(t *testing.T) {
	tm := newTeam(t, ModeBack, []string{"Normake"})
	if _, err := tm.Retrieve(); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if _, err := tm.Retrieve(); !errors.Is(err, ErrTeamEmpty) {
		t.Errorf("Retrieve on empty error = %v, want ErrTeamEmpty", err)
	}
}

func TestNewErrors(t *testing.T) {
	sel, _ := ProvidedByName(registry, "Normake")

	if _, err := New(ModePriority, sel); !errors.Is(err, ErrSortKeyRequired) {
		t.Errorf("priority without key error = %v, want ErrSortKeyRequired", err)
	}
	if _, err := New(ModePriority, sel, WithSortKey(SortKey(42))); !errors.Is(err, ErrInvalidSortKey) {
		t.Errorf("bad key error = %v, want ErrInvalidSortKey", err)
	}
	if _, err := New(Mode(9), sel); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("bad mode error = %v, want ErrInvalidMode", err)
	}

	seven, _ := ProvidedByName(registry, "Normake", "Normake", "Normake", "Normake", "Normake", "Normake", "Normake")
	if _, err := New(ModeBack, seven); !errors.Is(err, ErrTooManyMonsters) {
		t.Errorf("seven provided error = %v, want ErrTooManyMonsters", err)
	}

	evolved, _ := ProvidedByName(registry, "Infernoth")
	if _, err := New(ModeBack, evolved); !errors.Is(err, ErrNotSpawnable) {
		t.Errorf("non-spawnable error = %v, want ErrNotSpawnable", err)
	}

	if _, err := ProvidedByName(registry, "Missingno"); err == nil {
		t.Error("expected error for unknown species name")
	}
}

func TestReset(t *testing.T) {
	tests := []struct {
		mode Mode
		opts []Option
	}{
		{ModeFront, nil},
		{ModeBack, nil},
		{ModePriority, []Option{WithSortKey(SortSpeed)}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			tm := newTeam(t, tt.mode, []string{"Flamikin", "Aquariuma", "Strikeon"}, tt.opts...)
			want := names(tm.Monsters())

			m, _ := tm.Retrieve()
			m.TakeDamage(100)
			tm.Special()
			_, _ = tm.Retrieve()

			tm.Reset()
			if tm.Len() != 3 {
				t.Fatalf("Len() after reset = %d, want 3", tm.Len())
			}
			if got := names(tm.Monsters()); !slices.Equal(got, want) {
				t.Errorf("order after reset = %v, want %v", got, want)
			}
			for _, r := range tm.Monsters() {
				if r == m {
					t.Error("reset should not reuse battle-worn instances")
				}
				if r.HP() != r.MaxHP() || r.Level() != 1 {
					t.Errorf("reset monster %s is not fresh", r)
				}
			}
			if tt.mode == ModePriority && !tm.Descending() {
				t.Error("reset should restore the initial direction")
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	tm := newTeam(t, ModeFront, []string{"Flamikin", "Aquariuma", "Strikeon"})
	m, _ := tm.Retrieve()
	m.TakeDamage(3)

	snap := tm.Snapshot()
	if got, want := names(snap), []string{"Flamikin", "Aquariuma", "Strikeon"}; !slices.Equal(got, want) {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}
	for _, s := range snap {
		if s == m || s.HP() != s.MaxHP() {
			t.Errorf("snapshot monster %s is not fresh", s)
		}
	}
	if tm.Len() != 2 {
		t.Errorf("Snapshot() changed the roster, Len() = %d", tm.Len())
	}
}

func TestRandomSelection(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		tm, err := New(ModeBack, RandomSelection(registry, rng))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if tm.Len() < 1 || tm.Len() > Capacity {
			t.Errorf("random team size = %d, want 1..%d", tm.Len(), Capacity)
		}
		for _, m := range tm.Monsters() {
			if !m.Species().Spawnable {
				t.Errorf("random team contains non-spawnable %s", m.Name())
			}
		}
	}
}

func TestManualSelection(t *testing.T) {
	// Species order: 1 Flamikin, 2 Infernoth (not spawnable), 3 Aquariuma
	input := strings.NewReader("0\nabc\n2\n99\n2\n1\n3\n")
	var out bytes.Buffer

	tm, err := New(ModeBack, ManualSelection(registry, NewPromptPicker(input, &out)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := []string{"Flamikin", "Aquariuma"}
	if got := names(tm.Monsters()); !slices.Equal(got, want) {
		t.Errorf("manual team = %v, want %v", got, want)
	}

	transcript := out.String()
	for _, msg := range []string{"between 1 and 6", "Please enter a number", "cannot be spawned", "MONSTERS Are:"} {
		if !strings.Contains(transcript, msg) {
			t.Errorf("transcript missing %q", msg)
		}
	}
}

func TestManualSelectionEOF(t *testing.T) {
	picker := NewPromptPicker(strings.NewReader("2\n1\n"), io.Discard)
	_, err := New(ModeFront, ManualSelection(registry, picker))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestDefaultActionChooser(t *testing.T) {
	strikeon := monster.MustNew(registry.GetByName("Strikeon"), true, 1)   // spd 11, hp 9
	rockodile := monster.MustNew(registry.GetByName("Rockodile"), true, 1) // spd 3, hp 13
	normake := monster.MustNew(registry.GetByName("Normake"), true, 1)     // spd 5, hp 10
	vineon := monster.MustNew(registry.GetByName("Vineon"), true, 1)       // spd 5, hp 11

	tests := []struct {
		name             string
		active, opponent *monster.Monster
		want             Action
	}{
		{"faster", strikeon, rockodile, ActionAttack},
		{"slower but healthier", rockodile, normake, ActionAttack},
		{"equal speed", normake, vineon, ActionAttack},
		{"slower with more hp", normake, strikeon, ActionAttack},
	}

	for _, tt := range tests {
		if got := DefaultActionChooser.ChooseAction(tt.active, tt.opponent); got != tt.want {
			t.Errorf("%s: ChooseAction = %v, want %v", tt.name, got, tt.want)
		}
	}

	normake.TakeDamage(5)
	if got := DefaultActionChooser.ChooseAction(normake, strikeon); got != ActionSwap {
		t.Errorf("slower and weaker: ChooseAction = %v, want swap", got)
	}
}

func TestInjectedActionChooser(t *testing.T) {
	tm := newTeam(t, ModeBack, []string{"Normake"}, WithActionChooser(Always(ActionSpecial)))
	m := tm.Monsters()[0]
	if got := tm.ChooseAction(m, m); got != ActionSpecial {
		t.Errorf("ChooseAction = %v, want special", got)
	}
}

func TestTeamString(t *testing.T) {
	tm := newTeam(t, ModeFront, []string{"Normake", "Vineon"})
	want := "FRONT[LV.1 Vineon, 11/11 HP, LV.1 Normake, 10/10 HP]"
	if got := tm.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

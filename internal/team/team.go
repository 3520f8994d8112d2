// Package team provides the monster team container and its ordering policies.
package team

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samdwyer/monstertower/internal/monster"
)

// Capacity is the maximum number of monsters a team can hold.
const Capacity = 6

var (
	// ErrTeamFull is returned when adding to a team that already holds Capacity monsters.
	ErrTeamFull = errors.New("team is full")
	// ErrTeamEmpty is returned when retrieving from a team with no monsters.
	ErrTeamEmpty = errors.New("team is empty")
	// ErrSortKeyRequired is returned when a PRIORITY team is built without a sort key.
	ErrSortKeyRequired = errors.New("sort key is required for priority mode")
	// ErrInvalidSortKey is returned for an unknown sort key.
	ErrInvalidSortKey = errors.New("invalid sort key")
	// ErrInvalidMode is returned for an unknown team mode.
	ErrInvalidMode = errors.New("invalid team mode")
	// ErrNilMonster is returned when adding a nil monster.
	ErrNilMonster = errors.New("monster is nil")
)

// Mode selects how a team orders its monsters.
type Mode int

const (
	// ModeFront retrieves the most recently added monster first.
	ModeFront Mode = iota
	// ModeBack retrieves the earliest added monster first.
	ModeBack
	// ModePriority retrieves the monster with the most extreme sort key first.
	ModePriority
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeFront:
		return "front"
	case ModeBack:
		return "back"
	case ModePriority:
		return "priority"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front":
		return ModeFront, nil
	case "back":
		return ModeBack, nil
	case "priority", "optimise", "optimize":
		return ModePriority, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// SortKey selects the stat a PRIORITY team is ordered by.
type SortKey int

const (
	SortNone SortKey = iota
	SortHP
	SortAttack
	SortDefense
	SortSpeed
	SortLevel
)

// String returns the sort key name.
func (k SortKey) String() string {
	switch k {
	case SortNone:
		return "none"
	case SortHP:
		return "hp"
	case SortAttack:
		return "attack"
	case SortDefense:
		return "defense"
	case SortSpeed:
		return "speed"
	case SortLevel:
		return "level"
	default:
		return "unknown"
	}
}

// ParseSortKey converts a sort key name into a SortKey. An empty string yields SortNone.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "hp":
		return SortHP, nil
	case "attack":
		return SortAttack, nil
	case "defense":
		return SortDefense, nil
	case "speed":
		return SortSpeed, nil
	case "level":
		return SortLevel, nil
	default:
		return SortNone, fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}
}

func (k SortKey) valid() bool {
	return k >= SortHP && k <= SortLevel
}

func (k SortKey) value(m *monster.Monster) int {
	switch k {
	case SortHP:
		return m.HP()
	case SortAttack:
		return m.Attack()
	case SortDefense:
		return m.Defense()
	case SortSpeed:
		return m.Speed()
	case SortLevel:
		return m.Level()
	default:
		return 0
	}
}

// Team is an ordered collection of at most Capacity monsters.
// A Team is not safe for concurrent use.
type Team struct {
	mode       Mode
	sortKey    SortKey
	descending bool
	simple     bool
	chooser    ActionChooser

	roster   roster
	snapshot []*monster.Monster
}

// Option configures a Team.
type Option func(*Team)

// WithSortKey sets the stat a PRIORITY team is ordered by.
func WithSortKey(k SortKey) Option {
	return func(t *Team) { t.sortKey = k }
}

// WithDescending sets the initial PRIORITY direction. Teams start descending by default.
func WithDescending(descending bool) Option {
	return func(t *Team) { t.descending = descending }
}

// WithStatsMode chooses fixed stats (true, the default) or level formulas (false)
// for the monsters created during selection.
func WithStatsMode(simple bool) Option {
	return func(t *Team) { t.simple = simple }
}

// WithActionChooser replaces the default action policy.
func WithActionChooser(c ActionChooser) Option {
	return func(t *Team) { t.chooser = c }
}

// New builds a team in mode using the monsters picked by sel. The roster as
// selected is captured so Reset can restore it later.
func New(mode Mode, sel Selector, opts ...Option) (*Team, error) {
	t := &Team{
		mode:       mode,
		descending: true,
		simple:     true,
		chooser:    DefaultActionChooser,
	}
	for _, opt := range opts {
		opt(t)
	}

	switch mode {
	case ModeFront, ModeBack:
	case ModePriority:
		if t.sortKey == SortNone {
			return nil, ErrSortKeyRequired
		}
		if !t.sortKey.valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSortKey, t.sortKey)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	if t.chooser == nil {
		t.chooser = DefaultActionChooser
	}
	t.roster = t.newRoster()

	if sel == nil {
		return nil, errors.New("team selector is nil")
	}
	species, err := sel.Select(Capacity)
	if err != nil {
		return nil, fmt.Errorf("selecting team: %w", err)
	}
	for _, s := range species {
		m, err := monster.New(s, t.simple, 1)
		if err != nil {
			return nil, fmt.Errorf("creating %v: %w", s, err)
		}
		if err := t.Add(m); err != nil {
			return nil, err
		}
		t.snapshot = append(t.snapshot, m.Fresh())
	}

	return t, nil
}

func (t *Team) newRoster() roster {
	switch t.mode {
	case ModeFront:
		return newStackRoster()
	case ModeBack:
		return newQueueRoster()
	default:
		return newSortedRoster(t.sortKey, t.descending)
	}
}

// Mode returns the team's ordering mode.
func (t *Team) Mode() Mode { return t.mode }

// SortKey returns the PRIORITY sort key (SortNone for other modes).
func (t *Team) SortKey() SortKey { return t.sortKey }

// Descending reports the current PRIORITY direction.
func (t *Team) Descending() bool {
	if r, ok := t.roster.(*sortedRoster); ok {
		return r.descending
	}
	return t.descending
}

// Len returns the number of monsters currently in the team.
func (t *Team) Len() int { return t.roster.len() }

// Add inserts m according to the team's mode.
func (t *Team) Add(m *monster.Monster) error {
	if m == nil {
		return ErrNilMonster
	}
	if t.roster.len() >= Capacity {
		return ErrTeamFull
	}
	t.roster.push(m)
	return nil
}

// Retrieve removes and returns the next monster according to the team's mode.
func (t *Team) Retrieve() (*monster.Monster, error) {
	if t.roster.len() == 0 {
		return nil, ErrTeamEmpty
	}
	return t.roster.pop(), nil
}

// Special applies the mode's reordering:
//   - FRONT reverses the top three monsters
//   - BACK moves the later half, reversed, ahead of the earlier half
//   - PRIORITY flips the sort direction and re-sorts
func (t *Team) Special() {
	t.roster.special()
}

// Reset restores the roster captured at construction with fresh,
// full-HP monsters at their starting level and the initial direction.
func (t *Team) Reset() {
	t.roster = t.newRoster()
	for _, m := range t.snapshot {
		t.roster.push(m.Fresh())
	}
}

// Monsters returns the monsters in the order they would be retrieved.
func (t *Team) Monsters() []*monster.Monster {
	return t.roster.items()
}

// Snapshot returns fresh copies of the roster captured at construction, in
// insertion order.
func (t *Team) Snapshot() []*monster.Monster {
	out := make([]*monster.Monster, len(t.snapshot))
	for i, m := range t.snapshot {
		out[i] = m.Fresh()
	}
	return out
}

// ChooseAction asks the team's policy what active should do against opponent.
func (t *Team) ChooseAction(active, opponent *monster.Monster) Action {
	return t.chooser.ChooseAction(active, opponent)
}

// String lists the team's mode and monsters in retrieval order.
func (t *Team) String() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(t.mode.String()))
	b.WriteString("[")
	for i, m := range t.Monsters() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(m.String())
	}
	b.WriteString("]")
	return b.String()
}

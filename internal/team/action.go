package team

import "github.com/samdwyer/monstertower/internal/monster"

// Action is what a team's active monster does on a turn.
type Action int

const (
	ActionAttack Action = iota
	ActionSwap
	ActionSpecial
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionSwap:
		return "swap"
	case ActionSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// ActionChooser decides a team's action for a turn given its active monster
// and the opponent's.
type ActionChooser interface {
	ChooseAction(active, opponent *monster.Monster) Action
}

// ActionFunc adapts a function to ActionChooser.
type ActionFunc func(active, opponent *monster.Monster) Action

// ChooseAction calls f.
func (f ActionFunc) ChooseAction(active, opponent *monster.Monster) Action {
	return f(active, opponent)
}

// DefaultActionChooser attacks when the active monster is at least as fast
// or has at least as much HP as the opponent, and swaps otherwise.
var DefaultActionChooser ActionChooser = ActionFunc(func(active, opponent *monster.Monster) Action {
	if active.Speed() >= opponent.Speed() || active.HP() >= opponent.HP() {
		return ActionAttack
	}
	return ActionSwap
})

// Always returns a chooser that always picks a.
func Always(a Action) ActionChooser {
	return ActionFunc(func(*monster.Monster, *monster.Monster) Action { return a })
}

// Package game wires configuration, game data, teams, the battle engine
// and the tower into a runnable session.
package game

// State represents the current run state.
type State int

const (
	// StateReady means another battle can be played.
	StateReady State = iota
	// StateComplete means the run has no battles left.
	StateComplete
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// pkg/pipeline/state.go
package pipeline

import "fmt"

// State is where a run is in its lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateStagingLoaded
	StateProfiled
	StateCleaned
	StateCanonicalLoaded
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateStagingLoaded:
		return "StagingLoaded"
	case StateProfiled:
		return "Profiled"
	case StateCleaned:
		return "Cleaned"
	case StateCanonicalLoaded:
		return "CanonicalLoaded"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// next lists the single forward step out of each state. Any state may also
// drop back to StateDisconnected when the run ends.
var next = map[State]State{
	StateDisconnected:  StateStagingLoaded,
	StateStagingLoaded: StateProfiled,
	StateProfiled:      StateCleaned,
	StateCleaned:       StateCanonicalLoaded,
}

// canTransition reports whether a run may move from one state to another.
func canTransition(from, to State) bool {
	if to == StateDisconnected {
		return true
	}
	n, ok := next[from]
	return ok && n == to
}

package session

// State is the position of a session in its purchase loop.
type State int

const (
	StateInit State = iota
	StateReady
	StatePurchasing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateReady:
		return "READY"
	case StatePurchasing:
		return "PURCHASING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

package processor

// State tracks a single donation instruction through its lifecycle.
// Transitions are strictly Received -> Validated -> Applied, with
// Rejected reachable from Received or Validated.
type State uint8

const (
	StateReceived State = iota
	StateValidated
	StateApplied
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateValidated:
		return "validated"
	case StateApplied:
		return "applied"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

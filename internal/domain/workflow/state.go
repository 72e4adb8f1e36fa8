package workflow

// State represents a phase of a receipt upload
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateInFlight   State = "IN_FLIGHT"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

var validStates = map[State]bool{
	StateNotStarted: true,
	StateInFlight:   true,
	StateCompleted:  true,
	StateFailed:     true,
}

// IsSettled returns true if no upload is outstanding in this state
func (s State) IsSettled() bool {
	return s != StateInFlight
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known upload state
func (s State) IsValid() bool {
	return validStates[s]
}

package workflow

import "context"

// StateMachine tracks the current state and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is configured for the current state
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the first target whose guard passes
	Fire(ctx context.Context, trigger Trigger) error
}

// NewUploadMachine builds the receipt upload lifecycle:
//
//	NOT_STARTED/COMPLETED/FAILED/IN_FLIGHT --START--> IN_FLIGHT
//	IN_FLIGHT --COMPLETE--> COMPLETED  (no other upload outstanding)
//	IN_FLIGHT --COMPLETE--> IN_FLIGHT  (another upload outstanding)
//	IN_FLIGHT --FAIL--> FAILED / IN_FLIGHT (same guards)
//
// outstanding reports whether another upload is still running once the
// one being settled is accounted for.
func NewUploadMachine(outstanding GuardFunc) StateMachine {
	idle := func(ctx context.Context) bool { return !outstanding(ctx) }

	b := NewBuilder()
	for _, s := range []State{StateNotStarted, StateInFlight, StateCompleted, StateFailed} {
		b.Configure(s).Permit(TriggerStart, StateInFlight)
	}
	b.Configure(StateInFlight).
		PermitIf(TriggerComplete, StateCompleted, idle).
		PermitIf(TriggerComplete, StateInFlight, outstanding).
		PermitIf(TriggerFail, StateFailed, idle).
		PermitIf(TriggerFail, StateInFlight, outstanding)

	return b.Build(StateNotStarted)
}

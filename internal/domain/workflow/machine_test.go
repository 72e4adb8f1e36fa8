package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsSettled(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateNotStarted, true},
		{StateInFlight, false},
		{StateCompleted, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsSettled(); got != tt.expected {
				t.Errorf("State.IsSettled() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StateNotStarted, true},
		{"valid state", StateFailed, true},
		{"invalid state", State("UPLOADING"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	NewBuilder().Build(State("INVALID"))
}

func TestBuilder_BuiltMachinesAreIndependent(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateNotStarted).Permit(TriggerStart, StateInFlight)

	first := b.Build(StateNotStarted)
	b.Configure(StateInFlight).Permit(TriggerFail, StateFailed)
	second := b.Build(StateNotStarted)

	ctx := context.Background()
	if err := first.Fire(ctx, TriggerStart); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if first.CanFire(TriggerFail) {
		t.Error("machine built before FAIL was configured should not permit it")
	}
	if second.State() != StateNotStarted {
		t.Errorf("second machine state = %v, want %v", second.State(), StateNotStarted)
	}
}

func TestUploadMachine_Lifecycle(t *testing.T) {
	ctx := context.Background()
	outstanding := false
	m := NewUploadMachine(func(context.Context) bool { return outstanding })

	if m.State() != StateNotStarted {
		t.Fatalf("initial state = %v, want %v", m.State(), StateNotStarted)
	}

	if err := m.Fire(ctx, TriggerComplete); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("COMPLETE from NOT_STARTED error = %v, want ErrInvalidTransition", err)
	}

	steps := []struct {
		trigger     Trigger
		outstanding bool
		want        State
	}{
		{TriggerStart, false, StateInFlight},
		{TriggerComplete, false, StateCompleted},
		{TriggerStart, false, StateInFlight},
		{TriggerFail, false, StateFailed},
		{TriggerStart, false, StateInFlight},
		{TriggerStart, false, StateInFlight},
		{TriggerComplete, true, StateInFlight},
		{TriggerComplete, false, StateCompleted},
	}

	for i, step := range steps {
		outstanding = step.outstanding
		if err := m.Fire(ctx, step.trigger); err != nil {
			t.Fatalf("step %d: Fire(%s) error = %v", i, step.trigger, err)
		}
		if m.State() != step.want {
			t.Fatalf("step %d: state = %v, want %v", i, m.State(), step.want)
		}
	}
}

func TestUploadMachine_FailWhileAnotherOutstanding(t *testing.T) {
	ctx := context.Background()
	outstanding := true
	m := NewUploadMachine(func(context.Context) bool { return outstanding })

	_ = m.Fire(ctx, TriggerStart)
	if err := m.Fire(ctx, TriggerFail); err != nil {
		t.Fatalf("Fire(FAIL) error = %v", err)
	}
	if m.State() != StateInFlight {
		t.Errorf("state = %v, want %v", m.State(), StateInFlight)
	}

	outstanding = false
	if err := m.Fire(ctx, TriggerComplete); err != nil {
		t.Fatalf("Fire(COMPLETE) error = %v", err)
	}
	if m.State() != StateCompleted {
		t.Errorf("state = %v, want %v", m.State(), StateCompleted)
	}
}

func TestMachine_GuardFailed(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateInFlight).PermitIf(TriggerComplete, StateCompleted, func(context.Context) bool { return false })
	m := b.Build(StateInFlight)

	err := m.Fire(context.Background(), TriggerComplete)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want ErrGuardFailed", err)
	}
	if m.State() != StateInFlight {
		t.Errorf("state changed to %v after failed guard", m.State())
	}
}

package sqslistener

import "testing"

func TestStateTransitions(t *testing.T) {
	scenarios := []struct {
		name  string
		from  State
		to    State
		valid bool
	}{
		{name: "created to starting", from: StateCreated, to: StateStarting, valid: true},
		{name: "created to failed", from: StateCreated, to: StateFailed, valid: true},
		{name: "starting to running", from: StateStarting, to: StateRunning, valid: true},
		{name: "starting to stopping", from: StateStarting, to: StateStopping, valid: true},
		{name: "starting to failed", from: StateStarting, to: StateFailed, valid: true},
		{name: "running to stopping", from: StateRunning, to: StateStopping, valid: true},
		{name: "running to failed", from: StateRunning, to: StateFailed, valid: true},
		{name: "stopping to stopped", from: StateStopping, to: StateStopped, valid: true},
		{name: "stopping to failed", from: StateStopping, to: StateFailed, valid: true},
		{name: "stopped can restart", from: StateStopped, to: StateStarting, valid: true},
		{name: "stopped to failed", from: StateStopped, to: StateFailed, valid: true},
		{name: "failed can restart", from: StateFailed, to: StateStarting, valid: true},
		{name: "failed to stopping", from: StateFailed, to: StateStopping, valid: true},
		{name: "failed to stopped", from: StateFailed, to: StateStopped, valid: true},
		{name: "created to running skips starting", from: StateCreated, to: StateRunning, valid: false},
		{name: "stopped to running skips starting", from: StateStopped, to: StateRunning, valid: false},
		{name: "running to created backwards", from: StateRunning, to: StateCreated, valid: false},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			got := canTransition(scenario.from, scenario.to)
			if got != scenario.valid {
				t.Errorf("canTransition(%s, %s) = %v, want %v", scenario.from, scenario.to, got, scenario.valid)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	scenarios := map[State]string{
		StateCreated:  "CREATED",
		StateStarting: "STARTING",
		StateRunning:  "RUNNING",
		StateStopping: "STOPPING",
		StateStopped:  "STOPPED",
		StateFailed:   "FAILED",
	}

	for state, want := range scenarios {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

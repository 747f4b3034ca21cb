package gate_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"codebench/internal/testutil"
	"codebench/internal/workbench/gate"
)

func TestGateTransitions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		first     gate.Kind
		second    gate.Kind
		wantState gate.State
	}{
		{name: "run then run", first: gate.Run, second: gate.Run, wantState: gate.RunPending},
		{name: "run then submit", first: gate.Run, second: gate.Submit, wantState: gate.RunPending},
		{name: "submit then run", first: gate.Submit, second: gate.Run, wantState: gate.SubmitPending},
		{name: "submit then submit", first: gate.Submit, second: gate.Submit, wantState: gate.SubmitPending},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var g gate.Gate
			testutil.AssertEqual(t, g.State(), gate.Idle)
			testutil.AssertTrue(t, g.TryAcquire(tt.first), "first acquire should succeed")
			testutil.AssertFalse(t, g.TryAcquire(tt.second), "second acquire should be refused")
			testutil.AssertEqual(t, g.State(), tt.wantState)
			testutil.AssertTrue(t, g.Busy(), "gate should be busy")

			g.Release()
			testutil.AssertEqual(t, g.State(), gate.Idle)
			testutil.AssertTrue(t, g.TryAcquire(tt.second), "acquire after release should succeed")
		})
	}
}

func TestGateRejectsUnknownKind(t *testing.T) {
	var g gate.Gate
	testutil.AssertFalse(t, g.TryAcquire(gate.Kind(42)), "unknown kind should be refused")
	testutil.AssertEqual(t, g.State(), gate.Idle)
}

func TestGateReleaseWhenIdle(t *testing.T) {
	var g gate.Gate
	g.Release()
	testutil.AssertEqual(t, g.State(), gate.Idle)
}

func TestGateAdmitsOneConcurrentCaller(t *testing.T) {
	var g gate.Gate
	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		kind := gate.Run
		if i%2 == 1 {
			kind = gate.Submit
		}
		go func() {
			defer wg.Done()
			if g.TryAcquire(kind) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	testutil.AssertEqual(t, admitted.Load(), int32(1))
}

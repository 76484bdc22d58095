package solve

import (
	"testing"
	"time"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
)

func TestCollapseStatus(t *testing.T) {
	cases := []struct {
		in   cmpb.CpSolverStatus
		want Status
	}{
		{cmpb.CpSolverStatus_OPTIMAL, StatusOptimal},
		{cmpb.CpSolverStatus_FEASIBLE, StatusFeasible},
		{cmpb.CpSolverStatus_INFEASIBLE, StatusInfeasible},
		{cmpb.CpSolverStatus_UNKNOWN, StatusFailed},
		{cmpb.CpSolverStatus_MODEL_INVALID, StatusFailed},
	}
	for _, c := range cases {
		if got := collapseStatus(c.in); got != c.want {
			t.Errorf("collapseStatus(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestStatusSuccess(t *testing.T) {
	if !StatusOptimal.Success() {
		t.Error("OPTIMAL should be success")
	}
	if !StatusFeasible.Success() {
		t.Error("FEASIBLE should be success")
	}
	if StatusInfeasible.Success() {
		t.Error("INFEASIBLE should not be success")
	}
	if StatusFailed.Success() {
		t.Error("FAILED should not be success")
	}
}

// fakeSolver is a scripted Solver that returns its results in sequence,
// without linking the native CP-SAT library; this package only checks that
// it satisfies the Solver interface.
type fakeSolver struct {
	results []Result
	calls   int
}

func (f *fakeSolver) Solve(_ *cmpb.CpModelProto, _ time.Duration, _ int32) (Result, error) {
	r := f.results[f.calls]
	f.calls++
	return r, nil
}

func TestFakeSolverImplementsSolver(t *testing.T) {
	var _ Solver = &fakeSolver{results: []Result{{Status: StatusOptimal}}}
}

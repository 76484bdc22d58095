package orchestrator

import (
	"context"
	"testing"
	"time"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	"go.uber.org/zap"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/settings"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/solve"
)

// stubSolver returns a fixed status regardless of the model submitted, and
// fabricates an all-Rest solution so the assembler has something to read.
type stubSolver struct {
	status solve.Status
}

func (s stubSolver) Solve(m *cmpb.CpModelProto, _ time.Duration, _ int32) (solve.Result, error) {
	solution := make([]int64, len(m.GetVariables()))
	// Every x[_,_,Rest] variable name ends in "_k4"; set those true so the
	// exactly-one-per-day constraint is satisfied in the fabricated solution.
	for i, v := range m.GetVariables() {
		if len(v.GetName()) >= 3 && v.GetName()[len(v.GetName())-2:] == "k4" {
			solution[i] = 1
		}
	}
	return solve.Result{
		Status:   s.status,
		Response: &cmpb.CpSolverResponse{Status: statusProto(s.status), Solution: solution},
	}, nil
}

func statusProto(s solve.Status) cmpb.CpSolverStatus {
	switch s {
	case solve.StatusOptimal:
		return cmpb.CpSolverStatus_OPTIMAL
	case solve.StatusFeasible:
		return cmpb.CpSolverStatus_FEASIBLE
	case solve.StatusInfeasible:
		return cmpb.CpSolverStatus_INFEASIBLE
	default:
		return cmpb.CpSolverStatus_UNKNOWN
	}
}

func tinyStaff() []model.StaffRecord {
	return []model.StaffRecord{
		{StaffID: "1", Group: "A", Active: true, SuctionQualified: true},
		{StaffID: "2", Group: "A", Active: true},
		{StaffID: "3", Group: "A", Active: true},
		{StaffID: "4", Group: "A", Active: true},
		{StaffID: "5", Group: "A", Active: true},
	}
}

func TestRunFullSuccess(t *testing.T) {
	rc := RunContext{Year: 2025, Month: 3}
	solver := stubSolver{status: solve.StatusOptimal}

	outcome := Run(context.Background(), rc, tinyStaff(), nil, nil, solver, zap.NewNop())

	if outcome.ExitCode != ExitFullSuccess {
		t.Fatalf("ExitCode = %v, want ExitFullSuccess", outcome.ExitCode)
	}
	if outcome.AnyRelaxedOrFailed {
		t.Fatal("expected AnyRelaxedOrFailed = false on full success")
	}
	if len(outcome.Roster) == 0 {
		t.Fatal("expected a non-empty roster")
	}
}

func TestRunTotalFailureWithoutPartialOutput(t *testing.T) {
	rc := RunContext{Year: 2025, Month: 3, PartialOutputEnabled: false}
	solver := stubSolver{status: solve.StatusInfeasible}

	outcome := Run(context.Background(), rc, tinyStaff(), nil, nil, solver, zap.NewNop())

	if outcome.ExitCode != ExitTotalFailure {
		t.Fatalf("ExitCode = %v, want ExitTotalFailure", outcome.ExitCode)
	}
	if len(outcome.Roster) != 0 {
		t.Fatal("expected an empty roster on total failure")
	}
	if len(outcome.Report.Suggestions) == 0 {
		t.Fatal("expected a recovery suggestion for the failed group")
	}
}

func TestDaysInAndSettingsWiring(t *testing.T) {
	if got := daysIn(2025, 3); got != 31 {
		t.Fatalf("daysIn(2025,3) = %d, want 31", got)
	}
	if got := daysIn(2024, 2); got != 29 {
		t.Fatalf("daysIn(2024,2) = %d, want 29 (leap year)", got)
	}

	report := model.NewDiagnosticReport()
	resolved := settings.Resolve(nil, 2025, 3, map[string]bool{}, 31, report, zap.NewNop())
	if resolved.MonthlyHolidays == 0 {
		t.Fatal("expected a default monthly holidays value")
	}
}

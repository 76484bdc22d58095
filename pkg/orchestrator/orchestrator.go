// Package orchestrator wires the settings resolver, pre-flight diagnostic,
// group decomposer, model builder, solver driver, and assembler into a
// single run. It owns the DiagnosticReport and the per-group state
// machine; every other stage receives it only for append-only use.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/assemble"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/decompose"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/modelbuild"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/preflight"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/settings"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/solve"
)

// RunContext carries the parameters a run needs explicitly rather than
// through global module-level configuration: target month and the per-run
// knobs a deployment config exposes. It does not hold resolved settings;
// Run resolves those from the settings rows and passes them alongside it.
type RunContext struct {
	Year, Month          int
	PartialOutputEnabled bool
	HardPinTopPriority   bool
	SolverTimeLimit      time.Duration
	SolverWorkers        int32
}

// ExitCode mirrors the process-level exit codes: full success, partial
// success, or total failure.
type ExitCode int

const (
	ExitFullSuccess    ExitCode = 0
	ExitPartialSuccess ExitCode = 1
	ExitTotalFailure   ExitCode = 2
)

// Outcome is everything a run produces: the emitted roster (possibly
// partial or empty), the diagnostic report, and the process exit code.
type Outcome struct {
	Roster   []model.Assignment
	Report   *model.DiagnosticReport
	ExitCode ExitCode
	// AnyRelaxedOrFailed is true when any group required the relaxed
	// profile or failed outright; the caller uses this to suppress the
	// downstream notification.
	AnyRelaxedOrFailed bool
}

// Run executes the full pipeline for one target month.
func Run(
	ctx context.Context,
	rc RunContext,
	staff []model.StaffRecord,
	holidayRequests []model.HolidayRequest,
	settingsRows []settings.Row,
	solver solve.Solver,
	logger *zap.Logger,
) Outcome {
	report := model.NewDiagnosticReport()
	daysInMonth := daysIn(rc.Year, rc.Month)

	allStaff := make(map[string]model.StaffRecord, len(staff))
	knownStaff := make(map[string]bool, len(staff))
	for _, s := range staff {
		allStaff[s.StaffID] = s
		knownStaff[s.StaffID] = true
	}

	resolved := settings.Resolve(settingsRows, rc.Year, rc.Month, knownStaff, daysInMonth, report, logger)

	groups := decompose.Decompose(staff, holidayRequests, resolved.PreAssignments, logger)

	preflightGroups := make([]preflight.Group, 0, len(groups))
	for _, g := range groups {
		preflightGroups = append(preflightGroups, preflight.Group{
			GroupID:         g.GroupID,
			Staff:           g.Staff,
			HolidayRequests: g.HolidayRequests,
		})
	}
	preflight.Run(preflightGroups, rc.Year, rc.Month, resolved, allStaff, report, logger)

	var perGroupRoster [][]model.Assignment
	anyRelaxedOrFailed := false

	for _, g := range groups {
		rows, outcome, relaxedOrFailed := solveGroup(ctx, rc, g, daysInMonth, resolved, solver, logger)
		report.SetGroupOutcome(outcome)
		if relaxedOrFailed {
			anyRelaxedOrFailed = true
		}
		if outcome.Success {
			perGroupRoster = append(perGroupRoster, rows)
		} else {
			addFailureSuggestion(report, g, outcome)
			if !rc.PartialOutputEnabled {
				break
			}
		}
	}

	roster := assemble.Concatenate(perGroupRoster)

	return Outcome{
		Roster:             roster,
		Report:             report,
		ExitCode:           decideExitCode(report, roster),
		AnyRelaxedOrFailed: anyRelaxedOrFailed,
	}
}

// solveGroup runs one group's sub-problem through the state machine:
// Unattempted -> Attempting(standard) -> (Solved | Attempting(relaxed)) ->
// (Solved | Failed).
func solveGroup(
	ctx context.Context,
	rc RunContext,
	g decompose.Group,
	daysInMonth int,
	resolved *settings.Resolved,
	solver solve.Solver,
	logger *zap.Logger,
) ([]model.Assignment, model.GroupOutcome, bool) {
	timeLimit := rc.SolverTimeLimit
	if timeLimit == 0 {
		timeLimit = solve.DefaultTimeLimit
	}
	workers := rc.SolverWorkers
	if workers == 0 {
		workers = solve.DefaultWorkers
	}

	rows, status, details, err := attempt(ctx, rc, g, daysInMonth, resolved, false, timeLimit, workers, solver, logger)
	if err != nil {
		return nil, failedOutcome(g.GroupID, err.Error(), details), true
	}
	if status.Success() {
		return rows, model.GroupOutcome{GroupID: g.GroupID, Success: true, Message: status.String(), Details: details}, false
	}
	if status != solve.StatusInfeasible || !rc.PartialOutputEnabled {
		logger.Warn("group solve failed under standard profile", zap.String("group_id", g.GroupID), zap.String("status", status.String()))
		return nil, failedOutcome(g.GroupID, fmt.Sprintf("standard profile: %s", status), details), true
	}

	logger.Info("retrying group with relaxed profile", zap.String("group_id", g.GroupID))
	rows, relaxedStatus, relaxedDetails, err := attempt(ctx, rc, g, daysInMonth, resolved, true, timeLimit, workers, solver, logger)
	if err != nil {
		return nil, failedOutcome(g.GroupID, err.Error(), relaxedDetails), true
	}
	if relaxedStatus.Success() {
		ok := true
		return rows, model.GroupOutcome{
			GroupID:        g.GroupID,
			Success:        true,
			Message:        fmt.Sprintf("relaxed profile: %s", relaxedStatus),
			Details:        relaxedDetails,
			RelaxedSuccess: &ok,
		}, true
	}

	return nil, failedOutcome(g.GroupID, fmt.Sprintf("relaxed profile: %s", relaxedStatus), relaxedDetails), true
}

// attempt builds and solves one group's sub-problem, returning the
// structured details (staff/day/request counts, solver status) that back
// both the log line and the diagnostic report's group result.
func attempt(
	ctx context.Context,
	rc RunContext,
	g decompose.Group,
	daysInMonth int,
	resolved *settings.Resolved,
	relaxed bool,
	timeLimit time.Duration,
	workers int32,
	solver solve.Solver,
	logger *zap.Logger,
) ([]model.Assignment, solve.Status, map[string]any, error) {
	problem := modelbuild.Problem{
		Group:               g,
		Year:                rc.Year,
		Month:               rc.Month,
		DaysInMonth:         daysInMonth,
		MonthlyHolidays:     resolved.MonthlyHolidays,
		MaxConsecutiveWork:  resolved.MaxConsecutiveWorkDays,
		MaxMonthlyWorkUnits: resolved.MaxMonthlyWorkUnits,
		Relaxed:             relaxed,
		HardPinTopPriority:  rc.HardPinTopPriority,
	}

	details := map[string]any{
		"staff_count":      len(g.Staff),
		"days":             daysInMonth,
		"holiday_requests": len(g.HolidayRequests),
		"pre_assignments":  len(g.PreAssignments),
		"relaxed":          relaxed,
	}

	stageLogger := logger.With(zap.String("group_id", g.GroupID), zap.Bool("relaxed", relaxed))

	built, err := modelbuild.Build(problem, sundayChecker(rc.Year, rc.Month), stageLogger)
	if err != nil {
		return nil, solve.StatusFailed, details, fmt.Errorf("failed to build model for group %s: %w", g.GroupID, err)
	}

	m, err := built.Model.Model()
	if err != nil {
		return nil, solve.StatusFailed, details, fmt.Errorf("failed to instantiate model for group %s: %w", g.GroupID, err)
	}
	details["constraint_count"] = len(m.GetConstraints())
	details["variable_count"] = len(m.GetVariables())

	result, err := solver.Solve(m, timeLimit, workers)
	if err != nil {
		return nil, solve.StatusFailed, details, fmt.Errorf("solver invocation failed for group %s: %w", g.GroupID, err)
	}
	details["solver_status"] = result.Status.String()

	if !result.Status.Success() {
		return nil, result.Status, details, nil
	}

	rows, err := assemble.Group(g, built, result.Response, resolved, rc.Year, rc.Month)
	if err != nil {
		return nil, solve.StatusFailed, details, fmt.Errorf("failed to assemble solution for group %s: %w", g.GroupID, err)
	}
	return rows, result.Status, details, nil
}

func failedOutcome(groupID, message string, details map[string]any) model.GroupOutcome {
	return model.GroupOutcome{GroupID: groupID, Success: false, Message: message, Details: details}
}

// addFailureSuggestion infers one recovery suggestion for a failed group,
// in priority order: night capacity, then headcount, then request load.
func addFailureSuggestion(report *model.DiagnosticReport, g decompose.Group, outcome model.GroupOutcome) {
	nightCapable := 0
	for _, s := range g.Staff {
		if !s.NightExempt {
			nightCapable++
		}
	}

	switch {
	case nightCapable == 0:
		report.AddSuggestion(model.CategoryNightCapacity,
			fmt.Sprintf("group %s: add a night-eligible staff member", g.GroupID), outcome.Message)
	case len(g.Staff) < preflight.MinDailyStaff:
		report.AddSuggestion(model.CategoryGroupHeadcount,
			fmt.Sprintf("group %s: increase headcount to at least %d", g.GroupID, preflight.MinDailyStaff), outcome.Message)
	default:
		report.AddSuggestion(model.CategoryRequestConcentration,
			fmt.Sprintf("group %s: reduce holiday-request load or borrow staff from another group", g.GroupID), outcome.Message)
	}
}

func decideExitCode(report *model.DiagnosticReport, roster []model.Assignment) ExitCode {
	if len(roster) == 0 {
		return ExitTotalFailure
	}
	for _, outcome := range report.GroupResults {
		if !outcome.Success || outcome.RelaxedSuccess != nil {
			return ExitPartialSuccess
		}
	}
	return ExitFullSuccess
}

func sundayChecker(year, month int) func(int) bool {
	return func(dayIndex int) bool {
		return time.Date(year, time.Month(month), dayIndex+1, 0, 0, 0, 0, time.UTC).Weekday() == time.Sunday
	}
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

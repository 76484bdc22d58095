// Package solve drives the CP-SAT backend: it submits a built model with a
// bounded time budget and worker count, and collapses the backend's status
// into the outcome the orchestrator's per-group state machine expects.
package solve

import (
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"google.golang.org/protobuf/proto"
)

// DefaultTimeLimit and DefaultWorkers mirror the driver contract: 60
// seconds and 4 search workers per group.
const (
	DefaultTimeLimit = 60 * time.Second
	DefaultWorkers   = 4
)

// Status collapses the backend's four recognized statuses.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
	StatusFailed // UNKNOWN or MODEL_INVALID, collapsed into Failed(reason)
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	default:
		return "FAILED"
	}
}

// Success reports whether the status counts as a successfully solved
// sub-problem; OPTIMAL and FEASIBLE are both accepted.
func (s Status) Success() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Result is the outcome of one solve attempt.
type Result struct {
	Status   Status
	Reason   string
	Response *cmpb.CpSolverResponse
}

// Solver is the narrow interface the orchestrator depends on, so tests can
// substitute a fake without linking the native CP-SAT library.
type Solver interface {
	Solve(model *cmpb.CpModelProto, timeLimit time.Duration, workers int32) (Result, error)
}

// CPSATSolver is the production Solver backed by the real CP-SAT binding.
type CPSATSolver struct{}

// NewCPSATSolver returns a Solver backed by cpmodel.SolveCpModelWithParameters.
func NewCPSATSolver() *CPSATSolver {
	return &CPSATSolver{}
}

// Solve submits the model and collapses the response status.
func (CPSATSolver) Solve(m *cmpb.CpModelProto, timeLimit time.Duration, workers int32) (Result, error) {
	params := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(timeLimit.Seconds()),
		NumSearchWorkers: proto.Int32(workers),
	}

	response, err := cpmodel.SolveCpModelWithParameters(m, params)
	if err != nil {
		return Result{}, fmt.Errorf("cp-sat solve failed: %w", err)
	}

	return Result{
		Status:   collapseStatus(response.GetStatus()),
		Reason:   response.GetStatus().String(),
		Response: response,
	}, nil
}

func collapseStatus(s cmpb.CpSolverStatus) Status {
	switch s {
	case cmpb.CpSolverStatus_OPTIMAL:
		return StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		return StatusInfeasible
	default: // UNKNOWN, MODEL_INVALID
		return StatusFailed
	}
}

// BooleanValue reads a BoolVar's value out of a solved response.
func BooleanValue(r *cmpb.CpSolverResponse, v cpmodel.BoolVar) bool {
	return cpmodel.SolutionBooleanValue(r, v)
}

// Package assemble turns a solved group's decision variables into the
// canonical roster rows, and concatenates groups in deterministic order.
package assemble

import (
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/decompose"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/modelbuild"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/settings"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/shiftkind"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/solve"
)

// Group emits one row per (staff, day) for a solved group's sub-problem.
func Group(g decompose.Group, built *modelbuild.Built, response *cmpb.CpSolverResponse, resolved *settings.Resolved, year, month int) ([]model.Assignment, error) {
	var rows []model.Assignment

	for s, staff := range g.Staff {
		for day := 0; day < len(built.X[s]); day++ {
			kind, err := assignedKind(built.X[s][day], response)
			if err != nil {
				return nil, fmt.Errorf("group %s staff %s day %d: %w", g.GroupID, staff.StaffID, day+1, err)
			}
			date := time.Date(year, time.Month(month), day+1, 0, 0, 0, 0, time.UTC)
			rows = append(rows, model.NewAssignment(staff.StaffID, g.GroupID, resolved.DisplayName(kind), date, kind))
		}
	}

	return rows, nil
}

func assignedKind(vars []cpmodel.BoolVar, response *cmpb.CpSolverResponse) (shiftkind.Kind, error) {
	for kind := 0; kind < shiftkind.Count; kind++ {
		if solve.BooleanValue(response, vars[kind]) {
			return shiftkind.Kind(kind), nil
		}
	}
	return 0, fmt.Errorf("no shift kind assigned (violates exactly-one-per-day)")
}

// Concatenate merges per-group roster tables in group-id order. Groups is
// expected already sorted by group id (decompose.Decompose guarantees
// this); Concatenate preserves whatever order it is given.
func Concatenate(perGroup [][]model.Assignment) []model.Assignment {
	var all []model.Assignment
	for _, g := range perGroup {
		all = append(all, g...)
	}
	return all
}

package assemble

import (
	"testing"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/shiftkind"
)

func TestAssignedKindReadsTheTrueVariable(t *testing.T) {
	cp := cpmodel.NewCpModelBuilder()
	vars := make([]cpmodel.BoolVar, shiftkind.Count)
	for i := range vars {
		vars[i] = cp.NewBoolVar()
	}

	// Fabricate a solver response where only the Night variable is true.
	solution := make([]int64, shiftkind.Count)
	solution[shiftkind.Night] = 1
	response := &cmpb.CpSolverResponse{Solution: solution}

	got, err := assignedKind(vars, response)
	if err != nil {
		t.Fatalf("assignedKind returned error: %v", err)
	}
	if got != shiftkind.Night {
		t.Fatalf("assignedKind = %v, want Night", got)
	}
}

func TestAssignedKindErrorsWhenNoneTrue(t *testing.T) {
	cp := cpmodel.NewCpModelBuilder()
	vars := make([]cpmodel.BoolVar, shiftkind.Count)
	for i := range vars {
		vars[i] = cp.NewBoolVar()
	}

	response := &cmpb.CpSolverResponse{Solution: make([]int64, shiftkind.Count)}

	if _, err := assignedKind(vars, response); err == nil {
		t.Fatal("expected an error when no variable is true")
	}
}

func TestConcatenatePreservesGroupOrder(t *testing.T) {
	groupA := []model.Assignment{{StaffID: "1"}}
	groupB := []model.Assignment{{StaffID: "2"}, {StaffID: "3"}}

	all := Concatenate([][]model.Assignment{groupA, groupB})
	if len(all) != 3 {
		t.Fatalf("got %d rows, want 3", len(all))
	}
	if all[0].StaffID != "1" || all[1].StaffID != "2" || all[2].StaffID != "3" {
		t.Fatalf("unexpected concatenation order: %+v", all)
	}
}

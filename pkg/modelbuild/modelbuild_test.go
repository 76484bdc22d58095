package modelbuild

import (
	"testing"
	"time"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/decompose"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/shiftkind"
	"go.uber.org/zap"
)

func sundayChecker(year, month int) func(int) bool {
	return func(dayIndex int) bool {
		return time.Date(year, time.Month(month), dayIndex+1, 0, 0, 0, 0, time.UTC).Weekday() == time.Sunday
	}
}

func smallGroup(n int) decompose.Group {
	var staff []model.StaffRecord
	for i := 0; i < n; i++ {
		staff = append(staff, model.StaffRecord{StaffID: string(rune('A' + i)), Active: true, SuctionQualified: i == 0})
	}
	return decompose.Group{GroupID: "G1", Staff: staff}
}

func TestBuildProducesExactlyOneVariablePerStaffDay(t *testing.T) {
	g := smallGroup(5)
	p := Problem{
		Group:              g,
		Year:               2025,
		Month:              3,
		DaysInMonth:        31,
		MonthlyHolidays:    9,
		MaxConsecutiveWork: 5,
	}

	built, err := Build(p, sundayChecker(2025, 3), zap.NewNop())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(built.X) != 5 {
		t.Fatalf("got %d staff dimensions, want 5", len(built.X))
	}
	if len(built.X[0]) != 31 {
		t.Fatalf("got %d day dimensions, want 31", len(built.X[0]))
	}
	if len(built.X[0][0]) != shiftkind.Count {
		t.Fatalf("got %d kind dimensions, want %d", len(built.X[0][0]), shiftkind.Count)
	}

	if _, err := built.Model.Model(); err != nil {
		t.Fatalf("Model() returned error: %v", err)
	}
}

func TestBuildAcceptsPreAssignment(t *testing.T) {
	g := smallGroup(3)
	g.PreAssignments = []model.PreAssignment{
		{StaffID: "A", Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), Kind: shiftkind.Night},
	}
	p := Problem{
		Group:              g,
		Year:               2025,
		Month:              3,
		DaysInMonth:        31,
		MonthlyHolidays:    9,
		MaxConsecutiveWork: 5,
	}

	built, err := Build(p, sundayChecker(2025, 3), zap.NewNop())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if _, err := built.Model.Model(); err != nil {
		t.Fatalf("Model() returned error: %v", err)
	}
}

func TestBuildWithMonthlyWorkUnitsCapAndRelaxedProfile(t *testing.T) {
	g := smallGroup(6)
	capUnits := uint32(21)
	p := Problem{
		Group:               g,
		Year:                2025,
		Month:               3,
		DaysInMonth:         31,
		MonthlyHolidays:     9,
		MaxConsecutiveWork:  5,
		MaxMonthlyWorkUnits: &capUnits,
		Relaxed:             true,
	}

	built, err := Build(p, sundayChecker(2025, 3), zap.NewNop())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if _, err := built.Model.Model(); err != nil {
		t.Fatalf("Model() returned error: %v", err)
	}
}

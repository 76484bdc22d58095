package decompose

import (
	"testing"
	"time"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/shiftkind"
	"go.uber.org/zap"
)

func TestDecomposeOrdersGroupsByID(t *testing.T) {
	staff := []model.StaffRecord{
		{StaffID: "1", Group: "B", Active: true},
		{StaffID: "2", Group: "A", Active: true},
	}

	groups := Decompose(staff, nil, nil, zap.NewNop())

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].GroupID != "A" || groups[1].GroupID != "B" {
		t.Fatalf("groups not in deterministic id order: %v, %v", groups[0].GroupID, groups[1].GroupID)
	}
}

func TestDecomposeExcludesInactiveStaff(t *testing.T) {
	staff := []model.StaffRecord{
		{StaffID: "1", Group: "A", Active: false},
		{StaffID: "2", Group: "A", Active: true},
	}

	groups := Decompose(staff, nil, nil, zap.NewNop())

	if len(groups) != 1 || len(groups[0].Staff) != 1 {
		t.Fatalf("expected 1 group with 1 active staff, got %+v", groups)
	}
}

func TestDecomposeFiltersHolidayRequestsAndPreAssignments(t *testing.T) {
	staff := []model.StaffRecord{
		{StaffID: "1", Group: "A", Active: true},
		{StaffID: "2", Group: "B", Active: true},
	}
	requests := []model.HolidayRequest{
		{StaffID: "1", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Priority: 1},
		{StaffID: "2", Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Priority: 1},
		{StaffID: "999", Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), Priority: 1},
	}
	pre := []model.PreAssignment{
		{StaffID: "1", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Kind: shiftkind.Night},
	}

	groups := Decompose(staff, requests, pre, zap.NewNop())

	var a, b Group
	for _, g := range groups {
		if g.GroupID == "A" {
			a = g
		}
		if g.GroupID == "B" {
			b = g
		}
	}

	if len(a.HolidayRequests) != 1 || len(a.PreAssignments) != 1 {
		t.Fatalf("group A: %+v", a)
	}
	if len(b.HolidayRequests) != 1 || len(b.PreAssignments) != 0 {
		t.Fatalf("group B: %+v", b)
	}
}

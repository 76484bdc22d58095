package model

import (
	"testing"
	"time"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/shiftkind"
)

func TestNewAssignmentRest(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	a := NewAssignment("1", "A", "Rest", day, shiftkind.Rest)

	if a.StartTime != "" || a.EndTime != "" {
		t.Fatalf("expected no wall-clock times for Rest, got %+v", a)
	}
	if !a.EndDate.Equal(day) {
		t.Fatalf("expected EndDate == StartDate for Rest, got %v", a.EndDate)
	}
}

func TestNewAssignmentNightSpansMidnight(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	a := NewAssignment("1", "A", "Night", day, shiftkind.Night)

	want := day.AddDate(0, 0, 1)
	if !a.EndDate.Equal(want) {
		t.Fatalf("EndDate = %v, want %v", a.EndDate, want)
	}
	if a.StartTime != "17:00" || a.EndTime != "09:00" {
		t.Fatalf("unexpected wall-clock times: %s-%s", a.StartTime, a.EndTime)
	}
}

func TestNewAssignmentDayDoesNotSpanMidnight(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	a := NewAssignment("1", "A", "Day", day, shiftkind.Day)

	if !a.EndDate.Equal(day) {
		t.Fatalf("expected EndDate == StartDate for Day, got %v", a.EndDate)
	}
}

func TestDiagnosticReportAppendOnly(t *testing.T) {
	report := NewDiagnosticReport()

	report.AddError(CategoryInputData, "bad row", "row 5")
	report.AddWarning(CategoryQualifiedStaff, "no suction-qualified staff", "group B")
	report.AddSuggestion(CategoryNightCapacity, "add a night-eligible staff member", "group A")
	report.SetGroupOutcome(GroupOutcome{GroupID: "A", Success: true})

	if len(report.Errors) != 1 || len(report.Warnings) != 1 || len(report.Suggestions) != 1 {
		t.Fatalf("expected one entry per list, got %+v", report)
	}
	if !report.GroupResults["A"].Success {
		t.Fatal("expected group A outcome to be recorded as success")
	}
}

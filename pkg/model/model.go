// Package model holds the typed records the roster engine operates on:
// staff, holiday requests, pre-assignments, and the assignments it emits.
package model

import (
	"time"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/shiftkind"
)

// StaffRecord is one row of M_staff_YYYYMM.csv.
type StaffRecord struct {
	StaffID          string
	Group            string
	Active           bool
	NightExempt      bool
	SuctionQualified bool
}

// HolidayRequest is one row of T_holiday_YYYYMM.csv. Lower Priority is a
// stronger preference; Priority must be >= 1.
type HolidayRequest struct {
	StaffID  string
	Date     time.Time
	Priority int
}

// PreAssignment forces the (StaffID, Date) decision variable for Kind to
// true. It is derived from a settings row whose key matches
// ASSIGN_<staff_id>_<YYYYMMDD> or ASSIGN_RRULE_<staff_id>_<RRULE>_<shift_key>.
type PreAssignment struct {
	StaffID string
	Date    time.Time
	Kind    shiftkind.Kind
}

// Assignment is one emitted roster row: a single staff member's shift on a
// single day.
type Assignment struct {
	ConfirmedID     string
	StaffID         string
	Group           string
	ShiftName       string
	StartDate       time.Time
	StartTime       string
	EndDate         time.Time
	EndTime         string
	RegisteredAt    string
	CalendarEventID string
}

// NewAssignment builds an Assignment from a resolved shift kind, applying
// the data model's invariant that EndDate == StartDate + 1 iff kind == Night,
// otherwise EndDate == StartDate.
func NewAssignment(staffID, group, displayName string, day time.Time, kind shiftkind.Kind) Assignment {
	a := Assignment{
		StaffID:   staffID,
		Group:     group,
		ShiftName: displayName,
		StartDate: day,
		EndDate:   day,
	}

	if kind == shiftkind.Rest {
		return a
	}

	w := shiftkind.WindowOf(kind)
	a.StartTime = clockString(w.StartHour, w.StartMinute)
	a.EndTime = clockString(w.EndHour, w.EndMinute)
	if w.SpansMidnight {
		a.EndDate = day.AddDate(0, 0, 1)
	}
	return a
}

func clockString(hour, minute int) string {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format("15:04")
}

// DiagnosticCategory tags a DiagnosticReport entry by kind of finding.
type DiagnosticCategory string

const (
	CategoryGroupHeadcount       DiagnosticCategory = "group-headcount"
	CategoryNightCapacity        DiagnosticCategory = "night-capacity"
	CategoryQualifiedStaff       DiagnosticCategory = "qualified-staff"
	CategoryRequestConcentration DiagnosticCategory = "request-concentration"
	CategorySolverFailure        DiagnosticCategory = "solver-failure"
	CategoryInputData            DiagnosticCategory = "input-data"
)

// Finding is one entry in a DiagnosticReport's Errors, Warnings, or
// Suggestions lists.
type Finding struct {
	Category DiagnosticCategory `json:"category"`
	Message  string             `json:"message"`
	Details  string             `json:"details"`
}

// GroupOutcome records how a single group's sub-problem resolved. GroupID
// is the GroupResults map key rather than part of the serialized value, so
// it is excluded from JSON.
type GroupOutcome struct {
	GroupID        string         `json:"-"`
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	Details        map[string]any `json:"details,omitempty"`
	RelaxedSuccess *bool          `json:"relaxed_success,omitempty"`
}

// DiagnosticReport is the structured output produced alongside (or instead
// of) the emitted roster. Errors, Warnings, and Suggestions preserve
// insertion order; GroupResults is keyed by group id for O(1) lookup and
// carries no order of its own.
type DiagnosticReport struct {
	Errors       []Finding
	Warnings     []Finding
	Suggestions  []Finding
	GroupResults map[string]GroupOutcome
	StaffIssues  []Finding
	PartialRoster []Assignment
}

// NewDiagnosticReport returns an empty report ready for append-only use.
func NewDiagnosticReport() *DiagnosticReport {
	return &DiagnosticReport{
		GroupResults: make(map[string]GroupOutcome),
	}
}

// AddError appends an error finding.
func (r *DiagnosticReport) AddError(category DiagnosticCategory, message, details string) {
	r.Errors = append(r.Errors, Finding{Category: category, Message: message, Details: details})
}

// AddWarning appends a warning finding.
func (r *DiagnosticReport) AddWarning(category DiagnosticCategory, message, details string) {
	r.Warnings = append(r.Warnings, Finding{Category: category, Message: message, Details: details})
}

// AddSuggestion appends a recovery suggestion.
func (r *DiagnosticReport) AddSuggestion(category DiagnosticCategory, message, details string) {
	r.Suggestions = append(r.Suggestions, Finding{Category: category, Message: message, Details: details})
}

// SetGroupOutcome records (or overwrites) the outcome of one group.
func (r *DiagnosticReport) SetGroupOutcome(outcome GroupOutcome) {
	r.GroupResults[outcome.GroupID] = outcome
}

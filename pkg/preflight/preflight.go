// Package preflight computes advisory feasibility heuristics for each
// group before any constraint model is built. Findings never block a run.
package preflight

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/settings"
)

// Per-shift staffing floors.
const (
	FloorEarly = 2
	FloorDay   = 1
	FloorLate  = 1
	FloorNight = 1
)

// MinDailyStaff is the sum of the per-shift floors.
const MinDailyStaff = FloorEarly + FloorDay + FloorLate + FloorNight

// Group is the pre-flight view of one group's composition; it mirrors the
// decomposer's group fields other than pre-assignments and requires no
// model state.
type Group struct {
	GroupID         string
	Staff           []model.StaffRecord
	HolidayRequests []model.HolidayRequest
}

// Run evaluates every group's heuristics plus the global heuristics, and
// appends findings to report. logger receives one line per group naming its
// day count and the heuristic inputs derived from it.
func Run(groups []Group, year, month int, resolved *settings.Resolved, allStaff map[string]model.StaffRecord, report *model.DiagnosticReport, logger *zap.Logger) {
	daysInMonth := daysIn(year, month)
	scheduledWorkDays := resolved.ScheduledWorkDays(daysInMonth)
	sundays := countSundays(year, month, daysInMonth)

	for _, g := range groups {
		logger.Debug("pre-flight evaluating group",
			zap.String("group_id", g.GroupID),
			zap.Int("days", daysInMonth),
			zap.Int("staff_count", len(g.Staff)),
			zap.Int("scheduled_work_days", scheduledWorkDays),
		)
		runGroup(g, daysInMonth, scheduledWorkDays, sundays, report)
	}

	runGlobal(groups, allStaff, daysInMonth, report)
}

func runGroup(g Group, daysInMonth, scheduledWorkDays, sundays int, report *model.DiagnosticReport) {
	groupSize := len(g.Staff)

	if groupSize < MinDailyStaff {
		report.AddError(model.CategoryGroupHeadcount,
			fmt.Sprintf("group %s headcount %d is below the minimum daily staffing floor %d", g.GroupID, groupSize, MinDailyStaff),
			g.GroupID)
	}

	nightExemptCount := 0
	suctionQualifiedCount := 0
	for _, s := range g.Staff {
		if s.NightExempt {
			nightExemptCount++
		}
		if s.SuctionQualified {
			suctionQualifiedCount++
		}
	}
	nightCapable := groupSize - nightExemptCount

	if nightCapable == 0 {
		report.AddError(model.CategoryNightCapacity,
			fmt.Sprintf("group %s has no night-eligible staff", g.GroupID), g.GroupID)
	} else {
		maxNightsPerPerson := scheduledWorkDays / 3
		if nightCapable*maxNightsPerPerson < daysInMonth {
			shortage := daysInMonth - nightCapable*maxNightsPerPerson
			report.AddError(model.CategoryNightCapacity,
				fmt.Sprintf("group %s night capacity is short by %d night-slots", g.GroupID, shortage), g.GroupID)
		}
	}

	weekdayDemand := (daysInMonth - sundays) * 5
	sundayDemand := sundays * 4
	demand := weekdayDemand + sundayDemand

	supply := 0
	for _, s := range g.Staff {
		if s.NightExempt {
			supply += scheduledWorkDays
		} else {
			supply += (scheduledWorkDays - 4) + 4 // assumed average of 4 night days
		}
	}
	if supply < demand {
		report.AddWarning(model.CategoryGroupHeadcount,
			fmt.Sprintf("group %s estimated supply %d is below estimated demand %d", g.GroupID, supply, demand), g.GroupID)
	}

	if suctionQualifiedCount == 0 {
		report.AddWarning(model.CategoryQualifiedStaff,
			fmt.Sprintf("group %s has no suction-qualified staff", g.GroupID), g.GroupID)
	}
}

func runGlobal(groups []Group, allStaff map[string]model.StaffRecord, daysInMonth int, report *model.DiagnosticReport) {
	activeCount := 0
	for _, s := range allStaff {
		if s.Active {
			activeCount++
		}
	}

	byDate := make(map[time.Time]int)
	for _, g := range groups {
		for _, hr := range g.HolidayRequests {
			byDate[hr.Date]++
		}
	}

	for date, count := range byDate {
		if activeCount > 0 && float64(count)/float64(activeCount) > 0.3 {
			report.AddWarning(model.CategoryRequestConcentration,
				fmt.Sprintf("%d of %d active staff requested %s off", count, activeCount, date.Format("2006-01-02")),
				date.Format("2006-01-02"))
		}
	}

	for _, g := range groups {
		for _, hr := range g.HolidayRequests {
			s, ok := allStaff[hr.StaffID]
			if !ok || !s.Active {
				report.StaffIssues = append(report.StaffIssues, model.Finding{
					Category: model.CategoryInputData,
					Message:  fmt.Sprintf("holiday request references unknown or inactive staff %s", hr.StaffID),
					Details:  hr.Date.Format("2006-01-02"),
				})
			}
		}
	}
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func countSundays(year, month, daysInMonth int) int {
	count := 0
	for d := 1; d <= daysInMonth; d++ {
		if time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC).Weekday() == time.Sunday {
			count++
		}
	}
	return count
}

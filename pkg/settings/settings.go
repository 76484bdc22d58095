// Package settings resolves the raw key-value settings table into the
// typed values the rest of the pipeline consumes.
package settings

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/shiftkind"
)

const (
	defaultMonthlyHolidays        = 9
	defaultMaxConsecutiveWorkDays = 5
)

// MaxMonthlyWorkUnitsKey is the settings key enabling the optional
// monthly work-unit cap. Its absence leaves that cap unenforced.
const MaxMonthlyWorkUnitsKey = "MAX_MONTHLY_WORK_UNITS"

// Row is one record of M_settings_YYYYMM.csv.
type Row struct {
	SettingID string
	Value     string
}

// Resolved holds the typed settings for a single target month, plus
// pre-assignments and shift-display-name overrides already parsed.
type Resolved struct {
	MonthlyHolidays        uint32
	MaxConsecutiveWorkDays uint32
	MaxMonthlyWorkUnits    *uint32
	ShiftDisplayNames      map[shiftkind.Kind]string
	PreAssignments         []model.PreAssignment
}

// ScheduledWorkDays returns days_in_month - monthly_holidays.
func (r *Resolved) ScheduledWorkDays(daysInMonth int) int {
	return daysInMonth - int(r.MonthlyHolidays)
}

// DisplayName resolves a shift kind's display name, defaulting to its
// stable key when no SHIFT_<KEY>_NAME override is present.
func (r *Resolved) DisplayName(k shiftkind.Kind) string {
	if name, ok := r.ShiftDisplayNames[k]; ok {
		return name
	}
	return k.Key()
}

var (
	monthlyHolidaysRe = regexp.MustCompile(`^MONTHLY_HOLIDAYS_(\d{6})$`)
	shiftNameRe       = regexp.MustCompile(`^SHIFT_([A-Z]+)_NAME$`)
	assignRe          = regexp.MustCompile(`^ASSIGN_([^_]+)_(\d{8})$`)
	assignRRuleRe     = regexp.MustCompile(`^ASSIGN_RRULE_([^_]+)_(.+)_([A-Z]+)$`)
)

// Resolve parses the raw settings rows for a target (year, month) against
// the set of known staff ids, producing a Resolved settings value and
// appending warnings to report for malformed values and for rows naming an
// unknown staff id or shift key. Rows whose setting key is not recognized
// at all are ignored and only logged at debug level.
func Resolve(rows []Row, year, month int, knownStaff map[string]bool, daysInMonth int, report *model.DiagnosticReport, logger *zap.Logger) *Resolved {
	resolved := &Resolved{
		MonthlyHolidays:        defaultMonthlyHolidays,
		MaxConsecutiveWorkDays: defaultMaxConsecutiveWorkDays,
		ShiftDisplayNames:      make(map[shiftkind.Kind]string),
	}

	targetYYYYMM := fmt.Sprintf("%04d%02d", year, month)

	for _, row := range rows {
		switch {
		case row.SettingID == fmt.Sprintf("MONTHLY_HOLIDAYS_%s", targetYYYYMM):
			if n, err := strconv.ParseUint(row.Value, 10, 32); err == nil {
				resolved.MonthlyHolidays = uint32(n)
			} else {
				report.AddWarning(model.CategoryInputData, "unparseable MONTHLY_HOLIDAYS value", row.SettingID+"="+row.Value)
			}

		case row.SettingID == "MAX_CONSECUTIVE_WORK_DAYS":
			if n, err := strconv.ParseUint(row.Value, 10, 32); err == nil {
				resolved.MaxConsecutiveWorkDays = uint32(n)
			} else {
				report.AddWarning(model.CategoryInputData, "unparseable MAX_CONSECUTIVE_WORK_DAYS value", row.Value)
			}

		case row.SettingID == MaxMonthlyWorkUnitsKey:
			if n, err := strconv.ParseUint(row.Value, 10, 32); err == nil {
				u := uint32(n)
				resolved.MaxMonthlyWorkUnits = &u
			} else {
				report.AddWarning(model.CategoryInputData, "unparseable MAX_MONTHLY_WORK_UNITS value", row.Value)
			}

		case monthlyHolidaysRe.MatchString(row.SettingID):
			// A MONTHLY_HOLIDAYS_YYYYMM row for a different month than the
			// target: not an error, simply not applicable to this run.
			continue

		case shiftNameRe.MatchString(row.SettingID):
			m := shiftNameRe.FindStringSubmatch(row.SettingID)
			kind, ok := shiftkind.ParseKey(m[1])
			if !ok {
				report.AddWarning(model.CategoryInputData, "shift display name override for unknown shift key", row.SettingID)
				continue
			}
			resolved.ShiftDisplayNames[kind] = row.Value

		case assignRRuleRe.MatchString(row.SettingID):
			pas, warn := resolveRRuleAssignment(row, year, month, daysInMonth, knownStaff)
			if warn != "" {
				report.AddWarning(model.CategoryInputData, "recurring pre-assignment skipped", warn)
				continue
			}
			resolved.PreAssignments = append(resolved.PreAssignments, pas...)

		case assignRe.MatchString(row.SettingID):
			pa, warn := resolveSingleAssignment(row, year, month, daysInMonth, knownStaff)
			if warn != "" {
				report.AddWarning(model.CategoryInputData, "pre-assignment skipped", warn)
				continue
			}
			resolved.PreAssignments = append(resolved.PreAssignments, pa)

		default:
			logger.Debug("unrecognized settings key ignored", zap.String("setting_id", row.SettingID))
		}
	}

	return resolved
}

func resolveSingleAssignment(row Row, year, month, daysInMonth int, knownStaff map[string]bool) (model.PreAssignment, string) {
	m := assignRe.FindStringSubmatch(row.SettingID)
	staffID, yyyymmdd := m[1], m[2]

	if !knownStaff[staffID] {
		return model.PreAssignment{}, fmt.Sprintf("%s references unknown staff id %q", row.SettingID, staffID)
	}

	day, err := time.Parse("20060102", yyyymmdd)
	if err != nil {
		return model.PreAssignment{}, fmt.Sprintf("%s has unparseable date", row.SettingID)
	}
	if int(day.Year()) != year || int(day.Month()) != month {
		return model.PreAssignment{}, fmt.Sprintf("%s falls outside the target month", row.SettingID)
	}
	if day.Day() > daysInMonth {
		return model.PreAssignment{}, fmt.Sprintf("%s day is out of range for the target month", row.SettingID)
	}

	kind, ok := shiftkind.ParseKey(row.Value)
	if !ok {
		return model.PreAssignment{}, fmt.Sprintf("%s has unrecognized shift key %q", row.SettingID, row.Value)
	}

	return model.PreAssignment{StaffID: staffID, Date: day, Kind: kind}, ""
}

func resolveRRuleAssignment(row Row, year, month, daysInMonth int, knownStaff map[string]bool) ([]model.PreAssignment, string) {
	m := assignRRuleRe.FindStringSubmatch(row.SettingID)
	staffID, ruleText, shiftKey := m[1], m[2], m[3]

	if !knownStaff[staffID] {
		return nil, fmt.Sprintf("%s references unknown staff id %q", row.SettingID, staffID)
	}

	kind, ok := shiftkind.ParseKey(shiftKey)
	if !ok {
		return nil, fmt.Sprintf("%s has unrecognized shift key %q", row.SettingID, shiftKey)
	}

	rule, err := rrule.StrToRRule(ruleText)
	if err != nil {
		return nil, fmt.Sprintf("%s has unparseable RRULE %q: %v", row.SettingID, ruleText, err)
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	rule.DTStart(monthStart)
	occurrences := rule.Between(monthStart, monthEnd, true)

	var pas []model.PreAssignment
	for _, occ := range occurrences {
		if occ.Day() > daysInMonth {
			continue
		}
		pas = append(pas, model.PreAssignment{StaffID: staffID, Date: occ, Kind: kind})
	}
	return pas, ""
}

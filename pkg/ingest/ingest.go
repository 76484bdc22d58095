// Package ingest parses the three CSV input tables into typed records.
// No third-party CSV library appears anywhere in the reference corpus, so
// this package uses encoding/csv directly (see DESIGN.md).
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/settings"
)

// HeaderAliases maps a deployment's native-language column header to the
// canonical English column name. A nil or missing entry falls back to the
// column name itself (identity), so a canonical-header CSV needs no map
// at all. This leaves header translation to the caller rather than
// guessing a single locale.
type HeaderAliases map[string]string

func (a HeaderAliases) canonical(header string) string {
	if a == nil {
		return header
	}
	if canon, ok := a[header]; ok {
		return canon
	}
	return header
}

// trueValues are the boolean-like literals the source tables use for true.
var trueValues = map[string]bool{
	"true": true,
	"TRUE": true,
	"有":    true,
	"あり":   true,
	"1":    true,
}

// parseBool recognizes the documented boolean-like value set.
func parseBool(s string) bool {
	return trueValues[strings.TrimSpace(s)]
}

func readCSV(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no rows")
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Staff parses M_staff_YYYYMM.csv. Duplicate staff_id values are a fatal
// input error per the error-handling taxonomy.
func Staff(r io.Reader, aliases HeaderAliases) ([]model.StaffRecord, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	staff := make([]model.StaffRecord, 0, len(rows))
	for i, row := range rows {
		id := field(row, aliases, "staff_id")
		if id == "" {
			return nil, fmt.Errorf("staff row %d missing staff_id", i+2)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate staff_id %q at row %d", id, i+2)
		}
		seen[id] = true

		staff = append(staff, model.StaffRecord{
			StaffID:          id,
			Group:            field(row, aliases, "group"),
			Active:           parseBool(field(row, aliases, "active")),
			NightExempt:      parseBool(field(row, aliases, "night_exempt")),
			SuctionQualified: parseBool(field(row, aliases, "suction_qualified")),
		})
	}
	return staff, nil
}

// Holidays parses T_holiday_YYYYMM.csv.
func Holidays(r io.Reader, aliases HeaderAliases) ([]model.HolidayRequest, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	requests := make([]model.HolidayRequest, 0, len(rows))
	for i, row := range rows {
		dateStr := field(row, aliases, "date")
		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("holiday row %d: unparseable date %q: %w", i+2, dateStr, err)
		}

		priorityStr := field(row, aliases, "priority")
		priority, err := strconv.Atoi(strings.TrimSpace(priorityStr))
		if err != nil || priority < 1 {
			return nil, fmt.Errorf("holiday row %d: unparseable priority %q", i+2, priorityStr)
		}

		requests = append(requests, model.HolidayRequest{
			StaffID:  field(row, aliases, "staff_id"),
			Date:     date,
			Priority: priority,
		})
	}
	return requests, nil
}

// Settings parses M_settings_YYYYMM.csv into raw key-value rows; typed
// resolution happens in pkg/settings.
func Settings(r io.Reader, aliases HeaderAliases) ([]settings.Row, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	out := make([]settings.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, settings.Row{
			SettingID: field(row, aliases, "setting_id"),
			Value:     field(row, aliases, "value"),
		})
	}
	return out, nil
}

func field(row map[string]string, aliases HeaderAliases, canonicalName string) string {
	for header, value := range row {
		if aliases.canonical(header) == canonicalName {
			return value
		}
	}
	return ""
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{"2006-01-02", "2006/01/02", "20060102"}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

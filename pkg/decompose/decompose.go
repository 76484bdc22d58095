// Package decompose partitions active staff, holiday requests, and
// pre-assignments into independent per-group sub-problems.
package decompose

import (
	"sort"

	"go.uber.org/zap"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
)

// Group is one group's fully-scoped sub-problem input: its staff list,
// its holiday requests filtered by staff id, and its pre-assignments
// filtered by staff id.
type Group struct {
	GroupID         string
	Staff           []model.StaffRecord
	HolidayRequests []model.HolidayRequest
	PreAssignments  []model.PreAssignment
}

// Decompose partitions active staff by group, in deterministic group-id
// order, and attaches the holiday requests and pre-assignments that belong
// to each group's staff. logger receives one line per resulting group with
// its staff, holiday-request, and pre-assignment counts.
func Decompose(staff []model.StaffRecord, holidayRequests []model.HolidayRequest, preAssignments []model.PreAssignment, logger *zap.Logger) []Group {
	staffToGroup := make(map[string]string)
	groupOrder := make(map[string][]model.StaffRecord)

	for _, s := range staff {
		if !s.Active {
			continue
		}
		staffToGroup[s.StaffID] = s.Group
		groupOrder[s.Group] = append(groupOrder[s.Group], s)
	}

	groupIDs := make([]string, 0, len(groupOrder))
	for id := range groupOrder {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	groups := make([]Group, 0, len(groupIDs))
	for _, id := range groupIDs {
		groups = append(groups, Group{
			GroupID: id,
			Staff:   groupOrder[id],
		})
	}

	groupIndex := make(map[string]int, len(groups))
	for i, g := range groups {
		groupIndex[g.GroupID] = i
	}

	for _, hr := range holidayRequests {
		groupID, ok := staffToGroup[hr.StaffID]
		if !ok {
			continue
		}
		idx := groupIndex[groupID]
		groups[idx].HolidayRequests = append(groups[idx].HolidayRequests, hr)
	}

	for _, pa := range preAssignments {
		groupID, ok := staffToGroup[pa.StaffID]
		if !ok {
			continue
		}
		idx := groupIndex[groupID]
		groups[idx].PreAssignments = append(groups[idx].PreAssignments, pa)
	}

	for _, g := range groups {
		logger.Debug("decomposed group",
			zap.String("group_id", g.GroupID),
			zap.Int("staff_count", len(g.Staff)),
			zap.Int("holiday_requests", len(g.HolidayRequests)),
			zap.Int("pre_assignments", len(g.PreAssignments)),
		)
	}

	return groups
}

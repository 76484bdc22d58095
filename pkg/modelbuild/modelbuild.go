// Package modelbuild is the central algorithm of the roster engine: it
// translates one group's staff, holiday requests, and pre-assignments into
// a CP-SAT Boolean model, encoding the hard operational constraints and
// the soft-preference objective described by the roster's constraint
// catalogue.
package modelbuild

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"go.uber.org/zap"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/decompose"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/shiftkind"
)

// Problem is one group's fully-scoped sub-problem, ready for model
// construction.
type Problem struct {
	Group               decompose.Group
	Year, Month         int
	DaysInMonth         int
	MonthlyHolidays     uint32
	MaxConsecutiveWork  uint32
	MaxMonthlyWorkUnits *uint32
	Relaxed             bool
	HardPinTopPriority  bool
}

// Built is the constructed model plus the decision-variable handles the
// solver driver and assembler need to read a solution back out.
type Built struct {
	Model *cpmodel.Builder

	// X[s][d][k] is the decision variable for staff index s, day index d
	// (0-based), shift kind k (shiftkind.Kind as array index).
	X [][][]cpmodel.BoolVar

	// ShortfallByDayAndKind[d][k] is the staffing-floor slack variable.
	ShortfallByDayAndKind [][]cpmodel.IntVar
}

// staffWeight is the holiday-request penalty weighting, w = max(1, 33-3p).
func staffWeight(priority int) int64 {
	w := int64(33 - 3*priority)
	if w < 1 {
		w = 1
	}
	return w
}

// floorFor returns the minimum-staffing floor for a shift kind on a given
// weekday, applying the Sunday exception to the Day floor.
func floorFor(k shiftkind.Kind, isSunday bool) int64 {
	switch k {
	case shiftkind.Early:
		return 2
	case shiftkind.Day:
		if isSunday {
			return 0
		}
		return 1
	case shiftkind.Late:
		return 1
	case shiftkind.Night:
		return 1
	default:
		return 0
	}
}

// Build constructs the CP-SAT model for one group's sub-problem. logger
// receives the group id, day count, and staff count up front, then the
// resulting constraint and variable counts once the model is assembled.
func Build(p Problem, isSunday func(dayIndex int) bool, logger *zap.Logger) (*Built, error) {
	n := len(p.Group.Staff)
	d := p.DaysInMonth
	k := shiftkind.Count

	logger.Debug("building model",
		zap.String("group_id", p.Group.GroupID),
		zap.Int("days", d),
		zap.Int("staff_count", n),
		zap.Bool("relaxed", p.Relaxed),
	)

	cp := cpmodel.NewCpModelBuilder()

	x := make([][][]cpmodel.BoolVar, n)
	for s := 0; s < n; s++ {
		x[s] = make([][]cpmodel.BoolVar, d)
		for day := 0; day < d; day++ {
			x[s][day] = make([]cpmodel.BoolVar, k)
			for kind := 0; kind < k; kind++ {
				x[s][day][kind] = cp.NewBoolVar().WithName(
					fmt.Sprintf("x_s%d_d%d_k%d", s, day, kind))
			}
		}
	}

	// Exactly one shift kind per (staff, day).
	for s := 0; s < n; s++ {
		for day := 0; day < d; day++ {
			cp.AddExactlyOne(x[s][day]...)
		}
	}

	staffIndex := make(map[string]int, n)
	for i, st := range p.Group.Staff {
		staffIndex[st.StaffID] = i
	}

	// Pre-assignments force their (staff, day, kind) variable true.
	for _, pa := range p.Group.PreAssignments {
		s, ok := staffIndex[pa.StaffID]
		if !ok {
			continue
		}
		if pa.Date.Year() != p.Year || int(pa.Date.Month()) != p.Month {
			continue
		}
		day := pa.Date.Day() - 1
		if day < 0 || day >= d {
			continue
		}
		cp.AddEquality(x[s][day][int(pa.Kind)], cp.NewConstant(1))
	}

	// Consecutive-work cap. work[s,i] = NOT x[s,i,Rest].
	c := int(p.MaxConsecutiveWork)
	for s := 0; s < n; s++ {
		for start := 0; start+c < d; start++ {
			var window []cpmodel.BoolVar
			for i := start; i <= start+c; i++ {
				window = append(window, x[s][i][int(shiftkind.Rest)].Not())
			}
			expr := cpmodel.NewLinearExpr()
			for _, w := range window {
				expr.Add(w)
			}
			cp.AddLessOrEqual(expr, cp.NewConstant(int64(c)))
		}
	}

	// No Late -> next-day Early.
	for s := 0; s < n; s++ {
		for day := 0; day < d-1; day++ {
			cp.AddImplication(x[s][day][int(shiftkind.Late)], x[s][day+1][int(shiftkind.Early)].Not())
		}
	}

	// Night-aftermath: a night shift forces rest on the following one or
	// two days.
	for s := 0; s < n; s++ {
		for day := 0; day < d; day++ {
			night := x[s][day][int(shiftkind.Night)]
			if day+1 < d {
				cp.AddImplication(night, x[s][day+1][int(shiftkind.Rest)])
			}
			if day+2 < d {
				cp.AddImplication(night, x[s][day+2][int(shiftkind.Rest)])
			}
		}
	}

	// Night-exempt staff never work Night.
	for s, st := range p.Group.Staff {
		if !st.NightExempt {
			continue
		}
		for day := 0; day < d; day++ {
			cp.AddEquality(x[s][day][int(shiftkind.Night)], cp.NewConstant(0))
		}
	}

	// True-holiday quota, via three-clause reification of
	// true_holiday[s,d] <=> (Rest[s,d] AND NOT Night[s,d-1]).
	trueHoliday := make([][]cpmodel.BoolVar, n)
	for s := 0; s < n; s++ {
		trueHoliday[s] = make([]cpmodel.BoolVar, d)
		for day := 0; day < d; day++ {
			rest := x[s][day][int(shiftkind.Rest)]
			if day == 0 {
				trueHoliday[s][day] = rest
				continue
			}
			nightPrev := x[s][day-1][int(shiftkind.Night)]
			b := cp.NewBoolVar().WithName(fmt.Sprintf("true_holiday_s%d_d%d", s, day))
			cp.AddImplication(b, rest)
			cp.AddImplication(b, nightPrev.Not())
			cp.AddBoolOr(rest.Not(), nightPrev, b)
			trueHoliday[s][day] = b
		}
	}

	quota := int64(p.MonthlyHolidays)
	for s := 0; s < n; s++ {
		expr := cpmodel.NewLinearExpr()
		for day := 0; day < d; day++ {
			expr.Add(trueHoliday[s][day])
		}
		if p.Relaxed {
			cp.AddLinearConstraint(expr, quota-2, quota+2)
		} else {
			cp.AddEquality(expr, cp.NewConstant(quota))
		}
	}

	// Optional monthly work-unit cap. Dropped under the relaxed profile
	// alongside the holiday-quota band's loosening.
	if p.MaxMonthlyWorkUnits != nil && !p.Relaxed {
		workUnitCap := int64(*p.MaxMonthlyWorkUnits)
		for s := 0; s < n; s++ {
			expr := cpmodel.NewLinearExpr()
			for day := 0; day < d; day++ {
				expr.Add(x[s][day][int(shiftkind.Rest)].Not())
				expr.Add(x[s][day][int(shiftkind.Night)])
			}
			cp.AddLessOrEqual(expr, cp.NewConstant(workUnitCap))
		}
	}

	// Suction-qualified presence. Regulatory, never dropped, never relaxed.
	// Omitted entirely (with a pre-flight warning already raised) when the
	// group has no qualified staff.
	for day := 0; day < d; day++ {
		var present []cpmodel.BoolVar
		for s, st := range p.Group.Staff {
			if !st.SuctionQualified {
				continue
			}
			for kind := 0; kind < k; kind++ {
				if shiftkind.Kind(kind) == shiftkind.Rest {
					continue
				}
				present = append(present, x[s][day][kind])
			}
		}
		if len(present) > 0 {
			cp.AddBoolOr(present...)
		}
	}

	objective := cpmodel.NewLinearExpr()

	// Holiday-request penalties (or a hard pin for priority 1, per the
	// configuration switch).
	for _, hr := range p.Group.HolidayRequests {
		s, ok := staffIndex[hr.StaffID]
		if !ok {
			continue
		}
		if hr.Date.Year() != p.Year || int(hr.Date.Month()) != p.Month {
			continue
		}
		day := hr.Date.Day() - 1
		if day < 0 || day >= d {
			continue
		}
		rest := x[s][day][int(shiftkind.Rest)]
		if p.HardPinTopPriority && hr.Priority == 1 {
			cp.AddEquality(rest, cp.NewConstant(1))
			continue
		}
		miss := rest.Not()
		objective.AddTerm(miss, staffWeight(hr.Priority))
	}

	// Minimum staffing floors, with slack bounded by the floor itself.
	shortfall := make([][]cpmodel.IntVar, d)
	for day := 0; day < d; day++ {
		shortfall[day] = make([]cpmodel.IntVar, k)
		sunday := isSunday(day)
		for kind := 0; kind < k; kind++ {
			kk := shiftkind.Kind(kind)
			if kk == shiftkind.Rest {
				continue
			}
			floor := floorFor(kk, sunday)
			slack := cp.NewIntVar(0, floor).WithName(fmt.Sprintf("shortfall_d%d_k%d", day, kind))
			shortfall[day][kind] = slack

			expr := cpmodel.NewLinearExpr()
			for s := 0; s < n; s++ {
				expr.Add(x[s][day][kind])
			}
			expr.Add(slack)
			cp.AddGreaterOrEqual(expr, cp.NewConstant(floor))

			objective.AddTerm(slack, 50)
		}
	}

	// Night fairness across night-eligible staff.
	var nightCounts []cpmodel.LinearArgument
	var nightCountVars []cpmodel.IntVar
	for s, st := range p.Group.Staff {
		if st.NightExempt {
			continue
		}
		count := cp.NewIntVar(0, int64(d)).WithName(fmt.Sprintf("nights_s%d", s))
		expr := cpmodel.NewLinearExpr()
		for day := 0; day < d; day++ {
			expr.Add(x[s][day][int(shiftkind.Night)])
		}
		cp.AddEquality(count, expr)
		nightCountVars = append(nightCountVars, count)
		nightCounts = append(nightCounts, count)
	}
	if len(nightCountVars) > 1 {
		maxVar := cp.NewIntVar(0, int64(d)).WithName("nights_max")
		minVar := cp.NewIntVar(0, int64(d)).WithName("nights_min")
		cp.AddMaxEquality(maxVar, nightCounts...)
		cp.AddMinEquality(minVar, nightCounts...)

		spread := cpmodel.NewLinearExpr()
		spread.Add(maxVar)
		spread.AddTerm(minVar, -1)
		objective.AddTerm(spread, 10)
	}

	cp.Minimize(objective)

	if model, err := cp.Model(); err == nil {
		logger.Debug("model built",
			zap.String("group_id", p.Group.GroupID),
			zap.Int("constraint_count", len(model.GetConstraints())),
			zap.Int("variable_count", len(model.GetVariables())),
		)
	}

	return &Built{
		Model:                 cp,
		X:                     x,
		ShortfallByDayAndKind: shortfall,
	}, nil
}

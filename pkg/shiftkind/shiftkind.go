// Package shiftkind defines the closed set of shift identities a staff
// member can be assigned to on a given day.
package shiftkind

import (
	"fmt"
	"strings"
)

// Kind is a stable, ordered shift identity. The numeric value is used
// directly as the decision-variable index in pkg/modelbuild, so the order
// of these constants must never change.
type Kind int

const (
	Early Kind = iota
	Day
	Late
	Night
	Rest
)

// All enumerates the five kinds in fixed index order.
var All = [5]Kind{Early, Day, Late, Night, Rest}

// Count is the number of shift kinds (K in the model builder's notation).
const Count = 5

// key is the stable, language-independent identifier used in settings
// lookups (SHIFT_<KEY>_NAME) and pre-assignment values. It is distinct from
// the human-facing display name, which is overridable per deployment.
func (k Kind) key() string {
	switch k {
	case Early:
		return "EARLY"
	case Day:
		return "DAY"
	case Late:
		return "LATE"
	case Night:
		return "NIGHT"
	case Rest:
		return "REST"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

// Key returns the stable settings-table identifier for the kind.
func (k Kind) Key() string {
	return k.key()
}

// String implements fmt.Stringer using the stable key, for use in logs and
// error messages where a deployment's display-name overrides do not apply.
func (k Kind) String() string {
	return k.key()
}

// IsWorking reports whether the kind represents time on shift, i.e.
// everything except Rest. This backs the model builder's derived
// work[s,d] = 1 - x[s,d,Rest] Boolean.
func (k Kind) IsWorking() bool {
	return k != Rest
}

// ParseKey resolves a stable key (case-insensitive) back to a Kind. It is
// used by the settings resolver and pre-assignment parser to validate
// pre-assignment and shift-name-override values against the closed set.
func ParseKey(key string) (Kind, bool) {
	upper := strings.ToUpper(key)
	for _, k := range All {
		if k.key() == upper {
			return k, true
		}
	}
	return 0, false
}

// Window is the wall-clock span a non-Rest kind covers. Night is the only
// kind whose end falls on the calendar day following its start.
type Window struct {
	StartHour, StartMinute int
	EndHour, EndMinute     int
	SpansMidnight          bool
}

// defaultWindows mirrors the facility's standard shift times. A deployment
// overrides only the display name via settings, never these wall-clock
// spans, so they are fixed here rather than threaded through settings.
var defaultWindows = map[Kind]Window{
	Early: {StartHour: 7, StartMinute: 0, EndHour: 16, EndMinute: 0},
	Day:   {StartHour: 9, StartMinute: 0, EndHour: 18, EndMinute: 0},
	Late:  {StartHour: 12, StartMinute: 0, EndHour: 21, EndMinute: 0},
	Night: {StartHour: 17, StartMinute: 0, EndHour: 9, EndMinute: 0, SpansMidnight: true},
}

// WindowOf returns the wall-clock window for a non-Rest kind. It panics on
// Rest, which carries no window by definition: only working kinds carry a
// start time and end time.
func WindowOf(k Kind) Window {
	w, ok := defaultWindows[k]
	if !ok {
		panic(fmt.Sprintf("shiftkind: %v has no wall-clock window", k))
	}
	return w
}

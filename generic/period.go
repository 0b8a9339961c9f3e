package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - Inclusive date range used for attendance aggregation
// =============================================================================

// Period is the inclusive range [Start, End].
// Attendance is summarized per calendar month; month close works on whole periods.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the calendar month containing year/month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// ParseMonth parses a YYYY-MM month into its period.
func ParseMonth(s string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Period{}, fmt.Errorf("invalid month %q (use YYYY-MM): %w", s, err)
	}
	return MonthPeriod(t.Year(), t.Month()), nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Validate rejects periods that end before they start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// PreviousMonth returns the calendar month before the one containing p.Start.
func (p Period) PreviousMonth() Period {
	prev := p.Start.AddMonths(-1)
	return MonthPeriod(prev.Year(), prev.Month())
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Label returns the YYYY-MM form for month periods.
func (p Period) Label() string {
	return p.Start.Time.Format("2006-01")
}

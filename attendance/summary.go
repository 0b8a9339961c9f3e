package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/generic"
)

// =============================================================================
// MONTH SUMMARY - What payroll consumes from a period of classified days
// =============================================================================

// MonthSummary aggregates classified days. Totals are sums of already
// rounded daily figures, so they reproduce exactly from the daily rows.
type MonthSummary struct {
	Period       generic.Period
	Days         int
	StatusCounts map[Status]int
	WorkingDays  decimal.Decimal
	WorkHours    decimal.Decimal
	Overtime     decimal.Decimal
	Flagged      int // days carrying at least one WARNING diagnostic
}

// Summarize aggregates classified days over period.
// Days outside the period are ignored.
func Summarize(period generic.Period, days []Result) MonthSummary {
	s := MonthSummary{
		Period:       period,
		StatusCounts: make(map[Status]int, len(Statuses)),
		WorkingDays:  decimal.Zero,
		WorkHours:    decimal.Zero,
		Overtime:     decimal.Zero,
	}
	for _, st := range Statuses {
		s.StatusCounts[st] = 0
	}

	for _, d := range days {
		if date, err := generic.ParseDate(d.Date); err == nil && !period.Contains(date) {
			continue
		}
		s.Days++
		s.StatusCounts[d.Status]++
		s.WorkingDays = s.WorkingDays.Add(d.WorkingDays)
		s.WorkHours = s.WorkHours.Add(d.WorkHours)
		s.Overtime = s.Overtime.Add(d.Overtime)
		if hasWarning(d.Warnings) {
			s.Flagged++
		}
	}
	return s
}

// ClassifyPeriod classifies every calendar day of period. punches is keyed by
// YYYY-MM-DD; a day with no punch record is absent.
func (c Classifier) ClassifyPeriod(period generic.Period, punches map[string]Input, roster *Roster) []Result {
	days := period.Days()
	results := make([]Result, 0, len(days))
	for _, day := range days {
		key := day.String()
		in, ok := punches[key]
		if !ok {
			in = Input{Date: key}
		}
		if in.Date == "" {
			in.Date = key
		}
		results = append(results, c.Classify(in, roster))
	}
	return results
}

// ClassifyPeriod classifies a period using the default zone.
func ClassifyPeriod(period generic.Period, punches map[string]Input, roster *Roster) []Result {
	return Classifier{}.ClassifyPeriod(period, punches, roster)
}

func hasWarning(ds generic.Diagnostics) bool {
	for _, d := range ds {
		if d.Level == generic.LevelWarning {
			return true
		}
	}
	return false
}

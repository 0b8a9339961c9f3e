/*
classify.go - Daily attendance classification

PURPOSE:
  Turns one day's punches into a status, work hours, a working-day fraction
  and overtime. Each day is classified on its own, with no memory of other
  days, so payroll can re-run any day and get the same answer.

ALGORITHM:
  1. No clock-in                      -> absent, all figures zero
  2. Clock-in after start + grace     -> provisionally late, else present
  3. No clock-out                     -> provisional status, zero figures (open shift)
  4. Clock-out earlier than clock-in  -> clock-out is on the next calendar day
  5. Hours = wall-clock duration in the classifier zone, 2 decimals, >= 0
  6. Tiers:
       hours <  half day  -> lwp,      0 days
       hours <  full day  -> half_day, 0.5 days
       hours >= full day  -> late/present as flagged, 1 day
  7. Overtime = max(0, round2(hours - overtime threshold))

LENIENCY:
  Classification is total. A punch or date that cannot be parsed yields zero
  hours and a Diagnostic in Result.Warnings rather than an error, so one bad
  row never aborts a payroll batch. Callers that need human review filter on
  Warnings. A roster with a non-positive full day, or a half day outside
  [0, full day], is scored with the DefaultRoster thresholds and a warning.

TIME ZONE:
  Durations are evaluated in Classifier.Zone, which defaults to generic.IST
  (fixed UTC+05:30). A zone with daylight saving yields true elapsed time
  across the transition.

SEE ALSO:
  - roster.go: Roster rules and presets
  - summary.go: Month aggregation
*/
package attendance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/generic"
)

var secondsPerHour = decimal.NewFromInt(3600)

// Classifier classifies attendance in a configured zone.
// The zero value is ready to use and evaluates durations in IST.
type Classifier struct {
	Zone *time.Location
}

// NewClassifier returns a classifier evaluating durations in zone.
func NewClassifier(zone *time.Location) Classifier {
	return Classifier{Zone: zone}
}

// Classify classifies in against roster using the default zone.
// A nil roster means DefaultRoster().
func Classify(in Input, roster *Roster) Result {
	return Classifier{}.Classify(in, roster)
}

// Classify classifies one day. It never fails; see the package notes on leniency.
func (c Classifier) Classify(in Input, roster *Roster) Result {
	rules := DefaultRoster()
	if roster != nil {
		rules = *roster
	}

	res := Result{
		Date:        in.Date,
		Status:      StatusAbsent,
		WorkHours:   decimal.Zero,
		WorkingDays: NoDay,
		Overtime:    decimal.Zero,
	}

	if strings.TrimSpace(in.ClockIn) == "" {
		return res
	}

	clockIn, inErr := generic.ParseClock(in.ClockIn)
	if inErr != nil {
		res.Warnings.Warn(CodeInvalidClockIn, "clock-in %q is not a time of day; scored as on time with zero hours", in.ClockIn)
	}

	res.Status = StatusPresent
	if inErr == nil && isLate(clockIn, rules, &res.Warnings) {
		res.Status = StatusLate
	}

	if strings.TrimSpace(in.ClockOut) == "" {
		res.Warnings.Info(CodeOpenShift, "no clock-out recorded; day is not resolved into working days")
		return res
	}

	rules = withDefaultThresholds(rules, &res.Warnings)

	hours := decimal.Zero
	if inErr == nil {
		hours = c.workHours(in, clockIn, &res.Warnings)
	}
	res.WorkHours = hours

	switch {
	case hours.LessThan(rules.HalfDayHours):
		res.Status = StatusLWP
		res.WorkingDays = NoDay
	case hours.LessThan(rules.FullDayHours):
		res.Status = StatusHalfDay
		res.WorkingDays = HalfDay
	default:
		res.WorkingDays = FullDay
	}

	res.Overtime = generic.NonNegative(generic.Round2(hours.Sub(rules.OvertimeThreshold())))
	return res
}

// withDefaultThresholds replaces unusable day thresholds with the
// DefaultRoster values. A zero half day is kept only next to a positive full day.
func withDefaultThresholds(rules Roster, warnings *generic.Diagnostics) Roster {
	def := DefaultRoster()
	if !rules.FullDayHours.IsPositive() {
		warnings.Warn(CodeInvalidThreshold, "roster full_day_hours %s is not positive; using %s", rules.FullDayHours, def.FullDayHours)
		rules.FullDayHours = def.FullDayHours
		if !rules.HalfDayHours.IsPositive() {
			warnings.Warn(CodeInvalidThreshold, "roster half_day_hours %s is not positive; using %s", rules.HalfDayHours, def.HalfDayHours)
			rules.HalfDayHours = def.HalfDayHours
		}
	}
	if rules.HalfDayHours.IsNegative() || rules.HalfDayHours.GreaterThan(rules.FullDayHours) {
		fallback := decimal.Min(def.HalfDayHours, rules.FullDayHours)
		warnings.Warn(CodeInvalidThreshold, "roster half_day_hours %s is outside 0..%s; using %s", rules.HalfDayHours, rules.FullDayHours, fallback)
		rules.HalfDayHours = fallback
	}
	return rules
}

func (c Classifier) zone() *time.Location {
	if c.Zone == nil {
		return generic.IST
	}
	return c.Zone
}

// isLate compares whole minutes since midnight against start + grace.
func isLate(clockIn generic.ClockTime, rules Roster, warnings *generic.Diagnostics) bool {
	start, err := generic.ParseClock(rules.StartTime)
	if err != nil {
		warnings.Warn(CodeInvalidStartTime, "roster start time %q is not a time of day; lateness not assessed", rules.StartTime)
		return false
	}
	return clockIn.Minutes() > start.Minutes()+rules.GracePeriodMinutes
}

func (c Classifier) workHours(in Input, clockIn generic.ClockTime, warnings *generic.Diagnostics) decimal.Decimal {
	clockOut, err := generic.ParseClock(in.ClockOut)
	if err != nil {
		warnings.Warn(CodeInvalidClockOut, "clock-out %q is not a time of day; scored as zero hours", in.ClockOut)
		return decimal.Zero
	}
	date, err := generic.ParseDate(in.Date)
	if err != nil {
		warnings.Warn(CodeInvalidDate, "date %q is not YYYY-MM-DD; scored as zero hours", in.Date)
		return decimal.Zero
	}

	outDate := date
	if clockOut.Before(clockIn) {
		outDate = date.AddDays(1)
		warnings.Info(CodeCrossMidnight, "clock-out %s is before clock-in %s; counted on %s", clockOut, clockIn, outDate)
	}

	zone := c.zone()
	elapsed := clockOut.On(outDate, zone).Sub(clockIn.On(date, zone))
	hours := decimal.NewFromInt(int64(elapsed / time.Second)).Div(secondsPerHour)
	return generic.NonNegative(generic.Round2(hours))
}

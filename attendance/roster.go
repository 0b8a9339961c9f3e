/*
roster.go - Shift rosters and pre-built shift configurations

PURPOSE:
  A Roster carries the business rules a day is classified against: when the
  shift starts, how many hours make a full or half day, how many minutes of
  lateness are tolerated and from which hour work counts as overtime.

  Rosters are plain values. They are passed into every classification call,
  never read from package state, so callers can classify the same punches
  against any number of roster variants side by side.

AVAILABLE ROSTERS:
  DefaultRoster: 09:00 start, 8h full day, 4h half day, 15 min grace
  DayShift:      Same rules as DefaultRoster, named for storage
  NightShift:    22:00 start; clock-outs after midnight belong to the start day
  FlexShift:     10:00 start, 6h full day, 3h half day, 30 min grace

OVERTIME THRESHOLD:
  OvertimeThresholdHours is optional. When unset the threshold is
  FullDayHours + DefaultOvertimeOffsetHours (one hour), which is the rule the
  payroll team has always applied. Set it explicitly to change it.

SEE ALSO:
  - classify.go: Uses the roster
  - factory/roster.go: JSON representation and validation
*/
package attendance

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/generic"
)

// DefaultOvertimeOffsetHours is added to FullDayHours when a roster has no
// explicit overtime threshold.
var DefaultOvertimeOffsetHours = decimal.NewFromInt(1)

// Roster is the per-shift rule set used for classification.
type Roster struct {
	ID                     generic.RosterID
	Name                   string
	StartTime              string // HH:MM
	FullDayHours           decimal.Decimal
	HalfDayHours           decimal.Decimal
	GracePeriodMinutes     int
	OvertimeThresholdHours *decimal.Decimal // nil = FullDayHours + DefaultOvertimeOffsetHours
}

// DefaultRoster returns the rules applied when no roster is configured.
func DefaultRoster() Roster {
	return Roster{
		ID:                 "default",
		Name:               "Default",
		StartTime:          "09:00",
		FullDayHours:       decimal.NewFromInt(8),
		HalfDayHours:       decimal.NewFromInt(4),
		GracePeriodMinutes: 15,
	}
}

// OvertimeThreshold returns the hours after which work counts as overtime.
func (r Roster) OvertimeThreshold() decimal.Decimal {
	if r.OvertimeThresholdHours != nil {
		return *r.OvertimeThresholdHours
	}
	return r.FullDayHours.Add(DefaultOvertimeOffsetHours)
}

// Validate checks the roster is internally consistent.
// Classification itself never calls Validate; it degrades instead.
func (r Roster) Validate() error {
	invalid := func(field, msg string) error {
		return &generic.FieldError{Field: field, Message: msg, Err: generic.ErrInvalidRoster}
	}
	if _, err := generic.ParseClock(r.StartTime); err != nil {
		return invalid("start_time", fmt.Sprintf("%q is not HH:MM", r.StartTime))
	}
	if !r.FullDayHours.IsPositive() {
		return invalid("full_day_hours", "must be positive")
	}
	if r.HalfDayHours.IsNegative() {
		return invalid("half_day_hours", "must not be negative")
	}
	if r.HalfDayHours.GreaterThan(r.FullDayHours) {
		return invalid("half_day_hours", "must not exceed full_day_hours")
	}
	if r.GracePeriodMinutes < 0 {
		return invalid("grace_period_minutes", "must not be negative")
	}
	if r.OvertimeThresholdHours != nil && r.OvertimeThresholdHours.IsNegative() {
		return invalid("overtime_threshold_hours", "must not be negative")
	}
	return nil
}

// =============================================================================
// COMMON SHIFTS
// =============================================================================

// DayShift is the standard office shift.
func DayShift() Roster {
	r := DefaultRoster()
	r.ID = "day-shift"
	r.Name = "Day Shift"
	return r
}

// NightShift starts at 22:00. Punches out after midnight are credited to the
// day the shift started.
//
// Lateness compares minutes since midnight only, so a clock-in after midnight
// (00:30 on a 22:00 shift) is scored present, not late. Record such a punch on
// the next date if it should be its own shift.
func NightShift() Roster {
	return Roster{
		ID:                 "night-shift",
		Name:               "Night Shift",
		StartTime:          "22:00",
		FullDayHours:       decimal.NewFromInt(8),
		HalfDayHours:       decimal.NewFromInt(4),
		GracePeriodMinutes: 15,
	}
}

// FlexShift is the reduced-hours roster used for part-time staff.
func FlexShift() Roster {
	return Roster{
		ID:                 "flex-shift",
		Name:               "Flex Shift",
		StartTime:          "10:00",
		FullDayHours:       decimal.NewFromInt(6),
		HalfDayHours:       decimal.NewFromInt(3),
		GracePeriodMinutes: 30,
	}
}

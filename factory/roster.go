/*
Package factory provides JSON to Go conversion for rosters and settlement rules.

PURPOSE:
  Converts JSON roster definitions into attendance.Roster values and JSON
  settlement rules into settlement.Config. HR configures shifts and exit
  rules through the API or a config file; the factory applies defaults,
  validates, and hands back the value the calculators take as a parameter.

JSON SCHEMA (roster):
  {
    "id": "night-shift",
    "name": "Night Shift",
    "start_time": "22:00",
    "full_day_hours": 8,
    "half_day_hours": 4,
    "grace_period_minutes": 15,
    "overtime_threshold_hours": 9
  }

DEFAULTS:
  Omitted start_time, full_day_hours or half_day_hours take the DefaultRoster
  value. grace_period_minutes is only defaulted when absent, so an explicit
  0 means no grace. overtime_threshold_hours stays unset when absent, which
  means full day + 1.

USAGE:
  f := NewRosterFactory()
  roster, err := f.ParseRoster(jsonString)
  result := attendance.Classify(input, &roster)

SEE ALSO:
  - attendance/roster.go: Roster type and presets
  - factory/settlement.go: Settlement config JSON
*/
package factory

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/attendance"
	"github.com/warp/hr-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RosterJSON is the JSON representation of a roster.
type RosterJSON struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	StartTime              string   `json:"start_time,omitempty"`
	FullDayHours           *float64 `json:"full_day_hours,omitempty"`
	HalfDayHours           *float64 `json:"half_day_hours,omitempty"`
	GracePeriodMinutes     *int     `json:"grace_period_minutes,omitempty"`
	OvertimeThresholdHours *float64 `json:"overtime_threshold_hours,omitempty"`
}

// =============================================================================
// ROSTER FACTORY
// =============================================================================

// RosterFactory converts JSON rosters to attendance.Roster values.
type RosterFactory struct{}

func NewRosterFactory() *RosterFactory {
	return &RosterFactory{}
}

// ParseRoster parses a JSON string into a validated Roster.
func (f *RosterFactory) ParseRoster(jsonStr string) (attendance.Roster, error) {
	var rj RosterJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return attendance.Roster{}, fmt.Errorf("failed to parse roster JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON applies defaults to rj and validates the resulting Roster.
func (f *RosterFactory) FromJSON(rj RosterJSON) (attendance.Roster, error) {
	if rj.ID == "" {
		return attendance.Roster{}, &generic.FieldError{Field: "id", Message: "is required", Err: generic.ErrInvalidRoster}
	}

	r := attendance.DefaultRoster()
	r.ID = generic.RosterID(rj.ID)
	r.Name = rj.Name
	if r.Name == "" {
		r.Name = rj.ID
	}
	if rj.StartTime != "" {
		r.StartTime = rj.StartTime
	}
	if rj.FullDayHours != nil {
		r.FullDayHours = decimal.NewFromFloat(*rj.FullDayHours)
	}
	if rj.HalfDayHours != nil {
		r.HalfDayHours = decimal.NewFromFloat(*rj.HalfDayHours)
	}
	if rj.GracePeriodMinutes != nil {
		r.GracePeriodMinutes = *rj.GracePeriodMinutes
	}
	if rj.OvertimeThresholdHours != nil {
		ot := decimal.NewFromFloat(*rj.OvertimeThresholdHours)
		r.OvertimeThresholdHours = &ot
	}

	if err := r.Validate(); err != nil {
		return attendance.Roster{}, err
	}
	return r, nil
}

// ToJSON converts a Roster to RosterJSON.
func (f *RosterFactory) ToJSON(r attendance.Roster) RosterJSON {
	grace := r.GracePeriodMinutes
	full := generic.Float(r.FullDayHours)
	half := generic.Float(r.HalfDayHours)
	rj := RosterJSON{
		ID:                 string(r.ID),
		Name:               r.Name,
		StartTime:          r.StartTime,
		FullDayHours:       &full,
		HalfDayHours:       &half,
		GracePeriodMinutes: &grace,
	}
	if r.OvertimeThresholdHours != nil {
		ot := generic.Float(*r.OvertimeThresholdHours)
		rj.OvertimeThresholdHours = &ot
	}
	return rj
}

// Marshal renders r as a JSON document.
func (f *RosterFactory) Marshal(r attendance.Roster) (string, error) {
	b, err := json.Marshal(f.ToJSON(r))
	if err != nil {
		return "", fmt.Errorf("failed to marshal roster %s: %w", r.ID, err)
	}
	return string(b), nil
}

// PresetRosters returns the built-in shifts seeded into a fresh store.
func PresetRosters() []attendance.Roster {
	return []attendance.Roster{
		attendance.DefaultRoster(),
		attendance.DayShift(),
		attendance.NightShift(),
		attendance.FlexShift(),
	}
}

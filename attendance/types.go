// Package attendance classifies one employee's day from raw clock punches and
// a shift roster. Classification is pure: no I/O, no shared state, and the
// same input always yields the same result.
package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/generic"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusLWP     Status = "lwp" // leave without pay: worked below the half-day threshold
	StatusAbsent  Status = "absent"
)

// Statuses lists every status in reporting order.
var Statuses = []Status{StatusPresent, StatusLate, StatusHalfDay, StatusLWP, StatusAbsent}

// Working-day fractions. No other value is ever produced.
var (
	NoDay   = decimal.Zero
	HalfDay = decimal.RequireFromString("0.5")
	FullDay = decimal.NewFromInt(1)
)

// =============================================================================
// INPUT / RESULT
// =============================================================================

// Input is one day's raw punches for one employee.
// An empty ClockIn or ClockOut means the punch is absent.
type Input struct {
	ClockIn  string // HH:MM (or HH:MM:SS)
	ClockOut string // HH:MM (or HH:MM:SS); earlier than ClockIn means next day
	Date     string // YYYY-MM-DD, the day the shift started
}

// Result is the classification of one Input.
type Result struct {
	Date        string
	Status      Status
	WorkHours   decimal.Decimal // >= 0, two decimal places
	WorkingDays decimal.Decimal // 0, 0.5 or 1
	Overtime    decimal.Decimal // >= 0, two decimal places
	Warnings    generic.Diagnostics
}

// IsPaid reports whether the day counts toward paid working days.
func (r Result) IsPaid() bool { return r.WorkingDays.IsPositive() }

// Diagnostic codes attached to Result.Warnings.
const (
	CodeInvalidClockIn   = "INVALID_CLOCK_IN"
	CodeInvalidClockOut  = "INVALID_CLOCK_OUT"
	CodeInvalidDate      = "INVALID_DATE"
	CodeInvalidStartTime = "INVALID_ROSTER_START_TIME"
	CodeInvalidThreshold = "INVALID_ROSTER_THRESHOLD"
	CodeOpenShift        = "OPEN_SHIFT"
	CodeCrossMidnight    = "CROSS_MIDNIGHT"
)

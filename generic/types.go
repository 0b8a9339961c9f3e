/*
Package generic provides the domain-agnostic primitives of the HR engine.

PURPOSE:
  The attendance and settlement packages are pure business-rule calculators.
  They share a small vocabulary: exact decimal quantities that are rounded to
  two places at well-defined steps, calendar dates, times of day, periods and
  a diagnostics channel for inputs that had to be degraded instead of failing.
  Those primitives live here so both domains round, parse and report the same
  way.

KEY CONCEPTS IN THIS FILE (types.go):
  - MustParseDecimal: Lenient decimal parsing for stored TEXT columns
  - Round2: The single rounding rule used for every reported figure
  - Diagnostic: A warning attached to a result when an input was degraded

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, never float64 arithmetic
  2. Reproducibility: identical inputs give byte-identical rounded outputs
  3. Totality: calculators return diagnostics, they do not return errors

USAGE:
  ctc := generic.MustParseDecimal(row.AnnualCTC)
  pay := generic.Round2(monthly.Div(decimal.NewFromInt(30)))

SEE ALSO:
  - time.go: TimePoint, ClockTime and the fixed IST zone
  - period.go: Month periods
  - errors.go: Sentinel errors for the infrastructure layers
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMALS
// =============================================================================

// MustParseDecimal parses s, returning zero for anything unparsable.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// ROUNDING
// =============================================================================

// Round2 rounds to two decimal places, half away from zero.
// For the non-negative figures the engine reports this is half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NonNegative returns d, or zero when d is negative.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Float returns d as float64 for DTOs. Precision loss is acceptable there
// because every value has already been rounded to two places.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type RosterID string

// =============================================================================
// DIAGNOSTICS - Degraded inputs are reported, not raised
// =============================================================================

type DiagnosticLevel string

const (
	LevelInfo    DiagnosticLevel = "INFO"
	LevelWarning DiagnosticLevel = "WARNING"
)

// Diagnostic describes an input the calculators could not use as given and
// the default they applied instead.
type Diagnostic struct {
	Level   DiagnosticLevel `json:"level"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Level, d.Code, d.Message)
}

// Diagnostics is an append-only list of warnings collected during a calculation.
type Diagnostics []Diagnostic

func (ds *Diagnostics) Warn(code, format string, args ...any) {
	*ds = append(*ds, Diagnostic{Level: LevelWarning, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (ds *Diagnostics) Info(code, format string, args ...any) {
	*ds = append(*ds, Diagnostic{Level: LevelInfo, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Has reports whether a diagnostic with the given code was recorded.
func (ds Diagnostics) Has(code string) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

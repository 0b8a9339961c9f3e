/*
calculator.go - Final settlement on exit

PURPOSE:
  Computes what the company owes an employee on their last day. The result
  is a set of rounded line items plus the facts they were derived from, so a
  settlement statement can be rebuilt and audited from the result alone.

FORMULA (Config defaults in brackets):
  monthly        = annualCTC / 12
  proRataSalary  = round2(monthly / daysInExitMonth * dayOfMonth(exit))
  dailyRate      = monthly / DailyRateDivisor [30]
  encashment     = round2((PL + CL) * dailyRate)
  shortfall      = max(0, NoticePeriodDays [30] - days(resignation -> exit))
  recovery       = round2(shortfall * dailyRate)
  tenure         = days(joining -> exit) / DaysPerYear [365]
  gratuity       = tenure >= GratuityMinTenureYears [5]
                   ? round2(monthly * GratuityDaysPerYear [15] * tenure / GratuityDivisor [26])
                   : 0
  bonus          = round2(annualBonus / 12 * exitMonthNumber)
  gross          = round2(proRata + encashment + gratuity + bonus + reimbursements)
  net            = gross - recovery

ROUNDING:
  Line items are rounded before they are summed; monthly, dailyRate and
  tenure keep full precision. Net is computed from the rounded gross and
  recovery, never re-derived, so the statement always adds up.

LENIENCY:
  The calculation never fails. Degraded inputs get a default and a
  Diagnostic in Result.Warnings:
    - exit date unparsable          -> zero result
    - joining date unparsable/late  -> tenure 0, no gratuity
    - resignation date unparsable   -> treated as missing
    - resignation date missing      -> full notice assumed (NOTICE_ASSUMED_SERVED)
    - resignation after exit        -> zero notice served
    - leave balance missing         -> zero unused leave
    - negative money or leave       -> clamped to 0

SEE ALSO:
  - report.go: Presentation wrapper
  - factory/settlement.go: Config from JSON
*/
package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/generic"
)

var monthsPerYear = decimal.NewFromInt(12)

// =============================================================================
// CONFIG
// =============================================================================

// Config holds the statutory and contractual constants of the calculation.
type Config struct {
	NoticePeriodDays       int
	DailyRateDivisor       int
	GratuityMinTenureYears decimal.Decimal
	GratuityDaysPerYear    int
	GratuityDivisor        int
	DaysPerYear            int
}

// DefaultConfig returns the rules the payroll team applies today.
func DefaultConfig() Config {
	return Config{
		NoticePeriodDays:       30,
		DailyRateDivisor:       30,
		GratuityMinTenureYears: decimal.NewFromInt(5),
		GratuityDaysPerYear:    15,
		GratuityDivisor:        26,
		DaysPerYear:            365,
	}
}

// Validate guarantees every divisor is positive, so Calculate never divides by zero.
func (c Config) Validate() error {
	invalid := func(field, msg string) error {
		return &generic.FieldError{Field: field, Message: msg, Err: generic.ErrInvalidConfig}
	}
	if c.NoticePeriodDays < 0 {
		return invalid("notice_period_days", "must not be negative")
	}
	if c.DailyRateDivisor <= 0 {
		return invalid("daily_rate_divisor", "must be positive")
	}
	if c.GratuityMinTenureYears.IsNegative() {
		return invalid("gratuity_min_tenure_years", "must not be negative")
	}
	if c.GratuityDaysPerYear < 0 {
		return invalid("gratuity_days_per_year", "must not be negative")
	}
	if c.GratuityDivisor <= 0 {
		return invalid("gratuity_divisor", "must be positive")
	}
	if c.DaysPerYear <= 0 {
		return invalid("days_per_year", "must be positive")
	}
	return nil
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes settlements under a fixed Config.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	config Config
}

// NewCalculator validates cfg and returns a calculator using it.
func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("settlement config: %w", err)
	}
	return &Calculator{config: cfg}, nil
}

// Config returns the calculator's configuration.
func (c *Calculator) Config() Config { return c.config }

var defaultCalculator = &Calculator{config: DefaultConfig()}

// DefaultCalculator returns the shared calculator using DefaultConfig.
func DefaultCalculator() *Calculator { return defaultCalculator }

// CalculateFinalSettlement computes the settlement under DefaultConfig.
// A nil balance means no leave data was supplied.
func CalculateFinalSettlement(profile Profile, exitDate string, balance *LeaveBalance) Result {
	return defaultCalculator.Calculate(profile, exitDate, balance)
}

// Calculate computes the settlement for profile leaving on exitDate.
func (c *Calculator) Calculate(profile Profile, exitDate string, balance *LeaveBalance) Result {
	res := zeroResult(exitDate)
	w := &res.Warnings

	exit, err := generic.ParseDate(exitDate)
	if err != nil {
		w.Warn(CodeInvalidExitDate, "exit date %q is not YYYY-MM-DD; nothing calculated", exitDate)
		return res
	}

	cfg := c.config
	ctc := clamp(w, "annual_ctc", profile.AnnualCTC)
	bonus := clamp(w, "annual_bonus", profile.AnnualBonus)
	reimbursements := clamp(w, "pending_reimbursements", profile.PendingReimbursements)

	// Steps 1-3: salary for the days worked in the exit month.
	monthly := ctc.Div(monthsPerYear)
	daysInMonth := generic.DaysInMonth(exit.Year(), exit.Month())
	worked := exit.Day()
	proRata := generic.Round2(monthly.Div(decimal.NewFromInt(int64(daysInMonth))).Mul(decimal.NewFromInt(int64(worked))))

	// Step 4: leave encashment.
	unused := c.unusedLeaves(w, balance)
	dailyRate := monthly.Div(decimal.NewFromInt(int64(cfg.DailyRateDivisor)))
	encashment := generic.Round2(unused.Mul(dailyRate))

	// Step 5: notice recovery.
	shortfall := c.noticeShortfall(w, profile.ResignationDate, exit)
	recovery := generic.Round2(decimal.NewFromInt(int64(shortfall)).Mul(dailyRate))

	// Step 6: reimbursements pass through.
	reimbursements = generic.Round2(reimbursements)

	// Step 7: gratuity.
	tenure := c.tenureYears(w, profile.DateOfJoining, exit)
	gratuity := decimal.Zero
	if tenure.GreaterThanOrEqual(cfg.GratuityMinTenureYears) {
		gratuity = generic.Round2(monthly.
			Mul(decimal.NewFromInt(int64(cfg.GratuityDaysPerYear))).
			Mul(tenure).
			Div(decimal.NewFromInt(int64(cfg.GratuityDivisor))))
	}

	// Step 8: bonus for the months of the exit year, exit month included.
	bonusMonths := decimal.NewFromInt(int64(exit.Month()))
	proRatedBonus := generic.Round2(bonus.Div(monthsPerYear).Mul(bonusMonths))

	// Steps 9-10.
	gross := generic.Round2(proRata.Add(encashment).Add(gratuity).Add(proRatedBonus).Add(reimbursements))
	net := gross.Sub(recovery)

	res.Breakdown = Breakdown{
		ProRataSalary:         proRata,
		LeaveEncashment:       encashment,
		Gratuity:              gratuity,
		ProRatedBonus:         proRatedBonus,
		PendingReimbursements: reimbursements,
		NoticePeriodRecovery:  recovery,
	}
	res.Summary = Summary{
		GrossAmount:     gross,
		TotalDeductions: recovery,
		NetSettlement:   net,
	}
	res.Details = Details{
		WorkedDays:            worked,
		DaysInMonth:           daysInMonth,
		UnusedLeaves:          unused,
		TenureYears:           generic.Round2(tenure),
		NoticePeriodShortfall: shortfall,
	}
	return res
}

// =============================================================================
// STEPS
// =============================================================================

func (c *Calculator) unusedLeaves(w *generic.Diagnostics, balance *LeaveBalance) decimal.Decimal {
	if balance == nil {
		w.Warn(CodeLeaveBalanceMissing, "no leave balance supplied; encashment is zero")
		return decimal.Zero
	}
	paid := clamp(w, "paid_leave_available", balance.PaidLeaveAvailable)
	casual := clamp(w, "casual_leave_available", balance.CasualLeaveAvailable)
	return paid.Add(casual)
}

func (c *Calculator) noticeShortfall(w *generic.Diagnostics, resignation string, exit generic.TimePoint) int {
	notice := c.config.NoticePeriodDays
	if resignation == "" {
		w.Warn(CodeNoticeAssumedServed, "no resignation date; full %d-day notice assumed served", notice)
		return 0
	}
	resigned, err := generic.ParseDate(resignation)
	if err != nil {
		w.Warn(CodeInvalidResignationDate, "resignation date %q is not YYYY-MM-DD; treated as missing", resignation)
		w.Warn(CodeNoticeAssumedServed, "no usable resignation date; full %d-day notice assumed served", notice)
		return 0
	}

	served := generic.DaysBetween(resigned, exit)
	if served < 0 {
		w.Warn(CodeResignationAfterExit, "resignation %s is after exit %s; no notice served", resigned, exit)
		served = 0
	}
	if served >= notice {
		return 0
	}
	return notice - served
}

func (c *Calculator) tenureYears(w *generic.Diagnostics, joining string, exit generic.TimePoint) decimal.Decimal {
	joined, err := generic.ParseDate(joining)
	if err != nil {
		w.Warn(CodeInvalidJoiningDate, "joining date %q is not YYYY-MM-DD; tenure is zero", joining)
		return decimal.Zero
	}
	days := generic.DaysBetween(joined, exit)
	if days < 0 {
		w.Warn(CodeJoiningAfterExit, "joining %s is after exit %s; tenure is zero", joined, exit)
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(int64(c.config.DaysPerYear)))
}

func clamp(w *generic.Diagnostics, field string, d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		w.Warn(CodeNegativeAmount, "%s is negative (%s); using 0", field, d)
		return decimal.Zero
	}
	return d
}

// Package settlement computes the final monetary settlement owed to an
// employee on exit: pro-rata salary, leave encashment, gratuity, prorated
// bonus and reimbursements, less any notice-period recovery.
package settlement

import (
	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/generic"
)

// =============================================================================
// INPUTS
// =============================================================================

// Profile holds the exiting employee's compensation and tenure facts as
// supplied by the HR profile store. Dates are YYYY-MM-DD strings; parsing is
// part of the calculation so a bad date degrades instead of failing the call.
type Profile struct {
	EmployeeID  generic.EmployeeID
	Name        string
	Department  string
	Designation string

	AnnualCTC             decimal.Decimal
	DateOfJoining         string
	ResignationDate       string // optional
	PendingReimbursements decimal.Decimal
	AnnualBonus           decimal.Decimal
}

// LeaveBalance is the unused leave at exit, in days.
type LeaveBalance struct {
	PaidLeaveAvailable   decimal.Decimal
	CasualLeaveAvailable decimal.Decimal
}

// Total returns paid plus casual leave.
func (b LeaveBalance) Total() decimal.Decimal {
	return b.PaidLeaveAvailable.Add(b.CasualLeaveAvailable)
}

// =============================================================================
// RESULT
// =============================================================================

// Breakdown lists the six monetary line items, each rounded to 2 places.
type Breakdown struct {
	ProRataSalary         decimal.Decimal
	LeaveEncashment       decimal.Decimal
	Gratuity              decimal.Decimal
	ProRatedBonus         decimal.Decimal
	PendingReimbursements decimal.Decimal
	NoticePeriodRecovery  decimal.Decimal
}

type Summary struct {
	GrossAmount     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSettlement   decimal.Decimal
}

type Details struct {
	WorkedDays            int
	DaysInMonth           int
	UnusedLeaves          decimal.Decimal
	TenureYears           decimal.Decimal // rounded to 2 places for display
	NoticePeriodShortfall int
}

// Result is the final settlement for one exit event.
type Result struct {
	ExitDate  string
	Breakdown Breakdown
	Summary   Summary
	Details   Details
	Warnings  generic.Diagnostics
}

// Diagnostic codes attached to Result.Warnings.
const (
	CodeInvalidExitDate        = "INVALID_EXIT_DATE"
	CodeInvalidJoiningDate     = "INVALID_JOINING_DATE"
	CodeJoiningAfterExit       = "JOINING_AFTER_EXIT"
	CodeInvalidResignationDate = "INVALID_RESIGNATION_DATE"
	CodeResignationAfterExit   = "RESIGNATION_AFTER_EXIT"
	CodeNoticeAssumedServed    = "NOTICE_ASSUMED_SERVED"
	CodeLeaveBalanceMissing    = "LEAVE_BALANCE_MISSING"
	CodeNegativeAmount         = "NEGATIVE_AMOUNT"
)

func zeroResult(exitDate string) Result {
	return Result{
		ExitDate: exitDate,
		Breakdown: Breakdown{
			ProRataSalary:         decimal.Zero,
			LeaveEncashment:       decimal.Zero,
			Gratuity:              decimal.Zero,
			ProRatedBonus:         decimal.Zero,
			PendingReimbursements: decimal.Zero,
			NoticePeriodRecovery:  decimal.Zero,
		},
		Summary: Summary{
			GrossAmount:     decimal.Zero,
			TotalDeductions: decimal.Zero,
			NetSettlement:   decimal.Zero,
		},
		Details: Details{
			UnusedLeaves: decimal.Zero,
			TenureYears:  decimal.Zero,
		},
	}
}

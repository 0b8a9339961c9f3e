package settlement

import (
	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/generic"
)

// =============================================================================
// REPORT - Presentation view of a settlement
// =============================================================================

type LineKind string

const (
	LineEarning   LineKind = "earning"
	LineDeduction LineKind = "deduction"
)

// ReportLine is one row of a settlement statement.
type ReportLine struct {
	Label  string
	Kind   LineKind
	Amount decimal.Decimal
}

// Report joins a settlement Result with the employee's identity for display.
// It never recomputes figures; every amount is copied from the Result.
type Report struct {
	EmployeeID      generic.EmployeeID
	EmployeeName    string
	Department      string
	Designation     string
	DateOfJoining   string
	ResignationDate string
	ExitDate        string

	Lines       []ReportLine
	Summary     Summary
	Details     Details
	Warnings    generic.Diagnostics
	NeedsReview bool // at least one WARNING diagnostic
}

// GenerateSettlementReport wraps result with identity fields from profile.
func GenerateSettlementReport(profile Profile, result Result) Report {
	b := result.Breakdown
	r := Report{
		EmployeeID:      profile.EmployeeID,
		EmployeeName:    profile.Name,
		Department:      profile.Department,
		Designation:     profile.Designation,
		DateOfJoining:   profile.DateOfJoining,
		ResignationDate: profile.ResignationDate,
		ExitDate:        result.ExitDate,
		Lines: []ReportLine{
			{Label: "Pro-rata salary", Kind: LineEarning, Amount: b.ProRataSalary},
			{Label: "Leave encashment", Kind: LineEarning, Amount: b.LeaveEncashment},
			{Label: "Gratuity", Kind: LineEarning, Amount: b.Gratuity},
			{Label: "Pro-rated bonus", Kind: LineEarning, Amount: b.ProRatedBonus},
			{Label: "Pending reimbursements", Kind: LineEarning, Amount: b.PendingReimbursements},
			{Label: "Notice period recovery", Kind: LineDeduction, Amount: b.NoticePeriodRecovery},
		},
		Summary:  result.Summary,
		Details:  result.Details,
		Warnings: result.Warnings,
	}
	for _, d := range result.Warnings {
		if d.Level == generic.LevelWarning {
			r.NeedsReview = true
			break
		}
	}
	return r
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain types carry
  decimal.Decimal and generic.Diagnostics; DTOs flatten them to float64 and
  snake_case so clients never see the internal representation.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Employee:
    EmployeeDTO, CreateEmployeeRequest, AssignRosterRequest

  Leave:
    LeaveBalanceDTO

  Attendance:
    ClassifyRequest, RecordAttendanceRequest, AttendanceDayDTO,
    MonthSummaryDTO, MonthAttendanceDTO

  Settlement:
    SettlementProfileDTO, CalculateSettlementRequest, EmployeeSettlementRequest,
    SettlementResultDTO, SettlementReportDTO

  Rosters:
    RosterDTO (wraps factory.RosterJSON)

  Month close:
    MonthCloseRunDTO, ProcessMonthCloseRequest, StoredMonthSummaryDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

MONEY:
  Amounts are rounded to two places before they reach a DTO, so the float64
  conversion never changes a reported figure.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/roster.go: RosterJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/attendance"
	"github.com/warp/hr-engine/factory"
	"github.com/warp/hr-engine/generic"
	"github.com/warp/hr-engine/settlement"
	"github.com/warp/hr-engine/store/sqlite"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Email                 string  `json:"email,omitempty"`
	Department            string  `json:"department,omitempty"`
	Designation           string  `json:"designation,omitempty"`
	DateOfJoining         string  `json:"date_of_joining"`
	ResignationDate       string  `json:"resignation_date,omitempty"`
	ExitDate              string  `json:"exit_date,omitempty"`
	AnnualCTC             float64 `json:"annual_ctc"`
	AnnualBonus           float64 `json:"annual_bonus"`
	PendingReimbursements float64 `json:"pending_reimbursements"`
	RosterID              string  `json:"roster_id,omitempty"`
	CreatedAt             string  `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request body for creating or updating an employee.
type CreateEmployeeRequest struct {
	ID                    string  `json:"id,omitempty"`
	Name                  string  `json:"name"`
	Email                 string  `json:"email,omitempty"`
	Department            string  `json:"department,omitempty"`
	Designation           string  `json:"designation,omitempty"`
	DateOfJoining         string  `json:"date_of_joining"`
	ResignationDate       string  `json:"resignation_date,omitempty"`
	ExitDate              string  `json:"exit_date,omitempty"`
	AnnualCTC             float64 `json:"annual_ctc"`
	AnnualBonus           float64 `json:"annual_bonus,omitempty"`
	PendingReimbursements float64 `json:"pending_reimbursements,omitempty"`
	RosterID              string  `json:"roster_id,omitempty"`
}

type AssignRosterRequest struct {
	RosterID string `json:"roster_id"`
}

// LeaveBalanceDTO is used for both the leave-balance request and response.
type LeaveBalanceDTO struct {
	EmployeeID           string  `json:"employee_id,omitempty"`
	PaidLeaveAvailable   float64 `json:"paid_leave_available"`
	CasualLeaveAvailable float64 `json:"casual_leave_available"`
	UpdatedAt            string  `json:"updated_at,omitempty"`
}

func toEmployeeDTO(e *sqlite.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:                    e.ID,
		Name:                  e.Name,
		Email:                 e.Email,
		Department:            e.Department,
		Designation:           e.Designation,
		DateOfJoining:         e.DateOfJoining,
		ResignationDate:       e.ResignationDate,
		ExitDate:              e.ExitDate,
		AnnualCTC:             generic.Float(e.AnnualCTC),
		AnnualBonus:           generic.Float(e.AnnualBonus),
		PendingReimbursements: generic.Float(e.PendingReimbursements),
		RosterID:              e.RosterID,
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// toProfile maps a stored employee onto the settlement calculator's input.
func toProfile(e *sqlite.Employee) settlement.Profile {
	return settlement.Profile{
		EmployeeID:            generic.EmployeeID(e.ID),
		Name:                  e.Name,
		Department:            e.Department,
		Designation:           e.Designation,
		AnnualCTC:             e.AnnualCTC,
		DateOfJoining:         e.DateOfJoining,
		ResignationDate:       e.ResignationDate,
		PendingReimbursements: e.PendingReimbursements,
		AnnualBonus:           e.AnnualBonus,
	}
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// ClassifyRequest is the body of the stateless classification endpoint.
// Roster takes precedence over RosterID; with neither the default roster applies.
type ClassifyRequest struct {
	ClockIn  string              `json:"clock_in"`
	ClockOut string              `json:"clock_out"`
	Date     string              `json:"date"`
	Roster   *factory.RosterJSON `json:"roster,omitempty"`
	RosterID string              `json:"roster_id,omitempty"`
}

// RecordAttendanceRequest records one day's punches. Replace overwrites an
// existing record for the date instead of failing with 409.
type RecordAttendanceRequest struct {
	Date     string `json:"date"`
	ClockIn  string `json:"clock_in"`
	ClockOut string `json:"clock_out"`
	Replace  bool   `json:"replace,omitempty"`
}

// AttendanceDayDTO is one classified day.
type AttendanceDayDTO struct {
	Date        string               `json:"date"`
	Status      string               `json:"status"`
	WorkHours   float64              `json:"work_hours"`
	WorkingDays float64              `json:"working_days"`
	Overtime    float64              `json:"overtime"`
	ClockIn     string               `json:"clock_in,omitempty"`
	ClockOut    string               `json:"clock_out,omitempty"`
	Warnings    []generic.Diagnostic `json:"warnings"`
}

type MonthSummaryDTO struct {
	Month        string         `json:"month"`
	Days         int            `json:"days"`
	StatusCounts map[string]int `json:"status_counts"`
	WorkingDays  float64        `json:"working_days"`
	WorkHours    float64        `json:"work_hours"`
	Overtime     float64        `json:"overtime"`
	Flagged      int            `json:"flagged"`
}

// MonthAttendanceDTO is an employee's classified month.
type MonthAttendanceDTO struct {
	EmployeeID string             `json:"employee_id"`
	RosterID   string             `json:"roster_id"`
	Days       []AttendanceDayDTO `json:"days"`
	Summary    MonthSummaryDTO    `json:"summary"`
}

func toAttendanceDayDTO(r attendance.Result, in attendance.Input) AttendanceDayDTO {
	return AttendanceDayDTO{
		Date:        r.Date,
		Status:      string(r.Status),
		WorkHours:   generic.Float(r.WorkHours),
		WorkingDays: generic.Float(r.WorkingDays),
		Overtime:    generic.Float(r.Overtime),
		ClockIn:     in.ClockIn,
		ClockOut:    in.ClockOut,
		Warnings:    diagnostics(r.Warnings),
	}
}

func toMonthSummaryDTO(s attendance.MonthSummary) MonthSummaryDTO {
	counts := make(map[string]int, len(s.StatusCounts))
	for status, n := range s.StatusCounts {
		counts[string(status)] = n
	}
	return MonthSummaryDTO{
		Month:        s.Period.Label(),
		Days:         s.Days,
		StatusCounts: counts,
		WorkingDays:  generic.Float(s.WorkingDays),
		WorkHours:    generic.Float(s.WorkHours),
		Overtime:     generic.Float(s.Overtime),
		Flagged:      s.Flagged,
	}
}

// =============================================================================
// SETTLEMENT
// =============================================================================

// SettlementProfileDTO is the employee profile accepted by the stateless
// settlement endpoint.
type SettlementProfileDTO struct {
	EmployeeID            string  `json:"employee_id"`
	Name                  string  `json:"name"`
	Department            string  `json:"department,omitempty"`
	Designation           string  `json:"designation,omitempty"`
	AnnualCTC             float64 `json:"annual_ctc"`
	DateOfJoining         string  `json:"date_of_joining"`
	ResignationDate       string  `json:"resignation_date,omitempty"`
	PendingReimbursements float64 `json:"pending_reimbursements,omitempty"`
	AnnualBonus           float64 `json:"annual_bonus,omitempty"`
}

type CalculateSettlementRequest struct {
	Profile      SettlementProfileDTO `json:"profile"`
	ExitDate     string               `json:"exit_date"`
	LeaveBalance *LeaveBalanceDTO     `json:"leave_balance,omitempty"`
}

// EmployeeSettlementRequest computes a stored employee's settlement.
// An empty ExitDate falls back to the employee's recorded exit date.
type EmployeeSettlementRequest struct {
	ExitDate string `json:"exit_date,omitempty"`
}

type BreakdownDTO struct {
	ProRataSalary         float64 `json:"pro_rata_salary"`
	LeaveEncashment       float64 `json:"leave_encashment"`
	Gratuity              float64 `json:"gratuity"`
	ProRatedBonus         float64 `json:"pro_rated_bonus"`
	PendingReimbursements float64 `json:"pending_reimbursements"`
	NoticePeriodRecovery  float64 `json:"notice_period_recovery"`
}

type SettlementSummaryDTO struct {
	GrossAmount     float64 `json:"gross_amount"`
	TotalDeductions float64 `json:"total_deductions"`
	NetSettlement   float64 `json:"net_settlement"`
}

type SettlementDetailsDTO struct {
	WorkedDays            int     `json:"worked_days"`
	DaysInMonth           int     `json:"days_in_month"`
	UnusedLeaves          float64 `json:"unused_leaves"`
	TenureYears           float64 `json:"tenure_years"`
	NoticePeriodShortfall int     `json:"notice_period_shortfall"`
}

// SettlementResultDTO is a computed settlement. ID and CreatedAt are set only
// when the settlement was persisted.
type SettlementResultDTO struct {
	ID         string               `json:"id,omitempty"`
	EmployeeID string               `json:"employee_id,omitempty"`
	ExitDate   string               `json:"exit_date"`
	Breakdown  BreakdownDTO         `json:"breakdown"`
	Summary    SettlementSummaryDTO `json:"summary"`
	Details    SettlementDetailsDTO `json:"details"`
	Warnings   []generic.Diagnostic `json:"warnings"`
	CreatedAt  string               `json:"created_at,omitempty"`
}

type ReportLineDTO struct {
	Label  string  `json:"label"`
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
}

// SettlementReportDTO is the printable statement of a settlement.
type SettlementReportDTO struct {
	EmployeeID      string               `json:"employee_id"`
	EmployeeName    string               `json:"employee_name"`
	Department      string               `json:"department,omitempty"`
	Designation     string               `json:"designation,omitempty"`
	DateOfJoining   string               `json:"date_of_joining"`
	ResignationDate string               `json:"resignation_date,omitempty"`
	ExitDate        string               `json:"exit_date"`
	Lines           []ReportLineDTO      `json:"lines"`
	Summary         SettlementSummaryDTO `json:"summary"`
	Details         SettlementDetailsDTO `json:"details"`
	Warnings        []generic.Diagnostic `json:"warnings"`
	NeedsReview     bool                 `json:"needs_review"`
	SettlementID    string               `json:"settlement_id,omitempty"`
	GeneratedAt     string               `json:"generated_at,omitempty"`
}

func toSettlementSummaryDTO(s settlement.Summary) SettlementSummaryDTO {
	return SettlementSummaryDTO{
		GrossAmount:     generic.Float(s.GrossAmount),
		TotalDeductions: generic.Float(s.TotalDeductions),
		NetSettlement:   generic.Float(s.NetSettlement),
	}
}

func toSettlementDetailsDTO(d settlement.Details) SettlementDetailsDTO {
	return SettlementDetailsDTO{
		WorkedDays:            d.WorkedDays,
		DaysInMonth:           d.DaysInMonth,
		UnusedLeaves:          generic.Float(d.UnusedLeaves),
		TenureYears:           generic.Float(d.TenureYears),
		NoticePeriodShortfall: d.NoticePeriodShortfall,
	}
}

func toSettlementResultDTO(r settlement.Result) SettlementResultDTO {
	b := r.Breakdown
	return SettlementResultDTO{
		ExitDate: r.ExitDate,
		Breakdown: BreakdownDTO{
			ProRataSalary:         generic.Float(b.ProRataSalary),
			LeaveEncashment:       generic.Float(b.LeaveEncashment),
			Gratuity:              generic.Float(b.Gratuity),
			ProRatedBonus:         generic.Float(b.ProRatedBonus),
			PendingReimbursements: generic.Float(b.PendingReimbursements),
			NoticePeriodRecovery:  generic.Float(b.NoticePeriodRecovery),
		},
		Summary:  toSettlementSummaryDTO(r.Summary),
		Details:  toSettlementDetailsDTO(r.Details),
		Warnings: diagnostics(r.Warnings),
	}
}

func toSettlementReportDTO(rep settlement.Report) SettlementReportDTO {
	lines := make([]ReportLineDTO, len(rep.Lines))
	for i, l := range rep.Lines {
		lines[i] = ReportLineDTO{Label: l.Label, Kind: string(l.Kind), Amount: generic.Float(l.Amount)}
	}
	return SettlementReportDTO{
		EmployeeID:      string(rep.EmployeeID),
		EmployeeName:    rep.EmployeeName,
		Department:      rep.Department,
		Designation:     rep.Designation,
		DateOfJoining:   rep.DateOfJoining,
		ResignationDate: rep.ResignationDate,
		ExitDate:        rep.ExitDate,
		Lines:           lines,
		Summary:         toSettlementSummaryDTO(rep.Summary),
		Details:         toSettlementDetailsDTO(rep.Details),
		Warnings:        diagnostics(rep.Warnings),
		NeedsReview:     rep.NeedsReview,
	}
}

func (p SettlementProfileDTO) toProfile() settlement.Profile {
	return settlement.Profile{
		EmployeeID:            generic.EmployeeID(p.EmployeeID),
		Name:                  p.Name,
		Department:            p.Department,
		Designation:           p.Designation,
		AnnualCTC:             decimal.NewFromFloat(p.AnnualCTC),
		DateOfJoining:         p.DateOfJoining,
		ResignationDate:       p.ResignationDate,
		PendingReimbursements: decimal.NewFromFloat(p.PendingReimbursements),
		AnnualBonus:           decimal.NewFromFloat(p.AnnualBonus),
	}
}

func (b *LeaveBalanceDTO) toLeaveBalance() *settlement.LeaveBalance {
	if b == nil {
		return nil
	}
	return &settlement.LeaveBalance{
		PaidLeaveAvailable:   decimal.NewFromFloat(b.PaidLeaveAvailable),
		CasualLeaveAvailable: decimal.NewFromFloat(b.CasualLeaveAvailable),
	}
}

// =============================================================================
// ROSTERS
// =============================================================================

// RosterDTO represents a stored roster in API responses.
type RosterDTO struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Version   int                `json:"version"`
	Config    factory.RosterJSON `json:"config"`
	UpdatedAt string             `json:"updated_at,omitempty"`
}

// =============================================================================
// MONTH CLOSE
// =============================================================================

type ProcessMonthCloseRequest struct {
	Month string `json:"month,omitempty"` // YYYY-MM, default previous month
	Force bool   `json:"force,omitempty"` // re-run a month that already closed
}

type MonthCloseRunDTO struct {
	ID          string   `json:"id"`
	Month       string   `json:"month"`
	Status      string   `json:"status"`
	Employees   int      `json:"employees"`
	Processed   int      `json:"processed"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors,omitempty"`
	StartedAt   string   `json:"started_at,omitempty"`
	CompletedAt string   `json:"completed_at,omitempty"`
}

// StoredMonthSummaryDTO is a month summary persisted by month close.
type StoredMonthSummaryDTO struct {
	EmployeeID   string         `json:"employee_id"`
	Month        string         `json:"month"`
	RosterID     string         `json:"roster_id"`
	StatusCounts map[string]int `json:"status_counts"`
	WorkingDays  float64        `json:"working_days"`
	WorkHours    float64        `json:"work_hours"`
	Overtime     float64        `json:"overtime"`
	Flagged      int            `json:"flagged"`
	RunID        string         `json:"run_id,omitempty"`
}

func toMonthCloseRunDTO(run sqlite.MonthCloseRun) MonthCloseRunDTO {
	dto := MonthCloseRunDTO{
		ID:        run.ID,
		Month:     run.Month,
		Status:    run.Status,
		Employees: run.Employees,
		Processed: run.Processed,
		Failed:    run.Failed,
		Errors:    run.Errors,
	}
	if run.StartedAt != nil {
		dto.StartedAt = run.StartedAt.Format(time.RFC3339)
	}
	if run.CompletedAt != nil {
		dto.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the request body for loading a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// diagnostics never returns nil so warnings always render as a JSON array.
func diagnostics(ds generic.Diagnostics) []generic.Diagnostic {
	if ds == nil {
		return []generic.Diagnostic{}
	}
	return ds
}

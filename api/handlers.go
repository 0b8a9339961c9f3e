/*
handlers.go - HTTP API handlers for the attendance and settlement engine

PURPOSE:
  Exposes attendance classification and exit settlement via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  attendance and settlement packages. Those packages are pure; everything
  that touches storage lives here.

ENDPOINTS:
  Stateless:
    POST   /api/attendance/classify            Classify one day's punches
    POST   /api/settlements/calculate          Compute a settlement from a profile

  Employees:
    GET    /api/employees                      List all employees
    POST   /api/employees                      Create or update employee
    GET    /api/employees/{id}                 Get employee details
    PUT    /api/employees/{id}/roster          Assign roster
    GET    /api/employees/{id}/leave-balance   Get leave balance
    PUT    /api/employees/{id}/leave-balance   Replace leave balance
    POST   /api/employees/{id}/attendance      Record punches for a day
    GET    /api/employees/{id}/attendance      Classified month (?month=YYYY-MM)
    POST   /api/employees/{id}/settlement      Compute and persist settlement
    GET    /api/employees/{id}/settlement/report  Latest settlement statement

  Rosters:
    GET    /api/rosters                        List rosters
    POST   /api/rosters                        Create or update roster from JSON
    GET    /api/rosters/{id}                   Get roster

  Month close:
    GET    /api/month-close/runs               Run history (?status=)
    GET    /api/month-close/summaries          Persisted summaries (?month=)
    POST   /api/month-close/process            Close a month now

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate punch, month already closed)
  - 500: Internal errors (logged)

  Malformed punches and profile dates are NOT errors: the engine degrades
  and reports them as warnings on a 200/201 response.

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/attendance"
	"github.com/warp/hr-engine/factory"
	"github.com/warp/hr-engine/generic"
	"github.com/warp/hr-engine/settlement"
	"github.com/warp/hr-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         *sqlite.Store
	RosterFactory *factory.RosterFactory
	Classifier    attendance.Classifier
	Calculator    *settlement.Calculator
	MonthClose    *MonthCloseScheduler
	Logger        *slog.Logger

	now func() time.Time

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a handler with IST classification and the default
// settlement rules. Callers may replace Classifier and Calculator before
// serving.
func NewHandler(store *sqlite.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		Store:         store,
		RosterFactory: factory.NewRosterFactory(),
		Classifier:    attendance.NewClassifier(generic.IST),
		Calculator:    settlement.DefaultCalculator(),
		Logger:        logger,
		now:           time.Now,
	}
	h.MonthClose = NewMonthCloseScheduler(store, h, logger)
	return h
}

// SeedRosters stores the preset rosters that are not stored yet.
// Existing rosters are left untouched.
func (h *Handler) SeedRosters(ctx context.Context) error {
	for _, roster := range factory.PresetRosters() {
		_, err := h.Store.GetRoster(ctx, string(roster.ID))
		if err == nil {
			continue
		}
		if !errors.Is(err, generic.ErrRosterNotFound) {
			return err
		}
		if err := h.saveRoster(ctx, roster); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) saveRoster(ctx context.Context, roster attendance.Roster) error {
	configJSON, err := h.RosterFactory.Marshal(roster)
	if err != nil {
		return err
	}
	return h.Store.SaveRoster(ctx, sqlite.RosterRecord{
		ID:         string(roster.ID),
		Name:       roster.Name,
		ConfigJSON: configJSON,
	})
}

// resolveRoster loads a stored roster. An empty ID means the default roster.
func (h *Handler) resolveRoster(ctx context.Context, rosterID string) (attendance.Roster, error) {
	if rosterID == "" {
		return attendance.DefaultRoster(), nil
	}
	rec, err := h.Store.GetRoster(ctx, rosterID)
	if err != nil {
		return attendance.Roster{}, err
	}
	roster, err := h.RosterFactory.ParseRoster(rec.ConfigJSON)
	if err != nil {
		return attendance.Roster{}, fmt.Errorf("stored roster %s: %w", rosterID, err)
	}
	return roster, nil
}

// currentMonth is the calendar month containing today in the classifier's zone.
func (h *Handler) currentMonth() generic.Period {
	zone := h.Classifier.Zone
	if zone == nil {
		zone = generic.IST
	}
	today := h.now().In(zone)
	return generic.MonthPeriod(today.Year(), today.Month())
}

// =============================================================================
// STATELESS ENGINE
// =============================================================================

// ClassifyAttendance classifies one day's punches.
// POST /api/attendance/classify
func (h *Handler) ClassifyAttendance(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		roster attendance.Roster
		err    error
	)
	switch {
	case req.Roster != nil:
		if req.Roster.ID == "" {
			req.Roster.ID = "inline"
		}
		roster, err = h.RosterFactory.FromJSON(*req.Roster)
	default:
		roster, err = h.resolveRoster(r.Context(), req.RosterID)
	}
	if err != nil {
		h.writeDomainError(w, r, "Invalid roster", err)
		return
	}

	in := attendance.Input{ClockIn: req.ClockIn, ClockOut: req.ClockOut, Date: req.Date}
	result := h.Classifier.Classify(in, &roster)

	writeJSON(w, http.StatusOK, toAttendanceDayDTO(result, in))
}

// CalculateSettlement computes a settlement without touching the store.
// POST /api/settlements/calculate
func (h *Handler) CalculateSettlement(w http.ResponseWriter, r *http.Request) {
	var req CalculateSettlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result := h.Calculator.Calculate(req.Profile.toProfile(), req.ExitDate, req.LeaveBalance.toLeaveBalance())

	dto := toSettlementResultDTO(result)
	dto.EmployeeID = req.Profile.EmployeeID
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i := range employees {
		dtos[i] = toEmployeeDTO(&employees[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee creates an employee, or updates it when the ID exists.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if _, err := generic.ParseDate(req.DateOfJoining); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date_of_joining format (use YYYY-MM-DD)", err)
		return
	}
	for field, value := range map[string]string{"resignation_date": req.ResignationDate, "exit_date": req.ExitDate} {
		if value == "" {
			continue
		}
		if _, err := generic.ParseDate(value); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid "+field+" format (use YYYY-MM-DD)", err)
			return
		}
	}
	if req.AnnualCTC < 0 || req.AnnualBonus < 0 || req.PendingReimbursements < 0 {
		writeError(w, http.StatusBadRequest, "Amounts must not be negative", nil)
		return
	}
	if req.RosterID != "" {
		if _, err := h.Store.GetRoster(r.Context(), req.RosterID); err != nil {
			writeError(w, http.StatusBadRequest, "Unknown roster_id", err)
			return
		}
	}

	emp := &sqlite.Employee{
		ID:                    req.ID,
		Name:                  req.Name,
		Email:                 req.Email,
		Department:            req.Department,
		Designation:           req.Designation,
		DateOfJoining:         req.DateOfJoining,
		ResignationDate:       req.ResignationDate,
		ExitDate:              req.ExitDate,
		AnnualCTC:             decimal.NewFromFloat(req.AnnualCTC),
		AnnualBonus:           decimal.NewFromFloat(req.AnnualBonus),
		PendingReimbursements: decimal.NewFromFloat(req.PendingReimbursements),
		RosterID:              req.RosterID,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeDomainError(w, r, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// AssignRoster sets the roster used to classify an employee's attendance.
// PUT /api/employees/{id}/roster
func (h *Handler) AssignRoster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AssignRosterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.RosterID != "" {
		if _, err := h.Store.GetRoster(r.Context(), req.RosterID); err != nil {
			writeError(w, http.StatusBadRequest, "Unknown roster_id", err)
			return
		}
	}

	if err := h.Store.AssignRoster(r.Context(), id, req.RosterID); err != nil {
		h.writeDomainError(w, r, "Failed to assign roster", err)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// =============================================================================
// LEAVE BALANCE HANDLERS
// =============================================================================

// GetLeaveBalance returns the employee's unused leave.
// GET /api/employees/{id}/leave-balance
func (h *Handler) GetLeaveBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}

	balance, err := h.Store.GetLeaveBalance(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, "Failed to get leave balance", err)
		return
	}
	if balance == nil {
		writeError(w, http.StatusNotFound, "No leave balance recorded", nil)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveBalanceDTO(balance))
}

// SetLeaveBalance replaces the employee's unused leave.
// PUT /api/employees/{id}/leave-balance
func (h *Handler) SetLeaveBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req LeaveBalanceDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PaidLeaveAvailable < 0 || req.CasualLeaveAvailable < 0 {
		writeError(w, http.StatusBadRequest, "Leave balances must not be negative", nil)
		return
	}
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}

	balance := sqlite.LeaveBalance{
		EmployeeID:  id,
		PaidLeave:   decimal.NewFromFloat(req.PaidLeaveAvailable),
		CasualLeave: decimal.NewFromFloat(req.CasualLeaveAvailable),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := h.Store.SaveLeaveBalance(r.Context(), balance); err != nil {
		h.writeDomainError(w, r, "Failed to save leave balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveBalanceDTO(&balance))
}

func toLeaveBalanceDTO(b *sqlite.LeaveBalance) LeaveBalanceDTO {
	dto := LeaveBalanceDTO{
		EmployeeID:           b.EmployeeID,
		PaidLeaveAvailable:   generic.Float(b.PaidLeave),
		CasualLeaveAvailable: generic.Float(b.CasualLeave),
	}
	if !b.UpdatedAt.IsZero() {
		dto.UpdatedAt = b.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// RecordAttendance stores one day's punches and returns its classification.
// POST /api/employees/{id}/attendance
func (h *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req RecordAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := generic.ParseDate(req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}
	roster, err := h.resolveRoster(ctx, emp.RosterID)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load roster", err)
		return
	}

	punch := &sqlite.Punch{
		EmployeeID: emp.ID,
		Date:       req.Date,
		ClockIn:    req.ClockIn,
		ClockOut:   req.ClockOut,
		Source:     "api",
	}
	if req.Replace {
		err = h.Store.UpsertPunch(ctx, punch)
	} else {
		err = h.Store.RecordPunch(ctx, punch)
	}
	if err != nil {
		h.writeDomainError(w, r, "Failed to record attendance", err)
		return
	}

	// Punches are stored as given; malformed values come back as warnings.
	in := attendance.Input{ClockIn: punch.ClockIn, ClockOut: punch.ClockOut, Date: punch.Date}
	result := h.Classifier.Classify(in, &roster)

	writeJSON(w, http.StatusCreated, toAttendanceDayDTO(result, in))
}

// GetAttendance returns every classified day of a month plus its summary.
// GET /api/employees/{id}/attendance?month=YYYY-MM
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	month := h.currentMonth()
	if m := r.URL.Query().Get("month"); m != "" {
		p, err := generic.ParseMonth(m)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
		month = p
	}

	emp, err := h.Store.GetEmployee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}

	cm, err := h.classifyMonth(ctx, emp, month)
	if err != nil {
		h.writeDomainError(w, r, "Failed to classify attendance", err)
		return
	}

	days := make([]AttendanceDayDTO, len(cm.Days))
	for i, d := range cm.Days {
		days[i] = toAttendanceDayDTO(d, cm.Inputs[d.Date])
	}
	writeJSON(w, http.StatusOK, MonthAttendanceDTO{
		EmployeeID: emp.ID,
		RosterID:   string(cm.Roster.ID),
		Days:       days,
		Summary:    toMonthSummaryDTO(cm.Summary),
	})
}

// classifiedMonth is one employee's month as classified from stored punches.
type classifiedMonth struct {
	Roster  attendance.Roster
	Inputs  map[string]attendance.Input
	Days    []attendance.Result
	Summary attendance.MonthSummary
}

// classifyMonth classifies the days of month the employee was on the rolls.
func (h *Handler) classifyMonth(ctx context.Context, emp *sqlite.Employee, month generic.Period) (*classifiedMonth, error) {
	roster, err := h.resolveRoster(ctx, emp.RosterID)
	if err != nil {
		return nil, err
	}

	cm := &classifiedMonth{Roster: roster, Inputs: map[string]attendance.Input{}}
	period, ok := employmentPeriod(emp, month)
	if !ok {
		cm.Summary = attendance.Summarize(month, nil)
		return cm, nil
	}

	punches, err := h.Store.GetPunches(ctx, emp.ID, period)
	if err != nil {
		return nil, err
	}
	for _, p := range punches {
		cm.Inputs[p.Date] = attendance.Input{ClockIn: p.ClockIn, ClockOut: p.ClockOut, Date: p.Date}
	}

	cm.Days = h.Classifier.ClassifyPeriod(period, cm.Inputs, &roster)
	cm.Summary = attendance.Summarize(period, cm.Days)
	return cm, nil
}

// employmentPeriod clips month to the days between joining and exit.
// Unparseable profile dates leave the month unclipped.
func employmentPeriod(emp *sqlite.Employee, month generic.Period) (generic.Period, bool) {
	p := month
	if joined, err := generic.ParseDate(emp.DateOfJoining); err == nil && joined.After(p.Start) {
		p.Start = joined
	}
	if exit, err := generic.ParseDate(emp.ExitDate); err == nil && exit.Before(p.End) {
		p.End = exit
	}
	return p, p.Validate() == nil
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// CalculateEmployeeSettlement computes and persists a stored employee's settlement.
// POST /api/employees/{id}/settlement
func (h *Handler) CalculateEmployeeSettlement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EmployeeSettlementRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp, err := h.Store.GetEmployee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}

	exitDate := req.ExitDate
	if exitDate == "" {
		exitDate = emp.ExitDate
	}
	if exitDate == "" {
		writeError(w, http.StatusBadRequest, "exit_date is required (employee has none recorded)", nil)
		return
	}

	result, rec, err := h.settleEmployee(ctx, emp, exitDate)
	if err != nil {
		h.writeDomainError(w, r, "Failed to save settlement", err)
		return
	}

	h.Logger.InfoContext(ctx, "settlement computed",
		slog.String("employee_id", emp.ID),
		slog.String("settlement_id", rec.ID),
		slog.String("exit_date", exitDate),
		slog.String("net_settlement", result.Summary.NetSettlement.StringFixed(2)),
		slog.Int("warnings", len(result.Warnings)),
	)

	dto := toSettlementResultDTO(result)
	dto.ID = rec.ID
	dto.EmployeeID = emp.ID
	dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	writeJSON(w, http.StatusCreated, dto)
}

// settleEmployee computes the settlement for emp leaving on exitDate using
// the stored leave balance, and appends it to the settlement history.
func (h *Handler) settleEmployee(ctx context.Context, emp *sqlite.Employee, exitDate string) (settlement.Result, *sqlite.SettlementRecord, error) {
	stored, err := h.Store.GetLeaveBalance(ctx, emp.ID)
	if err != nil {
		return settlement.Result{}, nil, err
	}
	var balance *settlement.LeaveBalance
	if stored != nil {
		balance = &settlement.LeaveBalance{
			PaidLeaveAvailable:   stored.PaidLeave,
			CasualLeaveAvailable: stored.CasualLeave,
		}
	}

	result := h.Calculator.Calculate(toProfile(emp), exitDate, balance)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return settlement.Result{}, nil, fmt.Errorf("failed to encode settlement: %w", err)
	}
	rec := &sqlite.SettlementRecord{
		EmployeeID:    emp.ID,
		ExitDate:      exitDate,
		GrossAmount:   result.Summary.GrossAmount,
		NetSettlement: result.Summary.NetSettlement,
		ResultJSON:    string(resultJSON),
	}
	if err := h.Store.SaveSettlement(ctx, rec); err != nil {
		return settlement.Result{}, nil, err
	}
	return result, rec, nil
}

// GetSettlementReport renders the latest persisted settlement as a statement.
// GET /api/employees/{id}/settlement/report
func (h *Handler) GetSettlementReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	emp, err := h.Store.GetEmployee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}
	rec, err := h.Store.GetLatestSettlement(ctx, emp.ID)
	if err != nil {
		h.writeDomainError(w, r, "Failed to get settlement", err)
		return
	}

	var result settlement.Result
	if err := json.Unmarshal([]byte(rec.ResultJSON), &result); err != nil {
		h.writeDomainError(w, r, "Failed to decode settlement", err)
		return
	}

	dto := toSettlementReportDTO(settlement.GenerateSettlementReport(toProfile(emp), result))
	dto.SettlementID = rec.ID
	dto.GeneratedAt = rec.CreatedAt.Format(time.RFC3339)
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// ListRosters returns all stored rosters.
func (h *Handler) ListRosters(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListRosters(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list rosters", err)
		return
	}

	dtos := make([]RosterDTO, 0, len(records))
	for _, rec := range records {
		dto, err := h.toRosterDTO(rec)
		if err != nil {
			h.Logger.WarnContext(r.Context(), "skipping invalid stored roster", slog.String("roster_id", rec.ID), slog.Any("error", err))
			continue
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRoster returns a single roster.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetRoster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get roster", err)
		return
	}
	dto, err := h.toRosterDTO(*rec)
	if err != nil {
		h.writeDomainError(w, r, "Stored roster is invalid", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// CreateRoster creates a roster from JSON, or bumps the version of an
// existing one.
func (h *Handler) CreateRoster(w http.ResponseWriter, r *http.Request) {
	var req factory.RosterJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	roster, err := h.RosterFactory.FromJSON(req)
	if err != nil {
		h.writeDomainError(w, r, "Invalid roster", err)
		return
	}
	if err := h.saveRoster(r.Context(), roster); err != nil {
		h.writeDomainError(w, r, "Failed to save roster", err)
		return
	}

	rec, err := h.Store.GetRoster(r.Context(), string(roster.ID))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get roster", err)
		return
	}
	dto, err := h.toRosterDTO(*rec)
	if err != nil {
		h.writeDomainError(w, r, "Stored roster is invalid", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

func (h *Handler) toRosterDTO(rec sqlite.RosterRecord) (RosterDTO, error) {
	roster, err := h.RosterFactory.ParseRoster(rec.ConfigJSON)
	if err != nil {
		return RosterDTO{}, err
	}
	return RosterDTO{
		ID:        rec.ID,
		Name:      rec.Name,
		Version:   rec.Version,
		Config:    h.RosterFactory.ToJSON(roster),
		UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
	}, nil
}

// =============================================================================
// MONTH CLOSE HANDLERS
// =============================================================================

// ListMonthCloseRuns returns month-close run history.
// GET /api/month-close/runs
func (h *Handler) ListMonthCloseRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.GetMonthCloseRuns(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get month-close runs", err)
		return
	}

	dtos := make([]MonthCloseRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toMonthCloseRunDTO(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": dtos})
}

// ListMonthSummaries returns the summaries month close persisted.
// GET /api/month-close/summaries?month=YYYY-MM
func (h *Handler) ListMonthSummaries(w http.ResponseWriter, r *http.Request) {
	month, err := generic.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	summaries, err := h.Store.GetMonthSummaries(r.Context(), month.Label())
	if err != nil {
		h.writeDomainError(w, r, "Failed to get month summaries", err)
		return
	}

	dtos := make([]StoredMonthSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, StoredMonthSummaryDTO{
			EmployeeID:   s.EmployeeID,
			Month:        s.Month,
			RosterID:     s.RosterID,
			StatusCounts: s.StatusCounts,
			WorkingDays:  generic.Float(s.WorkingDays),
			WorkHours:    generic.Float(s.WorkHours),
			Overtime:     generic.Float(s.Overtime),
			Flagged:      s.Flagged,
			RunID:        s.RunID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": month.Label(), "summaries": dtos})
}

// ProcessMonthClose closes a month immediately. The default is the previous month.
// POST /api/month-close/process
func (h *Handler) ProcessMonthClose(w http.ResponseWriter, r *http.Request) {
	var req ProcessMonthCloseRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	month := h.currentMonth().PreviousMonth()
	if req.Month != "" {
		p, err := generic.ParseMonth(req.Month)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
		month = p
	}

	run, err := h.MonthClose.CloseMonth(r.Context(), month, req.Force)
	if err != nil {
		h.writeDomainError(w, r, "Month close failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthCloseRunDTO(*run))
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// decodeOptionalJSON is decodeJSON that accepts an empty body.
func decodeOptionalJSON(r *http.Request, v any) error {
	if err := decodeJSON(r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps sentinel errors to a status. Anything unrecognized
// is a 500 and is logged.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case generic.IsNotFound(err):
		status = http.StatusNotFound
	case generic.IsConflict(err):
		status = http.StatusConflict
	case generic.IsClientError(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), message, slog.Any("error", err))
	}
	writeError(w, status, message, err)
}

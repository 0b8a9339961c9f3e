/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	HR data. Each scenario creates employees, assigns rosters, records punches
	and leave balances that demonstrate specific classification or settlement
	behaviour.

AVAILABLE SCENARIOS:

	attendance-month:      Every day status on the default roster, June 2025
	night-shift:           Cross-midnight punches on the night roster
	exit-full-notice:      Six-year employee, notice assumed served, gratuity due
	exit-notice-shortfall: Short notice, bonus and reimbursements, no gratuity
	team-month-close:      Mixed rosters plus a joiner and a leaver, May 2025

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Seed preset rosters
 3. Create employees and assign rosters
 4. Record punches and leave balances
 5. Optionally compute a settlement

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "exit-full-notice"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: employee, attendance and settlement handlers
  - factory/roster.go: preset rosters
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/generic"
	"github.com/warp/hr-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "attendance-month",
		Name:        "Attendance Month",
		Description: "Default roster with present, late, half-day, LWP, overtime and open-shift days",
		Category:    "attendance",
	},
	{
		ID:          "night-shift",
		Name:        "Night Shift",
		Description: "Night roster with punches that cross midnight",
		Category:    "attendance",
	},
	{
		ID:          "exit-full-notice",
		Name:        "Exit: Full Notice",
		Description: "Six years of service, no resignation date on file, gratuity payable",
		Category:    "settlement",
	},
	{
		ID:          "exit-notice-shortfall",
		Name:        "Exit: Notice Shortfall",
		Description: "Resigned two weeks before exit, notice recovery deducted, below gratuity tenure",
		Category:    "settlement",
	},
	{
		ID:          "team-month-close",
		Name:        "Team Month Close",
		Description: "Day, night and flex rosters with a mid-month joiner and leaver, ready for month close",
		Category:    "month-close",
	},
}

type scenarioLoader func(h *Handler, ctx context.Context) error

var scenarioLoaders = map[string]scenarioLoader{
	"attendance-month":      (*Handler).loadAttendanceMonthScenario,
	"night-shift":           (*Handler).loadNightShiftScenario,
	"exit-full-notice":      (*Handler).loadExitFullNoticeScenario,
	"exit-notice-shortfall": (*Handler).loadExitNoticeShortfallScenario,
	"team-month-close":      (*Handler).loadTeamMonthCloseScenario,
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the loaded scenario, or null.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current, Description: "Currently loaded scenario"})
}

// LoadScenario resets the database and loads a scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		h.writeDomainError(w, r, "Failed to reset database", err)
		return
	}
	if err := load(h, ctx); err != nil {
		h.writeDomainError(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data and re-seeds the preset rosters.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		h.writeDomainError(w, r, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset(ctx context.Context) error {
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	return h.SeedRosters(ctx)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadAttendanceMonthScenario(ctx context.Context) error {
	emp := &sqlite.Employee{
		ID:            "emp-priya",
		Name:          "Priya Sharma",
		Email:         "priya.sharma@example.com",
		Department:    "Engineering",
		Designation:   "Software Engineer",
		DateOfJoining: "2023-01-09",
		AnnualCTC:     decimal.NewFromInt(1800000),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	punches := map[string][2]string{
		"2025-06-02": {"09:00", "17:30"}, // present
		"2025-06-03": {"09:30", "18:30"}, // late, full hours
		"2025-06-04": {"09:00", "13:30"}, // half day
		"2025-06-05": {"09:00", "12:00"}, // lwp
		"2025-06-06": {"09:00", "19:00"}, // one hour overtime
		"2025-06-09": {"09:10", ""},      // forgot to clock out
		"2025-06-10": {"9am", "17:00"},   // device glitch
	}
	june := generic.MonthPeriod(2025, time.June)
	for _, day := range weekdays(june) {
		if day.Day() > 10 {
			punches[day.String()] = [2]string{"08:55", "17:40"}
		}
	}
	if err := h.recordPunches(ctx, emp.ID, punches); err != nil {
		return err
	}

	return h.Store.SaveLeaveBalance(ctx, sqlite.LeaveBalance{
		EmployeeID:  emp.ID,
		PaidLeave:   decimal.NewFromInt(12),
		CasualLeave: decimal.NewFromInt(6),
	})
}

func (h *Handler) loadNightShiftScenario(ctx context.Context) error {
	emp := &sqlite.Employee{
		ID:            "emp-arjun",
		Name:          "Arjun Mehta",
		Department:    "Support",
		Designation:   "Support Engineer",
		DateOfJoining: "2021-08-02",
		AnnualCTC:     decimal.NewFromInt(960000),
		RosterID:      "night-shift",
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	return h.recordPunches(ctx, emp.ID, map[string][2]string{
		"2025-06-02": {"22:00", "06:30"}, // present, 8.5h across midnight
		"2025-06-03": {"22:20", "07:00"}, // late
		"2025-06-04": {"23:00", "03:00"}, // half day
		"2025-06-05": {"22:00", "08:00"}, // one hour overtime
		"2025-06-06": {"22:05", "01:00"}, // lwp
	})
}

func (h *Handler) loadExitFullNoticeScenario(ctx context.Context) error {
	emp := &sqlite.Employee{
		ID:            "emp-asha",
		Name:          "Asha Rao",
		Email:         "asha.rao@example.com",
		Department:    "Finance",
		Designation:   "Senior Accountant",
		DateOfJoining: "2019-06-17",
		ExitDate:      "2025-06-15",
		AnnualCTC:     decimal.NewFromInt(1200000),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}
	if err := h.Store.SaveLeaveBalance(ctx, sqlite.LeaveBalance{
		EmployeeID:  emp.ID,
		PaidLeave:   decimal.NewFromInt(6),
		CasualLeave: decimal.NewFromInt(4),
	}); err != nil {
		return err
	}

	_, _, err := h.settleEmployee(ctx, emp, emp.ExitDate)
	return err
}

func (h *Handler) loadExitNoticeShortfallScenario(ctx context.Context) error {
	emp := &sqlite.Employee{
		ID:                    "emp-vikram",
		Name:                  "Vikram Singh",
		Email:                 "vikram.singh@example.com",
		Department:            "Sales",
		Designation:           "Account Manager",
		DateOfJoining:         "2022-03-01",
		ResignationDate:       "2025-06-01",
		ExitDate:              "2025-06-15",
		AnnualCTC:             decimal.NewFromInt(900000),
		AnnualBonus:           decimal.NewFromInt(90000),
		PendingReimbursements: decimal.RequireFromString("4500.50"),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}
	if err := h.Store.SaveLeaveBalance(ctx, sqlite.LeaveBalance{
		EmployeeID:  emp.ID,
		PaidLeave:   decimal.NewFromInt(3),
		CasualLeave: decimal.RequireFromString("1.5"),
	}); err != nil {
		return err
	}

	_, _, err := h.settleEmployee(ctx, emp, emp.ExitDate)
	return err
}

func (h *Handler) loadTeamMonthCloseScenario(ctx context.Context) error {
	team := []*sqlite.Employee{
		{ID: "emp-day", Name: "Kavya Iyer", DateOfJoining: "2020-04-01", AnnualCTC: decimal.NewFromInt(1500000), RosterID: "day-shift"},
		{ID: "emp-night", Name: "Rohan Das", DateOfJoining: "2022-11-14", AnnualCTC: decimal.NewFromInt(840000), RosterID: "night-shift"},
		{ID: "emp-flex", Name: "Meera Nair", DateOfJoining: "2024-02-05", AnnualCTC: decimal.NewFromInt(600000), RosterID: "flex-shift"},
		{ID: "emp-joiner", Name: "Sameer Khan", DateOfJoining: "2025-05-19", AnnualCTC: decimal.NewFromInt(1100000)},
		{ID: "emp-leaver", Name: "Neha Gupta", DateOfJoining: "2018-07-23", ExitDate: "2025-05-09", AnnualCTC: decimal.NewFromInt(1300000)},
	}
	shifts := map[string][2]string{
		"emp-day":    {"09:05", "17:45"},
		"emp-night":  {"22:00", "06:30"},
		"emp-flex":   {"10:00", "16:15"},
		"emp-joiner": {"09:00", "17:30"},
		"emp-leaver": {"09:00", "17:30"},
	}

	may := generic.MonthPeriod(2025, time.May)
	for _, emp := range team {
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return err
		}
		window, ok := employmentPeriod(emp, may)
		if !ok {
			continue
		}
		punches := make(map[string][2]string)
		for _, day := range weekdays(window) {
			punches[day.String()] = shifts[emp.ID]
		}
		if err := h.recordPunches(ctx, emp.ID, punches); err != nil {
			return err
		}
	}

	// Two Saturday half days for the day-shift employee
	return h.recordPunches(ctx, "emp-day", map[string][2]string{
		"2025-05-31": {"09:40", "13:50"},
		"2025-05-24": {"10:00", "15:00"},
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// recordPunches upserts clock-in/clock-out pairs keyed by date.
func (h *Handler) recordPunches(ctx context.Context, employeeID string, punches map[string][2]string) error {
	for date, p := range punches {
		err := h.Store.UpsertPunch(ctx, &sqlite.Punch{
			EmployeeID: employeeID,
			Date:       date,
			ClockIn:    p[0],
			ClockOut:   p[1],
			Source:     "scenario",
		})
		if err != nil {
			return fmt.Errorf("punch %s %s: %w", employeeID, date, err)
		}
	}
	return nil
}

func weekdays(p generic.Period) []generic.TimePoint {
	var days []generic.TimePoint
	for _, d := range p.Days() {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
	}
	return days
}

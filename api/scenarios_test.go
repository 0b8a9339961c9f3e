/*
scenarios_test.go - Tests for demo scenarios

PURPOSE:
	Tests that each scenario loads through the API and sets up the state it
	advertises: employees, roster assignments, punches, leave balances and,
	for exit scenarios, a persisted settlement.
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_EveryListedScenarioLoads(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeBody[[]ScenarioDTO](t, rec)
	require.Len(t, listed, len(scenarioLoaders))

	for _, s := range listed {
		t.Run(s.ID, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: s.ID})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			rec = doRequest(t, router, http.MethodGet, "/api/scenarios/current", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, s.ID, decodeBody[ScenarioDTO](t, rec).ID)

			rec = doRequest(t, router, http.MethodGet, "/api/employees", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.NotEmpty(t, decodeBody[[]EmployeeDTO](t, rec))
		})
	}
}

func TestScenario_UnknownAndReset(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	rec := doRequest(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "night-shift"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/employees", nil)
	assert.Empty(t, decodeBody[[]EmployeeDTO](t, rec))

	rec = doRequest(t, router, http.MethodGet, "/api/rosters", nil)
	assert.Len(t, decodeBody[[]RosterDTO](t, rec), 4, "presets are re-seeded")

	rec = doRequest(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null", trimNewline(rec.Body.String()))
}

func TestScenario_AttendanceMonth(t *testing.T) {
	// GIVEN: The attendance-month scenario
	h := setupTestHandler(t)
	require.NoError(t, h.loadAttendanceMonthScenario(context.Background()))
	router := NewRouter(h, nil)

	// WHEN: Reading June
	rec := doRequest(t, router, http.MethodGet, "/api/employees/emp-priya/attendance?month=2025-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	month := decodeBody[MonthAttendanceDTO](t, rec)

	// THEN: Each showcased day has its status
	byDate := make(map[string]AttendanceDayDTO, len(month.Days))
	for _, d := range month.Days {
		byDate[d.Date] = d
	}
	assert.Equal(t, "present", byDate["2025-06-02"].Status)
	assert.Equal(t, "late", byDate["2025-06-03"].Status)
	assert.Equal(t, "half_day", byDate["2025-06-04"].Status)
	assert.Equal(t, "lwp", byDate["2025-06-05"].Status)
	assert.Equal(t, 1.0, byDate["2025-06-06"].Overtime)
	assert.Equal(t, "present", byDate["2025-06-09"].Status, "open shift")
	assert.Equal(t, 0.0, byDate["2025-06-09"].WorkingDays)
	assert.Equal(t, "lwp", byDate["2025-06-10"].Status, "garbled clock-in")
	assert.Equal(t, "present", byDate["2025-06-11"].Status)
	assert.Equal(t, "absent", byDate["2025-06-14"].Status, "Saturday")

	assert.Equal(t, 1, month.Summary.Flagged)
}

func TestScenario_NightShift(t *testing.T) {
	h := setupTestHandler(t)
	require.NoError(t, h.loadNightShiftScenario(context.Background()))
	router := NewRouter(h, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/emp-arjun/attendance?month=2025-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	month := decodeBody[MonthAttendanceDTO](t, rec)

	assert.Equal(t, "night-shift", month.RosterID)
	s := month.Summary
	assert.Equal(t, 2, s.StatusCounts["present"])
	assert.Equal(t, 1, s.StatusCounts["late"])
	assert.Equal(t, 1, s.StatusCounts["half_day"])
	assert.Equal(t, 1, s.StatusCounts["lwp"])
	assert.Equal(t, 1.0, s.Overtime)
	assert.Equal(t, 0, s.Flagged, "crossing midnight is informational")
}

func TestScenario_ExitNoticeShortfall(t *testing.T) {
	h := setupTestHandler(t)
	require.NoError(t, h.loadExitNoticeShortfallScenario(context.Background()))
	router := NewRouter(h, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/emp-vikram/settlement/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeBody[SettlementReportDTO](t, rec)

	assert.Equal(t, "Vikram Singh", report.EmployeeName)
	assert.Equal(t, 16, report.Details.NoticePeriodShortfall)
	assert.Equal(t, 0.0, report.Lines[2].Amount, "below five years, no gratuity")
	assert.Equal(t, 4500.5, report.Lines[4].Amount)
	assert.Greater(t, report.Lines[5].Amount, 0.0, "notice recovery deducted")
	assert.False(t, report.NeedsReview)
}

func TestScenario_ExitFullNotice(t *testing.T) {
	h := setupTestHandler(t)
	require.NoError(t, h.loadExitFullNoticeScenario(context.Background()))
	router := NewRouter(h, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/emp-asha/settlement/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeBody[SettlementReportDTO](t, rec)

	assert.Equal(t, 429487.18, report.Summary.NetSettlement)
	assert.True(t, report.NeedsReview)
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

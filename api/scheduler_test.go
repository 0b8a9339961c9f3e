package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-engine/generic"
	"github.com/warp/hr-engine/store/sqlite"
)

func summariesByEmployee(t *testing.T, store *sqlite.Store, month string) map[string]sqlite.MonthSummary {
	t.Helper()
	list, err := store.GetMonthSummaries(context.Background(), month)
	require.NoError(t, err)
	out := make(map[string]sqlite.MonthSummary, len(list))
	for _, s := range list {
		out[s.EmployeeID] = s
	}
	return out
}

func TestCloseMonth_TeamScenario(t *testing.T) {
	// GIVEN: A team on three rosters, with a joiner and a leaver in May
	h := setupTestHandler(t)
	ctx := context.Background()
	require.NoError(t, h.loadTeamMonthCloseScenario(ctx))

	// WHEN: Closing May
	run, err := h.MonthClose.CloseMonth(ctx, generic.MonthPeriod(2025, time.May), false)

	// THEN: Every employee on the rolls is summarized
	require.NoError(t, err)
	assert.Equal(t, sqlite.RunCompleted, run.Status)
	assert.Equal(t, 5, run.Employees)
	assert.Equal(t, 5, run.Processed)
	assert.Equal(t, 0, run.Failed)
	require.NotNil(t, run.CompletedAt)

	sums := summariesByEmployee(t, h.Store, "2025-05")
	require.Len(t, sums, 5)

	day := sums["emp-day"]
	assert.Equal(t, "day-shift", day.RosterID)
	assert.Equal(t, 22, day.StatusCounts["present"])
	assert.Equal(t, 2, day.StatusCounts["half_day"])
	assert.Equal(t, 7, day.StatusCounts["absent"])
	assert.True(t, decimal.NewFromInt(23).Equal(day.WorkingDays), day.WorkingDays.String())
	assert.Equal(t, run.ID, day.RunID)

	night := sums["emp-night"]
	assert.Equal(t, "night-shift", night.RosterID)
	assert.Equal(t, 22, night.StatusCounts["present"])

	flex := sums["emp-flex"]
	assert.Equal(t, 22, flex.StatusCounts["present"])
	assert.True(t, flex.Overtime.IsZero())

	// AND: Days outside employment are not counted
	leaver := sums["emp-leaver"]
	assert.Equal(t, 7, leaver.StatusCounts["present"])
	assert.Equal(t, 2, leaver.StatusCounts["absent"])
	assert.True(t, decimal.RequireFromString("59.5").Equal(leaver.WorkHours), leaver.WorkHours.String())

	joiner := sums["emp-joiner"]
	assert.Equal(t, 10, joiner.StatusCounts["present"])
	assert.Equal(t, 3, joiner.StatusCounts["absent"])
}

func TestCloseMonth_AlreadyClosed(t *testing.T) {
	h := setupTestHandler(t)
	ctx := context.Background()
	require.NoError(t, h.loadTeamMonthCloseScenario(ctx))
	may := generic.MonthPeriod(2025, time.May)

	_, err := h.MonthClose.CloseMonth(ctx, may, false)
	require.NoError(t, err)

	_, err = h.MonthClose.CloseMonth(ctx, may, false)
	assert.True(t, errors.Is(err, generic.ErrMonthAlreadyClosed))
	assert.True(t, generic.IsConflict(err))

	// Force re-runs and replaces the summaries
	run, err := h.MonthClose.CloseMonth(ctx, may, true)
	require.NoError(t, err)
	assert.Equal(t, sqlite.RunCompleted, run.Status)

	sums := summariesByEmployee(t, h.Store, "2025-05")
	assert.Len(t, sums, 5)
	assert.Equal(t, run.ID, sums["emp-day"].RunID)
}

func TestCloseMonth_OneFailureDoesNotAbortBatch(t *testing.T) {
	// GIVEN: One employee assigned a roster that no longer exists
	h := setupTestHandler(t)
	ctx := context.Background()
	require.NoError(t, h.Store.SaveEmployee(ctx, &sqlite.Employee{ID: "emp-ok", Name: "Ok", DateOfJoining: "2020-01-01"}))
	require.NoError(t, h.Store.SaveEmployee(ctx, &sqlite.Employee{ID: "emp-ghost", Name: "Ghost", DateOfJoining: "2020-01-01", RosterID: "ghost"}))

	// WHEN: Closing the month
	run, err := h.MonthClose.CloseMonth(ctx, generic.MonthPeriod(2025, time.June), false)

	// THEN: The good employee is summarized and the failure is recorded
	require.NoError(t, err)
	assert.Equal(t, sqlite.RunCompleted, run.Status)
	assert.Equal(t, 1, run.Processed)
	assert.Equal(t, 1, run.Failed)
	require.Len(t, run.Errors, 1)
	assert.Contains(t, run.Errors[0], "emp-ghost")

	sums := summariesByEmployee(t, h.Store, "2025-06")
	assert.Contains(t, sums, "emp-ok")
	assert.NotContains(t, sums, "emp-ghost")
}

func TestCloseMonth_AllFailedMarksRunFailed(t *testing.T) {
	h := setupTestHandler(t)
	ctx := context.Background()
	require.NoError(t, h.Store.SaveEmployee(ctx, &sqlite.Employee{ID: "emp-ghost", Name: "Ghost", DateOfJoining: "2020-01-01", RosterID: "ghost"}))

	run, err := h.MonthClose.CloseMonth(ctx, generic.MonthPeriod(2025, time.June), false)

	require.NoError(t, err)
	assert.Equal(t, sqlite.RunFailed, run.Status)

	closed, err := h.Store.IsMonthClosed(ctx, "2025-06")
	require.NoError(t, err)
	assert.False(t, closed, "a failed run leaves the month open")
}

func TestScheduler_CheckAndProcessClosesPreviousMonthOnce(t *testing.T) {
	h := setupTestHandler(t) // today is 2025-07-10
	ctx := context.Background()
	require.NoError(t, h.loadTeamMonthCloseScenario(ctx))

	h.MonthClose.checkAndProcess(ctx)
	h.MonthClose.checkAndProcess(ctx)

	runs, err := h.Store.GetMonthCloseRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "2025-06", runs[0].Month)
	assert.Equal(t, 4, runs[0].Employees, "the leaver exited in May")
}

func TestScheduler_DisabledDoesNotStart(t *testing.T) {
	h := setupTestHandler(t)
	h.MonthClose.Enabled = false

	h.MonthClose.Start()
	h.MonthClose.Stop()

	runs, err := h.Store.GetMonthCloseRuns(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestMonthCloseEndpoints(t *testing.T) {
	h := setupTestHandler(t)
	require.NoError(t, h.loadTeamMonthCloseScenario(context.Background()))
	router := NewRouter(h, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/month-close/process", ProcessMonthCloseRequest{Month: "2025-05"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	run := decodeBody[MonthCloseRunDTO](t, rec)
	assert.Equal(t, "2025-05", run.Month)
	assert.Equal(t, "completed", run.Status)
	assert.Equal(t, 5, run.Processed)

	rec = doRequest(t, router, http.MethodPost, "/api/month-close/process", ProcessMonthCloseRequest{Month: "2025-05"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/month-close/process", ProcessMonthCloseRequest{Month: "May"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty body closes the previous month
	rec = doRequest(t, router, http.MethodPost, "/api/month-close/process", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2025-06", decodeBody[MonthCloseRunDTO](t, rec).Month)

	rec = doRequest(t, router, http.MethodGet, "/api/month-close/runs?status=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decodeBody[map[string][]MonthCloseRunDTO](t, rec)
	assert.Len(t, runs["runs"], 2)

	rec = doRequest(t, router, http.MethodGet, "/api/month-close/summaries?month=2025-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	type summariesBody struct {
		Month     string                  `json:"month"`
		Summaries []StoredMonthSummaryDTO `json:"summaries"`
	}
	body := decodeBody[summariesBody](t, rec)
	assert.Equal(t, "2025-05", body.Month)
	assert.Len(t, body.Summaries, 5)

	rec = doRequest(t, router, http.MethodGet, "/api/month-close/summaries", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package attendance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-engine/attendance"
	"github.com/warp/hr-engine/generic"
)

func TestClassifyPeriod_MissingDaysAreAbsent(t *testing.T) {
	// GIVEN: June 2025 with punches on two days
	period := generic.MonthPeriod(2025, 6)
	punches := map[string]attendance.Input{
		"2025-06-02": {ClockIn: "09:00", ClockOut: "17:00"},
		"2025-06-03": {ClockIn: "09:30", ClockOut: "13:30"},
	}

	// WHEN: Classifying the whole month
	days := attendance.ClassifyPeriod(period, punches, nil)

	// THEN: One result per calendar day, unpunched days absent
	require.Len(t, days, 30)
	assert.Equal(t, "2025-06-01", days[0].Date)
	assert.Equal(t, attendance.StatusAbsent, days[0].Status)
	assert.Equal(t, attendance.StatusPresent, days[1].Status)
	assert.Equal(t, "2025-06-02", days[1].Date)
	assert.Equal(t, attendance.StatusHalfDay, days[2].Status)
	assert.Equal(t, attendance.StatusAbsent, days[29].Status)
}

func TestSummarize_Totals(t *testing.T) {
	period := generic.MonthPeriod(2025, 6)
	punches := map[string]attendance.Input{
		"2025-06-02": {ClockIn: "09:00", ClockOut: "19:00"}, // present, 10h, 1h overtime
		"2025-06-03": {ClockIn: "09:00", ClockOut: "13:30"}, // half day
		"2025-06-04": {ClockIn: "09:00", ClockOut: "12:00"}, // lwp
		"2025-06-05": {ClockIn: "11:00", ClockOut: "20:00"}, // late
		"2025-06-06": {ClockIn: "bogus", ClockOut: "17:00"}, // flagged
		"2025-06-07": {ClockIn: "09:00", ClockOut: ""},      // open shift, info only
	}

	s := attendance.Summarize(period, attendance.ClassifyPeriod(period, punches, nil))

	assert.Equal(t, 30, s.Days)
	assert.Equal(t, 2, s.StatusCounts[attendance.StatusPresent])
	assert.Equal(t, 1, s.StatusCounts[attendance.StatusLate])
	assert.Equal(t, 1, s.StatusCounts[attendance.StatusHalfDay])
	assert.Equal(t, 2, s.StatusCounts[attendance.StatusLWP])
	assert.Equal(t, 24, s.StatusCounts[attendance.StatusAbsent])
	assertDecimal(t, "2.5", s.WorkingDays, "working days")
	assertDecimal(t, "26.5", s.WorkHours, "work hours")
	assertDecimal(t, "1", s.Overtime, "overtime")
	assert.Equal(t, 1, s.Flagged)
}

func TestSummarize_IgnoresDaysOutsidePeriod(t *testing.T) {
	period := generic.MonthPeriod(2025, 6)
	days := []attendance.Result{
		attendance.Classify(attendance.Input{ClockIn: "09:00", ClockOut: "17:00", Date: "2025-06-10"}, nil),
		attendance.Classify(attendance.Input{ClockIn: "09:00", ClockOut: "17:00", Date: "2025-07-01"}, nil),
	}

	s := attendance.Summarize(period, days)

	assert.Equal(t, 1, s.Days)
	assertDecimal(t, "1", s.WorkingDays, "working days")
	for _, st := range attendance.Statuses {
		_, ok := s.StatusCounts[st]
		assert.True(t, ok, "status %s missing from counts", st)
	}
}

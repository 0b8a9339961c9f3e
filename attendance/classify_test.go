package attendance_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-engine/attendance"
	"github.com/warp/hr-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func day(in, out string) attendance.Input {
	return attendance.Input{ClockIn: in, ClockOut: out, Date: "2025-06-10"}
}

// =============================================================================
// DEFAULT ROSTER SCENARIOS
// =============================================================================

func TestClassify_DefaultRoster(t *testing.T) {
	tests := []struct {
		name        string
		in          attendance.Input
		status      attendance.Status
		workHours   string
		workingDays string
		overtime    string
	}{
		{"full day on time", day("09:00", "17:00"), attendance.StatusPresent, "8", "1", "0"},
		{"half day", day("09:00", "13:30"), attendance.StatusHalfDay, "4.5", "0.5", "0"},
		{"below half day is leave without pay", day("09:00", "12:00"), attendance.StatusLWP, "3", "0", "0"},
		{"late but full day stays late", day("11:00", "20:00"), attendance.StatusLate, "9", "1", "0"},
		{"overtime past full day plus one", day("09:00", "19:00"), attendance.StatusPresent, "10", "1", "1"},
		{"exactly half day threshold", day("09:00", "13:00"), attendance.StatusHalfDay, "4", "0.5", "0"},
		{"late and short is half day", day("10:00", "15:00"), attendance.StatusHalfDay, "5", "0.5", "0"},
		{"seconds are honoured", day("09:00:00", "17:30:30"), attendance.StatusPresent, "8.51", "1", "0"},
		{"zero length shift", day("09:00", "09:00"), attendance.StatusLWP, "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attendance.Classify(tt.in, nil)

			assert.Equal(t, tt.status, got.Status)
			assertDecimal(t, tt.workHours, got.WorkHours, "work hours")
			assertDecimal(t, tt.workingDays, got.WorkingDays, "working days")
			assertDecimal(t, tt.overtime, got.Overtime, "overtime")
		})
	}
}

func TestClassify_GracePeriodBoundary(t *testing.T) {
	// GIVEN: Default roster, 09:00 start with 15 minutes grace
	// WHEN: Clocking in at the last tolerated minute and one minute after
	// THEN: The first is present, the second late
	onTime := attendance.Classify(day("09:15", "18:00"), nil)
	late := attendance.Classify(day("09:16", "18:00"), nil)

	assert.Equal(t, attendance.StatusPresent, onTime.Status)
	assert.Equal(t, attendance.StatusLate, late.Status)
}

func TestClassify_Absent(t *testing.T) {
	got := attendance.Classify(attendance.Input{Date: "2025-06-10"}, nil)

	assert.Equal(t, attendance.StatusAbsent, got.Status)
	assert.True(t, got.WorkHours.IsZero())
	assert.True(t, got.WorkingDays.IsZero())
	assert.True(t, got.Overtime.IsZero())
	assert.Empty(t, got.Warnings)
}

func TestClassify_OpenShiftKeepsProvisionalStatus(t *testing.T) {
	// GIVEN: A clock-in without clock-out
	// THEN: Status reflects lateness only; no hours or working days yet
	present := attendance.Classify(day("09:05", ""), nil)
	late := attendance.Classify(day("09:45", ""), nil)

	assert.Equal(t, attendance.StatusPresent, present.Status)
	assert.Equal(t, attendance.StatusLate, late.Status)
	for _, r := range []attendance.Result{present, late} {
		assert.True(t, r.WorkHours.IsZero())
		assert.True(t, r.WorkingDays.IsZero())
		assert.True(t, r.Overtime.IsZero())
		assert.True(t, r.Warnings.Has(attendance.CodeOpenShift))
	}
}

// =============================================================================
// CUSTOM ROSTERS
// =============================================================================

func TestClassify_CustomRoster(t *testing.T) {
	// GIVEN: A 10:00 roster with a 6h full day and 3h half day
	roster := attendance.Roster{
		StartTime:          "10:00",
		FullDayHours:       dec("6"),
		HalfDayHours:       dec("3"),
		GracePeriodMinutes: 15,
	}

	got := attendance.Classify(day("10:00", "16:00"), &roster)

	assert.Equal(t, attendance.StatusPresent, got.Status)
	assertDecimal(t, "6", got.WorkHours, "work hours")
	assertDecimal(t, "1", got.WorkingDays, "working days")
	assertDecimal(t, "0", got.Overtime, "overtime")
}

func TestClassify_ExplicitOvertimeThreshold(t *testing.T) {
	threshold := dec("8")
	roster := attendance.DefaultRoster()
	roster.OvertimeThresholdHours = &threshold

	got := attendance.Classify(day("09:00", "19:00"), &roster)

	assertDecimal(t, "2", got.Overtime, "overtime")
}

func TestClassify_UnsetThresholdsFallBackToDefaults(t *testing.T) {
	// GIVEN: A roster built in code with no day thresholds
	roster := attendance.Roster{StartTime: "09:00", GracePeriodMinutes: 15}

	// WHEN: Classifying a five-minute shift
	got := attendance.Classify(day("09:00", "09:05"), &roster)

	// THEN: The default 8h / 4h thresholds apply and the fallback is reported
	assert.Equal(t, attendance.StatusLWP, got.Status)
	assertDecimal(t, "0.08", got.WorkHours, "work hours")
	assertDecimal(t, "0", got.WorkingDays, "working days")
	assert.True(t, got.Warnings.Has(attendance.CodeInvalidThreshold))

	// AND: A full default day is still one working day, overtime past 9h
	full := attendance.Classify(day("09:00", "19:00"), &roster)
	assertDecimal(t, "1", full.WorkingDays, "working days")
	assertDecimal(t, "1", full.Overtime, "overtime")

	// AND: The caller's roster is untouched
	assert.True(t, roster.FullDayHours.IsZero())
}

func TestClassify_InvalidHalfDayThreshold(t *testing.T) {
	tests := []struct {
		name string
		half string
		want attendance.Status
	}{
		{"negative", "-1", attendance.StatusLWP},
		{"above full day", "9", attendance.StatusLWP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := attendance.DefaultRoster()
			roster.HalfDayHours = dec(tt.half)

			got := attendance.Classify(day("09:00", "12:00"), &roster)

			assert.Equal(t, tt.want, got.Status)
			assert.True(t, got.Warnings.Has(attendance.CodeInvalidThreshold))
		})
	}
}

func TestClassify_ZeroHalfDayWithFullDayIsKept(t *testing.T) {
	// GIVEN: A roster without an LWP band
	roster := attendance.DefaultRoster()
	roster.HalfDayHours = decimal.Zero

	got := attendance.Classify(day("09:00", "09:30"), &roster)

	assert.Equal(t, attendance.StatusHalfDay, got.Status)
	assert.False(t, got.Warnings.Has(attendance.CodeInvalidThreshold))
}

func TestClassify_AbsentDayIgnoresThresholds(t *testing.T) {
	got := attendance.Classify(day("", ""), &attendance.Roster{})

	assert.Equal(t, attendance.StatusAbsent, got.Status)
	assert.Empty(t, got.Warnings)
}

func TestClassify_NightShiftClockInAfterMidnightIsNotLate(t *testing.T) {
	roster := attendance.NightShift()

	got := attendance.Classify(attendance.Input{ClockIn: "00:30", ClockOut: "08:45", Date: "2025-06-10"}, &roster)

	assert.Equal(t, attendance.StatusPresent, got.Status)
	assertDecimal(t, "8.25", got.WorkHours, "work hours")
}

func TestClassify_RosterIsNotMutated(t *testing.T) {
	roster := attendance.FlexShift()
	before := roster

	attendance.Classify(day("10:00", "16:00"), &roster)

	assert.Equal(t, before, roster)
}

// =============================================================================
// CROSS-MIDNIGHT SHIFTS
// =============================================================================

func TestClassify_NightShiftCrossesMidnight(t *testing.T) {
	// GIVEN: Night roster starting 22:00
	// WHEN: Clocking out the next morning
	// THEN: Duration spans midnight and the day is credited to the start date
	roster := attendance.NightShift()

	got := attendance.Classify(attendance.Input{ClockIn: "22:00", ClockOut: "07:30", Date: "2025-06-30"}, &roster)

	assert.Equal(t, attendance.StatusPresent, got.Status)
	assert.Equal(t, "2025-06-30", got.Date)
	assertDecimal(t, "9.5", got.WorkHours, "work hours")
	assertDecimal(t, "1", got.WorkingDays, "working days")
	assertDecimal(t, "0.5", got.Overtime, "overtime")
	assert.True(t, got.Warnings.Has(attendance.CodeCrossMidnight))
}

func TestClassify_CrossMidnightAcrossYearEnd(t *testing.T) {
	got := attendance.Classify(attendance.Input{ClockIn: "20:00", ClockOut: "02:00", Date: "2025-12-31"}, nil)

	assertDecimal(t, "6", got.WorkHours, "work hours")
	assertDecimal(t, "0.5", got.WorkingDays, "working days")
	assert.Equal(t, attendance.StatusHalfDay, got.Status)
}

// =============================================================================
// LENIENT DEGRADATION
// =============================================================================

func TestClassify_MalformedInputsDegradeToZeroHours(t *testing.T) {
	tests := []struct {
		name   string
		in     attendance.Input
		code   string
		status attendance.Status
	}{
		{"bad clock-in", attendance.Input{ClockIn: "9am", ClockOut: "17:00", Date: "2025-06-10"}, attendance.CodeInvalidClockIn, attendance.StatusLWP},
		{"bad clock-out", attendance.Input{ClockIn: "09:00", ClockOut: "25:00", Date: "2025-06-10"}, attendance.CodeInvalidClockOut, attendance.StatusLWP},
		{"bad date", attendance.Input{ClockIn: "09:00", ClockOut: "17:00", Date: "10/06/2025"}, attendance.CodeInvalidDate, attendance.StatusLWP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attendance.Classify(tt.in, nil)

			assert.Equal(t, tt.status, got.Status)
			assert.True(t, got.WorkHours.IsZero())
			assert.True(t, got.WorkingDays.IsZero())
			assert.True(t, got.Warnings.Has(tt.code), "expected %s in %v", tt.code, got.Warnings)
		})
	}
}

func TestClassify_MalformedRosterStartIsNeverLate(t *testing.T) {
	roster := attendance.DefaultRoster()
	roster.StartTime = "nine"

	got := attendance.Classify(day("13:00", "22:00"), &roster)

	assert.Equal(t, attendance.StatusPresent, got.Status)
	assertDecimal(t, "9", got.WorkHours, "work hours")
	assert.True(t, got.Warnings.Has(attendance.CodeInvalidStartTime))
}

// =============================================================================
// ZONES
// =============================================================================

func TestClassifier_ZoneWithDaylightSaving(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// GIVEN: The 2025 spring-forward night in New York (02:00 -> 03:00)
	c := attendance.NewClassifier(ny)

	got := c.Classify(attendance.Input{ClockIn: "01:00", ClockOut: "03:30", Date: "2025-03-09"}, nil)

	// THEN: Elapsed time, not wall-clock difference
	assertDecimal(t, "1.5", got.WorkHours, "work hours")

	ist := attendance.Classify(attendance.Input{ClockIn: "01:00", ClockOut: "03:30", Date: "2025-03-09"}, nil)
	assertDecimal(t, "2.5", ist.WorkHours, "work hours in IST")
}

func TestClassifier_ZeroValueUsesIST(t *testing.T) {
	in := day("09:00", "17:45")

	assert.Equal(t, attendance.NewClassifier(generic.IST).Classify(in, nil), attendance.Classifier{}.Classify(in, nil))
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestClassify_Invariants(t *testing.T) {
	rosters := []attendance.Roster{attendance.DefaultRoster(), attendance.NightShift(), attendance.FlexShift()}
	allowed := []decimal.Decimal{attendance.NoDay, attendance.HalfDay, attendance.FullDay}

	for _, roster := range rosters {
		roster := roster
		for inH := 0; inH < 24; inH += 3 {
			for outH := 0; outH < 24; outH += 2 {
				in := day(fmt.Sprintf("%02d:10", inH), fmt.Sprintf("%02d:40", outH))
				got := attendance.Classify(in, &roster)

				assert.False(t, got.WorkHours.IsNegative(), "work hours for %+v", in)
				assert.False(t, got.Overtime.IsNegative(), "overtime for %+v", in)

				ok := false
				for _, a := range allowed {
					if a.Equal(got.WorkingDays) {
						ok = true
					}
				}
				assert.True(t, ok, "working days %s not in {0, 0.5, 1}", got.WorkingDays)

				wantOvertime := generic.NonNegative(got.WorkHours.Sub(roster.OvertimeThreshold()))
				assert.True(t, wantOvertime.Equal(got.Overtime), "overtime %s != %s", got.Overtime, wantOvertime)
			}
		}
	}
}

func TestClassify_OvertimeMonotonicInHours(t *testing.T) {
	previous := decimal.Zero
	for minutes := 0; minutes < 16*60; minutes += 7 {
		out := fmt.Sprintf("%02d:%02d", 6+minutes/60, minutes%60)
		got := attendance.Classify(day("06:00", out), nil)

		require.False(t, got.Overtime.LessThan(previous), "overtime decreased at %s", out)
		previous = got.Overtime
	}
}

func TestClassify_Deterministic(t *testing.T) {
	roster := attendance.NightShift()
	in := attendance.Input{ClockIn: "22:20", ClockOut: "05:55", Date: "2025-02-28"}

	first := attendance.Classify(in, &roster)
	for i := 0; i < 50; i++ {
		again := attendance.Classify(in, &roster)
		assert.Equal(t, first.Status, again.Status)
		assert.Equal(t, first.WorkHours.String(), again.WorkHours.String())
		assert.Equal(t, first.WorkingDays.String(), again.WorkingDays.String())
		assert.Equal(t, first.Overtime.String(), again.Overtime.String())
		assert.Equal(t, first.Warnings, again.Warnings)
	}
}

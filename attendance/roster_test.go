package attendance_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-engine/attendance"
	"github.com/warp/hr-engine/generic"
)

func TestRoster_PresetsAreValid(t *testing.T) {
	for _, r := range []attendance.Roster{
		attendance.DefaultRoster(),
		attendance.DayShift(),
		attendance.NightShift(),
		attendance.FlexShift(),
	} {
		assert.NoError(t, r.Validate(), "roster %s", r.ID)
	}
}

func TestRoster_OvertimeThresholdDefaultsToFullDayPlusOne(t *testing.T) {
	assertDecimal(t, "9", attendance.DefaultRoster().OvertimeThreshold(), "default threshold")
	assertDecimal(t, "7", attendance.FlexShift().OvertimeThreshold(), "flex threshold")
}

func TestRoster_Validate(t *testing.T) {
	negative := dec("-1")

	tests := []struct {
		name   string
		mutate func(r *attendance.Roster)
		field  string
	}{
		{"bad start time", func(r *attendance.Roster) { r.StartTime = "9 o'clock" }, "start_time"},
		{"zero full day", func(r *attendance.Roster) { r.FullDayHours = dec("0") }, "full_day_hours"},
		{"negative half day", func(r *attendance.Roster) { r.HalfDayHours = dec("-2") }, "half_day_hours"},
		{"half day above full day", func(r *attendance.Roster) { r.HalfDayHours = dec("9") }, "half_day_hours"},
		{"negative grace", func(r *attendance.Roster) { r.GracePeriodMinutes = -5 }, "grace_period_minutes"},
		{"negative overtime threshold", func(r *attendance.Roster) { r.OvertimeThresholdHours = &negative }, "overtime_threshold_hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := attendance.DefaultRoster()
			tt.mutate(&r)

			err := r.Validate()

			require.Error(t, err)
			assert.True(t, errors.Is(err, generic.ErrInvalidRoster))
			var fe *generic.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

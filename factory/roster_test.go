package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-engine/attendance"
	"github.com/warp/hr-engine/generic"
)

func TestParseRoster_FullDefinition(t *testing.T) {
	f := NewRosterFactory()

	r, err := f.ParseRoster(`{
		"id": "warehouse",
		"name": "Warehouse",
		"start_time": "07:30",
		"full_day_hours": 9,
		"half_day_hours": 4.5,
		"grace_period_minutes": 0,
		"overtime_threshold_hours": 9.5
	}`)
	require.NoError(t, err)

	assert.Equal(t, generic.RosterID("warehouse"), r.ID)
	assert.Equal(t, "07:30", r.StartTime)
	assert.Equal(t, "9", r.FullDayHours.String())
	assert.Equal(t, "4.5", r.HalfDayHours.String())
	assert.Equal(t, 0, r.GracePeriodMinutes)
	require.NotNil(t, r.OvertimeThresholdHours)
	assert.Equal(t, "9.5", r.OvertimeThresholdHours.String())
}

func TestParseRoster_DefaultsOmittedFields(t *testing.T) {
	f := NewRosterFactory()

	r, err := f.ParseRoster(`{"id": "late-start", "start_time": "11:00"}`)
	require.NoError(t, err)

	def := attendance.DefaultRoster()
	assert.Equal(t, "late-start", r.Name)
	assert.Equal(t, "11:00", r.StartTime)
	assert.True(t, def.FullDayHours.Equal(r.FullDayHours))
	assert.True(t, def.HalfDayHours.Equal(r.HalfDayHours))
	assert.Equal(t, def.GracePeriodMinutes, r.GracePeriodMinutes)
	assert.Nil(t, r.OvertimeThresholdHours)
	assert.Equal(t, "9", r.OvertimeThreshold().String())
}

func TestParseRoster_Invalid(t *testing.T) {
	f := NewRosterFactory()

	tests := []struct {
		name string
		json string
	}{
		{"missing id", `{"name": "Nameless"}`},
		{"bad start", `{"id": "x", "start_time": "25:99"}`},
		{"half above full", `{"id": "x", "full_day_hours": 4, "half_day_hours": 6}`},
		{"negative grace", `{"id": "x", "grace_period_minutes": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseRoster(tt.json)

			require.Error(t, err)
			assert.True(t, errors.Is(err, generic.ErrInvalidRoster), "got %v", err)
		})
	}
}

func TestParseRoster_MalformedJSON(t *testing.T) {
	_, err := NewRosterFactory().ParseRoster(`{"id": `)

	require.Error(t, err)
	assert.False(t, errors.Is(err, generic.ErrInvalidRoster))
}

func TestRosterJSON_RoundTripPresets(t *testing.T) {
	f := NewRosterFactory()

	for _, preset := range PresetRosters() {
		doc, err := f.Marshal(preset)
		require.NoError(t, err)

		back, err := f.ParseRoster(doc)
		require.NoError(t, err, doc)

		assert.Equal(t, preset.ID, back.ID)
		assert.Equal(t, preset.StartTime, back.StartTime)
		assert.True(t, preset.FullDayHours.Equal(back.FullDayHours))
		assert.True(t, preset.HalfDayHours.Equal(back.HalfDayHours))
		assert.Equal(t, preset.GracePeriodMinutes, back.GracePeriodMinutes)
	}
}

func TestParseRoster_ExplicitZeroHalfDay(t *testing.T) {
	// GIVEN: A roster with no half-day band
	f := NewRosterFactory()

	// WHEN: Half-day hours are set to zero explicitly
	r, err := f.ParseRoster(`{"id": "no-lwp", "full_day_hours": 6, "half_day_hours": 0}`)

	// THEN: Zero is kept, not replaced by the default
	require.NoError(t, err)
	assert.True(t, r.HalfDayHours.IsZero(), r.HalfDayHours.String())
	assert.Equal(t, "6", r.FullDayHours.String())

	// AND: It survives a store round trip
	doc, err := f.Marshal(r)
	require.NoError(t, err)
	back, err := f.ParseRoster(doc)
	require.NoError(t, err)
	assert.True(t, back.HalfDayHours.IsZero())
}

func TestParseRoster_OmittedHoursUseDefaults(t *testing.T) {
	r, err := NewRosterFactory().ParseRoster(`{"id": "minimal"}`)

	require.NoError(t, err)
	assert.Equal(t, "8", r.FullDayHours.String())
	assert.Equal(t, "4", r.HalfDayHours.String())
}

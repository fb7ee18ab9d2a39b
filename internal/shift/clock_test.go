package shift_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
	"github.com/peteywee/fresh-schedules/internal/shift"
)

func TestShiftEndInstant(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	got, err := shift.ShiftEndInstant(day, "17:00")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC), got)
}

func TestShiftEndInstant_IgnoresTimeComponentOfDay(t *testing.T) {
	// A day value that arrives with a stray time component still anchors
	// to that UTC date.
	day := time.Date(2026, 3, 14, 9, 30, 12, 0, time.UTC)

	got, err := shift.ShiftEndInstant(day, "06:15")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 6, 15, 0, 0, time.UTC), got)
}

func TestShiftEndInstant_InvalidFormat(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"", "25:00", "9am", "17:60", "17-00"} {
		_, err := shift.ShiftEndInstant(day, raw)
		assert.Error(t, err, "input %q", raw)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput), "input %q", raw)
	}
}

func TestCutoffInstant(t *testing.T) {
	end := time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 14, 17, 25, 0, 0, time.UTC), shift.CutoffInstant(end, 25))
	// Zero grace means the cutoff is the shift end itself.
	assert.Equal(t, end, shift.CutoffInstant(end, 0))
}

func TestShiftEndInstant_HostZoneIndependent(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC).In(loc)

	got, errEnd := shift.ShiftEndInstant(day, "17:00")
	assert.NoError(t, errEnd)
	assert.Equal(t, time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC), got)
}

func TestShiftEndInstantForShift(t *testing.T) {
	sh := &shift.Shift{
		Day:       time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "17:00",
	}

	end, err := sh.EndInstant()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC), end)
}

func TestShiftEndInstantForShift_RejectsOvernight(t *testing.T) {
	sh := &shift.Shift{
		Day:       time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime: "22:00",
		EndTime:   "06:00",
	}

	_, err := sh.EndInstant()
	assert.ErrorIs(t, err, shift.ErrOvernightShift)
}

func TestShiftEndInstantForShift_RejectsZeroLength(t *testing.T) {
	sh := &shift.Shift{
		Day:       time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "09:00",
	}

	_, err := sh.EndInstant()
	assert.ErrorIs(t, err, shift.ErrOvernightShift)
}

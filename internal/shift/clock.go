package shift

import (
	"fmt"
	"time"

	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
)

// All shift days and times-of-day are UTC-normalized: the day column carries
// a date with no time component and the "HH:mm" strings are wall-clock times
// on that UTC day. The host zone is never consulted.

const timeOfDayLayout = "15:04"

// ErrOvernightShift marks shifts whose end time-of-day is not after the
// start. The day/time columns carry no rollover information, so such shifts
// cannot be evaluated and stay open until handled manually.
var ErrOvernightShift = apperror.New(
	apperror.CodeInvalidInput,
	"overnight shifts are not supported by clock arithmetic",
	422,
)

// ShiftEndInstant combines a calendar day with an "HH:mm" wall-clock string
// into an absolute UTC instant.
func ShiftEndInstant(day time.Time, endOfDay string) (time.Time, error) {
	tod, err := time.Parse(timeOfDayLayout, endOfDay)
	if err != nil {
		return time.Time{}, apperror.Wrap(err, apperror.CodeInvalidInput,
			fmt.Sprintf("time of day %q is not in HH:mm form", endOfDay), 422)
	}
	d := day.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC), nil
}

// CutoffInstant is the instant after which a still-open attendance record is
// considered late. graceMinutes of 0 means the cutoff is the shift end.
func CutoffInstant(shiftEnd time.Time, graceMinutes int) time.Time {
	return shiftEnd.Add(time.Duration(graceMinutes) * time.Minute)
}

// EndInstant resolves the shift's scheduled end as an absolute instant,
// rejecting shifts whose end does not come after their start on the same day.
func (s *Shift) EndInstant() (time.Time, error) {
	start, err := ShiftEndInstant(s.Day, s.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	end, err := ShiftEndInstant(s.Day, s.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, ErrOvernightShift
	}
	return end, nil
}

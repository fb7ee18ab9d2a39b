package alert

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/peteywee/fresh-schedules/internal/timesheet"
)

// BuildLateClockout constructs the alert payload for an auto-closed
// attendance record. Pure construction; the batch committer inserts it in the
// same atomic group as the ledger entry so neither exists without the other.
//
// Severity policy: low while now is within one extra grace window past the
// cutoff, medium once the worker has been unaccounted for longer than that.
func BuildLateClockout(ts *timesheet.Timesheet, cutoff time.Time, graceMinutes int, now time.Time) *Alert {
	severity := SeverityLow
	if now.After(cutoff.Add(time.Duration(graceMinutes) * time.Minute)) {
		severity = SeverityMedium
	}

	return &Alert{
		ID:             uuid.New(),
		OrganizationID: ts.OrganizationID,
		Type:           TypeLateClockout,
		Severity:       severity,
		Message: fmt.Sprintf(
			"Worker %s was automatically clocked out for shift %s.",
			ts.WorkerID, ts.ShiftID,
		),
		WorkerID:  ts.WorkerID,
		ShiftID:   ts.ShiftID,
		Resolved:  false,
		CreatedAt: now,
	}
}

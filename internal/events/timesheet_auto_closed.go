package events

import "time"

const TimesheetAutoClosedTopic = "attendance.timesheet.lifecycle.v1"

// TimesheetAutoClosed is published after a reconciliation run commits a
// closure, for downstream consumers (payroll exports, notification fan-out).
type TimesheetAutoClosed struct {
	EventType      string    `json:"event_type"`
	TimesheetID    string    `json:"timesheet_id"`
	OrganizationID string    `json:"organization_id"`
	WorkerID       string    `json:"worker_id"`
	ShiftID        string    `json:"shift_id"`
	ClockOutAt     time.Time `json:"clock_out_at"`
	OccurredAt     time.Time `json:"occurred_at"`
}

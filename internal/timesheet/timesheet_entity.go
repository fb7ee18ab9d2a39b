package timesheet

import (
	"time"

	"github.com/google/uuid"
)

const (
	SourceManual = "manual"
	SourceAuto   = "auto"
)

// Timesheet holds one attendance record per (worker, shift). ClockOutAt is
// written exactly once, by either a manual clock-out or the reconciliation
// worker, and never cleared. AutoClockOutAt is set iff Source is "auto".
type Timesheet struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	WorkerID       uuid.UUID  `gorm:"column:worker_id;type:uuid;not null;index" json:"worker_id"`
	ShiftID        uuid.UUID  `gorm:"column:shift_id;type:uuid;not null;index" json:"shift_id"`
	ClockInAt      time.Time  `gorm:"column:clock_in_at;type:timestamptz;not null" json:"clock_in_at"`
	ClockOutAt     *time.Time `gorm:"column:clock_out_at;type:timestamptz" json:"clock_out_at,omitempty"`
	AutoClockOutAt *time.Time `gorm:"column:auto_clock_out_at;type:timestamptz" json:"auto_clock_out_at,omitempty"`
	Source         string     `gorm:"column:source;type:varchar(20);not null;default:manual" json:"source"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}

package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Entry is an append-only audit record proving an attendance closure happened
// with specific field values. Entries are never updated or deleted; any later
// edit to the referenced fields is detectable because the stored hash stops
// verifying.
type Entry struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ShiftID        uuid.UUID `gorm:"column:shift_id;type:uuid;not null;index" json:"shift_id"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	WorkerID       uuid.UUID `gorm:"column:worker_id;type:uuid;not null;index" json:"worker_id"`
	ClockInAt      time.Time `gorm:"column:clock_in_at;type:timestamptz;not null" json:"clock_in_at"`
	ClockOutAt     time.Time `gorm:"column:clock_out_at;type:timestamptz;not null" json:"clock_out_at"`
	AutoClockOut   bool      `gorm:"column:auto_clock_out;not null" json:"auto_clock_out"`
	RecordedAt     time.Time `gorm:"column:recorded_at;type:timestamptz;not null" json:"recorded_at"`
	Hash           string    `gorm:"column:hash;type:varchar(64);not null" json:"hash"`
}

func (Entry) TableName() string {
	return "attendance_ledger"
}

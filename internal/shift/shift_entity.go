package shift

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
)

// Shift is owned by the scheduling feature. The reconciliation worker only
// ever reads it.
type Shift struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrganizationID   uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	Day              time.Time  `gorm:"column:day;type:date;not null;index" json:"day"`
	StartTime        string     `gorm:"column:start_time;type:varchar(5);not null" json:"start_time"` // "HH:mm"
	EndTime          string     `gorm:"column:end_time;type:varchar(5);not null" json:"end_time"`     // "HH:mm"
	AssignedWorkerID *uuid.UUID `gorm:"column:assigned_worker_id;type:uuid" json:"assigned_worker_id,omitempty"`
	Status           string     `gorm:"column:status;type:varchar(20);not null;default:draft" json:"status"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Shift) TableName() string {
	return "shifts"
}

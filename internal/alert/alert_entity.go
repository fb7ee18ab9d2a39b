package alert

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeLateClockout = "late_clockout"

	SeverityLow    = "low"
	SeverityMedium = "medium"
)

// Alert is an operational notification for managers. This subsystem only
// creates alerts; resolution happens in the manager UI.
type Alert struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	Type           string    `gorm:"column:type;type:varchar(40);not null" json:"type"`
	Severity       string    `gorm:"column:severity;type:varchar(20);not null" json:"severity"`
	Message        string    `gorm:"column:message;type:text;not null" json:"message"`
	WorkerID       uuid.UUID `gorm:"column:worker_id;type:uuid;not null;index" json:"worker_id"`
	ShiftID        uuid.UUID `gorm:"column:shift_id;type:uuid;not null;index" json:"shift_id"`
	Resolved       bool      `gorm:"column:resolved;not null;default:false" json:"resolved"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}

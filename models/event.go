package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit outcomes.
const (
	OutcomeSuccess = "succes"
	OutcomeError   = "erreur"
)

// EventLog records the outcome of every directly-executed mutating
// operation, success or failure.
type EventLog struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     string         `json:"tenant_id" gorm:"not null;index"`
	Operation    string         `json:"operation" gorm:"not null;index"`
	EntityType   string         `json:"entity_type"`
	EntityID     string         `json:"entity_id" gorm:"index"`
	Payload      datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	Outcome      string         `json:"outcome" gorm:"type:varchar(10);not null"`
	ErrorMessage string         `json:"error_message"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Notification surfaces failed operations to operators without
// querying the event log.
type Notification struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  string         `json:"tenant_id" gorm:"not null;index"`
	Type      string         `json:"type" gorm:"not null"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      datatypes.JSON `json:"data" gorm:"type:jsonb"`
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// JobEvent entity/event type labels.
const (
	JobEntityShipment     = "SHIPMENT"
	JobEntityEmptyRepoJob = "EMPTY_REPO_JOB"

	JobEventCreated   = "CREATED"
	JobEventUpdated   = "UPDATED"
	JobEventCancelled = "CANCELLED"
	JobEventDeleted   = "DELETED"
)

// JobEvent is the audit trail of orchestrator operations. Rows keep the job
// number so events survive entity deletion.
type JobEvent struct {
	ID         uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityType string         `gorm:"column:entity_type;not null" json:"entityType"`
	EntityID   uint           `gorm:"column:entity_id;not null;index" json:"entityId"`
	JobNumber  string         `gorm:"column:job_number" json:"jobNumber"`
	EventType  string         `gorm:"column:event_type;not null" json:"eventType"`
	EventData  datatypes.JSON `gorm:"column:event_data;type:json" json:"eventData"`
	CreatedAt  time.Time      `gorm:"column:created_at" json:"createdAt"`
}

func (JobEvent) TableName() string {
	return "job_events"
}

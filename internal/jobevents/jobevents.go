package jobevents

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"rst-backend/internal/models"
)

// Record writes one audit event for a shipment or empty-repo job. The job
// number is denormalized onto the event so the trail survives entity
// deletion.
func Record(tx *gorm.DB, entityType string, entityID uint, jobNumber, eventType string, payload map[string]interface{}) error {
	data, _ := json.Marshal(payload)
	return tx.Create(&models.JobEvent{
		EntityType: entityType,
		EntityID:   entityID,
		JobNumber:  jobNumber,
		EventType:  eventType,
		EventData:  datatypes.JSON(data),
	}).Error
}

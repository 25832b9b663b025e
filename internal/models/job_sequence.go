package models

import "time"

// JobSequence is a monotonic counter row per (entity type, scope key, year).
// Incremented inside the same transaction that inserts the numbered entity,
// so two concurrent creates cannot hand out the same sequence.
type JobSequence struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityType string    `gorm:"column:entity_type;not null;uniqueIndex:idx_job_sequence_scope,priority:1" json:"entityType"`
	ScopeKey   string    `gorm:"column:scope_key;not null;uniqueIndex:idx_job_sequence_scope,priority:2" json:"scopeKey"`
	Year       string    `gorm:"column:year;not null;uniqueIndex:idx_job_sequence_scope,priority:3" json:"year"`
	LastValue  int       `gorm:"column:last_value;not null;default:0" json:"lastValue"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (JobSequence) TableName() string {
	return "job_sequences"
}

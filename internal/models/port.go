package models

import "time"

// Port is a lookup entity (id to code/name); generic port CRUD lives outside
// this service.
type Port struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PortCode  string    `gorm:"column:port_code;uniqueIndex;not null" json:"portCode"`
	PortName  string    `gorm:"column:port_name;not null" json:"portName"`
	Country   string    `gorm:"column:country" json:"country"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Port) TableName() string {
	return "ports"
}

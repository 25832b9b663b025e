package models

import "time"

// MovementHistory is one row of the append-only container ledger. Rows are
// never updated to change status or location; UpdateMovement may patch date
// and remarks only. The row with the latest date (ties broken by higher id)
// is the container's current state.
type MovementHistory struct {
	ID                uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InventoryID       uint       `gorm:"column:inventory_id;not null;index:idx_movement_inventory_date,priority:1" json:"inventoryId"`
	Status            string     `gorm:"column:status;not null" json:"status"`
	Date              time.Time  `gorm:"column:date;not null;index:idx_movement_inventory_date,priority:2,sort:desc" json:"date"`
	PortID            *uint      `gorm:"column:port_id" json:"portId"`
	AddressBookID     *uint      `gorm:"column:address_book_id" json:"addressBookId"`
	ShipmentID        *uint      `gorm:"column:shipment_id;index" json:"shipmentId"`
	EmptyRepoJobID    *uint      `gorm:"column:empty_repo_job_id;index" json:"emptyRepoJobId"`
	MaintenanceStatus *string    `gorm:"column:maintenance_status" json:"maintenanceStatus"`
	Remarks           string     `gorm:"column:remarks" json:"remarks"`
	VesselName        string     `gorm:"column:vessel_name" json:"vesselName"`
	JobNumber         string     `gorm:"column:job_number" json:"jobNumber"`
	CreatedAt         time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"column:updated_at" json:"updatedAt"`

	Inventory   *Inventory   `gorm:"foreignKey:InventoryID" json:"inventory,omitempty"`
	Port        *Port        `gorm:"foreignKey:PortID" json:"port,omitempty"`
	AddressBook *AddressBook `gorm:"foreignKey:AddressBookID" json:"addressBook,omitempty"`
}

func (MovementHistory) TableName() string {
	return "movement_histories"
}

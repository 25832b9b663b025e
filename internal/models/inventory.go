package models

import "time"

// Inventory is a physical container. It carries no current-status column:
// status is derived from the movement ledger (latest row by date, then id).
type Inventory struct {
	ID                uint          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContainerNumber   string        `gorm:"column:container_number;uniqueIndex;not null" json:"containerNumber"`
	ContainerSize     string        `gorm:"column:container_size" json:"containerSize"`
	ContainerClass    string        `gorm:"column:container_class" json:"containerClass"`
	ContainerCapacity string        `gorm:"column:container_capacity" json:"containerCapacity"`
	CapacityUnit      string        `gorm:"column:capacity_unit" json:"capacityUnit"`
	TareWeight        string        `gorm:"column:tare_weight" json:"tareWeight"`
	LeasingInfos      []LeasingInfo `gorm:"foreignKey:InventoryID" json:"leasingInfo,omitempty"`
	CreatedAt         time.Time     `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt         time.Time     `gorm:"column:updated_at" json:"updatedAt"`
}

func (Inventory) TableName() string {
	return "inventories"
}

// LeasingInfo is one leasing record for a container. A container may collect
// several over time (re-lease after off-hire).
type LeasingInfo struct {
	ID                       uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InventoryID              uint       `gorm:"column:inventory_id;not null;index" json:"inventoryId"`
	OwnershipType            string     `gorm:"column:ownership_type" json:"ownershipType"`
	LeasingRefNo             string     `gorm:"column:leasing_ref_no" json:"leasingRefNo"`
	LessorAddressBookID      *uint      `gorm:"column:lessor_address_book_id" json:"leasoraddressbookId"`
	OnHireDate               *time.Time `gorm:"column:on_hire_date" json:"onHireDate"`
	OffHireDate              *time.Time `gorm:"column:off_hire_date" json:"offHireDate"`
	PortID                   *uint      `gorm:"column:port_id" json:"portId"`
	OnHireDepotAddressBookID *uint      `gorm:"column:on_hire_depot_address_book_id" json:"onHireDepotaddressbookId"`
	CreatedAt                time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt                time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (LeasingInfo) TableName() string {
	return "leasing_infos"
}

package models

import "time"

// Shipment statuses. Cancelled shipments stay in the table.
const (
	JobStatusActive    = "ACTIVE"
	JobStatusCancelled = "CANCELLED"
)

// Shipment owns a job number and house BL assigned once at creation.
// The job number never changes; the house BL keeps its year/sequence but its
// port-code prefix is re-derived when POL/POD change.
type Shipment struct {
	ID                            uint                   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	JobNumber                     string                 `gorm:"column:job_number;uniqueIndex;not null" json:"jobNumber"`
	HouseBL                       string                 `gorm:"column:house_bl" json:"houseBL"`
	Date                          time.Time              `gorm:"column:date;not null" json:"date"`
	Status                        string                 `gorm:"column:status;default:'ACTIVE'" json:"status"`
	Remarks                       string                 `gorm:"column:remarks" json:"remarks"`
	CustomerAddressBookID         *uint                  `gorm:"column:customer_address_book_id" json:"custAddressBookId"`
	PolPortID                     uint                   `gorm:"column:pol_port_id;not null" json:"polPortId"`
	PodPortID                     uint                   `gorm:"column:pod_port_id;not null" json:"podPortId"`
	CarrierAddressBookID          *uint                  `gorm:"column:carrier_address_book_id" json:"carrierAddressBookId"`
	EmptyReturnDepotAddressBookID *uint                  `gorm:"column:empty_return_depot_address_book_id" json:"emptyReturnDepotAddressBookId"`
	VesselName                    string                 `gorm:"column:vessel_name" json:"vesselName"`
	Containers                    []ShipmentContainer    `gorm:"foreignKey:ShipmentID" json:"containers,omitempty"`
	CreatedAt                     time.Time              `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt                     time.Time              `gorm:"column:updated_at" json:"updatedAt"`

	PolPort *Port `gorm:"foreignKey:PolPortID" json:"polPort,omitempty"`
	PodPort *Port `gorm:"foreignKey:PodPortID" json:"podPort,omitempty"`
}

func (Shipment) TableName() string {
	return "shipments"
}

// ShipmentContainer mirrors which inventory items are currently committed to
// a shipment.
type ShipmentContainer struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ShipmentID      uint      `gorm:"column:shipment_id;not null;index" json:"shipmentId"`
	InventoryID     uint      `gorm:"column:inventory_id;not null;index" json:"inventoryId"`
	ContainerNumber string    `gorm:"column:container_number" json:"containerNumber"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (ShipmentContainer) TableName() string {
	return "shipment_containers"
}

// BillOfLadingContainer is the container list the BL rendering collaborator
// reads; kept in lockstep with ShipmentContainer and purged on delete.
type BillOfLadingContainer struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ShipmentID      uint      `gorm:"column:shipment_id;not null;index" json:"shipmentId"`
	InventoryID     uint      `gorm:"column:inventory_id;not null" json:"inventoryId"`
	ContainerNumber string    `gorm:"column:container_number" json:"containerNumber"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (BillOfLadingContainer) TableName() string {
	return "bill_of_lading_containers"
}

package models

import "time"

// EmptyRepoJob repositions empty containers between ports. Its single job
// number RST/{POL}{POD}/{yy}/ER{seq} uses one global sequence across all
// routes, unlike the per-route house BL on shipments.
type EmptyRepoJob struct {
	ID                            uint                    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	JobNumber                     string                  `gorm:"column:job_number;uniqueIndex;not null" json:"jobNumber"`
	Date                          time.Time               `gorm:"column:date;not null" json:"date"`
	Status                        string                  `gorm:"column:status;default:'ACTIVE'" json:"status"`
	Remarks                       string                  `gorm:"column:remarks" json:"remarks"`
	PolPortID                     uint                    `gorm:"column:pol_port_id;not null" json:"polPortId"`
	PodPortID                     uint                    `gorm:"column:pod_port_id;not null" json:"podPortId"`
	CarrierAddressBookID          *uint                   `gorm:"column:carrier_address_book_id" json:"carrierAddressBookId"`
	EmptyReturnDepotAddressBookID *uint                   `gorm:"column:empty_return_depot_address_book_id" json:"emptyReturnDepotAddressBookId"`
	VesselName                    string                  `gorm:"column:vessel_name" json:"vesselName"`
	Containers                    []RepoShipmentContainer `gorm:"foreignKey:EmptyRepoJobID" json:"containers,omitempty"`
	CreatedAt                     time.Time               `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt                     time.Time               `gorm:"column:updated_at" json:"updatedAt"`

	PolPort *Port `gorm:"foreignKey:PolPortID" json:"polPort,omitempty"`
	PodPort *Port `gorm:"foreignKey:PodPortID" json:"podPort,omitempty"`
}

func (EmptyRepoJob) TableName() string {
	return "empty_repo_jobs"
}

// RepoShipmentContainer mirrors which inventory items are committed to an
// empty-repo job.
type RepoShipmentContainer struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EmptyRepoJobID  uint      `gorm:"column:empty_repo_job_id;not null;index" json:"emptyRepoJobId"`
	InventoryID     uint      `gorm:"column:inventory_id;not null;index" json:"inventoryId"`
	ContainerNumber string    `gorm:"column:container_number" json:"containerNumber"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (RepoShipmentContainer) TableName() string {
	return "repo_shipment_containers"
}

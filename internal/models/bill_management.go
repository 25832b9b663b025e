package models

import "time"

// Billing/payment status labels.
const (
	BillingStatusPending = "Pending"
	PaymentStatusUnpaid  = "Unpaid"
)

// BillManagement is created automatically with its shipment (1:1). When the
// shipment is deleted the foreign key is cleared instead of cascading, and
// the snapshot fields below are filled so billing history survives.
type BillManagement struct {
	ID            uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ShipmentID    *uint      `gorm:"column:shipment_id;index" json:"shipmentId"`
	BillingStatus string     `gorm:"column:billing_status;default:'Pending'" json:"billingStatus"`
	PaymentStatus string     `gorm:"column:payment_status;default:'Unpaid'" json:"paymentStatus"`
	InvoiceAmount float64    `gorm:"column:invoice_amount;type:decimal(18,2);not null;default:0" json:"invoiceAmount"`
	PaidAmount    float64    `gorm:"column:paid_amount;type:decimal(18,2);not null;default:0" json:"paidAmount"`
	DueAmount     float64    `gorm:"column:due_amount;type:decimal(18,2);not null;default:0" json:"dueAmount"`

	// Snapshot fields, filled when the owning shipment is deleted.
	JobNumber    *string    `gorm:"column:job_number" json:"jobNumber"`
	ShipmentDate *time.Time `gorm:"column:shipment_date" json:"shipmentDate"`
	CustomerName *string    `gorm:"column:customer_name" json:"customerName"`
	PortPair     *string    `gorm:"column:port_pair" json:"portPair"`

	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (BillManagement) TableName() string {
	return "bill_managements"
}

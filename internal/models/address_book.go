package models

import "time"

// AddressBook is a counterparty record: customer, carrier, lessor or depot
// terminal, distinguished by BusinessType.
type AddressBook struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CompanyName  string    `gorm:"column:company_name;not null" json:"companyName"`
	BusinessType string    `gorm:"column:business_type" json:"businessType"`
	Country      string    `gorm:"column:country" json:"country"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (AddressBook) TableName() string {
	return "address_books"
}

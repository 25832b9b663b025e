package billing

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rst-backend/internal/models"
	"rst-backend/internal/pkg/apperror"
)

type Service struct {
	DB *gorm.DB
}

func (s *Service) GetAll(ctx context.Context) ([]models.BillManagement, error) {
	var bills []models.BillManagement
	err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&bills).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch bills")
	}
	return bills, nil
}

// GetOrphaned lists bills whose shipment was deleted; they identify their
// job through the snapshot fields.
func (s *Service) GetOrphaned(ctx context.Context) ([]models.BillManagement, error) {
	var bills []models.BillManagement
	err := s.DB.WithContext(ctx).
		Where("shipment_id IS NULL").
		Order("created_at DESC").
		Find(&bills).Error
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch orphaned bills")
	}
	return bills, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*models.BillManagement, error) {
	var bill models.BillManagement
	err := s.DB.WithContext(ctx).First(&bill, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Bill %d not found", id)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch bill")
	}
	return &bill, nil
}

type UpdateBillInput struct {
	InvoiceAmount *float64
	PaidAmount    *float64
	BillingStatus *string
}

// Update patches a bill's amounts. The due amount and payment status are
// derived, never set directly.
func (s *Service) Update(ctx context.Context, id uint, in UpdateBillInput) (*models.BillManagement, error) {
	var updated models.BillManagement
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bill models.BillManagement
		if err := tx.First(&bill, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Bill %d not found", id)
			}
			return apperror.Wrap(err, "Failed to load bill")
		}

		if in.InvoiceAmount != nil {
			if *in.InvoiceAmount < 0 {
				return apperror.Validation("invoiceAmount cannot be negative")
			}
			bill.InvoiceAmount = *in.InvoiceAmount
		}
		if in.PaidAmount != nil {
			if *in.PaidAmount < 0 {
				return apperror.Validation("paidAmount cannot be negative")
			}
			bill.PaidAmount = *in.PaidAmount
		}
		if bill.PaidAmount > bill.InvoiceAmount {
			return apperror.Validation("paidAmount cannot exceed invoiceAmount")
		}
		if in.BillingStatus != nil {
			bill.BillingStatus = *in.BillingStatus
		}

		bill.DueAmount = bill.InvoiceAmount - bill.PaidAmount
		switch {
		case bill.InvoiceAmount > 0 && bill.PaidAmount == bill.InvoiceAmount:
			bill.PaymentStatus = "Paid"
		case bill.PaidAmount > 0:
			bill.PaymentStatus = "Partially Paid"
		default:
			bill.PaymentStatus = models.PaymentStatusUnpaid
		}

		if err := tx.Save(&bill).Error; err != nil {
			return apperror.Wrap(err, "Failed to update bill")
		}
		updated = bill
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

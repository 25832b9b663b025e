package billing

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rst-backend/internal/models"
	"rst-backend/internal/pkg/apperror"
)

func setupBillingTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.BillManagement{}, &models.Shipment{}))
	return &Service{DB: db}, db
}

func floatPtr(v float64) *float64 { return &v }

func seedBill(t *testing.T, db *gorm.DB, shipmentID *uint) models.BillManagement {
	bill := models.BillManagement{
		ShipmentID:    shipmentID,
		BillingStatus: models.BillingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(&bill).Error)
	return bill
}

func TestUpdate_DerivesDueAndPaymentStatus(t *testing.T) {
	svc, db := setupBillingTest(t)
	ctx := context.Background()
	bill := seedBill(t, db, nil)

	updated, err := svc.Update(ctx, bill.ID, UpdateBillInput{InvoiceAmount: floatPtr(1000)})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, updated.DueAmount)
	assert.Equal(t, models.PaymentStatusUnpaid, updated.PaymentStatus)

	updated, err = svc.Update(ctx, bill.ID, UpdateBillInput{PaidAmount: floatPtr(400)})
	require.NoError(t, err)
	assert.Equal(t, 600.0, updated.DueAmount)
	assert.Equal(t, "Partially Paid", updated.PaymentStatus)

	updated, err = svc.Update(ctx, bill.ID, UpdateBillInput{PaidAmount: floatPtr(1000)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.DueAmount)
	assert.Equal(t, "Paid", updated.PaymentStatus)
}

func TestUpdate_RejectsInvalidAmounts(t *testing.T) {
	svc, db := setupBillingTest(t)
	ctx := context.Background()
	bill := seedBill(t, db, nil)

	_, err := svc.Update(ctx, bill.ID, UpdateBillInput{InvoiceAmount: floatPtr(-1)})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Update(ctx, bill.ID, UpdateBillInput{PaidAmount: floatPtr(-5)})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	// Overpayment is rejected even when both amounts arrive together.
	_, err = svc.Update(ctx, bill.ID, UpdateBillInput{
		InvoiceAmount: floatPtr(100),
		PaidAmount:    floatPtr(150),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdate_UnknownBill(t *testing.T) {
	svc, _ := setupBillingTest(t)
	_, err := svc.Update(context.Background(), 999, UpdateBillInput{InvoiceAmount: floatPtr(10)})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetOrphaned_ReturnsOnlyDetachedBills(t *testing.T) {
	svc, db := setupBillingTest(t)
	ctx := context.Background()

	shipment := models.Shipment{
		JobNumber: "25/00001", HouseBL: "RST/NSAJEB/25/00001",
		Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		PolPortID: 1, PodPortID: 2,
	}
	require.NoError(t, db.Create(&shipment).Error)
	seedBill(t, db, &shipment.ID)

	jobNumber := "25/00099"
	orphan := models.BillManagement{
		BillingStatus: models.BillingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		JobNumber:     &jobNumber,
	}
	require.NoError(t, db.Create(&orphan).Error)

	orphans, err := svc.GetOrphaned(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Nil(t, orphans[0].ShipmentID)
	require.NotNil(t, orphans[0].JobNumber)
	assert.Equal(t, "25/00099", *orphans[0].JobNumber)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

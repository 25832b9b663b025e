package shipments

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rst-backend/internal/models"
	"rst-backend/internal/movement"
	"rst-backend/internal/pkg/apperror"
)

func uintPtr(v uint) *uint { return &v }

func setupShipmentTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Inventory{}, &models.LeasingInfo{}, &models.Port{},
		&models.AddressBook{}, &models.MovementHistory{},
		&models.Shipment{}, &models.ShipmentContainer{},
		&models.BillOfLadingContainer{}, &models.EmptyRepoJob{},
		&models.RepoShipmentContainer{}, &models.BillManagement{},
		&models.JobEvent{}, &models.JobSequence{},
	))
	return &Service{DB: db}, db
}

// seedRoute creates the NSA/JEB ports plus a depot and returns their ids.
func seedRoute(t *testing.T, db *gorm.DB) (nsa, jeb uint, depot uint) {
	pol := models.Port{PortCode: "NSA", PortName: "Nhava Sheva"}
	pod := models.Port{PortCode: "JEB", PortName: "Jebel Ali"}
	require.NoError(t, db.Create(&pol).Error)
	require.NoError(t, db.Create(&pod).Error)
	d := models.AddressBook{CompanyName: "Nhava Depot", BusinessType: "Depot Terminal"}
	require.NoError(t, db.Create(&d).Error)
	return pol.ID, pod.ID, d.ID
}

// seedContainer creates a container with leasing info and an initial
// AVAILABLE ledger row at the depot.
func seedContainer(t *testing.T, db *gorm.DB, number string, portID, depotID uint) models.Inventory {
	inv := models.Inventory{ContainerNumber: number, ContainerSize: "20TK"}
	require.NoError(t, db.Create(&inv).Error)
	require.NoError(t, db.Create(&models.LeasingInfo{
		InventoryID:              inv.ID,
		OwnershipType:            "Lease",
		PortID:                   &portID,
		OnHireDepotAddressBookID: &depotID,
	}).Error)
	require.NoError(t, db.Create(&models.MovementHistory{
		InventoryID:   inv.ID,
		Status:        movement.StatusAvailable,
		Date:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PortID:        &portID,
		AddressBookID: &depotID,
	}).Error)
	return inv
}

func TestCreate_FirstShipmentOfYear(t *testing.T) {
	svc, db := setupShipmentTest(t)
	ctx := context.Background()
	nsa, jeb, depot := seedRoute(t, db)
	x123 := seedContainer(t, db, "X123", nsa, depot)

	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	shipment, err := svc.Create(ctx, CreateShipmentInput{
		Date:         date,
		PolPortID:    nsa,
		PodPortID:    jeb,
		InventoryIDs: []uint{x123.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "25/00001", shipment.JobNumber)
	assert.Equal(t, "RST/NSAJEB/25/00001", shipment.HouseBL)
	assert.Equal(t, models.JobStatusActive, shipment.Status)

	// One ALLOTTED ledger row dated to the shipment's own date.
	var rows []models.MovementHistory
	require.NoError(t, db.Where("inventory_id = ? AND status = ?", x123.ID, movement.StatusAllotted).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, date.Unix(), rows[0].Date.Unix())
	assert.Equal(t, &shipment.ID, rows[0].ShipmentID)
	assert.Equal(t, uintPtr(nsa), rows[0].PortID)
	assert.Equal(t, uintPtr(depot), rows[0].AddressBookID)

	// Auto-created zero-amount bill.
	var bill models.BillManagement
	require.NoError(t, db.Where("shipment_id = ?", shipment.ID).First(&bill).Error)
	assert.Equal(t, models.BillingStatusPending, bill.BillingStatus)
	assert.Equal(t, models.PaymentStatusUnpaid, bill.PaymentStatus)
	assert.Equal(t, 0.0, bill.DueAmount)

	// Audit event.
	var event models.JobEvent
	require.NoError(t, db.Where("entity_type = ? AND event_type = ?", models.JobEntityShipment, models.JobEventCreated).First(&event).Error)
	assert.Equal(t, "25/00001", event.JobNumber)
}

func TestCreate_SequencesAreScopedCorrectly(t *testing.T) {
	svc, db := setupShipmentTest(t)
	ctx := context.Background()
	nsa, jeb, _ := seedRoute(t, db)
	mun := models.Port{PortCode: "MUN", PortName: "Mundra"}
	require.NoError(t, db.Create(&mun).Error)

	date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	first, err := svc.Create(ctx, CreateShipmentInput{Date: date, PolPortID: nsa, PodPortID: jeb})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateShipmentInput{Date: date, PolPortID: mun.ID, PodPortID: jeb})
	require.NoError(t, err)
	third, err := svc.Create(ctx, CreateShipmentInput{Date: date, PolPortID: nsa, PodPortID: jeb})
	require.NoError(t, err)

	// Job numbers: one global monotonic sequence.
	assert.Equal(t, "25/00001", first.JobNumber)
	assert.Equal(t, "25/00002", second.JobNumber)
	assert.Equal(t, "25/00003", third.JobNumber)

	// House BLs: independent sequence per POL/POD pair.
	assert.Equal(t, "RST/NSAJEB/25/00001", first.HouseBL)
	assert.Equal(t, "RST/MUNJEB/25/00001", second.HouseBL)
	assert.Equal(t, "RST/NSAJEB/25/00002", third.HouseBL)
}

func TestCreate_SeedsFromPreexistingJobNumbers(t *testing.T) {
	svc, db := setupShipmentTest(t)
	ctx := context.Background()
	nsa, jeb, _ := seedRoute(t, db)

	// A shipment that predates the counter table.
	require.NoError(t, db.Create(&models.Shipment{
		JobNumber: "25/00007",
		HouseBL:   "RST/NSAJEB/25/00007",
		Date:      time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		PolPortID: nsa, PodPortID: jeb,
	}).Error)

	shipment, err := svc.Create(ctx, CreateShipmentInput{
		Date:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PolPortID: nsa, PodPortID: jeb,
	})
	require.NoError(t, err)
	assert.Equal(t, "25/00008", shipment.JobNumber)
	assert.Equal(t, "RST/NSAJEB/25/00008", shipment.HouseBL)
}

func TestCreate_MissingPortRejected(t *testing.T) {
	svc, db := setupShipmentTest(t)
	nsa, _, _ := seedRoute(t, db)

	_, err := svc.Create(context.Background(), CreateShipmentInput{
		Date:      time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		PolPortID: nsa,
		PodPortID: 999,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestUpdate_ContainerDiffDrivesLedger(t *testing.T) {
	svc, db := setupShipmentTest(t)
	ctx := context.Background()
	nsa, jeb, depot := seedRoute(t, db)
	a := seedContainer(t, db, "CONA", nsa, depot)
	b := seedContainer(t, db, "CONB", nsa, depot)
	cc := seedContainer(t, db, "CONC", nsa, depot)
	d := seedContainer(t, db, "COND", nsa, depot)

	shipment, err := svc.Create(ctx, CreateShipmentInput{
		Date:         time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		PolPortID:    nsa,
		PodPortID:    jeb,
		InventoryIDs: []uint{a.ID, b.ID, cc.ID},
	})
	require.NoError(t, err)

	countRows := func(invID uint, status string) int64 {
		var n int64
		require.NoError(t, db.Model(&models.MovementHistory{}).
			Where("inventory_id = ? AND status = ?", invID, status).Count(&n).Error)
		return n
	}
	beforeB := countRows(b.ID, movement.StatusAllotted)
	beforeC := countRows(cc.ID, movement.StatusAllotted)

	newSet := []uint{b.ID, cc.ID, d.ID}
	updated, err := svc.Update(ctx, shipment.ID, UpdateShipmentInput{InventoryIDs: &newSet})
	require.NoError(t, err)

	// A freed, D allotted, B and C untouched.
	assert.Equal(t, int64(1), countRows(a.ID, movement.StatusAvailable)-1) // one from seeding, one from removal
	assert.Equal(t, int64(1), countRows(d.ID, movement.StatusAllotted))
	assert.Equal(t, beforeB, countRows(b.ID, movement.StatusAllotted))
	assert.Equal(t, beforeC, countRows(cc.ID, movement.StatusAllotted))

	// Assignment rows mirror the new set.
	require.Len(t, updated.Containers, 3)
	got := map[uint]bool{}
	for _, sc := range updated.Containers {
		got[sc.InventoryID] = true
	}
	assert.True(t, got[b.ID] && got[cc.ID] && got[d.ID])
	assert.False(t, got[a.ID])

	// Job number survives edits untouched.
	assert.Equal(t, shipment.JobNumber, updated.JobNumber)
}

func TestUpdate_RederivesHouseBLPrefix(t *testing.T) {
	svc, db := setupShipmentTest(t)
	ctx := context.Background()
	nsa, jeb, _ := seedRoute(t, db)
	mun := models.Port{PortCode: "MUN", PortName: "Mundra"}
	require.NoError(t, db.Create(&mun).Error)

	shipment, err := svc.Create(ctx, CreateShipmentInput{
		Date:      time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		PolPortID: nsa, PodPortID: jeb,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, shipment.ID, UpdateShipmentInput{PolPortID: &mun.ID})
	require.NoError(t, err)
	assert.Equal(t, "RST/MUNJEB/25/00001", updated.HouseBL)
	assert.Equal(t, "25/00001", updated.JobNumber)
}

func TestCancel_FreesContainersSoftSkippingIncompleteLeasing(t *testing.T) {
	svc, db := setupShipmentTest(t)
	ctx := context.Background()
	nsa, jeb, depot := seedRoute(t, db)
	full := seedContainer(t, db, "FULL1", nsa, depot)

	// Container with leasing info that lacks a depot: soft-skipped.
	bare := models.Inventory{ContainerNumber: "BARE1"}
	require.NoError(t, db.Create(&bare).Error)
	require.NoError(t, db.Create(&models.LeasingInfo{InventoryID: bare.ID, PortID: &nsa}).Error)
	require.NoError(t, db.Create(&models.MovementHistory{
		InventoryID: bare.ID, Status: movement.StatusAvailable,
		Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), PortID: &nsa,
	}).Error)

	shipment, err := svc.Create(ctx, CreateShipmentInput{
		Date:         time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		PolPortID:    nsa,
		PodPortID:    jeb,
		InventoryIDs: []uint{full.ID, bare.ID},
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, shipment.ID, "customer withdrew")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)
	assert.Contains(t, cancelled.Remarks, "customer withdrew")

	// Shipment row survives cancellation.
	var count int64
	require.NoError(t, db.Model(&models.Shipment{}).Where("id = ?", shipment.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// FULL1 got a fresh AVAILABLE row at its leasing depot; BARE1 did not.
	var row models.MovementHistory
	require.NoError(t, db.Where("inventory_id = ?", full.ID).Order("date DESC, id DESC").First(&row).Error)
	assert.Equal(t, movement.StatusAvailable, row.Status)
	assert.Equal(t, uintPtr(depot), row.AddressBookID)

	var bareRows int64
	require.NoError(t, db.Model(&models.MovementHistory{}).
		Where("inventory_id = ? AND status = ?", bare.ID, movement.StatusAvailable).Count(&bareRows).Error)
	assert.Equal(t, int64(1), bareRows) // only the seeded row

	// Cancelling twice is a conflict.
	_, err = svc.Cancel(ctx, shipment.ID, "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestDelete_DetachesBillAndPurgesOwnRows(t *testing.T) {
	svc, db := setupShipmentTest(t)
	ctx := context.Background()
	nsa, jeb, depot := seedRoute(t, db)
	customer := models.AddressBook{CompanyName: "Acme Freight", BusinessType: "Customer"}
	require.NoError(t, db.Create(&customer).Error)
	x := seedContainer(t, db, "X999", nsa, depot)

	shipment, err := svc.Create(ctx, CreateShipmentInput{
		Date:                  time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		PolPortID:             nsa,
		PodPortID:             jeb,
		CustomerAddressBookID: &customer.ID,
		InventoryIDs:          []uint{x.ID},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, shipment.ID))

	// Shipment and its assignment rows are gone.
	var count int64
	require.NoError(t, db.Model(&models.Shipment{}).Where("id = ?", shipment.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Model(&models.ShipmentContainer{}).Where("shipment_id = ?", shipment.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Model(&models.BillOfLadingContainer{}).Where("shipment_id = ?", shipment.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// The shipment's own ledger rows are purged; the AVAILABLE release row
	// (no job reference) survives as the container's current state.
	require.NoError(t, db.Model(&models.MovementHistory{}).Where("shipment_id = ?", shipment.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	var latest models.MovementHistory
	require.NoError(t, db.Where("inventory_id = ?", x.ID).Order("date DESC, id DESC").First(&latest).Error)
	assert.Equal(t, movement.StatusAvailable, latest.Status)

	// Bill detached, not deleted, with the snapshot filled in.
	var bill models.BillManagement
	require.NoError(t, db.First(&bill).Error)
	assert.Nil(t, bill.ShipmentID)
	require.NotNil(t, bill.JobNumber)
	assert.Equal(t, "25/00001", *bill.JobNumber)
	require.NotNil(t, bill.CustomerName)
	assert.Equal(t, "Acme Freight", *bill.CustomerName)
	require.NotNil(t, bill.PortPair)
	assert.Equal(t, "NSA-JEB", *bill.PortPair)
}

package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rst-backend/internal/models"
	"rst-backend/internal/movement"
)

func setupDashboardTest(t *testing.T) (*Service, *gorm.DB, *miniredis.Miniredis) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Inventory{}, &models.MovementHistory{}, &models.Port{},
		&models.Shipment{}, &models.EmptyRepoJob{}, &models.BillManagement{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := &Service{DB: db, Rdb: rdb, Movement: &movement.Service{DB: db}}
	return svc, db, mr
}

func seedWorld(t *testing.T, db *gorm.DB) {
	nsa := models.Port{PortCode: "NSA", PortName: "Nhava Sheva"}
	jeb := models.Port{PortCode: "JEB", PortName: "Jebel Ali"}
	require.NoError(t, db.Create(&nsa).Error)
	require.NoError(t, db.Create(&jeb).Error)

	a := models.Inventory{ContainerNumber: "CONA"}
	b := models.Inventory{ContainerNumber: "CONB"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	day1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.MovementHistory{InventoryID: a.ID, Status: movement.StatusAvailable, Date: day1}).Error)
	require.NoError(t, db.Create(&models.MovementHistory{InventoryID: a.ID, Status: movement.StatusSOB, Date: day2}).Error)
	require.NoError(t, db.Create(&models.MovementHistory{InventoryID: b.ID, Status: movement.StatusAvailable, Date: day1}).Error)

	require.NoError(t, db.Create(&models.Shipment{
		JobNumber: "25/00001", HouseBL: "RST/NSAJEB/25/00001", Date: day1,
		Status: models.JobStatusActive, PolPortID: nsa.ID, PodPortID: jeb.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Shipment{
		JobNumber: "25/00002", HouseBL: "RST/NSAJEB/25/00002", Date: day1,
		Status: models.JobStatusCancelled, PolPortID: nsa.ID, PodPortID: jeb.ID,
	}).Error)
	require.NoError(t, db.Create(&models.EmptyRepoJob{
		JobNumber: "RST/NSAJEB/25/ER00001", Date: day1,
		Status: models.JobStatusActive, PolPortID: nsa.ID, PodPortID: jeb.ID,
	}).Error)

	require.NoError(t, db.Create(&models.BillManagement{
		BillingStatus: models.BillingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		InvoiceAmount: 1000, PaidAmount: 400, DueAmount: 600,
	}).Error)
}

func TestGetSummary_ComputesCounts(t *testing.T) {
	svc, db, _ := setupDashboardTest(t)
	seedWorld(t, db)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalContainers)
	assert.Equal(t, int64(1), summary.StatusCounts[movement.StatusSOB])
	assert.Equal(t, int64(1), summary.StatusCounts[movement.StatusAvailable])
	assert.Equal(t, int64(1), summary.ActiveShipments)
	assert.Equal(t, int64(1), summary.ActiveRepoJobs)
	assert.Equal(t, int64(1), summary.CancelledJobs)
	require.Len(t, summary.Routes, 1)
	assert.Equal(t, RouteSummary{PolCode: "NSA", PodCode: "JEB", Shipments: 1}, summary.Routes[0])
	assert.Equal(t, 600.0, summary.OutstandingDue)
	assert.Equal(t, int64(1), summary.PendingBills)
}

func TestGetSummary_ServesFromCache(t *testing.T) {
	svc, db, mr := setupDashboardTest(t)
	seedWorld(t, db)

	first, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	require.True(t, mr.Exists(summaryCacheKey))

	// A change behind the cache is invisible until the TTL expires.
	require.NoError(t, db.Create(&models.Inventory{ContainerNumber: "CONC"}).Error)
	second, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.TotalContainers, second.TotalContainers)

	mr.FastForward(summaryCacheTTL + time.Second)
	third, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.TotalContainers)
}

func TestInvalidateSummary_DropsCache(t *testing.T) {
	svc, db, mr := setupDashboardTest(t)
	seedWorld(t, db)

	_, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	require.True(t, mr.Exists(summaryCacheKey))

	svc.InvalidateSummary(context.Background())
	assert.False(t, mr.Exists(summaryCacheKey))
}

func TestGetSummary_WorksWithoutRedis(t *testing.T) {
	svc, db, _ := setupDashboardTest(t)
	svc.Rdb = nil
	seedWorld(t, db)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalContainers)
}

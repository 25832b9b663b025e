package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"rst-backend/internal/models"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 ("prepared statement already exists")
// when using connection poolers (PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Port{},
		&models.AddressBook{},
		&models.Inventory{},
		&models.LeasingInfo{},
		&models.MovementHistory{},
		&models.Shipment{},
		&models.ShipmentContainer{},
		&models.BillOfLadingContainer{},
		&models.EmptyRepoJob{},
		&models.RepoShipmentContainer{},
		&models.BillManagement{},
		&models.JobEvent{},
		&models.JobSequence{},
	)
}

package app

import (
	"rst-backend/internal/billing"
	"rst-backend/internal/config"
	"rst-backend/internal/dashboard"
	"rst-backend/internal/database"
	"rst-backend/internal/health"
	"rst-backend/internal/inventory"
	"rst-backend/internal/leasing"
	"rst-backend/internal/middleware"
	"rst-backend/internal/movement"
	"rst-backend/internal/repojobs"
	"rst-backend/internal/shipments"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. The returned DB and Redis client are also handed back so
// main can verify connectivity at startup.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
		app.Use(middleware.HealthMarker(rdb))
	}

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	// Health module (GET /health/json, GET /health/reset, GET /health/errors)
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			healthHandlers.DB = sqlDB
		}
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)
	app.Get("/health/errors", healthHandlers.Errors)

	if db != nil {
		movementService := &movement.Service{DB: db}
		movementHandlers := &movement.Handlers{Service: movementService}
		movementGroup := app.Group("/api/v1/movements")
		movementGroup.Post("/bulk-update", movementHandlers.BulkUpdate)
		movementGroup.Get("/latest", movementHandlers.Latest)
		movementGroup.Get("/history/:inventoryId", movementHandlers.History)
		movementGroup.Get("/can-edit/:inventoryId", movementHandlers.CanEdit)
		movementGroup.Get("/can-delete/:inventoryId", movementHandlers.CanDelete)
		movementGroup.Get("/", movementHandlers.All)
		movementGroup.Patch("/:id", movementHandlers.UpdateMovement)

		inventoryService := &inventory.Service{DB: db, Movement: movementService}
		inventoryHandlers := &inventory.Handlers{Service: inventoryService}
		inventoryGroup := app.Group("/api/v1/inventory")
		inventoryGroup.Post("/", inventoryHandlers.Create)
		inventoryGroup.Get("/", inventoryHandlers.GetAll)
		inventoryGroup.Get("/:id", inventoryHandlers.GetByID)
		inventoryGroup.Put("/:id", inventoryHandlers.Update)
		inventoryGroup.Delete("/:id", inventoryHandlers.Delete)

		leasingService := &leasing.Service{DB: db}
		leasingHandlers := &leasing.Handlers{Service: leasingService}
		app.Post("/api/v1/inventory/:inventoryId/leasing", leasingHandlers.Create)
		app.Get("/api/v1/inventory/:inventoryId/leasing", leasingHandlers.ListForInventory)
		leasingGroup := app.Group("/api/v1/leasing-info")
		leasingGroup.Patch("/:id", leasingHandlers.Update)
		leasingGroup.Delete("/:id", leasingHandlers.Delete)

		shipmentService := &shipments.Service{DB: db}
		shipmentHandlers := &shipments.Handlers{Service: shipmentService}
		shipmentGroup := app.Group("/api/v1/shipments")
		shipmentGroup.Post("/", shipmentHandlers.Create)
		shipmentGroup.Get("/", shipmentHandlers.GetAll)
		shipmentGroup.Get("/:id", shipmentHandlers.GetByID)
		shipmentGroup.Put("/:id", shipmentHandlers.Update)
		shipmentGroup.Post("/:id/cancel", shipmentHandlers.Cancel)
		shipmentGroup.Delete("/:id", shipmentHandlers.Delete)

		repoJobService := &repojobs.Service{DB: db}
		repoJobHandlers := &repojobs.Handlers{Service: repoJobService}
		repoJobGroup := app.Group("/api/v1/empty-repo-jobs")
		repoJobGroup.Post("/", repoJobHandlers.Create)
		repoJobGroup.Get("/", repoJobHandlers.GetAll)
		repoJobGroup.Get("/:id", repoJobHandlers.GetByID)
		repoJobGroup.Put("/:id", repoJobHandlers.Update)
		repoJobGroup.Post("/:id/cancel", repoJobHandlers.Cancel)
		repoJobGroup.Delete("/:id", repoJobHandlers.Delete)

		billingService := &billing.Service{DB: db}
		billingHandlers := &billing.Handlers{Service: billingService}
		billGroup := app.Group("/api/v1/bills")
		billGroup.Get("/orphaned", billingHandlers.GetOrphaned)
		billGroup.Get("/", billingHandlers.GetAll)
		billGroup.Get("/:id", billingHandlers.GetByID)
		billGroup.Patch("/:id", billingHandlers.Update)

		dashboardService := &dashboard.Service{DB: db, Rdb: rdb, Movement: movementService}
		dashboardHandlers := &dashboard.Handlers{Service: dashboardService}
		app.Get("/api/v1/dashboard/summary", dashboardHandlers.GetSummary)
	}

	return app, db, rdb, nil
}

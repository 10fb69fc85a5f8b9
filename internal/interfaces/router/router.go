package router

import (
	catalogsvc "stratplan-backend/internal/application/catalog"
	planssvc "stratplan-backend/internal/application/plans"
	"stratplan-backend/internal/application/planview"
	"stratplan-backend/internal/config"
	"stratplan-backend/internal/infrastructure/database"
	cataloghandler "stratplan-backend/internal/interfaces/handlers/catalog"
	costinghandler "stratplan-backend/internal/interfaces/handlers/costing"
	healthhandler "stratplan-backend/internal/interfaces/handlers/health"
	planshandler "stratplan-backend/internal/interfaces/handlers/plans"
	"stratplan-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. DB and Redis are returned so the entrypoint can verify
// connectivity before listening.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
	}))

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	app.Use(middleware.RequestMetrics(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.OrgContext())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	hh := &healthhandler.Handlers{Rdb: rdb, DB: db}
	app.Get("/health", hh.Health)

	// db may be nil when DATABASE_URL is unset (e.g. handler tests build
	// their own app); data routes are only mounted with a store behind them.
	if db != nil {
		plansService := &planssvc.Service{DB: db}
		viewService := &planview.Service{
			Store:        plansService,
			RefreshDelay: cfg.RefreshDelay,
		}
		catalogService := &catalogsvc.Service{
			DB:       db,
			Rdb:      rdb,
			CacheTTL: cfg.CatalogCacheTTL,
		}

		ph := &planshandler.Handlers{View: viewService, Plans: plansService}
		plansGroup := app.Group("/api/v1/plans")
		plansGroup.Get("/:id/tree", ph.GetPlanTree)
		plansGroup.Get("/:id/rollup", ph.GetRollUp)
		plansGroup.Post("/:id/sub-activities", ph.CreateSubActivity)
		plansGroup.Delete("/:id/main-activities/:activityID", ph.DeleteMainActivity)
		plansGroup.Post("/:id/submit", ph.SubmitPlan)
		plansGroup.Post("/:id/review", ph.ReviewPlan)
		app.Get("/api/v1/objectives/:id/weights", ph.GetObjectiveWeights)

		ch := &costinghandler.Handlers{Catalog: catalogService}
		kh := &cataloghandler.Handlers{Service: catalogService}
		costingGroup := app.Group("/api/v1/costing")
		costingGroup.Post("/estimate", ch.Estimate)
		costingGroup.Get("/catalog", kh.GetCatalog)
		costingGroup.Post("/catalog/import", kh.Import)
	}

	return app, db, rdb, nil
}

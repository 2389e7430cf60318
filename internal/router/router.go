package router

import (
	"time"

	"novacrm/internal/config"
	"novacrm/internal/handler"
	"novacrm/internal/middleware"
	"novacrm/internal/repository"
	"novacrm/internal/service"
	"novacrm/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	priceHistoryRepo := repository.NewPriceHistoryRepository(db)
	alertRepo := repository.NewStockAlertRepository(db)
	recommendationRepo := repository.NewStockRecommendationRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	bulkRepo := repository.NewBulkUpdateRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	inventorySvc := service.NewInventoryService(
		productRepo, movementRepo, priceHistoryRepo,
		alertRepo, recommendationRepo, tenantRepo, dispatcher,
	)
	cacheTTL := time.Duration(cfg.ProductCacheTTLSeconds) * time.Second
	productSvc := service.NewProductService(productRepo, categoryRepo, inventorySvc, rdb, cacheTTL)
	orderSvc := service.NewOrderService(orderRepo, productRepo, inventorySvc)
	bulkSvc := service.NewBulkService(productRepo, inventorySvc, bulkRepo, categoryRepo)
	signalSvc := service.NewSignalService(alertRepo, recommendationRepo, productRepo)
	ledgerSvc := service.NewLedgerService(movementRepo, priceHistoryRepo, productRepo)
	categorySvc := service.NewCategoryService(categoryRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	bulkH := handler.NewBulkHandler(bulkSvc)
	signalsH := handler.NewSignalsHandler(signalSvc)
	ledgerH := handler.NewLedgerHandler(ledgerSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: agent, manager, admin — declared per-endpoint

		// Products — all roles read, admin writes
		v1.GET("/products", middleware.RequireRole("agent", "manager", "admin"), productsH.List)
		v1.GET("/products/:id", middleware.RequireRole("agent", "manager", "admin"), productsH.GetByID)
		v1.GET("/products/:id/price-history", middleware.RequireRole("agent", "manager", "admin"), ledgerH.ListPriceHistory)
		prods := v1.Group("/products", middleware.RequireRole("admin"))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
		}

		// Orders — all roles create and read, manager/admin cancel or delete
		v1.POST("/orders", middleware.RequireRole("agent", "manager", "admin"), ordersH.Create)
		v1.GET("/orders", middleware.RequireRole("agent", "manager", "admin"), ordersH.List)
		v1.GET("/orders/:id", middleware.RequireRole("agent", "manager", "admin"), ordersH.GetByID)
		v1.POST("/orders/:id/cancel", middleware.RequireRole("manager", "admin"), ordersH.Cancel)
		v1.DELETE("/orders/:id", middleware.RequireRole("manager", "admin"), ordersH.Delete)
		v1.DELETE("/orders/:id/items/:itemId", middleware.RequireRole("manager", "admin"), ordersH.RemoveItem)

		// Stock movement ledger — read-only
		v1.GET("/stock-movements", middleware.RequireRole("agent", "manager", "admin"), ledgerH.ListMovements)

		// Derived signals
		signals := v1.Group("", middleware.RequireRole("agent", "manager", "admin"))
		{
			signals.GET("/alerts", signalsH.ListAlerts)
			signals.PATCH("/alerts/:id/read", signalsH.MarkAlertRead)
			signals.PATCH("/alerts/:id/resolve", signalsH.ResolveAlert)
			signals.GET("/recommendations", signalsH.ListRecommendations)
			signals.PATCH("/recommendations/:id/apply", signalsH.ApplyRecommendation)
		}

		// Bulk price updates — admin only
		bulk := v1.Group("/bulk-price-updates", middleware.RequireRole("admin"))
		{
			bulk.POST("", bulkH.Apply)
			bulk.GET("", bulkH.List)
		}

		// Categories — read-only taxonomy
		v1.GET("/categories", middleware.RequireRole("agent", "manager", "admin"), categoriesH.List)
		v1.GET("/categories/:id", middleware.RequireRole("agent", "manager", "admin"), categoriesH.GetByID)

		// User management — admin only
		v1.POST("/users", middleware.RequireRole("admin"), authH.CreateUser)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

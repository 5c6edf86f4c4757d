// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/engine"
	"ledgerbook/internal/infrastructure/http/v1/dto"
	"ledgerbook/internal/infrastructure/http/v1/handlers"
	"ledgerbook/internal/infrastructure/http/v1/middleware"
	"ledgerbook/internal/infrastructure/storage/postgres"
	"ledgerbook/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Engine *engine.Engine

	// Pool backs the readiness probe; nil for memory storage.
	Pool *postgres.Pool

	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator
	Production   bool
}

// NewRouter creates and configures the gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Order matters: recovery wraps everything, errors are rendered last.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Secure(middleware.SecureConfig{Production: cfg.Production}))
	router.Use(middleware.ErrorHandler())

	health := handlers.NewHealthHandler(cfg.Pool)
	router.GET("/health/live", health.Live)
	router.GET("/health/ready", health.Ready)

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))

	base := handlers.NewBaseHandler()
	registerCompanyRoutes(api, base, cfg.Engine)
	registerVoucherRoutes(api, base, cfg.Engine)
	registerReportRoutes(api, base, cfg.Engine)

	return router
}

func registerCompanyRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, e *engine.Engine) {
	companies := handlers.NewCompanyHandler(base, e.Masters)
	api.GET("/companies", companies.List)
	api.POST("/companies", companies.Create)

	company := api.Group("/companies/:companyId")
	company.GET("", companies.Get)
	company.PUT("", companies.Update)
	company.DELETE("", companies.Delete)

	RegisterMasterRoutes(company, api, "/groups",
		handlers.NewMasterHandler[*entity.Group, dto.GroupRequest](base, e.Masters.Groups))
	RegisterMasterRoutes(company, api, "/ledgers",
		handlers.NewMasterHandler[*entity.Ledger, dto.LedgerRequest](base, e.Masters.Ledgers))
	RegisterMasterRoutes(company, api, "/stock-groups",
		handlers.NewMasterHandler[*entity.StockGroup, dto.StockGroupRequest](base, e.Masters.StockGroups))
	RegisterMasterRoutes(company, api, "/units",
		handlers.NewMasterHandler[*entity.Unit, dto.UnitRequest](base, e.Masters.Units))
	RegisterMasterRoutes(company, api, "/stock-items",
		handlers.NewMasterHandler[*entity.StockItem, dto.StockItemRequest](base, e.Masters.StockItems))

	imports := handlers.NewImportHandler(base, e)
	company.POST("/import", imports.Import)
}

func registerVoucherRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, e *engine.Engine) {
	h := handlers.NewVoucherHandler(base, e)

	company := api.Group("/companies/:companyId/vouchers")
	company.GET("", h.List)
	company.POST("", h.Create)
	company.GET("/pending", h.Pending)
	company.GET("/by-code/:code", h.GetByCode)
	company.POST("/upsert", h.Upsert)

	vouchers := api.Group("/vouchers")
	vouchers.GET("/:id", h.Get)
	vouchers.PUT("/:id", h.Edit)
	vouchers.DELETE("/:id", h.Delete)
	vouchers.POST("/:id/verify", h.Verify)
	vouchers.POST("/bulk-delete", h.DeleteMany)
}

func registerReportRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, e *engine.Engine) {
	h := handlers.NewReportsHandler(base, e)

	api.GET("/ledgers/:id/balance", h.LedgerBalance)
	api.GET("/stock-items/:id/balance", h.StockItemBalance)

	reports := api.Group("/companies/:companyId/reports")
	reports.GET("/trading-pl", h.TradingAndPL)
	reports.GET("/balance-sheet", h.BalanceSheet)
	reports.GET("/trial-balance", h.TrialBalance)
	reports.GET("/stock-summary", h.StockSummary)
}

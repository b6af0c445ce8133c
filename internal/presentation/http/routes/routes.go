package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shopdesk-api/internal/config"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/handler"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/middleware"
	"github.com/sangkips/shopdesk-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Sale     *handler.SaleHandler
	Customer *handler.CustomerHandler
	Supplier *handler.SupplierHandler
	User     *handler.UserHandler
	Receipt  *handler.ReceiptHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.RateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// Rate limiting runs after auth so signed-in users are limited per user
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.RateLimiter != nil {
		limit = deps.RateLimiter.Middleware()
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", limit, h.Auth.Login)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(limit)
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}))

		protected.GET("/auth/me", h.Auth.Me)
		protected.GET("/printer/status", h.Receipt.Status)

		registerProductRoutes(protected, h)
		registerSaleRoutes(protected, h)
		registerCustomerRoutes(protected, h)
		registerSupplierRoutes(protected, h)
		registerUserRoutes(protected, h)
	}

	return router
}

func registerProductRoutes(rg *gin.RouterGroup, h *Handlers) {
	managers := middleware.RequireRole(enum.UserRoleAdmin, enum.UserRoleManager)

	products := rg.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/low-stock", h.Product.LowStock)
		products.GET("/sku/:sku", h.Product.GetBySKU)
		products.GET("/:id", h.Product.Get)
		products.POST("", managers, h.Product.Create)
		products.PUT("/:id", managers, h.Product.Update)
		products.DELETE("/:id", managers, h.Product.Delete)
		products.PATCH("/:id/stock", managers, h.Product.AdjustStock)
	}
}

func registerSaleRoutes(rg *gin.RouterGroup, h *Handlers) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.Sale.Create)
		sales.GET("", h.Sale.List)
		sales.GET("/daily/:date", h.Sale.Daily)
		sales.GET("/summary", h.Sale.Summary)
		sales.GET("/transaction/:transactionNumber", h.Sale.GetByTransactionNumber)
		sales.GET("/:id", h.Sale.Get)
		sales.POST("/:id/status", h.Sale.UpdateStatus)
		sales.GET("/:id/receipt", h.Receipt.Get)
		sales.POST("/:id/receipt/print", h.Receipt.Print)
	}
}

func registerCustomerRoutes(rg *gin.RouterGroup, h *Handlers) {
	customers := rg.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}
}

func registerSupplierRoutes(rg *gin.RouterGroup, h *Handlers) {
	managers := middleware.RequireRole(enum.UserRoleAdmin, enum.UserRoleManager)

	suppliers := rg.Group("/suppliers")
	{
		suppliers.GET("", h.Supplier.List)
		suppliers.GET("/:id", h.Supplier.Get)
		suppliers.POST("", managers, h.Supplier.Create)
		suppliers.PUT("/:id", managers, h.Supplier.Update)
		suppliers.DELETE("/:id", managers, h.Supplier.Delete)
	}
}

func registerUserRoutes(rg *gin.RouterGroup, h *Handlers) {
	users := rg.Group("/users", middleware.RequireRole(enum.UserRoleAdmin))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
	}
}

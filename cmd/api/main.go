package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shopdesk-api/internal/application/service"
	"github.com/sangkips/shopdesk-api/internal/config"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
	"github.com/sangkips/shopdesk-api/internal/infrastructure/cache"
	"github.com/sangkips/shopdesk-api/internal/infrastructure/database"
	"github.com/sangkips/shopdesk-api/internal/infrastructure/repository"
	"github.com/sangkips/shopdesk-api/internal/infrastructure/repository/memory"
	"github.com/sangkips/shopdesk-api/internal/infrastructure/scheduler"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/handler"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/middleware"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/routes"
	"github.com/sangkips/shopdesk-api/pkg/email"
	"github.com/sangkips/shopdesk-api/pkg/printer"
	"github.com/sangkips/shopdesk-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// stores groups the repositories of one storage backend
type stores struct {
	tx          domainRepo.TxManager
	products    domainRepo.ProductRepository
	sales       domainRepo.SaleRepository
	customers   domainRepo.CustomerRepository
	suppliers   domainRepo.SupplierRepository
	users       domainRepo.UserRepository
	idempotency domainRepo.IdempotencyRepository
	sequence    domainRepo.SequenceGenerator
	closers     []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{}

	switch cfg.Database.Driver {
	case "memory":
		log.Println("Using in-memory storage, data will not survive a restart")
		store := memory.NewStore()
		s.tx = memory.NewTxManager(store)
		s.products = memory.NewProductRepository(store)
		s.sales = memory.NewSaleRepository(store)
		s.customers = memory.NewCustomerRepository(store)
		s.suppliers = memory.NewSupplierRepository(store)
		s.users = memory.NewUserRepository(store)
		s.idempotency = memory.NewIdempotencyRepository(store)
		s.sequence = memory.NewSequence(store)
	case "postgres":
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		s.closers = append(s.closers, func() { database.Close(db) })

		if err := database.AutoMigrate(db); err != nil {
			s.close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		s.tx = repository.NewTxManager(db)
		s.products = repository.NewProductRepository(db)
		s.sales = repository.NewSaleRepository(db)
		s.customers = repository.NewCustomerRepository(db)
		s.suppliers = repository.NewSupplierRepository(db)
		s.users = repository.NewUserRepository(db)
		s.idempotency = repository.NewIdempotencyRepository(db)
		s.sequence = repository.NewSequenceRepository(db)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}

	switch cfg.Sales.SequenceBackend {
	case "", "postgres", "memory":
		// the storage backend's own counter
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		s.closers = append(s.closers, func() {
			if err := client.Close(); err != nil {
				log.Printf("Warning: closing redis client: %v", err)
			}
		})
		s.sequence = cache.NewRedisSequence(client)
		log.Printf("Transaction numbers issued by redis at %s", cfg.Redis.Addr)
	default:
		s.close()
		return nil, fmt.Errorf("unknown SEQUENCE_BACKEND %q", cfg.Sales.SequenceBackend)
	}

	return s, nil
}

func main() {
	cfg := config.Load()

	if !cfg.App.Debug || cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Money fields are rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer st.close()

	loc := cfg.App.Location()
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	authService := service.NewAuthService(st.users, jwtManager)
	if err := authService.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Printf("Warning: Failed to seed admin user: %v", err)
	}

	productService := service.NewProductService(st.products, st.suppliers)
	saleService := service.NewSaleService(st.tx, st.sales, st.products, st.customers, st.sequence, service.SaleServiceConfig{
		CreateRetries:  cfg.Sales.CreateRetries,
		DefaultTaxRate: decimal.NewFromFloat(cfg.Sales.DefaultTaxRate),
		Location:       loc,
	})
	reportService := service.NewReportService(st.sales, loc, cfg.Sales.TopProducts)
	customerService := service.NewCustomerService(st.customers)
	supplierService := service.NewSupplierService(st.suppliers)

	if cfg.Scheduler.Enabled {
		jobCfg := scheduler.Config{
			IdempotencyPurgeSpec: cfg.Scheduler.IdempotencyPurgeSpec,
			LowStockSpec:         cfg.Scheduler.LowStockSpec,
		}
		mailCfg := email.Config{
			SMTPHost:     cfg.Mail.SMTPHost,
			SMTPPort:     cfg.Mail.SMTPPort,
			SMTPUsername: cfg.Mail.SMTPUsername,
			SMTPPassword: cfg.Mail.SMTPPassword,
			FromName:     cfg.Mail.FromName,
			FromEmail:    cfg.Mail.FromEmail,
			AlertTo:      cfg.Mail.AlertTo,
			ShopName:     cfg.Shop.Name,
		}
		if mailCfg.Enabled() {
			jobCfg.Notifier = email.NewMailer(mailCfg)
		}

		jobs, err := scheduler.New(jobCfg, st.idempotency, st.products)
		if err != nil {
			log.Fatalf("Failed to configure scheduler: %v", err)
		}
		jobs.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
			defer cancel()
			jobs.Stop(stopCtx)
		}()
	}

	receiptPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Fatalf("Failed to configure printer: %v", err)
	}
	receiptService := service.NewReceiptService(saleService, receiptPrinter, service.ReceiptConfig{
		Header: entity.ReceiptHeader{
			ShopName: cfg.Shop.Name,
			Address:  cfg.Shop.Address,
			Phone:    cfg.Shop.Phone,
			TaxID:    cfg.Shop.TaxID,
		},
		Width:       cfg.Printer.Width,
		PrinterType: cfg.Printer.Type,
		Location:    loc,
	})

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFromWindow(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Product:  handler.NewProductHandler(productService),
		Sale:     handler.NewSaleHandler(saleService, reportService, loc),
		Customer: handler.NewCustomerHandler(customerService),
		Supplier: handler.NewSupplierHandler(supplierService),
		User:     handler.NewUserHandler(authService),
		Receipt:  handler.NewReceiptHandler(receiptService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: st.idempotency,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting %s on port %s", cfg.App.Name, port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

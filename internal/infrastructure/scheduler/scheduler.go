package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sangkips/shopdesk-api/internal/domain/repository"
	"github.com/sangkips/shopdesk-api/pkg/email"
)

// jobTimeout bounds a single run of any housekeeping job
const jobTimeout = time.Minute

// Config holds the cron specs for each job. An empty spec disables the job.
type Config struct {
	IdempotencyPurgeSpec string
	LowStockSpec         string
	Notifier             LowStockNotifier
}

// LowStockNotifier receives the products found by the low stock sweep
type LowStockNotifier interface {
	SendLowStockAlert(ctx context.Context, lines []email.StockLine) error
}

// Scheduler runs periodic housekeeping for the shop
type Scheduler struct {
	cron            *cron.Cron
	idempotencyRepo repository.IdempotencyRepository
	productRepo     repository.ProductRepository
	notifier        LowStockNotifier
	now             func() time.Time
}

// New creates a scheduler and registers its jobs. It does not start them.
func New(cfg Config, idempotencyRepo repository.IdempotencyRepository, productRepo repository.ProductRepository) (*Scheduler, error) {
	s := &Scheduler{
		cron:            cron.New(),
		idempotencyRepo: idempotencyRepo,
		productRepo:     productRepo,
		notifier:        cfg.Notifier,
		now:             time.Now,
	}

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"idempotency purge", cfg.IdempotencyPurgeSpec, s.PurgeIdempotencyKeys},
		{"low stock sweep", cfg.LowStockSpec, s.SweepLowStock},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() { s.run(job.name, job.run) }); err != nil {
			return nil, fmt.Errorf("schedule %s %q: %w", job.name, job.spec, err)
		}
		log.Printf("Scheduled %s with spec '%s'", job.name, job.spec)
	}

	return s, nil
}

func (s *Scheduler) run(name string, job func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := job(ctx); err != nil {
		log.Printf("Scheduler: %s failed: %v", name, err)
	}
}

// Start runs the registered jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		log.Println("Scheduler: gave up waiting for running jobs")
	}
}

// PurgeIdempotencyKeys removes stored responses whose replay window has passed
func (s *Scheduler) PurgeIdempotencyKeys(ctx context.Context) error {
	removed, err := s.idempotencyRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return fmt.Errorf("purge idempotency keys: %w", err)
	}
	if removed > 0 {
		log.Printf("Scheduler: purged %d expired idempotency keys", removed)
	}
	return nil
}

// SweepLowStock logs every product at or below its minimum stock level and
// passes them to the notifier when one is set
func (s *Scheduler) SweepLowStock(ctx context.Context) error {
	products, err := s.productRepo.GetLowStock(ctx)
	if err != nil {
		return fmt.Errorf("load low stock products: %w", err)
	}
	if len(products) == 0 {
		return nil
	}

	log.Printf("Scheduler: %d products at or below minimum stock", len(products))
	lines := make([]email.StockLine, 0, len(products))
	for _, p := range products {
		log.Printf("Low stock: %s (%s) quantity=%d min=%d", p.SKU, p.Name, p.Inventory.Quantity, p.Inventory.MinStock)
		lines = append(lines, email.StockLine{
			SKU:      p.SKU,
			Name:     p.Name,
			Quantity: p.Inventory.Quantity,
			MinStock: p.Inventory.MinStock,
		})
	}

	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.SendLowStockAlert(ctx, lines); err != nil {
		return fmt.Errorf("notify low stock: %w", err)
	}
	return nil
}

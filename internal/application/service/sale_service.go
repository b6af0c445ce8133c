package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/internal/domain/repository"
	"github.com/sangkips/shopdesk-api/pkg/apperror"
	"github.com/sangkips/shopdesk-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SaleServiceConfig tunes sale creation
type SaleServiceConfig struct {
	CreateRetries  int
	DefaultTaxRate decimal.Decimal
	Location       *time.Location
}

// SaleService handles sale recording and status changes
type SaleService struct {
	txManager    repository.TxManager
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	sequence     repository.SequenceGenerator
	cfg          SaleServiceConfig
	now          func() time.Time
}

// NewSaleService creates a new sale service
func NewSaleService(
	txManager repository.TxManager,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	sequence repository.SequenceGenerator,
	cfg SaleServiceConfig,
) *SaleService {
	if cfg.CreateRetries < 1 {
		cfg.CreateRetries = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &SaleService{
		txManager:    txManager,
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		sequence:     sequence,
		cfg:          cfg,
		now:          time.Now,
	}
}

// SetClock replaces the time source used to stamp sales
func (s *SaleService) SetClock(now func() time.Time) {
	s.now = now
}

// SaleItemInput represents one requested line item
type SaleItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// CreateSaleInput represents the create sale input
type CreateSaleInput struct {
	StaffID       uuid.UUID
	CustomerID    *uuid.UUID
	Items         []SaleItemInput
	PaymentMethod enum.PaymentMethod
	AmountPaid    *decimal.Decimal
	Status        *enum.SaleStatus
	TaxRate       *decimal.Decimal
	Notes         *string
}

func (in *CreateSaleInput) validate() error {
	var fieldErrors []apperror.FieldError
	add := func(field, msg string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: field, Message: msg})
	}

	if len(in.Items) == 0 {
		add("items", "At least one item is required")
	}
	for i, item := range in.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if item.ProductID == uuid.Nil {
			add(prefix+".product_id", "Product is required")
		}
		if item.Quantity <= 0 {
			add(prefix+".quantity", "Quantity must be greater than zero")
		}
		if item.UnitPrice.IsNegative() {
			add(prefix+".unit_price", "Unit price cannot be negative")
		}
		if item.Discount.IsNegative() {
			add(prefix+".discount", "Discount cannot be negative")
		} else if item.Quantity > 0 && item.Discount.GreaterThan(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))) {
			add(prefix+".discount", "Discount cannot exceed the line amount")
		}
	}
	if !in.PaymentMethod.IsValid() {
		add("payment_method", "Invalid payment method")
	}
	if in.Status != nil && !in.Status.IsValid() {
		add("status", "Invalid status")
	}
	if in.TaxRate != nil && (in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(decimal.NewFromInt(100))) {
		add("tax_rate", "Tax rate must be between 0 and 100")
	}
	if in.AmountPaid != nil && in.AmountPaid.IsNegative() {
		add("amount_paid", "Amount paid cannot be negative")
	}

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateSale validates stock, records the sale and takes its items out of
// inventory in one transaction. A transaction number collision retries the
// whole unit of work.
func (s *SaleService) CreateSale(ctx context.Context, input *CreateSaleInput) (*entity.Sale, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	}

	var sale *entity.Sale
	for attempt := 1; ; attempt++ {
		var err error
		sale, err = s.createOnce(ctx, input)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, err
		}
		if attempt >= s.cfg.CreateRetries {
			log.Printf("Error: transaction number still colliding after %d attempts", attempt)
			return nil, apperror.NewConflictError("Could not assign a unique transaction number, please retry")
		}
		log.Printf("Warning: transaction number collision, retrying sale (attempt %d/%d)", attempt, s.cfg.CreateRetries)
	}

	return s.GetSale(ctx, sale.ID)
}

func (s *SaleService) createOnce(ctx context.Context, input *CreateSaleInput) (*entity.Sale, error) {
	now := s.now().In(s.cfg.Location)

	status := enum.SaleStatusCompleted
	if input.Status != nil {
		status = *input.Status
	}
	taxRate := s.cfg.DefaultTaxRate
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}

	var sale *entity.Sale
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		products, err := s.checkItems(ctx, input.Items, status.HoldsStock())
		if err != nil {
			return err
		}

		seq, err := s.sequence.Next(ctx, entity.SequenceDay(now))
		if err != nil {
			return fmt.Errorf("next transaction sequence: %w", err)
		}

		sale = &entity.Sale{
			TransactionNumber: entity.FormatTransactionNumber(now, seq),
			CustomerID:        input.CustomerID,
			StaffID:           input.StaffID,
			PaymentMethod:     input.PaymentMethod,
			Status:            status,
			Notes:             input.Notes,
			CreatedAt:         now,
			Items:             make([]entity.SaleItem, len(input.Items)),
		}
		for i, item := range input.Items {
			product := products[item.ProductID]
			sale.Items[i] = entity.SaleItem{
				ProductID:   item.ProductID,
				ProductName: product.Name,
				ProductSKU:  product.SKU,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Discount:    item.Discount,
			}
		}
		sale.ComputeTotals(taxRate)
		sale.ApplyPayment(input.AmountPaid)

		if err := s.saleRepo.Create(ctx, sale); err != nil {
			return err
		}

		if status.HoldsStock() {
			return s.takeStock(ctx, sale.Items)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// checkItems loads every referenced product in list order and, when the sale
// holds stock, verifies the cumulative quantity requested per product is on hand.
func (s *SaleService) checkItems(ctx context.Context, items []SaleItemInput, holdsStock bool) (map[uuid.UUID]*entity.Product, error) {
	products := make(map[uuid.UUID]*entity.Product, len(items))
	requested := make(map[uuid.UUID]int, len(items))

	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			var err error
			product, err = s.productRepo.GetByID(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
			}
			products[item.ProductID] = product
		}

		requested[item.ProductID] += item.Quantity
		if holdsStock && product.Inventory.Quantity < requested[item.ProductID] {
			return nil, insufficientStock(product, product.Inventory.Quantity, requested[item.ProductID])
		}
	}
	return products, nil
}

// takeStock applies the conditional decrement to every item in order
func (s *SaleService) takeStock(ctx context.Context, items []entity.SaleItem) error {
	for _, item := range items {
		ok, err := s.productRepo.AtomicDecrementQuantity(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if ok {
			continue
		}

		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}
		return insufficientStock(product, product.Inventory.Quantity, item.Quantity)
	}
	return nil
}

// returnStock puts every item back on the shelf. Items whose product has
// since been deleted are skipped.
func (s *SaleService) returnStock(ctx context.Context, sale *entity.Sale) error {
	for _, item := range sale.Items {
		ok, err := s.productRepo.AtomicIncrementQuantity(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			log.Printf("Warning: sale %s: product %s no longer exists, %d units not restocked",
				sale.TransactionNumber, item.ProductID, item.Quantity)
		}
	}
	return nil
}

// GetSale retrieves a sale by ID
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// GetSaleByTransactionNumber retrieves a sale by its transaction number
func (s *SaleService) GetSaleByTransactionNumber(ctx context.Context, txn string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByTransactionNumber(ctx, txn)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales with filtering
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.Limit, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

// UpdateSaleStatus moves a sale to a new status. Cancelling or refunding a
// pending or completed sale restocks its items; reopening a cancelled or
// refunded sale takes them again and fails if stock is no longer available.
func (s *SaleService) UpdateSaleStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) (*entity.Sale, error) {
	if !status.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid status. Valid values: pending, completed, cancelled, refunded")
	}

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.GetSale(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status == status {
			return nil
		}

		// Claim the transition before moving stock so that only one of
		// several concurrent requests restocks or re-takes the items
		claimed, err := s.saleRepo.UpdateStatus(ctx, id, sale.Status, status)
		if err != nil {
			return err
		}
		if !claimed {
			current, err := s.GetSale(ctx, id)
			if err != nil {
				return err
			}
			if current.Status == status {
				return nil
			}
			return apperror.NewConflictError("Sale status was changed by another request, please retry")
		}

		switch {
		case sale.Status.HoldsStock() && !status.HoldsStock():
			if err := s.returnStock(ctx, sale); err != nil {
				return err
			}
		case !sale.Status.HoldsStock() && status.HoldsStock():
			if err := s.takeStock(ctx, sale.Items); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetSale(ctx, id)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/internal/domain/repository"
	"github.com/sangkips/shopdesk-api/pkg/apperror"
	"github.com/sangkips/shopdesk-api/pkg/pagination"
	"github.com/sangkips/shopdesk-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	SKU         string
	Name        string
	Description *string
	Category    *string
	Subcategory *string
	SupplierID  *uuid.UUID
	Cost        decimal.Decimal
	Selling     decimal.Decimal
	Currency    string
	Quantity    int
	MinStock    *int
	Location    string
	Variants    []entity.ProductVariant
	Images      []string
	Weight      *float64
	Dimensions  *entity.ProductDimensions
	IsActive    *bool
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		sku = utils.GenerateSKU()
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Product name is required")
	}

	if err := validatePricing(input.Cost, input.Selling); err != nil {
		return nil, err
	}
	if input.Quantity < 0 {
		return nil, apperror.NewBadRequestError("Quantity cannot be negative")
	}
	if input.MinStock != nil && *input.MinStock < 0 {
		return nil, apperror.NewBadRequestError("Minimum stock cannot be negative")
	}
	if err := s.checkSupplier(ctx, input.SupplierID); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, uuid.Nil, sku, name); err != nil {
		return nil, err
	}

	minStock := entity.DefaultMinStock
	if input.MinStock != nil {
		minStock = *input.MinStock
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	product := &entity.Product{
		SKU:         sku,
		Name:        name,
		Description: input.Description,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		SupplierID:  input.SupplierID,
		Price: entity.ProductPrice{
			Cost:     input.Cost,
			Selling:  input.Selling,
			Currency: input.Currency,
		},
		Inventory: entity.ProductInventory{
			Quantity: input.Quantity,
			MinStock: minStock,
			Location: input.Location,
		},
		Variants:   input.Variants,
		Images:     input.Images,
		Weight:     input.Weight,
		Dimensions: input.Dimensions,
		IsActive:   isActive,
	}
	product.ApplyDefaults()

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.NewConflictError("Product with this SKU or name already exists")
		}
		return nil, err
	}

	return s.GetProductByID(ctx, product.ID)
}

func validatePricing(cost, selling decimal.Decimal) error {
	if cost.IsNegative() || selling.IsNegative() {
		return apperror.NewBadRequestError("Prices cannot be negative")
	}
	return nil
}

func (s *ProductService) checkSupplier(ctx context.Context, supplierID *uuid.UUID) error {
	if supplierID == nil {
		return nil
	}
	supplier, err := s.supplierRepo.GetByID(ctx, *supplierID)
	if err != nil {
		return err
	}
	if supplier == nil {
		return apperror.NewNotFoundError("Supplier")
	}
	return nil
}

// checkUnique rejects a SKU or name already used by a product other than selfID
func (s *ProductService) checkUnique(ctx context.Context, selfID uuid.UUID, sku, name string) error {
	existing, err := s.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperror.NewConflictError(fmt.Sprintf("Product with SKU %s already exists", sku))
	}

	existing, err = s.productRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperror.NewConflictError(fmt.Sprintf("Product with name %s already exists", name))
	}
	return nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// GetProductBySKU retrieves a product by SKU
func (s *ProductService) GetProductBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	product, err := s.productRepo.GetBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.Limit, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// GetLowStockProducts returns products at or below their minimum stock
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}

// UpdateProductInput represents the update product input. Nil fields are left unchanged.
type UpdateProductInput struct {
	ID          uuid.UUID
	SKU         *string
	Name        *string
	Description *string
	Category    *string
	Subcategory *string
	SupplierID  *uuid.UUID
	Cost        *decimal.Decimal
	Selling     *decimal.Decimal
	Currency    *string
	MinStock    *int
	Location    *string
	Variants    []entity.ProductVariant
	Images      []string
	Weight      *float64
	Dimensions  *entity.ProductDimensions
	IsActive    *bool
}

// UpdateProduct updates a product. Quantity is changed only through AdjustStock and sales.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProductByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
		if product.SKU == "" {
			return nil, apperror.NewBadRequestError("SKU cannot be empty")
		}
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
		if product.Name == "" {
			return nil, apperror.NewBadRequestError("Product name is required")
		}
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Subcategory != nil {
		product.Subcategory = input.Subcategory
	}
	if input.SupplierID != nil {
		if err := s.checkSupplier(ctx, input.SupplierID); err != nil {
			return nil, err
		}
		product.SupplierID = input.SupplierID
		product.Supplier = nil
	}
	if input.Cost != nil {
		product.Price.Cost = *input.Cost
	}
	if input.Selling != nil {
		product.Price.Selling = *input.Selling
	}
	if input.Currency != nil {
		product.Price.Currency = *input.Currency
	}
	if input.MinStock != nil {
		if *input.MinStock < 0 {
			return nil, apperror.NewBadRequestError("Minimum stock cannot be negative")
		}
		product.Inventory.MinStock = *input.MinStock
	}
	if input.Location != nil {
		product.Inventory.Location = *input.Location
	}
	if input.Variants != nil {
		product.Variants = input.Variants
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Weight != nil {
		product.Weight = input.Weight
	}
	if input.Dimensions != nil {
		product.Dimensions = input.Dimensions
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := validatePricing(product.Price.Cost, product.Price.Selling); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, product.ID, product.SKU, product.Name); err != nil {
		return nil, err
	}
	product.ApplyDefaults()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.NewConflictError("Product with this SKU or name already exists")
		}
		return nil, err
	}

	return s.GetProductByID(ctx, product.ID)
}

// DeleteProduct permanently deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProductByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// AdjustStock adds to or subtracts from a product's quantity in one conditional update.
// A subtraction larger than the quantity on hand fails and leaves it unchanged.
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, amount int, op enum.StockOperation) (*entity.Product, error) {
	if amount <= 0 {
		return nil, apperror.NewBadRequestError("Quantity must be a positive integer")
	}

	switch op {
	case enum.StockOperationAdd:
		ok, err := s.productRepo.AtomicIncrementQuantity(ctx, id, amount)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.NewNotFoundError("Product")
		}
	case enum.StockOperationSubtract:
		ok, err := s.productRepo.AtomicDecrementQuantity(ctx, id, amount)
		if err != nil {
			return nil, err
		}
		if !ok {
			product, err := s.GetProductByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return nil, insufficientStock(product, product.Inventory.Quantity, amount)
		}
	default:
		return nil, apperror.NewBadRequestError("Operation must be add or subtract")
	}

	return s.GetProductByID(ctx, id)
}

func insufficientStock(product *entity.Product, available, requested int) error {
	return apperror.NewInsufficientStockError(apperror.StockShortage{
		ProductID:   product.ID.String(),
		ProductName: product.Name,
		Available:   available,
		Requested:   requested,
	})
}

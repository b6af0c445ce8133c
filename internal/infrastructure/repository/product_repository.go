package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
	"gorm.io/gorm"
)

var productSortColumns = map[string]string{
	"name":       "name",
	"sku":        "sku",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"price":      "price_selling",
	"quantity":   "inventory_quantity",
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return translateError(conn(ctx, r.db).Create(product).Error)
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.first(ctx, "sku = ?", sku)
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *productRepository) first(ctx context.Context, query string, arg interface{}) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).
		Preload("Supplier").
		First(&product, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update saves every column except quantity, which only moves through the atomic operations
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return translateError(conn(ctx, r.db).
		Omit("inventory_quantity", "Supplier", "created_at").
		Save(product).Error)
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := conn(ctx, r.db).Model(&entity.Product{})

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR sku ILIKE ?",
			likePattern(params.Search), likePattern(params.Search))
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}

	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}

	if params.LowStock {
		query = query.Where("inventory_quantity <= inventory_min_stock")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.Limit).
		Preload("Supplier").
		Order(orderBy(params.SortBy, params.SortOrder, productSortColumns, "created_at")).
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := conn(ctx, r.db).
		Where("inventory_quantity <= inventory_min_stock").
		Order("sku ASC").
		Find(&products).Error
	return products, err
}

// AtomicDecrementQuantity atomically decrements stock only if sufficient quantity exists.
// Uses: UPDATE products SET inventory_quantity = inventory_quantity - amount
// WHERE id = ? AND inventory_quantity >= amount
func (r *productRepository) AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Product{}).
		Where("id = ? AND inventory_quantity >= ?", id, amount).
		Update("inventory_quantity", gorm.Expr("inventory_quantity - ?", amount))

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *productRepository) AtomicIncrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Product{}).
		Where("id = ?", id).
		Update("inventory_quantity", gorm.Expr("inventory_quantity + ?", amount))

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

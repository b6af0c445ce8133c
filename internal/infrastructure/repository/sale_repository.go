package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
	"gorm.io/gorm"
)

var saleSortColumns = map[string]string{
	"created_at":         "created_at",
	"total":              "total",
	"transaction_number": "transaction_number",
	"status":             "status",
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	for i := range sale.Items {
		sale.Items[i].Position = i
	}
	return translateError(conn(ctx, r.db).
		Omit("Customer", "Staff").
		Create(sale).Error)
}

// withDetails preloads the references shown on a sale
func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer").
		Preload("Staff").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *saleRepository) GetByTransactionNumber(ctx context.Context, txn string) (*entity.Sale, error) {
	return r.first(ctx, "transaction_number = ?", txn)
}

func (r *saleRepository) first(ctx context.Context, query string, arg interface{}) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).
		Scopes(withDetails).
		First(&sale, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := conn(ctx, r.db).Model(&entity.Sale{})

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.StaffID != nil {
		query = query.Where("staff_id = ?", *params.StaffID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at < ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.Limit).
		Scopes(withDetails).
		Order(orderBy(params.SortBy, params.SortOrder, saleSortColumns, "created_at")).
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepository) ListInRange(ctx context.Context, start, end time.Time) ([]entity.Sale, error) {
	var sales []entity.Sale
	err := conn(ctx, r.db).
		Scopes(withDetails).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC, id ASC").
		Find(&sales).Error
	return sales, err
}

// UpdateStatus is a compare-and-set on the status column. A concurrent
// writer holding the row makes this wait, then match no rows.
func (r *saleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.SaleStatus) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Sale{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

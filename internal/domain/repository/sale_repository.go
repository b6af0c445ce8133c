package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/pkg/pagination"
)

// SaleRepository defines the interface for sale data operations.
// Reads return sales with customer, staff and items populated.
type SaleRepository interface {
	// Create persists the sale and its items. A clash on the transaction
	// number returns ErrDuplicateKey.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByTransactionNumber(ctx context.Context, txn string) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	// ListInRange returns every sale created in [start, end), oldest first.
	ListInRange(ctx context.Context, start, end time.Time) ([]entity.Sale, error)
	// UpdateStatus moves the sale from one status to another and reports
	// false, without writing, when its status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.SaleStatus) (bool, error)
}

// SaleFilterParams contains filtering parameters for sale queries.
// EndDate is exclusive.
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	CustomerID *uuid.UUID
	StaffID    *uuid.UUID
	Status     *enum.SaleStatus
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

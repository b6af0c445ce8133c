package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
)

type saleRepository struct {
	store *Store
}

// NewSaleRepository creates a sale repository over the store
func NewSaleRepository(store *Store) domainRepo.SaleRepository {
	return &saleRepository{store: store}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.sales {
		if existing.TransactionNumber == sale.TransactionNumber {
			return domainRepo.ErrDuplicateKey
		}
	}

	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	now := r.store.now()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	sale.UpdatedAt = now

	items := make([]entity.SaleItem, len(sale.Items))
	for i, item := range sale.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.SaleID = sale.ID
		item.Position = i
		items[i] = item
		sale.Items[i] = item
	}

	stored := *sale
	stored.Items = items
	stored.Customer = nil
	stored.Staff = nil
	r.store.sales[sale.ID] = stored

	id := sale.ID
	r.store.onRollback(ctx, func() { delete(r.store.sales, id) })
	return nil
}

// withDetails returns a copy of s with customer and staff attached
func (r *saleRepository) withDetails(s entity.Sale) entity.Sale {
	s.Items = append([]entity.SaleItem(nil), s.Items...)
	if s.CustomerID != nil {
		if c, ok := r.store.customers[*s.CustomerID]; ok {
			s.Customer = &c
		}
	}
	if u, ok := r.store.users[s.StaffID]; ok {
		s.Staff = &u
	}
	return s
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.sales[id]
	if !ok {
		return nil, nil
	}
	sale := r.withDetails(s)
	return &sale, nil
}

func (r *saleRepository) GetByTransactionNumber(ctx context.Context, txn string) (*entity.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, s := range r.store.sales {
		if s.TransactionNumber == txn {
			sale := r.withDetails(s)
			return &sale, nil
		}
	}
	return nil, nil
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []entity.Sale
	for _, s := range r.store.sales {
		if params.CustomerID != nil && (s.CustomerID == nil || *s.CustomerID != *params.CustomerID) {
			continue
		}
		if params.StaffID != nil && s.StaffID != *params.StaffID {
			continue
		}
		if params.Status != nil && s.Status != *params.Status {
			continue
		}
		if params.StartDate != nil && s.CreatedAt.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && !s.CreatedAt.Before(*params.EndDate) {
			continue
		}
		matched = append(matched, r.withDetails(s))
	}

	sortSales(matched, params.SortBy, params.SortOrder)

	params.Pagination.Validate()
	start, end := params.Pagination.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func sortSales(sales []entity.Sale, sortBy, sortOrder string) {
	cmp := func(a, b entity.Sale) int {
		switch sortBy {
		case "total":
			return a.Total.Cmp(b.Total)
		case "transaction_number":
			return strings.Compare(a.TransactionNumber, b.TransactionNumber)
		case "status":
			return strings.Compare(string(a.Status), string(b.Status))
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	asc := strings.EqualFold(sortOrder, "asc")
	sort.SliceStable(sales, func(i, j int) bool {
		c := cmp(sales[i], sales[j])
		if c == 0 {
			c = strings.Compare(sales[i].ID.String(), sales[j].ID.String())
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}

func (r *saleRepository) ListInRange(ctx context.Context, start, end time.Time) ([]entity.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sales := []entity.Sale{}
	for _, s := range r.store.sales {
		if !s.CreatedAt.Before(start) && s.CreatedAt.Before(end) {
			sales = append(sales, r.withDetails(s))
		}
	}
	sortSales(sales, "created_at", "asc")
	return sales, nil
}

func (r *saleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.SaleStatus) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sales[id]
	if !ok || s.Status != from {
		return false, nil
	}
	prevUpdated := s.UpdatedAt
	s.Status = to
	s.UpdatedAt = r.store.now()
	r.store.sales[id] = s

	r.store.onRollback(ctx, func() {
		if cur, ok := r.store.sales[id]; ok && cur.Status == to {
			cur.Status = from
			cur.UpdatedAt = prevUpdated
			r.store.sales[id] = cur
		}
	})
	return true, nil
}

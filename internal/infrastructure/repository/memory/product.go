package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
)

type productRepository struct {
	store *Store
}

// NewProductRepository creates a product repository over the store
func NewProductRepository(store *Store) domainRepo.ProductRepository {
	return &productRepository{store: store}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.conflicts(product) {
		return domainRepo.ErrDuplicateKey
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := r.store.now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.store.products[product.ID] = *product

	id := product.ID
	r.store.onRollback(ctx, func() { delete(r.store.products, id) })
	return nil
}

// conflicts reports whether another product already uses the SKU or name
func (r *productRepository) conflicts(product *entity.Product) bool {
	for _, p := range r.store.products {
		if p.ID == product.ID {
			continue
		}
		if p.SKU == product.SKU || p.Name == product.Name {
			return true
		}
	}
	return false
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	return r.withSupplier(p), nil
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.find(func(p entity.Product) bool { return p.SKU == sku }), nil
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.find(func(p entity.Product) bool { return p.Name == name }), nil
}

func (r *productRepository) find(match func(entity.Product) bool) *entity.Product {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.products {
		if match(p) {
			return r.withSupplier(p)
		}
	}
	return nil
}

func (r *productRepository) withSupplier(p entity.Product) *entity.Product {
	if p.SupplierID != nil {
		if s, ok := r.store.suppliers[*p.SupplierID]; ok {
			p.Supplier = &s
		}
	}
	return &p
}

// Update saves every attribute except quantity, which only moves through the atomic operations
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.products[product.ID]
	if !ok {
		return nil
	}
	if r.conflicts(product) {
		return domainRepo.ErrDuplicateKey
	}

	updated := *product
	updated.Supplier = nil
	updated.Inventory.Quantity = existing.Inventory.Quantity
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.store.now()
	r.store.products[product.ID] = updated
	r.store.onRollback(ctx, func() {
		if cur, ok := r.store.products[existing.ID]; ok {
			existing.Inventory.Quantity = cur.Inventory.Quantity
			r.store.products[existing.ID] = existing
		}
	})

	product.Inventory.Quantity = updated.Inventory.Quantity
	product.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.products[id]
	if !ok {
		return nil
	}
	delete(r.store.products, id)
	r.store.onRollback(ctx, func() { r.store.products[id] = existing })
	return nil
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []entity.Product
	for _, p := range r.store.products {
		if params.Search != "" && !containsFold(p.Name, params.Search) && !containsFold(p.SKU, params.Search) {
			continue
		}
		if params.Category != "" && derefString(p.Category) != params.Category {
			continue
		}
		if params.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *params.SupplierID) {
			continue
		}
		if params.IsActive != nil && p.IsActive != *params.IsActive {
			continue
		}
		if params.LowStock && !p.IsLowStock() {
			continue
		}
		matched = append(matched, *r.withSupplier(p))
	}

	sortProducts(matched, params.SortBy, params.SortOrder)

	params.Pagination.Validate()
	start, end := params.Pagination.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func sortProducts(products []entity.Product, sortBy, sortOrder string) {
	less := func(a, b entity.Product) int {
		switch sortBy {
		case "name":
			return strings.Compare(a.Name, b.Name)
		case "sku":
			return strings.Compare(a.SKU, b.SKU)
		case "updated_at":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case "price":
			return a.Price.Selling.Cmp(b.Price.Selling)
		case "quantity":
			return a.Inventory.Quantity - b.Inventory.Quantity
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	asc := strings.EqualFold(sortOrder, "asc")
	sort.SliceStable(products, func(i, j int) bool {
		c := less(products[i], products[j])
		if c == 0 {
			c = strings.Compare(products[i].ID.String(), products[j].ID.String())
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}

func (r *productRepository) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := []entity.Product{}
	for _, p := range r.store.products {
		if p.IsLowStock() {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].SKU < products[j].SKU })
	return products, nil
}

func (r *productRepository) AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok || p.Inventory.Quantity < amount {
		return false, nil
	}
	p.Inventory.Quantity -= amount
	p.UpdatedAt = r.store.now()
	r.store.products[id] = p
	r.store.onRollback(ctx, func() { r.store.adjustQuantity(id, amount) })
	return true, nil
}

func (r *productRepository) AtomicIncrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok {
		return false, nil
	}
	p.Inventory.Quantity += amount
	p.UpdatedAt = r.store.now()
	r.store.products[id] = p
	r.store.onRollback(ctx, func() { r.store.adjustQuantity(id, -amount) })
	return true, nil
}

// adjustQuantity applies a compensating delta. Caller holds s.mu.
func (s *Store) adjustQuantity(id uuid.UUID, delta int) {
	p, ok := s.products[id]
	if !ok {
		return
	}
	p.Inventory.Quantity += delta
	if p.Inventory.Quantity < 0 {
		p.Inventory.Quantity = 0
	}
	s.products[id] = p
}

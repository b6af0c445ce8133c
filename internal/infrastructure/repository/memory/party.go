package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
	"github.com/sangkips/shopdesk-api/pkg/pagination"
)

type customerRepository struct {
	store *Store
}

// NewCustomerRepository creates a customer repository over the store
func NewCustomerRepository(store *Store) domainRepo.CustomerRepository {
	return &customerRepository{store: store}
}

func (r *customerRepository) emailTaken(c *entity.Customer) bool {
	if c.Email == nil {
		return false
	}
	for _, existing := range r.store.customers {
		if existing.ID != c.ID && existing.Email != nil && *existing.Email == *c.Email {
			return true
		}
	}
	return false
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.emailTaken(customer) {
		return domainRepo.ErrDuplicateKey
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	now := r.store.now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	r.store.customers[customer.ID] = *customer
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, c := range r.store.customers {
		if c.Email != nil && *c.Email == email {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.emailTaken(customer) {
		return domainRepo.ErrDuplicateKey
	}
	customer.UpdatedAt = r.store.now()
	r.store.customers[customer.ID] = *customer
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.customers, id)
	return nil
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []entity.Customer
	for _, c := range r.store.customers {
		if search != "" && !containsFold(c.Name, search) &&
			!containsFold(derefString(c.Email), search) && !containsFold(derefString(c.Phone), search) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	params.Validate()
	start, end := params.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

type supplierRepository struct {
	store *Store
}

// NewSupplierRepository creates a supplier repository over the store
func NewSupplierRepository(store *Store) domainRepo.SupplierRepository {
	return &supplierRepository{store: store}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *entity.Supplier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	now := r.store.now()
	supplier.CreatedAt = now
	supplier.UpdatedAt = now
	r.store.suppliers[supplier.ID] = *supplier
	return nil
}

func (r *supplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *supplierRepository) Update(ctx context.Context, supplier *entity.Supplier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	supplier.UpdatedAt = r.store.now()
	r.store.suppliers[supplier.ID] = *supplier
	return nil
}

func (r *supplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.suppliers, id)
	return nil
}

func (r *supplierRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Supplier, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []entity.Supplier
	for _, s := range r.store.suppliers {
		if search != "" && !containsFold(s.Name, search) &&
			!containsFold(derefString(s.Email), search) && !containsFold(derefString(s.ContactPerson), search) {
			continue
		}
		matched = append(matched, s)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	params.Validate()
	start, end := params.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

type userRepository struct {
	store *Store
}

// NewUserRepository creates a user repository over the store
func NewUserRepository(store *Store) domainRepo.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if u.Email == user.Email {
			return domainRepo.ErrDuplicateKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.store.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepository) List(ctx context.Context) ([]entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]entity.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

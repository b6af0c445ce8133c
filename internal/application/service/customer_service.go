package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/internal/domain/repository"
	"github.com/sangkips/shopdesk-api/pkg/apperror"
	"github.com/sangkips/shopdesk-api/pkg/pagination"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CustomerInput represents the customer fields accepted on create and update.
// On update, nil fields are left unchanged.
type CustomerInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// normalizeEmail trims an optional email; blank becomes nil
func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *CustomerService) checkEmail(ctx context.Context, selfID uuid.UUID, email *string) error {
	if email == nil {
		return nil
	}
	existing, err := s.customerRepo.GetByEmail(ctx, *email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperror.NewConflictError("Customer with this email already exists")
	}
	return nil
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CustomerInput) (*entity.Customer, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewBadRequestError("Customer name is required")
	}

	customer := &entity.Customer{
		Name:    strings.TrimSpace(*input.Name),
		Email:   normalizeEmail(input.Email),
		Phone:   input.Phone,
		Address: input.Address,
	}
	if err := s.checkEmail(ctx, uuid.Nil, customer.Email); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.NewConflictError("Customer with this email already exists")
		}
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers matching search
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	params.Validate()
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.Limit, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomer updates a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, input *CustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperror.NewBadRequestError("Customer name is required")
		}
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		customer.Email = normalizeEmail(input.Email)
		if err := s.checkEmail(ctx, customer.ID, customer.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Address != nil {
		customer.Address = input.Address
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.NewConflictError("Customer with this email already exists")
		}
		return nil, err
	}

	return customer, nil
}

// DeleteCustomer deletes a customer. Recorded sales keep their reference.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

// SupplierService handles supplier-related operations
type SupplierService struct {
	supplierRepo repository.SupplierRepository
}

// NewSupplierService creates a new supplier service
func NewSupplierService(supplierRepo repository.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// SupplierInput represents the supplier fields accepted on create and update.
// On update, nil fields are left unchanged.
type SupplierInput struct {
	Name          *string
	Email         *string
	Phone         *string
	Address       *string
	ContactPerson *string
	Type          *string
}

func parseSupplierType(t *string) (enum.SupplierType, error) {
	if t == nil || *t == "" {
		return enum.SupplierTypeDistributor, nil
	}
	st := enum.SupplierType(*t)
	if !st.IsValid() {
		return "", apperror.NewBadRequestError("Invalid supplier type. Valid values: distributor, wholesaler, producer")
	}
	return st, nil
}

// CreateSupplier creates a new supplier
func (s *SupplierService) CreateSupplier(ctx context.Context, input *SupplierInput) (*entity.Supplier, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewBadRequestError("Supplier name is required")
	}
	supplierType, err := parseSupplierType(input.Type)
	if err != nil {
		return nil, err
	}

	supplier := &entity.Supplier{
		Name:          strings.TrimSpace(*input.Name),
		Email:         normalizeEmail(input.Email),
		Phone:         input.Phone,
		Address:       input.Address,
		ContactPerson: input.ContactPerson,
		Type:          supplierType,
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	return supplier, nil
}

// GetSupplier retrieves a supplier by ID
func (s *SupplierService) GetSupplier(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Supplier")
	}
	return supplier, nil
}

// ListSuppliers lists suppliers matching search
func (s *SupplierService) ListSuppliers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Supplier], error) {
	params.Validate()
	suppliers, total, err := s.supplierRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.Limit, total)
	return pagination.NewPaginatedResult(suppliers, pag), nil
}

// UpdateSupplier updates a supplier
func (s *SupplierService) UpdateSupplier(ctx context.Context, id uuid.UUID, input *SupplierInput) (*entity.Supplier, error) {
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperror.NewBadRequestError("Supplier name is required")
		}
		supplier.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		supplier.Email = normalizeEmail(input.Email)
	}
	if input.Phone != nil {
		supplier.Phone = input.Phone
	}
	if input.Address != nil {
		supplier.Address = input.Address
	}
	if input.ContactPerson != nil {
		supplier.ContactPerson = input.ContactPerson
	}
	if input.Type != nil {
		supplierType, err := parseSupplierType(input.Type)
		if err != nil {
			return nil, err
		}
		supplier.Type = supplierType
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}

	return supplier, nil
}

// DeleteSupplier deletes a supplier
func (s *SupplierService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetSupplier(ctx, id); err != nil {
		return err
	}
	return s.supplierRepo.Delete(ctx, id)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/internal/infrastructure/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store     *memory.Store
	products  *ProductService
	sales     *SaleService
	reports   *ReportService
	customers *CustomerService
	staffID   uuid.UUID
	clock     *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	now := time.Date(2024, time.March, 7, 10, 30, 0, 0, time.UTC)
	clock := &now
	store.SetClock(func() time.Time { return *clock })

	productRepo := memory.NewProductRepository(store)
	saleRepo := memory.NewSaleRepository(store)
	customerRepo := memory.NewCustomerRepository(store)
	userRepo := memory.NewUserRepository(store)

	staff := &entity.User{Name: "Till Operator", Email: "till@shop.test", Role: enum.UserRoleStaff, IsActive: true}
	require.NoError(t, userRepo.Create(context.Background(), staff))

	sales := NewSaleService(
		memory.NewTxManager(store),
		saleRepo,
		productRepo,
		customerRepo,
		memory.NewSequence(store),
		SaleServiceConfig{CreateRetries: 3, Location: time.UTC},
	)
	sales.SetClock(func() time.Time { return *clock })

	return &testEnv{
		store:     store,
		products:  NewProductService(productRepo, memory.NewSupplierRepository(store)),
		sales:     sales,
		reports:   NewReportService(saleRepo, time.UTC, 5),
		customers: NewCustomerService(customerRepo),
		staffID:   staff.ID,
		clock:     clock,
	}
}

func (e *testEnv) createProduct(t *testing.T, sku string, qty int, selling string) *entity.Product {
	t.Helper()
	minStock := 10
	p, err := e.products.CreateProduct(context.Background(), &CreateProductInput{
		SKU:      sku,
		Name:     "Product " + sku,
		Cost:     decimal.NewFromInt(1),
		Selling:  decimal.RequireFromString(selling),
		Quantity: qty,
		MinStock: &minStock,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) quantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := e.products.GetProductByID(context.Background(), id)
	require.NoError(t, err)
	return p.Inventory.Quantity
}

func (e *testEnv) sell(t *testing.T, items ...SaleItemInput) (*entity.Sale, error) {
	t.Helper()
	return e.sales.CreateSale(context.Background(), &CreateSaleInput{
		StaffID:       e.staffID,
		Items:         items,
		PaymentMethod: enum.PaymentMethodCash,
	})
}

func item(p *entity.Product, qty int, price string) SaleItemInput {
	return SaleItemInput{
		ProductID: p.ID,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	}
}

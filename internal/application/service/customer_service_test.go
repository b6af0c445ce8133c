package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/internal/infrastructure/repository/memory"
	"github.com/sangkips/shopdesk-api/pkg/apperror"
	"github.com/sangkips/shopdesk-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCustomerService_EmailIsUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.customers.CreateCustomer(ctx, &CustomerInput{Name: strPtr("Jane"), Email: strPtr(" Jane@Example.com ")})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", *first.Email)

	_, err = env.customers.CreateCustomer(ctx, &CustomerInput{Name: strPtr("Other Jane"), Email: strPtr("jane@example.com")})
	assert.True(t, apperror.HasCode(err, http.StatusConflict))

	second, err := env.customers.CreateCustomer(ctx, &CustomerInput{Name: strPtr("Walk-in")})
	require.NoError(t, err)
	assert.Nil(t, second.Email)

	_, err = env.customers.UpdateCustomer(ctx, second.ID, &CustomerInput{Email: strPtr("JANE@example.com")})
	assert.True(t, apperror.HasCode(err, http.StatusConflict))

	updated, err := env.customers.UpdateCustomer(ctx, first.ID, &CustomerInput{Email: strPtr("jane@example.com"), Phone: strPtr("555-0100")})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", *updated.Phone)
}

func TestCustomerService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.customers.CreateCustomer(ctx, &CustomerInput{Name: strPtr("  ")})
	assert.True(t, apperror.HasCode(err, http.StatusBadRequest))

	c, err := env.customers.CreateCustomer(ctx, &CustomerInput{Name: strPtr("Bob Stone"), Address: strPtr("1 Main St")})
	require.NoError(t, err)
	_, err = env.customers.CreateCustomer(ctx, &CustomerInput{Name: strPtr("Alice Reed")})
	require.NoError(t, err)

	res, err := env.customers.ListCustomers(ctx, &pagination.PaginationParams{Page: 1, Limit: 10}, "stone")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, c.ID, res.Items[0].ID)

	require.NoError(t, env.customers.DeleteCustomer(ctx, c.ID))
	_, err = env.customers.GetCustomer(ctx, c.ID)
	assert.True(t, apperror.HasCode(err, http.StatusNotFound))
	assert.True(t, apperror.HasCode(env.customers.DeleteCustomer(ctx, c.ID), http.StatusNotFound))
}

func TestSupplierService_Type(t *testing.T) {
	store := memory.NewStore()
	suppliers := NewSupplierService(memory.NewSupplierRepository(store))
	ctx := context.Background()

	s, err := suppliers.CreateSupplier(ctx, &SupplierInput{Name: strPtr("Acme Wholesale")})
	require.NoError(t, err)
	assert.Equal(t, enum.SupplierTypeDistributor, s.Type)

	_, err = suppliers.CreateSupplier(ctx, &SupplierInput{Name: strPtr("Bad"), Type: strPtr("smuggler")})
	assert.True(t, apperror.HasCode(err, http.StatusBadRequest))

	updated, err := suppliers.UpdateSupplier(ctx, s.ID, &SupplierInput{Type: strPtr(string(enum.SupplierTypeProducer)), ContactPerson: strPtr("Ann")})
	require.NoError(t, err)
	assert.Equal(t, enum.SupplierTypeProducer, updated.Type)
	assert.Equal(t, "Ann", *updated.ContactPerson)
}

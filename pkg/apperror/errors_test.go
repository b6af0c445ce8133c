package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppError(t *testing.T) {
	t.Run("wrapped app error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("create sale: %w", NewNotFoundError("Product"))

		appErr := GetAppError(err)

		assert.Equal(t, http.StatusNotFound, appErr.Code)
		assert.Equal(t, "Product not found", appErr.Message)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		appErr := GetAppError(errors.New("connection refused"))

		assert.Equal(t, http.StatusInternalServerError, appErr.Code)
		assert.Equal(t, "connection refused", appErr.Message)
	})
}

func TestNewInsufficientStockError(t *testing.T) {
	err := NewInsufficientStockError(StockShortage{
		ProductID:   "p-1",
		ProductName: "Widget",
		Available:   5,
		Requested:   10,
	})

	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Equal(t, "Insufficient stock for Widget. Available: 5, Requested: 10", err.Error())

	shortage, ok := err.Details.(StockShortage)
	require.True(t, ok)
	assert.Equal(t, 5, shortage.Available)
	assert.Equal(t, 10, shortage.Requested)
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewConflictError("dup"), http.StatusConflict))
	assert.False(t, HasCode(NewConflictError("dup"), http.StatusBadRequest))
	assert.False(t, HasCode(errors.New("x"), http.StatusInternalServerError))
	assert.True(t, IsAppError(fmt.Errorf("wrap: %w", ErrForbidden)))
}

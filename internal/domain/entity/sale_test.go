package entity

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals(t *testing.T) {
	t.Run("two units without discount", func(t *testing.T) {
		s := &Sale{Items: []SaleItem{{Quantity: 2, UnitPrice: dec("99.99")}}}

		s.ComputeTotals(decimal.Zero)

		assert.True(t, dec("199.98").Equal(s.Subtotal))
		assert.True(t, dec("199.98").Equal(s.Total))
		assert.True(t, dec("199.98").Equal(s.Items[0].LineTotal))
		assert.True(t, s.Tax.IsZero())
	})

	t.Run("discount and tax", func(t *testing.T) {
		s := &Sale{Items: []SaleItem{
			{Quantity: 3, UnitPrice: dec("10.00"), Discount: dec("5.00")},
			{Quantity: 1, UnitPrice: dec("4.99")},
		}}

		s.ComputeTotals(dec("16"))

		assert.True(t, dec("34.99").Equal(s.Subtotal))
		assert.True(t, dec("5.00").Equal(s.DiscountTotal))
		// (34.99 - 5.00) * 16% = 4.7984
		assert.True(t, dec("4.80").Equal(s.Tax))
		assert.True(t, dec("34.79").Equal(s.Total))
		assert.True(t, dec("25.00").Equal(s.Items[0].LineTotal))
	})
}

func TestApplyPayment(t *testing.T) {
	s := &Sale{Total: dec("42.50")}

	s.ApplyPayment(nil)
	assert.True(t, dec("42.50").Equal(s.AmountPaid))
	assert.True(t, s.Change.IsZero())

	paid := dec("50")
	s.ApplyPayment(&paid)
	assert.True(t, dec("7.50").Equal(s.Change))

	short := dec("40")
	s.ApplyPayment(&short)
	assert.True(t, s.Change.IsZero())
}

func TestFormatTransactionNumber(t *testing.T) {
	day := time.Date(2024, time.March, 7, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "TXN202403070001", FormatTransactionNumber(day, 1))
	assert.Equal(t, "TXN202403070042", FormatTransactionNumber(day, 42))
	assert.Equal(t, "TXN2024030712345", FormatTransactionNumber(day, 12345))
	assert.Regexp(t, regexp.MustCompile(`^TXN\d{8}\d{4}$`), FormatTransactionNumber(day, 9999))
}

func TestProductDefaults(t *testing.T) {
	p := &Product{Inventory: ProductInventory{Quantity: 3, MinStock: 3}}
	p.ApplyDefaults()

	assert.Equal(t, DefaultCurrency, p.Price.Currency)
	assert.Equal(t, DefaultLocation, p.Inventory.Location)
	assert.NotNil(t, p.Variants)
	assert.NotNil(t, p.Images)
	assert.True(t, p.IsLowStock())
}

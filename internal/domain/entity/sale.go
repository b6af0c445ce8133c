package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionNumberPrefix starts every sale's transaction number
const TransactionNumberPrefix = "TXN"

var hundred = decimal.NewFromInt(100)

// Sale represents a point-of-sale transaction
type Sale struct {
	ID                uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TransactionNumber string             `gorm:"size:32;uniqueIndex;not null" json:"transaction_number"`
	CustomerID        *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	StaffID           uuid.UUID          `gorm:"type:uuid;not null;index" json:"staff_id"`
	Subtotal          decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	DiscountTotal     decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"discount_total"`
	TaxRate           decimal.Decimal    `gorm:"type:numeric(5,2);not null" json:"tax_rate"`
	Tax               decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"tax"`
	Total             decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"total"`
	PaymentMethod     enum.PaymentMethod `gorm:"size:20;not null;index" json:"payment_method"`
	AmountPaid        decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"amount_paid"`
	Change            decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"change"`
	Status            enum.SaleStatus    `gorm:"size:20;not null;index" json:"status"`
	Notes             *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`

	// Relationships
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Staff    *User      `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	Items    []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem represents a line item in a sale.
// Product name and SKU are copied at sale time for receipts.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Position    int             `gorm:"not null" json:"-"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	ProductSKU  string          `gorm:"column:product_sku;size:100;not null" json:"product_sku"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"line_total"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// BeforeCreate generates a UUID before creating a new sale item
func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// Gross returns unit price times quantity, before discount
func (i *SaleItem) Gross() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotals derives line totals, subtotal, discount, tax and total from the items.
// taxRate is a percentage; tax is rounded to cents.
func (s *Sale) ComputeTotals(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for idx := range s.Items {
		item := &s.Items[idx]
		gross := item.Gross()
		item.LineTotal = gross.Sub(item.Discount)
		subtotal = subtotal.Add(gross)
		discount = discount.Add(item.Discount)
	}

	s.TaxRate = taxRate
	s.Subtotal = subtotal
	s.DiscountTotal = discount
	s.Tax = subtotal.Sub(discount).Mul(taxRate).Div(hundred).Round(2)
	s.Total = subtotal.Sub(discount).Add(s.Tax)
}

// ApplyPayment records the amount tendered. A nil amount means exact payment.
func (s *Sale) ApplyPayment(amountPaid *decimal.Decimal) {
	if amountPaid == nil {
		s.AmountPaid = s.Total
	} else {
		s.AmountPaid = *amountPaid
	}
	s.Change = decimal.Max(decimal.Zero, s.AmountPaid.Sub(s.Total))
}

// FormatTransactionNumber builds TXN<YYYYMMDD><NNNN> for the given day and sequence
func FormatTransactionNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%04d", TransactionNumberPrefix, day.Format("20060102"), seq)
}

// DailySequence is the last transaction sequence issued for a day
type DailySequence struct {
	Day       string    `gorm:"primaryKey;size:8"`
	Value     int64     `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for the DailySequence model
func (DailySequence) TableName() string {
	return "daily_sequences"
}

// SequenceDay formats a day as the key used by DailySequence
func SequenceDay(t time.Time) string {
	return t.Format("20060102")
}

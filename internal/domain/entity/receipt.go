package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptHeader holds the shop details printed at the top of a receipt
type ReceiptHeader struct {
	ShopName string `json:"shop_name"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	TaxID    string `json:"tax_id,omitempty"`
}

// ReceiptLine is one sold item as printed
type ReceiptLine struct {
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// Receipt is composed from a sale at print time and is never stored
type Receipt struct {
	Header            ReceiptHeader   `json:"header"`
	TransactionNumber string          `json:"transaction_number"`
	Date              string          `json:"date"`
	Status            string          `json:"status"`
	Cashier           string          `json:"cashier,omitempty"`
	Customer          string          `json:"customer,omitempty"`
	PaymentMethod     string          `json:"payment_method"`
	Lines             []ReceiptLine   `json:"lines"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Discount          decimal.Decimal `json:"discount"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
	Paid              decimal.Decimal `json:"paid"`
	Change            decimal.Decimal `json:"change"`
}

// NewReceipt builds the receipt of a sale, stamping its date in loc
func NewReceipt(sale *Sale, header ReceiptHeader, loc *time.Location) *Receipt {
	if loc == nil {
		loc = time.UTC
	}

	r := &Receipt{
		Header:            header,
		TransactionNumber: sale.TransactionNumber,
		Date:              sale.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		Status:            sale.Status.String(),
		PaymentMethod:     sale.PaymentMethod.String(),
		Lines:             make([]ReceiptLine, 0, len(sale.Items)),
		Subtotal:          sale.Subtotal,
		Discount:          sale.DiscountTotal,
		TaxRate:           sale.TaxRate,
		Tax:               sale.Tax,
		Total:             sale.Total,
		Paid:              sale.AmountPaid,
		Change:            sale.Change,
	}
	if sale.Staff != nil {
		r.Cashier = sale.Staff.Name
	}
	if sale.Customer != nil {
		r.Customer = sale.Customer.Name
	}

	for _, item := range sale.Items {
		r.Lines = append(r.Lines, ReceiptLine{
			Name:      item.ProductName,
			SKU:       item.ProductSKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Total:     item.LineTotal,
		})
	}
	return r
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/pkg/printer"
	"github.com/shopspring/decimal"
)

// ReceiptConfig describes the shop and the receipt printer
type ReceiptConfig struct {
	Header      entity.ReceiptHeader
	Width       int
	PrinterType string
	Location    *time.Location
}

// ReceiptService renders sale receipts and sends them to the printer
type ReceiptService struct {
	saleService *SaleService
	printer     printer.Printer
	cfg         ReceiptConfig
}

// NewReceiptService creates a new receipt service
func NewReceiptService(saleService *SaleService, p printer.Printer, cfg ReceiptConfig) *ReceiptService {
	if cfg.Width <= 0 {
		cfg.Width = printer.Width58mm
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ReceiptService{
		saleService: saleService,
		printer:     p,
		cfg:         cfg,
	}
}

// PrinterStatus reports whether a printer is configured and reachable
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Width      int    `json:"width"`
}

// Status checks the printer connection
func (s *ReceiptService) Status(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.cfg.PrinterType != "none" && s.cfg.PrinterType != "",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.cfg.PrinterType,
		Width:      s.cfg.Width,
	}
}

// GetReceipt builds the receipt of a sale along with its ESC/POS rendering
func (s *ReceiptService) GetReceipt(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, []byte, error) {
	sale, err := s.saleService.GetSale(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}
	receipt := entity.NewReceipt(sale, s.cfg.Header, s.cfg.Location)
	return receipt, Render(receipt, s.cfg.Width), nil
}

// PrintReceipt prints the receipt of a sale. The receipt is returned even
// when the printer fails so callers can still display it.
func (s *ReceiptService) PrintReceipt(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, error) {
	receipt, data, err := s.GetReceipt(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(ctx, data); err != nil {
		log.Printf("Printer error (sale %s): %v", receipt.TransactionNumber, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// Render lays a receipt out for a printer with width columns
func Render(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.ShopName).
		SetFontSize(printer.FontNormal).
		SetBold(false)
	for _, line := range []string{r.Header.Address, r.Header.Phone} {
		if line != "" {
			doc.Text(line)
		}
	}
	if r.Header.TaxID != "" {
		doc.Text("Tax ID: " + r.Header.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).Separator('-')
	doc.Columns("Txn:", r.TransactionNumber).
		Columns("Date:", r.Date)
	if r.Cashier != "" {
		doc.Columns("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.Columns("Customer:", r.Customer)
	}
	doc.Columns("Payment:", r.PaymentMethod)
	if r.Status != "completed" {
		doc.Columns("Status:", r.Status)
	}
	doc.Separator('-')

	for _, line := range r.Lines {
		doc.Columns(fmt.Sprintf("%dx %s", line.Quantity, line.Name), line.Total.StringFixed(2))
		if line.Quantity > 1 {
			doc.Text("  @ " + line.UnitPrice.StringFixed(2) + " each")
		}
		if line.Discount.IsPositive() {
			doc.Text("  discount -" + line.Discount.StringFixed(2))
		}
	}
	doc.Separator('-')

	doc.Columns("Subtotal:", r.Subtotal.StringFixed(2))
	if r.Discount.IsPositive() {
		doc.Columns("Discount:", "-"+r.Discount.StringFixed(2))
	}
	if r.Tax.IsPositive() {
		doc.Columns("Tax "+r.TaxRate.String()+"%:", r.Tax.StringFixed(2))
	}
	doc.SetBold(true).
		Columns("TOTAL:", r.Total.StringFixed(2)).
		SetBold(false)
	if r.Paid.GreaterThan(decimal.Zero) {
		doc.Columns("Paid:", r.Paid.StringFixed(2))
		doc.Columns("Change:", r.Change.StringFixed(2))
	}
	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).
		FeedLines(1).
		Text("Thank you for shopping with us!").
		SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/internal/domain/repository"
	"github.com/sangkips/shopdesk-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

const reportDateLayout = "2006-01-02"

// ReportService aggregates recorded sales over calendar days.
// Only completed sales count towards totals and rankings.
type ReportService struct {
	saleRepo    repository.SaleRepository
	location    *time.Location
	topProducts int
}

// NewReportService creates a new report service
func NewReportService(saleRepo repository.SaleRepository, location *time.Location, topProducts int) *ReportService {
	if location == nil {
		location = time.UTC
	}
	if topProducts < 1 {
		topProducts = 5
	}
	return &ReportService{
		saleRepo:    saleRepo,
		location:    location,
		topProducts: topProducts,
	}
}

// ProductSales is one row of the top products ranking
type ProductSales struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductSKU   string          `json:"product_sku"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// PaymentMethodTotal is the share of sales taken by one payment method
type PaymentMethodTotal struct {
	Method enum.PaymentMethod `json:"method"`
	Count  int                `json:"count"`
	Total  decimal.Decimal    `json:"total"`
}

// DailyReport summarizes one calendar day
type DailyReport struct {
	Date              string          `json:"date"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalTransactions int             `json:"total_transactions"`
	TopProducts       []ProductSales  `json:"top_products"`
	Sales             []entity.Sale   `json:"sales"`
}

// SalesSummary summarizes an inclusive range of days
type SalesSummary struct {
	StartDate               string               `json:"start_date"`
	EndDate                 string               `json:"end_date"`
	TotalSales              decimal.Decimal      `json:"total_sales"`
	TotalTransactions       int                  `json:"total_transactions"`
	AverageTransactionValue decimal.Decimal      `json:"average_transaction_value"`
	PaymentMethods          []PaymentMethodTotal `json:"payment_methods"`
	TopProducts             []ProductSales       `json:"top_products"`
}

// parseDay reads a YYYY-MM-DD date as midnight in the business time zone
func (s *ReportService) parseDay(field, value string) (time.Time, error) {
	day, err := time.ParseInLocation(reportDateLayout, value, s.location)
	if err != nil {
		return time.Time{}, apperror.NewValidationError([]apperror.FieldError{
			{Field: field, Message: "Invalid date format, expected YYYY-MM-DD"},
		})
	}
	return day, nil
}

func (s *ReportService) limitOrDefault(limit int) int {
	if limit < 1 {
		return s.topProducts
	}
	return limit
}

// Daily reports on sales created in [start of date, start of next day)
func (s *ReportService) Daily(ctx context.Context, date string, limit int) (*DailyReport, error) {
	start, err := s.parseDay("date", date)
	if err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.ListInRange(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	if sales == nil {
		sales = []entity.Sale{}
	}

	agg := aggregate(sales)
	return &DailyReport{
		Date:              start.Format(reportDateLayout),
		TotalSales:        agg.revenue,
		TotalTransactions: agg.count,
		TopProducts:       agg.topProducts(s.limitOrDefault(limit)),
		Sales:             sales,
	}, nil
}

// Summary reports on sales created from the start of startDate to the end of endDate
func (s *ReportService) Summary(ctx context.Context, startDate, endDate string, limit int) (*SalesSummary, error) {
	start, err := s.parseDay("start_date", startDate)
	if err != nil {
		return nil, err
	}
	end, err := s.parseDay("end_date", endDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, apperror.NewBadRequestError("end_date must not be before start_date")
	}

	sales, err := s.saleRepo.ListInRange(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	agg := aggregate(sales)
	average := decimal.Zero
	if agg.count > 0 {
		average = agg.revenue.Div(decimal.NewFromInt(int64(agg.count))).Round(2)
	}

	return &SalesSummary{
		StartDate:               start.Format(reportDateLayout),
		EndDate:                 end.Format(reportDateLayout),
		TotalSales:              agg.revenue,
		TotalTransactions:       agg.count,
		AverageTransactionValue: average,
		PaymentMethods:          agg.paymentMethods(),
		TopProducts:             agg.topProducts(s.limitOrDefault(limit)),
	}, nil
}

type aggregation struct {
	revenue  decimal.Decimal
	count    int
	products map[uuid.UUID]*ProductSales
	payments map[enum.PaymentMethod]*PaymentMethodTotal
}

func aggregate(sales []entity.Sale) *aggregation {
	agg := &aggregation{
		revenue:  decimal.Zero,
		products: make(map[uuid.UUID]*ProductSales),
		payments: make(map[enum.PaymentMethod]*PaymentMethodTotal),
	}

	for _, sale := range sales {
		if sale.Status != enum.SaleStatusCompleted {
			continue
		}
		agg.revenue = agg.revenue.Add(sale.Total)
		agg.count++

		pm, ok := agg.payments[sale.PaymentMethod]
		if !ok {
			pm = &PaymentMethodTotal{Method: sale.PaymentMethod, Total: decimal.Zero}
			agg.payments[sale.PaymentMethod] = pm
		}
		pm.Count++
		pm.Total = pm.Total.Add(sale.Total)

		for _, item := range sale.Items {
			ps, ok := agg.products[item.ProductID]
			if !ok {
				ps = &ProductSales{
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
					ProductSKU:  item.ProductSKU,
					Revenue:     decimal.Zero,
				}
				agg.products[item.ProductID] = ps
			}
			ps.QuantitySold += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.LineTotal)
		}
	}
	return agg
}

// topProducts ranks products by revenue, ties broken by product id ascending
func (a *aggregation) topProducts(n int) []ProductSales {
	ranked := make([]ProductSales, 0, len(a.products))
	for _, ps := range a.products {
		ranked = append(ranked, *ps)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Revenue.Cmp(ranked[j].Revenue); c != 0 {
			return c > 0
		}
		return ranked[i].ProductID.String() < ranked[j].ProductID.String()
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (a *aggregation) paymentMethods() []PaymentMethodTotal {
	out := make([]PaymentMethodTotal, 0, len(a.payments))
	for _, pm := range a.payments {
		out = append(out, *pm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out
}

package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	env        *testEnv
	p1, p2, p3 *entity.Product
}

func (f *reportFixture) sellAt(t *testing.T, at time.Time, method enum.PaymentMethod, status enum.SaleStatus, items ...SaleItemInput) {
	t.Helper()
	*f.env.clock = at
	_, err := f.env.sales.CreateSale(context.Background(), &CreateSaleInput{
		StaffID:       f.env.staffID,
		Items:         items,
		PaymentMethod: method,
		Status:        &status,
	})
	require.NoError(t, err)
}

// newReportFixture records four completed sales across two days plus one pending sale
func newReportFixture(t *testing.T) *reportFixture {
	env := newTestEnv(t)
	f := &reportFixture{
		env: env,
		p1:  env.createProduct(t, "RPT-1", 100, "10"),
		p2:  env.createProduct(t, "RPT-2", 100, "5"),
		p3:  env.createProduct(t, "RPT-3", 100, "5"),
	}

	day := time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)
	f.sellAt(t, day.Add(10*time.Hour), enum.PaymentMethodCash, enum.SaleStatusCompleted,
		item(f.p1, 2, "10"), item(f.p2, 2, "5"))
	f.sellAt(t, day.Add(24*time.Hour-time.Second), enum.PaymentMethodCard, enum.SaleStatusCompleted,
		item(f.p3, 2, "5"))
	f.sellAt(t, day.Add(12*time.Hour), enum.PaymentMethodCash, enum.SaleStatusPending,
		item(f.p1, 5, "10"))
	f.sellAt(t, day.Add(24*time.Hour), enum.PaymentMethodCash, enum.SaleStatusCompleted,
		item(f.p1, 1, "10"))
	return f
}

func TestReportService_Daily(t *testing.T) {
	f := newReportFixture(t)

	report, err := f.env.reports.Daily(context.Background(), "2024-03-07", 2)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-07", report.Date)
	assert.True(t, decimal.NewFromInt(40).Equal(report.TotalSales), report.TotalSales.String())
	assert.Equal(t, 2, report.TotalTransactions)

	require.Len(t, report.TopProducts, 2)
	assert.Equal(t, f.p1.ID, report.TopProducts[0].ProductID)
	assert.Equal(t, 2, report.TopProducts[0].QuantitySold)
	assert.True(t, decimal.NewFromInt(20).Equal(report.TopProducts[0].Revenue))

	tied := f.p2.ID
	if f.p3.ID.String() < tied.String() {
		tied = f.p3.ID
	}
	assert.Equal(t, tied, report.TopProducts[1].ProductID)
}

func TestReportService_DailyExcludesNextMidnight(t *testing.T) {
	f := newReportFixture(t)

	report, err := f.env.reports.Daily(context.Background(), "2024-03-08", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalTransactions)
	assert.True(t, decimal.NewFromInt(10).Equal(report.TotalSales))
	require.Len(t, report.TopProducts, 1)
	assert.Equal(t, "RPT-1", report.TopProducts[0].ProductSKU)
}

func TestReportService_DailyEmpty(t *testing.T) {
	f := newReportFixture(t)

	report, err := f.env.reports.Daily(context.Background(), "2023-01-01", 0)
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalTransactions)
	assert.True(t, report.TotalSales.IsZero())
	assert.NotNil(t, report.Sales)
	assert.Empty(t, report.TopProducts)
}

func TestReportService_Summary(t *testing.T) {
	f := newReportFixture(t)

	summary, err := f.env.reports.Summary(context.Background(), "2024-03-07", "2024-03-08", 0)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalTransactions)
	assert.True(t, decimal.NewFromInt(50).Equal(summary.TotalSales))
	assert.Equal(t, "16.67", summary.AverageTransactionValue.String())

	require.Len(t, summary.PaymentMethods, 2)
	assert.Equal(t, enum.PaymentMethodCard, summary.PaymentMethods[0].Method)
	assert.Equal(t, 1, summary.PaymentMethods[0].Count)
	assert.Equal(t, enum.PaymentMethodCash, summary.PaymentMethods[1].Method)
	assert.Equal(t, 2, summary.PaymentMethods[1].Count)
	assert.True(t, decimal.NewFromInt(40).Equal(summary.PaymentMethods[1].Total))

	require.NotEmpty(t, summary.TopProducts)
	assert.Equal(t, f.p1.ID, summary.TopProducts[0].ProductID)
	assert.Equal(t, 3, summary.TopProducts[0].QuantitySold)
}

func TestReportService_CancelledSalesDropOut(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	before, err := f.env.reports.Daily(ctx, "2024-03-08", 0)
	require.NoError(t, err)
	require.Len(t, before.Sales, 1)

	_, err = f.env.sales.UpdateSaleStatus(ctx, before.Sales[0].ID, enum.SaleStatusRefunded)
	require.NoError(t, err)

	after, err := f.env.reports.Daily(ctx, "2024-03-08", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, after.TotalTransactions)
	assert.True(t, after.TotalSales.IsZero())
}

func TestReportService_InvalidDates(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.env.reports.Daily(ctx, "07/03/2024", 0)
	assert.True(t, apperror.HasCode(err, http.StatusBadRequest))

	_, err = f.env.reports.Summary(ctx, "2024-03-08", "2024-03-07", 0)
	assert.True(t, apperror.HasCode(err, http.StatusBadRequest))

	_, err = f.env.reports.Summary(ctx, "2024-03-07", "2024-02-30", 0)
	assert.True(t, apperror.HasCode(err, http.StatusBadRequest))
}

func TestAggregation_TopProductsTieBreak(t *testing.T) {
	a, b := uuid.MustParse("00000000-0000-0000-0000-00000000000a"), uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	sales := []entity.Sale{{
		Status: enum.SaleStatusCompleted,
		Total:  decimal.NewFromInt(20),
		Items: []entity.SaleItem{
			{ProductID: b, Quantity: 1, LineTotal: decimal.NewFromInt(10)},
			{ProductID: a, Quantity: 2, LineTotal: decimal.NewFromInt(10)},
		},
	}}

	top := aggregate(sales).topProducts(5)
	require.Len(t, top, 2)
	assert.Equal(t, a, top[0].ProductID)
	assert.Equal(t, b, top[1].ProductID)
}

package service

import (
	"context"
	"testing"
	"time"

	"pos-service/internal/apperr"
	"pos-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type reportCall struct {
	report string
	args   []interface{}
}

// fakeReportStore records the arguments each report was loaded with
type fakeReportStore struct {
	calls []reportCall
}

func (f *fakeReportStore) record(report string, args ...interface{}) {
	f.calls = append(f.calls, reportCall{report: report, args: args})
}

func (f *fakeReportStore) DailySales(ctx context.Context, day string) (*models.DailySales, error) {
	f.record("daily-sales", day)
	return &models.DailySales{TotalOrders: 3, TotalRevenue: decimal.RequireFromString("630.00")}, nil
}

func (f *fakeReportStore) PopularItems(ctx context.Context, start, end string, limit int) ([]models.PopularItem, error) {
	f.record("popular-items", start, end, limit)
	return []models.PopularItem{{MenuID: 1, ItemName: "Paneer Butter Masala", TotalQuantity: 4}}, nil
}

func (f *fakeReportStore) RevenueByCuisine(ctx context.Context, start, end string) ([]models.CuisineRevenue, error) {
	f.record("revenue-by-cuisine", start, end)
	return []models.CuisineRevenue{}, nil
}

func (f *fakeReportStore) PeakHours(ctx context.Context, day string) ([]models.HourlySales, error) {
	f.record("peak-hours", day)
	return []models.HourlySales{{Hour: 13, OrderCount: 2}}, nil
}

func (f *fakeReportStore) PaymentMethods(ctx context.Context, start, end string) ([]models.PaymentMethodBreakdown, error) {
	f.record("payment-methods", start, end)
	return []models.PaymentMethodBreakdown{}, nil
}

func (f *fakeReportStore) WeeklyComparison(ctx context.Context, today string) ([]models.DaySales, error) {
	f.record("weekly-comparison", today)
	return []models.DaySales{}, nil
}

func (f *fakeReportStore) OrderStatusSummary(ctx context.Context, today string) ([]models.StatusCount, error) {
	f.record("order-status", today)
	return []models.StatusCount{}, nil
}

func newReportService(cache Cache) (*ReportService, *fakeReportStore) {
	fake := &fakeReportStore{}
	rs := NewReportService(fake, cache, time.Minute)
	rs.now = func() time.Time { return testNow }
	return rs, fake
}

func TestReportDefaults(t *testing.T) {
	rs, fake := newReportService(nil)
	ctx := context.Background()

	_, err := rs.DailySales(ctx, "")
	require.NoError(t, err)
	_, err = rs.PopularItems(ctx, DateRange{}, 0)
	require.NoError(t, err)
	_, err = rs.RevenueByCuisine(ctx, DateRange{})
	require.NoError(t, err)
	_, err = rs.PaymentMethods(ctx, DateRange{})
	require.NoError(t, err)
	_, err = rs.PeakHours(ctx, "2024-03-01")
	require.NoError(t, err)

	assert.Equal(t, []reportCall{
		{"daily-sales", []interface{}{testDay}},
		{"popular-items", []interface{}{"2024-03-03", testDay, 10}},
		{"revenue-by-cuisine", []interface{}{"2024-02-09", testDay}},
		{"payment-methods", []interface{}{testDay, testDay}},
		{"peak-hours", []interface{}{"2024-03-01"}},
	}, fake.calls)
}

func TestReportRejectsBadParameters(t *testing.T) {
	rs, fake := newReportService(nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func() error
		field string
	}{
		{"malformed date", func() error { _, err := rs.DailySales(ctx, "03/10/2024"); return err }, "date"},
		{"malformed start", func() error {
			_, err := rs.RevenueByCuisine(ctx, DateRange{Start: "last week"})
			return err
		}, "start_date"},
		{"start after end", func() error {
			_, err := rs.PaymentMethods(ctx, DateRange{Start: "2024-03-10", End: "2024-03-01"})
			return err
		}, "start_date"},
		{"limit too large", func() error { _, err := rs.PopularItems(ctx, DateRange{}, 500); return err }, "limit"},
		{"negative limit", func() error { _, err := rs.PopularItems(ctx, DateRange{}, -1); return err }, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *apperr.Error
			require.ErrorAs(t, tt.call(), &appErr)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
	assert.Empty(t, fake.calls)
}

func TestReportsAreServedFromCache(t *testing.T) {
	cache := newFakeCache()
	rs, fake := newReportService(cache)
	ctx := context.Background()

	first, err := rs.DailySales(ctx, testDay)
	require.NoError(t, err)
	second, err := rs.DailySales(ctx, testDay)
	require.NoError(t, err)

	assert.Len(t, fake.calls, 1)
	assert.Equal(t, first.TotalOrders, second.TotalOrders)
	assertMoney(t, "630.00", second.TotalRevenue)
	assert.Contains(t, cache.values, ReportCachePrefix+"daily-sales:"+testDay)

	items, err := rs.PopularItems(ctx, DateRange{}, 5)
	require.NoError(t, err)
	items, err = rs.PopularItems(ctx, DateRange{}, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Paneer Butter Masala", items[0].ItemName)
	assert.Len(t, fake.calls, 2)
}

func TestReportsBypassCacheWithoutTTL(t *testing.T) {
	fake := &fakeReportStore{}
	rs := NewReportService(fake, newFakeCache(), 0)

	_, err := rs.WeeklyComparison(context.Background())
	require.NoError(t, err)
	_, err = rs.WeeklyComparison(context.Background())
	require.NoError(t, err)

	assert.Len(t, fake.calls, 2)
}

// spanCapturingStore remembers the span the daily sales query ran under
type spanCapturingStore struct {
	*fakeReportStore
	parent trace.SpanContext
}

func (s *spanCapturingStore) DailySales(ctx context.Context, day string) (*models.DailySales, error) {
	s.parent = trace.SpanContextFromContext(ctx)
	return s.fakeReportStore.DailySales(ctx, day)
}

func TestReportQueryRunsUnderReportSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	st := &spanCapturingStore{fakeReportStore: &fakeReportStore{}}
	rs := NewReportService(st, nil, 0)
	rs.now = func() time.Time { return testNow }

	_, err := rs.DailySales(context.Background(), testDay)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ReportService.daily-sales", spans[0].Name())
	require.True(t, st.parent.IsValid())
	assert.Equal(t, spans[0].SpanContext().SpanID(), st.parent.SpanID())
}

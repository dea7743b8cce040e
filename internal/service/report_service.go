package service

import (
	"context"
	"fmt"
	"time"

	"pos-service/internal/apperr"
	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 100
	popularItemsDays    = 7
	cuisineRevenueDays  = 30

	// ReportCachePrefix prefixes every cached report key
	ReportCachePrefix = "report:"
)

// ReportService serves sales aggregations, cached when a cache is configured
type ReportService struct {
	store  ReportStore
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService creates a new report service. cache may be nil.
func NewReportService(store ReportStore, cache Cache, ttl time.Duration) *ReportService {
	return &ReportService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
		now:    time.Now,
	}
}

// DateRange is an inclusive range of calendar dates
type DateRange struct {
	Start string
	End   string
}

func (rs *ReportService) today() string {
	return rs.now().Format(models.DateLayout)
}

func (rs *ReportService) day(value string) (string, error) {
	if value == "" {
		return rs.today(), nil
	}
	if _, err := parseDate("date", value); err != nil {
		return "", err
	}
	return value, nil
}

// dateRange fills a missing start with today minus defaultDays and a missing end with today
func (rs *ReportService) dateRange(r DateRange, defaultDays int) (DateRange, error) {
	now := rs.now()
	if r.Start == "" {
		r.Start = now.AddDate(0, 0, -defaultDays).Format(models.DateLayout)
	}
	if r.End == "" {
		r.End = now.Format(models.DateLayout)
	}

	start, err := parseDate("start_date", r.Start)
	if err != nil {
		return r, err
	}
	end, err := parseDate("end_date", r.End)
	if err != nil {
		return r, err
	}
	if start.After(end) {
		return r, apperr.Validation("start_date", "must not be after end_date")
	}
	return r, nil
}

// DailySales summarises a day's completed orders, today by default
func (rs *ReportService) DailySales(ctx context.Context, date string) (*models.DailySales, error) {
	day, err := rs.day(date)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, rs, "daily-sales", day, func(ctx context.Context) (*models.DailySales, error) {
		return rs.store.DailySales(ctx, day)
	})
}

// PopularItems ranks items sold in the range, the last week by default
func (rs *ReportService) PopularItems(ctx context.Context, r DateRange, limit int) ([]models.PopularItem, error) {
	r, err := rs.dateRange(r, popularItemsDays)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = defaultPopularLimit
	}
	if limit < 0 || limit > maxPopularLimit {
		return nil, apperr.Validation("limit", fmt.Sprintf("must be between 1 and %d", maxPopularLimit))
	}

	params := fmt.Sprintf("%s:%s:%d", r.Start, r.End, limit)
	return cachedReport(ctx, rs, "popular-items", params, func(ctx context.Context) ([]models.PopularItem, error) {
		return rs.store.PopularItems(ctx, r.Start, r.End, limit)
	})
}

// RevenueByCuisine aggregates sales per cuisine, the last 30 days by default
func (rs *ReportService) RevenueByCuisine(ctx context.Context, r DateRange) ([]models.CuisineRevenue, error) {
	r, err := rs.dateRange(r, cuisineRevenueDays)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, rs, "revenue-by-cuisine", r.Start+":"+r.End, func(ctx context.Context) ([]models.CuisineRevenue, error) {
		return rs.store.RevenueByCuisine(ctx, r.Start, r.End)
	})
}

// PeakHours aggregates a day's completed orders per hour, today by default
func (rs *ReportService) PeakHours(ctx context.Context, date string) ([]models.HourlySales, error) {
	day, err := rs.day(date)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, rs, "peak-hours", day, func(ctx context.Context) ([]models.HourlySales, error) {
		return rs.store.PeakHours(ctx, day)
	})
}

// PaymentMethods aggregates payments per method, today by default
func (rs *ReportService) PaymentMethods(ctx context.Context, r DateRange) ([]models.PaymentMethodBreakdown, error) {
	r, err := rs.dateRange(r, 0)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, rs, "payment-methods", r.Start+":"+r.End, func(ctx context.Context) ([]models.PaymentMethodBreakdown, error) {
		return rs.store.PaymentMethods(ctx, r.Start, r.End)
	})
}

// WeeklyComparison aggregates completed orders per day over the last week
func (rs *ReportService) WeeklyComparison(ctx context.Context) ([]models.DaySales, error) {
	today := rs.today()
	return cachedReport(ctx, rs, "weekly-comparison", today, func(ctx context.Context) ([]models.DaySales, error) {
		return rs.store.WeeklyComparison(ctx, today)
	})
}

// OrderStatusSummary counts today's orders per status
func (rs *ReportService) OrderStatusSummary(ctx context.Context) ([]models.StatusCount, error) {
	today := rs.today()
	return cachedReport(ctx, rs, "order-status", today, func(ctx context.Context) ([]models.StatusCount, error) {
		return rs.store.OrderStatusSummary(ctx, today)
	})
}

// cachedReport serves a report from the cache or loads and stores it. load
// runs under the report span.
// Cache failures fall through to the database.
func cachedReport[T any](ctx context.Context, rs *ReportService, name, params string, load func(context.Context) (T, error)) (T, error) {
	ctx, span := util.StartSpan(ctx, "ReportService."+name)
	defer span.End()

	if rs.cache == nil || rs.ttl <= 0 {
		return load(ctx)
	}

	key := ReportCachePrefix + name + ":" + params
	var cached T
	found, err := rs.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		rs.logger.Warn("Failed to read cached report", zap.String("key", key), zap.Error(err))
	}
	if found {
		util.ReportCacheRequestsTotal.WithLabelValues(name, "hit").Inc()
		return cached, nil
	}
	util.ReportCacheRequestsTotal.WithLabelValues(name, "miss").Inc()

	result, err := load(ctx)
	if err != nil {
		util.SpanError(span, err)
		return result, err
	}
	if err := rs.cache.SetJSON(ctx, key, result, rs.ttl); err != nil {
		rs.logger.Warn("Failed to cache report", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

package statistics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockroomhq/warehouse-backend/pkg/config"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
	"github.com/stockroomhq/warehouse-backend/pkg/redis"
)

const summaryCacheKey = "statistics:summary"

// Cache is the slice of redis the dashboard needs. A nil cache disables
// caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Summary is the dashboard payload.
type Summary struct {
	TotalProducts   int64           `json:"totalProducts"`
	EnabledProducts int64           `json:"enabledProducts"`
	TotalStockUnits int64           `json:"totalStockUnits"`
	StockValue      decimal.Decimal `json:"stockValue"`
	LowStockCount   int64           `json:"lowStockCount"`
	PendingInbound  int64           `json:"pendingInbound"`
	PendingOutbound int64           `json:"pendingOutbound"`
	Categories      []CategorySlice `json:"categories"`
	Trend           []TrendPoint    `json:"trend"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

// TrendPoint is one day of approved order activity.
type TrendPoint struct {
	Date          string `json:"date"`
	InboundCount  int64  `json:"inboundCount"`
	OutboundCount int64  `json:"outboundCount"`
	InboundUnits  int64  `json:"inboundUnits"`
	OutboundUnits int64  `json:"outboundUnits"`
}

// Service assembles the dashboard summary, optionally serving it from a
// short-lived cache.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	repo  Repository
	cache Cache
	logg  *logger.Logger
	cfg   config.StatisticsConfig
	now   func() time.Time
}

// NewService wires the statistics service. cache may be nil.
func NewService(repo Repository, cache Cache, logg *logger.Logger, cfg config.StatisticsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("statistics repository required")
	}
	if cfg.TrendDays <= 0 {
		cfg.TrendDays = 7
	}
	return &service{repo: repo, cache: cache, logg: logg, cfg: cfg, now: time.Now}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	summary, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, summary)
	return summary, nil
}

func (s *service) build(ctx context.Context) (*Summary, error) {
	total, enabled, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting products")
	}
	units, err := s.repo.TotalStockUnits(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing stock units")
	}
	value, err := s.repo.StockValue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing stock value")
	}
	low, err := s.repo.LowStockCount(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting low stock")
	}
	pending, err := s.repo.CountPendingByKind(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting pending orders")
	}
	categories, err := s.repo.CategoryDistribution(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "grouping products by category")
	}
	for i := range categories {
		if categories[i].CategoryID == nil {
			categories[i].Name = "uncategorized"
		}
	}

	now := s.now().UTC()
	trend, err := s.buildTrend(ctx, now)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalProducts:   total,
		EnabledProducts: enabled,
		TotalStockUnits: units,
		StockValue:      value,
		LowStockCount:   low,
		PendingInbound:  pending[enums.OrderKindInbound],
		PendingOutbound: pending[enums.OrderKindOutbound],
		Categories:      categories,
		Trend:           trend,
		GeneratedAt:     now,
	}, nil
}

// buildTrend buckets approved orders per day in Go rather than SQL so the
// same code serves both database drivers.
func (s *service) buildTrend(ctx context.Context, now time.Time) ([]TrendPoint, error) {
	days := s.cfg.TrendDays
	start := now.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	orders, err := s.repo.ApprovedSince(ctx, start)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading approved orders for trend")
	}

	byDate := make(map[string]*TrendPoint, days)
	points := make([]TrendPoint, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		points[i] = TrendPoint{Date: date}
		byDate[date] = &points[i]
	}

	for _, order := range orders {
		if order.ApprovedAt == nil {
			continue
		}
		point, ok := byDate[order.ApprovedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		switch order.Kind {
		case enums.OrderKindInbound:
			point.InboundCount++
			point.InboundUnits += int64(order.Quantity)
		case enums.OrderKindOutbound:
			point.OutboundCount++
			point.OutboundUnits += int64(order.Quantity)
		}
	}
	return points, nil
}

// fromCache returns nil on any cache trouble; the dashboard never fails
// because redis does.
func (s *service) fromCache(ctx context.Context) *Summary {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, redis.Key(summaryCacheKey))
	if err != nil {
		if err != redis.Nil && s.logg != nil {
			s.logg.Warn(ctx, "statistics cache read failed: "+err.Error())
		}
		return nil
	}
	var summary Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *service) toCache(ctx context.Context, summary *Summary) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, redis.Key(summaryCacheKey), string(raw), s.cfg.CacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "statistics cache write failed: "+err.Error())
	}
}

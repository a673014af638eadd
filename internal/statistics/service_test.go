package statistics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroomhq/warehouse-backend/pkg/config"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type mapCache struct {
	values map[string]string
	sets   int
}

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	value, ok := c.values[key]
	if !ok {
		return "", errCacheMiss
	}
	return value, nil
}

func (c *mapCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.values[key] = value
	c.sets++
	return nil
}

var errCacheMiss = redisNilError{}

type redisNilError struct{}

func (redisNilError) Error() string { return "cache miss" }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:statistics_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.StockRecord{}, &models.Order{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	category := models.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return category.ID
}

func seedProduct(t *testing.T, db *gorm.DB, price float64, enabled bool, qty int, threshold int) uuid.UUID {
	t.Helper()
	product := models.Product{
		SKU:     "SKU-" + uuid.NewString()[:8],
		Name:    "seeded",
		Price:   decimal.NewFromFloat(price),
		Enabled: enabled,
	}
	require.NoError(t, db.Create(&product).Error)
	record := models.StockRecord{
		ProductID:        product.ID,
		WarehouseID:      models.DefaultWarehouseID,
		Quantity:         qty,
		WarningThreshold: threshold,
	}
	require.NoError(t, db.Create(&record).Error)
	return product.ID
}

func seedOrder(t *testing.T, db *gorm.DB, productID uuid.UUID, kind enums.OrderKind, status enums.OrderStatus, qty int, approvedAt *time.Time) {
	t.Helper()
	order := models.Order{
		OrderNo:          "T" + uuid.NewString()[:12],
		Kind:             kind,
		ProductID:        productID,
		Quantity:         qty,
		CounterpartyName: "seed",
		OrderDate:        time.Now().UTC(),
		Status:           status,
		CreatedBy:        "test",
		ApprovedAt:       approvedAt,
	}
	if approvedAt != nil {
		by := "test"
		order.ApprovedBy = &by
	}
	require.NoError(t, db.Create(&order).Error)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	cheap := seedProduct(t, db, 2.50, true, 100, 10)
	costly := seedProduct(t, db, 10.00, true, 4, 5)
	seedProduct(t, db, 1.00, false, 0, 10)

	hardware := seedCategory(t, db, "Hardware")
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", costly).Update("category_id", hardware).Error)

	yesterday := now.AddDate(0, 0, -1)
	seedOrder(t, db, cheap, enums.OrderKindInbound, enums.OrderStatusApproved, 30, &yesterday)
	seedOrder(t, db, costly, enums.OrderKindOutbound, enums.OrderStatusApproved, 6, &now)
	seedOrder(t, db, cheap, enums.OrderKindInbound, enums.OrderStatusPending, 5, nil)
	seedOrder(t, db, cheap, enums.OrderKindOutbound, enums.OrderStatusPending, 5, nil)
	seedOrder(t, db, cheap, enums.OrderKindOutbound, enums.OrderStatusVoid, 5, nil)

	svc, err := NewService(NewRepository(db), nil, nil, config.StatisticsConfig{TrendDays: 7})
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return now }

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	require.EqualValues(t, 3, summary.TotalProducts)
	require.EqualValues(t, 2, summary.EnabledProducts)
	require.EqualValues(t, 104, summary.TotalStockUnits)
	// 100*2.50 + 4*10.00 + 0*1.00
	require.True(t, summary.StockValue.Equal(decimal.NewFromFloat(290.00)), "got %s", summary.StockValue)
	// the costly product (4 <= 5) and the disabled one (0 <= 10) are low
	require.EqualValues(t, 2, summary.LowStockCount)
	require.EqualValues(t, 1, summary.PendingInbound)
	require.EqualValues(t, 1, summary.PendingOutbound)

	require.Len(t, summary.Categories, 2)
	require.Nil(t, summary.Categories[0].CategoryID)
	require.Equal(t, "uncategorized", summary.Categories[0].Name)
	require.EqualValues(t, 2, summary.Categories[0].ProductCount)
	require.EqualValues(t, 100, summary.Categories[0].StockUnits)
	require.NotNil(t, summary.Categories[1].CategoryID)
	require.Equal(t, hardware, *summary.Categories[1].CategoryID)
	require.Equal(t, "Hardware", summary.Categories[1].Name)
	require.EqualValues(t, 1, summary.Categories[1].ProductCount)
	require.EqualValues(t, 4, summary.Categories[1].StockUnits)

	require.Len(t, summary.Trend, 7)
	require.Equal(t, "2026-01-10", summary.Trend[6].Date)
	require.EqualValues(t, 1, summary.Trend[6].OutboundCount)
	require.EqualValues(t, 6, summary.Trend[6].OutboundUnits)
	require.EqualValues(t, 1, summary.Trend[5].InboundCount)
	require.EqualValues(t, 30, summary.Trend[5].InboundUnits)
}

func TestSummaryEmptyDatabase(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), nil, nil, config.StatisticsConfig{TrendDays: 3})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.TotalProducts)
	require.Zero(t, summary.TotalStockUnits)
	require.True(t, summary.StockValue.IsZero())
	require.Len(t, summary.Trend, 3)
}

func TestSummaryUsesCache(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	cache := &mapCache{values: map[string]string{}}

	seedProduct(t, db, 5.00, true, 10, 2)

	svc, err := NewService(NewRepository(db), cache, nil, config.StatisticsConfig{TrendDays: 7, CacheTTL: time.Minute})
	require.NoError(t, err)

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, first.TotalProducts)
	require.Equal(t, 1, cache.sets)

	// a change invisible to the cache proves the second read was cached
	seedProduct(t, db, 5.00, true, 10, 2)

	second, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, second.TotalProducts)
	require.Equal(t, 1, cache.sets)
}

package sequence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:sequence_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.OrderSequence{}); err != nil {
		t.Fatalf("migrate order sequences: %v", err)
	}
	return db
}

func newTestAllocator(t *testing.T) (Allocator, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	alloc, err := NewAllocator(NewRepository(db))
	require.NoError(t, err)
	return alloc, db
}

func TestNextAllocatesDistinctSequentialNumbers(t *testing.T) {
	t.Parallel()

	alloc, _ := newTestAllocator(t)
	ctx := context.Background()
	day := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	seen := map[string]bool{}
	for i := 1; i <= 25; i++ {
		orderNo, err := alloc.Next(ctx, enums.OrderKindInbound, day)
		require.NoError(t, err)
		require.False(t, seen[orderNo], "duplicate order number %s", orderNo)
		seen[orderNo] = true
		require.Equal(t, fmt.Sprintf("IN20260105%04d", i), orderNo)
	}
}

func TestNextKeepsKindsIndependent(t *testing.T) {
	t.Parallel()

	alloc, _ := newTestAllocator(t)
	ctx := context.Background()
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	inbound, err := alloc.Next(ctx, enums.OrderKindInbound, day)
	require.NoError(t, err)
	outbound, err := alloc.Next(ctx, enums.OrderKindOutbound, day)
	require.NoError(t, err)

	require.Equal(t, "IN202601050001", inbound)
	require.Equal(t, "OUT202601050001", outbound)
}

func TestNextResetsPerDay(t *testing.T) {
	t.Parallel()

	alloc, _ := newTestAllocator(t)
	ctx := context.Background()

	first, err := alloc.Next(ctx, enums.OrderKindInbound, time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	second, err := alloc.Next(ctx, enums.OrderKindInbound, time.Date(2026, 1, 6, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, "IN202601050001", first)
	require.Equal(t, "IN202601060001", second)
}

func TestNextExhaustsAt9999(t *testing.T) {
	t.Parallel()

	alloc, db := newTestAllocator(t)
	ctx := context.Background()
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	seed := models.OrderSequence{Kind: enums.OrderKindOutbound, SeqDate: "20260105", SeqValue: 9998}
	require.NoError(t, db.Create(&seed).Error)

	orderNo, err := alloc.Next(ctx, enums.OrderKindOutbound, day)
	require.NoError(t, err)
	require.Equal(t, "OUT202601059999", orderNo)

	_, err = alloc.Next(ctx, enums.OrderKindOutbound, day)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSequenceExhausted))

	// exhaustion is sticky for the rest of the day
	_, err = alloc.Next(ctx, enums.OrderKindOutbound, day)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSequenceExhausted))

	// the other kind is unaffected
	inbound, err := alloc.Next(ctx, enums.OrderKindInbound, day)
	require.NoError(t, err)
	require.Equal(t, "IN202601050001", inbound)
}

func TestNextRejectsInvalidKind(t *testing.T) {
	t.Parallel()

	alloc, _ := newTestAllocator(t)
	_, err := alloc.Next(context.Background(), enums.OrderKind("transfer"), time.Now())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

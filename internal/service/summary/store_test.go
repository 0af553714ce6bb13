package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/repository/docstore"
)

func newTestStore(t *testing.T) (*Store, *docstore.MemoryStore) {
	t.Helper()
	db := docstore.NewMemoryStore()
	return NewStore(db, zap.NewNop()), db
}

func TestMonthID(t *testing.T) {
	assert.Equal(t, "2025/months/04", MonthID("2025", "04"))
}

func TestSplitDate(t *testing.T) {
	year, month, err := SplitDate("2025-04-28")
	require.NoError(t, err)
	assert.Equal(t, "2025", year)
	assert.Equal(t, "04", month)

	_, _, err = SplitDate("28/04/2025")
	require.Error(t, err)
}

func TestMonthMissingIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	record, err := store.Month(context.Background(), "2025", "04")
	require.NoError(t, err)
	assert.Empty(t, record.DailySummaries)
}

func TestCreateDayAndReadBack(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	opening := models.StockPair{Stick: models.InventoryRecord{Quantity: 100, SellingPrice: 10}}

	require.NoError(t, store.CreateDay(ctx, "2025-04-28", opening))

	day, ok, err := store.Summary(ctx, "2025-04-28")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, day.DayStarted)
	assert.False(t, day.DayClosed)
	assert.Equal(t, 100, day.OpeningStock.Stick.Quantity)
	assert.Nil(t, day.ClosingStock)
}

func TestCreateDayPreservesSiblingDates(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.CreateDay(ctx, "2025-04-27", models.StockPair{}))
	require.NoError(t, store.ApplyCartClose(ctx, "2025-04-27", CloseDelta{StickSold: 12}))
	require.NoError(t, store.CreateDay(ctx, "2025-04-28", models.StockPair{}))

	day, ok, err := store.Summary(ctx, "2025-04-27")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12, day.StickSold)
}

func TestApplyCartCloseAccumulates(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.CreateDay(ctx, "2025-04-28", models.StockPair{}))

	require.NoError(t, store.ApplyCartClose(ctx, "2025-04-28", CloseDelta{
		StickSold: 25,
		Receipts:  models.Receipts{Cash: 200, QR: 50},
		Expenses:  models.Expenses{Wastage: 10.555},
	}))
	require.NoError(t, store.ApplyCartClose(ctx, "2025-04-28", CloseDelta{
		StickSold:   10,
		Receipts:    models.Receipts{Cash: 80},
		Receivables: models.Receivables{Swiggy: 40},
	}))

	day, ok, err := store.Summary(ctx, "2025-04-28")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 35, day.StickSold)
	assert.Equal(t, 280.0, day.Receipts.Cash)
	assert.Equal(t, 50.0, day.Receipts.QR)
	assert.Equal(t, 40.0, day.Receivables.Swiggy)
	assert.Equal(t, 10.56, day.Expenses.Wastage)
}

func TestCloseDayWriteSealsDay(t *testing.T) {
	ctx := context.Background()
	store, db := newTestStore(t)
	require.NoError(t, store.CreateDay(ctx, "2025-04-28", models.StockPair{}))

	closing := models.StockPair{Stick: models.InventoryRecord{Quantity: 75}}
	write, err := CloseDayWrite("2025-04-28", closing, "Day closed successfully")
	require.NoError(t, err)
	require.NoError(t, db.Update(ctx, write.Collection, write.ID, write.Data))

	day, ok, err := store.Summary(ctx, "2025-04-28")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, day.DayClosed)
	assert.Equal(t, "Day closed successfully", day.Remarks)
	require.NotNil(t, day.ClosingStock)
	assert.Equal(t, 75, day.ClosingStock.Stick.Quantity)
}

func TestAddReceivedSkipsMissingDay(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddReceived(ctx, "2025-04-28", models.ProductStick, 40))

	_, ok, err := store.Summary(ctx, "2025-04-28")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddReceivedAccumulates(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.CreateDay(ctx, "2025-04-28", models.StockPair{}))

	require.NoError(t, store.AddReceived(ctx, "2025-04-28", models.ProductStick, 40))
	require.NoError(t, store.AddReceived(ctx, "2025-04-28", models.ProductPlate, 10))
	require.NoError(t, store.AddReceived(ctx, "2025-04-28", models.ProductStick, 20))

	day, _, err := store.Summary(ctx, "2025-04-28")
	require.NoError(t, err)
	assert.Equal(t, 60, day.ReceivedStick)
	assert.Equal(t, 10, day.ReceivedPlate)
}

func TestYearsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.CreateDay(ctx, "2024-12-30", models.StockPair{}))
	require.NoError(t, store.CreateDay(ctx, "2025-01-02", models.StockPair{}))
	require.NoError(t, store.CreateDay(ctx, "2025-04-28", models.StockPair{}))

	years, err := store.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025", "2024"}, years)
}

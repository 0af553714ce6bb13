package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/repository/docstore"
	"github.com/kulfiwala/backend/internal/service/carts"
	"github.com/kulfiwala/backend/internal/service/summary"
)

var fixedNow = time.Date(2025, 4, 28, 9, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *summary.Store, *docstore.MemoryStore) {
	t.Helper()
	store := docstore.NewMemoryStore()
	summaries := summary.NewStore(store, zap.NewNop())
	ledger := NewLedger(store, summaries, zap.NewNop())
	ledger.now = func() time.Time { return fixedNow }
	return ledger, summaries, store
}

func seedWarehouse(t *testing.T, store *docstore.MemoryStore, stick, plate int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, Collection, "stickKulfi", map[string]any{
		"quantity": stick, "costPrice": 5.0, "sellingPrice": 10.0,
	}))
	require.NoError(t, store.Update(ctx, Collection, "plateKulfi", map[string]any{
		"quantity": plate, "costPrice": 12.0, "sellingPrice": 25.0,
	}))
}

func TestGetMissingProductIsZero(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	record, err := ledger.Get(context.Background(), models.ProductStick)
	require.NoError(t, err)
	assert.Equal(t, models.InventoryRecord{}, record)
}

func TestReplenishAddsQuantityAndUpdatesPrices(t *testing.T) {
	ctx := context.Background()
	ledger, _, store := newTestLedger(t)
	seedWarehouse(t, store, 50, 0)

	price := 12.0
	record, err := ledger.Replenish(ctx, models.ProductStick, "2025-04-28", ReplenishParams{
		Quantity:     40,
		SellingPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, 90, record.Quantity)
	assert.Equal(t, 12.0, record.SellingPrice)
	assert.Equal(t, 5.0, record.CostPrice)
}

func TestWarehousePersistsUnderWarehouseInventory(t *testing.T) {
	ctx := context.Background()
	ledger, _, store := newTestLedger(t)

	_, err := ledger.Replenish(ctx, models.ProductStick, "2025-04-28", ReplenishParams{Quantity: 40})
	require.NoError(t, err)

	// The persisted collection name is part of the data layout; other
	// clients read it by this exact name.
	doc, err := store.Get(ctx, "warehouseInventory", "stickKulfi")
	require.NoError(t, err)
	assert.EqualValues(t, 40, doc["quantity"])
}

func TestReplenishRejectsNonPositiveQuantity(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	_, err := ledger.Replenish(context.Background(), models.ProductStick, "2025-04-28", ReplenishParams{Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestReplenishMirrorsIntoOpenDay(t *testing.T) {
	ctx := context.Background()
	ledger, summaries, store := newTestLedger(t)
	seedWarehouse(t, store, 50, 0)
	require.NoError(t, summaries.CreateDay(ctx, "2025-04-28", models.StockPair{}))

	_, err := ledger.Replenish(ctx, models.ProductStick, "2025-04-28", ReplenishParams{Quantity: 40})
	require.NoError(t, err)

	day, ok, err := summaries.Summary(ctx, "2025-04-28")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 40, day.ReceivedStick)
}

func TestReplenishSkipsSummaryWhenNoDay(t *testing.T) {
	ctx := context.Background()
	ledger, summaries, store := newTestLedger(t)
	seedWarehouse(t, store, 50, 0)

	_, err := ledger.Replenish(ctx, models.ProductStick, "2025-04-28", ReplenishParams{Quantity: 40})
	require.NoError(t, err)

	_, ok, err := summaries.Summary(ctx, "2025-04-28")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransferMovesStockAndOpensCart(t *testing.T) {
	ctx := context.Background()
	ledger, _, store := newTestLedger(t)
	seedWarehouse(t, store, 100, 20)
	require.NoError(t, store.Update(ctx, carts.Collection, "c1", map[string]any{
		"address": "MG Road", "status": models.CartStatusClosed,
		"inventory": map[string]any{"stick": 0, "plate": 0},
	}))

	require.NoError(t, ledger.TransferToCart(ctx, "c1", 30, 5))

	stick, err := ledger.Get(ctx, models.ProductStick)
	require.NoError(t, err)
	assert.Equal(t, 70, stick.Quantity)

	cart, err := store.Get(ctx, carts.Collection, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CartStatusOpen, cart["status"])
	assert.Equal(t, "2025-04-28T09:00:00Z", cart["openedAt"])
	inv := cart["inventory"].(map[string]any)
	assert.EqualValues(t, 30, inv["stick"])
	assert.EqualValues(t, 5, inv["plate"])
}

func TestTransferRejectsOverdraw(t *testing.T) {
	ctx := context.Background()
	ledger, _, store := newTestLedger(t)
	seedWarehouse(t, store, 10, 0)
	require.NoError(t, store.Update(ctx, carts.Collection, "c1", map[string]any{
		"address": "MG Road", "status": models.CartStatusClosed,
		"inventory": map[string]any{"stick": 0, "plate": 0},
	}))

	err := ledger.TransferToCart(ctx, "c1", 30, 0)
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Nothing moved.
	stick, err := ledger.Get(ctx, models.ProductStick)
	require.NoError(t, err)
	assert.Equal(t, 10, stick.Quantity)
}

func TestTransferRejectsEmptyOrNegative(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	require.ErrorIs(t, ledger.TransferToCart(context.Background(), "c1", 0, 0), ErrInvalidQuantity)
	require.ErrorIs(t, ledger.TransferToCart(context.Background(), "c1", -1, 5), ErrInvalidQuantity)
}

func TestTransferToMissingCart(t *testing.T) {
	ctx := context.Background()
	ledger, _, store := newTestLedger(t)
	seedWarehouse(t, store, 10, 0)

	err := ledger.TransferToCart(ctx, "ghost", 5, 0)
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestTransferStampsOpenedAtOnAlreadyOpenCart(t *testing.T) {
	ctx := context.Background()
	ledger, _, store := newTestLedger(t)
	seedWarehouse(t, store, 100, 0)
	require.NoError(t, store.Update(ctx, carts.Collection, "c1", map[string]any{
		"address": "MG Road", "status": models.CartStatusOpen,
		"openedAt":  "2025-04-28T06:00:00Z",
		"inventory": map[string]any{"stick": 10, "plate": 0},
	}))

	require.NoError(t, ledger.TransferToCart(ctx, "c1", 20, 0))

	cart, err := store.Get(ctx, carts.Collection, "c1")
	require.NoError(t, err)
	assert.Equal(t, "2025-04-28T09:00:00Z", cart["openedAt"])
	inv := cart["inventory"].(map[string]any)
	assert.EqualValues(t, 30, inv["stick"])
}

func TestReturnWrites(t *testing.T) {
	warehouse := models.StockPair{
		Stick: models.InventoryRecord{Quantity: 70},
		Plate: models.InventoryRecord{Quantity: 20},
	}

	writes := ReturnWrites(warehouse, 5, 0)
	require.Len(t, writes, 1)
	assert.Equal(t, "stickKulfi", writes[0].ID)
	assert.Equal(t, 75, writes[0].Data["quantity"])
}

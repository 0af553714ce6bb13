package carts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/repository/docstore"
)

var fixedNow = time.Date(2025, 4, 28, 9, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *docstore.MemoryStore) {
	t.Helper()
	store := docstore.NewMemoryStore()
	ledger := NewLedger(store, zap.NewNop())
	ledger.now = func() time.Time { return fixedNow }
	return ledger, store
}

func TestReconcileRepairsStuckOpenCart(t *testing.T) {
	healed, writes := Reconcile([]models.Cart{
		{ID: "c1", Status: models.CartStatusOpen, Inventory: models.CartInventory{}},
	}, fixedNow)

	assert.Equal(t, models.CartStatusClosed, healed[0].Status)
	require.Len(t, writes, 1)
	assert.Equal(t, models.CartStatusClosed, writes[0].Data["status"])
}

func TestReconcileRepairsClosedCartWithStock(t *testing.T) {
	healed, writes := Reconcile([]models.Cart{
		{ID: "c1", Status: models.CartStatusClosed, Inventory: models.CartInventory{Stick: 10}},
	}, fixedNow)

	assert.Equal(t, models.CartStatusOpen, healed[0].Status)
	require.Len(t, writes, 1)
	assert.Equal(t, models.CartStatusOpen, writes[0].Data["status"])
	assert.Equal(t, "2025-04-28T09:00:00Z", writes[0].Data["openedAt"])
}

func TestReconcileKeepsExistingOpenedAt(t *testing.T) {
	_, writes := Reconcile([]models.Cart{
		{ID: "c1", Status: models.CartStatusClosed, OpenedAt: "2025-04-27T08:00:00Z",
			Inventory: models.CartInventory{Plate: 3}},
	}, fixedNow)

	require.Len(t, writes, 1)
	_, hasOpenedAt := writes[0].Data["openedAt"]
	assert.False(t, hasOpenedAt)
}

func TestReconcileLeavesConsistentCartsAlone(t *testing.T) {
	_, writes := Reconcile([]models.Cart{
		{ID: "c1", Status: models.CartStatusOpen, Inventory: models.CartInventory{Stick: 5}},
		{ID: "c2", Status: models.CartStatusClosed},
	}, fixedNow)

	assert.Empty(t, writes)
}

func TestListPersistsRepairs(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	require.NoError(t, store.Update(ctx, Collection, "c1", map[string]any{
		"address": "MG Road",
		"status":  models.CartStatusOpen,
		"inventory": map[string]any{
			"stick": 0, "plate": 0,
		},
	}))

	list, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.CartStatusClosed, list[0].Status)

	doc, err := store.Get(ctx, Collection, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CartStatusClosed, doc["status"])
}

func TestCreateStartsClosedAndEmpty(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t)

	cart, err := ledger.Create(ctx, "Jayanagar 4th Block")
	require.NoError(t, err)
	assert.NotEmpty(t, cart.ID)
	assert.Equal(t, models.CartStatusClosed, cart.Status)
	assert.Equal(t, 0, cart.Inventory.Total())
}

func TestCartsPersistUnderKulfiCarts(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)

	cart, err := ledger.Create(ctx, "MG Road")
	require.NoError(t, err)

	// The persisted collection name is part of the data layout; other
	// clients read it by this exact name.
	doc, err := store.Get(ctx, "kulfiCarts", cart.ID)
	require.NoError(t, err)
	assert.Equal(t, "MG Road", doc["address"])
}

func TestCreateRequiresAddress(t *testing.T) {
	ledger, _ := newTestLedger(t)
	_, err := ledger.Create(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteRefusesOpenCart(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	require.NoError(t, store.Update(ctx, Collection, "c1", map[string]any{
		"address": "MG Road",
		"status":  models.CartStatusOpen,
		"inventory": map[string]any{
			"stick": 5, "plate": 0,
		},
	}))

	require.ErrorIs(t, ledger.Delete(ctx, "c1"), ErrCartOpen)
}

func TestDeleteMissingCart(t *testing.T) {
	ledger, _ := newTestLedger(t)
	require.ErrorIs(t, ledger.Delete(context.Background(), "nope"), docstore.ErrNotFound)
}

func TestUpdateAddress(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t)

	cart, err := ledger.Create(ctx, "MG Road")
	require.NoError(t, err)
	require.NoError(t, ledger.UpdateAddress(ctx, cart.ID, "Brigade Road"))

	got, err := ledger.Get(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brigade Road", got.Address)
}

func TestOpenCartsFiltersFleet(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	require.NoError(t, store.Update(ctx, Collection, "c1", map[string]any{
		"address": "A", "status": models.CartStatusOpen,
		"inventory": map[string]any{"stick": 5, "plate": 0},
	}))
	require.NoError(t, store.Update(ctx, Collection, "c2", map[string]any{
		"address": "B", "status": models.CartStatusClosed,
		"inventory": map[string]any{"stick": 0, "plate": 0},
	}))

	open, err := ledger.OpenCarts(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "c1", open[0].ID)
}

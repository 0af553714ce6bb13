package lifecycle

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
	"github.com/kulfiwala/backend/internal/service/inventory"
	"github.com/kulfiwala/backend/internal/service/summary"
)

type fixture struct {
	store     *docstore.MemoryStore
	summaries *summary.Store
	ctl       *Controller
}

func newFixture(t *testing.T, now time.Time) fixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	log := zap.NewNop()

	summaries := summary.NewStore(store, log)
	warehouse := inventory.NewLedger(store, summaries, log)
	fleet := carts.NewLedger(store, log)
	ctl := NewController(store, summaries, fleet, warehouse, time.UTC, log)
	ctl.now = func() time.Time { return now }
	return fixture{store: store, summaries: summaries, ctl: ctl}
}

func (f fixture) seedWarehouse(t *testing.T, stick int) {
	t.Helper()
	require.NoError(t, f.store.Update(context.Background(), inventory.Collection, "stickKulfi", map[string]any{
		"quantity": stick, "costPrice": 5.0, "sellingPrice": 10.0,
	}))
}

var apr28 = time.Date(2025, 4, 28, 10, 0, 0, 0, time.UTC)

func TestEffectiveDateDefaultsToToday(t *testing.T) {
	f := newFixture(t, apr28)

	date, err := f.ctl.EffectiveDate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-04-28", date)
}

func TestEffectiveDatePicksUnclosedDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, apr28)
	require.NoError(t, f.summaries.CreateDay(ctx, "2025-04-26", models.StockPair{}))

	date, err := f.ctl.EffectiveDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-26", date)
}

func TestEffectiveDateScansEarlierMonths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, apr28)
	require.NoError(t, f.summaries.CreateDay(ctx, "2025-02-14", models.StockPair{}))

	date, err := f.ctl.EffectiveDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-14", date)
}

func TestEffectiveDatePrefersEarliestInMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, apr28)
	require.NoError(t, f.summaries.CreateDay(ctx, "2025-04-25", models.StockPair{}))
	require.NoError(t, f.summaries.CreateDay(ctx, "2025-04-23", models.StockPair{}))

	date, err := f.ctl.EffectiveDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-23", date)
}

func TestStartDayStampsOpeningSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, apr28)
	f.seedWarehouse(t, 100)

	day, err := f.ctl.StartDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-28", day.Date)
	assert.Equal(t, 100, day.OpeningStock.Stick.Quantity)

	stored, ok, err := f.summaries.Summary(ctx, "2025-04-28")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, stored.DayStarted)
}

func TestStartDayRefusesTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, apr28)
	f.seedWarehouse(t, 100)

	_, err := f.ctl.StartDay(ctx)
	require.NoError(t, err)
	_, err = f.ctl.StartDay(ctx)
	require.ErrorIs(t, err, ErrDayAlreadyStarted)
}

func TestStartDayRefusesWithPriorUnclosedDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, apr28)
	require.NoError(t, f.summaries.CreateDay(ctx, "2025-04-27", models.StockPair{}))

	_, err := f.ctl.StartDay(ctx)
	require.ErrorIs(t, err, ErrPriorDayUnclosed)
}

func TestCloseDayHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, apr28)
	f.seedWarehouse(t, 100)
	require.NoError(t, f.store.Update(ctx, carts.Collection, "c1", map[string]any{
		"address": "MG Road", "status": models.CartStatusClosed,
		"openedAt":  "2025-04-28T09:00:00Z",
		"inventory": map[string]any{"stick": 0, "plate": 0},
	}))

	_, err := f.ctl.StartDay(ctx)
	require.NoError(t, err)

	day, err := f.ctl.CloseDay(ctx)
	require.NoError(t, err)
	assert.True(t, day.DayClosed)
	assert.Equal(t, "Day closed successfully", day.Remarks)
	require.NotNil(t, day.ClosingStock)
	assert.Equal(t, 100, day.ClosingStock.Stick.Quantity)

	// Every cart gets the end-of-day timestamp.
	cart, err := f.store.Get(ctx, carts.Collection, "c1")
	require.NoError(t, err)
	assert.Equal(t, "2025-04-28T23:59:00Z", cart["closedAt"])
}

func TestCloseDayRefusesWithOpenCarts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, apr28)
	f.seedWarehouse(t, 100)
	require.NoError(t, f.store.Update(ctx, carts.Collection, "c1", map[string]any{
		"address": "MG Road", "status": models.CartStatusOpen,
		"inventory": map[string]any{"stick": 10, "plate": 0},
	}))

	_, err := f.ctl.StartDay(ctx)
	require.NoError(t, err)

	_, err = f.ctl.CloseDay(ctx)
	require.ErrorIs(t, err, ErrCartsStillOpen)
}

func TestCloseDayRequiresStartedDay(t *testing.T) {
	f := newFixture(t, apr28)

	_, err := f.ctl.CloseDay(context.Background())
	require.ErrorIs(t, err, ErrDayNotStarted)
}

func TestCloseDayClosesBackDatedDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, apr28)
	f.seedWarehouse(t, 100)
	require.NoError(t, f.summaries.CreateDay(ctx, "2025-04-26", models.StockPair{}))

	day, err := f.ctl.CloseDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-26", day.Date)
}

func TestStateReflectsLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, apr28)
	f.seedWarehouse(t, 100)

	state, err := f.ctl.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{Date: "2025-04-28"}, state)

	_, err = f.ctl.StartDay(ctx)
	require.NoError(t, err)

	state, err = f.ctl.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.DayStarted)
	assert.False(t, state.DayClosed)
}

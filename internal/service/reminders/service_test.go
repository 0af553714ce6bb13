package reminders

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

var apr28 = time.Date(2025, 4, 28, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *docstore.MemoryStore) {
	t.Helper()
	store := docstore.NewMemoryStore()
	svc := NewService(store, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return apr28 }
	return svc, store
}

func TestRolloverResetsElapsedPaidCycle(t *testing.T) {
	rolled, writes := Rollover([]models.Reminder{
		{ID: "r1", Frequency: models.FrequencyMonthly, DueDate: "2025-04-01", Paid: true},
	}, apr28)

	assert.False(t, rolled[0].Paid)
	assert.Equal(t, "2025-05-01", rolled[0].DueDate)
	require.Len(t, writes, 1)
	assert.Equal(t, "2025-05-01", writes[0].Data["dueDate"])
	assert.Equal(t, false, writes[0].Data["paid"])
}

func TestRolloverAdvancesRepeatedly(t *testing.T) {
	rolled, _ := Rollover([]models.Reminder{
		{ID: "r1", Frequency: models.FrequencyWeekly, DueDate: "2025-03-03", Paid: true},
	}, apr28)

	// Eight weekly cycles elapsed; the due date lands on or after today.
	assert.Equal(t, "2025-04-28", rolled[0].DueDate)
	assert.False(t, rolled[0].Paid)
}

func TestRolloverLeavesUnpaidAndFutureAlone(t *testing.T) {
	_, writes := Rollover([]models.Reminder{
		{ID: "r1", Frequency: models.FrequencyMonthly, DueDate: "2025-04-01", Paid: false},
		{ID: "r2", Frequency: models.FrequencyMonthly, DueDate: "2025-05-15", Paid: true},
		{ID: "r3", Frequency: models.FrequencyQuarterly, DueDate: "2025-04-28", Paid: true},
	}, apr28)

	assert.Empty(t, writes)
}

func TestListAppliesAndPersistsRollover(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	require.NoError(t, store.Update(ctx, Collection, "r1", map[string]any{
		"title": "Shop rent", "amount": 8000.0,
		"frequency": models.FrequencyMonthly, "dueDate": "2025-04-05", "paid": true,
	}))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-05-05", list[0].DueDate)
	assert.False(t, list[0].Paid)

	doc, err := store.Get(ctx, Collection, "r1")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-05", doc["dueDate"])
}

func TestListSortsByDueDate(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	require.NoError(t, store.Update(ctx, Collection, "r1", map[string]any{
		"title": "Electricity", "frequency": models.FrequencyMonthly, "dueDate": "2025-05-20", "paid": false,
	}))
	require.NoError(t, store.Update(ctx, Collection, "r2", map[string]any{
		"title": "Rent", "frequency": models.FrequencyMonthly, "dueDate": "2025-05-01", "paid": false,
	}))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Rent", list[0].Title)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.Reminder{Frequency: models.FrequencyMonthly, DueDate: "2025-05-01"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, models.Reminder{Title: "Rent", Frequency: "daily", DueDate: "2025-05-01"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, models.Reminder{Title: "Rent", Frequency: models.FrequencyMonthly, DueDate: "1st May"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateAndMarkPaid(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	created, err := svc.Create(ctx, models.Reminder{
		Title: "Supplier dues", Amount: 12000,
		Frequency: models.FrequencyMonthly, DueDate: "2025-05-01",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.Paid)

	require.NoError(t, svc.MarkPaid(ctx, created.ID))
	doc, err := store.Get(ctx, Collection, created.ID)
	require.NoError(t, err)
	assert.Equal(t, true, doc["paid"])
}

func TestMarkPaidMissing(t *testing.T) {
	svc, _ := newTestService(t)
	require.ErrorIs(t, svc.MarkPaid(context.Background(), "nope"), docstore.ErrNotFound)
}

func TestUpdatePartialFields(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	created, err := svc.Create(ctx, models.Reminder{
		Title: "Rent", Amount: 8000, Frequency: models.FrequencyMonthly, DueDate: "2025-05-01",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, created.ID, models.Reminder{Amount: 9000}))

	doc, err := store.Get(ctx, Collection, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 9000, doc["amount"])
	assert.Equal(t, "Rent", doc["title"])
}

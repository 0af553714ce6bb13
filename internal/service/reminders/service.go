// Package reminders manages recurring bill reminders. A paid reminder whose
// cycle has elapsed rolls back to unpaid with the due date advanced, so the
// list always shows the next payment owed. Rollover runs on every read and
// once nightly from the scheduler.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/repository/docstore"
)

// Collection is the reminder collection name.
const Collection = "reminders"

// ErrInvalidInput covers malformed reminder payloads.
var ErrInvalidInput = errors.New("invalid reminder input")

const dateLayout = "2006-01-02"

// Service reads and mutates reminders.
type Service struct {
	db  docstore.Store
	loc *time.Location
	log *zap.Logger
	now func() time.Time
}

// NewService wires the reminder service. Tests override now directly.
func NewService(db docstore.Store, loc *time.Location, log *zap.Logger) *Service {
	return &Service{db: db, loc: loc, log: log.Named("reminders"), now: time.Now}
}

// advance moves a due date forward one cycle.
func advance(due time.Time, frequency string) time.Time {
	switch frequency {
	case models.FrequencyWeekly:
		return due.AddDate(0, 0, 7)
	case models.FrequencyQuarterly:
		return due.AddDate(0, 3, 0)
	default:
		return due.AddDate(0, 1, 0)
	}
}

// Rollover returns the reminders with elapsed paid cycles reset, plus the
// writes persisting the resets. Pure, so the cycle rule is testable with a
// fixed date. Due dates advance repeatedly until they reach today or later.
func Rollover(list []models.Reminder, today time.Time) ([]models.Reminder, []docstore.Write) {
	var writes []docstore.Write
	out := make([]models.Reminder, len(list))
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	for i, r := range list {
		out[i] = r
		if !r.Paid {
			continue
		}
		due, err := time.Parse(dateLayout, r.DueDate)
		if err != nil || !due.Before(day) {
			continue
		}

		for due.Before(day) {
			due = advance(due, r.Frequency)
		}
		out[i].Paid = false
		out[i].DueDate = due.Format(dateLayout)
		writes = append(writes, docstore.Write{
			Collection: Collection,
			ID:         r.ID,
			Data:       map[string]any{"paid": false, "dueDate": out[i].DueDate},
		})
	}
	return out, writes
}

// List returns all reminders with rollovers applied, soonest due first.
func (s *Service) List(ctx context.Context) ([]models.Reminder, error) {
	docs, err := s.db.ReadAll(ctx, Collection)
	if err != nil {
		return nil, err
	}

	list := make([]models.Reminder, 0, len(docs))
	for _, doc := range docs {
		var r models.Reminder
		if err := docstore.Decode(doc, &r); err != nil {
			return nil, fmt.Errorf("decode reminder %s: %w", doc.ID(), err)
		}
		list = append(list, r)
	}

	rolled, writes := Rollover(list, s.now().In(s.loc))
	if len(writes) > 0 {
		s.log.Info("rolling over paid reminders", zap.Int("count", len(writes)))
		if err := docstore.ApplyAll(ctx, s.db, writes); err != nil {
			s.log.Error("could not persist reminder rollover", zap.Error(err))
		}
	}

	sort.Slice(rolled, func(i, j int) bool { return rolled[i].DueDate < rolled[j].DueDate })
	return rolled, nil
}

// RunRollover applies rollovers without returning the list; the nightly
// scheduler job calls it so cycles advance even on days nobody opens the app.
func (s *Service) RunRollover(ctx context.Context) error {
	_, err := s.List(ctx)
	return err
}

// Create adds a reminder.
func (s *Service) Create(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	if r.Title == "" {
		return models.Reminder{}, fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	if r.Amount < 0 {
		return models.Reminder{}, fmt.Errorf("%w: negative amount", ErrInvalidInput)
	}
	if !models.ValidFrequency(r.Frequency) {
		return models.Reminder{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, r.Frequency)
	}
	if _, err := time.Parse(dateLayout, r.DueDate); err != nil {
		return models.Reminder{}, fmt.Errorf("%w: bad due date %q", ErrInvalidInput, r.DueDate)
	}

	r.Paid = false
	r.CreatedAt = s.now().UTC().Format(time.RFC3339)
	data, err := docstore.Encode(r)
	if err != nil {
		return models.Reminder{}, err
	}
	id, err := s.db.Create(ctx, Collection, data)
	if err != nil {
		return models.Reminder{}, err
	}
	r.ID = id

	s.log.Info("created reminder", zap.String("id", id), zap.String("title", r.Title))
	return r, nil
}

// Update edits a reminder's mutable fields.
func (s *Service) Update(ctx context.Context, id string, r models.Reminder) error {
	if _, err := s.db.Get(ctx, Collection, id); err != nil {
		return err
	}
	if r.Frequency != "" && !models.ValidFrequency(r.Frequency) {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, r.Frequency)
	}
	if r.DueDate != "" {
		if _, err := time.Parse(dateLayout, r.DueDate); err != nil {
			return fmt.Errorf("%w: bad due date %q", ErrInvalidInput, r.DueDate)
		}
	}

	data := map[string]any{}
	if r.Title != "" {
		data["title"] = r.Title
	}
	if r.Amount > 0 {
		data["amount"] = r.Amount
	}
	if r.Frequency != "" {
		data["frequency"] = r.Frequency
	}
	if r.DueDate != "" {
		data["dueDate"] = r.DueDate
	}
	if len(data) == 0 {
		return nil
	}
	return s.db.Update(ctx, Collection, id, data)
}

// MarkPaid records the bill as paid for this cycle.
func (s *Service) MarkPaid(ctx context.Context, id string) error {
	if _, err := s.db.Get(ctx, Collection, id); err != nil {
		return err
	}
	return s.db.Update(ctx, Collection, id, map[string]any{"paid": true})
}

// Delete removes a reminder.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Get(ctx, Collection, id); err != nil {
		return err
	}
	return s.db.Delete(ctx, Collection, id)
}

package docstore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// intentCollection records multi-document write sets before they are applied,
// so an interrupted operation is at least detectable on the next startup.
const intentCollection = "opIntents"

// Write is one merge update inside a multi-document write set.
type Write struct {
	Collection string
	ID         string
	Data       map[string]any
}

// ApplyAll dispatches the writes in parallel and returns the first error.
// There is no cross-document transaction; callers that need a durability
// marker use ApplyLogged.
func ApplyAll(ctx context.Context, store Store, writes []Write) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range writes {
		w := w
		g.Go(func() error {
			return store.Update(ctx, w.Collection, w.ID, w.Data)
		})
	}
	return g.Wait()
}

// ApplyLogged records an intent document naming the operation and its
// targets, applies the write set, then marks the intent done. A crash
// between record and mark leaves a pending intent behind for ReportPending.
func ApplyLogged(ctx context.Context, store Store, op string, writes []Write) error {
	targets := make([]any, 0, len(writes))
	for _, w := range writes {
		targets = append(targets, w.Collection+"/"+w.ID)
	}

	intentID, err := store.Create(ctx, intentCollection, map[string]any{
		"op":        op,
		"targets":   targets,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
		"done":      false,
	})
	if err != nil {
		return fmt.Errorf("record intent for %s: %w", op, err)
	}

	if err := ApplyAll(ctx, store, writes); err != nil {
		return err
	}

	if err := store.Update(ctx, intentCollection, intentID, map[string]any{"done": true}); err != nil {
		return fmt.Errorf("mark intent done for %s: %w", op, err)
	}
	return nil
}

// ReportPending logs a warning for every intent that never completed and
// clears finished intents. It is called once at startup; partially applied
// operations are repaired by the ledgers' own self-healing reads, so the log
// line is the operator's cue, not a recovery mechanism.
func ReportPending(ctx context.Context, store Store, log *zap.Logger) {
	docs, err := store.ReadAll(ctx, intentCollection)
	if err != nil {
		log.Warn("could not read operation intents", zap.Error(err))
		return
	}

	for _, doc := range docs {
		done, _ := doc["done"].(bool)
		if done {
			if err := store.Delete(ctx, intentCollection, doc.ID()); err != nil {
				log.Warn("could not clear completed intent", zap.String("id", doc.ID()), zap.Error(err))
			}
			continue
		}
		op, _ := doc["op"].(string)
		log.Warn("found incomplete multi-document operation",
			zap.String("id", doc.ID()),
			zap.String("op", op),
			zap.Any("targets", doc["targets"]))
	}
}

// Package carts owns the cart fleet ledger. Cart status is derived state:
// a cart holding stock should be open, an empty cart should be closed.
// Every list read reconciles the persisted status against that rule and
// repairs drift in place, so a crash mid-operation can never wedge a cart.
package carts

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

// Collection is the cart collection name.
const Collection = "kulfiCarts"

var (
	// ErrCartOpen blocks deleting a cart that is still out selling.
	ErrCartOpen = errors.New("cart is open")
	// ErrInvalidInput covers malformed cart payloads.
	ErrInvalidInput = errors.New("invalid cart input")
)

// Ledger reads and mutates the cart fleet.
type Ledger struct {
	db  docstore.Store
	log *zap.Logger
	now func() time.Time
}

// NewLedger wires the cart ledger. Tests override now directly.
func NewLedger(db docstore.Store, log *zap.Logger) *Ledger {
	return &Ledger{db: db, log: log.Named("carts"), now: time.Now}
}

// Reconcile derives the correct status for each cart and returns the
// repaired list plus the writes needed to persist the repairs. It is pure so
// the healing rule can be tested without a store.
func Reconcile(list []models.Cart, now time.Time) ([]models.Cart, []docstore.Write) {
	var writes []docstore.Write
	out := make([]models.Cart, len(list))
	for i, cart := range list {
		shouldBeOpen := cart.Inventory.Total() > 0
		if shouldBeOpen == cart.IsOpen() {
			out[i] = cart
			continue
		}

		data := map[string]any{}
		if shouldBeOpen {
			cart.Status = models.CartStatusOpen
			data["status"] = models.CartStatusOpen
			if cart.OpenedAt == "" {
				cart.OpenedAt = now.UTC().Format(time.RFC3339)
				data["openedAt"] = cart.OpenedAt
			}
		} else {
			cart.Status = models.CartStatusClosed
			data["status"] = models.CartStatusClosed
		}
		writes = append(writes, docstore.Write{Collection: Collection, ID: cart.ID, Data: data})
		out[i] = cart
	}
	return out, writes
}

// List returns the fleet with statuses reconciled, address-sorted. Repairs
// are persisted before returning; a repair failure is logged and the healed
// view is still served.
func (l *Ledger) List(ctx context.Context) ([]models.Cart, error) {
	docs, err := l.db.ReadAll(ctx, Collection)
	if err != nil {
		return nil, err
	}

	list := make([]models.Cart, 0, len(docs))
	for _, doc := range docs {
		var cart models.Cart
		if err := docstore.Decode(doc, &cart); err != nil {
			return nil, fmt.Errorf("decode cart %s: %w", doc.ID(), err)
		}
		list = append(list, cart)
	}

	healed, writes := Reconcile(list, l.now())
	if len(writes) > 0 {
		l.log.Warn("repairing cart status drift", zap.Int("carts", len(writes)))
		if err := docstore.ApplyAll(ctx, l.db, writes); err != nil {
			l.log.Error("could not persist cart repairs", zap.Error(err))
		}
	}

	sort.Slice(healed, func(i, j int) bool { return healed[i].Address < healed[j].Address })
	return healed, nil
}

// Get fetches one cart without reconciliation.
func (l *Ledger) Get(ctx context.Context, id string) (models.Cart, error) {
	doc, err := l.db.Get(ctx, Collection, id)
	if err != nil {
		return models.Cart{}, err
	}
	var cart models.Cart
	if err := docstore.Decode(doc, &cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// Create adds a new cart, closed and empty.
func (l *Ledger) Create(ctx context.Context, address string) (models.Cart, error) {
	if address == "" {
		return models.Cart{}, fmt.Errorf("%w: address required", ErrInvalidInput)
	}

	cart := models.Cart{
		Address:   address,
		Status:    models.CartStatusClosed,
		Inventory: models.CartInventory{},
	}
	data, err := docstore.Encode(cart)
	if err != nil {
		return models.Cart{}, err
	}
	id, err := l.db.Create(ctx, Collection, data)
	if err != nil {
		return models.Cart{}, err
	}
	cart.ID = id

	l.log.Info("created cart", zap.String("cartId", id), zap.String("address", address))
	return cart, nil
}

// UpdateAddress renames a cart's pitch location.
func (l *Ledger) UpdateAddress(ctx context.Context, id, address string) error {
	if address == "" {
		return fmt.Errorf("%w: address required", ErrInvalidInput)
	}
	if _, err := l.db.Get(ctx, Collection, id); err != nil {
		return err
	}
	return l.db.Update(ctx, Collection, id, map[string]any{"address": address})
}

// Delete removes a cart. Open carts must be closed through the day-out flow
// first so their stock and takings are accounted for.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	cart, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	if cart.IsOpen() || cart.Inventory.Total() > 0 {
		return ErrCartOpen
	}

	l.log.Info("deleting cart", zap.String("cartId", id))
	return l.db.Delete(ctx, Collection, id)
}

// OpenCarts filters the reconciled fleet down to carts currently out.
func (l *Ledger) OpenCarts(ctx context.Context) ([]models.Cart, error) {
	list, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	var open []models.Cart
	for _, cart := range list {
		if cart.IsOpen() {
			open = append(open, cart)
		}
	}
	return open, nil
}

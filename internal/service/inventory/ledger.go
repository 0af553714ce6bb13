// Package inventory owns the warehouse stock ledger: one document per
// product type in the inventory collection, holding quantity and the two
// prices. Warehouse quantity only moves through replenishment, transfer to a
// cart, and the return leg of a cart close.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/repository/docstore"
	"github.com/kulfiwala/backend/internal/service/carts"
	"github.com/kulfiwala/backend/internal/service/summary"
)

// Collection is the warehouse collection name.
const Collection = "warehouseInventory"

var (
	// ErrInsufficientStock means a transfer asked for more than the warehouse holds.
	ErrInsufficientStock = errors.New("insufficient warehouse stock")
	// ErrInvalidQuantity means a quantity was negative or the movement empty.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Ledger coordinates warehouse stock movements.
type Ledger struct {
	db        docstore.Store
	summaries *summary.Store
	log       *zap.Logger
	now       func() time.Time
}

// NewLedger wires the warehouse ledger. Tests override now directly.
func NewLedger(db docstore.Store, summaries *summary.Store, log *zap.Logger) *Ledger {
	return &Ledger{db: db, summaries: summaries, log: log.Named("inventory"), now: time.Now}
}

// Get reads one product's warehouse record. A product that was never
// replenished reads as an all-zero record.
func (l *Ledger) Get(ctx context.Context, product models.ProductType) (models.InventoryRecord, error) {
	doc, err := l.db.Get(ctx, Collection, product.DocID())
	if errors.Is(err, docstore.ErrNotFound) {
		return models.InventoryRecord{}, nil
	}
	if err != nil {
		return models.InventoryRecord{}, err
	}

	var record models.InventoryRecord
	if err := docstore.Decode(doc, &record); err != nil {
		return models.InventoryRecord{}, err
	}
	return record, nil
}

// Snapshot reads both warehouse records, the unit the day lifecycle stamps
// into opening and closing stock.
func (l *Ledger) Snapshot(ctx context.Context) (models.StockPair, error) {
	stick, err := l.Get(ctx, models.ProductStick)
	if err != nil {
		return models.StockPair{}, err
	}
	plate, err := l.Get(ctx, models.ProductPlate)
	if err != nil {
		return models.StockPair{}, err
	}
	return models.StockPair{Stick: stick, Plate: plate}, nil
}

// ReplenishParams is one incoming stock delivery. Nil prices keep the
// current ones.
type ReplenishParams struct {
	Quantity     int
	CostPrice    *float64
	SellingPrice *float64
}

// Replenish adds delivered stock to the warehouse and mirrors the movement
// into the trading day's received counter when the day exists. The summary
// mirror is best-effort: a failure there is logged, not returned, since the
// warehouse ledger already holds the truth.
func (l *Ledger) Replenish(ctx context.Context, product models.ProductType, date string, params ReplenishParams) (models.InventoryRecord, error) {
	if params.Quantity <= 0 {
		return models.InventoryRecord{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidQuantity)
	}

	record, err := l.Get(ctx, product)
	if err != nil {
		return models.InventoryRecord{}, err
	}

	record.Quantity += params.Quantity
	if params.CostPrice != nil {
		record.CostPrice = *params.CostPrice
	}
	if params.SellingPrice != nil {
		record.SellingPrice = *params.SellingPrice
	}

	data, err := docstore.Encode(record)
	if err != nil {
		return models.InventoryRecord{}, err
	}
	if err := l.db.Update(ctx, Collection, product.DocID(), data); err != nil {
		return models.InventoryRecord{}, err
	}

	l.log.Info("replenished warehouse",
		zap.String("product", string(product)),
		zap.Int("quantity", params.Quantity),
		zap.Int("newTotal", record.Quantity))

	if err := l.summaries.AddReceived(ctx, date, product, params.Quantity); err != nil {
		l.log.Warn("could not mirror replenishment into daily summary",
			zap.String("date", date), zap.Error(err))
	}
	return record, nil
}

// TransferToCart moves stock from the warehouse onto a cart and opens it.
// The cart's openedAt is stamped with the current time even if it was
// already open; the latest transfer defines when the cart went out.
func (l *Ledger) TransferToCart(ctx context.Context, cartID string, stick, plate int) error {
	if stick < 0 || plate < 0 {
		return fmt.Errorf("%w: negative transfer", ErrInvalidQuantity)
	}
	if stick+plate == 0 {
		return fmt.Errorf("%w: empty transfer", ErrInvalidQuantity)
	}

	warehouse, err := l.Snapshot(ctx)
	if err != nil {
		return err
	}
	if stick > warehouse.Stick.Quantity {
		return fmt.Errorf("%w: stick has %d, requested %d", ErrInsufficientStock, warehouse.Stick.Quantity, stick)
	}
	if plate > warehouse.Plate.Quantity {
		return fmt.Errorf("%w: plate has %d, requested %d", ErrInsufficientStock, warehouse.Plate.Quantity, plate)
	}

	cartDoc, err := l.db.Get(ctx, carts.Collection, cartID)
	if err != nil {
		return err
	}
	var cart models.Cart
	if err := docstore.Decode(cartDoc, &cart); err != nil {
		return err
	}

	writes := []docstore.Write{
		{Collection: carts.Collection, ID: cartID, Data: map[string]any{
			"inventory.stick": cart.Inventory.Stick + stick,
			"inventory.plate": cart.Inventory.Plate + plate,
			"status":          models.CartStatusOpen,
			"openedAt":        l.now().UTC().Format(time.RFC3339),
		}},
	}
	if stick > 0 {
		writes = append(writes, docstore.Write{
			Collection: Collection, ID: models.ProductStick.DocID(),
			Data: map[string]any{"quantity": warehouse.Stick.Quantity - stick},
		})
	}
	if plate > 0 {
		writes = append(writes, docstore.Write{
			Collection: Collection, ID: models.ProductPlate.DocID(),
			Data: map[string]any{"quantity": warehouse.Plate.Quantity - plate},
		})
	}

	l.log.Info("transferring stock to cart",
		zap.String("cartId", cartID),
		zap.Int("stick", stick),
		zap.Int("plate", plate))
	return docstore.ApplyLogged(ctx, l.db, "transferToCart", writes)
}

// ReturnWrites builds the warehouse side of a cart close: unsold pieces kept
// back go into the warehouse counts. The day-out engine folds these into its
// close write set.
func ReturnWrites(warehouse models.StockPair, keptStick, keptPlate int) []docstore.Write {
	var writes []docstore.Write
	if keptStick > 0 {
		writes = append(writes, docstore.Write{
			Collection: Collection, ID: models.ProductStick.DocID(),
			Data: map[string]any{"quantity": warehouse.Stick.Quantity + keptStick},
		})
	}
	if keptPlate > 0 {
		writes = append(writes, docstore.Write{
			Collection: Collection, ID: models.ProductPlate.DocID(),
			Data: map[string]any{"quantity": warehouse.Plate.Quantity + keptPlate},
		})
	}
	return writes
}

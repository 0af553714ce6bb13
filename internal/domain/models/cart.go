package models

// Cart status values as persisted.
const (
	CartStatusOpen   = "open"
	CartStatusClosed = "closed"
)

// CartInventory is the stock a cart currently carries.
type CartInventory struct {
	Stick int `json:"stick"`
	Plate int `json:"plate"`
}

// Total returns the combined piece count across both types.
func (i CartInventory) Total() int {
	return i.Stick + i.Plate
}

// Cart is a mobile selling point. Timestamps are stored as RFC3339 strings,
// matching the persisted layout.
type Cart struct {
	ID        string        `json:"id"`
	Address   string        `json:"address"`
	Status    string        `json:"status"`
	Inventory CartInventory `json:"inventory"`
	OpenedAt  string        `json:"openedAt,omitempty"`
	ClosedAt  string        `json:"closedAt,omitempty"`
}

// IsOpen reports whether the cart is currently out selling.
func (c Cart) IsOpen() bool {
	return c.Status == CartStatusOpen
}

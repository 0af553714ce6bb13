package models

import "fmt"

// ProductType enumerates the two kulfi variants the business sells.
type ProductType string

const (
	ProductStick ProductType = "stick"
	ProductPlate ProductType = "plate"
)

// DocID returns the warehouse document id for the product type
// ("stickKulfi" / "plateKulfi").
func (t ProductType) DocID() string {
	return string(t) + "Kulfi"
}

// ParseProductType validates a product type received over the wire.
func ParseProductType(s string) (ProductType, error) {
	switch ProductType(s) {
	case ProductStick, ProductPlate:
		return ProductType(s), nil
	}
	return "", fmt.Errorf("unknown product type %q", s)
}

// InventoryRecord is the per-type warehouse stock record. The same shape is
// embedded verbatim as the opening/closing snapshot of a daily summary.
type InventoryRecord struct {
	Quantity     int     `json:"quantity"`
	CostPrice    float64 `json:"costPrice"`
	SellingPrice float64 `json:"sellingPrice"`
}

// StockPair groups the two warehouse records, the unit the daily summary
// snapshots operate on.
type StockPair struct {
	Stick InventoryRecord `json:"stick"`
	Plate InventoryRecord `json:"plate"`
}

// Package masterdata serves the read-only reference data consumed by the
// purchase form: the product inventory and the supplier directory.
package masterdata

// Product is an inventory entry with its backend stock-keeping unit.
type Product struct {
	Name  string  `json:"name"`
	Unit  string  `json:"unit"`
	Price float64 `json:"price"`
}

// Supplier is a supplier directory entry.
type Supplier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

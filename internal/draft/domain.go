package draft

import (
	"strconv"
	"strings"
)

// Unit is the measurement unit of a purchase line.
type Unit string

const (
	UnitPiece    Unit = "u"
	UnitKilogram Unit = "kg"
	UnitLiter    Unit = "l"
)

// DefaultUnit is applied to fresh lines and to lines whose product is cleared.
const DefaultUnit = UnitPiece

// ParseUnit returns the matching unit or DefaultUnit for anything unknown.
func ParseUnit(raw string) Unit {
	switch Unit(raw) {
	case UnitPiece, UnitKilogram, UnitLiter:
		return Unit(raw)
	default:
		return DefaultUnit
	}
}

// UnitFromBackend maps stock-keeping units of the inventory backend to the
// units offered on the form.
func UnitFromBackend(raw string) Unit {
	switch raw {
	case "g", "kg":
		return UnitKilogram
	case "ml", "l":
		return UnitLiter
	case "unidades", "u":
		return UnitPiece
	default:
		return UnitPiece
	}
}

// Product is an inventory entry as seen by the form.
type Product struct {
	Name  string  `json:"name"`
	Unit  Unit    `json:"unit"`
	Price float64 `json:"price"`
}

// Catalog resolves product names against the inventory reference data.
type Catalog interface {
	Lookup(name string) (Product, bool)
}

// CatalogIndex is an in-memory Catalog over a point-in-time product snapshot.
// Matching is case-insensitive.
type CatalogIndex struct {
	byName map[string]Product
}

// NewCatalogIndex builds an index from a product snapshot. The first entry
// wins when two names collide case-insensitively.
func NewCatalogIndex(products []Product) *CatalogIndex {
	idx := &CatalogIndex{byName: make(map[string]Product, len(products))}
	for _, p := range products {
		key := strings.ToLower(p.Name)
		if _, ok := idx.byName[key]; !ok {
			idx.byName[key] = p
		}
	}
	return idx
}

// Lookup implements Catalog.
func (c *CatalogIndex) Lookup(name string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	p, ok := c.byName[strings.ToLower(name)]
	return p, ok
}

// SupplierRef identifies a selected supplier on the draft.
type SupplierRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LineItem is one product row of the draft. Total and IsExisting are derived
// and never set independently.
type LineItem struct {
	ID          int64   `json:"id"`
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	Unit        Unit    `json:"unit"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
	IsExisting  bool    `json:"isExisting"`
}

// PurchaseDraft is the in-progress purchase order being composed.
type PurchaseDraft struct {
	Date              string        `json:"date"`
	SelectedSuppliers []SupplierRef `json:"selectedSuppliers"`
	Items             []LineItem    `json:"items"`
}

// Field names a mutable LineItem attribute.
type Field string

const (
	FieldProductName Field = "productName"
	FieldQuantity    Field = "quantity"
	FieldUnit        Field = "unit"
	FieldUnitPrice   Field = "unitPrice"
)

// ParseNumber coerces arbitrary input to a float. Malformed input yields 0,
// never an error; the form treats every numeric field this way.
func ParseNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ParseString coerces arbitrary input to a string; non-strings become empty.
func ParseString(value any) string {
	s, _ := value.(string)
	return s
}

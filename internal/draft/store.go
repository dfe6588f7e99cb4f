package draft

// Store owns the canonical PurchaseDraft. It is the only writer of shared
// state; both presentations read from it and all mutations flow through its
// operations. Operations are synchronous and never fail on malformed input.
type Store struct {
	catalog Catalog
	draft   PurchaseDraft
	nextID  int64
}

// NewStore creates an empty draft backed by the given inventory catalog.
func NewStore(catalog Catalog) *Store {
	return &Store{catalog: catalog, nextID: 1}
}

// SetDate replaces the draft date unconditionally.
func (s *Store) SetDate(value string) {
	s.draft.Date = value
}

// ToggleSupplier adds or removes a supplier selection by id. Checking an
// already-selected id is a no-op; the selection never holds duplicate ids.
func (s *Store) ToggleSupplier(id int64, name string, checked bool) {
	if checked {
		for _, ref := range s.draft.SelectedSuppliers {
			if ref.ID == id {
				return
			}
		}
		s.draft.SelectedSuppliers = append(s.draft.SelectedSuppliers, SupplierRef{ID: id, Name: name})
		return
	}
	kept := s.draft.SelectedSuppliers[:0]
	for _, ref := range s.draft.SelectedSuppliers {
		if ref.ID != id {
			kept = append(kept, ref)
		}
	}
	s.draft.SelectedSuppliers = kept
}

// SetSuppliers replaces the selection wholesale, dropping duplicate ids.
func (s *Store) SetSuppliers(refs []SupplierRef) {
	seen := make(map[int64]struct{}, len(refs))
	next := make([]SupplierRef, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.ID]; ok {
			continue
		}
		seen[ref.ID] = struct{}{}
		next = append(next, ref)
	}
	s.draft.SelectedSuppliers = next
}

// AddItems appends count fresh lines with default values and returns them.
// Count is clamped to [1,100]; non-positive input adds a single line.
func (s *Store) AddItems(count int) []LineItem {
	if count < 1 {
		count = 1
	}
	if count > 100 {
		count = 100
	}
	added := make([]LineItem, 0, count)
	for i := 0; i < count; i++ {
		item := LineItem{
			ID:       s.nextID,
			Quantity: 1,
			Unit:     DefaultUnit,
		}
		s.nextID++
		s.draft.Items = append(s.draft.Items, item)
		added = append(added, item)
	}
	return added
}

// RemoveItem deletes the line with the given id; absent ids are a no-op.
func (s *Store) RemoveItem(id int64) {
	kept := s.draft.Items[:0]
	for _, item := range s.draft.Items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.draft.Items = kept
}

// SetItems replaces the line list wholesale. Totals are recomputed and the id
// counter is advanced past the highest incoming id so fresh ids stay unique.
func (s *Store) SetItems(items []LineItem) {
	next := make([]LineItem, len(items))
	copy(next, items)
	for i := range next {
		next[i].Total = next[i].Quantity * next[i].UnitPrice
		if next[i].ID >= s.nextID {
			s.nextID = next[i].ID + 1
		}
	}
	s.draft.Items = next
}

// UpdateItem applies a single field change to the line with the given id.
// Product-name changes re-derive unit, price and existence from the catalog;
// unit and price edits are ignored while the line tracks an existing product.
func (s *Store) UpdateItem(id int64, field Field, value any) {
	for i := range s.draft.Items {
		if s.draft.Items[i].ID != id {
			continue
		}
		s.applyField(&s.draft.Items[i], field, value)
		return
	}
}

// ApplyUpdates applies a partial update map as delivered by the detached
// surface. Unknown keys are ignored; productName is applied first so that
// derived fields settle before any explicit unit or price in the same batch.
func (s *Store) ApplyUpdates(id int64, updates map[string]any) {
	order := []Field{FieldProductName, FieldUnit, FieldUnitPrice, FieldQuantity}
	for _, field := range order {
		value, ok := updates[string(field)]
		if !ok {
			continue
		}
		s.UpdateItem(id, field, value)
	}
}

func (s *Store) applyField(item *LineItem, field Field, value any) {
	switch field {
	case FieldProductName:
		name := ParseString(value)
		item.ProductName = name
		if product, ok := s.lookup(name); ok {
			item.Unit = product.Unit
			item.UnitPrice = product.Price
			item.IsExisting = true
		} else {
			item.IsExisting = false
			if name == "" {
				item.Unit = DefaultUnit
				item.UnitPrice = 0
			}
		}
	case FieldQuantity:
		item.Quantity = ParseNumber(value)
	case FieldUnit:
		if item.IsExisting {
			return
		}
		item.Unit = ParseUnit(ParseString(value))
		return
	case FieldUnitPrice:
		if item.IsExisting {
			return
		}
		item.UnitPrice = ParseNumber(value)
	default:
		return
	}
	item.Total = item.Quantity * item.UnitPrice
}

func (s *Store) lookup(name string) (Product, bool) {
	if s.catalog == nil || name == "" {
		return Product{}, false
	}
	return s.catalog.Lookup(name)
}

// ComputeTotal sums all line totals.
func (s *Store) ComputeTotal() float64 {
	var sum float64
	for _, item := range s.draft.Items {
		sum += item.Total
	}
	return sum
}

// Reset returns the draft to its empty initial value. The id counter keeps
// counting so line ids are never reused within a store's lifetime.
func (s *Store) Reset() {
	s.draft = PurchaseDraft{}
}

// Snapshot returns a defensive copy of the current draft.
func (s *Store) Snapshot() PurchaseDraft {
	out := PurchaseDraft{Date: s.draft.Date}
	out.SelectedSuppliers = make([]SupplierRef, len(s.draft.SelectedSuppliers))
	copy(out.SelectedSuppliers, s.draft.SelectedSuppliers)
	out.Items = make([]LineItem, len(s.draft.Items))
	copy(out.Items, s.draft.Items)
	return out
}

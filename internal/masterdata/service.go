package masterdata

import (
	"context"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/retailops/formdesk/internal/draft"
)

// Service exposes reference data to form sessions. Product names carry
// Spanish diacritics, so listing uses Spanish-locale collation to keep the
// option order stable and human-sensible.
type Service struct {
	repo     Repository
	collator *collate.Collator
}

// NewService builds the reference-data service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		collator: collate.New(language.Spanish, collate.IgnoreCase),
	}
}

// Products lists the inventory with units mapped to form units, collated by
// name.
func (s *Service) Products(ctx context.Context) ([]draft.Product, error) {
	raw, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]draft.Product, 0, len(raw))
	for _, p := range raw {
		products = append(products, draft.Product{
			Name:  p.Name,
			Unit:  draft.UnitFromBackend(p.Unit),
			Price: p.Price,
		})
	}
	sort.SliceStable(products, func(i, j int) bool {
		return s.collator.CompareString(products[i].Name, products[j].Name) < 0
	})
	return products, nil
}

// Suppliers lists the supplier directory ordered by id.
func (s *Service) Suppliers(ctx context.Context) ([]Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(suppliers, func(i, j int) bool { return suppliers[i].ID < suppliers[j].ID })
	return suppliers, nil
}

package usecase

import (
	"log"
	"sort"

	"github.com/prodscout/backend/internal/domain"
	"github.com/prodscout/backend/internal/pricetext"
)

// Built-in filter defaults, used when configuration provides none.
const (
	defaultMinRating = 4.0
	defaultMaxPrice  = 100.0
	defaultTopLimit  = 5
)

// FilterService applies rating/price thresholds and produces a deterministic
// top-N ranking. It is pure: no I/O, inputs are never mutated.
type FilterService struct {
	defaults domain.FilterCriteria
}

// NewFilterService creates a filter service. Zero or negative default fields
// fall back to the built-in defaults.
func NewFilterService(defaults domain.FilterCriteria) *FilterService {
	if defaults.MinRating <= 0 {
		defaults.MinRating = defaultMinRating
	}
	if defaults.MaxPrice <= 0 {
		defaults.MaxPrice = defaultMaxPrice
	}
	if defaults.Limit <= 0 {
		defaults.Limit = defaultTopLimit
	}

	return &FilterService{defaults: defaults}
}

// Defaults returns the resolved default criteria.
func (s *FilterService) Defaults() domain.FilterCriteria {
	return s.defaults
}

// Resolve fills missing request fields with the configured defaults. The
// filter engine never sees an unset criterion.
func (s *FilterService) Resolve(req *domain.ScrapeRequest) domain.FilterCriteria {
	criteria := s.defaults
	if req == nil {
		return criteria
	}
	if req.MinRating != nil {
		criteria.MinRating = *req.MinRating
	}
	if req.MaxPrice != nil {
		criteria.MaxPrice = *req.MaxPrice
	}
	if req.Limit != nil {
		criteria.Limit = *req.Limit
	}
	return criteria
}

// FilterAndRank keeps products meeting both thresholds, sorts them by rating
// descending with parsed price ascending as tie-break, and truncates to the
// limit. Products whose price cannot be parsed are dropped rather than
// treated as free or infinitely expensive. The sort is stable: equal-rating,
// equal-price records keep their input order.
func (s *FilterService) FilterAndRank(products []domain.Product, criteria domain.FilterCriteria) []domain.Product {
	if len(products) == 0 {
		return []domain.Product{}
	}

	log.Printf("[FILTER] Filtering %d products with minRating=%.1f, maxPrice=%.2f", len(products), criteria.MinRating, criteria.MaxPrice)

	type ranked struct {
		product domain.Product
		price   float64
	}

	kept := make([]ranked, 0, len(products))
	for _, p := range products {
		if p.Rating < criteria.MinRating {
			continue
		}
		price, ok := pricetext.Parse(p.Price)
		if !ok || price > criteria.MaxPrice {
			continue
		}
		kept = append(kept, ranked{product: p, price: price})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].product.Rating != kept[j].product.Rating {
			return kept[i].product.Rating > kept[j].product.Rating
		}
		return kept[i].price < kept[j].price
	})

	if criteria.Limit > 0 && len(kept) > criteria.Limit {
		kept = kept[:criteria.Limit]
	}

	result := make([]domain.Product, 0, len(kept))
	for _, r := range kept {
		result = append(result, r.product)
	}

	log.Printf("[FILTER] Final result: %d top products", len(result))
	return result
}

// Package sampledata provides the always-available fallback product source.
// It serves a static catalog in the same payload shape as the scraping
// backend, so the downstream extract/normalize/filter stages run unchanged
// when the primary backend is unreachable.
package sampledata

import (
	"context"
	"log"
	"strings"

	"github.com/prodscout/backend/internal/domain"
)

// Source is a ProductSource backed by a fixed catalog. It never defers.
type Source struct {
	catalog []map[string]interface{}
}

// NewSource creates a fallback source with the built-in catalog.
func NewSource() *Source {
	return &Source{catalog: sampleCatalog}
}

// Submit filters the catalog by keyword match against product titles and
// wraps the hits in the backend's payload shape. When no title matches, the
// full catalog is returned so the fallback never comes back empty.
func (s *Source) Submit(ctx context.Context, keywords []string) (*domain.SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Printf("[SAMPLE] Serving sample data for keywords: %v", keywords)

	var matched []interface{}
	for _, record := range s.catalog {
		title, _ := record["title"].(string)
		titleLower := strings.ToLower(title)
		for _, kw := range keywords {
			if strings.Contains(titleLower, strings.ToLower(kw)) {
				matched = append(matched, record)
				break
			}
		}
	}

	if len(matched) == 0 {
		matched = make([]interface{}, 0, len(s.catalog))
		for _, record := range s.catalog {
			matched = append(matched, record)
		}
	}

	keyword := "sample"
	if len(keywords) > 0 {
		keyword = keywords[0]
	}

	payload := map[string]interface{}{
		"data": []interface{}{
			map[string]interface{}{
				"keyword": keyword,
				"results": matched,
			},
		},
	}

	return &domain.SubmitResult{Payload: payload}, nil
}

// sampleCatalog holds records shaped exactly like backend result records, so
// the shared normalizer applies.
var sampleCatalog = []map[string]interface{}{
	{
		"title":        "Professional Tap and Die Set - 40 Piece",
		"url":          "https://www.amazon.com/dp/B08CVSLHQD",
		"image":        "https://images-na.ssl-images-amazon.com/images/I/61YVz1vKJZL._AC_SL1500_.jpg",
		"price":        "$45.99",
		"rating":       4.5,
		"review_count": 1234,
		"asin":         "B08CVSLHQD",
		"availability": "In Stock",
	},
	{
		"title":        "Crescent Adjustable Wrench Set",
		"url":          "https://www.amazon.com/dp/B07ZBXXF6H",
		"image":        "https://images-na.ssl-images-amazon.com/images/I/81Yqy5Xs8XL._AC_SL1500_.jpg",
		"price":        "$32.50",
		"rating":       4.3,
		"review_count": 856,
		"asin":         "B07ZBXXF6H",
		"availability": "In Stock",
	},
	{
		"title":        "Precision Tap Wrench with Comfort Grip",
		"url":          "https://www.amazon.com/dp/B00BCP7KHQ",
		"image":        "https://images-na.ssl-images-amazon.com/images/I/71T5R7YyHXL._AC_SL1500_.jpg",
		"price":        "$18.75",
		"rating":       4.7,
		"review_count": 2341,
		"asin":         "B00BCP7KHQ",
		"availability": "In Stock",
	},
}

// Package venues implements the geographic business-listing collaborator
// over the SerpApi local search engine. It answers "where can I buy this
// nearby" lookups; product scraping does not depend on it.
package venues

import (
	"context"
	"fmt"
	"log"
	"strconv"

	g "github.com/serpapi/google-search-results-golang"

	"github.com/prodscout/backend/internal/domain"
)

const defaultQuery = "hardware store"

// Client implements domain.VenueSearcher via SerpApi.
type Client struct {
	apiKey string
	query  string
}

// NewClient creates a venue search client. The query defaults to hardware
// stores, matching the store-locator use case.
func NewClient(apiKey, query string) *Client {
	if query == "" {
		query = defaultQuery
	}
	return &Client{apiKey: apiKey, query: query}
}

// SearchVenues returns up to limit business listings near the location.
func (c *Client) SearchVenues(ctx context.Context, location string, limit int) ([]domain.Venue, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", domain.ErrVenueSearchFailure)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parameter := map[string]string{
		"engine":   "google_local",
		"q":        c.query,
		"location": location,
	}

	search := g.NewGoogleSearch(parameter, c.apiKey)
	data, err := search.GetJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVenueSearchFailure, err)
	}

	results, ok := data["local_results"].([]interface{})
	if !ok {
		log.Printf("[VENUES] No local results for location %q", location)
		return []domain.Venue{}, nil
	}

	venues := make([]domain.Venue, 0, len(results))
	for _, item := range results {
		record, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		venue := domain.Venue{
			Name:        asString(record["title"]),
			Address:     asString(record["address"]),
			Phone:       asString(record["phone"]),
			Rating:      asFloat(record["rating"]),
			ReviewCount: int(asFloat(record["reviews"])),
		}
		if links, ok := record["links"].(map[string]interface{}); ok {
			venue.Link = asString(links["website"])
		}

		// Listings without a name are useless
		if venue.Name == "" {
			continue
		}

		venues = append(venues, venue)
		if limit > 0 && len(venues) >= limit {
			break
		}
	}

	log.Printf("[VENUES] Found %d venues near %q", len(venues), location)
	return venues, nil
}

func asString(value interface{}) string {
	s, _ := value.(string)
	return s
}

func asFloat(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

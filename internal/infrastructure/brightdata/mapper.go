package brightdata

import (
	"log"
	"strconv"
	"strings"

	"github.com/prodscout/backend/internal/domain"
)

// Ordered candidate keys per canonical field. Bright Data result records are
// not schema-stable; the same logical attribute shows up under different
// names depending on dataset version, so each field tries its candidates in
// order and takes the first present, non-null value.
var (
	titleKeys        = []string{"title", "name"}
	linkKeys         = []string{"url", "link", "product_link"}
	imageKeys        = []string{"image", "image_url", "thumbnail", "product_image", "img"}
	priceKeys        = []string{"price", "price_text"}
	ratingKeys       = []string{"rating", "stars"}
	reviewCountKeys  = []string{"review_count", "reviews"}
	externalIDKeys   = []string{"asin", "product_id"}
	availabilityKeys = []string{"availability", "in_stock"}
)

// ExtractRecords walks a raw search payload and returns the flat list of raw
// product records. A payload carrying a snapshot_id marker holds no result
// data and yields nothing; callers must check for the handle before relying
// on extraction, since an empty slice is also valid for zero matches.
//
// The grouping collection lives under "data". Each entry is either a map
// with a nested "results" list, or itself a flat list of records; entries
// matching neither shape are skipped.
func ExtractRecords(payload map[string]interface{}) []map[string]interface{} {
	if payload == nil {
		return nil
	}
	if _, ok := payload["snapshot_id"]; ok {
		return nil
	}

	groups, ok := payload["data"].([]interface{})
	if !ok {
		return nil
	}

	var records []map[string]interface{}
	for _, entry := range groups {
		switch e := entry.(type) {
		case map[string]interface{}:
			results, ok := e["results"].([]interface{})
			if !ok {
				continue
			}
			records = append(records, recordMaps(results)...)
		case []interface{}:
			records = append(records, recordMaps(e)...)
		}
	}

	return records
}

func recordMaps(items []interface{}) []map[string]interface{} {
	var out []map[string]interface{}
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// NormalizeRecord maps one raw record into the canonical Product. Every field
// degrades to a default on bad input except title and link: a record missing
// either is unusable and is discarded (ok == false).
func NormalizeRecord(raw map[string]interface{}) (domain.Product, bool) {
	title := stringField(raw, titleKeys, "")
	link := stringField(raw, linkKeys, "")

	if title == "" || link == "" {
		return domain.Product{}, false
	}

	return domain.Product{
		Title:        title,
		Link:         link,
		Image:        stringField(raw, imageKeys, ""),
		Price:        stringField(raw, priceKeys, ""),
		Rating:       ratingField(raw),
		ReviewCount:  reviewCountField(raw),
		ASIN:         stringField(raw, externalIDKeys, ""),
		Availability: availabilityField(raw),
	}, true
}

// ParseProducts runs extraction and normalization over a full payload.
// Malformed records are skipped individually; one bad item never aborts the
// batch.
func ParseProducts(payload map[string]interface{}) []domain.Product {
	records := ExtractRecords(payload)

	products := make([]domain.Product, 0, len(records))
	skipped := 0
	for _, record := range records {
		product, ok := NormalizeRecord(record)
		if !ok {
			skipped++
			continue
		}
		products = append(products, product)
	}

	if skipped > 0 {
		log.Printf("[BRIGHTDATA] Skipped %d records missing title or link", skipped)
	}

	return products
}

// firstValue returns the first present, non-nil value among the candidate keys
func firstValue(raw map[string]interface{}, keys []string) (interface{}, bool) {
	for _, key := range keys {
		if value, ok := raw[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func stringField(raw map[string]interface{}, keys []string, fallback string) string {
	value, ok := firstValue(raw, keys)
	if !ok {
		return fallback
	}

	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; prices in particular arrive numeric
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fallback
	}
}

// ratingField coerces the rating to a float. Text ratings like "4.5 out of 5
// stars" parse their first whitespace token; anything unparseable is 0.
func ratingField(raw map[string]interface{}) float64 {
	value, ok := firstValue(raw, ratingKeys)
	if !ok {
		return 0
	}

	switch v := value.(type) {
	case float64:
		return v
	case int:
		// records from in-process sources are not JSON round-tripped
		return float64(v)
	case string:
		fields := strings.Fields(v)
		if len(fields) == 0 {
			return 0
		}
		rating, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0
		}
		return rating
	default:
		return 0
	}
}

// reviewCountField coerces the review count to an int. Text counts like
// "1,234 ratings" drop thousands commas and parse the leading token.
func reviewCountField(raw map[string]interface{}) int {
	value, ok := firstValue(raw, reviewCountKeys)
	if !ok {
		return 0
	}

	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		fields := strings.Fields(strings.ReplaceAll(v, ",", ""))
		if len(fields) == 0 {
			return 0
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0
		}
		return count
	default:
		return 0
	}
}

func availabilityField(raw map[string]interface{}) string {
	value, ok := firstValue(raw, availabilityKeys)
	if !ok {
		return "Unknown"
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			return "Unknown"
		}
		return v
	case bool:
		// in_stock arrives as a boolean on some dataset versions
		if v {
			return "In Stock"
		}
		return "Out of Stock"
	default:
		return "Unknown"
	}
}

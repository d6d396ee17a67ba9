package brightdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRecords(t *testing.T) {
	t.Run("snapshot_id marker yields nothing", func(t *testing.T) {
		payload := map[string]interface{}{
			"snapshot_id": "snap_123",
			"data":        []interface{}{map[string]interface{}{"results": []interface{}{}}},
		}
		assert.Empty(t, ExtractRecords(payload))
	})

	t.Run("nested results collections", func(t *testing.T) {
		payload := map[string]interface{}{
			"data": []interface{}{
				map[string]interface{}{
					"keyword": "bulb",
					"results": []interface{}{
						map[string]interface{}{"title": "A"},
						map[string]interface{}{"title": "B"},
					},
				},
				map[string]interface{}{
					"keyword": "toys",
					"results": []interface{}{
						map[string]interface{}{"title": "C"},
					},
				},
			},
		}

		records := ExtractRecords(payload)
		require.Len(t, records, 3)
		assert.Equal(t, "A", records[0]["title"])
		assert.Equal(t, "C", records[2]["title"])
	})

	t.Run("flat list entries", func(t *testing.T) {
		payload := map[string]interface{}{
			"data": []interface{}{
				[]interface{}{
					map[string]interface{}{"title": "A"},
					map[string]interface{}{"title": "B"},
				},
			},
		}

		assert.Len(t, ExtractRecords(payload), 2)
	})

	t.Run("entries matching neither shape are skipped", func(t *testing.T) {
		payload := map[string]interface{}{
			"data": []interface{}{
				"not a group",
				42.0,
				map[string]interface{}{"keyword": "no results key"},
				map[string]interface{}{
					"results": []interface{}{map[string]interface{}{"title": "A"}},
				},
			},
		}

		records := ExtractRecords(payload)
		require.Len(t, records, 1)
		assert.Equal(t, "A", records[0]["title"])
	})

	t.Run("missing data key", func(t *testing.T) {
		assert.Empty(t, ExtractRecords(map[string]interface{}{"other": 1}))
	})

	t.Run("nil payload", func(t *testing.T) {
		assert.Empty(t, ExtractRecords(nil))
	})
}

func TestNormalizeRecord(t *testing.T) {
	t.Run("empty record is rejected", func(t *testing.T) {
		_, ok := NormalizeRecord(map[string]interface{}{})
		assert.False(t, ok)
	})

	t.Run("minimal record gets defaults", func(t *testing.T) {
		product, ok := NormalizeRecord(map[string]interface{}{
			"title": "X",
			"url":   "Y",
		})

		require.True(t, ok)
		assert.Equal(t, "X", product.Title)
		assert.Equal(t, "Y", product.Link)
		assert.Equal(t, "", product.Image)
		assert.Equal(t, "", product.Price)
		assert.Equal(t, 0.0, product.Rating)
		assert.Equal(t, 0, product.ReviewCount)
		assert.Equal(t, "Unknown", product.Availability)
	})

	t.Run("missing link is rejected", func(t *testing.T) {
		_, ok := NormalizeRecord(map[string]interface{}{"title": "X"})
		assert.False(t, ok)
	})

	t.Run("missing title is rejected", func(t *testing.T) {
		_, ok := NormalizeRecord(map[string]interface{}{"url": "Y"})
		assert.False(t, ok)
	})

	t.Run("fallback keys are tried in order", func(t *testing.T) {
		product, ok := NormalizeRecord(map[string]interface{}{
			"name":         "Fallback Name",
			"product_link": "https://example.com/p",
			"thumbnail":    "https://example.com/t.jpg",
			"price_text":   "$9.99",
			"stars":        4.2,
			"reviews":      17.0,
			"product_id":   "SKU-1",
			"in_stock":     true,
		})

		require.True(t, ok)
		assert.Equal(t, "Fallback Name", product.Title)
		assert.Equal(t, "https://example.com/p", product.Link)
		assert.Equal(t, "https://example.com/t.jpg", product.Image)
		assert.Equal(t, "$9.99", product.Price)
		assert.Equal(t, 4.2, product.Rating)
		assert.Equal(t, 17, product.ReviewCount)
		assert.Equal(t, "SKU-1", product.ASIN)
		assert.Equal(t, "In Stock", product.Availability)
	})

	t.Run("primary keys win over fallbacks", func(t *testing.T) {
		product, ok := NormalizeRecord(map[string]interface{}{
			"title": "Primary",
			"name":  "Secondary",
			"url":   "https://example.com/primary",
			"link":  "https://example.com/secondary",
		})

		require.True(t, ok)
		assert.Equal(t, "Primary", product.Title)
		assert.Equal(t, "https://example.com/primary", product.Link)
	})

	t.Run("text rating parses first token", func(t *testing.T) {
		product, ok := NormalizeRecord(map[string]interface{}{
			"title":  "X",
			"url":    "Y",
			"rating": "4.5 out of 5 stars",
		})

		require.True(t, ok)
		assert.Equal(t, 4.5, product.Rating)
	})

	t.Run("unparseable text rating degrades to zero", func(t *testing.T) {
		product, ok := NormalizeRecord(map[string]interface{}{
			"title":  "X",
			"url":    "Y",
			"rating": "five stars",
		})

		require.True(t, ok)
		assert.Equal(t, 0.0, product.Rating)
	})

	t.Run("text review count strips thousands commas", func(t *testing.T) {
		product, ok := NormalizeRecord(map[string]interface{}{
			"title":        "X",
			"url":          "Y",
			"review_count": "1,234 ratings",
		})

		require.True(t, ok)
		assert.Equal(t, 1234, product.ReviewCount)
	})

	t.Run("boolean out of stock", func(t *testing.T) {
		product, ok := NormalizeRecord(map[string]interface{}{
			"title":    "X",
			"url":      "Y",
			"in_stock": false,
		})

		require.True(t, ok)
		assert.Equal(t, "Out of Stock", product.Availability)
	})

	t.Run("numeric price becomes display string", func(t *testing.T) {
		product, ok := NormalizeRecord(map[string]interface{}{
			"title": "X",
			"url":   "Y",
			"price": 45.99,
		})

		require.True(t, ok)
		assert.Equal(t, "45.99", product.Price)
	})
}

func TestParseProducts(t *testing.T) {
	payload := map[string]interface{}{
		"data": []interface{}{
			map[string]interface{}{
				"keyword": "bulb",
				"results": []interface{}{
					map[string]interface{}{"title": "Good", "url": "https://example.com/1", "rating": 4.5},
					map[string]interface{}{"title": "No Link"},
					map[string]interface{}{"url": "https://example.com/3"},
					map[string]interface{}{"title": "Also Good", "link": "https://example.com/4"},
				},
			},
		},
	}

	products := ParseProducts(payload)

	// Bad records are skipped individually, never aborting the batch
	require.Len(t, products, 2)
	for _, p := range products {
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Link)
	}
}

func TestParseProducts_CountNeverExceedsInput(t *testing.T) {
	records := []interface{}{
		map[string]interface{}{"title": "A", "url": "u1"},
		map[string]interface{}{"title": "B"},
		map[string]interface{}{},
		map[string]interface{}{"name": "C", "link": "u3"},
	}
	payload := map[string]interface{}{
		"data": []interface{}{
			map[string]interface{}{"results": records},
		},
	}

	products := ParseProducts(payload)
	assert.LessOrEqual(t, len(products), len(records))
}

func TestParseProducts_SnapshotMarker(t *testing.T) {
	products := ParseProducts(map[string]interface{}{"snapshot_id": "snap_1"})
	assert.Empty(t, products)
}

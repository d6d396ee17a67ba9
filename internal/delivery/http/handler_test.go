package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/prodscout/backend/config"
	"github.com/prodscout/backend/internal/domain"
	"github.com/prodscout/backend/internal/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeSource answers Submit with a canned result or error.
type fakeSource struct {
	result *domain.SubmitResult
	err    error
}

func (s *fakeSource) Submit(ctx context.Context, keywords []string) (*domain.SubmitResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type fakePoller struct {
	outcome domain.PollOutcome
}

func (p *fakePoller) Poll(ctx context.Context, handle domain.JobHandle) domain.PollOutcome {
	return p.outcome
}

type fakeSnapshots struct {
	payload map[string]interface{}
	err     error
}

func (s *fakeSnapshots) FetchSnapshot(ctx context.Context, handle domain.JobHandle) (map[string]interface{}, error) {
	return s.payload, s.err
}

type fakeVenues struct {
	venues []domain.Venue
	err    error
}

func (v *fakeVenues) SearchVenues(ctx context.Context, location string, limit int) ([]domain.Venue, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.venues, nil
}

func productPayload(titles ...string) map[string]interface{} {
	results := make([]interface{}, 0, len(titles))
	for _, title := range titles {
		results = append(results, map[string]interface{}{
			"title":  title,
			"url":    "https://example.com/" + title,
			"price":  "$10.00",
			"rating": 4.5,
		})
	}
	return map[string]interface{}{
		"data": []interface{}{
			map[string]interface{}{"keyword": "test", "results": results},
		},
	}
}

type routerOptions struct {
	primary   domain.ProductSource
	poller    domain.JobPoller
	snapshots domain.SnapshotFetcher
	venues    domain.VenueSearcher
}

func setupTestRouter(opts routerOptions) *gin.Engine {
	if opts.primary == nil {
		opts.primary = &fakeSource{result: &domain.SubmitResult{Payload: productPayload("widget")}}
	}
	if opts.poller == nil {
		opts.poller = &fakePoller{}
	}
	if opts.snapshots == nil {
		opts.snapshots = &fakeSnapshots{}
	}
	if opts.venues == nil {
		opts.venues = &fakeVenues{}
	}

	fallback := &fakeSource{result: &domain.SubmitResult{Payload: productPayload("sample")}}
	filter := usecase.NewFilterService(domain.FilterCriteria{})
	scraper := usecase.NewScrapeService(opts.primary, fallback, opts.poller, opts.snapshots, filter)
	recommender := usecase.NewRecommendService(scraper, nil)

	handler := NewHandler(scraper, recommender, opts.venues, "http://localhost:8080", true)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"*"},
		},
	}

	return SetupRouter(cfg, handler)
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheckEndpoint(t *testing.T) {
	router := setupTestRouter(routerOptions{})

	w := doJSON(router, "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", response["status"])
	}
	if response["service"] != "prodscout-backend" {
		t.Errorf("service = %v, want prodscout-backend", response["service"])
	}
}

func TestScrapeEndpoint_Success(t *testing.T) {
	router := setupTestRouter(routerOptions{})

	w := doJSON(router, "POST", "/api/v1/scrape", `{"keywords":["widget"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var response domain.ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !response.Success {
		t.Error("success = false, want true")
	}
	if len(response.Products) != 1 || response.Products[0].Title != "widget" {
		t.Errorf("products = %+v, want single widget", response.Products)
	}
	if response.TotalFound != 1 {
		t.Errorf("totalFound = %d, want 1", response.TotalFound)
	}
}

func TestScrapeEndpoint_Deferred(t *testing.T) {
	router := setupTestRouter(routerOptions{
		primary: &fakeSource{result: &domain.SubmitResult{Deferred: true, Handle: domain.JobHandle{ID: "snap_42"}}},
	})

	w := doJSON(router, "POST", "/api/v1/scrape", `{"keywords":["widget"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response domain.ProcessingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Status != "processing" {
		t.Errorf("status = %s, want processing", response.Status)
	}
	if response.SnapshotID != "snap_42" {
		t.Errorf("snapshotId = %s, want snap_42", response.SnapshotID)
	}
	if !strings.Contains(response.FetchURL, "/api/v1/snapshot/snap_42") {
		t.Errorf("fetchUrl = %s, want follow-up reference", response.FetchURL)
	}
}

func TestScrapeEndpoint_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty keywords", `{"keywords":[]}`},
		{"missing keywords", `{}`},
		{"too many keywords", fmt.Sprintf(`{"keywords":[%s]}`, strings.TrimSuffix(strings.Repeat(`"k",`, 11), ","))},
		{"blank keyword", `{"keywords":["ok",""]}`},
		{"rating above five", `{"keywords":["k"],"minRating":5.5}`},
		{"negative rating", `{"keywords":["k"],"minRating":-1}`},
		{"zero max price", `{"keywords":["k"],"maxPrice":0}`},
		{"limit too large", `{"keywords":["k"],"limit":51}`},
		{"zero limit", `{"keywords":["k"],"limit":0}`},
		{"malformed json", `{"keywords":`},
	}

	router := setupTestRouter(routerOptions{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/v1/scrape", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}

			var response domain.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Success {
				t.Error("success = true, want false")
			}
			if response.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestScrapeEndpoint_FallbackOnPrimaryFailure(t *testing.T) {
	router := setupTestRouter(routerOptions{
		primary: &fakeSource{err: errors.New("backend down")},
	})

	w := doJSON(router, "POST", "/api/v1/scrape", `{"keywords":["widget"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (fallback must not surface as failure)", w.Code, http.StatusOK)
	}

	var response domain.ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(response.Products) != 1 || response.Products[0].Title != "sample" {
		t.Errorf("products = %+v, want sample fallback product", response.Products)
	}
}

func TestScrapeWaitEndpoint_PollsInline(t *testing.T) {
	router := setupTestRouter(routerOptions{
		primary: &fakeSource{result: &domain.SubmitResult{Deferred: true, Handle: domain.JobHandle{ID: "snap_1"}}},
		poller:  &fakePoller{outcome: domain.PollOutcome{State: domain.PollReady, Payload: productPayload("polled")}},
	})

	w := doJSON(router, "POST", "/api/v1/scrape/wait", `{"keywords":["widget"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response domain.ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(response.Products) != 1 || response.Products[0].Title != "polled" {
		t.Errorf("products = %+v, want polled product", response.Products)
	}
}

func TestScrapeSimpleEndpoint(t *testing.T) {
	router := setupTestRouter(routerOptions{})

	w := doJSON(router, "POST", "/api/v1/scrape/simple", `["widget"]`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response domain.ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(response.Products) != 1 {
		t.Errorf("products = %d, want 1", len(response.Products))
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	t.Run("ready snapshot runs the full pipeline", func(t *testing.T) {
		router := setupTestRouter(routerOptions{
			snapshots: &fakeSnapshots{payload: productPayload("archived")},
		})

		w := doJSON(router, "GET", "/api/v1/snapshot/snap_7", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		var response domain.ScrapeResponse
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if len(response.Products) != 1 || response.Products[0].Title != "archived" {
			t.Errorf("products = %+v, want archived product", response.Products)
		}
	})

	t.Run("pending snapshot returns 202", func(t *testing.T) {
		router := setupTestRouter(routerOptions{
			snapshots: &fakeSnapshots{err: domain.ErrSnapshotNotReady},
		})

		w := doJSON(router, "GET", "/api/v1/snapshot/snap_7", "")

		if w.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusAccepted)
		}
	})

	t.Run("backend error maps to 502", func(t *testing.T) {
		router := setupTestRouter(routerOptions{
			snapshots: &fakeSnapshots{err: &domain.BackendError{StatusCode: 404, Body: "not found"}},
		})

		w := doJSON(router, "GET", "/api/v1/snapshot/snap_7", "")

		if w.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
		}
	})
}

func TestProductStatsEndpoint(t *testing.T) {
	router := setupTestRouter(routerOptions{})

	w := doJSON(router, "GET", "/api/v1/products/stats", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	filters, ok := response["defaultFilters"].(map[string]interface{})
	if !ok {
		t.Fatalf("defaultFilters missing: %v", response)
	}
	if filters["minRating"] != 4.0 {
		t.Errorf("minRating = %v, want 4.0", filters["minRating"])
	}
	if filters["topLimit"] != 5.0 {
		t.Errorf("topLimit = %v, want 5", filters["topLimit"])
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	router := setupTestRouter(routerOptions{})

	w := doJSON(router, "POST", "/api/v1/recommendations", `{"keywords":["widget"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	recommendation, _ := response["recommendation"].(string)
	if !strings.Contains(recommendation, "widget") {
		t.Errorf("recommendation = %q, want mention of widget", recommendation)
	}
}

func TestStoresSearchEndpoint(t *testing.T) {
	t.Run("returns venues", func(t *testing.T) {
		router := setupTestRouter(routerOptions{
			venues: &fakeVenues{venues: []domain.Venue{{Name: "Ace Hardware", Address: "1 Main St", Rating: 4.6}}},
		})

		w := doJSON(router, "GET", "/api/v1/stores/search?location=Austin", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if response["total"] != 1.0 {
			t.Errorf("total = %v, want 1", response["total"])
		}
	})

	t.Run("missing location is rejected", func(t *testing.T) {
		router := setupTestRouter(routerOptions{})

		w := doJSON(router, "GET", "/api/v1/stores/search", "")

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("search failure maps to 502", func(t *testing.T) {
		router := setupTestRouter(routerOptions{
			venues: &fakeVenues{err: fmt.Errorf("%w: quota", domain.ErrVenueSearchFailure)},
		})

		w := doJSON(router, "GET", "/api/v1/stores/search?location=Austin", "")

		if w.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
		}
	})
}

func TestCORSPreflight(t *testing.T) {
	router := setupTestRouter(routerOptions{})

	req, _ := http.NewRequest("OPTIONS", "/api/v1/scrape", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want echoed origin", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := setupTestRouter(routerOptions{})

	w := doJSON(router, "GET", "/health", "")

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

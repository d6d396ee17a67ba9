package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prodscout/backend/internal/domain"
	"github.com/prodscout/backend/internal/usecase"
)

// Request validation bounds, enforced at this boundary so the core can assume
// validated parameters.
const (
	maxKeywords = 10
	maxLimit    = 50
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scraper       *usecase.ScrapeService
	recommender   *usecase.RecommendService
	venues        domain.VenueSearcher
	publicBaseURL string
	apiConfigured bool
}

// NewHandler creates a new HTTP handler
func NewHandler(scraper *usecase.ScrapeService, recommender *usecase.RecommendService, venues domain.VenueSearcher, publicBaseURL string, apiConfigured bool) *Handler {
	return &Handler{
		scraper:       scraper,
		recommender:   recommender,
		venues:        venues,
		publicBaseURL: publicBaseURL,
		apiConfigured: apiConfigured,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service":          "prodscout-backend",
		"version":          "1.0.0",
		"apiKeyConfigured": h.apiConfigured,
		"timestamp":        time.Now(),
	})
}

// Scrape handles a keyword search. Deferred jobs are surfaced with a handle
// and a follow-up URL instead of blocking on the poll loop.
func (h *Handler) Scrape(c *gin.Context) {
	req, ok := h.bindScrapeRequest(c)
	if !ok {
		return
	}

	result, deferred, err := h.scraper.Scrape(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if deferred != nil {
		c.JSON(http.StatusOK, domain.ProcessingResponse{
			Success:      true,
			Message:      "Scraping job created successfully",
			Status:       "processing",
			SnapshotID:   deferred.Handle.ID,
			FetchURL:     fmt.Sprintf("%s/api/v1/snapshot/%s", h.publicBaseURL, deferred.Handle.ID),
			KeywordsUsed: deferred.KeywordsUsed,
			Timestamp:    time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, scrapeResponse(result))
}

// ScrapeAndWait handles a keyword search with inline polling of deferred jobs.
func (h *Handler) ScrapeAndWait(c *gin.Context) {
	req, ok := h.bindScrapeRequest(c)
	if !ok {
		return
	}

	result, err := h.scraper.ScrapeAndWait(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, scrapeResponse(result))
}

// ScrapeSimple handles a bare keyword list with all-default filters.
func (h *Handler) ScrapeSimple(c *gin.Context) {
	var keywords []string
	if err := c.ShouldBindJSON(&keywords); err != nil {
		h.renderValidationError(c, "request body must be a JSON array of keywords")
		return
	}

	req := &domain.ScrapeRequest{Keywords: keywords}
	if msg, ok := validateScrapeRequest(req); !ok {
		h.renderValidationError(c, msg)
		return
	}

	result, deferred, err := h.scraper.Scrape(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if deferred != nil {
		c.JSON(http.StatusOK, domain.ProcessingResponse{
			Success:      true,
			Message:      "Scraping job created successfully",
			Status:       "processing",
			SnapshotID:   deferred.Handle.ID,
			FetchURL:     fmt.Sprintf("%s/api/v1/snapshot/%s", h.publicBaseURL, deferred.Handle.ID),
			KeywordsUsed: deferred.KeywordsUsed,
			Timestamp:    time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, scrapeResponse(result))
}

// GetSnapshot retrieves the results of a previously deferred job.
func (h *Handler) GetSnapshot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		h.renderValidationError(c, "snapshot id is required")
		return
	}

	result, err := h.scraper.FetchSnapshot(c.Request.Context(), domain.JobHandle{ID: id})
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotReady) {
			c.JSON(http.StatusAccepted, gin.H{
				"success":   true,
				"status":    "processing",
				"message":   "Snapshot is not ready yet, try again later",
				"timestamp": time.Now(),
			})
			return
		}
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, scrapeResponse(result))
}

// ProductStats reports the configured default filters and backend status.
func (h *Handler) ProductStats(c *gin.Context) {
	defaults := h.scraper.Defaults()
	c.JSON(http.StatusOK, gin.H{
		"defaultFilters": gin.H{
			"minRating": defaults.MinRating,
			"maxPrice":  defaults.MaxPrice,
			"topLimit":  defaults.Limit,
		},
		"apiStatus": gin.H{
			"brightdataConfigured": h.apiConfigured,
		},
	})
}

// Recommend scrapes with inline polling and returns free-text shopping advice.
func (h *Handler) Recommend(c *gin.Context) {
	req, ok := h.bindScrapeRequest(c)
	if !ok {
		return
	}

	result, text, err := h.recommender.Recommend(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"recommendation": text,
		"products":       result.Products,
		"totalFound":     result.TotalFound,
		"keywordsUsed":   result.KeywordsUsed,
		"timestamp":      time.Now(),
	})
}

// SearchStores looks up business listings near a location.
func (h *Handler) SearchStores(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		h.renderValidationError(c, "location query parameter is required")
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLimit {
			h.renderValidationError(c, fmt.Sprintf("limit must be an integer in [1, %d]", maxLimit))
			return
		}
		limit = parsed
	}

	venues, err := h.venues.SearchVenues(c.Request.Context(), location, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"venues":    venues,
		"total":     len(venues),
		"location":  location,
		"timestamp": time.Now(),
	})
}

// bindScrapeRequest decodes and validates the request body, rendering the
// validation error itself on failure.
func (h *Handler) bindScrapeRequest(c *gin.Context) (*domain.ScrapeRequest, bool) {
	var req domain.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderValidationError(c, "invalid request body: "+err.Error())
		return nil, false
	}

	if msg, ok := validateScrapeRequest(&req); !ok {
		h.renderValidationError(c, msg)
		return nil, false
	}

	return &req, true
}

// validateScrapeRequest enforces the inbound parameter ranges.
func validateScrapeRequest(req *domain.ScrapeRequest) (string, bool) {
	if len(req.Keywords) == 0 {
		return "keywords list cannot be empty", false
	}
	if len(req.Keywords) > maxKeywords {
		return fmt.Sprintf("maximum %d keywords allowed per request", maxKeywords), false
	}
	for _, kw := range req.Keywords {
		if kw == "" {
			return "keywords must be non-empty strings", false
		}
	}
	if req.MinRating != nil && (*req.MinRating < 0 || *req.MinRating > 5) {
		return "minRating must be between 0 and 5", false
	}
	if req.MaxPrice != nil && *req.MaxPrice <= 0 {
		return "maxPrice must be greater than 0", false
	}
	if req.Limit != nil && (*req.Limit < 1 || *req.Limit > maxLimit) {
		return fmt.Sprintf("limit must be between 1 and %d", maxLimit), false
	}
	return "", true
}

func scrapeResponse(result *domain.ScrapeResult) domain.ScrapeResponse {
	return domain.ScrapeResponse{
		Success:      true,
		Message:      fmt.Sprintf("Successfully scraped and filtered %d products", len(result.Products)),
		Products:     result.Products,
		TotalFound:   result.TotalFound,
		KeywordsUsed: result.KeywordsUsed,
		Timestamp:    time.Now(),
	}
}

func (h *Handler) renderValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, domain.ErrorResponse{
		Success:   false,
		Error:     message,
		Timestamp: time.Now(),
	})
}

// renderError maps classified failures to status codes. Every failure path
// ends in a structured payload; nothing propagates as a bare 500 panic.
func (h *Handler) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var backendErr *domain.BackendError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrJobTimedOut):
		status = http.StatusGatewayTimeout
	case errors.As(err, &backendErr), errors.Is(err, domain.ErrBackendFailure), errors.Is(err, domain.ErrJobFailed):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrVenueSearchFailure):
		status = http.StatusBadGateway
	}

	c.JSON(status, domain.ErrorResponse{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}

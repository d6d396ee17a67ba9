package domain

import "time"

// Product is the canonical representation of a scraped item, independent of
// which raw field names the source used. Title and Link are always non-empty;
// records missing either are discarded during normalization.
type Product struct {
	Title        string  `json:"title"`
	Link         string  `json:"link"`
	Image        string  `json:"image"`
	Price        string  `json:"price"` // original display string, parsed on demand
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"reviewCount"`
	ASIN         string  `json:"asin,omitempty"`
	Availability string  `json:"availability"`
}

// JobHandle identifies an asynchronous scraping job on the backend. It is
// created when the backend defers a search and consumed exactly once by the
// poller or a follow-up retrieval.
type JobHandle struct {
	ID string `json:"id"`
}

// PollState classifies how a polling run ended.
type PollState int

const (
	PollReady PollState = iota
	PollFailed
	PollTimedOut
)

func (s PollState) String() string {
	switch s {
	case PollReady:
		return "ready"
	case PollFailed:
		return "failed"
	case PollTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// PollOutcome is the terminal result of polling a job handle. Payload is set
// only when State is PollReady; Reason carries the backend's failure status
// when State is PollFailed.
type PollOutcome struct {
	State   PollState
	Payload map[string]interface{}
	Reason  string
}

// FilterCriteria holds fully resolved filter parameters. All fields are
// concrete by the time they reach the filter engine; missing request values
// are resolved to configured defaults at the boundary.
type FilterCriteria struct {
	MinRating float64
	MaxPrice  float64
	Limit     int
}

// ScrapeRequest is the inbound search request shape.
type ScrapeRequest struct {
	Keywords  []string `json:"keywords" binding:"required"`
	MinRating *float64 `json:"minRating,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	Limit     *int     `json:"limit,omitempty"`
}

// ScrapeResult is what the orchestrator hands back for a completed scrape.
type ScrapeResult struct {
	Products     []Product
	TotalFound   int
	KeywordsUsed []string
	Source       string // "brightdata" or "sample"
}

// DeferredJob is returned when the backend accepted the search but has not
// produced results yet; the caller retrieves them via a follow-up call.
type DeferredJob struct {
	Handle       JobHandle
	KeywordsUsed []string
}

// ScrapeResponse is the outbound JSON shape for a completed scrape.
type ScrapeResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	Products     []Product `json:"products"`
	TotalFound   int       `json:"totalFound"`
	KeywordsUsed []string  `json:"keywordsUsed"`
	Timestamp    time.Time `json:"timestamp"`
}

// ProcessingResponse is the outbound JSON shape for a deferred job.
type ProcessingResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	SnapshotID   string    `json:"snapshotId"`
	FetchURL     string    `json:"fetchUrl"`
	KeywordsUsed []string  `json:"keywordsUsed"`
	Timestamp    time.Time `json:"timestamp"`
}

// ErrorResponse is the outbound JSON shape for any failure.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Venue is a geographic business listing returned by the store locator.
type Venue struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone,omitempty"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Link        string  `json:"link,omitempty"`
}

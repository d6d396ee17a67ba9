package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrBackendFailure is returned when the primary scraping backend fails
	ErrBackendFailure = errors.New("scraping backend request failed")

	// ErrJobFailed is returned when a scraping job ends in a failure status
	ErrJobFailed = errors.New("scraping job failed")

	// ErrJobTimedOut is returned when the poll attempt ceiling is exhausted
	ErrJobTimedOut = errors.New("timed out waiting for scraping job")

	// ErrSnapshotNotReady is returned when a snapshot is fetched before the job finished
	ErrSnapshotNotReady = errors.New("snapshot is not ready yet")

	// ErrNoResults is returned when both primary and fallback sources produced nothing
	ErrNoResults = errors.New("no products found")

	// ErrTextGenUnavailable is returned when the text-generation collaborator is not configured
	ErrTextGenUnavailable = errors.New("text generation service unavailable")

	// ErrVenueSearchFailure is returned when the business-listing search fails
	ErrVenueSearchFailure = errors.New("venue search request failed")
)

// BackendError carries the status code and response body of a non-success
// reply from the scraping backend.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

func (e *BackendError) Unwrap() error {
	return ErrBackendFailure
}

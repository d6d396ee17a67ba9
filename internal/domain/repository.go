package domain

import "context"

// SubmitResult classifies the backend's reply to a search submission.
// Exactly one of Payload or Handle is meaningful: a handle-bearing reply means
// the backend deferred the job, a handle-free success carries the results
// inline.
type SubmitResult struct {
	Deferred bool
	Handle   JobHandle
	Payload  map[string]interface{}
}

// ProductSource submits a keyword search and classifies the reply.
// Implemented by the primary scraping backend and by the always-available
// sample fallback; both produce payloads of the same shape.
type ProductSource interface {
	Submit(ctx context.Context, keywords []string) (*SubmitResult, error)
}

// SnapshotFetcher retrieves the payload associated with a deferred job.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, handle JobHandle) (map[string]interface{}, error)
}

// JobPoller drives a deferred job to a terminal state.
type JobPoller interface {
	Poll(ctx context.Context, handle JobHandle) PollOutcome
}

// TextGenerator is the opaque text-generation collaborator. It accepts a
// formatted prompt and returns free text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VenueSearcher is the geographic business-listing collaborator.
type VenueSearcher interface {
	SearchVenues(ctx context.Context, location string, limit int) ([]Venue, error)
}

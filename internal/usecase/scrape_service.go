package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prodscout/backend/internal/domain"
	"github.com/prodscout/backend/internal/infrastructure/brightdata"
	"github.com/prodscout/backend/internal/metrics"
)

// Source labels reported on results and metrics.
const (
	sourcePrimary  = "brightdata"
	sourceFallback = "sample"
)

// ScrapeService composes the end-to-end pipeline: submit, optionally poll,
// extract/normalize, filter/rank. When the primary backend fails it falls
// back to the sample data source once; a scrape is never reported as a hard
// failure solely because the primary backend is unavailable.
//
// Each invocation is independent: the service holds no per-request state and
// concurrent scrapes share nothing mutable.
type ScrapeService struct {
	primary   domain.ProductSource
	fallback  domain.ProductSource
	poller    domain.JobPoller
	snapshots domain.SnapshotFetcher
	filter    *FilterService
}

// NewScrapeService wires the orchestrator's dependencies.
func NewScrapeService(
	primary domain.ProductSource,
	fallback domain.ProductSource,
	poller domain.JobPoller,
	snapshots domain.SnapshotFetcher,
	filter *FilterService,
) *ScrapeService {
	return &ScrapeService{
		primary:   primary,
		fallback:  fallback,
		poller:    poller,
		snapshots: snapshots,
		filter:    filter,
	}
}

// Defaults exposes the resolved default filter criteria.
func (s *ScrapeService) Defaults() domain.FilterCriteria {
	return s.filter.Defaults()
}

// Scrape runs the pipeline without inline polling. When the backend defers
// the job, the handle is surfaced to the caller for follow-up retrieval
// instead of blocking this call on the poll loop.
func (s *ScrapeService) Scrape(ctx context.Context, req *domain.ScrapeRequest) (*domain.ScrapeResult, *domain.DeferredJob, error) {
	started := time.Now()
	criteria := s.filter.Resolve(req)

	submitted, err := s.primary.Submit(ctx, req.Keywords)
	if err != nil {
		result, fbErr := s.fallbackScrape(ctx, req, criteria, err)
		if fbErr != nil {
			metrics.RecordScrape(sourceFallback, "error", 0, time.Since(started).Seconds())
			return nil, nil, fbErr
		}
		metrics.RecordScrape(sourceFallback, "success", len(result.Products), time.Since(started).Seconds())
		return result, nil, nil
	}

	if submitted.Deferred {
		log.Printf("[SCRAPE] Job deferred, surfacing handle %s to caller", submitted.Handle.ID)
		metrics.RecordScrape(sourcePrimary, "deferred", 0, time.Since(started).Seconds())
		return nil, &domain.DeferredJob{Handle: submitted.Handle, KeywordsUsed: req.Keywords}, nil
	}

	result := s.buildResult(submitted.Payload, req.Keywords, criteria, sourcePrimary)
	metrics.RecordScrape(sourcePrimary, "success", len(result.Products), time.Since(started).Seconds())
	return result, nil, nil
}

// ScrapeAndWait runs the pipeline and, when the backend defers, polls the job
// inline until a terminal state before continuing. A failed or timed-out job
// falls back to the sample source; a cancelled context aborts without
// producing partial results.
func (s *ScrapeService) ScrapeAndWait(ctx context.Context, req *domain.ScrapeRequest) (*domain.ScrapeResult, error) {
	started := time.Now()
	criteria := s.filter.Resolve(req)

	submitted, err := s.primary.Submit(ctx, req.Keywords)
	if err != nil {
		result, fbErr := s.fallbackScrape(ctx, req, criteria, err)
		if fbErr != nil {
			metrics.RecordScrape(sourceFallback, "error", 0, time.Since(started).Seconds())
			return nil, fbErr
		}
		metrics.RecordScrape(sourceFallback, "success", len(result.Products), time.Since(started).Seconds())
		return result, nil
	}

	payload := submitted.Payload
	if submitted.Deferred {
		outcome := s.poller.Poll(ctx, submitted.Handle)
		if ctx.Err() != nil {
			// Cancelled mid-poll: stop, apply nothing
			metrics.RecordScrape(sourcePrimary, "cancelled", 0, time.Since(started).Seconds())
			return nil, ctx.Err()
		}

		switch outcome.State {
		case domain.PollReady:
			payload = outcome.Payload
		case domain.PollFailed:
			result, fbErr := s.fallbackScrape(ctx, req, criteria, fmt.Errorf("%w: %s", domain.ErrJobFailed, outcome.Reason))
			if fbErr != nil {
				metrics.RecordScrape(sourceFallback, "error", 0, time.Since(started).Seconds())
				return nil, fbErr
			}
			metrics.RecordScrape(sourceFallback, "success", len(result.Products), time.Since(started).Seconds())
			return result, nil
		case domain.PollTimedOut:
			result, fbErr := s.fallbackScrape(ctx, req, criteria, domain.ErrJobTimedOut)
			if fbErr != nil {
				metrics.RecordScrape(sourceFallback, "error", 0, time.Since(started).Seconds())
				return nil, fbErr
			}
			metrics.RecordScrape(sourceFallback, "success", len(result.Products), time.Since(started).Seconds())
			return result, nil
		}
	}

	result := s.buildResult(payload, req.Keywords, criteria, sourcePrimary)
	metrics.RecordScrape(sourcePrimary, "success", len(result.Products), time.Since(started).Seconds())
	return result, nil
}

// FetchSnapshot retrieves a previously deferred job's payload and runs it
// through the same extract/normalize/filter stages as the main path. The
// original keywords are not recoverable from a snapshot, so default criteria
// apply.
func (s *ScrapeService) FetchSnapshot(ctx context.Context, handle domain.JobHandle) (*domain.ScrapeResult, error) {
	payload, err := s.snapshots.FetchSnapshot(ctx, handle)
	if err != nil {
		return nil, err
	}

	return s.buildResult(payload, []string{}, s.filter.Defaults(), sourcePrimary), nil
}

// fallbackScrape handles any classified primary-path failure by running the
// sample source through the same pipeline. Only when the fallback also fails
// does the caller see an aggregated error.
func (s *ScrapeService) fallbackScrape(ctx context.Context, req *domain.ScrapeRequest, criteria domain.FilterCriteria, cause error) (*domain.ScrapeResult, error) {
	log.Printf("[SCRAPE] Primary backend failed (%v), falling back to sample data", cause)
	metrics.FallbacksTotal.Inc()

	submitted, err := s.fallback.Submit(ctx, req.Keywords)
	if err != nil {
		return nil, fmt.Errorf("primary failed (%v); fallback failed: %w", cause, err)
	}

	return s.buildResult(submitted.Payload, req.Keywords, criteria, sourceFallback), nil
}

func (s *ScrapeService) buildResult(payload map[string]interface{}, keywords []string, criteria domain.FilterCriteria, source string) *domain.ScrapeResult {
	all := brightdata.ParseProducts(payload)
	filtered := s.filter.FilterAndRank(all, criteria)

	log.Printf("[SCRAPE] %s: %d products parsed, %d after filtering", source, len(all), len(filtered))

	return &domain.ScrapeResult{
		Products:     filtered,
		TotalFound:   len(all),
		KeywordsUsed: keywords,
		Source:       source,
	}
}

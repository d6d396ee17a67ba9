package brightdata

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prodscout/backend/internal/domain"
	"github.com/prodscout/backend/internal/metrics"
)

const (
	defaultPollMaxAttempts = 30
	defaultPollInterval    = 5 * time.Second
)

// Terminal body statuses reported by the snapshot endpoint.
var (
	readyStatuses  = map[string]bool{"ready": true, "complete": true, "done": true}
	failedStatuses = map[string]bool{"failed": true, "error": true}
)

// StatusQuerier issues a single snapshot status query.
type StatusQuerier interface {
	SnapshotStatus(ctx context.Context, handle domain.JobHandle) (*StatusReply, error)
}

// Poller drives a deferred job to a terminal state: a bounded loop of status
// queries with a fixed inter-attempt delay. Transient query failures are
// swallowed and retried up to the attempt ceiling; the loop always gives up
// eventually.
type Poller struct {
	source      StatusQuerier
	maxAttempts int
	interval    time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a poller with the given attempt ceiling and inter-attempt
// delay. Zero values fall back to the package defaults (30 attempts, 5s).
func NewPoller(source StatusQuerier, maxAttempts int, interval time.Duration) *Poller {
	if maxAttempts <= 0 {
		maxAttempts = defaultPollMaxAttempts
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return &Poller{
		source:      source,
		maxAttempts: maxAttempts,
		interval:    interval,
		sleep:       sleepContext,
	}
}

// Poll queries the job status until it is ready, failed, the context is
// cancelled, or the attempt ceiling is exhausted. The outcome is terminal:
// callers must not poll the same handle again after Failed or TimedOut.
func (p *Poller) Poll(ctx context.Context, handle domain.JobHandle) domain.PollOutcome {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return domain.PollOutcome{State: domain.PollFailed, Reason: ctx.Err().Error()}
		}

		metrics.PollAttemptsTotal.Inc()

		reply, err := p.source.SnapshotStatus(ctx, handle)
		if err != nil {
			if ctx.Err() != nil {
				return domain.PollOutcome{State: domain.PollFailed, Reason: ctx.Err().Error()}
			}
			// Transient faults are swallowed up to the ceiling
			log.Printf("[POLL] Status query error (attempt %d/%d): %v", attempt, p.maxAttempts, err)
			if outcome, stop := p.wait(ctx, attempt); stop {
				return outcome
			}
			continue
		}

		switch {
		case reply.StatusCode == http.StatusOK:
			status, _ := reply.Body["status"].(string)
			if readyStatuses[status] {
				log.Printf("[POLL] Snapshot %s ready after %d attempts", handle.ID, attempt)
				return domain.PollOutcome{State: domain.PollReady, Payload: reply.Body}
			}
			if failedStatuses[status] {
				log.Printf("[POLL] Snapshot %s failed with status %q", handle.ID, status)
				return domain.PollOutcome{State: domain.PollFailed, Reason: status}
			}
			log.Printf("[POLL] Snapshot %s still processing (status %q, attempt %d/%d)", handle.ID, status, attempt, p.maxAttempts)
		case reply.StatusCode == http.StatusAccepted:
			log.Printf("[POLL] Snapshot %s still processing (attempt %d/%d)", handle.ID, attempt, p.maxAttempts)
		default:
			log.Printf("[POLL] Unexpected status %d polling snapshot %s (attempt %d/%d)", reply.StatusCode, handle.ID, attempt, p.maxAttempts)
		}

		if outcome, stop := p.wait(ctx, attempt); stop {
			return outcome
		}
	}

	log.Printf("[POLL] Snapshot %s timed out after %d attempts", handle.ID, p.maxAttempts)
	return domain.PollOutcome{State: domain.PollTimedOut}
}

// wait applies the inter-attempt delay. No delay follows the final attempt.
func (p *Poller) wait(ctx context.Context, attempt int) (domain.PollOutcome, bool) {
	if attempt >= p.maxAttempts {
		return domain.PollOutcome{}, false
	}
	if err := p.sleep(ctx, p.interval); err != nil {
		return domain.PollOutcome{State: domain.PollFailed, Reason: err.Error()}, true
	}
	return domain.PollOutcome{}, false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

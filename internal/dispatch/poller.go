package dispatch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"genesis/internal/domain"
)

// JobStatusSource answers one status observation per call. The music
// client implements it.
type JobStatusSource interface {
	TrackStatus(ctx context.Context, trackID string) (*domain.JobStatus, error)
}

const (
	defaultPollInterval = 3 * time.Second
	defaultPollBudget   = 2 * time.Minute
	defaultPollRetries  = 3
)

type PollerOptions struct {
	Source   JobStatusSource
	Interval time.Duration // delay between status queries
	Budget   time.Duration // total wait before generation_timeout
	Retries  int           // transient-error retries per query
	Logger   zerolog.Logger
}

// Poller drives a processing GenerationResult to a terminal one by
// querying the job status at a fixed interval.
type Poller struct {
	source      JobStatusSource
	interval    time.Duration
	budget      time.Duration
	retries     int
	backoffBase time.Duration
	log         zerolog.Logger
}

func NewPoller(opts PollerOptions) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = defaultPollBudget
	}
	retries := opts.Retries
	if retries < 0 {
		retries = defaultPollRetries
	}
	return &Poller{
		source:      opts.Source,
		interval:    interval,
		budget:      budget,
		retries:     retries,
		backoffBase: time.Second,
		log:         opts.Logger,
	}
}

// Await polls the job behind a processing result until it completes, fails
// or the wait budget runs out. Results that are already terminal come back
// unchanged. The first query happens immediately; caller cancellation stops
// the loop and returns the context error as-is.
func (p *Poller) Await(ctx context.Context, base *domain.GenerationResult) (*domain.GenerationResult, error) {
	if base.Status != domain.StatusProcessing || base.JobID == "" {
		return base, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.budget)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		status, err := p.query(waitCtx, base.JobID)
		if err != nil {
			if waitCtx.Err() != nil {
				return nil, p.expired(ctx, base.JobID)
			}
			return nil, err
		}
		if final, err := p.finalize(base, status); final != nil || err != nil {
			return final, err
		}
		p.log.Debug().
			Str("track_id", base.JobID).
			Str("status", status.RawState).
			Msg("track still processing")

		select {
		case <-waitCtx.Done():
			return nil, p.expired(ctx, base.JobID)
		case <-ticker.C:
		}
	}
}

// query performs one status lookup, retrying transient failures with
// exponential backoff (1s, 2s, 4s). Upstream 4xx answers are hard errors.
func (p *Poller) query(ctx context.Context, trackID string) (*domain.JobStatus, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		status, err := p.source.TrackStatus(ctx, trackID)
		if err == nil {
			return status, nil
		}
		lastErr = err
		if !transient(err) || attempt >= p.retries {
			return nil, lastErr
		}
		backoff := p.backoffBase << attempt
		p.log.Debug().
			Err(err).
			Str("track_id", trackID).
			Dur("backoff", backoff).
			Msg("transient poll failure, retrying")
		if err := sleep(ctx, backoff); err != nil {
			return nil, lastErr
		}
	}
}

// finalize turns a terminal status into the final result. A nil, nil
// return means the job is still in flight.
func (p *Poller) finalize(base *domain.GenerationResult, status *domain.JobStatus) (*domain.GenerationResult, error) {
	switch status.State {
	case domain.JobCompleted:
		if status.ResultURL == "" {
			return nil, domain.Ef(domain.KindMalformedResponse, "track %s completed without an artifact url", base.JobID)
		}
		final := *base
		final.Status = domain.StatusCompleted
		final.Output = status.ResultURL
		final.ProviderStatus = status.RawState
		if status.Title != "" {
			final.Title = status.Title
		}
		return &final, nil
	case domain.JobFailed, domain.JobError:
		return nil, domain.Ef(domain.KindGenerationFailed, "track %s failed upstream (status %s)", base.JobID, status.RawState)
	}
	return nil, nil
}

// expired distinguishes budget expiry from caller cancellation: only the
// former is a generation_timeout, the latter propagates untouched.
func (p *Poller) expired(ctx context.Context, trackID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return domain.Ef(domain.KindGenerationTimeout, "timed out waiting for track %s", trackID)
}

// transient reports whether a status-query failure is worth retrying:
// network errors and upstream 429/5xx are, other upstream 4xx are not.
func transient(err error) bool {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return false
	}
	switch derr.Kind {
	case domain.KindProviderUnavail:
		return true
	case domain.KindProviderError:
		return derr.UpstreamStatus == http.StatusTooManyRequests || derr.UpstreamStatus >= 500
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

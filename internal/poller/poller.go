package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/telun/repodoc/internal/domain"
	"github.com/telun/repodoc/internal/logger"
)

// Clock abstracts time so tests can simulate elapsed time instead of
// sleeping for real.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Config holds the poller's budgets. All of them are configuration, not
// hidden constants.
type Config struct {
	// Interval between polls.
	Interval time.Duration

	// MaxAttempts bounds the number of polls; zero or negative means
	// unbounded (the failsafe still applies).
	MaxAttempts int

	// RequestTimeout bounds each individual poll request.
	RequestTimeout time.Duration

	// Failsafe is a hard wall-clock budget measured from the start of
	// observation, independent of the attempt budget.
	Failsafe time.Duration
}

// Outcome is the definite terminal signal every observation ends with:
// either the job's terminal snapshot, or a timeout advisory. A timeout
// means the poller gave up; it makes no claim about the job itself, which
// may still be running server-side.
type Outcome struct {
	TimedOut bool
	Attempts int
	Progress domain.Progress // last successfully observed snapshot
}

// Poller observes a submitted job to a terminal state by polling the
// progress endpoint. Transient poll failures are absorbed: they consume an
// attempt and the loop retries on the next interval.
type Poller struct {
	client  *resty.Client
	baseURL string
	cfg     Config
	clock   Clock
}

// New creates a Poller against the server at baseURL.
func New(baseURL string, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}

	client := resty.New()
	if cfg.RequestTimeout > 0 {
		client.SetTimeout(cfg.RequestTimeout)
	}

	return &Poller{
		client:  client,
		baseURL: baseURL,
		cfg:     cfg,
		clock:   realClock{},
	}
}

// Poll observes job id until it reaches a terminal state or a budget runs
// out. The returned error is reserved for context cancellation; budget
// exhaustion is reported through Outcome.TimedOut.
func (p *Poller) Poll(ctx context.Context, id string) (Outcome, error) {
	start := p.clock.Now()
	outcome := Outcome{}

	for {
		if p.budgetExhausted(start, outcome.Attempts) {
			outcome.TimedOut = true
			return outcome, nil
		}
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		outcome.Attempts++
		progress, err := p.fetch(ctx, id)
		if err != nil {
			// A failed poll counts toward the budget but does not stop
			// the loop; exhaustion surfaces as a timeout, not an error.
			logger.CtxDebug(ctx, "Poll attempt %d failed: %v", outcome.Attempts, err)
		} else {
			outcome.Progress = *progress
			if progress.Status.Terminal() {
				return outcome, nil
			}
		}

		if p.budgetExhausted(start, outcome.Attempts) {
			outcome.TimedOut = true
			return outcome, nil
		}
		p.clock.Sleep(p.cfg.Interval)
	}
}

func (p *Poller) budgetExhausted(start time.Time, attempts int) bool {
	if p.cfg.MaxAttempts > 0 && attempts >= p.cfg.MaxAttempts {
		return true
	}
	if p.cfg.Failsafe > 0 && p.clock.Now().Sub(start) >= p.cfg.Failsafe {
		return true
	}
	return false
}

func (p *Poller) fetch(ctx context.Context, id string) (*domain.Progress, error) {
	var progress domain.Progress
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&progress).
		Get(fmt.Sprintf("%s/projects/%s/progress", p.baseURL, id))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("progress query returned status %d", resp.StatusCode())
	}
	return &progress, nil
}

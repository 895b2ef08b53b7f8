package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/telun/repodoc/internal/domain"
)

// fakeClock advances its notion of time on every Sleep instead of
// blocking, so budget tests run instantly.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// progressServer serves a scripted sequence of progress responses; the
// last entry repeats once the script runs out.
type progressServer struct {
	mu       sync.Mutex
	script   []func(w http.ResponseWriter)
	requests int
}

func (s *progressServer) handler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	i := s.requests
	s.requests++
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	step := s.script[i]
	s.mu.Unlock()
	step(w)
}

func (s *progressServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func respondProgress(p domain.Progress) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
	}
}

func respondStatus(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(code)
	}
}

func newTestPoller(t *testing.T, srv *progressServer, cfg Config) (*Poller, *fakeClock) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(ts.Close)

	p := New(ts.URL, cfg)
	clock := &fakeClock{now: time.Now()}
	p.clock = clock
	return p, clock
}

func TestPollStopsOnTerminal(t *testing.T) {
	srv := &progressServer{script: []func(w http.ResponseWriter){
		respondProgress(domain.Progress{Status: domain.JobStatusProcessing, Stage: "acquire", Percentage: 20}),
		respondProgress(domain.Progress{Status: domain.JobStatusProcessing, Stage: "generate", Percentage: 70}),
		respondProgress(domain.Progress{Status: domain.JobStatusCompleted, Percentage: 100}),
	}}
	p, _ := newTestPoller(t, srv, Config{Interval: time.Second, MaxAttempts: 10, Failsafe: time.Hour})

	outcome, err := p.Poll(context.Background(), "j1")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if outcome.TimedOut {
		t.Error("outcome reports a timeout for a terminal job")
	}
	if outcome.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", outcome.Attempts)
	}
	if outcome.Progress.Status != domain.JobStatusCompleted || outcome.Progress.Percentage != 100 {
		t.Errorf("final snapshot = %+v", outcome.Progress)
	}
}

func TestPollStopsOnFailed(t *testing.T) {
	srv := &progressServer{script: []func(w http.ResponseWriter){
		respondProgress(domain.Progress{Status: domain.JobStatusFailed, Stage: "acquire", Percentage: 5, Message: "clone exceeded time limit"}),
	}}
	p, _ := newTestPoller(t, srv, Config{Interval: time.Second, MaxAttempts: 10, Failsafe: time.Hour})

	outcome, err := p.Poll(context.Background(), "j1")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if outcome.TimedOut {
		t.Error("outcome reports a timeout for a failed job")
	}
	if outcome.Progress.Status != domain.JobStatusFailed {
		t.Errorf("status = %s, want failed", outcome.Progress.Status)
	}
}

func TestPollAttemptBudget(t *testing.T) {
	srv := &progressServer{script: []func(w http.ResponseWriter){
		respondProgress(domain.Progress{Status: domain.JobStatusProcessing, Stage: "analyze", Percentage: 50}),
	}}
	p, _ := newTestPoller(t, srv, Config{Interval: time.Second, MaxAttempts: 3, Failsafe: time.Hour})

	outcome, err := p.Poll(context.Background(), "j1")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if !outcome.TimedOut {
		t.Error("outcome does not report a timeout after exhausting attempts")
	}
	if outcome.Attempts != 3 {
		t.Errorf("attempts = %d, want exactly 3", outcome.Attempts)
	}
	if srv.count() != 3 {
		t.Errorf("server saw %d requests, want 3", srv.count())
	}
	// The last observed snapshot is still reported alongside the timeout.
	if outcome.Progress.Status != domain.JobStatusProcessing {
		t.Errorf("last snapshot status = %s, want processing", outcome.Progress.Status)
	}
}

func TestPollAbsorbsTransientErrors(t *testing.T) {
	srv := &progressServer{script: []func(w http.ResponseWriter){
		respondStatus(http.StatusInternalServerError),
		respondStatus(http.StatusBadGateway),
		respondProgress(domain.Progress{Status: domain.JobStatusCompleted, Percentage: 100}),
	}}
	p, _ := newTestPoller(t, srv, Config{Interval: time.Second, MaxAttempts: 10, Failsafe: time.Hour})

	outcome, err := p.Poll(context.Background(), "j1")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if outcome.TimedOut {
		t.Error("transient errors were not absorbed")
	}
	if outcome.Attempts != 3 {
		t.Errorf("attempts = %d, want 3 (failed polls still count)", outcome.Attempts)
	}
}

func TestPollErrorOnFinalAttempt(t *testing.T) {
	srv := &progressServer{script: []func(w http.ResponseWriter){
		respondStatus(http.StatusInternalServerError),
	}}
	p, _ := newTestPoller(t, srv, Config{Interval: time.Second, MaxAttempts: 3, Failsafe: time.Hour})

	// Every attempt fails, including the last allowed one. That exhausts
	// the budget as a timeout outcome, never a distinct error.
	outcome, err := p.Poll(context.Background(), "j1")
	if err != nil {
		t.Fatalf("Poll returned an error for exhausted budget: %v", err)
	}
	if !outcome.TimedOut {
		t.Error("outcome does not report a timeout")
	}
	if outcome.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", outcome.Attempts)
	}
	if srv.count() != 3 {
		t.Errorf("server saw %d requests, want 3", srv.count())
	}
	if outcome.Progress.Status != "" {
		t.Errorf("no snapshot was ever observed, got %+v", outcome.Progress)
	}
}

func TestPollFailsafe(t *testing.T) {
	srv := &progressServer{script: []func(w http.ResponseWriter){
		respondProgress(domain.Progress{Status: domain.JobStatusProcessing, Percentage: 50}),
	}}
	// Attempts are plentiful; the wall clock runs out first.
	p, _ := newTestPoller(t, srv, Config{Interval: time.Minute, MaxAttempts: 1000, Failsafe: 5 * time.Minute})

	outcome, err := p.Poll(context.Background(), "j1")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if !outcome.TimedOut {
		t.Error("failsafe did not fire")
	}
	if outcome.Attempts >= 1000 {
		t.Errorf("attempts = %d, failsafe should trip long before the attempt budget", outcome.Attempts)
	}
}

func TestPollContextCancellation(t *testing.T) {
	srv := &progressServer{script: []func(w http.ResponseWriter){
		respondProgress(domain.Progress{Status: domain.JobStatusProcessing, Percentage: 50}),
	}}
	p, _ := newTestPoller(t, srv, Config{Interval: time.Second, MaxAttempts: 1000, Failsafe: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Poll(ctx, "j1")
	if err == nil {
		t.Fatal("Poll ignored a cancelled context")
	}
}

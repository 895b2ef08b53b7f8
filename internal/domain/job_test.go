package domain

import (
	"testing"
	"time"
)

func TestProgressEstimate(t *testing.T) {
	created := time.Now().Add(-10 * time.Second)

	testCases := []struct {
		name       string
		status     JobStatus
		percentage int
		wantEst    bool
	}{
		{"processing midway", JobStatusProcessing, 50, true},
		{"processing early", JobStatusProcessing, 0, false},
		{"queued", JobStatusQueued, 0, false},
		{"completed", JobStatusCompleted, 100, false},
		{"failed", JobStatusFailed, 35, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			job := &Job{
				Status:     tc.status,
				Percentage: tc.percentage,
				CreatedAt:  created,
			}
			p := job.Progress(time.Now())
			if (p.EstimatedSecondsRemaining != nil) != tc.wantEst {
				t.Errorf("estimate present = %v, want %v", p.EstimatedSecondsRemaining != nil, tc.wantEst)
			}
		})
	}
}

func TestProgressTerminalIdempotent(t *testing.T) {
	done := time.Now().UTC()
	job := &Job{
		Status:      JobStatusCompleted,
		Stage:       "finalize",
		StageIndex:  5,
		TotalStages: 5,
		Percentage:  100,
		Message:     "Documentation ready",
		CreatedAt:   done.Add(-time.Minute),
		CompletedAt: &done,
	}

	first := job.Progress(time.Now())
	second := job.Progress(time.Now().Add(time.Hour))
	if first != second {
		t.Errorf("terminal progress snapshots differ: %+v vs %+v", first, second)
	}
}

func TestStatusTerminal(t *testing.T) {
	if JobStatusQueued.Terminal() || JobStatusProcessing.Terminal() {
		t.Error("non-terminal status reported terminal")
	}
	if !JobStatusCompleted.Terminal() || !JobStatusFailed.Terminal() {
		t.Error("terminal status not reported terminal")
	}
}

package domain

import "time"

// JobStatus represents the lifecycle state of a documentation job.
// Values include JobStatusQueued, JobStatusProcessing, JobStatusCompleted, and JobStatusFailed.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is final. A terminal job is never
// mutated again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Generation modes select how documentation text is produced.
const (
	ModeStandard = "standard"
	ModeAI       = "ai"
)

// Submission is the original client request that created a job.
type Submission struct {
	RepoURL     string `json:"repoUrl"`
	ProjectName string `json:"projectName,omitempty"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

// Documentation is the payload produced by a completed job.
type Documentation struct {
	Markdown    string `json:"markdown"`
	GeneratedBy string `json:"generated_by"`
	ArtifactURL string `json:"artifact_url,omitempty"`
}

// Job represents one submitted documentation-generation request and its
// tracked lifecycle. The orchestrator is the only writer; status queries
// read whole-record snapshots.
type Job struct {
	ID          string         `gorm:"type:text;primaryKey" json:"id"`
	Status      JobStatus      `gorm:"type:text;index" json:"status"`
	Stage       string         `json:"stage,omitempty"`
	StageIndex  int            `json:"stage_index"`
	TotalStages int            `json:"total_stages"`
	Percentage  int            `json:"percentage"`
	Message     string         `json:"message"`
	Input       Submission     `gorm:"serializer:json" json:"input"`
	Result      *Documentation `gorm:"serializer:json" json:"result,omitempty"`
	Error       *JobError      `gorm:"serializer:json" json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string {
	return "doc_jobs"
}

// JobSummary is the lightweight listing view of a job. It never carries the
// result payload.
type JobSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the listing view of the job.
func (j *Job) Summary() JobSummary {
	return JobSummary{
		ID:        j.ID,
		Name:      j.Input.ProjectName,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
	}
}

// Progress is the cheap, frequently-pollable subset of a job record.
type Progress struct {
	Status                    JobStatus `json:"status"`
	Stage                     string    `json:"stage,omitempty"`
	StageIndex                int       `json:"stage_index"`
	TotalStages               int       `json:"total_stages"`
	Percentage                int       `json:"percentage"`
	Message                   string    `json:"message"`
	EstimatedSecondsRemaining *int      `json:"estimated_seconds_remaining,omitempty"`
}

// Progress derives the progress snapshot at the given instant. The time
// estimate is a linear extrapolation from elapsed time per percentage point,
// advisory only; it is omitted for terminal jobs and below 5% where the
// extrapolation is noise.
func (j *Job) Progress(now time.Time) Progress {
	p := Progress{
		Status:      j.Status,
		Stage:       j.Stage,
		StageIndex:  j.StageIndex,
		TotalStages: j.TotalStages,
		Percentage:  j.Percentage,
		Message:     j.Message,
	}
	if j.Status == JobStatusProcessing && j.Percentage >= 5 {
		elapsed := now.Sub(j.CreatedAt).Seconds()
		if elapsed > 0 {
			remaining := int(elapsed / float64(j.Percentage) * float64(100-j.Percentage))
			p.EstimatedSecondsRemaining = &remaining
		}
	}
	return p
}

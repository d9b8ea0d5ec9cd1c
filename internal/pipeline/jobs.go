package pipeline

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/papersum/papersum/internal/highlight"
	"github.com/papersum/papersum/internal/summarize"
)

// JobStatus represents the state of a summarization job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusExtracting   JobStatus = "extracting"
	StatusSummarizing  JobStatus = "summarizing"
	StatusAggregating  JobStatus = "aggregating"
	StatusHighlighting JobStatus = "highlighting"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// Result is the completed output of a summarization job.
type Result struct {
	Summary    string                      `json:"summary"`
	Sections   []summarize.SectionSummary  `json:"section_summaries"`
	Highlights []highlight.Mapping         `json:"highlights,omitempty"`
}

// Job tracks the state of a single paper summarization.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Filename string `json:"filename"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	SectionCount int     `json:"section_count"`
	Error        string  `json:"error,omitempty"`
	Result       *Result `json:"result,omitempty"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
}

// NewJob creates a queued job for an uploaded file.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          NewJobID(),
		Filename:    filename,
		Status:      StatusQueued,
		Phase:       "queued",
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed with an error message.
func (j *Job) Fail(phase, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.Phase = phase
	j.Error = msg
	j.UpdatedAt = time.Now()
}

// Complete stores the result and marks the job done.
func (j *Job) Complete(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusCompleted
	j.Phase = "done"
	j.Result = res
	j.UpdatedAt = time.Now()
}

// SetSectionCount records how many sections were found.
func (j *Job) SetSectionCount(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.SectionCount = n
	j.UpdatedAt = time.Now()
}

// LastUpdate returns the time of the most recent state change.
func (j *Job) LastUpdate() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// ReleaseFileData drops the raw bytes once processing no longer needs them.
func (j *Job) ReleaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string    `json:"job_id"`
	Filename     string    `json:"filename"`
	Status       JobStatus `json:"status"`
	Phase        string    `json:"phase"`
	SectionCount int       `json:"section_count"`
	Error        string    `json:"error,omitempty"`
	Result       *Result   `json:"result,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:           j.ID,
		Filename:     j.Filename,
		Status:       j.Status,
		Phase:        j.Phase,
		SectionCount: j.SectionCount,
		Error:        j.Error,
		Result:       j.Result,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.LastUpdate()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// NewJobID returns a random 16-byte hex job identifier.
func NewJobID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

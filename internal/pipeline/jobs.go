package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/paperdigest/internal/digest"
)

// JobStatus represents the state of a summarization job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusChunking    JobStatus = "chunking"
	StatusSummarizing JobStatus = "summarizing"
	StatusExtracting  JobStatus = "extracting"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusCached      JobStatus = "cached"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCached
}

// JobOptions are per-upload overrides.
type JobOptions struct {
	MaxWords    int  `json:"max_words,omitempty"`
	MaxCombined int  `json:"max_combined,omitempty"`
	SkipExtract bool `json:"skip_extract,omitempty"`
}

// Job tracks the state of a single paper.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`
	Options  JobOptions

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData   []byte
	result     *digest.Result
	cachedFrom string
	errors     []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalChunks     int      `json:"total_chunks"`
	ChunksProcessed int      `json:"chunks_processed"`
	Message         string   `json:"message,omitempty"`
	Errors          []string `json:"errors"`
}

// NewJob creates a queued job owning data.
func NewJob(filename, title string, data []byte, opts JobOptions) *Job {
	now := time.Now()
	return &Job{
		ID:          NewID(),
		DocID:       NewID(),
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Title:       title,
		Options:     opts,
		ContentHash: cacheKey(data, opts),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// cacheKey identifies identical work: same bytes under the same overrides.
func cacheKey(data []byte, opts JobOptions) string {
	return digest.ContentHashHex(fmt.Appendf(data[:len(data):len(data)], "\x00%d/%d/%t", opts.MaxWords, opts.MaxCombined, opts.SkipExtract))
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

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// FindCompleted returns a finished job with the given content hash whose
// result can be reused, if any.
func (s *JobStore) FindCompleted(hash, exceptID string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if id == exceptID || job.ContentHash != hash {
			continue
		}
		if job.reusable() {
			return job
		}
	}
	return nil
}

// Cleanup removes expired jobs and returns how many were dropped.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	if status.Done() {
		// The upload is no longer needed once the job is finished.
		j.fileData = nil
	}
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetChunksProcessed records how many chunks have been summarized.
func (j *Job) SetChunksProcessed(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksProcessed = n
	j.UpdatedAt = time.Now()
}

// SetTotalChunks records total chunk count.
func (j *Job) SetTotalChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChunks = n
	j.UpdatedAt = time.Now()
}

// SetMessage records the latest human-readable progress line.
func (j *Job) SetMessage(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Message = msg
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

func (j *Job) setResult(res *digest.Result, cachedFrom string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.cachedFrom = cachedFrom
	if res != nil && j.Title == "" {
		j.Title = res.Title
	}
}

// reusable reports whether the job finished with a result and no recorded
// problems. Degraded output from a failing backend is never shared.
func (j *Job) reusable() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result != nil && len(j.errors) == 0
}

// Result returns the digest once the job completed, or nil.
func (j *Job) Result() *digest.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	DocID      string    `json:"doc_id"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	Filename   string    `json:"filename"`
	Title      string    `json:"title"`
	Progress   Progress  `json:"progress"`
	CachedFrom string    `json:"cached_from,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:       j.ID,
		DocID:    j.DocID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Title:    j.Title,
		Progress: Progress{
			TotalChunks:     j.Progress.TotalChunks,
			ChunksProcessed: j.Progress.ChunksProcessed,
			Message:         j.Progress.Message,
			Errors:          errs,
		},
		CachedFrom: j.cachedFrom,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

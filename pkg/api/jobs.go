package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtnitsch/pmc2md/models"
)

// JobStatus represents the state of a batch conversion.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
)

// Job tracks one batch conversion.
type Job struct {
	mu sync.Mutex

	ID        string
	Status    JobStatus
	Total     int
	Completed int
	Results   []models.ConvertResult
	UpdatedAt time.Time
}

func newJob(total int) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Total:     total,
		UpdatedAt: time.Now(),
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// AddResult records one finished conversion.
func (j *Job) AddResult(r models.ConvertResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Results = append(j.Results, r)
	j.Completed = len(j.Results)
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state. Results stay
// null until the job completes.
type JobSnapshot struct {
	ID        string                 `json:"job_id"`
	Status    JobStatus              `json:"status"`
	Total     int                    `json:"total"`
	Completed int                    `json:"completed_count"`
	Results   []models.ConvertResult `json:"results"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Total:     j.Total,
		Completed: j.Completed,
	}
	if j.Status == StatusCompleted {
		snap.Results = append([]models.ConvertResult{}, j.Results...)
	}
	return snap
}

// JobStore keeps batch jobs in memory.
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

// Cleanup removes completed jobs not updated within the ttl.
func (s *JobStore) Cleanup() {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status == StatusCompleted && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

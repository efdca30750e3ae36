// Package jobs tracks asynchronous run lifecycle in shared memory. State is
// deliberately non-durable: jobs expire after a TTL and a restart forgets
// everything, which the polling contract allows ("not found" and "expired"
// are indistinguishable to callers).
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"dossier/internal/logging"
	"dossier/internal/types"
)

// Store is the in-memory job registry. Mutations replace whole Job records
// under the lock, so Get always hands out a consistent snapshot. Only the
// owning pipeline run mutates a given id; terminal states are sticky.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*types.Job

	ttl       time.Duration
	sweepEach time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewStore creates a store and starts its background sweeper.
func NewStore(ttl, sweepInterval time.Duration) *Store {
	s := &Store{
		jobs:      make(map[string]*types.Job),
		ttl:       ttl,
		sweepEach: sweepInterval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Stop terminates the sweeper. The store stays usable for reads.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}

// Create registers a new job in the accepted state and returns a snapshot.
func (s *Store) Create() types.Job {
	now := time.Now()
	job := &types.Job{
		ID:        uuid.NewString(),
		Status:    types.JobAccepted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	logging.Jobs("job %s created", job.ID)
	return *job
}

// Get returns a snapshot of the job, or false when it does not exist or has
// been swept. Callers must treat both the same way.
func (s *Store) Get(id string) (types.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, found := s.jobs[id]
	if !found {
		return types.Job{}, false
	}
	return *job, true
}

// UpdateStatus moves a live job to a non-terminal status with an optional
// progress label. No-op once the job is terminal or gone.
func (s *Store) UpdateStatus(id string, status types.JobStatus, progress string) {
	s.mutate(id, func(job types.Job) types.Job {
		job.Status = status
		job.Progress = progress
		return job
	})
}

// SetOutput completes the job with its document. Idempotent: a second
// terminal transition leaves the first one in place.
func (s *Store) SetOutput(id string, doc *types.GeneratedDocument) {
	s.mutate(id, func(job types.Job) types.Job {
		job.Status = types.JobComplete
		job.Progress = ""
		job.Output = doc
		job.Error = ""
		return job
	})
	logging.Jobs("job %s complete", id)
}

// SetError fails the job with a terminal error message. Idempotent like
// SetOutput.
func (s *Store) SetError(id string, message string) {
	s.mutate(id, func(job types.Job) types.Job {
		job.Status = types.JobFailed
		job.Progress = ""
		job.Error = message
		return job
	})
	logging.Jobs("job %s failed: %s", id, message)
}

// mutate applies fn to a copy of the record and swaps the whole record in.
// Terminal jobs are never touched.
func (s *Store) mutate(id string, fn func(types.Job) types.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, found := s.jobs[id]
	if !found || current.Status.Terminal() {
		return
	}

	next := fn(*current)
	next.UpdatedAt = time.Now()
	s.jobs[id] = &next
}

func (s *Store) sweepLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.sweepEach)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

// sweep removes jobs older than the TTL regardless of status, to bound
// memory.
func (s *Store) sweep(now time.Time) {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			logging.Jobs("job %s expired (created %s)", id, job.CreatedAt.Format(time.RFC3339))
		}
	}
}

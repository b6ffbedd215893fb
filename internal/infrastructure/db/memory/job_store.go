package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
)

// JobStore is a process-local ports.JobRepository. Every mutation runs under
// a single write lock, which makes the JobID uniqueness check and the status
// compare-and-set atomic.
type JobStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.DispatchJob
	byJobID map[string]string
	ids     *idGenerator
}

var _ ports.JobRepository = (*JobStore)(nil)

func NewJobStore() *JobStore {
	return &JobStore{
		byID:    make(map[string]*domain.DispatchJob),
		byJobID: make(map[string]string),
		ids:     newIDGenerator(),
	}
}

func copyJob(j *domain.DispatchJob) *domain.DispatchJob {
	out := *j
	if j.Driver != nil {
		d := *j.Driver
		out.Driver = &d
	}
	if j.TruckID != nil {
		t := *j.TruckID
		out.TruckID = &t
	}
	return &out
}

func (s *JobStore) Create(_ context.Context, job *domain.DispatchJob) (*domain.DispatchJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byJobID[job.JobID]; exists {
		return nil, domain.ErrDuplicateJob
	}

	stored := copyJob(job)
	stored.ID = s.ids.next()
	s.byID[stored.ID] = stored
	s.byJobID[stored.JobID] = stored.ID
	return copyJob(stored), nil
}

// collect returns matching jobs in id order, which is creation order.
func (s *JobStore) collect(keep func(*domain.DispatchJob) bool) []*domain.DispatchJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.DispatchJob, 0, len(s.byID))
	for _, j := range s.byID {
		if keep(j) {
			out = append(out, copyJob(j))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

func (s *JobStore) ListAll(context.Context) ([]*domain.DispatchJob, error) {
	return s.collect(func(*domain.DispatchJob) bool { return true }), nil
}

func (s *JobStore) ListByDriver(_ context.Context, driverID string) ([]*domain.DispatchJob, error) {
	return s.collect(func(j *domain.DispatchJob) bool { return j.AssignedTo(driverID) }), nil
}

func (s *JobStore) GetByID(_ context.Context, id string) (*domain.DispatchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return copyJob(j), nil
}

func (s *JobStore) UpdateStatus(_ context.Context, id string, from, to domain.JobStatus) (*domain.DispatchJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	if j.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	j.Status = to
	return copyJob(j), nil
}

func (s *JobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.byID[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	delete(s.byJobID, j.JobID)
	delete(s.byID, id)
	return nil
}

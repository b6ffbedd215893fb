package memory

import (
	"context"
	"sync"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
)

// EventStore keeps the job audit trail in append order.
type EventStore struct {
	mu     sync.RWMutex
	events []domain.JobEvent
}

var _ ports.EventRepository = (*EventStore)(nil)

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) InsertEvent(_ context.Context, event *domain.JobEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *EventStore) ListByJob(_ context.Context, jobID string) ([]*domain.JobEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.JobEvent{}
	for i := range s.events {
		if s.events[i].JobID == jobID {
			e := s.events[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/greenroute/dispatch-system/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.JobEvent
	delay  time.Duration
}

func (s *recordingService) Record(_ context.Context, e domain.JobEvent) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingService) byJob(jobID string) []domain.JobEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.JobEvent
	for _, e := range s.events {
		if e.JobID == jobID {
			out = append(out, e)
		}
	}
	return out
}

func TestDispatcher_StopDrainsQueue(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(3, svc, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 30; i++ {
		d.Publish(domain.JobEvent{JobID: fmt.Sprintf("job-%d", i%5), Type: domain.JobEventCreated})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	total := 0
	for i := 0; i < 5; i++ {
		total += len(svc.byJob(fmt.Sprintf("job-%d", i)))
	}
	require.Equal(t, 30, total)
}

func TestDispatcher_PreservesPerJobOrder(t *testing.T) {
	svc := &recordingService{delay: time.Millisecond}
	d := NewDispatcher(4, svc, zerolog.Nop())
	d.Start(context.Background())

	sequence := []domain.JobEventType{domain.JobEventCreated, domain.JobEventStatusChanged, domain.JobEventStatusChanged, domain.JobEventDeleted}
	for _, typ := range sequence {
		d.Publish(domain.JobEvent{JobID: "job-A", Type: typ})
		d.Publish(domain.JobEvent{JobID: "job-B", Type: typ})
	}
	require.NoError(t, d.Stop(context.Background()))

	for _, job := range []string{"job-A", "job-B"} {
		got := svc.byJob(job)
		require.Len(t, got, len(sequence))
		for i, e := range got {
			require.Equal(t, sequence[i], e.Type, "%s event %d", job, i)
		}
	}
}

func TestDispatcher_PublishAfterStopIsDropped(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(1, svc, zerolog.Nop())
	d.Start(context.Background())
	require.NoError(t, d.Stop(context.Background()))

	require.NotPanics(t, func() {
		d.Publish(domain.JobEvent{JobID: "late"})
	})
	require.Empty(t, svc.byJob("late"))

	// a second stop is a no-op
	require.NoError(t, d.Stop(context.Background()))
}

func TestDispatcher_ShardIndexIsDeterministic(t *testing.T) {
	d := NewDispatcher(8, &recordingService{}, zerolog.Nop())
	for _, id := range []string{"a", "job-1", "65f0c0ffee"} {
		first := d.shardIndex(id)
		require.GreaterOrEqual(t, first, 0)
		require.Less(t, first, 8)
		require.Equal(t, first, d.shardIndex(id))
	}
}

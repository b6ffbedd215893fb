package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
	"github.com/greenroute/dispatch-system/internal/pkg/metrics"
)

type eventService struct {
	repo ports.EventRepository
	log  zerolog.Logger
}

// NewEventService returns an EventService that persists job audit events.
func NewEventService(repo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{repo: repo, log: log}
}

// Record persists a single audit event.
func (s *eventService) Record(ctx context.Context, event domain.JobEvent) error {
	start := time.Now()
	if event.Timestamp.IsZero() {
		event.Timestamp = start.UTC()
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		metrics.AuditEventsErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("record event: %w", err)
	}

	metrics.AuditEventsProcessedTotal.WithLabelValues(string(event.Type)).Inc()
	metrics.AuditProcessingDuration.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())

	s.log.Debug().
		Str("job", event.JobID).
		Str("type", string(event.Type)).
		Str("actor", event.ActorID).
		Msg("audit event recorded")
	return nil
}

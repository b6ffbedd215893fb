package ports

import (
	"context"

	"github.com/greenroute/dispatch-system/internal/core/domain"
)

// EventRepository persists the job audit trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.JobEvent) error
	// ListByJob returns the events of a job, oldest first.
	ListByJob(ctx context.Context, jobID string) ([]*domain.JobEvent, error)
}

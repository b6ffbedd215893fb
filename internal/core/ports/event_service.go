package ports

import (
	"context"

	"github.com/greenroute/dispatch-system/internal/core/domain"
)

// EventPublisher hands audit events off without blocking the caller.
type EventPublisher interface {
	Publish(event domain.JobEvent)
}

// EventService records audit events.
type EventService interface {
	Record(ctx context.Context, event domain.JobEvent) error
}

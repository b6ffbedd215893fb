package ports

import (
	"context"
	"time"

	"github.com/greenroute/dispatch-system/internal/core/domain"
)

// JobScope selects which jobs ListJobs returns.
type JobScope string

const (
	ScopeAll JobScope = "all"
	ScopeOwn JobScope = "own"
)

// CreateJobInput carries the caller-supplied fields of a new job.
// ScheduledBy is never taken from input; it comes from the caller.
type CreateJobInput struct {
	JobID         string
	Location      string
	ScheduledTime time.Time
	Driver        *string
	TruckID       *string
}

// JobService defines the dispatch lifecycle operations.
type JobService interface {
	CreateJob(ctx context.Context, caller domain.Principal, input CreateJobInput) (*domain.DispatchJob, error)
	ListJobs(ctx context.Context, caller domain.Principal, scope JobScope) ([]*domain.DispatchJob, error)
	GetJob(ctx context.Context, caller domain.Principal, id string) (*domain.DispatchJob, error)
	UpdateStatus(ctx context.Context, caller domain.Principal, id, status string) (*domain.DispatchJob, error)
	DeleteJob(ctx context.Context, caller domain.Principal, id string) error
	ListJobEvents(ctx context.Context, caller domain.Principal, id string) ([]*domain.JobEvent, error)
}

package ports

import (
	"context"

	"github.com/greenroute/dispatch-system/internal/core/domain"
)

// JobRepository defines persistence operations for dispatch jobs.
// Each call is atomic on its own record.
type JobRepository interface {
	// Create assigns ID and persists the job. Returns domain.ErrDuplicateJob
	// when JobID is taken; the existing job is left untouched.
	Create(ctx context.Context, job *domain.DispatchJob) (*domain.DispatchJob, error)
	ListAll(ctx context.Context) ([]*domain.DispatchJob, error)
	ListByDriver(ctx context.Context, driverID string) ([]*domain.DispatchJob, error)
	GetByID(ctx context.Context, id string) (*domain.DispatchJob, error)
	// UpdateStatus moves the job from one status to another only if its
	// current status still equals from. Returns domain.ErrJobNotFound when
	// the job is absent and domain.ErrInvalidTransition when the status moved.
	UpdateStatus(ctx context.Context, id string, from, to domain.JobStatus) (*domain.DispatchJob, error)
	// Delete removes the job in a single operation; domain.ErrJobNotFound when absent.
	Delete(ctx context.Context, id string) error
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
	"github.com/greenroute/dispatch-system/internal/pkg/metrics"
)

// JobService orchestrates the dispatch job lifecycle: every operation checks
// the caller against the authorization policy before touching the store.
type JobService struct {
	repo          ports.JobRepository
	events        ports.EventRepository
	publisher     ports.EventPublisher
	logger        zerolog.Logger
	scopeToDriver bool
	now           func() time.Time
}

// JobServiceOption customises a JobService.
type JobServiceOption func(*JobService)

// WithDriverScope restricts non-admin GetJob and UpdateStatus to jobs
// assigned to the caller. Jobs assigned to someone else read as not found.
func WithDriverScope(enabled bool) JobServiceOption {
	return func(s *JobService) { s.scopeToDriver = enabled }
}

// WithJobClock overrides the time source for CreatedAt and audit timestamps.
func WithJobClock(now func() time.Time) JobServiceOption {
	return func(s *JobService) { s.now = now }
}

func NewJobService(
	repo ports.JobRepository,
	events ports.EventRepository,
	publisher ports.EventPublisher,
	logger zerolog.Logger,
	opts ...JobServiceOption,
) *JobService {
	s := &JobService{
		repo:      repo,
		events:    events,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// authorize rejects anonymous callers before evaluating the policy, so an
// invalid identity is never reported as Forbidden.
func (s *JobService) authorize(caller domain.Principal, action domain.Action) error {
	if caller.SubjectID == "" || !caller.Role.Valid() {
		return domain.ErrUnauthenticated
	}
	if !domain.Permit(caller.Role, action) {
		metrics.AuthzDeniedTotal.WithLabelValues(string(action)).Inc()
		s.logger.Warn().
			Str("user_id", caller.SubjectID).
			Str("role", caller.Role.String()).
			Str("action", string(action)).
			Msg("action forbidden")
		return fmt.Errorf("%s: %w", action, domain.ErrForbidden)
	}
	return nil
}

func (s *JobService) checkOwner(caller domain.Principal, job *domain.DispatchJob) error {
	if !s.scopeToDriver || caller.Role == domain.RoleAdmin {
		return nil
	}
	if !job.AssignedTo(caller.SubjectID) {
		return fmt.Errorf("job %s not assigned to caller: %w", job.ID, domain.ErrJobNotFound)
	}
	return nil
}

// CreateJob schedules a new job on behalf of caller. The job starts in
// Scheduled and records caller as ScheduledBy.
func (s *JobService) CreateJob(ctx context.Context, caller domain.Principal, input ports.CreateJobInput) (*domain.DispatchJob, error) {
	if err := s.authorize(caller, domain.ActionCreateJob); err != nil {
		return nil, err
	}

	jobID := strings.TrimSpace(input.JobID)
	location := strings.TrimSpace(input.Location)
	switch {
	case jobID == "":
		return nil, fmt.Errorf("%w: job_id is required", domain.ErrInvalidJob)
	case location == "":
		return nil, fmt.Errorf("%w: location is required", domain.ErrInvalidJob)
	case input.ScheduledTime.IsZero():
		return nil, fmt.Errorf("%w: scheduled_time is required", domain.ErrInvalidJob)
	}

	job := &domain.DispatchJob{
		JobID:         jobID,
		ScheduledBy:   caller.SubjectID,
		Location:      location,
		ScheduledTime: input.ScheduledTime.UTC(),
		Driver:        optional(input.Driver),
		TruckID:       optional(input.TruckID),
		Status:        domain.StatusScheduled,
		CreatedAt:     s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	metrics.JobsCreatedTotal.Inc()
	s.publish(domain.JobEvent{
		JobID:    created.ID,
		Type:     domain.JobEventCreated,
		ActorID:  caller.SubjectID,
		ToStatus: created.Status,
	})
	s.logger.Info().Str("id", created.ID).Str("job_id", created.JobID).Str("scheduled_by", caller.SubjectID).Msg("job created")

	return created, nil
}

// ListJobs returns every job (ScopeAll) or the jobs whose driver is the
// caller (ScopeOwn).
func (s *JobService) ListJobs(ctx context.Context, caller domain.Principal, scope ports.JobScope) ([]*domain.DispatchJob, error) {
	switch scope {
	case ports.ScopeAll:
		if err := s.authorize(caller, domain.ActionListAllJobs); err != nil {
			return nil, err
		}
		jobs, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		return jobs, nil
	case ports.ScopeOwn:
		if err := s.authorize(caller, domain.ActionListOwnJobs); err != nil {
			return nil, err
		}
		jobs, err := s.repo.ListByDriver(ctx, caller.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("list own jobs: %w", err)
		}
		return jobs, nil
	default:
		return nil, fmt.Errorf("list jobs: unknown scope %q", scope)
	}
}

func (s *JobService) GetJob(ctx context.Context, caller domain.Principal, id string) (*domain.DispatchJob, error) {
	if err := s.authorize(caller, domain.ActionGetJob); err != nil {
		return nil, err
	}

	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if err := s.checkOwner(caller, job); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateStatus advances a job one step along Scheduled → In Progress →
// Completed. Any other move fails with domain.ErrInvalidTransition.
func (s *JobService) UpdateStatus(ctx context.Context, caller domain.Principal, id, status string) (*domain.DispatchJob, error) {
	if err := s.authorize(caller, domain.ActionUpdateStatus); err != nil {
		return nil, err
	}

	next, err := domain.ParseJobStatus(status)
	if err != nil {
		return nil, err
	}

	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if err := s.checkOwner(caller, job); err != nil {
		return nil, err
	}

	if !job.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("update status: %w (from %s to %s)", domain.ErrInvalidTransition, job.Status, next)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, job.Status, next)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	metrics.JobStatusTransitionsTotal.WithLabelValues(string(job.Status), string(next)).Inc()
	s.publish(domain.JobEvent{
		JobID:      updated.ID,
		Type:       domain.JobEventStatusChanged,
		ActorID:    caller.SubjectID,
		FromStatus: job.Status,
		ToStatus:   next,
	})
	s.logger.Info().
		Str("id", updated.ID).
		Str("from", string(job.Status)).
		Str("to", string(next)).
		Str("user_id", caller.SubjectID).
		Msg("job status updated")

	return updated, nil
}

func (s *JobService) DeleteJob(ctx context.Context, caller domain.Principal, id string) error {
	if err := s.authorize(caller, domain.ActionDeleteJob); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}

	metrics.JobsDeletedTotal.Inc()
	s.publish(domain.JobEvent{
		JobID:   id,
		Type:    domain.JobEventDeleted,
		ActorID: caller.SubjectID,
	})
	s.logger.Info().Str("id", id).Str("user_id", caller.SubjectID).Msg("job deleted")
	return nil
}

// ListJobEvents returns the audit trail of a job, including jobs that have
// since been deleted.
func (s *JobService) ListJobEvents(ctx context.Context, caller domain.Principal, id string) ([]*domain.JobEvent, error) {
	if err := s.authorize(caller, domain.ActionViewJobEvents); err != nil {
		return nil, err
	}

	events, err := s.events.ListByJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list job events: %w", err)
	}
	if len(events) == 0 {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return nil, fmt.Errorf("list job events: %w", err)
		}
	}
	return events, nil
}

func (s *JobService) publish(event domain.JobEvent) {
	event.Timestamp = s.now().UTC()
	s.publisher.Publish(event)
}

// optional drops empty assignment values so they are stored as null.
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

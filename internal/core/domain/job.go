package domain

import (
	"errors"
	"strings"
	"time"
)

// JobStatus represents the lifecycle state of a dispatch job.
type JobStatus string

const (
	StatusScheduled  JobStatus = "Scheduled"
	StatusInProgress JobStatus = "In Progress"
	StatusCompleted  JobStatus = "Completed"
)

// validTransitions defines the forward-only job state machine.
// Completed is terminal.
var validTransitions = map[JobStatus][]JobStatus{
	StatusScheduled:  {StatusInProgress},
	StatusInProgress: {StatusCompleted},
}

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrDuplicateJob      = errors.New("job id already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("invalid job status")
	ErrInvalidJob        = errors.New("invalid job")
)

// ParseJobStatus converts raw input into a JobStatus.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(strings.TrimSpace(s)) {
	case StatusScheduled:
		return StatusScheduled, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// DispatchJob is a unit of scheduled collection work.
// Driver and TruckID stay nil until assigned.
type DispatchJob struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	ScheduledBy   string    `json:"scheduled_by"`
	Location      string    `json:"location"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Driver        *string   `json:"driver"`
	TruckID       *string   `json:"truck_id"`
	Status        JobStatus `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// AssignedTo reports whether the job's driver is the given user.
func (j *DispatchJob) AssignedTo(userID string) bool {
	return j.Driver != nil && *j.Driver == userID
}

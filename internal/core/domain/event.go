package domain

import "time"

// JobEventType classifies an entry in a job's audit trail.
type JobEventType string

const (
	JobEventCreated       JobEventType = "created"
	JobEventStatusChanged JobEventType = "status_changed"
	JobEventDeleted       JobEventType = "deleted"
)

// JobEvent records a single mutation applied to a job.
type JobEvent struct {
	JobID      string       `json:"job_id"`
	Type       JobEventType `json:"type"`
	ActorID    string       `json:"actor_id"`
	FromStatus JobStatus    `json:"from_status,omitempty"`
	ToStatus   JobStatus    `json:"to_status,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

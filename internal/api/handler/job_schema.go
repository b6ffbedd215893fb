package handler

import "time"

// createJobRequest accepts scheduled_time as RFC 3339 or as a local
// "2006-01-02T15:04[:05]" timestamp, which is read as UTC.
type createJobRequest struct {
	JobID         string  `json:"job_id"         validate:"required,notblank,max=128"`
	Location      string  `json:"location"       validate:"required,notblank,max=512"`
	ScheduledTime string  `json:"scheduled_time" validate:"required"`
	Driver        *string `json:"driver"`
	TruckID       *string `json:"truck_id"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,notblank"`
}

type jobResponse struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	ScheduledBy   string    `json:"scheduled_by"`
	Location      string    `json:"location"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Driver        *string   `json:"driver"`
	TruckID       *string   `json:"truck_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type jobEventResponse struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actor_id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type messageResponse struct {
	Message string `json:"message"`
}

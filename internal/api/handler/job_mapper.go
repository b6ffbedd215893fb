package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
)

var scheduledTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseScheduledTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range scheduledTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ValidationError{Fields: []string{fmt.Sprintf("scheduled_time %q is not a valid timestamp", s)}}
}

// --- Request → Service input ---

func toCreateJobInput(req createJobRequest) (ports.CreateJobInput, error) {
	at, err := parseScheduledTime(req.ScheduledTime)
	if err != nil {
		return ports.CreateJobInput{}, err
	}
	return ports.CreateJobInput{
		JobID:         req.JobID,
		Location:      req.Location,
		ScheduledTime: at,
		Driver:        req.Driver,
		TruckID:       req.TruckID,
	}, nil
}

// --- Service result → HTTP response ---

func toJobResponse(j *domain.DispatchJob) jobResponse {
	return jobResponse{
		ID:            j.ID,
		JobID:         j.JobID,
		ScheduledBy:   j.ScheduledBy,
		Location:      j.Location,
		ScheduledTime: j.ScheduledTime.UTC(),
		Driver:        j.Driver,
		TruckID:       j.TruckID,
		Status:        string(j.Status),
		CreatedAt:     j.CreatedAt.UTC(),
	}
}

func toJobListResponse(jobs []*domain.DispatchJob) []jobResponse {
	out := make([]jobResponse, len(jobs))
	for i, j := range jobs {
		out[i] = toJobResponse(j)
	}
	return out
}

func toJobEventsResponse(events []*domain.JobEvent) []jobEventResponse {
	out := make([]jobEventResponse, len(events))
	for i, e := range events {
		out[i] = jobEventResponse{
			Type:       string(e.Type),
			ActorID:    e.ActorID,
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			Timestamp:  e.Timestamp.UTC(),
		}
	}
	return out
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/greenroute/dispatch-system/internal/api/middleware"
	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
)

type stubJobService struct {
	createFn func(ctx context.Context, caller domain.Principal, in ports.CreateJobInput) (*domain.DispatchJob, error)
	listFn   func(ctx context.Context, caller domain.Principal, scope ports.JobScope) ([]*domain.DispatchJob, error)
	getFn    func(ctx context.Context, caller domain.Principal, id string) (*domain.DispatchJob, error)
	updateFn func(ctx context.Context, caller domain.Principal, id, status string) (*domain.DispatchJob, error)
	deleteFn func(ctx context.Context, caller domain.Principal, id string) error
	eventsFn func(ctx context.Context, caller domain.Principal, id string) ([]*domain.JobEvent, error)
}

func (s *stubJobService) CreateJob(ctx context.Context, caller domain.Principal, in ports.CreateJobInput) (*domain.DispatchJob, error) {
	return s.createFn(ctx, caller, in)
}

func (s *stubJobService) ListJobs(ctx context.Context, caller domain.Principal, scope ports.JobScope) ([]*domain.DispatchJob, error) {
	return s.listFn(ctx, caller, scope)
}

func (s *stubJobService) GetJob(ctx context.Context, caller domain.Principal, id string) (*domain.DispatchJob, error) {
	return s.getFn(ctx, caller, id)
}

func (s *stubJobService) UpdateStatus(ctx context.Context, caller domain.Principal, id, status string) (*domain.DispatchJob, error) {
	return s.updateFn(ctx, caller, id, status)
}

func (s *stubJobService) DeleteJob(ctx context.Context, caller domain.Principal, id string) error {
	return s.deleteFn(ctx, caller, id)
}

func (s *stubJobService) ListJobEvents(ctx context.Context, caller domain.Principal, id string) ([]*domain.JobEvent, error) {
	return s.eventsFn(ctx, caller, id)
}

var (
	adminCaller      = domain.Principal{SubjectID: "admin-1", Role: domain.RoleAdmin}
	dispatcherCaller = domain.Principal{SubjectID: "bob-1", Role: domain.RoleDispatcher}
)

func sampleJob() *domain.DispatchJob {
	return &domain.DispatchJob{
		ID:            "65f0000000000000000000a1",
		JobID:         "J1",
		ScheduledBy:   "admin-1",
		Location:      "Depot A",
		ScheduledTime: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		Status:        domain.StatusScheduled,
		CreatedAt:     time.Date(2024, 12, 31, 8, 0, 0, 0, time.UTC),
	}
}

func TestJobHandler_Create_Success(t *testing.T) {
	stub := &stubJobService{
		createFn: func(ctx context.Context, caller domain.Principal, in ports.CreateJobInput) (*domain.DispatchJob, error) {
			if caller.SubjectID != "admin-1" {
				t.Fatalf("unexpected caller: %+v", caller)
			}
			want := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
			if in.JobID != "J1" || in.Location != "Depot A" || !in.ScheduledTime.Equal(want) {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.TruckID == nil || *in.TruckID != "T-9" || in.Driver != nil {
				t.Fatalf("unexpected assignment: %v %v", in.Driver, in.TruckID)
			}
			return sampleJob(), nil
		},
	}

	c, rec := newTestContext(http.MethodPost, "/api/dispatch", `{"job_id":"J1","location":"Depot A","scheduled_time":"2025-01-01T10:00","truck_id":"T-9"}`)
	middleware.SetPrincipal(c, adminCaller)

	if err := NewJobHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "Scheduled" || resp["job_id"] != "J1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if v, ok := resp["driver"]; !ok || v != nil {
		t.Fatalf("driver must be present and null, got %v", v)
	}
}

func TestJobHandler_Create_Validation(t *testing.T) {
	stub := &stubJobService{
		createFn: func(ctx context.Context, caller domain.Principal, in ports.CreateJobInput) (*domain.DispatchJob, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	cases := map[string]string{
		"missing fields": `{"job_id":"J1"}`,
		"bad time":       `{"job_id":"J1","location":"Depot A","scheduled_time":"tomorrow"}`,
		"blank job id":   `{"job_id":"   ","location":"Depot A","scheduled_time":"2025-01-01T10:00"}`,
		"blank location": `{"job_id":"J1","location":"\t ","scheduled_time":"2025-01-01T10:00"}`,
	}
	for name, body := range cases {
		c, _ := newTestContext(http.MethodPost, "/api/dispatch", body)
		middleware.SetPrincipal(c, adminCaller)

		var ve *ValidationError
		if err := NewJobHandler(stub).Create(c); !errors.As(err, &ve) {
			t.Errorf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestJobHandler_Create_Forbidden(t *testing.T) {
	stub := &stubJobService{
		createFn: func(ctx context.Context, caller domain.Principal, in ports.CreateJobInput) (*domain.DispatchJob, error) {
			return nil, domain.ErrForbidden
		},
	}

	c, _ := newTestContext(http.MethodPost, "/api/dispatch", `{"job_id":"J1","location":"Depot A","scheduled_time":"2025-01-01T10:00:00Z"}`)
	middleware.SetPrincipal(c, dispatcherCaller)

	if err := NewJobHandler(stub).Create(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestJobHandler_ListScopes(t *testing.T) {
	var gotScope ports.JobScope
	stub := &stubJobService{
		listFn: func(ctx context.Context, caller domain.Principal, scope ports.JobScope) ([]*domain.DispatchJob, error) {
			gotScope = scope
			return []*domain.DispatchJob{sampleJob()}, nil
		},
	}
	h := NewJobHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/dispatch", "")
	middleware.SetPrincipal(c, adminCaller)
	if err := h.ListAll(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotScope != ports.ScopeAll {
		t.Fatalf("expected scope all, got %s", gotScope)
	}
	var jobs []jobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &jobs); err != nil || len(jobs) != 1 {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}

	c, _ = newTestContext(http.MethodGet, "/api/dispatch/driver", "")
	middleware.SetPrincipal(c, dispatcherCaller)
	if err := h.ListOwn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotScope != ports.ScopeOwn {
		t.Fatalf("expected scope own, got %s", gotScope)
	}
}

func TestJobHandler_ListEmptyIsArray(t *testing.T) {
	stub := &stubJobService{
		listFn: func(ctx context.Context, caller domain.Principal, scope ports.JobScope) ([]*domain.DispatchJob, error) {
			return nil, nil
		},
	}

	c, rec := newTestContext(http.MethodGet, "/api/dispatch/driver", "")
	middleware.SetPrincipal(c, dispatcherCaller)
	if err := NewJobHandler(stub).ListOwn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestJobHandler_GetAndUpdate(t *testing.T) {
	stub := &stubJobService{
		getFn: func(ctx context.Context, caller domain.Principal, id string) (*domain.DispatchJob, error) {
			if id != "abc" {
				return nil, domain.ErrJobNotFound
			}
			return sampleJob(), nil
		},
		updateFn: func(ctx context.Context, caller domain.Principal, id, status string) (*domain.DispatchJob, error) {
			if status != "In Progress" {
				return nil, domain.ErrInvalidTransition
			}
			j := sampleJob()
			j.Status = domain.StatusInProgress
			return j, nil
		},
	}
	h := NewJobHandler(stub)

	c, _ := newTestContext(http.MethodGet, "/api/dispatch/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	middleware.SetPrincipal(c, dispatcherCaller)
	if err := h.Get(c); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	c, rec := newTestContext(http.MethodPatch, "/api/dispatch/abc/status", `{"status":"In Progress"}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	middleware.SetPrincipal(c, dispatcherCaller)
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp jobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Status != "In Progress" {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}

	c, _ = newTestContext(http.MethodPatch, "/api/dispatch/abc/status", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	middleware.SetPrincipal(c, dispatcherCaller)
	var ve *ValidationError
	if err := h.UpdateStatus(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestJobHandler_DeleteAndEvents(t *testing.T) {
	stub := &stubJobService{
		deleteFn: func(ctx context.Context, caller domain.Principal, id string) error {
			if caller.Role != domain.RoleAdmin {
				return domain.ErrForbidden
			}
			return nil
		},
		eventsFn: func(ctx context.Context, caller domain.Principal, id string) ([]*domain.JobEvent, error) {
			return []*domain.JobEvent{{JobID: id, Type: domain.JobEventCreated, ActorID: "admin-1", ToStatus: domain.StatusScheduled}}, nil
		},
	}
	h := NewJobHandler(stub)

	c, _ := newTestContext(http.MethodDelete, "/api/dispatch/abc", "")
	middleware.SetPrincipal(c, dispatcherCaller)
	if err := h.Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	c, rec := newTestContext(http.MethodDelete, "/api/dispatch/abc", "")
	middleware.SetPrincipal(c, adminCaller)
	if err := h.Delete(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", rec.Code, err)
	}

	c, rec = newTestContext(http.MethodGet, "/api/dispatch/abc/events", "")
	middleware.SetPrincipal(c, adminCaller)
	if err := h.Events(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var events []jobEventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil || len(events) != 1 || events[0].Type != "created" {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}
}

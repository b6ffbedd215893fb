package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenroute/dispatch-system/internal/core/ports"
)

// JobHandler handles HTTP requests for dispatch job operations.
type JobHandler struct {
	service ports.JobService
}

func NewJobHandler(service ports.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// Create handles POST /api/dispatch.
//
// @Summary      Schedule a new job
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createJobRequest  true  "Job details"
// @Success      201   {object}  jobResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/dispatch [post]
func (h *JobHandler) Create(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	input, err := toCreateJobInput(req)
	if err != nil {
		return err
	}

	job, err := h.service.CreateJob(c.Request().Context(), caller, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toJobResponse(job))
}

// ListAll handles GET /api/dispatch.
//
// @Summary      List every job
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   jobResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/dispatch [get]
func (h *JobHandler) ListAll(c echo.Context) error {
	return h.list(c, ports.ScopeAll)
}

// ListOwn handles GET /api/dispatch/driver.
//
// @Summary      List jobs assigned to the caller
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   jobResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/dispatch/driver [get]
func (h *JobHandler) ListOwn(c echo.Context) error {
	return h.list(c, ports.ScopeOwn)
}

func (h *JobHandler) list(c echo.Context, scope ports.JobScope) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	jobs, err := h.service.ListJobs(c.Request().Context(), caller, scope)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobListResponse(jobs))
}

// Get handles GET /api/dispatch/:id.
//
// @Summary      Get a job
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/dispatch/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	job, err := h.service.GetJob(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobResponse(job))
}

// UpdateStatus handles PATCH /api/dispatch/:id/status.
//
// @Summary      Advance a job's status
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Job id"
// @Param        body  body      updateStatusRequest  true  "Scheduled, In Progress or Completed"
// @Success      200   {object}  jobResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/dispatch/{id}/status [patch]
func (h *JobHandler) UpdateStatus(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	job, err := h.service.UpdateStatus(c.Request().Context(), caller, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobResponse(job))
}

// Delete handles DELETE /api/dispatch/:id.
//
// @Summary      Delete a job
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/dispatch/{id} [delete]
func (h *JobHandler) Delete(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteJob(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "job deleted"})
}

// Events handles GET /api/dispatch/:id/events.
//
// @Summary      Audit trail of a job
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {array}   jobEventResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/dispatch/{id}/events [get]
func (h *JobHandler) Events(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	events, err := h.service.ListJobEvents(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobEventsResponse(events))
}

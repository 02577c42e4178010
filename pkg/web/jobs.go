package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/persistence"
	"github.com/scrapeflow/scrapeflow/pkg/services"
)

func (h *APIHandlers) GetJobs(c fiber.Ctx) error {
	jobs, err := h.schedulerService.ListJobs(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"jobs":       jobs,
		"totalCount": len(jobs),
	})
}

func (h *APIHandlers) GetJob(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Job ID is required")
	}

	job, err := h.schedulerService.FetchJob(c.Context(), id)
	if err != nil {
		if persistence.IsJobNotFound(err) {
			return notFound(c, "Job not found")
		}

		return internalError(c, err)
	}

	return c.JSON(job)
}

func (h *APIHandlers) CreateJob(c fiber.Ctx) error {
	var req CreateJobRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	job, err := h.schedulerService.CreateJob(c.Context(), services.CreateJobRequest{
		Name:          req.Name,
		WorkflowID:    req.WorkflowID,
		ScheduleType:  models.ScheduleType(req.ScheduleType),
		Frequency:     models.Frequency(req.Frequency),
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		DaysOfWeek:    toWeekdays(req.DaysOfWeek),
		DayOfMonth:    req.DayOfMonth,
		Hour:          req.Hour,
		Minute:        req.Minute,
		Cron:          req.Cron,
		Timezone:      req.Timezone,
		Parameters:    req.Parameters,
		Dependencies:  toDependencies(req.Dependencies),
		Notifications: toNotifications(req.Notifications),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

func (h *APIHandlers) UpdateJob(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Job ID is required")
	}

	var req UpdateJobRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	patch := services.UpdateJobRequest{
		Name:       req.Name,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		DayOfMonth: req.DayOfMonth,
		Hour:       req.Hour,
		Minute:     req.Minute,
		Cron:       req.Cron,
		Timezone:   req.Timezone,
		Parameters: req.Parameters,
	}

	if req.Status != nil {
		status := models.JobStatus(*req.Status)
		patch.Status = &status
	}

	if req.Frequency != nil {
		frequency := models.Frequency(*req.Frequency)
		patch.Frequency = &frequency
	}

	if req.DaysOfWeek != nil {
		weekdays := toWeekdays(*req.DaysOfWeek)
		patch.DaysOfWeek = &weekdays
	}

	if req.Dependencies != nil {
		deps := toDependencies(*req.Dependencies)
		patch.Dependencies = &deps
	}

	if req.Notifications != nil {
		notifications := toNotifications(*req.Notifications)
		patch.Notifications = &notifications
	}

	job, err := h.schedulerService.UpdateJob(c.Context(), id, patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(job)
}

func (h *APIHandlers) DeleteJob(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Job ID is required")
	}

	if err := h.schedulerService.DeleteJob(c.Context(), id); err != nil {
		if persistence.IsJobNotFound(err) {
			return notFound(c, "Job not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetConflicts(c fiber.Ctx) error {
	conflicts, err := h.schedulerService.Conflicts(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"conflicts":  conflicts,
		"totalCount": len(conflicts),
	})
}

// ResolveConflict recomputes the conflict list with one entry dismissed.
// Dismissal is stateless; the entry reappears on the next detection run if
// its cause still holds.
func (h *APIHandlers) ResolveConflict(c fiber.Ctx) error {
	var req ResolveConflictRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	conflicts, err := h.schedulerService.Conflicts(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	remaining := h.schedulerService.ResolveConflict(conflicts, req.JobID, req.Message)

	return c.JSON(fiber.Map{
		"conflicts":  remaining,
		"totalCount": len(remaining),
	})
}

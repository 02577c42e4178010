package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/scrapeflow/scrapeflow/pkg/events"
	"github.com/scrapeflow/scrapeflow/pkg/eventbus"
	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/otelhelper"
	"github.com/scrapeflow/scrapeflow/pkg/persistence"
	"github.com/scrapeflow/scrapeflow/pkg/scheduling"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const schedulerTracerName = "scrapeflow/scheduler"

// Scheduler provides business operations over scheduled jobs and the
// derived conflict list. The conflict pipeline (dependency graph → cycle
// detection → conflict classification) re-runs from scratch on demand.
type Scheduler struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
}

// NewScheduler creates a new scheduler service. The event bus may be nil.
func NewScheduler(p persistence.Persistence, bus eventbus.EventPublisher) *Scheduler {
	return &Scheduler{
		persistence: p,
		eventBus:    bus,
		logger:      slog.With("module", "scheduler_service"),
	}
}

// CreateJobRequest carries the fields for a new scheduled job.
type CreateJobRequest struct {
	Name         string
	WorkflowID   string
	ScheduleType models.ScheduleType
	Frequency    models.Frequency
	StartTime    time.Time
	EndTime      *time.Time
	DaysOfWeek   []time.Weekday
	DayOfMonth   int
	Hour         int
	Minute       int
	Cron         string
	Timezone     string
	Parameters   map[string]any

	Dependencies  []models.JobDependency
	Notifications []models.JobNotification
}

// CreateJob validates the schedule, computes the first run time, stores the
// job and publishes a job.created event.
func (s *Scheduler) CreateJob(ctx context.Context, req CreateJobRequest) (*models.ScheduledJob, error) {
	if req.Name == "" {
		return nil, NewValidationError("CreateJob", "NAME_REQUIRED", "job name is required", ErrNameRequired)
	}

	ctx, span := otelhelper.StartSpan(ctx, otel.Tracer(schedulerTracerName), "scheduler.create_job")
	defer span.End()

	job := models.NewScheduledJob(req.Name, req.WorkflowID, req.ScheduleType, req.Frequency, req.StartTime)
	span.SetAttributes(attribute.String(otelhelper.JobIDKey, job.ID))
	job.EndTime = req.EndTime
	job.DaysOfWeek = req.DaysOfWeek
	job.DayOfMonth = req.DayOfMonth
	job.Hour = req.Hour
	job.Minute = req.Minute
	job.Cron = req.Cron
	job.Timezone = req.Timezone
	job.Parameters = req.Parameters
	job.Dependencies = normalizeDependencies(req.Dependencies)
	job.Notifications = normalizeNotifications(req.Notifications)

	nextRun, err := scheduling.ComputeNextRun(job, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	job.NextRunTime = nextRun

	if err := s.persistence.JobRepository().Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	s.publish(ctx, job.ID, events.JobCreated{
		BaseEvent:  s.baseEvent(events.JobCreatedEvent),
		JobID:      job.ID,
		WorkflowID: job.WorkflowID,
		Name:       job.Name,
	})

	return job, nil
}

// UpdateJobRequest is a partial job update; nil fields stay untouched.
// Dependencies and Notifications, when present, replace the stored lists
// wholesale; they are never merged element by element.
type UpdateJobRequest struct {
	Name       *string
	Status     *models.JobStatus
	Frequency  *models.Frequency
	StartTime  *time.Time
	EndTime    *time.Time
	DaysOfWeek *[]time.Weekday
	DayOfMonth *int
	Hour       *int
	Minute     *int
	Cron       *string
	Timezone   *string
	Parameters map[string]any

	Dependencies  *[]models.JobDependency
	Notifications *[]models.JobNotification
}

// UpdateJob applies a patch, revalidates the schedule, recomputes the next
// run time and refreshes UpdatedAt.
func (s *Scheduler) UpdateJob(ctx context.Context, jobID string, req UpdateJobRequest) (*models.ScheduledJob, error) {
	ctx, span := otelhelper.StartSpan(ctx, otel.Tracer(schedulerTracerName), "scheduler.update_job",
		attribute.String(otelhelper.JobIDKey, jobID))
	defer span.End()

	stored, err := s.persistence.JobRepository().GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	job := stored.Clone()

	if req.Name != nil {
		if *req.Name == "" {
			return nil, NewValidationError("UpdateJob", "NAME_REQUIRED", "job name is required", ErrNameRequired)
		}

		job.Name = *req.Name
	}

	if req.Status != nil {
		job.Status = *req.Status
	}

	if req.Frequency != nil {
		job.Frequency = *req.Frequency
	}

	if req.StartTime != nil {
		job.StartTime = *req.StartTime
	}

	if req.EndTime != nil {
		job.EndTime = req.EndTime
	}

	if req.DaysOfWeek != nil {
		job.DaysOfWeek = *req.DaysOfWeek
	}

	if req.DayOfMonth != nil {
		job.DayOfMonth = *req.DayOfMonth
	}

	if req.Hour != nil {
		job.Hour = *req.Hour
	}

	if req.Minute != nil {
		job.Minute = *req.Minute
	}

	if req.Cron != nil {
		job.Cron = *req.Cron
	}

	if req.Timezone != nil {
		job.Timezone = *req.Timezone
	}

	if req.Parameters != nil {
		job.Parameters = req.Parameters
	}

	if req.Dependencies != nil {
		job.Dependencies = normalizeDependencies(*req.Dependencies)
	}

	if req.Notifications != nil {
		job.Notifications = normalizeNotifications(*req.Notifications)
	}

	nextRun, err := scheduling.ComputeNextRun(job, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	job.NextRunTime = nextRun
	job.Touch()

	if err := s.persistence.JobRepository().Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	s.publish(ctx, job.ID, events.JobUpdated{
		BaseEvent: s.baseEvent(events.JobUpdatedEvent),
		JobID:     job.ID,
	})

	return job, nil
}

// DeleteJob removes a job and strips any dependency references to it from
// the remaining jobs, so no job is left depending on a ghost.
func (s *Scheduler) DeleteJob(ctx context.Context, jobID string) error {
	ctx, span := otelhelper.StartSpan(ctx, otel.Tracer(schedulerTracerName), "scheduler.delete_job",
		attribute.String(otelhelper.JobIDKey, jobID))
	defer span.End()

	if err := s.persistence.JobRepository().Delete(ctx, jobID); err != nil {
		return err
	}

	jobs, err := s.persistence.JobRepository().ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list jobs for dependency cleanup: %w", err)
	}

	for _, other := range jobs {
		remaining := make([]models.JobDependency, 0, len(other.Dependencies))

		for _, dep := range other.Dependencies {
			if dep.DependsOnJobID != jobID {
				remaining = append(remaining, dep)
			}
		}

		if len(remaining) == len(other.Dependencies) {
			continue
		}

		updated := other.Clone()
		updated.Dependencies = remaining
		updated.Touch()

		if err := s.persistence.JobRepository().Save(ctx, updated); err != nil {
			return fmt.Errorf("failed to clean dependencies on job %s: %w", other.ID, err)
		}
	}

	s.publish(ctx, jobID, events.JobDeleted{
		BaseEvent: s.baseEvent(events.JobDeletedEvent),
		JobID:     jobID,
	})

	return nil
}

// ListJobs loads the full job collection.
func (s *Scheduler) ListJobs(ctx context.Context) ([]*models.ScheduledJob, error) {
	return s.persistence.JobRepository().ListJobs(ctx)
}

// FetchJob loads one job.
func (s *Scheduler) FetchJob(ctx context.Context, jobID string) (*models.ScheduledJob, error) {
	return s.persistence.JobRepository().GetByID(ctx, jobID)
}

// Conflicts re-runs the dependency graph → cycle detector → conflict
// detector pipeline over the current job collection.
func (s *Scheduler) Conflicts(ctx context.Context) ([]models.Conflict, error) {
	ctx, span := otelhelper.StartSpan(ctx, otel.Tracer(schedulerTracerName), "scheduler.detect_conflicts")
	defer span.End()

	jobs, err := s.persistence.JobRepository().ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	conflicts := scheduling.DetectConflicts(jobs)

	span.SetAttributes(
		attribute.Int(otelhelper.JobCountKey, len(jobs)),
		attribute.Int(otelhelper.ConflictsKey, len(conflicts)),
	)

	s.publish(ctx, "conflicts", events.ConflictsDetected{
		BaseEvent: s.baseEvent(events.ConflictsDetectedEvent),
		JobCount:  len(jobs),
		Conflicts: conflicts,
	})

	return conflicts, nil
}

// ResolveConflict dismisses one (jobID, message) pair from a conflict list.
// Dismissal does not survive the next recomputation.
func (s *Scheduler) ResolveConflict(conflicts []models.Conflict, jobID, message string) []models.Conflict {
	return scheduling.ResolveConflict(conflicts, jobID, message)
}

// HealthCheck checks the health of the persistence layer.
func (s *Scheduler) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := s.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// normalizeDependencies assigns IDs to entries that arrive without one.
func normalizeDependencies(deps []models.JobDependency) []models.JobDependency {
	normalized := make([]models.JobDependency, len(deps))

	for i, dep := range deps {
		if dep.ID == "" {
			dep.ID = uuid.New().String()
		}

		normalized[i] = dep
	}

	return normalized
}

func normalizeNotifications(notifications []models.JobNotification) []models.JobNotification {
	normalized := make([]models.JobNotification, len(notifications))

	for i, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}

		normalized[i] = n
	}

	return normalized
}

func (s *Scheduler) baseEvent(eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

func (s *Scheduler) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

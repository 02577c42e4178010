// Package web provides HTTP handlers and REST API endpoints for workflow and
// scheduled job management.
package web

import (
	"time"

	"github.com/scrapeflow/scrapeflow/pkg/models"
)

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string `json:"name"        validate:"required,min=3"`
	Description string `json:"description"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string `json:"description,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// CreateNodeRequest represents the request body for adding a node. The node
// payload is populated from the type's registry defaults; clients patch it
// afterwards.
type CreateNodeRequest struct {
	Type     string          `json:"type"     validate:"required,oneof=trigger action condition transformation notification delay"`
	Name     string          `json:"name"     validate:"required,min=1"`
	Position models.Position `json:"position"`
}

// PatchNodeRequest represents the request body for partially updating a node.
type PatchNodeRequest struct {
	Name        *string        `json:"name,omitempty"        validate:"omitempty,min=1"`
	Description *string        `json:"description,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// CreateConnectionRequest represents the request body for connecting two nodes.
type CreateConnectionRequest struct {
	Source       string `json:"source"                 validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Target       string `json:"target"                 validate:"required"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// JobDependencyRequest is a dependency entry inside a job create or update.
type JobDependencyRequest struct {
	DependsOnJobID string `json:"dependsOnJobId" validate:"required"`
	Kind           string `json:"kind"           validate:"required,oneof=success completion failure"`
	TimeoutMinutes *int   `json:"timeoutMinutes,omitempty" validate:"omitempty,min=1"`
}

// JobNotificationRequest is a notification entry inside a job create or update.
type JobNotificationRequest struct {
	Channel        string   `json:"channel"       validate:"required,oneof=email slack webhook inApp"`
	Recipients     []string `json:"recipients,omitempty"`
	ChannelName    string   `json:"channelName,omitempty"`
	URL            string   `json:"url,omitempty" validate:"omitempty,url"`
	Events         []string `json:"events"        validate:"required,min=1,dive,oneof=start success failure timeout"`
	Template       string   `json:"template,omitempty"`
	IncludeResults bool     `json:"includeResults"`
}

// CreateJobRequest represents the request body for scheduling a job.
type CreateJobRequest struct {
	Name         string     `json:"name"         validate:"required,min=1"`
	WorkflowID   string     `json:"workflowId"   validate:"required"`
	ScheduleType string     `json:"scheduleType" validate:"required,oneof=one-time recurring"`
	Frequency    string     `json:"frequency"    validate:"required,oneof=once minutely hourly daily weekly monthly quarterly yearly custom"`
	StartTime    time.Time  `json:"startTime"    validate:"required"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	DaysOfWeek   []int      `json:"daysOfWeek,omitempty" validate:"omitempty,dive,min=0,max=6"`
	DayOfMonth   int        `json:"dayOfMonth,omitempty" validate:"omitempty,min=1,max=31"`
	Hour         int        `json:"hour"                 validate:"min=0,max=23"`
	Minute       int        `json:"minute"               validate:"min=0,max=59"`
	Cron         string     `json:"cron,omitempty"`
	Timezone     string     `json:"timezone,omitempty"`

	Parameters    map[string]any           `json:"parameters,omitempty"`
	Dependencies  []JobDependencyRequest   `json:"dependencies,omitempty"  validate:"omitempty,dive"`
	Notifications []JobNotificationRequest `json:"notifications,omitempty" validate:"omitempty,dive"`
}

// UpdateJobRequest represents the request body for updating a scheduled job.
// Dependencies and notifications, when present, replace the stored lists.
type UpdateJobRequest struct {
	Name       *string    `json:"name,omitempty"       validate:"omitempty,min=1"`
	Status     *string    `json:"status,omitempty"     validate:"omitempty,oneof=scheduled running paused completed failed cancelled"`
	Frequency  *string    `json:"frequency,omitempty"  validate:"omitempty,oneof=once minutely hourly daily weekly monthly quarterly yearly custom"`
	StartTime  *time.Time `json:"startTime,omitempty"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	DaysOfWeek *[]int     `json:"daysOfWeek,omitempty" validate:"omitempty,dive,min=0,max=6"`
	DayOfMonth *int       `json:"dayOfMonth,omitempty" validate:"omitempty,min=1,max=31"`
	Hour       *int       `json:"hour,omitempty"       validate:"omitempty,min=0,max=23"`
	Minute     *int       `json:"minute,omitempty"     validate:"omitempty,min=0,max=59"`
	Cron       *string    `json:"cron,omitempty"`
	Timezone   *string    `json:"timezone,omitempty"`

	Parameters    map[string]any            `json:"parameters,omitempty"`
	Dependencies  *[]JobDependencyRequest   `json:"dependencies,omitempty"  validate:"omitempty,dive"`
	Notifications *[]JobNotificationRequest `json:"notifications,omitempty" validate:"omitempty,dive"`
}

// ResolveConflictRequest identifies the conflict entry being dismissed.
type ResolveConflictRequest struct {
	JobID   string `json:"jobId"   validate:"required"`
	Message string `json:"message" validate:"required"`
}

func toDependencies(reqs []JobDependencyRequest) []models.JobDependency {
	deps := make([]models.JobDependency, len(reqs))

	for i, r := range reqs {
		deps[i] = models.JobDependency{
			DependsOnJobID: r.DependsOnJobID,
			Kind:           models.DependencyKind(r.Kind),
			TimeoutMinutes: r.TimeoutMinutes,
		}
	}

	return deps
}

func toNotifications(reqs []JobNotificationRequest) []models.JobNotification {
	notifications := make([]models.JobNotification, len(reqs))

	for i, r := range reqs {
		events := make([]models.NotificationEvent, len(r.Events))
		for j, e := range r.Events {
			events[j] = models.NotificationEvent(e)
		}

		notifications[i] = models.JobNotification{
			Channel:        models.NotificationChannel(r.Channel),
			Recipients:     r.Recipients,
			ChannelName:    r.ChannelName,
			URL:            r.URL,
			Events:         events,
			Template:       r.Template,
			IncludeResults: r.IncludeResults,
		}
	}

	return notifications
}

func toWeekdays(days []int) []time.Weekday {
	weekdays := make([]time.Weekday, len(days))

	for i, d := range days {
		weekdays[i] = time.Weekday(d)
	}

	return weekdays
}

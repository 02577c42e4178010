package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleType distinguishes one-shot jobs from recurring ones.
type ScheduleType string

const (
	ScheduleTypeOneTime   ScheduleType = "one-time"
	ScheduleTypeRecurring ScheduleType = "recurring"
)

// Frequency describes how often a recurring job runs.
type Frequency string

const (
	FrequencyOnce      Frequency = "once"
	FrequencyMinutely  Frequency = "minutely"
	FrequencyHourly    Frequency = "hourly"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyCustom    Frequency = "custom"
)

// Frequencies lists every valid frequency value.
var Frequencies = []Frequency{
	FrequencyOnce,
	FrequencyMinutely,
	FrequencyHourly,
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencyYearly,
	FrequencyCustom,
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	for _, known := range Frequencies {
		if f == known {
			return true
		}
	}

	return false
}

// JobStatus is the lifecycle state of a scheduled job. The core never
// transitions statuses itself; the external executor reports them back.
type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusPaused    JobStatus = "paused"
)

// DependencyKind is the gate on a job dependency: must the referenced job
// succeed, merely finish, or fail before this job may run.
type DependencyKind string

const (
	DependencySuccess    DependencyKind = "success"
	DependencyCompletion DependencyKind = "completion"
	DependencyFailure    DependencyKind = "failure"
)

// NotificationChannel identifies where a job notification is delivered.
type NotificationChannel string

const (
	ChannelEmail   NotificationChannel = "email"
	ChannelSlack   NotificationChannel = "slack"
	ChannelWebhook NotificationChannel = "webhook"
	ChannelInApp   NotificationChannel = "inApp"
)

// NotificationEvent is a job lifecycle event that can trigger a notification.
type NotificationEvent string

const (
	EventStart   NotificationEvent = "start"
	EventSuccess NotificationEvent = "success"
	EventFailure NotificationEvent = "failure"
	EventTimeout NotificationEvent = "timeout"
)

// JobDependency is a directed "must run before" relationship to another job.
// DependsOnJobID may reference a job outside the currently-loaded collection;
// such references are treated as leaves by the dependency graph builder.
type JobDependency struct {
	ID             string         `json:"id"`
	DependsOnJobID string         `json:"dependsOnJobId" validate:"required"`
	Kind           DependencyKind `json:"kind"           validate:"required,oneof=success completion failure"`
	TimeoutMinutes *int           `json:"timeoutMinutes,omitempty" validate:"omitempty,min=1"`
}

// JobNotification describes a notification the external dispatcher should
// send when one of the listed events occurs. The core stores it verbatim.
type JobNotification struct {
	ID             string              `json:"id"`
	Channel        NotificationChannel `json:"channel" validate:"required,oneof=email slack webhook inApp"`
	Recipients     []string            `json:"recipients,omitempty"`
	ChannelName    string              `json:"channelName,omitempty"`
	URL            string              `json:"url,omitempty"`
	Events         []NotificationEvent `json:"events"`
	Template       string              `json:"template,omitempty"`
	IncludeResults bool                `json:"includeResults"`
}

// ScheduledJob is a recurring or one-time invocation of a workflow.
// Recurrence detail fields are only meaningful for their matching frequency:
// DaysOfWeek for weekly, DayOfMonth for monthly, Cron for custom.
type ScheduledJob struct {
	ID           string       `json:"id"           validate:"required"`
	Name         string       `json:"name"         validate:"required,min=1"`
	WorkflowID   string       `json:"workflowId"   validate:"required"`
	ScheduleType ScheduleType `json:"scheduleType" validate:"required,oneof=one-time recurring"`
	Frequency    Frequency    `json:"frequency"    validate:"required"`
	StartTime    time.Time    `json:"startTime"`
	EndTime      *time.Time   `json:"endTime,omitempty"`
	Status       JobStatus    `json:"status"`
	NextRunTime  time.Time    `json:"nextRunTime"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	Dependencies  []JobDependency   `json:"dependencies"`
	Notifications []JobNotification `json:"notifications"`
	Parameters    map[string]any    `json:"parameters,omitempty"`

	DaysOfWeek []time.Weekday `json:"daysOfWeek,omitempty"`
	DayOfMonth int            `json:"dayOfMonth,omitempty"`
	Hour       int            `json:"hour"`
	Minute     int            `json:"minute"`
	Cron       string         `json:"cron,omitempty"`
	Timezone   string         `json:"timezone,omitempty"`
}

// NewScheduledJob creates a job with a generated ID, fresh timestamps and
// status defaulted to scheduled.
func NewScheduledJob(name, workflowID string, scheduleType ScheduleType, frequency Frequency, startTime time.Time) *ScheduledJob {
	now := time.Now().UTC()

	return &ScheduledJob{
		ID:            uuid.New().String(),
		Name:          name,
		WorkflowID:    workflowID,
		ScheduleType:  scheduleType,
		Frequency:     frequency,
		StartTime:     startTime,
		Status:        JobStatusScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
		Dependencies:  []JobDependency{},
		Notifications: []JobNotification{},
	}
}

// IsRecurring reports whether the job repeats.
func (j *ScheduledJob) IsRecurring() bool {
	return j.ScheduleType == ScheduleTypeRecurring
}

// Touch refreshes the UpdatedAt timestamp. Every update path must call it.
func (j *ScheduledJob) Touch() {
	j.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy of the job.
func (j *ScheduledJob) Clone() *ScheduledJob {
	clone := *j

	if j.EndTime != nil {
		end := *j.EndTime
		clone.EndTime = &end
	}

	clone.Dependencies = make([]JobDependency, len(j.Dependencies))
	copy(clone.Dependencies, j.Dependencies)

	clone.Notifications = make([]JobNotification, len(j.Notifications))
	for i, n := range j.Notifications {
		nCopy := n
		nCopy.Recipients = append([]string(nil), n.Recipients...)
		nCopy.Events = append([]NotificationEvent(nil), n.Events...)
		clone.Notifications[i] = nCopy
	}

	clone.Parameters = copyMap(j.Parameters)
	clone.DaysOfWeek = append([]time.Weekday(nil), j.DaysOfWeek...)

	return &clone
}

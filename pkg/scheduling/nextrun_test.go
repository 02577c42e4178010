package scheduling_test

import (
	"testing"
	"time"

	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduledJob(frequency models.Frequency) *models.ScheduledJob {
	start := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	j := models.NewScheduledJob("job", "wf-1", models.ScheduleTypeRecurring, frequency, start)
	j.Hour = 9
	j.Minute = 30

	return j
}

func TestValidateSchedule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(j *models.ScheduledJob)
		wantErr bool
	}{
		{
			name:   "valid daily",
			mutate: func(_ *models.ScheduledJob) {},
		},
		{
			name:    "unknown frequency",
			mutate:  func(j *models.ScheduledJob) { j.Frequency = "fortnightly" },
			wantErr: true,
		},
		{
			name:    "unknown schedule type",
			mutate:  func(j *models.ScheduledJob) { j.ScheduleType = "sometimes" },
			wantErr: true,
		},
		{
			name:    "hour out of range",
			mutate:  func(j *models.ScheduledJob) { j.Hour = 24 },
			wantErr: true,
		},
		{
			name:    "minute out of range",
			mutate:  func(j *models.ScheduledJob) { j.Minute = 60 },
			wantErr: true,
		},
		{
			name:    "bad timezone",
			mutate:  func(j *models.ScheduledJob) { j.Timezone = "Mars/Olympus" },
			wantErr: true,
		},
		{
			name: "weekly without days",
			mutate: func(j *models.ScheduledJob) {
				j.Frequency = models.FrequencyWeekly
			},
			wantErr: true,
		},
		{
			name: "weekly with days",
			mutate: func(j *models.ScheduledJob) {
				j.Frequency = models.FrequencyWeekly
				j.DaysOfWeek = []time.Weekday{time.Monday, time.Thursday}
			},
		},
		{
			name: "monthly without day",
			mutate: func(j *models.ScheduledJob) {
				j.Frequency = models.FrequencyMonthly
			},
			wantErr: true,
		},
		{
			name: "monthly day out of range",
			mutate: func(j *models.ScheduledJob) {
				j.Frequency = models.FrequencyMonthly
				j.DayOfMonth = 32
			},
			wantErr: true,
		},
		{
			name: "custom without cron",
			mutate: func(j *models.ScheduledJob) {
				j.Frequency = models.FrequencyCustom
			},
			wantErr: true,
		},
		{
			name: "custom with bad cron",
			mutate: func(j *models.ScheduledJob) {
				j.Frequency = models.FrequencyCustom
				j.Cron = "not a cron"
			},
			wantErr: true,
		},
		{
			name: "custom with five-field cron",
			mutate: func(j *models.ScheduledJob) {
				j.Frequency = models.FrequencyCustom
				j.Cron = "*/15 8-18 * * 1-5"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := scheduledJob(models.FrequencyDaily)
			tt.mutate(job)

			err := scheduling.ValidateSchedule(job)
			if tt.wantErr {
				assert.ErrorIs(t, err, scheduling.ErrInvalidSchedule)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestComputeNextRun(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 3, 10, 14, 45, 30, 0, time.UTC) // a Tuesday

	t.Run("once answers start time regardless of reference", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyOnce)

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.Equal(t, job.StartTime, next)
	})

	t.Run("once past its end time has no further runs", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyOnce)
		end := job.StartTime.Add(-time.Hour)
		job.EndTime = &end

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.True(t, next.IsZero())
	})

	t.Run("minutely is the next minute boundary", func(t *testing.T) {
		t.Parallel()

		next, err := scheduling.ComputeNextRun(scheduledJob(models.FrequencyMinutely), from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 10, 14, 46, 0, 0, time.UTC), next)
	})

	t.Run("hourly lands on the configured minute", func(t *testing.T) {
		t.Parallel()

		next, err := scheduling.ComputeNextRun(scheduledJob(models.FrequencyHourly), from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC), next)
	})

	t.Run("hourly later in the same hour", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyHourly)
		job.Minute = 50

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 10, 14, 50, 0, 0, time.UTC), next)
	})

	t.Run("daily rolls to tomorrow when time of day has passed", func(t *testing.T) {
		t.Parallel()

		next, err := scheduling.ComputeNextRun(scheduledJob(models.FrequencyDaily), from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC), next)
	})

	t.Run("daily later today", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyDaily)
		job.Hour = 23

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC), next)
	})

	t.Run("weekly picks the nearest listed day", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyWeekly)
		job.DaysOfWeek = []time.Weekday{time.Monday, time.Friday}

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 13, 9, 30, 0, 0, time.UTC), next)
		assert.Equal(t, time.Friday, next.Weekday())
	})

	t.Run("weekly same day wraps a full week when time has passed", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyWeekly)
		job.DaysOfWeek = []time.Weekday{time.Tuesday}

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 17, 9, 30, 0, 0, time.UTC), next)
	})

	t.Run("monthly skips months shorter than the day", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyMonthly)
		job.DayOfMonth = 31

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 31, 9, 30, 0, 0, time.UTC), next)

		// From April 1st the next 31st is in May; April has 30 days.
		next, err = scheduling.ComputeNextRun(job, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 5, 31, 9, 30, 0, 0, time.UTC), next)
	})

	t.Run("quarterly steps from start time", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyQuarterly)

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 4, 15, 9, 30, 0, 0, time.UTC), next)
	})

	t.Run("yearly steps from start time", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyYearly)

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2027, 1, 15, 9, 30, 0, 0, time.UTC), next)
	})

	t.Run("custom cron", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyCustom)
		job.Cron = "0 */2 * * *"

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC), next)
	})

	t.Run("timezone shifts the time of day", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyDaily)
		job.Timezone = "America/Sao_Paulo"

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)

		// 14:45 UTC is 11:45 in Sao Paulo (UTC-3), so 09:30 local has passed.
		assert.Equal(t, "America/Sao_Paulo", next.Location().String())
		assert.Equal(t, 9, next.Hour())
		assert.Equal(t, 11, next.Day())
	})

	t.Run("past end time yields zero without error", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyDaily)
		end := from.Add(-time.Hour)
		job.EndTime = &end

		next, err := scheduling.ComputeNextRun(job, from)
		require.NoError(t, err)
		assert.True(t, next.IsZero())
	})

	t.Run("invalid schedule surfaces the error", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob(models.FrequencyWeekly) // no days configured

		_, err := scheduling.ComputeNextRun(job, from)
		assert.ErrorIs(t, err, scheduling.ErrInvalidSchedule)
	})
}

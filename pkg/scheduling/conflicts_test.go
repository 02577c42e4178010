package scheduling_test

import (
	"testing"
	"time"

	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recurringJob(id, name string, frequency models.Frequency, nextRun time.Time) *models.ScheduledJob {
	j := models.NewScheduledJob(name, "wf-1", models.ScheduleTypeRecurring, frequency, nextRun)
	j.ID = id
	j.NextRunTime = nextRun

	return j
}

func TestDetectConflictsTimeOverlap(t *testing.T) {
	t.Parallel()

	nextRun := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	t.Run("both jobs of an overlapping pair get an entry", func(t *testing.T) {
		t.Parallel()

		jobs := []*models.ScheduledJob{
			recurringJob("a", "Scrape products", models.FrequencyDaily, nextRun),
			recurringJob("b", "Scrape prices", models.FrequencyDaily, nextRun),
		}

		conflicts := scheduling.DetectConflicts(jobs)
		require.Len(t, conflicts, 2)

		assert.Equal(t, "a", conflicts[0].JobID)
		assert.Equal(t, `Potential time conflict with "Scrape prices"`, conflicts[0].Message)
		assert.Equal(t, "b", conflicts[1].JobID)
		assert.Equal(t, `Potential time conflict with "Scrape products"`, conflicts[1].Message)
	})

	t.Run("different frequencies never overlap", func(t *testing.T) {
		t.Parallel()

		jobs := []*models.ScheduledJob{
			recurringJob("a", "Daily", models.FrequencyDaily, nextRun),
			recurringJob("b", "Hourly", models.FrequencyHourly, nextRun),
		}

		assert.Empty(t, scheduling.DetectConflicts(jobs))
	})

	t.Run("different next runs never overlap", func(t *testing.T) {
		t.Parallel()

		jobs := []*models.ScheduledJob{
			recurringJob("a", "Morning", models.FrequencyDaily, nextRun),
			recurringJob("b", "Evening", models.FrequencyDaily, nextRun.Add(12*time.Hour)),
		}

		assert.Empty(t, scheduling.DetectConflicts(jobs))
	})

	t.Run("one-time jobs are exempt", func(t *testing.T) {
		t.Parallel()

		oneTime := recurringJob("a", "Backfill", models.FrequencyOnce, nextRun)
		oneTime.ScheduleType = models.ScheduleTypeOneTime

		jobs := []*models.ScheduledJob{
			oneTime,
			recurringJob("b", "Nightly", models.FrequencyDaily, nextRun),
		}

		assert.Empty(t, scheduling.DetectConflicts(jobs))
	})
}

func TestDetectConflictsCircular(t *testing.T) {
	t.Parallel()

	t.Run("every job in the cycle gets one entry", func(t *testing.T) {
		t.Parallel()

		jobs := []*models.ScheduledJob{
			job("x", "y"),
			job("y", "x"),
			job("z"),
		}

		conflicts := scheduling.DetectConflicts(jobs)

		circular := make(map[string]int)
		for _, c := range conflicts {
			if c.Message == scheduling.CircularDependencyMessage {
				circular[c.JobID]++
			}
		}

		assert.Equal(t, 1, circular["x"])
		assert.Equal(t, 1, circular["y"])
		assert.Zero(t, circular["z"])
	})

	t.Run("removing the back edge clears the conflicts", func(t *testing.T) {
		t.Parallel()

		jobs := []*models.ScheduledJob{
			job("x", "y"),
			job("y", "x"),
		}
		require.NotEmpty(t, scheduling.DetectConflicts(jobs))

		jobs[1].Dependencies = nil
		assert.Empty(t, scheduling.DetectConflicts(jobs))
	})

	t.Run("recomputation is idempotent", func(t *testing.T) {
		t.Parallel()

		jobs := []*models.ScheduledJob{
			job("x", "y"),
			job("y", "x"),
		}

		first := scheduling.DetectConflicts(jobs)
		second := scheduling.DetectConflicts(jobs)

		assert.Equal(t, first, second)
	})
}

func TestResolveConflict(t *testing.T) {
	t.Parallel()

	conflicts := []models.Conflict{
		{JobID: "a", Message: "Circular dependency detected"},
		{JobID: "a", Message: `Potential time conflict with "Other"`},
		{JobID: "b", Message: "Circular dependency detected"},
	}

	t.Run("removes exactly the matching pair", func(t *testing.T) {
		t.Parallel()

		remaining := scheduling.ResolveConflict(conflicts, "a", "Circular dependency detected")

		require.Len(t, remaining, 2)
		assert.Equal(t, `Potential time conflict with "Other"`, remaining[0].Message)
		assert.Equal(t, "b", remaining[1].JobID)
	})

	t.Run("no match leaves the list unchanged", func(t *testing.T) {
		t.Parallel()

		remaining := scheduling.ResolveConflict(conflicts, "a", "nope")
		assert.Equal(t, conflicts, remaining)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		t.Parallel()

		_ = scheduling.ResolveConflict(conflicts, "b", "Circular dependency detected")
		assert.Len(t, conflicts, 3)
	})
}

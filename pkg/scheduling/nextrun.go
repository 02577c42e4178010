package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/scrapeflow/scrapeflow/pkg/models"
)

// ErrInvalidSchedule is returned when a job's recurrence fields are
// inconsistent with its frequency. It is surfaced to the caller, never
// silently coerced.
var ErrInvalidSchedule = errors.New("invalid schedule configuration")

const maxDayOfMonth = 31

func cronParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}

// ValidateSchedule checks that a job's recurrence detail fields match its
// frequency: daysOfWeek only carries meaning for weekly jobs, dayOfMonth for
// monthly, cron text for custom.
func ValidateSchedule(job *models.ScheduledJob) error {
	if !job.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidSchedule, job.Frequency)
	}

	if job.ScheduleType != models.ScheduleTypeOneTime && job.ScheduleType != models.ScheduleTypeRecurring {
		return fmt.Errorf("%w: unknown schedule type %q", ErrInvalidSchedule, job.ScheduleType)
	}

	if job.Hour < 0 || job.Hour > 23 || job.Minute < 0 || job.Minute > 59 {
		return fmt.Errorf("%w: time of day %02d:%02d out of range", ErrInvalidSchedule, job.Hour, job.Minute)
	}

	if _, err := loadLocation(job.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %s", ErrInvalidSchedule, job.Timezone, err.Error())
	}

	switch job.Frequency {
	case models.FrequencyWeekly:
		if len(job.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: weekly frequency requires a non-empty day set", ErrInvalidSchedule)
		}

		for _, day := range job.DaysOfWeek {
			if day < time.Sunday || day > time.Saturday {
				return fmt.Errorf("%w: day of week %d out of range", ErrInvalidSchedule, day)
			}
		}
	case models.FrequencyMonthly:
		if job.DayOfMonth < 1 || job.DayOfMonth > maxDayOfMonth {
			return fmt.Errorf("%w: monthly frequency requires dayOfMonth in 1..%d", ErrInvalidSchedule, maxDayOfMonth)
		}
	case models.FrequencyCustom:
		if job.Cron == "" {
			return fmt.Errorf("%w: custom frequency requires a cron expression", ErrInvalidSchedule)
		}

		if _, err := cronParser().Parse(job.Cron); err != nil {
			return fmt.Errorf("%w: cron %q: %s", ErrInvalidSchedule, job.Cron, err.Error())
		}
	}

	return nil
}

// ComputeNextRun calculates the next occurrence strictly after the reference
// time. One-time jobs answer their start time. A zero time with nil error
// means the job has no further runs (its end time has passed).
func ComputeNextRun(job *models.ScheduledJob, from time.Time) (time.Time, error) {
	if err := ValidateSchedule(job); err != nil {
		return time.Time{}, err
	}

	loc, err := loadLocation(job.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timezone %q: %s", ErrInvalidSchedule, job.Timezone, err.Error())
	}

	ref := from.In(loc)

	var next time.Time

	switch job.Frequency {
	case models.FrequencyOnce:
		next = job.StartTime
	case models.FrequencyMinutely:
		next = ref.Truncate(time.Minute).Add(time.Minute)
	case models.FrequencyHourly:
		next = time.Date(ref.Year(), ref.Month(), ref.Day(), ref.Hour(), job.Minute, 0, 0, loc)
		if !next.After(ref) {
			next = next.Add(time.Hour)
		}
	case models.FrequencyDaily:
		next = atTimeOfDay(ref, job, loc)
		if !next.After(ref) {
			next = next.AddDate(0, 0, 1)
		}
	case models.FrequencyWeekly:
		next = nextWeekday(ref, job, loc)
	case models.FrequencyMonthly:
		next = nextMonthDay(ref, job, loc)
	case models.FrequencyQuarterly:
		next = stepFromStart(ref, job.StartTime.In(loc), 3, 0)
	case models.FrequencyYearly:
		next = stepFromStart(ref, job.StartTime.In(loc), 0, 1)
	case models.FrequencyCustom:
		schedule, parseErr := cronParser().Parse(job.Cron)
		if parseErr != nil {
			return time.Time{}, fmt.Errorf("%w: cron %q: %s", ErrInvalidSchedule, job.Cron, parseErr.Error())
		}

		next = schedule.Next(ref)
	}

	if job.EndTime != nil && next.After(*job.EndTime) {
		return time.Time{}, nil
	}

	return next, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}

	return time.LoadLocation(name)
}

func atTimeOfDay(ref time.Time, job *models.ScheduledJob, loc *time.Location) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), job.Hour, job.Minute, 0, 0, loc)
}

func nextWeekday(ref time.Time, job *models.ScheduledJob, loc *time.Location) time.Time {
	days := make(map[time.Weekday]bool, len(job.DaysOfWeek))
	for _, day := range job.DaysOfWeek {
		days[day] = true
	}

	candidate := atTimeOfDay(ref, job, loc)
	for offset := 0; offset <= 7; offset++ {
		shifted := candidate.AddDate(0, 0, offset)
		if shifted.After(ref) && days[shifted.Weekday()] {
			return shifted
		}
	}

	// Unreachable with a validated non-empty day set.
	return candidate.AddDate(0, 0, 7)
}

func nextMonthDay(ref time.Time, job *models.ScheduledJob, loc *time.Location) time.Time {
	// Months shorter than dayOfMonth are skipped rather than clamped.
	year, month := ref.Year(), ref.Month()

	var candidate time.Time

	for range 14 {
		candidate = time.Date(year, month, job.DayOfMonth, job.Hour, job.Minute, 0, 0, loc)

		// time.Date normalizes an overflowing day into the next month.
		if candidate.Day() == job.DayOfMonth && candidate.After(ref) {
			return candidate
		}

		month++
		if month > time.December {
			month = time.January
			year++
		}
	}

	return candidate
}

func stepFromStart(ref, start time.Time, months, years int) time.Time {
	next := start
	for !next.After(ref) {
		next = next.AddDate(years, months, 0)
	}

	return next
}

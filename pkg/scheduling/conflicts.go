package scheduling

import (
	"fmt"
	"strings"

	"github.com/scrapeflow/scrapeflow/pkg/models"
)

// CircularDependencyMessage is the conflict message emitted for jobs caught
// in a dependency cycle.
const CircularDependencyMessage = "Circular dependency detected"

// DetectConflicts derives the conflict list for a job collection from
// scratch. Two independent classes:
//
//  1. Time overlap: for every ordered pair of distinct recurring jobs with
//     equal frequency and equal next-run time, a conflict naming the other
//     job. This is deliberately the weak next-occurrence equality check, not
//     a recurrence-rule intersection.
//  2. Circular dependency: one cycle check per job, seeded from that job.
//
// The result is a pure projection of the current collection; jobs that left
// a cycle since the previous computation simply produce no entry.
func DetectConflicts(jobs []*models.ScheduledJob) []models.Conflict {
	conflicts := make([]models.Conflict, 0)

	for _, a := range jobs {
		if !a.IsRecurring() {
			continue
		}

		for _, b := range jobs {
			if a.ID == b.ID || !b.IsRecurring() {
				continue
			}

			if a.Frequency == b.Frequency && a.NextRunTime.Equal(b.NextRunTime) {
				conflicts = append(conflicts, models.Conflict{
					JobID:   a.ID,
					Message: fmt.Sprintf("Potential time conflict with %q", b.Name),
				})
			}
		}
	}

	adjacency := BuildDependencyGraph(jobs)

	for _, job := range jobs {
		if !HasCycle(adjacency, job.ID) {
			continue
		}

		if hasCircularEntry(conflicts, job.ID) {
			continue
		}

		conflicts = append(conflicts, models.Conflict{
			JobID:   job.ID,
			Message: CircularDependencyMessage,
		})
	}

	return conflicts
}

func hasCircularEntry(conflicts []models.Conflict, jobID string) bool {
	for _, c := range conflicts {
		if c.JobID == jobID && strings.Contains(strings.ToLower(c.Message), "circular") {
			return true
		}
	}

	return false
}

// ResolveConflict removes the exact (jobID, message) pair from the conflict
// list. Dismissal is one-time: the same conflict reappears on the next full
// recomputation if the underlying condition still holds.
func ResolveConflict(conflicts []models.Conflict, jobID, message string) []models.Conflict {
	remaining := make([]models.Conflict, 0, len(conflicts))

	removed := false
	for _, c := range conflicts {
		if !removed && c.JobID == jobID && c.Message == message {
			removed = true

			continue
		}

		remaining = append(remaining, c)
	}

	return remaining
}

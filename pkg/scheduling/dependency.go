// Package scheduling implements the job dependency graph, cycle detection,
// conflict derivation and recurrence math for scheduled jobs. Everything here
// is a pure function over job snapshots; callers re-run the pipeline after
// any change to the job collection.
package scheduling

import "github.com/scrapeflow/scrapeflow/pkg/models"

// BuildDependencyGraph projects a job collection into an adjacency mapping
// from job ID to the IDs it directly depends on. A dependency may point at a
// job outside the collection; such references appear as edges whose target
// has no adjacency entry and traversal treats them as leaves.
func BuildDependencyGraph(jobs []*models.ScheduledJob) map[string][]string {
	adjacency := make(map[string][]string, len(jobs))

	for _, job := range jobs {
		edges := make([]string, 0, len(job.Dependencies))
		for _, dep := range job.Dependencies {
			edges = append(edges, dep.DependsOnJobID)
		}

		adjacency[job.ID] = edges
	}

	return adjacency
}

// HasCycle reports whether a directed cycle is reachable from startID.
// Depth-first traversal with two sets: visited marks nodes fully explored,
// path marks nodes on the current recursion stack. A cycle exists iff the
// traversal revisits a node already on the path. Both sets are local to the
// call, so concurrent evaluations never share state.
func HasCycle(adjacency map[string][]string, startID string) bool {
	visited := make(map[string]bool, len(adjacency))
	path := make(map[string]bool, len(adjacency))

	var visit func(id string) bool
	visit = func(id string) bool {
		if path[id] {
			return true
		}

		if visited[id] {
			return false
		}

		visited[id] = true
		path[id] = true

		for _, next := range adjacency[id] {
			if visit(next) {
				return true
			}
		}

		path[id] = false

		return false
	}

	return visit(startID)
}

package models

// Conflict is a derived warning about a scheduled job: either a potential
// time overlap with another recurring job or a circular dependency. Conflicts
// are never stored; they are recomputed from the job collection whenever it
// changes.
type Conflict struct {
	JobID   string `json:"jobId"`
	Message string `json:"message"`
}

// Package persistence defines the repository interfaces and standardized
// error types shared by every storage backend.
package persistence

import (
	"context"

	"github.com/scrapeflow/scrapeflow/pkg/models"
)

// ListWorkflowsOptions controls pagination and sorting for workflow listings.
type ListWorkflowsOptions struct {
	Limit     int
	Offset    int
	SortBy    string // created_at, updated_at or name
	SortOrder string // asc or desc
}

// WorkflowListResult is a page of workflows plus paging metadata.
type WorkflowListResult struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int                `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// WorkflowRepository stores workflow graph values verbatim.
type WorkflowRepository interface {
	ListWorkflows(ctx context.Context, opts ListWorkflowsOptions) (*WorkflowListResult, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// JobRepository stores scheduled job values verbatim. The conflict pipeline
// always operates on the full collection, so listing is unpaginated.
type JobRepository interface {
	ListJobs(ctx context.Context) ([]*models.ScheduledJob, error)
	GetByID(ctx context.Context, id string) (*models.ScheduledJob, error)
	Save(ctx context.Context, job *models.ScheduledJob) error
	Delete(ctx context.Context, id string) error
}

// Persistence is the storage backend contract.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	JobRepository() JobRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

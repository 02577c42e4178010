package persistence

import (
	"fmt"
	"sort"

	"github.com/scrapeflow/scrapeflow/pkg/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ApplyListOptions sorts and pages an in-memory workflow collection. Backends
// without native sorting (file, redis) share this after loading everything.
func ApplyListOptions(workflows []*models.Workflow, opts ListWorkflowsOptions) (*WorkflowListResult, error) {
	if opts.Limit <= 0 || opts.Limit > maxListLimit {
		opts.Limit = defaultListLimit
	}

	if opts.Offset < 0 {
		opts.Offset = 0
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	switch opts.SortBy {
	case "created_at", "updated_at", "name":
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidSortField, opts.SortBy)
	}

	if opts.SortOrder != "asc" && opts.SortOrder != "desc" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSortOrder, opts.SortOrder)
	}

	sorted := make([]*models.Workflow, len(workflows))
	copy(sorted, workflows)

	sort.SliceStable(sorted, func(i, j int) bool {
		var less bool

		switch opts.SortBy {
		case "name":
			less = sorted[i].Name < sorted[j].Name
		case "updated_at":
			less = sorted[i].UpdatedAt.Before(sorted[j].UpdatedAt)
		default:
			less = sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}

		if opts.SortOrder == "desc" {
			return !less
		}

		return less
	})

	total := len(sorted)

	start := opts.Offset
	if start > total {
		start = total
	}

	end := start + opts.Limit
	if end > total {
		end = total
	}

	return &WorkflowListResult{
		Workflows:   sorted[start:end],
		TotalCount:  total,
		HasNextPage: end < total,
	}, nil
}

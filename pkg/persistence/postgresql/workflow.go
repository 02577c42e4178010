package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/persistence"
)

type workflowRepository struct {
	db *sql.DB
}

// sortColumns is the allowlist guarding ORDER BY interpolation.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
}

func (wr *workflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
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

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	if opts.SortOrder != "asc" && opts.SortOrder != "desc" {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortOrder, opts.SortOrder)
	}

	var total int
	if err := wr.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workflows`).Scan(&total); err != nil {
		return nil, persistence.NewWorkflowError("ListWorkflows", "", err)
	}

	query := fmt.Sprintf(
		`SELECT data FROM workflows ORDER BY %s %s LIMIT $1 OFFSET $2`,
		column, opts.SortOrder,
	)

	rows, err := wr.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, persistence.NewWorkflowError("ListWorkflows", "", err)
	}
	defer rows.Close()

	workflows := make([]*models.Workflow, 0, opts.Limit)

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, persistence.NewWorkflowError("ListWorkflows", "", err)
		}

		var workflow models.Workflow
		if err := json.Unmarshal(data, &workflow); err != nil {
			return nil, persistence.NewWorkflowError("ListWorkflows", "", err)
		}

		workflows = append(workflows, &workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewWorkflowError("ListWorkflows", "", err)
	}

	return &persistence.WorkflowListResult{
		Workflows:   workflows,
		TotalCount:  total,
		HasNextPage: opts.Offset+len(workflows) < total,
	}, nil
}

func (wr *workflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	var data []byte

	err := wr.db.QueryRowContext(ctx, `SELECT data FROM workflows WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return &workflow, nil
}

func (wr *workflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	_, err = wr.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		workflow.ID, workflow.Name, data, workflow.CreatedAt, workflow.UpdatedAt,
	)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (wr *workflowRepository) Delete(ctx context.Context, id string) error {
	result, err := wr.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

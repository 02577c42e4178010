package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/persistence"
)

type jobRepository struct {
	db *sql.DB
}

func (jr *jobRepository) ListJobs(ctx context.Context) ([]*models.ScheduledJob, error) {
	rows, err := jr.db.QueryContext(ctx, `SELECT data FROM scheduled_jobs ORDER BY created_at`)
	if err != nil {
		return nil, persistence.NewJobError("ListJobs", "", err)
	}
	defer rows.Close()

	jobs := make([]*models.ScheduledJob, 0)

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, persistence.NewJobError("ListJobs", "", err)
		}

		var job models.ScheduledJob
		if err := json.Unmarshal(data, &job); err != nil {
			return nil, persistence.NewJobError("ListJobs", "", err)
		}

		jobs = append(jobs, &job)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewJobError("ListJobs", "", err)
	}

	return jobs, nil
}

func (jr *jobRepository) GetByID(ctx context.Context, id string) (*models.ScheduledJob, error) {
	var data []byte

	err := jr.db.QueryRowContext(ctx, `SELECT data FROM scheduled_jobs WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewJobError("GetByID", id, persistence.ErrJobNotFound)
		}

		return nil, persistence.NewJobError("GetByID", id, err)
	}

	var job models.ScheduledJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, persistence.NewJobError("GetByID", id, err)
	}

	return &job, nil
}

func (jr *jobRepository) Save(ctx context.Context, job *models.ScheduledJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	_, err = jr.db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		job.ID, data, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	return nil
}

func (jr *jobRepository) Delete(ctx context.Context, id string) error {
	result, err := jr.db.ExecContext(ctx, `DELETE FROM scheduled_jobs WHERE id = $1`, id)
	if err != nil {
		return persistence.NewJobError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewJobError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewJobError("Delete", id, persistence.ErrJobNotFound)
	}

	return nil
}

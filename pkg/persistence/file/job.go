package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/persistence"
)

// JobRepository stores each scheduled job as jobs/<id>.json.
type JobRepository struct {
	root string
}

// NewJobRepository creates a new job repository.
func NewJobRepository(root string) *JobRepository {
	return &JobRepository{root: root}
}

func (jr *JobRepository) dir() string {
	return path.Join(jr.root, "jobs")
}

func (jr *JobRepository) filePath(id string) string {
	return path.Join(jr.dir(), id+".json")
}

// ListJobs loads the full job collection.
func (jr *JobRepository) ListJobs(ctx context.Context) ([]*models.ScheduledJob, error) {
	jsonFiles, err := fs.Glob(os.DirFS(jr.dir()), "*.json")
	if err != nil {
		return nil, persistence.NewJobError("ListJobs", "", err)
	}

	jobs := make([]*models.ScheduledJob, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

		job, err := jr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load job %s: %w", id, err)
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

// GetByID reads a single job document.
func (jr *JobRepository) GetByID(_ context.Context, id string) (*models.ScheduledJob, error) {
	data, err := os.ReadFile(jr.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
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

// Save writes the job document, creating the directory on first use.
func (jr *JobRepository) Save(_ context.Context, job *models.ScheduledJob) error {
	if err := os.MkdirAll(jr.dir(), 0o755); err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	if err := os.WriteFile(jr.filePath(job.ID), data, 0o644); err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	return nil
}

// Delete removes the job document.
func (jr *JobRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(jr.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewJobError("Delete", id, persistence.ErrJobNotFound)
		}

		return persistence.NewJobError("Delete", id, err)
	}

	return nil
}

// Package redis provides redis-backed persistence: one JSON value per
// workflow or job, indexed by a set of IDs per entity kind.
package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/persistence"
)

const (
	workflowKeyPrefix = "scrapeflow:workflows:"
	workflowIndexKey  = "scrapeflow:workflows"
	jobKeyPrefix      = "scrapeflow:jobs:"
	jobIndexKey       = "scrapeflow:jobs"
)

// Persistence implements persistence.Persistence on a redis server.
type Persistence struct {
	client *redis.Client
}

// NewPersistence connects using a redis:// URL.
func NewPersistence(redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	return &Persistence{client: redis.NewClient(opts)}, nil
}

// Close releases the client connection pool.
func (rp *Persistence) Close(_ context.Context) error {
	return rp.client.Close()
}

// HealthCheck pings the server.
func (rp *Persistence) HealthCheck(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

// WorkflowRepository returns the redis-backed workflow repository.
func (rp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return &workflowRepository{client: rp.client}
}

// JobRepository returns the redis-backed job repository.
func (rp *Persistence) JobRepository() persistence.JobRepository {
	return &jobRepository{client: rp.client}
}

type workflowRepository struct {
	client *redis.Client
}

func (wr *workflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	ids, err := wr.client.SMembers(ctx, workflowIndexKey).Result()
	if err != nil {
		return nil, persistence.NewWorkflowError("ListWorkflows", "", err)
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := wr.GetByID(ctx, id)
		if err != nil {
			// Index entries may outlive their value briefly; skip holes.
			if persistence.IsWorkflowNotFound(err) {
				continue
			}

			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return persistence.ApplyListOptions(workflows, opts)
}

func (wr *workflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	data, err := wr.client.Get(ctx, workflowKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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

	pipe := wr.client.TxPipeline()
	pipe.Set(ctx, workflowKeyPrefix+workflow.ID, data, 0)
	pipe.SAdd(ctx, workflowIndexKey, workflow.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (wr *workflowRepository) Delete(ctx context.Context, id string) error {
	removed, err := wr.client.Del(ctx, workflowKeyPrefix+id).Result()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if removed == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	if err := wr.client.SRem(ctx, workflowIndexKey, id).Err(); err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

type jobRepository struct {
	client *redis.Client
}

func (jr *jobRepository) ListJobs(ctx context.Context) ([]*models.ScheduledJob, error) {
	ids, err := jr.client.SMembers(ctx, jobIndexKey).Result()
	if err != nil {
		return nil, persistence.NewJobError("ListJobs", "", err)
	}

	jobs := make([]*models.ScheduledJob, 0, len(ids))

	for _, id := range ids {
		job, err := jr.GetByID(ctx, id)
		if err != nil {
			if persistence.IsJobNotFound(err) {
				continue
			}

			return nil, err
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (jr *jobRepository) GetByID(ctx context.Context, id string) (*models.ScheduledJob, error) {
	data, err := jr.client.Get(ctx, jobKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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

	pipe := jr.client.TxPipeline()
	pipe.Set(ctx, jobKeyPrefix+job.ID, data, 0)
	pipe.SAdd(ctx, jobIndexKey, job.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewJobError("Save", job.ID, err)
	}

	return nil
}

func (jr *jobRepository) Delete(ctx context.Context, id string) error {
	removed, err := jr.client.Del(ctx, jobKeyPrefix+id).Result()
	if err != nil {
		return persistence.NewJobError("Delete", id, err)
	}

	if removed == 0 {
		return persistence.NewJobError("Delete", id, persistence.ErrJobNotFound)
	}

	if err := jr.client.SRem(ctx, jobIndexKey, id).Err(); err != nil {
		return persistence.NewJobError("Delete", id, err)
	}

	return nil
}

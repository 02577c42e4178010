// Package postgresql provides postgres-backed persistence. Workflows and
// jobs are stored as JSONB documents alongside the columns needed for
// sorting; the schema is migrated on connect.
package postgresql

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq" // postgres driver
	"github.com/scrapeflow/scrapeflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on a postgres database.
type Persistence struct {
	db *sql.DB
}

// NewPersistence connects using a postgres:// URL and runs migrations.
func NewPersistence(ctx context.Context, databaseURL string) (*Persistence, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	p := &Persistence{db: db}
	if err := p.migrate(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

func (pp *Persistence) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scheduled_jobs (
			id TEXT PRIMARY KEY,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workflows_created_at ON workflows (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_workflows_name ON workflows (name)`,
	}

	for _, stmt := range statements {
		if _, err := pp.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database pool.
func (pp *Persistence) Close(_ context.Context) error {
	return pp.db.Close()
}

// HealthCheck pings the database.
func (pp *Persistence) HealthCheck(ctx context.Context) error {
	return pp.db.PingContext(ctx)
}

// WorkflowRepository returns the postgres-backed workflow repository.
func (pp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return &workflowRepository{db: pp.db}
}

// JobRepository returns the postgres-backed job repository.
func (pp *Persistence) JobRepository() persistence.JobRepository {
	return &jobRepository{db: pp.db}
}

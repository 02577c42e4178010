// Package file provides file-based persistence: one JSON document per
// workflow or job under the configured root directory. It is the default
// backend for local development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/scrapeflow/scrapeflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local filesystem.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	jobRepo      *JobRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// Accepts either a plain path or a file:// URL.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		jobRepo:      NewJobRepository(cleanRoot),
	}
}

// Close is a no-op for file persistence.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// WorkflowRepository returns the file-backed workflow repository.
func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

// JobRepository returns the file-backed job repository.
func (fp *Persistence) JobRepository() persistence.JobRepository {
	return fp.jobRepo
}

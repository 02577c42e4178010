package services_test

import (
	"context"
	"testing"

	"github.com/scrapeflow/scrapeflow/pkg/graph"
	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/persistence"
	"github.com/scrapeflow/scrapeflow/pkg/persistence/file"
	"github.com/scrapeflow/scrapeflow/pkg/registry"
	"github.com/scrapeflow/scrapeflow/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkflowService(t *testing.T) *services.Workflow {
	t.Helper()

	return services.NewWorkflow(file.NewPersistence(t.TempDir()), nil)
}

func TestWorkflowCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := setupWorkflowService(t)

	created, err := service.Create(ctx, "Scrape products", "nightly product scrape")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Active)

	loaded, err := service.FetchByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Scrape products", loaded.Name)
}

func TestWorkflowCreateRequiresName(t *testing.T) {
	t.Parallel()

	service := setupWorkflowService(t)

	_, err := service.Create(context.Background(), "", "desc")
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestWorkflowUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := setupWorkflowService(t)

	created, err := service.Create(ctx, "wf", "")
	require.NoError(t, err)

	name := "renamed"
	active := true

	updated, err := service.Update(ctx, created.ID, services.UpdateWorkflowRequest{
		Name:   &name,
		Active: &active,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.True(t, updated.Active)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))

	t.Run("missing workflow", func(t *testing.T) {
		t.Parallel()

		_, err := service.Update(ctx, "missing", services.UpdateWorkflowRequest{})
		assert.True(t, persistence.IsWorkflowNotFound(err))
	})

	t.Run("empty name rejected", func(t *testing.T) {
		t.Parallel()

		empty := ""
		_, err := service.Update(ctx, created.ID, services.UpdateWorkflowRequest{Name: &empty})
		assert.True(t, services.IsValidationError(err))
	})
}

func TestWorkflowDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := setupWorkflowService(t)

	created, err := service.Create(ctx, "doomed", "")
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.FetchByID(ctx, created.ID)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowGraphOperations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := setupWorkflowService(t)

	created, err := service.Create(ctx, "wf", "")
	require.NoError(t, err)

	withTrigger, err := service.AddNode(ctx, created.ID, models.NodeTypeTrigger, "Start", models.Position{})
	require.NoError(t, err)
	require.Len(t, withTrigger.Nodes, 1)

	withAction, err := service.AddNode(ctx, created.ID, models.NodeTypeAction, "Scrape", models.Position{X: 200})
	require.NoError(t, err)
	require.Len(t, withAction.Nodes, 2)

	triggerID := withAction.Nodes[0].ID
	actionID := withAction.Nodes[1].ID

	connected, err := service.AddConnection(ctx, created.ID, triggerID, "", actionID, "")
	require.NoError(t, err)
	require.Len(t, connected.Connections, 1)

	t.Run("patch persists and validates", func(t *testing.T) {
		patched, err := service.PatchNode(ctx, created.ID, actionID, graph.NodePatch{
			Data: map[string]any{"url": "https://example.com"},
		})
		require.NoError(t, err)

		node, _ := patched.NodeByID(actionID)
		assert.Equal(t, "https://example.com", node.Data["url"])

		loaded, err := service.FetchByID(ctx, created.ID)
		require.NoError(t, err)

		node, _ = loaded.NodeByID(actionID)
		assert.Equal(t, "https://example.com", node.Data["url"])
	})

	t.Run("patch with invalid payload is rejected before save", func(t *testing.T) {
		_, err := service.PatchNode(ctx, created.ID, actionID, graph.NodePatch{
			Data: map[string]any{"actionType": "screenshot"},
		})
		require.ErrorIs(t, err, registry.ErrInvalidConfig)

		loaded, err := service.FetchByID(ctx, created.ID)
		require.NoError(t, err)

		node, _ := loaded.NodeByID(actionID)
		assert.Equal(t, "scrape", node.Data["actionType"])
	})

	t.Run("invalid connection leaves workflow unchanged", func(t *testing.T) {
		_, err := service.AddConnection(ctx, created.ID, triggerID, "true", actionID, "")
		require.ErrorIs(t, err, graph.ErrInvalidHandle)

		loaded, err := service.FetchByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.Connections, 1)
	})

	t.Run("remove node cascades and persists", func(t *testing.T) {
		next, err := service.RemoveNode(ctx, created.ID, actionID)
		require.NoError(t, err)
		assert.Len(t, next.Nodes, 1)
		assert.Empty(t, next.Connections)

		loaded, err := service.FetchByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Connections)
	})
}

func TestWorkflowListWorkflows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := setupWorkflowService(t)

	for _, name := range []string{"alpha", "bravo"} {
		_, err := service.Create(ctx, name, "")
		require.NoError(t, err)
	}

	result, err := service.ListWorkflows(ctx, services.ListWorkflowsRequest{SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 2)
	assert.Equal(t, "alpha", result.Workflows[0].Name)

	_, err = service.ListWorkflows(ctx, services.ListWorkflowsRequest{SortBy: "owner"})
	assert.ErrorIs(t, err, services.ErrInvalidSortField)
}

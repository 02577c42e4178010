package graph_test

import (
	"testing"

	"github.com/scrapeflow/scrapeflow/pkg/graph"
	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWorkflow(t *testing.T) (*models.Workflow, string, string, string) {
	t.Helper()

	workflow := models.NewWorkflow("Scrape products", "nightly product scrape")

	withTrigger, err := graph.AddNode(workflow, models.NodeTypeTrigger, "Start", models.Position{X: 0, Y: 0})
	require.NoError(t, err)

	withAction, err := graph.AddNode(withTrigger, models.NodeTypeAction, "Scrape", models.Position{X: 200, Y: 0})
	require.NoError(t, err)

	withCondition, err := graph.AddNode(withAction, models.NodeTypeCondition, "Has results?", models.Position{X: 400, Y: 0})
	require.NoError(t, err)

	triggerID := withCondition.Nodes[0].ID
	actionID := withCondition.Nodes[1].ID
	conditionID := withCondition.Nodes[2].ID

	return withCondition, triggerID, actionID, conditionID
}

func TestAddNode(t *testing.T) {
	t.Parallel()

	t.Run("populates default payload for the type", func(t *testing.T) {
		t.Parallel()

		workflow := models.NewWorkflow("wf", "")

		next, err := graph.AddNode(workflow, models.NodeTypeDelay, "Wait", models.Position{X: 10, Y: 20})
		require.NoError(t, err)
		require.Len(t, next.Nodes, 1)

		node := next.Nodes[0]
		assert.NotEmpty(t, node.ID)
		assert.Equal(t, models.NodeTypeDelay, node.Type)
		assert.Equal(t, "Wait", node.Name)
		assert.Equal(t, "fixed", node.Data["delayType"])
		assert.Equal(t, 5, node.Data["duration"])
	})

	t.Run("does not mutate the input workflow", func(t *testing.T) {
		t.Parallel()

		workflow := models.NewWorkflow("wf", "")

		next, err := graph.AddNode(workflow, models.NodeTypeAction, "Scrape", models.Position{})
		require.NoError(t, err)

		assert.Empty(t, workflow.Nodes)
		assert.Len(t, next.Nodes, 1)
	})

	t.Run("rejects unknown node type", func(t *testing.T) {
		t.Parallel()

		workflow := models.NewWorkflow("wf", "")

		_, err := graph.AddNode(workflow, models.NodeType("loop"), "Loop", models.Position{})
		require.ErrorIs(t, err, registry.ErrUnknownNodeType)
	})
}

func TestRemoveNodeCascadesConnections(t *testing.T) {
	t.Parallel()

	workflow, triggerID, actionID, conditionID := buildWorkflow(t)

	connected, err := graph.AddConnection(workflow, triggerID, "", actionID, "")
	require.NoError(t, err)

	connected, err = graph.AddConnection(connected, actionID, "", conditionID, "")
	require.NoError(t, err)
	require.Len(t, connected.Connections, 2)

	next, err := graph.RemoveNode(connected, actionID)
	require.NoError(t, err)

	assert.Len(t, next.Nodes, 2)
	assert.Empty(t, next.Connections, "both edges touched the removed node")

	// Original value untouched.
	assert.Len(t, connected.Nodes, 3)
	assert.Len(t, connected.Connections, 2)
}

func TestRemoveNodeNotFound(t *testing.T) {
	t.Parallel()

	workflow, _, _, _ := buildWorkflow(t)

	_, err := graph.RemoveNode(workflow, "missing")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestAddConnection(t *testing.T) {
	t.Parallel()

	t.Run("rejects missing source", func(t *testing.T) {
		t.Parallel()

		workflow, _, actionID, _ := buildWorkflow(t)

		_, err := graph.AddConnection(workflow, "missing", "", actionID, "")
		assert.ErrorIs(t, err, graph.ErrInvalidReference)
		assert.Empty(t, workflow.Connections)
	})

	t.Run("rejects missing target", func(t *testing.T) {
		t.Parallel()

		workflow, triggerID, _, _ := buildWorkflow(t)

		_, err := graph.AddConnection(workflow, triggerID, "", "missing", "")
		assert.ErrorIs(t, err, graph.ErrInvalidReference)
	})

	t.Run("rejects named handle on non-condition source", func(t *testing.T) {
		t.Parallel()

		workflow, triggerID, actionID, _ := buildWorkflow(t)

		_, err := graph.AddConnection(workflow, triggerID, "true", actionID, "")
		assert.ErrorIs(t, err, graph.ErrInvalidHandle)
	})

	t.Run("rejects unknown condition handle", func(t *testing.T) {
		t.Parallel()

		workflow, _, actionID, conditionID := buildWorkflow(t)

		_, err := graph.AddConnection(workflow, conditionID, "maybe", actionID, "")
		assert.ErrorIs(t, err, graph.ErrInvalidHandle)
	})

	t.Run("accepts condition true and false handles", func(t *testing.T) {
		t.Parallel()

		workflow, _, actionID, conditionID := buildWorkflow(t)

		next, err := graph.AddConnection(workflow, conditionID, models.HandleTrue, actionID, "")
		require.NoError(t, err)

		next, err = graph.AddConnection(next, conditionID, models.HandleFalse, actionID, "")
		require.NoError(t, err)

		assert.Len(t, next.Connections, 2)
	})

	t.Run("accepts empty handle on any source", func(t *testing.T) {
		t.Parallel()

		workflow, triggerID, actionID, _ := buildWorkflow(t)

		next, err := graph.AddConnection(workflow, triggerID, "", actionID, "")
		require.NoError(t, err)
		assert.Len(t, next.Connections, 1)
		assert.NotEmpty(t, next.Connections[0].ID)
	})
}

func TestRemoveConnection(t *testing.T) {
	t.Parallel()

	workflow, triggerID, actionID, _ := buildWorkflow(t)

	connected, err := graph.AddConnection(workflow, triggerID, "", actionID, "")
	require.NoError(t, err)

	next, err := graph.RemoveConnection(connected, connected.Connections[0].ID)
	require.NoError(t, err)
	assert.Empty(t, next.Connections)
	assert.Len(t, next.Nodes, 3, "nodes survive connection removal")

	_, err = graph.RemoveConnection(connected, "missing")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestPatchNodeData(t *testing.T) {
	t.Parallel()

	t.Run("shallow merges payload fields", func(t *testing.T) {
		t.Parallel()

		workflow, _, actionID, _ := buildWorkflow(t)

		next, err := graph.PatchNodeData(workflow, actionID, graph.NodePatch{
			Data: map[string]any{"url": "https://example.com/products"},
		})
		require.NoError(t, err)

		node, ok := next.NodeByID(actionID)
		require.True(t, ok)
		assert.Equal(t, "https://example.com/products", node.Data["url"])
		assert.Equal(t, "scrape", node.Data["actionType"], "untouched fields survive")
	})

	t.Run("changing sub-kind resets payload to new default", func(t *testing.T) {
		t.Parallel()

		workflow, _, _, conditionID := buildWorkflow(t)

		// Give the equals condition an expression first.
		withExpr, err := graph.PatchNodeData(workflow, conditionID, graph.NodePatch{
			Data: map[string]any{"expression": "count == 0"},
		})
		require.NoError(t, err)

		next, err := graph.PatchNodeData(withExpr, conditionID, graph.NodePatch{
			Data: map[string]any{"condition": "exists"},
		})
		require.NoError(t, err)

		node, ok := next.NodeByID(conditionID)
		require.True(t, ok)
		assert.Equal(t, "exists", node.Data["condition"])
		assert.Equal(t, "", node.Data["expression"], "old sub-kind fields must not leak")
	})

	t.Run("same sub-kind value does not reset", func(t *testing.T) {
		t.Parallel()

		workflow, _, _, conditionID := buildWorkflow(t)

		withExpr, err := graph.PatchNodeData(workflow, conditionID, graph.NodePatch{
			Data: map[string]any{"expression": "count == 0"},
		})
		require.NoError(t, err)

		next, err := graph.PatchNodeData(withExpr, conditionID, graph.NodePatch{
			Data: map[string]any{"condition": "equals", "parameters": map[string]any{"field": "count"}},
		})
		require.NoError(t, err)

		node, _ := next.NodeByID(conditionID)
		assert.Equal(t, "count == 0", node.Data["expression"])
	})

	t.Run("updates name and description", func(t *testing.T) {
		t.Parallel()

		workflow, triggerID, _, _ := buildWorkflow(t)

		name := "Entry point"
		description := "manual start"

		next, err := graph.PatchNodeData(workflow, triggerID, graph.NodePatch{
			Name:        &name,
			Description: &description,
		})
		require.NoError(t, err)

		node, _ := next.NodeByID(triggerID)
		assert.Equal(t, "Entry point", node.Name)
		assert.Equal(t, "manual start", node.Description)
	})

	t.Run("missing node", func(t *testing.T) {
		t.Parallel()

		workflow, _, _, _ := buildWorkflow(t)

		_, err := graph.PatchNodeData(workflow, "missing", graph.NodePatch{})
		assert.ErrorIs(t, err, graph.ErrNotFound)
	})
}

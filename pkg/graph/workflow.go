package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/registry"
)

// NodePatch is a partial update for a node. Nil fields are left untouched.
// Data is shallow-merged into the node's existing payload, except when it
// changes the sub-kind tag, in which case the payload is reset to the new
// sub-kind's default before the patch is applied.
type NodePatch struct {
	Name        *string
	Description *string
	Data        map[string]any
}

// AddNode appends a node of the given type with its default configuration
// payload and returns the updated workflow. It never fails for a known node
// type.
func AddNode(w *models.Workflow, nodeType models.NodeType, name string, position models.Position) (*models.Workflow, error) {
	config, err := registry.DefaultConfig(nodeType)
	if err != nil {
		return nil, newMutationError("AddNode", w.ID, "", err)
	}

	next := w.Clone()
	next.Nodes = append(next.Nodes, &models.WorkflowNode{
		ID:       uuid.New().String(),
		Type:     nodeType,
		Name:     name,
		Position: position,
		Data:     config,
	})
	next.UpdatedAt = time.Now().UTC()

	return next, nil
}

// RemoveNode removes a node and cascades: every connection touching the node
// is removed with it. A dangling connection is an invariant violation, so the
// cascade is unconditional.
func RemoveNode(w *models.Workflow, nodeID string) (*models.Workflow, error) {
	if !w.HasNode(nodeID) {
		return nil, newMutationError("RemoveNode", w.ID, nodeID, ErrNotFound)
	}

	next := w.Clone()

	nodes := next.Nodes[:0]
	for _, node := range next.Nodes {
		if node.ID != nodeID {
			nodes = append(nodes, node)
		}
	}
	next.Nodes = nodes

	connections := next.Connections[:0]
	for _, conn := range next.Connections {
		if conn.Source != nodeID && conn.Target != nodeID {
			connections = append(connections, conn)
		}
	}
	next.Connections = connections

	next.UpdatedAt = time.Now().UTC()

	return next, nil
}

// AddConnection connects two nodes. Both endpoints must exist in the node
// set, and the source handle must be legal for the source node's type: only
// condition nodes expose named handles, and those are exactly "true" and
// "false".
func AddConnection(w *models.Workflow, source, sourceHandle, target, targetHandle string) (*models.Workflow, error) {
	sourceNode, ok := w.NodeByID(source)
	if !ok {
		return nil, newMutationError("AddConnection", w.ID, source, ErrInvalidReference)
	}

	if !w.HasNode(target) {
		return nil, newMutationError("AddConnection", w.ID, target, ErrInvalidReference)
	}

	if err := validateSourceHandle(sourceNode, sourceHandle); err != nil {
		return nil, newMutationError("AddConnection", w.ID, source, err)
	}

	next := w.Clone()
	next.Connections = append(next.Connections, &models.Connection{
		ID:           uuid.New().String(),
		Source:       source,
		SourceHandle: sourceHandle,
		Target:       target,
		TargetHandle: targetHandle,
	})
	next.UpdatedAt = time.Now().UTC()

	return next, nil
}

func validateSourceHandle(sourceNode *models.WorkflowNode, sourceHandle string) error {
	if sourceHandle == "" {
		return nil
	}

	if sourceNode.Type != models.NodeTypeCondition {
		return fmt.Errorf("%w: %s nodes have a single implicit output", ErrInvalidHandle, sourceNode.Type)
	}

	if sourceHandle != models.HandleTrue && sourceHandle != models.HandleFalse {
		return fmt.Errorf("%w: condition handles are %q and %q", ErrInvalidHandle, models.HandleTrue, models.HandleFalse)
	}

	return nil
}

// RemoveConnection removes the connection with the given ID.
func RemoveConnection(w *models.Workflow, connectionID string) (*models.Workflow, error) {
	found := false

	for _, conn := range w.Connections {
		if conn.ID == connectionID {
			found = true

			break
		}
	}

	if !found {
		return nil, newMutationError("RemoveConnection", w.ID, connectionID, ErrNotFound)
	}

	next := w.Clone()

	connections := next.Connections[:0]
	for _, conn := range next.Connections {
		if conn.ID != connectionID {
			connections = append(connections, conn)
		}
	}
	next.Connections = connections
	next.UpdatedAt = time.Now().UTC()

	return next, nil
}

// PatchNodeData shallow-merges a partial payload into a node. Changing the
// sub-kind tag (e.g. a condition node's "condition" from equals to exists)
// resets the payload to the new sub-kind's default first; the previous
// sub-kind's fields are not valid for the new one and must not leak through.
func PatchNodeData(w *models.Workflow, nodeID string, patch NodePatch) (*models.Workflow, error) {
	if !w.HasNode(nodeID) {
		return nil, newMutationError("PatchNodeData", w.ID, nodeID, ErrNotFound)
	}

	next := w.Clone()
	node, _ := next.NodeByID(nodeID)

	if patch.Name != nil {
		node.Name = *patch.Name
	}

	if patch.Description != nil {
		node.Description = *patch.Description
	}

	if len(patch.Data) > 0 {
		merged, err := mergeNodeData(node, patch.Data)
		if err != nil {
			return nil, newMutationError("PatchNodeData", w.ID, nodeID, err)
		}

		node.Data = merged
	}

	next.UpdatedAt = time.Now().UTC()

	return next, nil
}

func mergeNodeData(node *models.WorkflowNode, patch map[string]any) (map[string]any, error) {
	key, err := registry.SubkindKey(node.Type)
	if err != nil {
		return nil, err
	}

	base := node.Data
	if base == nil {
		base = map[string]any{}
	}

	if patched, ok := patch[key]; ok {
		current := base[key]
		if newKind, ok := patched.(string); ok && newKind != current {
			base, err = registry.SubkindDefault(node.Type, newKind)
			if err != nil {
				return nil, err
			}
		}
	}

	merged := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}

	for k, v := range patch {
		merged[k] = v
	}

	return merged, nil
}

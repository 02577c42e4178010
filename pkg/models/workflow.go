// Package models defines the core domain models for node-based scraping
// automation: workflow graphs, scheduled jobs, and derived conflicts.
package models

import (
	"time"

	"github.com/google/uuid"
)

// NodeType is the kind of step a workflow node represents.
type NodeType string

const (
	NodeTypeTrigger        NodeType = "trigger"
	NodeTypeAction         NodeType = "action"
	NodeTypeCondition      NodeType = "condition"
	NodeTypeTransformation NodeType = "transformation"
	NodeTypeNotification   NodeType = "notification"
	NodeTypeDelay          NodeType = "delay"
)

// NodeTypes lists every valid node type.
var NodeTypes = []NodeType{
	NodeTypeTrigger,
	NodeTypeAction,
	NodeTypeCondition,
	NodeTypeTransformation,
	NodeTypeNotification,
	NodeTypeDelay,
}

// Valid reports whether t is one of the six known node types.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}

	return false
}

// Condition source nodes expose exactly these two output handles.
const (
	HandleTrue  = "true"
	HandleFalse = "false"
)

// Position holds canvas coordinates. Presentation-only: no core invariant
// depends on it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorkflowNode is one typed step in a workflow graph. Data holds the
// type-specific configuration payload; its shape is owned by pkg/registry.
type WorkflowNode struct {
	ID          string         `json:"id"          validate:"required"`
	Type        NodeType       `json:"type"        validate:"required,oneof=trigger action condition transformation notification delay"`
	Name        string         `json:"name"        validate:"required,min=1"`
	Description string         `json:"description,omitempty"`
	Position    Position       `json:"position"`
	Data        map[string]any `json:"data"`
}

// Connection is a directed edge between two node handles.
type Connection struct {
	ID           string `json:"id"           validate:"required"`
	Source       string `json:"source"       validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Target       string `json:"target"       validate:"required"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Label        string `json:"label,omitempty"`
}

// Workflow is a named directed graph of typed steps. Invariants: node IDs
// are unique, and every connection endpoint references a node in Nodes.
// Mutations go through pkg/graph, which returns fresh values.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"        validate:"required,min=1"`
	Description string          `json:"description,omitempty"`
	Active      bool            `json:"active"`
	Nodes       []*WorkflowNode `json:"nodes"`
	Connections []*Connection   `json:"connections"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewWorkflow creates an empty workflow with a generated ID and timestamps.
func NewWorkflow(name, description string) *Workflow {
	now := time.Now().UTC()

	return &Workflow{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Active:      false,
		Nodes:       []*WorkflowNode{},
		Connections: []*Connection{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NodeByID returns the node with the given ID, if present.
func (w *Workflow) NodeByID(nodeID string) (*WorkflowNode, bool) {
	for _, node := range w.Nodes {
		if node.ID == nodeID {
			return node, true
		}
	}

	return nil, false
}

// HasNode reports whether a node with the given ID exists.
func (w *Workflow) HasNode(nodeID string) bool {
	_, ok := w.NodeByID(nodeID)

	return ok
}

// Clone returns a deep copy of the workflow. Node data maps are copied one
// level deep, which matches the shallow-merge patch discipline in pkg/graph.
func (w *Workflow) Clone() *Workflow {
	clone := *w

	clone.Nodes = make([]*WorkflowNode, len(w.Nodes))
	for i, node := range w.Nodes {
		nodeCopy := *node
		nodeCopy.Data = copyMap(node.Data)
		clone.Nodes[i] = &nodeCopy
	}

	clone.Connections = make([]*Connection, len(w.Connections))
	for i, conn := range w.Connections {
		connCopy := *conn
		clone.Connections[i] = &connCopy
	}

	return &clone
}

func copyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}

	return dst
}

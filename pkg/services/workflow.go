package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/scrapeflow/scrapeflow/pkg/events"
	"github.com/scrapeflow/scrapeflow/pkg/eventbus"
	"github.com/scrapeflow/scrapeflow/pkg/graph"
	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/scrapeflow/scrapeflow/pkg/otelhelper"
	"github.com/scrapeflow/scrapeflow/pkg/persistence"
	"github.com/scrapeflow/scrapeflow/pkg/registry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const workflowTracerName = "scrapeflow/workflow"

// Workflow provides business operations over workflow graphs. All graph
// mutations go through pkg/graph so the structural invariants hold for every
// value handed to persistence or the executor.
type Workflow struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
}

// NewWorkflow creates a new workflow service. The event bus may be nil; in
// that case lifecycle events are skipped.
func NewWorkflow(p persistence.Persistence, bus eventbus.EventPublisher) *Workflow {
	return &Workflow{
		persistence: p,
		eventBus:    bus,
		logger:      slog.With("module", "workflow_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := s.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// ListWorkflows retrieves workflows with sorting and pagination.
func (s *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) (*persistence.WorkflowListResult, error) {
	result, err := s.persistence.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		Limit:     req.Limit,
		Offset:    req.Offset,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if persistence.IsInvalidSortField(err) {
			return nil, ErrInvalidSortField
		}

		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return result, nil
}

// FetchByID loads one workflow.
func (s *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return s.persistence.WorkflowRepository().GetByID(ctx, id)
}

// Create stores a new empty workflow.
func (s *Workflow) Create(ctx context.Context, name, description string) (*models.Workflow, error) {
	if name == "" {
		return nil, NewValidationError("Create", "NAME_REQUIRED", "workflow name is required", ErrNameRequired)
	}

	workflow := models.NewWorkflow(name, description)

	if err := s.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	s.publish(ctx, workflow.ID, events.WorkflowCreated{
		BaseEvent:  s.baseEvent(events.WorkflowCreatedEvent),
		WorkflowID: workflow.ID,
		Name:       workflow.Name,
	})

	return workflow, nil
}

// UpdateWorkflowRequest is a partial update; nil fields stay untouched.
type UpdateWorkflowRequest struct {
	Name        *string
	Description *string
	Active      *bool
}

// Update patches workflow metadata.
func (s *Workflow) Update(ctx context.Context, id string, req UpdateWorkflowRequest) (*models.Workflow, error) {
	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := workflow.Clone()

	if req.Name != nil {
		if *req.Name == "" {
			return nil, NewValidationError("Update", "NAME_REQUIRED", "workflow name is required", ErrNameRequired)
		}

		next.Name = *req.Name
	}

	if req.Description != nil {
		next.Description = *req.Description
	}

	if req.Active != nil {
		next.Active = *req.Active
	}

	next.UpdatedAt = time.Now().UTC()

	return s.save(ctx, next, "update")
}

// Delete removes a workflow.
func (s *Workflow) Delete(ctx context.Context, id string) error {
	if err := s.persistence.WorkflowRepository().Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, id, events.WorkflowDeleted{
		BaseEvent:  s.baseEvent(events.WorkflowDeletedEvent),
		WorkflowID: id,
	})

	return nil
}

// AddNode appends a node with its registry default payload.
func (s *Workflow) AddNode(ctx context.Context, workflowID string, nodeType models.NodeType, name string, position models.Position) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, otel.Tracer(workflowTracerName), "workflow.add_node",
		attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	next, err := graph.AddNode(workflow, nodeType, name, position)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, next, "node.added")
}

// RemoveNode removes a node, cascading over its connections.
func (s *Workflow) RemoveNode(ctx context.Context, workflowID, nodeID string) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, otel.Tracer(workflowTracerName), "workflow.remove_node",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.NodeIDKey, nodeID))
	defer span.End()

	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	next, err := graph.RemoveNode(workflow, nodeID)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, next, "node.removed")
}

// PatchNode applies a partial node update and validates the resulting
// payload against the node type's configuration schema.
func (s *Workflow) PatchNode(ctx context.Context, workflowID, nodeID string, patch graph.NodePatch) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, otel.Tracer(workflowTracerName), "workflow.patch_node",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.NodeIDKey, nodeID))
	defer span.End()

	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	next, err := graph.PatchNodeData(workflow, nodeID, patch)
	if err != nil {
		return nil, err
	}

	node, _ := next.NodeByID(nodeID)
	if err := registry.ValidateConfig(node.Type, node.Data); err != nil {
		return nil, err
	}

	return s.save(ctx, next, "node.patched")
}

// AddConnection connects two nodes.
func (s *Workflow) AddConnection(ctx context.Context, workflowID, source, sourceHandle, target, targetHandle string) (*models.Workflow, error) {
	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	next, err := graph.AddConnection(workflow, source, sourceHandle, target, targetHandle)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, next, "connection.added")
}

// RemoveConnection removes one connection.
func (s *Workflow) RemoveConnection(ctx context.Context, workflowID, connectionID string) (*models.Workflow, error) {
	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	next, err := graph.RemoveConnection(workflow, connectionID)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, next, "connection.removed")
}

func (s *Workflow) save(ctx context.Context, workflow *models.Workflow, change string) (*models.Workflow, error) {
	if err := s.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	s.publish(ctx, workflow.ID, events.WorkflowUpdated{
		BaseEvent:  s.baseEvent(events.WorkflowUpdatedEvent),
		WorkflowID: workflow.ID,
		Change:     change,
	})

	return workflow, nil
}

func (s *Workflow) baseEvent(eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// publish sends a lifecycle event. Publish failures are logged, not
// propagated: the mutation already succeeded.
func (s *Workflow) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

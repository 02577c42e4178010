package registry

import "github.com/scrapeflow/scrapeflow/pkg/models"

// configSchemas holds the JSON schema for each node type's configuration
// payload. Schemas pin the sub-kind tag and the field types; additional
// properties stay open so sub-kinds can carry their own fields.
var configSchemas = map[models.NodeType]map[string]any{
	models.NodeTypeTrigger: {
		"type":     "object",
		"required": []any{"triggerType"},
		"properties": map[string]any{
			"triggerType":   map[string]any{"type": "string", "enum": []any{"manual", "schedule", "webhook"}},
			"cron":          map[string]any{"type": "string"},
			"timezone":      map[string]any{"type": "string"},
			"path":          map[string]any{"type": "string"},
			"configuration": map[string]any{"type": "object"},
		},
	},
	models.NodeTypeAction: {
		"type":     "object",
		"required": []any{"actionType"},
		"properties": map[string]any{
			"actionType":    map[string]any{"type": "string", "enum": []any{"scrape", "extract", "export"}},
			"url":           map[string]any{"type": "string"},
			"selector":      map[string]any{"type": "string"},
			"source":        map[string]any{"type": "string"},
			"fields":        map[string]any{"type": "array"},
			"format":        map[string]any{"type": "string"},
			"destination":   map[string]any{"type": "string"},
			"configuration": map[string]any{"type": "object"},
		},
	},
	models.NodeTypeCondition: {
		"type":     "object",
		"required": []any{"condition"},
		"properties": map[string]any{
			"condition":  map[string]any{"type": "string", "enum": []any{"equals", "notEquals", "contains", "exists", "greaterThan", "lessThan"}},
			"expression": map[string]any{"type": "string"},
			"parameters": map[string]any{"type": "object"},
		},
	},
	models.NodeTypeTransformation: {
		"type":     "object",
		"required": []any{"transformationType"},
		"properties": map[string]any{
			"transformationType": map[string]any{"type": "string", "enum": []any{"map", "filter", "aggregate"}},
			"expression":         map[string]any{"type": "string"},
			"operation":          map[string]any{"type": "string"},
			"field":              map[string]any{"type": "string"},
			"outputField":        map[string]any{"type": "string"},
		},
	},
	models.NodeTypeNotification: {
		"type":     "object",
		"required": []any{"notificationType"},
		"properties": map[string]any{
			"notificationType": map[string]any{"type": "string", "enum": []any{"email", "slack", "webhook"}},
			"recipients":       map[string]any{"type": "array"},
			"channelName":      map[string]any{"type": "string"},
			"url":              map[string]any{"type": "string"},
			"template":         map[string]any{"type": "string"},
		},
	},
	models.NodeTypeDelay: {
		"type":     "object",
		"required": []any{"delayType"},
		"properties": map[string]any{
			"delayType":  map[string]any{"type": "string", "enum": []any{"fixed", "dynamic"}},
			"duration":   map[string]any{"type": "number", "minimum": 0},
			"expression": map[string]any{"type": "string"},
			"timeUnit":   map[string]any{"type": "string", "enum": []any{"seconds", "minutes", "hours"}},
		},
	},
}

// Package registry enumerates the fixed set of workflow node types and owns
// their configuration contracts: default payloads, sub-kind tag keys, and
// payload validation.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrUnknownNodeType is returned for a type outside the six known kinds.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrInvalidConfig is returned when a payload fails schema validation.
	ErrInvalidConfig = errors.New("invalid node configuration")
)

// subkindKeys maps each node type to the field that tags its sub-kind.
var subkindKeys = map[models.NodeType]string{
	models.NodeTypeTrigger:        "triggerType",
	models.NodeTypeAction:         "actionType",
	models.NodeTypeCondition:      "condition",
	models.NodeTypeTransformation: "transformationType",
	models.NodeTypeNotification:   "notificationType",
	models.NodeTypeDelay:          "delayType",
}

// subkindDefaults holds the fixed-shape default payload for every sub-kind.
// The first entry per type is the type default.
var subkindDefaults = map[models.NodeType]map[string]func() map[string]any{
	models.NodeTypeTrigger: {
		"manual": func() map[string]any {
			return map[string]any{"triggerType": "manual", "configuration": map[string]any{}}
		},
		"schedule": func() map[string]any {
			return map[string]any{"triggerType": "schedule", "cron": "0 * * * *", "timezone": "UTC", "configuration": map[string]any{}}
		},
		"webhook": func() map[string]any {
			return map[string]any{"triggerType": "webhook", "path": "", "configuration": map[string]any{}}
		},
	},
	models.NodeTypeAction: {
		"scrape": func() map[string]any {
			return map[string]any{"actionType": "scrape", "url": "", "selector": "", "configuration": map[string]any{}}
		},
		"extract": func() map[string]any {
			return map[string]any{"actionType": "extract", "source": "", "fields": []any{}, "configuration": map[string]any{}}
		},
		"export": func() map[string]any {
			return map[string]any{"actionType": "export", "format": "json", "destination": "", "configuration": map[string]any{}}
		},
	},
	models.NodeTypeCondition: {
		"equals":      conditionDefault("equals"),
		"notEquals":   conditionDefault("notEquals"),
		"contains":    conditionDefault("contains"),
		"exists":      conditionDefault("exists"),
		"greaterThan": conditionDefault("greaterThan"),
		"lessThan":    conditionDefault("lessThan"),
	},
	models.NodeTypeTransformation: {
		"map": func() map[string]any {
			return map[string]any{"transformationType": "map", "expression": "", "outputField": ""}
		},
		"filter": func() map[string]any {
			return map[string]any{"transformationType": "filter", "expression": "", "outputField": ""}
		},
		"aggregate": func() map[string]any {
			return map[string]any{"transformationType": "aggregate", "operation": "count", "field": "", "outputField": ""}
		},
	},
	models.NodeTypeNotification: {
		"email": func() map[string]any {
			return map[string]any{"notificationType": "email", "recipients": []any{}, "template": ""}
		},
		"slack": func() map[string]any {
			return map[string]any{"notificationType": "slack", "channelName": "", "template": ""}
		},
		"webhook": func() map[string]any {
			return map[string]any{"notificationType": "webhook", "url": "", "template": ""}
		},
	},
	models.NodeTypeDelay: {
		"fixed": func() map[string]any {
			return map[string]any{"delayType": "fixed", "duration": 5, "timeUnit": "minutes"}
		},
		"dynamic": func() map[string]any {
			return map[string]any{"delayType": "dynamic", "expression": "", "timeUnit": "minutes"}
		},
	},
}

// typeDefaultSubkind is the sub-kind used by DefaultConfig for each type.
var typeDefaultSubkind = map[models.NodeType]string{
	models.NodeTypeTrigger:        "manual",
	models.NodeTypeAction:         "scrape",
	models.NodeTypeCondition:      "equals",
	models.NodeTypeTransformation: "map",
	models.NodeTypeNotification:   "email",
	models.NodeTypeDelay:          "fixed",
}

func conditionDefault(kind string) func() map[string]any {
	return func() map[string]any {
		return map[string]any{"condition": kind, "expression": "", "parameters": map[string]any{}}
	}
}

// SubkindKey returns the config field that tags the sub-kind for a node type.
func SubkindKey(nodeType models.NodeType) (string, error) {
	key, ok := subkindKeys[nodeType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeType)
	}

	return key, nil
}

// DefaultConfig returns the default configuration payload for a node type.
func DefaultConfig(nodeType models.NodeType) (map[string]any, error) {
	subkind, ok := typeDefaultSubkind[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeType)
	}

	return subkindDefaults[nodeType][subkind](), nil
}

// SubkindDefault returns the default payload for a specific sub-kind. An
// unknown sub-kind falls back to the type default with the tag overridden,
// so changing sub-kinds always resets the payload rather than merging stale
// fields from the previous sub-kind.
func SubkindDefault(nodeType models.NodeType, subkind string) (map[string]any, error) {
	kinds, ok := subkindDefaults[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeType)
	}

	if build, ok := kinds[subkind]; ok {
		return build(), nil
	}

	config, err := DefaultConfig(nodeType)
	if err != nil {
		return nil, err
	}

	key := subkindKeys[nodeType]
	config[key] = subkind

	return config, nil
}

// ValidateConfig checks a node configuration payload against the JSON schema
// for its type. Condition expressions are additionally compiled to catch
// syntax errors before the payload is stored.
func ValidateConfig(nodeType models.NodeType, config map[string]any) error {
	schema, ok := configSchemas[nodeType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeType)
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(details, "; "))
	}

	if nodeType == models.NodeTypeCondition {
		return validateConditionExpression(config)
	}

	return nil
}

func validateConditionExpression(config map[string]any) error {
	expression, _ := config["expression"].(string)
	if expression == "" {
		return nil
	}

	_, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return fmt.Errorf("%w: condition expression: %s", ErrInvalidConfig, err.Error())
	}

	return nil
}

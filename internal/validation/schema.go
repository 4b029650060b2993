package validation

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// FieldKey identifies a JSON-typed column. Using a typed key instead of
// raw strings keeps the registry closed: a lookup with an unknown key is a
// programming error surfaced by SchemaHealth, not a silent no-op.
type FieldKey string

const (
	FieldUserPreferences    FieldKey = "user.preferences"
	FieldServerCapabilities FieldKey = "server.capabilities"
	FieldServerTags         FieldKey = "server.tags"
	FieldToolInputSchema    FieldKey = "tool.input_schema"
	FieldRolePermissions    FieldKey = "role.permissions"
	FieldFlagTargeting      FieldKey = "flag.targeting_rules"
	FieldAuditDetails       FieldKey = "audit_log.details"
	FieldSessionMetadata    FieldKey = "session.metadata"
)

// knownFields is the full list of JSONB columns the gateway persists.
// SchemaHealth checks this list against the registry to catch drift when a
// column is added without a schema.
var knownFields = []FieldKey{
	FieldUserPreferences,
	FieldServerCapabilities,
	FieldServerTags,
	FieldToolInputSchema,
	FieldRolePermissions,
	FieldFlagTargeting,
	FieldAuditDetails,
	FieldSessionMetadata,
}

// Schema describes the allowed structure of one JSON field. Rules are
// validator/v10 tag expressions applied per property. Strict schemas
// reject properties that are not declared.
type Schema struct {
	Rules    map[string]string
	Required []string
	Strict   bool
}

// Validate checks data against the schema and returns structural issues.
// An empty slice means the data is valid.
func (s *Schema) Validate(v *validator.Validate, data map[string]interface{}) []Issue {
	var issues []Issue

	for _, key := range s.Required {
		if _, ok := data[key]; !ok {
			issues = append(issues, Issue{
				Path:    key,
				Message: "required property is missing",
			})
		}
	}

	if s.Strict {
		var undeclared []string
		for key := range data {
			if _, ok := s.Rules[key]; !ok {
				undeclared = append(undeclared, key)
			}
		}
		sort.Strings(undeclared)
		for _, key := range undeclared {
			issues = append(issues, Issue{
				Path:    key,
				Message: "property is not declared in the schema",
			})
		}
	}

	// Only present properties are run through the tag rules; absence is
	// handled by Required above.
	rules := make(map[string]interface{})
	subset := make(map[string]interface{})
	for key, tag := range s.Rules {
		if value, ok := data[key]; ok && tag != "" {
			rules[key] = tag
			subset[key] = value
		}
	}

	if len(rules) > 0 {
		for key, err := range v.ValidateMap(subset, rules) {
			issues = append(issues, Issue{
				Path:    key,
				Message: fmt.Sprintf("property failed validation: %v", err),
			})
		}
	}

	return issues
}

func defaultSchemas() map[FieldKey]*Schema {
	return map[FieldKey]*Schema{
		FieldUserPreferences: {
			Strict: true,
			Rules: map[string]string{
				"theme":          "omitempty,oneof=light dark system",
				"locale":         "omitempty,min=2,max=16",
				"default_tenant": "omitempty,uuid4",
				"notifications":  "",
			},
		},
		FieldServerCapabilities: {
			Strict: true,
			Rules: map[string]string{
				"tools":     "",
				"resources": "",
				"prompts":   "",
				"sampling":  "",
				"logging":   "",
			},
		},
		FieldServerTags: {
			Rules: map[string]string{
				"environment": "omitempty,oneof=dev staging prod",
				"team":        "omitempty,max=64",
				"region":      "omitempty,max=32",
			},
		},
		FieldToolInputSchema: {
			Required: []string{"type"},
			Rules: map[string]string{
				"type":       "required,oneof=object array string number integer boolean null",
				"properties": "",
				"required":   "omitempty,dive,min=1",
			},
		},
		FieldRolePermissions: {
			Strict: true,
			Rules: map[string]string{
				"actions":   "omitempty,min=1,dive,oneof=read write delete admin",
				"resources": "omitempty,dive,min=1",
			},
		},
		FieldFlagTargeting: {
			Strict:   true,
			Required: []string{"attribute", "operator"},
			Rules: map[string]string{
				"attribute": "required,min=1,max=128",
				"operator":  "required,oneof=equals contains in not_in",
				"values":    "",
			},
		},
		// Audit details are free-form; the schema exists so the column is
		// covered by SchemaHealth, not to constrain content.
		FieldAuditDetails: {
			Rules: map[string]string{},
		},
		FieldSessionMetadata: {
			Rules: map[string]string{
				"client":     "omitempty,max=128",
				"user_agent": "omitempty,max=512",
			},
		},
	}
}

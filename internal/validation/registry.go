package validation

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Registry guards JSONB columns before they reach the database, since
// jsonb itself performs no structural validation. Write paths reject on
// failure; read paths degrade to a fallback so malformed legacy rows do
// not crash queries.
type Registry struct {
	schemas  map[FieldKey]*Schema
	validate *validator.Validate
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		schemas:  defaultSchemas(),
		validate: validator.New(),
		logger:   logger,
	}
}

// Register replaces or adds a schema. Used by tests and by deployments
// that extend the gateway schema.
func (r *Registry) Register(field FieldKey, schema *Schema) {
	r.schemas[field] = schema
}

// Validate checks data against the schema registered for field and
// returns a typed *Error on failure.
func (r *Registry) Validate(field FieldKey, data map[string]interface{}, ctx Context) error {
	schema, ok := r.schemas[field]
	if !ok {
		return unknownFieldError(field, ctx)
	}

	issues := schema.Validate(r.validate, data)
	if len(issues) > 0 {
		return &Error{Field: field, Issues: issues, Context: ctx}
	}

	return nil
}

// SafeValidate returns data when valid, the fallback otherwise. It logs
// only on the insert path: read-time validation of relaxed legacy data
// would otherwise spam the log.
func (r *Registry) SafeValidate(field FieldKey, data, fallback map[string]interface{}, ctx Context) map[string]interface{} {
	if err := r.Validate(field, data, ctx); err != nil {
		if ctx.Operation == OperationInsert {
			r.logger.Warn("JSON field validation failed, using fallback",
				zap.String("field", string(field)),
				zap.String("table", ctx.Table),
				zap.Error(err),
			)
		}
		return fallback
	}
	return data
}

// ValidateFields validates every mapped JSON property of a record.
// mapping goes from record key to registry field key.
func (r *Registry) ValidateFields(record map[string]interface{}, mapping map[string]FieldKey, ctx Context) error {
	for key, field := range mapping {
		value, ok := record[key]
		if !ok || value == nil {
			continue
		}

		data, ok := value.(map[string]interface{})
		if !ok {
			return &Error{
				Field:   field,
				Issues:  []Issue{{Path: key, Message: "value is not a JSON object"}},
				Context: ctx,
			}
		}

		if err := r.Validate(field, data, ctx); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeFields validates like ValidateFields but additionally strips
// properties the schema does not declare, as a defense against
// over-permissive client payloads. The record is not mutated; a sanitized
// copy is returned.
func (r *Registry) SanitizeFields(record map[string]interface{}, mapping map[string]FieldKey, ctx Context) (map[string]interface{}, error) {
	sanitized := make(map[string]interface{}, len(record))
	for key, value := range record {
		sanitized[key] = value
	}

	for key, field := range mapping {
		value, ok := record[key]
		if !ok || value == nil {
			continue
		}

		data, ok := value.(map[string]interface{})
		if !ok {
			return nil, &Error{
				Field:   field,
				Issues:  []Issue{{Path: key, Message: "value is not a JSON object"}},
				Context: ctx,
			}
		}

		schema, ok := r.schemas[field]
		if !ok {
			return nil, unknownFieldError(field, ctx)
		}

		stripped := make(map[string]interface{}, len(data))
		for prop, propValue := range data {
			if _, declared := schema.Rules[prop]; declared {
				stripped[prop] = propValue
			}
		}

		if err := r.Validate(field, stripped, ctx); err != nil {
			return nil, err
		}
		sanitized[key] = stripped
	}

	return sanitized, nil
}

// ValidateBeforeInsert and ValidateBeforeUpdate fix the operation so call
// sites in the data-access layer cannot mislabel the context.

func (r *Registry) ValidateBeforeInsert(field FieldKey, data map[string]interface{}, table, tenantID, userID string) error {
	return r.Validate(field, data, Context{
		Operation: OperationInsert,
		Table:     table,
		TenantID:  tenantID,
		UserID:    userID,
	})
}

func (r *Registry) ValidateBeforeUpdate(field FieldKey, data map[string]interface{}, table, tenantID, userID string) error {
	return r.Validate(field, data, Context{
		Operation: OperationUpdate,
		Table:     table,
		TenantID:  tenantID,
		UserID:    userID,
	})
}

// ValidateBatch validates each record of a bulk insert. The returned
// error carries the index of the failing record so the caller can point
// at it without re-validating the batch.
func (r *Registry) ValidateBatch(field FieldKey, records []map[string]interface{}, ctx Context) error {
	for i, record := range records {
		if err := r.Validate(field, record, ctx); err != nil {
			if verr, ok := err.(*Error); ok {
				index := i
				verr.Context.BatchIndex = &index
				return verr
			}
			return err
		}
	}
	return nil
}

// HealthReport buckets every known JSONB column by registry coverage.
type HealthReport struct {
	Healthy            []FieldKey `json:"healthy"`
	RequiresProperties []FieldKey `json:"requires_properties"`
	Missing            []FieldKey `json:"missing"`
}

// SchemaHealth validates an empty object against every known field. A
// schema that rejects the empty object just requires properties, which is
// expected; a field with no schema at all is a real gap. This is a
// diagnostic for startup logs, not a runtime guard.
func (r *Registry) SchemaHealth() HealthReport {
	var report HealthReport

	for _, field := range knownFields {
		schema, ok := r.schemas[field]
		if !ok {
			report.Missing = append(report.Missing, field)
			continue
		}

		if issues := schema.Validate(r.validate, map[string]interface{}{}); len(issues) > 0 {
			report.RequiresProperties = append(report.RequiresProperties, field)
		} else {
			report.Healthy = append(report.Healthy, field)
		}
	}

	return report
}

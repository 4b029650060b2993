package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry() *Registry {
	return NewRegistry(zap.NewNop())
}

func TestValidateAcceptsWellFormedPreferences(t *testing.T) {
	r := newTestRegistry()

	err := r.Validate(FieldUserPreferences, map[string]interface{}{
		"theme":  "dark",
		"locale": "en-US",
	}, Context{Operation: OperationInsert, Table: "users"})

	assert.NoError(t, err)
}

func TestValidateRejectsUndeclaredPropertyOnStrictSchema(t *testing.T) {
	r := newTestRegistry()

	err := r.Validate(FieldUserPreferences, map[string]interface{}{
		"theme":     "dark",
		"evil_prop": true,
	}, Context{Operation: OperationInsert, Table: "users", TenantID: "t-1"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FieldUserPreferences, verr.Field)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "evil_prop", verr.Issues[0].Path)
	assert.Equal(t, OperationInsert, verr.Context.Operation)
	assert.Equal(t, "t-1", verr.Context.TenantID)
}

func TestValidateRejectsBadPropertyValue(t *testing.T) {
	r := newTestRegistry()

	err := r.Validate(FieldUserPreferences, map[string]interface{}{
		"theme": "neon",
	}, Context{Operation: OperationUpdate})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "theme", verr.Issues[0].Path)
}

func TestValidateRequiredProperty(t *testing.T) {
	r := newTestRegistry()

	err := r.Validate(FieldToolInputSchema, map[string]interface{}{
		"properties": map[string]interface{}{},
	}, Context{Operation: OperationInsert, Table: "tools"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "type", verr.Issues[0].Path)
}

func TestValidateUnknownFieldKey(t *testing.T) {
	r := newTestRegistry()

	err := r.Validate(FieldKey("widget.settings"), map[string]interface{}{}, Context{})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Issues[0].Message, "no schema registered")
}

func TestSafeValidateFallsBackOnInvalidData(t *testing.T) {
	r := newTestRegistry()

	fallback := map[string]interface{}{}
	got := r.SafeValidate(FieldUserPreferences, map[string]interface{}{
		"theme": "neon",
	}, fallback, Context{Operation: OperationSelect, Table: "users"})

	assert.Equal(t, fallback, got)
}

func TestSafeValidatePassesThroughValidData(t *testing.T) {
	r := newTestRegistry()

	data := map[string]interface{}{"theme": "light"}
	got := r.SafeValidate(FieldUserPreferences, data, nil, Context{Operation: OperationSelect})

	assert.Equal(t, data, got)
}

func TestValidateBatchCarriesFailingIndex(t *testing.T) {
	r := newTestRegistry()

	records := []map[string]interface{}{
		{"theme": "dark"},
		{"theme": "neon"},
		{"theme": "light"},
	}

	err := r.ValidateBatch(FieldUserPreferences, records, Context{
		Operation: OperationInsert,
		Table:     "users",
	})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.NotNil(t, verr.Context.BatchIndex)
	assert.Equal(t, 1, *verr.Context.BatchIndex)
	assert.Contains(t, verr.Error(), "batch index 1")
}

func TestSanitizeFieldsStripsUndeclaredProperties(t *testing.T) {
	r := newTestRegistry()

	record := map[string]interface{}{
		"name": "alpha",
		"tags": map[string]interface{}{
			"environment": "prod",
			"scratchpad":  "should be dropped",
		},
	}

	sanitized, err := r.SanitizeFields(record, map[string]FieldKey{
		"tags": FieldServerTags,
	}, Context{Operation: OperationInsert, Table: "servers"})
	require.NoError(t, err)

	tags := sanitized["tags"].(map[string]interface{})
	assert.Equal(t, "prod", tags["environment"])
	assert.NotContains(t, tags, "scratchpad")

	// Source record is untouched
	assert.Contains(t, record["tags"].(map[string]interface{}), "scratchpad")
}

func TestValidateFieldsSkipsAbsentColumns(t *testing.T) {
	r := newTestRegistry()

	err := r.ValidateFields(map[string]interface{}{
		"name": "alpha",
	}, map[string]FieldKey{
		"capabilities": FieldServerCapabilities,
	}, Context{Operation: OperationUpdate, Table: "servers"})

	assert.NoError(t, err)
}

func TestValidateFieldsRejectsNonObjectValue(t *testing.T) {
	r := newTestRegistry()

	err := r.ValidateFields(map[string]interface{}{
		"capabilities": "not-an-object",
	}, map[string]FieldKey{
		"capabilities": FieldServerCapabilities,
	}, Context{Operation: OperationInsert, Table: "servers"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "capabilities", verr.Issues[0].Path)
}

func TestSchemaHealthCoversEveryKnownField(t *testing.T) {
	r := newTestRegistry()

	report := r.SchemaHealth()

	assert.Empty(t, report.Missing)
	assert.Len(t, append(report.Healthy, report.RequiresProperties...), len(knownFields))

	// Schemas with required properties reject the empty object
	assert.Contains(t, report.RequiresProperties, FieldToolInputSchema)
	assert.Contains(t, report.RequiresProperties, FieldFlagTargeting)
	assert.Contains(t, report.Healthy, FieldAuditDetails)
}

func TestSchemaHealthReportsMissingSchema(t *testing.T) {
	r := newTestRegistry()
	delete(r.schemas, FieldSessionMetadata)

	report := r.SchemaHealth()

	assert.Contains(t, report.Missing, FieldSessionMetadata)
}

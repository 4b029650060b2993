package validation

import "fmt"

type Operation string

const (
	OperationInsert Operation = "insert"
	OperationUpdate Operation = "update"
	OperationSelect Operation = "select"
)

// Context records where a validation happened so a failure in a bulk
// insert can be traced back to the exact record and table.
type Context struct {
	Operation  Operation `json:"operation"`
	Table      string    `json:"table,omitempty"`
	TenantID   string    `json:"tenant_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	BatchIndex *int      `json:"batch_index,omitempty"`
}

type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is the single typed failure of this package. Callers branch on it
// with errors.As; read paths usually fall back instead of propagating it.
type Error struct {
	Field   FieldKey `json:"field"`
	Issues  []Issue  `json:"issues"`
	Context Context  `json:"context"`
}

func (e *Error) Error() string {
	if e.Context.BatchIndex != nil {
		return fmt.Sprintf("validation failed for field %s (batch index %d): %d issue(s)",
			e.Field, *e.Context.BatchIndex, len(e.Issues))
	}
	return fmt.Sprintf("validation failed for field %s: %d issue(s)", e.Field, len(e.Issues))
}

// unknownFieldError reports a lookup with a key the registry has no
// schema for; the data was never inspected.
func unknownFieldError(field FieldKey, ctx Context) *Error {
	return &Error{
		Field:   field,
		Issues:  []Issue{{Path: "", Message: "no schema registered for field"}},
		Context: ctx,
	}
}

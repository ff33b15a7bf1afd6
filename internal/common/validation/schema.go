package validation

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	apperrors "grant-intake/internal/common/errors"
)

// Error codes reported in FieldError.Code.
const (
	CodeMissingRequired = "MISSING_REQUIRED"
	CodeInvalidType     = "INVALID_TYPE"
	CodeMinLength       = "MIN_LENGTH_VIOLATION"
	CodeMaxLength       = "MAX_LENGTH_VIOLATION"
	CodePatternMismatch = "PATTERN_MISMATCH"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeInvalidEnum     = "INVALID_ENUM_VALUE"
	CodeMinimum         = "MINIMUM_VIOLATION"
	CodeMaximum         = "MAXIMUM_VIOLATION"
	CodeInvalidValue    = "INVALID_VALUE"
)

const rootField = "(root)"

// FieldError is re-exported so callers need not import the errors package.
type FieldError = apperrors.FieldError

type ValidationResult struct {
	Valid  bool                   `json:"valid"`
	Errors []apperrors.FieldError `json:"errors,omitempty"`
}

// CompileSchema parses and compiles a JSON schema document.
func CompileSchema(schemaJSON []byte) (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateDocument validates doc against schema and reports every violation,
// sorted by field then code.
func ValidateDocument(schema *gojsonschema.Schema, doc map[string]interface{}) (*ValidationResult, error) {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, toFieldError(re))
	}
	out.Sort()
	return out, nil
}

func toFieldError(re gojsonschema.ResultError) apperrors.FieldError {
	field := re.Field()
	if re.Type() == "required" {
		if prop, ok := re.Details()["property"].(string); ok {
			field = prop
		}
	}
	if field == rootField {
		field = "body"
	}
	return apperrors.FieldError{
		Field:   field,
		Code:    codeFor(re.Type()),
		Message: re.Description(),
	}
}

func codeFor(errType string) string {
	switch errType {
	case "required":
		return CodeMissingRequired
	case "invalid_type":
		return CodeInvalidType
	case "string_gte":
		return CodeMinLength
	case "string_lte":
		return CodeMaxLength
	case "pattern":
		return CodePatternMismatch
	case "format":
		return CodeInvalidFormat
	case "enum":
		return CodeInvalidEnum
	case "number_gte", "number_gt":
		return CodeMinimum
	case "number_lte", "number_lt":
		return CodeMaximum
	default:
		return CodeInvalidValue
	}
}

// Add appends a violation and marks the result invalid.
func (vr *ValidationResult) Add(field, code, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, apperrors.FieldError{Field: field, Code: code, Message: message})
}

// Merge appends the violations of other.
func (vr *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for _, e := range other.Errors {
		vr.Add(e.Field, e.Code, e.Message)
	}
}

// Without drops every violation on the given fields.
func (vr *ValidationResult) Without(fields ...string) {
	if len(fields) == 0 {
		return
	}
	skip := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		skip[f] = struct{}{}
	}
	kept := vr.Errors[:0]
	for _, e := range vr.Errors {
		if _, ok := skip[e.Field]; !ok {
			kept = append(kept, e)
		}
	}
	vr.Errors = kept
	vr.Valid = len(vr.Errors) == 0
}

func (vr *ValidationResult) Sort() {
	sort.SliceStable(vr.Errors, func(i, j int) bool {
		if vr.Errors[i].Field != vr.Errors[j].Field {
			return vr.Errors[i].Field < vr.Errors[j].Field
		}
		return vr.Errors[i].Code < vr.Errors[j].Code
	})
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

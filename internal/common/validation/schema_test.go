package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "age"],
  "properties": {
    "name": {"type": "string", "minLength": 2, "maxLength": 5},
    "age": {"type": "number", "minimum": 0, "maximum": 130},
    "email": {"type": "string", "format": "email"},
    "color": {"type": "string", "enum": ["red", "blue"]},
    "code": {"type": "string", "pattern": "^[A-Z]{3}$"}
  }
}`

func codesFor(vr *ValidationResult, field string) []string {
	var codes []string
	for _, e := range vr.Errors {
		if e.Field == field {
			codes = append(codes, e.Code)
		}
	}
	return codes
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema([]byte(`{"type": 12}`))
	require.Error(t, err)
}

func TestValidateDocument_Codes(t *testing.T) {
	schema, err := CompileSchema([]byte(personSchema))
	require.NoError(t, err)

	tests := []struct {
		name      string
		doc       map[string]interface{}
		wantField string
		wantCode  string
	}{
		{"missing required", map[string]interface{}{"name": "Ann"}, "age", CodeMissingRequired},
		{"wrong type", map[string]interface{}{"name": "Ann", "age": "old"}, "age", CodeInvalidType},
		{"too short", map[string]interface{}{"name": "A", "age": 3.0}, "name", CodeMinLength},
		{"too long", map[string]interface{}{"name": "Annabel", "age": 3.0}, "name", CodeMaxLength},
		{"below minimum", map[string]interface{}{"name": "Ann", "age": -1.0}, "age", CodeMinimum},
		{"above maximum", map[string]interface{}{"name": "Ann", "age": 131.0}, "age", CodeMaximum},
		{"bad format", map[string]interface{}{"name": "Ann", "age": 3.0, "email": "nope"}, "email", CodeInvalidFormat},
		{"bad enum", map[string]interface{}{"name": "Ann", "age": 3.0, "color": "green"}, "color", CodeInvalidEnum},
		{"bad pattern", map[string]interface{}{"name": "Ann", "age": 3.0, "code": "ab1"}, "code", CodePatternMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateDocument(schema, tt.doc)
			require.NoError(t, err)
			assert.False(t, res.Valid)
			require.True(t, res.HasErrors(tt.wantField), "errors: %v", res.Errors)
			assert.Contains(t, codesFor(res, tt.wantField), tt.wantCode)
		})
	}
}

func TestValidateDocument_ReportsEverythingSorted(t *testing.T) {
	schema, err := CompileSchema([]byte(personSchema))
	require.NoError(t, err)

	res, err := ValidateDocument(schema, map[string]interface{}{"color": "green"})
	require.NoError(t, err)

	fields := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"age", "color", "name"}, fields)
}

func TestValidationResult_Without(t *testing.T) {
	vr := &ValidationResult{Valid: true}
	vr.Add("monthlyIncome", CodeInvalidType, "not a number")
	vr.Add("email", CodeMissingRequired, "required")

	vr.Without("monthlyIncome")
	assert.False(t, vr.Valid)
	assert.Len(t, vr.Errors, 1)
	assert.False(t, vr.HasErrors("monthlyIncome"))

	vr.Without("email")
	assert.True(t, vr.Valid)
	assert.Empty(t, vr.Errors)
}

func TestValidationResult_Merge(t *testing.T) {
	vr := &ValidationResult{Valid: true}
	vr.Merge(nil)
	assert.True(t, vr.Valid)

	other := &ValidationResult{Valid: true}
	other.Add("name", CodeMinLength, "too short")
	vr.Merge(other)
	assert.False(t, vr.Valid)
	assert.Equal(t, []string{CodeMinLength}, codesFor(vr, "name"))
}

package validator

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"grant-intake/internal/common/validation"
)

// normalize returns a shallow copy of raw with strings trimmed. Nulls and
// blank strings are dropped so they read as absent.
func normalize(raw map[string]interface{}) map[string]interface{} {
	doc := make(map[string]interface{}, len(raw))
	for k, val := range raw {
		switch t := val.(type) {
		case nil:
			continue
		case string:
			trimmed := strings.TrimSpace(t)
			if trimmed == "" {
				continue
			}
			doc[k] = trimmed
		default:
			doc[k] = val
		}
	}
	return doc
}

// coerceNumbers converts numeric strings in fields to float64 in place. Fields
// that cannot be converted are recorded in vr, removed from doc and returned.
func coerceNumbers(doc map[string]interface{}, fields []string, vr *validation.ValidationResult) []string {
	var failed []string
	for _, field := range fields {
		val, ok := doc[field]
		if !ok {
			continue
		}

		n, ok := toFloat(val)
		if !ok {
			continue // left for the schema's type check
		}
		if n == nil {
			vr.Add(field, validation.CodeInvalidType, "must be a number")
			delete(doc, field)
			failed = append(failed, field)
			continue
		}
		doc[field] = *n
	}
	return failed
}

// toFloat reports ok=false for kinds it does not convert, and a nil value for
// convertible kinds whose content is not a finite number.
func toFloat(val interface{}) (*float64, bool) {
	var f float64
	switch t := val.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil, true
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(t, ",", ""), 64)
		if err != nil {
			return nil, true
		}
		f = parsed
	default:
		return nil, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, true
	}
	return &f, true
}

// Package validator turns untrusted submission documents into typed records,
// reporting every violated constraint at once.
package validator

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"grant-intake/internal/common/validation"
	"grant-intake/internal/models"
)

//go:embed schemas/application.json
var applicationSchemaJSON []byte

//go:embed schemas/contact.json
var contactSchemaJSON []byte

// Codes for violations found after the schema phase.
const (
	CodeAgeOutOfRange      = "AGE_OUT_OF_RANGE"
	CodeInvalidAttachment  = "INVALID_ATTACHMENT"
	CodeAttachmentTooLarge = "ATTACHMENT_TOO_LARGE"
	CodeTooManyDecimals    = "TOO_MANY_DECIMALS"
)

const (
	MinApplicantAge           = 18
	MaxApplicantAge           = 100
	DefaultMaxAttachmentBytes = 10 << 20
)

var (
	numericApplicationFields = []string{"monthlyIncome"}
	attachmentFields         = []string{"driverLicenseFront", "driverLicenseBack"}
)

// Result is either OK with a Value, or not OK with at least one error.
type Result[T any] struct {
	OK     bool
	Value  T
	Errors []validation.FieldError
}

type Validator struct {
	application        *gojsonschema.Schema
	contact            *gojsonschema.Schema
	now                func() time.Time
	maxAttachmentBytes int64
}

type Option func(*Validator)

// WithClock fixes the reference time used for the age check.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

func WithMaxAttachmentBytes(n int64) Option {
	return func(v *Validator) { v.maxAttachmentBytes = n }
}

func New(opts ...Option) (*Validator, error) {
	appSchema, err := validation.CompileSchema(applicationSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("application schema: %w", err)
	}
	contactSchema, err := validation.CompileSchema(contactSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("contact schema: %w", err)
	}

	v := &Validator{
		application:        appSchema,
		contact:            contactSchema,
		now:                time.Now,
		maxAttachmentBytes: DefaultMaxAttachmentBytes,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// ValidateApplication checks a decoded application document. Unknown keys are
// ignored; empty strings count as absent.
func (v *Validator) ValidateApplication(raw map[string]interface{}) Result[models.ApplicationInput] {
	doc := normalize(raw)
	vr := &validation.ValidationResult{Valid: true}

	failed := coerceNumbers(doc, numericApplicationFields, vr)
	v.applySchema(v.application, doc, vr, failed)

	checkEmail(doc, vr)
	for _, field := range numericApplicationFields {
		checkCents(doc, field, vr)
	}
	v.checkDateOfBirth(doc, vr)
	for _, field := range attachmentFields {
		v.checkAttachment(doc, field, vr)
	}

	var input models.ApplicationInput
	return finish(doc, vr, &input)
}

// ValidateContact checks a decoded contact-form document.
func (v *Validator) ValidateContact(raw map[string]interface{}) Result[models.ContactInput] {
	doc := normalize(raw)
	vr := &validation.ValidationResult{Valid: true}

	v.applySchema(v.contact, doc, vr, nil)
	checkEmail(doc, vr)

	var input models.ContactInput
	return finish(doc, vr, &input)
}

func (v *Validator) applySchema(schema *gojsonschema.Schema, doc map[string]interface{}, vr *validation.ValidationResult, skip []string) {
	res, err := validation.ValidateDocument(schema, doc)
	if err != nil {
		vr.Add("body", validation.CodeInvalidValue, "document could not be validated")
		return
	}
	// A field that failed coercion was removed from doc; do not report it twice.
	res.Without(skip...)
	vr.Merge(res)
}

func finish[T any](doc map[string]interface{}, vr *validation.ValidationResult, out *T) Result[T] {
	if len(vr.Errors) > 0 {
		vr.Sort()
		return Result[T]{Errors: vr.Errors}
	}

	buf, err := json.Marshal(doc)
	if err == nil {
		err = json.Unmarshal(buf, out)
	}
	if err != nil {
		return Result[T]{Errors: []validation.FieldError{{
			Field:   "body",
			Code:    validation.CodeInvalidValue,
			Message: "document could not be decoded",
		}}}
	}
	return Result[T]{OK: true, Value: *out}
}

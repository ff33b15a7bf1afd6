package validator

import (
	"encoding/base64"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"grant-intake/internal/common/validation"
)

const (
	dateLayout           = "2006-01-02"
	maxAttachmentNameLen = 255
	dataURLPrefix        = "data:"
)

// checkDateOfBirth parses dateOfBirth, rewrites it as YYYY-MM-DD and enforces
// the applicant age bounds, inclusive, against the validator clock.
func (v *Validator) checkDateOfBirth(doc map[string]interface{}, vr *validation.ValidationResult) {
	const field = "dateOfBirth"
	if vr.HasErrors(field) {
		return
	}
	s, ok := doc[field].(string)
	if !ok {
		return
	}

	dob, err := parseDate(s)
	if err != nil {
		vr.Add(field, validation.CodeInvalidFormat, "must be a date in YYYY-MM-DD format")
		return
	}
	doc[field] = dob.Format(dateLayout)

	age := ageOn(dob, v.now().UTC())
	if age < MinApplicantAge || age > MaxApplicantAge {
		vr.Add(field, CodeAgeOutOfRange,
			fmt.Sprintf("applicant must be between %d and %d years old", MinApplicantAge, MaxApplicantAge))
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ageOn returns completed years between dob and today.
func ageOn(dob, today time.Time) int {
	years := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		years--
	}
	return years
}

// checkEmail requires a bare addr-spec with a dotted domain. The schema's
// email format also admits display names, quoted local parts and single-label
// hosts.
func checkEmail(doc map[string]interface{}, vr *validation.ValidationResult) {
	const field = "email"
	if vr.HasErrors(field) {
		return
	}
	s, ok := doc[field].(string)
	if !ok {
		return
	}
	if !isBareAddress(s) {
		vr.Add(field, validation.CodeInvalidFormat, "must be a valid email address")
	}
}

func isBareAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return false
	}
	labels := strings.Split(s[at+1:], ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" {
			return false
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// checkCents rejects amounts with more than two decimal places so every
// backend stores exactly the accepted value.
func checkCents(doc map[string]interface{}, field string, vr *validation.ValidationResult) {
	if vr.HasErrors(field) {
		return
	}
	f, ok := doc[field].(float64)
	if !ok {
		return
	}
	cents := f * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		vr.Add(field, CodeTooManyDecimals, "must have at most 2 decimal places")
		return
	}
	doc[field] = math.Round(cents) / 100
}

// checkAttachment accepts either a plain filename or an image data URL whose
// decoded payload fits the configured limit.
func (v *Validator) checkAttachment(doc map[string]interface{}, field string, vr *validation.ValidationResult) {
	if vr.HasErrors(field) {
		return
	}
	s, ok := doc[field].(string)
	if !ok {
		return
	}

	if len(s) < len(dataURLPrefix) || !strings.EqualFold(s[:len(dataURLPrefix)], dataURLPrefix) {
		if utf8.RuneCountInString(s) > maxAttachmentNameLen {
			vr.Add(field, validation.CodeMaxLength,
				fmt.Sprintf("file name must be at most %d characters", maxAttachmentNameLen))
		}
		return
	}

	mediaType, size, err := inspectDataURL(s)
	if err != nil {
		vr.Add(field, CodeInvalidAttachment, "attachment is not a valid data URL")
		return
	}
	if !strings.HasPrefix(mediaType, "image/") {
		vr.Add(field, CodeInvalidAttachment, "attachment must be an image")
		return
	}
	if size > v.maxAttachmentBytes {
		vr.Add(field, CodeAttachmentTooLarge,
			fmt.Sprintf("attachment must be at most %d MiB", v.maxAttachmentBytes>>20))
	}
}

// inspectDataURL returns the media type and decoded size of an RFC 2397 data URL.
func inspectDataURL(s string) (string, int64, error) {
	meta, payload, found := strings.Cut(s[len(dataURLPrefix):], ",")
	if !found {
		return "", 0, fmt.Errorf("missing payload separator")
	}

	params := strings.Split(meta, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	if mediaType == "" {
		mediaType = "text/plain"
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	if !isBase64 {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return "", 0, err
		}
		return mediaType, int64(len(decoded)), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", 0, err
		}
	}
	return mediaType, int64(len(decoded)), nil
}

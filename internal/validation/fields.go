package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"devconnector/internal/models"
)

// Fields collects per-field messages. Only the first message recorded for
// a field is kept, so callers register the most specific rule first.
type Fields struct {
	errs models.FieldErrors
}

func (f *Fields) add(field, msg string) {
	if f.errs == nil {
		f.errs = models.FieldErrors{}
	}
	if _, ok := f.errs[field]; !ok {
		f.errs[field] = msg
	}
}

// Has reports whether field already failed a rule.
func (f *Fields) Has(field string) bool {
	_, ok := f.errs[field]
	return ok
}

// Check records msg against field when ok is false.
func (f *Fields) Check(ok bool, field, msg string) {
	if !ok {
		f.add(field, msg)
	}
}

// Required fails when value is blank.
func (f *Fields) Required(field, value, msg string) {
	f.Check(strings.TrimSpace(value) != "", field, msg)
}

// Length fails when the character count of a non-blank value is outside [lo, hi].
func (f *Fields) Length(field, value string, lo, hi int, msg string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	n := utf8.RuneCountInString(value)
	f.Check(n >= lo && n <= hi, field, msg)
}

// Email fails when a non-blank value is not an email address.
func (f *Fields) Email(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	f.Check(ValidateEmail(value) == nil, field, msg)
}

// URL fails when a non-blank value is not an absolute http(s) URL.
func (f *Fields) URL(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	f.Check(ValidateURL(value) == nil, field, msg)
}

// Date parses a non-blank value, recording msg when it cannot be read.
func (f *Fields) Date(field, value, msg string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t, err := ParseDate(value)
	if err != nil {
		f.add(field, msg)
		return nil
	}
	return &t
}

// Err returns a validation AppError carrying every recorded message, or nil.
func (f *Fields) Err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return models.NewFieldValidationError(f.errs)
}

package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/campus-notice-collector/internal/models"
)

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidSource   = errors.New("invalid source")
	ErrInvalidID       = errors.New("invalid id")
	ErrMissingField    = errors.New("missing required field")
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	kind    error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap exposes the sentinel kind for errors.Is
func (e ValidationError) Unwrap() error {
	return e.kind
}

// Validator collects errors across the parameters of one request
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) add(field, message string, value interface{}, kind error) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message, Value: value, kind: kind})
}

// Category parses a category name. An empty optional value yields "".
func (v *Validator) Category(field, value string, required bool) models.Category {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			v.add(field, field+" is required", nil, ErrMissingField)
		}
		return ""
	}

	c := models.Category(value)
	if !c.Valid() {
		v.add(field, "must be one of: competitions, notices, exams, college_internships", value, ErrInvalidCategory)
		return ""
	}
	return c
}

// Source parses a source label or alias. An empty value yields "", which
// queries both stores.
func (v *Validator) Source(field, value string) models.Source {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	s, ok := models.ParseSource(value)
	if !ok {
		v.add(field, fmt.Sprintf("must be one of: %s, %s (or chat, qq, web)", models.SourceChat, models.SourceWeb), value, ErrInvalidSource)
		return ""
	}
	return s
}

// SourceOr parses a source label, defaulting when empty
func (v *Validator) SourceOr(field, value string, def models.Source) models.Source {
	if s := v.Source(field, value); s != "" {
		return s
	}
	return def
}

// ID parses a positive record id
func (v *Validator) ID(field, value string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id < 1 {
		v.add(field, "must be a positive integer", value, ErrInvalidID)
		return 0
	}
	return id
}

// Required returns the trimmed value, recording an error when empty
func (v *Validator) Required(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.add(field, field+" is required", nil, ErrMissingField)
	}
	return value
}

// Limit parses an optional page size, clamped to max
func (v *Validator) Limit(field, value string, def, max int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		v.add(field, "must be a positive integer", value, nil)
		return def
	}
	if n > max {
		return max
	}
	return n
}

// Errors returns the collected errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Err joins the collected errors, nil when there are none
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	errs := make([]error, len(v.errors))
	for i, e := range v.errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

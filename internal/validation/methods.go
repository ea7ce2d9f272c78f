// Package validation holds the business-rule checks services run on input
// that already passed request binding.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "investa/internal/errors"

	"github.com/shopspring/decimal"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validator collects field errors
type Validator struct {
	errs *apperrors.ValidationError
}

// New creates a new validator
func New() *Validator {
	return &Validator{errs: apperrors.NewValidationError()}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return v.errs.Empty()
}

// Err returns the collected errors, or nil.
func (v *Validator) Err() error {
	return v.errs.OrNil()
}

// AddError adds an error to the validator
func (v *Validator) AddError(field, message string) {
	v.errs.Add(field, message)
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Required checks that a string is not blank
func (v *Validator) Required(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, fmt.Sprintf("The %s field is required.", humanize(field)))
}

// Email validates email format
func (v *Validator) Email(field, email string) {
	v.Check(emailRegex.MatchString(email), field, fmt.Sprintf("The %s must be a valid email address.", humanize(field)))
}

// MinLength checks if a string has at least n characters
func (v *Validator) MinLength(field, value string, n int) {
	v.Check(len(value) >= n, field, fmt.Sprintf("The %s must be at least %d characters.", humanize(field), n))
}

// MaxLength checks if a string has at most n characters
func (v *Validator) MaxLength(field, value string, n int) {
	v.Check(len(value) <= n, field, fmt.Sprintf("The %s may not be greater than %d characters.", humanize(field), n))
}

// OneOf checks value against an allowed set
func (v *Validator) OneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("The selected %s is invalid.", humanize(field)))
}

// DecimalRange checks min <= value <= max
func (v *Validator) DecimalRange(field string, value, min, max decimal.Decimal) {
	v.Check(value.GreaterThanOrEqual(min) && value.LessThanOrEqual(max), field,
		fmt.Sprintf("The %s must be between %s and %s.", humanize(field), min.String(), max.String()))
}

// DecimalMin checks value >= min
func (v *Validator) DecimalMin(field string, value, min decimal.Decimal) {
	v.Check(value.GreaterThanOrEqual(min), field,
		fmt.Sprintf("The %s must be at least %s.", humanize(field), min.String()))
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// Package fault defines the error taxonomy shared by agents and the
// dispatcher. Callers branch on these types instead of matching error
// strings: validation failures and missing entities are recoverable and
// reported to the caller, business-rule rejections carry a human-readable
// reason, and anything else is treated as an internal handler failure.
package fault

import (
	"errors"
	"fmt"
)

// Validation reports a missing or malformed parameter.
type Validation struct {
	Field  string
	Reason string
}

func (e *Validation) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Required returns a Validation error for an absent field.
func Required(field string) error {
	return &Validation{Field: field}
}

// Invalid returns a Validation error for a malformed field.
func Invalid(field, reason string) error {
	return &Validation{Field: field, Reason: reason}
}

// NotFound reports a referenced entity that does not exist.
type NotFound struct {
	Entity string
	ID     string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NotFoundf builds a NotFound error for the given entity and identifier.
func NotFoundf(entity, id string) error {
	return &NotFound{Entity: entity, ID: id}
}

// BusinessRule reports an operation rejected by a domain rule, such as a
// claim exceeding coverage or a withdrawal below available stock.
type BusinessRule struct {
	Reason string
}

func (e *BusinessRule) Error() string {
	return e.Reason
}

// Rejected builds a BusinessRule error with the given reason.
func Rejected(format string, args ...any) error {
	return &BusinessRule{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var v *Validation
	return errors.As(err, &v)
}

// IsNotFound reports whether err is a missing-entity failure.
func IsNotFound(err error) bool {
	var nf *NotFound
	return errors.As(err, &nf)
}

// IsBusinessRule reports whether err is a business-rule rejection.
func IsBusinessRule(err error) bool {
	var br *BusinessRule
	return errors.As(err, &br)
}

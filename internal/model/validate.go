package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks that the record can be stored and written to disk.
// It returns a *ValidationError if any rules fail, or nil if the record is valid.
func (c *Configuration) Validate() error {
	var ve ValidationError

	if !c.Category.Valid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "category",
			Message: fmt.Sprintf("unknown value %q", c.Category),
		})
	}

	if msg := nameProblem(c.Name); msg != "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: msg})
	}

	// Tenant: required by tenant categories, forbidden elsewhere.
	switch {
	case !c.Category.Valid():
	case c.Category.TenantScoped() && c.TenantID == nil:
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "tenant_id",
			Message: fmt.Sprintf("is required for category %s", c.Category),
		})
	case c.Category.TenantScoped() && *c.TenantID <= 0:
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "tenant_id",
			Message: fmt.Sprintf("must be positive, got %d", *c.TenantID),
		})
	case !c.Category.TenantScoped() && c.TenantID != nil:
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "tenant_id",
			Message: fmt.Sprintf("must be empty for category %s", c.Category),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateName rejects names that cannot be used as a plain file name.
func ValidateName(name string) error {
	if msg := nameProblem(name); msg != "" {
		return &ValidationError{Errors: []FieldError{{Field: "name", Message: msg}}}
	}
	return nil
}

func nameProblem(name string) string {
	switch {
	case name == "":
		return "is required"
	case name == "." || name == "..":
		return fmt.Sprintf("invalid value %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Sprintf("%q must not contain a path separator", name)
	case strings.ContainsRune(name, 0):
		return fmt.Sprintf("%q contains a NUL byte", name)
	}
	return ""
}

// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PermissionKey validates that a string names a known capability key.
var PermissionKey = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_permission_key_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if !permissionDomain.ValidKey(permissionDomain.Key(s)) {
		return validation.NewError(
			"validation_permission_key",
			"must be one of: "+joinKeys(),
		)
	}
	return nil
})

// PermissionOperation validates that a string names a known operation.
var PermissionOperation = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_permission_operation_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if s != string(permissionDomain.OpRead) && s != string(permissionDomain.OpWrite) {
		return validation.NewError("validation_permission_operation", "must be read or write")
	}
	return nil
})

// Identifier validates directory-style identifiers (user, tenant, channel,
// workspace ids). They are opaque strings but must be printable and bounded.
var Identifier = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_identifier_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if len(s) > 255 {
		return validation.NewError("validation_identifier_length", "must be at most 255 characters")
	}
	if strings.ContainsAny(s, " \t\n\r") {
		return validation.NewError("validation_identifier_whitespace", "must not contain whitespace")
	}
	return nil
})

func joinKeys() string {
	keys := make([]string, 0, len(permissionDomain.Keys))
	for _, key := range permissionDomain.Keys {
		keys = append(keys, string(key))
	}
	return strings.Join(keys, ", ")
}

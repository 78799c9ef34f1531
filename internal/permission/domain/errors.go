package domain

import (
	"github.com/allisson/gatekeeper/internal/errors"
)

// Permission domain errors.
var (
	// ErrDefaultsNotFound indicates a tenant has no defaults row.
	ErrDefaultsNotFound = errors.Wrap(errors.ErrNotFound, "tenant defaults not found")

	// ErrUserPermissionNotFound indicates a user has no override record for the tenant.
	ErrUserPermissionNotFound = errors.Wrap(errors.ErrNotFound, "user permission record not found")

	// ErrUnknownKey indicates a capability key outside the closed set.
	ErrUnknownKey = errors.Wrap(errors.ErrInvalidInput, "unknown capability key")

	// ErrCorruptRecord indicates a stored permission map failed to deserialize.
	ErrCorruptRecord = errors.Wrap(errors.ErrInvalidInput, "corrupt permission record")

	// ErrPermissionDenied indicates the effective permissions deny the operation.
	ErrPermissionDenied = errors.Wrap(errors.ErrForbidden, "permission denied")
)

package domain

import (
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// Installation errors.
var (
	// ErrInstallationNotFound indicates no install record exists for the
	// requested tenant.
	ErrInstallationNotFound = apperrors.Wrap(apperrors.ErrNotFound, "installation not found")
)

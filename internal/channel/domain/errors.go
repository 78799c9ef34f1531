package domain

import (
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// Channel blocklist errors.
var (
	// ErrBlockNotFound indicates no blocklist row exists for the channel.
	ErrBlockNotFound = apperrors.Wrap(apperrors.ErrNotFound, "channel block not found")

	// ErrChannelBlocked indicates the requested operation is restricted for
	// the channel.
	ErrChannelBlocked = apperrors.Wrap(apperrors.ErrForbidden, "channel is blocked")
)

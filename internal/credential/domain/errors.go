package domain

import (
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// Credential verification errors. All of them wrap ErrUnauthorized so HTTP
// handlers map every verification failure to the same status, without leaking
// which stage rejected the token.
var (
	// ErrMissingCredential indicates no bearer token was presented.
	ErrMissingCredential = apperrors.Wrap(apperrors.ErrUnauthorized, "missing credential")

	// ErrMalformedCredential indicates the token is not a parseable JWT.
	ErrMalformedCredential = apperrors.Wrap(apperrors.ErrUnauthorized, "malformed credential")

	// ErrInvalidSignature indicates the token signature does not verify.
	ErrInvalidSignature = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credential signature")

	// ErrCredentialExpired indicates the token's lifetime has passed.
	ErrCredentialExpired = apperrors.Wrap(apperrors.ErrUnauthorized, "credential expired")

	// ErrCredentialUnknown indicates the token's id has no registry row.
	// Verification fails closed when the registry has no record.
	ErrCredentialUnknown = apperrors.Wrap(apperrors.ErrUnauthorized, "credential not recognized")

	// ErrCredentialRevoked indicates the registry row is marked revoked.
	ErrCredentialRevoked = apperrors.Wrap(apperrors.ErrUnauthorized, "credential revoked")
)

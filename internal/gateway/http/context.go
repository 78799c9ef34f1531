// Package http provides HTTP middleware and handlers for the gateway API.
package http

import (
	"context"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
)

// identityKey is a context key type for storing verified identities.
type identityKey struct{}

// tokenKey is a context key type for storing presented bearer tokens.
type tokenKey struct{}

// WithIdentity stores a verified identity in the context.
func WithIdentity(ctx context.Context, identity *credentialDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves a verified identity from the context.
// Returns (identity, true) if present, or (nil, false) if no identity was set.
func GetIdentity(ctx context.Context) (*credentialDomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*credentialDomain.Identity)
	return identity, ok
}

// WithToken stores the presented bearer token in the context so downstream
// handlers can re-check it against a requested action.
func WithToken(ctx context.Context, signedToken string) context.Context {
	return context.WithValue(ctx, tokenKey{}, signedToken)
}

// GetToken retrieves the presented bearer token from the context.
// Returns (token, true) if present, or ("", false) if no token was set.
func GetToken(ctx context.Context) (string, bool) {
	signedToken, ok := ctx.Value(tokenKey{}).(string)
	return signedToken, ok
}

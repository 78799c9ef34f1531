// Package gateway composes credential verification, permission resolution and
// the channel blocklist into a single authorization surface.
package gateway

import (
	"context"
	"fmt"

	channelDomain "github.com/allisson/gatekeeper/internal/channel/domain"
	channelUseCase "github.com/allisson/gatekeeper/internal/channel/usecase"
	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	credentialUseCase "github.com/allisson/gatekeeper/internal/credential/usecase"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"
	permissionUseCase "github.com/allisson/gatekeeper/internal/permission/usecase"
	tenantDomain "github.com/allisson/gatekeeper/internal/tenant/domain"
	tenantUseCase "github.com/allisson/gatekeeper/internal/tenant/usecase"
)

// AuthorizeInput describes a requested action. ChannelID is optional; when
// set, the channel blocklist is consulted after the permission check.
type AuthorizeInput struct {
	Key       permissionDomain.Key       `json:"key"`
	Operation permissionDomain.Operation `json:"operation"`
	ChannelID string                     `json:"channel_id,omitempty"`
}

// Authorizer is the combined decision surface callers go through before
// acting on a tenant's behalf.
type Authorizer interface {
	// Authenticate verifies a bearer token and returns the identity it is
	// bound to.
	Authenticate(ctx context.Context, signedToken string) (*credentialDomain.Identity, error)

	// Authorize verifies a bearer token and checks the requested action
	// against the identity's effective permissions and, when a channel is
	// named, the channel blocklist.
	Authorize(ctx context.Context, signedToken string, input *AuthorizeInput) (*credentialDomain.Identity, error)

	// ResolveExecutionCredential returns what an authorized caller needs to
	// act in a workspace.
	ResolveExecutionCredential(ctx context.Context, workspaceID string, enterpriseID *string) (*tenantDomain.ExecutionCredential, error)
}

// Gateway implements the Authorizer interface.
type Gateway struct {
	lifecycle credentialUseCase.Lifecycle
	resolver  permissionUseCase.Resolver
	guard     channelUseCase.Guard
	directory tenantUseCase.Directory
}

// NewGateway creates a new Gateway.
func NewGateway(
	lifecycle credentialUseCase.Lifecycle,
	resolver permissionUseCase.Resolver,
	guard channelUseCase.Guard,
	directory tenantUseCase.Directory,
) *Gateway {
	return &Gateway{
		lifecycle: lifecycle,
		resolver:  resolver,
		guard:     guard,
		directory: directory,
	}
}

// Authenticate verifies a bearer token and returns the identity it is bound to.
func (g *Gateway) Authenticate(ctx context.Context, signedToken string) (*credentialDomain.Identity, error) {
	return g.lifecycle.Verify(ctx, signedToken)
}

// Authorize verifies a bearer token and checks the requested action. The
// permission check runs before the channel check so a caller without the
// capability never learns whether a channel is blocked.
func (g *Gateway) Authorize(
	ctx context.Context,
	signedToken string,
	input *AuthorizeInput,
) (*credentialDomain.Identity, error) {
	identity, err := g.lifecycle.Verify(ctx, signedToken)
	if err != nil {
		return nil, err
	}

	allowed, err := g.resolver.IsAllowed(ctx, identity.UserID, identity.TenantID, input.Key, input.Operation)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve permissions")
	}
	if !allowed {
		return nil, apperrors.Wrap(
			permissionDomain.ErrPermissionDenied,
			fmt.Sprintf("%s:%s", input.Key, input.Operation),
		)
	}

	if input.ChannelID != "" {
		channelAllowed, err := g.guard.IsAllowed(ctx, input.ChannelID, identity.TenantID, channelOperation(input.Operation))
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to check channel blocklist")
		}
		if !channelAllowed {
			return nil, apperrors.Wrap(channelDomain.ErrChannelBlocked, input.ChannelID)
		}
	}

	return identity, nil
}

// ResolveExecutionCredential returns what an authorized caller needs to act
// in a workspace.
func (g *Gateway) ResolveExecutionCredential(
	ctx context.Context,
	workspaceID string,
	enterpriseID *string,
) (*tenantDomain.ExecutionCredential, error) {
	return g.directory.ResolveExecutionCredential(ctx, workspaceID, enterpriseID)
}

func channelOperation(op permissionDomain.Operation) channelDomain.Operation {
	if op == permissionDomain.OpWrite {
		return channelDomain.OpWrite
	}
	return channelDomain.OpRead
}

package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/gatekeeper/internal/config"
	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	"github.com/allisson/gatekeeper/internal/credential/service"
	"github.com/allisson/gatekeeper/internal/database"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// CredentialLifecycle implements the Lifecycle interface.
type CredentialLifecycle struct {
	cfg            *config.Config
	credentialRepo CredentialRepository
	signer         service.Signer
	txManager      database.TxManager
	logger         *slog.Logger
}

// NewCredentialLifecycle creates a new CredentialLifecycle.
func NewCredentialLifecycle(
	cfg *config.Config,
	credentialRepo CredentialRepository,
	signer service.Signer,
	txManager database.TxManager,
	logger *slog.Logger,
) *CredentialLifecycle {
	return &CredentialLifecycle{
		cfg:            cfg,
		credentialRepo: credentialRepo,
		signer:         signer,
		txManager:      txManager,
		logger:         logger,
	}
}

// Issue mints a signed token for the identity. Revoking the identity's
// previous credentials and inserting the new row happen in one transaction
// so concurrent issuance cannot leave two live credentials.
func (l *CredentialLifecycle) Issue(
	ctx context.Context,
	identity credentialDomain.Identity,
) (*credentialDomain.IssueOutput, error) {
	if identity.UserID == "" || identity.TenantID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "user id and tenant id are required")
	}

	jti, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate credential id")
	}

	now := time.Now().UTC()
	credential := &credentialDomain.Credential{
		JTI:       jti,
		UserID:    identity.UserID,
		TenantID:  identity.TenantID,
		Revoked:   false,
		IssuedAt:  now,
		ExpiresAt: now.Add(l.cfg.CredentialTTL),
	}

	signedToken, err := l.signer.Sign(identity, jti, credential.IssuedAt, credential.ExpiresAt)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign credential")
	}

	err = l.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := l.credentialRepo.RevokeAllForUser(ctx, identity.UserID, identity.TenantID); err != nil {
			return err
		}
		return l.credentialRepo.Create(ctx, credential)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to register credential")
	}

	l.logger.InfoContext(ctx, "credential issued",
		"jti", jti.String(),
		"user_id", identity.UserID,
		"tenant_id", identity.TenantID,
		"expires_at", credential.ExpiresAt,
	)

	return &credentialDomain.IssueOutput{
		SignedToken: signedToken,
		Credential:  credential,
	}, nil
}

// Verify checks a presented token and returns the identity it is bound to.
func (l *CredentialLifecycle) Verify(ctx context.Context, signedToken string) (*credentialDomain.Identity, error) {
	if signedToken == "" {
		return nil, credentialDomain.ErrMissingCredential
	}

	parsed, err := l.signer.Parse(signedToken)
	if err != nil {
		return nil, err
	}

	credential, err := l.credentialRepo.Get(ctx, parsed.JTI)
	if err != nil {
		return nil, err
	}

	if credential.Revoked {
		return nil, credentialDomain.ErrCredentialRevoked
	}
	if credential.Expired(time.Now().UTC()) {
		return nil, credentialDomain.ErrCredentialExpired
	}

	// The registry row is authoritative for the binding even though the
	// claims carry the same identity.
	return &credentialDomain.Identity{
		UserID:   credential.UserID,
		TenantID: credential.TenantID,
	}, nil
}

// Revoke marks a single credential revoked by token id.
func (l *CredentialLifecycle) Revoke(ctx context.Context, jti uuid.UUID) error {
	if err := l.credentialRepo.Revoke(ctx, jti); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "credential revoked", "jti", jti.String())
	return nil
}

// RevokeAll revokes every outstanding credential for an identity.
func (l *CredentialLifecycle) RevokeAll(ctx context.Context, userID, tenantID string) error {
	if err := l.credentialRepo.RevokeAllForUser(ctx, userID, tenantID); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "credentials revoked for user", "user_id", userID, "tenant_id", tenantID)
	return nil
}

// RevokeTenant revokes every outstanding credential for a tenant.
func (l *CredentialLifecycle) RevokeTenant(ctx context.Context, tenantID string) error {
	if err := l.credentialRepo.RevokeAllForTenant(ctx, tenantID); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "credentials revoked for tenant", "tenant_id", tenantID)
	return nil
}

// Sweep removes revoked and expired registry rows.
func (l *CredentialLifecycle) Sweep(ctx context.Context, dryRun bool) (int64, error) {
	now := time.Now().UTC()

	if dryRun {
		count, err := l.credentialRepo.CountSweepable(ctx, now)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count sweepable credentials")
		}
		return count, nil
	}

	count, err := l.credentialRepo.DeleteSweepable(ctx, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to sweep credentials")
	}

	if count > 0 {
		l.logger.InfoContext(ctx, "credentials swept", "count", count)
	}
	return count, nil
}

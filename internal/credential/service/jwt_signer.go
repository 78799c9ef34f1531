package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// tokenClaims is the JWT payload for a bearer credential. The subject carries
// the user id and a private claim carries the tenant id.
type tokenClaims struct {
	TenantID string `json:"tenant"`
	jwt.RegisteredClaims
}

// JWTSigner implements Signer using HMAC-SHA256 signed JWTs.
type JWTSigner struct {
	signingSecret []byte
}

// NewJWTSigner creates a new JWTSigner with the given signing secret.
func NewJWTSigner(signingSecret string) *JWTSigner {
	return &JWTSigner{signingSecret: []byte(signingSecret)}
}

// Sign produces a signed token for the identity with the given id and lifetime.
func (s *JWTSigner) Sign(
	identity credentialDomain.Identity,
	jti uuid.UUID,
	issuedAt, expiresAt time.Time,
) (string, error) {
	claims := tokenClaims{
		TenantID: identity.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingSecret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign credential")
	}
	return signedToken, nil
}

// Parse verifies the signature and lifetime of a token and returns its content.
func (s *JWTSigner) Parse(signedToken string) (*ParsedToken, error) {
	var claims tokenClaims

	token, err := jwt.ParseWithClaims(signedToken, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, credentialDomain.ErrInvalidSignature
		}
		return s.signingSecret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, credentialDomain.ErrCredentialExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, credentialDomain.ErrInvalidSignature):
			return nil, credentialDomain.ErrInvalidSignature
		default:
			return nil, credentialDomain.ErrMalformedCredential
		}
	}
	if !token.Valid {
		return nil, credentialDomain.ErrInvalidSignature
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, credentialDomain.ErrMalformedCredential
	}
	if claims.Subject == "" || claims.TenantID == "" {
		return nil, credentialDomain.ErrMalformedCredential
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, credentialDomain.ErrMalformedCredential
	}

	return &ParsedToken{
		JTI: jti,
		Identity: credentialDomain.Identity{
			UserID:   claims.Subject,
			TenantID: claims.TenantID,
		},
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

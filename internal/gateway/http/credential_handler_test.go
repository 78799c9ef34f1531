package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	"github.com/allisson/gatekeeper/internal/gateway/http/dto"
)

// mockLifecycle is a mock implementation of credentialUseCase.Lifecycle for testing.
type mockLifecycle struct {
	mock.Mock
}

func (m *mockLifecycle) Issue(ctx context.Context, identity credentialDomain.Identity) (*credentialDomain.IssueOutput, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.IssueOutput), args.Error(1)
}

func (m *mockLifecycle) Verify(ctx context.Context, signedToken string) (*credentialDomain.Identity, error) {
	args := m.Called(ctx, signedToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Identity), args.Error(1)
}

func (m *mockLifecycle) Revoke(ctx context.Context, jti uuid.UUID) error {
	args := m.Called(ctx, jti)
	return args.Error(0)
}

func (m *mockLifecycle) RevokeAll(ctx context.Context, userID, tenantID string) error {
	args := m.Called(ctx, userID, tenantID)
	return args.Error(0)
}

func (m *mockLifecycle) RevokeTenant(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *mockLifecycle) Sweep(ctx context.Context, dryRun bool) (int64, error) {
	args := m.Called(ctx, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

func TestCredentialHandler_IssueHandler(t *testing.T) {
	t.Run("Success_ReturnsToken", func(t *testing.T) {
		mockUseCase := new(mockLifecycle)
		handler := NewCredentialHandler(mockUseCase, testLogger())

		jti := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()
		identity := credentialDomain.Identity{UserID: "U123", TenantID: "T123"}

		output := &credentialDomain.IssueOutput{
			SignedToken: "signed-token",
			Credential: &credentialDomain.Credential{
				JTI:       jti,
				UserID:    "U123",
				TenantID:  "T123",
				IssuedAt:  now,
				ExpiresAt: now.Add(90 * 24 * time.Hour),
			},
		}

		mockUseCase.On("Issue", mock.Anything, identity).
			Return(output, nil).
			Once()

		request := dto.IssueCredentialRequest{UserID: "U123", TenantID: "T123"}
		c, w := createTestContext(http.MethodPost, "/v1/credentials", request)

		handler.IssueHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.IssueCredentialResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "signed-token", response.Token)
		assert.Equal(t, jti.String(), response.JTI)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MissingUserID", func(t *testing.T) {
		mockUseCase := new(mockLifecycle)
		handler := NewCredentialHandler(mockUseCase, testLogger())

		request := dto.IssueCredentialRequest{TenantID: "T123"}
		c, w := createTestContext(http.MethodPost, "/v1/credentials", request)

		handler.IssueHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})
}

func TestCredentialHandler_RevokeHandler(t *testing.T) {
	t.Run("Success_RevokeByJTI", func(t *testing.T) {
		mockUseCase := new(mockLifecycle)
		handler := NewCredentialHandler(mockUseCase, testLogger())

		jti := uuid.Must(uuid.NewV7())

		mockUseCase.On("Revoke", mock.Anything, jti).
			Return(nil).
			Once()

		request := dto.RevokeCredentialsRequest{JTI: jti.String()}
		c, w := createTestContext(http.MethodPost, "/v1/credentials/revoke", request)

		handler.RevokeHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertNotCalled(t, "RevokeAll", mock.Anything, mock.Anything, mock.Anything)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_RevokeAllForIdentity", func(t *testing.T) {
		mockUseCase := new(mockLifecycle)
		handler := NewCredentialHandler(mockUseCase, testLogger())

		mockUseCase.On("RevokeAll", mock.Anything, "U123", "T123").
			Return(nil).
			Once()

		request := dto.RevokeCredentialsRequest{UserID: "U123", TenantID: "T123"}
		c, w := createTestContext(http.MethodPost, "/v1/credentials/revoke", request)

		handler.RevokeHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_NoTarget", func(t *testing.T) {
		mockUseCase := new(mockLifecycle)
		handler := NewCredentialHandler(mockUseCase, testLogger())

		request := dto.RevokeCredentialsRequest{UserID: "U123"}
		c, w := createTestContext(http.MethodPost, "/v1/credentials/revoke", request)

		handler.RevokeHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
		mockUseCase.AssertNotCalled(t, "RevokeAll", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidJTI", func(t *testing.T) {
		mockUseCase := new(mockLifecycle)
		handler := NewCredentialHandler(mockUseCase, testLogger())

		request := dto.RevokeCredentialsRequest{JTI: "not-a-uuid"}
		c, w := createTestContext(http.MethodPost, "/v1/credentials/revoke", request)

		handler.RevokeHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
	})
}

func TestCredentialHandler_SweepHandler(t *testing.T) {
	t.Run("Success_Sweep", func(t *testing.T) {
		mockUseCase := new(mockLifecycle)
		handler := NewCredentialHandler(mockUseCase, testLogger())

		mockUseCase.On("Sweep", mock.Anything, false).
			Return(int64(7), nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/credentials/sweep", nil)

		handler.SweepHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.SweepResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), response.Removed)
		assert.False(t, response.DryRun)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_DryRun", func(t *testing.T) {
		mockUseCase := new(mockLifecycle)
		handler := NewCredentialHandler(mockUseCase, testLogger())

		mockUseCase.On("Sweep", mock.Anything, true).
			Return(int64(3), nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/credentials/sweep?dry_run=true", nil)

		handler.SweepHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.SweepResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), response.Removed)
		assert.True(t, response.DryRun)
		mockUseCase.AssertExpectations(t)
	})
}

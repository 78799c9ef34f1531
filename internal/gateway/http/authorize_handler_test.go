package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	"github.com/allisson/gatekeeper/internal/gateway"
	"github.com/allisson/gatekeeper/internal/gateway/http/dto"
	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"
	tenantDomain "github.com/allisson/gatekeeper/internal/tenant/domain"
)

// mockAuthorizer is a mock implementation of gateway.Authorizer for testing.
type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Authenticate(ctx context.Context, signedToken string) (*credentialDomain.Identity, error) {
	args := m.Called(ctx, signedToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Identity), args.Error(1)
}

func (m *mockAuthorizer) Authorize(
	ctx context.Context,
	signedToken string,
	input *gateway.AuthorizeInput,
) (*credentialDomain.Identity, error) {
	args := m.Called(ctx, signedToken, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Identity), args.Error(1)
}

func (m *mockAuthorizer) ResolveExecutionCredential(
	ctx context.Context,
	workspaceID string,
	enterpriseID *string,
) (*tenantDomain.ExecutionCredential, error) {
	args := m.Called(ctx, workspaceID, enterpriseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.ExecutionCredential), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthorizeHandler_AuthorizeHandler(t *testing.T) {
	identity := &credentialDomain.Identity{UserID: "U123", TenantID: "T123"}

	t.Run("Success_AllowedAction", func(t *testing.T) {
		mockAuth := new(mockAuthorizer)
		handler := NewAuthorizeHandler(mockAuth, testLogger())

		request := dto.AuthorizeRequest{
			Key:       "chat",
			Operation: "write",
			ChannelID: "C777",
		}

		expectedInput := &gateway.AuthorizeInput{
			Key:       permissionDomain.Key("chat"),
			Operation: permissionDomain.Operation("write"),
			ChannelID: "C777",
		}

		mockAuth.On("Authorize", mock.Anything, "signed-token", expectedInput).
			Return(identity, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/authorize", request)
		c.Request = c.Request.WithContext(WithToken(c.Request.Context(), "signed-token"))

		handler.AuthorizeHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.AuthorizeResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.True(t, response.Allowed)
		assert.Equal(t, "U123", response.UserID)
		assert.Equal(t, "T123", response.TenantID)
		mockAuth.AssertExpectations(t)
	})

	t.Run("Error_NoTokenInContext", func(t *testing.T) {
		mockAuth := new(mockAuthorizer)
		handler := NewAuthorizeHandler(mockAuth, testLogger())

		request := dto.AuthorizeRequest{Key: "chat", Operation: "write"}
		c, w := createTestContext(http.MethodPost, "/v1/authorize", request)

		handler.AuthorizeHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockAuth.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_UnknownKey", func(t *testing.T) {
		mockAuth := new(mockAuthorizer)
		handler := NewAuthorizeHandler(mockAuth, testLogger())

		request := dto.AuthorizeRequest{Key: "bogus", Operation: "write"}
		c, w := createTestContext(http.MethodPost, "/v1/authorize", request)
		c.Request = c.Request.WithContext(WithToken(c.Request.Context(), "signed-token"))

		handler.AuthorizeHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockAuth.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_PermissionDenied", func(t *testing.T) {
		mockAuth := new(mockAuthorizer)
		handler := NewAuthorizeHandler(mockAuth, testLogger())

		request := dto.AuthorizeRequest{Key: "chat", Operation: "write"}
		c, w := createTestContext(http.MethodPost, "/v1/authorize", request)
		c.Request = c.Request.WithContext(WithToken(c.Request.Context(), "signed-token"))

		mockAuth.On("Authorize", mock.Anything, "signed-token", mock.Anything).
			Return(nil, permissionDomain.ErrPermissionDenied).
			Once()

		handler.AuthorizeHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockAuth.AssertExpectations(t)
	})
}

func TestAuthorizeHandler_ExecutionCredentialHandler(t *testing.T) {
	t.Run("Success_WorkspaceCredential", func(t *testing.T) {
		mockAuth := new(mockAuthorizer)
		handler := NewAuthorizeHandler(mockAuth, testLogger())

		credential := &tenantDomain.ExecutionCredential{
			BotToken:    "xoxb-token",
			WorkspaceID: "W123",
		}

		mockAuth.On("ResolveExecutionCredential", mock.Anything, "W123", (*string)(nil)).
			Return(credential, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/execution-credential?workspace_id=W123", nil)

		handler.ExecutionCredentialHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ExecutionCredentialResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "xoxb-token", response.BotToken)
		assert.Equal(t, "W123", response.WorkspaceID)
		mockAuth.AssertExpectations(t)
	})

	t.Run("Success_EnterpriseCredential", func(t *testing.T) {
		mockAuth := new(mockAuthorizer)
		handler := NewAuthorizeHandler(mockAuth, testLogger())

		credential := &tenantDomain.ExecutionCredential{
			BotToken:    "xoxb-org-token",
			WorkspaceID: "W123",
		}
		enterpriseID := "E999"

		mockAuth.On("ResolveExecutionCredential", mock.Anything, "W123", &enterpriseID).
			Return(credential, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/execution-credential?workspace_id=W123&enterprise_id=E999", nil)

		handler.ExecutionCredentialHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockAuth.AssertExpectations(t)
	})

	t.Run("Error_MissingWorkspaceID", func(t *testing.T) {
		mockAuth := new(mockAuthorizer)
		handler := NewAuthorizeHandler(mockAuth, testLogger())

		c, w := createTestContext(http.MethodGet, "/v1/execution-credential", nil)

		handler.ExecutionCredentialHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockAuth.AssertNotCalled(t, "ResolveExecutionCredential", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_NoInstallation", func(t *testing.T) {
		mockAuth := new(mockAuthorizer)
		handler := NewAuthorizeHandler(mockAuth, testLogger())

		mockAuth.On("ResolveExecutionCredential", mock.Anything, "W404", (*string)(nil)).
			Return(nil, tenantDomain.ErrInstallationNotFound).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/execution-credential?workspace_id=W404", nil)

		handler.ExecutionCredentialHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockAuth.AssertExpectations(t)
	})
}

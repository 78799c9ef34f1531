package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/gatekeeper/internal/gateway/http/dto"
	tenantDomain "github.com/allisson/gatekeeper/internal/tenant/domain"
	tenantUseCase "github.com/allisson/gatekeeper/internal/tenant/usecase"
)

// mockTenantDirectory is a mock implementation of tenantUseCase.Directory for testing.
type mockTenantDirectory struct {
	mock.Mock
}

func (m *mockTenantDirectory) Save(ctx context.Context, input *tenantUseCase.SaveInstallationInput) (*tenantDomain.Installation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Installation), args.Error(1)
}

func (m *mockTenantDirectory) Get(ctx context.Context, canonicalID string) (*tenantDomain.Installation, error) {
	args := m.Called(ctx, canonicalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Installation), args.Error(1)
}

func (m *mockTenantDirectory) List(ctx context.Context, offset, limit int) ([]*tenantDomain.Installation, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tenantDomain.Installation), args.Error(1)
}

func (m *mockTenantDirectory) Delete(ctx context.Context, canonicalID string) error {
	args := m.Called(ctx, canonicalID)
	return args.Error(0)
}

func (m *mockTenantDirectory) ResolveExecutionCredential(
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

func (m *mockTenantDirectory) Teardown(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func testInstallation() *tenantDomain.Installation {
	now := time.Now().UTC()
	return &tenantDomain.Installation{
		ID:          "workspace:W123",
		WorkspaceID: "W123",
		BotToken:    "xoxb-token",
		InstalledAt: now,
		UpdatedAt:   now,
	}
}

func TestTenantHandler_SaveHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUseCase := new(mockTenantDirectory)
		handler := NewTenantHandler(mockUseCase, testLogger())

		request := dto.SaveInstallationRequest{
			WorkspaceID: "W123",
			BotToken:    "xoxb-token",
			Payload:     map[string]any{"team_name": "Acme"},
		}

		mockUseCase.On("Save", mock.Anything, mock.MatchedBy(func(input *tenantUseCase.SaveInstallationInput) bool {
			return input.WorkspaceID == "W123" && input.BotToken == "xoxb-token" && len(input.Payload) > 0
		})).Return(testInstallation(), nil).Once()

		c, w := createTestContext("PUT", "/v1/installations", request)
		handler.SaveHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.InstallationResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "workspace:W123", response.ID)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MissingWorkspaceID", func(t *testing.T) {
		mockUseCase := new(mockTenantDirectory)
		handler := NewTenantHandler(mockUseCase, testLogger())

		request := dto.SaveInstallationRequest{BotToken: "xoxb-token"}

		c, w := createTestContext("PUT", "/v1/installations", request)
		handler.SaveHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Save")
	})
}

func TestTenantHandler_GetHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUseCase := new(mockTenantDirectory)
		handler := NewTenantHandler(mockUseCase, testLogger())

		mockUseCase.On("Get", mock.Anything, "workspace:W123").
			Return(testInstallation(), nil).
			Once()

		c, w := createTestContext("GET", "/v1/installations/workspace:W123", nil)
		c.Params = gin.Params{{Key: "id", Value: "workspace:W123"}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mockUseCase := new(mockTenantDirectory)
		handler := NewTenantHandler(mockUseCase, testLogger())

		mockUseCase.On("Get", mock.Anything, "workspace:W404").
			Return(nil, tenantDomain.ErrInstallationNotFound).
			Once()

		c, w := createTestContext("GET", "/v1/installations/workspace:W404", nil)
		c.Params = gin.Params{{Key: "id", Value: "workspace:W404"}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTenantHandler_ListHandler(t *testing.T) {
	t.Run("Success_WithPaginationDefaults", func(t *testing.T) {
		mockUseCase := new(mockTenantDirectory)
		handler := NewTenantHandler(mockUseCase, testLogger())

		mockUseCase.On("List", mock.Anything, 0, 50).
			Return([]*tenantDomain.Installation{testInstallation()}, nil).
			Once()

		c, w := createTestContext("GET", "/v1/installations", nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListInstallationsResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Data, 1)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidPagination", func(t *testing.T) {
		mockUseCase := new(mockTenantDirectory)
		handler := NewTenantHandler(mockUseCase, testLogger())

		c, w := createTestContext("GET", "/v1/installations?offset=abc", nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "List")
	})
}

func TestTenantHandler_DeleteHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUseCase := new(mockTenantDirectory)
		handler := NewTenantHandler(mockUseCase, testLogger())

		mockUseCase.On("Delete", mock.Anything, "workspace:W123").Return(nil).Once()

		c, w := createTestContext("DELETE", "/v1/installations/workspace:W123", nil)
		c.Params = gin.Params{{Key: "id", Value: "workspace:W123"}}
		handler.DeleteHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_EmptyID", func(t *testing.T) {
		mockUseCase := new(mockTenantDirectory)
		handler := NewTenantHandler(mockUseCase, testLogger())

		c, w := createTestContext("DELETE", "/v1/installations/", nil)
		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Delete")
	})
}

func TestTenantHandler_TeardownHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUseCase := new(mockTenantDirectory)
		handler := NewTenantHandler(mockUseCase, testLogger())

		mockUseCase.On("Teardown", mock.Anything, "workspace:W123").Return(nil).Once()

		c, w := createTestContext("DELETE", "/v1/tenants/workspace:W123", nil)
		c.Params = gin.Params{{Key: "tenant_id", Value: "workspace:W123"}}
		handler.TeardownHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_EmptyTenantID", func(t *testing.T) {
		mockUseCase := new(mockTenantDirectory)
		handler := NewTenantHandler(mockUseCase, testLogger())

		c, w := createTestContext("DELETE", "/v1/tenants/", nil)
		handler.TeardownHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Teardown")
	})
}

package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"
)

// mockDefaultsRepository is a mock implementation of DefaultsRepository for testing.
type mockDefaultsRepository struct {
	mock.Mock
}

func (m *mockDefaultsRepository) Get(ctx context.Context, tenantID string) (*permissionDomain.TenantDefaults, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permissionDomain.TenantDefaults), args.Error(1)
}

func (m *mockDefaultsRepository) Upsert(ctx context.Context, defaults *permissionDomain.TenantDefaults) error {
	args := m.Called(ctx, defaults)
	return args.Error(0)
}

func (m *mockDefaultsRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

// mockUserPermissionRepository is a mock implementation of UserPermissionRepository for testing.
type mockUserPermissionRepository struct {
	mock.Mock
}

func (m *mockUserPermissionRepository) Get(ctx context.Context, userID, tenantID string) (*permissionDomain.UserPermission, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permissionDomain.UserPermission), args.Error(1)
}

func (m *mockUserPermissionRepository) Upsert(ctx context.Context, record *permissionDomain.UserPermission) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockUserPermissionRepository) SetActive(ctx context.Context, userID, tenantID string, active bool) error {
	args := m.Called(ctx, userID, tenantID, active)
	return args.Error(0)
}

func (m *mockUserPermissionRepository) Delete(ctx context.Context, userID, tenantID string) error {
	args := m.Called(ctx, userID, tenantID)
	return args.Error(0)
}

func (m *mockUserPermissionRepository) ListByTenant(ctx context.Context, tenantID string, offset, limit int) ([]*permissionDomain.UserPermission, error) {
	args := m.Called(ctx, tenantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.UserPermission), args.Error(1)
}

func (m *mockUserPermissionRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

// mockCredentialRevoker is a mock implementation of CredentialRevoker for testing.
type mockCredentialRevoker struct {
	mock.Mock
}

func (m *mockCredentialRevoker) RevokeAll(ctx context.Context, userID, tenantID string) error {
	args := m.Called(ctx, userID, tenantID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPermissionResolver_GetEffective(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_MergesOverridesOntoDefaults", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockDefaults.On("Get", ctx, "T1").
			Return(&permissionDomain.TenantDefaults{
				TenantID: "T1",
				Permissions: permissionDomain.Map{
					permissionDomain.ChannelsKey: {Read: true, Write: true},
					permissionDomain.ChatKey:     {Read: true, Write: true},
				},
			}, nil).
			Once()

		mockUsers.On("Get", ctx, "U1", "T1").
			Return(&permissionDomain.UserPermission{
				UserID:   "U1",
				TenantID: "T1",
				IsActive: true,
				Overrides: permissionDomain.Map{
					permissionDomain.ChatKey: {Read: true, Write: false},
				},
			}, nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		effective, err := resolver.GetEffective(ctx, "U1", "T1")

		assert.NoError(t, err)
		assert.Equal(t, permissionDomain.Flags{Read: true, Write: true}, effective[permissionDomain.ChannelsKey])
		assert.Equal(t, permissionDomain.Flags{Read: true, Write: false}, effective[permissionDomain.ChatKey])
		assert.Equal(t, permissionDomain.Flags{}, effective[permissionDomain.UsersKey])
		mockDefaults.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Success_AbsentUserGetsDefaultsVerbatim", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		defaults := permissionDomain.Map{
			permissionDomain.ChannelsKey: {Read: true},
			permissionDomain.UsersKey:    {Read: true, Write: true},
		}

		mockDefaults.On("Get", ctx, "T1").
			Return(&permissionDomain.TenantDefaults{TenantID: "T1", Permissions: defaults}, nil).
			Once()

		mockUsers.On("Get", ctx, "U2", "T1").
			Return(nil, permissionDomain.ErrUserPermissionNotFound).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		effective, err := resolver.GetEffective(ctx, "U2", "T1")

		assert.NoError(t, err)
		assert.Equal(t, defaults.Normalized(), effective)
		mockDefaults.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Success_DeactivatedUserGetsAllFalse", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockDefaults.On("Get", ctx, "T1").
			Return(&permissionDomain.TenantDefaults{
				TenantID: "T1",
				Permissions: permissionDomain.Map{
					permissionDomain.ChannelsKey: {Read: true, Write: true},
					permissionDomain.ChatKey:     {Read: true, Write: true},
					permissionDomain.UsersKey:    {Read: true, Write: true},
				},
			}, nil).
			Once()

		mockUsers.On("Get", ctx, "U3", "T1").
			Return(&permissionDomain.UserPermission{
				UserID:   "U3",
				TenantID: "T1",
				IsActive: false,
				Overrides: permissionDomain.Map{
					permissionDomain.ChatKey: {Read: true, Write: true},
				},
			}, nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		effective, err := resolver.GetEffective(ctx, "U3", "T1")

		assert.NoError(t, err)
		assert.Equal(t, permissionDomain.EmptyMap(), effective)
		mockDefaults.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Success_NoDefaultsRowMeansAllFalseBaseline", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockDefaults.On("Get", ctx, "T9").
			Return(nil, permissionDomain.ErrDefaultsNotFound).
			Once()

		mockUsers.On("Get", ctx, "U1", "T9").
			Return(&permissionDomain.UserPermission{
				UserID:   "U1",
				TenantID: "T9",
				IsActive: true,
				Overrides: permissionDomain.Map{
					permissionDomain.ChatKey: {Read: true},
				},
			}, nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		effective, err := resolver.GetEffective(ctx, "U1", "T9")

		assert.NoError(t, err)
		assert.Equal(t, permissionDomain.Flags{Read: true}, effective[permissionDomain.ChatKey])
		assert.Equal(t, permissionDomain.Flags{}, effective[permissionDomain.ChannelsKey])
		mockDefaults.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Error_RepositoryFailurePropagates", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockDefaults.On("Get", ctx, "T1").
			Return(nil, errors.New("database error")).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		effective, err := resolver.GetEffective(ctx, "U1", "T1")

		assert.Error(t, err)
		assert.Nil(t, effective)
		mockDefaults.AssertExpectations(t)
	})
}

func TestPermissionResolver_IsAllowed(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_AllowsPermittedOperation", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockDefaults.On("Get", ctx, "T1").
			Return(&permissionDomain.TenantDefaults{
				TenantID: "T1",
				Permissions: permissionDomain.Map{
					permissionDomain.ChatKey: {Read: false, Write: true},
				},
			}, nil).
			Once()

		mockUsers.On("Get", ctx, "U1", "T1").
			Return(nil, permissionDomain.ErrUserPermissionNotFound).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())

		allowed, err := resolver.IsAllowed(ctx, "U1", "T1", permissionDomain.ChatKey, permissionDomain.OpWrite)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Success_DeniesUnknownKeyWithoutRepositoryCall", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())

		allowed, err := resolver.IsAllowed(ctx, "U1", "T1", permissionDomain.Key("files"), permissionDomain.OpRead)
		assert.NoError(t, err)
		assert.False(t, allowed)
		mockDefaults.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestPermissionResolver_SetDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_NormalizesAndUpserts", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockDefaults.On("Upsert", ctx, mock.MatchedBy(func(d *permissionDomain.TenantDefaults) bool {
			return d.TenantID == "T1" &&
				len(d.Permissions) == len(permissionDomain.Keys) &&
				d.Permissions[permissionDomain.ChatKey].Read &&
				!d.UpdatedAt.IsZero()
		})).
			Return(nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.SetDefaults(ctx, "T1", permissionDomain.Map{
			permissionDomain.ChatKey: {Read: true},
		})

		assert.NoError(t, err)
		mockDefaults.AssertExpectations(t)
	})

	t.Run("Error_RejectsUnknownKey", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.SetDefaults(ctx, "T1", permissionDomain.Map{
			permissionDomain.Key("files"): {Read: true},
		})

		assert.Error(t, err)
		assert.ErrorIs(t, err, permissionDomain.ErrUnknownKey)
		mockDefaults.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestPermissionResolver_SetUserOverrides(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_UpsertsAndRevokesCredentials", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		existing := &permissionDomain.UserPermission{
			UserID:   "U1",
			TenantID: "T1",
			IsActive: true,
			Overrides: permissionDomain.Map{
				permissionDomain.ChatKey: {Read: true},
			},
			UpdatedAt: time.Now().Add(-time.Hour),
		}

		mockUsers.On("Get", ctx, "U1", "T1").
			Return(existing, nil).
			Once()

		mockUsers.On("Upsert", ctx, mock.MatchedBy(func(r *permissionDomain.UserPermission) bool {
			return r.UserID == "U1" &&
				r.TenantID == "T1" &&
				r.IsActive &&
				r.Overrides[permissionDomain.UsersKey].Write
		})).
			Return(nil).
			Once()

		mockRevoker.On("RevokeAll", ctx, "U1", "T1").
			Return(nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.SetUserOverrides(ctx, "U1", "T1", permissionDomain.Map{
			permissionDomain.UsersKey: {Read: true, Write: true},
		})

		assert.NoError(t, err)
		mockUsers.AssertExpectations(t)
		mockRevoker.AssertExpectations(t)
	})

	t.Run("Success_CreatesActiveRecordForNewUser", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockUsers.On("Get", ctx, "U7", "T1").
			Return(nil, permissionDomain.ErrUserPermissionNotFound).
			Once()

		mockUsers.On("Upsert", ctx, mock.MatchedBy(func(r *permissionDomain.UserPermission) bool {
			return r.UserID == "U7" && r.IsActive
		})).
			Return(nil).
			Once()

		mockRevoker.On("RevokeAll", ctx, "U7", "T1").
			Return(nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.SetUserOverrides(ctx, "U7", "T1", permissionDomain.Map{})

		assert.NoError(t, err)
		mockUsers.AssertExpectations(t)
		mockRevoker.AssertExpectations(t)
	})

	t.Run("Error_RevocationFailurePropagates", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockUsers.On("Get", ctx, "U1", "T1").
			Return(nil, permissionDomain.ErrUserPermissionNotFound).
			Once()
		mockUsers.On("Upsert", ctx, mock.Anything).
			Return(nil).
			Once()
		mockRevoker.On("RevokeAll", ctx, "U1", "T1").
			Return(errors.New("database error")).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.SetUserOverrides(ctx, "U1", "T1", permissionDomain.Map{})

		assert.Error(t, err)
		mockRevoker.AssertExpectations(t)
	})
}

func TestPermissionResolver_SetUserActive(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_DeactivationRevokesCredentials", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockUsers.On("SetActive", ctx, "U1", "T1", false).
			Return(nil).
			Once()
		mockRevoker.On("RevokeAll", ctx, "U1", "T1").
			Return(nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.SetUserActive(ctx, "U1", "T1", false)

		assert.NoError(t, err)
		mockUsers.AssertExpectations(t)
		mockRevoker.AssertExpectations(t)
	})

	t.Run("Success_ReactivationDoesNotRevoke", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockUsers.On("SetActive", ctx, "U1", "T1", true).
			Return(nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.SetUserActive(ctx, "U1", "T1", true)

		assert.NoError(t, err)
		mockUsers.AssertExpectations(t)
		mockRevoker.AssertNotCalled(t, "RevokeAll", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_DeactivatingUnknownUserStillRevokes", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockUsers.On("SetActive", ctx, "U9", "T1", false).
			Return(permissionDomain.ErrUserPermissionNotFound).
			Once()
		mockRevoker.On("RevokeAll", ctx, "U9", "T1").
			Return(nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.SetUserActive(ctx, "U9", "T1", false)

		assert.ErrorIs(t, err, permissionDomain.ErrUserPermissionNotFound)
		mockRevoker.AssertExpectations(t)
	})
}

func TestPermissionResolver_EnsureUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreatesRecordWhenMissing", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockUsers.On("Get", ctx, "U1", "T1").
			Return(nil, permissionDomain.ErrUserPermissionNotFound).
			Once()
		mockUsers.On("Upsert", ctx, mock.MatchedBy(func(r *permissionDomain.UserPermission) bool {
			return r.UserID == "U1" && r.IsActive && len(r.Overrides) == 0
		})).
			Return(nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.EnsureUser(ctx, "U1", "T1")

		assert.NoError(t, err)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Success_NoopWhenRecordExists", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockUsers.On("Get", ctx, "U1", "T1").
			Return(&permissionDomain.UserPermission{UserID: "U1", TenantID: "T1", IsActive: true}, nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.EnsureUser(ctx, "U1", "T1")

		assert.NoError(t, err)
		mockUsers.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestPermissionResolver_RemoveUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_DeletesAndRevokes", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockUsers.On("Delete", ctx, "U1", "T1").
			Return(nil).
			Once()
		mockRevoker.On("RevokeAll", ctx, "U1", "T1").
			Return(nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		err := resolver.RemoveUser(ctx, "U1", "T1")

		assert.NoError(t, err)
		mockUsers.AssertExpectations(t)
		mockRevoker.AssertExpectations(t)
	})
}

func TestPermissionResolver_ListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ResolvesEffectivePerUser", func(t *testing.T) {
		mockDefaults := &mockDefaultsRepository{}
		mockUsers := &mockUserPermissionRepository{}
		mockRevoker := &mockCredentialRevoker{}

		mockDefaults.On("Get", ctx, "T1").
			Return(&permissionDomain.TenantDefaults{
				TenantID: "T1",
				Permissions: permissionDomain.Map{
					permissionDomain.ChatKey: {Read: true, Write: true},
				},
			}, nil).
			Once()

		mockUsers.On("ListByTenant", ctx, "T1", 0, 50).
			Return([]*permissionDomain.UserPermission{
				{
					UserID:   "U1",
					TenantID: "T1",
					IsActive: true,
					Overrides: permissionDomain.Map{
						permissionDomain.ChatKey: {Read: true, Write: false},
					},
				},
				{
					UserID:   "U2",
					TenantID: "T1",
					IsActive: false,
				},
			}, nil).
			Once()

		resolver := NewPermissionResolver(mockDefaults, mockUsers, mockRevoker, testLogger())
		summaries, err := resolver.ListUsers(ctx, "T1", 0, 50)

		assert.NoError(t, err)
		assert.Len(t, summaries, 2)
		assert.Equal(t, permissionDomain.Flags{Read: true}, summaries[0].Effective[permissionDomain.ChatKey])
		assert.Equal(t, permissionDomain.EmptyMap(), summaries[1].Effective)
		mockDefaults.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})
}

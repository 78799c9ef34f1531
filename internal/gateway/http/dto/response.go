// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	channelDomain "github.com/allisson/gatekeeper/internal/channel/domain"
	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"
	tenantDomain "github.com/allisson/gatekeeper/internal/tenant/domain"
)

// AuthorizeResponse contains the result of a successful authorization check.
type AuthorizeResponse struct {
	Allowed  bool   `json:"allowed"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

// MapIdentityToAuthorizeResponse converts a verified identity to an API response.
func MapIdentityToAuthorizeResponse(identity *credentialDomain.Identity) AuthorizeResponse {
	return AuthorizeResponse{
		Allowed:  true,
		UserID:   identity.UserID,
		TenantID: identity.TenantID,
	}
}

// PermissionMapResponse represents a permission map in API responses.
type PermissionMapResponse map[string]PermissionFlags

// MapPermissionsToResponse converts a domain permission map to an API response.
func MapPermissionsToResponse(m permissionDomain.Map) PermissionMapResponse {
	result := make(PermissionMapResponse, len(m))
	for key, flags := range m {
		result[string(key)] = PermissionFlags{
			Read:  flags.Read,
			Write: flags.Write,
		}
	}
	return result
}

// EffectivePermissionsResponse contains a user's resolved permissions.
type EffectivePermissionsResponse struct {
	UserID      string                `json:"user_id"`
	TenantID    string                `json:"tenant_id"`
	Permissions PermissionMapResponse `json:"permissions"`
}

// UserSummaryResponse represents one user record in admin listings.
type UserSummaryResponse struct {
	UserID    string                `json:"user_id"`
	IsActive  bool                  `json:"is_active"`
	Overrides PermissionMapResponse `json:"overrides"`
	Effective PermissionMapResponse `json:"effective"`
}

// ListUsersResponse represents a paginated list of user records.
type ListUsersResponse struct {
	Data []UserSummaryResponse `json:"data"`
}

// MapUserSummariesToListResponse converts user summaries to a list API response.
func MapUserSummariesToListResponse(summaries []*permissionDomain.UserSummary) ListUsersResponse {
	data := make([]UserSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		data = append(data, UserSummaryResponse{
			UserID:    summary.UserID,
			IsActive:  summary.IsActive,
			Overrides: MapPermissionsToResponse(summary.Overrides),
			Effective: MapPermissionsToResponse(summary.Effective),
		})
	}
	return ListUsersResponse{Data: data}
}

// ChannelBlockResponse represents a blocked channel in API responses.
type ChannelBlockResponse struct {
	ChannelID  string    `json:"channel_id"`
	Name       *string   `json:"name,omitempty"`
	BlockRead  bool      `json:"block_read"`
	BlockWrite bool      `json:"block_write"`
	BlockedBy  string    `json:"blocked_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListChannelBlocksResponse represents a paginated list of blocked channels.
type ListChannelBlocksResponse struct {
	Data []ChannelBlockResponse `json:"data"`
}

// MapBlocksToListResponse converts channel blocks to a list API response.
func MapBlocksToListResponse(blocks []*channelDomain.Block) ListChannelBlocksResponse {
	data := make([]ChannelBlockResponse, 0, len(blocks))
	for _, block := range blocks {
		data = append(data, ChannelBlockResponse{
			ChannelID:  block.ChannelID,
			Name:       block.Name,
			BlockRead:  block.BlockRead,
			BlockWrite: block.BlockWrite,
			BlockedBy:  block.BlockedBy,
			CreatedAt:  block.CreatedAt,
			UpdatedAt:  block.UpdatedAt,
		})
	}
	return ListChannelBlocksResponse{Data: data}
}

// IssueCredentialResponse contains the result of issuing a credential.
// SECURITY: The token is only returned once and must be saved securely.
type IssueCredentialResponse struct {
	Token     string    `json:"token"`
	JTI       string    `json:"jti"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapIssueOutputToResponse converts an issue output to an API response.
func MapIssueOutputToResponse(output *credentialDomain.IssueOutput) IssueCredentialResponse {
	return IssueCredentialResponse{
		Token:     output.SignedToken,
		JTI:       output.Credential.JTI.String(),
		ExpiresAt: output.Credential.ExpiresAt,
	}
}

// ExecutionCredentialResponse contains the credential for acting in a workspace.
type ExecutionCredentialResponse struct {
	BotToken    string `json:"bot_token"`
	WorkspaceID string `json:"workspace_id"`
}

// MapExecutionCredentialToResponse converts an execution credential to an API response.
func MapExecutionCredentialToResponse(credential *tenantDomain.ExecutionCredential) ExecutionCredentialResponse {
	return ExecutionCredentialResponse{
		BotToken:    credential.BotToken,
		WorkspaceID: credential.WorkspaceID,
	}
}

// InstallationResponse represents an install record in API responses
// (excludes the bot token).
type InstallationResponse struct {
	ID           string    `json:"id"`
	WorkspaceID  string    `json:"workspace_id"`
	EnterpriseID *string   `json:"enterprise_id,omitempty"`
	IsEnterprise bool      `json:"is_enterprise"`
	InstalledAt  time.Time `json:"installed_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MapInstallationToResponse converts a domain installation to an API response.
func MapInstallationToResponse(installation *tenantDomain.Installation) InstallationResponse {
	return InstallationResponse{
		ID:           installation.ID,
		WorkspaceID:  installation.WorkspaceID,
		EnterpriseID: installation.EnterpriseID,
		IsEnterprise: installation.IsEnterprise,
		InstalledAt:  installation.InstalledAt,
		UpdatedAt:    installation.UpdatedAt,
	}
}

// ListInstallationsResponse represents a paginated list of install records.
type ListInstallationsResponse struct {
	Data []InstallationResponse `json:"data"`
}

// MapInstallationsToListResponse converts installations to a list API response.
func MapInstallationsToListResponse(installations []*tenantDomain.Installation) ListInstallationsResponse {
	data := make([]InstallationResponse, 0, len(installations))
	for _, installation := range installations {
		data = append(data, MapInstallationToResponse(installation))
	}
	return ListInstallationsResponse{Data: data}
}

// SweepResponse contains the result of a credential sweep.
type SweepResponse struct {
	Removed int64 `json:"removed"`
	DryRun  bool  `json:"dry_run"`
}

// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	channelUseCase "github.com/allisson/gatekeeper/internal/channel/usecase"
	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"
	tenantUseCase "github.com/allisson/gatekeeper/internal/tenant/usecase"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// AuthorizeRequest contains the parameters for an authorization check.
type AuthorizeRequest struct {
	Key       string `json:"key"`
	Operation string `json:"operation"`
	ChannelID string `json:"channel_id,omitempty"`
}

// Validate checks if the authorize request is valid.
func (r *AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key,
			validation.Required,
			customValidation.PermissionKey,
		),
		validation.Field(&r.Operation,
			validation.Required,
			customValidation.PermissionOperation,
		),
		validation.Field(&r.ChannelID,
			customValidation.Identifier,
		),
	)
}

// PermissionFlags carries read/write flags for one capability key.
type PermissionFlags struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
}

// SetDefaultsRequest contains the parameters for replacing tenant defaults.
type SetDefaultsRequest struct {
	Permissions map[string]PermissionFlags `json:"permissions"`
}

// Validate checks if the set defaults request is valid.
func (r *SetDefaultsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Permissions,
			validation.Required,
			validation.By(validatePermissionMapKeys),
		),
	)
}

// SetOverridesRequest contains the parameters for replacing a user's overrides.
type SetOverridesRequest struct {
	Overrides map[string]PermissionFlags `json:"overrides"`
}

// Validate checks if the set overrides request is valid.
func (r *SetOverridesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Overrides,
			validation.NotNil,
			validation.By(validatePermissionMapKeys),
		),
	)
}

// SetActiveRequest contains the parameters for toggling a user's access.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// Validate checks if the set active request is valid.
func (r *SetActiveRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Active, validation.NotNil),
	)
}

// validatePermissionMapKeys rejects maps carrying unknown capability keys.
func validatePermissionMapKeys(value interface{}) error {
	m, ok := value.(map[string]PermissionFlags)
	if !ok {
		return validation.NewError("validation_permission_map_type", "must be a permission map")
	}
	for key := range m {
		if err := customValidation.PermissionKey.Validate(key); err != nil {
			return err
		}
	}
	return nil
}

// MapPermissions converts a request permission map to the domain map.
func MapPermissions(m map[string]PermissionFlags) permissionDomain.Map {
	result := make(permissionDomain.Map, len(m))
	for key, flags := range m {
		result[permissionDomain.Key(key)] = permissionDomain.Flags{
			Read:  flags.Read,
			Write: flags.Write,
		}
	}
	return result
}

// BlockChannelRequest contains the parameters for blocking a channel.
type BlockChannelRequest struct {
	ChannelID  string  `json:"channel_id"`
	Name       *string `json:"name,omitempty"`
	BlockRead  bool    `json:"block_read"`
	BlockWrite bool    `json:"block_write"`
}

// Validate checks if the block channel request is valid.
func (r *BlockChannelRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ChannelID,
			validation.Required,
			customValidation.Identifier,
		),
	)
}

// MapToBlockInput converts a block request to the usecase input.
func (r *BlockChannelRequest) MapToBlockInput(tenantID, blockedBy string) *channelUseCase.BlockChannelInput {
	return &channelUseCase.BlockChannelInput{
		ChannelID:  r.ChannelID,
		TenantID:   tenantID,
		Name:       r.Name,
		BlockRead:  r.BlockRead,
		BlockWrite: r.BlockWrite,
		BlockedBy:  blockedBy,
	}
}

// IssueCredentialRequest contains the parameters for issuing a credential.
type IssueCredentialRequest struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

// Validate checks if the issue credential request is valid.
func (r *IssueCredentialRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.Identifier,
		),
		validation.Field(&r.TenantID,
			validation.Required,
			customValidation.Identifier,
		),
	)
}

// RevokeCredentialsRequest contains the parameters for revoking credentials.
// With a JTI set a single credential is revoked; otherwise every credential
// for the identity is revoked.
type RevokeCredentialsRequest struct {
	JTI      string `json:"jti,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
}

// Validate checks if the revoke credentials request is valid.
func (r *RevokeCredentialsRequest) Validate() error {
	if r.JTI == "" && (r.UserID == "" || r.TenantID == "") {
		return validation.NewError(
			"validation_revoke_target",
			"either jti or both user_id and tenant_id are required",
		)
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, customValidation.Identifier),
		validation.Field(&r.TenantID, customValidation.Identifier),
	)
}

// SaveInstallationRequest contains the parameters for registering an install.
type SaveInstallationRequest struct {
	WorkspaceID  string         `json:"workspace_id"`
	EnterpriseID *string        `json:"enterprise_id,omitempty"`
	BotToken     string         `json:"bot_token"`
	IsEnterprise bool           `json:"is_enterprise"`
	Payload      map[string]any `json:"payload,omitempty"`
}

// Validate checks if the save installation request is valid.
func (r *SaveInstallationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.WorkspaceID,
			validation.Required,
			customValidation.Identifier,
		),
		validation.Field(&r.BotToken, validation.Required),
	)
}

// MapToSaveInput converts a save installation request to the usecase input.
func (r *SaveInstallationRequest) MapToSaveInput(payload []byte) *tenantUseCase.SaveInstallationInput {
	return &tenantUseCase.SaveInstallationInput{
		WorkspaceID:  r.WorkspaceID,
		EnterpriseID: r.EnterpriseID,
		BotToken:     r.BotToken,
		IsEnterprise: r.IsEnterprise,
		Payload:      payload,
	}
}

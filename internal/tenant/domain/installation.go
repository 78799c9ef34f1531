// Package domain defines tenant installation entities.
package domain

import (
	"encoding/json"
	"time"
)

// Canonical id prefixes. An enterprise install is stored once under its
// enterprise id and shared by every workspace in the org.
const (
	enterprisePrefix = "enterprise:"
	workspacePrefix  = "workspace:"
)

// EnterpriseCanonicalID returns the storage key for an enterprise install.
func EnterpriseCanonicalID(enterpriseID string) string {
	return enterprisePrefix + enterpriseID
}

// WorkspaceCanonicalID returns the storage key for a workspace install.
func WorkspaceCanonicalID(workspaceID string) string {
	return workspacePrefix + workspaceID
}

// Installation is a stored tenant install record.
type Installation struct {
	ID           string          `json:"id"`
	WorkspaceID  string          `json:"workspace_id"`
	EnterpriseID *string         `json:"enterprise_id,omitempty"`
	BotToken     string          `json:"-"`
	IsEnterprise bool            `json:"is_enterprise"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	InstalledAt  time.Time       `json:"installed_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CanonicalID returns the storage key the installation is filed under.
// Enterprise installs are keyed by enterprise id so one record covers every
// workspace in the org.
func (i *Installation) CanonicalID() string {
	if i.IsEnterprise && i.EnterpriseID != nil {
		return EnterpriseCanonicalID(*i.EnterpriseID)
	}
	return WorkspaceCanonicalID(i.WorkspaceID)
}

// ExecutionCredential carries what a caller needs to act on a tenant's
// behalf.
type ExecutionCredential struct {
	BotToken    string `json:"-"`
	WorkspaceID string `json:"workspace_id"`
}

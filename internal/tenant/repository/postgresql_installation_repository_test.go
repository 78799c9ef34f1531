package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tenantDomain "github.com/allisson/gatekeeper/internal/tenant/domain"
)

func TestPostgreSQLInstallationRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReturnsInstallation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		now := time.Now().UTC()
		enterpriseID := "E1"
		payload := json.RawMessage(`{"scope":"chat:write"}`)
		rows := sqlmock.NewRows([]string{
			"id", "workspace_id", "enterprise_id", "bot_token", "is_enterprise", "payload", "installed_at", "updated_at",
		}).AddRow("enterprise:E1", "W1", enterpriseID, "xoxb-secret", true, []byte(payload), now, now)

		mock.ExpectQuery(`SELECT id, workspace_id, enterprise_id, bot_token, is_enterprise, payload, installed_at, updated_at`).
			WithArgs("enterprise:E1").
			WillReturnRows(rows)

		repo := NewPostgreSQLInstallationRepository(db)
		installation, err := repo.Get(ctx, "enterprise:E1")

		assert.NoError(t, err)
		require.NotNil(t, installation)
		assert.Equal(t, "enterprise:E1", installation.ID)
		assert.True(t, installation.IsEnterprise)
		require.NotNil(t, installation.EnterpriseID)
		assert.Equal(t, enterpriseID, *installation.EnterpriseID)
		assert.Equal(t, "xoxb-secret", installation.BotToken)
		assert.JSONEq(t, string(payload), string(installation.Payload))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_MissingRow", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(`SELECT id, workspace_id, enterprise_id, bot_token, is_enterprise, payload, installed_at, updated_at`).
			WithArgs("workspace:W9").
			WillReturnError(sql.ErrNoRows)

		repo := NewPostgreSQLInstallationRepository(db)
		installation, err := repo.Get(ctx, "workspace:W9")

		assert.Nil(t, installation)
		assert.ErrorIs(t, err, tenantDomain.ErrInstallationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLInstallationRepository_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_InsertsInstallation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		now := time.Now().UTC()
		installation := &tenantDomain.Installation{
			ID:           "workspace:W1",
			WorkspaceID:  "W1",
			EnterpriseID: nil,
			BotToken:     "xoxb-secret",
			IsEnterprise: false,
			Payload:      json.RawMessage(`{}`),
			InstalledAt:  now,
			UpdatedAt:    now,
		}

		mock.ExpectExec(`INSERT INTO installations`).
			WithArgs("workspace:W1", "W1", (*string)(nil), "xoxb-secret", false, []byte(`{}`), now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgreSQLInstallationRepository(db)
		assert.NoError(t, repo.Upsert(ctx, installation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLInstallationRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_DeletesInstallation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(`DELETE FROM installations WHERE id = \$1`).
			WithArgs("workspace:W1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgreSQLInstallationRepository(db)
		assert.NoError(t, repo.Delete(ctx, "workspace:W1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

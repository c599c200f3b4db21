package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/spasuite/sms-inbound/internal/model"
)

// SystemConfigRepository persists rows of the shared key-value config table.
// Opt-out records live here under the sms_opt_out category, next to unrelated
// application settings.
type SystemConfigRepository interface {
	// Get returns nil, nil when the key is absent.
	Get(ctx context.Context, key string) (*model.SystemConfig, error)
	Insert(ctx context.Context, sc model.SystemConfig) error
	UpdateValue(ctx context.Context, key, value, description string) error
	// Delete is a no-op success when the key is absent.
	Delete(ctx context.Context, key string) error
	ListByCategory(ctx context.Context, category string) ([]model.SystemConfig, error)
}

type SystemConfigRepositoryImpl struct {
	db *sqlx.DB
}

func NewSystemConfigRepository(db *sqlx.DB) *SystemConfigRepositoryImpl {
	return &SystemConfigRepositoryImpl{db: db}
}

var _ SystemConfigRepository = (*SystemConfigRepositoryImpl)(nil)

func (r *SystemConfigRepositoryImpl) Get(ctx context.Context, key string) (*model.SystemConfig, error) {
	var sc model.SystemConfig
	err := r.db.GetContext(ctx, &sc, `
		SELECT config_key, config_value, description, category, is_encrypted, is_active, created_at, updated_at
		  FROM system_config
		 WHERE config_key = ? LIMIT 1
	`, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *SystemConfigRepositoryImpl) Insert(ctx context.Context, sc model.SystemConfig) error {
	const q = `
		INSERT INTO system_config
		    (config_key, config_value, description, category, is_encrypted, is_active, created_at, updated_at)
		VALUES
		    (?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, q,
		sc.Key, sc.Value, sc.Description, sc.Category, sc.IsEncrypted, sc.IsActive,
	)
	return err
}

func (r *SystemConfigRepositoryImpl) UpdateValue(ctx context.Context, key, value, description string) error {
	const q = `
		UPDATE system_config
		   SET config_value = ?, description = ?, updated_at = NOW()
		 WHERE config_key = ?
	`
	_, err := r.db.ExecContext(ctx, q, value, description, key)
	return err
}

func (r *SystemConfigRepositoryImpl) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM system_config WHERE config_key = ?`, key)
	return err
}

func (r *SystemConfigRepositoryImpl) ListByCategory(ctx context.Context, category string) ([]model.SystemConfig, error) {
	var rows []model.SystemConfig
	err := r.db.SelectContext(ctx, &rows, `
		SELECT config_key, config_value, description, category, is_encrypted, is_active, created_at, updated_at
		  FROM system_config
		 WHERE category = ?
		 ORDER BY config_key
	`, category)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

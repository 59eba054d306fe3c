package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/ocserv-tools/ocserv-panel/internal/models"
)

// SettingsRepository handles the single-row panel settings table.
type SettingsRepository struct {
	*BaseRepository[models.PanelSettings]
}

// NewSettingsRepository creates a repository for the panel_settings table.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{
		BaseRepository: NewBaseRepository[models.PanelSettings](db, "panel_settings"),
	}
}

// SettingsUpdates contains optional field updates for the panel settings.
type SettingsUpdates struct {
	DefaultConfigs   *models.ConfigMap
	CaptchaSiteKey   *string
	CaptchaSecretKey *string
	DefaultTrafficGB *int
}

// Get returns the panel settings row, or ErrNotFound when setup has not run yet.
func (r *SettingsRepository) Get(ctx context.Context) (*models.PanelSettings, error) {
	q := r.getQueryable(ctx)

	var settings models.PanelSettings
	err := q.GetContext(ctx, &settings, "SELECT * FROM panel_settings LIMIT 1")
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, ParseDBError(err)
	}

	return &settings, nil
}

// Create inserts the panel settings row during initial setup.
func (r *SettingsRepository) Create(ctx context.Context, settings *models.PanelSettings) error {
	q := r.getQueryable(ctx)

	_, err := q.ExecContext(ctx,
		`INSERT INTO panel_settings
		 (default_configs, captcha_site_key, captcha_secret_key, default_traffic_gb)
		 VALUES (?, ?, ?, ?)`,
		settings.DefaultConfigs, settings.CaptchaSiteKey,
		settings.CaptchaSecretKey, settings.DefaultTrafficGB,
	)
	return ParseDBError(err)
}

// Update applies the non-nil fields of updates to the settings row.
func (r *SettingsRepository) Update(ctx context.Context, updates SettingsUpdates) error {
	var setClauses []string
	var args []interface{}

	addFieldUpdate(&setClauses, &args, "default_configs", updates.DefaultConfigs)
	addFieldUpdate(&setClauses, &args, "captcha_site_key", updates.CaptchaSiteKey)
	addFieldUpdate(&setClauses, &args, "captcha_secret_key", updates.CaptchaSecretKey)
	addFieldUpdate(&setClauses, &args, "default_traffic_gb", updates.DefaultTrafficGB)

	if len(setClauses) == 0 {
		return nil
	}

	q := r.getQueryable(ctx)
	query := "UPDATE panel_settings SET " + strings.Join(setClauses, ", ")

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return ParseDBError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ParseDBError(err)
	}
	if affected == 0 {
		// No settings row means setup never ran
		count, countErr := r.Count(ctx)
		if countErr != nil {
			return countErr
		}
		if count == 0 {
			return ErrNotFound
		}
	}

	return nil
}

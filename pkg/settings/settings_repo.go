package settings

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	log "github.com/sirupsen/logrus"
)

const (
	keyTimezone            = "timezone"
	keyExpandedOccurrences = "expanded_occurrences"
)

type Repo interface {
	GetSettings(ctx context.Context) (Settings, error)
	StoreSettings(ctx context.Context, settings Settings) error
}

type SettingsRepoImpl struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepoImpl {
	return &SettingsRepoImpl{db: db}
}

func (r *SettingsRepoImpl) GetSettings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()

	timezone, err := r.getValue(ctx, keyTimezone)
	if err != nil {
		return Settings{}, err
	}
	if timezone != "" {
		settings.Timezone = timezone
	}

	expanded, err := r.getValue(ctx, keyExpandedOccurrences)
	if err != nil {
		return Settings{}, err
	}
	if expanded != "" {
		settings.ExpandedOccurrences, err = strconv.ParseBool(expanded)
		if err != nil {
			log.Warnf("Ignoring malformed %s value %q", keyExpandedOccurrences, expanded)
			settings.ExpandedOccurrences = false
		}
	}

	return settings, nil
}

func (r *SettingsRepoImpl) StoreSettings(ctx context.Context, settings Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Errorf("failed to begin settings transaction: %v", err)
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO settings (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.ExecContext(ctx, query, keyTimezone, settings.Timezone); err != nil {
		log.Errorf("failed to store %s: %v", keyTimezone, err)
		return err
	}
	if _, err := tx.ExecContext(ctx, query, keyExpandedOccurrences, strconv.FormatBool(settings.ExpandedOccurrences)); err != nil {
		log.Errorf("failed to store %s: %v", keyExpandedOccurrences, err)
		return err
	}

	return tx.Commit()
}

func (r *SettingsRepoImpl) getValue(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	} else if err != nil {
		log.Errorf("failed to read setting %s: %v", key, err)
		return "", err
	}
	return value, nil
}

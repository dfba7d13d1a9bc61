package store

import (
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Setting keys.
const (
	SettingBallSpeed = "ball_speed"
	SettingHandSize  = "hand_size"
)

// SettingsRepository stores key-value application settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

const upsertSetting = `INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`

// Set inserts or replaces the value stored under key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(upsertSetting, key, value)
	return err
}

// GetFloat returns the numeric value stored under key, or fallback when unset.
func (r *SettingsRepository) GetFloat(key string, fallback float64) (float64, error) {
	value, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, fmt.Errorf("setting %s: %w", key, err)
	}
	return f, nil
}

// SetFloat stores a numeric value under key.
func (r *SettingsRepository) SetFloat(key string, value float64) error {
	return r.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// SetFloats stores several numeric values in one transaction. Either every
// key is written or none is.
func (r *SettingsRepository) SetFloats(values map[string]float64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, key := range slices.Sorted(maps.Keys(values)) {
		value := strconv.FormatFloat(values[key], 'f', -1, 64)
		if _, err := tx.Exec(upsertSetting, key, value); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

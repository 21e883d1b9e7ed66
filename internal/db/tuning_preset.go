package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/damptrack/internal/config"
)

// ErrPresetNotFound is returned when no preset has the requested name.
var ErrPresetNotFound = errors.New("tuning preset not found")

// TuningPreset is a named, stored tuning configuration.
type TuningPreset struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ConfigJSON string  `json:"config_json"`
	Notes      string  `json:"notes"`
	CreatedAt  float64 `json:"created_at"`
	UpdatedAt  float64 `json:"updated_at"`
}

// Config decodes and validates the stored tuning.
func (p *TuningPreset) Config() (*config.TuningConfig, error) {
	cfg, err := config.ParseTuningConfig([]byte(p.ConfigJSON))
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return cfg, nil
}

func unixNow() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// SaveTuningPreset stores cfg under name, replacing the tuning and notes of
// an existing preset with the same name. The preset keeps its ID and
// created_at across updates.
func (db *DB) SaveTuningPreset(name string, cfg *config.TuningConfig, notes string) (*TuningPreset, error) {
	if name == "" {
		return nil, errors.New("preset name must not be empty")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to save invalid preset %q: %w", name, err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preset %q: %w", name, err)
	}

	now := unixNow()
	query := `
		INSERT INTO tuning_presets (preset_id, name, config_json, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			config_json = excluded.config_json,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`
	if _, err := db.Exec(query, uuid.New().String(), name, string(data), notes, now, now); err != nil {
		return nil, fmt.Errorf("failed to save tuning preset: %w", err)
	}
	return db.GetTuningPreset(name)
}

// GetTuningPreset retrieves a preset by name.
func (db *DB) GetTuningPreset(name string) (*TuningPreset, error) {
	query := `
		SELECT preset_id, name, config_json, notes, created_at, updated_at
		FROM tuning_presets
		WHERE name = ?
	`

	var preset TuningPreset
	err := db.QueryRow(query, name).Scan(
		&preset.ID,
		&preset.Name,
		&preset.ConfigJSON,
		&preset.Notes,
		&preset.CreatedAt,
		&preset.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tuning preset: %w", err)
	}
	return &preset, nil
}

// ListTuningPresets returns every preset ordered by name.
func (db *DB) ListTuningPresets() ([]TuningPreset, error) {
	query := `
		SELECT preset_id, name, config_json, notes, created_at, updated_at
		FROM tuning_presets
		ORDER BY name ASC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tuning presets: %w", err)
	}
	defer rows.Close()

	var presets []TuningPreset
	for rows.Next() {
		var preset TuningPreset
		err := rows.Scan(
			&preset.ID,
			&preset.Name,
			&preset.ConfigJSON,
			&preset.Notes,
			&preset.CreatedAt,
			&preset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tuning preset: %w", err)
		}
		presets = append(presets, preset)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tuning presets: %w", err)
	}
	return presets, nil
}

// DeleteTuningPreset removes a preset by name.
func (db *DB) DeleteTuningPreset(name string) error {
	result, err := db.Exec(`DELETE FROM tuning_presets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete tuning preset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return nil
}

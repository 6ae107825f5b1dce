package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/avdeeva/beautybook/internal/model"
)

func (r *settingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting: %w", err)
	}
	return value, true, nil
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// ReminderConfig reads the reminder toggles. Absent keys default to enabled
// so a fresh database sends every reminder.
func (r *settingsRepository) ReminderConfig(ctx context.Context) (model.ReminderConfig, error) {
	cfg := model.DefaultReminderConfig()

	read := func(key string, target *bool) error {
		value, ok, err := r.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		*target = enabled
		return nil
	}

	if err := read(model.SettingLead24h, &cfg.Lead24h); err != nil {
		return cfg, err
	}
	if err := read(model.SettingLead12h, &cfg.Lead12h); err != nil {
		return cfg, err
	}
	if err := read(model.SettingLead6h, &cfg.Lead6h); err != nil {
		return cfg, err
	}
	if err := read(model.SettingLead1h, &cfg.Lead1h); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (r *settingsRepository) SetReminderConfig(ctx context.Context, cfg model.ReminderConfig) error {
	for key, enabled := range map[string]bool{
		model.SettingLead24h: cfg.Lead24h,
		model.SettingLead12h: cfg.Lead12h,
		model.SettingLead6h:  cfg.Lead6h,
		model.SettingLead1h:  cfg.Lead1h,
	} {
		if err := r.Set(ctx, key, strconv.FormatBool(enabled)); err != nil {
			return err
		}
	}
	return nil
}

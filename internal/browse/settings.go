package browse

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"vidbot/internal/storage"
)

// Setting names
const (
	SettingForwardProtection = "forward_protection_enabled"
	SettingAutoDelete        = "auto_delete_enabled"
	SettingAutoDeleteMinutes = "auto_delete_minutes"
)

// Setting reads a setting straight from storage, returning def when it was
// never set or the store cannot be reached. Nothing is cached.
func (s *Service) Setting(ctx context.Context, name, def string) string {
	setting, err := s.db.GetSetting(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("Failed to read setting", zap.Error(err), zap.String("setting", name))
		}
		return def
	}
	return setting.Value
}

// BoolSetting reads a boolean setting
func (s *Service) BoolSetting(ctx context.Context, name string, def bool) bool {
	v, err := strconv.ParseBool(s.Setting(ctx, name, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

// IntSetting reads an integer setting
func (s *Service) IntSetting(ctx context.Context, name string, def int) int {
	v, err := strconv.Atoi(s.Setting(ctx, name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

// SetSetting writes a setting
func (s *Service) SetSetting(ctx context.Context, name, value string) error {
	if err := s.db.SetSetting(ctx, name, value); err != nil {
		return unavailable(err)
	}
	s.logger.Info("Setting updated", zap.String("setting", name), zap.String("value", value))
	return nil
}

// ToggleSetting flips a boolean setting and returns the new value
func (s *Service) ToggleSetting(ctx context.Context, name string, def bool) (bool, error) {
	next := !s.BoolSetting(ctx, name, def)
	if err := s.SetSetting(ctx, name, strconv.FormatBool(next)); err != nil {
		return !next, err
	}
	return next, nil
}

// SetAutoDeleteMinutes stores the auto-delete delay; it must be 1..1440
func (s *Service) SetAutoDeleteMinutes(ctx context.Context, minutes int) error {
	if minutes < 1 || minutes > 1440 {
		return ErrInvalidArgument
	}
	return s.SetSetting(ctx, SettingAutoDeleteMinutes, strconv.Itoa(minutes))
}

// Settings is the full set of runtime toggles
type Settings struct {
	ForwardProtection bool `json:"forward_protection"`
	AutoDelete        bool `json:"auto_delete"`
	AutoDeleteMinutes int  `json:"auto_delete_minutes"`
}

// CurrentSettings reads all stored settings at once. Missing or unparseable
// values keep their default; an unreachable store returns defaults unchanged.
func (s *Service) CurrentSettings(ctx context.Context, defaults Settings) Settings {
	stored, err := s.db.ListSettings(ctx)
	if err != nil {
		s.logger.Error("Failed to list settings", zap.Error(err))
		return defaults
	}

	current := defaults
	for _, setting := range stored {
		switch setting.Name {
		case SettingForwardProtection:
			if v, err := strconv.ParseBool(setting.Value); err == nil {
				current.ForwardProtection = v
			}
		case SettingAutoDelete:
			if v, err := strconv.ParseBool(setting.Value); err == nil {
				current.AutoDelete = v
			}
		case SettingAutoDeleteMinutes:
			if v, err := strconv.Atoi(setting.Value); err == nil {
				current.AutoDeleteMinutes = v
			}
		}
	}
	return current
}

package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// SettingError names the setting that failed validation.
type SettingError struct {
	Key    string
	Reason string
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Key, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *SettingError) Unwrap() error { return ErrInvalidConfig }

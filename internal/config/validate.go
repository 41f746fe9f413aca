package config

import (
	"fmt"

	"github.com/yarkm13/ftpsh/internal/errors"
)

var (
	validProtocols = map[string]bool{"ftp": true, "ftps": true, "sftp": true}
	validColors    = map[string]bool{"auto": true, "always": true, "never": true}
)

// Validate checks values that viper cannot type-check.
func Validate(cfg *Config) error {
	if !validProtocols[cfg.Protocol] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown protocol %q", cfg.Protocol),
			"Use one of: ftp, ftps, sftp")
	}
	if !validColors[cfg.Color] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown color mode %q", cfg.Color),
			"Use one of: auto, always, never")
	}
	if cfg.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Timeout must be positive, got %s", cfg.Timeout),
			"Set timeout to a duration such as 15s")
	}
	return nil
}

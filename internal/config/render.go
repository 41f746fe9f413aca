package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yarkm13/ftpsh/internal/errors"
)

const fileHeader = `# ftpsh configuration
# Values can be overridden with FTPSH_* environment variables
# (e.g. FTPSH_PROTOCOL=sftp) or command line flags.

`

// fileConfig is the on-disk shape. Durations are written as strings so
// the file stays readable.
type fileConfig struct {
	Protocol string         `yaml:"protocol"`
	User     string         `yaml:"user"`
	Timeout  string         `yaml:"timeout"`
	Prompt   string         `yaml:"prompt"`
	Color    string         `yaml:"color"`
	FTP      fileFTPConfig  `yaml:"ftp"`
	SFTP     fileSFTPConfig `yaml:"sftp"`
}

type fileFTPConfig struct {
	DisableEPSV   bool `yaml:"disable_epsv"`
	TLSSkipVerify bool `yaml:"tls_skip_verify"`
}

type fileSFTPConfig struct {
	SSHConfig string `yaml:"ssh_config"`
}

// Render returns cfg as YAML.
func Render(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(fileConfig{
		Protocol: cfg.Protocol,
		User:     cfg.User,
		Timeout:  cfg.Timeout.String(),
		Prompt:   cfg.Prompt,
		Color:    cfg.Color,
		FTP: fileFTPConfig{
			DisableEPSV:   cfg.FTP.DisableEPSV,
			TLSSkipVerify: cfg.FTP.TLSSkipVerify,
		},
		SFTP: fileSFTPConfig{SSHConfig: cfg.SFTP.SSHConfig},
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config", "")
	}
	return data, nil
}

// Write stores cfg at path with a header comment. An existing file is
// only replaced when overwrite is set.
func Write(path string, cfg *Config, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Config file already exists: %s", path),
			"Use --force to overwrite it")
	}

	data, err := Render(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yarkm13/ftpsh/internal/errors"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".ftpsh.yaml"
	// GlobalConfigDir is the directory for the user config, relative to home.
	GlobalConfigDir = ".config/ftpsh"
	// GlobalConfigFile is the user config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. FTPSH_PROTOCOL.
	EnvPrefix = "FTPSH"
)

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"protocol": "protocol",
	"user":     "user",
	"timeout":  "timeout",
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .ftpsh.yaml in the current directory
// 3. ~/.config/ftpsh/config.yaml
//
// Returns an empty path when no file exists.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// Load builds the effective config from defaults, the file at path (if
// any), FTPSH_* environment variables and changed flags, in increasing
// order of precedence. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check "+path+" is valid YAML")
		}
	}

	if flags != nil {
		for flagName, key := range flagKeys {
			if f := flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.WrapWithCode(err, errors.ErrConfig,
						"Failed to bind flag --"+flagName, "")
				}
			}
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}
	cfg.Protocol = strings.ToLower(cfg.Protocol)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault finds and loads the config file, falling back to defaults
// (still subject to environment and flags) when none exists.
func LoadOrDefault(explicit string, flags *pflag.FlagSet) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path, flags)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("protocol", def.Protocol)
	v.SetDefault("user", def.User)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("prompt", def.Prompt)
	v.SetDefault("color", def.Color)
	v.SetDefault("ftp.disable_epsv", def.FTP.DisableEPSV)
	v.SetDefault("ftp.tls_skip_verify", def.FTP.TLSSkipVerify)
	v.SetDefault("sftp.ssh_config", def.SFTP.SSHConfig)
}

package config

import "time"

// Config is the effective ftpsh configuration.
type Config struct {
	// Protocol selects the remote client: ftp, ftps or sftp.
	Protocol string `mapstructure:"protocol"`

	// User is the default login for connect. Empty means anonymous.
	User string `mapstructure:"user"`

	// Timeout bounds dialing and the login handshake.
	Timeout time.Duration `mapstructure:"timeout"`

	Prompt string `mapstructure:"prompt"`

	// Color is auto, always or never.
	Color string `mapstructure:"color"`

	FTP  FTPConfig  `mapstructure:"ftp"`
	SFTP SFTPConfig `mapstructure:"sftp"`
}

type FTPConfig struct {
	// DisableEPSV falls back to PASV for servers that mishandle EPSV.
	DisableEPSV bool `mapstructure:"disable_epsv"`

	// TLSSkipVerify accepts any server certificate for ftps.
	TLSSkipVerify bool `mapstructure:"tls_skip_verify"`
}

type SFTPConfig struct {
	// SSHConfig is an OpenSSH client config consulted for host aliases,
	// default users and identity files.
	SSHConfig string `mapstructure:"ssh_config"`
}

const (
	DefaultProtocol = "ftp"
	DefaultTimeout  = 15 * time.Second
	DefaultPrompt   = "ftpsh> "
	DefaultColor    = "auto"
	DefaultSSHConf  = "~/.ssh/config"
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Protocol: DefaultProtocol,
		Timeout:  DefaultTimeout,
		Prompt:   DefaultPrompt,
		Color:    DefaultColor,
		SFTP: SFTPConfig{
			SSHConfig: DefaultSSHConf,
		},
	}
}

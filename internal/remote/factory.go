package remote

import (
	"github.com/yarkm13/ftpsh/internal/errors"
)

var clientFactories = []Factory{
	&FTPClientFactory{},
	&SFTPClientFactory{},
	// add more
}

func getClientFactory(protocol string) Factory {
	for _, factory := range clientFactories {
		if factory.Accept(protocol) {
			return factory
		}
	}
	return nil
}

// NewClient returns a client for protocol ("ftp", "ftps" or "sftp").
func NewClient(protocol string, opts Options) (Client, error) {
	factory := getClientFactory(protocol)
	if factory == nil {
		return nil, errors.New(errors.ErrProtocol,
			"No client available for protocol: "+protocol,
			"Supported protocols: ftp, ftps, sftp")
	}
	return factory.Create(protocol, opts)
}

// DefaultPort returns the well-known port for protocol, or 0 if unknown.
func DefaultPort(protocol string) int {
	switch protocol {
	case "ftp", "ftps":
		return 21
	case "sftp":
		return 22
	default:
		return 0
	}
}

package remote

import (
	"fmt"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

// Credentials hold a login for a single connect attempt. They are never
// persisted and their String form hides the password.
type Credentials struct {
	Username string
	password []byte
}

// NewCredentials copies password so the caller can wipe its own buffer.
func NewCredentials(username string, password []byte) *Credentials {
	passwordCopy := make([]byte, len(password))
	copy(passwordCopy, password)
	return &Credentials{
		Username: username,
		password: passwordCopy,
	}
}

// Password returns the secret. The slice is wiped by Clear.
func (c *Credentials) Password() []byte {
	if c == nil {
		return nil
	}
	return c.password
}

func (c *Credentials) Clear() {
	if c == nil {
		return
	}
	secureWipe(c.password)
	c.password = nil
}

func (c *Credentials) String() string {
	if c == nil {
		return "<anonymous>"
	}
	return c.Username + ":********"
}

func (c *Credentials) GoString() string {
	return c.String()
}

// secureWipe overwrites the slice with zeros.
func secureWipe(data []byte) {
	if data == nil {
		return
	}
	for i := range data {
		data[i] = 0
	}
}

// hostKeyStore remembers fingerprints the user accepted during this session.
type hostKeyStore struct {
	mu    sync.Mutex
	known map[string]string
}

func newHostKeyStore() *hostKeyStore {
	return &hostKeyStore{known: make(map[string]string)}
}

func (h *hostKeyStore) callback(confirm func(question string) (bool, error)) ssh.HostKeyCallback {
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		fingerprint := ssh.FingerprintSHA256(key)

		h.mu.Lock()
		stored, exists := h.known[hostname]
		h.mu.Unlock()
		if exists {
			if stored == fingerprint {
				return nil
			}
			return fmt.Errorf("host key for %s changed (now %s)", hostname, fingerprint)
		}

		if confirm == nil {
			return fmt.Errorf("unknown host key %s for %s", fingerprint, hostname)
		}

		question := fmt.Sprintf("The authenticity of host '%s' can't be established.\r\n%s key fingerprint is %s\r\nAre you sure you want to continue connecting (yes/no)? ",
			hostname, key.Type(), fingerprint)
		ok, err := confirm(question)
		if err != nil {
			return fmt.Errorf("failed to read user input: %w", err)
		}
		if !ok {
			return fmt.Errorf("host key verification rejected by user")
		}

		h.mu.Lock()
		h.known[hostname] = fingerprint
		h.mu.Unlock()
		return nil
	}
}

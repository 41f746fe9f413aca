package session

import "fmt"

// ConnectionState tracks which server the session is logged in to.
// Host and port are only meaningful while open; Clear resets all three.
type ConnectionState struct {
	host string
	port int
	open bool
}

// Set marks the connection open to host:port.
func (s *ConnectionState) Set(host string, port int) {
	s.host = host
	s.port = port
	s.open = true
}

// Clear marks the connection closed and forgets host and port.
func (s *ConnectionState) Clear() {
	s.host = ""
	s.port = 0
	s.open = false
}

func (s *ConnectionState) IsOpen() bool { return s.open }
func (s *ConnectionState) Host() string { return s.host }
func (s *ConnectionState) Port() int    { return s.port }

// Describe returns "Connected to host:port" or "Not connected".
func (s *ConnectionState) Describe() string {
	if !s.open {
		return "Not connected"
	}
	return fmt.Sprintf("Connected to %s:%d", s.host, s.port)
}

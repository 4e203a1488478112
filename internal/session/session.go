// Package session tracks connected RPC clients: one entry per accepted
// connection, from accept to disconnect, plus per-request trace IDs.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// Session represents one live connection to the daemon.
type Session struct {
	ID          string
	Address     string
	ConnectedAt time.Time
}

// NewSession creates a session for a newly accepted connection at addr.
func NewSession(addr string) *Session {
	return &Session{
		ID:          uuid.NewString(),
		Address:     addr,
		ConnectedAt: time.Now(),
	}
}

// ToConnectedClient projects this session into the public
// ConnectedClient value returned by ListClients.
func (s *Session) ToConnectedClient() valuetype.ConnectedClient {
	return valuetype.ConnectedClient{
		Address:     s.Address,
		ConnectedAt: s.ConnectedAt,
	}
}

// NewTraceID generates a trace ID for a pipeline request that did not
// supply one.
func NewTraceID() string {
	return uuid.NewString()
}

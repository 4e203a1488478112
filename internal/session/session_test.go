package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSessionPopulatesFields(t *testing.T) {
	s := NewSession("127.0.0.1:5555")
	require.NotEmpty(t, s.ID)
	require.Equal(t, "127.0.0.1:5555", s.Address)
	require.False(t, s.ConnectedAt.IsZero())
}

func TestToConnectedClient(t *testing.T) {
	s := NewSession("127.0.0.1:5555")
	c := s.ToConnectedClient()
	require.Equal(t, s.Address, c.Address)
	require.Equal(t, s.ConnectedAt, c.ConnectedAt)
}

func TestNewTraceIDUnique(t *testing.T) {
	a := NewTraceID()
	b := NewTraceID()
	require.NotEqual(t, a, b)
}

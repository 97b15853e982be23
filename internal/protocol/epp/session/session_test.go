package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSessionStartsGreeted(t *testing.T) {
	s := New("192.0.2.1:4444")
	require.Equal(t, StateGreeted, s.State)
	require.False(t, s.Authenticated())
}

func TestLoginTransitionsToAuthenticated(t *testing.T) {
	s := New("192.0.2.1:4444")
	require.NoError(t, s.Login("RG1"))
	require.True(t, s.Authenticated())
	require.Equal(t, "RG1", s.SponsoringClient())
	require.False(t, s.LoginTime.IsZero())
}

func TestHelloReemitsGreetingWithoutAuth(t *testing.T) {
	s := New("192.0.2.1:4444")
	s.Hello()
	require.Equal(t, StateGreeted, s.State)
}

func TestHelloAfterLoginStaysAuthenticated(t *testing.T) {
	s := New("192.0.2.1:4444")
	require.NoError(t, s.Login("RG1"))
	s.Hello()
	require.True(t, s.Authenticated())
}

func TestLogoutClosesSession(t *testing.T) {
	s := New("192.0.2.1:4444")
	require.NoError(t, s.Login("RG1"))
	s.Logout()
	require.Equal(t, StateClosing, s.State)
	require.Error(t, s.Login("RG1"))
}

func TestTableIsolatesSessions(t *testing.T) {
	tbl := NewTable()
	a := New("192.0.2.1:1")
	b := New("192.0.2.2:2")
	tbl.Register(a)
	tbl.Register(b)
	require.NoError(t, a.Login("RG1"))

	require.Equal(t, 2, tbl.Len())
	snaps := tbl.Snapshot()
	var foundB Snapshot
	for _, s := range snaps {
		if s.ID == b.ID {
			foundB = s
		}
	}
	require.Empty(t, foundB.ClID, "session B must be unaffected by session A's login")

	tbl.Unregister(a.ID)
	require.Equal(t, 1, tbl.Len())
}

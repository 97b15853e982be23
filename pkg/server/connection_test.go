package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/frame"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/session"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
	"github.com/qenex-ai/epp-registry-platform/pkg/store/memory"
)

func testAdapter() *EPPAdapter {
	st := memory.New(map[string]*store.Registrar{
		"registrar1": {ClID: "registrar1", PW: "secret", Name: "Test Registrar"},
	})
	return NewEPPAdapter(EPPConfig{ServerID: "EPP"}, st)
}

func TestHandleFrameLoginThenLogoutClosesConnection(t *testing.T) {
	a := testAdapter()
	sess := session.New("127.0.0.1:1")
	ctx := context.Background()

	loginDoc := `<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
		<command>
			<login>
				<clID>registrar1</clID>
				<pw>secret</pw>
			</login>
			<clTRID>T1</clTRID>
		</command>
	</epp>`
	resp, shouldClose := a.handleFrame(ctx, sess, []byte(loginDoc))
	require.False(t, shouldClose)
	require.Contains(t, string(resp), "1000")
	require.True(t, sess.Authenticated())

	logoutDoc := `<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
		<command>
			<logout/>
			<clTRID>T2</clTRID>
		</command>
	</epp>`
	resp, shouldClose = a.handleFrame(ctx, sess, []byte(logoutDoc))
	require.True(t, shouldClose)
	require.Contains(t, string(resp), "1500")
}

func TestHandleFrameSyntaxErrorKeepsSessionOpen(t *testing.T) {
	a := testAdapter()
	sess := session.New("127.0.0.1:1")

	resp, shouldClose := a.handleFrame(context.Background(), sess, []byte("not xml"))
	require.False(t, shouldClose)
	require.Contains(t, string(resp), "2001")
}

func TestHandleConnectionSendsGreetingThenRespondsToLogin(t *testing.T) {
	a := testAdapter()
	client, server := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		a.handleConnection(context.Background(), server)
		close(done)
	}()

	greeting, err := frame.Read(client)
	require.NoError(t, err)
	require.Contains(t, string(greeting), "<greeting")

	loginDoc := `<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
		<command>
			<login>
				<clID>registrar1</clID>
				<pw>secret</pw>
			</login>
			<clTRID>T1</clTRID>
		</command>
	</epp>`
	require.NoError(t, frame.Write(client, []byte(loginDoc)))

	resp, err := frame.Read(client)
	require.NoError(t, err)
	require.Contains(t, string(resp), "1000")

	logoutDoc := `<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
		<command>
			<logout/>
			<clTRID>T2</clTRID>
		</command>
	</epp>`
	require.NoError(t, frame.Write(client, []byte(logoutDoc)))

	resp, err = frame.Read(client)
	require.NoError(t, err)
	require.Contains(t, string(resp), "1500")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConnection did not return after logout")
	}
}

package xmlcodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeResponseEscapesText(t *testing.T) {
	out, err := Encode(Response{
		Code:                2303,
		Message:              `object does not exist: <injected & "quoted">`,
		ClientTransactionID: "ABC-123",
		ServerTransactionID: "SRV-1",
	})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, `code="2303"`)
	require.Contains(t, s, "&lt;injected &amp; &#34;quoted&#34;&gt;")
	require.NotContains(t, s, "<injected")
	require.Contains(t, s, "<clTRID>ABC-123</clTRID>")
	require.Contains(t, s, "<svTRID>SRV-1</svTRID>")
}

func TestEncodeResponseOmitsClTRIDWhenAbsent(t *testing.T) {
	out, err := Encode(Response{Code: 1000, Message: "Command completed successfully", ServerTransactionID: "SRV-2"})
	require.NoError(t, err)
	require.NotContains(t, string(out), "<clTRID>")
}

func TestNewServerTransactionIDIsUnique(t *testing.T) {
	a := NewServerTransactionID()
	b := NewServerTransactionID()
	require.NotEqual(t, a, b)
	require.Contains(t, a, "SRV-")
}

func TestEncodeGreeting(t *testing.T) {
	out, err := EncodeGreeting(Greeting{
		ServerID:   "epp.example.test",
		ServerDate: "2026-07-30T00:00:00Z",
		Versions:   []string{"1.0"},
		Langs:      []string{"en"},
		ObjectURIs: []string{NSDomain, NSContact, NSHost},
		ExtURIs:    []string{NSRGP, NSSecDNS},
	})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "<svID>epp.example.test</svID>")
	require.Contains(t, s, "<objURI>"+NSDomain+"</objURI>")
	require.Contains(t, s, "<extURI>"+NSRGP+"</extURI>")
}

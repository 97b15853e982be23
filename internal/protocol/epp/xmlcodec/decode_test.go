package xmlcodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeHello(t *testing.T) {
	rec, err := Decode([]byte(`<epp xmlns="urn:ietf:params:xml:ns:epp-1.0"><hello/></epp>`))
	require.NoError(t, err)
	require.Equal(t, KindHello, rec.Kind)
}

func TestDecodeLogin(t *testing.T) {
	doc := `<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
		<command>
			<login>
				<clID>RG1</clID>
				<pw>secret</pw>
			</login>
			<clTRID>ABC-123</clTRID>
		</command>
	</epp>`
	rec, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, KindCommand, rec.Kind)
	require.Equal(t, VerbLogin, rec.Verb)
	require.Equal(t, "ABC-123", rec.ClientTransactionID)

	login, ok := rec.Payload.(*Login)
	require.True(t, ok)
	require.Equal(t, "RG1", login.ClID)
	require.Equal(t, "secret", login.Pw)
}

func TestDecodeDomainCreate(t *testing.T) {
	doc := `<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
		<command>
			<create>
				<domain:create xmlns:domain="urn:ietf:params:xml:ns:domain-1.0">
					<domain:name>Example.TEST</domain:name>
					<domain:period unit="y">2</domain:period>
					<domain:ns>
						<domain:hostObj>NS1.example.test</domain:hostObj>
					</domain:ns>
					<domain:registrant>C1</domain:registrant>
					<domain:contact type="admin">C1</domain:contact>
					<domain:authInfo><domain:pw>pw1</domain:pw></domain:authInfo>
				</domain:create>
			</create>
			<clTRID>XYZ</clTRID>
		</command>
	</epp>`
	rec, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, VerbCreate, rec.Verb)
	require.Equal(t, ObjectDomain, rec.ObjectKind)

	create, ok := rec.Payload.(*DomainCreate)
	require.True(t, ok)
	require.Equal(t, "example.test", create.Name)
	require.Equal(t, 2, create.PeriodYears)
	require.Equal(t, []string{"ns1.example.test"}, create.Nameservers)
	require.Equal(t, "C1", create.Registrant)
	require.Equal(t, "pw1", create.AuthInfo)
	require.Len(t, create.Contacts, 1)
	require.Equal(t, "admin", create.Contacts[0].Role)
}

func TestDecodeDomainTransferOp(t *testing.T) {
	doc := `<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
		<command>
			<transfer op="request">
				<domain:transfer xmlns:domain="urn:ietf:params:xml:ns:domain-1.0">
					<domain:name>example.test</domain:name>
					<domain:authInfo><domain:pw>pw1</domain:pw></domain:authInfo>
				</domain:transfer>
			</transfer>
		</command>
	</epp>`
	rec, err := Decode([]byte(doc))
	require.NoError(t, err)
	transfer, ok := rec.Payload.(*DomainTransfer)
	require.True(t, ok)
	require.Equal(t, TransferOpRequest, transfer.Op)
	require.Equal(t, "example.test", transfer.Name)
	require.Equal(t, "pw1", transfer.AuthInfo)
}

func TestDecodeMalformedDocumentIsSyntaxError(t *testing.T) {
	_, err := Decode([]byte(`not xml at all`))
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestDecodeMissingVerbIsSyntaxError(t *testing.T) {
	_, err := Decode([]byte(`<epp xmlns="urn:ietf:params:xml:ns:epp-1.0"><command><clTRID>X</clTRID></command></epp>`))
	require.Error(t, err)
}

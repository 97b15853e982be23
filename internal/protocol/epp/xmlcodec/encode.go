package xmlcodec

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/xml"
	"fmt"
)

// Response is the semantic result record handlers build; Encode turns it
// into the canonical EPP response envelope.
type Response struct {
	Code                int
	Message             string
	ClientTransactionID string
	ServerTransactionID string
	ResData             any
}

// wireResponse and wireResult mirror the envelope described in the XML codec
// component: <epp><response><result>...<trID>...
type wireResponse struct {
	XMLName  xml.Name   `xml:"urn:ietf:params:xml:ns:epp-1.0 epp"`
	Response wireResult `xml:"response"`
}

type wireResult struct {
	Result  resultBlock `xml:"result"`
	ResData *resDataBlock `xml:"resData,omitempty"`
	TrID    trIDBlock   `xml:"trID"`
}

type resultBlock struct {
	Code int    `xml:"code,attr"`
	Msg  string `xml:"msg"`
}

type resDataBlock struct {
	InnerXML []byte `xml:",innerxml"`
}

type trIDBlock struct {
	ClTRID string `xml:"clTRID,omitempty"`
	SvTRID string `xml:"svTRID"`
}

// NewServerTransactionID generates a fresh random hex server transaction
// identifier, as required for every response envelope.
func NewServerTransactionID() string {
	var buf [12]byte
	_, _ = rand.Read(buf[:])
	return "SRV-" + hex.EncodeToString(buf[:])
}

// Encode serializes a Response into a canonical EPP response document.
// Handlers supply ResData as an already-namespaced marshalable value (or
// nil); all text content is escaped by encoding/xml, so handler-controlled
// strings can never inject XML structure into the output.
func Encode(resp Response) ([]byte, error) {
	var rd *resDataBlock
	if resp.ResData != nil {
		inner, err := xml.Marshal(resp.ResData)
		if err != nil {
			return nil, fmt.Errorf("epp: encode resData: %w", err)
		}
		rd = &resDataBlock{InnerXML: inner}
	}

	doc := wireResponse{
		Response: wireResult{
			Result: resultBlock{Code: resp.Code, Msg: resp.Message},
			ResData: rd,
			TrID: trIDBlock{
				ClTRID: resp.ClientTransactionID,
				SvTRID: resp.ServerTransactionID,
			},
		},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("epp: encode response: %w", err)
	}
	return buf.Bytes(), nil
}

// Greeting is the semantic content of the unsolicited server greeting sent
// on connection accept and re-emitted on <hello>.
type Greeting struct {
	ServerID   string
	ServerDate string
	Versions   []string
	Langs      []string
	ObjectURIs []string
	ExtURIs    []string
}

type wireGreeting struct {
	XMLName  xml.Name `xml:"urn:ietf:params:xml:ns:epp-1.0 epp"`
	Greeting struct {
		SvID   string   `xml:"svID"`
		SvDate string   `xml:"svDate"`
		Svcs   wireSvcs `xml:"svcMenu"`
		Dcp    wireDcp  `xml:"dcp"`
	} `xml:"greeting"`
}

type wireSvcs struct {
	Version []string        `xml:"version"`
	Lang    []string        `xml:"lang"`
	ObjURI  []string        `xml:"objURI"`
	SvcExt  *wireSvcExt     `xml:"svcExtension,omitempty"`
}

type wireSvcExt struct {
	ExtURI []string `xml:"extURI"`
}

// wireDcp models an opaque data collection policy block; its content is
// fixed and advertisement-only, never parsed by clients in this profile.
type wireDcp struct {
	Access struct {
		All *struct{} `xml:"all"`
	} `xml:"access"`
	Statement struct {
		Purpose struct {
			Admin *struct{} `xml:"admin"`
			Prov  *struct{} `xml:"prov"`
		} `xml:"purpose"`
		Recipient struct {
			Ours *struct{} `xml:"ours"`
		} `xml:"recipient"`
		Retention struct {
			Stated *struct{} `xml:"stated"`
		} `xml:"retention"`
	} `xml:"statement"`
}

// EncodeGreeting serializes a Greeting into the canonical greeting document.
func EncodeGreeting(g Greeting) ([]byte, error) {
	doc := wireGreeting{}
	doc.Greeting.SvID = g.ServerID
	doc.Greeting.SvDate = g.ServerDate
	svcs := wireSvcs{
		Version: g.Versions,
		Lang:    g.Langs,
		ObjURI:  g.ObjectURIs,
	}
	if len(g.ExtURIs) > 0 {
		svcs.SvcExt = &wireSvcExt{ExtURI: g.ExtURIs}
	}
	doc.Greeting.Svcs = svcs
	doc.Greeting.Dcp.Access.All = &struct{}{}
	doc.Greeting.Dcp.Statement.Purpose.Admin = &struct{}{}
	doc.Greeting.Dcp.Statement.Purpose.Prov = &struct{}{}
	doc.Greeting.Dcp.Statement.Recipient.Ours = &struct{}{}
	doc.Greeting.Dcp.Statement.Retention.Stated = &struct{}{}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("epp: encode greeting: %w", err)
	}
	return buf.Bytes(), nil
}

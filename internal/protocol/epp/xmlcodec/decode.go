package xmlcodec

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// SyntaxError is returned when a frame's payload is not a well-formed EPP
// document the decoder can extract a command record from. Callers map it to
// result code 2001.
type SyntaxError struct {
	Detail string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("epp: syntax error: %s", e.Detail)
}

// wireEnvelope mirrors the outer <epp> element closely enough to locate its
// child kind (hello/command) without committing to a fully typed
// schema; the inner payload is kept as raw bytes and re-parsed per
// (verb, object) once identified.
type wireEnvelope struct {
	XMLName xml.Name `xml:"epp"`
	Hello   *struct{} `xml:"hello"`
	Command *wireCommand `xml:"command"`
}

type wireCommand struct {
	InnerXML []byte `xml:",innerxml"`
	ClTRID   string `xml:"clTRID"`
}

// commandChild identifies the verb element inside <command> along with its
// raw inner XML, which is decoded again into the verb-specific struct.
type commandChild struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	InnerXML []byte     `xml:",innerxml"`
}

// Decode parses a single EPP frame payload into a semantic CommandRecord.
func Decode(payload []byte) (*CommandRecord, error) {
	var env wireEnvelope
	if err := xml.Unmarshal(payload, &env); err != nil {
		return nil, &SyntaxError{Detail: err.Error()}
	}
	if env.XMLName.Local != "epp" {
		return nil, &SyntaxError{Detail: "missing outer <epp> element"}
	}

	if env.Hello != nil {
		return &CommandRecord{Kind: KindHello}, nil
	}
	if env.Command == nil {
		return nil, &SyntaxError{Detail: "neither <hello> nor <command> present"}
	}

	verbEl, err := firstChildElement(env.Command.InnerXML, "clTRID", "extension")
	if err != nil {
		return nil, &SyntaxError{Detail: "command has no verb element: " + err.Error()}
	}

	rec := &CommandRecord{
		Kind:                KindCommand,
		Verb:                Verb(verbEl.XMLName.Local),
		ClientTransactionID: env.Command.ClTRID,
	}

	switch rec.Verb {
	case VerbLogin:
		login, err := decodeLogin(verbEl.InnerXML)
		if err != nil {
			return nil, err
		}
		rec.Payload = login
		return rec, nil
	case VerbLogout:
		return rec, nil
	case VerbCheck, VerbInfo, VerbCreate, VerbUpdate, VerbDelete, VerbRenew, VerbTransfer:
		objEl, err := firstChildElement(verbEl.InnerXML)
		if err != nil {
			if rec.Verb == VerbTransfer {
				// a bare transfer query with no object child is malformed
				// for this profile; object payload is always required.
				return nil, &SyntaxError{Detail: "transfer command missing object payload"}
			}
			return nil, &SyntaxError{Detail: "command missing object payload: " + err.Error()}
		}
		objKind, err := objectKindForNamespace(objEl.XMLName.Space)
		if err != nil {
			return nil, err
		}
		rec.ObjectKind = objKind

		payload, err := decodeObjectPayload(rec.Verb, objKind, objEl, verbEl)
		if err != nil {
			return nil, err
		}
		rec.Payload = payload
		return rec, nil
	case VerbPoll:
		return rec, nil
	default:
		return rec, nil
	}
}

// wrap re-roots a captured inner-XML fragment under a synthetic element so
// it can be unmarshaled a second time into a verb-specific struct. The
// wrapper's own name is never inspected by the target struct.
func wrap(name string, inner []byte) []byte {
	buf := make([]byte, 0, len(inner)+2*len(name)+5)
	buf = append(buf, '<')
	buf = append(buf, name...)
	buf = append(buf, '>')
	buf = append(buf, inner...)
	buf = append(buf, '<', '/')
	buf = append(buf, name...)
	buf = append(buf, '>')
	return buf
}

func objectKindForNamespace(ns string) (ObjectKind, error) {
	switch ns {
	case NSDomain:
		return ObjectDomain, nil
	case NSContact:
		return ObjectContact, nil
	case NSHost:
		return ObjectHost, nil
	default:
		return ObjectNone, &SyntaxError{Detail: "unrecognized object namespace " + ns}
	}
}

func decodeLogin(inner []byte) (*Login, error) {
	var l struct {
		ClID  string `xml:"clID"`
		Pw    string `xml:"pw"`
		NewPW string `xml:"newPW"`
	}
	if err := xml.Unmarshal(wrap("login", inner), &l); err != nil {
		return nil, &SyntaxError{Detail: "malformed login: " + err.Error()}
	}
	return &Login{ClID: l.ClID, Pw: l.Pw, NewPW: l.NewPW}, nil
}

func decodeObjectPayload(verb Verb, obj ObjectKind, objEl commandChild, verbEl commandChild) (any, error) {
	switch obj {
	case ObjectDomain:
		return decodeDomainPayload(verb, objEl, verbEl)
	case ObjectContact:
		return decodeContactPayload(verb, objEl, verbEl)
	case ObjectHost:
		return decodeHostPayload(verb, objEl, verbEl)
	default:
		return nil, &SyntaxError{Detail: "unsupported object kind"}
	}
}

func decodeDomainPayload(verb Verb, objEl commandChild, verbEl commandChild) (any, error) {
	switch verb {
	case VerbCheck:
		var w struct {
			Names []string `xml:"name"`
		}
		if err := xml.Unmarshal(wrap("check", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed domain check: " + err.Error()}
		}
		return &DomainCheck{Names: lowerAll(w.Names)}, nil

	case VerbInfo:
		var w struct {
			Name string `xml:"name"`
		}
		if err := xml.Unmarshal(wrap("info", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed domain info: " + err.Error()}
		}
		return &DomainInfo{Name: strings.ToLower(w.Name)}, nil

	case VerbCreate:
		var w struct {
			Name   string `xml:"name"`
			Period struct {
				Value int    `xml:",chardata"`
				Unit  string `xml:"unit,attr"`
			} `xml:"period"`
			Ns struct {
				HostObj []string `xml:"hostObj"`
			} `xml:"ns"`
			Registrant string `xml:"registrant"`
			Contact    []struct {
				Type  string `xml:"type,attr"`
				Value string `xml:",chardata"`
			} `xml:"contact"`
			AuthInfo struct {
				Pw string `xml:"pw"`
			} `xml:"authInfo"`
		}
		if err := xml.Unmarshal(wrap("create", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed domain create: " + err.Error()}
		}
		period := w.Period.Value
		if period == 0 {
			period = 1
		}
		var refs []DomainContactRef
		for _, c := range w.Contact {
			refs = append(refs, DomainContactRef{Role: c.Type, Handle: c.Value})
		}
		return &DomainCreate{
			Name:        strings.ToLower(w.Name),
			PeriodYears: period,
			Nameservers: lowerAll(w.Ns.HostObj),
			Registrant:  w.Registrant,
			Contacts:    refs,
			AuthInfo:    w.AuthInfo.Pw,
		}, nil

	case VerbUpdate:
		var w struct {
			Name string `xml:"name"`
			Add  struct {
				Ns struct {
					HostObj []string `xml:"hostObj"`
				} `xml:"ns"`
				Status []struct {
					S string `xml:"s,attr"`
				} `xml:"status"`
			} `xml:"add"`
			Rem struct {
				Ns struct {
					HostObj []string `xml:"hostObj"`
				} `xml:"ns"`
				Status []struct {
					S string `xml:"s,attr"`
				} `xml:"status"`
			} `xml:"rem"`
			Chg struct {
				Registrant string `xml:"registrant"`
				AuthInfo   struct {
					Pw string `xml:"pw"`
				} `xml:"authInfo"`
			} `xml:"chg"`
		}
		if err := xml.Unmarshal(wrap("update", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed domain update: " + err.Error()}
		}
		return &DomainUpdate{
			Name:           strings.ToLower(w.Name),
			AddNameservers: lowerAll(w.Add.Ns.HostObj),
			RemNameservers: lowerAll(w.Rem.Ns.HostObj),
			AddStatus:      statusValues(w.Add.Status),
			RemStatus:      statusValues(w.Rem.Status),
			ChgRegistrant:  w.Chg.Registrant,
			ChgAuthInfo:    w.Chg.AuthInfo.Pw,
		}, nil

	case VerbDelete:
		var w struct {
			Name string `xml:"name"`
		}
		if err := xml.Unmarshal(wrap("delete", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed domain delete: " + err.Error()}
		}
		return &DomainDelete{Name: strings.ToLower(w.Name)}, nil

	case VerbRenew:
		var w struct {
			Name   string `xml:"name"`
			CurExp string `xml:"curExpDate"`
			Period struct {
				Value int `xml:",chardata"`
			} `xml:"period"`
		}
		if err := xml.Unmarshal(wrap("renew", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed domain renew: " + err.Error()}
		}
		period := w.Period.Value
		if period == 0 {
			period = 1
		}
		return &DomainRenew{
			Name:           strings.ToLower(w.Name),
			CurrentExpDate: w.CurExp,
			PeriodYears:    period,
		}, nil

	case VerbTransfer:
		op := TransferOpQuery
		if opAttr, ok := attrValue(verbEl, "op"); ok && opAttr != "" {
			op = TransferOp(opAttr)
		}
		var w struct {
			Name     string `xml:"name"`
			AuthInfo struct {
				Pw string `xml:"pw"`
			} `xml:"authInfo"`
		}
		if err := xml.Unmarshal(wrap("transfer", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed domain transfer: " + err.Error()}
		}
		return &DomainTransfer{Op: op, Name: strings.ToLower(w.Name), AuthInfo: w.AuthInfo.Pw}, nil

	default:
		return nil, &SyntaxError{Detail: "unsupported domain verb " + string(verb)}
	}
}

func decodeContactPayload(verb Verb, objEl commandChild, _ commandChild) (any, error) {
	switch verb {
	case VerbCheck:
		var w struct {
			ID []string `xml:"id"`
		}
		if err := xml.Unmarshal(wrap("check", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed contact check: " + err.Error()}
		}
		return &ContactCheck{Handles: w.ID}, nil

	case VerbInfo:
		var w struct {
			ID string `xml:"id"`
		}
		if err := xml.Unmarshal(wrap("info", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed contact info: " + err.Error()}
		}
		return &ContactInfo{Handle: w.ID}, nil

	case VerbCreate:
		var w struct {
			ID     string            `xml:"id"`
			Postal wirePostalInfo    `xml:"postalInfo"`
			Voice  string            `xml:"voice"`
			Fax    string            `xml:"fax"`
			Email  string            `xml:"email"`
			Auth   struct {
				Pw string `xml:"pw"`
			} `xml:"authInfo"`
		}
		if err := xml.Unmarshal(wrap("create", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed contact create: " + err.Error()}
		}
		return &ContactCreate{
			Handle:   w.ID,
			Postal:   w.Postal.toSemantic(),
			Voice:    w.Voice,
			Fax:      w.Fax,
			Email:    w.Email,
			AuthInfo: w.Auth.Pw,
		}, nil

	case VerbUpdate:
		var w struct {
			ID  string `xml:"id"`
			Add struct {
				Status []struct {
					S string `xml:"s,attr"`
				} `xml:"status"`
			} `xml:"add"`
			Rem struct {
				Status []struct {
					S string `xml:"s,attr"`
				} `xml:"status"`
				Fax *struct{} `xml:"fax"`
			} `xml:"rem"`
			Chg struct {
				Postal *wirePostalInfo `xml:"postalInfo"`
				Voice  *string         `xml:"voice"`
				Fax    *string         `xml:"fax"`
				Email  *string         `xml:"email"`
			} `xml:"chg"`
		}
		if err := xml.Unmarshal(wrap("update", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed contact update: " + err.Error()}
		}
		u := &ContactUpdate{
			Handle:    w.ID,
			AddStatus: statusValues(w.Add.Status),
			RemStatus: statusValues(w.Rem.Status),
			RemFax:    w.Rem.Fax != nil,
			ChgVoice:  w.Chg.Voice,
			ChgFax:    w.Chg.Fax,
			ChgEmail:  w.Chg.Email,
		}
		if w.Chg.Postal != nil {
			u.ChgPostalSet = true
			u.ChgPostal = w.Chg.Postal.toSemantic()
		}
		return u, nil

	case VerbDelete:
		var w struct {
			ID string `xml:"id"`
		}
		if err := xml.Unmarshal(wrap("delete", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed contact delete: " + err.Error()}
		}
		return &ContactDelete{Handle: w.ID}, nil

	default:
		return nil, &SyntaxError{Detail: "unsupported contact verb " + string(verb)}
	}
}

type wirePostalInfo struct {
	Type string `xml:"type,attr"`
	Name string `xml:"name"`
	Org  string `xml:"org"`
	Addr struct {
		Street []string `xml:"street"`
		City   string   `xml:"city"`
		Sp     string   `xml:"sp"`
		Pc     string   `xml:"pc"`
		Cc     string   `xml:"cc"`
	} `xml:"addr"`
}

func (w wirePostalInfo) toSemantic() ContactPostalInfo {
	return ContactPostalInfo{
		Type:   w.Type,
		Name:   w.Name,
		Org:    w.Org,
		Street: w.Addr.Street,
		City:   w.Addr.City,
		Sp:     w.Addr.Sp,
		Pc:     w.Addr.Pc,
		Cc:     strings.ToUpper(w.Addr.Cc),
	}
}

func decodeHostPayload(verb Verb, objEl commandChild, _ commandChild) (any, error) {
	switch verb {
	case VerbCheck:
		var w struct {
			Name []string `xml:"name"`
		}
		if err := xml.Unmarshal(wrap("check", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed host check: " + err.Error()}
		}
		return &HostCheck{Names: lowerAll(w.Name)}, nil

	case VerbInfo:
		var w struct {
			Name string `xml:"name"`
		}
		if err := xml.Unmarshal(wrap("info", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed host info: " + err.Error()}
		}
		return &HostInfo{Name: strings.ToLower(w.Name)}, nil

	case VerbCreate:
		var w struct {
			Name string        `xml:"name"`
			Addr []wireHostAddr `xml:"addr"`
		}
		if err := xml.Unmarshal(wrap("create", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed host create: " + err.Error()}
		}
		return &HostCreate{Name: strings.ToLower(w.Name), Addrs: toSemanticAddrs(w.Addr)}, nil

	case VerbUpdate:
		var w struct {
			Name string `xml:"name"`
			Add  struct {
				Addr   []wireHostAddr `xml:"addr"`
				Status []struct {
					S string `xml:"s,attr"`
				} `xml:"status"`
			} `xml:"add"`
			Rem struct {
				Addr   []wireHostAddr `xml:"addr"`
				Status []struct {
					S string `xml:"s,attr"`
				} `xml:"status"`
			} `xml:"rem"`
		}
		if err := xml.Unmarshal(wrap("update", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed host update: " + err.Error()}
		}
		return &HostUpdate{
			Name:      strings.ToLower(w.Name),
			AddAddrs:  toSemanticAddrs(w.Add.Addr),
			RemAddrs:  toSemanticAddrs(w.Rem.Addr),
			AddStatus: statusValues(w.Add.Status),
			RemStatus: statusValues(w.Rem.Status),
		}, nil

	case VerbDelete:
		var w struct {
			Name string `xml:"name"`
		}
		if err := xml.Unmarshal(wrap("delete", objEl.InnerXML), &w); err != nil {
			return nil, &SyntaxError{Detail: "malformed host delete: " + err.Error()}
		}
		return &HostDelete{Name: strings.ToLower(w.Name)}, nil

	default:
		return nil, &SyntaxError{Detail: "unsupported host verb " + string(verb)}
	}
}

type wireHostAddr struct {
	Version string `xml:"ip,attr"`
	Value   string `xml:",chardata"`
}

func toSemanticAddrs(in []wireHostAddr) []HostAddr {
	out := make([]HostAddr, 0, len(in))
	for _, a := range in {
		version := a.Version
		if version == "" {
			version = "v4"
		}
		out = append(out, HostAddr{Version: version, Addr: a.Value})
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func statusValues(in []struct {
	S string `xml:"s,attr"`
}) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.S
	}
	return out
}

// firstChildElement extracts the first element node from a blob of inner
// XML, skipping any element whose local name is listed in skip, along with
// its own inner XML, by decoding it as a standalone document via
// xml.Decoder token scanning.
func firstChildElement(inner []byte, skip ...string) (commandChild, error) {
	dec := xml.NewDecoder(strings.NewReader(string(inner)))
	for {
		tok, err := dec.Token()
		if err != nil {
			return commandChild{}, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if containsName(skip, start.Name.Local) {
			if err := dec.Skip(); err != nil {
				return commandChild{}, err
			}
			continue
		}
		var c commandChild
		if err := dec.DecodeElement(&c, &start); err != nil {
			return commandChild{}, err
		}
		c.XMLName = start.Name
		return c, nil
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// attrValue looks up an unqualified attribute on an element's start tag.
func attrValue(el commandChild, name string) (string, bool) {
	for _, a := range el.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Package xmlcodec parses EPP XML documents into semantic command records
// and serializes response records back into EPP XML. Handlers operate only
// on the extracted Go values in a CommandRecord's Payload; they never
// re-parse XML themselves.
package xmlcodec

// Namespace URIs recognized by the codec.
const (
	NSEpp     = "urn:ietf:params:xml:ns:epp-1.0"
	NSDomain  = "urn:ietf:params:xml:ns:domain-1.0"
	NSContact = "urn:ietf:params:xml:ns:contact-1.0"
	NSHost    = "urn:ietf:params:xml:ns:host-1.0"
	NSRGP     = "urn:ietf:params:xml:ns:rgp-1.0"
	NSSecDNS  = "urn:ietf:params:xml:ns:secDNS-1.1"
)

// Kind identifies the top-level child of <epp> that was received.
type Kind string

const (
	KindHello      Kind = "hello"
	KindCommand    Kind = "command"
	KindExtension  Kind = "extension"
)

// ObjectKind identifies which registry object namespace a command payload
// belongs to.
type ObjectKind string

const (
	ObjectNone    ObjectKind = ""
	ObjectDomain  ObjectKind = "domain"
	ObjectContact ObjectKind = "contact"
	ObjectHost    ObjectKind = "host"
)

// Verb identifies the EPP command verb by local element name.
type Verb string

const (
	VerbLogin    Verb = "login"
	VerbLogout   Verb = "logout"
	VerbCheck    Verb = "check"
	VerbInfo     Verb = "info"
	VerbCreate   Verb = "create"
	VerbUpdate   Verb = "update"
	VerbDelete   Verb = "delete"
	VerbRenew    Verb = "renew"
	VerbTransfer Verb = "transfer"
	VerbPoll     Verb = "poll"
)

// CommandRecord is the semantic result of decoding one EPP frame. Payload
// holds a verb- and object-specific struct (e.g. *DomainCreate); it is nil
// for hello and logout, which carry no payload.
type CommandRecord struct {
	Kind               Kind
	ObjectKind         ObjectKind
	Verb               Verb
	ClientTransactionID string
	Payload            any
}

// Login is the semantic payload of a <login> command.
type Login struct {
	ClID     string
	Pw       string
	NewPW    string
}

// DomainCheck is the semantic payload of a domain <check> command.
type DomainCheck struct {
	Names []string
}

// DomainInfo is the semantic payload of a domain <info> command.
type DomainInfo struct {
	Name string
}

// DomainCreate is the semantic payload of a domain <create> command.
type DomainCreate struct {
	Name        string
	PeriodYears int
	Nameservers []string
	Registrant  string
	Contacts    []DomainContactRef
	AuthInfo    string
}

// DomainContactRef associates a role with a contact handle on a domain.
type DomainContactRef struct {
	Role   string
	Handle string
}

// DomainUpdate is the semantic payload of a domain <update> command.
type DomainUpdate struct {
	Name           string
	AddNameservers []string
	RemNameservers []string
	AddStatus      []string
	RemStatus      []string
	ChgRegistrant  string
	ChgAuthInfo    string
}

// DomainDelete is the semantic payload of a domain <delete> command.
type DomainDelete struct {
	Name string
}

// DomainRenew is the semantic payload of a domain <renew> command.
type DomainRenew struct {
	Name            string
	CurrentExpDate  string
	PeriodYears     int
}

// TransferOp enumerates the transfer sub-operation carried on the "op"
// attribute of a <transfer> command.
type TransferOp string

const (
	TransferOpQuery   TransferOp = "query"
	TransferOpRequest TransferOp = "request"
	TransferOpApprove TransferOp = "approve"
	TransferOpReject  TransferOp = "reject"
	TransferOpCancel  TransferOp = "cancel"
)

// DomainTransfer is the semantic payload of a domain <transfer> command.
type DomainTransfer struct {
	Op       TransferOp
	Name     string
	AuthInfo string
}

// ContactPostalInfo is the semantic payload of a contact postal block.
type ContactPostalInfo struct {
	Type   string
	Name   string
	Org    string
	Street []string
	City   string
	Sp     string
	Pc     string
	Cc     string
}

// ContactCheck is the semantic payload of a contact <check> command.
type ContactCheck struct {
	Handles []string
}

// ContactInfo is the semantic payload of a contact <info> command.
type ContactInfo struct {
	Handle string
}

// ContactCreate is the semantic payload of a contact <create> command.
type ContactCreate struct {
	Handle   string
	Postal   ContactPostalInfo
	Voice    string
	Fax      string
	Email    string
	AuthInfo string
}

// ContactUpdate is the semantic payload of a contact <update> command.
// ChgPostalSet reports whether a <chg><postalInfo> block was present at all.
// Inside ChgPostal an empty field and an omitted element look the same; the
// handler merges the block onto the stored postal info and treats empty
// fields as unchanged.
type ContactUpdate struct {
	Handle       string
	ChgPostalSet bool
	ChgPostal    ContactPostalInfo
	ChgVoice     *string
	ChgFax       *string
	ChgEmail     *string
	AddStatus    []string
	RemStatus    []string
	RemFax       bool
}

// ContactDelete is the semantic payload of a contact <delete> command.
type ContactDelete struct {
	Handle string
}

// HostAddr is a semantic IP address with its protocol version tag.
type HostAddr struct {
	Version string
	Addr    string
}

// HostCheck is the semantic payload of a host <check> command.
type HostCheck struct {
	Names []string
}

// HostInfo is the semantic payload of a host <info> command.
type HostInfo struct {
	Name string
}

// HostCreate is the semantic payload of a host <create> command.
type HostCreate struct {
	Name  string
	Addrs []HostAddr
}

// HostUpdate is the semantic payload of a host <update> command.
type HostUpdate struct {
	Name      string
	AddAddrs  []HostAddr
	RemAddrs  []HostAddr
	AddStatus []string
	RemStatus []string
}

// HostDelete is the semantic payload of a host <delete> command.
type HostDelete struct {
	Name string
}

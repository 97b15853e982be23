package rdap

import "time"

// notice is an RDAP notice/remark object (RFC 7483 section 4.3).
type notice struct {
	Title       string   `json:"title"`
	Description []string `json:"description"`
}

// errorResponse is the RDAP error object (RFC 7483 section 6).
type errorResponse struct {
	RDAPConformance []string `json:"rdapConformance"`
	ErrorCode       int      `json:"errorCode"`
	Title           string   `json:"title"`
	Description     []string `json:"description,omitempty"`
}

// rdapEvent is an RDAP event object (RFC 7483 section 4.5).
type rdapEvent struct {
	EventAction string    `json:"eventAction"`
	EventDate   time.Time `json:"eventDate"`
}

// nameserverObject is the RDAP representation of a host (RFC 7483 section 5.2).
type nameserverObject struct {
	RDAPConformance []string    `json:"rdapConformance,omitempty"`
	ObjectClassName string      `json:"objectClassName"`
	LDHName         string      `json:"ldhName"`
	Status          []string    `json:"status,omitempty"`
	IPAddresses     *ipAddrs    `json:"ipAddresses,omitempty"`
	Events          []rdapEvent `json:"events,omitempty"`
}

type ipAddrs struct {
	V4 []string `json:"v4,omitempty"`
	V6 []string `json:"v6,omitempty"`
}

// entityObject is the RDAP representation of a contact (RFC 7483 section 5.1),
// using jCard for the vCard array per RFC 7095.
type entityObject struct {
	RDAPConformance []string    `json:"rdapConformance,omitempty"`
	ObjectClassName string      `json:"objectClassName"`
	Handle          string      `json:"handle"`
	VCardArray      []any       `json:"vcardArray,omitempty"`
	Status          []string    `json:"status,omitempty"`
	Events          []rdapEvent `json:"events,omitempty"`
}

// entityRole is a domain<->entity membership with its role (admin/tech/
// billing/registrant), embedded in domainObject.Entities.
type entityRole struct {
	ObjectClassName string   `json:"objectClassName"`
	Handle          string   `json:"handle"`
	Roles           []string `json:"roles"`
}

// nameserverRef is the abbreviated nameserver form embedded in a domain
// response (name only, no address detail).
type nameserverRef struct {
	ObjectClassName string `json:"objectClassName"`
	LDHName         string `json:"ldhName"`
}

// domainObject is the RDAP representation of a domain (RFC 7483 section 5.3).
type domainObject struct {
	RDAPConformance []string        `json:"rdapConformance,omitempty"`
	ObjectClassName string          `json:"objectClassName"`
	LDHName         string          `json:"ldhName"`
	Status          []string        `json:"status,omitempty"`
	Entities        []entityRole    `json:"entities,omitempty"`
	Nameservers     []nameserverRef `json:"nameservers,omitempty"`
	Events          []rdapEvent     `json:"events,omitempty"`
}

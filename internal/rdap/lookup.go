package rdap

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

func (s *Server) lookupDomain(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var d *store.Domain
	err := s.withTxn(r.Context(), func(tx store.Txn) error {
		found, err := tx.GetDomain(r.Context(), name)
		d = found
		return err
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDomainObject(d))
}

func (s *Server) lookupEntity(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	var c *store.Contact
	err := s.withTxn(r.Context(), func(tx store.Txn) error {
		found, err := tx.GetContact(r.Context(), handle)
		c = found
		return err
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntityObject(c))
}

func (s *Server) lookupNameserver(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var h *store.Host
	err := s.withTxn(r.Context(), func(tx store.Txn) error {
		found, err := tx.GetHost(r.Context(), name)
		h = found
		return err
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNameserverObject(h))
}

func writeStoreError(w http.ResponseWriter, err error) {
	var se *store.Error
	if errors.As(err, &se) && se.Code == store.ErrNotFound {
		writeRDAPError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeRDAPError(w, http.StatusInternalServerError, "Internal Server Error")
}

func toDomainObject(d *store.Domain) domainObject {
	entities := make([]entityRole, 0, len(d.Contacts)+1)
	if d.Registrant != "" {
		entities = append(entities, entityRole{
			ObjectClassName: "entity",
			Handle:          d.Registrant,
			Roles:           []string{"registrant"},
		})
	}
	for _, c := range d.Contacts {
		entities = append(entities, entityRole{
			ObjectClassName: "entity",
			Handle:          c.Handle,
			Roles:           []string{string(c.Role)},
		})
	}

	nameservers := make([]nameserverRef, 0, len(d.Nameservers))
	for _, ns := range d.Nameservers {
		nameservers = append(nameservers, nameserverRef{ObjectClassName: "nameserver", LDHName: ns})
	}

	return domainObject{
		RDAPConformance: rdapConformance,
		ObjectClassName: "domain",
		LDHName:         d.Name,
		Status:          d.Status,
		Entities:        entities,
		Nameservers:     nameservers,
		Events: []rdapEvent{
			{EventAction: "registration", EventDate: d.CrDate},
			{EventAction: "last changed", EventDate: d.UpDate},
			{EventAction: "expiration", EventDate: d.ExDate},
		},
	}
}

func toEntityObject(c *store.Contact) entityObject {
	return entityObject{
		RDAPConformance: rdapConformance,
		ObjectClassName: "entity",
		Handle:          c.Handle,
		Status:          c.Status,
		VCardArray:      contactToVCard(c),
		Events: []rdapEvent{
			{EventAction: "registration", EventDate: c.CrDate},
			{EventAction: "last changed", EventDate: c.UpDate},
		},
	}
}

// contactToVCard renders a contact's postal, voice and email fields as a
// jCard array (RFC 7095): ["vcard", [ [property, params, type, value], ... ]].
func contactToVCard(c *store.Contact) []any {
	props := [][]any{
		{"version", map[string]any{}, "text", "4.0"},
		{"fn", map[string]any{}, "text", c.Postal.Name},
	}
	if c.Postal.Org != "" {
		props = append(props, []any{"org", map[string]any{}, "text", c.Postal.Org})
	}
	props = append(props, []any{"adr", map[string]any{}, "text", []string{
		"", "", joinStreet(c.Postal.Street), c.Postal.City, c.Postal.Sp, c.Postal.Pc, c.Postal.Cc,
	}})
	if c.Voice != "" {
		props = append(props, []any{"tel", map[string]any{"type": "voice"}, "uri", "tel:" + c.Voice})
	}
	if c.Fax != "" {
		props = append(props, []any{"tel", map[string]any{"type": "fax"}, "uri", "tel:" + c.Fax})
	}
	if c.Email != "" {
		props = append(props, []any{"email", map[string]any{}, "text", c.Email})
	}

	array := make([]any, len(props))
	for i, p := range props {
		array[i] = p
	}
	return []any{"vcard", array}
}

func joinStreet(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += ", "
		}
		out += l
	}
	return out
}

func toNameserverObject(h *store.Host) nameserverObject {
	addrs := &ipAddrs{}
	for _, a := range h.Addrs {
		if a.Version == store.IPv4 {
			addrs.V4 = append(addrs.V4, a.Addr)
		} else {
			addrs.V6 = append(addrs.V6, a.Addr)
		}
	}
	if len(addrs.V4) == 0 && len(addrs.V6) == 0 {
		addrs = nil
	}

	return nameserverObject{
		RDAPConformance: rdapConformance,
		ObjectClassName: "nameserver",
		LDHName:         h.Name,
		Status:          h.Status,
		IPAddresses:     addrs,
		Events: []rdapEvent{
			{EventAction: "registration", EventDate: h.CrDate},
			{EventAction: "last changed", EventDate: h.UpDate},
		},
	}
}

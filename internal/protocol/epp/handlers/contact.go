package handlers

import (
	"context"

	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/xmlcodec"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// ContactCheck implements contact <check>.
func ContactCheck(ctx context.Context, txn store.Txn, cmd *xmlcodec.ContactCheck) (Result, error) {
	data := make([]contactChkItem, 0, len(cmd.Handles))
	for _, handle := range cmd.Handles {
		item := contactChkItem{}
		item.ID.Value = handle
		_, err := txn.GetContact(ctx, handle)
		switch {
		case err == nil:
			item.ID.Avail = "0"
			item.Reason = "In use"
		default:
			se, ok := err.(*store.Error)
			if !ok || se.Code != store.ErrNotFound {
				return Result{}, err
			}
			item.ID.Avail = "1"
		}
		data = append(data, item)
	}
	return Result{Code: ok1000, Message: msg1000, ResData: contactChkData{CD: data}}, nil
}

// ContactInfo implements contact <info>.
func ContactInfo(ctx context.Context, txn store.Txn, cmd *xmlcodec.ContactInfo) (Result, error) {
	c, err := txn.GetContact(ctx, cmd.Handle)
	if err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}

	resData := contactInfData{
		ID:     c.Handle,
		ROID:   contactROID(c.Handle),
		Voice:  c.Voice,
		Fax:    c.Fax,
		Email:  c.Email,
		ClID:   c.ClID,
		CrDate: fmtTime(c.CrDate),
		UpDate: fmtTime(c.UpDate),
	}
	for _, s := range c.Status {
		resData.Status = append(resData.Status, statusXML{S: s})
	}
	resData.PostalInfo = toWirePostal(c.Postal)
	return Result{Code: ok1000, Message: msg1000, ResData: resData}, nil
}

// requiredPostalFieldsPresent reports whether the mandatory postal fields
// (name, first street line, city, postal code, country code) are present.
func requiredPostalFieldsPresent(p xmlcodec.ContactPostalInfo) bool {
	return p.Name != "" && len(p.Street) > 0 && p.Street[0] != "" && p.City != "" && p.Pc != "" && p.Cc != ""
}

// ContactCreate implements contact <create>.
func ContactCreate(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.ContactCreate) (Result, error) {
	if cmd.Handle == "" || cmd.Voice == "" || cmd.Email == "" || !requiredPostalFieldsPresent(cmd.Postal) {
		return fail(2003), nil
	}

	now := hc.now()
	c := &store.Contact{
		Handle: cmd.Handle,
		ClID:   hc.ClID,
		Postal: toStorePostal(cmd.Postal),
		Voice:  cmd.Voice,
		Fax:    cmd.Fax,
		Email:  cmd.Email,
		CrDate: now,
		Status: []string{"ok"},
	}

	if _, err := txn.GetContact(ctx, cmd.Handle); err == nil {
		return fail(2302), nil
	} else if se, ok := err.(*store.Error); !ok || se.Code != store.ErrNotFound {
		return Result{}, err
	}

	if err := txn.PutContact(ctx, c); err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}

	return Result{Code: ok1000, Message: msg1000, ResData: contactCreData{
		ID:     c.Handle,
		CrDate: fmtTime(c.CrDate),
	}}, nil
}

// ContactUpdate implements contact <update>. A <chg><postalInfo> block is
// merged field by field onto the stored postal info (mergePostal): a
// non-empty field replaces the stored one, an empty or omitted field keeps
// it. The update is rejected with 2005 if the merged result lacks a
// mandatory field. Because an empty field reads as "unchanged", only an
// empty street line can clear a mandatory field here; an empty name, city,
// pc or cc leaves the stored value in place.
func ContactUpdate(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.ContactUpdate) (Result, error) {
	c, err := txn.GetContact(ctx, cmd.Handle)
	if err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}

	if cmd.ChgPostalSet {
		merged := mergePostal(c.Postal, cmd.ChgPostal)
		if merged.Name == "" || len(merged.Street) == 0 || merged.Street[0] == "" || merged.City == "" || merged.Pc == "" || merged.Cc == "" {
			return fail(2005), nil
		}
		c.Postal = merged
	}
	if cmd.ChgVoice != nil {
		if *cmd.ChgVoice == "" {
			return fail(2005), nil
		}
		c.Voice = *cmd.ChgVoice
	}
	if cmd.ChgEmail != nil {
		if *cmd.ChgEmail == "" {
			return fail(2005), nil
		}
		c.Email = *cmd.ChgEmail
	}
	if cmd.ChgFax != nil {
		c.Fax = *cmd.ChgFax
	}
	if cmd.RemFax {
		c.Fax = ""
	}
	c.Status = addStatus(c.Status, cmd.AddStatus)
	c.Status = removeStatus(c.Status, cmd.RemStatus)
	c.UpDate = hc.now()

	if err := txn.PutContact(ctx, c); err != nil {
		return Result{}, err
	}
	return Result{Code: ok1000, Message: msg1000}, nil
}

// ContactDelete implements contact <delete>, requiring the handle be
// referenced by zero domains across all role columns (including
// registrant).
func ContactDelete(ctx context.Context, txn store.Txn, cmd *xmlcodec.ContactDelete) (Result, error) {
	count, err := txn.CountDomainsReferencingContact(ctx, cmd.Handle)
	if err != nil {
		return Result{}, err
	}
	if count > 0 {
		return failf(2305, "Object association prohibits operation (%d domain%s)", count, plural(count)), nil
	}

	if err := txn.DeleteContact(ctx, cmd.Handle); err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}
	return Result{Code: ok1000, Message: msg1000}, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func toStorePostal(p xmlcodec.ContactPostalInfo) store.PostalInfo {
	return store.PostalInfo{
		Type:   p.Type,
		Name:   p.Name,
		Org:    p.Org,
		Street: p.Street,
		City:   p.City,
		Sp:     p.Sp,
		Pc:     p.Pc,
		Cc:     p.Cc,
	}
}

func mergePostal(existing store.PostalInfo, chg xmlcodec.ContactPostalInfo) store.PostalInfo {
	out := existing
	if chg.Name != "" {
		out.Name = chg.Name
	}
	if chg.Org != "" {
		out.Org = chg.Org
	}
	if len(chg.Street) > 0 {
		out.Street = chg.Street
	}
	if chg.City != "" {
		out.City = chg.City
	}
	if chg.Sp != "" {
		out.Sp = chg.Sp
	}
	if chg.Pc != "" {
		out.Pc = chg.Pc
	}
	if chg.Cc != "" {
		out.Cc = chg.Cc
	}
	return out
}

func toWirePostal(p store.PostalInfo) contactPostalXML {
	var w contactPostalXML
	w.Type = p.Type
	w.Name = p.Name
	w.Org = p.Org
	w.Addr.Street = p.Street
	w.Addr.City = p.City
	w.Addr.Sp = p.Sp
	w.Addr.Pc = p.Pc
	w.Addr.Cc = p.Cc
	return w
}

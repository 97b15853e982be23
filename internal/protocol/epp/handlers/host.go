package handlers

import (
	"context"
	"net"
	"regexp"
	"strings"

	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/xmlcodec"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// hostnameRE matches an RFC 952/1123 hostname: labels of 1-63 letters,
// digits or hyphens, no leading/trailing hyphen in a label, at least two
// labels.
var hostnameRE = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

func validHostname(name string) bool {
	if len(name) == 0 || len(name) > 253 {
		return false
	}
	return hostnameRE.MatchString(name) && strings.Contains(name, ".")
}

func validIP(addr xmlcodec.HostAddr) bool {
	ip := net.ParseIP(addr.Addr)
	if ip == nil {
		return false
	}
	switch addr.Version {
	case "v4":
		return ip.To4() != nil
	case "v6":
		return ip.To4() == nil
	default:
		return false
	}
}

// HostCheck implements host <check>.
func HostCheck(ctx context.Context, txn store.Txn, cmd *xmlcodec.HostCheck) (Result, error) {
	data := make([]hostChkItem, 0, len(cmd.Names))
	for _, name := range cmd.Names {
		item := hostChkItem{}
		item.Name.Value = name

		if !validHostname(name) {
			item.Name.Avail = "0"
			item.Reason = "Invalid hostname format"
			data = append(data, item)
			continue
		}

		_, err := txn.GetHost(ctx, name)
		switch {
		case err == nil:
			item.Name.Avail = "0"
			item.Reason = "In use"
		default:
			se, ok := err.(*store.Error)
			if !ok || se.Code != store.ErrNotFound {
				return Result{}, err
			}
			item.Name.Avail = "1"
		}
		data = append(data, item)
	}
	return Result{Code: ok1000, Message: msg1000, ResData: hostChkData{CD: data}}, nil
}

// HostInfo implements host <info>.
func HostInfo(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.HostInfo) (Result, error) {
	h, err := txn.GetHost(ctx, cmd.Name)
	if err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}

	resData := hostInfData{
		Name:   h.Name,
		ROID:   hostROID(h.Name, hc.ServerID),
		ClID:   h.ClID,
		CrDate: fmtTime(h.CrDate),
		UpDate: fmtTime(h.UpDate),
	}
	for _, s := range h.Status {
		resData.Status = append(resData.Status, statusXML{S: s})
	}
	for _, a := range h.Addrs {
		resData.Addr = append(resData.Addr, hostAddrXML{IP: string(a.Version), Value: a.Addr})
	}
	return Result{Code: ok1000, Message: msg1000, ResData: resData}, nil
}

// HostCreate implements host <create>.
func HostCreate(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.HostCreate) (Result, error) {
	if !validHostname(cmd.Name) {
		return fail(2005), nil
	}
	for _, a := range cmd.Addrs {
		if !validIP(a) {
			return fail(2005), nil
		}
	}

	if _, err := txn.GetHost(ctx, cmd.Name); err == nil {
		return fail(2302), nil
	} else if se, ok := err.(*store.Error); !ok || se.Code != store.ErrNotFound {
		return Result{}, err
	}

	now := hc.now()
	h := &store.Host{
		Name:   cmd.Name,
		ClID:   hc.ClID,
		CrDate: now,
		Status: []string{"ok"},
		Addrs:  toStoreAddrs(cmd.Addrs),
	}
	if err := txn.PutHost(ctx, h); err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}

	return Result{Code: ok1000, Message: msg1000, ResData: hostCreData{
		Name:   h.Name,
		CrDate: fmtTime(h.CrDate),
	}}, nil
}

// HostUpdate implements host <update>: add/rem manipulate the IP set
// (duplicates in add coalesce, missing in rem is a no-op) and the status
// set.
func HostUpdate(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.HostUpdate) (Result, error) {
	h, err := txn.GetHost(ctx, cmd.Name)
	if err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}

	for _, a := range cmd.AddAddrs {
		if !validIP(a) {
			return fail(2005), nil
		}
	}

	h.Addrs = applyAddrChanges(h.Addrs, cmd.AddAddrs, cmd.RemAddrs)
	h.Status = addStatus(h.Status, cmd.AddStatus)
	h.Status = removeStatus(h.Status, cmd.RemStatus)
	h.UpDate = hc.now()

	if err := txn.PutHost(ctx, h); err != nil {
		return Result{}, err
	}
	return Result{Code: ok1000, Message: msg1000}, nil
}

// HostDelete implements host <delete>.
func HostDelete(ctx context.Context, txn store.Txn, cmd *xmlcodec.HostDelete) (Result, error) {
	count, err := txn.CountDomainsReferencingHost(ctx, cmd.Name)
	if err != nil {
		return Result{}, err
	}
	if count > 0 {
		return failf(2305, "Object association prohibits operation (%d domain%s)", count, plural(count)), nil
	}

	if err := txn.DeleteHost(ctx, cmd.Name); err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}
	return Result{Code: ok1000, Message: msg1000}, nil
}

func toStoreAddrs(in []xmlcodec.HostAddr) []store.IPAddress {
	out := make([]store.IPAddress, 0, len(in))
	for _, a := range in {
		out = append(out, store.IPAddress{Version: store.IPVersion(a.Version), Addr: a.Addr})
	}
	return out
}

func applyAddrChanges(existing []store.IPAddress, add, rem []xmlcodec.HostAddr) []store.IPAddress {
	present := func(list []store.IPAddress, a xmlcodec.HostAddr) bool {
		for _, e := range list {
			if e.Addr == a.Addr && string(e.Version) == a.Version {
				return true
			}
		}
		return false
	}

	out := append([]store.IPAddress(nil), existing...)
	for _, a := range add {
		if !present(out, a) {
			out = append(out, store.IPAddress{Version: store.IPVersion(a.Version), Addr: a.Addr})
		}
	}
	if len(rem) == 0 {
		return out
	}
	kept := out[:0]
	for _, e := range out {
		remove := false
		for _, r := range rem {
			if e.Addr == r.Addr && string(e.Version) == r.Version {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, e)
		}
	}
	return kept
}

package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/resultcode"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/xmlcodec"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

var (
	ok1000  = int(resultcode.Success)
	msg1000 = resultcode.DefaultMessage(resultcode.Success)
	ok1001  = int(resultcode.SuccessPending)
	msg1001 = resultcode.DefaultMessage(resultcode.SuccessPending)
)

// DomainCheck implements domain <check>: availability is simply non-existence.
func DomainCheck(ctx context.Context, txn store.Txn, cmd *xmlcodec.DomainCheck) (Result, error) {
	data := make([]domainChkItem, 0, len(cmd.Names))
	for _, name := range cmd.Names {
		item := domainChkItem{}
		item.Name.Value = name
		_, err := txn.GetDomain(ctx, name)
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
	return Result{Code: ok1000, Message: msg1000, ResData: domainChkData{CD: data}}, nil
}

// DomainInfo implements domain <info>.
func DomainInfo(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.DomainInfo) (Result, error) {
	d, err := txn.GetDomain(ctx, cmd.Name)
	if err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}

	resData := domainInfData{
		Name:       d.Name,
		ROID:       domainROID(d.Name, hc.ServerID),
		Registrant: d.Registrant,
		ClID:       d.ClID,
		CrDate:     fmtTime(d.CrDate),
		ExDate:     fmtTime(d.ExDate),
		UpDate:     fmtTime(d.UpDate),
	}
	for _, s := range d.Status {
		resData.Status = append(resData.Status, statusXML{S: s})
	}
	for _, c := range d.Contacts {
		resData.Contact = append(resData.Contact, domainContactXML{Type: string(c.Role), Value: c.Handle})
	}
	if len(d.Nameservers) > 0 {
		resData.Ns = &nsXML{HostObj: d.Nameservers}
	}
	if hc.ClID == d.ClID {
		resData.AuthInfo = &authInfoXML{Pw: d.AuthInfo}
	}
	return Result{Code: ok1000, Message: msg1000, ResData: resData}, nil
}

// DomainCreate implements domain <create>. Hosts referenced by name that do
// not yet exist are created bare (name only, no attributes) as "thin" hosts
// at domain-create time. AuthInfo is server-generated when the client
// omits it.
func DomainCreate(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.DomainCreate) (Result, error) {
	if cmd.Name == "" || cmd.Registrant == "" {
		return fail(2003), nil
	}

	if _, err := txn.GetDomain(ctx, cmd.Name); err == nil {
		return fail(2302), nil
	} else if se, ok := err.(*store.Error); !ok || se.Code != store.ErrNotFound {
		return Result{}, err
	}

	authInfo := cmd.AuthInfo
	if authInfo == "" {
		authInfo = generateAuthInfo()
	}

	now := hc.now()
	exDate := now.AddDate(0, 0, periodDays(cmd.PeriodYears))

	contacts := make([]store.DomainContact, 0, len(cmd.Contacts))
	for _, c := range cmd.Contacts {
		contacts = append(contacts, store.DomainContact{Role: store.ContactRole(c.Role), Handle: c.Handle})
	}

	d := &store.Domain{
		Name:        cmd.Name,
		ClID:        hc.ClID,
		CrDate:      now,
		ExDate:      exDate,
		Status:      []string{"ok"},
		AuthInfo:    authInfo,
		Registrant:  cmd.Registrant,
		Contacts:    contacts,
		Nameservers: cmd.Nameservers,
	}

	for _, ns := range cmd.Nameservers {
		if _, err := txn.GetHost(ctx, ns); err != nil {
			se, ok := err.(*store.Error)
			if !ok || se.Code != store.ErrNotFound {
				return Result{}, err
			}
			if err := txn.PutHost(ctx, &store.Host{Name: ns, ClID: hc.ClID, CrDate: now, Status: []string{"ok"}}); err != nil {
				return Result{}, err
			}
		}
	}

	if err := txn.PutDomain(ctx, d); err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}
	for _, ns := range cmd.Nameservers {
		if err := txn.AddDomainNS(ctx, d.Name, ns); err != nil {
			return Result{}, err
		}
	}

	return Result{Code: ok1000, Message: msg1000, ResData: domainCreData{
		Name:   d.Name,
		CrDate: fmtTime(d.CrDate),
		ExDate: fmtTime(d.ExDate),
	}}, nil
}

// DomainUpdate implements domain <update>.
func DomainUpdate(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.DomainUpdate) (Result, error) {
	d, err := txn.GetDomain(ctx, cmd.Name)
	if err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}
	if d.ClID != hc.ClID {
		return fail(2201), nil
	}
	if d.HasStatus("clientUpdateProhibited") {
		return fail(2304), nil
	}

	for _, ns := range cmd.AddNameservers {
		if _, err := txn.GetHost(ctx, ns); err != nil {
			se, ok := err.(*store.Error)
			if !ok || se.Code != store.ErrNotFound {
				return Result{}, err
			}
			return fail(2303), nil
		}
	}

	d.Status = addStatus(d.Status, cmd.AddStatus)
	d.Status = removeStatus(d.Status, cmd.RemStatus)
	if cmd.ChgRegistrant != "" {
		d.Registrant = cmd.ChgRegistrant
	}
	if cmd.ChgAuthInfo != "" {
		d.AuthInfo = cmd.ChgAuthInfo
	}
	d.UpDate = hc.now()

	existing := make(map[string]bool, len(d.Nameservers))
	for _, n := range d.Nameservers {
		existing[n] = true
	}
	for _, ns := range cmd.AddNameservers {
		if !existing[ns] {
			d.Nameservers = append(d.Nameservers, ns)
			existing[ns] = true
		}
	}
	remSet := make(map[string]bool, len(cmd.RemNameservers))
	for _, ns := range cmd.RemNameservers {
		remSet[ns] = true
	}
	if len(remSet) > 0 {
		kept := d.Nameservers[:0]
		for _, n := range d.Nameservers {
			if !remSet[n] {
				kept = append(kept, n)
			}
		}
		d.Nameservers = kept
	}

	if err := txn.PutDomain(ctx, d); err != nil {
		return Result{}, err
	}
	for _, ns := range cmd.AddNameservers {
		if err := txn.AddDomainNS(ctx, d.Name, ns); err != nil {
			return Result{}, err
		}
	}
	for _, ns := range cmd.RemNameservers {
		if err := txn.RemoveDomainNS(ctx, d.Name, ns); err != nil {
			return Result{}, err
		}
	}

	return Result{Code: ok1000, Message: msg1000}, nil
}

// DomainDelete implements domain <delete>. Contacts and hosts referenced by
// the domain are not cascade-deleted; only the domain and its own
// associations are removed.
func DomainDelete(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.DomainDelete) (Result, error) {
	d, err := txn.GetDomain(ctx, cmd.Name)
	if err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}
	if d.ClID != hc.ClID {
		return fail(2201), nil
	}
	if d.HasStatus("clientDeleteProhibited") {
		return fail(2304), nil
	}

	for _, ns := range d.Nameservers {
		if err := txn.RemoveDomainNS(ctx, d.Name, ns); err != nil {
			return Result{}, err
		}
	}
	if err := txn.DeleteDomain(ctx, d.Name); err != nil {
		return Result{}, err
	}
	return Result{Code: ok1000, Message: msg1000}, nil
}

// DomainRenew implements domain <renew>, using the client's supplied current
// expiration date as an optimistic-concurrency check: it must match the
// stored expiration to the day.
func DomainRenew(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.DomainRenew) (Result, error) {
	d, err := txn.GetDomain(ctx, cmd.Name)
	if err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}
	if d.ClID != hc.ClID {
		return fail(2201), nil
	}
	if fmtDate(d.ExDate) != cmd.CurrentExpDate {
		return fail(2306), nil
	}

	d.ExDate = d.ExDate.AddDate(0, 0, periodDays(cmd.PeriodYears))
	d.UpDate = hc.now()
	if err := txn.PutDomain(ctx, d); err != nil {
		return Result{}, err
	}
	return Result{Code: ok1000, Message: msg1000, ResData: domainRenData{
		Name:   d.Name,
		ExDate: fmtTime(d.ExDate),
	}}, nil
}

// AutoApproveDays is the number of days a pending transfer request may sit
// unactioned before it automatically elapses to serverApproved. Exported so
// the transfer sweeper uses this value; the configuration layer's
// transfer.auto_approve_days default is a separate literal.
const AutoApproveDays = 5

// DomainTransfer implements domain <transfer> for all five op values.
func DomainTransfer(ctx context.Context, txn store.Txn, hc Context, cmd *xmlcodec.DomainTransfer) (Result, error) {
	switch cmd.Op {
	case xmlcodec.TransferOpQuery, "":
		tr, err := txn.GetLatestTransfer(ctx, cmd.Name)
		if err != nil {
			if r, ok := storeErrorResult(err, 2303, 2302); ok {
				return r, nil
			}
			return Result{}, err
		}
		return Result{Code: ok1000, Message: msg1000, ResData: transferTrnData(tr)}, nil

	case xmlcodec.TransferOpRequest:
		d, err := txn.GetDomain(ctx, cmd.Name)
		if err != nil {
			if r, ok := storeErrorResult(err, 2303, 2302); ok {
				return r, nil
			}
			return Result{}, err
		}
		if d.ClID == hc.ClID {
			return failf(2201, "requesting client is already the sponsor"), nil
		}
		if cmd.AuthInfo == "" || cmd.AuthInfo != d.AuthInfo {
			return fail(2202), nil
		}
		tr := &store.Transfer{
			Domain:   d.Name,
			ReOID:    d.ClID,
			AcID:     hc.ClID,
			Status:   store.TransferPending,
			ReDate:   hc.now(),
			AuthInfo: cmd.AuthInfo,
		}
		if err := txn.PutTransfer(ctx, tr); err != nil {
			return Result{}, err
		}
		return Result{Code: ok1001, Message: msg1001, ResData: transferTrnData(tr)}, nil

	case xmlcodec.TransferOpApprove:
		return resolveTransfer(ctx, txn, hc, cmd.Name, store.TransferClientApproved, true, losingSponsor)
	case xmlcodec.TransferOpReject:
		return resolveTransfer(ctx, txn, hc, cmd.Name, store.TransferClientRejected, false, losingSponsor)
	case xmlcodec.TransferOpCancel:
		return resolveTransfer(ctx, txn, hc, cmd.Name, store.TransferClientCancelled, false, gainingSponsor)
	default:
		return fail(2004), nil
	}
}

// actor selects which side of a pending transfer must be the requesting
// client: the losing sponsor approves or rejects, the gaining sponsor
// cancels its own request.
type actor int

const (
	losingSponsor actor = iota
	gainingSponsor
)

// resolveTransfer handles approve/reject/cancel, which share the shape
// "load the pending record, check it's actionable by this client, apply or
// discard". approve reassigns sponsorship and extends the expiration by a
// year; reject/cancel merely close out the record.
func resolveTransfer(ctx context.Context, txn store.Txn, hc Context, name string, newStatus store.TransferStatus, mutateDomain bool, who actor) (Result, error) {
	tr, err := txn.GetLatestTransfer(ctx, name)
	if err != nil {
		if r, ok := storeErrorResult(err, 2303, 2302); ok {
			return r, nil
		}
		return Result{}, err
	}
	if tr.Status != store.TransferPending {
		return fail(2304), nil
	}
	expected := tr.ReOID
	if who == gainingSponsor {
		expected = tr.AcID
	}
	if expected != hc.ClID {
		return fail(2201), nil
	}

	tr.Status = newStatus
	tr.AcDate = hc.now()

	if mutateDomain {
		d, err := txn.GetDomain(ctx, name)
		if err != nil {
			return Result{}, err
		}
		d.ClID = tr.AcID
		d.ExDate = d.ExDate.AddDate(1, 0, 0)
		d.UpDate = tr.AcDate
		if err := txn.PutDomain(ctx, d); err != nil {
			return Result{}, err
		}
	}
	if err := txn.PutTransfer(ctx, tr); err != nil {
		return Result{}, err
	}
	return Result{Code: ok1000, Message: msg1000, ResData: transferTrnData(tr)}, nil
}

func transferTrnData(tr *store.Transfer) domainTrnData {
	return domainTrnData{
		Name:     tr.Domain,
		TrStatus: string(tr.Status),
		ReID:     tr.ReOID,
		ReDate:   fmtTime(tr.ReDate),
		AcID:     tr.AcID,
		AcDate:   fmtTime(tr.AcDate),
	}
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func generateAuthInfo() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return "auth-" + hex.EncodeToString(buf[:])
}

// Package epp ties together the frame codec, XML codec, session state
// machine and object handlers into a single per-command dispatch point.
// Routing is table-driven, keyed by (verb, object kind), following the same
// shape as a protocol procedure dispatch table: a static map populated once
// at init time rather than a growing switch statement.
package epp

import (
	"context"
	"fmt"

	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/handlers"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/resultcode"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/session"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/xmlcodec"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// objectHandler is the uniform signature every object-command handler is
// adapted to for table dispatch. Not every underlying handler needs the
// Context argument (the *Check functions don't), but giving them all the
// same shape keeps the table a single flat map instead of one map per verb.
type objectHandler func(ctx context.Context, txn store.Txn, hc handlers.Context, payload any) (handlers.Result, error)

type routeKey struct {
	verb   xmlcodec.Verb
	object xmlcodec.ObjectKind
}

var routes map[routeKey]objectHandler

func init() {
	routes = map[routeKey]objectHandler{
		{xmlcodec.VerbCheck, xmlcodec.ObjectDomain}:    withoutCtx(handlers.DomainCheck),
		{xmlcodec.VerbInfo, xmlcodec.ObjectDomain}:     withCtx(handlers.DomainInfo),
		{xmlcodec.VerbCreate, xmlcodec.ObjectDomain}:   withCtx(handlers.DomainCreate),
		{xmlcodec.VerbUpdate, xmlcodec.ObjectDomain}:   withCtx(handlers.DomainUpdate),
		{xmlcodec.VerbDelete, xmlcodec.ObjectDomain}:   withCtx(handlers.DomainDelete),
		{xmlcodec.VerbRenew, xmlcodec.ObjectDomain}:    withCtx(handlers.DomainRenew),
		{xmlcodec.VerbTransfer, xmlcodec.ObjectDomain}: withCtx(handlers.DomainTransfer),

		{xmlcodec.VerbCheck, xmlcodec.ObjectContact}:  withoutCtx(handlers.ContactCheck),
		{xmlcodec.VerbInfo, xmlcodec.ObjectContact}:   withoutCtx(handlers.ContactInfo),
		{xmlcodec.VerbCreate, xmlcodec.ObjectContact}: withCtx(handlers.ContactCreate),
		{xmlcodec.VerbUpdate, xmlcodec.ObjectContact}: withCtx(handlers.ContactUpdate),
		{xmlcodec.VerbDelete, xmlcodec.ObjectContact}: withoutCtx(handlers.ContactDelete),

		{xmlcodec.VerbCheck, xmlcodec.ObjectHost}:  withoutCtx(handlers.HostCheck),
		{xmlcodec.VerbInfo, xmlcodec.ObjectHost}:   withCtx(handlers.HostInfo),
		{xmlcodec.VerbCreate, xmlcodec.ObjectHost}: withCtx(handlers.HostCreate),
		{xmlcodec.VerbUpdate, xmlcodec.ObjectHost}: withCtx(handlers.HostUpdate),
		{xmlcodec.VerbDelete, xmlcodec.ObjectHost}: withoutCtx(handlers.HostDelete),
	}
}

// withoutCtx lifts a handler that does not need the request Context
// argument into the uniform objectHandler shape used by the route table.
func withoutCtx[T any](fn func(context.Context, store.Txn, *T) (handlers.Result, error)) objectHandler {
	return func(ctx context.Context, txn store.Txn, _ handlers.Context, payload any) (handlers.Result, error) {
		return fn(ctx, txn, payload.(*T))
	}
}

// withCtx lifts a handler that needs the request Context argument into the
// uniform objectHandler shape used by the route table.
func withCtx[T any](fn func(context.Context, store.Txn, handlers.Context, *T) (handlers.Result, error)) objectHandler {
	return func(ctx context.Context, txn store.Txn, hc handlers.Context, payload any) (handlers.Result, error) {
		return fn(ctx, txn, hc, payload.(*T))
	}
}

// Dispatcher routes decoded EPP commands to session management or the
// object handler table, running every object command inside one store
// transaction.
type Dispatcher struct {
	Store    store.Store
	ServerID string
}

// NewDispatcher constructs a Dispatcher bound to a store and server
// identifier used for ROID construction.
func NewDispatcher(st store.Store, serverID string) *Dispatcher {
	return &Dispatcher{Store: st, ServerID: serverID}
}

// Dispatch routes one decoded command record against the session's current
// state. Login and logout are handled directly since they mutate session
// state rather than a store object; every other verb requires an
// authenticated session and is routed through the object handler table.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, rec *xmlcodec.CommandRecord) (handlers.Result, error) {
	switch rec.Verb {
	case xmlcodec.VerbLogin:
		return d.login(ctx, sess, rec)
	case xmlcodec.VerbLogout:
		return d.logout(sess)
	}

	if !sess.Authenticated() {
		return handlers.Result{Code: int(resultcode.CommandUseError), Message: resultcode.DefaultMessage(resultcode.CommandUseError)}, nil
	}

	key := routeKey{rec.Verb, rec.ObjectKind}
	handler, ok := routes[key]
	if !ok {
		if rec.ObjectKind == xmlcodec.ObjectNone {
			return handlers.Result{Code: int(resultcode.UnknownCommand), Message: resultcode.DefaultMessage(resultcode.UnknownCommand)}, nil
		}
		return handlers.Result{Code: int(resultcode.UnimplementedOption), Message: resultcode.DefaultMessage(resultcode.UnimplementedOption)}, nil
	}

	hc := handlers.Context{ClID: sess.SponsoringClient(), ServerID: d.ServerID}

	var result handlers.Result
	err := d.Store.WithTransaction(ctx, func(txn store.Txn) error {
		r, herr := handler(ctx, txn, hc, rec.Payload)
		if herr != nil {
			return herr
		}
		result = r
		return nil
	})
	if err != nil {
		return handlers.Result{}, err
	}
	return result, nil
}

func (d *Dispatcher) login(ctx context.Context, sess *session.Session, rec *xmlcodec.CommandRecord) (handlers.Result, error) {
	if sess.Authenticated() {
		return handlers.Result{Code: int(resultcode.CommandUseError), Message: "Already logged in"}, nil
	}
	login, ok := rec.Payload.(*xmlcodec.Login)
	if !ok || login.ClID == "" || login.Pw == "" {
		return handlers.Result{Code: int(resultcode.MissingParameter), Message: resultcode.DefaultMessage(resultcode.MissingParameter)}, nil
	}

	registrar, err := d.Store.Registrar(ctx, login.ClID)
	if err != nil {
		if se, ok := err.(*store.Error); ok && se.Code == store.ErrNotFound {
			return handlers.Result{Code: int(resultcode.AuthorizationError), Message: resultcode.DefaultMessage(resultcode.AuthorizationError)}, nil
		}
		return handlers.Result{}, err
	}
	if registrar.PW != login.Pw {
		return handlers.Result{Code: int(resultcode.AuthorizationError), Message: resultcode.DefaultMessage(resultcode.AuthorizationError)}, nil
	}

	if err := sess.Login(login.ClID); err != nil {
		return handlers.Result{}, fmt.Errorf("epp: login: %w", err)
	}
	return handlers.Result{Code: int(resultcode.Success), Message: resultcode.DefaultMessage(resultcode.Success)}, nil
}

func (d *Dispatcher) logout(sess *session.Session) (handlers.Result, error) {
	if !sess.Authenticated() {
		return handlers.Result{Code: int(resultcode.CommandUseError), Message: resultcode.DefaultMessage(resultcode.CommandUseError)}, nil
	}
	sess.Logout()
	return handlers.Result{Code: int(resultcode.SuccessLogout), Message: resultcode.DefaultMessage(resultcode.SuccessLogout)}, nil
}

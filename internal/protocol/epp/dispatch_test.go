package epp

import (
	"context"
	"testing"

	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/session"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/xmlcodec"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
	"github.com/qenex-ai/epp-registry-platform/pkg/store/memory"
)

func testStore() store.Store {
	return memory.New(map[string]*store.Registrar{
		"registrar1": {ClID: "registrar1", PW: "secret", Name: "Test Registrar"},
	})
}

func TestDispatchLoginRequiresMatchingPassword(t *testing.T) {
	d := NewDispatcher(testStore(), "EPP")
	sess := session.New("127.0.0.1:1")
	ctx := context.Background()

	result, err := d.Dispatch(ctx, sess, &xmlcodec.CommandRecord{
		Kind: xmlcodec.KindCommand,
		Verb: xmlcodec.VerbLogin,
		Payload: &xmlcodec.Login{ClID: "registrar1", Pw: "wrong"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Code != 2201 {
		t.Fatalf("expected 2201 for bad password, got %d", result.Code)
	}
	if sess.Authenticated() {
		t.Fatalf("session must not be authenticated after failed login")
	}
}

func TestDispatchLoginSucceedsAndGatesSubsequentCommands(t *testing.T) {
	d := NewDispatcher(testStore(), "EPP")
	sess := session.New("127.0.0.1:1")
	ctx := context.Background()

	result, err := d.Dispatch(ctx, sess, &xmlcodec.CommandRecord{
		Kind: xmlcodec.KindCommand,
		Verb: xmlcodec.VerbLogin,
		Payload: &xmlcodec.Login{ClID: "registrar1", Pw: "secret"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Code != 1000 {
		t.Fatalf("expected 1000 on successful login, got %d", result.Code)
	}
	if !sess.Authenticated() {
		t.Fatalf("session must be authenticated after successful login")
	}

	result, err = d.Dispatch(ctx, sess, &xmlcodec.CommandRecord{
		Kind:       xmlcodec.KindCommand,
		Verb:       xmlcodec.VerbCheck,
		ObjectKind: xmlcodec.ObjectDomain,
		Payload:    &xmlcodec.DomainCheck{Names: []string{"example.com"}},
	})
	if err != nil {
		t.Fatalf("Dispatch domain check: %v", err)
	}
	if result.Code != 1000 {
		t.Fatalf("expected 1000 for domain check, got %d: %s", result.Code, result.Message)
	}
}

func TestDispatchRejectsCommandsBeforeLogin(t *testing.T) {
	d := NewDispatcher(testStore(), "EPP")
	sess := session.New("127.0.0.1:1")
	ctx := context.Background()

	result, err := d.Dispatch(ctx, sess, &xmlcodec.CommandRecord{
		Kind:       xmlcodec.KindCommand,
		Verb:       xmlcodec.VerbCheck,
		ObjectKind: xmlcodec.ObjectDomain,
		Payload:    &xmlcodec.DomainCheck{Names: []string{"example.com"}},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Code != 2002 {
		t.Fatalf("expected 2002 for command before login, got %d", result.Code)
	}
}

func TestDispatchUnknownVerbIsUnknownCommand(t *testing.T) {
	d := NewDispatcher(testStore(), "EPP")
	sess := session.New("127.0.0.1:1")
	ctx := context.Background()
	sess.Login("registrar1")

	result, err := d.Dispatch(ctx, sess, &xmlcodec.CommandRecord{
		Kind: xmlcodec.KindCommand,
		Verb: xmlcodec.Verb("bogus"),
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Code != 2000 {
		t.Fatalf("expected 2000 for unknown verb, got %d", result.Code)
	}
}

func TestDispatchLogoutTransitionsSession(t *testing.T) {
	d := NewDispatcher(testStore(), "EPP")
	sess := session.New("127.0.0.1:1")
	ctx := context.Background()
	if err := sess.Login("registrar1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	result, err := d.Dispatch(ctx, sess, &xmlcodec.CommandRecord{
		Kind: xmlcodec.KindCommand,
		Verb: xmlcodec.VerbLogout,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Code != 1500 {
		t.Fatalf("expected 1500 on logout, got %d", result.Code)
	}
	if sess.Authenticated() {
		t.Fatalf("session must not be authenticated after logout")
	}
}

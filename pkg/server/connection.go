package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/qenex-ai/epp-registry-platform/internal/logger"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/frame"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/session"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/xmlcodec"
)

// handleConnection runs one EPP session end to end: greeting, then a
// read-decode-dispatch-encode-write loop until the peer disconnects, sends
// <logout>, or the adapter begins shutdown.
func (a *EPPAdapter) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	peer := conn.RemoteAddr().String()
	sess := session.New(peer)
	a.sessions.Register(sess)
	defer a.sessions.Unregister(sess.ID)
	defer sess.Close()

	lc := logger.NewLogContext(peerHost(peer))
	ctx = logger.WithContext(ctx, lc)

	logger.InfoCtx(ctx, "epp session accepted", "session_id", sess.ID)

	if err := a.sendGreeting(conn); err != nil {
		logger.WarnCtx(ctx, "epp: failed to send greeting", "error", err)
		return
	}

	for {
		if a.config.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(a.config.IdleTimeout))
		}

		payload, err := frame.Read(conn)
		if err != nil {
			if !isExpectedCloseError(err) {
				logger.WarnCtx(ctx, "epp: frame read error", "error", err)
			}
			return
		}

		if err := conn.SetWriteDeadline(time.Time{}); err != nil {
			logger.DebugCtx(ctx, "epp: clear write deadline failed", "error", err)
		}

		resp, shouldClose := a.handleFrame(ctx, sess, payload)
		if err := frame.Write(conn, resp); err != nil {
			logger.WarnCtx(ctx, "epp: frame write error", "error", err)
			return
		}
		if shouldClose {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// handleFrame decodes one EPP document and returns its encoded response.
// shouldClose is true after a successful <logout>, signalling the caller to
// tear down the connection once the response is flushed.
func (a *EPPAdapter) handleFrame(ctx context.Context, sess *session.Session, payload []byte) ([]byte, bool) {
	rec, err := xmlcodec.Decode(payload)
	if err != nil {
		resp, _ := xmlcodec.Encode(xmlcodec.Response{
			Code:                2001,
			Message:             "Command syntax error",
			ServerTransactionID: xmlcodec.NewServerTransactionID(),
		})
		return resp, false
	}

	if rec.Kind == xmlcodec.KindHello {
		sess.Hello()
		greeting, _ := a.buildGreeting()
		return greeting, false
	}

	start := time.Now()
	result, err := a.dispatcher.Dispatch(ctx, sess, rec)
	if err != nil {
		logger.ErrorCtx(ctx, "epp: handler error", "error", err, "verb", string(rec.Verb))
		if a.metrics != nil {
			a.metrics.RecordCommand(string(rec.Verb), string(rec.ObjectKind), 2400, time.Since(start))
		}
		resp, _ := xmlcodec.Encode(xmlcodec.Response{
			Code:                2400,
			Message:             "Command failed",
			ClientTransactionID: rec.ClientTransactionID,
			ServerTransactionID: xmlcodec.NewServerTransactionID(),
		})
		return resp, false
	}

	if a.metrics != nil {
		a.metrics.RecordCommand(string(rec.Verb), string(rec.ObjectKind), result.Code, time.Since(start))
	}

	resp, encErr := xmlcodec.Encode(xmlcodec.Response{
		Code:                result.Code,
		Message:             result.Message,
		ClientTransactionID: rec.ClientTransactionID,
		ServerTransactionID: xmlcodec.NewServerTransactionID(),
		ResData:             result.ResData,
	})
	if encErr != nil {
		logger.ErrorCtx(ctx, "epp: response encode error", "error", encErr)
		resp, _ = xmlcodec.Encode(xmlcodec.Response{
			Code:                2400,
			Message:             "Command failed",
			ClientTransactionID: rec.ClientTransactionID,
			ServerTransactionID: xmlcodec.NewServerTransactionID(),
		})
	}
	return resp, rec.Verb == xmlcodec.VerbLogout && result.Code == 1500
}

func (a *EPPAdapter) sendGreeting(conn net.Conn) error {
	payload, err := a.buildGreeting()
	if err != nil {
		return err
	}
	return frame.Write(conn, payload)
}

func (a *EPPAdapter) buildGreeting() ([]byte, error) {
	return xmlcodec.EncodeGreeting(xmlcodec.Greeting{
		ServerID:   a.config.ServerID,
		ServerDate: time.Now().UTC().Format(time.RFC3339),
		Versions:   []string{"1.0"},
		Langs:      []string{"en"},
		ObjectURIs: advertisedObjectURIs,
	})
}

func isExpectedCloseError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}

func peerHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

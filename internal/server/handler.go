package server

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ekasa-labs/receiptd/internal/decode"
	"github.com/ekasa-labs/receiptd/internal/domain"
	"github.com/ekasa-labs/receiptd/internal/wire"
)

// sinkTimeout bounds each fire-and-forget store call so a wedged database
// cannot pile up goroutines forever.
const sinkTimeout = 10 * time.Second

// handleConn serves exactly one request on conn and closes it. All failure
// modes are isolated here; nothing propagates to the accept loop.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()

	id := uuid.NewString()
	log := s.log.With().
		Str("conn", id).
		Str("remote", conn.RemoteAddr().String()).
		Logger()

	s.conns.Store(id, conn)
	defer s.conns.Delete(id)

	tlsConn := tls.Server(conn, s.tlsCfg)
	defer tlsConn.Close()

	if err := conn.SetDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
		log.Error().Err(err).Msg("set deadline")
		return
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		log.Warn().Err(err).Msg("handshake failed")
		return
	}

	req, err := wire.ReadRequest(bufio.NewReader(tlsConn))
	if err != nil {
		s.respondReadError(tlsConn, log, err)
		return
	}

	if req.Method != "POST" {
		log.Info().Str("method", req.Method).Str("target", req.Target).Msg("unsupported method")
		s.respond(tlsConn, log, wire.UnsupportedMethodBody(req.Method))
		return
	}

	items, err := decode.Items(req.Body)
	if err != nil {
		var de *domain.DecodeError
		if errors.As(err, &de) {
			log.Warn().Str("reason", de.Reason).Msg("batch rejected")
			s.respond(tlsConn, log, wire.ErrorBody(de.Reason))
			return
		}
		log.Error().Err(err).Msg("decode")
		s.respond(tlsConn, log, wire.ErrorBody(err.Error()))
		return
	}

	batch, err := s.store.RecordBatch(ctx, items)
	if err != nil {
		log.Error().Err(err).Msg("record batch")
		s.respond(tlsConn, log, wire.ErrorBody("batch could not be recorded"))
		return
	}

	log.Info().
		Uint64("receipt", batch.ReceiptNumber).
		Int("items", batch.Size()).
		Msg("batch accepted")

	if s.sink != nil {
		s.wg.Add(1)
		go s.storeBatch(batch, log)
	}

	s.respond(tlsConn, log, wire.SuccessBody(batch.ReceiptNumber, batch.Size()))
}

// respondReadError maps a request read failure to its response, if any.
// A client that hung up before sending anything gets no response at all.
func (s *Server) respondReadError(conn net.Conn, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrClientClosed):
		log.Debug().Msg("client closed before request")
	case errors.Is(err, domain.ErrTruncatedBody):
		log.Warn().Err(err).Msg("truncated request")
		s.respond(conn, log, wire.ErrorBody("request body shorter than declared Content-Length"))
	case errors.Is(err, wire.ErrBodyTooLarge):
		log.Warn().Err(err).Msg("oversized request")
		s.respond(conn, log, wire.ErrorBody("request body too large"))
	default:
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			log.Warn().Err(err).Msg("read timeout")
			return
		}
		log.Error().Err(err).Msg("read request")
	}
}

// respond writes the fixed-shape response; failures are logged, the client
// already got everything it is going to get.
func (s *Server) respond(conn net.Conn, log zerolog.Logger, body string) {
	if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
		log.Error().Err(err).Msg("set write deadline")
		return
	}
	if err := wire.WriteResponse(conn, body); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

// storeBatch forwards an accepted batch to the persistence sink.
// Fire-and-forget: a sink failure is logged and never reaches the client.
func (s *Server) storeBatch(batch domain.Batch, log zerolog.Logger) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := s.sink.Store(ctx, batch); err != nil {
		log.Error().Err(err).Uint64("receipt", batch.ReceiptNumber).Msg("sink store failed")
	}
}

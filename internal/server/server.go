package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ekasa-labs/receiptd/internal/domain"
	"github.com/ekasa-labs/receiptd/internal/ports"
	"github.com/ekasa-labs/receiptd/internal/state"
)

// Config holds the server's runtime options.
type Config struct {
	// ListenAddr is the TCP listen address (host:port)
	ListenAddr string

	// ReadTimeout bounds how long a connection may take to deliver its
	// handshake and request
	ReadTimeout time.Duration

	// AcceptTimeout bounds each blocking Accept call so the loop can notice
	// shutdown
	AcceptTimeout time.Duration

	// ShutdownGrace is how long Stop waits for in-flight connections before
	// force-closing them
	ShutdownGrace time.Duration
}

// Server accepts mutually-authenticated TLS connections and ingests receipt
// batches.
type Server struct {
	cfg    Config
	tlsCfg *tls.Config
	store  *state.Store
	sink   ports.BatchSink
	log    zerolog.Logger

	mu       sync.Mutex
	running  bool
	listener *net.TCPListener
	cancel   context.CancelFunc

	wg    sync.WaitGroup
	conns sync.Map // conn id -> net.Conn, force-closed after the grace period
}

// New creates a server. tlsCfg must require client certificates; sink may be
// nil when durable storage is not wired.
func New(cfg Config, tlsCfg *tls.Config, store *state.Store, sink ports.BatchSink, log zerolog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		tlsCfg: tlsCfg,
		store:  store,
		sink:   sink,
		log:    log,
	}
}

// Start binds the listening socket and launches the accept loop.
// It returns immediately; use Stop for shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return domain.ErrAlreadyRunning
	}

	addr, err := net.ResolveTCPAddr("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	ln, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.listener = ln
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.acceptLoop(loopCtx, ln)

	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return nil
}

// Addr returns the bound listen address, useful when the configured port is 0.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the server down: the listener closes so the accept loop exits,
// in-flight connections get the grace period to finish, anything still open
// afterwards is force-closed.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	s.running = false
	cancel, ln := s.cancel, s.listener
	s.listener = nil
	s.mu.Unlock()

	cancel()
	if err := ln.Close(); err != nil {
		s.log.Error().Err(err).Msg("close listener")
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.cfg.ShutdownGrace):
		s.log.Warn().Msg("grace period exceeded, closing remaining connections")
		s.conns.Range(func(_, value any) bool {
			value.(net.Conn).Close()
			return true
		})
		<-done
	}

	s.log.Info().Msg("stopped")
	return nil
}

// acceptLoop accepts connections until the context is canceled. Every accept
// carries a deadline so cancellation is noticed within one AcceptTimeout.
func (s *Server) acceptLoop(ctx context.Context, ln *net.TCPListener) {
	defer s.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		if err := ln.SetDeadline(time.Now().Add(s.cfg.AcceptTimeout)); err != nil {
			s.log.Error().Err(err).Msg("set accept deadline")
			return
		}

		conn, err := ln.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			// one bad accept never terminates the loop
			s.log.Error().Err(err).Msg("accept")
			continue
		}

		s.wg.Add(1)
		go s.handleConn(ctx, conn)
	}
}

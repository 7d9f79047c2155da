package conn

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server accepts peers and runs Handler on each in its own goroutine.
type Server struct {
	Config  Config
	Handler Handler
	Logger  zerolog.Logger

	conns *xsync.Map[*Conn, struct{}]
	wg    sync.WaitGroup
}

func NewServer(cfg Config, h Handler) *Server {
	return &Server{
		Config:  cfg,
		Handler: h,
		Logger:  log.With().Str("component", "server").Logger(),
		conns:   xsync.NewMap[*Conn, struct{}](),
	}
}

// Active reports the number of connections being served.
func (s *Server) Active() int { return s.conns.Size() }

// Serve runs the accept loop until ctx is done or ln fails. Open connections
// are closed on the way out and their handlers are waited for.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.wg.Wait()
	defer s.closeAll()

	s.Logger.Info().Str("addr", ln.Addr().String()).Msg("serving")
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		c, err := New(nc, s.Config)
		if err != nil {
			_ = nc.Close()
			s.Logger.Warn().Err(err).Msg("rejecting connection")
			continue
		}
		s.conns.Store(c, struct{}{})
		s.wg.Add(1)
		go s.serveConn(ctx, c)
	}
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer s.wg.Done()
	defer s.conns.Delete(c)
	defer c.Close()

	c.logger.Debug().Msg("accepted")
	err := s.Handler(ctx, c)
	switch {
	case err == nil, errors.Is(err, ErrClosed):
		c.logger.Debug().Msg("done")
	case ctx.Err() != nil:
	default:
		c.logger.Warn().Err(err).Msg("handler failed")
	}
}

func (s *Server) closeAll() {
	s.conns.Range(func(c *Conn, _ struct{}) bool {
		_ = c.Close()
		return true
	})
}

// Serve is shorthand for NewServer(cfg, h).Serve(ctx, ln).
func Serve(ctx context.Context, ln net.Listener, cfg Config, h Handler) error {
	return NewServer(cfg, h).Serve(ctx, ln)
}

// Package conn carries serializable entities over TCP: one entity per
// Send/Receive, reconnecting dialers, and a small accept loop.
package conn

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oy3o/serial"
	"github.com/oy3o/serial/internal/observability"
)

var (
	ErrClosed = errors.New("conn: closed by peer")
	ErrBroken = errors.New("conn: connection broken")
)

// Conn binds one Reader and one Writer to a net.Conn. Send and Receive may
// run concurrently with each other but not with themselves. After any failure
// the affected direction stays broken; callers must reconnect.
type Conn struct {
	nc     net.Conn
	r      *serial.Reader
	w      *serial.Writer
	cfg    Config
	peer   string
	logger zerolog.Logger
	closed bool // the peer closed between two entities

	closeOnce sync.Once
	closeErr  error
}

// New wraps nc. Only the timeouts, buffer size and limits of cfg are used;
// cfg.Limits is applied as given, so a zero field means unbounded.
func New(nc net.Conn, cfg Config) (*Conn, error) {
	r, err := serial.NewReaderSize(nc, cfg.BufferSize)
	if err != nil {
		return nil, err
	}
	w, err := serial.NewWriterSize(nc, cfg.BufferSize)
	if err != nil {
		return nil, err
	}
	r.WithLimits(cfg.Limits)
	peer := peerName(nc)
	return &Conn{
		nc:     nc,
		r:      r,
		w:      w,
		cfg:    cfg,
		peer:   peer,
		logger: log.With().Str("peer", peer).Logger(),
	}, nil
}

func peerName(nc net.Conn) string {
	if addr := nc.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}

// Peer is the remote address the connection logs and counts under.
func (c *Conn) Peer() string { return c.peer }

// Send encodes v and flushes it to the peer.
func (c *Conn) Send(v serial.Serializable) error {
	if err := c.w.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBroken, err)
	}
	if c.cfg.WriteTimeout > 0 {
		if err := c.nc.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
			c.w.Fail(err)
			return c.fail(observability.DirectionSend, err)
		}
	}

	start := c.w.Count()
	err := serial.WriteObject(c.w, v)
	if err == nil {
		err = c.w.Flush()
	}
	if err != nil {
		return c.fail(observability.DirectionSend, err)
	}
	observability.RecordTransfer(c.peer, observability.DirectionSend, c.w.Count()-start)
	return nil
}

// Receive blocks until one complete entity has been decoded into v.
// A peer that closes between entities yields ErrClosed.
func (c *Conn) Receive(v serial.Serializable) error {
	if err := c.r.Err(); err != nil {
		if c.closed {
			return ErrClosed
		}
		return fmt.Errorf("%w: %w", ErrBroken, err)
	}
	if c.cfg.ReadTimeout > 0 {
		if err := c.nc.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			c.r.Fail(err)
			return c.fail(observability.DirectionReceive, err)
		}
	}

	start := c.r.Count()
	if err := serial.ReadObject(c.r, v); err != nil {
		if c.r.Count() == start && c.r.IsEOF() {
			c.closed = true
			c.logger.Debug().Msg("peer closed connection")
			return ErrClosed
		}
		return c.fail(observability.DirectionReceive, err)
	}
	observability.RecordTransfer(c.peer, observability.DirectionReceive, c.r.Count()-start)
	return nil
}

// Call sends req and waits for the reply.
func (c *Conn) Call(req, reply serial.Serializable) error {
	if err := c.Send(req); err != nil {
		return err
	}
	return c.Receive(reply)
}

func (c *Conn) fail(direction string, err error) error {
	kind := failureKind(err)
	observability.RecordFailure(c.peer, kind)
	c.logger.Warn().Err(err).Str("direction", direction).Str("kind", kind).Msg("connection failed")
	return fmt.Errorf("%w: %w", ErrBroken, err)
}

func failureKind(err error) string {
	var ne net.Error
	switch {
	case errors.As(err, &ne) && ne.Timeout():
		return "timeout"
	case errors.Is(err, serial.ErrInvalidLength):
		return "invalid_length"
	case errors.Is(err, serial.ErrStreamExhausted):
		return "stream_exhausted"
	case errors.Is(err, serial.ErrWriteFailure):
		return "write_failure"
	default:
		return "other"
	}
}

// Close tears down the connection. It unblocks pending Send and Receive calls.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.nc.Close()
	})
	return c.closeErr
}

package conn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oy3o/serial/internal/observability"
)

var ErrRetriesExhausted = errors.New("conn: retries exhausted")

// Handler serves one established connection. Returning nil ends a Dialer.Run
// loop; returning an error (ErrClosed included) makes it reconnect.
type Handler func(ctx context.Context, c *Conn) error

// Dialer connects to Config.Addr, retrying per Config.Retry.
type Dialer struct {
	Config Config
	Logger zerolog.Logger

	dial  func(ctx context.Context, network, addr string) (net.Conn, error)
	sleep func(ctx context.Context, d time.Duration) error
}

func NewDialer(cfg Config) *Dialer {
	nd := &net.Dialer{Timeout: cfg.DialTimeout}
	return &Dialer{
		Config: cfg,
		Logger: log.With().Str("addr", cfg.Addr).Logger(),
		dial:   nd.DialContext,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Connect dials until it succeeds, ctx is done, or MaxAttempts is reached.
func (d *Dialer) Connect(ctx context.Context) (*Conn, error) {
	if err := d.Config.Validate(); err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		nc, err := d.dial(ctx, "tcp", d.Config.Addr)
		if err == nil {
			c, err := New(nc, d.Config)
			if err != nil {
				_ = nc.Close()
				return nil, err
			}
			d.Logger.Info().Int("attempt", attempt).Msg("connected")
			return c, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		observability.RecordFailure(d.Config.Addr, "dial")

		if limit := d.Config.Retry.MaxAttempts; limit > 0 && attempt >= limit {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
		}
		delay := NextRetryDelay(d.Config.Retry, attempt)
		d.Logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("connect failed")
		if err := d.sleep(ctx, delay); err != nil {
			return nil, err
		}
		observability.RecordReconnect(d.Config.Addr)
	}
}

// Run keeps a connection to the peer alive and hands each one to h. It
// returns when h returns nil, ctx is done, or Connect gives up.
func (d *Dialer) Run(ctx context.Context, h Handler) error {
	for {
		c, err := d.Connect(ctx)
		if err != nil {
			return err
		}

		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		err = h(ctx, c)
		stop()
		_ = c.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrClosed) {
			d.Logger.Info().Msg("peer closed connection, reconnecting")
		} else {
			d.Logger.Warn().Err(err).Msg("connection lost, reconnecting")
		}
		if err := d.sleep(ctx, NextRetryDelay(d.Config.Retry, 1)); err != nil {
			return err
		}
		observability.RecordReconnect(d.Config.Addr)
	}
}

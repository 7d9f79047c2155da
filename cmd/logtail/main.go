package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oy3o/serial/conn"
	"github.com/oy3o/serial/internal/observability"
	"github.com/oy3o/serial/message"
)

type options struct {
	config      string
	addr        string
	minSeverity string
	metrics     string
	logLevel    string
}

func main() {
	opts := parseFlags()
	observability.InitLogger("logtail", observability.ParseLevel(opts.logLevel))

	cfg, err := loadConfig(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	minSeverity, err := message.ParseSeverity(opts.minSeverity)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -min-severity")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.metrics != "" {
		router := observability.NewRouter("logtail", time.Now())
		go func() {
			if err := observability.ServeHTTP(ctx, opts.metrics, router); err != nil {
				log.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	log.Info().Str("addr", cfg.Addr).Str("min_severity", minSeverity.String()).Msg("tailing")
	err = conn.NewDialer(cfg).Run(ctx, func(_ context.Context, c *conn.Conn) error {
		log.Info().Str("peer", c.Peer()).Msg("receiving")
		return tail(c, minSeverity, os.Stdout)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("logtail stopped")
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.config, "config", "", "TOML connection config")
	flag.StringVar(&opts.addr, "addr", "", "log collector host:port (overrides config)")
	flag.StringVar(&opts.minSeverity, "min-severity", "INFO", "lowest severity to print")
	flag.StringVar(&opts.metrics, "metrics", "", "serve /health and /metrics on this address")
	flag.StringVar(&opts.logLevel, "log-level", "info", "zerolog level")
	flag.Parse()
	return opts
}

func loadConfig(opts options) (conn.Config, error) {
	cfg := conn.DefaultConfig()
	if opts.config != "" {
		loaded, err := conn.LoadConfig(opts.config)
		if err != nil {
			return conn.Config{}, err
		}
		cfg = loaded
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	return cfg, cfg.Validate()
}

// tail prints every record at or above floor until the connection fails.
func tail(c *conn.Conn, floor message.Severity, out io.Writer) error {
	for {
		var m message.LogMessage
		if err := c.Receive(&m); err != nil {
			return err
		}
		if m.Severity < floor {
			continue
		}
		if _, err := fmt.Fprintln(out, m.String()); err != nil {
			return err
		}
	}
}

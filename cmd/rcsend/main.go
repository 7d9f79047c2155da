package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oy3o/serial/conn"
	"github.com/oy3o/serial/internal/observability"
	"github.com/oy3o/serial/message"
)

type options struct {
	config     string
	addr       string
	command    string
	data       string
	params     string
	timeout    time.Duration
	attempts   int
	retryDelay time.Duration
	logLevel   string
}

func main() {
	opts := parseFlags()
	observability.InitLogger("rcsend", observability.ParseLevel(opts.logLevel))

	req, err := buildRequest(opts)
	if err != nil {
		fatalf("%v", err)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	reply, err := send(ctx, cfg, req)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(reply.String())
	if reply.Command == message.CmdError {
		os.Exit(2)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.config, "config", "", "TOML connection config")
	flag.StringVar(&opts.addr, "addr", "", "run controller host:port (overrides config)")
	flag.StringVar(&opts.command, "cmd", "STATECHECK", "command name, e.g. LOAD, START, STOP")
	flag.StringVar(&opts.data, "data", "", "string payload")
	flag.StringVar(&opts.params, "params", "", "comma-separated int32 parameters")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall deadline")
	flag.IntVar(&opts.attempts, "attempts", 3, "dial attempts before giving up")
	flag.DurationVar(&opts.retryDelay, "retry-delay", 0, "delay between dial attempts (overrides config)")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "zerolog level")
	flag.Parse()
	return opts
}

func buildRequest(opts options) (*message.RunControlMessage, error) {
	cmd, err := message.ParseCommand(opts.command)
	if err != nil {
		return nil, err
	}
	params, err := parseParams(opts.params)
	if err != nil {
		return nil, err
	}
	return message.NewRunControlMessage(cmd, opts.data, params...), nil
}

func parseParams(raw string) ([]int32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	fields := strings.Split(raw, ",")
	params := make([]int32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", f, err)
		}
		params = append(params, int32(v))
	}
	return params, nil
}

func loadConfig(opts options) (conn.Config, error) {
	cfg := conn.DefaultConfig()
	// shorter than the daemon default
	cfg.Retry.Delay = time.Second
	if opts.config != "" {
		loaded, err := conn.LoadConfigOver(opts.config, cfg)
		if err != nil {
			return conn.Config{}, err
		}
		cfg = loaded
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.retryDelay > 0 {
		cfg.Retry.Delay = opts.retryDelay
	}
	cfg.Retry.MaxAttempts = opts.attempts
	return cfg, cfg.Validate()
}

// send performs one request/reply exchange.
func send(ctx context.Context, cfg conn.Config, req *message.RunControlMessage) (*message.RunControlMessage, error) {
	c, err := conn.NewDialer(cfg).Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	log.Debug().Str("request", req.String()).Msg("sending")
	var reply message.RunControlMessage
	if err := c.Call(req, &reply); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return &reply, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "rcsend: "+format+"\n", args...)
	os.Exit(1)
}

package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/serial/conn"
	"github.com/oy3o/serial/message"
)

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest(options{command: "load", data: "physics", params: "1, 42,-7"})
	require.NoError(t, err)
	assert.Equal(t, message.CmdLoad, req.Command)
	assert.Equal(t, []int32{1, 42, -7}, req.Params)
	assert.Equal(t, "physics", req.Data)

	req, err = buildRequest(options{command: "STATECHECK"})
	require.NoError(t, err)
	assert.Empty(t, req.Params)

	_, err = buildRequest(options{command: "explode"})
	assert.ErrorIs(t, err, message.ErrUnknownCommand)
	_, err = buildRequest(options{command: "start", params: "1,x"})
	assert.Error(t, err)
	_, err = buildRequest(options{command: "start", params: "4294967296"})
	assert.Error(t, err)
}

func TestSend(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		_ = conn.Serve(ctx, ln, conn.DefaultConfig(), func(_ context.Context, c *conn.Conn) error {
			var req message.RunControlMessage
			if err := c.Receive(&req); err != nil {
				return err
			}
			if !req.Command.IsTransition() {
				return c.Send(message.NewRunControlMessage(message.CmdState, "READY"))
			}
			return c.Send(message.NewRunControlMessage(message.CmdOK, "", req.Params...))
		})
	}()

	cfg, err := loadConfig(options{addr: ln.Addr().String(), attempts: 1})
	require.NoError(t, err)

	reply, err := send(ctx, cfg, message.NewRunControlMessage(message.CmdStart, "", 5))
	require.NoError(t, err)
	assert.Equal(t, message.CmdOK, reply.Command)
	assert.Equal(t, []int32{5}, reply.Params)

	reply, err = send(ctx, cfg, message.NewRunControlMessage(message.CmdStateCheck, ""))
	require.NoError(t, err)
	assert.Equal(t, message.CmdState, reply.Command)
	assert.Equal(t, "READY", reply.Data)
}

func TestLoadConfigRetryDelay(t *testing.T) {
	cfg, err := loadConfig(options{addr: "rc01:9090", attempts: 2})
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Retry.Delay)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)

	path := filepath.Join(t.TempDir(), "rc.toml")
	require.NoError(t, os.WriteFile(path, []byte("addr = \"rc01:9090\"\nretry_delay = \"250ms\"\n"), 0o600))
	cfg, err = loadConfig(options{config: path, attempts: 1})
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)

	require.NoError(t, os.WriteFile(path, []byte("addr = \"rc01:9090\"\n"), 0o600))
	cfg, err = loadConfig(options{config: path})
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Retry.Delay, "file without retry_delay keeps the tool default")

	cfg, err = loadConfig(options{config: path, retryDelay: 3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Retry.Delay)
}

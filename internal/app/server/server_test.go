package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesync/internal/app/server/config"
	"salesync/internal/utils/logger"
)

func testConfig() *config.Config {
	cfg := &config.Config{Env: config.EnvLocal}
	cfg.Server.RunAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	return cfg
}

func TestApp_ServeAndShutdown(t *testing.T) {
	app, err := New(context.Background(), testConfig(), logger.Discard())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestApp_RunListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Server.RunAddress = ln.Addr().String()

	app, err := New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)

	err = app.Run(context.Background())
	assert.Error(t, err)
}

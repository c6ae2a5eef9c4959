package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthFunc func(ctx context.Context) error

func (f healthFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func TestProbe_Online(t *testing.T) {
	addr := listen(t)
	p := NewProbe(addr, healthFunc(func(context.Context) error { return nil }), time.Second, discardLogger())

	assert.True(t, p.IsOnline(context.Background()))
}

func TestProbe_HealthFails(t *testing.T) {
	addr := listen(t)
	p := NewProbe(addr, healthFunc(func(context.Context) error {
		return &ServerError{StatusCode: 503}
	}), time.Second, discardLogger())

	assert.False(t, p.IsOnline(context.Background()))
}

func TestProbe_NoListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	called := false
	p := NewProbe(addr, healthFunc(func(context.Context) error {
		called = true
		return nil
	}), time.Second, discardLogger())

	assert.False(t, p.IsOnline(context.Background()))
	assert.False(t, called)
}

func TestProbe_Timeout(t *testing.T) {
	addr := listen(t)
	p := NewProbe(addr, healthFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}), 20*time.Millisecond, discardLogger())

	start := time.Now()
	assert.False(t, p.IsOnline(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestProbe_DefaultTimeout(t *testing.T) {
	p := NewProbe("localhost:1", healthFunc(func(context.Context) error { return errors.New("down") }), 0, discardLogger())
	assert.Equal(t, defaultHealthTimeout, p.timeout)
}

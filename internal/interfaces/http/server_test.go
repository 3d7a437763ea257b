package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/internal/config"
	"github.com/turtacn/ToxPredict/internal/interfaces/http/handlers"
)

func TestNewServer(t *testing.T) {
	cfg := config.Default().Server
	cfg.Host = "127.0.0.1"
	cfg.Port = 9191
	server := NewServer(cfg, http.NewServeMux(), nil)

	require.NotNil(t, server)
	assert.Equal(t, "127.0.0.1:9191", server.Addr())
	assert.Equal(t, cfg.ReadTimeout, server.httpServer.ReadTimeout)
	assert.Equal(t, cfg.WriteTimeout, server.httpServer.WriteTimeout)
	assert.NotNil(t, server.Handler())
}

func TestServer_ServeAndShutdown(t *testing.T) {
	router := NewRouter(RouterConfig{HealthHandler: handlers.NewHealthHandler("test")})
	cfg := config.Default().Server
	cfg.ShutdownTimeout = time.Second
	server := NewServer(cfg, router, nil)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- server.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/healthz")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err, "graceful shutdown must not surface ErrServerClosed")
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	server := NewServer(config.Default().Server, http.NewServeMux(), nil)
	assert.NoError(t, server.Shutdown(context.Background()))
}

//Personal.AI order the ending

// File: cmd/serve_test.go
package cmd

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pitist/mi-orquestador-mvp/internal/config"
	"github.com/pitist/mi-orquestador-mvp/internal/leancheck"
)

func TestInitializeServeComponents(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.LeanCfg.Delay = 0
	logger := zaptest.NewLogger(t)

	c, err := initializeServeComponents(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer c.Shutdown(logger)

	h := c.Server.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Audit completed"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lean_check", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), leancheck.Confirmation)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.JSONEq(t, `{"status":"ok","database":"unsupported"}`, rec.Body.String())
}

func TestInitializeServeComponents_TracingEnabled(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.TracingCfg.Enabled = true
	logger := zaptest.NewLogger(t)

	c, err := initializeServeComponents(context.Background(), cfg, logger)
	require.NoError(t, err)
	c.Shutdown(logger)
}

func TestInitializeServeComponents_BadDatabaseURL(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.DatabaseCfg.URL = "postgres://localhost/app?pool_max_conns=many"

	_, err := initializeServeComponents(context.Background(), cfg, zaptest.NewLogger(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prepare database probe")
}

func TestRunServe_StopsOnCancel(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.SetServerListenAddr("127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runServe(ctx, cfg, zaptest.NewLogger(t))

	assert.NoError(t, err)
}

func TestServeCmd_ListenFlag(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, stderr, err := executeCommandContext(t, ctx, "serve", "--listen", "127.0.0.1:0")

	require.NoError(t, err)
	assert.Contains(t, stderr, "HTTP server starting")
	assert.Contains(t, stderr, "Orchestrator stopped")
}

func TestServeCmd_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, _, err = executeCommand(t, "serve", "--listen", ln.Addr().String())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

package server_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	svcErr "github.com/oggyb/groupmatch/internal/errors"
	"github.com/oggyb/groupmatch/internal/server"
)

func TestAdminRouter_Healthz(t *testing.T) {
	healthy := server.NewAdminRouter(map[string]server.HealthCheck{
		"db": func(context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	broken := server.NewAdminRouter(map[string]server.HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = httptest.NewRecorder()
	broken.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}

func TestAdminRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	server.NewAdminRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	intercept := server.LoggingInterceptor(logger)
	info := &grpc.UnaryServerInfo{FullMethod: "/groupmatch.matching.v1.MatchingService/SendLike"}

	resp, err := intercept(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Contains(t, buf.String(), "RPC ok")

	buf.Reset()
	_, err = intercept(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, svcErr.Map(svcErr.ErrCooldownActive)
	})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "reason=COOLDOWN_ACTIVE")

	buf.Reset()
	_, err = intercept(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, svcErr.Map(errors.New("boom"))
	})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestNewGRPCServer_RegistersHealth(t *testing.T) {
	srv, hs := server.NewGRPCServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(srv.Stop)
	require.NotNil(t, hs)

	info := srv.GetServiceInfo()
	assert.Contains(t, info, "grpc.health.v1.Health")
}

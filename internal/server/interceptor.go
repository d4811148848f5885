package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	svcErr "github.com/oggyb/groupmatch/internal/errors"
)

// LoggingInterceptor logs every unary call with its method, duration and
// outcome. Business rejections log at WARN with their reason; anything the
// mapper could not classify logs at ERROR.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start).Milliseconds()
		if err == nil {
			logger.Debug("RPC ok", "method", info.FullMethod, "duration_ms", duration)
			return resp, nil
		}

		code := status.Code(err)
		if reason, ok := svcErr.ReasonOf(err); ok {
			logger.Warn("RPC rejected",
				"method", info.FullMethod,
				"code", code,
				"reason", reason,
				"duration_ms", duration,
			)
			return resp, err
		}

		level := slog.LevelWarn
		if code == codes.Internal || code == codes.Unknown {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "RPC error",
			"method", info.FullMethod,
			"code", code,
			"error", err,
			"duration_ms", duration,
		)
		return resp, err
	}
}

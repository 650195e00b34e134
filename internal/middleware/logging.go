package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/metrics"
)

// callInfo is filled in by inner interceptors so the logging interceptor,
// which runs outermost, can report who made the call.
type callInfo struct {
	username string
}

type callInfoKey struct{}

// LoggingInterceptor logs one line per RPC and records its latency in
// metrics.RPCDuration. Client errors log at WARN, everything else that
// fails at ERROR.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			info := &callInfo{}

			resp, err := next(context.WithValue(ctx, callInfoKey{}, info), req)

			elapsed := time.Since(start)
			code := "ok"
			level := slog.LevelInfo
			attrs := []any{
				"procedure", procedure,
				"username", info.username,
				"duration_ms", elapsed.Milliseconds(),
			}

			var connectErr *connect.Error
			switch {
			case err == nil:
			case errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal && connectErr.Code() != connect.CodeUnknown:
				code = connectErr.Code().String()
				level = slog.LevelWarn
				attrs = append(attrs, "code", code, "error", connectErr.Message())
			default:
				code = connect.CodeOf(err).String()
				level = slog.LevelError
				attrs = append(attrs, "code", code, "error", err)
			}

			msg := "RPC ok"
			if err != nil {
				msg = "RPC error"
			}
			logger.Log(ctx, level, msg, attrs...)
			metrics.RPCDuration.WithLabelValues(procedure, code).Observe(elapsed.Seconds())

			return resp, err
		}
	}
}

package routing

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/iziplay/freebooks-api/pkg/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestIDMiddleware reuses the caller's X-Request-ID or generates one, and
// echoes it back.
func requestIDMiddleware() func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id := ctx.Header(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.SetHeader(RequestIDHeader, id)
		next(huma.WithValue(ctx, requestIDKey{}, id))
	}
}

func accessLogMiddleware(logger *slog.Logger, m *metrics.Metrics) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		next(ctx)
		took := time.Since(start)

		status := ctx.Status()
		if status == 0 {
			status = 200
		}
		// operation path keeps label cardinality bounded
		path := ctx.Operation().Path

		if m != nil {
			m.HTTPRequestsTotal.WithLabelValues(ctx.Method(), path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(path).Observe(took.Seconds())
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelWarn
		}
		logger.Log(ctx.Context(), level, "Request handled",
			"method", ctx.Method(),
			"path", ctx.URL().Path,
			"status", status,
			"duration", took,
			"request_id", RequestID(ctx.Context()),
		)
	}
}

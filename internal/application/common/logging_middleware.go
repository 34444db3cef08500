package common

import (
	"context"
	"time"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/mediator"
)

// LoggingMiddleware logs the start and outcome of every request
func LoggingMiddleware() mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		logger := LoggerFromContext(ctx)
		name := mediator.RequestName(request)

		logger.Log(LevelDebug, "Handling request", map[string]interface{}{"request": name})
		start := time.Now()
		response, err := next(ctx, request)

		metadata := map[string]interface{}{
			"request":     name,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			metadata["error"] = err.Error()
			logger.Log(LevelError, "Request failed", metadata)
			return response, err
		}
		logger.Log(LevelDebug, "Request completed", metadata)
		return response, nil
	}
}

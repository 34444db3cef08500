package metrics

import (
	"context"
	"time"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/mediator"
)

// PrometheusMiddleware records the duration and outcome of every command and query.
// Request names are the bare type name, e.g. "*commands.ExportGameDataCommand"
// becomes "ExportGameDataCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		// Skip metrics if collector is nil (metrics disabled)
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(mediator.RequestName(request), time.Since(start).Seconds(), err == nil)

		return response, err
	}
}

package mediator

import (
	"context"
	"reflect"
	"strings"
)

// Request represents a command or query
type Request interface{}

// Response represents the result of handling a request
type Response interface{}

// RequestHandler handles a specific request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc is a function that handles a request
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Handle lets a HandlerFunc act as a RequestHandler
func (f HandlerFunc) Handle(ctx context.Context, request Request) (Response, error) {
	return f(ctx, request)
}

// Middleware is a function that wraps handler execution with cross-cutting concerns
// such as logging or metrics
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// Mediator dispatches requests to their handlers
type Mediator interface {
	Send(ctx context.Context, request Request) (Response, error)
	Register(requestType reflect.Type, handler RequestHandler) error
	Use(middleware Middleware)
}

// RequestName returns the bare type name of a request
// Examples:
//   - "*commands.ExportGameDataCommand" → "ExportGameDataCommand"
//   - "*queries.SuggestPotionsQuery" → "SuggestPotionsQuery"
func RequestName(request Request) string {
	if request == nil {
		return "UnknownRequest"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

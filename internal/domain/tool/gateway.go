package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInvokeTimeout bounds a single tool invocation.
const DefaultInvokeTimeout = 45 * time.Second

// Gateway dispatches tool invocations through the registry and converts
// every failure, including panics and timeouts, into the Result envelope.
// Nothing escapes this boundary as a Go error, so the orchestrator needs no
// exception handling around tool calls. Side effects belong to the invoked
// tool; the gateway only dispatches.
type Gateway struct {
	registry Registry
	timeout  time.Duration
	log      zerolog.Logger
}

// NewGateway creates a gateway over the registry. A non-positive timeout
// falls back to DefaultInvokeTimeout.
func NewGateway(registry Registry, timeout time.Duration, log zerolog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultInvokeTimeout
	}
	return &Gateway{
		registry: registry,
		timeout:  timeout,
		log:      log.With().Str("component", "tool_gateway").Logger(),
	}
}

// Invoke runs one tool call for the acting user and always returns the
// envelope, never an error.
func (g *Gateway) Invoke(ctx context.Context, name string, args json.RawMessage, actingUserID string) Result {
	handler, ok := g.registry.Resolve(name)
	if !ok {
		g.log.Warn().Str("tool", name).Msg("tool not registered")
		return Failed(NewError(ErrCodeNotFound, fmt.Sprintf("unknown tool: %s", name)))
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	data, err := g.safeCall(callCtx, handler, name, args, actingUserID)
	if err == nil {
		return Succeeded(data)
	}

	var toolErr *Error
	switch {
	case errors.As(err, &toolErr):
		// already classified by the handler or the recovery path
	case errors.Is(err, context.DeadlineExceeded):
		toolErr = NewError(ErrCodeTimeout, fmt.Sprintf("tool %s timed out after %s", name, g.timeout)).WithCause(err)
	default:
		toolErr = NewError(ErrCodeFailed, err.Error()).WithCause(err)
	}

	g.log.Warn().
		Str("tool", name).
		Str("user_id", actingUserID).
		Str("error_code", toolErr.Code).
		Msg("tool invocation failed")

	return Failed(toolErr)
}

func (g *Gateway) safeCall(ctx context.Context, handler Handler, name string, args json.RawMessage, actingUserID string) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error().
				Str("tool", name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("tool invocation panicked")
			err = NewError(ErrCodePanic, fmt.Sprintf("tool %s panicked: %v", name, r))
		}
	}()

	return handler(ctx, args, actingUserID)
}

// Package observability wires OpenTelemetry tracing and metrics export and
// provides the span helpers used around turns and tool calls.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "homehub/assistant-api"
)

// GetTracer returns the tracer for the assistant service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// TurnAttributes returns common attributes for turn spans.
func TurnAttributes(conversationID, channel, tier string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("turn.conversation_id", conversationID),
		attribute.String("turn.channel", channel),
		attribute.String("turn.tier", tier),
	}
}

// StartTurnSpan starts a new span for one turn execution.
func StartTurnSpan(ctx context.Context, channel string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "turn.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("turn.channel", channel)),
	)
}

// StartToolSpan starts a new span for one tool invocation.
func StartToolSpan(ctx context.Context, toolName string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "tool.invoke."+toolName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("tool.name", toolName)),
	)
}

// StartJobSpan starts a new span for one deferred turn job.
func StartJobSpan(ctx context.Context, jobID, channel string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "job.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("job.id", jobID),
			attribute.String("job.channel", channel),
		),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddRoundEvent adds a tool round event to a span.
func AddRoundEvent(span trace.Span, round, toolCalls int) {
	span.AddEvent("tool_round",
		trace.WithAttributes(
			attribute.Int("round.number", round),
			attribute.Int("round.tool_calls", toolCalls),
		),
	)
}

// AddStatusTransition adds a status transition event to a span.
func AddStatusTransition(span trace.Span, fromStatus, toStatus string) {
	span.AddEvent("status.transition",
		trace.WithAttributes(
			attribute.String("status.from", fromStatus),
			attribute.String("status.to", toStatus),
		),
	)
}

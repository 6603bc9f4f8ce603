package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"campus-dispatch/internal/events"
)

// NewEventSink returns an events.Sink that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op sink.
func NewEventSink(provider *sdklog.LoggerProvider) events.Sink {
	if provider == nil {
		return noopSink{}
	}
	return &otelSink{logger: provider.Logger("campus-dispatch.events")}
}

type noopSink struct{}

func (noopSink) Emit(context.Context, *events.Event) error { return nil }

type otelSink struct {
	logger otellog.Logger
}

// Emit converts the dispatch event to an OTel log record and emits it. Best-effort; errors are logged.
func (s *otelSink) Emit(ctx context.Context, event *events.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	}
	if len(event.Metadata) > 0 {
		rec.SetBody(otellog.BytesValue(event.Metadata))
	}
	if event.ID != "" {
		rec.AddAttributes(otellog.String("event_id", event.ID))
	}
	if event.Type != "" {
		rec.AddAttributes(otellog.String("event_type", string(event.Type)))
	}
	if event.Entity != "" {
		rec.AddAttributes(otellog.String("entity", event.Entity))
	}
	if event.EntityID != "" {
		rec.AddAttributes(otellog.String("entity_id", event.EntityID))
	}
	if event.ActorID != "" {
		rec.AddAttributes(otellog.String("actor_id", event.ActorID))
	}
	if rec.Timestamp().IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	}
	s.logger.Emit(ctx, rec)
	return nil
}

package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"busline/infras/otel"
	"busline/shared/failure"
)

func record(t *testing.T, fn func(scope otel.Scope)) sdktrace.ReadOnlySpan {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "booking.Create")
	scope := otel.NewScope(span)
	fn(scope)
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	return spans[0]
}

func attributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}

	return out
}

func TestScope_InternalErrorFailsSpan(t *testing.T) {
	span := record(t, func(scope otel.Scope) {
		scope.TraceIfError(errors.New("connection reset"))
	})

	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, string(failure.KindInternal), attributes(span)[otel.AttributeFailureKind].AsString())
	assert.Len(t, span.Events(), 1)
}

func TestScope_BusinessFailureKeepsSpanHealthy(t *testing.T) {
	span := record(t, func(scope otel.Scope) {
		scope.TraceError(failure.CapacityExceeded("not enough seats available"))
	})

	assert.NotEqual(t, codes.Error, span.Status().Code)
	assert.Equal(t, string(failure.KindCapacityExceeded), attributes(span)[otel.AttributeFailureKind].AsString())
}

func TestScope_NilErrorIsIgnored(t *testing.T) {
	span := record(t, func(scope otel.Scope) {
		scope.TraceIfError(nil)
	})

	assert.Empty(t, span.Events())
	assert.NotContains(t, attributes(span), attribute.Key(otel.AttributeFailureKind))
}

func TestScope_SetAttributes(t *testing.T) {
	departure := time.Date(2030, 1, 10, 8, 0, 0, 0, time.UTC)

	span := record(t, func(scope otel.Scope) {
		scope.SetAttribute("booking.seats", 3)
		scope.SetAttributes(map[string]any{
			"booking.amount":    1500.5,
			"booking.confirmed": true,
			"schedule.depart":   departure,
			"schedule.buses":    []string{"bus-1", "bus-2"},
		})
	})

	attrs := attributes(span)
	assert.Equal(t, int64(3), attrs["booking.seats"].AsInt64())
	assert.Equal(t, 1500.5, attrs["booking.amount"].AsFloat64())
	assert.True(t, attrs["booking.confirmed"].AsBool())
	assert.Equal(t, "2030-01-10T08:00:00Z", attrs["schedule.depart"].AsString())
	assert.Equal(t, []string{"bus-1", "bus-2"}, attrs["schedule.buses"].AsStringSlice())
}

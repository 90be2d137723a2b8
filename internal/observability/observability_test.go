package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLoggerStampsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev")

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "inside")
	span.End()
	log.DebugContext(context.Background(), "outside")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inside, outside map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inside))
	require.NoError(t, json.Unmarshal(lines[1], &outside))

	require.Equal(t, span.SpanContext().TraceID().String(), inside["trace_id"])
	require.NotContains(t, outside, "trace_id")
}

func TestObserveDB(t *testing.T) {
	var nilProm *Prom
	require.NoError(t, nilProm.ObserveDB("noop", func() error { return nil }))

	p := NewProm(prometheus.NewRegistry())
	boom := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})

	err := p.ObserveDB("registrations.create", func() error { return boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("registrations.create", "unique_violation")))
}

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&pgconn.PgError{Code: "23503"}, "foreign_key_violation"},
		{&pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("sql: no rows in result set"), "no_rows"},
		{errors.New("weird"), "unknown"},
	}

	for _, tt := range tests {
		if got := ClassifyDBErr(tt.err); got != tt.want {
			t.Errorf("ClassifyDBErr(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRegistrationAndNotificationCounters(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())
	p.ObserveRegistration("register", "created")
	p.ObserveNotification("confirmation", "ok")

	require.Equal(t, 1.0, testutil.ToFloat64(p.RegistrationsTotal.WithLabelValues("register", "created")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.NotificationsTotal.WithLabelValues("confirmation", "ok")))
}

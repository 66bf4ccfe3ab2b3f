package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: &pgconn.PgError{Code: "23505"}, want: "unique_violation"},
		{err: fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"}), want: "deadlock"},
		{err: &pgconn.PgError{Code: "42P01"}, want: "pg_42P01"},
		{err: context.DeadlineExceeded, want: "timeout"},
		{err: errors.New("connection reset by peer"), want: "connection"},
		{err: errors.New("boom"), want: "unknown"},
	}

	for _, tt := range tests {
		if got := classifyDBErr(tt.err); got != tt.want {
			t.Fatalf("classifyDBErr(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserveDB(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProm(reg)

	_ = p.ObserveDB("users.get_by_id", func() error { return nil })
	_ = p.ObserveDB("users.get_by_id", func() error { return pgx.ErrNoRows })
	err := p.ObserveDB("users.create", func() error { return &pgconn.PgError{Code: "23505"} })

	if err == nil {
		t.Fatalf("ObserveDB must return the wrapped function's error")
	}

	var m dto.Metric
	if err := p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation").Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := m.GetCounter().GetValue(); got != 1 {
		t.Fatalf("got %v unique violations, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	// a missing row is not a database error
	for _, f := range families {
		if f.GetName() == "schoolhub_db_errors_total" && len(f.GetMetric()) != 1 {
			t.Fatalf("got %d error series, want 1", len(f.GetMetric()))
		}
	}
}

func TestObserveDB_NilProm(t *testing.T) {
	var p *Prom

	called := false
	if err := p.ObserveDB("op", func() error { called = true; return nil }); err != nil || !called {
		t.Fatalf("nil Prom should just run fn, called=%v err=%v", called, err)
	}
}

func TestLoggerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "hello")
	span.End()

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}

	if line["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("trace_id missing or wrong: %v", line)
	}
	if _, ok := line["span_id"]; !ok {
		t.Fatalf("span_id missing: %v", line)
	}
}

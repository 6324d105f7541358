package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/KasumiMercury/voltahome/internal/observability/logging"
)

func TestInitWithoutExporter(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	res, err := Init(context.Background(), Config{
		ServiceInfo:   logging.ServiceInfo{Name: "voltahome-test", Version: "test"},
		Environment:   logging.EnvDev,
		SamplingRate:  1.0,
		DefaultModule: logging.Module("test"),
	})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if res.Logger() == nil {
		t.Fatal("expected logger")
	}

	_, span := otel.Tracer("test").Start(context.Background(), "span")
	if !span.SpanContext().IsValid() {
		t.Error("expected sampled spans with a valid context")
	}
	span.End()

	if err := res.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

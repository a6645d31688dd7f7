package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/resource"
)

func TestSetupAndShutdown(t *testing.T) {
	// Nothing listens here; exporters connect lazily and export failures
	// surface only on flush.
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://127.0.0.1:1")
	t.Setenv("OTEL_SERVICE_NAME", "hearth-test")

	ctx := context.Background()
	tel, err := Setup(ctx, "hearth")
	require.NoError(t, err)
	require.NotNil(t, tel.Logger)

	tel.Logger.InfoContext(ctx, "telemetry ready", "component", "test")

	shutdownCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	// Flushing to an unreachable collector may fail; it must not hang.
	_ = tel.Shutdown(shutdownCtx)

	assert.NoError(t, tel.Shutdown(ctx), "second shutdown is a no-op")
}

func TestNewResource(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment=test")

	res, err := newResource(context.Background(), "hearth")
	if err != nil {
		require.ErrorIs(t, err, resource.ErrPartialResource)
	}

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "hearth", attrs["service.name"])
	assert.Equal(t, "test", attrs["deployment.environment"])
}

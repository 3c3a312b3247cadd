package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_StdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	tp, shutdown, err := Init(context.Background(), Config{
		ServiceName: "agentsim-test",
		UseStdout:   true,
		Output:      &buf,
	})
	require.NoError(t, err)
	assert.Same(t, tp, otel.GetTracerProvider())

	_, span := otel.Tracer("test").Start(context.Background(), "Engine.Step")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"Engine.Step"`)
	assert.Contains(t, buf.String(), "agentsim-test")
}

func TestInit_WithoutExporter(t *testing.T) {
	tp, shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	require.NotNil(t, tp)
	require.NoError(t, shutdown(context.Background()))
}

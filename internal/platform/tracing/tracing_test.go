package tracing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_WithoutEndpointIsNoop(t *testing.T) {
	req := require.New(t)
	prev := otel.GetTracerProvider()

	p, err := Init(context.Background(), Config{ServiceName: "medtracker", OTLPEndpoint: "  "})
	req.NoError(err)
	req.False(p.Enabled())
	req.NoError(p.Shutdown(context.Background()))

	// No toca el provider global.
	req.Equal(prev, otel.GetTracerProvider())
}

func TestProvider_NilIsDisabled(t *testing.T) {
	var p *Provider
	require.False(t, p.Enabled())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestInit_WithEndpointInstallsProvider(t *testing.T) {
	req := require.New(t)
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	// El exporter gRPC conecta en forma lazy: no hace falta un collector.
	p, err := Init(context.Background(), Config{
		ServiceName:  "medtracker",
		Environment:  "test",
		OTLPEndpoint: "127.0.0.1:4317",
		SampleRate:   0.5,
	})
	req.NoError(err)
	req.True(p.Enabled())
	req.NotEqual(prev, otel.GetTracerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = p.Shutdown(ctx)
}

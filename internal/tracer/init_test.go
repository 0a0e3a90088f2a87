package tracer

import (
	"context"
	"testing"

	"rich-text-bridge/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown := InitTracer(config.TracingConfig{Enabled: false})
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_Enabled(t *testing.T) {
	// The exporter connects lazily, so no collector is needed here.
	shutdown := InitTracer(config.TracingConfig{Enabled: true, Endpoint: "localhost:4318"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased{0.5}")
}

package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders(" api-key = secret , broken, =nokey,x=1 ")
	require.Equal(t, map[string]string{"api-key": "secret", "x": "1"}, headers)
	require.Empty(t, ParseHeaders(""))
}

func TestConfigFromEnvDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	cfg := ConfigFromEnv("trustd", "test", true, true)
	require.False(t, cfg.Metrics)
	require.False(t, cfg.Traces)

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "false")
	cfg = ConfigFromEnv("trustd", "test", false, true)
	require.False(t, cfg.Metrics)
	require.True(t, cfg.Traces)
	require.False(t, cfg.Insecure)
}

func TestInitWithoutExporters(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "trustd"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = Init(context.Background(), Config{})
	require.Error(t, err)
}

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example"}})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, "https://app.example", res.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Empty(t, res.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, http.StatusOK, res.Code)
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(CORSConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))
	req := httptest.NewRequest(http.MethodOptions, "/v1/eligibility", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, "*", res.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, res.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestObservabilityRecordsRequests(t *testing.T) {
	obs := NewObservability(ObservabilityConfig{Enabled: true, MetricsPrefix: "mwtest"}, nil)
	handler := obs.Middleware("tiers")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/tiers", nil))
	require.Equal(t, http.StatusTeapot, res.Code)

	metrics := httptest.NewRecorder()
	obs.MetricsHandler().ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `mwtest_requests_total{method="GET",route="tiers",status="I'm a teapot"} 1`)
}

func TestObservabilityDisabledPassesThrough(t *testing.T) {
	obs := NewObservability(ObservabilityConfig{}, nil)
	res := httptest.NewRecorder()
	obs.Middleware("root")(okHandler()).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, res.Code)
}

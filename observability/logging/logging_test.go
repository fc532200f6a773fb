package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetupWritesStructuredFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	path := filepath.Join(t.TempDir(), "trustd.log")
	logger := SetupWithOptions("trustd", "test", Options{File: path, MaxSizeMB: 1})
	logger.Info("ingested batch", "count", 2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	require.Equal(t, "ingested batch", entry["message"])
	require.Equal(t, "INFO", entry["severity"])
	require.Equal(t, "trustd", entry["service"])
	require.Equal(t, "test", entry["env"])
	require.EqualValues(t, 2, entry["count"])
	require.Contains(t, entry, "timestamp")
}

func TestMaskField(t *testing.T) {
	require.Equal(t, RedactedValue, MaskField("selectedAddress", "5Grw").Value.String())
	require.Equal(t, "boom", MaskField("error", "boom").Value.String())
	require.Equal(t, "", MaskField("wallet", " ").Value.String())
	require.Contains(t, RedactionAllowlist(), "tier")
}

func TestAddressAttr(t *testing.T) {
	attr := AddressAttr("wallet", "0x"+"11111111111111111111111111111111111111aa")
	require.Equal(t, "wallet", attr.Key)
	require.Contains(t, attr.Value.String(), "…")

	require.Equal(t, RedactedValue, AddressAttr("wallet", "garbage").Value.String())
}

package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("LOGDNA_APIKEY", "")
	t.Setenv("WALLETCONNECT_PROJECT_ID", "")

	cfg, err := Parse([]byte("walletConnect:\n  projectId: pid\n"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "production", cfg.Logging.Environment)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "https://logs.logdna.com", cfg.Logging.Sink.BaseURL)
	assert.Equal(t, "crypto-ingress-iframe", cfg.Logging.Sink.App)
	assert.Equal(t, int64(5000), cfg.Logging.Sink.RequestTimeoutMillis)
	assert.Equal(t, "wss://relay.walletconnect.com", cfg.WalletConnect.RelayURL)
	assert.Equal(t, "Crypto Onramp", cfg.WalletConnect.Metadata.Name)
	assert.Empty(t, cfg.WalletConnect.Origin)
	assert.Equal(t, []string{"eip155:1", "tron:0x2b6653dc"}, cfg.WalletConnect.DefaultChains)
	assert.Equal(t, "https://rpc.walletconnect.com/v1", cfg.RPC.BaseURL)
	assert.Equal(t, 10, cfg.RPC.TimeoutSeconds)
	assert.Equal(t, "https://api.chainweb.com", cfg.Kadena.MainnetAPIRoot)
	assert.Equal(t, "data/state.db", cfg.Storage.Path)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOGDNA_APIKEY", "key")
	t.Setenv("WALLETCONNECT_PROJECT_ID", "env-pid")

	cfg, err := Parse([]byte("walletConnect:\n  projectId: file-pid\n"))
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "key", cfg.Logging.Sink.APIKey)
	assert.Equal(t, "env-pid", cfg.WalletConnect.ProjectID)
}

func TestParse_RequiresProjectID(t *testing.T) {
	t.Setenv("WALLETCONNECT_PROJECT_ID", "")
	_, err := Parse([]byte("server:\n  port: \"9090\"\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Setenv("WALLETCONNECT_PROJECT_ID", "")
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
walletConnect:
  projectId: pid
  defaultChains: ["eip155:137"]
rpc:
  requestsPerSecond: 5
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"eip155:137"}, cfg.WalletConnect.DefaultChains)
	assert.Equal(t, 5.0, cfg.RPC.RequestsPerSecond)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

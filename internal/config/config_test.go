// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
rpc_list:
  - "https://api.mainnet-beta.solana.com"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxSlippageBps, cfg.MaxSlippageBps)
	assert.Equal(t, DefaultConfirmTimeout, cfg.ConfirmTimeoutSec)
	assert.Equal(t, DefaultObserveInterval, cfg.ObserveIntervalSec)
	assert.Equal(t, DefaultBurnSweepInterval, cfg.BurnSweepIntervalSec)
	assert.Equal(t, DefaultBurnSweepThreshold, cfg.BurnSweepThreshold)
	assert.Equal(t, DefaultRetries, cfg.Retries)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
rpc_list:
  - "https://rpc.example.com"
max_slippage_bps: 100
observe_interval_sec: 5
burn_sweep_threshold: 250.5
burn_token_id: "tok-42"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.MaxSlippageBps)
	assert.Equal(t, 5, cfg.ObserveIntervalSec)
	assert.Equal(t, 250.5, cfg.BurnSweepThreshold)
	assert.Equal(t, "tok-42", cfg.BurnTokenID)
}

func TestLoadConfigEmptyRPCList(t *testing.T) {
	path := writeConfig(t, `
max_slippage_bps: 50
`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigInvalidURLs(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad rpc scheme", "rpc_list:\n  - \"ftp://rpc.example.com\"\n"},
		{"bad oracle scheme", "rpc_list:\n  - \"https://ok.example.com\"\noracle_urls:\n  - \"gopher://stats\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigInvalidNumbers(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"slippage too high", "rpc_list:\n  - \"https://ok\"\nmax_slippage_bps: 20000\n"},
		{"zero confirm timeout", "rpc_list:\n  - \"https://ok\"\nconfirm_timeout_sec: 0\n"},
		{"negative retries", "rpc_list:\n  - \"https://ok\"\nretries: -1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("LAUNCH_ENGINE_RPC_LIST", "https://a.example.com, https://b.example.com")
	t.Setenv("LAUNCH_ENGINE_POSTGRES_URL", "postgres://env/db")

	path := writeConfig(t, `
rpc_list:
  - "https://file.example.com"
postgres_url: "postgres://file/db"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.RPCList)
	assert.Equal(t, "postgres://env/db", cfg.PostgresURL)
}

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BAKERY_HOST", "BAKERY_PORT", "BAKERY_DATA_DIR", "BAKERY_HOST_SUFFIX",
		"BAKERY_PORT_RANGE_START", "BAKERY_PORT_RANGE_END", "BAKERY_ROUTER_PORTS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BAKERY_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultHost, cfg.Host)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultHostSuffix, cfg.HostSuffix)
	assert.Equal(t, defaultPortRangeStart, cfg.PortRangeStart)
	assert.Equal(t, defaultPortRangeEnd, cfg.PortRangeEnd)
	assert.Equal(t, []int{80, 443, 4080}, cfg.RouterPorts)
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("BAKERY_DATA_DIR", t.TempDir())
	t.Setenv("BAKERY_PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvertedPortRange(t *testing.T) {
	clearEnv(t)
	t.Setenv("BAKERY_DATA_DIR", t.TempDir())
	t.Setenv("BAKERY_PORT_RANGE_START", "40000")
	t.Setenv("BAKERY_PORT_RANGE_END", "30000")

	_, err := Load()
	require.Error(t, err)
}

func TestParseRouterPorts_DiscardsInvalidTokens(t *testing.T) {
	ports := parseRouterPorts("80, not-a-port, 443,,9999999")
	assert.Equal(t, []int{80, 443}, ports)
}

func TestParseRouterPorts_AllInvalidFallsBackToDefault(t *testing.T) {
	ports := parseRouterPorts("abc,def")
	assert.Equal(t, defaultRouterPorts, ports)
}

func TestDataDir_AutoCreated(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir() + "/nested/bakery"
	t.Setenv("BAKERY_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)
	_, err = os.Stat(cfg.DataDir)
	require.NoError(t, err)
}

// Package config loads Bakery's daemon configuration from the environment,
// following the same os.Getenv-with-defaults idiom iam-service uses for its
// Vault/NATS bootstrap, generalized with numeric validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config is the fully-resolved daemon configuration.
type Config struct {
	Host            string
	Port            int
	DataDir         string
	HostSuffix      string
	PortRangeStart  int
	PortRangeEnd    int
	RouterPorts     []int
}

const (
	defaultHost           = "127.0.0.1"
	defaultPort           = 47123
	defaultHostSuffix     = "localtest.me"
	defaultPortRangeStart = 30000
	defaultPortRangeEnd   = 45000
)

var defaultRouterPorts = []int{80, 443, 4080}

// Load reads BAKERY_* environment variables, applying defaults, and returns
// a validated Config. Non-integer numeric fields fail with a clear error.
func Load() (*Config, error) {
	cfg := &Config{
		Host:       getEnv("BAKERY_HOST", defaultHost),
		HostSuffix: getEnv("BAKERY_HOST_SUFFIX", defaultHostSuffix),
	}

	var err error
	cfg.Port, err = getEnvInt("BAKERY_PORT", defaultPort)
	if err != nil {
		return nil, err
	}

	cfg.PortRangeStart, err = getEnvInt("BAKERY_PORT_RANGE_START", defaultPortRangeStart)
	if err != nil {
		return nil, err
	}
	cfg.PortRangeEnd, err = getEnvInt("BAKERY_PORT_RANGE_END", defaultPortRangeEnd)
	if err != nil {
		return nil, err
	}
	if cfg.PortRangeStart > cfg.PortRangeEnd {
		return nil, fmt.Errorf("BAKERY_PORT_RANGE_START (%d) must be <= BAKERY_PORT_RANGE_END (%d)", cfg.PortRangeStart, cfg.PortRangeEnd)
	}

	dataDir := os.Getenv("BAKERY_DATA_DIR")
	if dataDir == "" {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return nil, fmt.Errorf("resolving default data dir: %w", herr)
		}
		dataDir = filepath.Join(home, ".bakery")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}
	cfg.DataDir = dataDir

	cfg.RouterPorts = parseRouterPorts(os.Getenv("BAKERY_ROUTER_PORTS"))

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q: %w", key, v, err)
	}
	return n, nil
}

// parseRouterPorts parses a comma-separated list of candidate router ports,
// discarding invalid tokens. If every token is invalid (or the list is
// empty), it falls back to the default candidate list.
func parseRouterPorts(raw string) []int {
	if strings.TrimSpace(raw) == "" {
		return append([]int(nil), defaultRouterPorts...)
	}
	var ports []int
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n <= 0 || n > 65535 {
			continue
		}
		ports = append(ports, n)
	}
	if len(ports) == 0 {
		return append([]int(nil), defaultRouterPorts...)
	}
	return ports
}

// DBPath returns the path to the embedded database file within DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "bakery.db")
}

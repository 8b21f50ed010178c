package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "APP_"

	// DirEnv points the loader at another configs directory, so the CLI
	// works outside the repository root.
	DirEnv     = "QUOTE_KEEPER_CONFIG_DIR"
	defaultDir = "configs"
)

// section prefixes every key in kv with name and a dot.
func section(out map[string]any, name string, kv map[string]any) {
	for k, v := range kv {
		out[name+"."+k] = v
	}
}

// defaults returns the built-in settings as dotted koanf keys.
func defaults() map[string]any {
	d := map[string]any{}

	section(d, "app", map[string]any{
		"name":        "quote-keeper",
		"version":     "dev",
		"environment": "local",
	})

	section(d, "server", map[string]any{
		"port":             DefaultServerPort,
		"host":             "0.0.0.0",
		"read_timeout":     "30s",
		"write_timeout":    "30s",
		"idle_timeout":     "120s",
		"shutdown_timeout": "10s",
		"max_request_size": DefaultMaxRequestSize,
	})

	section(d, "log", map[string]any{
		"level":  "info",
		"format": "json",
	})
	section(d, "log.file", map[string]any{
		"enabled":     false,
		"path":        "./logs/quote-keeper.log",
		"max_size":    DefaultLogFileMaxSizeMB,
		"max_backups": DefaultLogFileMaxBackups,
		"max_age":     DefaultLogFileMaxAgeDays,
		"compress":    true,
	})

	section(d, "telemetry", map[string]any{
		"enabled":       false,
		"endpoint":      "",
		"insecure":      true,
		"service_name":  "quote-keeper",
		"sampling_rate": 1.0,
	})

	section(d, "client", map[string]any{
		"timeout":    "10s",
		"user_agent": "quote-keeper",
	})
	section(d, "client.retry", map[string]any{
		"max_attempts":     DefaultClientRetryMaxAttempts,
		"initial_interval": "200ms",
		"max_interval":     "2s",
		"multiplier":       DefaultClientRetryMultiplier,
		"jitter_factor":    DefaultClientRetryJitterFactor,
	})
	section(d, "client.circuit_breaker", map[string]any{
		"max_failures":    DefaultClientCircuitMaxFailures,
		"timeout":         "30s",
		"half_open_limit": DefaultClientCircuitHalfOpenLimit,
	})
	section(d, "client.transport", map[string]any{
		"max_idle_conns":          DefaultTransportMaxIdleConns,
		"max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"idle_conn_timeout":       DefaultTransportIdleConnTimeout.String(),
	})
	section(d, "client.rate_limit", map[string]any{
		"requests_per_second": DefaultClientRateLimit,
		"burst":               DefaultClientRateBurst,
	})

	section(d, "services.quote", map[string]any{
		"base_url": DefaultRemoteURL,
		"path":     DefaultRemotePath,
		"name":     "quote-service",
	})

	section(d, "storage", map[string]any{
		"driver":      "sqlite",
		"path":        DefaultStoragePath,
		"quota_bytes": 0,
	})

	section(d, "sync", map[string]any{
		"enabled":        true,
		"interval":       DefaultSyncInterval.String(),
		"page_size":      DefaultSyncPageSize,
		"run_on_startup": true,
		"push_enabled":   true,
		"push_timeout":   DefaultSyncPushTimeout.String(),
	})

	return d
}

// Load reads configuration for profile. Later layers win:
//
//	defaults < configs/base.yaml < configs/<profile>.yaml < APP_* env
func Load(profile string) (*Config, error) {
	return LoadWithOverrides(profile, nil)
}

// LoadWithOverrides is Load plus a final layer of dotted keys, used for
// CLI flags such as --db and by tests.
func LoadWithOverrides(profile string, overrides map[string]any) (*Config, error) {
	dir := Dir()
	k := koanf.New(".")

	layers := []struct {
		name string
		load func() error
	}{
		{"defaults", func() error { return k.Load(confmap.Provider(defaults(), "."), nil) }},
		{"base config", func() error { return loadYAML(k, filepath.Join(dir, "base.yaml")) }},
		{"profile " + profile, func() error {
			if profile == "" {
				return nil
			}

			return loadYAML(k, filepath.Join(dir, profile+".yaml"))
		}},
		{"environment", func() error { return k.Load(env.Provider(envPrefix, ".", envKeyMapper(k.Keys())), nil) }},
		{"overrides", func() error {
			if len(overrides) == 0 {
				return nil
			}

			return k.Load(confmap.Provider(overrides, "."), nil)
		}},
	}

	for _, l := range layers {
		if err := l.load(); err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.name, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

// Dir returns the directory YAML profiles are read from.
func Dir() string {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir
	}

	return defaultDir
}

// loadYAML merges path into k. A missing file is not an error.
func loadYAML(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

// envKeyMapper turns APP_SYNC_PAGE_SIZE into sync.page_size. Underscores
// also appear inside key names, so a variable matching a known key maps to
// it and anything else has every underscore read as a dot.
func envKeyMapper(known []string) func(string) string {
	index := make(map[string]string, len(known))
	for _, key := range known {
		index[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(name string) string {
		flat := strings.ToLower(strings.TrimPrefix(name, envPrefix))

		if key, ok := index[flat]; ok {
			return key
		}

		return strings.ReplaceAll(flat, "_", ".")
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package config loads service configuration, layering defaults, an
// optional YAML file, and command-line flags, in that order.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/cargolog/cargolog/internal/watch"
)

// Config is the full service configuration.
type Config struct {
	Log struct {
		// Format is "json" or "text".
		Format string `koanf:"format"`
	} `koanf:"log"`

	Feed struct {
		// Capability is the well-known name consumers use to discover
		// the feed.
		Capability string `koanf:"capability"`
	} `koanf:"feed"`

	Watch struct {
		// Interval is the watchlist scan cadence in ticks.
		Interval int64 `koanf:"interval"`
		// Quiescence is the eviction window in ticks.
		Quiescence int64 `koanf:"quiescence"`
	} `koanf:"watch"`

	Database struct {
		// URL is the Postgres connection string; empty selects the
		// in-memory event log.
		URL string `koanf:"url"`
	} `koanf:"database"`

	Metrics struct {
		// Addr is the observability listen address; empty disables it.
		Addr string `koanf:"addr"`
	} `koanf:"metrics"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.Log.Format = "json"
	cfg.Watch.Interval = watch.DefaultScanInterval
	cfg.Watch.Quiescence = watch.DefaultQuiescence
	return cfg
}

// Load builds the configuration from defaults, then the YAML file at
// path (when non-empty), then any changed flags. Flag names map to keys
// by replacing dashes with dots: --watch-interval sets watch.interval.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_INVALID").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return strings.ReplaceAll(f.Name, "-", "."), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run
// with.
func (c Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").With("log.format", c.Log.Format).
			Errorf("log format must be json or text")
	}
	if c.Watch.Interval <= 0 {
		return oops.Code("CONFIG_INVALID").With("watch.interval", c.Watch.Interval).
			Errorf("watch interval must be positive")
	}
	if c.Watch.Quiescence <= 0 {
		return oops.Code("CONFIG_INVALID").With("watch.quiescence", c.Watch.Quiescence).
			Errorf("watch quiescence must be positive")
	}
	return nil
}

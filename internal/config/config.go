// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

// Package config loads quizd configuration from a YAML file, VQ_-prefixed
// environment variables, and command line flags. Flags win over env, env
// over the file; defaults fill the rest.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// envPrefix marks environment variables that override configuration.
// Sections are separated by a double underscore so keys that themselves
// contain underscores survive: VQ_SERVER__METRICS_BIND -> server.metrics_bind.
const envPrefix = "VQ_"

// Config is the full quizd configuration.
type Config struct {
	Server    Server    `koanf:"server"`
	Database  Database  `koanf:"database"`
	HCaptcha  HCaptcha  `koanf:"hcaptcha"`
	Challenge Challenge `koanf:"challenge"`
	Bilibili  Bilibili  `koanf:"bilibili"`
	Logging   Logging   `koanf:"logging"`
}

// Server holds listener settings.
type Server struct {
	// MetricsBind is the observability listener (metrics + health).
	MetricsBind string `koanf:"metrics_bind"`
	// HashWorkers bounds concurrent password hashing; 0 means GOMAXPROCS.
	HashWorkers int `koanf:"hash_workers"`
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
}

// DSN renders the settings as a postgres:// URL.
func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.Username, d.Password, d.Host, d.Port, d.Database)
}

// HCaptcha holds captcha verification credentials.
type HCaptcha struct {
	SiteKey string `koanf:"site_key"`
	Secret  string `koanf:"secret"`
	// Bypass skips captcha verification. Development only.
	Bypass bool `koanf:"bypass"`
}

// Challenge holds challenge-code issuance settings.
type Challenge struct {
	// Templates are the caller-facing messages returned with a code.
	// Empty means the built-in defaults.
	Templates []string `koanf:"templates"`
}

// Bilibili holds the external API hosts. Empty means the public API.
type Bilibili struct {
	APIBase string `koanf:"api_base"`
	VCBase  string `koanf:"vc_base"`
}

// Logging holds logger settings.
type Logging struct {
	// Format is "json" or "text".
	Format string `koanf:"format"`
}

// Load reads configuration from the given YAML file (optional), VQ_-prefixed
// environment variables, and flag set (optional), then applies defaults.
// Later sources win: flags over env over file.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").
			With("operation", "merge environment").
			Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "merge flags").
				Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.MetricsBind == "" {
		c.Server.MetricsBind = "127.0.0.1:9100"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

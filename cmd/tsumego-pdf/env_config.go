package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-tsumego-pdf/internal/config"
)

const envPrefix = "TSUMEGO_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string // TSUMEGO_CONFIG: config name or path
	Catalog     string // TSUMEGO_CATALOG: SQLite catalog path
	Collections string // TSUMEGO_COLLECTIONS: YAML collections directory
	OutputDir   string // TSUMEGO_OUTPUT_DIR: default output directory
	PageSize    string // TSUMEGO_PAGE_SIZE: letter, a4, legal or WxH
	Workers     int    // TSUMEGO_WORKERS: render workers per document
	Seed        uint64 // TSUMEGO_SEED: random seed
}

// knownEnvVars lists valid TSUMEGO_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TSUMEGO_CONFIG":      true,
	"TSUMEGO_CATALOG":     true,
	"TSUMEGO_COLLECTIONS": true,
	"TSUMEGO_OUTPUT_DIR":  true,
	"TSUMEGO_PAGE_SIZE":   true,
	"TSUMEGO_WORKERS":     true,
	"TSUMEGO_SEED":        true,
}

// loadEnvConfig reads every recognized TSUMEGO_* value. Malformed numbers
// are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:  getenv("TSUMEGO_CONFIG"),
		Catalog:     getenv("TSUMEGO_CATALOG"),
		Collections: getenv("TSUMEGO_COLLECTIONS"),
		OutputDir:   getenv("TSUMEGO_OUTPUT_DIR"),
		PageSize:    getenv("TSUMEGO_PAGE_SIZE"),
	}
	if workers := getenv("TSUMEGO_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if seed := getenv("TSUMEGO_SEED"); seed != "" {
		if s, err := strconv.ParseUint(seed, 10, 64); err == nil {
			cfg.Seed = s
		}
	}
	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized TSUMEGO_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment values over the loaded config.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Catalog != "" {
		cfg.Catalog.Path = env.Catalog
	}
	if env.Collections != "" {
		cfg.Catalog.Collections = env.Collections
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.PageSize != "" {
		cfg.Page.Size = env.PageSize
	}
	if env.Workers > 0 {
		cfg.Render.Workers = env.Workers
	}
	if env.Seed > 0 {
		cfg.Diagram.Seed = env.Seed
	}
}

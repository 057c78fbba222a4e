// Package config loads the proxy's runtime configuration: environment
// variables read once at startup, plus an optional YAML overlay file for
// alias pins and capability extensions.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ThinkingMode selects how (or whether) the reasoning channel is surfaced.
type ThinkingMode string

const (
	ThinkingDefault       ThinkingMode = "default"
	ThinkingVSCode        ThinkingMode = "vscode"
	ThinkingEvents        ThinkingMode = "events"
	ThinkingBoth          ThinkingMode = "both"
	ThinkingShowReasoning ThinkingMode = "show_reasoning"
	ThinkingOff           ThinkingMode = "off"
)

// parseThinkingMode normalises an arbitrary env value to a known mode.
// Unknown values fall back to ThinkingDefault rather than failing startup —
// the core pipeline only special-cases ThinkingShowReasoning; "events" and
// "both" behave as synonyms of "default" until specified (open question).
func parseThinkingMode(s string) ThinkingMode {
	switch ThinkingMode(strings.ToLower(strings.TrimSpace(s))) {
	case ThinkingVSCode:
		return ThinkingVSCode
	case ThinkingEvents:
		return ThinkingEvents
	case ThinkingBoth:
		return ThinkingBoth
	case ThinkingShowReasoning:
		return ThinkingShowReasoning
	case ThinkingOff:
		return ThinkingOff
	default:
		return ThinkingDefault
	}
}

// Config holds every knob read once at process startup.
type Config struct {
	ListenHost string
	ListenPort string
	Upstream   string

	ThinkingMode  ThinkingMode
	ThinkingDebug bool
	Verbose       bool

	// Overrides is the optional YAML overlay; zero value if none was found.
	Overrides Overrides
}

// Overrides is the optional YAML overlay file shape: alias pins that bypass
// friendly-name derivation, and extra capability strings to union into the
// fixed capability set advertised by /api/tags and /api/show.
type Overrides struct {
	AliasPins    map[string]string `yaml:"alias_pins"`
	Capabilities []string          `yaml:"capabilities"`
}

// Load reads LISTEN_HOST, LISTEN_PORT, UPSTREAM, THINKING_MODE,
// THINKING_DEBUG, and VERBOSE from the environment, applying the documented
// defaults, then merges in an optional YAML overlay found at overlayPath (if
// non-empty) or one of the default search paths. A missing overlay file is
// not an error.
func Load(overlayPath string) (*Config, error) {
	cfg := &Config{
		ListenHost:    getEnv("LISTEN_HOST", "0.0.0.0"),
		ListenPort:    getEnv("LISTEN_PORT", "11434"),
		Upstream:      getEnv("UPSTREAM", "http://10.66.0.7:8080"),
		ThinkingMode:  parseThinkingMode(getEnv("THINKING_MODE", "default")),
		ThinkingDebug: parseBool(getEnv("THINKING_DEBUG", "")),
		Verbose:       parseBool(getEnv("VERBOSE", "")),
	}

	path := overlayPath
	if path == "" {
		path = resolveOverlayPath()
	}
	if path != "" {
		overrides, err := loadOverrides(path)
		if err != nil {
			return nil, fmt.Errorf("loading config overlay %s: %w", path, err)
		}
		cfg.Overrides = *overrides
	}

	return cfg, nil
}

// resolveOverlayPath searches the well-known overlay locations, returning ""
// if none exist. This mirrors the teacher's resolveConfig search-path
// closure in cmd/main.go.
func resolveOverlayPath() string {
	if _, err := os.Stat(filepath.Join("config", "overrides.yaml")); err == nil {
		return filepath.Join("config", "overrides.yaml")
	}
	home, err := os.UserHomeDir()
	if err == nil {
		candidate := filepath.Join(home, ".config", "ollama-bridge", "overrides.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func loadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Overrides{}, nil
		}
		return nil, err
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// parseBool treats "1", "true", and "yes" (case-insensitive) as true, per
// spec.md §6; anything else (including absence) is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

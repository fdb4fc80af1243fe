// Package config loads and validates the notifier configuration.
//
// Watcher rules live in a YAML file because they carry nested lists and
// regex patterns that do not map onto flat environment variables. Service
// tunables (addresses, log settings, timeouts) come from the environment
// with sensible defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/format"
)

// Config holds all service settings. It is built once at startup and never
// mutated afterwards.
type Config struct {
	// From the YAML rules file.
	IPCAddr  string
	Mock     bool
	Users    map[string]string
	Watchers []Watcher

	// From environment variables.
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	WebhookTimeout  time.Duration
	ReconnectDelay  time.Duration
}

// Watcher is one subscriber rule: which files it cares about, how to render
// them, and where the bulletins go.
type Watcher struct {
	Webhooks  []string
	Formatter string
	Parser    string // empty means any parser
	Files     []string

	// FilePatterns are the compiled Files regexes, in declared order.
	FilePatterns []*regexp.Regexp
}

type fileConfig struct {
	IPCAddr  string            `yaml:"ipc_addr"`
	Mock     bool              `yaml:"mock"`
	Users    map[string]string `yaml:"users"`
	Watchers []fileWatcher     `yaml:"watchers"`
}

type fileWatcher struct {
	Webhooks  []string `yaml:"webhooks"`
	Formatter string   `yaml:"formatter"`
	Parser    string   `yaml:"parser"`
	Files     []string `yaml:"files"`
}

// Load reads the rules file named by NOTIFIER_CONFIG (default config.yaml)
// plus environment overrides, validating everything up front so a bad rule
// fails the process at startup instead of at dispatch time.
func Load() (*Config, error) {
	return LoadFile(envOrDefault("NOTIFIER_CONFIG", "config.yaml"))
}

// LoadFile is Load with an explicit rules file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	webhookTimeout, err := envDuration("WEBHOOK_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	reconnectDelay, err := envDuration("RECONNECT_DELAY", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		IPCAddr:         fc.IPCAddr,
		Mock:            fc.Mock,
		Users:           fc.Users,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		WebhookTimeout:  webhookTimeout,
		ReconnectDelay:  reconnectDelay,
	}

	if cfg.IPCAddr == "" {
		return nil, errors.New("ipc_addr is required")
	}

	known := format.Registry()
	for i, fw := range fc.Watchers {
		w := Watcher{
			Webhooks:  fw.Webhooks,
			Formatter: fw.Formatter,
			Parser:    fw.Parser,
			Files:     fw.Files,
		}
		if len(w.Webhooks) == 0 {
			return nil, fmt.Errorf("watcher %d: at least one webhook is required", i)
		}
		if len(w.Files) == 0 {
			return nil, fmt.Errorf("watcher %d: at least one file pattern is required", i)
		}
		if _, ok := known[w.Formatter]; !ok {
			return nil, fmt.Errorf("watcher %d: unknown formatter %q", i, w.Formatter)
		}
		for _, expr := range w.Files {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("watcher %d: invalid file pattern %q: %w", i, expr, err)
			}
			w.FilePatterns = append(w.FilePatterns, re)
		}
		cfg.Watchers = append(cfg.Watchers, w)
	}

	return cfg, nil
}

// AllWebhooks returns the deduplicated union of every watcher's webhooks in
// first-seen order. Lifecycle broadcasts go to this set.
func (c *Config) AllWebhooks() []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range c.Watchers {
		for _, hook := range w.Webhooks {
			if seen[hook] {
				continue
			}
			seen[hook] = true
			out = append(out, hook)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

// internal/config/config.go
//
// This package handles configuration and the .plandesk directory structure.
// Every directory plandesk runs from gets a .plandesk/ folder holding the
// backend settings and the operation journal.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory we create in each project
	Dir = ".plandesk"

	defaultBaseURL  = "http://127.0.0.1:8000/api/admin/plan/"
	defaultTimeout  = 30 * time.Second
	defaultCurrency = "₹"
	defaultLogLevel = "info"
	defaultStubHost = "127.0.0.1"
	defaultStubPort = 8000
)

const defaultProjectConfigYAML = `# plandesk configuration
version: 1

# Admin plan resource. Requests go to base_url and base_url/{id}/.
api:
  base_url: http://127.0.0.1:8000/api/admin/plan/
  timeout: 30s

ui:
  currency: "₹"

log:
  level: info

# Local stub backend started by "plandesk stub".
stub:
  host: 127.0.0.1
  port: 8000
`

// APIConfig points at the plan REST resource.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout,omitempty"`
}

// UIConfig tunes the table rendering.
type UIConfig struct {
	Currency string `yaml:"currency,omitempty"`
}

// LogConfig controls command-line logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// StubConfig configures the local stub backend.
type StubConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// ProjectConfig models .plandesk/config.yaml.
type ProjectConfig struct {
	Version int        `yaml:"version"`
	API     APIConfig  `yaml:"api"`
	UI      UIConfig   `yaml:"ui"`
	Log     LogConfig  `yaml:"log"`
	Stub    StubConfig `yaml:"stub"`
}

// Config holds the runtime configuration for plandesk.
type Config struct {
	// ProjectDir is the directory plandesk was started from
	ProjectDir string

	// DataDir is ProjectDir/.plandesk
	DataDir string

	Project ProjectConfig

	timeout time.Duration
}

// InitDir creates the .plandesk directory structure in the given project directory.
//
// Structure created:
// .plandesk/
// ├── config.yaml   <- backend and UI settings
// └── logs/         <- operation journal
func InitDir(projectDir string) error {
	dataDir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(filepath.Join(dataDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(dataDir, "config.yaml"))
}

// NewConfig loads .plandesk/config.yaml (defaults when absent) and applies
// PLANDESK_* environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		DataDir:    filepath.Join(projectDir, Dir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// JournalPath is where operation results are appended.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "journal.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.DataDir, "config.yaml")
}

// BaseURL returns the plan collection URL.
func (c *Config) BaseURL() string {
	return c.Project.API.BaseURL
}

// Timeout returns the per-request deadline.
func (c *Config) Timeout() time.Duration {
	if c.timeout <= 0 {
		return defaultTimeout
	}
	return c.timeout
}

// Currency is the symbol shown in the price column header.
func (c *Config) Currency() string {
	return c.Project.UI.Currency
}

// LogLevel returns the configured level name.
func (c *Config) LogLevel() string {
	return c.Project.Log.Level
}

// OverrideBaseURL points this run at another backend without persisting it.
func (c *Config) OverrideBaseURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	prev := c.Project.API.BaseURL
	c.Project.API.BaseURL = raw
	if err := c.finalize(); err != nil {
		c.Project.API.BaseURL = prev
		return err
	}
	return nil
}

// OverrideTimeout changes the request deadline for this run.
func (c *Config) OverrideTimeout(d time.Duration) error {
	if d == 0 {
		return nil
	}
	if d < 0 {
		return fmt.Errorf("config: timeout must be positive")
	}
	c.timeout = d
	c.Project.API.Timeout = d.String()
	return nil
}

// SetBaseURL updates the backend URL and persists it to .plandesk/config.yaml.
func (c *Config) SetBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("config: base url is required")
	}
	if err := c.OverrideBaseURL(raw); err != nil {
		return err
	}
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Project = parsed
	return nil
}

func (c *Config) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv("PLANDESK_API_URL")); value != "" {
		c.Project.API.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("PLANDESK_TIMEOUT")); value != "" {
		c.Project.API.Timeout = value
	}
	if value := strings.TrimSpace(os.Getenv("PLANDESK_LOG_LEVEL")); value != "" {
		c.Project.Log.Level = value
	}
	if value := strings.TrimSpace(os.Getenv("PLANDESK_STUB_PORT")); value != "" {
		if port, err := strconv.Atoi(value); err == nil {
			c.Project.Stub.Port = port
		}
	}
}

func (c *Config) finalize() error {
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	timeout, _ := time.ParseDuration(c.Project.API.Timeout)
	c.timeout = timeout
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		API:     APIConfig{BaseURL: defaultBaseURL, Timeout: defaultTimeout.String()},
		UI:      UIConfig{Currency: defaultCurrency},
		Log:     LogConfig{Level: defaultLogLevel},
		Stub:    StubConfig{Host: defaultStubHost, Port: defaultStubPort},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.API.BaseURL) == "" {
		pc.API.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(pc.API.Timeout) == "" {
		pc.API.Timeout = defaultTimeout.String()
	}
	if pc.UI.Currency == "" {
		pc.UI.Currency = defaultCurrency
	}
	if strings.TrimSpace(pc.Log.Level) == "" {
		pc.Log.Level = defaultLogLevel
	}
	if strings.TrimSpace(pc.Stub.Host) == "" {
		pc.Stub.Host = defaultStubHost
	}
	if pc.Stub.Port == 0 {
		pc.Stub.Port = defaultStubPort
	}
}

func (pc *ProjectConfig) normalize() {
	base := strings.TrimSpace(pc.API.BaseURL)
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	pc.API.BaseURL = base
	pc.API.Timeout = strings.TrimSpace(pc.API.Timeout)
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	pc.Stub.Host = strings.TrimSpace(pc.Stub.Host)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	u, err := url.Parse(pc.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL")
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url has no host")
	}
	timeout, err := time.ParseDuration(pc.API.Timeout)
	if err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	switch pc.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if pc.Stub.Port < 0 || pc.Stub.Port > 65535 {
		return fmt.Errorf("stub.port must be between 0 and 65535")
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	if err := c.finalize(); err != nil {
		return err
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure %s dir: %w", Dir, err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}

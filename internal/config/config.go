// internal/config/config.go
//
// This package handles configuration and the .audit directory structure.
// Every project that runs an audit gets a .audit/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AuditDir is the name of the directory we create in each project
	AuditDir = ".audit"

	defaultModel        = "gpt-4o-mini"
	defaultBaseURL      = "https://api.openai.com/v1"
	defaultAPIKeyEnv    = "OPENAI_API_KEY"
	defaultTemperature  = 0.3
	defaultCacheTTL     = 24
	defaultMaxProbes    = 5
	defaultHourlyRate   = 75.0
)

const defaultProjectConfigYAML = `# tech stack audit configuration
version: 1

# Chat-completion endpoint used by the audit agents. The API key is read
# from the environment variable named by api_key_env.
llm:
  base_url: https://api.openai.com/v1
  model: gpt-4o-mini
  temperature: 0.3
  api_key_env: OPENAI_API_KEY

# Optional agents. The research agent adds a changelog-research pass per
# tool; the report writer polishes the final document.
agents:
  enable_research: false
  enable_report_writer: true

discovery:
  cache_ttl_hours: 24
  max_concurrent_probes: 5

# Tool name aliases merged over the built-in table. Keys are matched
# case-insensitively.
aliases:
  # ms teams: Microsoft Teams

report:
  hourly_rate: 75
`

// LLMConfig describes the chat-completion endpoint the agents talk to.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	APIKeyEnv   string  `yaml:"api_key_env"`
}

// AgentConfig toggles the optional pipeline agents.
type AgentConfig struct {
	EnableResearch     bool `yaml:"enable_research"`
	EnableReportWriter bool `yaml:"enable_report_writer"`
}

// DiscoveryConfig tunes the discovery probes and their cache.
type DiscoveryConfig struct {
	CacheTTLHours       int `yaml:"cache_ttl_hours"`
	MaxConcurrentProbes int `yaml:"max_concurrent_probes"`
}

// ReportConfig holds the knobs for ROI math in the report.
type ReportConfig struct {
	HourlyRate float64 `yaml:"hourly_rate"`
}

// ProjectConfig models .audit/config.yaml.
type ProjectConfig struct {
	Version   int               `yaml:"version"`
	LLM       LLMConfig         `yaml:"llm"`
	Agents    AgentConfig       `yaml:"agents"`
	Discovery DiscoveryConfig   `yaml:"discovery"`
	Aliases   map[string]string `yaml:"aliases,omitempty"`
	Report    ReportConfig      `yaml:"report"`
}

// Config holds the runtime configuration for an audit run.
type Config struct {
	// ProjectDir is the directory where the user ran `audit` from
	ProjectDir string

	// AuditProjectDir is ProjectDir/.audit
	AuditProjectDir string

	Project ProjectConfig
}

// InitAuditDir creates the .audit directory structure in the given project
// directory. This is called when the CLI or dashboard starts up.
//
/// Structure created:
// .audit/
// ├── sessions/   <- One JSON file per audit session
// ├── cache/      <- Discovery probe cache
// ├── output/     <- Generated Markdown reports
// └── logs/       <- Session logbooks
func InitAuditDir(projectDir string) error {
	auditDir := filepath.Join(projectDir, AuditDir)

	dirs := []string{
		filepath.Join(auditDir, "sessions"),
		filepath.Join(auditDir, "cache"),
		filepath.Join(auditDir, "output"),
		filepath.Join(auditDir, "logs"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if err := ensureProjectConfig(filepath.Join(auditDir, "config.yaml")); err != nil {
		return err
	}

	return nil
}

// NewConfig creates a new Config instance populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:      projectDir,
		AuditProjectDir: filepath.Join(projectDir, AuditDir),
		Project:         defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SessionsDir returns the path to the sessions directory
func (c *Config) SessionsDir() string {
	return filepath.Join(c.AuditProjectDir, "sessions")
}

// CacheDir returns the path to the discovery cache directory
func (c *Config) CacheDir() string {
	return filepath.Join(c.AuditProjectDir, "cache")
}

// OutputDir returns the path where generated reports are written
func (c *Config) OutputDir() string {
	return filepath.Join(c.AuditProjectDir, "output")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.AuditProjectDir, "logs")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.AuditProjectDir, "config.yaml")
}

// APIKey resolves the LLM API key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.Project.LLM.APIKeyEnv)
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

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		LLM: LLMConfig{
			BaseURL:     defaultBaseURL,
			Model:       defaultModel,
			Temperature: defaultTemperature,
			APIKeyEnv:   defaultAPIKeyEnv,
		},
		Agents: AgentConfig{
			EnableReportWriter: true,
		},
		Discovery: DiscoveryConfig{
			CacheTTLHours:       defaultCacheTTL,
			MaxConcurrentProbes: defaultMaxProbes,
		},
		Report: ReportConfig{
			HourlyRate: defaultHourlyRate,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.LLM.BaseURL == "" {
		pc.LLM.BaseURL = defaultBaseURL
	}
	if pc.LLM.Model == "" {
		pc.LLM.Model = defaultModel
	}
	if pc.LLM.Temperature == 0 {
		pc.LLM.Temperature = defaultTemperature
	}
	if pc.LLM.APIKeyEnv == "" {
		pc.LLM.APIKeyEnv = defaultAPIKeyEnv
	}
	if pc.Discovery.CacheTTLHours == 0 {
		pc.Discovery.CacheTTLHours = defaultCacheTTL
	}
	if pc.Discovery.MaxConcurrentProbes == 0 {
		pc.Discovery.MaxConcurrentProbes = defaultMaxProbes
	}
	if pc.Report.HourlyRate == 0 {
		pc.Report.HourlyRate = defaultHourlyRate
	}
}

func (pc *ProjectConfig) normalize() {
	pc.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(pc.LLM.BaseURL), "/")
	pc.LLM.Model = strings.TrimSpace(pc.LLM.Model)
	pc.LLM.APIKeyEnv = strings.TrimSpace(pc.LLM.APIKeyEnv)
	if len(pc.Aliases) > 0 {
		normalized := make(map[string]string, len(pc.Aliases))
		for alias, canonical := range pc.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			canonical = strings.TrimSpace(canonical)
			if alias == "" || canonical == "" {
				continue
			}
			normalized[alias] = canonical
		}
		pc.Aliases = normalized
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.LLM.Temperature < 0 || pc.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if pc.Discovery.CacheTTLHours < 0 {
		return fmt.Errorf("discovery.cache_ttl_hours must not be negative")
	}
	if pc.Discovery.MaxConcurrentProbes < 1 {
		return fmt.Errorf("discovery.max_concurrent_probes must be >= 1")
	}
	if pc.Report.HourlyRate <= 0 {
		return fmt.Errorf("report.hourly_rate must be positive")
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

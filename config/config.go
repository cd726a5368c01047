package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. GITHAR_TOKEN.
const EnvPrefix = "githar"

// Config is the root configuration structure.
type Config struct {
	API     APIConfig    `json:"api" yaml:"api"`
	Filters FilterConfig `json:"filters" yaml:"filters"`
	Output  OutputConfig `json:"output" yaml:"output"`
	Skip    []string     `json:"skip" yaml:"skip"` // Glob patterns matched against commit subjects
}

// APIConfig holds remote API settings.
type APIConfig struct {
	BaseURL string `json:"baseUrl" yaml:"baseUrl"` // Default: https://api.github.com/
	Token   string `json:"token" yaml:"token"`
}

// FilterConfig holds default commit filters.
type FilterConfig struct {
	Author string `json:"author" yaml:"author"`
	Since  string `json:"since" yaml:"since"` // YYYY-MM-DD
	Until  string `json:"until" yaml:"until"` // YYYY-MM-DD
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Format string `json:"format" yaml:"format"` // text or markdown
	Path   string `json:"path" yaml:"path"`     // Default: stdout
}

// envOverrides is filled from GITHAR_* variables; GITHUB_TOKEN is honoured
// when GITHAR_GITHUB_TOKEN is not set.
type envOverrides struct {
	BaseURL     string `split_words:"true"`
	Token       string
	GitHubToken string `envconfig:"GITHUB_TOKEN"`
	Format      string
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://api.github.com/",
		},
		Output: OutputConfig{
			Format: "text",
		},
		Skip: []string{},
	}
}

// LoadConfig loads configuration from a file, merging with defaults, then
// applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		if err := readConfigFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile returns the first existing default location, or "".
func findConfigFile() string {
	names := []string{".githar.json", ".githar.yaml", ".githar.yml"}

	candidates := append([]string{}, names...)
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		for _, name := range names {
			candidates = append(candidates, filepath.Join(home, name))
		}
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func readConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.BaseURL != "" {
		cfg.API.BaseURL = env.BaseURL
	}
	switch {
	case env.Token != "":
		cfg.API.Token = env.Token
	case env.GitHubToken != "" && cfg.API.Token == "":
		cfg.API.Token = env.GitHubToken
	}
	if env.Format != "" {
		cfg.Output.Format = env.Format
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveConfig saves configuration to a file, as YAML when the extension says so.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

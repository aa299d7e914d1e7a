package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for the scanner
type Config struct {
	// JSR305 holds policy tokens, the same ones accepted by --jsr305.
	JSR305 []string `yaml:"jsr305" json:"jsr305" toml:"jsr305"`

	// Analyzer configuration
	Analyzers struct {
		LowPriority AnalyzerConfig `yaml:"lowpriority" json:"lowpriority" toml:"lowpriority"`
		Nullability AnalyzerConfig `yaml:"nullability" json:"nullability" toml:"nullability"`
	} `yaml:"analyzers" json:"analyzers" toml:"analyzers"`

	// Path configuration
	Paths struct {
		Exclude []string `yaml:"exclude" json:"exclude" toml:"exclude"` // Paths to exclude from scanning
	} `yaml:"paths" json:"paths" toml:"paths"`

	// Output configuration
	Output struct {
		Format      string `yaml:"format" json:"format" toml:"format"`                   // "text", "compact" or "json"
		MaxFindings int    `yaml:"max_findings" json:"max_findings" toml:"max_findings"` // 0 = unlimited
	} `yaml:"output" json:"output" toml:"output"`

	Cache struct {
		Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`
	} `yaml:"cache" json:"cache" toml:"cache"`
}

// AnalyzerConfig represents configuration for a single analyzer
type AnalyzerConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty" toml:"exclude,omitempty"` // Paths this analyzer skips
}

const (
	formatText    = "text"
	formatCompact = "compact"
	formatJSON    = "json"

	ignoreFileName = ".nullguardignore"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	config := &Config{}

	config.Analyzers.LowPriority.Enabled = true
	config.Analyzers.Nullability.Enabled = true

	config.Paths.Exclude = []string{
		"build",
		".gradle",
		".git",
		".idea",
		"node_modules",
		"out",
	}

	config.Output.Format = formatText
	config.Output.MaxFindings = 0

	return config
}

// findConfigPath searches for a config file in common locations
func findConfigPath() string {
	locations := []string{
		".nullguard.yaml",
		".nullguard.yml",
		".nullguard.json",
		".nullguard.toml",
		"nullguard.yaml",
		"nullguard.yml",
		"nullguard.json",
		"nullguard.toml",
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}

	for _, loc := range locations {
		configPath := filepath.Join(home, ".config", "nullguard", loc)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}
	return ""
}

// LoadConfig loads configuration from a file or returns default
func LoadConfig(path string) (*Config, error) {
	resolvedPath := resolveConfigPath(path)
	if resolvedPath == "" {
		config := DefaultConfig()
		mergeIgnorePatterns(config, ignoreFileName)
		return config, nil
	}

	file, err := os.Open(resolvedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	config, err := decodeConfigFile(file, resolvedPath)
	if err != nil {
		return nil, err
	}

	mergeIgnorePatterns(config, ignoreFileName)
	return config, nil
}

func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	return findConfigPath()
}

func decodeConfigFile(r io.ReadSeeker, path string) (*Config, error) {
	config := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		if err := json.NewDecoder(r).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML config: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".toml":
		if _, err := toml.NewDecoder(r).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		if err := tryJSONThenYAML(r, config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func tryJSONThenYAML(r io.ReadSeeker, config *Config) error {
	if err := json.NewDecoder(r).Decode(config); err == nil {
		return nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file position: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read config for YAML parsing: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config (tried JSON and YAML): %w", err)
	}
	return nil
}

func mergeIgnorePatterns(cfg *Config, ignorePath string) {
	patterns, err := loadIgnoreFile(ignorePath)
	if err != nil {
		return
	}
	cfg.Paths.Exclude = append(cfg.Paths.Exclude, patterns...)
}

// loadIgnoreFile loads patterns from an ignored file like .gitignore
func loadIgnoreFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	lines, err := readLines(file)
	if err != nil {
		return nil, err
	}

	return parseIgnoreLines(lines), nil
}

func readLines(r io.Reader) ([]string, error) {
	const maxLineSize = 1024 * 1024
	scanner := bufio.NewScanner(r)
	buf := make([]byte, maxLineSize)
	scanner.Buffer(buf, maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseIgnoreLines(lines []string) []string {
	patterns := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimSuffix(line, "/")
		line = strings.TrimSuffix(line, "*")
		line = strings.TrimPrefix(line, "**/")

		patterns = append(patterns, line)
	}

	return patterns
}

// GetAnalyzerConfig returns config for a specific analyzer
func (c *Config) GetAnalyzerConfig(analyzerName string) AnalyzerConfig {
	analyzerConfigMap := map[string]AnalyzerConfig{
		"lowpriority": c.Analyzers.LowPriority,
		"nullability": c.Analyzers.Nullability,
	}

	if cfg, ok := analyzerConfigMap[strings.ToLower(analyzerName)]; ok {
		return cfg
	}
	return AnalyzerConfig{Enabled: true}
}

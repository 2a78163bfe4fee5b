package epubcfi

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/shibukawa/epubcfi/parser"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// DefaultConfigFile is the configuration file looked up by the CLI.
const DefaultConfigFile = "epubcfi.yaml"

// Config represents the epubcfi configuration
type Config struct {
	Parser ParserConfig `yaml:"parser"`
	Output OutputConfig `yaml:"output"`
}

// ParserConfig holds the grammar limits and switches
type ParserConfig struct {
	MaxStepSize     int    `yaml:"max_step_size"`
	MaxRedirections int    `yaml:"max_redirections"`
	RequireSteps    bool   `yaml:"require_steps"`
	AssertionValues string `yaml:"assertion_values"`
	AllowRange      *bool  `yaml:"allow_range"` // Pointer to distinguish between unset and false
}

// RangesAllowed returns true unless allow_range: false is set
func (p *ParserConfig) RangesAllowed() bool {
	return p.AllowRange == nil || *p.AllowRange
}

// OutputConfig represents CLI output settings
type OutputConfig struct {
	Format string `yaml:"format"`
}

// Output formats understood by the CLI
const (
	FormatText = "text"
	FormatTree = "tree"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

var validFormats = map[string]bool{
	FormatText: true,
	FormatTree: true,
	FormatYAML: true,
	FormatJSON: true,
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data, applies defaults and validates it.
func ParseConfig(data []byte) (*Config, error) {
	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Expand environment variables
	expandConfigEnvVars(&config)

	// Validate the configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if config.Parser.MaxStepSize < 0 {
		return fmt.Errorf("%w: parser.max_step_size must be non-negative, got %d", ErrConfigValidation, config.Parser.MaxStepSize)
	}

	if config.Parser.MaxRedirections < 0 {
		return fmt.Errorf("%w: parser.max_redirections must be non-negative, got %d", ErrConfigValidation, config.Parser.MaxRedirections)
	}

	switch parser.AssertionValues(config.Parser.AssertionValues) {
	case "", parser.AlphanumericValues, parser.DigitValues:
	default:
		return fmt.Errorf("%w: parser.assertion_values '%s' is invalid: must be one of alphanumeric, digits", ErrConfigValidation, config.Parser.AssertionValues)
	}

	if config.Output.Format != "" && !validFormats[config.Output.Format] {
		return fmt.Errorf("%w: output.format '%s' is invalid: must be one of text, tree, yaml, json", ErrConfigValidation, config.Output.Format)
	}

	return nil
}

// boolPtr returns a pointer to a bool value
func boolPtr(b bool) *bool {
	return &b
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	defaults := parser.DefaultOptions()

	return &Config{
		Parser: ParserConfig{
			MaxStepSize:     defaults.MaxStepSize,
			MaxRedirections: defaults.MaxRedirections,
			RequireSteps:    defaults.RequireSteps,
			AssertionValues: string(defaults.AssertionValues),
			AllowRange:      boolPtr(defaults.AllowRange),
		},
		Output: OutputConfig{
			Format: FormatText,
		},
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if config.Parser.MaxStepSize == 0 {
		config.Parser.MaxStepSize = defaults.Parser.MaxStepSize
	}

	if config.Parser.MaxRedirections == 0 {
		config.Parser.MaxRedirections = defaults.Parser.MaxRedirections
	}

	if config.Parser.AssertionValues == "" {
		config.Parser.AssertionValues = defaults.Parser.AssertionValues
	}

	if config.Parser.AllowRange == nil {
		config.Parser.AllowRange = defaults.Parser.AllowRange
	}

	if config.Output.Format == "" {
		config.Output.Format = defaults.Output.Format
	}
}

// ParserOptions converts the parser section into grammar options.
func (c *Config) ParserOptions() parser.Options {
	opts := parser.DefaultOptions()
	if c == nil {
		return opts
	}

	if c.Parser.MaxStepSize > 0 {
		opts.MaxStepSize = c.Parser.MaxStepSize
	}

	if c.Parser.MaxRedirections > 0 {
		opts.MaxRedirections = c.Parser.MaxRedirections
	}

	if c.Parser.AssertionValues != "" {
		opts.AssertionValues = parser.AssertionValues(c.Parser.AssertionValues)
	}

	opts.RequireSteps = c.Parser.RequireSteps
	opts.AllowRange = c.Parser.RangesAllowed()

	return opts
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in string settings
func expandConfigEnvVars(config *Config) {
	config.Parser.AssertionValues = expandEnvVars(config.Parser.AssertionValues)
	config.Output.Format = expandEnvVars(config.Output.Format)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/coverwallet/httplog/internal/httplog"
	"github.com/coverwallet/httplog/internal/logger"
	transport "github.com/coverwallet/httplog/internal/transport/http"
)

// Config holds all configuration settings.
type Config struct {
	// LogLevel specifies the verbosity of the process logger.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// Enabled is the master switch of request logging.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// LogConnect toggles the "Connecting:" line.
	LogConnect bool `mapstructure:"log_connect" yaml:"log_connect"`
	// LogRequest toggles the "Sending:" line.
	LogRequest bool `mapstructure:"log_request" yaml:"log_request"`
	// LogHeaders toggles request and response header lines.
	LogHeaders bool `mapstructure:"log_headers" yaml:"log_headers"`
	// LogData toggles the request body line.
	LogData bool `mapstructure:"log_data" yaml:"log_data"`
	// LogStatus toggles the "Status:" line.
	LogStatus bool `mapstructure:"log_status" yaml:"log_status"`
	// LogBenchmark toggles the "Benchmark:" line.
	LogBenchmark bool `mapstructure:"log_benchmark" yaml:"log_benchmark"`
	// LogResponse toggles the response body section.
	LogResponse bool `mapstructure:"log_response" yaml:"log_response"`
	// CompactLog renders one summary line per exchange.
	CompactLog bool `mapstructure:"compact_log" yaml:"compact_log"`
	// JSONLog renders one JSON object per exchange. It wins over CompactLog.
	JSONLog bool `mapstructure:"json_log" yaml:"json_log"`
	// Severity is the level exchanges are logged at (debug, info, warn or error).
	Severity string `mapstructure:"severity" yaml:"severity"`
	// Prefix is prepended to every line.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	// PrefixTimeFormat, when set, prepends the current time in this Go layout to Prefix.
	PrefixTimeFormat string `mapstructure:"prefix_time_format" yaml:"prefix_time_format"`
	// PrefixResponseLines logs every response body line separately.
	PrefixResponseLines bool `mapstructure:"prefix_response_lines" yaml:"prefix_response_lines"`
	// PrefixLineNumbers numbers the separately logged body lines.
	PrefixLineNumbers bool `mapstructure:"prefix_line_numbers" yaml:"prefix_line_numbers"`
	// Color is the foreground color name of every line.
	Color string `mapstructure:"color" yaml:"color"`
	// Background is the background color name of every line.
	Background string `mapstructure:"background" yaml:"background"`
	// URLWhitelistPattern only logs URLs matching this regular expression.
	URLWhitelistPattern string `mapstructure:"url_whitelist_pattern" yaml:"url_whitelist_pattern"`
	// URLBlacklistPattern never logs URLs matching this regular expression.
	URLBlacklistPattern string `mapstructure:"url_blacklist_pattern" yaml:"url_blacklist_pattern"`
	// FilterParameters lists parameter and header names whose values are masked.
	FilterParameters []string `mapstructure:"filter_parameters" yaml:"filter_parameters"`
	// MaxBodyLength truncates logged bodies (e.g., "64KB"). Empty or "0" disables truncation.
	MaxBodyLength string `mapstructure:"max_body_length" yaml:"max_body_length"`
	// Timeout limits each request made by the CLI (e.g., "30s").
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
	// UserAgent is sent by the CLI when a request sets none.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level `mapstructure:"-" yaml:"-"`
	// ParsedSeverity is the parsed level exchanges are logged at.
	ParsedSeverity zapcore.Level `mapstructure:"-" yaml:"-"`
	// ParsedColor is the validated line color.
	ParsedColor httplog.Color `mapstructure:"-" yaml:"-"`
	// ParsedURLWhitelist is the compiled whitelist pattern.
	ParsedURLWhitelist *regexp.Regexp `mapstructure:"-" yaml:"-"`
	// ParsedURLBlacklist is the compiled blacklist pattern.
	ParsedURLBlacklist *regexp.Regexp `mapstructure:"-" yaml:"-"`
	// ParsedMaxBodyLength is the parsed body limit in bytes.
	ParsedMaxBodyLength int `mapstructure:"-" yaml:"-"`
	// ParsedTimeout is the parsed request timeout.
	ParsedTimeout time.Duration `mapstructure:"-" yaml:"-"`
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".httplog.yaml"

	// DefaultFilePermissions is the mode of configuration files created by WriteDefaultConfig.
	DefaultFilePermissions = 0o644

	// EnvPrefix prefixes environment variables overriding file settings, e.g. HTTPLOG_JSON_LOG.
	EnvPrefix = "HTTPLOG"

	defaultConfigHeader = "httplog configuration. Environment variables prefixed with " +
		EnvPrefix + "_ override these values."
)

// Static error definitions for better error handling.
var (
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnsupportedSeverity indicates that exchanges cannot be logged at the given level.
	ErrUnsupportedSeverity = errors.New("severity must be one of debug, info, warn, error")
	// ErrInvalidURLPattern indicates that a URL filter pattern does not compile.
	ErrInvalidURLPattern = errors.New("invalid url pattern")
	// ErrInvalidTimeout indicates that the request timeout is invalid.
	ErrInvalidTimeout = errors.New("timeout must be positive")
)

// DefaultConfig returns the settings used when no file or environment overrides them.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "debug",
		Enabled:          true,
		LogConnect:       true,
		LogRequest:       true,
		LogData:          true,
		LogStatus:        true,
		LogBenchmark:     true,
		LogResponse:      true,
		Severity:         "debug",
		Prefix:           httplog.DefaultPrefix,
		FilterParameters: []string{},
		MaxBodyLength:    "0",
		Timeout:          transport.DefaultTimeout.String(),
		UserAgent:        transport.DefaultUserAgent,
	}
}

// LoadConfig loads configuration settings from a YAML file and the environment.
// An empty filename reads DefaultConfigFilename if it exists; a file named
// explicitly must exist.
func LoadConfig(configFilename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	explicit := configFilename != ""
	if !explicit {
		configFilename = DefaultConfigFilename
	}

	v.SetConfigFile(configFilename)

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("enabled", defaults.Enabled)
	v.SetDefault("log_connect", defaults.LogConnect)
	v.SetDefault("log_request", defaults.LogRequest)
	v.SetDefault("log_headers", defaults.LogHeaders)
	v.SetDefault("log_data", defaults.LogData)
	v.SetDefault("log_status", defaults.LogStatus)
	v.SetDefault("log_benchmark", defaults.LogBenchmark)
	v.SetDefault("log_response", defaults.LogResponse)
	v.SetDefault("compact_log", defaults.CompactLog)
	v.SetDefault("json_log", defaults.JSONLog)
	v.SetDefault("severity", defaults.Severity)
	v.SetDefault("prefix", defaults.Prefix)
	v.SetDefault("prefix_time_format", defaults.PrefixTimeFormat)
	v.SetDefault("prefix_response_lines", defaults.PrefixResponseLines)
	v.SetDefault("prefix_line_numbers", defaults.PrefixLineNumbers)
	v.SetDefault("color", defaults.Color)
	v.SetDefault("background", defaults.Background)
	v.SetDefault("url_whitelist_pattern", defaults.URLWhitelistPattern)
	v.SetDefault("url_blacklist_pattern", defaults.URLBlacklistPattern)
	v.SetDefault("filter_parameters", defaults.FilterParameters)
	v.SetDefault("max_body_length", defaults.MaxBodyLength)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("user_agent", defaults.UserAgent)
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:cyclop // Validation functions naturally have high complexity due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	parsedSeverity, isSeverityCorrect := logger.ParseLogLevel(cfg.Severity)
	if !isSeverityCorrect || parsedSeverity < zapcore.DebugLevel || parsedSeverity > zapcore.ErrorLevel {
		return fmt.Errorf("%w: '%s'", ErrUnsupportedSeverity, cfg.Severity)
	}

	cfg.ParsedSeverity = parsedSeverity

	cfg.ParsedColor, err = httplog.ParseColor(cfg.Color, cfg.Background)
	if err != nil {
		return fmt.Errorf("failed to parse color: %w", err)
	}

	cfg.ParsedURLWhitelist, err = compilePattern("url_whitelist_pattern", cfg.URLWhitelistPattern)
	if err != nil {
		return err
	}

	cfg.ParsedURLBlacklist, err = compilePattern("url_blacklist_pattern", cfg.URLBlacklistPattern)
	if err != nil {
		return err
	}

	cfg.FilterParameters = normalizeNames(cfg.FilterParameters)

	maxBodyLength := strings.TrimSpace(cfg.MaxBodyLength)
	cfg.ParsedMaxBodyLength = 0

	if maxBodyLength != "" && maxBodyLength != "0" {
		parsedMaxBodyLength, parseErr := humanize.ParseBytes(maxBodyLength)
		if parseErr != nil {
			return fmt.Errorf("failed to parse max body length: %w", parseErr)
		}

		cfg.ParsedMaxBodyLength = safeUint64ToInt(parsedMaxBodyLength)
	}

	cfg.ParsedTimeout, err = time.ParseDuration(strings.TrimSpace(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("failed to parse timeout: %w", err)
	}

	if cfg.ParsedTimeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// ToPipeline converts validated settings into a pipeline configuration.
func (cfg *Config) ToPipeline() httplog.Configuration {
	pipeline := httplog.DefaultConfiguration()

	pipeline.Enabled = cfg.Enabled
	pipeline.LogConnect = cfg.LogConnect
	pipeline.LogRequest = cfg.LogRequest
	pipeline.LogHeaders = cfg.LogHeaders
	pipeline.LogData = cfg.LogData
	pipeline.LogStatus = cfg.LogStatus
	pipeline.LogBenchmark = cfg.LogBenchmark
	pipeline.LogResponse = cfg.LogResponse
	pipeline.CompactLog = cfg.CompactLog
	pipeline.JSONLog = cfg.JSONLog
	pipeline.Severity = cfg.ParsedSeverity
	pipeline.Prefix = cfg.prefix()
	pipeline.PrefixResponseLines = cfg.PrefixResponseLines
	pipeline.PrefixLineNumbers = cfg.PrefixLineNumbers
	pipeline.Color = cfg.ParsedColor
	pipeline.URLWhitelistPattern = cfg.ParsedURLWhitelist
	pipeline.URLBlacklistPattern = cfg.ParsedURLBlacklist
	pipeline.FilterParameters = cfg.FilterParameters
	pipeline.MaxBodyLength = cfg.ParsedMaxBodyLength

	return pipeline
}

func (cfg *Config) prefix() httplog.Prefix {
	if cfg.PrefixTimeFormat == "" {
		return httplog.LiteralPrefix(cfg.Prefix)
	}

	layout, literal := cfg.PrefixTimeFormat, cfg.Prefix

	return httplog.DynamicPrefix(func() string {
		return "[" + time.Now().Format(layout) + "] " + literal
	})
}

// WriteDefaultConfig creates a configuration file holding the default settings.
// It never overwrites an existing file.
func WriteDefaultConfig(configFilename string) error {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	var node yaml.Node
	if err := node.Encode(DefaultConfig()); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	node.HeadComment = defaultConfigHeader

	content, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	//nolint:gosec // The path is chosen by the user running the command.
	file, err := os.OpenFile(configFilename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if _, err = file.Write(content); err != nil {
		_ = file.Close()

		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func compilePattern(key, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil //nolint:nilnil // An empty pattern disables the rule.
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidURLPattern, key, err)
	}

	return compiled, nil
}

// normalizeNames trims names and drops empty ones. It returns nil when nothing is left.
func normalizeNames(names []string) []string {
	var result []string

	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			result = append(result, name)
		}
	}

	return result
}

// safeUint64ToInt converts a byte count, saturating at math.MaxInt.
func safeUint64ToInt(value uint64) int {
	if value > math.MaxInt {
		return math.MaxInt
	}

	return int(value)
}

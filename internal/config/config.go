// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults of the original deployment, used when neither the config file nor
// the environment provides a value.
const (
	DefaultAPIKey      = "local_secret_api_key"
	DefaultDatabaseURL = "sqlite:///./local_database.db"
	DefaultListenAddr  = "0.0.0.0:5000"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Server() ServerConfig
	Auth() AuthConfig
	Database() DatabaseConfig
	Lean() LeanConfig
	Tracing() TracingConfig
	Debug() bool

	// Server Setters
	SetServerListenAddr(addr string)
	SetServerStaticDir(dir string)
}

// Config holds the entire application configuration. It is built once at
// startup and handed to the components that need it.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	ServerCfg   ServerConfig   `mapstructure:"server" yaml:"server"`
	AuthCfg     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	DatabaseCfg DatabaseConfig `mapstructure:"database" yaml:"database"`
	LeanCfg     LeanConfig     `mapstructure:"lean" yaml:"lean"`
	TracingCfg  TracingConfig  `mapstructure:"tracing" yaml:"tracing"`
	DebugMode   bool           `mapstructure:"debug" yaml:"debug"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Server() ServerConfig     { return c.ServerCfg }
func (c *Config) Auth() AuthConfig         { return c.AuthCfg }
func (c *Config) Database() DatabaseConfig { return c.DatabaseCfg }
func (c *Config) Lean() LeanConfig         { return c.LeanCfg }
func (c *Config) Tracing() TracingConfig   { return c.TracingCfg }
func (c *Config) Debug() bool              { return c.DebugMode }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetServerListenAddr(addr string) { c.ServerCfg.ListenAddr = addr }
func (c *Config) SetServerStaticDir(dir string)   { c.ServerCfg.StaticDir = dir }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ServerConfig configures the HTTP listener and its middleware.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	// StaticDir overrides the embedded web assets when set.
	StaticDir         string        `mapstructure:"static_dir" yaml:"static_dir"`
	RateLimit         float64       `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second on /api, 0 disables
	RateBurst         int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	MaxConnections    int           `mapstructure:"max_connections" yaml:"max_connections"` // 0 means unlimited
	RequestTimeout    time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// AuthConfig holds the shared API key. Enforcement on /api routes is opt-in.
type AuthConfig struct {
	APIKey        string `mapstructure:"api_key" yaml:"api_key"`
	RequireAPIKey bool   `mapstructure:"require_api_key" yaml:"require_api_key"`
	Header        string `mapstructure:"header" yaml:"header"`
}

// MaskedAPIKey returns a loggable form of the API key. The well-known local
// default is shown as-is, anything else is hidden.
func (a AuthConfig) MaskedAPIKey() string {
	if a.APIKey == DefaultAPIKey {
		return a.APIKey
	}
	return "***"
}

// DatabaseConfig holds the database connection details.
type DatabaseConfig struct {
	URL         string        `mapstructure:"url" yaml:"url"`
	PingTimeout time.Duration `mapstructure:"ping_timeout" yaml:"ping_timeout"`
}

// LeanConfig configures the simulated verified-logic step.
type LeanConfig struct {
	Delay time.Duration `mapstructure:"delay" yaml:"delay"`
}

// TracingConfig toggles OpenTelemetry span collection.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "orchestrator")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Server --
	v.SetDefault("server.listen_addr", DefaultListenAddr)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.max_connections", 0)
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// -- Auth --
	v.SetDefault("auth.api_key", DefaultAPIKey)
	v.SetDefault("auth.require_api_key", false)
	v.SetDefault("auth.header", "X-API-Key")

	// -- Database --
	v.SetDefault("database.url", DefaultDatabaseURL)
	v.SetDefault("database.ping_timeout", "2s")

	// -- Lean --
	v.SetDefault("lean.delay", "1s")

	// -- Tracing --
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "orchestrator")

	v.SetDefault("debug", false)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// The original deployment reads these three variables without a prefix.
	// The prefixed form wins when both are set.
	bindings := map[string][]string{
		"auth.api_key": {"ORCHESTRATOR_AUTH_API_KEY", "API_KEY"},
		"database.url": {"ORCHESTRATOR_DATABASE_URL", "DATABASE_URL"},
		"debug":        {"ORCHESTRATOR_DEBUG"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	// DEBUG_MODE keeps its historical meaning: only "true", in any case,
	// enables debug and every other value disables it.
	if legacy := os.Getenv("DEBUG_MODE"); legacy != "" && os.Getenv("ORCHESTRATOR_DEBUG") == "" {
		v.Set("debug", strings.EqualFold(legacy, "true"))
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.DebugMode {
		cfg.LoggerCfg.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.ServerCfg.Validate(); err != nil {
		return fmt.Errorf("server configuration invalid: %w", err)
	}
	if c.AuthCfg.RequireAPIKey && c.AuthCfg.APIKey == "" {
		return errors.New("auth.api_key is required when auth.require_api_key is set")
	}
	if c.AuthCfg.RequireAPIKey && c.AuthCfg.Header == "" {
		return errors.New("auth.header must name the header carrying the API key")
	}
	if c.LeanCfg.Delay < 0 {
		return errors.New("lean.delay must not be negative")
	}
	return nil
}

// Validate checks the ServerConfig settings.
func (s *ServerConfig) Validate() error {
	if s.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if s.RateLimit < 0 {
		return errors.New("rate_limit must not be negative")
	}
	if s.RateLimit > 0 && s.RateBurst <= 0 {
		return errors.New("rate_burst must be positive when rate_limit is set")
	}
	if s.MaxConnections < 0 {
		return errors.New("max_connections must not be negative")
	}
	if s.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be a positive duration")
	}
	return nil
}

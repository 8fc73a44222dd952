// Package config provides configuration management for the Framecraft agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Default values
	DefaultPort     = 8790
	DefaultLogLevel = "info"
	DefaultDataDir  = ".framecraft"

	// Environment variable names
	EnvPort     = "FRAMECRAFT_PORT"
	EnvLogLevel = "FRAMECRAFT_LOG_LEVEL"
	EnvDataDir  = "FRAMECRAFT_DATA_DIR"
	EnvHeadless = "FRAMECRAFT_HEADLESS"
	// EnvAuthToken, when set, is required as a bearer token by the API.
	EnvAuthToken = "FRAMECRAFT_AUTH_TOKEN"

	// Generation environment variable names
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvGeminiModel     = "FRAMECRAFT_GEMINI_MODEL"
	EnvGenerateTimeout = "FRAMECRAFT_GENERATE_TIMEOUT"
	EnvGenerateRPM     = "FRAMECRAFT_GENERATE_RPM"

	// Render environment variable names
	EnvRenderCommand = "FRAMECRAFT_RENDER_COMMAND"
	EnvRenderTimeout = "FRAMECRAFT_RENDER_TIMEOUT"

	EnvCodeCacheTTL = "FRAMECRAFT_CODE_CACHE_TTL"

	// Database filename
	DBFilename = "framecraft.db"

	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultGenerateTimeout = 90   // seconds
	DefaultGenerateRPM     = 10   // requests per minute
	DefaultRenderTimeout   = 1800 // 30 minutes
	DefaultCodeCacheTTL    = 600  // 10 minutes
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	RendersDir() string
	Headless() bool
	AuthToken() string
	GeminiAPIKey() string
	GeminiModel() string
	GenerateTimeout() time.Duration
	GenerateRPM() int
	RenderCommand() string
	RenderTimeout() time.Duration
	CodeCacheTTL() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string
	headless bool

	authToken string

	geminiAPIKey    string
	geminiModel     string
	generateTimeout int
	generateRPM     int

	renderCommand string
	renderTimeout int

	codeCacheTTL int
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		geminiModel:     DefaultGeminiModel,
		generateTimeout: DefaultGenerateTimeout,
		generateRPM:     DefaultGenerateRPM,
		renderTimeout:   DefaultRenderTimeout,
		codeCacheTTL:    DefaultCodeCacheTTL,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	cfg.authToken = strings.TrimSpace(os.Getenv(EnvAuthToken))
	cfg.geminiAPIKey = strings.TrimSpace(os.Getenv(EnvGeminiAPIKey))
	if m := os.Getenv(EnvGeminiModel); m != "" {
		cfg.geminiModel = m
	}
	cfg.renderCommand = strings.TrimSpace(os.Getenv(EnvRenderCommand))

	for _, f := range []struct {
		env string
		dst *int
	}{
		{EnvGenerateTimeout, &cfg.generateTimeout},
		{EnvGenerateRPM, &cfg.generateRPM},
		{EnvRenderTimeout, &cfg.renderTimeout},
		{EnvCodeCacheTTL, &cfg.codeCacheTTL},
	} {
		if err := positiveInt(f.env, f.dst); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// positiveInt overrides *dst from env when set.
func positiveInt(env string, dst *int) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	if n < 1 {
		return fmt.Errorf("invalid %s: must be positive", env)
	}
	*dst = n
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// RendersDir returns where render jobs write props and videos.
func (c *EnvConfig) RendersDir() string {
	return filepath.Join(c.dataDir, "renders")
}

// Headless reports whether the tray UI is disabled.
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// AuthToken returns the API bearer token. Empty disables API auth.
func (c *EnvConfig) AuthToken() string {
	return c.authToken
}

func (c *EnvConfig) GeminiAPIKey() string {
	return c.geminiAPIKey
}

func (c *EnvConfig) GeminiModel() string {
	return c.geminiModel
}

func (c *EnvConfig) GenerateTimeout() time.Duration {
	return time.Duration(c.generateTimeout) * time.Second
}

// GenerateRPM is the allowed generation requests per minute.
func (c *EnvConfig) GenerateRPM() int {
	return c.generateRPM
}

// RenderCommand returns the render command line. Empty disables rendering.
func (c *EnvConfig) RenderCommand() string {
	return c.renderCommand
}

func (c *EnvConfig) RenderTimeout() time.Duration {
	return time.Duration(c.renderTimeout) * time.Second
}

func (c *EnvConfig) CodeCacheTTL() time.Duration {
	return time.Duration(c.codeCacheTTL) * time.Second
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

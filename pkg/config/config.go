package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/helmcode/sitecritic/pkg/analyzer"
	"github.com/helmcode/sitecritic/pkg/formatter"
	"github.com/helmcode/sitecritic/pkg/llm"
	"github.com/helmcode/sitecritic/pkg/screenshot"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"k8s.io/client-go/util/homedir"
)

// EnvPrefix is prepended to every environment override, e.g. SITECRITIC_MODEL.
const EnvPrefix = "SITECRITIC"

const (
	MinTimeout = 30 * time.Second
	MaxTimeout = 60 * time.Second
)

// Config holds everything a run needs besides the target itself. Values come
// from defaults, then the YAML file, then SITECRITIC_* variables; flags are
// applied on top by the commands.
type Config struct {
	Provider          string        `yaml:"provider" envconfig:"PROVIDER"`
	Model             string        `yaml:"model" envconfig:"MODEL"`
	APIKey            string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL           string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	Viewport          string        `yaml:"viewport" envconfig:"VIEWPORT"`
	Output            string        `yaml:"output" envconfig:"OUTPUT"`
	ScreenshotCommand string        `yaml:"screenshot_command" envconfig:"SCREENSHOT_COMMAND"`
	CaptureTimeout    time.Duration `yaml:"capture_timeout" envconfig:"CAPTURE_TIMEOUT"`
	MaxImageWidth     int           `yaml:"max_image_width" envconfig:"MAX_IMAGE_WIDTH"`
}

func Default() Config {
	return Config{
		Provider:          string(llm.ProviderOpenAI),
		Timeout:           MaxTimeout,
		Viewport:          "desktop",
		Output:            "text",
		ScreenshotCommand: screenshot.DefaultCommand,
		CaptureTimeout:    60 * time.Second,
		MaxImageWidth:     screenshot.DefaultMaxWidth,
	}
}

// DefaultPath is ~/.sitecritic/config.yaml.
func DefaultPath() string {
	return filepath.Join(homedir.HomeDir(), ".sitecritic", "config.yaml")
}

// Load resolves the configuration. An empty path means DefaultPath, which
// may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.Debug().Str("path", path).Msg("No config file, using defaults")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s_* environment: %w", EnvPrefix, err)
	}
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("Loaded config file")
	return nil
}

// ResolveAPIKey returns the configured key, falling back to the provider's
// own variable (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY).
func (c *Config) ResolveAPIKey(provider llm.Provider) string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv(provider.APIKeyEnv())
}

func (c *Config) Validate() error {
	if _, err := llm.ParseProvider(c.Provider); err != nil {
		return err
	}
	if !isOutputFormat(c.Output) {
		return fmt.Errorf("invalid output format %q (supported: %s)", c.Output, strings.Join(formatter.Formats, ", "))
	}
	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		return fmt.Errorf("timeout %s out of range %s-%s", c.Timeout, MinTimeout, MaxTimeout)
	}
	if c.CaptureTimeout <= 0 {
		return fmt.Errorf("capture timeout must be positive, got %s", c.CaptureTimeout)
	}
	if c.MaxImageWidth < 0 {
		return fmt.Errorf("max image width must not be negative, got %d", c.MaxImageWidth)
	}
	if _, err := screenshot.ParseViewport(c.Viewport); err != nil {
		return err
	}
	return nil
}

// Masked returns a copy safe to print.
func (c Config) Masked(provider llm.Provider) Config {
	key := c.ResolveAPIKey(provider)
	c.APIKey = ""
	if key != "" {
		c.APIKey = analyzer.MaskCredential(key)
	}
	return c
}

func isOutputFormat(s string) bool {
	for _, f := range formatter.Formats {
		if s == f {
			return true
		}
	}
	return false
}

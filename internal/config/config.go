package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultUserID  = "123"
	DefaultLang    = "en"

	defaultRefreshDelay = 500 * time.Millisecond
	defaultTimeout      = 10 * time.Second
	defaultLogLevel     = "info"
	appDir              = "poshana"
)

type Config struct {
	BaseURL      string        `yaml:"base_url"`
	UserID       string        `yaml:"user_id"`
	Lang         string        `yaml:"lang"`
	DBPath       string        `yaml:"db"`
	LogFile      string        `yaml:"log_file"`
	LogLevel     string        `yaml:"log_level"`
	RefreshDelay time.Duration `yaml:"refresh_delay"`
	Timeout      time.Duration `yaml:"timeout"`
	Recognizer   string        `yaml:"recognizer"`
	Synthesizer  string        `yaml:"synthesizer"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	dir := dataDir()
	return &Config{
		BaseURL:      DefaultBaseURL,
		UserID:       DefaultUserID,
		Lang:         DetectLanguage(os.Getenv("LANG")),
		DBPath:       filepath.Join(dir, "poshana.db"),
		LogFile:      filepath.Join(dir, "poshana.log"),
		LogLevel:     defaultLogLevel,
		RefreshDelay: defaultRefreshDelay,
		Timeout:      defaultTimeout,
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// POSHANA_* environment variables, in increasing priority. A .env file in
// the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.BaseURL = getEnvOrDefault("POSHANA_BASE_URL", c.BaseURL)
	c.UserID = getEnvOrDefault("POSHANA_USER_ID", c.UserID)
	c.Lang = getEnvOrDefault("POSHANA_LANG", c.Lang)
	c.DBPath = getEnvOrDefault("POSHANA_DB", c.DBPath)
	c.LogFile = getEnvOrDefault("POSHANA_LOG_FILE", c.LogFile)
	c.LogLevel = getEnvOrDefault("POSHANA_LOG_LEVEL", c.LogLevel)
	c.RefreshDelay = getEnvAsDurationOrDefault("POSHANA_REFRESH_DELAY", c.RefreshDelay)
	c.Timeout = getEnvAsDurationOrDefault("POSHANA_TIMEOUT", c.Timeout)
	c.Recognizer = getEnvOrDefault("POSHANA_RECOGNIZER", c.Recognizer)
	c.Synthesizer = getEnvOrDefault("POSHANA_SYNTHESIZER", c.Synthesizer)
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base url %q", c.BaseURL)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user id must not be empty")
	}
	if c.RefreshDelay <= 0 {
		return fmt.Errorf("refresh delay must be positive, got %s", c.RefreshDelay)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}

// DetectLanguage reduces a POSIX locale such as "fr_CA.UTF-8" to its base
// language subtag. Unparseable or neutral locales fall back to English.
func DetectLanguage(locale string) string {
	locale, _, _ = strings.Cut(locale, ".")
	locale, _, _ = strings.Cut(locale, "@")
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return DefaultLang
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultLang
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return DefaultLang
	}
	return base.String()
}

func dataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appDir)
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

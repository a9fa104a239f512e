package config

import (
	"fmt"
	"net"
	"os"
	"path"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SLOPESELECTOR_"

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig http server configuration
type WebConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
	BodyLimit    string   `yaml:"body_limit"`
	RateLimit    float64  `yaml:"rate_limit"` // recommendation requests per second per client, 0 disables
	RateBurst    int      `yaml:"rate_burst"`
	// TrustedProxies CIDRs whose X-Forwarded-For is believed, empty uses the socket address
	TrustedProxies []string `yaml:"trusted_proxies"`
	ShutdownTimout int      `yaml:"shutdown_timeout"` // seconds
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	SSLMode  string `yaml:"sslmode"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// GeminiConfig generative AI endpoint configuration
type GeminiConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	ApiKey     string `yaml:"api_key"`
	Timeout    int    `yaml:"timeout"`     // seconds per attempt
	MaxRetries int    `yaml:"max_retries"` // total attempts
	RetryDelay int    `yaml:"retry_delay"` // milliseconds before the second attempt, doubled afterwards
}

// RecommendConfig recommendation history settings
type RecommendConfig struct {
	HistoryRetentionDays int `yaml:"history_retention_days"` // 0 keeps history forever
	MaxPromptLength      int `yaml:"max_prompt_length"`
}

type AppConfig struct {
	System    SysConfig       `yaml:"system"`
	Web       WebConfig       `yaml:"web"`
	Database  DBConfig        `yaml:"database"`
	Logger    LogConfig       `yaml:"logger"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Recommend RecommendConfig `yaml:"recommend"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

// GeminiTimeout returns the per-attempt timeout of the AI endpoint
func (c *AppConfig) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.Timeout) * time.Second
}

// GeminiRetryDelay returns the initial backoff between AI attempts
func (c *AppConfig) GeminiRetryDelay() time.Duration {
	return time.Duration(c.Gemini.RetryDelay) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown window of the web server
func (c *AppConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.Web.ShutdownTimout) * time.Second
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
}

// DefaultAppConfig returns the built-in configuration
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "SlopeSelector",
			Location: "UTC",
			Workdir:  "/var/slopeselector",
			Debug:    false,
		},
		Web: WebConfig{
			Host:           "0.0.0.0",
			Port:           8000,
			AllowOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			BodyLimit:      "1M",
			RateLimit:      0.2,
			RateBurst:      3,
			ShutdownTimout: 10,
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "slopeselector",
			User:     "postgres",
			Passwd:   "postgres",
			SSLMode:  "disable",
			MaxConn:  50,
			IdleConn: 5,
			Debug:    false,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/slopeselector/logs/slopeselector.log",
		},
		Gemini: GeminiConfig{
			BaseURL:    "https://generativelanguage.googleapis.com",
			Model:      "gemini-2.5-pro",
			Timeout:    60,
			MaxRetries: 5,
			RetryDelay: 1000,
		},
		Recommend: RecommendConfig{
			HistoryRetentionDays: 0,
			MaxPromptLength:      4000,
		},
	}
}

// LoadConfig builds the configuration from defaults, the optional yaml file,
// an optional .env file and finally environment variables.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfile, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfile, err)
		}
	}

	// .env is optional, real environment variables win over it
	_ = godotenv.Load()

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.initDirs()
	return cfg, nil
}

// Validate checks settings that would otherwise fail at runtime
func (c *AppConfig) Validate() error {
	switch c.Database.Type {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port %d", c.Web.Port)
	}
	for _, cidr := range c.Web.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("invalid web trusted_proxies entry %q", cidr)
		}
	}
	if c.Gemini.MaxRetries < 1 {
		return fmt.Errorf("gemini max_retries must be at least 1")
	}
	if c.Recommend.HistoryRetentionDays < 0 {
		return fmt.Errorf("recommend history_retention_days must not be negative")
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	setEnvString("SYSTEM_LOCATION", &cfg.System.Location)
	setEnvString("SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBool("SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvString("WEB_HOST", &cfg.Web.Host)
	setEnvInt("WEB_PORT", &cfg.Web.Port)
	if v := os.Getenv(envPrefix + "WEB_ALLOW_ORIGINS"); v != "" {
		cfg.Web.AllowOrigins = splitList(v)
	}
	setEnvFloat("WEB_RATE_LIMIT", &cfg.Web.RateLimit)
	setEnvInt("WEB_RATE_BURST", &cfg.Web.RateBurst)
	if v := os.Getenv(envPrefix + "WEB_TRUSTED_PROXIES"); v != "" {
		cfg.Web.TrustedProxies = splitList(v)
	}

	setEnvString("DB_TYPE", &cfg.Database.Type)
	setEnvString("DB_HOST", &cfg.Database.Host)
	setEnvInt("DB_PORT", &cfg.Database.Port)
	setEnvString("DB_NAME", &cfg.Database.Name)
	setEnvString("DB_USER", &cfg.Database.User)
	setEnvString("DB_PWD", &cfg.Database.Passwd)
	setEnvString("DB_SSLMODE", &cfg.Database.SSLMode)
	setEnvBool("DB_DEBUG", &cfg.Database.Debug)

	setEnvString("LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBool("LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvString("LOGGER_FILENAME", &cfg.Logger.Filename)

	// GEMINI_API_KEY is the name used by existing deployments
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.ApiKey = v
	}
	setEnvString("GEMINI_API_KEY", &cfg.Gemini.ApiKey)
	setEnvString("GEMINI_BASE_URL", &cfg.Gemini.BaseURL)
	setEnvString("GEMINI_MODEL", &cfg.Gemini.Model)
	setEnvInt("GEMINI_TIMEOUT", &cfg.Gemini.Timeout)
	setEnvInt("GEMINI_MAX_RETRIES", &cfg.Gemini.MaxRetries)
	setEnvInt("GEMINI_RETRY_DELAY", &cfg.Gemini.RetryDelay)

	setEnvInt("RECOMMEND_HISTORY_RETENTION_DAYS", &cfg.Recommend.HistoryRetentionDays)
	setEnvInt("RECOMMEND_MAX_PROMPT_LENGTH", &cfg.Recommend.MaxPromptLength)
}

func setEnvString(name string, val *string) {
	if v := os.Getenv(envPrefix + name); v != "" {
		*val = v
	}
}

func setEnvInt(name string, val *int) {
	if v := os.Getenv(envPrefix + name); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}

func setEnvFloat(name string, val *float64) {
	if v := os.Getenv(envPrefix + name); v != "" {
		if f, err := cast.ToFloat64E(v); err == nil {
			*val = f
		}
	}
}

func setEnvBool(name string, val *bool) {
	if v := os.Getenv(envPrefix + name); v != "" {
		*val = cast.ToBool(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/towerdash/internal/pipeline"
	"github.com/sells-group/towerdash/internal/proxy"
	"github.com/sells-group/towerdash/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. TOWERDASH_SHEETS_API_KEY.
const EnvPrefix = "TOWERDASH"

// Config holds the full application configuration.
type Config struct {
	Sheets  SheetsConfig  `yaml:"sheets" mapstructure:"sheets"`
	Proxies []proxy.Proxy `yaml:"proxies" mapstructure:"proxies"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SheetsConfig locates the spreadsheet and bounds each request.
type SheetsConfig struct {
	SheetID     string `yaml:"sheet_id" mapstructure:"sheet_id"`
	Tab         string `yaml:"tab" mapstructure:"tab"`
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries     int    `yaml:"retries" mapstructure:"retries"`
}

// StoreConfig selects the persisted cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// CacheConfig configures the in-memory query cache.
type CacheConfig struct {
	QueryStaleSecs int `yaml:"query_stale_secs" mapstructure:"query_stale_secs"`
}

// RefreshConfig debounces user-triggered refreshes.
type RefreshConfig struct {
	MinIntervalSecs int `yaml:"min_interval_secs" mapstructure:"min_interval_secs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	loadDotEnv()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sheets.sheet_id", "")
	v.SetDefault("sheets.tab", "torres")
	v.SetDefault("sheets.api_key", "")
	v.SetDefault("sheets.base_url", "https://sheets.googleapis.com/v4")
	v.SetDefault("sheets.timeout_secs", 30)
	v.SetDefault("sheets.retries", 1)
	v.SetDefault("proxies", defaultProxies())
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "towerdash.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("cache.query_stale_secs", 60)
	v.SetDefault("refresh.min_interval_secs", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// defaultProxies renders proxy.Defaults as plain maps so viper can merge
// them like values read from a file.
func defaultProxies() []map[string]any {
	defs := proxy.Defaults()
	out := make([]map[string]any, len(defs))
	for i, p := range defs {
		out[i] = map[string]any{"name": p.Name, "url": p.URL}
	}
	return out
}

// loadDotEnv loads ./.env when present. Variables already set win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		zap.L().Warn("config: ignoring unreadable .env", zap.Error(err))
	}
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string
	if c.Sheets.TimeoutSecs <= 0 {
		errs = append(errs, "sheets.timeout_secs must be positive")
	}
	if c.Sheets.Retries < 1 {
		errs = append(errs, "sheets.retries must be at least 1")
	}
	for i, p := range c.Proxies {
		switch {
		case strings.TrimSpace(p.Name) == "":
			errs = append(errs, "proxies["+strconv.Itoa(i)+"].name is required")
		case strings.Contains(p.Name, ","):
			// attempted proxy names are persisted comma-separated
			errs = append(errs, "proxies["+strconv.Itoa(i)+"].name must not contain a comma")
		}
	}

	switch c.Store.Driver {
	case "sqlite", "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for postgres")
		}
	default:
		errs = append(errs, "store.driver must be sqlite, postgres or memory")
	}

	switch mode {
	case "fetch":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		if c.Refresh.MinIntervalSecs < 0 {
			errs = append(errs, "refresh.min_interval_secs must not be negative")
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Pipeline converts the sheets and cache settings into a pipeline.Config.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		SheetID:        c.Sheets.SheetID,
		Tab:            c.Sheets.Tab,
		APIKey:         c.Sheets.APIKey,
		BaseURL:        c.Sheets.BaseURL,
		AttemptTimeout: time.Duration(c.Sheets.TimeoutSecs) * time.Second,
		Retries:        c.Sheets.Retries,
		QueryStale:     time.Duration(c.Cache.QueryStaleSecs) * time.Second,
	}
}

// StoreOptions converts the store settings into a store.Config.
func (c *Config) StoreOptions() store.Config {
	return store.Config{Driver: c.Store.Driver, DatabaseURL: c.Store.DatabaseURL}
}

// RefreshInterval is the minimum time between user-triggered refreshes.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.MinIntervalSecs) * time.Second
}

// Redacted returns a copy safe to print: secrets are masked.
func (c *Config) Redacted() Config {
	out := *c
	out.Sheets.APIKey = mask(c.Sheets.APIKey)
	out.Store.DatabaseURL = maskURL(c.Store.DatabaseURL)
	out.Proxies = append([]proxy.Proxy(nil), c.Proxies...)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

// maskURL hides the password of a connection URL.
func maskURL(s string) string {
	at := strings.LastIndex(s, "@")
	scheme := strings.Index(s, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return s
	}
	creds := s[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return s[:scheme+3] + creds[:colon] + ":****" + s[at:]
	}
	return s
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

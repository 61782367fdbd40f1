package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/towerdash/internal/proxy"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "torres", cfg.Sheets.Tab)
	assert.Empty(t, cfg.Sheets.APIKey)
	assert.Equal(t, "https://sheets.googleapis.com/v4", cfg.Sheets.BaseURL)
	assert.Equal(t, 30, cfg.Sheets.TimeoutSecs)
	assert.Equal(t, 1, cfg.Sheets.Retries)
	assert.Equal(t, proxy.Defaults(), cfg.Proxies)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "towerdash.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 60, cfg.Cache.QueryStaleSecs)
	assert.Equal(t, 5, cfg.Refresh.MinIntervalSecs)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
sheets:
  sheet_id: abc123
  tab: planilha
store:
  driver: memory
proxies:
  - name: local relay
    url: "http://localhost:9000/?u="
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Sheets.SheetID)
	assert.Equal(t, "planilha", cfg.Sheets.Tab)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, []proxy.Proxy{{Name: "local relay", URL: "http://localhost:9000/?u="}}, cfg.Proxies)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Sheets.TimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("TOWERDASH_STORE_DRIVER", "postgres")
	t.Setenv("TOWERDASH_LOG_LEVEL", "warn")
	t.Setenv("TOWERDASH_SHEETS_API_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "from-env", cfg.Sheets.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	const key = "TOWERDASH_SHEETS_SHEET_ID"
	_, preset := os.LookupEnv(key)
	require.False(t, preset)
	t.Cleanup(func() { os.Unsetenv(key) }) //nolint:errcheck

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-dotenv\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Sheets.SheetID)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Sheets.TimeoutSecs = 30
	cfg.Sheets.Retries = 1
	cfg.Proxies = proxy.Defaults()
	cfg.Store.Driver = "sqlite"
	cfg.Refresh.MinIntervalSecs = 5
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("fetch"))
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidate_PostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/towerdash"
	assert.NoError(t, cfg.Validate("fetch"))
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := validDefaults()
	cfg.Sheets.TimeoutSecs = 0
	cfg.Sheets.Retries = 0
	cfg.Store.Driver = "redis"
	cfg.Proxies = []proxy.Proxy{{URL: "http://x/?"}}

	err := cfg.Validate("fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets.timeout_secs must be positive")
	assert.Contains(t, err.Error(), "sheets.retries must be at least 1")
	assert.Contains(t, err.Error(), "store.driver must be")
	assert.Contains(t, err.Error(), "proxies[0].name is required")
}

func TestValidate_ProxyNameWithComma(t *testing.T) {
	cfg := validDefaults()
	cfg.Proxies = []proxy.Proxy{
		{Name: "relay-a", URL: "http://a/?"},
		{Name: "relay, backup", URL: "http://b/?"},
	}

	err := cfg.Validate("fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proxies[1].name must not contain a comma")
	assert.NotContains(t, err.Error(), "proxies[0]")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.NoError(t, cfg.Validate("fetch"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown validation mode")
}

func TestPipelineConfig(t *testing.T) {
	cfg := validDefaults()
	cfg.Sheets.SheetID = "id"
	cfg.Sheets.APIKey = "key"
	cfg.Sheets.Tab = "torres"
	cfg.Cache.QueryStaleSecs = 60

	pc := cfg.Pipeline()
	assert.Equal(t, "id", pc.SheetID)
	assert.Equal(t, 30*time.Second, pc.AttemptTimeout)
	assert.Equal(t, time.Minute, pc.QueryStale)
	assert.True(t, pc.Configured())
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval())
}

func TestRedacted(t *testing.T) {
	cfg := validDefaults()
	cfg.Sheets.APIKey = "AIzaSecretKey"
	cfg.Store.DatabaseURL = "postgres://user:hunter2@db:5432/towerdash"

	r := cfg.Redacted()
	assert.Equal(t, "AIza*********", r.Sheets.APIKey)
	assert.Equal(t, "postgres://user:****@db:5432/towerdash", r.Store.DatabaseURL)
	assert.Equal(t, "AIzaSecretKey", cfg.Sheets.APIKey, "original untouched")
}

func TestMask(t *testing.T) {
	assert.Empty(t, mask(""))
	assert.Equal(t, "****", mask("abc"))
	assert.Equal(t, "towerdash.db", maskURL("towerdash.db"))
}

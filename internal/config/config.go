// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/usestring/formjson-mcp/internal/dispatch"
	"github.com/usestring/formjson-mcp/internal/jsonpath"
)

// DefaultWidgetCacheMaxItems bounds the number of live widgets held by the
// MCP server.
const DefaultWidgetCacheMaxItems = 64

// Config holds all configuration for the server and CLI.
type Config struct {
	PageURL           string        // FORMJSON_PAGE_URL, default "" (no page parameters)
	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 0 (no timeout)
	MaxResponseBytes  int64         // MAX_RESPONSE_BYTES, default 10 MiB
	PathCacheMaxItems int           // PATH_CACHE_MAX_ITEMS, default 256
	WidgetCacheItems  int           // WIDGET_CACHE_MAX_ITEMS, default 64
	ProxyInsecureTLS  bool          // PROXY_INSECURE_SKIP_VERIFY, default false

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, "text" or "json", default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		PageURL:           getEnvString("FORMJSON_PAGE_URL", ""),
		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", 0),
		MaxResponseBytes:  int64(getEnvInt("MAX_RESPONSE_BYTES", int(dispatch.DefaultMaxResponseBytes))),
		PathCacheMaxItems: getEnvInt("PATH_CACHE_MAX_ITEMS", jsonpath.DefaultCacheSize),
		WidgetCacheItems:  getEnvInt("WIDGET_CACHE_MAX_ITEMS", DefaultWidgetCacheMaxItems),
		ProxyInsecureTLS:  getEnvBool("PROXY_INSECURE_SKIP_VERIFY", false),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}

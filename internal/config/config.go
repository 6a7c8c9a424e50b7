package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string // API bind address for `serve`, e.g. "127.0.0.1:8080"
	LogDir       string // logs directory
	LogLevel     string // zap level name
	DatabaseURL  string // postgres://..., sqlite://path, or empty for no persistence
	Concurrency  int    // probes run at once; 1 keeps console order deterministic
	DisableHTTP  bool   // treat the HTTP transport as unavailable
	SlackWebhook string // optional; posts a summary when the verdict is not clear
	RunRPM       int    // POST /api/runs requests per minute per client
	RunBurst     int
	// TrustedProxies is a comma-separated IP/CIDR list allowed to set
	// X-Forwarded-For; empty means rate limiting keys on the peer address.
	TrustedProxies string
}

// LoadDotEnv loads variables from the given files (".env" when none) without
// overriding the environment. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func FromEnv() Config {
	// Bind address (Windows-friendly default)
	addr := os.Getenv("NETCHECK_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return Config{
		Addr:         addr,
		LogDir:       logDir,
		LogLevel:     logLevel,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Concurrency:  positiveInt("NETCHECK_CONCURRENCY", 1),
		DisableHTTP:  boolEnv("NETCHECK_DISABLE_HTTP"),
		SlackWebhook: os.Getenv("SLACK_WEBHOOK_URL"),
		RunRPM:       nonNegativeInt("RUN_RPM", 6),
		RunBurst:     positiveInt("RUN_BURST", 2),

		TrustedProxies: strings.TrimSpace(os.Getenv("TRUSTED_PROXIES")),
	}
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func nonNegativeInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func boolEnv(key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && b
}

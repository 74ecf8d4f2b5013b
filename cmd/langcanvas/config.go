package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rendis/langcanvas/internal/store"
)

// Config holds the CLI configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	Backend         string `json:"backend"` // memory | libsql | redis
	DBPath          string `json:"db_path"`
	RedisAddr       string `json:"redis_addr"`
	RedisPassword   string `json:"redis_password,omitempty"`
	RedisDB         int    `json:"redis_db"`
	RedisPrefix     string `json:"redis_prefix"`
	RedisTTLSeconds int    `json:"redis_ttl_seconds,omitempty"`
	LogLevel        string `json:"log_level"`
	LogFormat       string `json:"log_format"` // text | json
	DiagramFormat   string `json:"diagram_format"`
	BinDir          string `json:"bin_dir"`
}

func defaultConfig() Config {
	return Config{
		Backend:       "libsql",
		DBPath:        filepath.Join(langcanvasDir(), "canvas.db"),
		RedisAddr:     "localhost:6379",
		RedisPrefix:   store.DefaultRedisPrefix,
		LogLevel:      "warn",
		LogFormat:     "text",
		DiagramFormat: "mermaid",
		BinDir:        filepath.Join(langcanvasDir(), "bin"),
	}
}

func langcanvasDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".langcanvas"
	}
	return filepath.Join(home, ".langcanvas")
}

func settingsPath() string {
	return filepath.Join(langcanvasDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// settings.json is optional.
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	strVars := map[string]*string{
		"LANGCANVAS_BACKEND":        &cfg.Backend,
		"LANGCANVAS_DB_PATH":        &cfg.DBPath,
		"LANGCANVAS_REDIS_ADDR":     &cfg.RedisAddr,
		"LANGCANVAS_REDIS_PASSWORD": &cfg.RedisPassword,
		"LANGCANVAS_REDIS_PREFIX":   &cfg.RedisPrefix,
		"LANGCANVAS_LOG_LEVEL":      &cfg.LogLevel,
		"LANGCANVAS_LOG_FORMAT":     &cfg.LogFormat,
		"LANGCANVAS_DIAGRAM_FORMAT": &cfg.DiagramFormat,
		"LANGCANVAS_BIN_DIR":        &cfg.BinDir,
	}
	for name, dst := range strVars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	intVars := map[string]*int{
		"LANGCANVAS_REDIS_DB":          &cfg.RedisDB,
		"LANGCANVAS_REDIS_TTL_SECONDS": &cfg.RedisTTLSeconds,
	}
	for name, dst := range intVars {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	return cfg
}

// openKV opens the configured store backend. libSQL databases are migrated
// and Redis connections pinged before use.
func openKV(ctx context.Context, cfg Config) (store.KV, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryKV(), nil

	case "libsql", "":
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		kv, err := store.NewLibSQLKV("file:" + cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := kv.Migrate(ctx); err != nil {
			kv.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return kv, nil

	case "redis":
		kv := store.NewRedisKV(store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      time.Duration(cfg.RedisTTLSeconds) * time.Second,
		})
		if err := kv.Ping(ctx); err != nil {
			kv.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return kv, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q (want memory, libsql or redis)", cfg.Backend)
	}
}

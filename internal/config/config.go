/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment   string
	HTTPBind      string
	HTTPPort      int
	DBBackend     DatabaseBackend
	DBDSN         string
	JWTSigningKey string
	MetricsBind   string

	// Meeting series presentation
	TitlePrefix      string // Prepended to the person's name on created series
	CalendarLinkBase string // Day-view link base; date path segments are appended

	// Cache configuration
	CacheEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:   getEnvAny([]string{"CADENCE_ENV", "ENV"}, "development"),
		HTTPBind:      getEnv("CADENCE_HTTP_BIND", "0.0.0.0"),
		HTTPPort:      getEnvInt("CADENCE_HTTP_PORT", 8080),
		DBBackend:     DatabaseBackend(getEnv("CADENCE_DB_BACKEND", string(DatabasePostgres))),
		DBDSN:         getEnv("CADENCE_DB_DSN", ""),
		JWTSigningKey: getEnv("CADENCE_JWT_SIGNING_KEY", ""),
		MetricsBind:   getEnv("CADENCE_METRICS_BIND", "127.0.0.1:9000"),

		TitlePrefix:      getEnv("CADENCE_TITLE_PREFIX", "Skip Level: "),
		CalendarLinkBase: getEnv("CADENCE_CALENDAR_LINK_BASE", "https://calendar.google.com/calendar/u/0/r/day"),

		CacheEnabled:  getEnvBool("CADENCE_CACHE_ENABLED", false),
		RedisAddr:     getEnv("CADENCE_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("CADENCE_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("CADENCE_REDIS_DB", 0),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("CADENCE_DB_DSN must be provided")
	}

	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("CADENCE_JWT_SIGNING_KEY must be provided")
	}

	if cfg.TitlePrefix == "" {
		return nil, fmt.Errorf("CADENCE_TITLE_PREFIX must not be empty")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

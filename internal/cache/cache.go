/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for frequently accessed data.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Default TTL values for different cache types
const (
	DefaultRosterTTL   = 5 * time.Minute
	DefaultIntervalTTL = 1 * time.Hour
	DefaultSlotsTTL    = 30 * time.Minute
)

// Key prefixes for Redis cache
const (
	KeyRoster   = "cadence:cache:roster"
	KeyInterval = "cadence:cache:interval"
	KeySlots    = "cadence:cache:slots"
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL overrides
	RosterTTL   time.Duration
	IntervalTTL time.Duration
	SlotsTTL    time.Duration

	// Fallback behavior
	DisableOnError bool // If true, disable caching on Redis errors
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		RosterTTL:      DefaultRosterTTL,
		IntervalTTL:    DefaultIntervalTTL,
		SlotsTTL:       DefaultSlotsTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{
			logger:   logger.With().Str("component", "cache").Logger(),
			config:   cfg,
			disabled: true,
		}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
		config: cfg,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// get retrieves a value from cache and unmarshals it.
func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false, nil
	}

	return true, nil
}

// set stores a value in cache with TTL.
func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	return nil
}

// delete removes a key from cache.
func (c *Cache) delete(ctx context.Context, key string) error {
	if !c.IsAvailable() {
		return nil
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}

	return nil
}

// Roster caching methods

// CachedRosterEntry represents a cached roster row.
type CachedRosterEntry struct {
	Name           string `json:"name"`
	Status         string `json:"status"`
	SeriesID       string `json:"series_id"`
	SeriesTitle    string `json:"series_title"`
	CalendarLink   string `json:"calendar_link"`
	NextOccurrence string `json:"next_occurrence"`
}

// GetRoster retrieves the cached roster.
func (c *Cache) GetRoster(ctx context.Context) ([]CachedRosterEntry, bool) {
	var entries []CachedRosterEntry
	found, err := c.get(ctx, KeyRoster, &entries)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Int("count", len(entries)).Msg("roster cache hit")
	return entries, true
}

// SetRoster caches the roster.
func (c *Cache) SetRoster(ctx context.Context, entries []CachedRosterEntry) error {
	c.logger.Debug().Int("count", len(entries)).Msg("caching roster")
	return c.set(ctx, KeyRoster, entries, c.config.RosterTTL)
}

// InvalidateRoster removes the roster from cache.
func (c *Cache) InvalidateRoster(ctx context.Context) error {
	c.logger.Debug().Msg("invalidating roster cache")
	return c.delete(ctx, KeyRoster)
}

// Interval caching methods

// GetInterval retrieves the cached recurrence interval.
func (c *Cache) GetInterval(ctx context.Context) (int, bool) {
	var weeks int
	found, err := c.get(ctx, KeyInterval, &weeks)
	if err != nil || !found {
		return 0, false
	}
	c.logger.Debug().Int("interval_weeks", weeks).Msg("interval cache hit")
	return weeks, true
}

// SetInterval caches the recurrence interval.
func (c *Cache) SetInterval(ctx context.Context, weeks int) error {
	c.logger.Debug().Int("interval_weeks", weeks).Msg("caching interval")
	return c.set(ctx, KeyInterval, weeks, c.config.IntervalTTL)
}

// InvalidateInterval removes the recurrence interval from cache.
func (c *Cache) InvalidateInterval(ctx context.Context) error {
	c.logger.Debug().Msg("invalidating interval cache")
	return c.delete(ctx, KeyInterval)
}

// Slot caching methods

// CachedSlotRow represents a cached slot template row.
type CachedSlotRow struct {
	Position        int    `json:"position"`
	DayOfWeek       string `json:"day_of_week"`
	TimeOfDay       string `json:"time_of_day"`
	DurationMinutes string `json:"duration_minutes"`
	Status          string `json:"status"`
}

// GetSlots retrieves the cached slot rows.
func (c *Cache) GetSlots(ctx context.Context) ([]CachedSlotRow, bool) {
	var rows []CachedSlotRow
	found, err := c.get(ctx, KeySlots, &rows)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Int("count", len(rows)).Msg("slots cache hit")
	return rows, true
}

// SetSlots caches the slot rows.
func (c *Cache) SetSlots(ctx context.Context, rows []CachedSlotRow) error {
	c.logger.Debug().Int("count", len(rows)).Msg("caching slots")
	return c.set(ctx, KeySlots, rows, c.config.SlotsTTL)
}

// InvalidateSlots removes the slot rows from cache.
func (c *Cache) InvalidateSlots(ctx context.Context) error {
	c.logger.Debug().Msg("invalidating slots cache")
	return c.delete(ctx, KeySlots)
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"errors"
	"time"

	"github.com/friendsincode/cadence/internal/telemetry"
	"gorm.io/gorm"
)

const startTimeKey = "metrics:start_time"

// RegisterCallbacks hooks query timing and error metrics into every CRUD
// path of the gorm instance.
func RegisterCallbacks(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("metrics:query_start", markStart); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("metrics:query_done", observe("query")); err != nil {
		return err
	}
	if err := db.Callback().Create().Before("gorm:create").Register("metrics:create_start", markStart); err != nil {
		return err
	}
	if err := db.Callback().Create().After("gorm:create").Register("metrics:create_done", observe("create")); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("metrics:update_start", markStart); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("metrics:update_done", observe("update")); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("metrics:delete_start", markStart); err != nil {
		return err
	}
	return db.Callback().Delete().After("gorm:delete").Register("metrics:delete_done", observe("delete"))
}

func markStart(db *gorm.DB) {
	db.InstanceSet(startTimeKey, time.Now())
}

// observe builds the after-callback for one operation kind. Missing start
// marks are skipped rather than guessed at.
func observe(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startTimeKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}

		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		telemetry.DatabaseQueryDuration.WithLabelValues(operation, table).Observe(time.Since(started).Seconds())

		// ErrRecordNotFound is an answer, not a failure.
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			telemetry.DatabaseErrorsTotal.WithLabelValues(operation, "query_error").Inc()
		}
	}
}

// UpdateConnectionMetrics publishes the pool's open connection count.
// Called on a ticker by the server.
func UpdateConnectionMetrics(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	telemetry.DatabaseConnectionsActive.Set(float64(sqlDB.Stats().OpenConnections))
}

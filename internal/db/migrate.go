/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"fmt"

	"github.com/friendsincode/cadence/internal/models"
	"gorm.io/gorm"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.RosterEntry{},
		&models.SlotRow{},
		&models.Property{},
		&models.CalendarEvent{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	if err := applyPostgresRosterNameGuard(database); err != nil {
		return err
	}

	return nil
}

// applyPostgresRosterNameGuard enforces case-insensitive uniqueness on roster
// names. The application dedupes on write, but concurrent replacements could
// otherwise race past it.
func applyPostgresRosterNameGuard(database *gorm.DB) error {
	if database.Dialector.Name() != "postgres" {
		return nil
	}

	stmt := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_roster_entries_name_ci
ON roster_entries (LOWER(name));
`
	if err := database.Exec(stmt).Error; err != nil {
		return fmt.Errorf("apply postgres roster name guard: %w", err)
	}

	return nil
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package slots persists the weekly slot template rows and loads the parsed
// catalog used by allocation.
package slots

import (
	"context"
	"fmt"
	"strings"

	"github.com/friendsincode/cadence/internal/allocation"
	"github.com/friendsincode/cadence/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	statusActive   = "active"
	statusDisabled = "disabled"
)

// Row is one slot template as entered.
type Row struct {
	DayOfWeek       string `json:"day_of_week"`
	TimeOfDay       string `json:"time_of_day"`
	DurationMinutes string `json:"duration_minutes"`
	Disabled        bool   `json:"disabled,omitempty"`
}

// Service manages slot template rows.
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a slots service.
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "slots").Logger(),
	}
}

// Replace swaps the stored rows for the given ones, preserving input order.
// Rows are stored as entered; validation happens at catalog load.
func (s *Service) Replace(ctx context.Context, rows []Row) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.SlotRow{}).Error; err != nil {
			return err
		}
		for i, row := range rows {
			status := statusActive
			if row.Disabled {
				status = statusDisabled
			}
			record := models.SlotRow{
				ID:              uuid.NewString(),
				Position:        i,
				DayOfWeek:       strings.TrimSpace(row.DayOfWeek),
				TimeOfDay:       strings.TrimSpace(row.TimeOfDay),
				DurationMinutes: strings.TrimSpace(row.DurationMinutes),
				Status:          status,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace slots: %w", err)
	}

	s.logger.Info().Int("rows", len(rows)).Msg("slot templates replaced")
	return nil
}

// List returns all stored rows in catalog order.
func (s *Service) List(ctx context.Context) ([]models.SlotRow, error) {
	var rows []models.SlotRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return rows, nil
}

// Clear removes every stored row.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.SlotRow{}).Error; err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}
	return nil
}

// LoadCatalog parses the active rows into slot templates, in catalog order.
// Invalid rows are dropped and logged; they never abort the catalog.
func (s *Service) LoadCatalog(ctx context.Context) ([]allocation.SlotTemplate, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	catalog := make([]allocation.SlotTemplate, 0, len(rows))
	for _, row := range rows {
		if row.Status == statusDisabled {
			continue
		}
		tmpl, err := allocation.ParseTemplate(row.DayOfWeek, row.TimeOfDay, row.DurationMinutes)
		if err != nil {
			s.logger.Warn().Err(err).Int("position", row.Position).Msg("dropping invalid slot row")
			continue
		}
		catalog = append(catalog, tmpl)
	}
	return catalog, nil
}

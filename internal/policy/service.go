/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package policy persists the recurrence policy in the properties table.
package policy

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/friendsincode/cadence/internal/allocation"
	"github.com/friendsincode/cadence/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const intervalProperty = "Recurring Interval"

// ErrInvalidInterval is returned for intervals outside the accepted range.
var ErrInvalidInterval = fmt.Errorf("recurring interval must be between %d and %d weeks", allocation.MinIntervalWeeks, allocation.MaxIntervalWeeks)

// Service reads and writes recurrence policy values.
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a policy service.
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "policy").Logger(),
	}
}

// IntervalWeeks returns the configured recurrence interval, falling back to
// the default when the property is absent or unreadable. Preview paths use
// this lenient read; allocation uses RequireIntervalWeeks.
func (s *Service) IntervalWeeks(ctx context.Context) int {
	weeks, err := s.RequireIntervalWeeks(ctx)
	if err != nil {
		return allocation.DefaultIntervalWeeks
	}
	return weeks
}

// RequireIntervalWeeks returns the configured recurrence interval, or an
// error when the stored value is missing or out of range.
func (s *Service) RequireIntervalWeeks(ctx context.Context) (int, error) {
	var prop models.Property
	err := s.db.WithContext(ctx).Where("name = ?", intervalProperty).First(&prop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return allocation.DefaultIntervalWeeks, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read recurring interval: %w", err)
	}

	weeks, err := strconv.Atoi(prop.Value)
	if err != nil || !allocation.ValidInterval(weeks) {
		return 0, ErrInvalidInterval
	}
	return weeks, nil
}

// SetIntervalWeeks persists a new recurrence interval.
func (s *Service) SetIntervalWeeks(ctx context.Context, weeks int) error {
	if !allocation.ValidInterval(weeks) {
		return ErrInvalidInterval
	}

	prop := models.Property{
		Name:        intervalProperty,
		Value:       strconv.Itoa(weeks),
		Description: "Number of weeks between meetings in a recurring series",
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
		}).
		Create(&prop).Error
	if err != nil {
		return fmt.Errorf("save recurring interval: %w", err)
	}

	s.logger.Info().Int("interval_weeks", weeks).Msg("recurring interval updated")
	return nil
}

// Suggest recommends an interval for the given roster and catalog sizes.
// Advisory only; nothing is persisted.
func (s *Service) Suggest(totalNames, totalSlots int) int {
	return allocation.SuggestedInterval(totalNames, totalSlots)
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package roster persists the set of people awaiting or holding a recurring
// meeting series.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/friendsincode/cadence/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a name is absent from the roster.
var ErrNotFound = errors.New("name not found in roster")

// Service manages roster entries.
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a roster service.
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "roster").Logger(),
	}
}

// ReplaceResult reports what a ReplaceAll call did.
type ReplaceResult struct {
	Saved             int `json:"saved"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// ReplaceAll replaces the whole roster with the given names. Names are
// trimmed, empties dropped, and case-insensitive duplicates collapsed with
// the earliest occurrence winning. Calendar metadata of existing rows is
// preserved when the name survives the replacement.
func (s *Service) ReplaceAll(ctx context.Context, names []string) (ReplaceResult, error) {
	var result ReplaceResult

	cleaned := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			result.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, name)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.RosterEntry
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		byKey := make(map[string]models.RosterEntry, len(existing))
		for _, e := range existing {
			byKey[strings.ToLower(e.Name)] = e
		}

		if err := tx.Where("1 = 1").Delete(&models.RosterEntry{}).Error; err != nil {
			return err
		}

		for _, name := range cleaned {
			entry := models.RosterEntry{
				ID:     uuid.NewString(),
				Name:   name,
				Status: models.StatusUnscheduled,
			}
			if prev, ok := byKey[strings.ToLower(name)]; ok {
				entry = prev
				entry.Name = name
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ReplaceResult{}, fmt.Errorf("replace roster: %w", err)
	}

	result.Saved = len(cleaned)
	s.logger.Info().Int("saved", result.Saved).Int("duplicates_removed", result.DuplicatesRemoved).Msg("roster replaced")
	return result, nil
}

// List returns all roster names in insertion order.
func (s *Service) List(ctx context.Context) ([]string, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// Entries returns all roster rows in insertion order.
func (s *Service) Entries(ctx context.Context) ([]models.RosterEntry, error) {
	var entries []models.RosterEntry
	if err := s.db.WithContext(ctx).Order("created_at, name").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return entries, nil
}

// Get returns the entry for a name, matched case-insensitively.
func (s *Service) Get(ctx context.Context, name string) (*models.RosterEntry, error) {
	var entry models.RosterEntry
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get roster entry: %w", err)
	}
	return &entry, nil
}

// SetCalendarDetails marks an entry scheduled and records its series metadata.
func (s *Service) SetCalendarDetails(ctx context.Context, name, seriesID, seriesTitle, link, nextOccurrence string) error {
	return s.updateByName(ctx, name, map[string]any{
		"status":          models.StatusScheduled,
		"series_id":       seriesID,
		"series_title":    seriesTitle,
		"calendar_link":   link,
		"next_occurrence": nextOccurrence,
	})
}

// ClearCalendarDetails returns an entry to the unscheduled state, keeping the row.
func (s *Service) ClearCalendarDetails(ctx context.Context, name string) error {
	return s.updateByName(ctx, name, map[string]any{
		"status":          models.StatusUnscheduled,
		"series_id":       "",
		"series_title":    "",
		"calendar_link":   "",
		"next_occurrence": "",
	})
}

// Remove deletes the row for a name entirely.
func (s *Service) Remove(ctx context.Context, name string) error {
	res := s.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		Delete(&models.RosterEntry{})
	if res.Error != nil {
		return fmt.Errorf("remove roster entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear deletes every roster row.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.RosterEntry{}).Error; err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}
	return nil
}

func (s *Service) updateByName(ctx context.Context, name string, fields map[string]any) error {
	res := s.db.WithContext(ctx).
		Model(&models.RosterEntry{}).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update roster entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/friendsincode/cadence/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"
	"gorm.io/gorm"
)

// GormStore is the default Store backed by the events table. Series rows
// carry an RRULE and are expanded on demand; single events are plain rows.
type GormStore struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewGormStore creates a database-backed calendar store.
func NewGormStore(db *gorm.DB, logger zerolog.Logger) *GormStore {
	return &GormStore{
		db:     db,
		logger: logger.With().Str("component", "calendar").Logger(),
	}
}

// QueryBusyIntervals returns every committed span overlapping [start, end).
func (s *GormStore) QueryBusyIntervals(ctx context.Context, start, end time.Time) ([]BusyInterval, error) {
	events, err := s.eventsTouching(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var busy []BusyInterval
	for _, ev := range events {
		for _, occ := range s.expand(ev, start, end) {
			busy = append(busy, BusyInterval{Start: occ.Start, End: occ.End, Title: ev.Title})
		}
	}
	return busy, nil
}

// CreateRecurringSeries creates an indefinitely repeating weekly series.
func (s *GormStore) CreateRecurringSeries(ctx context.Context, title string, start, end time.Time, intervalWeeks int) (string, error) {
	ev := models.CalendarEvent{
		ID:       uuid.NewString(),
		Title:    title,
		StartsAt: start,
		EndsAt:   end,
		RRule:    fmt.Sprintf("FREQ=WEEKLY;INTERVAL=%d", intervalWeeks),
	}
	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return "", fmt.Errorf("create recurring series: %w", err)
	}
	return ev.ID, nil
}

// FindByTitleContains returns every occurrence inside [start, end) whose
// title contains substr.
func (s *GormStore) FindByTitleContains(ctx context.Context, substr string, start, end time.Time) ([]Commitment, error) {
	events, err := s.eventsTouching(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var found []Commitment
	for _, ev := range events {
		if !strings.Contains(ev.Title, substr) {
			continue
		}
		seriesID := ""
		if ev.RRule != "" {
			seriesID = ev.ID
		}
		for _, occ := range s.expand(ev, start, end) {
			found = append(found, Commitment{
				Ref:      ev.ID,
				Title:    ev.Title,
				Start:    occ.Start,
				End:      occ.End,
				SeriesID: seriesID,
			})
		}
	}
	return found, nil
}

// DeleteSeries removes a recurring series and all of its occurrences.
func (s *GormStore) DeleteSeries(ctx context.Context, seriesID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND r_rule <> ''", seriesID).
		Delete(&models.CalendarEvent{})
	if res.Error != nil {
		return fmt.Errorf("delete series: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("series %s not found", seriesID)
	}
	return nil
}

// DeleteSingleEvent removes one non-recurring event.
func (s *GormStore) DeleteSingleEvent(ctx context.Context, ref string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND r_rule = ''", ref).
		Delete(&models.CalendarEvent{})
	if res.Error != nil {
		return fmt.Errorf("delete event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("event %s not found", ref)
	}
	return nil
}

// eventsTouching loads rows that can produce occurrences inside [start, end):
// single events overlapping the window, and any series anchored before its end.
func (s *GormStore) eventsTouching(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := s.db.WithContext(ctx).
		Where("(r_rule = '' AND starts_at < ? AND ends_at > ?) OR (r_rule <> '' AND starts_at < ?)", end, start, end).
		Order("starts_at").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return events, nil
}

type span struct {
	Start time.Time
	End   time.Time
}

// expand materializes an event's occurrences overlapping [start, end).
func (s *GormStore) expand(ev models.CalendarEvent, start, end time.Time) []span {
	duration := ev.EndsAt.Sub(ev.StartsAt)

	if ev.RRule == "" {
		if ev.StartsAt.Before(end) && ev.EndsAt.After(start) {
			return []span{{Start: ev.StartsAt, End: ev.EndsAt}}
		}
		return nil
	}

	rr, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		s.logger.Warn().Err(err).Str("event_id", ev.ID).Str("rrule", ev.RRule).Msg("skipping event with invalid rrule")
		return nil
	}
	rr.DTStart(ev.StartsAt)

	// Pull starts back far enough to catch an occurrence straddling the
	// window boundary.
	var spans []span
	for _, occStart := range rr.Between(start.Add(-duration), end, true) {
		occEnd := occStart.Add(duration)
		if occStart.Before(end) && occEnd.After(start) {
			spans = append(spans, span{Start: occStart, End: occEnd})
		}
	}
	return spans
}

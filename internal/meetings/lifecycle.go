/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package meetings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/friendsincode/cadence/internal/allocation"
	"github.com/friendsincode/cadence/internal/calendar"
	"github.com/friendsincode/cadence/internal/events"
	"github.com/friendsincode/cadence/internal/roster"
)

func lowerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup searches the next six months for a commitment carrying the marker
// title and the name. Recurring commitments win over single events; among
// series occurrences the soonest future one is returned. Returns nil when
// the name has no commitment.
//
// Matching is by title substring, so a name contained in another ("Ann" in
// "Anna") matches both.
func (s *Service) Lookup(ctx context.Context, name string) (*calendar.Commitment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	now := s.now()
	matches, err := s.cal.FindByTitleContains(ctx, s.titlePrefix, now, now.Add(lookupWindow))
	if err != nil {
		return nil, fmt.Errorf("search calendar: %w", err)
	}

	var bestSeries, bestSingle *calendar.Commitment
	for i := range matches {
		c := matches[i]
		if !strings.Contains(c.Title, name) || !c.Start.After(now) {
			continue
		}
		if c.SeriesID != "" {
			if bestSeries == nil || c.Start.Before(bestSeries.Start) {
				bestSeries = &matches[i]
			}
		} else {
			if bestSingle == nil || c.Start.Before(bestSingle.Start) {
				bestSingle = &matches[i]
			}
		}
	}

	if bestSeries != nil {
		return bestSeries, nil
	}
	return bestSingle, nil
}

// RetractResult reports what a series-only removal deleted.
type RetractResult struct {
	SeriesDeleted       bool `json:"series_deleted"`
	SingleEventsDeleted int  `json:"single_events_deleted"`
}

// RetractSeries deletes the calendar commitments for a name and returns the
// roster row to the unscheduled state, keeping the row.
func (s *Service) RetractSeries(ctx context.Context, name string) (*RetractResult, error) {
	entry, err := s.roster.Get(ctx, name)
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			return nil, ErrNameNotFound
		}
		return nil, err
	}

	seriesDeleted, singlesDeleted, err := s.sweepName(ctx, entry.Name)
	if err != nil {
		return nil, err
	}

	if err := s.roster.ClearCalendarDetails(ctx, entry.Name); err != nil {
		return nil, err
	}

	s.publish(events.EventMeetingRetracted, events.Payload{
		"resource_type":  "roster_entry",
		"resource_id":    entry.ID,
		"name":           entry.Name,
		"series_deleted": seriesDeleted > 0,
		"single_events":  singlesDeleted,
	})

	return &RetractResult{
		SeriesDeleted:       seriesDeleted > 0,
		SingleEventsDeleted: singlesDeleted,
	}, nil
}

// RemoveResult reports what a full removal deleted.
type RemoveResult struct {
	Removed            bool `json:"removed"`
	DeletedCommitments int  `json:"deleted_commitments"`
}

// RemoveName deletes a name's commitments and its roster row.
func (s *Service) RemoveName(ctx context.Context, name string) (*RemoveResult, error) {
	entry, err := s.roster.Get(ctx, name)
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			return nil, ErrNameNotFound
		}
		return nil, err
	}

	seriesDeleted, singlesDeleted, err := s.sweepName(ctx, entry.Name)
	if err != nil {
		return nil, err
	}

	if err := s.roster.Remove(ctx, entry.Name); err != nil && !errors.Is(err, roster.ErrNotFound) {
		return nil, err
	}

	s.publish(events.EventNameRemoved, events.Payload{
		"resource_type": "roster_entry",
		"resource_id":   entry.ID,
		"name":          entry.Name,
		"deleted":       seriesDeleted + singlesDeleted,
	})

	return &RemoveResult{
		Removed:            true,
		DeletedCommitments: seriesDeleted + singlesDeleted,
	}, nil
}

// SweepResult reports a bulk deletion. Errors carries per-item delete
// failures; the sweep keeps going past them.
type SweepResult struct {
	SeriesDeleted       int      `json:"series_deleted"`
	SingleEventsDeleted int      `json:"single_events_deleted"`
	Errors              []string `json:"errors"`
}

// DeleteAllMeetings removes every marker-titled commitment within the sweep
// window and clears calendar metadata on all roster rows.
func (s *Service) DeleteAllMeetings(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	matches, err := s.cal.FindByTitleContains(ctx, s.titlePrefix, now, now.Add(sweepWindow))
	if err != nil {
		return nil, fmt.Errorf("search calendar: %w", err)
	}

	seriesDeleted, singlesDeleted, sweepErrs := s.deleteCommitments(ctx, matches)

	entries, err := s.roster.Entries(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.SeriesID == "" && entry.SeriesTitle == "" {
			continue
		}
		if err := s.roster.ClearCalendarDetails(ctx, entry.Name); err != nil {
			s.logger.Warn().Err(err).Str("name", entry.Name).Msg("failed to clear roster metadata")
		}
	}

	s.publish(events.EventMeetingSweep, events.Payload{
		"resource_type": "calendar",
		"series":        seriesDeleted,
		"single_events": singlesDeleted,
		"errors":        len(sweepErrs),
	})

	s.logger.Info().
		Int("series", seriesDeleted).
		Int("single_events", singlesDeleted).
		Int("errors", len(sweepErrs)).
		Msg("deleted all recurring meetings")

	return &SweepResult{
		SeriesDeleted:       seriesDeleted,
		SingleEventsDeleted: singlesDeleted,
		Errors:              sweepErrs,
	}, nil
}

// sweepName deletes every commitment in the sweep window whose title carries
// the marker and the name.
func (s *Service) sweepName(ctx context.Context, name string) (seriesDeleted, singlesDeleted int, err error) {
	now := s.now()
	matches, err := s.cal.FindByTitleContains(ctx, s.titlePrefix, now, now.Add(sweepWindow))
	if err != nil {
		return 0, 0, fmt.Errorf("search calendar: %w", err)
	}

	named := matches[:0:0]
	for _, c := range matches {
		if strings.Contains(c.Title, name) {
			named = append(named, c)
		}
	}

	seriesDeleted, singlesDeleted, errs := s.deleteCommitments(ctx, named)
	if len(errs) > 0 {
		return seriesDeleted, singlesDeleted, fmt.Errorf("delete commitments: %s", strings.Join(errs, "; "))
	}
	return seriesDeleted, singlesDeleted, nil
}

// deleteCommitments deletes each series once and each single event once.
// A failed delete is recorded and skipped; the rest of the batch proceeds.
func (s *Service) deleteCommitments(ctx context.Context, commitments []calendar.Commitment) (seriesDeleted, singlesDeleted int, errs []string) {
	doneSeries := make(map[string]struct{})
	doneSingles := make(map[string]struct{})

	errs = []string{}
	for _, c := range commitments {
		if c.SeriesID != "" {
			if _, done := doneSeries[c.SeriesID]; done {
				continue
			}
			doneSeries[c.SeriesID] = struct{}{}
			if err := s.cal.DeleteSeries(ctx, c.SeriesID); err != nil {
				errs = append(errs, fmt.Sprintf("series %s: %v", c.SeriesID, err))
				s.logger.Warn().Err(err).Str("series_id", c.SeriesID).Msg("failed to delete series")
				continue
			}
			seriesDeleted++
			continue
		}
		if _, done := doneSingles[c.Ref]; done {
			continue
		}
		doneSingles[c.Ref] = struct{}{}
		if err := s.cal.DeleteSingleEvent(ctx, c.Ref); err != nil {
			errs = append(errs, fmt.Sprintf("event %s: %v", c.Ref, err))
			s.logger.Warn().Err(err).Str("ref", c.Ref).Msg("failed to delete event")
			continue
		}
		singlesDeleted++
	}
	return seriesDeleted, singlesDeleted, errs
}

// UpcomingSlot is a preview row for one candidate occurrence.
type UpcomingSlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// UpcomingSlots previews the candidate occurrences over the search window,
// marking which are free against the current busy snapshot. Uses the lenient
// interval read so previews work before policy is configured.
func (s *Service) UpcomingSlots(ctx context.Context) ([]UpcomingSlot, error) {
	catalog, err := s.slots.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return []UpcomingSlot{}, nil
	}

	names, err := s.roster.List(ctx)
	if err != nil {
		return nil, err
	}

	interval := s.policy.IntervalWeeks(ctx)
	weeks, err := allocation.WeeksToSearch(len(names), len(catalog), interval)
	if err != nil {
		return nil, err
	}

	now := s.now()
	busy, err := s.busySnapshot(ctx, now, now.AddDate(0, 0, weeks*7))
	if err != nil {
		return nil, err
	}

	occs := allocation.GenerateOccurrences(catalog, now, weeks)
	preview := make([]UpcomingSlot, len(occs))
	for i, occ := range occs {
		preview[i] = UpcomingSlot{
			Start:     occ.Start,
			End:       occ.End,
			Available: !allocation.Overlaps(occ.Start, occ.End, busy),
		}
	}
	return preview, nil
}

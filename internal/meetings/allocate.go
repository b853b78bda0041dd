/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package meetings

import (
	"context"
	"fmt"
	"time"

	"github.com/friendsincode/cadence/internal/allocation"
	"github.com/friendsincode/cadence/internal/calendar"
	"github.com/friendsincode/cadence/internal/events"
	"github.com/friendsincode/cadence/internal/telemetry"
)

// AssignmentStatus is the per-name outcome of a batch.
type AssignmentStatus string

const (
	StatusCreated          AssignmentStatus = "created"
	StatusAlreadyScheduled AssignmentStatus = "already_scheduled"
	StatusNoSlotFound      AssignmentStatus = "no_slot_found"
	StatusError            AssignmentStatus = "error"
)

// Assignment reports what happened to one name.
type Assignment struct {
	Name           string           `json:"name"`
	Status         AssignmentStatus `json:"status"`
	SeriesID       string           `json:"series_id,omitempty"`
	Start          *time.Time       `json:"start,omitempty"`
	CalendarLink   string           `json:"calendar_link,omitempty"`
	NextOccurrence string           `json:"next_occurrence,omitempty"`
}

// BatchResult is the outcome of one allocation batch.
type BatchResult struct {
	Processed        int          `json:"processed"`
	Created          int          `json:"created"`
	AlreadyScheduled int          `json:"already_scheduled"`
	NoSlotFound      int          `json:"no_slot_found"`
	WeeksSearched    int          `json:"weeks_searched"`
	Assignments      []Assignment `json:"assignments"`
	Errors           []string     `json:"errors"`
}

// AllocateForNames runs one allocation batch for an explicit set of names.
// Names already backed by a calendar commitment are skipped; per-name store
// failures are collected and never abort the batch.
func (s *Service) AllocateForNames(ctx context.Context, names []string) (*BatchResult, error) {
	result := &BatchResult{Assignments: []Assignment{}, Errors: []string{}}

	cleaned := cleanNames(names)
	if len(cleaned) == 0 {
		return result, nil
	}

	interval, err := s.policy.RequireIntervalWeeks(ctx)
	if err != nil {
		return nil, err
	}

	catalog, err := s.slots.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, ErrNoSlotsConfigured
	}

	rosterNames, err := s.roster.List(ctx)
	if err != nil {
		return nil, err
	}
	inRoster := make(map[string]struct{}, len(rosterNames))
	for _, n := range rosterNames {
		inRoster[lowerKey(n)] = struct{}{}
	}

	// Classify before allocating so repeated runs are idempotent. Names with
	// an existing commitment keep it; their roster metadata is refreshed.
	var toProcess []string
	for _, name := range cleaned {
		if _, ok := inRoster[lowerKey(name)]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: not in roster", name))
			result.Assignments = append(result.Assignments, Assignment{Name: name, Status: StatusError})
			continue
		}
		existing, err := s.Lookup(ctx, name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: lookup: %v", name, err))
			result.Assignments = append(result.Assignments, Assignment{Name: name, Status: StatusError})
			continue
		}
		if existing != nil {
			s.refreshRosterDetails(ctx, name, existing)
			start := existing.Start
			result.AlreadyScheduled++
			result.Assignments = append(result.Assignments, Assignment{
				Name:           name,
				Status:         StatusAlreadyScheduled,
				SeriesID:       existing.SeriesID,
				Start:          &start,
				CalendarLink:   s.dayViewLink(start),
				NextOccurrence: start.Format(nextOccurrenceFormat),
			})
			continue
		}
		toProcess = append(toProcess, name)
	}

	result.Processed = len(cleaned)

	// The window is sized from the full roster even when allocating a
	// subset, so a series landed now still leaves room for the rest.
	weeks, err := allocation.WeeksToSearch(len(rosterNames), len(catalog), interval)
	if err != nil {
		return nil, ErrNoSlotsConfigured
	}
	result.WeeksSearched = weeks

	if len(toProcess) == 0 {
		return result, nil
	}

	now := s.now()
	occurrences := allocation.GenerateOccurrences(catalog, now, weeks)

	busy, err := s.busySnapshot(ctx, now, now.AddDate(0, 0, weeks*7))
	if err != nil {
		return nil, err
	}

	telemetry.AllocationBatchesTotal.Inc()

	for _, decided := range allocation.Allocate(toProcess, occurrences, busy) {
		if decided.Occurrence == nil {
			result.NoSlotFound++
			telemetry.AllocationNoSlotTotal.Inc()
			result.Assignments = append(result.Assignments, Assignment{Name: decided.Name, Status: StatusNoSlotFound})
			s.logger.Warn().Str("name", decided.Name).Int("weeks", weeks).Msg("no free slot in window")
			continue
		}

		assignment, err := s.materialize(ctx, decided.Name, *decided.Occurrence, interval)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", decided.Name, err))
			telemetry.AllocationErrorsTotal.Inc()
			result.Assignments = append(result.Assignments, Assignment{Name: decided.Name, Status: StatusError})
			continue
		}
		result.Created++
		telemetry.MeetingsCreatedTotal.Inc()
		result.Assignments = append(result.Assignments, *assignment)
	}

	s.logger.Info().
		Int("processed", result.Processed).
		Int("created", result.Created).
		Int("already_scheduled", result.AlreadyScheduled).
		Int("no_slot_found", result.NoSlotFound).
		Int("weeks_searched", result.WeeksSearched).
		Int("errors", len(result.Errors)).
		Msg("allocation batch finished")

	return result, nil
}

// AllocateForAllUnscheduled runs a batch over every roster name that has no
// existing calendar commitment.
func (s *Service) AllocateForAllUnscheduled(ctx context.Context) (*BatchResult, error) {
	names, err := s.roster.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.AllocateForNames(ctx, names)
}

// materialize creates the recurring series for a winning occurrence and
// records the roster metadata.
func (s *Service) materialize(ctx context.Context, name string, occ allocation.Occurrence, intervalWeeks int) (*Assignment, error) {
	title := s.seriesTitle(name)

	seriesID, err := s.cal.CreateRecurringSeries(ctx, title, occ.Start, occ.End, intervalWeeks)
	if err != nil {
		return nil, fmt.Errorf("create series: %w", err)
	}

	link := s.dayViewLink(occ.Start)
	next := occ.Start.Format(nextOccurrenceFormat)
	if err := s.roster.SetCalendarDetails(ctx, name, seriesID, title, link, next); err != nil {
		// The series exists; report the bookkeeping failure but keep it.
		return nil, fmt.Errorf("series %s created, roster update failed: %w", seriesID, err)
	}

	s.publish(events.EventMeetingCreated, events.Payload{
		"resource_type": "series",
		"resource_id":   seriesID,
		"name":          name,
		"start":         occ.Start,
		"interval":      intervalWeeks,
	})

	start := occ.Start
	return &Assignment{
		Name:           name,
		Status:         StatusCreated,
		SeriesID:       seriesID,
		Start:          &start,
		CalendarLink:   link,
		NextOccurrence: next,
	}, nil
}

// busySnapshot captures the calendar's busy intervals once per batch.
func (s *Service) busySnapshot(ctx context.Context, start, end time.Time) ([]allocation.Interval, error) {
	spans, err := s.cal.QueryBusyIntervals(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("query busy intervals: %w", err)
	}
	busy := make([]allocation.Interval, len(spans))
	for i, b := range spans {
		busy[i] = allocation.Interval{Start: b.Start, End: b.End}
	}
	return busy, nil
}

// refreshRosterDetails re-records metadata for a commitment found in the
// calendar, healing roster rows that lost their columns.
func (s *Service) refreshRosterDetails(ctx context.Context, name string, c *calendar.Commitment) {
	if err := s.roster.SetCalendarDetails(ctx, name, c.SeriesID, c.Title, s.dayViewLink(c.Start), c.Start.Format(nextOccurrenceFormat)); err != nil {
		s.logger.Warn().Err(err).Str("name", name).Msg("failed to refresh roster metadata")
	}
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package meetings is the series lifecycle manager. It turns allocation
// decisions into durable recurring series, keeps roster metadata in step
// with the calendar, and handles lookup, retraction and removal.
package meetings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/friendsincode/cadence/internal/calendar"
	"github.com/friendsincode/cadence/internal/events"
	"github.com/friendsincode/cadence/internal/policy"
	"github.com/friendsincode/cadence/internal/roster"
	"github.com/friendsincode/cadence/internal/slots"
	"github.com/rs/zerolog"
)

// Sentinel errors surfaced to callers.
var (
	ErrNoSlotsConfigured = errors.New("no valid slot templates configured")
	ErrNameNotFound      = errors.New("name not found in roster")
	ErrEmptyName         = errors.New("name must not be empty")
)

// Window bounds for calendar searches.
const (
	lookupWindow = 6 * 30 * 24 * time.Hour // existing-series checks
	sweepWindow  = 365 * 24 * time.Hour    // retraction and bulk sweeps
)

const nextOccurrenceFormat = "01/02/2006 3:04 PM"

// Options configures the lifecycle manager.
type Options struct {
	// TitlePrefix is the marker prepended to a person's name on created
	// series; lookups match on it.
	TitlePrefix string

	// CalendarLinkBase is the day-view link base; year/month/day path
	// segments are appended.
	CalendarLinkBase string

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service coordinates allocation, the calendar store and the roster.
type Service struct {
	roster *roster.Service
	slots  *slots.Service
	policy *policy.Service
	cal    calendar.Store
	bus    *events.Bus
	logger zerolog.Logger

	titlePrefix string
	linkBase    string
	now         func() time.Time
}

// NewService creates the lifecycle manager.
func NewService(rosterSvc *roster.Service, slotsSvc *slots.Service, policySvc *policy.Service, cal calendar.Store, bus *events.Bus, logger zerolog.Logger, opts Options) *Service {
	if opts.TitlePrefix == "" {
		opts.TitlePrefix = "Skip Level: "
	}
	if opts.CalendarLinkBase == "" {
		opts.CalendarLinkBase = "https://calendar.google.com/calendar/u/0/r/day"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		roster:      rosterSvc,
		slots:       slotsSvc,
		policy:      policySvc,
		cal:         cal,
		bus:         bus,
		logger:      logger.With().Str("component", "meetings").Logger(),
		titlePrefix: opts.TitlePrefix,
		linkBase:    opts.CalendarLinkBase,
		now:         opts.Now,
	}
}

// seriesTitle builds the marker title for a name.
func (s *Service) seriesTitle(name string) string {
	return s.titlePrefix + name
}

// dayViewLink builds the calendar day-view link for an occurrence date.
func (s *Service) dayViewLink(t time.Time) string {
	return fmt.Sprintf("%s/%d/%d/%d", s.linkBase, t.Year(), int(t.Month()), t.Day())
}

// cleanNames trims, drops empties, and collapses case-insensitive
// duplicates keeping the earliest spelling.
func cleanNames(names []string) []string {
	cleaned := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, name)
	}
	return cleaned
}

func (s *Service) publish(eventType events.EventType, payload events.Payload) {
	if s.bus != nil {
		s.bus.Publish(eventType, payload)
	}
}

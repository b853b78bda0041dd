/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package calendar defines the calendar provider contract the lifecycle
// manager talks to, plus a database-backed default implementation.
package calendar

import (
	"context"
	"time"
)

// BusyInterval is one committed span of calendar time.
type BusyInterval struct {
	Start time.Time
	End   time.Time
	Title string
}

// Commitment is a concrete calendar occurrence matched by a title search.
// SeriesID is empty for single events; for recurring commitments it is the
// stable identifier shared by every occurrence of the series.
type Commitment struct {
	Ref      string
	Title    string
	Start    time.Time
	End      time.Time
	SeriesID string
}

// Store is the calendar provider contract.
type Store interface {
	// QueryBusyIntervals returns every committed span overlapping [start, end).
	QueryBusyIntervals(ctx context.Context, start, end time.Time) ([]BusyInterval, error)

	// CreateRecurringSeries creates an indefinitely repeating weekly series
	// anchored at [start, end), recurring every intervalWeeks weeks, and
	// returns its series identifier.
	CreateRecurringSeries(ctx context.Context, title string, start, end time.Time, intervalWeeks int) (string, error)

	// FindByTitleContains returns every commitment inside [start, end) whose
	// title contains the given substring, one Commitment per occurrence.
	FindByTitleContains(ctx context.Context, substr string, start, end time.Time) ([]Commitment, error)

	DeleteSeries(ctx context.Context, seriesID string) error
	DeleteSingleEvent(ctx context.Context, ref string) error
}

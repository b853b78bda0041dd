/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package allocation

import (
	"sort"
	"time"
)

// Occurrence is a concrete candidate meeting time derived from a template.
// TemplateIndex refers to the position in the catalog the occurrence came
// from; together with WeekOffset it identifies the slot for reservation.
type Occurrence struct {
	TemplateIndex int
	WeekOffset    int
	Start         time.Time
	End           time.Time
}

// GenerateOccurrences expands the catalog over the search window and returns
// candidates in chronological order. Ties at the same instant keep catalog
// order. Only strictly future occurrences inside (now, now+weeks*7d] are kept.
func GenerateOccurrences(catalog []SlotTemplate, now time.Time, weeks int) []Occurrence {
	windowEnd := now.AddDate(0, 0, weeks*7)

	var occs []Occurrence
	for week := 0; week < weeks; week++ {
		base := now.AddDate(0, 0, week*7)
		for i, tmpl := range catalog {
			date := nextDateForWeekday(base, tmpl.Day)
			start := time.Date(date.Year(), date.Month(), date.Day(), tmpl.Hour, tmpl.Minute, 0, 0, now.Location())
			end := start.Add(tmpl.Duration)
			if !start.After(now) || start.After(windowEnd) {
				continue
			}
			occs = append(occs, Occurrence{
				TemplateIndex: i,
				WeekOffset:    week,
				Start:         start,
				End:           end,
			})
		}
	}

	sort.SliceStable(occs, func(a, b int) bool {
		if !occs[a].Start.Equal(occs[b].Start) {
			return occs[a].Start.Before(occs[b].Start)
		}
		return occs[a].TemplateIndex < occs[b].TemplateIndex
	})

	return occs
}

// nextDateForWeekday returns the first date on or after base that falls on
// the given weekday, preserving base's time of day.
func nextDateForWeekday(base time.Time, day time.Weekday) time.Time {
	delta := (int(day) - int(base.Weekday()) + 7) % 7
	return base.AddDate(0, 0, delta)
}

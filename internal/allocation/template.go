/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package allocation implements the pure scheduling core: slot templates,
// occurrence generation, interval conflict checks, and the greedy assignment
// engine. It performs no I/O; callers supply catalogs and busy snapshots.
package allocation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotTemplate is a normalized weekly meeting slot.
type SlotTemplate struct {
	Day      time.Weekday
	Hour     int
	Minute   int
	Duration time.Duration
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// ParseTemplate normalizes a raw slot row into a SlotTemplate. Day accepts
// full or three-letter weekday names, case-insensitive. Time accepts 24h
// "HH:MM" or 12h "h:MM AM/PM". Duration is whole minutes.
func ParseTemplate(day, timeOfDay, duration string) (SlotTemplate, error) {
	weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		return SlotTemplate{}, fmt.Errorf("invalid day of week %q", day)
	}

	hour, minute, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return SlotTemplate{}, err
	}

	minutes, err := strconv.Atoi(strings.TrimSpace(duration))
	if err != nil || minutes <= 0 {
		return SlotTemplate{}, fmt.Errorf("invalid duration %q", duration)
	}

	return SlotTemplate{
		Day:      weekday,
		Hour:     hour,
		Minute:   minute,
		Duration: time.Duration(minutes) * time.Minute,
	}, nil
}

func parseTimeOfDay(raw string) (hour, minute int, err error) {
	s := strings.ToUpper(strings.TrimSpace(raw))

	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day %q", raw)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q", raw)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q", raw)
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("invalid time of day %q", raw)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("invalid time of day %q", raw)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, 0, fmt.Errorf("invalid time of day %q", raw)
		}
	}

	if minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time of day %q", raw)
	}

	return hour, minute, nil
}

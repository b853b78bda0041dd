/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package allocation

import "fmt"

// Recurrence interval bounds, in weeks.
const (
	MinIntervalWeeks     = 1
	MaxIntervalWeeks     = 26
	DefaultIntervalWeeks = 8
)

// ValidInterval reports whether weeks is an acceptable recurrence interval.
func ValidInterval(weeks int) bool {
	return weeks >= MinIntervalWeeks && weeks <= MaxIntervalWeeks
}

// WeeksToSearch sizes the allocation window: the recurrence interval, widened
// when the roster cannot rotate through the catalog inside one cycle.
func WeeksToSearch(nameCount, slotCount, intervalWeeks int) (int, error) {
	if slotCount < 1 {
		return 0, fmt.Errorf("no slots in catalog")
	}
	weeks := intervalWeeks
	if need := ceilDiv(nameCount, slotCount); need > weeks {
		weeks = need
	}
	return weeks, nil
}

// SuggestedInterval recommends a recurrence interval that lets the whole
// roster rotate through the catalog, clamped to the valid range. With no
// slots there is nothing to base a suggestion on, so the default is returned.
func SuggestedInterval(totalNames, totalSlots int) int {
	if totalSlots == 0 {
		return DefaultIntervalWeeks
	}
	weeks := ceilDiv(totalNames, totalSlots)
	if weeks < MinIntervalWeeks {
		weeks = MinIntervalWeeks
	}
	if weeks > MaxIntervalWeeks {
		weeks = MaxIntervalWeeks
	}
	return weeks
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

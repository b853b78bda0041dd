/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package allocation

// Assignment is the outcome for one name. Occurrence is nil when no free
// slot was found inside the window.
type Assignment struct {
	Name       string
	Occurrence *Occurrence
}

type slotKey struct {
	week     int
	template int
}

// Allocate walks the candidate occurrences once per name, in input order,
// and claims the first occurrence that is neither reserved by an earlier
// name in the batch nor in conflict with the busy snapshot. A claimed slot
// stays reserved for the rest of the batch even across weeks.
func Allocate(names []string, occurrences []Occurrence, busy []Interval) []Assignment {
	reserved := make(map[slotKey]struct{})
	assignments := make([]Assignment, 0, len(names))

	for _, name := range names {
		var won *Occurrence
		for i := range occurrences {
			occ := occurrences[i]
			key := slotKey{week: occ.WeekOffset, template: occ.TemplateIndex}
			if _, taken := reserved[key]; taken {
				continue
			}
			if Overlaps(occ.Start, occ.End, busy) {
				continue
			}
			reserved[key] = struct{}{}
			won = &occ
			break
		}
		assignments = append(assignments, Assignment{Name: name, Occurrence: won})
	}

	return assignments
}

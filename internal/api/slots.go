/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/friendsincode/cadence/internal/cache"
	"github.com/friendsincode/cadence/internal/events"
	"github.com/friendsincode/cadence/internal/slots"
)

func (a *API) handleSlotsList(w http.ResponseWriter, r *http.Request) {
	if a.cache != nil {
		if cached, ok := a.cache.GetSlots(r.Context()); ok {
			out := make([]slots.Row, len(cached))
			for i, c := range cached {
				out[i] = slots.Row{
					DayOfWeek:       c.DayOfWeek,
					TimeOfDay:       c.TimeOfDay,
					DurationMinutes: c.DurationMinutes,
					Disabled:        c.Status == "disabled",
				}
			}
			writeJSON(w, http.StatusOK, map[string]any{"slots": out})
			return
		}
	}

	rows, err := a.slots.List(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("list slots failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	out := make([]slots.Row, len(rows))
	cached := make([]cache.CachedSlotRow, len(rows))
	for i, row := range rows {
		out[i] = slots.Row{
			DayOfWeek:       row.DayOfWeek,
			TimeOfDay:       row.TimeOfDay,
			DurationMinutes: row.DurationMinutes,
			Disabled:        row.Status == "disabled",
		}
		cached[i] = cache.CachedSlotRow{
			Position:        row.Position,
			DayOfWeek:       row.DayOfWeek,
			TimeOfDay:       row.TimeOfDay,
			DurationMinutes: row.DurationMinutes,
			Status:          row.Status,
		}
	}
	if a.cache != nil {
		_ = a.cache.SetSlots(r.Context(), cached)
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": out})
}

func (a *API) handleSlotsReplace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slots []slots.Row `json:"slots"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	if err := a.slots.Replace(r.Context(), req.Slots); err != nil {
		a.logger.Error().Err(err).Msg("replace slots failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	if a.cache != nil {
		_ = a.cache.InvalidateSlots(r.Context())
	}
	a.bus.Publish(events.EventSlotsReplaced, events.Payload{
		"resource_type": "slots",
		"count":         len(req.Slots),
	})
	writeJSON(w, http.StatusOK, map[string]int{"saved": len(req.Slots)})
}

func (a *API) handleSlotsClear(w http.ResponseWriter, r *http.Request) {
	if err := a.slots.Clear(r.Context()); err != nil {
		a.logger.Error().Err(err).Msg("clear slots failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if a.cache != nil {
		_ = a.cache.InvalidateSlots(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (a *API) handleSlotsUpcoming(w http.ResponseWriter, r *http.Request) {
	preview, err := a.meetings.UpcomingSlots(r.Context())
	if err != nil {
		status, code := statusForError(err)
		writeError(w, status, code)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"occurrences": preview})
}

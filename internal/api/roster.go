/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/cadence/internal/cache"
	"github.com/friendsincode/cadence/internal/events"
)

type rosterEntryResponse struct {
	Name           string `json:"name"`
	Status         string `json:"status"`
	SeriesID       string `json:"series_id,omitempty"`
	SeriesTitle    string `json:"series_title,omitempty"`
	CalendarLink   string `json:"calendar_link,omitempty"`
	NextOccurrence string `json:"next_occurrence,omitempty"`
}

func (a *API) handleRosterList(w http.ResponseWriter, r *http.Request) {
	if a.cache != nil {
		if cached, ok := a.cache.GetRoster(r.Context()); ok {
			out := make([]rosterEntryResponse, len(cached))
			for i, c := range cached {
				out[i] = rosterEntryResponse{
					Name:           c.Name,
					Status:         c.Status,
					SeriesID:       c.SeriesID,
					SeriesTitle:    c.SeriesTitle,
					CalendarLink:   c.CalendarLink,
					NextOccurrence: c.NextOccurrence,
				}
			}
			writeJSON(w, http.StatusOK, map[string]any{"entries": out})
			return
		}
	}

	entries, err := a.roster.Entries(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("list roster failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	out := make([]rosterEntryResponse, len(entries))
	cached := make([]cache.CachedRosterEntry, len(entries))
	for i, e := range entries {
		out[i] = rosterEntryResponse{
			Name:           e.Name,
			Status:         string(e.Status),
			SeriesID:       e.SeriesID,
			SeriesTitle:    e.SeriesTitle,
			CalendarLink:   e.CalendarLink,
			NextOccurrence: e.NextOccurrence,
		}
		cached[i] = cache.CachedRosterEntry{
			Name:           e.Name,
			Status:         string(e.Status),
			SeriesID:       e.SeriesID,
			SeriesTitle:    e.SeriesTitle,
			CalendarLink:   e.CalendarLink,
			NextOccurrence: e.NextOccurrence,
		}
	}
	if a.cache != nil {
		_ = a.cache.SetRoster(r.Context(), cached)
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (a *API) handleRosterReplace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	result, err := a.roster.ReplaceAll(r.Context(), req.Names)
	if err != nil {
		a.logger.Error().Err(err).Msg("replace roster failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.invalidateRoster(r)
	a.bus.Publish(events.EventRosterReplaced, events.Payload{
		"resource_type":      "roster",
		"saved":              result.Saved,
		"duplicates_removed": result.DuplicatesRemoved,
	})
	writeJSON(w, http.StatusOK, result)
}

// handleRosterClear deletes every meeting in the sweep window, then clears
// the roster itself.
func (a *API) handleRosterClear(w http.ResponseWriter, r *http.Request) {
	sweep, err := a.meetings.DeleteAllMeetings(r.Context())
	if err != nil {
		status, code := statusForError(err)
		writeError(w, status, code)
		return
	}
	if err := a.roster.Clear(r.Context()); err != nil {
		a.logger.Error().Err(err).Msg("clear roster failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.invalidateRoster(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"series_deleted":        sweep.SeriesDeleted,
		"single_events_deleted": sweep.SingleEventsDeleted,
	})
}

func (a *API) handleRosterRemoveName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	result, err := a.meetings.RemoveName(r.Context(), name)
	if err != nil {
		status, code := statusForError(err)
		writeError(w, status, code)
		return
	}

	a.invalidateRoster(r)
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleRosterRetractSeries(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	result, err := a.meetings.RetractSeries(r.Context(), name)
	if err != nil {
		status, code := statusForError(err)
		writeError(w, status, code)
		return
	}

	a.invalidateRoster(r)
	writeJSON(w, http.StatusOK, result)
}

func (a *API) invalidateRoster(r *http.Request) {
	if a.cache != nil {
		_ = a.cache.InvalidateRoster(r.Context())
	}
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/friendsincode/cadence/internal/events"
	"github.com/friendsincode/cadence/internal/policy"
)

func (a *API) handleIntervalGet(w http.ResponseWriter, r *http.Request) {
	if a.cache != nil {
		if weeks, ok := a.cache.GetInterval(r.Context()); ok {
			writeJSON(w, http.StatusOK, map[string]int{"interval_weeks": weeks})
			return
		}
	}

	weeks := a.policy.IntervalWeeks(r.Context())
	if a.cache != nil {
		_ = a.cache.SetInterval(r.Context(), weeks)
	}
	writeJSON(w, http.StatusOK, map[string]int{"interval_weeks": weeks})
}

func (a *API) handleIntervalSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IntervalWeeks int `json:"interval_weeks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	if err := a.policy.SetIntervalWeeks(r.Context(), req.IntervalWeeks); err != nil {
		if errors.Is(err, policy.ErrInvalidInterval) {
			writeError(w, http.StatusBadRequest, "invalid_interval")
			return
		}
		a.logger.Error().Err(err).Msg("set interval failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	if a.cache != nil {
		_ = a.cache.InvalidateInterval(r.Context())
	}
	a.bus.Publish(events.EventIntervalChanged, events.Payload{
		"resource_type":  "property",
		"resource_id":    "Recurring Interval",
		"interval_weeks": req.IntervalWeeks,
	})
	writeJSON(w, http.StatusOK, map[string]int{"interval_weeks": req.IntervalWeeks})
}

// handleIntervalSuggest recommends an interval from current roster and slot
// counts. With apply=true the suggestion is persisted as well.
func (a *API) handleIntervalSuggest(w http.ResponseWriter, r *http.Request) {
	names, err := a.roster.List(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("list roster failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	catalog, err := a.slots.LoadCatalog(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("load catalog failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	suggested := a.policy.Suggest(len(names), len(catalog))
	applied := false
	if r.URL.Query().Get("apply") == "true" {
		if err := a.policy.SetIntervalWeeks(r.Context(), suggested); err != nil {
			a.logger.Error().Err(err).Msg("apply suggested interval failed")
			writeError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		if a.cache != nil {
			_ = a.cache.InvalidateInterval(r.Context())
		}
		applied = true
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"suggested_interval_weeks": suggested,
		"roster_size":              len(names),
		"slot_count":               len(catalog),
		"applied":                  applied,
	})
}

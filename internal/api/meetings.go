/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"io"
	"net/http"
)

// handleMeetingsAllocate runs one allocation batch. With a names list the
// batch covers those names; without one it covers every unscheduled roster
// entry.
func (a *API) handleMeetingsAllocate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	var (
		result any
		err    error
	)
	if len(req.Names) > 0 {
		result, err = a.meetings.AllocateForNames(r.Context(), req.Names)
	} else {
		result, err = a.meetings.AllocateForAllUnscheduled(r.Context())
	}
	if err != nil {
		status, code := statusForError(err)
		writeError(w, status, code)
		return
	}

	a.invalidateRoster(r)
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleMeetingsDeleteAll(w http.ResponseWriter, r *http.Request) {
	result, err := a.meetings.DeleteAllMeetings(r.Context())
	if err != nil {
		status, code := statusForError(err)
		writeError(w, status, code)
		return
	}

	a.invalidateRoster(r)
	writeJSON(w, http.StatusOK, result)
}

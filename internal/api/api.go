/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/cadence/internal/audit"
	"github.com/friendsincode/cadence/internal/auth"
	"github.com/friendsincode/cadence/internal/cache"
	"github.com/friendsincode/cadence/internal/events"
	"github.com/friendsincode/cadence/internal/meetings"
	"github.com/friendsincode/cadence/internal/policy"
	"github.com/friendsincode/cadence/internal/roster"
	"github.com/friendsincode/cadence/internal/slots"
)

// API exposes HTTP handlers.
type API struct {
	jwtSecret []byte
	meetings  *meetings.Service
	roster    *roster.Service
	slots     *slots.Service
	policy    *policy.Service
	audit     *audit.Service
	cache     *cache.Cache
	bus       *events.Bus
	logger    zerolog.Logger
}

// New creates the API router wrapper. cache may be nil.
func New(jwtSecret []byte, meetingsSvc *meetings.Service, rosterSvc *roster.Service, slotsSvc *slots.Service, policySvc *policy.Service, auditSvc *audit.Service, cacheSvc *cache.Cache, bus *events.Bus, logger zerolog.Logger) *API {
	return &API{
		jwtSecret: jwtSecret,
		meetings:  meetingsSvc,
		roster:    rosterSvc,
		slots:     slotsSvc,
		policy:    policySvc,
		audit:     auditSvc,
		cache:     cacheSvc,
		bus:       bus,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts all endpoints on the router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(a.jwtSecret))

			pr.Route("/roster", func(r chi.Router) {
				r.Get("/", a.handleRosterList)
				r.Put("/", a.handleRosterReplace)
				r.Delete("/", a.handleRosterClear)
				r.Route("/{name}", func(r chi.Router) {
					r.Delete("/", a.handleRosterRemoveName)
					r.Delete("/series", a.handleRosterRetractSeries)
				})
			})

			pr.Route("/slots", func(r chi.Router) {
				r.Get("/", a.handleSlotsList)
				r.Put("/", a.handleSlotsReplace)
				r.Delete("/", a.handleSlotsClear)
				r.Get("/upcoming", a.handleSlotsUpcoming)
			})

			pr.Route("/policy/interval", func(r chi.Router) {
				r.Get("/", a.handleIntervalGet)
				r.Put("/", a.handleIntervalSet)
				r.Get("/suggest", a.handleIntervalSuggest)
			})

			pr.Route("/meetings", func(r chi.Router) {
				r.Post("/allocate", a.handleMeetingsAllocate)
				r.Delete("/", a.handleMeetingsDeleteAll)
			})

			pr.Get("/audit", a.handleAuditQuery)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForError maps lifecycle errors onto HTTP status codes. Configuration
// problems (bad catalog, bad stored interval) are conflicts; caller mistakes
// are bad requests; unknown names are 404.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, meetings.ErrNoSlotsConfigured):
		return http.StatusConflict, "no_slots_configured"
	case errors.Is(err, policy.ErrInvalidInterval):
		return http.StatusConflict, "interval_not_configured"
	case errors.Is(err, meetings.ErrNameNotFound), errors.Is(err, roster.ErrNotFound):
		return http.StatusNotFound, "name_not_found"
	case errors.Is(err, meetings.ErrEmptyName):
		return http.StatusBadRequest, "empty_name"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

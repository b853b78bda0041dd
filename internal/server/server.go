/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/cadence/internal/api"
	"github.com/friendsincode/cadence/internal/audit"
	"github.com/friendsincode/cadence/internal/cache"
	"github.com/friendsincode/cadence/internal/calendar"
	"github.com/friendsincode/cadence/internal/config"
	"github.com/friendsincode/cadence/internal/db"
	"github.com/friendsincode/cadence/internal/events"
	"github.com/friendsincode/cadence/internal/meetings"
	"github.com/friendsincode/cadence/internal/policy"
	"github.com/friendsincode/cadence/internal/roster"
	"github.com/friendsincode/cadence/internal/slots"
	"github.com/friendsincode/cadence/internal/telemetry"
	"github.com/friendsincode/cadence/internal/version"
)

// Server bundles the HTTP API, the metrics listener, and supporting services.
type Server struct {
	cfg           *config.Config
	logger        zerolog.Logger
	router        chi.Router
	httpServer    *http.Server
	metricsServer *http.Server
	closers       []func() error

	db        *gorm.DB
	cache     *cache.Cache
	bus       *events.Bus
	api       *api.API
	auditSvc  *audit.Service
	meetings  *meetings.Service
	updateChk *version.Checker

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", telemetry.Handler())
	srv.metricsServer = &http.Server{
		Addr:              cfg.MetricsBind,
		Handler:           metricsMux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	// Redis cache for roster/interval/slot reads. Optional; the server keeps
	// working off the database when it is disabled or unreachable.
	if s.cfg.CacheEnabled {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB
		entityCache, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		} else {
			s.cache = entityCache
			s.DeferClose(func() error { return s.cache.Close() })
		}
	}

	rosterSvc := roster.NewService(database, s.logger)
	slotsSvc := slots.NewService(database, s.logger)
	policySvc := policy.NewService(database, s.logger)
	calStore := calendar.NewGormStore(database, s.logger)

	s.meetings = meetings.NewService(rosterSvc, slotsSvc, policySvc, calStore, s.bus, s.logger, meetings.Options{
		TitlePrefix:      s.cfg.TitlePrefix,
		CalendarLinkBase: s.cfg.CalendarLinkBase,
	})

	s.auditSvc = audit.NewService(database, s.bus, s.logger)

	s.api = api.New([]byte(s.cfg.JWTSigningKey), s.meetings, rosterSvc, slotsSvc, policySvc, s.auditSvc, s.cache, s.bus, s.logger)

	s.updateChk = version.NewChecker(s.logger)

	return nil
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// MetricsServer exposes the Prometheus listener.
func (s *Server) MetricsServer() *http.Server {
	return s.metricsServer
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	if s.auditSvc != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.auditSvc.Start(ctx)
		}()
	}

	if s.cache != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.runCacheInvalidationListener(ctx)
		}()
	}

	if s.updateChk != nil {
		s.updateChk.Start(ctx)
	}

	// Connection pool gauge refresher
	if s.db != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					db.UpdateConnectionMetrics(s.db)
				}
			}
		}()
	}
}

// runCacheInvalidationListener drops cached reads whenever another writer
// changes the underlying data, e.g. an allocation run from the CLI.
func (s *Server) runCacheInvalidationListener(ctx context.Context) {
	rosterReplaced := s.bus.Subscribe(events.EventRosterReplaced)
	nameRemoved := s.bus.Subscribe(events.EventNameRemoved)
	meetingCreated := s.bus.Subscribe(events.EventMeetingCreated)
	meetingRetracted := s.bus.Subscribe(events.EventMeetingRetracted)
	meetingSweep := s.bus.Subscribe(events.EventMeetingSweep)
	intervalChanged := s.bus.Subscribe(events.EventIntervalChanged)
	slotsReplaced := s.bus.Subscribe(events.EventSlotsReplaced)

	defer func() {
		s.bus.Unsubscribe(events.EventRosterReplaced, rosterReplaced)
		s.bus.Unsubscribe(events.EventNameRemoved, nameRemoved)
		s.bus.Unsubscribe(events.EventMeetingCreated, meetingCreated)
		s.bus.Unsubscribe(events.EventMeetingRetracted, meetingRetracted)
		s.bus.Unsubscribe(events.EventMeetingSweep, meetingSweep)
		s.bus.Unsubscribe(events.EventIntervalChanged, intervalChanged)
		s.bus.Unsubscribe(events.EventSlotsReplaced, slotsReplaced)
	}()

	s.logger.Info().Msg("cache invalidation listener started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cache invalidation listener stopped")
			return

		case <-rosterReplaced:
			s.cache.InvalidateRoster(ctx)
		case <-nameRemoved:
			s.cache.InvalidateRoster(ctx)
		case <-meetingCreated:
			s.cache.InvalidateRoster(ctx)
		case <-meetingRetracted:
			s.cache.InvalidateRoster(ctx)
		case <-meetingSweep:
			s.cache.InvalidateRoster(ctx)

		case <-intervalChanged:
			s.cache.InvalidateInterval(ctx)

		case <-slotsReplaced:
			s.cache.InvalidateSlots(ctx)
		}
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","version":"` + version.Version + `"}`))
	})

	s.api.Routes(s.router)
}

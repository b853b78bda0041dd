/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/cadence/internal/events"
	"github.com/friendsincode/cadence/internal/models"
)

// Service handles audit logging by subscribing to events and storing audit entries.
type Service struct {
	db     *gorm.DB
	bus    *events.Bus
	logger zerolog.Logger
}

// NewService creates a new audit service.
func NewService(db *gorm.DB, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		bus:    bus,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Start subscribes to relevant events and logs them as audit entries.
func (s *Service) Start(ctx context.Context) {
	s.logger.Info().Msg("audit service starting")

	meetingCreated := s.bus.Subscribe(events.EventMeetingCreated)
	meetingRetracted := s.bus.Subscribe(events.EventMeetingRetracted)
	meetingSweep := s.bus.Subscribe(events.EventMeetingSweep)
	rosterReplaced := s.bus.Subscribe(events.EventRosterReplaced)
	nameRemoved := s.bus.Subscribe(events.EventNameRemoved)
	intervalChanged := s.bus.Subscribe(events.EventIntervalChanged)

	defer func() {
		s.bus.Unsubscribe(events.EventMeetingCreated, meetingCreated)
		s.bus.Unsubscribe(events.EventMeetingRetracted, meetingRetracted)
		s.bus.Unsubscribe(events.EventMeetingSweep, meetingSweep)
		s.bus.Unsubscribe(events.EventRosterReplaced, rosterReplaced)
		s.bus.Unsubscribe(events.EventNameRemoved, nameRemoved)
		s.bus.Unsubscribe(events.EventIntervalChanged, intervalChanged)
	}()

	s.logger.Info().Msg("audit service started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("audit service stopping")
			return

		case payload := <-meetingCreated:
			s.logAuditEntry(ctx, models.AuditActionMeetingCreate, payload)

		case payload := <-meetingRetracted:
			s.logAuditEntry(ctx, models.AuditActionMeetingRetract, payload)

		case payload := <-meetingSweep:
			s.logAuditEntry(ctx, models.AuditActionMeetingSweep, payload)

		case payload := <-rosterReplaced:
			s.logAuditEntry(ctx, models.AuditActionRosterReplace, payload)

		case payload := <-nameRemoved:
			s.logAuditEntry(ctx, models.AuditActionRosterRemove, payload)

		case payload := <-intervalChanged:
			s.logAuditEntry(ctx, models.AuditActionIntervalChange, payload)
		}
	}
}

// logAuditEntry creates an audit log entry from an event payload.
func (s *Service) logAuditEntry(ctx context.Context, action models.AuditAction, payload events.Payload) {
	entry := &models.AuditLog{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Action:    action,
		Details:   make(map[string]any),
		CreatedAt: time.Now(),
	}

	if resourceType, ok := payload["resource_type"].(string); ok {
		entry.ResourceType = resourceType
	}
	if resourceID, ok := payload["resource_id"].(string); ok {
		entry.ResourceID = resourceID
	}

	// Copy remaining fields to details
	for k, v := range payload {
		switch k {
		case "resource_type", "resource_id":
			// Already extracted
		default:
			entry.Details[k] = v
		}
	}

	if err := s.Log(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("action", string(action)).
			Msg("failed to log audit entry")
	}
}

// Log records an audit entry directly (for non-event-bus actions).
func (s *Service) Log(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Details == nil {
		entry.Details = make(map[string]any)
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}

	s.logger.Debug().
		Str("action", string(entry.Action)).
		Str("id", entry.ID).
		Msg("audit entry logged")

	return nil
}

// QueryFilters defines filters for querying audit logs.
type QueryFilters struct {
	Action    *models.AuditAction
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// Query retrieves audit logs with filters.
func (s *Service) Query(ctx context.Context, filters QueryFilters) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.StartTime != nil {
		query = query.Where("timestamp >= ?", *filters.StartTime)
	}
	if filters.EndTime != nil {
		query = query.Where("timestamp <= ?", *filters.EndTime)
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	} else {
		query = query.Limit(100) // Default limit
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	// Order by timestamp descending (most recent first)
	if err := query.Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

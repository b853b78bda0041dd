/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// AuditAction defines the type of audited action.
type AuditAction string

// Audit action constants for roster and meeting lifecycle operations.
const (
	AuditActionMeetingCreate  AuditAction = "meeting.create"
	AuditActionMeetingRetract AuditAction = "meeting.retract"
	AuditActionMeetingSweep   AuditAction = "meeting.sweep"
	AuditActionRosterReplace  AuditAction = "roster.replace"
	AuditActionRosterRemove   AuditAction = "roster.remove"
	AuditActionIntervalChange AuditAction = "interval.change"
)

// AuditLog records lifecycle operations for later review.
type AuditLog struct {
	ID           string         `gorm:"type:uuid;primaryKey"`
	Timestamp    time.Time      `gorm:"index:idx_audit_timestamp;not null"`
	Action       AuditAction    `gorm:"type:varchar(64);index:idx_audit_action;not null"`
	ResourceType string         `gorm:"type:varchar(64)"` // "roster_entry", "series", "property"
	ResourceID   string         `gorm:"type:varchar(128)"`
	Details      map[string]any `gorm:"type:jsonb;serializer:json"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM.
func (AuditLog) TableName() string {
	return "audit_logs"
}

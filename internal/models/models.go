package models

import "time"

// RosterStatus tracks whether a roster entry currently holds a meeting series.
type RosterStatus string

const (
	StatusUnscheduled RosterStatus = "unscheduled"
	StatusScheduled   RosterStatus = "scheduled"
)

// RosterEntry is one person awaiting or holding a recurring 1:1 series.
// The calendar columns are populated only while the entry is scheduled.
type RosterEntry struct {
	ID             string       `gorm:"type:uuid;primaryKey"`
	Name           string       `gorm:"uniqueIndex"`
	Status         RosterStatus `gorm:"type:varchar(16);index"`
	SeriesID       string       `gorm:"index"`
	SeriesTitle    string
	CalendarLink   string
	NextOccurrence string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SlotRow is a stored slot template exactly as entered. Fields stay raw
// strings; parsing and validation happen when the catalog is loaded.
type SlotRow struct {
	ID              string `gorm:"type:uuid;primaryKey"`
	Position        int    `gorm:"index"`
	DayOfWeek       string
	TimeOfDay       string
	DurationMinutes string
	Status          string `gorm:"type:varchar(16)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Property is a named configuration value.
type Property struct {
	Name        string `gorm:"primaryKey"`
	Value       string
	Description string `gorm:"type:text"`
	UpdatedAt   time.Time
}

// CalendarEvent backs the built-in calendar provider. A row with an RRule is
// a recurring series anchored at StartsAt; a row without one is a single
// event occupying [StartsAt, EndsAt).
type CalendarEvent struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"index"`
	StartsAt  time.Time `gorm:"index"`
	EndsAt    time.Time
	RRule     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

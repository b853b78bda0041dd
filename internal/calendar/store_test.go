package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/friendsincode/cadence/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.CalendarEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewGormStore(db, zerolog.Nop())
}

func TestCreateSeriesAndQueryBusyIntervals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	anchor := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	id, err := store.CreateRecurringSeries(ctx, "Skip Level: Alice", anchor, anchor.Add(30*time.Minute), 2)
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	if id == "" {
		t.Fatal("expected a series id")
	}

	// Six weeks of window: a biweekly series yields occurrences at weeks 0, 2, 4.
	busy, err := store.QueryBusyIntervals(ctx, anchor.Add(-time.Hour), anchor.AddDate(0, 0, 42))
	if err != nil {
		t.Fatalf("query busy: %v", err)
	}
	if len(busy) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(busy))
	}
	second := busy[1]
	if !second.Start.Equal(anchor.AddDate(0, 0, 14)) {
		t.Fatalf("unexpected second occurrence start %v", second.Start)
	}
	if !second.End.Equal(second.Start.Add(30 * time.Minute)) {
		t.Fatalf("unexpected second occurrence end %v", second.End)
	}
}

func TestFindByTitleContainsPrefersWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	anchor := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	seriesID, err := store.CreateRecurringSeries(ctx, "Skip Level: Alice", anchor, anchor.Add(30*time.Minute), 4)
	if err != nil {
		t.Fatalf("create series: %v", err)
	}

	// A single unrelated event inside the window.
	single := models.CalendarEvent{
		ID:       "single-1",
		Title:    "Skip Level: Bob",
		StartsAt: anchor.AddDate(0, 0, 1),
		EndsAt:   anchor.AddDate(0, 0, 1).Add(30 * time.Minute),
	}
	if err := store.db.Create(&single).Error; err != nil {
		t.Fatalf("create single event: %v", err)
	}

	found, err := store.FindByTitleContains(ctx, "Alice", anchor.Add(-time.Hour), anchor.AddDate(0, 6, 0))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) == 0 {
		t.Fatal("expected matches for Alice")
	}
	for _, c := range found {
		if c.SeriesID != seriesID {
			t.Fatalf("expected all matches from series %s, got %+v", seriesID, c)
		}
	}

	found, err = store.FindByTitleContains(ctx, "Bob", anchor.Add(-time.Hour), anchor.AddDate(0, 6, 0))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 || found[0].SeriesID != "" {
		t.Fatalf("expected one single-event match for Bob, got %+v", found)
	}
}

func TestDeleteSeriesAndSingleEvent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	anchor := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	seriesID, err := store.CreateRecurringSeries(ctx, "Skip Level: Alice", anchor, anchor.Add(30*time.Minute), 1)
	if err != nil {
		t.Fatalf("create series: %v", err)
	}

	// A series cannot be deleted through the single-event path.
	if err := store.DeleteSingleEvent(ctx, seriesID); err == nil {
		t.Fatal("expected single-event delete of a series to fail")
	}
	if err := store.DeleteSeries(ctx, seriesID); err != nil {
		t.Fatalf("delete series: %v", err)
	}
	if err := store.DeleteSeries(ctx, seriesID); err == nil {
		t.Fatal("expected second delete to report not found")
	}

	busy, err := store.QueryBusyIntervals(ctx, anchor.Add(-time.Hour), anchor.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("query busy: %v", err)
	}
	if len(busy) != 0 {
		t.Fatalf("expected empty calendar after delete, got %d intervals", len(busy))
	}
}

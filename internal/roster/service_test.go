package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/friendsincode/cadence/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.RosterEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, zerolog.Nop())
}

func TestReplaceAllDedupesCaseInsensitively(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	result, err := svc.ReplaceAll(ctx, []string{" Alice ", "bob", "ALICE", "", "Carol", "Bob "})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if result.Saved != 3 {
		t.Fatalf("expected 3 saved, got %d", result.Saved)
	}
	if result.DuplicatesRemoved != 2 {
		t.Fatalf("expected 2 duplicates removed, got %d", result.DuplicatesRemoved)
	}

	names, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Alice", "bob", "Carol"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v (earliest spelling wins)", names, want)
		}
	}
}

func TestReplaceAllKeepsCalendarDetailsForSurvivors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ReplaceAll(ctx, []string{"Alice", "Bob"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := svc.SetCalendarDetails(ctx, "Alice", "series-1", "Skip Level: Alice", "link", "01/05/2026 9:00 AM"); err != nil {
		t.Fatalf("set details: %v", err)
	}

	if _, err := svc.ReplaceAll(ctx, []string{"alice", "Dave"}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	entry, err := svc.Get(ctx, "ALICE")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry.Status != models.StatusScheduled || entry.SeriesID != "series-1" {
		t.Fatalf("expected Alice to keep series metadata, got %+v", entry)
	}

	if _, err := svc.Get(ctx, "Bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected Bob to be gone, got %v", err)
	}
}

func TestCalendarDetailsRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ReplaceAll(ctx, []string{"Alice"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if err := svc.SetCalendarDetails(ctx, "Alice", "series-1", "Skip Level: Alice", "link", "next"); err != nil {
		t.Fatalf("set details: %v", err)
	}
	entry, err := svc.Get(ctx, "Alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry.Status != models.StatusScheduled || entry.CalendarLink != "link" {
		t.Fatalf("unexpected entry after set: %+v", entry)
	}

	if err := svc.ClearCalendarDetails(ctx, "Alice"); err != nil {
		t.Fatalf("clear details: %v", err)
	}
	entry, err = svc.Get(ctx, "Alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry.Status != models.StatusUnscheduled || entry.SeriesID != "" || entry.NextOccurrence != "" {
		t.Fatalf("expected cleared entry, got %+v", entry)
	}
}

func TestRemoveMissingNameReportsNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Remove(ctx, "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := svc.ReplaceAll(ctx, []string{"Alice"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := svc.Remove(ctx, "alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	names, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty roster, got %v", names)
	}
}

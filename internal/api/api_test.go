package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/friendsincode/cadence/internal/audit"
	"github.com/friendsincode/cadence/internal/auth"
	"github.com/friendsincode/cadence/internal/calendar"
	"github.com/friendsincode/cadence/internal/events"
	"github.com/friendsincode/cadence/internal/meetings"
	"github.com/friendsincode/cadence/internal/models"
	"github.com/friendsincode/cadence/internal/policy"
	"github.com/friendsincode/cadence/internal/roster"
	"github.com/friendsincode/cadence/internal/slots"
)

var testSecret = []byte("test-secret")

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.RosterEntry{}, &models.SlotRow{}, &models.Property{}, &models.CalendarEvent{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := zerolog.Nop()
	bus := events.NewBus()
	rosterSvc := roster.NewService(db, log)
	slotsSvc := slots.NewService(db, log)
	policySvc := policy.NewService(db, log)
	calStore := calendar.NewGormStore(db, log)
	meetingsSvc := meetings.NewService(rosterSvc, slotsSvc, policySvc, calStore, bus, log, meetings.Options{})

	auditSvc := audit.NewService(db, bus, log)

	a := New(testSecret, meetingsSvc, rosterSvc, slotsSvc, policySvc, auditSvc, nil, bus, log)
	r := chi.NewRouter()
	a.Routes(r)
	return r
}

func authedRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)

	token, err := auth.Issue(testSecret, auth.Claims{Subject: "test"}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestMutationsRequireAuth(t *testing.T) {
	r := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/roster", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
}

func TestRosterReplaceAndList(t *testing.T) {
	r := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodPut, "/api/v1/roster", map[string]any{
		"names": []string{"Alice", "bob", "ALICE"},
	}))
	if rr.Code != http.StatusOK {
		t.Fatalf("replace: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var replace struct {
		Saved             int `json:"saved"`
		DuplicatesRemoved int `json:"duplicates_removed"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &replace); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if replace.Saved != 2 || replace.DuplicatesRemoved != 1 {
		t.Fatalf("unexpected replace result: %+v", replace)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/v1/roster", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	var list struct {
		Entries []rosterEntryResponse `json:"entries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", list.Entries)
	}
}

func TestIntervalSetRejectsOutOfRange(t *testing.T) {
	r := newTestRouter(t)

	for _, weeks := range []int{0, 27} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, authedRequest(t, http.MethodPut, "/api/v1/policy/interval", map[string]int{
			"interval_weeks": weeks,
		}))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("interval %d: expected 400, got %d", weeks, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodPut, "/api/v1/policy/interval", map[string]int{
		"interval_weeks": 12,
	}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAllocateWithoutSlotsIsConflict(t *testing.T) {
	r := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodPut, "/api/v1/roster", map[string]any{
		"names": []string{"Alice"},
	}))
	if rr.Code != http.StatusOK {
		t.Fatalf("replace roster: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodPost, "/api/v1/meetings/allocate", map[string]any{
		"names": []string{"Alice"},
	}))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 without slots, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestFullAllocationFlow(t *testing.T) {
	r := newTestRouter(t)

	steps := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPut, "/api/v1/roster", map[string]any{"names": []string{"Alice", "Bob"}}},
		{http.MethodPut, "/api/v1/slots", map[string]any{"slots": []slots.Row{
			{DayOfWeek: "Monday", TimeOfDay: "09:00", DurationMinutes: "30"},
			{DayOfWeek: "Wednesday", TimeOfDay: "2:00 PM", DurationMinutes: "30"},
		}}},
		{http.MethodPut, "/api/v1/policy/interval", map[string]int{"interval_weeks": 8}},
	}
	for _, step := range steps {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, authedRequest(t, step.method, step.path, step.body))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s %s: got %d body=%s", step.method, step.path, rr.Code, rr.Body.String())
		}
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodPost, "/api/v1/meetings/allocate", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("allocate: got %d body=%s", rr.Code, rr.Body.String())
	}
	var batch meetings.BatchResult
	if err := json.Unmarshal(rr.Body.Bytes(), &batch); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if batch.Created != 2 {
		t.Fatalf("expected 2 created, got %+v", batch)
	}

	// Retract one series, keep the roster row.
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodDelete, "/api/v1/roster/Alice/series", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("retract: got %d body=%s", rr.Code, rr.Body.String())
	}

	// Remove Bob entirely.
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodDelete, "/api/v1/roster/Bob", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("remove: got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodDelete, "/api/v1/roster/Nobody", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown name, got %d", rr.Code)
	}
}

func TestAuditQuery(t *testing.T) {
	r := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/v1/audit?limit=10", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("audit query: got %d body=%s", rr.Code, rr.Body.String())
	}
	var page struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("expected empty audit log, got total=%d", page.Total)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/v1/audit?start=not-a-time", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad start, got %d", rr.Code)
	}
}

func TestUpcomingSlotsPreview(t *testing.T) {
	r := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodPut, "/api/v1/slots", map[string]any{"slots": []slots.Row{
		{DayOfWeek: "Monday", TimeOfDay: "09:00", DurationMinutes: "30"},
	}}))
	if rr.Code != http.StatusOK {
		t.Fatalf("replace slots: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/v1/slots/upcoming", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("upcoming: got %d body=%s", rr.Code, rr.Body.String())
	}
	var preview struct {
		Occurrences []meetings.UpcomingSlot `json:"occurrences"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &preview); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// One template over the default 8-week window. The current week's slot may
	// already be in the past, so accept 7 or 8.
	if n := len(preview.Occurrences); n < 7 || n > 8 {
		t.Fatalf("expected 7 or 8 occurrences, got %d", n)
	}
	for _, occ := range preview.Occurrences {
		if !occ.Start.After(time.Now().Add(-time.Minute)) {
			t.Fatalf("occurrence in the past: %v", occ.Start)
		}
	}
}

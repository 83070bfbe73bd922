package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"pet-diary/internal/config"
	"pet-diary/pkg/logger"
)

const debugHeader = "X-Debug-User-ID"

type testServer struct {
	t       *testing.T
	handler http.Handler
	clock   *clockwork.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Config{
		HTTPPort:       "0",
		Timezone:       "Asia/Tokyo",
		Storage:        config.StorageMemory,
		RequestTimeout: 5 * time.Second,
		Metrics:        config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Alerts:         config.AlertsConfig{CacheTTL: time.Minute},
		Housekeeping:   config.HousekeepingConfig{Interval: time.Hour, IdempotencyRetention: 48 * time.Hour},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			AllowDebugUser:  true,
			DebugUserHeader: debugHeader,
		},
	}

	// 2024-05-08 12:00 in Tokyo, a Wednesday.
	fake := clockwork.NewFakeClockAt(time.Date(2024, 5, 8, 3, 0, 0, 0, time.UTC))
	application, err := NewWithConfig(cfg, logger.Discard(), WithClock(fake))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = application.Close() })

	return &testServer{t: t, handler: application.Handler(), clock: fake}
}

func (s *testServer) do(method, path, owner string, payload interface{}, headers ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	s.t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			s.t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set(debugHeader, owner)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			s.t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func (s *testServer) createAnimal(owner, name string) string {
	s.t.Helper()
	rec, body := s.do(http.MethodPost, "/api/animals", owner, map[string]interface{}{"name": name, "species": "cat"})
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("create animal: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	return body["id"].(string)
}

func errorCode(body map[string]interface{}) string {
	if code, ok := body["code"].(string); ok {
		return code
	}
	if envelope, ok := body["error"].(map[string]interface{}); ok {
		code, _ := envelope["code"].(string)
		return code
	}
	return ""
}

func items(body map[string]interface{}, key string) []interface{} {
	list, _ := body[key].([]interface{})
	return list
}

func TestHealthMetricsAndAuth(t *testing.T) {
	s := newTestServer(t)

	if rec, _ := s.do(http.MethodGet, "/api/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, "/api/animals", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, "/metrics", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}

	rec, body := s.do(http.MethodGet, "/api/auth/me", "owner-1", nil)
	if rec.Code != http.StatusOK || body["id"] != "owner-1" {
		t.Fatalf("expected auth me for owner-1, got %d %v", rec.Code, body)
	}
}

func TestAnimalCapAndOwnership(t *testing.T) {
	s := newTestServer(t)

	var first string
	for i := 1; i <= 10; i++ {
		id := s.createAnimal("owner-1", "pet "+strconv.Itoa(i))
		if i == 1 {
			first = id
		}
	}

	rec, body := s.do(http.MethodPost, "/api/animals", "owner-1", map[string]interface{}{"name": "eleventh"})
	if rec.Code != http.StatusConflict || errorCode(body) != "animal_limit_exceeded" {
		t.Fatalf("expected animal_limit_exceeded, got %d %v", rec.Code, body)
	}

	s.createAnimal("owner-2", "first of owner 2")

	if rec, _ := s.do(http.MethodGet, "/api/animals/"+first, "owner-2", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another owner's animal, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, "/api/animals/not-a-uuid", "owner-1", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown animal, got %d", rec.Code)
	}

	rec, body = s.do(http.MethodGet, "/api/animals", "owner-1", nil)
	if rec.Code != http.StatusOK || len(items(body, "items")) != 10 {
		t.Fatalf("expected 10 animals, got %d %v", rec.Code, body)
	}
}

func TestDailyBatchRoundTrip(t *testing.T) {
	s := newTestServer(t)
	animalID := s.createAnimal("owner-1", "Mugi")

	invalid := map[string]interface{}{
		"animalId": animalID,
		"date":     "2024-05-08",
		"excretions": []map[string]interface{}{
			{"time": "08:00", "type": "stool", "condition": "abnormal"},
		},
	}
	rec, body := s.do(http.MethodPost, "/api/records/daily", "owner-1", invalid)
	if rec.Code != http.StatusBadRequest || body["success"] != false || errorCode(body) != "validation_error" {
		t.Fatalf("expected validation failure, got %d %v", rec.Code, body)
	}

	save := map[string]interface{}{
		"animalId":    animalID,
		"date":        "2024-05-08",
		"weight":      4200,
		"temperature": 24.5,
		"memo":        "calm day",
		"meals": []map[string]interface{}{
			{"time": "07:00", "content": "A"},
			{"time": "12:00", "content": "B"},
			{"time": "19:00", "content": "C"},
		},
	}
	rec, body = s.do(http.MethodPost, "/api/records/daily", "owner-1", save)
	if rec.Code != http.StatusOK || body["success"] != true || body["version"] != float64(1) {
		t.Fatalf("expected first save at version 1, got %d %v", rec.Code, body)
	}

	replace := map[string]interface{}{
		"animalId": animalID,
		"date":     "2024-05-08",
		"version":  1,
		"humidity": 40,
		"meals": []map[string]interface{}{
			{"time": "07:00", "content": "A"},
			{"time": "19:00", "content": "C"},
		},
	}
	rec, body = s.do(http.MethodPost, "/api/records/daily", "owner-1", replace)
	if rec.Code != http.StatusOK || body["version"] != float64(2) {
		t.Fatalf("expected second save at version 2, got %d %v", rec.Code, body)
	}

	rec, body = s.do(http.MethodPost, "/api/records/daily", "owner-1", replace)
	if rec.Code != http.StatusConflict || errorCode(body) != "version_conflict" {
		t.Fatalf("expected stale version conflict, got %d %v", rec.Code, body)
	}
	if committed := items(body, "committed"); committed == nil || len(committed) != 0 {
		t.Fatalf("expected empty committed list, got %v", body["committed"])
	}

	rec, body = s.do(http.MethodGet, "/api/animals/"+animalID+"/records/2024-05-08", "owner-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected daily read 200, got %d", rec.Code)
	}
	meals := items(body, "meals")
	if len(meals) != 2 || meals[0].(map[string]interface{})["content"] != "A" || meals[1].(map[string]interface{})["content"] != "C" {
		t.Fatalf("expected meals A and C, got %v", meals)
	}
	condition := body["condition"].(map[string]interface{})
	if condition["temperature"] != 24.5 || condition["humidity"] != float64(40) {
		t.Fatalf("expected merged condition, got %v", condition)
	}
	if body["memo"] != "calm day" || body["version"] != float64(2) {
		t.Fatalf("unexpected daily read %v", body)
	}
	if body["medications"] == nil {
		t.Fatalf("expected empty medications list, not null")
	}

	rec, body = s.do(http.MethodGet, "/api/animals/"+animalID+"/records/2024-05-01", "owner-1", nil)
	if rec.Code != http.StatusOK || body["weight"] != nil || body["memo"] != nil || body["condition"] != nil {
		t.Fatalf("expected empty day with null singletons, got %d %v", rec.Code, body)
	}

	if rec, _ := s.do(http.MethodPost, "/api/records/daily", "owner-2", save); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another owner, got %d", rec.Code)
	}
}

func TestDailyBatchIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	animalID := s.createAnimal("owner-1", "Mugi")

	payload := map[string]interface{}{"animalId": animalID, "date": "2024-05-08", "weight": 300}
	rec, body := s.do(http.MethodPost, "/api/records/daily", "owner-1", payload, "Idempotency-Key", "save-key-0001")
	if rec.Code != http.StatusOK || body["replayed"] != false {
		t.Fatalf("expected first save, got %d %v", rec.Code, body)
	}

	rec, body = s.do(http.MethodPost, "/api/records/daily", "owner-1", payload, "Idempotency-Key", "save-key-0001")
	if rec.Code != http.StatusOK || body["replayed"] != true || rec.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("expected replay, got %d %v", rec.Code, body)
	}
	if body["version"] != float64(1) {
		t.Fatalf("expected replayed version 1, got %v", body["version"])
	}

	payload["weight"] = 310
	rec, body = s.do(http.MethodPost, "/api/records/daily", "owner-1", payload, "Idempotency-Key", "save-key-0001")
	if rec.Code != http.StatusConflict || errorCode(body) != "idempotency_key_reused" {
		t.Fatalf("expected key reuse conflict, got %d %v", rec.Code, body)
	}
}

func TestHistoryAndAlerts(t *testing.T) {
	s := newTestServer(t)
	animalID := s.createAnimal("owner-1", "Mugi")

	rec, body := s.do(http.MethodGet, "/api/animals/"+animalID+"/alerts", "owner-1", nil)
	alerts := items(body, "items")
	if rec.Code != http.StatusOK || len(alerts) != 1 || alerts[0].(map[string]interface{})["type"] != "no_record" {
		t.Fatalf("expected no_record alert, got %d %v", rec.Code, body)
	}

	for date, grams := range map[string]int{"2024-05-07": 300, "2024-05-08": 280} {
		rec, body := s.do(http.MethodPost, "/api/records/daily", "owner-1", map[string]interface{}{
			"animalId": animalID,
			"date":     date,
			"weight":   grams,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("save %s: %d %v", date, rec.Code, body)
		}
	}

	rec, body = s.do(http.MethodGet, "/api/animals/"+animalID+"/alerts", "owner-1", nil)
	alerts = items(body, "items")
	if rec.Code != http.StatusOK || len(alerts) != 1 {
		t.Fatalf("expected one alert after weighing, got %d %v", rec.Code, body)
	}
	alert := alerts[0].(map[string]interface{})
	if alert["type"] != "weight_loss" || alert["level"] != "warning" {
		t.Fatalf("expected weight_loss warning, got %v", alert)
	}

	rec, body = s.do(http.MethodGet, "/api/animals/"+animalID+"/weights?range=30d", "owner-1", nil)
	points := items(body, "items")
	if rec.Code != http.StatusOK || len(points) != 2 || points[0].(map[string]interface{})["date"] != "2024-05-07" {
		t.Fatalf("expected ascending weight history, got %d %v", rec.Code, body)
	}
	if rec, _ := s.do(http.MethodGet, "/api/animals/"+animalID+"/weights?range=7d", "owner-1", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported range, got %d", rec.Code)
	}

	rec, body = s.do(http.MethodGet, "/api/animals/"+animalID+"/records?days=7", "owner-1", nil)
	days := items(body, "items")
	if rec.Code != http.StatusOK || len(days) != 2 || days[0].(map[string]interface{})["date"] != "2024-05-08" {
		t.Fatalf("expected two recent days newest first, got %d %v", rec.Code, body)
	}
	if rec, _ := s.do(http.MethodGet, "/api/animals/"+animalID+"/records?days=91", "owner-1", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for window over 90 days, got %d", rec.Code)
	}
}

func TestRemindersAndLanding(t *testing.T) {
	s := newTestServer(t)
	s.createAnimal("owner-1", "Mugi")

	rec, weekly := s.do(http.MethodPost, "/api/reminders", "owner-1", map[string]interface{}{
		"title":      "Brush",
		"targetTime": "20:00",
		"isRepeat":   true,
		"frequency":  "weekly",
		"daysOfWeek": []string{"Mon", "Wed", "Fri"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create weekly: %d %v", rec.Code, weekly)
	}

	rec, once := s.do(http.MethodPost, "/api/reminders", "owner-1", map[string]interface{}{
		"title": "Vet visit",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create one-time: %d %v", rec.Code, once)
	}
	onceID := once["id"].(string)

	rec, body := s.do(http.MethodPost, "/api/reminders", "owner-1", map[string]interface{}{
		"title":     "Bad",
		"isRepeat":  true,
		"frequency": "weekly",
	})
	if rec.Code != http.StatusBadRequest || errorCode(body) != "validation_error" {
		t.Fatalf("expected weekly without days to fail, got %d %v", rec.Code, body)
	}

	rec, body = s.do(http.MethodGet, "/api/reminders/today", "owner-1", nil)
	today := items(body, "items")
	if rec.Code != http.StatusOK || len(today) != 2 {
		t.Fatalf("expected both reminders on Wednesday, got %d %v", rec.Code, body)
	}
	if first := today[0].(map[string]interface{}); first["title"] != "Vet visit" {
		t.Fatalf("expected all-day reminder first, got %v", first)
	}

	rec, body = s.do(http.MethodPost, "/api/reminders/"+onceID+"/complete", "owner-1", nil)
	if rec.Code != http.StatusOK || body["lastCompletedDate"] != "2024-05-08" || body["completed"] != true {
		t.Fatalf("expected completion today, got %d %v", rec.Code, body)
	}

	rec, body = s.do(http.MethodGet, "/api/today", "owner-1", nil)
	if rec.Code != http.StatusOK || body["date"] != "2024-05-08" || len(items(body, "reminders")) != 2 {
		t.Fatalf("expected landing with two reminders, got %d %v", rec.Code, body)
	}
	if landingAlerts := items(body, "alerts"); len(landingAlerts) != 1 {
		t.Fatalf("expected alerts for one animal, got %v", landingAlerts)
	}

	// Thursday: the weekly reminder is gated and the one-time reminder expired.
	s.clock.Advance(24 * time.Hour)
	rec, body = s.do(http.MethodGet, "/api/reminders/today", "owner-1", nil)
	if rec.Code != http.StatusOK || len(items(body, "items")) != 0 {
		t.Fatalf("expected no reminders on Thursday, got %d %v", rec.Code, body)
	}

	rec, body = s.do(http.MethodGet, "/api/reminders", "owner-1", nil)
	if rec.Code != http.StatusOK || len(items(body, "items")) != 2 {
		t.Fatalf("expected all reminders listed, got %d %v", rec.Code, body)
	}

	if rec, _ := s.do(http.MethodDelete, "/api/reminders/"+onceID, "owner-2", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 deleting another owner's reminder, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodDelete, "/api/reminders/"+onceID, "owner-1", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}
}

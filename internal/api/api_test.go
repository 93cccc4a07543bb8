// api_test.go contains an end-to-end test suite for the HTTP API backed
// by the in-memory stores.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskd/internal/models"
	"taskd/internal/store"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := New(store.NewMemoryStore(), store.NewItemStore(), logger, opts)
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func defaultOptions() Options {
	return Options{ServiceName: "taskd", AllowedOrigins: []string{"*"}}
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("creating %s request: %v", method, err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, defaultOptions())

	resp := doJSON(t, http.MethodGet, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /health status %d", resp.StatusCode)
	}
	var body struct {
		Status    string `json:"status"`
		Service   string `json:"service"`
		Version   string `json:"version"`
		Timestamp string `json:"timestamp"`
	}
	decodeBody(t, resp, &body)
	if body.Status != "healthy" {
		t.Errorf("expected status healthy, got %q", body.Status)
	}
	if body.Service != "taskd" {
		t.Errorf("expected service taskd, got %q", body.Service)
	}
	if body.Version != Version {
		t.Errorf("expected version %s, got %q", Version, body.Version)
	}
	if body.Timestamp == "" {
		t.Error("expected a timestamp")
	}
}

func TestHello(t *testing.T) {
	srv := newTestServer(t, defaultOptions())

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/hello", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/hello status %d", resp.StatusCode)
	}
	var body struct {
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	decodeBody(t, resp, &body)
	if body.Message != "Hello World from Backend!" {
		t.Errorf("unexpected message %q", body.Message)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/hello", `{}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/hello status %d, want 405", resp.StatusCode)
	}
}

func TestGreet(t *testing.T) {
	srv := newTestServer(t, defaultOptions())

	// the limit is 100 characters, not bytes: a multibyte name inside
	// the limit must pass even though it is over 100 bytes long
	cyrillic := strings.Repeat("Ж", 60)

	cases := []struct {
		name         string
		body         string
		wantStatus   int
		wantGreeting string
	}{
		{"valid name", `{"name":"Ada"}`, http.StatusOK, "Hello, Ada! Welcome to taskd."},
		{"name with spaces trimmed", `{"name":"  Ada  "}`, http.StatusOK, "Hello, Ada! Welcome to taskd."},
		{"multibyte name", fmt.Sprintf(`{"name":%q}`, cyrillic), http.StatusOK, "Hello, " + cyrillic + "! Welcome to taskd."},
		{"empty name", `{"name":""}`, http.StatusBadRequest, ""},
		{"whitespace name", `{"name":"   "}`, http.StatusBadRequest, ""},
		{"missing name field", `{}`, http.StatusUnprocessableEntity, ""},
		{"name too long", fmt.Sprintf(`{"name":%q}`, strings.Repeat("a", 101)), http.StatusUnprocessableEntity, ""},
		{"multibyte name too long", fmt.Sprintf(`{"name":%q}`, strings.Repeat("Ж", 101)), http.StatusUnprocessableEntity, ""},
		{"unknown field", `{"name":"Ada","color":"red"}`, http.StatusBadRequest, ""},
		{"malformed body", `{"name":`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/greet", tc.body)
			defer resp.Body.Close()
			if resp.StatusCode != tc.wantStatus {
				raw, _ := io.ReadAll(resp.Body)
				t.Fatalf("status %d, want %d, body: %s", resp.StatusCode, tc.wantStatus, raw)
			}
			if tc.wantStatus != http.StatusOK {
				return
			}
			var body struct {
				Greeting  string `json:"greeting"`
				Timestamp string `json:"timestamp"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decoding greeting: %v", err)
			}
			if body.Greeting != tc.wantGreeting {
				t.Errorf("greeting %q, want %q", body.Greeting, tc.wantGreeting)
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t, defaultOptions())

	// CREATE
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"Buy milk"}`)
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST /api/tasks status %d, body: %s", resp.StatusCode, raw)
	}
	location := resp.Header.Get("Location")
	var created models.Task
	decodeBody(t, resp, &created)

	if _, err := uuid.Parse(created.ID); err != nil {
		t.Errorf("expected UUID id, got %q: %v", created.ID, err)
	}
	if location != "/api/tasks/"+created.ID {
		t.Errorf("unexpected Location header %q", location)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected created_at == updated_at, got %s / %s", created.CreatedAt, created.UpdatedAt)
	}

	// READ back, fields identical
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks/"+created.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET task status %d", resp.StatusCode)
	}
	var got models.Task
	decodeBody(t, resp, &got)
	if got.Title != "Buy milk" || got.Description != "" || got.Completed {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	// UPDATE
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/tasks/"+created.ID,
		`{"title":"Buy milk","description":"2 liters","completed":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT task status %d", resp.StatusCode)
	}
	var updated models.Task
	decodeBody(t, resp, &updated)
	if !updated.Completed || updated.Description != "2 liters" {
		t.Errorf("update not applied: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("updated_at not bumped: %s / %s", updated.CreatedAt, updated.UpdatedAt)
	}

	// DELETE
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+created.ID, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE task status %d", resp.StatusCode)
	}

	// gone now
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks/"+created.ID, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET deleted task status %d, want 404", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+created.ID, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE status %d, want 404", resp.StatusCode)
	}

	// list is empty again
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", "")
	var list taskListResponse
	decodeBody(t, resp, &list)
	if list.Total != 0 || len(list.Tasks) != 0 {
		t.Errorf("expected empty list, got %+v", list)
	}
}

func TestTaskValidation(t *testing.T) {
	srv := newTestServer(t, defaultOptions())

	cases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing title", `{}`, http.StatusUnprocessableEntity},
		{"blank title", `{"title":"   "}`, http.StatusUnprocessableEntity},
		{"title too long", fmt.Sprintf(`{"title":%q}`, strings.Repeat("a", 201)), http.StatusUnprocessableEntity},
		{"description too long", fmt.Sprintf(`{"title":"ok","description":%q}`, strings.Repeat("a", 1001)), http.StatusUnprocessableEntity},
		{"unknown field", `{"title":"ok","priority":3}`, http.StatusBadRequest},
		{"malformed body", `not json`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", tc.body)
			resp.Body.Close()
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("status %d, want %d", resp.StatusCode, tc.wantStatus)
			}
		})
	}
}

func TestTaskListPagination(t *testing.T) {
	srv := newTestServer(t, defaultOptions())

	var ids []string
	for i := 1; i <= 5; i++ {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", fmt.Sprintf(`{"title":"task %d"}`, i))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %d status %d", i, resp.StatusCode)
		}
		var task models.Task
		decodeBody(t, resp, &task)
		ids = append(ids, task.ID)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/tasks?limit=2", "")
	var page taskListResponse
	decodeBody(t, resp, &page)
	if len(page.Tasks) != 2 || page.Total != 5 {
		t.Fatalf("expected 2 of 5 tasks, got %d of %d", len(page.Tasks), page.Total)
	}
	// newest first
	if page.Tasks[0].ID != ids[4] {
		t.Errorf("expected newest task %s first, got %s", ids[4], page.Tasks[0].ID)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks?limit=2&offset=4", "")
	decodeBody(t, resp, &page)
	if len(page.Tasks) != 1 {
		t.Fatalf("expected 1 task on last page, got %d", len(page.Tasks))
	}
	if page.Tasks[0].ID != ids[0] {
		t.Errorf("expected oldest task %s last, got %s", ids[0], page.Tasks[0].ID)
	}

	for _, query := range []string{"?limit=0", "?limit=abc", "?offset=-1"} {
		resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks"+query, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET /api/tasks%s status %d, want 400", query, resp.StatusCode)
		}
	}
}

func TestItemLifecycle(t *testing.T) {
	srv := newTestServer(t, defaultOptions())

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items",
		`{"name":"Keyboard","description":"mechanical","price":49.99,"category":"electronics"}`)
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST /api/items status %d, body: %s", resp.StatusCode, raw)
	}
	var created models.Item
	decodeBody(t, resp, &created)
	if created.ID != 1 {
		t.Errorf("expected first item id 1, got %d", created.ID)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/items/1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET item status %d", resp.StatusCode)
	}
	var got models.Item
	decodeBody(t, resp, &got)
	if got.Name != "Keyboard" || got.Price != 49.99 || got.Category != "electronics" {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/items/1",
		`{"name":"Keyboard","description":"mechanical","price":39.99,"category":"electronics"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT item status %d", resp.StatusCode)
	}
	var updated models.Item
	decodeBody(t, resp, &updated)
	if updated.Price != 39.99 {
		t.Errorf("price not updated: %+v", updated)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/items/1", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE item status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/items/1", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET deleted item status %d, want 404", resp.StatusCode)
	}
}

func TestItemValidation(t *testing.T) {
	srv := newTestServer(t, defaultOptions())

	cases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"unknown category", `{"name":"x","price":1,"category":"gadgets"}`, http.StatusUnprocessableEntity},
		{"missing category", `{"name":"x","price":1}`, http.StatusUnprocessableEntity},
		{"negative price", `{"name":"x","price":-1,"category":"books"}`, http.StatusUnprocessableEntity},
		{"price too large", `{"name":"x","price":1000000,"category":"books"}`, http.StatusUnprocessableEntity},
		{"missing name", `{"price":1,"category":"books"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/items", tc.body)
			resp.Body.Close()
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("status %d, want %d", resp.StatusCode, tc.wantStatus)
			}
		})
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/items/abc", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("GET /api/items/abc status %d, want 400", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, defaultOptions())

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/tasks", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin %q, want *", got)
	}
}

func TestRateLimit(t *testing.T) {
	opts := defaultOptions()
	opts.RatePerSecond = 0.0001
	opts.RateBurst = 1
	srv := newTestServer(t, opts)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/hello", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first request status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/hello", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second request status %d, want 429", resp.StatusCode)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	opts := defaultOptions()
	opts.APIKeys = []string{"secret-key"}
	srv := newTestServer(t, opts)

	// health stays open
	resp := doJSON(t, http.MethodGet, srv.URL+"/health", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/hello", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/hello", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad key status %d, want 401", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/hello", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid key status %d, want 200", resp.StatusCode)
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAPISpec(t *testing.T) {
	w := httptest.NewRecorder()
	handleOpenAPI()(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var spec struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.NewDecoder(w.Body).Decode(&spec); err != nil {
		t.Fatalf("decoding spec: %v", err)
	}

	if spec.Info.Title != "TacQuiz API" {
		t.Errorf("title = %q", spec.Info.Title)
	}

	want := []string{
		"/healthz",
		"/api/rooms",
		"/api/rooms/{code}/join",
		"/api/rooms/{roomID}",
		"/api/rooms/{roomID}/start",
		"/api/rooms/{roomID}/answers",
		"/api/rooms/{roomID}/next",
		"/api/rooms/{roomID}/end",
		"/api/rooms/{roomID}/leave",
		"/api/rooms/{roomID}/chat",
		"/api/rooms/{roomID}/events",
		"/api/rooms/{roomID}/ws",
		"/api/players/{playerID}/heartbeat",
		"/api/questions/{number}",
		"/api/leaderboard",
	}
	for _, path := range want {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("path %s missing from spec", path)
		}
	}
}

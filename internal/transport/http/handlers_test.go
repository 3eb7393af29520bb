package httptransport

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"werewolf-arena/internal/app/arena"
	"werewolf-arena/internal/decider"
	"werewolf-arena/internal/game"
	"werewolf-arena/internal/registry"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := registry.New(registry.Config{}, nil, nil)
	eng := game.NewEngine(decider.NewRandom(1), 1)
	svc := arena.NewService(reg, eng, 500)
	ts := httptest.NewServer(NewRouter(svc, nil))
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createRequest(id string) map[string]any {
	return map[string]any{
		"session_id": id,
		"seats": []map[string]any{
			{"seat_id": 1, "role": "werewolf", "is_human": true},
			{"seat_id": 2, "role": "werewolf"},
			{"seat_id": 3, "role": "werewolf"},
			{"seat_id": 4, "role": "seer"},
			{"seat_id": 5, "role": "witch"},
			{"seat_id": 6, "role": "hunter"},
			{"seat_id": 7, "role": "villager"},
			{"seat_id": 8, "role": "villager"},
			{"seat_id": 9, "role": "villager"},
		},
	}
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/sessions", createRequest("room-1"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created struct {
		SessionID string `json:"session_id"`
		Status    string `json:"status"`
		SeatCount int    `json:"seat_count"`
	}
	decodeBody(t, resp, &created)
	if created.SessionID != "room-1" || created.Status != "waiting" || created.SeatCount != 9 {
		t.Fatalf("create body = %+v", created)
	}

	resp = postJSON(t, ts.URL+"/api/sessions", createRequest("room-1"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate create status = %d, want 409", resp.StatusCode)
	}
}

func TestCreateSessionRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", bytes.NewReader([]byte("{nope")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json status = %d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/sessions", map[string]any{
		"session_id": "tiny",
		"seats":      []map[string]any{{"seat_id": 1, "role": "werewolf"}},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad setup status = %d, want 400", resp.StatusCode)
	}
}

func TestStepAndActionFlow(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/sessions", createRequest("room-2"))
	resp.Body.Close()

	// With a human wolf, auto-stepping must block on its pack chat first.
	var step struct {
		Status string `json:"status"`
	}
	for i := 0; i < 10 && step.Status != "waiting_for_human"; i++ {
		r := postJSON(t, ts.URL+"/api/sessions/room-2/step", nil)
		if r.StatusCode != http.StatusOK {
			t.Fatalf("step status = %d, want 200", r.StatusCode)
		}
		decodeBody(t, r, &step)
	}
	if step.Status != "waiting_for_human" {
		t.Fatalf("step never blocked on the human seat, last status %q", step.Status)
	}

	var view struct {
		MySeat  int `json:"my_seat"`
		Pending *struct {
			Kind       string `json:"kind"`
			SeatID     int    `json:"seat_id"`
			Candidates []int  `json:"candidates"`
		} `json:"pending"`
	}
	r, err := http.Get(ts.URL + "/api/sessions/room-2/state?seat=1")
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	if r.StatusCode != http.StatusOK {
		t.Fatalf("state status = %d, want 200", r.StatusCode)
	}
	decodeBody(t, r, &view)
	if view.MySeat != 1 || view.Pending == nil || view.Pending.SeatID != 1 {
		t.Fatalf("view = %+v, want a pending prompt for seat 1", view)
	}

	// An action of the wrong kind is the caller's mistake.
	r = postJSON(t, ts.URL+"/api/sessions/room-2/seats/1/actions",
		map[string]any{"action_kind": "verify", "target": 2})
	r.Body.Close()
	if r.StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong kind status = %d, want 400", r.StatusCode)
	}

	// Answer whatever the engine actually asked for.
	payload := map[string]any{"action_kind": view.Pending.Kind}
	switch view.Pending.Kind {
	case "speech", "wolf_chat", "last_words":
		payload["text"] = "I have a bad feeling about seat 1"
	default:
		if len(view.Pending.Candidates) > 0 {
			payload["target"] = view.Pending.Candidates[0]
		}
	}
	r = postJSON(t, ts.URL+"/api/sessions/room-2/seats/1/actions", payload)
	if r.StatusCode != http.StatusOK {
		t.Fatalf("action status = %d, want 200", r.StatusCode)
	}
	var acted struct {
		Success bool `json:"success"`
		State   struct {
			Status       string `json:"status"`
			StateVersion int64  `json:"state_version"`
		} `json:"state"`
	}
	decodeBody(t, r, &acted)
	if !acted.Success {
		t.Fatal("action response success = false")
	}
	if acted.State.StateVersion == 0 {
		t.Fatal("state_version missing from action response")
	}
}

func TestStepUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	r := postJSON(t, ts.URL+"/api/sessions/ghost/step", nil)
	r.Body.Close()
	if r.StatusCode != http.StatusNotFound {
		t.Fatalf("step status = %d, want 404", r.StatusCode)
	}
}

func TestStateRequiresSeat(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/sessions", createRequest("room-3"))
	resp.Body.Close()

	r, err := http.Get(ts.URL + "/api/sessions/room-3/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing seat status = %d, want 400", r.StatusCode)
	}
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/sessions", createRequest("room-4"))
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/room-4", nil)
	r, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", r.StatusCode)
	}
	r, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", r.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	r, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", r.StatusCode)
	}
}

func TestHealthzReportsDependencyFailure(t *testing.T) {
	reg := registry.New(registry.Config{}, nil, nil)
	eng := game.NewEngine(decider.NewRandom(1), 1)
	svc := arena.NewService(reg, eng, 500)
	ts := httptest.NewServer(NewRouter(svc, func() error { return errors.New("db down") }))
	defer ts.Close()

	r, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("healthz status = %d, want 503", r.StatusCode)
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cxd309/ecospeed/internal/engine"
	"github.com/cxd309/ecospeed/internal/store"
)

type memHistory struct {
	saved []engine.Report
	err   error
}

func (m *memHistory) SaveReport(_ context.Context, r engine.Report) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *memHistory) RecentRuns(_ context.Context, limit int) ([]store.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []store.RunRecord
	for i := len(m.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, store.RunRecord{ID: m.saved[i].RunID, BestSpeedKmh: m.saved[i].Best.CruiseSpeedKmh})
	}
	return out, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Error   bool            `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h History, method, path, body string) (int, envelope) {
	t.Helper()
	app := NewApp(h, nil)

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decoding %s %s: %v", method, path, err)
	}
	return resp.StatusCode, env
}

const adviseBody = `{
	"config": {"speeds": {"candidates": [90, 100, 110], "user_max_kmh": 110, "segmentation": true}},
	"route": {"coordinates": [[0, 0], [0.01, 0], [0.02, 0]]}
}`

func TestHealthCheck(t *testing.T) {
	code, _ := do(t, nil, http.MethodGet, "/healthz", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestVehicles(t *testing.T) {
	code, env := do(t, nil, http.MethodGet, "/api/v1/vehicles", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("unexpected response %d %+v", code, env)
	}
	var list []map[string]any
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decoding catalog: %v", err)
	}
	if len(list) != 12 {
		t.Fatalf("expected 12 catalog entries, got %d", len(list))
	}
}

func TestAdvise(t *testing.T) {
	hist := &memHistory{}
	code, env := do(t, hist, http.MethodPost, "/api/v1/advise", adviseBody)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("unexpected response %d %+v", code, env)
	}

	var rep engine.Report
	if err := json.Unmarshal(env.Data, &rep); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if rep.Best.CruiseSpeedKmh != 100 {
		t.Fatalf("expected best 100, got %v", rep.Best.CruiseSpeedKmh)
	}
	if len(hist.saved) != 1 || hist.saved[0].RunID != rep.RunID {
		t.Fatalf("run not recorded: %+v", hist.saved)
	}
}

func TestAdviseHistoryFailureIsNotFatal(t *testing.T) {
	code, env := do(t, &memHistory{err: errors.New("disk full")}, http.MethodPost, "/api/v1/advise", adviseBody)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("unexpected response %d %+v", code, env)
	}
}

func TestAdviseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"config":`, http.StatusBadRequest},
		{"too few points", `{"route": {"coordinates": [[0, 0]]}}`, http.StatusBadRequest},
		{"invalid config", `{"config": {"speeds": {"user_max_kmh": -1}}, "route": {"coordinates": [[0, 0], [0.01, 0]]}}`, http.StatusBadRequest},
		{"unknown vehicle", `{"config": {"vehicle": {"model": "Trabant"}}, "route": {"coordinates": [[0, 0], [0.01, 0]]}}`, http.StatusBadRequest},
		{"no valid candidate", `{"config": {"speeds": {"candidates": [0, -5], "user_max_kmh": 110}}, "route": {"coordinates": [[0, 0], [0.01, 0]]}}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, nil, http.MethodPost, "/api/v1/advise", tt.body)
			if code != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, code, env.Message)
			}
			if !env.Error || env.Message == "" {
				t.Fatalf("expected error envelope, got %+v", env)
			}
		})
	}
}

func TestRuns(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		code, _ := do(t, nil, http.MethodGet, "/api/v1/runs", "")
		if code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", code)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		code, _ := do(t, &memHistory{}, http.MethodGet, "/api/v1/runs?limit=abc", "")
		if code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", code)
		}
	})

	t.Run("limited", func(t *testing.T) {
		hist := &memHistory{saved: []engine.Report{{RunID: "a"}, {RunID: "b"}, {RunID: "c"}}}
		code, env := do(t, hist, http.MethodGet, "/api/v1/runs?limit=2", "")
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		var runs []store.RunRecord
		if err := json.Unmarshal(env.Data, &runs); err != nil {
			t.Fatalf("decoding runs: %v", err)
		}
		if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
			t.Fatalf("unexpected runs %+v", runs)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		code, _ := do(t, &memHistory{err: errors.New("locked")}, http.MethodGet, "/api/v1/runs", "")
		if code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", code)
		}
	})
}

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cv2pdf "github.com/alnah/go-cv2pdf"
)

func testServer(t *testing.T) *server {
	t.Helper()

	svc := cv2pdf.New(cv2pdf.WithWorkers(1))
	t.Cleanup(func() { _ = svc.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newServer(svc, log)
}

func postJSON(t *testing.T, s *server, path, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

const validBody = `{
	"profile": {
		"personal": {"givenName": "Ada", "familyName": "Lovelace"},
		"summary": "Wrote the first program.",
		"skills": [{"name": "Mathematics", "level": 5}]
	},
	"template": "classic",
	"region": "usa",
	"locale": "en"
}`

// ---------------------------------------------------------------------------
// TestHandlePreview - HTML Endpoint
// ---------------------------------------------------------------------------

func TestHandlePreview(t *testing.T) {
	t.Parallel()

	s := testServer(t)

	t.Run("happy path", func(t *testing.T) {
		resp := postJSON(t, s, "/preview", validBody)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("content type = %q", ct)
		}
		if resp.Header.Get("X-Page-Count") == "" {
			t.Error("page count header missing")
		}
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "Ada Lovelace") {
			t.Error("preview missing profile content")
		}
	})

	t.Run("invalid json body", func(t *testing.T) {
		resp := postJSON(t, s, "/preview", `{not json`)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("missing profile", func(t *testing.T) {
		resp := postJSON(t, s, "/preview", `{"template": "classic", "region": "usa"}`)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("profile fails schema validation", func(t *testing.T) {
		resp := postJSON(t, s, "/preview",
			`{"profile": {"hobbies": ["chess"]}, "template": "classic", "region": "usa"}`)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		resp := postJSON(t, s, "/preview",
			`{"profile": {}, "template": "brutalist", "region": "usa"}`)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
		var body map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decoding error body: %v", err)
		}
		if body["error"] == "" {
			t.Error("error body missing message")
		}
	})

	t.Run("unknown region", func(t *testing.T) {
		resp := postJSON(t, s, "/preview",
			`{"profile": {}, "template": "classic", "region": "atlantis"}`)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
	})
}

// ---------------------------------------------------------------------------
// TestHandleHealth - Liveness and Pool Stats
// ---------------------------------------------------------------------------

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Status string           `json:"status"`
		Pool   cv2pdf.PoolStats `json:"pool"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q", body.Status)
	}
	if body.Pool.Workers != 1 {
		t.Errorf("pool workers = %d, want 1", body.Pool.Workers)
	}
}

// ---------------------------------------------------------------------------
// TestHandleTemplates - Inventory Endpoint
// ---------------------------------------------------------------------------

func TestHandleTemplates(t *testing.T) {
	t.Parallel()

	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Templates []string `json:"templates"`
		Regions   []string `json:"regions"`
		Locales   []string `json:"locales"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}

	contains := func(vals []string, want string) bool {
		for _, v := range vals {
			if v == want {
				return true
			}
		}
		return false
	}
	if !contains(body.Templates, "classic") {
		t.Errorf("templates = %v", body.Templates)
	}
	if !contains(body.Regions, "usa") {
		t.Errorf("regions = %v", body.Regions)
	}
	if !contains(body.Locales, "en") {
		t.Errorf("locales = %v", body.Locales)
	}
}

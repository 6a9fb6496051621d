package cv2pdf

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestNew - Configuration Options
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		svc := New(withEngineFactory(fakeFactory(nil)))
		defer svc.Close()

		if svc.cfg.timeout != defaultTimeout {
			t.Errorf("timeout = %v, want %v", svc.cfg.timeout, defaultTimeout)
		}
	})

	t.Run("with options", func(t *testing.T) {
		t.Parallel()

		svc := New(
			withEngineFactory(fakeFactory(nil)),
			WithTimeout(2*time.Minute),
			WithWorkers(3),
			WithQueueDepth(7),
		)
		defer svc.Close()

		if svc.cfg.timeout != 2*time.Minute {
			t.Errorf("timeout = %v", svc.cfg.timeout)
		}
		if got := svc.pool.Size(); got != 3 {
			t.Errorf("workers = %d, want 3", got)
		}
	})

	t.Run("non-positive timeout panics", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		WithTimeout(0)
	})
}

// ---------------------------------------------------------------------------
// TestServiceRender - Full Pipeline
// ---------------------------------------------------------------------------

func TestServiceRender(t *testing.T) {
	t.Parallel()

	t.Run("produces pdf and matching preview html", func(t *testing.T) {
		t.Parallel()

		var gotHTML atomic.Pointer[string]
		var gotPS atomic.Pointer[PageSettings]
		svc := New(withEngineFactory(fakeFactory(func(ctx context.Context, html string, ps PageSettings) ([]byte, error) {
			gotHTML.Store(&html)
			gotPS.Store(&ps)
			return []byte("%PDF-fake"), nil
		})), WithWorkers(1))
		defer svc.Close()

		res, err := svc.Render(context.Background(), RenderRequest{
			Profile:  sampleProfile(),
			Template: "classic",
			Region:   "usa",
			Locale:   "en",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(res.PDF) != "%PDF-fake" {
			t.Errorf("pdf = %q", res.PDF)
		}
		if res.Pages < 1 {
			t.Errorf("pages = %d", res.Pages)
		}
		if res.HTML == "" || !strings.Contains(res.HTML, "Ada Lovelace") {
			t.Error("result HTML missing content")
		}

		// The engine prints exactly the HTML the caller got as preview.
		if h := gotHTML.Load(); h == nil || *h != res.HTML {
			t.Error("engine rendered different HTML than the preview")
		}
		// usa renders on letter paper.
		if ps := gotPS.Load(); ps == nil || ps.Size != PageSizeLetter {
			t.Errorf("engine page settings = %+v, want letter", gotPS.Load())
		}
	})

	t.Run("empty locale defaults", func(t *testing.T) {
		t.Parallel()

		svc := New(withEngineFactory(fakeFactory(nil)), WithWorkers(1))
		defer svc.Close()

		if _, err := svc.Render(context.Background(), RenderRequest{
			Profile:  sampleProfile(),
			Template: "classic",
			Region:   "usa",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("explicit genes override the template", func(t *testing.T) {
		t.Parallel()

		svc := New(withEngineFactory(fakeFactory(nil)), WithWorkers(1))
		defer svc.Close()

		genes, err := TemplateGenes("metro")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.Render(context.Background(), RenderRequest{
			Profile: sampleProfile(),
			Genes:   &genes,
			Region:  "usa",
			Locale:  "en",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("configuration errors pass through", func(t *testing.T) {
		t.Parallel()

		svc := New(withEngineFactory(fakeFactory(nil)), WithWorkers(1))
		defer svc.Close()

		tests := []struct {
			name    string
			req     RenderRequest
			wantErr error
		}{
			{"unknown template", RenderRequest{Template: "brutalist", Region: "usa"}, ErrUnknownTemplate},
			{"unknown region", RenderRequest{Template: "classic", Region: "atlantis"}, ErrUnknownRegion},
			{"unknown locale", RenderRequest{Template: "classic", Region: "usa", Locale: "tlh"}, ErrUnknownLocale},
		}
		for _, tt := range tests {
			if _, err := svc.Render(context.Background(), tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: error = %v, want %v", tt.name, err, tt.wantErr)
			}
		}
	})

	t.Run("slow engine surfaces a timeout", func(t *testing.T) {
		t.Parallel()

		svc := New(withEngineFactory(fakeFactory(func(ctx context.Context, _ string, _ PageSettings) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})), WithWorkers(1), WithTimeout(30*time.Millisecond))
		defer svc.Close()

		_, err := svc.Render(context.Background(), RenderRequest{
			Profile:  sampleProfile(),
			Template: "classic",
			Region:   "usa",
		})
		if !errors.Is(err, ErrRenderTimeout) {
			t.Fatalf("error = %v, want ErrRenderTimeout", err)
		}
	})

	t.Run("warnings propagate", func(t *testing.T) {
		t.Parallel()

		svc := New(withEngineFactory(fakeFactory(nil)), WithWorkers(1))
		defer svc.Close()

		res, err := svc.Render(context.Background(), RenderRequest{
			Profile:  Profile{}, // nameless profile warns
			Template: "classic",
			Region:   "usa",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		found := false
		for _, w := range res.Warnings {
			if w.Kind == WarnValidation {
				found = true
			}
		}
		if !found {
			t.Errorf("validation warning missing: %v", res.Warnings)
		}
	})
}

// ---------------------------------------------------------------------------
// TestServicePreview - HTML Without a Browser
// ---------------------------------------------------------------------------

func TestServicePreview(t *testing.T) {
	t.Parallel()

	var factoryCalls atomic.Int32
	svc := New(withEngineFactory(func() renderEngine {
		factoryCalls.Add(1)
		return &fakeEngine{}
	}), WithWorkers(1))
	defer svc.Close()

	res, err := svc.Preview(RenderRequest{
		Profile:  sampleProfile(),
		Template: "classic",
		Region:   "dach",
		Locale:   "de",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PDF != nil {
		t.Error("preview produced PDF bytes")
	}
	if !strings.Contains(res.HTML, "Berufserfahrung") {
		t.Error("preview missing localized section title")
	}
	if factoryCalls.Load() != 0 {
		t.Errorf("preview spawned %d engines, want 0", factoryCalls.Load())
	}
}

// ---------------------------------------------------------------------------
// TestServiceStats - Pool Visibility
// ---------------------------------------------------------------------------

func TestServiceStats(t *testing.T) {
	t.Parallel()

	svc := New(withEngineFactory(fakeFactory(nil)), WithWorkers(2))
	defer svc.Close()

	st := svc.Stats()
	if st.Workers != 2 || st.Idle != 2 || st.Busy != 0 {
		t.Errorf("stats = %+v", st)
	}
}

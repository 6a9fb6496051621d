package cv2pdf

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// defaultTimeout bounds a single render when no timeout is specified.
const defaultTimeout = 30 * time.Second

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout    time.Duration
	workers    int
	queueDepth int
}

// WithTimeout sets the per-render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("cv2pdf: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithWorkers sets the number of rendering workers. Zero means
// auto-size from GOMAXPROCS (see ResolvePoolSize).
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.cfg.workers = n
	}
}

// WithQueueDepth bounds the number of renders waiting for a worker.
func WithQueueDepth(n int) Option {
	return func(s *Service) {
		s.cfg.queueDepth = n
	}
}

// withEngineFactory injects a fake engine for tests.
func withEngineFactory(f engineFactory) Option {
	return func(s *Service) {
		s.factory = f
	}
}

// RenderRequest identifies what to render and how.
type RenderRequest struct {
	Profile  Profile `json:"profile"`
	Template string  `json:"template"`
	Region   string  `json:"region"`
	Locale   string  `json:"locale"`

	// Genes overrides individual template axes; nil keeps the
	// template's defaults.
	Genes *GeneConfig `json:"genes,omitempty"`
}

// RenderResult carries everything a render produced. HTML is the same
// markup the PDF was printed from, usable as a pixel-faithful preview.
type RenderResult struct {
	PDF      []byte
	HTML     string
	Pages    int
	Warnings []Warning
}

// Service orchestrates the profile-to-PDF pipeline: compile the
// profile into a block document, paginate it, emit HTML, and print it
// with a pooled headless browser.
type Service struct {
	cfg     serviceConfig
	factory engineFactory
	pool    *RenderPool
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithWorkers).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{timeout: defaultTimeout, queueDepth: DefaultQueueDepth},
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create real engines if not injected (e.g., by tests)
	if s.factory == nil {
		timeout := s.cfg.timeout
		s.factory = func() renderEngine { return newRodEngine(timeout) }
	}

	s.pool = NewRenderPool(ResolvePoolSize(s.cfg.workers), s.cfg.queueDepth, s.factory)
	return s
}

// Render runs the full pipeline and returns the PDF plus its preview
// HTML. The context bounds the whole operation; a render that exceeds
// the service timeout fails with ErrRenderTimeout.
func (s *Service) Render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	compiled, paginated, htmlContent, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()

	ps := compiled.Region.PageSettings()
	pdf, err := s.pool.Submit(ctx, htmlContent, ps)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", ErrRenderTimeout, s.cfg.timeout)
		}
		return nil, err
	}

	return &RenderResult{
		PDF:      pdf,
		HTML:     htmlContent,
		Pages:    len(paginated.Pages),
		Warnings: compiled.Warnings,
	}, nil
}

// Preview runs the pipeline up to HTML, skipping the browser entirely.
func (s *Service) Preview(req RenderRequest) (*RenderResult, error) {
	compiled, paginated, htmlContent, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	return &RenderResult{
		HTML:     htmlContent,
		Pages:    len(paginated.Pages),
		Warnings: compiled.Warnings,
	}, nil
}

// prepare compiles, paginates and serializes a request to HTML.
func (s *Service) prepare(req RenderRequest) (*CompileResult, *Paginated, string, error) {
	locale := req.Locale
	if locale == "" {
		locale = DefaultLocale
	}

	var (
		compiled *CompileResult
		err      error
	)
	if req.Genes != nil {
		compiled, err = CompileWithGenes(req.Profile, *req.Genes, req.Region, locale)
	} else {
		compiled, err = CompileDocument(req.Profile, req.Template, req.Region, locale)
	}
	if err != nil {
		return nil, nil, "", err
	}

	paginated, warns, err := Paginate(compiled.Document, compiled.Region.PageSettings())
	if err != nil {
		return nil, nil, "", fmt.Errorf("paginating document: %w", err)
	}
	compiled.Warnings = append(compiled.Warnings, warns...)

	htmlContent, err := RenderHTML(paginated)
	if err != nil {
		return nil, nil, "", fmt.Errorf("rendering HTML: %w", err)
	}

	return compiled, paginated, htmlContent, nil
}

// Stats reports current pool occupancy.
func (s *Service) Stats() PoolStats {
	return s.pool.Stats()
}

// Close releases the worker pool and its browsers.
func (s *Service) Close() error {
	return s.pool.Close()
}

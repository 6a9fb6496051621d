package cv2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-cv2pdf/internal/fileutil"
	"github.com/alnah/go-cv2pdf/internal/process"
)

// renderEngine abstracts one headless rendering engine instance. The
// worker pool owns engines; tests substitute fakes via an engine
// factory option.
type renderEngine interface {
	RenderPDF(ctx context.Context, htmlContent string, ps PageSettings) ([]byte, error)
	Close() error
}

// engineFactory creates a fresh engine, used on spawn and respawn.
type engineFactory func() renderEngine

// Compile-time interface check.
var _ renderEngine = (*rodEngine)(nil)

const pointsPerInch = 72.0

// rodEngine renders documents with headless Chrome via go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodEngine struct {
	browser *rod.Browser
	ln      *launcher.Launcher
	timeout time.Duration
}

func newRodEngine(timeout time.Duration) *rodEngine {
	return &rodEngine{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (e *rodEngine) ensureBrowser() error {
	if e.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	e.ln = l
	e.browser = browser
	return nil
}

// Close releases browser resources. The process group is killed as a
// fallback so a wedged Chrome cannot leak child processes.
func (e *rodEngine) Close() error {
	if e.browser == nil {
		return nil
	}
	err := e.browser.Close()
	if e.ln != nil {
		if pid := e.ln.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		e.ln.Kill()
	}
	e.browser = nil
	e.ln = nil
	return err
}

// RenderPDF loads the document HTML in headless Chrome and prints it to
// PDF. Page geometry comes entirely from the HTML (@page rules and
// absolutely positioned blocks), so Chrome prints with zero margins and
// the CSS page size; nothing downstream alters geometry.
func (e *rodEngine) RenderPDF(ctx context.Context, htmlContent string, ps PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := e.ensureBrowser(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// Failures past this point mean the browser died or wedged; type
	// them as crashes so the pool replaces the engine and retries once.
	page, err := e.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrRenderCrash, ErrPageCreate, err)
	}
	defer page.Close()

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := ps.Dimensions()
	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:        floatPtr(w / pointsPerInch),
		PaperHeight:       floatPtr(h / pointsPerInch),
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
		PreferCSSPageSize: true,
		PrintBackground:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrRenderCrash, ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: reading PDF stream: %v", ErrRenderCrash, ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

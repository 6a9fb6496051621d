// Package cv2pdf compiles structured résumé profiles into paginated PDF
// documents using headless Chrome.
//
// # Quick Start
//
// Create a service, render a profile, and close when done:
//
//	svc := cv2pdf.New()
//	defer svc.Close()
//
//	result, err := svc.Render(ctx, cv2pdf.RenderRequest{
//	    Profile:  profile,
//	    Template: "classic",
//	    Region:   "usa",
//	    Locale:   "en",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("resume.pdf", result.PDF, 0644)
//
// The result carries the PDF bytes (result.PDF) and the exact HTML the
// PDF was printed from (result.HTML), usable as a pixel-faithful
// browser preview. Use Service.Preview to skip PDF generation.
//
// # Rendering Pipeline
//
// A render proceeds through these stages:
//
//  1. Gene resolution: the template id expands to a tuple of visual
//     genes (header, colors, typography, columns, sections, density)
//     which resolve to a concrete Theme.
//  2. Compilation: the profile becomes a tree of layout blocks, ordered
//     and filtered by the target region's display rules.
//  3. Pagination: blocks are measured deterministically and distributed
//     across pages; oversized entries are split, section titles never
//     orphan at a page bottom.
//  4. HTML emission: every block becomes an absolutely positioned
//     element at its computed geometry.
//  5. PDF printing via headless Chrome (go-rod), one pooled browser per
//     worker.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := cv2pdf.New(
//	    cv2pdf.WithTimeout(time.Minute),
//	    cv2pdf.WithWorkers(4),
//	    cv2pdf.WithQueueDepth(64),
//	)
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library
// automatically downloads a managed Chromium instance on first run
// (~/.cache/rod/browser/). Use ROD_BROWSER_BIN to point at a
// pre-installed binary; in CI and containers the sandbox is disabled
// automatically.
package cv2pdf

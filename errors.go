package cv2pdf

import "errors"

// Sentinel errors for library operations.
var (
	// Configuration errors: unknown template/gene/region identifiers.
	// These are fatal at the compile boundary and never retried.
	ErrUnknownTemplate = errors.New("unknown template id")
	ErrUnknownGene     = errors.New("unknown gene value")
	ErrUnknownRegion   = errors.New("unknown region id")
	ErrUnknownLocale   = errors.New("unknown locale")

	// Document/IR validation errors.
	ErrDuplicateBlockID = errors.New("duplicate block id in document tree")
	ErrInvalidBlock     = errors.New("invalid block")
	ErrInvalidStyle     = errors.New("invalid style value")
	ErrInvalidLayout    = errors.New("invalid layout value")
	ErrNilDocument      = errors.New("document cannot be nil")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Render service errors, surfaced to Submit callers with the
	// specific kind so a timeout is distinguishable from a crash.
	ErrRenderTimeout  = errors.New("render timed out")
	ErrRenderCrash    = errors.New("rendering engine crashed")
	ErrQueueSaturated = errors.New("render queue is full")
	ErrPoolClosed     = errors.New("render pool is closed")

	// Browser errors (engine lifecycle).
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// WarningKind classifies recoverable conditions that never abort the
// pipeline: a best-effort document is always produced.
type WarningKind string

const (
	// WarnValidation marks a missing or malformed profile field that was
	// replaced by a placeholder block.
	WarnValidation WarningKind = "validation"

	// WarnLayoutOverflow marks content that exceeded the page content
	// area and was clipped or force-split.
	WarnLayoutOverflow WarningKind = "layout_overflow"
)

// Warning describes one recovered condition from compilation or layout.
type Warning struct {
	Kind   WarningKind
	Field  string // profile field or block id the warning refers to
	Detail string
}

func (w Warning) String() string {
	if w.Field == "" {
		return string(w.Kind) + ": " + w.Detail
	}
	return string(w.Kind) + ": " + w.Field + ": " + w.Detail
}

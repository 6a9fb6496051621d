package cv2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2

	// DefaultQueueDepth bounds jobs waiting for a worker. A full queue
	// rejects new submissions instead of growing without limit.
	DefaultQueueDepth = 32
)

// WorkerState describes what a pool worker is currently doing.
type WorkerState int32

const (
	// WorkerIdle means the worker waits for a job.
	WorkerIdle WorkerState = iota

	// WorkerBusy means the worker is rendering.
	WorkerBusy

	// WorkerCrashed means the worker's engine failed and has not been
	// replaced yet.
	WorkerCrashed

	// WorkerRespawning means the worker is tearing down a dead engine
	// and starting a fresh one.
	WorkerRespawning
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerBusy:
		return "busy"
	case WorkerCrashed:
		return "crashed"
	case WorkerRespawning:
		return "respawning"
	default:
		return "unknown"
	}
}

// PoolStats is a point-in-time snapshot of pool occupancy.
type PoolStats struct {
	Workers    int `json:"workers"`
	Idle       int `json:"idle"`
	Busy       int `json:"busy"`
	Respawning int `json:"respawning"`
	Queued     int `json:"queued"`
}

// renderJob travels from Submit to a worker. The result channel is
// buffered so a worker never blocks on a caller that gave up.
type renderJob struct {
	id     string
	ctx    context.Context
	html   string
	ps     PageSettings
	result chan jobResult
}

type jobResult struct {
	pdf []byte
	err error
}

// RenderPool runs a fixed set of workers, each owning one rendering
// engine. Engines are created lazily on a worker's first job and
// replaced when they crash or a job is abandoned mid-render, since a
// browser interrupted partway through a print is in an unknown state.
type RenderPool struct {
	factory engineFactory
	jobs    chan renderJob

	mu     sync.Mutex
	states []WorkerState
	closed bool

	wg   sync.WaitGroup
	stop chan struct{}
}

// NewRenderPool starts n workers fed by a queue of the given depth.
// The factory is invoked per worker, lazily, and again on respawn.
func NewRenderPool(n, queueDepth int, factory engineFactory) *RenderPool {
	if n < 1 {
		n = 1
	}
	if queueDepth < 1 {
		queueDepth = DefaultQueueDepth
	}

	p := &RenderPool{
		factory: factory,
		jobs:    make(chan renderJob, queueDepth),
		states:  make([]WorkerState, n),
		stop:    make(chan struct{}),
	}

	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	return p
}

// Submit enqueues a render and waits for its completion. A full queue
// fails immediately with ErrQueueSaturated so the caller can shed load;
// saturation is never retried internally. A job whose engine crashes or
// times out is retried once on another attempt before the error is
// surfaced.
func (p *RenderPool) Submit(ctx context.Context, htmlContent string, ps PageSettings) ([]byte, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	job := renderJob{
		id:     uuid.NewString(),
		ctx:    ctx,
		html:   htmlContent,
		ps:     ps,
		result: make(chan jobResult, 1),
	}

	pdf, err := p.runJob(job)
	if err != nil && retryable(err) {
		logger().Warn("retrying render job", "job", job.id, "error", err)
		job.result = make(chan jobResult, 1)
		pdf, err = p.runJob(job)
	}
	return pdf, err
}

// retryable reports whether a failed attempt deserves one more try.
// Saturation and caller cancellation never do.
func retryable(err error) bool {
	return crashClass(err) || errors.Is(err, ErrRenderTimeout)
}

// crashClass reports an engine-level failure: the engine is in an
// unknown state and must not serve another job.
func crashClass(err error) bool {
	return errors.Is(err, ErrRenderCrash) ||
		errors.Is(err, ErrBrowserConnect) ||
		errors.Is(err, ErrPageCreate) ||
		errors.Is(err, ErrPageLoad) ||
		errors.Is(err, ErrPDFGeneration)
}

func (p *RenderPool) runJob(job renderJob) ([]byte, error) {
	select {
	case p.jobs <- job:
	default:
		return nil, ErrQueueSaturated
	}

	select {
	case res := <-job.result:
		return res.pdf, res.err
	case <-job.ctx.Done():
		// The worker notices the dead context on pickup or during the
		// render; the buffered result channel lets it move on.
		return nil, job.ctx.Err()
	case <-p.stop:
		return nil, ErrPoolClosed
	}
}

// worker owns one engine for its lifetime, replacing it after crashes.
func (p *RenderPool) worker(idx int) {
	defer p.wg.Done()

	var engine renderEngine
	defer func() {
		if engine != nil {
			if err := engine.Close(); err != nil {
				logger().Warn("closing render engine", "worker", idx, "error", err)
			}
		}
	}()

	for {
		select {
		case <-p.stop:
			return
		case job := <-p.jobs:
			if job.ctx.Err() != nil {
				job.result <- jobResult{err: job.ctx.Err()}
				continue
			}

			if engine == nil {
				engine = p.factory()
			}

			p.setState(idx, WorkerBusy)
			start := time.Now()
			pdf, err := engine.RenderPDF(job.ctx, job.html, job.ps)
			job.result <- jobResult{pdf: pdf, err: err}

			switch {
			case err == nil:
				logger().Debug("render job done",
					"job", job.id, "worker", idx, "duration", time.Since(start))
				p.setState(idx, WorkerIdle)
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
				errors.Is(err, ErrRenderTimeout), crashClass(err):
				// The engine may be mid-print or wedged; replace it.
				p.setState(idx, WorkerCrashed)
				logger().Warn("render job failed, respawning engine",
					"job", job.id, "worker", idx, "error", err)
				p.setState(idx, WorkerRespawning)
				if cerr := engine.Close(); cerr != nil {
					logger().Warn("closing crashed engine", "worker", idx, "error", cerr)
				}
				engine = nil
				p.setState(idx, WorkerIdle)
			default:
				logger().Warn("render job failed", "job", job.id, "worker", idx, "error", err)
				p.setState(idx, WorkerIdle)
			}
		}
	}
}

func (p *RenderPool) setState(idx int, s WorkerState) {
	p.mu.Lock()
	p.states[idx] = s
	p.mu.Unlock()
}

// Stats snapshots worker states and queue depth.
func (p *RenderPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := PoolStats{Workers: len(p.states), Queued: len(p.jobs)}
	for _, s := range p.states {
		switch s {
		case WorkerBusy:
			st.Busy++
		case WorkerRespawning, WorkerCrashed:
			st.Respawning++
		default:
			st.Idle++
		}
	}
	return st
}

// Size returns the number of workers.
func (p *RenderPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.states)
}

// Close stops the workers and releases their engines. Queued jobs that
// no worker picked up fail with ErrPoolClosed.
func (p *RenderPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.stop)
	p.wg.Wait()

	// Drain anything still queued so submitters are not left hanging.
	for {
		select {
		case job := <-p.jobs:
			job.result <- jobResult{err: ErrPoolClosed}
		default:
			return nil
		}
	}
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}

// Package render drives the tiered recovery pipeline: sanitized text
// through the renderer first, a reconstructed simplified graph second,
// and a textual diagnostic last. The coordinator never returns an
// error; every failure mode degrades into an Artifact the UI can show.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"diagramsmith/internal/extract"
	"diagramsmith/internal/fallback"
	"diagramsmith/internal/mermaid"
	"diagramsmith/internal/sanitize"
	"diagramsmith/internal/source"
)

// Renderer is the external rendering capability. It may fail with a
// descriptive error; it must never be assumed to have internal
// structure beyond this contract.
type Renderer interface {
	Render(ctx context.Context, attemptID, text string) (string, error)
}

// State is the coordinator's lifecycle for one diagram source.
type State int

const (
	StateIdle State = iota
	StateRendering
	StateRendered
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateRendered:
		return "rendered"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Status is the snapshot exposed to the UI layer, which displays it
// and nothing more; driving the state machine stays in here.
type Status struct {
	State    State
	Loading  bool
	Degraded bool
	Artifact *Artifact
}

const defaultDebounce = 250 * time.Millisecond

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDebounce overrides the request-coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) { c.debounce = d }
}

// Coordinator owns the tier state machine for a single diagram view.
// Distinct sources get distinct coordinators and may render
// concurrently; the only shared identity space is the attempt ids,
// which are unique per call.
type Coordinator struct {
	renderer Renderer
	log      *zap.Logger
	debounce time.Duration

	mu       sync.Mutex
	state    State
	artifact *Artifact
	gen      uint64
	closed   bool
	timer    *time.Timer
}

// New builds a coordinator around the given renderer.
func New(renderer Renderer, log *zap.Logger, opts ...Option) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Coordinator{
		renderer: renderer,
		log:      log,
		debounce: defaultDebounce,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render runs the full pipeline synchronously and returns the
// resulting artifact. It never returns an error: renderer rejections
// drive tier escalation and both-tier failure yields a Diagnostic.
// A cancelled context abandons the attempt without touching shared
// state; the caller gets a cancellation diagnostic that is never
// committed.
func (c *Coordinator) Render(ctx context.Context, src source.DiagramSource) Artifact {
	gen, ok := c.begin()
	if !ok {
		// Torn down before the attempt started.
		return diagnosticArtifact(src.RawText, "Rendering was cancelled.")
	}
	art, done := c.run(ctx, src)
	if !done {
		c.abandon(gen)
		return diagnosticArtifact(src.RawText, "Rendering was cancelled.")
	}
	c.commit(gen, art)
	return art
}

// Request schedules a debounced render, coalescing rapid repeated
// requests for the same view. The result lands in Status.
func (c *Coordinator) Request(ctx context.Context, src source.DiagramSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.gen++
	gen := c.gen
	c.state = StateRendering
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		stale := c.closed || gen != c.gen
		c.mu.Unlock()
		if stale {
			return
		}
		art, done := c.run(ctx, src)
		if !done {
			c.abandon(gen)
			return
		}
		c.commit(gen, art)
	})
}

// Status returns a copy of the current UI-facing state.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{State: c.state, Loading: c.state == StateRendering}
	if c.artifact != nil {
		a := *c.artifact
		s.Artifact = &a
		s.Degraded = a.Degraded()
	}
	return s
}

// Close abandons any in-flight attempt. Results that resolve after
// Close must not mutate coordinator state.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.state = StateIdle
	c.artifact = nil
}

func (c *Coordinator) begin() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, false
	}
	c.gen++
	c.state = StateRendering
	return c.gen, true
}

// commit publishes an artifact unless the attempt was superseded by a
// newer request or the coordinator was closed mid-flight.
func (c *Coordinator) commit(gen uint64, art Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	c.artifact = &art
	if art.Kind == Diagnostic {
		c.state = StateDegraded
	} else {
		c.state = StateRendered
	}
}

// abandon rolls the state machine back after an attempt that ended
// without a result, leaving any previously committed artifact intact.
func (c *Coordinator) abandon(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	switch {
	case c.artifact == nil:
		c.state = StateIdle
	case c.artifact.Kind == Diagnostic:
		c.state = StateDegraded
	default:
		c.state = StateRendered
	}
}

// run executes the tier sequence. Tiers are strictly ordered 1 → 2 → 3
// and never retried out of order. Escalation is reserved for syntax
// and renderer rejections: a cancelled attempt returns done=false and
// produces no artifact at all.
func (c *Coordinator) run(ctx context.Context, src source.DiagramSource) (Artifact, bool) {
	res := sanitize.Sanitize(src.RawText)

	if res.Escalated {
		c.log.Warn("sanitizer escalated, skipping direct render",
			zap.String("source_id", src.ID),
			zap.String("defect", "unrecoverable_nested_block"),
			zap.String("snippet", textSnippet(src.RawText)))
	} else {
		attempt := c.attempt(ctx, 1, res.Text)
		if attempt.Err == nil {
			return Artifact{Kind: VectorMarkup, Tier: 1, Markup: attempt.Markup}, true
		}
		if cancelled(attempt.Err) {
			c.logAbandoned(src, attempt)
			return Artifact{}, false
		}
		c.log.Warn("direct render failed, reconstructing simplified graph",
			zap.String("source_id", src.ID),
			zap.String("attempt_id", attempt.AttemptID),
			zap.String("defect", defectCategory(attempt.Err)),
			zap.String("snippet", textSnippet(res.Text)),
			zap.Error(attempt.Err))
	}

	// Tier 2: rebuild from whatever node fragments survive in the
	// original raw text, not the sanitized text.
	nodes := extract.Nodes(src.RawText)
	attempt := c.attempt(ctx, 2, fallback.New(nodes).Flowchart())
	if attempt.Err == nil {
		return Artifact{Kind: VectorMarkup, Tier: 2, Markup: attempt.Markup}, true
	}
	if cancelled(attempt.Err) {
		c.logAbandoned(src, attempt)
		return Artifact{}, false
	}

	// Tier 2 text is valid by construction, so reaching this point
	// means the renderer itself is unusable. No further renderer call.
	c.log.Error("fallback render failed, emitting diagnostic artifact",
		zap.String("source_id", src.ID),
		zap.String("attempt_id", attempt.AttemptID),
		zap.String("defect", "renderer_unavailable"),
		zap.Error(attempt.Err))
	return diagnosticArtifact(src.RawText,
		"The diagram could not be rendered. The original definition is shown below for inspection."), true
}

func (c *Coordinator) logAbandoned(src source.DiagramSource, attempt Attempt) {
	c.log.Info("render attempt abandoned",
		zap.String("source_id", src.ID),
		zap.String("attempt_id", attempt.AttemptID),
		zap.Int("tier", attempt.Tier),
		zap.String("defect", "cancelled"))
}

// attempt calls the renderer once with a fresh globally unique attempt
// id. Renderer panics are captured as failures; nothing escapes to the
// caller.
func (c *Coordinator) attempt(ctx context.Context, tier int, text string) (a Attempt) {
	a = Attempt{Tier: tier, AttemptID: uuid.NewString(), InputText: text}
	defer func() {
		if r := recover(); r != nil {
			a.Err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	a.Markup, a.Err = c.renderer.Render(ctx, a.AttemptID, text)
	return a
}

func diagnosticArtifact(original, notice string) Artifact {
	return Artifact{
		Kind:         Diagnostic,
		Tier:         3,
		DisplayText:  notice,
		OriginalText: original,
	}
}

func cancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// defectCategory buckets a renderer error so tier-transition logs say
// why the previous tier failed, not just that it did.
func defectCategory(err error) string {
	switch {
	case cancelled(err):
		return "cancelled"
	case errors.Is(err, mermaid.ErrSyntax):
		return "syntax_rejected"
	default:
		return "renderer_failure"
	}
}

func textSnippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}

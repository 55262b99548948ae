// Package mermaid is the rendering engine behind the pipeline's
// renderer capability: it parses the flowchart subset the generation
// agents are prompted to produce and turns it into vector markup (or a
// PNG through the offline raster path). The engine is strict about
// syntax on purpose; a descriptive parse error is what lets the render
// coordinator decide to escalate tiers.
package mermaid

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Config is the one-time engine configuration.
type Config struct {
	Theme     string // "default", "neutral", "dark"
	Direction string // fallback flow direction when a header omits one
}

var (
	// ErrDuplicateAttempt means two in-flight renders share an attempt
	// id. Attempt ids must be globally unique per call.
	ErrDuplicateAttempt = errors.New("mermaid: duplicate render attempt id")

	// ErrSyntax marks a parse rejection. Callers branch on it to tell
	// bad diagram text apart from an unusable renderer.
	ErrSyntax = errors.New("diagram syntax error")
)

// Engine renders flowchart text. A single Engine is shared by every
// diagram in the process; concurrent renders are tracked by attempt id.
type Engine struct {
	mu          sync.Mutex
	initialized bool
	theme       Theme
	direction   string
	inflight    map[string]struct{}
}

// NewEngine returns an uninitialized engine. Initialization may be
// deferred until first use; Render falls back to defaults.
func NewEngine() *Engine {
	return &Engine{inflight: make(map[string]struct{})}
}

// Initialize applies the configuration once. Later calls are no-ops,
// so load-order accidents cannot reconfigure a live engine.
func (e *Engine) Initialize(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}

	theme, err := themeByName(cfg.Theme)
	if err != nil {
		return fmt.Errorf("invalid renderer config: %w", err)
	}
	direction := cfg.Direction
	if direction == "" {
		direction = "TB"
	}
	switch direction {
	case "TB", "LR", "RL", "BT":
	default:
		return fmt.Errorf("invalid renderer config: unknown direction %q", cfg.Direction)
	}

	e.theme = theme
	e.direction = direction
	e.initialized = true
	return nil
}

// Render parses and lays out the diagram text, returning SVG markup.
// The attempt id must be unique among in-flight renders.
func (e *Engine) Render(ctx context.Context, attemptID, text string) (string, error) {
	layout, theme, err := e.prepare(ctx, attemptID, text)
	if err != nil {
		return "", err
	}
	defer e.finish(attemptID)
	return newSVGRenderer(theme).render(layout), nil
}

// RenderPNG is the offline raster path used when the remote conversion
// service is not available.
func (e *Engine) RenderPNG(ctx context.Context, attemptID, text string) ([]byte, error) {
	layout, theme, err := e.prepare(ctx, attemptID, text)
	if err != nil {
		return nil, err
	}
	defer e.finish(attemptID)
	return rasterize(layout, theme)
}

func (e *Engine) prepare(ctx context.Context, attemptID, text string) (*Layout, Theme, error) {
	select {
	case <-ctx.Done():
		return nil, Theme{}, ctx.Err()
	default:
	}

	theme, direction, err := e.begin(attemptID)
	if err != nil {
		return nil, Theme{}, err
	}

	g, err := Parse(text, direction)
	if err != nil {
		e.finish(attemptID)
		return nil, Theme{}, fmt.Errorf("%w: %s", ErrSyntax, err)
	}
	return computeLayout(g), theme, nil
}

func (e *Engine) begin(attemptID string) (Theme, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		e.theme = themes["default"]
		e.direction = "TB"
		e.initialized = true
	}
	if attemptID == "" {
		return Theme{}, "", errors.New("mermaid: empty attempt id")
	}
	if _, busy := e.inflight[attemptID]; busy {
		return Theme{}, "", ErrDuplicateAttempt
	}
	e.inflight[attemptID] = struct{}{}
	return e.theme, e.direction, nil
}

func (e *Engine) finish(attemptID string) {
	e.mu.Lock()
	delete(e.inflight, attemptID)
	e.mu.Unlock()
}

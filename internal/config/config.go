// Package config loads the optional HCL configuration file that tunes
// the renderer, the export bridge, and the generation agent. A missing
// file yields the built-in defaults; a malformed file is an error.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Renderer configures the in-process diagram engine.
type Renderer struct {
	Theme     string `hcl:"theme,optional"`
	Direction string `hcl:"direction,optional"`
}

// Export configures the remote conversion bridge.
type Export struct {
	Endpoint       string `hcl:"endpoint,optional"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
}

// Render configures the tier coordinator.
type Render struct {
	DebounceMillis int `hcl:"debounce_ms,optional"`
}

// Agent configures the diagram generation agent.
type Agent struct {
	Model   string `hcl:"model,optional"`
	BaseURL string `hcl:"base_url,optional"`
	APIKey  string `hcl:"api_key,optional"`
}

// Config is the root of the configuration file.
type Config struct {
	Renderer *Renderer `hcl:"renderer,block"`
	Export   *Export   `hcl:"export,block"`
	Render   *Render   `hcl:"render,block"`
	Agent    *Agent    `hcl:"agent,block"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Renderer: &Renderer{Theme: "default", Direction: "TB"},
		Export:   &Export{TimeoutSeconds: 30},
		Render:   &Render{DebounceMillis: 250},
		Agent:    &Agent{Model: "gpt-4o"},
	}
}

// Load reads an HCL configuration file. Attribute expressions may
// reference process environment variables as env.NAME, so secrets stay
// out of the file itself.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %s", path, diags.Error())
	}

	var raw Config
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %s", path, diags.Error())
	}

	merge(cfg, &raw)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Renderer.Theme {
	case "default", "neutral", "dark":
	default:
		return fmt.Errorf("unknown theme %q", c.Renderer.Theme)
	}
	switch c.Renderer.Direction {
	case "TB", "LR", "RL", "BT":
	default:
		return fmt.Errorf("unknown direction %q", c.Renderer.Direction)
	}
	if c.Export.TimeoutSeconds <= 0 {
		return fmt.Errorf("export timeout must be positive, got %d", c.Export.TimeoutSeconds)
	}
	if c.Render.DebounceMillis < 0 {
		return fmt.Errorf("render debounce must not be negative, got %d", c.Render.DebounceMillis)
	}
	return nil
}

// ExportTimeout returns the export timeout as a duration.
func (c *Config) ExportTimeout() time.Duration {
	return time.Duration(c.Export.TimeoutSeconds) * time.Second
}

// Debounce returns the coordinator debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Render.DebounceMillis) * time.Millisecond
}

func merge(dst, src *Config) {
	if src.Renderer != nil {
		if src.Renderer.Theme != "" {
			dst.Renderer.Theme = src.Renderer.Theme
		}
		if src.Renderer.Direction != "" {
			dst.Renderer.Direction = src.Renderer.Direction
		}
	}
	if src.Export != nil {
		if src.Export.Endpoint != "" {
			dst.Export.Endpoint = src.Export.Endpoint
		}
		if src.Export.TimeoutSeconds != 0 {
			dst.Export.TimeoutSeconds = src.Export.TimeoutSeconds
		}
	}
	if src.Render != nil && src.Render.DebounceMillis != 0 {
		dst.Render.DebounceMillis = src.Render.DebounceMillis
	}
	if src.Agent != nil {
		if src.Agent.Model != "" {
			dst.Agent.Model = src.Agent.Model
		}
		if src.Agent.BaseURL != "" {
			dst.Agent.BaseURL = src.Agent.BaseURL
		}
		if src.Agent.APIKey != "" {
			dst.Agent.APIKey = src.Agent.APIKey
		}
	}
}

// evalContext exposes the process environment as the env object.
func evalContext() *hcl.EvalContext {
	vals := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vals[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vals),
		},
	}
}

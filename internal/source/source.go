// Package source defines the inbound boundary between the generation
// agents and the diagram pipeline. Agent replies arrive as arbitrary
// text: usually a fenced mermaid block, sometimes a JSON envelope,
// sometimes bare diagram text with stray markup. This package strips
// those wrappers and produces the DiagramSource value the rest of the
// pipeline consumes.
package source

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
)

// DocumentKind identifies which design document a diagram belongs to.
type DocumentKind int

const (
	KindHighLevel DocumentKind = iota // HLD architecture diagram
	KindLowLevel                      // LLD component diagram
)

func (k DocumentKind) String() string {
	switch k {
	case KindHighLevel:
		return "hld"
	case KindLowLevel:
		return "lld"
	default:
		return "unknown"
	}
}

// DiagramSource is one piece of diagram-definition text handed to the
// pipeline. It is immutable; the pipeline never writes back into it.
type DiagramSource struct {
	ID      string
	RawText string
	Kind    DocumentKind
}

// New wraps raw diagram text in a DiagramSource with a fresh identity.
func New(rawText string, kind DocumentKind) DiagramSource {
	return DiagramSource{
		ID:      uuid.NewString(),
		RawText: rawText,
		Kind:    kind,
	}
}

var mermaidFenceRe = regexp.MustCompile("```mermaid\\s*\\n([\\s\\S]*?)```")

// ExtractDiagramText pulls diagram-definition text out of a raw agent
// reply. It unwraps JSON envelopes (repairing malformed JSON first),
// then extracts the ```mermaid fence, then falls back to stripping any
// stray fence markers. The result may still be syntactically invalid;
// that is the sanitizer's problem, not this function's.
func ExtractDiagramText(reply string) string {
	if reply == "" {
		return ""
	}

	if unwrapped, ok := unwrapJSONEnvelope(reply); ok {
		reply = unwrapped
	}

	if m := mermaidFenceRe.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}

	// No recognizable fence: remove any standalone ``` markers.
	reply = strings.ReplaceAll(reply, "```", "")
	return strings.TrimSpace(reply)
}

// envelopeKeys are the field names chat APIs have been observed to wrap
// diagram text in when the agent ignores the plain-text instruction.
var envelopeKeys = []string{"diagram", "mermaid", "code", "content"}

func unwrapJSONEnvelope(reply string) (string, bool) {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, "{") {
		return "", false
	}

	var envelope map[string]any
	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(trimmed)
		if repairErr != nil {
			return "", false
		}
		if err := json.Unmarshal([]byte(repaired), &envelope); err != nil {
			return "", false
		}
	}

	for _, key := range envelopeKeys {
		if v, ok := envelope[key].(string); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

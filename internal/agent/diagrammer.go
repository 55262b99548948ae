// Package agent generates architecture diagrams from a project
// description by prompting a chat model, then funnels the reply
// through the same extraction and recovery pipeline as any other
// machine-produced diagram text.
package agent

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"diagramsmith/internal/source"
)

const hldSystemPrompt = `You are a software architect producing a high-level design diagram.
Respond with a single mermaid flowchart showing the major components of the
described system and the data flow between them.
Rules:
- Use flowchart TD syntax only.
- Use short alphanumeric node identifiers with bracketed labels, for example A[User Interface].
- AVOID subgraph syntax entirely.
- Do not include HTML tags or parenthetical asides inside node labels.
- Reply with only the diagram, inside a mermaid code fence.

Example:
` + "```mermaid" + `
flowchart TD
    A[User Interface] --> B[API Gateway]
    B --> C[Business Logic]
    C --> D[Data Store]
` + "```"

const lldSystemPrompt = `You are a software architect producing a low-level design diagram.
Respond with a single mermaid flowchart showing the internal modules, classes,
or functions of the described component and their call or data relationships.
Rules:
- Use flowchart TD syntax only.
- Use short alphanumeric node identifiers with bracketed labels.
- AVOID subgraph syntax entirely.
- Do not include HTML tags or parenthetical asides inside node labels.
- Reply with only the diagram, inside a mermaid code fence.`

// Diagrammer asks a chat model for diagram text.
type Diagrammer struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// New builds a diagrammer. baseURL may be empty for the public API.
func New(apiKey, baseURL, model string, log *zap.Logger) (*Diagrammer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key for diagram generation")
	}
	if model == "" {
		model = "gpt-4o"
	}
	if log == nil {
		log = zap.NewNop()
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Diagrammer{client: openai.NewClientWithConfig(cfg), model: model, log: log}, nil
}

// Generate produces diagram text of the requested kind for the given
// project description. The reply goes through envelope and fence
// extraction, so a chatty model still yields usable text.
func (d *Diagrammer) Generate(ctx context.Context, kind source.DocumentKind, description string) (source.DiagramSource, error) {
	system := hldSystemPrompt
	if kind == source.KindLowLevel {
		system = lldSystemPrompt
	}

	d.log.Info("requesting diagram from model",
		zap.String("model", d.model),
		zap.String("kind", kind.String()))

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: description},
		},
	})
	if err != nil {
		return source.DiagramSource{}, fmt.Errorf("diagram generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return source.DiagramSource{}, fmt.Errorf("diagram generation returned no choices")
	}

	raw := source.ExtractDiagramText(resp.Choices[0].Message.Content)
	if strings.TrimSpace(raw) == "" {
		return source.DiagramSource{}, fmt.Errorf("diagram generation returned empty diagram text")
	}
	return source.New(raw, kind), nil
}

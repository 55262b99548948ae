package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diagramsmith/internal/source"
)

// chatServer fakes the chat completion endpoint with a canned reply and
// records the request for inspection.
func chatServer(t *testing.T, reply string) (*httptest.Server, *openai.ChatCompletionRequest) {
	t.Helper()
	var captured openai.ChatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	return srv, &captured
}

func TestGenerateHighLevel(t *testing.T) {
	reply := "```mermaid\nflowchart TD\n    A[User Interface] --> B[API Gateway]\n```"
	srv, captured := chatServer(t, reply)
	defer srv.Close()

	d, err := New("test-key", srv.URL+"/v1", "gpt-4o", nil)
	require.NoError(t, err)

	src, err := d.Generate(context.Background(), source.KindHighLevel, "a web shop")
	require.NoError(t, err)

	assert.Equal(t, source.KindHighLevel, src.Kind)
	assert.NotEmpty(t, src.ID)
	assert.Equal(t, "flowchart TD\n    A[User Interface] --> B[API Gateway]", src.RawText)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "high-level design")
	assert.Contains(t, captured.Messages[0].Content, "AVOID subgraph")
	assert.Equal(t, "a web shop", captured.Messages[1].Content)
}

func TestGenerateLowLevelPrompt(t *testing.T) {
	srv, captured := chatServer(t, "flowchart TD\n    A[Parser] --> B[Evaluator]")
	defer srv.Close()

	d, err := New("test-key", srv.URL+"/v1", "", nil)
	require.NoError(t, err)

	src, err := d.Generate(context.Background(), source.KindLowLevel, "an expression interpreter")
	require.NoError(t, err)

	assert.Equal(t, source.KindLowLevel, src.Kind)
	assert.Contains(t, captured.Messages[0].Content, "low-level design")
	assert.Equal(t, "gpt-4o", captured.Model, "empty model must fall back to the default")
}

func TestGenerateUnwrapsChattyReply(t *testing.T) {
	reply := "Sure! Here is your diagram:\n\n```mermaid\nflowchart TD\n    A[x]\n```\n\nHope that helps."
	srv, _ := chatServer(t, reply)
	defer srv.Close()

	d, err := New("test-key", srv.URL+"/v1", "gpt-4o", nil)
	require.NoError(t, err)

	src, err := d.Generate(context.Background(), source.KindHighLevel, "anything")
	require.NoError(t, err)
	assert.Equal(t, "flowchart TD\n    A[x]", src.RawText)
	assert.False(t, strings.Contains(src.RawText, "Hope"))
}

func TestGenerateEmptyReply(t *testing.T) {
	srv, _ := chatServer(t, "   \n")
	defer srv.Close()

	d, err := New("test-key", srv.URL+"/v1", "gpt-4o", nil)
	require.NoError(t, err)

	_, err = d.Generate(context.Background(), source.KindHighLevel, "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty diagram text")
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New("", "", "gpt-4o", nil)
	require.Error(t, err)
}

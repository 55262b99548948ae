package source

import (
	"strings"
	"testing"
)

func TestExtractDiagramText(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "empty reply",
			reply: "",
			want:  "",
		},
		{
			name:  "bare diagram text",
			reply: "flowchart TD\n    A[x] --> B[y]",
			want:  "flowchart TD\n    A[x] --> B[y]",
		},
		{
			name:  "mermaid fence",
			reply: "Here is the diagram:\n```mermaid\nflowchart TD\n    A[x] --> B[y]\n```\nLet me know if you need changes.",
			want:  "flowchart TD\n    A[x] --> B[y]",
		},
		{
			name:  "unlabeled fence markers stripped",
			reply: "```\nflowchart TD\n    A[x]\n```",
			want:  "flowchart TD\n    A[x]",
		},
		{
			name:  "json envelope with diagram key",
			reply: `{"diagram": "flowchart TD\n    A[x] --> B[y]"}`,
			want:  "flowchart TD\n    A[x] --> B[y]",
		},
		{
			name:  "json envelope with code key",
			reply: `{"code": "flowchart TD\n    A[x]"}`,
			want:  "flowchart TD\n    A[x]",
		},
		{
			name:  "malformed json envelope is repaired",
			reply: "{'diagram': 'flowchart TD\\n    A[x]',}",
			want:  "flowchart TD\n    A[x]",
		},
		{
			name:  "json envelope containing a fence",
			reply: `{"content": "` + "```mermaid\\nflowchart TD\\n    A[x]\\n```" + `"}`,
			want:  "flowchart TD\n    A[x]",
		},
		{
			name:  "unrecognized json keys fall through",
			reply: `{"message": "hello"}`,
			want:  `{"message": "hello"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDiagramText(tt.reply); got != tt.want {
				t.Errorf("ExtractDiagramText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := New("flowchart TD\n    A[x]", KindHighLevel)
	b := New("flowchart TD\n    A[x]", KindHighLevel)

	if a.ID == "" || b.ID == "" {
		t.Fatal("New() produced an empty id")
	}
	if a.ID == b.ID {
		t.Errorf("New() produced duplicate ids: %s", a.ID)
	}
	if a.RawText != "flowchart TD\n    A[x]" {
		t.Errorf("RawText = %q", a.RawText)
	}
}

func TestDocumentKindString(t *testing.T) {
	if got := KindHighLevel.String(); got != "hld" {
		t.Errorf("KindHighLevel.String() = %q", got)
	}
	if got := KindLowLevel.String(); got != "lld" {
		t.Errorf("KindLowLevel.String() = %q", got)
	}
	if got := DocumentKind(42).String(); got != "unknown" {
		t.Errorf("DocumentKind(42).String() = %q", got)
	}
}

func TestExtractDiagramTextTrims(t *testing.T) {
	got := ExtractDiagramText("\n\n   flowchart TD\n    A[x]   \n\n")
	if strings.HasPrefix(got, " ") || strings.HasSuffix(got, " ") || strings.HasPrefix(got, "\n") {
		t.Errorf("result not trimmed: %q", got)
	}
}

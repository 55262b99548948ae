package extract

import (
	"reflect"
	"testing"
)

func TestNodes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Node
	}{
		{
			name:  "no declarations",
			input: "this is not a diagram at all",
			want:  nil,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "first-seen order preserved",
			input: "flowchart TD\nB[Second] --> A[First]\nA --> C[Third]",
			want: []Node{
				{ID: "B", Label: "Second"},
				{ID: "A", Label: "First"},
				{ID: "C", Label: "Third"},
			},
		},
		{
			name:  "duplicate identifiers keep first label",
			input: "A[Original] --> B[Other]\nA[Renamed] --> B[Other]",
			want: []Node{
				{ID: "A", Label: "Original"},
				{ID: "B", Label: "Other"},
			},
		},
		{
			name:  "multi-character identifiers",
			input: "WEB1[Frontend] --> api_v2[Backend]",
			want: []Node{
				{ID: "WEB1", Label: "Frontend"},
				{ID: "api_v2", Label: "Backend"},
			},
		},
		{
			name:  "labels lose markup and bracket noise",
			input: "A[Web <br> Server (primary)] --> B[/api/users]",
			want: []Node{
				{ID: "A", Label: "Web Server primary"},
				{ID: "B", Label: "apiusers"},
			},
		},
		{
			name:  "noise-only label falls back to identifier",
			input: "A[<br>] --> B[ok]",
			want: []Node{
				{ID: "A", Label: "A"},
				{ID: "B", Label: "ok"},
			},
		},
		{
			name:  "keyword identifiers skipped",
			input: "subgraph[Block] --> end[Done]\nA[Real]",
			want: []Node{
				{ID: "A", Label: "Real"},
			},
		},
		{
			name:  "survives structurally broken text",
			input: "flowchart TD subgraph Core A[Auth] --> B[Session end",
			want: []Node{
				{ID: "A", Label: "Auth"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Nodes(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Nodes() = %v, want %v", got, tt.want)
			}
		})
	}
}

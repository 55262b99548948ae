package sanitize

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		modified  bool
		escalated bool
	}{
		{
			name:     "clean text passes through",
			input:    "flowchart TD\n    A[Start] --> B[Finish]",
			want:     "flowchart TD\nA[Start] --> B[Finish]",
			modified: true,
		},
		{
			name:     "break tag becomes space",
			input:    "A[Web <br> Server] --> B[DB]",
			want:     "A[Web Server] --> B[DB]",
			modified: true,
		},
		{
			name:     "self-closing break tag",
			input:    "A[Web <br/> Server]",
			want:     "A[Web Server]",
			modified: true,
		},
		{
			name:     "unterminated parenthetical annotation",
			input:    "A[ASP Pages <br> (e.g., Rlv_ISLLPOL_2]",
			want:     "A[ASP Pages]",
			modified: true,
		},
		{
			name:     "terminated parenthetical annotation",
			input:    "A[Login Service (OAuth2)] --> B[Token Store]",
			want:     "A[Login Service] --> B[Token Store]",
			modified: true,
		},
		{
			name:     "leading slash in label",
			input:    "B[/api/users] --> C[Handler]",
			want:     "B[api/users] --> C[Handler]",
			modified: true,
		},
		{
			name:     "repeated leading slashes",
			input:    "B[//api/users]",
			want:     "B[api/users]",
			modified: true,
		},
		{
			name:     "label emptied by cleaning falls back to id",
			input:    "A[ (deprecated ] --> B[x]",
			want:     "A[A] --> B[x]",
			modified: true,
		},
		{
			name:  "cylinder shape body is not an annotation",
			input: "DB[(Database)] --> A[App]",
			want:  "DB[(Database)] --> A[App]",
		},
		{
			name:     "residual angle brackets stripped, arrows kept",
			input:    "A[Start] --> B<div>[End]",
			want:     "A[Start] --> Bdiv[End]",
			modified: true,
		},
		{
			name:  "thick arrows kept",
			input: "flowchart TD\nA[x] ==> B[y]",
			want:  "flowchart TD\nA[x] ==> B[y]",
		},
		{
			name:     "dotted arrows kept while brackets stripped",
			input:    "A[x] -.-> B<b>[y]\nC[z] ==> B",
			want:     "A[x] -.-> Bb[y]\nC[z] ==> B",
			modified: true,
		},
		{
			name:     "crlf and blank lines normalized",
			input:    "flowchart TD\r\n\r\n  A[x]   -->   B[y]\r\n",
			want:     "flowchart TD\nA[x] --> B[y]",
			modified: true,
		},
		{
			name:  "balanced subgraph accepted",
			input: "flowchart TD\nsubgraph Core\nA[x] --> B[y]\nend",
			want:  "flowchart TD\nsubgraph Core\nA[x] --> B[y]\nend",
		},
		{
			name:      "subgraph glued to statement is re-spaced then escalates without end",
			input:     "A[x] --> B[y] subgraph Core",
			modified:  true,
			escalated: true,
		},
		{
			name:      "headless subgraph escalates",
			input:     "flowchart TD\nsubgraph\nA[x] --> B[y]\nend",
			escalated: true,
		},
		{
			name:      "end without subgraph escalates",
			input:     "flowchart TD\nA[x] --> B[y] end\nsubgraph Core\nC[z]\nend",
			modified:  true,
			escalated: true,
		},
		{
			name:      "unterminated subgraph escalates",
			input:     "flowchart TD\nsubgraph Core\nA[x] --> B[y]",
			escalated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got.Escalated != tt.escalated {
				t.Fatalf("Sanitize() escalated = %v, want %v", got.Escalated, tt.escalated)
			}
			if got.Modified != tt.modified {
				t.Errorf("Sanitize() modified = %v, want %v", got.Modified, tt.modified)
			}
			if !tt.escalated && got.Text != tt.want {
				t.Errorf("Sanitize() text = %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"flowchart TD\n    A[Start] --> B[Finish]",
		"A[ASP Pages <br> (e.g., Rlv_ISLLPOL_2]",
		"B[//api/users] --> C[Handler (v2)]",
		"A[x] --> B[y] subgraph Core",
		"flowchart TD\nsubgraph Core\nA[x]\nend",
		"A<span>[x] --> B[y]",
		"A[x] ==> B[y] -.-> C[z]",
		"",
	}

	for _, input := range inputs {
		first := Sanitize(input)
		second := Sanitize(first.Text)
		if second.Text != first.Text {
			t.Errorf("not idempotent for %q:\nfirst  = %q\nsecond = %q", input, first.Text, second.Text)
		}
		if second.Modified {
			t.Errorf("second pass reported modifications for %q", input)
		}
	}
}

func TestSanitizeNeverGrowsUnbounded(t *testing.T) {
	input := strings.Repeat("A[x] --> B[y]\n", 500)
	got := Sanitize(input)
	if len(got.Text) > len(input) {
		t.Errorf("sanitized text longer than input: %d > %d", len(got.Text), len(input))
	}
}

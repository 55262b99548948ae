package mermaid

import (
	"strings"
	"testing"
)

func TestParseBasicFlowchart(t *testing.T) {
	text := `flowchart TD
    A[User Interface] --> B[API Gateway]
    B --> C[Business Logic]
    C --> D[Data Store]`

	g, err := Parse(text, "TB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if g.Direction != "TB" {
		t.Errorf("Direction = %q, want TB", g.Direction)
	}
	if len(g.Nodes) != 4 {
		t.Errorf("node count = %d, want 4", len(g.Nodes))
	}
	if len(g.Edges) != 3 {
		t.Errorf("edge count = %d, want 3", len(g.Edges))
	}
	if got := g.Nodes["A"].Label; got != "User Interface" {
		t.Errorf("A label = %q", got)
	}
	wantOrder := []string{"A", "B", "C", "D"}
	for i, id := range wantOrder {
		if g.Order[i] != id {
			t.Errorf("Order[%d] = %q, want %q", i, g.Order[i], id)
		}
	}
}

func TestParseShapes(t *testing.T) {
	text := `flowchart LR
    A[rect] --> B(round)
    B --> C([stadium])
    C --> D[(cylinder)]
    D --> E{diamond}
    E --> F[[subroutine]]`

	g, err := Parse(text, "TB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := map[string]Shape{
		"A": ShapeRect,
		"B": ShapeRound,
		"C": ShapeStadium,
		"D": ShapeCylinder,
		"E": ShapeDiamond,
		"F": ShapeSubroutine,
	}
	for id, shape := range want {
		n, ok := g.Nodes[id]
		if !ok {
			t.Errorf("node %s missing", id)
			continue
		}
		if n.Shape != shape {
			t.Errorf("node %s shape = %v, want %v", id, n.Shape, shape)
		}
	}
}

func TestParseEdgeStyles(t *testing.T) {
	text := `flowchart TD
    A --> B
    B --- C
    C -.-> D
    D ==> E`

	g, err := Parse(text, "TB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(g.Edges) != 4 {
		t.Fatalf("edge count = %d, want 4", len(g.Edges))
	}

	want := []EdgeStyle{EdgeArrow, EdgeOpen, EdgeDotted, EdgeThick}
	for i, style := range want {
		if g.Edges[i].Style != style {
			t.Errorf("edge %d style = %v, want %v", i, g.Edges[i].Style, style)
		}
	}
}

func TestParseEdgeLabels(t *testing.T) {
	text := `flowchart TD
    A -->|yes| B
    A -->|no| C`

	g, err := Parse(text, "TB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(g.Edges) != 2 {
		t.Fatalf("edge count = %d, want 2", len(g.Edges))
	}
	if g.Edges[0].Label != "yes" || g.Edges[1].Label != "no" {
		t.Errorf("edge labels = %q, %q", g.Edges[0].Label, g.Edges[1].Label)
	}
}

func TestParseChainStatement(t *testing.T) {
	g, err := Parse("flowchart TD\n    A[x] --> B[y] --> C[z]", "TB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(g.Edges) != 2 {
		t.Errorf("edge count = %d, want 2", len(g.Edges))
	}
}

func TestParseHeaderVariants(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantDir string
	}{
		{"TD normalizes to TB", "flowchart TD\nA[x]", "TB"},
		{"graph keyword", "graph LR\nA[x]", "LR"},
		{"bare header uses default", "flowchart\nA[x]", "LR"},
		{"leading comments skipped", "%% generated\nflowchart BT\nA[x]", "BT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.text, "LR")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if g.Direction != tt.wantDir {
				t.Errorf("Direction = %q, want %q", g.Direction, tt.wantDir)
			}
		})
	}
}

func TestParseSubgraphFlattened(t *testing.T) {
	text := `flowchart TD
    subgraph Core Services
    A[Auth] --> B[Session]
    end
    B --> C[Audit]`

	g, err := Parse(text, "TB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(g.Nodes) != 3 {
		t.Errorf("node count = %d, want 3", len(g.Nodes))
	}
}

func TestParseIgnoresStyling(t *testing.T) {
	text := `flowchart TD
    A[x] --> B[y]
    classDef red fill:#f00
    class A red
    style B fill:#0f0
    linkStyle 0 stroke:#00f
    click A callback`

	g, err := Parse(text, "TB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(g.Nodes) != 2 {
		t.Errorf("node count = %d, want 2", len(g.Nodes))
	}
}

func TestParseDeclaredLabelOverridesBareReference(t *testing.T) {
	g, err := Parse("flowchart TD\n    A --> B\n    A[Named]", "TB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := g.Nodes["A"].Label; got != "Named" {
		t.Errorf("A label = %q, want Named", got)
	}
}

func TestParseDuplicateEdgesCollapse(t *testing.T) {
	g, err := Parse("flowchart TD\n    A --> B\n    A --> B", "TB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(g.Edges) != 1 {
		t.Errorf("edge count = %d, want 1", len(g.Edges))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantSub string
	}{
		{"empty input", "", "missing flowchart header"},
		{"wrong header", "sequenceDiagram\nA->>B: hi", "expected flowchart or graph header"},
		{"bad direction", "flowchart XX\nA[x]", "unknown flow direction"},
		{"unterminated label", "flowchart TD\nA[broken --> B", "unterminated"},
		{"empty label", "flowchart TD\nA[] --> B[y]", "empty label"},
		{"markup in label", "flowchart TD\nA[a <br> b] --> B[y]", "unsupported markup"},
		{"missing edge operator", "flowchart TD\nA[x] B[y]", "expected edge operator"},
		{"missing node after operator", "flowchart TD\nA[x] -->", "expected node identifier"},
		{"unterminated edge label", "flowchart TD\nA -->|oops B", "unterminated edge label"},
		{"headless subgraph", "flowchart TD\nsubgraph\nA[x]\nend", "subgraph header missing title"},
		{"stray end", "flowchart TD\nA[x]\nend", "end without an open subgraph"},
		{"unterminated subgraph", "flowchart TD\nsubgraph S\nA[x]", "unterminated subgraph"},
		{"no nodes", "flowchart TD\n%% nothing here", "declares no nodes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, "TB")
			if err == nil {
				t.Fatalf("Parse() succeeded, want error containing %q", tt.wantSub)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Parse() error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestParseErrorsCarryLineNumbers(t *testing.T) {
	_, err := Parse("flowchart TD\nA[x] --> B[y]\nC[bad --> D", "TB")
	if err == nil {
		t.Fatal("Parse() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q does not name line 3", err)
	}
}

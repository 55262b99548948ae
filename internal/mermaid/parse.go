package mermaid

import (
	"fmt"
	"regexp"
	"strings"
)

var idRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*`)

// shapeDelims maps opening delimiters to their closers, longest match
// first so A([x]) is a stadium rather than a round node with a nested
// bracket.
var shapeDelims = []struct {
	open  string
	close string
	shape Shape
}{
	{"([", "])", ShapeStadium},
	{"[(", ")]", ShapeCylinder},
	{"[[", "]]", ShapeSubroutine},
	{"[", "]", ShapeRect},
	{"(", ")", ShapeRound},
	{"{", "}", ShapeDiamond},
}

var edgeOpRe = regexp.MustCompile(`^(-{2,}>|-{3,}|-\.+->|={2,}>|={3,})`)

// Parse parses the flowchart subset the generation agents are prompted
// to produce. Styling statements (classDef, style, …) are accepted and
// ignored; anything else that does not parse yields a descriptive
// error, which is what drives tier escalation upstream.
func Parse(text, defaultDirection string) (*Graph, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var g *Graph
	depth := 0
	for i, rawLine := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}

		if g == nil {
			dir, err := parseHeader(line, defaultDirection)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			g = newGraph(dir)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "subgraph":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: subgraph header missing title", lineNo)
			}
			// Grouping is accepted but rendered flattened; member
			// nodes are laid out like any other.
			depth++
			continue
		case "end":
			if len(fields) == 1 {
				depth--
				if depth < 0 {
					return nil, fmt.Errorf("line %d: end without an open subgraph", lineNo)
				}
				continue
			}
		case "classDef", "class", "style", "linkStyle", "click", "direction":
			continue
		}

		if err := parseStatement(g, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	if g == nil {
		return nil, fmt.Errorf("empty diagram: missing flowchart header")
	}
	if depth != 0 {
		return nil, fmt.Errorf("unterminated subgraph block")
	}
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("diagram declares no nodes")
	}
	return g, nil
}

func parseHeader(line, defaultDirection string) (string, error) {
	fields := strings.Fields(line)
	if fields[0] != "flowchart" && fields[0] != "graph" {
		return "", fmt.Errorf("expected flowchart or graph header, got %q", fields[0])
	}
	if len(fields) == 1 {
		return defaultDirection, nil
	}
	switch dir := fields[1]; dir {
	case "TD":
		return "TB", nil
	case "TB", "LR", "RL", "BT":
		return dir, nil
	default:
		return "", fmt.Errorf("unknown flow direction %q", dir)
	}
}

// parseStatement parses a node/edge chain such as A[x] --> B -->|ok| C{y}.
func parseStatement(g *Graph, line string) error {
	node, rest, err := parseNodeTerm(g, line)
	if err != nil {
		return err
	}
	for {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return nil
		}
		style, label, afterOp, err := parseEdgeOp(rest)
		if err != nil {
			return err
		}
		next, afterNode, err := parseNodeTerm(g, afterOp)
		if err != nil {
			return err
		}
		g.addEdge(node, next, label, style)
		node = next
		rest = afterNode
	}
}

func parseNodeTerm(g *Graph, s string) (*Node, string, error) {
	s = strings.TrimSpace(s)
	id := idRe.FindString(s)
	if id == "" {
		return nil, "", fmt.Errorf("expected node identifier at %q", snippet(s))
	}
	rest := s[len(id):]

	for _, d := range shapeDelims {
		if !strings.HasPrefix(rest, d.open) {
			continue
		}
		body := rest[len(d.open):]
		end := strings.Index(body, d.close)
		if end < 0 {
			return nil, "", fmt.Errorf("unterminated %s…%s label on node %s", d.open, d.close, id)
		}
		label := strings.TrimSpace(body[:end])
		if label == "" {
			return nil, "", fmt.Errorf("empty label on node %s", id)
		}
		if strings.ContainsAny(label, "<>") {
			return nil, "", fmt.Errorf("unsupported markup in label of node %s", id)
		}
		return g.ensureNode(id, label, d.shape, true), body[end+len(d.close):], nil
	}

	// Bare reference: the identifier doubles as the label.
	return g.ensureNode(id, id, ShapeRect, false), rest, nil
}

func parseEdgeOp(s string) (EdgeStyle, string, string, error) {
	op := edgeOpRe.FindString(s)
	if op == "" {
		return 0, "", "", fmt.Errorf("expected edge operator at %q", snippet(s))
	}

	var style EdgeStyle
	switch {
	case strings.HasPrefix(op, "-."):
		style = EdgeDotted
	case strings.HasPrefix(op, "="):
		style = EdgeThick
	case strings.HasSuffix(op, ">"):
		style = EdgeArrow
	default:
		style = EdgeOpen
	}

	rest := s[len(op):]
	label := ""
	if strings.HasPrefix(rest, "|") {
		end := strings.Index(rest[1:], "|")
		if end < 0 {
			return 0, "", "", fmt.Errorf("unterminated edge label at %q", snippet(s))
		}
		label = strings.TrimSpace(rest[1 : 1+end])
		rest = rest[end+2:]
	}
	return style, label, rest, nil
}

func snippet(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

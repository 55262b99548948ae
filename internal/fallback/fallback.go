// Package fallback synthesizes guaranteed-valid Tier 2 diagram text
// from whatever the structural extractor salvaged. The output uses no
// nested blocks and no special characters, so a working renderer
// accepts it by construction.
package fallback

import (
	"fmt"
	"regexp"
	"strings"

	"diagramsmith/internal/extract"
)

// Graph is the transient structure between extraction and synthesis:
// an ordered node sequence whose edges are an implied sequential chain.
type Graph struct {
	Nodes []extract.Node
}

// New builds a fallback graph from extracted nodes.
func New(nodes []extract.Node) Graph {
	return Graph{Nodes: nodes}
}

// Empty reports whether extraction found nothing usable.
func (g Graph) Empty() bool {
	return len(g.Nodes) == 0
}

var safeIDRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Flowchart emits the Tier 2 diagram text: every node declared, then a
// directed edge from each node to the next in extraction order. A
// single isolated node gets no edge. With zero nodes it emits the
// canned placeholder so the UI never shows an empty render region.
func (g Graph) Flowchart() string {
	if g.Empty() {
		return Placeholder()
	}

	var b strings.Builder
	b.WriteString("flowchart TD\n")

	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
		if !safeIDRe.MatchString(n.ID) {
			ids[i] = fmt.Sprintf("N%d", i)
		}
		fmt.Fprintf(&b, "    %s[%s]\n", ids[i], safeLabel(n.Label, ids[i]))
	}
	for i := 0; i+1 < len(ids); i++ {
		fmt.Fprintf(&b, "    %s --> %s\n", ids[i], ids[i+1])
	}
	return b.String()
}

// Placeholder is the fixed four-node layering chain (with a side branch
// to external APIs) rendered when nothing could be extracted.
func Placeholder() string {
	return `flowchart TD
    UI[User Interface] --> BL[Business Logic]
    BL --> DA[Data Access Layer]
    DA --> ST[Storage]
    BL --> EXT[External APIs]
`
}

// safeLabel removes every character with syntactic meaning to the
// renderer. Callers inside this module already pass cleaned labels;
// this guards the exported path.
func safeLabel(label, id string) string {
	label = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '(', ')', '{', '}', '<', '>', '"', '|', '\\':
			return -1
		}
		return r
	}, label)
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return id
	}
	return label
}

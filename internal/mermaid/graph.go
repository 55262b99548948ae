package mermaid

// Shape is the node box variant declared by the bracket syntax.
type Shape int

const (
	ShapeRect       Shape = iota // A[label]
	ShapeRound                   // A(label)
	ShapeStadium                 // A([label])
	ShapeCylinder                // A[(label)]
	ShapeDiamond                 // A{label}
	ShapeSubroutine              // A[[label]]
)

// EdgeStyle is the connector variant between two nodes.
type EdgeStyle int

const (
	EdgeArrow  EdgeStyle = iota // A --> B
	EdgeOpen                    // A --- B
	EdgeDotted                  // A -.-> B
	EdgeThick                   // A ==> B
)

// Node is a declared flowchart node.
type Node struct {
	ID    string
	Label string
	Shape Shape
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From  *Node
	To    *Node
	Label string
	Style EdgeStyle
}

// Graph is a parsed flowchart. Order preserves declaration order so
// layout and output stay deterministic across runs.
type Graph struct {
	Direction string // TB, LR, BT, RL
	Nodes     map[string]*Node
	Order     []string
	Edges     []*Edge
}

func newGraph(direction string) *Graph {
	return &Graph{
		Direction: direction,
		Nodes:     make(map[string]*Node),
		Edges:     make([]*Edge, 0),
	}
}

// ensureNode returns the node for id, creating it if this is the first
// mention. A later declaration with an explicit label overrides the
// implicit label of a bare reference.
func (g *Graph) ensureNode(id, label string, shape Shape, declared bool) *Node {
	if n, ok := g.Nodes[id]; ok {
		if declared {
			n.Label = label
			n.Shape = shape
		}
		return n
	}
	n := &Node{ID: id, Label: label, Shape: shape}
	g.Nodes[id] = n
	g.Order = append(g.Order, id)
	return n
}

// addEdge appends an edge unless an identical one already exists.
func (g *Graph) addEdge(from, to *Node, label string, style EdgeStyle) {
	for _, e := range g.Edges {
		if e.From.ID == from.ID && e.To.ID == to.ID && e.Label == label && e.Style == style {
			return
		}
	}
	g.Edges = append(g.Edges, &Edge{From: from, To: to, Label: label, Style: style})
}

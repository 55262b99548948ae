package mermaid

import "sort"

// Point is a 2D coordinate in diagram space.
type Point struct {
	X, Y float64
}

// NodeLayout is the computed placement for one node.
type NodeLayout struct {
	Node     *Node
	Position Point
	Width    float64
	Height   float64
	Layer    int
}

// EdgeLayout is the computed path for one edge.
type EdgeLayout struct {
	Edge   *Edge
	Points []Point
}

// Layout is the complete placement of a graph.
type Layout struct {
	Nodes     map[string]*NodeLayout
	Edges     []*EdgeLayout
	Width     float64
	Height    float64
	Direction string
}

const (
	nodeWidth  = 180.0
	nodeHeight = 60.0
	hSpacing   = 70.0
	vSpacing   = 80.0
)

// computeLayout performs a layered layout: topological layer
// assignment, in-layer ordering by connectivity, coordinate
// assignment, then straight-line edge paths.
func computeLayout(g *Graph) *Layout {
	layout := &Layout{
		Nodes:     make(map[string]*NodeLayout),
		Edges:     []*EdgeLayout{},
		Direction: g.Direction,
	}
	if len(g.Nodes) == 0 {
		return layout
	}

	layers := assignLayers(g)
	orderLayers(layers, g)
	assignCoordinates(layout, layers, g)
	routeEdges(layout, g)
	return layout
}

// assignLayers walks the graph breadth-first from its roots. Iteration
// follows declaration order so the result is stable across runs.
func assignLayers(g *Graph) [][]string {
	inDegree := make(map[string]int, len(g.Nodes))
	outEdges := make(map[string][]string)
	for _, id := range g.Order {
		inDegree[id] = 0
	}
	for _, e := range g.Edges {
		inDegree[e.To.ID]++
		outEdges[e.From.ID] = append(outEdges[e.From.ID], e.To.ID)
	}

	var queue []string
	for _, id := range g.Order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	// Pure cycle: start from the first declared node.
	if len(queue) == 0 {
		queue = append(queue, g.Order[0])
	}

	layers := [][]string{}
	nodeLayer := make(map[string]int)
	layer := 0
	for len(queue) > 0 {
		current := queue
		queue = nil
		layers = append(layers, []string{})

		for _, id := range current {
			if _, done := nodeLayer[id]; done {
				continue
			}
			nodeLayer[id] = layer
			layers[layer] = append(layers[layer], id)
			for _, child := range outEdges[id] {
				if _, done := nodeLayer[child]; !done {
					queue = append(queue, child)
				}
			}
		}
		layer++
	}

	// Disconnected leftovers land on the final layer.
	for _, id := range g.Order {
		if _, done := nodeLayer[id]; !done {
			layers[len(layers)-1] = append(layers[len(layers)-1], id)
		}
	}

	// BFS can leave empty trailing layers when every queued node was
	// already placed.
	compact := layers[:0]
	for _, l := range layers {
		if len(l) > 0 {
			compact = append(compact, l)
		}
	}
	return compact
}

// orderLayers sorts each layer so heavily connected nodes sit first,
// which keeps edge crossings low for the chain-shaped graphs this
// pipeline mostly produces. Ties keep declaration order (stable sort).
func orderLayers(layers [][]string, g *Graph) {
	degree := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		degree[e.From.ID]++
		degree[e.To.ID]++
	}
	for i := range layers {
		layer := layers[i]
		sort.SliceStable(layer, func(a, b int) bool {
			return degree[layer[a]] > degree[layer[b]]
		})
	}
}

func assignCoordinates(layout *Layout, layers [][]string, g *Graph) {
	maxPerLayer := 0
	for _, layer := range layers {
		if len(layer) > maxPerLayer {
			maxPerLayer = len(layer)
		}
	}

	for layerIdx, layer := range layers {
		span := float64(len(layer))*nodeWidth + float64(len(layer)-1)*hSpacing
		full := float64(maxPerLayer)*nodeWidth + float64(maxPerLayer-1)*hSpacing
		offset := (full - span) / 2

		for nodeIdx, id := range layer {
			nl := &NodeLayout{
				Node:   g.Nodes[id],
				Width:  nodeWidth,
				Height: nodeHeight,
				Layer:  layerIdx,
			}
			along := offset + float64(nodeIdx)*(nodeWidth+hSpacing)

			switch layout.Direction {
			case "LR":
				nl.Position = Point{X: float64(layerIdx) * (nodeWidth + hSpacing), Y: along}
			case "RL":
				nl.Position = Point{X: float64(len(layers)-1-layerIdx) * (nodeWidth + hSpacing), Y: along}
			case "BT":
				nl.Position = Point{X: along, Y: float64(len(layers)-1-layerIdx) * (nodeHeight + vSpacing)}
			default: // TB
				nl.Position = Point{X: along, Y: float64(layerIdx) * (nodeHeight + vSpacing)}
			}
			layout.Nodes[id] = nl
		}
	}

	for _, nl := range layout.Nodes {
		if nl.Position.X+nl.Width > layout.Width {
			layout.Width = nl.Position.X + nl.Width
		}
		if nl.Position.Y+nl.Height > layout.Height {
			layout.Height = nl.Position.Y + nl.Height
		}
	}
}

func routeEdges(layout *Layout, g *Graph) {
	for _, e := range g.Edges {
		from := layout.Nodes[e.From.ID]
		to := layout.Nodes[e.To.ID]
		if from == nil || to == nil {
			continue
		}
		layout.Edges = append(layout.Edges, &EdgeLayout{
			Edge:   e,
			Points: connectorPoints(from, to, layout.Direction),
		})
	}
}

// connectorPoints picks the facing side of each box for the given flow
// direction and returns a straight segment between them.
func connectorPoints(from, to *NodeLayout, direction string) []Point {
	var start, end Point
	switch direction {
	case "LR":
		start = Point{X: from.Position.X + from.Width, Y: from.Position.Y + from.Height/2}
		end = Point{X: to.Position.X, Y: to.Position.Y + to.Height/2}
	case "RL":
		start = Point{X: from.Position.X, Y: from.Position.Y + from.Height/2}
		end = Point{X: to.Position.X + to.Width, Y: to.Position.Y + to.Height/2}
	case "BT":
		start = Point{X: from.Position.X + from.Width/2, Y: from.Position.Y}
		end = Point{X: to.Position.X + to.Width/2, Y: to.Position.Y + to.Height}
	default: // TB
		start = Point{X: from.Position.X + from.Width/2, Y: from.Position.Y + from.Height}
		end = Point{X: to.Position.X + to.Width/2, Y: to.Position.Y}
	}
	return []Point{start, end}
}

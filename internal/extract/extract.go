// Package extract salvages a flat node list from diagram text whose
// block structure could not be repaired. It deliberately ignores edges:
// when the text is this broken, edge syntax is not trustworthy, and the
// fallback synthesizer infers a linear chain instead.
package extract

import (
	"regexp"
	"strings"
)

// Node is one salvaged node declaration.
type Node struct {
	ID    string
	Label string
}

// A permissive node-declaration pattern: an identifier followed by a
// bracket-delimited label. Multi-character identifiers are accepted;
// the upstream implementation only recognized single uppercase letters,
// which silently dropped most real declarations.
var nodeDeclRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9_]*)\[([^\]\n]+)\]`)

var breakTagRe = regexp.MustCompile(`(?i)<br\s*/?>`)

// Nodes scans raw diagram text and returns node declarations in
// first-seen order, deduplicated by identifier. A return of zero nodes
// signals the synthesizer to fall back to its canned placeholder.
func Nodes(raw string) []Node {
	matches := nodeDeclRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	nodes := make([]Node, 0, len(matches))
	for _, m := range matches {
		id := m[1]
		if seen[id] || id == "subgraph" || id == "end" {
			continue
		}
		seen[id] = true

		label := cleanLabel(m[2])
		if label == "" {
			label = id
		}
		nodes = append(nodes, Node{ID: id, Label: label})
	}
	return nodes
}

// cleanLabel strips bracket and markup noise from a salvaged label so
// the synthesized diagram cannot inherit the defects that broke Tier 1.
func cleanLabel(label string) string {
	label = breakTagRe.ReplaceAllString(label, " ")
	label = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '[', ']', '(', ')', '{', '}', '"', '|', '\\', '/':
			return -1
		}
		return r
	}, label)
	return strings.Join(strings.Fields(label), " ")
}

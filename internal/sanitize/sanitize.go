// Package sanitize repairs common syntax defects in LLM-generated
// flowchart text without understanding the full diagram grammar. Every
// transformation is deterministic and idempotent; running the sanitizer
// on its own output changes nothing.
package sanitize

import (
	"regexp"
	"strings"
)

// Result is the outcome of one sanitizer pass.
type Result struct {
	Text      string // best-effort cleaned text
	Modified  bool   // true if any transformation changed the input
	Escalated bool   // nested-block syntax is unrecoverable; hand off to extraction
}

var (
	breakTagRe = regexp.MustCompile(`(?i)<br\s*/?>`)

	// A node declaration: identifier immediately followed by a
	// square-bracket label body. Edge labels (|...|) and shape
	// variants like A([x]) do not match because the bracket is not
	// preceded by an identifier character.
	nodeLabelRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9_]*)\[([^\]\n]*)\]`)

	// Re-spacing fixes for block constructs glued onto other
	// statements: a subgraph header or an "end" terminator must start
	// its own line before the structure can be validated.
	inlineSubgraphRe = regexp.MustCompile(`(?m)^(.*\S)[ \t]+(subgraph\b.*)$`)
	trailingEndRe    = regexp.MustCompile(`(?m)^(.*\S)[ \t]+end[ \t]*$`)
)

// Sanitize normalizes raw diagram text. It cannot fail: the worst case
// is returning the input with only whitespace normalization applied.
func Sanitize(raw string) Result {
	text := breakTagRe.ReplaceAllString(raw, " ")
	text = rewriteNodeLabels(text)

	text, escalated := repairNestedBlocks(text)
	if escalated {
		// Local repair is abandoned; the structural extractor takes
		// over from the original raw text.
		return Result{Text: text, Modified: text != raw, Escalated: true}
	}

	text = normalizeWhitespace(text)
	return Result{Text: text, Modified: text != raw}
}

// rewriteNodeLabels applies the label-body repairs: trailing
// parenthetical annotations and REST-path slash prefixes.
func rewriteNodeLabels(text string) string {
	return nodeLabelRe.ReplaceAllStringFunc(text, func(match string) string {
		sub := nodeLabelRe.FindStringSubmatch(match)
		id, body := sub[1], sub[2]
		cleaned := cleanLabelBody(body)
		if cleaned == "" {
			// A[] is not renderable; fall back to the identifier.
			cleaned = id
		}
		return id + "[" + cleaned + "]"
	})
}

func cleanLabelBody(body string) string {
	// A body opening with "(" is shape grammar (cylinder [( )] etc.),
	// not an annotation.
	if strings.HasPrefix(body, "(") {
		return body
	}

	// Drop a trailing parenthetical annotation, terminated or not.
	// Labels like "ASP Pages (e.g., Rlv_ISLLPOL_2" lose everything
	// from the opening parenthesis onward.
	if i := strings.Index(body, "("); i >= 0 {
		body = body[:i]
	}

	body = strings.TrimSpace(body)
	for strings.HasPrefix(body, "/") {
		body = strings.TrimSpace(strings.TrimPrefix(body, "/"))
	}
	return body
}

// repairNestedBlocks attempts a conservative re-spacing of subgraph
// blocks and validates the result. It reports escalated=true when the
// block structure remains unterminated or unparseable.
func repairNestedBlocks(text string) (string, bool) {
	if !strings.Contains(text, "subgraph") {
		return text, false
	}

	text = inlineSubgraphRe.ReplaceAllString(text, "$1\n$2")
	text = trailingEndRe.ReplaceAllString(text, "$1\nend")

	depth := 0
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch {
		case fields[0] == "subgraph":
			if len(fields) == 1 || strings.Contains(line, "-->") {
				// Headless or statement-glued header: re-spacing
				// cannot tell where the title ends.
				return text, true
			}
			depth++
		case len(fields) == 1 && fields[0] == "end":
			depth--
			if depth < 0 {
				return text, true
			}
		}
	}
	return text, depth != 0
}

// Guards temporarily protect arrow operators ("->" in dashed and
// dotted arrows, "=>" in thick arrows) while residual angle brackets
// are stripped.
const (
	dashArrowGuard  = "\x00"
	thickArrowGuard = "\x01"
)

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	// Remove angle brackets left over from markup fragments without
	// destroying arrow operators.
	text = strings.ReplaceAll(text, "->", dashArrowGuard)
	text = strings.ReplaceAll(text, "=>", thickArrowGuard)
	text = strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, text)
	text = strings.ReplaceAll(text, thickArrowGuard, "=>")
	text = strings.ReplaceAll(text, dashArrowGuard, "->")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "\n")
}

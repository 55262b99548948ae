package render

// ArtifactKind discriminates the two artifact payloads.
type ArtifactKind int

const (
	// VectorMarkup carries renderable SVG from a Tier 1 or Tier 2
	// success.
	VectorMarkup ArtifactKind = iota
	// Diagnostic carries the Tier 3 textual fallback: a notice plus
	// the verbatim original text for inspection.
	Diagnostic
)

// Artifact is the pipeline's only output. It is returned by value; the
// pipeline keeps no reference once it hands an artifact to the caller.
type Artifact struct {
	Kind ArtifactKind
	Tier int

	// Markup is set when Kind is VectorMarkup.
	Markup string

	// DisplayText and OriginalText are set when Kind is Diagnostic.
	DisplayText  string
	OriginalText string
}

// Degraded reports whether the artifact came from a fallback tier and
// the UI should mark it as simplified.
func (a Artifact) Degraded() bool {
	return a.Tier >= 2
}

// Attempt records one renderer call. Attempts are disposable; at most
// one is in flight per diagram source at a time.
type Attempt struct {
	Tier      int
	AttemptID string
	InputText string
	Markup    string
	Err       error
}

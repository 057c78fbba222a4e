// Package stream implements the streaming transformation pipeline: frame
// reassembly (C1), event classification (C2), the reasoning-injection state
// machine (C3), output encoding (C4), tool-call buffering (C5), and the
// orchestrator that drives them end to end (C6).
package stream

// WireFormat selects the outer transport encoding of the client-visible
// response.
type WireFormat int

const (
	WireSSE WireFormat = iota
	WireNDJSON
)

// Schema selects the JSON shape of each emitted event.
type Schema int

const (
	SchemaOpenAI Schema = iota
	SchemaOllama
)

const (
	// Sep separates the reasoning block from the first visible
	// post-reasoning content fragment. Appears at most once per stream.
	Sep = "\n\n---\n\n"

	// Marker prefixes the first reasoning-bearing output event.
	Marker = "💭 "

	// DoneSentinel is the terminal SSE payload emitted by OpenAI-compatible
	// upstreams.
	DoneSentinel = "[DONE]"
)

package stream

// State carries the per-request mutable state threaded through the
// reasoning injector (C3) and the tool-call buffer (C5) across the whole
// lifetime of one upstream response.
type State struct {
	// SeenReasoning is set the first time any choice carries a
	// reasoning_content string (even an empty one). Before it is set,
	// visible content is
	// withheld into PreReasoningBuffer rather than forwarded, so that once
	// reasoning does arrive it can still precede the content that
	// originally came before it (spec.md P1).
	SeenReasoning bool

	// ReasoningPrefixEmitted is set once the marker + reasoning text has
	// been written to the client. After that point, further
	// reasoning_content fragments are emitted without the marker; a fragment
	// that shares its delta with original content is joined to that content
	// with a single-space join.
	ReasoningPrefixEmitted bool

	// ReasoningPendingSeparator is set when the reasoning prefix was
	// emitted with no original content to follow it immediately; the next
	// choice carrying original content gets SEP prepended instead.
	ReasoningPendingSeparator bool

	// PreReasoningBuffer accumulates visible content seen before the first
	// reasoning_content fragment arrives.
	PreReasoningBuffer string

	// ToolCallMode is set, and never cleared, the first time a frame's
	// payload contains a tool_call or tool_calls substring. While set,
	// every encoded output is diverted into ToolCallBuffer instead of
	// being written to the client.
	ToolCallMode bool

	// ToolCallBuffer holds encoded output bytes deferred by ToolCallMode,
	// in arrival order, to be flushed as a single chunk at stream end.
	ToolCallBuffer [][]byte

	// DoneReceived is set once the upstream terminal sentinel has been
	// observed, so the orchestrator knows whether it must synthesize one.
	DoneReceived bool
}

// NewState returns a zero-value State ready for use by a single stream.
func NewState() *State {
	return &State{}
}

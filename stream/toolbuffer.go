package stream

import "bytes"

// BufferToolCall appends an already-encoded output chunk to the tool-call
// buffer rather than emitting it immediately. Called whenever
// State.ToolCallMode is set at the moment a frame's output is ready.
func (s *State) BufferToolCall(out []byte) {
	if len(out) == 0 {
		return
	}
	cp := make([]byte, len(out))
	copy(cp, out)
	s.ToolCallBuffer = append(s.ToolCallBuffer, cp)
}

// DrainToolCallBuffer concatenates and clears the buffered tool-call
// output, for a single flush at stream end (spec.md C5, scenario 5).
func (s *State) DrainToolCallBuffer() []byte {
	if len(s.ToolCallBuffer) == 0 {
		return nil
	}
	out := bytes.Join(s.ToolCallBuffer, nil)
	s.ToolCallBuffer = nil
	return out
}

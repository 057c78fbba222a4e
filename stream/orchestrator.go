package stream

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// Sink is the minimal surface the orchestrator needs to write and flush
// client-visible bytes. http.ResponseWriter + http.Flusher satisfies it
// via ResponseWriterSink.
type Sink interface {
	io.Writer
	Flush()
}

// ResponseWriterSink adapts an io.Writer and an optional flush function
// (nil is fine — Flush becomes a no-op) to the Sink interface.
type ResponseWriterSink struct {
	W         io.Writer
	FlushFunc func()
}

func (s ResponseWriterSink) Write(p []byte) (int, error) { return s.W.Write(p) }
func (s ResponseWriterSink) Flush() {
	if s.FlushFunc != nil {
		s.FlushFunc()
	}
}

// Orchestrator drives one upstream response through reassembly,
// classification, reasoning injection, and encoding, writing the result to
// a Sink (spec.md C6).
type Orchestrator struct {
	Encoder       Encoder
	ShowReasoning bool
}

// RunSSE consumes upstream's SSE byte stream and writes the translated
// output to sink until upstream is exhausted or ctx is cancelled. It is
// the caller's responsibility to have already verified upstream is an SSE
// body (Content-Type: text/event-stream).
func (o Orchestrator) RunSSE(ctx context.Context, upstream io.Reader, sink Sink) error {
	end := beginStream()
	defer end()

	state := NewState()

	if hb := o.Encoder.InitialHeartbeats(); len(hb) > 0 {
		sink.Write(hb)
		sink.Flush()
	}

	ra := NewReassembler()
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := upstream.Read(buf)
		if n > 0 {
			for _, raw := range ra.Feed(buf[:n]) {
				o.handleFrame(state, Classify(raw), sink)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
	}

	o.finalize(state, sink)
	return nil
}

func (o Orchestrator) handleFrame(state *State, frame Frame, sink Sink) {
	if frame.HasToolCall {
		state.ToolCallMode = true
	}

	var out []byte
	var ok bool

	switch frame.Kind {
	case KindNoData:
		out, ok = o.Encoder.NoData(frame)
	case KindDone:
		state.DoneReceived = true
		out, ok = o.Encoder.Done(), true
	case KindJSON:
		value := frame.JSON
		if obj, isObj := frame.Object(); isObj {
			if o.ShowReasoning {
				InjectStreamingChoices(state, obj)
			}
			value = obj
		}
		out, ok = o.Encoder.Event(value)
	case KindUnparsed:
		out, ok = o.Encoder.Degraded(frame)
	}

	if !ok || len(out) == 0 {
		return
	}

	if state.ToolCallMode {
		state.BufferToolCall(out)
		return
	}

	sink.Write(out)
	sink.Flush()
}

// finalize implements the end-of-stream steps from spec.md §4.1: flush any
// buffered tool-call output, synthesize a trailing content event for
// content that was withheld pending reasoning that never arrived, then
// synthesize the terminator if the upstream never sent one.
func (o Orchestrator) finalize(state *State, sink Sink) {
	if buffered := state.DrainToolCallBuffer(); len(buffered) > 0 {
		sink.Write(buffered)
		sink.Flush()
	}

	if !state.SeenReasoning && state.PreReasoningBuffer != "" {
		synthetic := map[string]interface{}{
			"choices": []interface{}{
				map[string]interface{}{
					"index": 0,
					"delta": map[string]interface{}{"content": state.PreReasoningBuffer},
				},
			},
		}
		if out, ok := o.Encoder.Event(synthetic); ok {
			sink.Write(out)
			sink.Flush()
		}
		state.PreReasoningBuffer = ""
	}

	if !state.DoneReceived {
		sink.Write(o.Encoder.Done())
		sink.Flush()
	}
}

// RunFull translates a single non-streaming upstream JSON body (spec.md
// §4.1 "Non-streaming upstream handling").
func (o Orchestrator) RunFull(body []byte, sink Sink) error {
	end := beginStream()
	defer end()

	var value interface{}
	if err := json.Unmarshal(body, &value); err != nil {
		// Not JSON at all: pass through as a degraded single frame.
		frame := Frame{Raw: "data: " + string(body), Payload: string(body), HasData: true, Kind: KindUnparsed}
		if out, ok := o.Encoder.Degraded(frame); ok {
			sink.Write(out)
		}
		if o.Encoder.Schema == SchemaOllama {
			sink.Write(o.Encoder.Done())
		}
		return nil
	}

	if obj, ok := value.(map[string]interface{}); ok {
		if o.ShowReasoning {
			state := NewState()
			RewriteFinalMessage(state, obj)
		}
		value = obj
	}

	if out, ok := o.Encoder.Event(value); ok {
		sink.Write(out)
	}

	// SSE and NDJSON-OpenAI get exactly one representation and no
	// terminator for a non-streaming response; only NDJSON-Ollama appends
	// a second done:true line (spec.md §4.1).
	if o.Encoder.Schema == SchemaOllama {
		sink.Write(o.Encoder.Done())
	}
	return nil
}

// IsEventStream reports whether a Content-Type header value indicates an
// SSE body, per spec.md §4.1.
func IsEventStream(contentType string) bool {
	return strings.Contains(contentType, "text/event-stream")
}

package stream

import (
	"encoding/json"
	"time"
)

// Encoder renders classified/rewritten events into the wire bytes for one
// negotiated (WireFormat, Schema) pair (spec.md C4).
type Encoder struct {
	Format WireFormat
	Schema Schema
	// Model is the friendly (or raw) model id echoed into Ollama-schema
	// lines.
	Model string
}

// Event encodes one upstream JSON event. ok is false when the event should
// produce no output at all (e.g. an NDJSON-Ollama line whose extracted
// text is empty).
func (e Encoder) Event(value interface{}) (out []byte, ok bool) {
	switch e.Format {
	case WireSSE:
		return e.sseEvent(value)
	case WireNDJSON:
		switch e.Schema {
		case SchemaOllama:
			return e.ndjsonOllamaEvent(value)
		default:
			return e.ndjsonOpenAIEvent(value)
		}
	}
	return nil, false
}

func (e Encoder) sseEvent(value interface{}) ([]byte, bool) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, false
	}
	return sseFrame(b), true
}

func (e Encoder) ndjsonOpenAIEvent(value interface{}) ([]byte, bool) {
	var out interface{} = value
	if _, isObj := value.(map[string]interface{}); !isObj {
		out = map[string]interface{}{"value": value}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, false
	}
	return append(b, '\n'), true
}

func (e Encoder) ndjsonOllamaEvent(value interface{}) ([]byte, bool) {
	text, ok := extractAssistantText(value)
	if !ok || text == "" {
		return nil, false
	}
	return e.ollamaMessageLine(text, false), true
}

// Degraded encodes a frame whose data: payload failed to parse as JSON
// (spec.md §4.1, §7 "malformed upstream frames").
func (e Encoder) Degraded(frame Frame) ([]byte, bool) {
	switch e.Format {
	case WireSSE:
		return sseFrame([]byte(frame.Raw)), true
	case WireNDJSON:
		if e.Schema == SchemaOllama {
			return nil, false
		}
		b, err := json.Marshal(map[string]interface{}{"value": frame.Payload})
		if err != nil {
			return nil, false
		}
		return append(b, '\n'), true
	}
	return nil, false
}

// NoData encodes a frame with no data: lines — pure comment/control text
// (spec.md §4.1).
func (e Encoder) NoData(frame Frame) ([]byte, bool) {
	switch e.Format {
	case WireSSE:
		return sseFrame([]byte(frame.Raw)), true
	case WireNDJSON:
		if e.Schema == SchemaOllama {
			return nil, false
		}
		var out []byte
		for _, line := range splitLines(frame.Raw) {
			if len(line) == 0 || line[0] != ':' {
				continue
			}
			comment := trimLeftSpace(line[1:])
			b, err := json.Marshal(map[string]interface{}{"type": "heartbeat", "comment": comment})
			if err != nil {
				continue
			}
			out = append(out, b...)
			out = append(out, '\n')
		}
		return out, len(out) > 0
	}
	return nil, false
}

// Done encodes the terminal event for the negotiated wire format/schema.
func (e Encoder) Done() []byte {
	switch e.Format {
	case WireSSE:
		return sseFrame([]byte(DoneSentinel))
	case WireNDJSON:
		if e.Schema == SchemaOllama {
			return e.ollamaMessageLine("", true)
		}
		b, _ := json.Marshal(map[string]interface{}{"done": true})
		return append(b, '\n')
	}
	return nil
}

// InitialHeartbeats returns the SSE-only comment lines emitted once, before
// any upstream bytes are consumed (spec.md §4.1).
func (e Encoder) InitialHeartbeats() []byte {
	if e.Format != WireSSE {
		return nil
	}
	return []byte(": heartbeat\n\n: processing-prompt\n\n")
}

type ollamaChatLine struct {
	Model     string         `json:"model"`
	CreatedAt string         `json:"created_at,omitempty"`
	Message   *ollamaMessage `json:"message,omitempty"`
	Done      bool           `json:"done"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (e Encoder) ollamaMessageLine(text string, done bool) []byte {
	line := ollamaChatLine{
		Model: e.Model,
		Done:  done,
	}
	if !done {
		line.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
		line.Message = &ollamaMessage{Role: "assistant", Content: text}
	}
	b, err := json.Marshal(line)
	if err != nil {
		return nil
	}
	return append(b, '\n')
}

func sseFrame(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+8)
	out = append(out, "data: "...)
	out = append(out, payload...)
	out = append(out, '\n', '\n')
	return out
}

// extractAssistantText concatenates every choice's delta.content (streaming)
// or message.content (non-streaming) into one string, per spec.md §4.2.
func extractAssistantText(value interface{}) (string, bool) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return "", false
	}
	choices, ok := obj["choices"].([]interface{})
	if !ok {
		return "", false
	}
	var out string
	for _, c := range choices {
		choice, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		if delta, ok := choice["delta"].(map[string]interface{}); ok {
			if s, ok := delta["content"].(string); ok {
				out += s
			}
		}
		if msg, ok := choice["message"].(map[string]interface{}); ok {
			if s, ok := msg["content"].(string); ok {
				out += s
			}
		}
	}
	return out, true
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func trimLeftSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}

package stream

import (
	"encoding/json"
	"strings"
)

// Kind tags the outcome of classifying one reassembled SSE frame.
type Kind int

const (
	// KindNoData is a frame with no data: lines at all — pure comment
	// and/or control lines (spec.md §4.1).
	KindNoData Kind = iota
	// KindDone is the upstream terminal sentinel, payload "[DONE]".
	KindDone
	// KindJSON is a frame whose joined payload parsed as JSON.
	KindJSON
	// KindUnparsed is a frame with data: lines whose payload failed to
	// parse as JSON.
	KindUnparsed
)

// Frame is the classified form of one reassembled SSE frame.
type Frame struct {
	Raw         string
	Payload     string
	HasData     bool
	HasToolCall bool
	Kind        Kind
	// JSON holds the parsed payload when Kind == KindJSON. It may be a
	// map[string]interface{} (the common case) or any other JSON value.
	JSON interface{}
}

// Object returns Frame.JSON as a JSON object, if it is one.
func (f Frame) Object() (map[string]interface{}, bool) {
	obj, ok := f.JSON.(map[string]interface{})
	return obj, ok
}

// Classify splits a reassembled frame into its constituent lines, extracts
// any data: payload, and determines what kind of frame it is (spec.md C2).
func Classify(raw string) Frame {
	lines := strings.Split(raw, "\n")

	var dataLines []string
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimLeft(strings.TrimPrefix(line, "data:"), " "))
		default:
			// Comment (":...") and control ("event:", "id:", "retry:")
			// lines carry no payload; they only matter for the
			// no-data-lines case below.
		}
	}

	if len(dataLines) == 0 {
		return Frame{Raw: raw, Kind: KindNoData}
	}

	payload := strings.Join(dataLines, "\n")
	f := Frame{Raw: raw, Payload: payload, HasData: true}

	if payload == DoneSentinel {
		f.Kind = KindDone
		return f
	}

	if strings.Contains(payload, "tool_call") {
		f.HasToolCall = true
	}

	var value interface{}
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		f.Kind = KindUnparsed
		return f
	}
	f.JSON = value
	f.Kind = KindJSON
	return f
}

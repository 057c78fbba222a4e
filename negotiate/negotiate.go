// Package negotiate implements the negotiator (C8): choosing the
// client-visible wire format and schema from the request path, the Accept
// header, and the body's stream flag.
package negotiate

import (
	"strings"

	"github.com/jbctechsolutions/ollama-bridge/stream"
)

// WantsStream evaluates the tri-valued request body `stream` field:
// explicit true, explicit false, or absent (treated as false). Truthy
// values are boolean true, any nonzero number, or a case-insensitive
// string in {"1","true","yes"} (spec.md §4.4).
func WantsStream(body map[string]interface{}) bool {
	v, ok := body["stream"]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes":
			return true
		}
		return false
	default:
		return false
	}
}

// WireFormat chooses SSE or NDJSON from the Accept header.
func WireFormat(accept string) stream.WireFormat {
	if strings.Contains(accept, "application/x-ndjson") {
		return stream.WireNDJSON
	}
	return stream.WireSSE
}

// Schema chooses the output schema for a given request path and wire
// format: /api/chat with NDJSON gets the Ollama schema; everything else
// (including /v1/chat/completions and /chat/completions, which force
// OpenAI regardless of wire format per spec.md §4.5) gets OpenAI.
func Schema(path string, wire stream.WireFormat) stream.Schema {
	if isOllamaChatPath(path) && wire == stream.WireNDJSON {
		return stream.SchemaOllama
	}
	return stream.SchemaOpenAI
}

func isOllamaChatPath(path string) bool {
	return path == "/api/chat"
}

// ForceOpenAISchema reports whether path is one of the OpenAI
// pass-through chat-completions endpoints, which always use the OpenAI
// schema regardless of negotiated wire format (spec.md §4.5).
func ForceOpenAISchema(path string) bool {
	return path == "/v1/chat/completions" || path == "/chat/completions"
}

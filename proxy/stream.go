// Package proxy wires the negotiator, dialect adapter, and streaming
// pipeline onto an HTTP server matching the external interface in
// spec.md §6.
package proxy

import (
	"net/http"

	"github.com/jbctechsolutions/ollama-bridge/stream"
)

// sseHeaders sets the headers required for Server-Sent Events output
// (spec.md §6). Headers must be written before the first call to Write or
// Flush.
func sseHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Accel-Buffering", "no")
	h.Set("Connection", "keep-alive")
	h.Set("Vary", "Accept")
}

// ndjsonHeaders sets the headers required for NDJSON output (spec.md §6).
func ndjsonHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/x-ndjson")
	h.Set("Vary", "Accept")
}

// newSink sets the response headers for the negotiated wire format and
// returns a stream.Sink wrapping w. It reports whether the ResponseWriter
// supports flushing — streaming is not possible without it.
func newSink(w http.ResponseWriter, wire stream.WireFormat) (stream.Sink, bool) {
	switch wire {
	case stream.WireNDJSON:
		ndjsonHeaders(w)
	default:
		sseHeaders(w)
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		return stream.ResponseWriterSink{W: w}, false
	}
	return stream.ResponseWriterSink{W: w, FlushFunc: flusher.Flush}, true
}

package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jbctechsolutions/ollama-bridge/alias"
	"github.com/jbctechsolutions/ollama-bridge/config"
	"github.com/jbctechsolutions/ollama-bridge/dialect"
	"github.com/jbctechsolutions/ollama-bridge/negotiate"
	"github.com/jbctechsolutions/ollama-bridge/stream"
)

// Version is reported by /api/version.
const Version = "0.1.0"

const (
	nonStreamingChatTimeout = 120 * time.Second
	discoveryTimeout        = 30 * time.Second
)

// Server accepts Ollama-dialect and OpenAI-compatible requests, negotiates
// the client-visible wire format and schema, and drives the streaming
// pipeline between the client and the upstream inference server.
type Server struct {
	cfg     *config.Config
	table   *alias.Table
	dialect *dialect.Client
	chat    *http.Client
}

// NewServer constructs a Server wired to cfg. It owns its own alias table
// and dialect client; both are process-wide for the lifetime of the server.
func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:     cfg,
		table:   alias.NewTable(),
		dialect: dialect.NewClient(cfg.Upstream),
		chat:    &http.Client{}, // no overall deadline for chat calls; context carries the timeout.
	}
}

// Start registers all route handlers, wraps the mux in the logging
// middleware, and begins listening. It blocks until the server returns an
// error.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/tags", s.handleTags)
	mux.HandleFunc("/api/show", s.handleShow)
	mux.HandleFunc("/api/chat", s.handleAPIChat)
	mux.HandleFunc("/api/embed", s.handleEmbed)
	mux.HandleFunc("/api/embeddings", s.handleEmbed)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/debug/json", s.handleDebugJSON)
	mux.HandleFunc("/", s.handleCatchAll)

	handler := loggingMiddleware(s.cfg, mux)

	addr := s.cfg.ListenHost + ":" + s.cfg.ListenPort
	log.Printf("ollama-bridge listening on %s, upstream %s, thinking_mode=%s", addr, s.cfg.Upstream, s.cfg.ThinkingMode)
	return http.ListenAndServe(addr, handler)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		sendError(w, "bad_request", "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "version": Version}) //nolint:errcheck
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), discoveryTimeout)
	defer cancel()

	result := s.dialect.Tags(ctx, s.table, s.cfg.Overrides.AliasPins, s.cfg.Overrides.Capabilities)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result) //nolint:errcheck
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendError(w, "bad_request", "failed to read request body", http.StatusBadRequest)
		return
	}
	var req map[string]interface{}
	if err := json.Unmarshal(body, &req); err != nil {
		sendError(w, "bad_request", "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	model, _ := req["model"].(string)
	if model == "" {
		sendError(w, "bad_request", "model is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), discoveryTimeout)
	defer cancel()

	out := s.dialect.Show(ctx, model, s.table, s.cfg.Overrides.Capabilities)
	w.Header().Set("Content-Type", "application/json")
	w.Write(out) //nolint:errcheck
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendError(w, "bad_request", "failed to read request body", http.StatusBadRequest)
		return
	}
	var req map[string]interface{}
	if err := json.Unmarshal(body, &req); err != nil {
		sendError(w, "bad_request", "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), discoveryTimeout)
	defer cancel()

	result := s.dialect.Embed(ctx, req, s.table)
	if result.ContentType != "" {
		w.Header().Set("Content-Type", result.ContentType)
	}
	w.WriteHeader(result.Status)
	w.Write(result.Body) //nolint:errcheck
}

// handleAPIChat implements POST /api/chat: resolve the alias, then delegate
// to the same chat-completions logic as /v1/chat/completions (spec.md
// §4.3, §4.5).
func (s *Server) handleAPIChat(w http.ResponseWriter, r *http.Request) {
	s.handleChatLike(w, r, "/chat/completions")
}

// handleChatCompletions implements both /v1/chat/completions and
// /chat/completions, forwarding upstream on the same path that was
// requested (spec.md §4.5).
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	s.handleChatLike(w, r, r.URL.Path)
}

func (s *Server) handleChatLike(w http.ResponseWriter, r *http.Request, upstreamPath string) {
	if r.Method != http.MethodPost {
		sendError(w, "bad_request", "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		sendError(w, "bad_request", "failed to read request body", http.StatusBadRequest)
		return
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		sendError(w, "bad_request", "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := payload["messages"]; !ok {
		sendError(w, "bad_request", "messages is required", http.StatusBadRequest)
		return
	}

	clientModel, _ := payload["model"].(string)
	dialect.ResolveChatModel(payload, s.table)

	wire := negotiate.WireFormat(r.Header.Get("Accept"))
	schema := negotiate.Schema(r.URL.Path, wire)

	if !negotiate.WantsStream(payload) {
		s.forwardNonStreaming(w, r, payload, upstreamPath)
		return
	}

	payload["stream"] = true
	s.forwardStreaming(w, r, payload, upstreamPath, clientModel, wire, schema)
}

// forwardNonStreaming implements spec.md §4.4's non-streaming path: a plain
// JSON POST to upstream, 120s timeout, upstream body returned verbatim
// (after the non-streaming reasoning rewrite, when applicable).
func (s *Server) forwardNonStreaming(w http.ResponseWriter, r *http.Request, payload map[string]interface{}, upstreamPath string) {
	payload["stream"] = false

	ctx, cancel := context.WithTimeout(r.Context(), nonStreamingChatTimeout)
	defer cancel()

	resp, err := s.postUpstream(ctx, upstreamPath, payload)
	if err != nil {
		sendError(w, "upstream_connection_error", err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		sendError(w, "upstream_connection_error", err.Error(), http.StatusBadGateway)
		return
	}

	if s.cfg.ThinkingMode == config.ThinkingShowReasoning {
		body = rewriteNonStreamingBody(body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body) //nolint:errcheck
}

func rewriteNonStreamingBody(body []byte) []byte {
	var obj map[string]interface{}
	if json.Unmarshal(body, &obj) != nil {
		return body
	}
	state := stream.NewState()
	stream.RewriteFinalMessage(state, obj)
	out, err := json.Marshal(obj)
	if err != nil {
		return body
	}
	return out
}

// forwardStreaming drives the upstream response through the streaming
// pipeline and writes the translated output to the client (spec.md §4.1,
// §4.4).
func (s *Server) forwardStreaming(w http.ResponseWriter, r *http.Request, payload map[string]interface{}, upstreamPath, clientModel string, wire stream.WireFormat, schema stream.Schema) {
	resp, err := s.postUpstream(r.Context(), upstreamPath, payload)
	if err != nil {
		sendError(w, "upstream_connection_error", err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	sink, flushable := newSink(w, wire)
	if !flushable {
		sendError(w, "upstream_connection_error", "response does not support streaming", http.StatusInternalServerError)
		return
	}

	encoder := stream.Encoder{Format: wire, Schema: schema, Model: clientModel}
	orch := stream.Orchestrator{Encoder: encoder, ShowReasoning: s.cfg.ThinkingMode == config.ThinkingShowReasoning}

	if stream.IsEventStream(resp.Header.Get("Content-Type")) {
		orch.RunSSE(r.Context(), resp.Body, sink) //nolint:errcheck
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	orch.RunFull(body, sink) //nolint:errcheck
}

func (s *Server) postUpstream(ctx context.Context, path string, payload map[string]interface{}) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Upstream+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.chat.Do(req)
}

func (s *Server) handleDebugJSON(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendError(w, "bad_request", "failed to read request body", http.StatusBadRequest)
		return
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"minified": string(body)}) //nolint:errcheck
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"minified": compact.String()}) //nolint:errcheck
}

// handleCatchAll forwards anything not otherwise matched straight through to
// upstream. Deliberately minimal — spec.md marks this path out of core
// scope.
func (s *Server) handleCatchAll(w http.ResponseWriter, r *http.Request) {
	target, err := url.Parse(s.cfg.Upstream)
	if err != nil {
		sendError(w, "upstream_connection_error", err.Error(), http.StatusBadGateway)
		return
	}

	rp := httputil.NewSingleHostReverseProxy(target)
	rp.ModifyResponse = func(resp *http.Response) error {
		stripHeaders(resp.Header, responseHopByHop)
		return nil
	}
	stripHeaders(r.Header, requestHopByHop)
	rp.ServeHTTP(w, r)
}

// loggingMiddleware logs the method, path, and elapsed time for every
// request, matching the teacher's "<- METHOD path" / "-> METHOD path
// completed in Xms" texture. VERBOSE additionally logs the remote address.
func loggingMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.New().String()
		w.Header().Set("X-Request-Id", reqID)

		if cfg.Verbose {
			log.Printf("<- [%s] %s %s from %s", reqID, r.Method, r.URL.Path, r.RemoteAddr)
		} else {
			log.Printf("<- [%s] %s %s", reqID, r.Method, r.URL.Path)
		}
		next.ServeHTTP(w, r)
		log.Printf("-> [%s] %s %s completed in %v", reqID, r.Method, r.URL.Path, time.Since(start))
	})
}

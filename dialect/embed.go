package dialect

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/jbctechsolutions/ollama-bridge/alias"
)

// EmbedResult is the outcome of an /api/embed or /api/embeddings call: the
// status and content-type to forward to the client, plus either the
// converted Ollama-shaped body or, on conversion failure, the raw upstream
// bytes (spec.md §4.3).
type EmbedResult struct {
	Status      int
	ContentType string
	Body        []byte
}

// Embed resolves the model alias, posts the model and its input (or, when
// input is absent, prompt) to upstream /v1/embeddings, and converts the
// OpenAI embeddings response into Ollama shape. Other request fields are not
// forwarded.
func (c *Client) Embed(ctx context.Context, reqBody map[string]interface{}, table *alias.Table) EmbedResult {
	if m, ok := reqBody["model"].(string); ok {
		reqBody["model"] = table.Resolve(m)
	}

	openAIBody := map[string]interface{}{
		"model": reqBody["model"],
		"input": embedInput(reqBody),
	}

	data, err := json.Marshal(openAIBody)
	if err != nil {
		return EmbedResult{Status: http.StatusBadGateway, ContentType: "application/json",
			Body: []byte(`{"error":"bad_request","message":"invalid embed request"}`)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/v1/embeddings"), bytes.NewReader(data))
	if err != nil {
		return EmbedResult{Status: http.StatusBadGateway, ContentType: "application/json",
			Body: []byte(`{"error":"upstream_connection_error","message":"` + err.Error() + `"}`)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return EmbedResult{Status: http.StatusBadGateway, ContentType: "application/json",
			Body: []byte(`{"error":"upstream_connection_error","message":"` + err.Error() + `"}`)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return EmbedResult{Status: http.StatusBadGateway, ContentType: "application/json",
			Body: []byte(`{"error":"upstream_connection_error","message":"` + err.Error() + `"}`)}
	}

	converted, ok := convertEmbeddings(raw)
	if !ok {
		// Conversion failure: forward raw bytes as-is.
		return EmbedResult{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: raw}
	}
	return EmbedResult{Status: resp.StatusCode, ContentType: "application/json", Body: converted}
}

func embedInput(reqBody map[string]interface{}) interface{} {
	if v, ok := reqBody["input"]; ok {
		return v
	}
	if v, ok := reqBody["prompt"]; ok {
		return v
	}
	return ""
}

// convertEmbeddings converts an OpenAI-shaped {"data":[{"embedding":[...]},...]}
// body into Ollama shape: a single item becomes {"embedding":[...]}; multiple
// items become {"embeddings":[[...],...]}.
func convertEmbeddings(body []byte) ([]byte, bool) {
	var parsed struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Data) == 0 {
		return nil, false
	}

	if len(parsed.Data) == 1 {
		out, err := json.Marshal(map[string]interface{}{"embedding": parsed.Data[0].Embedding})
		return out, err == nil
	}

	embeddings := make([][]float64, len(parsed.Data))
	for i, d := range parsed.Data {
		embeddings[i] = d.Embedding
	}
	out, err := json.Marshal(map[string]interface{}{"embeddings": embeddings})
	return out, err == nil
}

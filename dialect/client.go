// Package dialect implements the dialect adapter (C7): mapping the
// Ollama-shaped discovery and embedding endpoints onto an OpenAI-compatible
// upstream, and maintaining the friendly-alias table used to do it.
package dialect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// fixedCapabilities is unioned into every capability set advertised to the
// client (spec.md §4.3, GLOSSARY "Capability set").
var fixedCapabilities = []string{"completion", "chat", "embeddings", "tools", "planAndExecute"}

// Client talks to the OpenAI-compatible upstream for discovery,
// model-info, and embedding requests. The streaming chat path is driven
// directly by the stream package; Client only resolves the outbound
// request, it does not itself transform SSE.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client with the given base URL (trailing slash
// trimmed) and a sensible default timeout for discovery-class calls.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// getJSON issues a GET request and decodes a JSON object response.
func (c *Client) getJSON(ctx context.Context, path string) (map[string]interface{}, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("upstream GET %s: status %d", path, resp.StatusCode)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, resp.StatusCode, err
	}
	return obj, resp.StatusCode, nil
}

// postJSON issues a POST request with a JSON body and decodes a JSON
// object response.
func (c *Client) postJSON(ctx context.Context, path string, reqBody interface{}) (map[string]interface{}, int, error) {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("upstream POST %s: status %d", path, resp.StatusCode)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, resp.StatusCode, err
	}
	return obj, resp.StatusCode, nil
}

// capabilitySet unions the fixed capability list with any extras
// (upstream-reported or config-overlay additions), sorted and deduplicated.
func capabilitySet(extras ...[]string) []string {
	seen := make(map[string]bool, len(fixedCapabilities))
	var out []string
	add := func(c string) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, c := range fixedCapabilities {
		add(c)
	}
	for _, extra := range extras {
		for _, c := range extra {
			add(c)
		}
	}
	sort.Strings(out)
	return out
}

func stringSliceFromAny(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

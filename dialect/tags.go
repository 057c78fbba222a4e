package dialect

import (
	"context"
	"strconv"
	"time"

	"github.com/jbctechsolutions/ollama-bridge/alias"
)

// Tags implements /api/tags: list upstream models, rebuild the alias
// table, and produce an Ollama-shaped model list with augmented
// capabilities (spec.md §4.3). On upstream failure it returns an empty
// list — the caller always responds 200.
func (c *Client) Tags(ctx context.Context, table *alias.Table, pins map[string]string, extraCapabilities []string) map[string]interface{} {
	listResp, _, err := c.getJSON(ctx, "/v1/models")
	if err != nil {
		return map[string]interface{}{"models": []interface{}{}}
	}

	rawModels, _ := listResp["data"].([]interface{})
	ids := make([]string, 0, len(rawModels))
	for _, m := range rawModels {
		obj, ok := m.(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := obj["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	idToName := table.Rebuild(ids, pins)

	entries := make([]interface{}, 0, len(rawModels))
	for _, m := range rawModels {
		obj, ok := m.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := obj["id"].(string)
		if id == "" {
			continue
		}
		name := idToName[id]
		if name == "" {
			name = alias.FriendlyName(id)
		}
		entries = append(entries, tagsEntry(name, id, obj, extraCapabilities))
	}

	return map[string]interface{}{"models": entries}
}

func tagsEntry(friendlyName, upstreamID string, upstream map[string]interface{}, extraCapabilities []string) map[string]interface{} {
	return map[string]interface{}{
		"name":       friendlyName,
		"model":      upstreamID,
		"modified_at": resolveModifiedAt(upstream),
		"size":       resolveSize(upstream),
		"digest":     resolveDigest(upstream),
		"details": map[string]interface{}{
			"format": "gguf",
		},
		"capabilities": capabilitySet(stringSliceFromAny(upstream["capabilities"]), extraCapabilities),
	}
}

func resolveModifiedAt(upstream map[string]interface{}) string {
	if s, ok := upstream["modified_at"].(string); ok && s != "" {
		return s
	}
	if created, ok := upstream["created"]; ok {
		switch v := created.(type) {
		case float64:
			return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
		case string:
			if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
				return time.Unix(secs, 0).UTC().Format(time.RFC3339)
			}
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func resolveSize(upstream map[string]interface{}) int64 {
	if s, ok := upstream["size"].(float64); ok {
		return int64(s)
	}
	return 0
}

func resolveDigest(upstream map[string]interface{}) string {
	if s, ok := upstream["digest"].(string); ok {
		return s
	}
	return ""
}

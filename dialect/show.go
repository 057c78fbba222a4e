package dialect

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jbctechsolutions/ollama-bridge/alias"
)

// Show implements /api/show: try upstream GET /v1/models/<id> first, fall
// back to upstream POST /api/show, and finally fall back to a bare
// capability stub. It never fails — the client uses this purely for
// feature detection (spec.md §4.3, §7.4).
func (c *Client) Show(ctx context.Context, modelAlias string, table *alias.Table, extraCapabilities []string) []byte {
	id := table.Resolve(modelAlias)
	caps := capabilitySet(nil, extraCapabilities)

	if obj, _, err := c.getJSON(ctx, "/v1/models/"+url.PathEscape(id)); err == nil {
		if b, err := json.Marshal(minimalShowRecord(obj, extraCapabilities)); err == nil {
			return b
		}
	}

	if obj, _, err := c.postJSON(ctx, "/api/show", map[string]interface{}{"model": id}); err == nil {
		obj["capabilities"] = capabilitySet(stringSliceFromAny(obj["capabilities"]), extraCapabilities)
		if b, err := json.Marshal(obj); err == nil {
			return b
		}
	}

	stub, _ := json.Marshal(map[string]interface{}{
		"details":      map[string]interface{}{"format": "gguf", "family": "", "families": []string{}},
		"capabilities": caps,
	})
	return stub
}

// minimalShowRecord builds the fixed Ollama-shaped record for the primary
// /v1/models/<id> success path: an empty modelfile/parameters/template, a
// details block with family derived from upstream's owned_by, and the
// augmented capability set (spec.md §4.3).
func minimalShowRecord(upstream map[string]interface{}, extraCapabilities []string) map[string]interface{} {
	family, _ := upstream["owned_by"].(string)
	families := []string{}
	if family != "" {
		families = []string{family}
	}

	return map[string]interface{}{
		"modelfile":  "",
		"parameters": "",
		"template":   "",
		"details": map[string]interface{}{
			"parent_model":       "",
			"format":             "gguf",
			"family":             family,
			"families":           families,
			"parameter_size":     "",
			"quantization_level": "",
		},
		"model_info":   map[string]interface{}{},
		"capabilities": capabilitySet(stringSliceFromAny(upstream["capabilities"]), extraCapabilities),
	}
}

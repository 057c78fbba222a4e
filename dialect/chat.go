package dialect

import "github.com/jbctechsolutions/ollama-bridge/alias"

// ResolveChatModel rewrites body["model"] from a friendly alias to its
// upstream id in place, returning the resolved id. /api/chat resolves the
// alias and then delegates to the same chat-completions path used by
// /v1/chat/completions and /chat/completions (spec.md §4.3, §4.5).
func ResolveChatModel(body map[string]interface{}, table *alias.Table) string {
	m, _ := body["model"].(string)
	resolved := table.Resolve(m)
	body["model"] = resolved
	return resolved
}

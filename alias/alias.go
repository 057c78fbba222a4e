// Package alias maintains the friendly-name ↔ upstream-model-id table used
// by the Ollama dialect adapter. The table is process-global, rebuilt on
// every /api/tags call, and read by every other endpoint; it uses
// swap-on-rebuild semantics so readers never observe a partially rebuilt
// table (spec.md §9 design note).
package alias

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
)

// strippedExtensions are removed from the basename when deriving a friendly
// name, per spec.md §3.
var strippedExtensions = []string{".gguf", ".bin", ".pt", ".pth"}

var whitespaceRunRe = regexp.MustCompile(`\s+`)

// FriendlyName derives a human-readable label from an upstream model id:
// take the basename, strip a trailing known extension, collapse internal
// whitespace runs to a single space.
func FriendlyName(modelID string) string {
	name := filepath.Base(modelID)
	for _, ext := range strippedExtensions {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	name = whitespaceRunRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// Table is a single-writer/multi-reader friendly-name → upstream-id map.
// Rebuild replaces the whole table atomically; Resolve and Snapshot are safe to
// call concurrently with Rebuild from any number of goroutines.
type Table struct {
	m atomic.Pointer[map[string]string]
}

// NewTable returns an empty, ready-to-use Table.
func NewTable() *Table {
	t := &Table{}
	empty := map[string]string{}
	t.m.Store(&empty)
	return t
}

// Rebuild derives friendly names for every (modelID) in ids, disambiguating
// collisions by appending " (2)", " (3)", etc. in input order, then
// publishes the new table in a single atomic swap. pins, when non-nil,
// overrides the derived name for a given upstream id (keyed by the pin's
// friendly name pointing at the upstream id) — entries in pins are merged in
// after derivation and always win on name collision.
//
// It returns the id → published-name mapping it just computed, so callers
// that need to display a model's name (e.g. /api/tags) use the exact,
// already-disambiguated name the table resolves it under, instead of
// re-deriving FriendlyName and risking a second, undisambiguated collision.
func (t *Table) Rebuild(ids []string, pins map[string]string) map[string]string {
	next := make(map[string]string, len(ids)+len(pins))
	idToName := make(map[string]string, len(ids))
	used := make(map[string]int, len(ids))

	for _, id := range ids {
		name := FriendlyName(id)
		used[name]++
		if n := used[name]; n > 1 {
			name = name + " (" + strconv.Itoa(n) + ")"
		}
		next[name] = id
		idToName[id] = name
	}

	for friendly, id := range pins {
		next[friendly] = id
		idToName[id] = friendly
	}

	t.m.Store(&next)
	return idToName
}

// Resolve maps a friendly name back to its upstream id. Unknown names
// resolve to themselves, per spec.md §3 ("Lookups fall through").
func (t *Table) Resolve(name string) string {
	table := *t.m.Load()
	if id, ok := table[name]; ok {
		return id
	}
	return name
}

// Snapshot returns a copy of the current friendly-name → upstream-id map.
func (t *Table) Snapshot() map[string]string {
	table := *t.m.Load()
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

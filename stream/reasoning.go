package stream

import "strings"

// InjectStreamingChoices runs the per-choice delta rewrite followed by the
// cross-choice separator pass over one streaming event's choices array
// (spec.md C3, steps 1-2 and 4). event must be the decoded JSON object of a
// KindJSON frame; it is mutated in place.
func InjectStreamingChoices(state *State, event map[string]interface{}) {
	choices, ok := choicesOf(event)
	if !ok {
		return
	}
	hadOriginal := rewriteChoices(state, choices, "delta")
	applySeparatorPass(state, choices, "delta", hadOriginal)
}

// RewriteFinalMessage runs the one-shot message rewrite used for a
// non-streaming upstream response body (spec.md C3 step 3 / §4.1
// "Non-streaming upstream handling"). Because there is only ever one such
// event, no separator pass or pre-reasoning buffering is needed: whatever
// original content sits alongside reasoning_content in the same message is
// already available to join inline. A message without a reasoning_content
// string is left unchanged.
func RewriteFinalMessage(state *State, event map[string]interface{}) {
	choices, ok := choicesOf(event)
	if !ok {
		return
	}
	for _, c := range choices {
		choice, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		m, ok := choice["message"].(map[string]interface{})
		if !ok {
			continue
		}
		if _, isString := m["reasoning_content"].(string); isString {
			rewriteField(state, m)
		}
	}
}

func choicesOf(event map[string]interface{}) ([]interface{}, bool) {
	choices, ok := event["choices"].([]interface{})
	return choices, ok
}

// rewriteChoices applies the per-choice rewrite (step 2/3 of C3) to every
// choice's field ("delta" or "message"), returning which choices carried
// non-empty original content before rewriting (used by the separator
// pass).
func rewriteChoices(state *State, choices []interface{}, field string) []bool {
	hadOriginal := make([]bool, len(choices))
	for i, c := range choices {
		choice, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		m, ok := choice[field].(map[string]interface{})
		if !ok {
			continue
		}
		if s, ok := m["content"].(string); ok && s != "" {
			hadOriginal[i] = true
		}
		rewriteField(state, m)
	}
	return hadOriginal
}

// rewriteField implements the core per-choice rewrite: fold reasoning_content
// into content, tracking the state machine described in spec.md §4.1.
func rewriteField(state *State, m map[string]interface{}) {
	rcRaw, hasRC := m["reasoning_content"]
	rc, isString := rcRaw.(string)
	original, _ := m["content"].(string)

	if !hasRC || !isString {
		if original != "" && !state.SeenReasoning {
			state.PreReasoningBuffer += original
			m["content"] = ""
		}
		return
	}

	rc = strings.ReplaceAll(rc, "\r\n", "\n")
	delete(m, "reasoning_content")
	state.SeenReasoning = true

	if !state.ReasoningPrefixEmitted {
		buffered := state.PreReasoningBuffer
		if buffered != "" || original != "" {
			m["content"] = Marker + rc + Sep + buffered + original
			state.PreReasoningBuffer = ""
			state.ReasoningPendingSeparator = false
		} else {
			m["content"] = Marker + rc
			state.ReasoningPendingSeparator = true
		}
		state.ReasoningPrefixEmitted = true
		return
	}

	m["content"] = singleSpaceJoin(rc, original)
}

// applySeparatorPass implements step 4 of C3: once the reasoning prefix has
// been emitted with nothing to follow it, the next choice (later in the same
// event or in any subsequent event) that carries original content gets SEP
// prepended,
// exactly once for the whole stream.
func applySeparatorPass(state *State, choices []interface{}, field string, hadOriginal []bool) {
	if !state.ReasoningPendingSeparator {
		return
	}
	for i, c := range choices {
		if !hadOriginal[i] {
			continue
		}
		choice, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		m, ok := choice[field].(map[string]interface{})
		if !ok {
			continue
		}
		cur, _ := m["content"].(string)
		if strings.HasPrefix(cur, "---\n") || strings.HasPrefix(cur, "\n---\n") {
			continue
		}
		m["content"] = Sep + cur
		state.ReasoningPendingSeparator = false
		break
	}
}

// singleSpaceJoin joins a reasoning fragment with subsequent content,
// inserting exactly one space at the boundary unless either side already
// supplies whitespace there (spec.md §9 design note).
func singleSpaceJoin(rc, original string) string {
	if original == "" {
		return rc
	}
	if rc == "" {
		return original
	}
	if isSpaceByte(rc[len(rc)-1]) || isSpaceByte(original[0]) {
		return rc + original
	}
	return rc + " " + original
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

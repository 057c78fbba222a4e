package stream

import (
	"strings"
	"testing"
)

func delta(content, reasoning string) map[string]interface{} {
	d := map[string]interface{}{}
	if content != "" {
		d["content"] = content
	}
	if reasoning != "" {
		d["reasoning_content"] = reasoning
	}
	return d
}

func event(deltas ...map[string]interface{}) map[string]interface{} {
	choices := make([]interface{}, len(deltas))
	for i, d := range deltas {
		choices[i] = map[string]interface{}{"index": i, "delta": d}
	}
	return map[string]interface{}{"choices": choices}
}

func contentOf(t *testing.T, ev map[string]interface{}, idx int) string {
	t.Helper()
	choices := ev["choices"].([]interface{})
	choice := choices[idx].(map[string]interface{})
	d, ok := choice["delta"].(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := d["content"].(string)
	return s
}

// TestPreReasoningContentWithheld is property P1: content arriving before
// the first reasoning_content fragment is withheld, not dropped.
func TestPreReasoningContentWithheld(t *testing.T) {
	state := NewState()
	ev := event(delta("hello ", ""))
	InjectStreamingChoices(state, ev)
	if got := contentOf(t, ev, 0); got != "" {
		t.Errorf("pre-reasoning content should be withheld, got %q", got)
	}
	if state.PreReasoningBuffer != "hello " {
		t.Errorf("PreReasoningBuffer = %q, want %q", state.PreReasoningBuffer, "hello ")
	}
}

// TestReasoningPrefixEmittedOnce is property P2: the marker appears at most
// once per stream.
func TestReasoningPrefixEmittedOnce(t *testing.T) {
	state := NewState()
	ev1 := event(delta("before ", ""))
	InjectStreamingChoices(state, ev1)

	ev2 := event(delta("", "thinking..."))
	InjectStreamingChoices(state, ev2)
	got2 := contentOf(t, ev2, 0)
	if !strings.HasPrefix(got2, Marker) {
		t.Fatalf("expected marker prefix, got %q", got2)
	}
	if strings.Count(got2, Marker) != 1 {
		t.Errorf("marker should appear once, got %q", got2)
	}
	if !strings.Contains(got2, "before ") {
		t.Errorf("expected buffered pre-reasoning content preserved, got %q", got2)
	}
	if !strings.Contains(got2, Sep) {
		t.Errorf("expected separator once reasoning meets buffered content, got %q", got2)
	}

	ev3 := event(delta("", "more reasoning"))
	InjectStreamingChoices(state, ev3)
	got3 := contentOf(t, ev3, 0)
	if strings.Contains(got3, Marker) {
		t.Errorf("marker must not repeat, got %q", got3)
	}
}

// TestSeparatorAppearsOnceAtBoundary is property P3: SEP appears exactly
// once, at the reasoning/content boundary.
func TestSeparatorAppearsOnceAtBoundary(t *testing.T) {
	state := NewState()
	ev1 := event(delta("", "thinking"))
	InjectStreamingChoices(state, ev1)
	got1 := contentOf(t, ev1, 0)
	if got1 != Marker+"thinking" {
		t.Fatalf("got %q", got1)
	}
	if state.ReasoningPendingSeparator != true {
		t.Fatal("expected pending separator after reasoning-only event")
	}

	ev2 := event(delta("answer", ""))
	InjectStreamingChoices(state, ev2)
	got2 := contentOf(t, ev2, 0)
	if got2 != Sep+"answer" {
		t.Errorf("got %q, want %q", got2, Sep+"answer")
	}

	ev3 := event(delta(" more", ""))
	InjectStreamingChoices(state, ev3)
	got3 := contentOf(t, ev3, 0)
	if strings.Contains(got3, Sep) {
		t.Errorf("separator must not repeat, got %q", got3)
	}
}

func TestSingleSpaceJoinAcrossReasoningFragments(t *testing.T) {
	state := NewState()
	ev1 := event(delta("", "first"))
	InjectStreamingChoices(state, ev1)

	ev2 := event(delta("", "second"))
	InjectStreamingChoices(state, ev2)
	got := contentOf(t, ev2, 0)
	if got != "second" {
		// no content in the same delta -> the fragment is emitted alone, no space added
		t.Errorf("got %q", got)
	}
}

func TestSingleSpaceJoinNoDoubleSpace(t *testing.T) {
	if got := singleSpaceJoin("already ", "content"); got != "already content" {
		t.Errorf("got %q", got)
	}
	if got := singleSpaceJoin("already", " content"); got != "already content" {
		t.Errorf("got %q", got)
	}
	if got := singleSpaceJoin("reasoning", "content"); got != "reasoning content" {
		t.Errorf("got %q", got)
	}
}

func TestRewriteFinalMessageOneShot(t *testing.T) {
	ev := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]interface{}{
					"role":              "assistant",
					"content":           "the answer",
					"reasoning_content": "because X",
				},
			},
		},
	}
	state := NewState()
	RewriteFinalMessage(state, ev)
	choice := ev["choices"].([]interface{})[0].(map[string]interface{})
	msg := choice["message"].(map[string]interface{})
	if _, present := msg["reasoning_content"]; present {
		t.Error("reasoning_content should be removed")
	}
	want := Marker + "because X" + Sep + "the answer"
	if msg["content"] != want {
		t.Errorf("content = %q, want %q", msg["content"], want)
	}
}

func TestCRLFNormalizedInReasoning(t *testing.T) {
	state := NewState()
	ev := event(delta("", "line1\r\nline2"))
	InjectStreamingChoices(state, ev)
	got := contentOf(t, ev, 0)
	if strings.Contains(got, "\r") {
		t.Errorf("CRLF should be normalized, got %q", got)
	}
}

package stream

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestReassemblerBasic(t *testing.T) {
	r := NewReassembler()
	frames := r.Feed([]byte("data: a\n\ndata: b\n\n"))
	want := []string{"data: a", "data: b"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("got %v, want %v", frames, want)
	}
}

func TestReassemblerSkipsEmptySplits(t *testing.T) {
	r := NewReassembler()
	frames := r.Feed([]byte("data: a\n\n\n\ndata: b\n\n"))
	want := []string{"data: a", "data: b"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("got %v, want %v", frames, want)
	}
}

func TestReassemblerPartialFrameHeldBack(t *testing.T) {
	r := NewReassembler()
	frames := r.Feed([]byte("data: a\n\ndata: par"))
	if !reflect.DeepEqual(frames, []string{"data: a"}) {
		t.Fatalf("got %v", frames)
	}
	frames = r.Feed([]byte("tial\n\n"))
	if !reflect.DeepEqual(frames, []string{"data: partial"}) {
		t.Fatalf("got %v", frames)
	}
}

// TestReassemblerChunkSizeInvariant is property P6: splitting the same byte
// stream at any set of chunk boundaries yields the same frame sequence.
func TestReassemblerChunkSizeInvariant(t *testing.T) {
	full := []byte("data: {\"a\":1}\n\n: heartbeat\n\ndata: {\"b\":2}\n\ndata: [DONE]\n\n")

	whole := NewReassembler()
	want := whole.Feed(full)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		r := NewReassembler()
		var got []string
		i := 0
		for i < len(full) {
			step := 1 + rng.Intn(5)
			end := i + step
			if end > len(full) {
				end = len(full)
			}
			got = append(got, r.Feed(full[i:end])...)
			i = end
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("trial %d: chunked result %v != whole result %v", trial, got, want)
		}
	}
}

package stream

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSSEEventEncoding(t *testing.T) {
	e := Encoder{Format: WireSSE, Schema: SchemaOpenAI}
	out, ok := e.Event(map[string]interface{}{"a": 1})
	if !ok {
		t.Fatal("expected ok")
	}
	if !strings.HasPrefix(string(out), "data: ") || !strings.HasSuffix(string(out), "\n\n") {
		t.Errorf("got %q", out)
	}
}

func TestNDJSONOpenAIEventIsAlwaysAnObject(t *testing.T) {
	e := Encoder{Format: WireNDJSON, Schema: SchemaOpenAI}
	out, ok := e.Event("bare string payload")
	if !ok {
		t.Fatal("expected ok")
	}
	var v map[string]interface{}
	if err := json.Unmarshal(out[:len(out)-1], &v); err != nil {
		t.Fatalf("line is not a JSON object: %v", err)
	}
	if v["value"] != "bare string payload" {
		t.Errorf("got %+v", v)
	}
}

func TestNDJSONOllamaSkipsEmptyText(t *testing.T) {
	e := Encoder{Format: WireNDJSON, Schema: SchemaOllama, Model: "llama"}
	_, ok := e.Event(map[string]interface{}{"choices": []interface{}{
		map[string]interface{}{"delta": map[string]interface{}{}},
	}})
	if ok {
		t.Error("expected no output for empty concatenated text")
	}
}

func TestNDJSONOllamaEventShape(t *testing.T) {
	e := Encoder{Format: WireNDJSON, Schema: SchemaOllama, Model: "llama"}
	out, ok := e.Event(map[string]interface{}{"choices": []interface{}{
		map[string]interface{}{"delta": map[string]interface{}{"content": "hi"}},
	}})
	if !ok {
		t.Fatal("expected ok")
	}
	var v map[string]interface{}
	if err := json.Unmarshal(out[:len(out)-1], &v); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if v["model"] != "llama" {
		t.Errorf("model = %v", v["model"])
	}
	msg, ok := v["message"].(map[string]interface{})
	if !ok || msg["content"] != "hi" {
		t.Errorf("message = %+v", v["message"])
	}
}

func TestDoneEncodingPerSchema(t *testing.T) {
	sse := Encoder{Format: WireSSE, Schema: SchemaOpenAI}
	if got := string(sse.Done()); got != "data: [DONE]\n\n" {
		t.Errorf("sse done = %q", got)
	}

	ndjsonOpenAI := Encoder{Format: WireNDJSON, Schema: SchemaOpenAI}
	var v map[string]interface{}
	if err := json.Unmarshal(ndjsonOpenAI.Done()[:len(ndjsonOpenAI.Done())-1], &v); err != nil || v["done"] != true {
		t.Errorf("ndjson openai done = %v, err=%v", v, err)
	}

	ndjsonOllama := Encoder{Format: WireNDJSON, Schema: SchemaOllama, Model: "m"}
	out := ndjsonOllama.Done()
	var o map[string]interface{}
	if err := json.Unmarshal(out[:len(out)-1], &o); err != nil || o["done"] != true || o["model"] != "m" {
		t.Errorf("ndjson ollama done = %v, err=%v", o, err)
	}
}

func TestDegradedEncoding(t *testing.T) {
	frame := Frame{Raw: "data: not json", Payload: "not json", HasData: true, Kind: KindUnparsed}

	sse := Encoder{Format: WireSSE, Schema: SchemaOpenAI}
	out, ok := sse.Degraded(frame)
	if !ok || string(out) != "data: data: not json\n\n" {
		t.Errorf("sse degraded = %q", out)
	}

	ndjsonOllama := Encoder{Format: WireNDJSON, Schema: SchemaOllama}
	_, ok = ndjsonOllama.Degraded(frame)
	if ok {
		t.Error("ndjson-ollama should drop degraded frames")
	}

	ndjsonOpenAI := Encoder{Format: WireNDJSON, Schema: SchemaOpenAI}
	out, ok = ndjsonOpenAI.Degraded(frame)
	if !ok {
		t.Fatal("expected ok")
	}
	var v map[string]interface{}
	if err := json.Unmarshal(out[:len(out)-1], &v); err != nil || v["value"] != "not json" {
		t.Errorf("got %v err=%v", v, err)
	}
}

func TestNoDataEncoding(t *testing.T) {
	frame := Frame{Raw: ": heartbeat", Kind: KindNoData}

	sse := Encoder{Format: WireSSE, Schema: SchemaOpenAI}
	out, ok := sse.NoData(frame)
	if !ok || string(out) != "data: : heartbeat\n\n" {
		t.Errorf("sse nodata = %q", out)
	}

	ndjsonOllama := Encoder{Format: WireNDJSON, Schema: SchemaOllama}
	_, ok = ndjsonOllama.NoData(frame)
	if ok {
		t.Error("ndjson-ollama should drop comment frames")
	}

	ndjsonOpenAI := Encoder{Format: WireNDJSON, Schema: SchemaOpenAI}
	out, ok = ndjsonOpenAI.NoData(frame)
	if !ok {
		t.Fatal("expected ok")
	}
	var v map[string]interface{}
	if err := json.Unmarshal(out[:len(out)-1], &v); err != nil || v["type"] != "heartbeat" {
		t.Errorf("got %v err=%v", v, err)
	}
}

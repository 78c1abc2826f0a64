package output

import (
	"encoding/json"
	"strings"
	"testing"
)

type row struct {
	Alias    string
	Endpoint string
}

func TestTableFormatter_Slice(t *testing.T) {
	out := NewFormatter("table").Format([]row{{"inbox", "alz2h"}, {"outbox", "bq9xk"}})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 rows, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "ALIAS") || !strings.Contains(lines[2], "bq9xk") {
		t.Fatalf("unexpected table %q", out)
	}
}

func TestTableFormatter_EmptyAndStruct(t *testing.T) {
	if out := NewFormatter("").Format([]row{}); out != "No resources found.\n" {
		t.Fatalf("unexpected empty output %q", out)
	}
	out := NewFormatter("table").Format(&row{Alias: "inbox", Endpoint: "alz2h"})
	if !strings.Contains(out, "Alias:") || !strings.Contains(out, "alz2h") {
		t.Fatalf("unexpected struct output %q", out)
	}
}

func TestRawJSON(t *testing.T) {
	raw := json.RawMessage(`[{"hello":"world"}]`)
	if out := NewFormatter("table").Format(raw); out != `[{"hello":"world"}]`+"\n" {
		t.Fatalf("table: %q", out)
	}
	if out := NewFormatter("yaml").Format(raw); out != "- hello: world\n" {
		t.Fatalf("yaml: %q", out)
	}
	if out := NewFormatter("JSON").Format(raw); !strings.Contains(out, `"hello": "world"`) {
		t.Fatalf("json: %q", out)
	}
}

func TestJSONFormatter_KeepsURLsReadable(t *testing.T) {
	out := NewFormatter("json").Format(map[string]string{"url": "https://relay.example/private/k?a=1&b=2"})
	want := "{\n  \"url\": \"https://relay.example/private/k?a=1&b=2\"\n}\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestTableFormatter_PointerRows(t *testing.T) {
	out := NewFormatter("table").Format([]*row{{"inbox", "alz2h"}})
	if !strings.Contains(out, "ENDPOINT") || !strings.Contains(out, "inbox") {
		t.Fatalf("unexpected table %q", out)
	}
}

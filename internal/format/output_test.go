package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	ID       string   `json:"id"`
	ActiveMs int64    `json:"activeMs"`
	Note     *string  `json:"note,omitempty"`
	Apps     []string `json:"apps"`
}

func TestWrite_YAMLUsesJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	v := sample{ID: "session-1", ActiveMs: 1500000, Apps: []string{"com.editor"}}
	if err := Write(&buf, v, "yaml", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"id: session-1", "activeMs: 1500000", "- com.editor"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output; got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "note") {
		t.Fatalf("expected omitted note; got:\n%s", out)
	}
}

func TestWrite_JSONPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{ID: "x"}, "json", true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"id\": \"x\"") {
		t.Fatalf("expected indented json; got %q", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "edn", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

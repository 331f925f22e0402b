package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tricorn/tricorn/go/models/trace"
)

func TestStreamUI(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamUI(&buf, false)
	s.Header(&trace.TraceHeader{Version: 1, Terminals: 3, Shell: "shell\x00\x00"})
	s.Feed(&trace.Event{Kind: uint8(trace.Spawn), PID: 1, Name: "shell"})
	s.Feed(&trace.Event{Kind: uint8(trace.Exception), PID: 2, Vector: 0, Session: 1, Name: "Division Error"})
	s.Session = 0
	s.Feed(&trace.Event{Kind: uint8(trace.Exit), PID: 3, Session: 2})
	s.Summary()
	out := buf.String()
	for _, want := range []string{`shell "shell"`, `spawn "shell"`, "exception 0 Division Error", "spawn      1", "exception  1"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "exit") {
		t.Errorf("filtered session leaked:\n%s", out)
	}
}

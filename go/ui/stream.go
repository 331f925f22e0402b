package ui

import (
	"fmt"
	"io"
	"sort"

	"github.com/mgutz/ansi"

	"github.com/tricorn/tricorn/go/models/trace"
)

var kindColors = map[trace.Kind]string{
	trace.Spawn:     "green",
	trace.Exit:      "cyan",
	trace.Exception: "red+b",
	trace.Fail:      "red",
	trace.Suspend:   "black+h",
	trace.Resume:    "black+h",
}

// StreamUI prints trace events as they arrive.
type StreamUI struct {
	out   io.Writer
	color bool
	// session filter, -1 shows all
	Session int
	counts  map[trace.Kind]int
}

func NewStreamUI(out io.Writer, color bool) *StreamUI {
	return &StreamUI{out: out, color: color, Session: -1, counts: make(map[trace.Kind]int)}
}

func (s *StreamUI) Header(h *trace.TraceHeader) {
	s.Printf("[trace v%d, %d terminals, shell %q]\n", h.Version, h.Terminals, trimName(h.Shell))
}

func (s *StreamUI) Feed(e *trace.Event) {
	if s.Session >= 0 && int(e.Session) != s.Session {
		return
	}
	kind := trace.Kind(e.Kind)
	s.counts[kind]++
	line := e.String()
	if color, ok := kindColors[kind]; ok && s.color {
		line = ansi.Color(line, color)
	}
	s.Println(line)
}

// Summary prints how many events of each kind were fed.
func (s *StreamUI) Summary() {
	var kinds []int
	for k := range s.counts {
		kinds = append(kinds, int(k))
	}
	sort.Ints(kinds)
	s.Println("[summary]")
	for _, k := range kinds {
		s.Printf("  %-10s %d\n", trace.Kind(k), s.counts[trace.Kind(k)])
	}
}

func (s *StreamUI) Printf(f string, args ...interface{}) { fmt.Fprintf(s.out, f, args...) }
func (s *StreamUI) Println(args ...interface{})          { fmt.Fprintln(s.out, args...) }

func trimName(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return s[:i]
		}
	}
	return s
}

package models

import (
	"bytes"
	"flag"
	"strings"
	"testing"
)

func TestPrintFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("terminals", 3, "number of terminal sessions")
	fs.Bool("rtc", false, strings.Repeat("word ", 30))
	var flags []*flag.Flag
	fs.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })
	var buf bytes.Buffer
	PrintFlags(&buf, flags)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected wrapped usage, got:\n%s", buf.String())
	}
	for _, line := range lines {
		if len(line) > 80 {
			t.Errorf("line too wide (%d): %q", len(line), line)
		}
	}
	if !strings.Contains(buf.String(), "-terminals (3)") {
		t.Errorf("missing default:\n%s", buf.String())
	}
}

package models

import (
	"strings"
	"testing"

	"github.com/tricorn/tricorn/go/models/cpu"
)

func TestStatusDiff(t *testing.T) {
	var s StatusDiff
	var ctx cpu.Context
	ctx[cpu.EAX] = 0x1234
	if n := s.Changes(ctx, false).Count(); n != 0 {
		t.Fatalf("first dump reported %d changes", n)
	}
	ctx[cpu.EAX] = 0x1299
	ctx[cpu.ESP] = 0x7ffc
	cs := s.Changes(ctx, true)
	if len(cs) != 2 || cs[0].Name != "eax" || cs[1].Name != "esp" {
		t.Fatalf("changes: %v", cs)
	}
	masks := cs[0].Mask()
	if len(masks) != 2 || masks[0].New != "000012" || masks[0].Changed || masks[1].New != "99" || !masks[1].Changed {
		t.Errorf("masks: %+v", masks)
	}
	if out := cs.String(false); !strings.Contains(out, "+   eax 00001299") {
		t.Errorf("plain dump: %q", out)
	}
}

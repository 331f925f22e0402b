package models

import (
	"fmt"
	"strings"

	"github.com/mgutz/ansi"

	"github.com/tricorn/tricorn/go/models/cpu"
)

// StatusDiff remembers the register file between dumps so each dump can
// highlight what changed.
type StatusDiff struct {
	old *cpu.Context
}

var chSame = ansi.ColorCode("default:default")
var chNew = ansi.ColorCode("default+bu:default")

func colorPad(s, color string, pad int) string {
	length := len(s)
	s = color + s + ansi.Reset
	if length < pad {
		s = strings.Repeat(" ", pad-length) + s
	}
	return s
}

type ChangeMask struct {
	Old, New string
	Changed  bool
}

type Change struct {
	Old, New uint32
	Enum     int
	Name     string
}

func (c *Change) Changed() bool {
	return c.Old != c.New
}

// Mask splits the hex digits of the new value into runs that match or
// differ from the old value.
func (c *Change) Mask() []ChangeMask {
	s1, s2 := fmt.Sprintf("%08x", c.New), fmt.Sprintf("%08x", c.Old)
	var masks []ChangeMask
	pos := 0
	for i := 1; i <= len(s1); i++ {
		if i == len(s1) || (s1[i] == s2[i]) != (s1[pos] == s2[pos]) {
			masks = append(masks, ChangeMask{New: s1[pos:i], Old: s2[pos:i], Changed: s1[pos] != s2[pos]})
			pos = i
		}
	}
	return masks
}

func (c *Change) String(color bool) string {
	if !c.Changed() {
		return fmt.Sprintf(" %6s %08x", c.Name, c.New)
	}
	if !color {
		return fmt.Sprintf("+%6s %08x", c.Name, c.New)
	}
	var out []string
	out = append(out, " "+colorPad(c.Name, chNew, 6)+" ")
	for _, mask := range c.Mask() {
		col := chSame
		if mask.Changed {
			col = chNew
		}
		out = append(out, col+mask.New)
	}
	out = append(out, ansi.Reset)
	return strings.Join(out, "")
}

type Changes []*Change

// String lays the registers out four to a row.
func (cs Changes) String(color bool) string {
	var out []string
	for i := 0; i < len(cs); i += 4 {
		var row []string
		for j := i; j < i+4 && j < len(cs); j++ {
			row = append(row, cs[j].String(color))
		}
		out = append(out, strings.Join(row, " "))
	}
	return strings.Join(out, "\n") + "\n"
}

func (cs Changes) Count() int {
	n := 0
	for _, c := range cs {
		if c.Changed() {
			n++
		}
	}
	return n
}

// Changes compares ctx against the previous call. The first call reports
// nothing as changed.
func (s *StatusDiff) Changes(ctx cpu.Context, onlyChanged bool) Changes {
	old := ctx
	if s.old != nil {
		old = *s.old
	}
	var cs Changes
	for enum, val := range ctx {
		c := &Change{Old: old[enum], New: val, Enum: enum, Name: cpu.RegNames[enum]}
		if !onlyChanged || c.Changed() {
			cs = append(cs, c)
		}
	}
	s.old = &ctx
	return cs
}

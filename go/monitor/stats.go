package monitor

import (
	"github.com/tricorn/tricorn/go/kernel"
	"github.com/tricorn/tricorn/go/models/cpu"
)

const maxFaults = 32

type fault struct {
	Addr, Code uint32
}

// Stats counts interrupt deliveries per vector and remembers recent page
// faults through the CPU hooks. It is only read and written under the
// kernel's CPU lock.
type Stats struct {
	k      *kernel.Kernel
	counts [256]uint64
	faults []fault
	hooks  []cpu.Hook
}

// NewStats attaches to k's CPU hooks.
func NewStats(k *kernel.Kernel) (*Stats, error) {
	s := &Stats{k: k}
	var err error
	k.Inspect(func() {
		var hh cpu.Hook
		if hh, err = k.CPU.Hooks.HookAdd(cpu.HOOK_INTR, s.intr); err != nil {
			return
		}
		s.hooks = append(s.hooks, hh)
		if hh, err = k.CPU.Hooks.HookAdd(cpu.HOOK_MEM_ERR, s.fault); err != nil {
			return
		}
		s.hooks = append(s.hooks, hh)
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stats) intr(_ *cpu.CPU, vector uint8) {
	s.counts[vector]++
}

func (s *Stats) fault(_ *cpu.CPU, addr, code uint32) {
	s.faults = append(s.faults, fault{addr, code})
	if len(s.faults) > maxFaults {
		s.faults = s.faults[len(s.faults)-maxFaults:]
	}
}

// Close removes the hooks.
func (s *Stats) Close() {
	s.k.Inspect(func() {
		for _, hh := range s.hooks {
			s.k.CPU.Hooks.HookDel(hh)
		}
		s.hooks = nil
	})
}

var IrqsCmd = cmd(&Command{
	Name: "irqs",
	Desc: "Show interrupt counts per vector and recent page faults.",
	Run: func(c *Context) error {
		if c.Stats == nil {
			c.Printf("no interrupt stats attached\n")
			return nil
		}
		type row struct {
			vector uint8
			name   string
			count  uint64
		}
		var rows []row
		var faults []fault
		c.K.Inspect(func() {
			for v, n := range c.Stats.counts {
				if n > 0 {
					rows = append(rows, row{uint8(v), c.K.IVT.Gate(uint8(v)).Name, n})
				}
			}
			faults = append(faults, c.Stats.faults...)
		})
		for _, r := range rows {
			c.Printf("  %#04x %-26s %d\n", r.vector, r.name, r.count)
		}
		for _, f := range faults {
			c.Printf("  fault at 0x%08x code %#x\n", f.Addr, f.Code)
		}
		return nil
	},
})

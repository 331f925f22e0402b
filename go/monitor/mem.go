package monitor

import (
	"github.com/tricorn/tricorn/go/models"
	"github.com/tricorn/tricorn/go/models/cpu"
)

var MapsCmd = cmd(&Command{
	Name: "maps",
	Desc: "Display the active page mappings.",
	Run: func(c *Context) error {
		c.K.Inspect(func() {
			c.Printf("  process %d, display %v\n", c.K.MMU.Process(), c.K.MMU.Display())
			for _, m := range c.K.MMU.Mappings() {
				c.Printf("  %v\n", m.String())
			}
		})
		return nil
	},
})

var MemCmd = cmd(&Command{
	Name: "mem",
	Desc: "Dump memory through the active mapping: mem <addr> [size].",
	Run: func(c *Context, addr string, args ...string) error {
		base, err := parseNum(addr)
		if err != nil {
			return err
		}
		size := uint32(64)
		if len(args) > 0 {
			if size, err = parseNum(args[0]); err != nil {
				return err
			}
		}
		mem := make([]byte, size)
		c.K.Inspect(func() { err = c.K.MMU.Read(base, mem, false) })
		if err != nil {
			return err
		}
		for _, line := range models.HexDump(base, mem) {
			c.Printf("  %s\n", line)
		}
		return nil
	},
})

var RegsCmd = cmd(&Command{
	Name: "regs",
	Desc: "Show registers, highlighting changes since the last call.",
	Run: func(c *Context) error {
		var ctx cpu.Context
		var tss cpu.TSS
		var cr2 uint32
		c.K.Inspect(func() {
			ctx = c.K.CPU.ContextSave()
			tss = c.K.CPU.TSS
			cr2 = c.K.CPU.CR2
		})
		c.Printf("%s", c.regs.Changes(ctx, false).String(c.K.Config.Color))
		c.Printf("  esp0 %08x    cr2 %08x\n", tss.ESP0, cr2)
		return nil
	},
})

var PicCmd = cmd(&Command{
	Name: "pic",
	Desc: "Show the interrupt controller registers.",
	Run: func(c *Context) error {
		irr, isr, imr := c.K.PIC.State()
		c.Printf("  irr %04x isr %04x imr %04x\n", irr, isr, imr)
		return nil
	},
})

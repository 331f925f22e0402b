package cpu

// TSS holds the only task-state fields the kernel uses: the privileged stack
// loaded on a user to kernel transition.
type TSS struct {
	ESP0 uint32
	SS0  uint16
}

// CPU is the architectural state of the single simulated processor. It is
// only touched by the goroutine that currently owns the machine.
type CPU struct {
	Regs
	TSS TSS
	// faulting linear address of the last page fault
	CR2   uint32
	Hooks *Hooks
}

func New() *CPU {
	c := &CPU{Hooks: &Hooks{}}
	c.Set(CS, KernelCS)
	c.Set(DS, KernelDS)
	c.Set(ES, KernelDS)
	c.Set(SS, KernelDS)
	c.Set(EFLAGS, FlagReserved)
	c.TSS.SS0 = KernelDS
	return c
}

// CPL is the current privilege level, taken from the code selector.
func (c *CPU) CPL() int {
	return int(c.Get(CS) & 3)
}

func (c *CPU) IF() bool {
	return c.Get(EFLAGS)&FlagIF != 0
}

func (c *CPU) Cli() {
	c.Set(EFLAGS, c.Get(EFLAGS)&^FlagIF)
}

func (c *CPU) Sti() {
	c.Set(EFLAGS, c.Get(EFLAGS)|FlagIF)
}

// Guard is an interrupts-disabled critical section.
type Guard struct {
	c       *CPU
	enabled bool
	done    bool
}

// Guard disables interrupts until Release, which restores the previous flag.
func (c *CPU) Guard() *Guard {
	g := &Guard{c: c, enabled: c.IF()}
	c.Cli()
	return g
}

func (g *Guard) Release() {
	if g.done {
		return
	}
	g.done = true
	if g.enabled {
		g.c.Sti()
	}
}

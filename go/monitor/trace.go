package monitor

var EventsCmd = cmd(&Command{
	Name: "trace",
	Desc: "Show recent kernel events (default 20).",
	Run: func(c *Context, args ...string) error {
		n := uint32(20)
		if len(args) > 0 {
			var err error
			if n, err = parseNum(args[0]); err != nil {
				return err
			}
		}
		if c.Log == nil {
			c.Printf("no event log attached\n")
			return nil
		}
		for _, e := range c.Log.Tail(int(n)) {
			c.Printf("  %s\n", e.String())
		}
		return nil
	},
})

var SyscallsCmd = cmd(&Command{
	Name: "syscalls",
	Desc: "List the system call table.",
	Run: func(c *Context) error {
		for _, sys := range c.K.Syscalls().List() {
			c.Printf("  %2d %s\n", sys.Num, sys.Name)
		}
		return nil
	},
})

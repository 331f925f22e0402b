package monitor

import (
	"strconv"
	"strings"

	"github.com/mgutz/ansi"
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/device"
)

var PsCmd = cmd(&Command{
	Name: "ps",
	Desc: "List processes.",
	Run: func(c *Context) error {
		var lines []string
		c.K.Inspect(func() {
			var cur int
			if pcb := c.K.Current(); pcb != nil {
				cur = pcb.ID
			}
			for _, pcb := range c.K.Processes() {
				line := pcb.String()
				if pcb.ID == cur {
					line = "* " + line
					if c.K.Config.Color {
						line = ansi.Color(line, "green+b")
					}
				} else {
					line = "  " + line
				}
				lines = append(lines, line)
			}
			for term, s := range c.K.Sessions() {
				lines = append(lines, "  term "+strconv.Itoa(term)+": pid "+strconv.Itoa(s.PID))
			}
		})
		for _, line := range lines {
			c.Printf("%s\n", line)
		}
		return nil
	},
})

var TermCmd = cmd(&Command{
	Name: "term",
	Desc: "Show a terminal's screen (default: foreground).",
	Run: func(c *Context, args ...string) error {
		var rows []string
		var err error
		c.K.Inspect(func() {
			term := c.K.Console.Foreground()
			if len(args) > 0 {
				if term, err = strconv.Atoi(args[0]); err != nil {
					return
				}
			}
			rows, err = c.K.Console.Screen(term)
		})
		if err != nil {
			return err
		}
		for _, row := range rows {
			c.Printf("|%s|\n", row)
		}
		return nil
	},
})

var KeysCmd = cmd(&Command{
	Name: "keys",
	Desc: "Type text on the keyboard. Go escapes like \\n are expanded.",
	Run: func(c *Context, args ...string) error {
		text, err := strconv.Unquote(`"` + strings.Join(args, " ") + `"`)
		if err != nil {
			return errors.Wrap(err, "keys")
		}
		c.K.Keyboard.Type(text)
		return nil
	},
})

var AltCmd = cmd(&Command{
	Name: "alt",
	Desc: "Press Alt+F<n> to switch terminals.",
	Run: func(c *Context, n string) error {
		fn, err := strconv.Atoi(n)
		if err != nil || fn < 1 || fn > 12 {
			return errors.Errorf("bad function key %q", n)
		}
		c.K.Keyboard.Push(device.AltFn(fn)...)
		return nil
	},
})

var TickCmd = cmd(&Command{
	Name: "tick",
	Desc: "Raise timer interrupts (default 1).",
	Run: func(c *Context, args ...string) error {
		n := uint32(1)
		if len(args) > 0 {
			var err error
			if n, err = parseNum(args[0]); err != nil {
				return err
			}
		}
		for i := uint32(0); i < n; i++ {
			c.K.PIT.Tick()
		}
		c.Printf("pit at %.2f Hz, %d ticks, host ticker %s\n", c.K.PIT.Hz(), c.K.PIT.Ticks(), onOff(c.K.PIT.Running()))
		return nil
	},
})

var SchedCmd = cmd(&Command{
	Name: "sched",
	Desc: "Show or set timer scheduling (on|off).",
	Run: func(c *Context, args ...string) error {
		var on bool
		var err error
		c.K.Inspect(func() {
			if len(args) > 0 {
				switch args[0] {
				case "on":
					c.K.Config.Sched = true
				case "off":
					c.K.Config.Sched = false
				default:
					err = errors.Errorf("sched: want on or off, got %q", args[0])
				}
			}
			on = c.K.Config.Sched
		})
		if err != nil {
			return err
		}
		c.Printf("scheduler %s\n", onOff(on))
		return nil
	},
})

package monitor

import (
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"

	"github.com/tricorn/tricorn/go/fs"
)

var LsCmd = cmd(&Command{
	Name: "ls",
	Desc: "List the file system.",
	Run: func(c *Context) error {
		var ents []fs.Dentry
		for i := 0; i < c.K.FS.Count(); i++ {
			d, err := c.K.FS.ResolveByIndex(i)
			if err != nil {
				return err
			}
			ents = append(ents, d)
		}
		sort.Slice(ents, func(i, j int) bool { return sortorder.NaturalLess(ents[i].Name, ents[j].Name) })
		for _, d := range ents {
			var size uint32
			if d.Type == fs.TypeRegular {
				size, _ = c.K.FS.Len(d.Inode)
			}
			c.Printf("  %-32s %-4s %6d\n", d.Name, d.Type, size)
		}
		return nil
	},
})

var RtcCmd = cmd(&Command{
	Name: "rtc",
	Desc: "Show the real-time clock rate and interrupt count.",
	Run: func(c *Context) error {
		var ticks uint64
		c.K.Inspect(func() { ticks = c.K.RTCDriver().Ticks() })
		c.Printf("  rate %d Hz (code %#x), %d interrupts, host ticker %s\n", c.K.RTC.Hz(), c.K.RTC.Code(), ticks, onOff(c.K.RTC.Running()))
		return nil
	},
})

package driver

import (
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/device"
	"github.com/tricorn/tricorn/go/mmu"
)

const (
	LineLen = 128

	keyMin = 4
	keyMax = 127
)

// Term is one interactive session's line discipline and screen state.
type Term struct {
	ID       int
	line     [LineLen]byte
	pos      int
	complete bool
	Cursor   Cursor
}

// Line is the pending input and whether it was completed by a newline.
func (t *Term) Line() (string, bool) {
	return string(t.line[:t.pos]), t.complete
}

// advance edits the line with one keystroke and reports whether to echo it.
func (t *Term) advance(ch byte) bool {
	if t.complete {
		t.pos, t.complete = 0, false
	}
	if ch == '\b' {
		if t.pos == 0 {
			return false
		}
		t.pos--
		return true
	}
	echo := true
	if t.pos < LineLen {
		t.line[t.pos] = ch
		t.pos++
	} else if ch != '\n' {
		echo = false
	}
	if ch == '\n' {
		t.complete = true
	}
	return echo
}

// Console owns the terminals, which one is on screen (foreground) and which
// one's process is running (active).
type Console struct {
	Terms      []*Term
	video      Video
	screen     screen
	wait       Waiter
	foreground int
	active     int
}

func NewConsole(n int, video Video, wait Waiter) (*Console, error) {
	if n < 1 || n > mmu.MaxOffscreen {
		return nil, errors.Errorf("unsupported terminal count %d", n)
	}
	c := &Console{video: video, screen: screen{video}, wait: wait}
	for i := 0; i < n; i++ {
		t := &Term{ID: i}
		c.Terms = append(c.Terms, t)
		if err := video.Write(mmu.Offscreen(i).Addr(), blank(Cols*Rows), false); err != nil {
			return nil, err
		}
	}
	video.ActivateDisplayBuffer(mmu.Live)
	if err := c.screen.clear(&c.Terms[0].Cursor); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Console) Foreground() int { return c.foreground }
func (c *Console) Active() int     { return c.active }

// Display is the page that backs the video address while term runs.
func (c *Console) Display(term int) mmu.Display {
	if term == c.foreground {
		return mmu.Live
	}
	return mmu.Offscreen(term)
}

func (c *Console) mapActive() {
	c.video.ActivateDisplayBuffer(c.Display(c.active))
}

// SetActive makes term the running session and maps its display.
func (c *Console) SetActive(term int) {
	c.active = term
	c.mapActive()
}

// SwitchForeground saves the visible screen into the old terminal's page and
// shows term's page instead.
func (c *Console) SwitchForeground(term int) error {
	if term == c.foreground || term < 0 || term >= len(c.Terms) {
		return nil
	}
	c.video.ActivateDisplayBuffer(mmu.Live)
	defer c.mapActive()
	if err := c.screen.copyPage(mmu.Offscreen(c.foreground).Addr(), mmu.VideoAddr); err != nil {
		return err
	}
	c.foreground = term
	return c.screen.copyPage(mmu.VideoAddr, mmu.Offscreen(term).Addr())
}

// HandleKey applies a decoded keystroke to the foreground terminal. It
// returns the terminal selected with Alt+Fn, or -1.
func (c *Console) HandleKey(k device.Key) (int, error) {
	fg := c.Terms[c.foreground]
	switch {
	case k.Ctrl:
		if k.Byte == 'l' || k.Byte == 'L' {
			c.video.ActivateDisplayBuffer(mmu.Live)
			defer c.mapActive()
			if err := c.screen.clear(&fg.Cursor); err != nil {
				return -1, err
			}
			for _, ch := range fg.line[:fg.pos] {
				if err := c.screen.putc(&fg.Cursor, ch); err != nil {
					return -1, err
				}
			}
		}
		return -1, nil
	case k.Alt:
		target := int(k.Byte) - device.KeyFn
		if k.Byte >= device.KeyFn && target < len(c.Terms) {
			return target, c.SwitchForeground(target)
		}
		return -1, nil
	}
	if k.Byte >= keyMin && k.Byte <= keyMax || k.Byte == '\b' {
		c.video.ActivateDisplayBuffer(mmu.Live)
		defer c.mapActive()
		if fg.advance(k.Byte) {
			return -1, c.screen.putc(&fg.Cursor, k.Byte)
		}
	}
	return -1, nil
}

// Print writes to the active terminal through the current mapping.
func (c *Console) Print(s string) {
	t := c.Terms[c.active]
	for i := 0; i < len(s); i++ {
		c.screen.putc(&t.Cursor, s[i])
	}
}

// Screen returns the text currently shown for term.
func (c *Console) Screen(term int) ([]string, error) {
	page := make([]byte, ScreenSize)
	addr := mmu.Offscreen(term).Addr()
	if term == c.foreground {
		c.video.ActivateDisplayBuffer(mmu.Live)
		defer c.mapActive()
		addr = mmu.VideoAddr
	}
	if err := c.video.Read(addr, page, false); err != nil {
		return nil, err
	}
	return Text(page), nil
}

// TermDriver is the terminal backend of descriptors 0 and 1.
type TermDriver struct {
	Console *Console
}

func (d *TermDriver) Open(name string) error {
	return nil
}

// Read waits for the active terminal to complete a line, then hands it out.
func (d *TermDriver) Read(_ uint32, buf []byte, _ uint32) (int, error) {
	t := d.Console.Terms[d.Console.active]
	d.Console.wait.Wait(func() bool { return t.complete })
	n := copy(buf, t.line[:t.pos])
	t.pos, t.complete = 0, false
	return n, nil
}

// Write prints up to the first NUL.
func (d *TermDriver) Write(_ uint32, buf []byte) (int, error) {
	t := d.Console.Terms[d.Console.active]
	for i, ch := range buf {
		if ch == 0 {
			return i, nil
		}
		if err := d.Console.screen.putc(&t.Cursor, ch); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

func (d *TermDriver) Close(uint32) error {
	return nil
}

package driver

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/tricorn/tricorn/go/device"
	"github.com/tricorn/tricorn/go/fs"
	"github.com/tricorn/tricorn/go/mmu"
	"github.com/tricorn/tricorn/go/models/cpu"
)

// stepWaiter runs step before each check of the wait condition.
type stepWaiter struct {
	t    *testing.T
	step func()
}

func (w *stepWaiter) Wait(cond func() bool) {
	for i := 0; !cond(); i++ {
		if i > 10 || w.step == nil {
			w.t.Fatal("wait condition never satisfied")
		}
		w.step()
	}
}

type nopLine struct{}

func (nopLine) Raise(int) {}

func newConsole(t *testing.T, n int) (*Console, *stepWaiter) {
	m, err := mmu.New(cpu.NewPhys(), 1)
	if err != nil {
		t.Fatal(err)
	}
	w := &stepWaiter{t: t}
	c, err := NewConsole(n, m, w)
	if err != nil {
		t.Fatal(err)
	}
	return c, w
}

func typeKeys(t *testing.T, c *Console, s string) {
	for i := 0; i < len(s); i++ {
		if _, err := c.HandleKey(device.Key{Byte: s[i]}); err != nil {
			t.Fatal(err)
		}
	}
}

func row(t *testing.T, c *Console, term, y int) string {
	rows, err := c.Screen(term)
	if err != nil {
		t.Fatal(err)
	}
	return rows[y]
}

func TestLineEditing(t *testing.T) {
	c, _ := newConsole(t, 3)
	typeKeys(t, c, "ab\bc")
	if line, done := c.Terms[0].Line(); line != "ac" || done {
		t.Fatalf("line %q complete=%v", line, done)
	}
	typeKeys(t, c, "\n")
	if line, done := c.Terms[0].Line(); line != "ac\n" || !done {
		t.Fatalf("line %q complete=%v", line, done)
	}
	if got := row(t, c, 0, 0); got != "ac" {
		t.Fatalf("echo %q", got)
	}
	// the next keystroke starts a fresh line
	typeKeys(t, c, "z")
	if line, _ := c.Terms[0].Line(); line != "z" {
		t.Fatalf("line after completion %q", line)
	}
}

func TestLineFull(t *testing.T) {
	c, _ := newConsole(t, 1)
	typeKeys(t, c, strings.Repeat("x", LineLen+5))
	line, _ := c.Terms[0].Line()
	if len(line) != LineLen {
		t.Fatalf("line length %d", len(line))
	}
	typeKeys(t, c, "\n")
	if _, done := c.Terms[0].Line(); !done {
		t.Fatal("newline not accepted on a full line")
	}
	if got := row(t, c, 0, 1); got != strings.Repeat("x", LineLen-Cols) {
		t.Fatalf("second row %q", got)
	}
}

func TestTerminalReadWrite(t *testing.T) {
	c, w := newConsole(t, 3)
	d := &TermDriver{Console: c}
	n, err := d.Write(0, []byte("hi\x00there"))
	if err != nil || n != 2 {
		t.Fatalf("write stopped at %d, %v", n, err)
	}
	w.step = func() { typeKeys(t, c, "cat frame0.txt\n") }
	buf := make([]byte, 3)
	n, _ = d.Read(0, buf, 0)
	if n != 3 || string(buf) != "cat" {
		t.Fatalf("short read %q", buf[:n])
	}
	if line, done := c.Terms[0].Line(); line != "" || done {
		t.Fatal("line not cleared after read")
	}
	w.step = func() { typeKeys(t, c, "ls\n") }
	buf = make([]byte, LineLen)
	n, _ = d.Read(0, buf, 0)
	if string(buf[:n]) != "ls\n" {
		t.Fatalf("read %q", buf[:n])
	}
}

func TestBackgroundWrite(t *testing.T) {
	c, _ := newConsole(t, 3)
	d := &TermDriver{Console: c}
	c.SetActive(1)
	d.Write(0, []byte("background"))
	if got := row(t, c, 1, 0); got != "background" {
		t.Fatalf("offscreen row %q", got)
	}
	if got := row(t, c, 0, 0); got != "" {
		t.Fatalf("live screen changed: %q", got)
	}
	c.SetActive(0)
	d.Write(0, []byte("front"))
	if got := row(t, c, 0, 0); got != "front" {
		t.Fatalf("live row %q", got)
	}
}

func TestSwitchForeground(t *testing.T) {
	c, _ := newConsole(t, 3)
	d := &TermDriver{Console: c}
	d.Write(0, []byte("zero"))
	c.SetActive(2)
	d.Write(0, []byte("two"))
	c.SetActive(0)

	target, err := c.HandleKey(device.Key{Byte: device.KeyFn + 2, Alt: true})
	if err != nil || target != 2 || c.Foreground() != 2 {
		t.Fatalf("switch to %d, fg %d, %v", target, c.Foreground(), err)
	}
	if got := row(t, c, 2, 0); got != "two" {
		t.Fatalf("terminal 2 shows %q", got)
	}
	if got := row(t, c, 0, 0); got != "zero" {
		t.Fatalf("terminal 0 saved %q", got)
	}
	// active terminal 0 is now in the background
	d.Write(0, []byte("!"))
	if got := row(t, c, 0, 0); got != "zero!" {
		t.Fatalf("background write %q", got)
	}
	if target, _ := c.HandleKey(device.Key{Byte: device.KeyFn + 2, Alt: true}); target != 2 {
		t.Fatal("repeat switch")
	}
}

func TestScrollAndClear(t *testing.T) {
	c, _ := newConsole(t, 1)
	d := &TermDriver{Console: c}
	for i := 0; i < Rows+1; i++ {
		d.Write(0, []byte(fmt.Sprintf("line%d\n", i)))
	}
	if got := row(t, c, 0, 0); got != "line2" {
		t.Fatalf("top row after scroll %q", got)
	}
	typeKeys(t, c, "pending")
	c.HandleKey(device.Key{Byte: 'l', Ctrl: true})
	if got := row(t, c, 0, 0); got != "pending" {
		t.Fatalf("ctrl+l redraw %q", got)
	}
	if c.Terms[0].Cursor != (Cursor{X: 7}) {
		t.Fatalf("cursor %+v", c.Terms[0].Cursor)
	}
}

func TestRTCDriver(t *testing.T) {
	dev := device.NewRTC(nopLine{})
	w := &stepWaiter{t: t}
	d := &RTCDriver{Dev: dev, Wait: w}
	w.step = d.Interrupt
	if err := d.Open("rtc"); err != nil {
		t.Fatal(err)
	}
	rate := func(hz int32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(hz))
		return b
	}
	if n, err := d.Write(0, rate(3)); n != -1 || err == nil {
		t.Fatal("non power of two accepted")
	}
	if n, _ := d.Write(0, rate(2048)); n != -1 {
		t.Fatal("2048Hz accepted")
	}
	if n, _ := d.Write(0, rate(64)[:2]); n != -1 {
		t.Fatal("short write accepted")
	}
	if n, err := d.Write(0, rate(64)); n != 4 || err != nil {
		t.Fatalf("write returned %d, %v", n, err)
	}
	if dev.Hz() != 64 {
		t.Fatalf("rate %d", dev.Hz())
	}
	if n, _ := d.Read(0, nil, 0); n != 0 || d.Ticks() != 1 {
		t.Fatal("read did not wait for one tick")
	}
	d.Open("rtc")
	if dev.Hz() != 2 {
		t.Fatal("open did not reset the rate")
	}
}

func testImage(t *testing.T) *fs.Image {
	b := fs.NewBuilder()
	b.AddFile("frame0.txt", []byte("fish"))
	b.AddFile("a_name_that_is_exactly_32_bytes_", nil)
	b.Add("rtc", fs.TypeRTC, nil)
	img, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestDirRecords(t *testing.T) {
	img := testImage(t)
	d := &DirDriver{FS: img}
	var names []string
	var off uint32
	buf := make([]byte, fs.NameLen)
	for {
		n, err := d.Read(0, buf, off)
		if err != nil {
			t.Fatal(err)
		}
		if n == 0 {
			break
		}
		off += uint32(n)
		names = append(names, string(bytes.TrimRight(buf[:n], "\x00")))
	}
	if len(names) != img.Count() || names[0] != "." {
		t.Fatalf("names %q", names)
	}
	// a small buffer gets the record in pieces
	small := make([]byte, 20)
	n, _ := d.Read(0, small, fs.NameLen)
	m, _ := d.Read(0, small, fs.NameLen+uint32(n))
	if n != 20 || m != fs.NameLen-20 {
		t.Fatalf("record split %d+%d", n, m)
	}
	if n, _ := d.Write(0, []byte("x")); n != -1 {
		t.Fatal("directory write succeeded")
	}
}

func TestFileRewrite(t *testing.T) {
	img := testImage(t)
	d := &FileDriver{FS: img}
	dent, _ := img.ResolveByName("frame0.txt")
	if n, err := d.Write(dent.Inode, []byte("ab")); n != 2 || err != nil {
		t.Fatalf("write %d %v", n, err)
	}
	buf := make([]byte, 10)
	n, _ := d.Read(dent.Inode, buf, 0)
	if string(buf[:n]) != "ab" {
		t.Fatalf("read back %q", buf[:n])
	}
	if n, _ := d.Read(dent.Inode, buf, 2); n != 0 {
		t.Fatal("read past end")
	}
}

func TestKindOf(t *testing.T) {
	var table Table
	table[File] = &FileDriver{}
	if KindOf(fs.TypeRTC) != RTC || KindOf(fs.TypeDir) != Dir || KindOf(fs.TypeRegular) != File {
		t.Fatal("type mapping")
	}
	if _, err := table.Get(Dir); err == nil {
		t.Fatal("missing driver returned")
	}
	if drv, err := table.Get(File); err != nil || drv == nil {
		t.Fatal("file driver missing")
	}
}

package driver

import (
	"github.com/tricorn/tricorn/go/mmu"
)

const (
	Cols   = 80
	Rows   = 25
	Attrib = 0x7
	// bytes in one text mode page
	ScreenSize = Cols * Rows * 2
)

// Video is the kernel's view of memory, used to draw through whichever page
// currently backs the video address.
type Video interface {
	Read(virt uint32, p []byte, user bool) error
	Write(virt uint32, p []byte, user bool) error
	ActivateDisplayBuffer(target mmu.Display)
}

type Cursor struct {
	X, Y int
}

func cell(x, y int) uint32 {
	return mmu.VideoAddr + uint32(y*Cols+x)*2
}

func blank(n int) []byte {
	p := make([]byte, n*2)
	for i := 0; i < len(p); i += 2 {
		p[i], p[i+1] = ' ', Attrib
	}
	return p
}

// screen draws text mode characters at a cursor through the video address.
type screen struct {
	v Video
}

func (s screen) scroll() error {
	buf := make([]byte, ScreenSize)
	if err := s.v.Read(mmu.VideoAddr, buf, false); err != nil {
		return err
	}
	copy(buf, buf[Cols*2:])
	copy(buf[(Rows-1)*Cols*2:], blank(Cols))
	return s.v.Write(mmu.VideoAddr, buf, false)
}

func (s screen) newline(c *Cursor) error {
	c.X = 0
	if c.Y++; c.Y >= Rows {
		c.Y = Rows - 1
		return s.scroll()
	}
	return nil
}

func (s screen) putc(c *Cursor, ch byte) error {
	switch ch {
	case '\n', '\r':
		return s.newline(c)
	case '\b':
		if c.X == 0 && c.Y == 0 {
			return nil
		}
		if c.X--; c.X < 0 {
			c.X, c.Y = Cols-1, c.Y-1
		}
		return s.v.Write(cell(c.X, c.Y), blank(1), false)
	}
	if err := s.v.Write(cell(c.X, c.Y), []byte{ch, Attrib}, false); err != nil {
		return err
	}
	if c.X++; c.X >= Cols {
		return s.newline(c)
	}
	return nil
}

func (s screen) clear(c *Cursor) error {
	*c = Cursor{}
	return s.v.Write(mmu.VideoAddr, blank(Cols*Rows), false)
}

// copyPage moves a whole screen between two kernel virtual pages.
func (s screen) copyPage(dst, src uint32) error {
	buf := make([]byte, ScreenSize)
	if err := s.v.Read(src, buf, false); err != nil {
		return err
	}
	return s.v.Write(dst, buf, false)
}

// Text returns the rows of a screen page with trailing spaces trimmed.
func Text(page []byte) []string {
	rows := make([]string, 0, Rows)
	for y := 0; y < Rows && (y+1)*Cols*2 <= len(page); y++ {
		row := make([]byte, 0, Cols)
		for x := 0; x < Cols; x++ {
			ch := page[(y*Cols+x)*2]
			if ch == 0 {
				ch = ' '
			}
			row = append(row, ch)
		}
		end := len(row)
		for end > 0 && row[end-1] == ' ' {
			end--
		}
		rows = append(rows, string(row[:end]))
	}
	return rows
}

package programs

import (
	"strconv"
	"strings"

	"github.com/tricorn/tricorn/go/user"
)

func Hello(p *user.Proc) int32 {
	p.Print("Hi, what's your name? ")
	name, n := p.ReadLine()
	if n < 0 {
		p.Print("Can't read name from keyboard.\n")
		return 3
	}
	p.Printf("Hello, %s\n", name)
	return 0
}

func Testprint(p *user.Proc) int32 {
	p.Print("Hello, if this sentence is printed out, the terminal works!\n")
	return 0
}

// Counter counts up to a number read from the keyboard, one step per clock tick.
func Counter(p *user.Proc) int32 {
	p.Print("Enter the Test Number: ")
	line, ret := p.ReadLine()
	if ret < 0 {
		return 3
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 0 {
		p.Print("Invalid number\n")
		return 1
	}
	clock := openClock(p, 32)
	if clock < 0 {
		p.Print("rtc open failed\n")
		return 2
	}
	defer p.Close(clock)
	for i := 1; i <= n; i++ {
		p.Printf("\r%d", i)
		sleep(p, clock)
	}
	p.Print("\n")
	return 0
}

// Pingpong bounces a ball across the screen at 32Hz.
func Pingpong(p *user.Proc) int32 {
	clock := openClock(p, 32)
	if clock < 0 {
		p.Print("rtc open failed\n")
		return 2
	}
	defer p.Close(clock)
	const width = 79
	pos, dir := 0, 1
	for i := countArg(p, 40); i > 0; i-- {
		p.Print(strings.Repeat(" ", pos) + "*\n")
		if pos+dir < 0 || pos+dir >= width {
			dir = -dir
		}
		pos += dir
		sleep(p, clock)
	}
	return 0
}

// Fish animates the two frame files straight into video memory.
func Fish(p *user.Proc) int32 {
	var frames [2][]byte
	for i, name := range []string{"frame0.txt", "frame1.txt"} {
		data, ok := readFile(p, name)
		if !ok {
			p.Printf("%s: read failed\n", name)
			return 2
		}
		frames[i] = data
	}
	video, ret := p.MapDisplayBuffer()
	if ret < 0 {
		p.Print("vidmap failed\n")
		return 2
	}
	clock := openClock(p, 8)
	if clock < 0 {
		p.Print("rtc open failed\n")
		return 2
	}
	defer p.Close(clock)
	for i := countArg(p, 20); i > 0; i-- {
		draw(p, video, frames[i%2])
		sleep(p, clock)
	}
	return 0
}

// draw writes text at the top left of an 80 column text page.
func draw(p *user.Proc, video uint32, text []byte) {
	for row, line := range strings.Split(string(text), "\n") {
		if row >= 25 {
			return
		}
		if len(line) > 80 {
			line = line[:80]
		}
		cells := make([]byte, 0, 160)
		for i := 0; i < 80; i++ {
			ch := byte(' ')
			if i < len(line) {
				ch = line[i]
			}
			cells = append(cells, ch, 7)
		}
		p.Store(video+uint32(row*160), cells)
	}
}

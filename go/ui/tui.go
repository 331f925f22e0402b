package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/lunixbochs/vtclean"
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/device"
	"github.com/tricorn/tricorn/go/kernel"
	"github.com/tricorn/tricorn/go/monitor"
)

const (
	screenCols = 80
	screenRows = 25
)

// Tui shows the foreground terminal, the kernel log and an input line.
type Tui struct {
	k      *kernel.Kernel
	g      *gocui.Gui
	mon    *monitor.Context
	mirror *Mirror
}

// tailWriter appends to a view from any goroutine.
type tailWriter struct {
	g    *gocui.Gui
	name string
	line string
}

func (t *tailWriter) Write(p []byte) (int, error) {
	data := string(p)
	t.g.Update(func(g *gocui.Gui) error {
		v, err := g.View(t.name)
		if err != nil {
			return nil
		}
		t.line += data
		for {
			i := strings.IndexByte(t.line, '\n')
			if i < 0 {
				break
			}
			fmt.Fprintln(v, vtclean.Clean(t.line[:i], false))
			t.line = t.line[i+1:]
		}
		return nil
	})
	return len(p), nil
}

func NewTui(k *kernel.Kernel, log *monitor.EventLog, stats *monitor.Stats) (*Tui, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, errors.Wrap(err, "gocui failed")
	}
	t := &Tui{k: k, g: g, mirror: NewMirror(k)}
	g.SetManagerFunc(t.layout)
	if err := t.layout(g); err != nil {
		g.Close()
		return nil, err
	}
	if err := t.bindKeys(); err != nil {
		g.Close()
		return nil, err
	}
	g.Cursor = true

	logw := &tailWriter{g: g, name: "log"}
	// hijack kernel output
	if k.Config.Output == os.Stderr {
		k.Config.Output = logw
	}
	t.mon = &monitor.Context{
		ReadWriter: &readWriter{os.Stdin, logw},
		K:          k,
		Log:        log,
		Stats:      stats,
	}
	return t, nil
}

func (t *Tui) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	split := screenRows + 2
	if split > maxY-3 {
		split = maxY - 3
	}
	if v, err := g.SetView("screen", 0, 0, maxX-1, split-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "terminal"
		v.Wrap = false
	}
	if v, err := g.SetView("log", 0, split, maxX-1, maxY-4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "log"
		v.Wrap = true
		v.Autoscroll = true
	}
	if v, err := g.SetView("input", 0, maxY-3, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "input (:cmd for the monitor, F1-F3 switch terminals)"
		v.Editable = true
		v.Wrap = false
		if _, err := g.SetCurrentView("input"); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tui) quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

func (t *Tui) enter(g *gocui.Gui, v *gocui.View) error {
	line := strings.TrimRight(v.Buffer(), "\n")
	v.Clear()
	v.SetCursor(0, 0)
	v.SetOrigin(0, 0)
	if strings.HasPrefix(line, ":") {
		cmd := strings.TrimSpace(line[1:])
		if cmd == "quit" || cmd == "q" {
			return gocui.ErrQuit
		}
		go monitor.Run(t.mon, cmd)
	} else {
		t.k.Keyboard.Type(line + "\n")
	}
	return nil
}

func (t *Tui) switchTerm(n int) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		t.k.Keyboard.Push(device.AltFn(n)...)
		return nil
	}
}

func (t *Tui) bindKeys() error {
	g := t.g
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, t.quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("input", gocui.KeyEnter, gocui.ModNone, t.enter); err != nil {
		return err
	}
	keys := []gocui.Key{gocui.KeyF1, gocui.KeyF2, gocui.KeyF3}
	for i, key := range keys {
		if err := g.SetKeybinding("", key, gocui.ModNone, t.switchTerm(i+1)); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tui) draw(screen []string, term int) {
	t.g.Update(func(g *gocui.Gui) error {
		v, err := g.View("screen")
		if err != nil {
			return nil
		}
		v.Clear()
		v.Title = fmt.Sprintf("terminal %d", term)
		for _, row := range screen {
			if len(row) > screenCols {
				row = row[:screenCols]
			}
			fmt.Fprintln(v, row)
		}
		return nil
	})
}

// Run blocks until the user quits.
func (t *Tui) Run() error {
	defer t.Close()
	t.mirror.Watch(30*time.Millisecond, func(screen, _ []string, term int) {
		t.draw(screen, term)
	})
	go func() {
		<-t.k.Done()
		fmt.Fprintf(t.mon, "kernel stopped: %v\n", t.k.Err())
	}()
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (t *Tui) Close() {
	t.mirror.Stop()
	t.g.Close()
}

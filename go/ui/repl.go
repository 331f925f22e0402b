package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/shibukawa/configdir"

	"github.com/tricorn/tricorn/go/kernel"
	"github.com/tricorn/tricorn/go/monitor"
)

// Repl feeds host lines to the foreground terminal as keystrokes. Lines
// starting with ':' go to the monitor instead.
type Repl struct {
	k      *kernel.Kernel
	mon    *monitor.Context
	rl     *readline.Instance
	mirror *Mirror
}

type readWriter struct {
	io.Reader
	io.Writer
}

func historyPath(name string) string {
	configDirs := configdir.New("tricorn", name)
	cacheDir := configDirs.QueryCacheFolder()
	if err := cacheDir.MkdirAll(); err == nil {
		return filepath.Join(cacheDir.Path, "history")
	}
	return ""
}

func NewRepl(k *kernel.Kernel, log *monitor.EventLog, stats *monitor.Stats) (*Repl, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "\n",
		UniqueEditLine:  false,
		HistoryFile:     historyPath("repl"),
	})
	if err != nil {
		return nil, err
	}
	// hijack kernel output so we can reprint the prompt
	if k.Config.Output == os.Stderr {
		k.Config.Output = rl.Stderr()
	}
	r := &Repl{
		k:      k,
		rl:     rl,
		mirror: NewMirror(k),
	}
	r.mon = &monitor.Context{
		ReadWriter: &readWriter{os.Stdin, rl.Stdout()},
		K:          k,
		Log:        log,
		Stats:      stats,
	}
	return r, nil
}

func (r *Repl) setPrompt() {
	var term int
	r.k.Inspect(func() { term = r.k.Console.Foreground() })
	r.rl.SetPrompt(fmt.Sprintf("[term%d] ", term))
}

// Run reads lines until EOF or ":quit".
func (r *Repl) Run() {
	defer r.Close()
	r.mirror.Watch(20*time.Millisecond, func(_, fresh []string, term int) {
		out := r.rl.Stdout()
		for _, row := range fresh {
			fmt.Fprintln(out, row)
		}
		r.setPrompt()
	})
	r.setPrompt()
	for {
		ln := r.rl.Line()
		if ln.Error == readline.ErrInterrupt {
			r.setPrompt()
			continue
		} else if ln.CanContinue() {
			continue
		} else if ln.CanBreak() {
			break
		}
		line := ln.Line
		if strings.HasPrefix(line, ":") {
			cmd := strings.TrimSpace(line[1:])
			if cmd == "quit" || cmd == "q" {
				break
			}
			monitor.Run(r.mon, cmd)
		} else {
			r.k.Keyboard.Type(line + "\n")
		}
		select {
		case <-r.k.Done():
			fmt.Fprintf(r.rl.Stderr(), "kernel stopped: %v\n", r.k.Err())
			return
		default:
		}
		r.setPrompt()
	}
}

func (r *Repl) Close() {
	r.mirror.Stop()
	r.rl.Close()
}

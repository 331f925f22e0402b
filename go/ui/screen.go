package ui

import (
	"strings"
	"sync"
	"time"

	"github.com/tricorn/tricorn/go/kernel"
)

// Mirror follows the foreground terminal and reports rows as they change.
type Mirror struct {
	k    *kernel.Kernel
	term int
	last []string

	stop chan struct{}
	once sync.Once
}

func NewMirror(k *kernel.Kernel) *Mirror {
	return &Mirror{k: k, term: -1, stop: make(chan struct{})}
}

// Poll snapshots the foreground screen. It returns the whole screen and the
// rows that are new since the previous call.
func (m *Mirror) Poll() (screen, fresh []string, term int) {
	var err error
	m.k.Inspect(func() {
		term = m.k.Console.Foreground()
		screen, err = m.k.Console.Screen(term)
	})
	if err != nil {
		return nil, nil, term
	}
	for i := range screen {
		screen[i] = strings.TrimRight(screen[i], " \x00")
	}
	if term != m.term {
		fresh = nonblank(screen)
	} else {
		fresh = changedRows(m.last, screen)
	}
	m.term, m.last = term, screen
	return screen, fresh, term
}

// Watch calls fn from a new goroutine whenever the foreground screen changes.
func (m *Mirror) Watch(every time.Duration, fn func(screen, fresh []string, term int)) {
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-m.k.Done():
				return
			case <-t.C:
				screen, fresh, term := m.Poll()
				if len(fresh) > 0 {
					fn(screen, fresh, term)
				}
			}
		}
	}()
}

func (m *Mirror) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func nonblank(rows []string) []string {
	end := len(rows)
	for end > 0 && rows[end-1] == "" {
		end--
	}
	return append([]string(nil), rows[:end]...)
}

// scrollOf finds how many rows cur has scrolled up relative to old: the
// shift under which the most nonblank rows line up.
func scrollOf(old, cur []string) int {
	n := len(cur)
	if len(old) != n {
		return 0
	}
	best, most := 0, 0
	for s := 0; s < n; s++ {
		count := 0
		for i := 0; i+s < n; i++ {
			if cur[i] != "" && old[i+s] == cur[i] {
				count++
			}
		}
		if count > most {
			best, most = s, count
		}
	}
	return best
}

// changedRows lists the rows of cur that differ from old after accounting
// for scrolling.
func changedRows(old, cur []string) []string {
	if old == nil {
		return nonblank(cur)
	}
	s := scrollOf(old, cur)
	var out []string
	for i, row := range cur {
		prev := ""
		if i+s < len(old) {
			prev = old[i+s]
		}
		if row != prev && row != "" {
			out = append(out, row)
		}
	}
	return out
}

package monitor

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/kernel"
	"github.com/tricorn/tricorn/go/models"
	"github.com/tricorn/tricorn/go/models/trace"
)

type Context struct {
	io.ReadWriter
	K     *kernel.Kernel
	Log   *EventLog
	Stats *Stats

	regs models.StatusDiff
}

func (c *Context) Printf(format string, a ...interface{}) (n int, err error) {
	return fmt.Fprintf(c, format, a...)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseNum(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Errorf("bad number %q", s)
	}
	return uint32(n), nil
}

// EventLog keeps the most recent kernel events for the monitor.
type EventLog struct {
	mu     sync.Mutex
	max    int
	events []trace.Event
}

// NewEventLog attaches a log of up to max events to k. Call before Boot.
func NewEventLog(k *kernel.Kernel, max int) *EventLog {
	l := &EventLog{max: max}
	k.Observe(l.Add)
	return l
}

func (l *EventLog) Add(e trace.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	if len(l.events) > l.max {
		l.events = l.events[len(l.events)-l.max:]
	}
}

// Tail returns up to the last n events.
func (l *EventLog) Tail(n int) []trace.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.events) {
		n = len(l.events)
	}
	return append([]trace.Event(nil), l.events[len(l.events)-n:]...)
}

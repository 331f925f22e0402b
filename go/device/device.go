// Package device models the interrupt sources of the machine: the
// programmable interval timer, the real-time clock and the keyboard
// controller. Each one only latches requests on a PIC line; host goroutines
// may drive them freely.
package device

import (
	"sync"
	"time"
)

// Line is the part of the interrupt controller a device talks to.
type Line interface {
	Raise(line int)
}

// clock runs fn from a host ticker until halted.
type clock struct {
	mu   sync.Mutex
	stop chan struct{}
}

func (c *clock) start(period time.Duration, fn func()) {
	c.halt()
	c.mu.Lock()
	defer c.mu.Unlock()
	stop := make(chan struct{})
	c.stop = stop
	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				fn()
			case <-stop:
				return
			}
		}
	}()
}

func (c *clock) halt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *clock) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

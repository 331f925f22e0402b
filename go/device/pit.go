package device

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

const (
	PITBase = 1193182
	// channel 0 output
	PITLine = 0
)

// Divisor is the 16-bit reload value for hz. A result of 0 means 65536,
// the slowest rate the counter supports.
func Divisor(hz int) (uint16, error) {
	if hz <= 0 || hz > PITBase {
		return 0, errors.Errorf("pit: rate %dHz out of range", hz)
	}
	d := PITBase / hz
	if d >= 0x10000 {
		return 0, nil
	}
	return uint16(d), nil
}

type PIT struct {
	line    Line
	divisor uint16
	clock   clock
	ticks   uint64
}

func NewPIT(line Line) *PIT {
	return &PIT{line: line}
}

// SetRate programs channel 0 for hz. It does not start the host ticker.
func (p *PIT) SetRate(hz int) error {
	d, err := Divisor(hz)
	if err != nil {
		return err
	}
	p.divisor = d
	return nil
}

// Hz is the effective output frequency for the programmed divisor.
func (p *PIT) Hz() float64 {
	d := float64(p.divisor)
	if p.divisor == 0 {
		d = 0x10000
	}
	return PITBase / d
}

// Tick fires channel 0 once.
func (p *PIT) Tick() {
	atomic.AddUint64(&p.ticks, 1)
	p.line.Raise(PITLine)
}

func (p *PIT) Ticks() uint64 {
	return atomic.LoadUint64(&p.ticks)
}

func (p *PIT) Start() {
	p.clock.start(time.Duration(float64(time.Second)/p.Hz()), p.Tick)
}

func (p *PIT) Stop() {
	p.clock.halt()
}

// Running reports whether the host ticker is driving channel 0.
func (p *PIT) Running() bool {
	return p.clock.running()
}

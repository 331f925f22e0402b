package device

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

const (
	RTCLine = 8
	// register A rate bits select 32768 >> (rate-1) Hz
	rtcBase = 32768

	RTCMinHz = 2
	RTCMaxHz = 1024
)

var ErrRate = errors.New("rtc: rate must be a power of two between 2 and 1024")

// RateCode converts a frequency into the register A rate field.
func RateCode(hz int32) (uint8, error) {
	if hz < RTCMinHz || hz > RTCMaxHz || hz&(hz-1) != 0 {
		return 0, errors.Wrapf(ErrRate, "%d", hz)
	}
	code := uint8(16)
	for ; hz > 1; hz >>= 1 {
		code--
	}
	return code, nil
}

// RTC models the periodic interrupt of the real-time clock. Unless it runs
// from a host ticker, a tick is produced on demand for every Request.
type RTC struct {
	mu      sync.Mutex
	line    Line
	code    uint8
	ticking bool
	clock   clock
	ticks   uint64
}

func NewRTC(line Line) *RTC {
	return &RTC{line: line, code: 0x0F}
}

func (r *RTC) SetRate(hz int32) error {
	code, err := RateCode(hz)
	if err != nil {
		return err
	}
	r.mu.Lock()
	changed := r.code != code
	r.code = code
	ticking := r.ticking
	r.mu.Unlock()
	if changed && ticking {
		r.Start()
	}
	return nil
}

func (r *RTC) Code() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.code
}

func (r *RTC) Hz() int {
	return rtcBase >> (r.Code() - 1)
}

func (r *RTC) Tick() {
	atomic.AddUint64(&r.ticks, 1)
	r.line.Raise(RTCLine)
}

func (r *RTC) Ticks() uint64 {
	return atomic.LoadUint64(&r.ticks)
}

// Request asks for the next periodic interrupt. With a host ticker running
// it arrives on schedule, otherwise it is raised immediately.
func (r *RTC) Request() {
	r.mu.Lock()
	ticking := r.ticking
	r.mu.Unlock()
	if !ticking {
		r.Tick()
	}
}

// Start runs the periodic interrupt from a host ticker at the programmed rate.
func (r *RTC) Start() {
	r.mu.Lock()
	r.ticking = true
	r.mu.Unlock()
	r.clock.start(time.Second/time.Duration(r.Hz()), r.Tick)
}

// Running reports whether the host ticker is driving the interrupt.
func (r *RTC) Running() bool {
	return r.clock.running()
}

func (r *RTC) Stop() {
	r.mu.Lock()
	r.ticking = false
	r.mu.Unlock()
	r.clock.halt()
}

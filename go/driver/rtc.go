package driver

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/device"
)

// RTCDriver turns the periodic clock interrupt into a sleep primitive.
type RTCDriver struct {
	Dev  *device.RTC
	Wait Waiter

	ticks uint64
}

// Interrupt is called by the clock service routine.
func (d *RTCDriver) Interrupt() {
	d.ticks++
}

func (d *RTCDriver) Ticks() uint64 {
	return d.ticks
}

func (d *RTCDriver) Open(name string) error {
	return d.Dev.SetRate(device.RTCMinHz)
}

// Read returns after the next clock interrupt.
func (d *RTCDriver) Read(uint32, []byte, uint32) (int, error) {
	seen := d.ticks
	d.Dev.Request()
	d.Wait.Wait(func() bool { return d.ticks != seen })
	return 0, nil
}

// Write takes a 4-byte little-endian frequency.
func (d *RTCDriver) Write(_ uint32, buf []byte) (int, error) {
	if len(buf) != 4 {
		return -1, errors.Errorf("rtc: write of %d bytes", len(buf))
	}
	if err := d.Dev.SetRate(int32(binary.LittleEndian.Uint32(buf))); err != nil {
		return -1, err
	}
	return 4, nil
}

func (d *RTCDriver) Close(uint32) error {
	return nil
}

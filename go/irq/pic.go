package irq

import (
	"sync"
)

// priority order of a cascaded 8259 pair: the slave sits on line 2
var priority = []int{0, 1, 8, 9, 10, 11, 12, 13, 14, 15, 3, 4, 5, 6, 7}

// PIC models a master/slave 8259A pair. Raise may be called from any goroutine.
type PIC struct {
	mu            sync.Mutex
	irr, isr, imr uint16
	wake          chan struct{}

	MasterBase, SlaveBase uint8
}

func NewPIC() *PIC {
	return &PIC{
		imr:        0xFFFF &^ (1 << IRQCascade),
		wake:       make(chan struct{}, 1),
		MasterBase: 0x20,
		SlaveBase:  0x28,
	}
}

func (p *PIC) Vector(line int) uint8 {
	if line >= 8 {
		return p.SlaveBase + uint8(line-8)
	}
	return p.MasterBase + uint8(line)
}

func (p *PIC) Enable(line int) {
	p.mu.Lock()
	p.imr &^= 1 << uint(line)
	p.mu.Unlock()
	p.signal()
}

func (p *PIC) Disable(line int) {
	p.mu.Lock()
	p.imr |= 1 << uint(line)
	p.mu.Unlock()
}

// Raise latches a request on line.
func (p *PIC) Raise(line int) {
	p.mu.Lock()
	p.irr |= 1 << uint(line)
	p.mu.Unlock()
	p.signal()
}

func (p *PIC) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Wake is signalled whenever a request may have become deliverable.
func (p *PIC) Wake() <-chan struct{} {
	return p.wake
}

func (p *PIC) next() (int, bool) {
	for _, line := range priority {
		bit := uint16(1) << uint(line)
		if p.isr&bit != 0 {
			// fully nested mode: lower priorities wait for this EOI
			return 0, false
		}
		if p.irr&bit != 0 && p.imr&bit == 0 {
			if line >= 8 && p.imr&(1<<IRQCascade) != 0 {
				continue
			}
			return line, true
		}
	}
	return 0, false
}

func (p *PIC) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.next()
	return ok
}

// Ack moves the highest priority request in service and returns its vector.
func (p *PIC) Ack() (uint8, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	line, ok := p.next()
	if !ok {
		return 0, false
	}
	bit := uint16(1) << uint(line)
	p.irr &^= bit
	p.isr |= bit
	return p.Vector(line), true
}

// EOI ends service of line.
func (p *PIC) EOI(line int) {
	p.mu.Lock()
	p.isr &^= 1 << uint(line)
	p.mu.Unlock()
	p.signal()
}

// State returns the request, in-service and mask registers.
func (p *PIC) State() (irr, isr, imr uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.irr, p.isr, p.imr
}

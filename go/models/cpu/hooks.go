package cpu

import (
	"github.com/pkg/errors"
)

type Hook interface{}

type hookInfo struct {
	htype int
}

func (h *hookInfo) Type() int {
	return h.htype
}

type hinfo interface {
	Type() int
}

type intrHook struct {
	hookInfo
	cb func(*CPU, uint8)
}

type faultHook struct {
	hookInfo
	cb func(*CPU, uint32, uint32)
}

// Hooks lets observers follow interrupt delivery and page faults.
type Hooks struct {
	intr  []*intrHook
	fault []*faultHook
}

func (h *Hooks) HookAdd(htype int, cb interface{}) (Hook, error) {
	info := hookInfo{htype}
	switch htype {
	case HOOK_INTR:
		fn, ok := cb.(func(*CPU, uint8))
		if !ok {
			return nil, errors.Errorf("bad interrupt hook type %T", cb)
		}
		hh := &intrHook{info, fn}
		h.intr = append(h.intr, hh)
		return hh, nil
	case HOOK_MEM_ERR:
		fn, ok := cb.(func(*CPU, uint32, uint32))
		if !ok {
			return nil, errors.Errorf("bad fault hook type %T", cb)
		}
		hh := &faultHook{info, fn}
		h.fault = append(h.fault, hh)
		return hh, nil
	}
	return nil, errors.New("Unknown hook type.")
}

func (h *Hooks) HookDel(hh Hook) error {
	info, ok := hh.(hinfo)
	if !ok {
		return errors.Errorf("not a hook: %T", hh)
	}
	switch info.Type() {
	case HOOK_INTR:
		var tmp []*intrHook
		for _, v := range h.intr {
			if v != hh {
				tmp = append(tmp, v)
			}
		}
		h.intr = tmp
	case HOOK_MEM_ERR:
		var tmp []*faultHook
		for _, v := range h.fault {
			if v != hh {
				tmp = append(tmp, v)
			}
		}
		h.fault = tmp
	}
	return nil
}

func (c *CPU) OnIntr(vector uint8) {
	for _, v := range c.Hooks.intr {
		v.cb(c, vector)
	}
}

func (c *CPU) OnFault(addr, code uint32) {
	for _, v := range c.Hooks.fault {
		v.cb(c, addr, code)
	}
}

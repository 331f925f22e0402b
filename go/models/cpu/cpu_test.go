package cpu

import (
	"testing"
)

func TestGuardRestoresFlag(t *testing.T) {
	c := New()
	c.Sti()
	g := c.Guard()
	if c.IF() {
		t.Fatal("guard left interrupts enabled")
	}
	inner := c.Guard()
	inner.Release()
	if c.IF() {
		t.Fatal("nested release enabled interrupts")
	}
	g.Release()
	if !c.IF() {
		t.Fatal("release did not restore interrupts")
	}
	c.Cli()
	g.Release()
	if c.IF() {
		t.Fatal("second release changed the flag")
	}
}

func TestContextSaveRestore(t *testing.T) {
	c := New()
	c.Set(ESP, 0x7fdffc)
	c.Set(EBP, 0x7fe000)
	ctx := c.ContextSave()
	c.Set(ESP, 0)
	c.Set(CS, UserCS)
	if c.CPL() != 3 {
		t.Fatalf("cpl = %d", c.CPL())
	}
	c.ContextRestore(ctx)
	if c.Get(ESP) != 0x7fdffc || c.Get(EBP) != 0x7fe000 || c.CPL() != 0 {
		t.Fatalf("bad restore: %s", c.String())
	}
}

func TestHooks(t *testing.T) {
	c := New()
	var seen []uint8
	hh, err := c.Hooks.HookAdd(HOOK_INTR, func(_ *CPU, v uint8) { seen = append(seen, v) })
	if err != nil {
		t.Fatal(err)
	}
	var faults []uint32
	fh, err := c.Hooks.HookAdd(HOOK_MEM_ERR, func(_ *CPU, addr, code uint32) { faults = append(faults, addr) })
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Hooks.HookAdd(HOOK_INTR, func() {}); err == nil {
		t.Fatal("accepted bad callback type")
	}
	c.OnIntr(0x80)
	c.OnFault(0xdead, 4)
	if err := c.Hooks.HookDel(hh); err != nil {
		t.Fatal(err)
	}
	c.Hooks.HookDel(fh)
	c.OnIntr(0x20)
	c.OnFault(0xbeef, 4)
	if len(seen) != 1 || seen[0] != 0x80 {
		t.Fatalf("intr hooks saw %v", seen)
	}
	if len(faults) != 1 || faults[0] != 0xdead {
		t.Fatalf("fault hooks saw %v", faults)
	}
}

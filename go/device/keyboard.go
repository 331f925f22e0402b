package device

import (
	"sync"
)

const (
	KeyboardLine = 1

	ScanCtrl   = 29
	ScanShiftL = 42
	ScanShiftR = 54
	ScanAlt    = 56
	ScanCaps   = 58
	ScanF1     = 59
	// set on the scancode of a key release
	ScanRelease = 0x80

	// decoded value of F1, F2 follows, and so on up to F10
	KeyFn = 130
)

var keymap, keymapShift [128]byte

func init() {
	rows := []struct {
		start          int
		plain, shifted string
	}{
		{2, "1234567890-=\b\t", "!@#$%^&*()_+\b\t"},
		{16, "qwertyuiop[]\n", "QWERTYUIOP{}\n"},
		{30, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
		{43, "\\zxcvbnm,./", "|ZXCVBNM<>?"},
		{55, "*", "*"},
		{57, " ", " "},
		{74, "-", "-"},
		{78, "+", "+"},
	}
	for _, r := range rows {
		for i := range r.plain {
			keymap[r.start+i] = r.plain[i]
			keymapShift[r.start+i] = r.shifted[i]
		}
	}
	for i := 0; i < 10; i++ {
		keymap[ScanF1+i] = KeyFn + byte(i)
		keymapShift[ScanF1+i] = KeyFn + byte(i)
	}
}

// Key is one decoded keystroke with the modifiers held at the time.
type Key struct {
	Byte      byte
	Ctrl, Alt bool
}

// Keyboard is the controller FIFO plus the decoder's modifier state.
type Keyboard struct {
	mu   sync.Mutex
	line Line
	fifo []byte

	ctrl, alt, caps bool
	shiftL, shiftR  bool
}

func NewKeyboard(line Line) *Keyboard {
	return &Keyboard{line: line}
}

// Push queues raw scancodes and raises the keyboard line once per code.
func (k *Keyboard) Push(codes ...byte) {
	for _, c := range codes {
		k.mu.Lock()
		k.fifo = append(k.fifo, c)
		k.mu.Unlock()
		k.line.Raise(KeyboardLine)
	}
}

// Type queues the make and break codes that produce text.
func (k *Keyboard) Type(text string) {
	k.Push(Scancodes(text)...)
}

// Next pops the oldest scancode, like reading the data port. The controller
// raises its line again while more codes are queued.
func (k *Keyboard) Next() (byte, bool) {
	k.mu.Lock()
	if len(k.fifo) == 0 {
		k.mu.Unlock()
		return 0, false
	}
	c := k.fifo[0]
	k.fifo = k.fifo[1:]
	more := len(k.fifo) > 0
	k.mu.Unlock()
	if more {
		k.line.Raise(KeyboardLine)
	}
	return c, true
}

func (k *Keyboard) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.fifo)
}

// Decode tracks modifiers and translates a scancode. Releases and keys
// without a mapping decode to 0.
func (k *Keyboard) Decode(code byte) Key {
	k.mu.Lock()
	defer k.mu.Unlock()
	down := code&ScanRelease == 0
	code &^= ScanRelease
	switch code {
	case ScanCtrl:
		k.ctrl = down
	case ScanAlt:
		k.alt = down
	case ScanShiftL:
		k.shiftL = down
	case ScanShiftR:
		k.shiftR = down
	case ScanCaps:
		if down {
			k.caps = !k.caps
		}
	}
	if !down {
		return Key{}
	}
	b := keymap[code]
	shift := k.shiftL || k.shiftR
	if b >= 'a' && b <= 'z' {
		shift = shift != k.caps
	}
	if shift {
		b = keymapShift[code]
	}
	return Key{Byte: b, Ctrl: k.ctrl, Alt: k.alt}
}

func press(code byte) []byte {
	return []byte{code, code | ScanRelease}
}

func hold(mod byte, codes []byte) []byte {
	out := append([]byte{mod}, codes...)
	return append(out, mod|ScanRelease)
}

// Scancodes returns the make and break sequence typing text on a US layout.
// Characters with no key are dropped.
func Scancodes(text string) []byte {
	var out []byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		found := false
		for code := range keymap {
			if keymap[code] == c && c != 0 {
				out = append(out, press(byte(code))...)
				found = true
				break
			}
		}
		if found {
			continue
		}
		for code := range keymapShift {
			if keymapShift[code] == c && c != 0 {
				out = append(out, hold(ScanShiftL, press(byte(code)))...)
				break
			}
		}
	}
	return out
}

// AltFn is the sequence for Alt+F<n>, n counting from 1.
func AltFn(n int) []byte {
	return hold(ScanAlt, press(byte(ScanF1+n-1)))
}

// CtrlKey is the sequence for Ctrl plus a letter.
func CtrlKey(c byte) []byte {
	return hold(ScanCtrl, Scancodes(string(c)))
}

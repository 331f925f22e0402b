package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

func printable(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}

// Repr quotes p for trace output, truncating to strsize characters when strsize > 0.
func Repr(p []byte, strsize int) string {
	tmp := make([]string, len(p))
	for i, b := range p {
		if printable(b) {
			tmp[i] = string(b)
		} else {
			tmp[i] = fmt.Sprintf("\\x%02x", b)
		}
	}
	out := strings.Join(tmp, "")
	if strsize > 0 && len(out) > strsize {
		for i := len(tmp) - 1; len(out) > strsize-3 && i > 0; i-- {
			out = strings.Join(tmp[:i], "")
		}
		return "\"" + out + "\"..."
	}
	return "\"" + out + "\""
}

// HexDump formats mem as 16-byte lines of 32-bit words with an ascii column.
func HexDump(base uint32, mem []byte) []string {
	const word, perLine = 4, 16
	var out []string
	for i := 0; i < len(mem); i += perLine {
		line := mem[i:]
		if len(line) > perLine {
			line = line[:perLine]
		}
		blocks := make([]string, 0, perLine/word)
		for j := 0; j < perLine; j += word {
			switch {
			case j >= len(line):
				blocks = append(blocks, strings.Repeat(" ", word*2))
			case j+word > len(line):
				s := hex.EncodeToString(line[j:])
				blocks = append(blocks, s+strings.Repeat(" ", word*2-len(s)))
			default:
				blocks = append(blocks, hex.EncodeToString(line[j:j+word]))
			}
		}
		ascii := make([]byte, len(line))
		for j, c := range line {
			if printable(c) {
				ascii[j] = c
			} else {
				ascii[j] = '.'
			}
		}
		out = append(out, fmt.Sprintf("0x%08x: %s [%s]", base+uint32(i), strings.Join(blocks, " "), ascii))
	}
	return out
}

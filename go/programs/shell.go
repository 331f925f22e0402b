package programs

import (
	"strings"

	"github.com/tricorn/tricorn/go/user"
)

const (
	Prompt = "391OS> "
	// status of a program killed by an exception
	abnormal = 255
)

// Shell reads commands from the terminal and runs them until "exit".
func Shell(p *user.Proc) int32 {
	for {
		p.Print(Prompt)
		line, n := p.ReadLine()
		if n < 0 {
			p.Print("read from keyboard failed\n")
			return 3
		}
		if line == "exit" {
			return 0
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch p.Spawn(line) {
		case -1:
			p.Print("no such command\n")
		case abnormal:
			p.Print("Program terminated abnormally\n")
		}
	}
}

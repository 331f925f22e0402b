package models

import (
	"io"
	"os"
)

type Config struct {
	Color    bool
	TraceSys bool
	Verbose  bool
	Strsize  int

	// number of terminal sessions, 1..3
	Terminals int
	// timer-driven round robin across sessions
	Sched bool
	// program spawned as the root of every session
	Shell string

	// PIT frequency for the host ticker, 0 disables it
	TimerHz int
	// run the RTC periodic interrupt from a host ticker
	RealRTC bool

	// diagnostics and strace output
	Output io.Writer
	// binary event trace, nil disables
	Trace io.WriteCloser
}

// NewConfig returns the defaults used by the run command and the tests.
func NewConfig() *Config {
	return &Config{
		Strsize:   30,
		Terminals: 3,
		Sched:     true,
		Shell:     "shell",
		Output:    os.Stderr,
	}
}

func (c *Config) Init() *Config {
	if c.Terminals <= 0 || c.Terminals > 3 {
		c.Terminals = 3
	}
	if c.Shell == "" {
		c.Shell = "shell"
	}
	if c.Output == nil {
		c.Output = os.Stderr
	}
	return c
}

package models

import (
	"fmt"
	"strings"

	"github.com/mgutz/ansi"
)

var (
	tagColor  = ansi.ColorCode("cyan+b")
	warnColor = ansi.ColorCode("red+b")
)

// Logf writes one "[tag] msg" line to the configured output.
func (c *Config) Logf(tag, format string, a ...interface{}) {
	c.logf(tagColor, tag, format, a...)
}

// Warnf is Logf in red.
func (c *Config) Warnf(tag, format string, a ...interface{}) {
	c.logf(warnColor, tag, format, a...)
}

// Debugf logs only in verbose mode.
func (c *Config) Debugf(tag, format string, a ...interface{}) {
	if c.Verbose {
		c.logf(tagColor, tag, format, a...)
	}
}

func (c *Config) logf(color, tag, format string, a ...interface{}) {
	if c.Output == nil {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, a...), "\n")
	prefix := "[" + tag + "]"
	if c.Color {
		prefix = color + prefix + ansi.Reset
	}
	fmt.Fprintf(c.Output, "%s %s\n", prefix, msg)
}

// Package monitor is the host-side command table for inspecting and poking
// a running kernel.
package monitor

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/lunixbochs/argjoy"
	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/mattn/go-shellwords"
)

type Command struct {
	Name string
	Desc string
	Run  interface{}
}

var Commands = make(map[string]*Command)

func cmd(c *Command) *Command {
	fn := reflect.ValueOf(c.Run)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		panic(fmt.Sprintf("Command.Run must be a func: got (%T) %#v\n", c.Run, c.Run))
	}
	Commands[c.Name] = c
	return c
}

var aj = argjoy.NewArgjoy()

// Run parses line as a command and its arguments and runs it.
func Run(c *Context, line string) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		c.Printf("parse error: %v\n", err)
		return nil
	}
	if len(args) == 0 {
		return nil
	}
	name, args := args[0], args[1:]
	cmd, ok := Commands[name]
	if !ok {
		c.Printf("command not found.\n")
		return nil
	}
	out, err := aj.Call(cmd.Run, c, args)
	if err != nil {
		c.Printf("error: %v\n", err)
	}
	if len(out) > 0 {
		if err, ok := out[0].(error); ok && err != nil {
			c.Printf("error: %v\n", err)
		}
	}
	return nil
}

var HelpCmd = cmd(&Command{
	Name: "help",
	Desc: "List commands.",
	Run: func(c *Context) error {
		var names []string
		for name := range Commands {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return sortorder.NaturalLess(names[i], names[j]) })
		for _, name := range names {
			c.Printf("  %-8s %s\n", name, Commands[name].Desc)
		}
		return nil
	},
})

package cmd

import (
	"fmt"
	"os"
)

type command struct {
	name, desc string
	main       func(args []string)
}

var commands = make(map[string]*command)
var order []string
var pad int

// Register adds a subcommand. main receives the argv with the command name
// folded into argv[0].
func Register(name, desc string, main func(args []string)) {
	if len(name) > pad {
		pad = len(name)
	}
	commands[name] = &command{name, desc, main}
	order = append(order, name)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, name := range order {
		cmd := commands[name]
		fmt.Fprintf(os.Stderr, "  %-*s | %s\n", pad, cmd.name, cmd.desc)
	}
	fmt.Fprintf(os.Stderr, "\nExample: %s run -terminals 2\n\n", os.Args[0])
}

// Main dispatches os.Args[1] to a registered subcommand.
func Main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	name := os.Args[1]
	switch name {
	case "help", "-h", "-help", "--help":
		usage()
		return
	}
	if cmd, ok := commands[name]; ok {
		cmd.main(append([]string{os.Args[0] + " " + name}, os.Args[2:]...))
		return
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	os.Exit(1)
}

package main

import (
	"github.com/tricorn/tricorn/go/cmd"

	_ "github.com/tricorn/tricorn/go/cmd/run"

	_ "github.com/tricorn/tricorn/go/cmd/ls"
	_ "github.com/tricorn/tricorn/go/cmd/mkfs"
	_ "github.com/tricorn/tricorn/go/cmd/trace"
)

func main() { cmd.Main() }

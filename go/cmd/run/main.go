package run

import (
	"os"

	"github.com/tricorn/tricorn/go/cmd"
)

func Main(args []string) {
	os.Exit(cmd.NewKernelCmd().Run(args))
}

func init() { cmd.Register("run", "boot the kernel", Main) }

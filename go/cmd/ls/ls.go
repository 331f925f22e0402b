package ls

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tricorn/tricorn/go/cmd"
	"github.com/tricorn/tricorn/go/fs"
)

// List writes one line per directory entry.
func List(w io.Writer, img *fs.Image) error {
	for _, d := range img.Entries() {
		size := uint32(0)
		if d.Type == fs.TypeRegular {
			var err error
			if size, err = img.Len(d.Inode); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%-32s %-8s inode %-3d %d\n", d.Name, d.Type, d.Inode, size)
	}
	return nil
}

func Main(args []string) {
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [image]\n", args[0])
	}
	flags.Parse(args[1:])
	img, err := cmd.OpenImage(flags.Arg(0))
	if err != nil {
		cmd.PrintError(err)
		os.Exit(1)
	}
	if err := List(os.Stdout, img); err != nil {
		cmd.PrintError(err)
		os.Exit(1)
	}
}

func init() { cmd.Register("ls", "list a file system image", Main) }

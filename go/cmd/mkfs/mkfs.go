package mkfs

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/cmd"
	"github.com/tricorn/tricorn/go/fs"
	"github.com/tricorn/tricorn/go/programs"
)

// Build returns an image holding the built-in programs and the named host
// files. Files are stored under their base names.
func Build(paths []string, bare bool) ([]byte, error) {
	b := fs.NewBuilder()
	if !bare {
		var err error
		if b, err = programs.Builder(); err != nil {
			return nil, err
		}
	}
	for _, path := range paths {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := b.AddFile(filepath.Base(path), data); err != nil {
			return nil, errors.Wrapf(err, "adding %s", path)
		}
	}
	img, err := b.Build()
	if err != nil {
		return nil, err
	}
	return img.Bytes()
}

func Main(args []string) {
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	out := flags.String("o", "fs.img", "output image")
	bare := flags.Bool("bare", false, "leave out the built-in programs")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-o fs.img] [-bare] [file...]\n", args[0])
		flags.PrintDefaults()
	}
	flags.Parse(args[1:])

	data, err := Build(flags.Args(), *bare)
	if err != nil {
		cmd.PrintError(err)
		os.Exit(1)
	}
	if err := ioutil.WriteFile(*out, data, 0644); err != nil {
		cmd.PrintError(err)
		os.Exit(1)
	}
}

func init() { cmd.Register("mkfs", "build a file system image", Main) }

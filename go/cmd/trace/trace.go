package trace

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/cmd"
	"github.com/tricorn/tricorn/go/models/trace"
	"github.com/tricorn/tricorn/go/ui"
)

// Dump prints every event in a trace file.
func Dump(path string, s *ui.StreamUI, summary bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	tf, err := trace.NewReader(f)
	if err != nil {
		f.Close()
		return errors.Wrap(err, "trace.NewReader() failed")
	}
	defer tf.Close()
	s.Header(&tf.Header)
	for {
		e, err := tf.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrap(err, "error reading next trace event")
		}
		s.Feed(e)
	}
	if summary {
		s.Summary()
	}
	return nil
}

func Main(args []string) {
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	session := flags.Int("term", -1, "only show events from this terminal")
	summary := flags.Bool("summary", false, "print event counts")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <tracefile>\n", args[0])
		flags.PrintDefaults()
	}
	flags.Parse(args[1:])
	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(1)
	}
	color := isatty.IsTerminal(os.Stdout.Fd())
	s := ui.NewStreamUI(colorable.NewColorableStdout(), color)
	s.Session = *session
	if err := Dump(flags.Arg(0), s, *summary); err != nil {
		cmd.PrintError(err)
		os.Exit(1)
	}
}

func init() { cmd.Register("trace", "print a kernel event trace", Main) }

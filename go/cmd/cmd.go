package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/fs"
	"github.com/tricorn/tricorn/go/kernel"
	"github.com/tricorn/tricorn/go/models"
	"github.com/tricorn/tricorn/go/monitor"
	"github.com/tricorn/tricorn/go/programs"
	"github.com/tricorn/tricorn/go/ui"
)

type KernelCmd struct {
	Config *models.Config

	SetupFlags func() error
	// RunKernel replaces the default front end once the kernel has booted.
	RunKernel func() error
	Teardown  func()

	Kernel *kernel.Kernel
	Log    *monitor.EventLog
	Stats  *monitor.Stats
	Flags  *flag.FlagSet
}

func NewKernelCmd() *KernelCmd {
	return &KernelCmd{Flags: flag.NewFlagSet("cli", flag.ExitOnError)}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// PrintError prints an error, and a stacktrace if available.
func PrintError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	st, ok := errors.Cause(err).(stackTracer)
	if !ok {
		st, ok = err.(stackTracer)
	}
	if !ok {
		return
	}
	var frames [][2]string
	width := 0
	for _, f := range st.StackTrace() {
		fileline := fmt.Sprintf("%s:%d", f, f)
		method := fmt.Sprintf("%n", f)
		if len(fileline) > width {
			width = len(fileline)
		}
		frames = append(frames, [2]string{fileline, method})
		if method == "main" {
			break
		}
	}
	for _, f := range frames {
		fmt.Fprintf(os.Stderr, "%-*s | %s()\n", width, f[0], f[1])
	}
}

// OpenImage loads a file system image, or builds the default one.
func OpenImage(path string) (*fs.Image, error) {
	if path == "" {
		return programs.Image()
	}
	return fs.Open(path)
}

func (c *KernelCmd) Run(argv []string) int {
	flags := c.Flags
	image := flags.String("image", "", "file system image (default: built-in programs)")
	terminals := flags.Int("terminals", 3, "number of terminal sessions (1-3)")
	nosched := flags.Bool("nosched", false, "disable the round robin scheduler")
	hz := flags.Int("hz", 100, "timer interrupt rate, 0 disables the timer")
	rtc := flags.Bool("rtc", false, "drive the RTC from a host ticker")
	shell := flags.String("shell", "shell", "program started as the root of every terminal")
	strace := flags.Bool("strace", false, "trace syscalls")
	verbose := flags.Bool("v", false, "verbose output")
	tracefile := flags.String("trace", "", "binary event trace output file")
	outfile := flags.String("o", "", "redirect kernel log to file (default stderr)")
	front := flags.String("ui", "", "front end: repl, tui or stdin (default: repl on a terminal)")
	settle := flags.Duration("settle", 200*time.Millisecond, "with -ui stdin, time to keep running after EOF; the last exit status becomes the exit code")
	cpuprofile := flags.String("cpuprofile", "", "write cpu profile to <file>")
	memprofile := flags.String("memprofile", "", "write mem profile to <file>")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\nOptions:\n", argv[0])
		var list []*flag.Flag
		flags.VisitAll(func(f *flag.Flag) { list = append(list, f) })
		models.PrintFlags(os.Stderr, list)
		fmt.Fprintf(os.Stderr, "\nExample:\n  %s -terminals 2 -strace\n", argv[0])
	}
	if c.SetupFlags != nil {
		if err := c.SetupFlags(); err != nil {
			PrintError(err)
			return 1
		}
	}
	flags.Parse(argv[1:])

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			PrintError(err)
			return 1
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	config := models.NewConfig()
	config.Terminals = *terminals
	config.Sched = !*nosched
	config.TimerHz = *hz
	config.RealRTC = *rtc
	config.Shell = *shell
	config.TraceSys = *strace
	config.Verbose = *verbose
	config.Color = isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("NO_COLOR") == ""
	config.Output = colorable.NewColorableStderr()
	if *outfile != "" {
		out, err := os.OpenFile(*outfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			PrintError(err)
			return 1
		}
		defer out.Close()
		config.Output = out
		config.Color = false
	}
	if *tracefile != "" {
		f, err := os.Create(*tracefile)
		if err != nil {
			PrintError(err)
			return 1
		}
		config.Trace = f
	}
	c.Config = config

	img, err := OpenImage(*image)
	if err != nil {
		PrintError(errors.Wrap(err, "loading image"))
		return 1
	}
	k, err := kernel.New(config, img)
	if err != nil {
		PrintError(err)
		return 1
	}
	c.Kernel = k
	c.Log = monitor.NewEventLog(k, 1000)
	if c.Stats, err = monitor.NewStats(k); err != nil {
		PrintError(err)
		return 1
	}

	teardown := func() {
		if err := k.Shutdown(); err != nil {
			PrintError(errors.Wrap(err, "closing trace"))
		}
		if *memprofile != "" {
			if f, err := os.Create(*memprofile); err == nil {
				pprof.WriteHeapProfile(f)
				f.Close()
			}
		}
		if c.Teardown != nil {
			c.Teardown()
		}
	}
	if err := k.Boot(); err != nil {
		PrintError(err)
		teardown()
		return 1
	}
	defer teardown()

	if c.RunKernel != nil {
		err = c.RunKernel()
	} else {
		mode := *front
		if mode == "" {
			mode = "stdin"
			if isatty.IsTerminal(os.Stdin.Fd()) {
				mode = "repl"
			}
		}
		err = c.frontEnd(mode, *settle)
	}
	if err == nil {
		select {
		case <-k.Done():
			err = k.Err()
		default:
		}
	}
	if e, ok := err.(models.ExitStatus); ok {
		return int(e)
	} else if err != nil {
		PrintError(err)
		return 1
	}
	return 0
}

func (c *KernelCmd) frontEnd(mode string, settle time.Duration) error {
	k := c.Kernel
	switch mode {
	case "repl":
		repl, err := ui.NewRepl(k, c.Log, c.Stats)
		if err != nil {
			return err
		}
		repl.Run()
	case "tui":
		tui, err := ui.NewTui(k, c.Log, c.Stats)
		if err != nil {
			return err
		}
		return tui.Run()
	case "stdin":
		mirror := ui.NewMirror(k)
		out := colorable.NewColorableStdout()
		mirror.Watch(10*time.Millisecond, func(_, fresh []string, _ int) {
			for _, row := range fresh {
				fmt.Fprintln(out, row)
			}
		})
		defer mirror.Stop()
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			k.Keyboard.Type(scanner.Text() + "\n")
		}
		select {
		case <-time.After(settle):
		case <-k.Done():
			return nil
		}
		var status int32
		k.Inspect(func() { status = k.LastStatus })
		return models.ExitStatus(status)
	default:
		return errors.Errorf("unknown front end %q", mode)
	}
	return nil
}

package cmd

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tricorn/tricorn/go/models"
	"github.com/tricorn/tricorn/go/models/trace"
	"github.com/tricorn/tricorn/go/ui"
)

func TestRunKernel(t *testing.T) {
	dir, err := ioutil.TempDir("", "tricorn")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	tracePath := filepath.Join(dir, "out.trace")

	c := NewKernelCmd()
	var shown string
	c.RunKernel = func() error {
		c.Kernel.Keyboard.Type("testprint\n")
		mirror := ui.NewMirror(c.Kernel)
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			screen, _, _ := mirror.Poll()
			shown = strings.Join(screen, "\n")
			if strings.Contains(shown, "the terminal works!") && strings.HasSuffix(strings.TrimSpace(shown), "391OS>") {
				break
			}
			time.Sleep(time.Millisecond)
		}
		return models.ExitStatus(7)
	}
	args := []string{"tricorn run", "-terminals", "1", "-hz", "0", "-o", filepath.Join(dir, "log"), "-trace", tracePath}
	if code := c.Run(args); code != 7 {
		t.Fatalf("exit code %d", code)
	}
	if c.Config.Terminals != 1 || c.Config.TimerHz != 0 {
		t.Errorf("flags not applied: %+v", c.Config)
	}
	if !strings.Contains(shown, "the terminal works!") {
		t.Fatalf("screen:\n%s", shown)
	}

	f, err := os.Open(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	tf, err := trace.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer tf.Close()
	if tf.Header.Terminals != 1 || tf.Header.Shell != "shell" {
		t.Errorf("header %+v", tf.Header)
	}
	var spawned []string
	for {
		e, err := tf.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		if trace.Kind(e.Kind) == trace.Spawn {
			spawned = append(spawned, e.Name)
		}
	}
	if strings.Join(spawned, ",") != "shell,testprint" {
		t.Errorf("spawned %v", spawned)
	}
}

func TestOpenImage(t *testing.T) {
	img, err := OpenImage("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := img.ResolveByName("shell"); err != nil {
		t.Error(err)
	}
	if _, err := OpenImage(filepath.Join(os.TempDir(), "missing.img")); err == nil {
		t.Error("opened a missing image")
	}
}

package trace

import (
	"bytes"
	"io"
	"io/ioutil"
	"strings"
	"testing"
)

type nopCloser struct {
	*bytes.Buffer
}

func (nopCloser) Close() error { return nil }

func TestRoundTrip(t *testing.T) {
	buf := nopCloser{&bytes.Buffer{}}
	w, err := NewWriter(buf, 3, "shell")
	if err != nil {
		t.Fatal(err)
	}
	events := []*Event{
		{Kind: uint8(Spawn), Session: 0, PID: 1, Name: "shell"},
		{Kind: uint8(Suspend), Session: 0, PID: 1, SP: 0x7fdfd0, FP: 0x7fdff0, Tick: 1},
		{Kind: uint8(Exception), Session: 1, PID: 2, Vector: 14, Name: "Page Fault", Tick: 2},
		{Kind: uint8(Exit), Session: 1, PID: 2, Parent: 0, Status: 255, Tick: 2},
	}
	for _, e := range events {
		if err := w.Pack(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(ioutil.NopCloser(bytes.NewReader(buf.Bytes())))
	if err != nil {
		t.Fatal(err)
	}
	if r.Header.Terminals != 3 || r.Header.Shell != "shell" {
		t.Fatalf("header %+v", r.Header)
	}
	for i, want := range events {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		if got.Kind != want.Kind || got.PID != want.PID || got.Status != want.Status || got.SP != want.SP || got.Name != want.Name {
			t.Fatalf("event %d: got %+v want %+v", i, got, want)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	r.Close()
}

func TestBadMagic(t *testing.T) {
	if _, err := NewReader(ioutil.NopCloser(strings.NewReader("NOPE0000"))); err == nil {
		t.Fatal("bad magic accepted")
	}
}

func TestEventString(t *testing.T) {
	e := &Event{Kind: uint8(Exception), PID: 3, Vector: 0, Name: "Division Error"}
	if s := e.String(); !strings.Contains(s, "exception 0 Division Error") {
		t.Fatalf("string %q", s)
	}
}

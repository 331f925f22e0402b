package models

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

// AsyncStream batches writes onto a background goroutine so the writer
// never waits for the underlying file.
type AsyncStream struct {
	w      io.WriteCloser
	closed bool
	write  chan []byte
	close  chan chan error

	buffer [][]byte
	count  int
	err    error
}

const (
	asyncFlushEvery = 25 * time.Millisecond
	asyncMaxChunks  = 1000
	asyncMaxBytes   = 64000
)

func NewAsyncStream(w io.WriteCloser) *AsyncStream {
	a := &AsyncStream{
		w:     w,
		write: make(chan []byte, asyncMaxChunks),
		close: make(chan chan error),
	}
	go a.run()
	return a
}

func (a *AsyncStream) flush() {
	for _, p := range a.buffer {
		if a.err != nil {
			break
		}
		_, a.err = a.w.Write(p)
	}
	a.buffer = a.buffer[:0]
	a.count = 0
}

func (a *AsyncStream) run() {
	t := time.NewTicker(asyncFlushEvery)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			a.flush()
		case p := <-a.write:
			a.buffer = append(a.buffer, p)
			a.count += len(p)
			if len(a.buffer) >= asyncMaxChunks || a.count >= asyncMaxBytes {
				a.flush()
			}
		case done := <-a.close:
			// drain anything queued before the close request
			for {
				select {
				case p := <-a.write:
					a.buffer = append(a.buffer, p)
					continue
				default:
				}
				break
			}
			a.flush()
			if err := a.w.Close(); a.err == nil {
				a.err = err
			}
			done <- a.err
			return
		}
	}
}

func (a *AsyncStream) Write(p []byte) (int, error) {
	if a.closed {
		return 0, errors.New("async stream is closed")
	}
	tmp := make([]byte, len(p))
	copy(tmp, p)
	a.write <- tmp
	return len(tmp), nil
}

func (a *AsyncStream) Close() error {
	if a.closed {
		return errors.New("async stream was already closed")
	}
	a.closed = true
	done := make(chan error)
	a.close <- done
	return <-done
}

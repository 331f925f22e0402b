package trace

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

var TRACE_MAGIC = "TRCN"

type TraceHeader struct {
	// MAGIC ("TRCN")
	Magic string `struc:"[4]byte"`
	// file format version
	Version   uint32
	Terminals uint32
	// session root program, right-null-padded
	Shell string `struc:"[32]byte"`
}

type TraceWriter struct {
	w, zw io.WriteCloser
}

func NewWriter(w io.WriteCloser, terminals int, shell string) (*TraceWriter, error) {
	header := &TraceHeader{
		Magic:     TRACE_MAGIC,
		Version:   1,
		Terminals: uint32(terminals),
		Shell:     shell,
	}
	if err := struc.PackWithOrder(w, header, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(err, "failed to pack header")
	}
	zw := snappy.NewBufferedWriter(w)
	return &TraceWriter{w: w, zw: zw}, nil
}

// Pack writes one event.
func (t *TraceWriter) Pack(e *Event) error {
	return struc.PackWithOrder(t.zw, e, binary.LittleEndian)
}

func (t *TraceWriter) Close() error {
	if err := t.zw.Close(); err != nil {
		t.w.Close()
		return err
	}
	return t.w.Close()
}

type TraceReader struct {
	r      io.ReadCloser
	zr     *snappy.Reader
	Header TraceHeader
}

func NewReader(r io.ReadCloser) (*TraceReader, error) {
	t := &TraceReader{r: r}
	if err := struc.UnpackWithOrder(r, &t.Header, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if t.Header.Magic != TRACE_MAGIC {
		return nil, errors.New("invalid trace file magic")
	}
	t.Header.Shell = strings.TrimRight(t.Header.Shell, "\x00")
	t.zr = snappy.NewReader(r)
	return t, nil
}

// Next returns io.EOF after the last complete event.
func (t *TraceReader) Next() (*Event, error) {
	var e Event
	if err := struc.UnpackWithOrder(t.zr, &e, binary.LittleEndian); err != nil {
		if cause := errors.Cause(err); cause == io.EOF || cause == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	e.Name = strings.TrimRight(e.Name, "\x00")
	return &e, nil
}

func (t *TraceReader) Close() {
	t.zr.Reset(nil)
	t.r.Close()
}

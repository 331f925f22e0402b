package loader

import (
	"bytes"
	"encoding/binary"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/fs"
)

const (
	Magic     = 0x464c457f
	HeaderLen = 28
	// offset of the little-endian entry point inside the header
	EntryOffset = 24
	LoadAddr    = 0x08048000
	// the image must end inside the 4MB user window
	MaxImage = 0x08400000 - LoadAddr
)

var (
	ErrNotExecutable = errors.New("not an executable")
	ErrTruncated     = errors.New("executable header truncated")
	ErrTooLarge      = errors.New("executable too large")
)

type Header struct {
	Magic uint32
	Ident []byte `struc:"[20]byte"`
	Entry uint32
}

var magicBytes = []byte{0x7f, 'E', 'L', 'F'}

// ParseHeader decodes the fixed header at the start of raw. The magic is
// checked against whatever prefix is present before the length is.
func ParseHeader(raw []byte) (*Header, error) {
	prefix := raw
	if len(prefix) > len(magicBytes) {
		prefix = prefix[:len(magicBytes)]
	}
	if len(prefix) == 0 || !bytes.Equal(prefix, magicBytes[:len(prefix)]) {
		return nil, errors.Wrapf(ErrNotExecutable, "starts with %q", prefix)
	}
	if len(raw) < HeaderLen {
		return nil, errors.Wrapf(ErrTruncated, "%d bytes", len(raw))
	}
	var h Header
	if err := struc.UnpackWithOrder(bytes.NewReader(raw[:HeaderLen]), &h, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(err, "unpacking header")
	}
	if h.Magic != Magic {
		return nil, errors.Wrapf(ErrNotExecutable, "magic %#x", h.Magic)
	}
	return &h, nil
}

// ReadHeader reads the header of a file through the file system contract.
func ReadHeader(fsys fs.FileSystem, d fs.Dentry) (*Header, error) {
	if d.Type != fs.TypeRegular {
		return nil, errors.Wrapf(ErrNotExecutable, "%s is a %s", d.Name, d.Type)
	}
	raw := make([]byte, HeaderLen)
	n, err := fsys.ReadBytes(d.Inode, 0, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", d.Name)
	}
	return ParseHeader(raw[:n])
}

// Memory is the virtual address space the image is copied into.
type Memory interface {
	Write(virt uint32, p []byte, user bool) error
}

// Load copies the whole file verbatim to LoadAddr.
func Load(fsys fs.FileSystem, d fs.Dentry, mem Memory) error {
	size, err := fsys.Len(d.Inode)
	if err != nil {
		return err
	}
	if size > MaxImage {
		return errors.Wrapf(ErrTooLarge, "%s is %d bytes", d.Name, size)
	}
	buf := make([]byte, fs.BlockSize)
	for off := uint32(0); off < size; {
		n, err := fsys.ReadBytes(d.Inode, off, buf)
		if err != nil {
			return errors.Wrapf(err, "reading %s", d.Name)
		}
		if n == 0 {
			break
		}
		if err := mem.Write(LoadAddr+off, buf[:n], false); err != nil {
			return errors.Wrapf(err, "loading %s", d.Name)
		}
		off += uint32(n)
	}
	return nil
}

// Build produces an image with the given entry point followed by body.
func Build(entry uint32, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	h := &Header{
		Magic: Magic,
		// ELF ident: 32-bit, little endian, version 1
		Ident: []byte{1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 3, 0, 1, 0, 0, 0},
		Entry: entry,
	}
	if err := struc.PackWithOrder(&buf, h, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(err, "packing header")
	}
	buf.Write(body)
	return buf.Bytes(), nil
}

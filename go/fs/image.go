package fs

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"
	"strings"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

type bootHeader struct {
	DirCount   uint32
	InodeCount uint32
	DataCount  uint32
	Reserved   []byte `struc:"[52]pad"`
}

type rawDentry struct {
	Name     string `struc:"[32]byte"`
	Type     uint32
	Inode    uint32
	Reserved []byte `struc:"[24]pad"`
}

type rawInode struct {
	Length uint32
	Blocks []uint32 `struc:"[1023]uint32"`
}

type inode struct {
	length uint32
	blocks []uint32
}

// Image is a boot block, inode blocks and data blocks held in memory.
type Image struct {
	entries []Dentry
	inodes  []*inode
	data    [][]byte
}

func unpackAt(r io.ReaderAt, off int64, size int64, v interface{}) error {
	return struc.UnpackWithOrder(io.NewSectionReader(r, off, size), v, binary.LittleEndian)
}

// Parse decodes an image.
func Parse(raw []byte) (*Image, error) {
	r := bytes.NewReader(raw)
	if len(raw) < BlockSize {
		return nil, errors.Wrap(ErrTruncated, "boot block")
	}
	var hdr bootHeader
	if err := unpackAt(r, 0, 64, &hdr); err != nil {
		return nil, errors.Wrap(err, "unpacking boot block")
	}
	if hdr.DirCount > MaxEntries {
		return nil, errors.Errorf("bad directory count %d", hdr.DirCount)
	}
	need := (1 + int64(hdr.InodeCount) + int64(hdr.DataCount)) * BlockSize
	if int64(len(raw)) < need {
		return nil, errors.Wrapf(ErrTruncated, "need %d bytes, have %d", need, len(raw))
	}
	img := &Image{}
	for i := 0; i < int(hdr.DirCount); i++ {
		var d rawDentry
		if err := unpackAt(r, int64(64+i*64), 64, &d); err != nil {
			return nil, errors.Wrapf(err, "unpacking dentry %d", i)
		}
		img.entries = append(img.entries, Dentry{
			Name:  strings.TrimRight(d.Name, "\x00"),
			Type:  FileType(d.Type),
			Inode: d.Inode,
		})
	}
	for i := 0; i < int(hdr.InodeCount); i++ {
		var ri rawInode
		if err := unpackAt(r, int64(1+i)*BlockSize, BlockSize, &ri); err != nil {
			return nil, errors.Wrapf(err, "unpacking inode %d", i)
		}
		if ri.Length > MaxBlocks*BlockSize {
			return nil, errors.Errorf("inode %d: bad length %d", i, ri.Length)
		}
		count := (ri.Length + BlockSize - 1) / BlockSize
		in := &inode{length: ri.Length, blocks: append([]uint32(nil), ri.Blocks[:count]...)}
		for _, b := range in.blocks {
			if b >= hdr.DataCount {
				return nil, errors.Wrapf(ErrBadBlock, "inode %d block %d", i, b)
			}
		}
		img.inodes = append(img.inodes, in)
	}
	base := (1 + int(hdr.InodeCount)) * BlockSize
	for i := 0; i < int(hdr.DataCount); i++ {
		block := make([]byte, BlockSize)
		copy(block, raw[base+i*BlockSize:])
		img.data = append(img.data, block)
	}
	return img, nil
}

func Open(path string) (*Image, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Parse(raw)
}

// Bytes encodes the image.
func (img *Image) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	order := binary.LittleEndian
	hdr := &bootHeader{
		DirCount:   uint32(len(img.entries)),
		InodeCount: uint32(len(img.inodes)),
		DataCount:  uint32(len(img.data)),
	}
	if err := struc.PackWithOrder(&buf, hdr, order); err != nil {
		return nil, errors.Wrap(err, "packing boot block")
	}
	for _, d := range img.entries {
		raw := &rawDentry{Name: d.Name, Type: uint32(d.Type), Inode: d.Inode}
		if err := struc.PackWithOrder(&buf, raw, order); err != nil {
			return nil, errors.Wrapf(err, "packing dentry %q", d.Name)
		}
	}
	buf.Write(make([]byte, BlockSize-buf.Len()))
	for _, in := range img.inodes {
		raw := &rawInode{Length: in.length, Blocks: make([]uint32, MaxBlocks)}
		copy(raw.Blocks, in.blocks)
		if err := struc.PackWithOrder(&buf, raw, order); err != nil {
			return nil, errors.Wrap(err, "packing inode")
		}
	}
	for _, block := range img.data {
		buf.Write(block)
	}
	return buf.Bytes(), nil
}

func (img *Image) Count() int {
	return len(img.entries)
}

func (img *Image) Entries() []Dentry {
	return append([]Dentry(nil), img.entries...)
}

func (img *Image) ResolveByName(name string) (Dentry, error) {
	if len(name) == 0 || len(name) > NameLen {
		return Dentry{}, ErrNotFound
	}
	for _, d := range img.entries {
		if d.Name == name {
			return d, nil
		}
	}
	return Dentry{}, ErrNotFound
}

func (img *Image) ResolveByIndex(i int) (Dentry, error) {
	if i < 0 || i >= len(img.entries) {
		return Dentry{}, ErrNotFound
	}
	return img.entries[i], nil
}

func (img *Image) inode(n uint32) (*inode, error) {
	if int(n) >= len(img.inodes) {
		return nil, errors.Wrapf(ErrBadInode, "inode %d", n)
	}
	return img.inodes[n], nil
}

func (img *Image) Len(n uint32) (uint32, error) {
	in, err := img.inode(n)
	if err != nil {
		return 0, err
	}
	return in.length, nil
}

func (img *Image) ReadBytes(n, offset uint32, p []byte) (int, error) {
	in, err := img.inode(n)
	if err != nil {
		return 0, err
	}
	if offset >= in.length {
		return 0, nil
	}
	if left := in.length - offset; uint32(len(p)) > left {
		p = p[:left]
	}
	total := 0
	for len(p) > 0 {
		b := in.blocks[offset/BlockSize]
		if int(b) >= len(img.data) {
			return total, errors.Wrapf(ErrBadBlock, "inode %d block %d", n, b)
		}
		c := copy(p, img.data[b][offset%BlockSize:])
		total += c
		offset += uint32(c)
		p = p[c:]
	}
	return total, nil
}

func (img *Image) used() map[uint32]bool {
	used := make(map[uint32]bool)
	for _, in := range img.inodes {
		for _, b := range in.blocks {
			used[b] = true
		}
	}
	return used
}

func (img *Image) allocBlock(used map[uint32]bool) (uint32, error) {
	for i := range img.data {
		if !used[uint32(i)] {
			used[uint32(i)] = true
			for j := range img.data[i] {
				img.data[i][j] = 0
			}
			return uint32(i), nil
		}
	}
	if len(img.data) >= MaxDataBlocks {
		return 0, ErrNoSpace
	}
	img.data = append(img.data, make([]byte, BlockSize))
	b := uint32(len(img.data) - 1)
	used[b] = true
	return b, nil
}

// WriteBytes writes p at offset, growing the file as needed.
func (img *Image) WriteBytes(n, offset uint32, p []byte) (int, error) {
	in, err := img.inode(n)
	if err != nil {
		return 0, err
	}
	end := uint64(offset) + uint64(len(p))
	if end > MaxBlocks*BlockSize {
		return 0, errors.Wrapf(ErrNoSpace, "inode %d", n)
	}
	used := img.used()
	for uint64(len(in.blocks))*BlockSize < end {
		b, err := img.allocBlock(used)
		if err != nil {
			return 0, err
		}
		in.blocks = append(in.blocks, b)
	}
	total := 0
	for len(p) > 0 {
		b := in.blocks[offset/BlockSize]
		c := copy(img.data[b][offset%BlockSize:], p)
		total += c
		offset += uint32(c)
		p = p[c:]
	}
	if uint32(end) > in.length {
		in.length = uint32(end)
	}
	return total, nil
}

// Truncate sets the file length, releasing blocks past the end.
func (img *Image) Truncate(n, size uint32) error {
	in, err := img.inode(n)
	if err != nil {
		return err
	}
	if size > in.length {
		if _, err := img.WriteBytes(n, in.length, make([]byte, size-in.length)); err != nil {
			return err
		}
	}
	in.length = size
	in.blocks = in.blocks[:(size+BlockSize-1)/BlockSize]
	return nil
}

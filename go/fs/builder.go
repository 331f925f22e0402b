package fs

import (
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/pkg/errors"
)

type buildFile struct {
	name string
	typ  FileType
	data []byte
}

// Builder assembles an image. "." is always the first entry; the rest are
// kept in natural name order.
type Builder struct {
	files map[string]*buildFile
}

func NewBuilder() *Builder {
	return &Builder{files: make(map[string]*buildFile)}
}

func (b *Builder) Add(name string, typ FileType, data []byte) error {
	if name == "" || len(name) > NameLen {
		return errors.Errorf("bad file name %q", name)
	}
	if _, ok := b.files[name]; !ok && len(b.files)+1 >= MaxEntries {
		return errors.Errorf("too many files adding %q", name)
	}
	if len(data) > MaxBlocks*BlockSize {
		return errors.Wrapf(ErrNoSpace, "file %q", name)
	}
	b.files[name] = &buildFile{name, typ, data}
	return nil
}

func (b *Builder) AddFile(name string, data []byte) error {
	return b.Add(name, TypeRegular, data)
}

func (b *Builder) Build() (*Image, error) {
	var names []string
	for name := range b.files {
		if name != "." {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return sortorder.NaturalLess(names[i], names[j]) })

	img := &Image{entries: []Dentry{{Name: ".", Type: TypeDir}}}
	used := make(map[uint32]bool)
	for _, name := range names {
		f := b.files[name]
		d := Dentry{Name: name, Type: f.typ}
		if f.typ == TypeRegular {
			d.Inode = uint32(len(img.inodes))
			img.inodes = append(img.inodes, &inode{})
		}
		img.entries = append(img.entries, d)
	}
	for _, d := range img.entries {
		if d.Type != TypeRegular {
			continue
		}
		data := b.files[d.Name].data
		in := img.inodes[d.Inode]
		for off := 0; off < len(data); off += BlockSize {
			blk, err := img.allocBlock(used)
			if err != nil {
				return nil, err
			}
			copy(img.data[blk], data[off:])
			in.blocks = append(in.blocks, blk)
		}
		in.length = uint32(len(data))
	}
	return img, nil
}

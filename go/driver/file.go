package driver

import (
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/fs"
)

// FileDriver serves regular files from the file system image.
type FileDriver struct {
	FS fs.FileSystem
}

func (d *FileDriver) Open(name string) error {
	return nil
}

func (d *FileDriver) Read(inode uint32, buf []byte, off uint32) (int, error) {
	return d.FS.ReadBytes(inode, off, buf)
}

// Write replaces the whole file with buf.
func (d *FileDriver) Write(inode uint32, buf []byte) (int, error) {
	n, err := d.FS.WriteBytes(inode, 0, buf)
	if err != nil {
		return -1, err
	}
	if err := d.FS.Truncate(inode, uint32(n)); err != nil {
		return -1, err
	}
	return n, nil
}

func (d *FileDriver) Close(inode uint32) error {
	return nil
}

// DirDriver presents the directory as a stream of fixed-size name records.
type DirDriver struct {
	FS fs.FileSystem
}

func (d *DirDriver) Open(name string) error {
	return nil
}

// Read returns the rest of the record the cursor points into.
func (d *DirDriver) Read(_ uint32, buf []byte, off uint32) (int, error) {
	index, within := int(off/fs.NameLen), int(off%fs.NameLen)
	if index >= d.FS.Count() {
		return 0, nil
	}
	dent, err := d.FS.ResolveByIndex(index)
	if err != nil {
		return -1, err
	}
	var rec [fs.NameLen]byte
	copy(rec[:], dent.Name)
	return copy(buf, rec[within:]), nil
}

func (d *DirDriver) Write(uint32, []byte) (int, error) {
	return -1, errors.Wrap(ErrUnsupported, "write to directory")
}

func (d *DirDriver) Close(uint32) error {
	return nil
}

package user

import (
	"hash/fnv"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/loader"
)

// Program is a native user program. Its return value is the exit status.
type Program func(p *Proc) int32

type Entry struct {
	Name  string
	Entry uint32
	Main  Program
}

var registry = struct {
	sync.Mutex
	byEntry map[uint32]*Entry
	byName  map[string]*Entry
}{
	byEntry: make(map[uint32]*Entry),
	byName:  make(map[string]*Entry),
}

const (
	codeBase = loader.LoadAddr + 0x1000
	codeSpan = 0x100000
)

func entryFor(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return (codeBase + h.Sum32()%codeSpan) &^ 0xF
}

// Register binds main to an entry point derived from name, which stays the
// same across runs so images built earlier keep working.
func Register(name string, main Program) uint32 {
	registry.Lock()
	defer registry.Unlock()
	if e, ok := registry.byName[name]; ok {
		e.Main = main
		return e.Entry
	}
	entry := entryFor(name)
	for registry.byEntry[entry] != nil {
		entry += 0x10
	}
	e := &Entry{Name: name, Entry: entry, Main: main}
	registry.byEntry[entry] = e
	registry.byName[name] = e
	return entry
}

// Lookup finds the program starting at entry.
func Lookup(entry uint32) (*Entry, bool) {
	registry.Lock()
	defer registry.Unlock()
	e, ok := registry.byEntry[entry]
	return e, ok
}

func Programs() []*Entry {
	registry.Lock()
	defer registry.Unlock()
	out := make([]*Entry, 0, len(registry.byName))
	for _, e := range registry.byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Image is the executable file for a registered program.
func Image(name string) ([]byte, error) {
	registry.Lock()
	e, ok := registry.byName[name]
	registry.Unlock()
	if !ok {
		return nil, errors.Errorf("no program named %q", name)
	}
	return loader.Build(e.Entry, []byte(name))
}

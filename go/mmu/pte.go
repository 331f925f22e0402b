package mmu

// EntryFlag is a flag bit of a page directory or page table entry.
type EntryFlag uint32

const (
	FlagPresent EntryFlag = 1 << iota
	FlagRW
	FlagUser
	FlagWriteThrough
	FlagCacheDisable
	FlagAccessed
	FlagDirty
	// directory entries only: the entry maps a 4MB page directly
	FlagHugePage
	FlagGlobal
)

const (
	smallFrameMask = 0xFFFFF000
	hugeFrameMask  = 0xFFC00000
)

// entry is an i386 directory or table entry: a frame address plus flags.
type entry uint32

func (e entry) HasFlags(flags EntryFlag) bool {
	return uint32(e)&uint32(flags) == uint32(flags)
}

func (e *entry) SetFlags(flags EntryFlag) {
	*e = entry(uint32(*e) | uint32(flags))
}

func (e *entry) ClearFlags(flags EntryFlag) {
	*e = entry(uint32(*e) &^ uint32(flags))
}

// Frame returns the physical address this entry points to.
func (e entry) Frame() uint32 {
	if e.HasFlags(FlagHugePage) {
		return uint32(e) & hugeFrameMask
	}
	return uint32(e) & smallFrameMask
}

func (e *entry) SetFrame(addr uint32) {
	mask := uint32(smallFrameMask)
	if e.HasFlags(FlagHugePage) {
		mask = hugeFrameMask
	}
	*e = entry(uint32(*e)&^mask | addr&mask)
}

func (e entry) flagString() string {
	out := []byte("---")
	if e.HasFlags(FlagPresent) {
		out[0] = 'r'
	}
	if e.HasFlags(FlagRW) {
		out[1] = 'w'
	}
	if e.HasFlags(FlagUser) {
		out[2] = 'u'
	}
	return string(out)
}

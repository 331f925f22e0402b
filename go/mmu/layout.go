package mmu

const (
	PageSize      = 0x1000
	LargePageSize = 0x400000

	VideoAddr = 0xB8000
	// one offscreen page per terminal follows the live video page
	MaxOffscreen = 3

	KernelBase = LargePageSize

	// every process sees its image in the same 4MB window
	UserBase   = 0x08000000
	UserEnd    = UserBase + LargePageSize
	VidmapAddr = 0x08800000
)

const (
	lowDir    = 0
	kernelDir = KernelBase >> 22
	userDir   = UserBase >> 22
	vidmapDir = VidmapAddr >> 22
)

// FrameAddr is the physical address of process id's 4MB frame. User frames
// start at 8MB, right after the kernel page.
func FrameAddr(id int) uint32 {
	return uint32(id+1) * LargePageSize
}

// Display selects which physical page backs the video address.
type Display int

// Live is the physical display.
const Live Display = -1

// Offscreen is the backing page of a terminal that is not on screen.
func Offscreen(term int) Display {
	return Display(term)
}

func (d Display) Addr() uint32 {
	if d == Live {
		return VideoAddr
	}
	return VideoAddr + PageSize*uint32(d+1)
}

func (d Display) String() string {
	if d == Live {
		return "live"
	}
	return "offscreen" + string(rune('0'+int(d)))
}

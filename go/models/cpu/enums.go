package cpu

// register file of the simulated i386
const (
	EAX = iota
	EBX
	ECX
	EDX
	ESI
	EDI
	EBP
	ESP
	EIP
	EFLAGS
	CS
	DS
	ES
	SS
	NumRegs
)

var RegNames = [NumRegs]string{
	"eax", "ebx", "ecx", "edx", "esi", "edi", "ebp", "esp",
	"eip", "eflags", "cs", "ds", "es", "ss",
}

// segment selectors installed by the bootstrap GDT
const (
	KernelCS = 0x10
	KernelDS = 0x18
	UserCS   = 0x23
	UserDS   = 0x2B
)

const (
	FlagReserved = 1 << 1
	FlagIF       = 1 << 9
)

const (
	MEM_READ_UNMAPPED = iota + 1
	MEM_WRITE_UNMAPPED
)

const (
	HOOK_INTR = 1 << iota
	HOOK_MEM_ERR
)

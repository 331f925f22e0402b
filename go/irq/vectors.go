package irq

// exception vectors
const (
	DivideError = iota
	Debug
	NMI
	Breakpoint
	Overflow
	BoundRange
	InvalidOpcode
	DeviceNotAvailable
	DoubleFault
	CoprocessorSegmentOverrun
	InvalidTSS
	SegmentNotPresent
	StackSegmentFault
	GeneralProtection
	PageFault
	AssertionFailure
	FloatingPoint
	AlignmentCheck
	MachineCheck

	NumExceptions
)

// hardware and software vectors
const (
	Timer    = 0x20
	Keyboard = 0x21
	RTC      = 0x28
	Syscall  = 0x80
)

// interrupt request lines
const (
	IRQTimer    = 0
	IRQKeyboard = 1
	IRQCascade  = 2
	IRQRTC      = 8
)

var ExceptionNames = [NumExceptions]string{
	"Division Error",
	"Intel Reserved Exception 1",
	"Non-Maskable Interrupt",
	"Breakpoint",
	"Overflow",
	"Bound Range Exceeded",
	"Invalid Opcode",
	"Device Not Available",
	"Double Fault",
	"Coprocessor Segment Overrun",
	"Invalid TSS",
	"Segment Not Present",
	"Stack-Segment Fault",
	"General Protection Fault",
	"Page Fault",
	"Assertion Failure",
	"x87 FPU Floating-Point Error (Math Fault)",
	"Alignment Check",
	"Machine Check",
}

// exceptions that push an error code
var hasErrorCode = map[uint8]bool{
	DoubleFault:       true,
	InvalidTSS:        true,
	SegmentNotPresent: true,
	StackSegmentFault: true,
	GeneralProtection: true,
	PageFault:         true,
	AlignmentCheck:    true,
}

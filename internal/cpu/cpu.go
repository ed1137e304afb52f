// Package cpu implements the Ricoh 2A03 (6502 core, binary mode only) used in the NES.
package cpu

import "fmt"

const (
	// Stack lives in page 1
	stackBase = 0x0100
	// Status register bit masks
	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01
	// Zero page mask
	zeroPageMask = 0xFF
	// Page boundary mask
	pageMask = 0xFF00
	// Interrupt vectors
	irqVector   = 0xFFFE
	resetVector = 0xFFFC
)

// Memory is the bus capability the CPU depends on. The core never assumes
// how addresses decode; it owns no memory of its own beyond the register file.
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU holds the 2A03 register file and flag state.
type CPU struct {
	A  uint8  // Accumulator
	X  uint8  // X register
	Y  uint8  // Y register
	SP uint8  // Stack pointer, offset into page 1
	PC uint16 // Program counter

	// Status register flags. The unused bit always reads as 1, see Status.
	C bool // Carry
	Z bool // Zero
	I bool // Interrupt disable
	D bool // Decimal mode (no effect on the 2A03)
	B bool // Break
	V bool // Overflow
	N bool // Negative

	mem    Memory
	cycles uint64
}

// UnknownOpcodeError reports a fetched byte with no instruction mapping.
// Decoding cannot guess intended behavior, so the step loop halts.
type UnknownOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}

// New creates a CPU attached to the given bus. The bus must be fully
// initialized before the first Step.
func New(mem Memory) *CPU {
	return &CPU{
		mem: mem,
		SP:  0xFD,
	}
}

// Reset puts the register file into its architectural power-up state and
// loads PC from the reset vector. The reset sequence accounts 7 cycles,
// which is where the reference log's cycle counter starts.
func (cpu *CPU) Reset() {
	cpu.A = 0x00
	cpu.X = 0x00
	cpu.Y = 0x00
	cpu.SP = 0xFD
	cpu.setStatus(iFlagMask) // P reads back as 0x24

	low := uint16(cpu.mem.Read(resetVector))
	high := uint16(cpu.mem.Read(resetVector + 1))
	cpu.PC = (high << 8) | low

	cpu.cycles = 7
}

// SetPC overrides the program counter, for test-harness entry points that
// bypass the reset vector (nestest starts at 0xC000).
func (cpu *CPU) SetPC(pc uint16) {
	cpu.PC = pc
}

// Cycles returns the cumulative cycle count.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// Step executes one instruction: fetch, decode, resolve the operand,
// execute, and account cycles. It returns the cycles consumed. The only
// failure is decode of an unmapped opcode byte, which leaves the register
// file untouched.
func (cpu *CPU) Step() (uint64, error) {
	opcode := cpu.mem.Read(cpu.PC)
	inst := Decode(opcode)
	if inst == nil {
		return 0, &UnknownOpcodeError{Opcode: opcode, PC: cpu.PC}
	}

	op := cpu.resolveOperand(inst.Mode)
	extra := cpu.execute(inst, op)

	// The page-cross penalty is an opcode property, not an addressing-mode
	// property: loads charge it, stores and read-modify-write forms do not.
	if op.PageCrossed && inst.PageCycle {
		extra++
	}

	total := uint64(inst.Cycles) + uint64(extra)
	cpu.cycles += total
	return total, nil
}

// Stack operations. SP arithmetic wraps modulo 256 so the stack never
// leaves page 1.
func (cpu *CPU) push(value uint8) {
	cpu.mem.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.mem.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value & 0xFF))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}

// setZN sets Zero and Negative from a result byte.
func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = (value & nFlagMask) != 0
}

// Status returns the status register as a byte. The unused bit always
// reads as 1.
func (cpu *CPU) Status() uint8 {
	status := uint8(unusedMask)
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	if cpu.B {
		status |= bFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// setStatus sets all flags from a byte.
func (cpu *CPU) setStatus(status uint8) {
	cpu.N = (status & nFlagMask) != 0
	cpu.V = (status & vFlagMask) != 0
	cpu.B = (status & bFlagMask) != 0
	cpu.D = (status & dFlagMask) != 0
	cpu.I = (status & iFlagMask) != 0
	cpu.Z = (status & zFlagMask) != 0
	cpu.C = (status & cFlagMask) != 0
}

// setStatusFromStack restores flags from a pulled status byte. The break
// bit is a push-time artifact, not CPU state, so PLP and RTI discard it.
func (cpu *CPU) setStatusFromStack(status uint8) {
	cpu.setStatus(status &^ bFlagMask)
}

// readWord reads a little-endian word at addr.
func (cpu *CPU) readWord(addr uint16) uint16 {
	low := uint16(cpu.mem.Read(addr))
	high := uint16(cpu.mem.Read(addr + 1))
	return (high << 8) | low
}

// readWordZeroPage reads a little-endian word from the zero page, with the
// pointer's second byte wrapping within the page.
func (cpu *CPU) readWordZeroPage(ptr uint8) uint16 {
	low := uint16(cpu.mem.Read(uint16(ptr)))
	high := uint16(cpu.mem.Read(uint16(ptr + 1)))
	return (high << 8) | low
}

// readWordPageWrap reads a little-endian word without carrying the pointer
// increment into the high byte. This is the hardware's indirect-JMP bug:
// a pointer at 0x02FF fetches its high byte from 0x0200, not 0x0300.
func (cpu *CPU) readWordPageWrap(addr uint16) uint16 {
	low := uint16(cpu.mem.Read(addr))
	high := uint16(cpu.mem.Read((addr & pageMask) | uint16(uint8(addr)+1)))
	return (high << 8) | low
}

package cpu

// AddressingMode selects the rule for computing an instruction's operand
// location from the bytes following the opcode.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

// Operand is the transient result of addressing-mode resolution: the
// effective address (or branch target), and whether the computation crossed
// a page boundary. The page-cross signal is only charged by instructions
// whose descriptor says so.
type Operand struct {
	Address     uint16
	Mode        AddressingMode
	PageCrossed bool
}

// resolveOperand computes the effective address for the given mode and
// advances PC past the full instruction. Branch adjustment, if any, happens
// later in the executor.
func (cpu *CPU) resolveOperand(mode AddressingMode) Operand {
	op := Operand{Mode: mode}

	switch mode {
	case Implied, Accumulator:
		cpu.PC += 1

	case Immediate:
		op.Address = cpu.PC + 1
		cpu.PC += 2

	case ZeroPage:
		op.Address = uint16(cpu.mem.Read(cpu.PC + 1))
		cpu.PC += 2

	case ZeroPageX:
		base := cpu.mem.Read(cpu.PC + 1)
		op.Address = uint16(base+cpu.X) & zeroPageMask // wraps within the zero page
		cpu.PC += 2

	case ZeroPageY:
		base := cpu.mem.Read(cpu.PC + 1)
		op.Address = uint16(base+cpu.Y) & zeroPageMask // wraps within the zero page
		cpu.PC += 2

	case Relative:
		// Signed displacement from the address following the instruction.
		offset := int8(cpu.mem.Read(cpu.PC + 1))
		next := cpu.PC + 2
		target := next + uint16(int16(offset))
		cpu.PC = next
		op.Address = target
		op.PageCrossed = (next & pageMask) != (target & pageMask)

	case Absolute:
		op.Address = cpu.readWord(cpu.PC + 1)
		cpu.PC += 3

	case AbsoluteX:
		base := cpu.readWord(cpu.PC + 1)
		op.Address = base + uint16(cpu.X)
		op.PageCrossed = (base & pageMask) != (op.Address & pageMask)
		cpu.PC += 3

	case AbsoluteY:
		base := cpu.readWord(cpu.PC + 1)
		op.Address = base + uint16(cpu.Y)
		op.PageCrossed = (base & pageMask) != (op.Address & pageMask)
		cpu.PC += 3

	case Indirect: // JMP only, with the page-wrap hardware bug
		ptr := cpu.readWord(cpu.PC + 1)
		op.Address = cpu.readWordPageWrap(ptr)
		cpu.PC += 3

	case IndexedIndirect: // (zp,X)
		base := cpu.mem.Read(cpu.PC + 1)
		op.Address = cpu.readWordZeroPage(base + cpu.X)
		cpu.PC += 2

	case IndirectIndexed: // (zp),Y
		ptr := cpu.mem.Read(cpu.PC + 1)
		base := cpu.readWordZeroPage(ptr)
		op.Address = base + uint16(cpu.Y)
		op.PageCrossed = (base & pageMask) != (op.Address & pageMask)
		cpu.PC += 2
	}

	return op
}

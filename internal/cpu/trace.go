package cpu

import (
	"fmt"
	"strings"
)

// TraceRecord captures CPU state at the moment an instruction is about to
// execute: PC at fetch time, the raw instruction bytes, the disassembled
// text, the register file, and the cumulative cycle count before this
// instruction's cycles are added.
type TraceRecord struct {
	PC      uint16
	Bytes   []uint8
	Disasm  string
	Illegal bool
	A       uint8
	X       uint8
	Y       uint8
	P       uint8
	SP      uint8
	Cycles  uint64
}

// Trace builds a trace record for the instruction at the current PC without
// executing it. The record's bus reads assume a side-effect-free bus; a
// system with readable I/O registers would need a dedicated peek.
func (cpu *CPU) Trace() (TraceRecord, error) {
	opcode := cpu.mem.Read(cpu.PC)
	inst := Decode(opcode)
	if inst == nil {
		return TraceRecord{}, &UnknownOpcodeError{Opcode: opcode, PC: cpu.PC}
	}

	bytes := make([]uint8, inst.Size)
	for i := range bytes {
		bytes[i] = cpu.mem.Read(cpu.PC + uint16(i))
	}

	return TraceRecord{
		PC:      cpu.PC,
		Bytes:   bytes,
		Disasm:  cpu.disassemble(inst),
		Illegal: inst.Illegal,
		A:       cpu.A,
		X:       cpu.X,
		Y:       cpu.Y,
		P:       cpu.Status(),
		SP:      cpu.SP,
		Cycles:  cpu.cycles,
	}, nil
}

// String renders the record in the reference log's line format:
//
//	C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 SP:FD CYC:7
//
// Undocumented opcodes carry a * in the column before the mnemonic.
func (r TraceRecord) String() string {
	parts := make([]string, len(r.Bytes))
	for i, b := range r.Bytes {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	marker := " "
	if r.Illegal {
		marker = "*"
	}
	return fmt.Sprintf("%04X  %-8s %s%-32sA:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		r.PC, strings.Join(parts, " "), marker, r.Disasm,
		r.A, r.X, r.Y, r.P, r.SP, r.Cycles)
}

// disassemble renders the instruction at PC with the operand annotations the
// reference log uses: effective addresses after indexing, and the value
// currently at the addressed location.
func (cpu *CPU) disassemble(inst *Instruction) string {
	mnemonic := inst.Mnemonic.String()
	pc := cpu.PC

	switch inst.Mode {
	case Implied:
		return mnemonic

	case Accumulator:
		return mnemonic + " A"

	case Immediate:
		return fmt.Sprintf("%s #$%02X", mnemonic, cpu.mem.Read(pc+1))

	case ZeroPage:
		addr := cpu.mem.Read(pc + 1)
		return fmt.Sprintf("%s $%02X = %02X", mnemonic, addr, cpu.mem.Read(uint16(addr)))

	case ZeroPageX:
		addr := cpu.mem.Read(pc + 1)
		effective := addr + cpu.X
		return fmt.Sprintf("%s $%02X,X @ %02X = %02X",
			mnemonic, addr, effective, cpu.mem.Read(uint16(effective)))

	case ZeroPageY:
		addr := cpu.mem.Read(pc + 1)
		effective := addr + cpu.Y
		return fmt.Sprintf("%s $%02X,Y @ %02X = %02X",
			mnemonic, addr, effective, cpu.mem.Read(uint16(effective)))

	case Absolute:
		addr := cpu.readWord(pc + 1)
		// Jump targets are code, not data; no value annotation.
		if inst.Mnemonic == JMP || inst.Mnemonic == JSR {
			return fmt.Sprintf("%s $%04X", mnemonic, addr)
		}
		return fmt.Sprintf("%s $%04X = %02X", mnemonic, addr, cpu.mem.Read(addr))

	case AbsoluteX:
		addr := cpu.readWord(pc + 1)
		effective := addr + uint16(cpu.X)
		return fmt.Sprintf("%s $%04X,X @ %04X = %02X",
			mnemonic, addr, effective, cpu.mem.Read(effective))

	case AbsoluteY:
		addr := cpu.readWord(pc + 1)
		effective := addr + uint16(cpu.Y)
		return fmt.Sprintf("%s $%04X,Y @ %04X = %02X",
			mnemonic, addr, effective, cpu.mem.Read(effective))

	case Indirect:
		ptr := cpu.readWord(pc + 1)
		return fmt.Sprintf("%s ($%04X) = %04X", mnemonic, ptr, cpu.readWordPageWrap(ptr))

	case IndexedIndirect:
		base := cpu.mem.Read(pc + 1)
		ptr := base + cpu.X
		addr := cpu.readWordZeroPage(ptr)
		return fmt.Sprintf("%s ($%02X,X) @ %02X = %04X = %02X",
			mnemonic, base, ptr, addr, cpu.mem.Read(addr))

	case IndirectIndexed:
		base := cpu.mem.Read(pc + 1)
		addr := cpu.readWordZeroPage(base)
		effective := addr + uint16(cpu.Y)
		return fmt.Sprintf("%s ($%02X),Y = %04X @ %04X = %02X",
			mnemonic, base, addr, effective, cpu.mem.Read(effective))

	case Relative:
		offset := int8(cpu.mem.Read(pc + 1))
		target := pc + 2 + uint16(int16(offset))
		return fmt.Sprintf("%s $%04X", mnemonic, target)
	}

	return mnemonic
}

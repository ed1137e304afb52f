package cpu

// execute applies the semantic effect of a decoded instruction. PC has
// already advanced past the instruction bytes; branches adjust it here.
// The return value is the extra cycles owed by taken branches; the
// page-cross penalty is settled by the caller from the descriptor.
func (cpu *CPU) execute(inst *Instruction, op Operand) uint8 {
	switch inst.Mnemonic {
	case LDA:
		cpu.A = cpu.mem.Read(op.Address)
		cpu.setZN(cpu.A)
	case LDX:
		cpu.X = cpu.mem.Read(op.Address)
		cpu.setZN(cpu.X)
	case LDY:
		cpu.Y = cpu.mem.Read(op.Address)
		cpu.setZN(cpu.Y)

	case STA:
		cpu.mem.Write(op.Address, cpu.A)
	case STX:
		cpu.mem.Write(op.Address, cpu.X)
	case STY:
		cpu.mem.Write(op.Address, cpu.Y)

	case TAX:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case TAY:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case TSX:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case TXA:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case TXS:
		cpu.SP = cpu.X
	case TYA:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)

	case ADC:
		cpu.adc(cpu.mem.Read(op.Address))
	case SBC:
		cpu.sbc(cpu.mem.Read(op.Address))

	case AND:
		cpu.A &= cpu.mem.Read(op.Address)
		cpu.setZN(cpu.A)
	case ORA:
		cpu.A |= cpu.mem.Read(op.Address)
		cpu.setZN(cpu.A)
	case EOR:
		cpu.A ^= cpu.mem.Read(op.Address)
		cpu.setZN(cpu.A)

	case ASL:
		cpu.modify(op, cpu.asl)
	case LSR:
		cpu.modify(op, cpu.lsr)
	case ROL:
		cpu.modify(op, cpu.rol)
	case ROR:
		cpu.modify(op, cpu.ror)

	case CMP:
		cpu.compare(cpu.A, cpu.mem.Read(op.Address))
	case CPX:
		cpu.compare(cpu.X, cpu.mem.Read(op.Address))
	case CPY:
		cpu.compare(cpu.Y, cpu.mem.Read(op.Address))

	case INC:
		value := cpu.mem.Read(op.Address) + 1
		cpu.mem.Write(op.Address, value)
		cpu.setZN(value)
	case DEC:
		value := cpu.mem.Read(op.Address) - 1
		cpu.mem.Write(op.Address, value)
		cpu.setZN(value)
	case INX:
		cpu.X++
		cpu.setZN(cpu.X)
	case INY:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case DEX:
		cpu.X--
		cpu.setZN(cpu.X)
	case DEY:
		cpu.Y--
		cpu.setZN(cpu.Y)

	case PHA:
		cpu.push(cpu.A)
	case PLA:
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case PHP:
		// Pushed status always carries the break and unused bits.
		cpu.push(cpu.Status() | bFlagMask)
	case PLP:
		cpu.setStatusFromStack(cpu.pop())

	case CLC:
		cpu.C = false
	case SEC:
		cpu.C = true
	case CLI:
		cpu.I = false
	case SEI:
		cpu.I = true
	case CLV:
		cpu.V = false
	case CLD:
		cpu.D = false
	case SED:
		cpu.D = true

	case JMP:
		cpu.PC = op.Address
	case JSR:
		// The pushed return address is one before the next instruction.
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = op.Address
	case RTS:
		cpu.PC = cpu.popWord() + 1
	case RTI:
		cpu.setStatusFromStack(cpu.pop())
		cpu.PC = cpu.popWord()
	case BRK:
		// BRK pushes the address of the byte after its padding byte.
		cpu.PC++
		cpu.pushWord(cpu.PC)
		cpu.push(cpu.Status() | bFlagMask)
		cpu.I = true
		cpu.PC = cpu.readWord(irqVector)

	case BCC:
		return cpu.branch(op, !cpu.C)
	case BCS:
		return cpu.branch(op, cpu.C)
	case BNE:
		return cpu.branch(op, !cpu.Z)
	case BEQ:
		return cpu.branch(op, cpu.Z)
	case BPL:
		return cpu.branch(op, !cpu.N)
	case BMI:
		return cpu.branch(op, cpu.N)
	case BVC:
		return cpu.branch(op, !cpu.V)
	case BVS:
		return cpu.branch(op, cpu.V)

	case BIT:
		value := cpu.mem.Read(op.Address)
		cpu.N = (value & nFlagMask) != 0
		cpu.V = (value & vFlagMask) != 0
		cpu.Z = (cpu.A & value) == 0

	case NOP:
		// Multi-byte NOP forms still resolved their operand; nothing else.

	case LAX:
		cpu.A = cpu.mem.Read(op.Address)
		cpu.X = cpu.A
		cpu.setZN(cpu.A)
	case SAX:
		cpu.mem.Write(op.Address, cpu.A&cpu.X)
	case DCP:
		value := cpu.mem.Read(op.Address) - 1
		cpu.mem.Write(op.Address, value)
		cpu.compare(cpu.A, value)
	case ISB:
		value := cpu.mem.Read(op.Address) + 1
		cpu.mem.Write(op.Address, value)
		cpu.sbc(value)
	case SLO:
		value := cpu.asl(cpu.mem.Read(op.Address))
		cpu.mem.Write(op.Address, value)
		cpu.A |= value
		cpu.setZN(cpu.A)
	case RLA:
		value := cpu.rol(cpu.mem.Read(op.Address))
		cpu.mem.Write(op.Address, value)
		cpu.A &= value
		cpu.setZN(cpu.A)
	case SRE:
		value := cpu.lsr(cpu.mem.Read(op.Address))
		cpu.mem.Write(op.Address, value)
		cpu.A ^= value
		cpu.setZN(cpu.A)
	case RRA:
		value := cpu.ror(cpu.mem.Read(op.Address))
		cpu.mem.Write(op.Address, value)
		cpu.adc(value)
	}

	return 0
}

// adc adds value and carry into the accumulator. Binary mode only; the
// decimal flag is ignored on this chip.
func (cpu *CPU) adc(value uint8) {
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}
	sum := uint16(cpu.A) + uint16(value) + carry
	result := uint8(sum)

	// Signed overflow: both operands share a sign the result does not.
	cpu.V = (cpu.A^result)&(value^result)&nFlagMask != 0
	cpu.C = sum > 0xFF
	cpu.A = result
	cpu.setZN(result)
}

// sbc is ADC with the operand inverted.
func (cpu *CPU) sbc(value uint8) {
	cpu.adc(value ^ 0xFF)
}

// compare computes reg - value for flag effects only.
func (cpu *CPU) compare(reg, value uint8) {
	cpu.C = reg >= value
	cpu.setZN(reg - value)
}

// modify applies a shift or rotate to the accumulator or to memory,
// depending on the addressing mode. Memory forms read then write the
// same address.
func (cpu *CPU) modify(op Operand, f func(uint8) uint8) {
	if op.Mode == Accumulator {
		cpu.A = f(cpu.A)
		cpu.setZN(cpu.A)
		return
	}
	value := f(cpu.mem.Read(op.Address))
	cpu.mem.Write(op.Address, value)
	cpu.setZN(value)
}

func (cpu *CPU) asl(value uint8) uint8 {
	cpu.C = (value & 0x80) != 0
	return value << 1
}

func (cpu *CPU) lsr(value uint8) uint8 {
	cpu.C = (value & 0x01) != 0
	return value >> 1
}

func (cpu *CPU) rol(value uint8) uint8 {
	carryIn := uint8(0)
	if cpu.C {
		carryIn = 1
	}
	cpu.C = (value & 0x80) != 0
	return value<<1 | carryIn
}

func (cpu *CPU) ror(value uint8) uint8 {
	carryIn := uint8(0)
	if cpu.C {
		carryIn = 0x80
	}
	cpu.C = (value & 0x01) != 0
	return value>>1 | carryIn
}

// branch moves PC to the resolved target when the condition holds.
// Taken costs one extra cycle, two when the target is on another page.
func (cpu *CPU) branch(op Operand, taken bool) uint8 {
	if !taken {
		return 0
	}
	cpu.PC = op.Address
	if op.PageCrossed {
		return 2
	}
	return 1
}

// Package bus implements the NES CPU memory map the core reads and writes
// through.
package bus

import (
	"github.com/azmine-1/nurst/internal/cartridge"
)

// Address map constants
const (
	ramEnd          = 0x1FFF
	ppuRegisters    = 0x2000
	ppuRegistersEnd = 0x3FFF
	apuIOStart      = 0x4000
	apuIOEnd        = 0x4017
	prgRAMStart     = 0x6000
	prgRAMEnd       = 0x7FFF
	romStart        = 0x8000
)

// Bus decodes CPU addresses into internal RAM, register pages, PRG RAM and
// the cartridge window. With no PPU or APU attached, the register pages are
// plain latches with no side effects.
type Bus struct {
	ram    [0x0800]uint8 // 2KB internal RAM, mirrored through 0x1FFF
	ppuReg [8]uint8      // mirrored every 8 bytes through 0x3FFF
	apuIO  [0x18]uint8
	prgRAM [0x2000]uint8

	// rom backs the cartridge window for harness images loaded without an
	// iNES file. A real cartridge, once attached, takes precedence.
	rom  [0x8000]uint8
	cart *cartridge.Cartridge
}

// New creates a bus with all memory zeroed and no cartridge.
func New() *Bus {
	return &Bus{}
}

// AttachCartridge maps a cartridge into 0x8000-0xFFFF.
func (b *Bus) AttachCartridge(cart *cartridge.Cartridge) {
	b.cart = cart
}

// Read returns the byte at address. Unmapped regions read as open bus zero.
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address <= ramEnd:
		return b.ram[address&0x07FF]
	case address <= ppuRegistersEnd:
		return b.ppuReg[address&0x0007]
	case address <= apuIOEnd:
		return b.apuIO[address-apuIOStart]
	case address >= prgRAMStart && address <= prgRAMEnd:
		return b.prgRAM[address-prgRAMStart]
	case address >= romStart:
		if b.cart != nil {
			return b.cart.ReadPRG(address)
		}
		return b.rom[address-romStart]
	default:
		return 0
	}
}

// Write stores value at address. Writes into a mapped cartridge are ignored;
// NROM has no writable PRG.
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address <= ramEnd:
		b.ram[address&0x07FF] = value
	case address <= ppuRegistersEnd:
		b.ppuReg[address&0x0007] = value
	case address <= apuIOEnd:
		b.apuIO[address-apuIOStart] = value
	case address >= prgRAMStart && address <= prgRAMEnd:
		b.prgRAM[address-prgRAMStart] = value
	case address >= romStart:
		if b.cart == nil {
			b.rom[address-romStart] = value
		}
	}
}

// Load copies a raw program image into the address space starting at
// origin, for test-harness programs that bypass cartridge loading. Bytes
// landing in the cartridge window go straight into the backing ROM array.
func (b *Bus) Load(origin uint16, program []uint8) {
	for i, value := range program {
		address := origin + uint16(i)
		if address >= romStart && b.cart == nil {
			b.rom[address-romStart] = value
			continue
		}
		b.Write(address, value)
	}
}

// Package cartridge implements iNES ROM image parsing and NROM PRG mapping.
package cartridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrInvalidFormat means the image does not start with the iNES tag.
	ErrInvalidFormat = errors.New("not an iNES file")
	// ErrUnsupportedVersion means the header declares iNES 2.0.
	ErrUnsupportedVersion = errors.New("iNES 2.0 is not supported")
	// ErrUnsupportedMapper means the image needs a mapper other than NROM.
	ErrUnsupportedMapper = errors.New("unsupported mapper")
)

// Mirroring is the nametable mirroring mode declared by the header. The CPU
// core never consults it; it is parsed for completeness of the container.
type Mirroring uint8

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorFourScreen
)

const (
	prgPageSize = 16384
	chrPageSize = 8192
)

// iNES file header
type header struct {
	Magic   [4]uint8
	PRGSize uint8 // in 16KB units
	CHRSize uint8 // in 8KB units
	Flags6  uint8
	Flags7  uint8
	_       [8]uint8
}

// Cartridge holds a parsed NROM image.
type Cartridge struct {
	prg       []uint8
	chr       []uint8
	mapper    uint8
	mirroring Mirroring
}

// LoadFile opens and parses an iNES file.
func LoadFile(path string) (*Cartridge, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ROM: %w", err)
	}
	defer file.Close()

	cart, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cart, nil
}

// Load parses an iNES image from r.
func Load(r io.Reader) (*Cartridge, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if string(h.Magic[:]) != "NES\x1A" {
		return nil, ErrInvalidFormat
	}
	if (h.Flags7>>2)&0x03 != 0 {
		return nil, ErrUnsupportedVersion
	}
	if h.PRGSize == 0 {
		return nil, errors.New("PRG ROM size cannot be zero")
	}

	cart := &Cartridge{
		mapper: (h.Flags7 & 0xF0) | (h.Flags6 >> 4),
	}
	if cart.mapper != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, cart.mapper)
	}

	switch {
	case h.Flags6&0x08 != 0:
		cart.mirroring = MirrorFourScreen
	case h.Flags6&0x01 != 0:
		cart.mirroring = MirrorVertical
	default:
		cart.mirroring = MirrorHorizontal
	}

	// Trainer data, if present, sits between the header and PRG ROM.
	if h.Flags6&0x04 != 0 {
		if _, err := io.CopyN(io.Discard, r, 512); err != nil {
			return nil, fmt.Errorf("skipping trainer: %w", err)
		}
	}

	cart.prg = make([]uint8, int(h.PRGSize)*prgPageSize)
	if _, err := io.ReadFull(r, cart.prg); err != nil {
		return nil, fmt.Errorf("reading PRG ROM: %w", err)
	}

	cart.chr = make([]uint8, int(h.CHRSize)*chrPageSize)
	if _, err := io.ReadFull(r, cart.chr); err != nil {
		return nil, fmt.Errorf("reading CHR ROM: %w", err)
	}

	return cart, nil
}

// ReadPRG reads from the PRG window at 0x8000-0xFFFF. A single 16KB bank is
// mirrored to fill the 32KB space.
func (c *Cartridge) ReadPRG(address uint16) uint8 {
	offset := int(address - 0x8000)
	if len(c.prg) == prgPageSize {
		offset &= prgPageSize - 1
	}
	return c.prg[offset]
}

// Mapper returns the header's mapper number.
func (c *Cartridge) Mapper() uint8 {
	return c.mapper
}

// Mirroring returns the declared nametable mirroring.
func (c *Cartridge) Mirroring() Mirroring {
	return c.mirroring
}

// PRGSize returns the PRG ROM size in bytes.
func (c *Cartridge) PRGSize() int {
	return len(c.prg)
}

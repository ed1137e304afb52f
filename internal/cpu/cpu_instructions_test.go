package cpu

import "testing"

func TestADC(t *testing.T) {
	tests := []struct {
		name    string
		a       uint8
		operand uint8
		carryIn bool
		wantA   uint8
		wantC   bool
		wantZ   bool
		wantV   bool
		wantN   bool
	}{
		{"simple add", 0x01, 0x01, false, 0x02, false, false, false, false},
		{"carry out wraps to zero", 0x01, 0xFF, false, 0x00, true, true, false, false},
		{"carry in", 0x01, 0x01, true, 0x03, false, false, false, false},
		{"signed overflow positive", 0x7F, 0x01, false, 0x80, false, false, true, true},
		{"signed overflow negative", 0x80, 0xFF, false, 0x7F, true, false, true, false},
		{"no overflow mixed signs", 0x50, 0xD0, false, 0x20, true, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCPUTestHelper()
			h.CPU.A = tt.a
			h.CPU.C = tt.carryIn
			h.CPU.SetPC(0x8000)
			h.LoadProgram(0x8000, 0x69, tt.operand) // ADC #imm

			h.StepOK(t)

			if h.CPU.A != tt.wantA {
				t.Errorf("Expected A=0x%02X, got 0x%02X", tt.wantA, h.CPU.A)
			}
			if h.CPU.C != tt.wantC || h.CPU.Z != tt.wantZ || h.CPU.V != tt.wantV || h.CPU.N != tt.wantN {
				t.Errorf("Expected C=%v Z=%v V=%v N=%v, got C=%v Z=%v V=%v N=%v",
					tt.wantC, tt.wantZ, tt.wantV, tt.wantN,
					h.CPU.C, h.CPU.Z, h.CPU.V, h.CPU.N)
			}
		})
	}
}

func TestSBC(t *testing.T) {
	tests := []struct {
		name    string
		a       uint8
		operand uint8
		carryIn bool
		wantA   uint8
		wantC   bool
		wantZ   bool
		wantV   bool
		wantN   bool
	}{
		{"simple subtract", 0x05, 0x03, true, 0x02, true, false, false, false},
		{"borrow", 0x03, 0x05, true, 0xFE, false, false, false, true},
		{"equal gives zero", 0x42, 0x42, true, 0x00, true, true, false, false},
		{"without carry subtracts one more", 0x05, 0x03, false, 0x01, true, false, false, false},
		{"signed overflow", 0x80, 0x01, true, 0x7F, true, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCPUTestHelper()
			h.CPU.A = tt.a
			h.CPU.C = tt.carryIn
			h.CPU.SetPC(0x8000)
			h.LoadProgram(0x8000, 0xE9, tt.operand) // SBC #imm

			h.StepOK(t)

			if h.CPU.A != tt.wantA {
				t.Errorf("Expected A=0x%02X, got 0x%02X", tt.wantA, h.CPU.A)
			}
			if h.CPU.C != tt.wantC || h.CPU.Z != tt.wantZ || h.CPU.V != tt.wantV || h.CPU.N != tt.wantN {
				t.Errorf("Expected C=%v Z=%v V=%v N=%v, got C=%v Z=%v V=%v N=%v",
					tt.wantC, tt.wantZ, tt.wantV, tt.wantN,
					h.CPU.C, h.CPU.Z, h.CPU.V, h.CPU.N)
			}
		})
	}
}

func TestZeroNegativeFlagInvariant(t *testing.T) {
	// For every load result: Z iff zero, N iff bit 7.
	for value := 0; value < 256; value++ {
		h := NewCPUTestHelper()
		h.CPU.SetPC(0x8000)
		h.LoadProgram(0x8000, 0xA9, uint8(value))

		h.StepOK(t)

		if h.CPU.Z != (value == 0) {
			t.Fatalf("Value 0x%02X: Z=%v", value, h.CPU.Z)
		}
		if h.CPU.N != (value&0x80 != 0) {
			t.Fatalf("Value 0x%02X: N=%v", value, h.CPU.N)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name  string
		reg   uint8
		value uint8
		wantC bool
		wantZ bool
		wantN bool
	}{
		{"greater", 0x10, 0x05, true, false, false},
		{"equal", 0x10, 0x10, true, true, false},
		{"less", 0x05, 0x10, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCPUTestHelper()
			h.CPU.A = tt.reg
			h.CPU.SetPC(0x8000)
			h.LoadProgram(0x8000, 0xC9, tt.value) // CMP #imm

			h.StepOK(t)

			if h.CPU.C != tt.wantC || h.CPU.Z != tt.wantZ || h.CPU.N != tt.wantN {
				t.Errorf("Expected C=%v Z=%v N=%v, got C=%v Z=%v N=%v",
					tt.wantC, tt.wantZ, tt.wantN, h.CPU.C, h.CPU.Z, h.CPU.N)
			}
			if h.CPU.A != tt.reg {
				t.Errorf("Compare must not write back, A changed to 0x%02X", h.CPU.A)
			}
		})
	}
}

func TestShiftAccumulator(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x81
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0x0A) // ASL A

	h.StepOK(t)

	if h.CPU.A != 0x02 {
		t.Errorf("Expected A=0x02, got 0x%02X", h.CPU.A)
	}
	if !h.CPU.C {
		t.Error("Expected carry from shifted-out bit 7")
	}
}

func TestShiftMemoryReadModifyWrite(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0x46, 0x10) // LSR $10
	h.Memory.Write(0x0010, 0x03)

	cycles := h.StepOK(t)

	if h.Memory.Read(0x0010) != 0x01 {
		t.Errorf("Expected memory 0x01, got 0x%02X", h.Memory.Read(0x0010))
	}
	if !h.CPU.C {
		t.Error("Expected carry from shifted-out bit 0")
	}
	if cycles != 5 {
		t.Errorf("Expected 5 cycles, got %d", cycles)
	}
}

func TestRotateThroughCarry(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x80
	h.CPU.C = true
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0x2A, 0x6A) // ROL A; ROR A

	h.StepOK(t)
	if h.CPU.A != 0x01 || !h.CPU.C {
		t.Errorf("After ROL: expected A=0x01 C=true, got A=0x%02X C=%v", h.CPU.A, h.CPU.C)
	}

	h.StepOK(t)
	if h.CPU.A != 0x80 || !h.CPU.C {
		t.Errorf("After ROR: expected A=0x80 C=true, got A=0x%02X C=%v", h.CPU.A, h.CPU.C)
	}
}

func TestBIT(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x01
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0x24, 0x10) // BIT $10
	h.Memory.Write(0x0010, 0xC0)      // bits 7 and 6 set, no overlap with A

	h.StepOK(t)

	if !h.CPU.N || !h.CPU.V || !h.CPU.Z {
		t.Errorf("Expected N=1 V=1 Z=1, got N=%v V=%v Z=%v", h.CPU.N, h.CPU.V, h.CPU.Z)
	}
}

func TestPushPullStatus(t *testing.T) {
	h := NewCPUTestHelper()
	h.SetupResetVector(0x8000)
	h.LoadProgram(0x8000, 0x08, 0x28) // PHP; PLP

	h.StepOK(t)
	// PHP forces break and unused bits in the pushed byte.
	if pushed := h.Memory.Read(0x01FD); pushed != 0x34 {
		t.Errorf("Expected pushed status 0x34, got 0x%02X", pushed)
	}

	h.StepOK(t)
	// PLP discards the break bit; the unused bit still reads as 1.
	if h.CPU.Status() != 0x24 {
		t.Errorf("Expected P=0x24 after PLP, got 0x%02X", h.CPU.Status())
	}
}

func TestPullAccumulatorSetsFlags(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x80
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0x48, 0xA9, 0x00, 0x68) // PHA; LDA #$00; PLA

	h.StepOK(t)
	h.StepOK(t)
	h.StepOK(t)

	if h.CPU.A != 0x80 {
		t.Errorf("Expected A restored to 0x80, got 0x%02X", h.CPU.A)
	}
	if !h.CPU.N || h.CPU.Z {
		t.Errorf("Expected N=1 Z=0 from pulled value, got N=%v Z=%v", h.CPU.N, h.CPU.Z)
	}
}

func TestJSRAndRTS(t *testing.T) {
	h := NewCPUTestHelper()
	h.SetupResetVector(0x8000)
	h.LoadProgram(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	h.LoadProgram(0x9000, 0x60)             // RTS

	jsrCycles := h.StepOK(t)
	if h.CPU.PC != 0x9000 {
		t.Errorf("Expected PC=0x9000, got 0x%04X", h.CPU.PC)
	}
	if jsrCycles != 6 {
		t.Errorf("Expected 6 cycles for JSR, got %d", jsrCycles)
	}
	// JSR pushes the address of its own last byte.
	if h.Memory.Read(0x01FD) != 0x80 || h.Memory.Read(0x01FC) != 0x02 {
		t.Errorf("Expected pushed 0x8002, got %02X%02X",
			h.Memory.Read(0x01FD), h.Memory.Read(0x01FC))
	}

	rtsCycles := h.StepOK(t)
	if h.CPU.PC != 0x8003 {
		t.Errorf("Expected return to 0x8003, got 0x%04X", h.CPU.PC)
	}
	if rtsCycles != 6 {
		t.Errorf("Expected 6 cycles for RTS, got %d", rtsCycles)
	}
}

func TestBRKAndRTI(t *testing.T) {
	h := NewCPUTestHelper()
	h.SetupResetVector(0x8000)
	h.LoadProgram(0x8000, 0x00)                           // BRK
	h.Memory.SetBytes(irqVector, 0x00, 0x90)              // handler at 0x9000
	h.LoadProgram(0x9000, 0x40)                           // RTI

	brkCycles := h.StepOK(t)
	if h.CPU.PC != 0x9000 {
		t.Errorf("Expected PC at IRQ vector target 0x9000, got 0x%04X", h.CPU.PC)
	}
	if brkCycles != 7 {
		t.Errorf("Expected 7 cycles for BRK, got %d", brkCycles)
	}
	if !h.CPU.I {
		t.Error("Expected interrupt disable set by BRK")
	}
	// Pushed status carries B and unused; pushed PC skips the padding byte.
	if h.Memory.Read(0x01FB) != 0x34 {
		t.Errorf("Expected pushed status 0x34, got 0x%02X", h.Memory.Read(0x01FB))
	}
	if h.Memory.Read(0x01FD) != 0x80 || h.Memory.Read(0x01FC) != 0x02 {
		t.Errorf("Expected pushed return 0x8002, got %02X%02X",
			h.Memory.Read(0x01FD), h.Memory.Read(0x01FC))
	}

	h.StepOK(t)
	if h.CPU.PC != 0x8002 {
		t.Errorf("Expected RTI return to 0x8002, got 0x%04X", h.CPU.PC)
	}
	if h.CPU.Status() != 0x24 {
		t.Errorf("Expected P=0x24 after RTI, got 0x%02X", h.CPU.Status())
	}
}

func TestFlagInstructions(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0x38, 0xF8, 0x78, 0x18, 0xD8, 0x58) // SEC SED SEI CLC CLD CLI

	h.StepOK(t)
	h.StepOK(t)
	h.StepOK(t)
	if !h.CPU.C || !h.CPU.D || !h.CPU.I {
		t.Errorf("Expected C D I set, got C=%v D=%v I=%v", h.CPU.C, h.CPU.D, h.CPU.I)
	}

	h.StepOK(t)
	h.StepOK(t)
	h.StepOK(t)
	if h.CPU.C || h.CPU.D || h.CPU.I {
		t.Errorf("Expected C D I clear, got C=%v D=%v I=%v", h.CPU.C, h.CPU.D, h.CPU.I)
	}
}

func TestIncrementDecrementMemory(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0xE6, 0x10, 0xC6, 0x10) // INC $10; DEC $10
	h.Memory.Write(0x0010, 0xFF)

	h.StepOK(t)
	if h.Memory.Read(0x0010) != 0x00 || !h.CPU.Z {
		t.Errorf("Expected wrap to 0x00 with Z, got 0x%02X Z=%v",
			h.Memory.Read(0x0010), h.CPU.Z)
	}

	h.StepOK(t)
	if h.Memory.Read(0x0010) != 0xFF || !h.CPU.N {
		t.Errorf("Expected wrap to 0xFF with N, got 0x%02X N=%v",
			h.Memory.Read(0x0010), h.CPU.N)
	}
}

func TestTransfers(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x80
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0xAA, 0x9A, 0xBA) // TAX; TXS; TSX

	h.StepOK(t)
	if h.CPU.X != 0x80 || !h.CPU.N {
		t.Errorf("Expected X=0x80 N=1, got X=0x%02X N=%v", h.CPU.X, h.CPU.N)
	}

	h.StepOK(t)
	if h.CPU.SP != 0x80 {
		t.Errorf("Expected SP=0x80, got 0x%02X", h.CPU.SP)
	}
	// TXS does not touch flags.
	if !h.CPU.N {
		t.Error("TXS must not change flags")
	}

	h.CPU.X = 0
	h.StepOK(t)
	if h.CPU.X != 0x80 {
		t.Errorf("Expected X=0x80 from TSX, got 0x%02X", h.CPU.X)
	}
}

func TestUndocumentedLAX(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0xA7, 0x10) // LAX $10
	h.Memory.Write(0x0010, 0x8F)

	h.StepOK(t)

	if h.CPU.A != 0x8F || h.CPU.X != 0x8F {
		t.Errorf("Expected A=X=0x8F, got A=0x%02X X=0x%02X", h.CPU.A, h.CPU.X)
	}
	if !h.CPU.N {
		t.Error("Expected N set")
	}
}

func TestUndocumentedSAX(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0xF0
	h.CPU.X = 0x3C
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0x87, 0x10) // SAX $10

	h.StepOK(t)

	if h.Memory.Read(0x0010) != 0x30 {
		t.Errorf("Expected A&X=0x30 stored, got 0x%02X", h.Memory.Read(0x0010))
	}
}

func TestUndocumentedDCP(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x10
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0xC7, 0x10) // DCP $10
	h.Memory.Write(0x0010, 0x11)

	h.StepOK(t)

	if h.Memory.Read(0x0010) != 0x10 {
		t.Errorf("Expected decremented memory 0x10, got 0x%02X", h.Memory.Read(0x0010))
	}
	if !h.CPU.Z || !h.CPU.C {
		t.Errorf("Expected compare-equal flags, got Z=%v C=%v", h.CPU.Z, h.CPU.C)
	}
}

func TestUndocumentedISB(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x10
	h.CPU.C = true
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0xE7, 0x10) // ISB $10
	h.Memory.Write(0x0010, 0x04)

	h.StepOK(t)

	if h.Memory.Read(0x0010) != 0x05 {
		t.Errorf("Expected incremented memory 0x05, got 0x%02X", h.Memory.Read(0x0010))
	}
	if h.CPU.A != 0x0B {
		t.Errorf("Expected A=0x0B after subtract, got 0x%02X", h.CPU.A)
	}
}

func TestUndocumentedSLO(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x01
	h.CPU.SetPC(0x8000)
	h.LoadProgram(0x8000, 0x07, 0x10) // SLO $10
	h.Memory.Write(0x0010, 0x82)

	h.StepOK(t)

	if h.Memory.Read(0x0010) != 0x04 {
		t.Errorf("Expected shifted memory 0x04, got 0x%02X", h.Memory.Read(0x0010))
	}
	if h.CPU.A != 0x05 {
		t.Errorf("Expected A=0x05 after ORA, got 0x%02X", h.CPU.A)
	}
	if !h.CPU.C {
		t.Error("Expected carry from shifted-out bit 7")
	}
}

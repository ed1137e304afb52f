package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/azmine-1/nurst/internal/bus"
	"github.com/azmine-1/nurst/internal/cartridge"
	"github.com/azmine-1/nurst/internal/cpu"
	"github.com/azmine-1/nurst/internal/tracediff"
	"github.com/retroenv/retrogolib/log"
)

// Runner executes a program on the CPU and emits a trace line per
// instruction, optionally comparing each line against a reference log.
type Runner struct {
	logger *log.Logger
	cfg    Config

	bus *bus.Bus
	cpu *cpu.CPU
}

// Result summarizes a finished run.
type Result struct {
	Steps    int
	Cycles   uint64
	LastPC   uint16
	Diverged *tracediff.Mismatch
}

// NewRunner creates a runner with an empty bus.
func NewRunner(logger *log.Logger, cfg Config) *Runner {
	b := bus.New()
	return &Runner{
		logger: logger,
		cfg:    cfg,
		bus:    b,
		cpu:    cpu.New(b),
	}
}

// LoadROM loads an iNES file, attaches it to the bus and resets the CPU.
// A StartPC override in the config replaces the reset vector target.
func (r *Runner) LoadROM(path string) error {
	cart, err := cartridge.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	r.bus.AttachCartridge(cart)
	if err := r.reset(); err != nil {
		return err
	}

	r.logger.Debug("ROM loaded",
		log.String("file", path),
		log.Int("prg_size", cart.PRGSize()),
	)
	return nil
}

// LoadProgram copies a raw program image onto the bus at the given origin
// and resets the CPU to execute from there. Used by test harnesses that
// have no iNES container.
func (r *Runner) LoadProgram(origin uint16, program []uint8) error {
	r.bus.Load(origin, program)
	r.bus.Write(0xFFFC, uint8(origin))
	r.bus.Write(0xFFFD, uint8(origin>>8))
	return r.reset()
}

func (r *Runner) reset() error {
	r.cpu.Reset()
	if r.cfg.StartPC != "" {
		pc, err := r.cfg.startPC()
		if err != nil {
			return err
		}
		r.cpu.SetPC(pc)
	}
	return nil
}

// CPU exposes the runner's CPU for inspection after a run.
func (r *Runner) CPU() *cpu.CPU {
	return r.cpu
}

// Bus exposes the runner's bus for inspection after a run.
func (r *Runner) Bus() *bus.Bus {
	return r.bus
}

// Run steps the CPU, writing one trace line per instruction to w. When a
// reference trace is given, each line is compared against it and the run
// stops at the first divergence. The run also stops on MaxSteps, on an
// unknown opcode, or when the reference is exhausted.
func (r *Runner) Run(w io.Writer, reference []string) (Result, error) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	result := Result{LastPC: r.cpu.PC}
	var recent []string

	for {
		if r.cfg.MaxSteps > 0 && result.Steps >= r.cfg.MaxSteps {
			break
		}
		if len(reference) > 0 && result.Steps >= len(reference) {
			break
		}

		record, err := r.cpu.Trace()
		if err != nil {
			result.Cycles = r.cpu.Cycles()
			var unknown *cpu.UnknownOpcodeError
			if errors.As(err, &unknown) && len(reference) == 0 && r.cfg.MaxSteps == 0 {
				// open-ended runs end at the first unmapped byte
				r.logger.Debug("stopping at unmapped opcode",
					log.String("pc", fmt.Sprintf("%04X", unknown.PC)),
				)
				return result, nil
			}
			return result, err
		}
		line := record.String()
		if _, err := fmt.Fprintln(bw, line); err != nil {
			result.Cycles = r.cpu.Cycles()
			return result, fmt.Errorf("writing trace: %w", err)
		}

		if len(reference) > 0 {
			if m := tracediff.CompareLine(result.Steps+1, line, reference[result.Steps]); m != nil {
				m.Context = recent
				result.Diverged = m
				result.Cycles = r.cpu.Cycles()
				return result, nil
			}
			recent = append(recent, line)
			if len(recent) > 3 {
				recent = recent[1:]
			}
		}

		result.LastPC = r.cpu.PC
		if _, err := r.cpu.Step(); err != nil {
			result.Cycles = r.cpu.Cycles()
			return result, err
		}
		result.Steps++
	}

	result.Cycles = r.cpu.Cycles()
	return result, nil
}

// ReadReference loads a golden log file into lines, skipping anything that
// does not parse as a trace line.
func ReadReference(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reference log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if _, ok := tracediff.ParseLine(line); ok {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading reference log: %w", err)
	}
	return lines, nil
}

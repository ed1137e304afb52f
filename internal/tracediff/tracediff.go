// Package tracediff compares an emitted execution trace against a reference
// golden log, field by field, and reports the first divergence.
//
// Reference logs sometimes carry extra columns (PPU scanline counters) the
// emitted trace does not; comparison therefore extracts the CPU fields from
// each line instead of comparing raw text.
package tracediff

import (
	"fmt"
	"regexp"
	"strings"
)

// Entry is the CPU state parsed out of one trace line.
type Entry struct {
	PC     string
	A      string
	X      string
	Y      string
	P      string
	SP     string
	Cycles string
	Raw    string
}

var (
	pcRegexp  = regexp.MustCompile(`^([0-9A-F]{4})\b`)
	regRegexp = regexp.MustCompile(`A:([0-9A-F]{2}) X:([0-9A-F]{2}) Y:([0-9A-F]{2}) P:([0-9A-F]{2}) SP:([0-9A-F]{2})`)
	cycRegexp = regexp.MustCompile(`CYC:(\d+)`)
)

// ParseLine extracts the CPU fields from a trace line. The second return is
// false for lines that do not look like trace output (blank lines, banners).
func ParseLine(line string) (Entry, bool) {
	line = strings.TrimRight(line, "\r\n")
	entry := Entry{Raw: line}

	pc := pcRegexp.FindStringSubmatch(line)
	regs := regRegexp.FindStringSubmatch(line)
	cyc := cycRegexp.FindStringSubmatch(line)
	if pc == nil || regs == nil || cyc == nil {
		return entry, false
	}

	entry.PC = pc[1]
	entry.A = regs[1]
	entry.X = regs[2]
	entry.Y = regs[3]
	entry.P = regs[4]
	entry.SP = regs[5]
	entry.Cycles = cyc[1]
	return entry, true
}

// contextLines is the number of matching lines reported before a divergence.
const contextLines = 3

// Mismatch describes the first diverging line between two traces.
type Mismatch struct {
	Line    int // 1-based line number
	Fields  []string
	Got     Entry
	Want    Entry
	Context []string // matching lines immediately before the divergence
}

func (m *Mismatch) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "divergence at line %d (%s):\n", m.Line, strings.Join(m.Fields, ", "))
	for _, line := range m.Context {
		fmt.Fprintf(&sb, "     %s\n", line)
	}
	fmt.Fprintf(&sb, "got  %s\nwant %s", m.Got.Raw, m.Want.Raw)
	return sb.String()
}

// diff lists the field names whose values differ.
func diff(got, want Entry) []string {
	var fields []string
	check := func(name, g, w string) {
		if g != w {
			fields = append(fields, name)
		}
	}
	check("PC", got.PC, want.PC)
	check("A", got.A, want.A)
	check("X", got.X, want.X)
	check("Y", got.Y, want.Y)
	check("P", got.P, want.P)
	check("SP", got.SP, want.SP)
	check("CYC", got.Cycles, want.Cycles)
	return fields
}

// CompareLine compares a single emitted line against the reference line at
// the given 1-based line number. It returns nil when the CPU fields agree.
func CompareLine(lineNo int, got, want string) *Mismatch {
	gotEntry, gotOK := ParseLine(got)
	wantEntry, wantOK := ParseLine(want)
	if !gotOK || !wantOK {
		return &Mismatch{
			Line:   lineNo,
			Fields: []string{"unparseable"},
			Got:    gotEntry,
			Want:   wantEntry,
		}
	}

	fields := diff(gotEntry, wantEntry)
	if len(fields) == 0 {
		return nil
	}
	return &Mismatch{Line: lineNo, Fields: fields, Got: gotEntry, Want: wantEntry}
}

// Compare walks both traces and returns the first divergence, or nil when
// the emitted trace matches the reference for its full shared length. A
// shorter emitted trace is not a divergence; running out of reference lines
// ends the comparison.
func Compare(got, want []string) *Mismatch {
	n := len(got)
	if len(want) < n {
		n = len(want)
	}
	for i := 0; i < n; i++ {
		if m := CompareLine(i+1, got[i], want[i]); m != nil {
			start := i - contextLines
			if start < 0 {
				start = 0
			}
			m.Context = got[start:i]
			return m
		}
	}
	return nil
}

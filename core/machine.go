package core

import (
	"io"

	"github.com/sarchlab/tapesim/inst"
)

// Machine runs a flat program against a zeroed tape. It is the execution
// state of one run: create one per run and discard it afterwards. A Machine
// is not safe for concurrent use.
type Machine struct {
	state   coreState
	emu     instEmulator
	retired uint64
	err     error
}

// NewMachine creates a machine at instruction 0, cursor 0, with a zeroed
// tape. Input is read from in one byte at a time; output is written to out
// one byte at a time and flushed if out is a Flusher.
func NewMachine(prog inst.Program, in io.Reader, out io.Writer) *Machine {
	m := &Machine{}
	m.state.Code = prog
	m.state.In = in
	m.state.Out = out

	return m
}

// Halted reports whether the instruction pointer has run off the end of the
// program.
func (m *Machine) Halted() bool {
	return m.state.IP >= len(m.state.Code)
}

// Err returns the fatal error that stopped the machine, if any.
func (m *Machine) Err() error {
	return m.err
}

// Done reports whether the machine can make no further progress.
func (m *Machine) Done() bool {
	return m.err != nil || m.Halted()
}

// Next returns the instruction the next Step will execute.
func (m *Machine) Next() (inst.Instr, bool) {
	if m.Done() {
		return inst.Instr{}, false
	}

	return m.state.Code[m.state.IP], true
}

// Step fetches the instruction at the instruction pointer, advances the
// pointer, and executes the instruction. Stepping a halted machine does
// nothing. Once a step fails the machine stays failed and every later Step
// returns the same error.
func (m *Machine) Step() error {
	if m.err != nil {
		return m.err
	}

	if m.Halted() {
		return nil
	}

	in := m.state.Code[m.state.IP]
	m.state.IP++

	if err := m.emu.RunInst(in, &m.state); err != nil {
		m.err = err
		Trace("Machine",
			"Behavior", "Fault",
			"IP", m.state.IP-1,
			"Instr", in.String(),
			"Cursor", m.state.Cursor,
			"Error", err.Error(),
		)

		return err
	}

	m.retired++

	return nil
}

// Run steps until the machine halts or fails.
func (m *Machine) Run() error {
	for !m.Halted() {
		if err := m.Step(); err != nil {
			return err
		}
	}

	return m.err
}

// IP returns the instruction pointer.
func (m *Machine) IP() int {
	return m.state.IP
}

// Cursor returns the tape position under the cursor.
func (m *Machine) Cursor() int {
	return m.state.Cursor
}

// Cell returns the value of tape cell i.
func (m *Machine) Cell(i int) byte {
	return m.state.Tape[i]
}

// Window returns a copy of the cells in [from, to), clamped to the tape.
func (m *Machine) Window(from, to int) []byte {
	from = max(from, 0)
	to = min(to, TapeSize)
	if from >= to {
		return nil
	}

	window := make([]byte, to-from)
	copy(window, m.state.Tape[from:to])

	return window
}

// Retired returns the number of instructions executed successfully.
func (m *Machine) Retired() uint64 {
	return m.retired
}

// Program returns the program being run.
func (m *Machine) Program() inst.Program {
	return m.state.Code
}

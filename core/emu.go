package core

import (
	"io"

	"github.com/sarchlab/tapesim/inst"
)

// TapeSize is the fixed number of cells on the tape.
const TapeSize = 30000

// Flusher is implemented by output sinks that buffer. The engine flushes
// after every Output so each byte is observable as soon as it is produced.
type Flusher interface {
	Flush() error
}

// FlushWriter is a buffered output sink.
type FlushWriter interface {
	io.Writer
	Flusher
}

type coreState struct {
	IP     int
	Cursor int
	Tape   [TapeSize]byte
	Code   inst.Program

	In  io.Reader
	Out io.Writer
}

type instEmulator struct {
}

// RunInst executes one instruction. The instruction pointer has already been
// advanced past it, so state.IP-1 is its own position.
func (i instEmulator) RunInst(in inst.Instr, state *coreState) error {
	pc := state.IP - 1

	switch in.Op {
	case inst.OpMoveRight:
		return i.move(pc, in.Arg, state)
	case inst.OpMoveLeft:
		return i.move(pc, -in.Arg, state)
	case inst.OpInc:
		state.Tape[state.Cursor] += byte(in.Arg)
	case inst.OpDec:
		state.Tape[state.Cursor] -= byte(in.Arg)
	case inst.OpOutput:
		return i.runOutput(pc, state)
	case inst.OpInput:
		return i.runInput(pc, state)
	case inst.OpLoopStart:
		return i.runLoopStart(pc, in, state)
	case inst.OpLoopEnd:
		return i.runLoopEnd(pc, in, state)
	case inst.OpLoad:
		state.Tape[state.Cursor] = byte(in.Arg)
	case inst.OpAddRight:
		return i.runAdd(pc, in.Arg, state)
	case inst.OpAddLeft:
		return i.runAdd(pc, -in.Arg, state)
	case inst.OpScanRight:
		return i.runScan(pc, in, in.Arg, state)
	case inst.OpScanLeft:
		return i.runScan(pc, in, -in.Arg, state)
	default:
		return &MalformedJumpError{IP: pc, Instr: in}
	}

	return nil
}

func (i instEmulator) move(pc, offset int, state *coreState) error {
	target := state.Cursor + offset
	if target < 0 || target >= TapeSize {
		return &AddressingError{IP: pc, Cursor: state.Cursor, Offset: offset}
	}

	state.Cursor = target

	return nil
}

func (i instEmulator) runOutput(pc int, state *coreState) error {
	if state.Out == nil {
		return &OutputError{IP: pc, Err: io.ErrClosedPipe}
	}

	_, err := state.Out.Write(state.Tape[state.Cursor : state.Cursor+1])
	if err != nil {
		return &OutputError{IP: pc, Err: err}
	}

	if f, ok := state.Out.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return &OutputError{IP: pc, Err: err}
		}
	}

	return nil
}

func (i instEmulator) runInput(pc int, state *coreState) error {
	if state.In == nil {
		return &IOExhaustedError{IP: pc, Err: io.EOF}
	}

	_, err := io.ReadFull(state.In, state.Tape[state.Cursor:state.Cursor+1])
	if err != nil {
		return &IOExhaustedError{IP: pc, Err: err}
	}

	return nil
}

// runLoopStart branches to one past the matching LoopEnd when the cell is
// zero.
func (i instEmulator) runLoopStart(pc int, in inst.Instr, state *coreState) error {
	end := pc + in.Arg - 1
	if in.Arg < 2 || end >= len(state.Code) || state.Code[end].Op != inst.OpLoopEnd {
		return &MalformedJumpError{IP: pc, Instr: in}
	}

	if state.Tape[state.Cursor] == 0 {
		state.IP = pc + in.Arg
	}

	return nil
}

// runLoopEnd branches back to the matching LoopStart, which re-tests the
// cell, when the cell is non-zero.
func (i instEmulator) runLoopEnd(pc int, in inst.Instr, state *coreState) error {
	start := pc - in.Arg
	if in.Arg < 1 || start < 0 || state.Code[start].Op != inst.OpLoopStart {
		return &MalformedJumpError{IP: pc, Instr: in}
	}

	if state.Tape[state.Cursor] != 0 {
		state.IP = start
	}

	return nil
}

// runAdd moves the current cell into the cell offset away: the target gains
// the value and the source is cleared, which is the net effect of the
// [->+<] loop it replaces. A zero cell leaves everything untouched, like the
// loop that would not have run.
func (i instEmulator) runAdd(pc, offset int, state *coreState) error {
	value := state.Tape[state.Cursor]
	if value == 0 {
		return nil
	}

	target := state.Cursor + offset
	if target < 0 || target >= TapeSize {
		return &AddressingError{IP: pc, Cursor: state.Cursor, Offset: offset}
	}

	state.Tape[target] += value
	state.Tape[state.Cursor] = 0

	return nil
}

func (i instEmulator) runScan(pc int, in inst.Instr, stride int, state *coreState) error {
	if stride == 0 && state.Tape[state.Cursor] != 0 {
		return &MalformedJumpError{IP: pc, Instr: in}
	}

	for state.Tape[state.Cursor] != 0 {
		if err := i.move(pc, stride, state); err != nil {
			return err
		}
	}

	return nil
}

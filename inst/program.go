package inst

import (
	"fmt"
	"io"
	"strings"
)

// Opcode represents the operation code of a flat instruction.
type Opcode uint8

const (
	OpMoveRight Opcode = iota
	OpMoveLeft
	OpInc
	OpDec
	OpOutput
	OpInput
	OpLoopStart
	OpLoopEnd
	OpLoad
	OpAddRight
	OpAddLeft
	OpScanRight
	OpScanLeft

	numOpcodes
)

var opcodeNames = [...]string{
	OpMoveRight: "MOVE_RIGHT",
	OpMoveLeft:  "MOVE_LEFT",
	OpInc:       "INC",
	OpDec:       "DEC",
	OpOutput:    "OUTPUT",
	OpInput:     "INPUT",
	OpLoopStart: "LOOP_START",
	OpLoopEnd:   "LOOP_END",
	OpLoad:      "LOAD",
	OpAddRight:  "ADD_RIGHT",
	OpAddLeft:   "ADD_LEFT",
	OpScanRight: "SCAN_RIGHT",
	OpScanLeft:  "SCAN_LEFT",
}

// Valid reports whether the opcode is known.
func (o Opcode) Valid() bool {
	return o < numOpcodes
}

func (o Opcode) String() string {
	if !o.Valid() {
		return fmt.Sprintf("OP(%d)", uint8(o))
	}

	return opcodeNames[o]
}

// Instr is one instruction of a flat program.
//
// Arg is the run length for moves and adjusts, the distance for adds, the
// stride for scans, and the byte value for loads. For a LoopStart it is the
// forward distance to one past the matching LoopEnd (skip if zero); for a
// LoopEnd it is the backward distance to the matching LoopStart (back if
// non-zero).
type Instr struct {
	Op  Opcode
	Arg int
}

func (i Instr) String() string {
	switch i.Op {
	case OpMoveRight:
		return fmt.Sprintf("> (%d)", i.Arg)
	case OpMoveLeft:
		return fmt.Sprintf("< (%d)", i.Arg)
	case OpInc:
		return fmt.Sprintf("+ (%d)", i.Arg)
	case OpDec:
		return fmt.Sprintf("- (%d)", i.Arg)
	case OpOutput:
		return "Output"
	case OpInput:
		return "Input"
	case OpLoopStart:
		return fmt.Sprintf("[ (%d)", i.Arg)
	case OpLoopEnd:
		return fmt.Sprintf("] (%d)", i.Arg)
	case OpLoad:
		return fmt.Sprintf("Load(%d)", i.Arg)
	case OpAddRight:
		return fmt.Sprintf("AddToRight(%d)", i.Arg)
	case OpAddLeft:
		return fmt.Sprintf("AddToLeft(%d)", i.Arg)
	case OpScanRight:
		return fmt.Sprintf("ScanRight(per:%d)", i.Arg)
	case OpScanLeft:
		return fmt.Sprintf("ScanLeft(per:%d)", i.Arg)
	default:
		return i.Op.String()
	}
}

// Program is a flat, randomly addressable instruction array.
type Program []Instr

// Equal reports whether two programs hold the same instructions.
func (p Program) Equal(o Program) bool {
	if len(p) != len(o) {
		return false
	}

	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}

	return true
}

// Dump writes an indented listing of the program, one instruction per line.
func (p Program) Dump(w io.Writer) error {
	indent := 0
	for i, in := range p {
		if in.Op == OpLoopEnd && indent > 0 {
			indent--
		}

		_, err := fmt.Fprintf(w, "%4d:%s%s\n", i, strings.Repeat("    ", indent), in)
		if err != nil {
			return err
		}

		if in.Op == OpLoopStart {
			indent++
		}
	}

	return nil
}

func (p Program) String() string {
	var sb strings.Builder
	_ = p.Dump(&sb)
	return sb.String()
}

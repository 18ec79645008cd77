package core

import (
	"errors"
	"fmt"

	"github.com/sarchlab/tapesim/inst"
)

// Sentinels for errors.Is. Every fatal error returned by the engine matches
// exactly one of them.
var (
	ErrAddressing    = errors.New("cursor out of tape bounds")
	ErrIOExhausted   = errors.New("input exhausted")
	ErrMalformedJump = errors.New("malformed jump")
	ErrOutput        = errors.New("output failed")
)

// AddressingError reports a cursor move or a neighbour access outside the
// tape.
type AddressingError struct {
	IP     int // position of the faulting instruction
	Cursor int // cursor before the access
	Offset int // signed distance of the access
}

func (e *AddressingError) Error() string {
	return fmt.Sprintf("ip %d: cursor %d%+d leaves tape [0, %d)",
		e.IP, e.Cursor, e.Offset, TapeSize)
}

func (e *AddressingError) Is(target error) bool { return target == ErrAddressing }

// IOExhaustedError reports an Input that could not obtain a byte.
type IOExhaustedError struct {
	IP  int
	Err error
}

func (e *IOExhaustedError) Error() string {
	return fmt.Sprintf("ip %d: input exhausted: %v", e.IP, e.Err)
}

func (e *IOExhaustedError) Is(target error) bool { return target == ErrIOExhausted }

func (e *IOExhaustedError) Unwrap() error { return e.Err }

// OutputError reports a failed write or flush of an Output byte.
type OutputError struct {
	IP  int
	Err error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("ip %d: output failed: %v", e.IP, e.Err)
}

func (e *OutputError) Is(target error) bool { return target == ErrOutput }

func (e *OutputError) Unwrap() error { return e.Err }

// MalformedJumpError reports a jump whose distance does not resolve to its
// partner instruction, or an instruction the engine cannot decode. It means
// the program was not produced by the lowerer.
type MalformedJumpError struct {
	IP    int
	Instr inst.Instr
}

func (e *MalformedJumpError) Error() string {
	return fmt.Sprintf("ip %d: malformed jump: %s", e.IP, e.Instr)
}

func (e *MalformedJumpError) Is(target error) bool { return target == ErrMalformedJump }

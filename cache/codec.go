package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/tapesim/inst"
)

// Version is the encoding version written after the magic.
const Version byte = 1

var magic = []byte("TAPE")

// ErrCorrupt is returned when an encoded program cannot be decoded.
var ErrCorrupt = errors.New("cache: corrupt program")

// Encode will encode a program as the magic, the version, the uvarint
// instruction count and one (opcode, uvarint argument) pair per instruction.
func Encode(prog inst.Program) []byte {
	// prepare buffer
	buf := make([]byte, 0, len(magic)+1+binary.MaxVarintLen64+len(prog)*2)
	buf = append(buf, magic...)
	buf = append(buf, Version)
	buf = binary.AppendUvarint(buf, uint64(len(prog)))

	// append instructions
	for _, in := range prog {
		if in.Arg < 0 {
			panic(fmt.Sprintf("cache: negative argument in %s", in))
		}

		buf = append(buf, byte(in.Op))
		buf = binary.AppendUvarint(buf, uint64(in.Arg))
	}

	return buf
}

// Decode will decode a program written by Encode.
func Decode(data []byte) (inst.Program, error) {
	// check header
	if !bytes.HasPrefix(data, magic) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	data = data[len(magic):]

	if len(data) == 0 || data[0] != Version {
		return nil, fmt.Errorf("%w: unsupported version", ErrCorrupt)
	}
	data = data[1:]

	// read count
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad count", ErrCorrupt)
	}
	data = data[n:]

	// every instruction takes at least two bytes
	if count > uint64(len(data)/2) {
		return nil, fmt.Errorf("%w: count %d exceeds data", ErrCorrupt, count)
	}

	// read instructions
	prog := make(inst.Program, count)
	for i := range prog {
		if len(data) < 2 {
			return nil, fmt.Errorf("%w: truncated at %d", ErrCorrupt, i)
		}

		op := inst.Opcode(data[0])
		if !op.Valid() {
			return nil, fmt.Errorf("%w: unknown opcode %d at %d", ErrCorrupt, data[0], i)
		}

		arg, n := binary.Uvarint(data[1:])
		if n <= 0 || arg > math.MaxInt32 {
			return nil, fmt.Errorf("%w: bad argument at %d", ErrCorrupt, i)
		}

		prog[i] = inst.Instr{Op: op, Arg: int(arg)}
		data = data[1+n:]
	}

	// check trailer
	if len(data) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(data))
	}

	return prog, nil
}

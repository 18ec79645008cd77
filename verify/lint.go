package verify

import (
	"fmt"

	"github.com/sarchlab/tapesim/core"
	"github.com/sarchlab/tapesim/inst"
)

// RunLint performs static lint checks on a flat program.
// It validates structure (STRUCT) and the cursor range of the straight-line
// prefix (ADDR). Returns a list of issues found, or empty list if no issues.
func RunLint(prog inst.Program) []Issue {
	var issues []Issue

	for ip, in := range prog {
		issues = append(issues, lintInstr(prog, ip, in)...)
	}

	issues = append(issues, lintPrefix(prog)...)

	return issues
}

func lintInstr(prog inst.Program, ip int, in inst.Instr) []Issue {
	structIssue := func(msg string, details map[string]interface{}) []Issue {
		return []Issue{{
			Type:    IssueStruct,
			IP:      ip,
			Instr:   in,
			Message: msg,
			Details: details,
		}}
	}

	switch in.Op {
	case inst.OpMoveRight, inst.OpMoveLeft, inst.OpInc, inst.OpDec,
		inst.OpAddRight, inst.OpAddLeft, inst.OpScanRight, inst.OpScanLeft:
		if in.Arg < 1 {
			return structIssue(
				fmt.Sprintf("%s needs a positive count, got %d", in.Op, in.Arg),
				map[string]interface{}{"count": in.Arg},
			)
		}
	case inst.OpLoad:
		if in.Arg < 0 || in.Arg > 255 {
			return structIssue(
				fmt.Sprintf("Load value %d is not a byte", in.Arg),
				map[string]interface{}{"value": in.Arg},
			)
		}
	case inst.OpLoopStart:
		end := ip + in.Arg - 1
		if in.Arg < 2 || end >= len(prog) || prog[end].Op != inst.OpLoopEnd {
			return structIssue(
				fmt.Sprintf("skip %d does not land after a LoopEnd", in.Arg),
				map[string]interface{}{"skip": in.Arg, "target": ip + in.Arg},
			)
		}

		if back := prog[end].Arg; end-back != ip {
			return structIssue(
				fmt.Sprintf("LoopEnd at %d branches to %d, not back here",
					end, end-back),
				map[string]interface{}{"skip": in.Arg, "back": back},
			)
		}
	case inst.OpLoopEnd:
		start := ip - in.Arg
		if in.Arg < 1 || start < 0 || prog[start].Op != inst.OpLoopStart {
			return structIssue(
				fmt.Sprintf("back %d does not land on a LoopStart", in.Arg),
				map[string]interface{}{"back": in.Arg, "target": start},
			)
		}
	case inst.OpOutput, inst.OpInput:
	default:
		return structIssue(
			fmt.Sprintf("unknown opcode %s", in.Op),
			nil,
		)
	}

	return nil
}

// lintPrefix follows the cursor through the instructions that run
// unconditionally from the start, up to the first instruction whose effect
// on the cursor depends on tape contents.
func lintPrefix(prog inst.Program) []Issue {
	cursor := 0

	for ip, in := range prog {
		switch in.Op {
		case inst.OpMoveRight:
			cursor += in.Arg
		case inst.OpMoveLeft:
			cursor -= in.Arg
		case inst.OpInc, inst.OpDec, inst.OpLoad, inst.OpOutput, inst.OpInput:
			continue
		default:
			return nil
		}

		if cursor < 0 || cursor >= core.TapeSize {
			return []Issue{{
				Type:  IssueAddr,
				IP:    ip,
				Instr: in,
				Message: fmt.Sprintf("cursor reaches %d, outside [0, %d)",
					cursor, core.TapeSize),
				Details: map[string]interface{}{"cursor": cursor},
			}}
		}
	}

	return nil
}

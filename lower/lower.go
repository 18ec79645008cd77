// Package lower flattens instruction trees into address-resolved programs.
package lower

import (
	"fmt"

	"github.com/sarchlab/tapesim/inst"
)

type lowerer struct {
	prog inst.Program
}

// Lower converts a tree into a flat program. Every non-loop node becomes one
// instruction; every loop becomes a LoopStart, its lowered body and a LoopEnd,
// with both jump distances resolved.
func Lower(tree inst.Tree) inst.Program {
	l := &lowerer{prog: make(inst.Program, 0, tree.Len()+countLoops(tree))}
	l.lowerTree(tree)

	return l.prog
}

func (l *lowerer) lowerTree(tree inst.Tree) {
	for _, n := range tree {
		if n.Kind == inst.Loop {
			start := l.emitLoopStart()
			l.lowerTree(n.Body)
			l.patchLoop(start)
			continue
		}

		l.emit(lowerNode(n))
	}
}

func (l *lowerer) emit(in inst.Instr) {
	l.prog = append(l.prog, in)
}

// emitLoopStart emits a LoopStart with a placeholder distance and returns its
// position for patching.
func (l *lowerer) emitLoopStart() int {
	l.emit(inst.Instr{Op: inst.OpLoopStart})
	return len(l.prog) - 1
}

// patchLoop emits the LoopEnd closing the loop opened at start and resolves
// the distances of both ends.
func (l *lowerer) patchLoop(start int) {
	if l.prog[start].Op != inst.OpLoopStart {
		panic(fmt.Sprintf("patching %s at %d, expect LOOP_START", l.prog[start].Op, start))
	}

	end := len(l.prog)
	l.prog[start].Arg = end + 1 - start
	l.emit(inst.Instr{Op: inst.OpLoopEnd, Arg: end - start})
}

func lowerNode(n inst.Node) inst.Instr {
	switch n.Kind {
	case inst.MovePointer:
		if n.Dir == inst.Right {
			return inst.Instr{Op: inst.OpMoveRight, Arg: n.Count}
		}
		return inst.Instr{Op: inst.OpMoveLeft, Arg: n.Count}
	case inst.AdjustValue:
		if n.Dir == inst.Right {
			return inst.Instr{Op: inst.OpInc, Arg: n.Count}
		}
		return inst.Instr{Op: inst.OpDec, Arg: n.Count}
	case inst.Output:
		return inst.Instr{Op: inst.OpOutput}
	case inst.Input:
		return inst.Instr{Op: inst.OpInput}
	case inst.Load:
		return inst.Instr{Op: inst.OpLoad, Arg: int(n.Value)}
	case inst.AddTo:
		if n.Dir == inst.Right {
			return inst.Instr{Op: inst.OpAddRight, Arg: n.Count}
		}
		return inst.Instr{Op: inst.OpAddLeft, Arg: n.Count}
	case inst.Scan:
		if n.Dir == inst.Right {
			return inst.Instr{Op: inst.OpScanRight, Arg: n.Count}
		}
		return inst.Instr{Op: inst.OpScanLeft, Arg: n.Count}
	default:
		panic(fmt.Sprintf("cannot lower node kind %s", n.Kind))
	}
}

func countLoops(tree inst.Tree) int {
	n := 0
	for _, node := range tree {
		if node.Kind == inst.Loop {
			n += 1 + countLoops(node.Body)
		}
	}

	return n
}

// MatchLoops pairs every LoopStart with its LoopEnd by bracket matching,
// ignoring the stored distances. It returns the LoopStart position for each
// LoopEnd position and ok=false when the brackets are unbalanced.
func MatchLoops(prog inst.Program) (pairs map[int]int, ok bool) {
	pairs = make(map[int]int)
	var stack []int

	for i, in := range prog {
		switch in.Op {
		case inst.OpLoopStart:
			stack = append(stack, i)
		case inst.OpLoopEnd:
			if len(stack) == 0 {
				return pairs, false
			}
			pairs[i] = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
	}

	return pairs, len(stack) == 0
}

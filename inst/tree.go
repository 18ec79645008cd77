// Package inst defines the instruction representations shared by the
// optimizer, the lowerer, and the execution engine.
//
// A program exists in two shapes. A Tree is the nested form produced by the
// parser and rewritten by the optimizer: loops own their bodies. A Program is
// the flat form produced by the lowerer: loops become a LoopStart/LoopEnd pair
// whose operands are relative jump distances.
package inst

import (
	"fmt"
	"strings"
)

// Kind identifies the operation a Node performs.
type Kind int

const (
	MovePointer Kind = iota
	AdjustValue
	Output
	Input
	Loop
	Load
	AddTo
	Scan
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case MovePointer:
		return "MovePointer"
	case AdjustValue:
		return "AdjustValue"
	case Output:
		return "Output"
	case Input:
		return "Input"
	case Loop:
		return "Loop"
	case Load:
		return "Load"
	case AddTo:
		return "AddTo"
	case Scan:
		return "Scan"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Dir is the direction of a pointer move, scan or add. For AdjustValue,
// Right means add and Left means subtract.
type Dir int

const (
	Right Dir = iota
	Left
)

// Name returns the name of the direction.
func (d Dir) Name() string {
	switch d {
	case Right:
		return "Right"
	case Left:
		return "Left"
	default:
		panic("invalid direction")
	}
}

// Node is one element of an instruction tree.
type Node struct {
	Kind  Kind
	Dir   Dir
	Count int  // run length, scan stride, or add distance
	Value byte // Load only
	Body  Tree // Loop only
}

// Tree is an ordered sequence of nodes. Loop nodes own their bodies.
type Tree []Node

// MoveRight moves the cursor n cells to the right.
func MoveRight(n int) Node { return Node{Kind: MovePointer, Dir: Right, Count: n} }

// MoveLeft moves the cursor n cells to the left.
func MoveLeft(n int) Node { return Node{Kind: MovePointer, Dir: Left, Count: n} }

// Inc adds n to the current cell.
func Inc(n int) Node { return Node{Kind: AdjustValue, Dir: Right, Count: n} }

// Dec subtracts n from the current cell.
func Dec(n int) Node { return Node{Kind: AdjustValue, Dir: Left, Count: n} }

// Out writes the current cell.
func Out() Node { return Node{Kind: Output} }

// In reads one byte into the current cell.
func In() Node { return Node{Kind: Input} }

// NewLoop repeats body while the current cell is non-zero.
func NewLoop(body ...Node) Node {
	if body == nil {
		body = Tree{}
	}
	return Node{Kind: Loop, Body: body}
}

// LoadValue sets the current cell to v.
func LoadValue(v byte) Node { return Node{Kind: Load, Value: v} }

// AddToRight adds the current cell into the cell n positions to the right.
func AddToRight(n int) Node { return Node{Kind: AddTo, Dir: Right, Count: n} }

// AddToLeft adds the current cell into the cell n positions to the left.
func AddToLeft(n int) Node { return Node{Kind: AddTo, Dir: Left, Count: n} }

// ScanRight moves right by stride until the current cell is zero.
func ScanRight(stride int) Node { return Node{Kind: Scan, Dir: Right, Count: stride} }

// ScanLeft moves left by stride until the current cell is zero.
func ScanLeft(stride int) Node { return Node{Kind: Scan, Dir: Left, Count: stride} }

// IsRunLength reports whether the node can be merged with an adjacent node of
// the same kind and direction.
func (n Node) IsRunLength() bool {
	return n.Kind == MovePointer || n.Kind == AdjustValue
}

// Equal reports deep structural equality.
func (n Node) Equal(o Node) bool {
	if n.Kind != o.Kind {
		return false
	}

	switch n.Kind {
	case MovePointer, AdjustValue, AddTo, Scan:
		return n.Dir == o.Dir && n.Count == o.Count
	case Load:
		return n.Value == o.Value
	case Loop:
		return n.Body.Equal(o.Body)
	default:
		return true
	}
}

func (n Node) String() string {
	switch n.Kind {
	case MovePointer:
		if n.Dir == Right {
			return fmt.Sprintf("> (%d)", n.Count)
		}
		return fmt.Sprintf("< (%d)", n.Count)
	case AdjustValue:
		if n.Dir == Right {
			return fmt.Sprintf("+ (%d)", n.Count)
		}
		return fmt.Sprintf("- (%d)", n.Count)
	case Output:
		return "Output"
	case Input:
		return "Input"
	case Loop:
		return "[" + n.Body.String() + "]"
	case Load:
		return fmt.Sprintf("Load(%d)", n.Value)
	case AddTo:
		return fmt.Sprintf("AddTo%s(%d)", n.Dir.Name(), n.Count)
	case Scan:
		return fmt.Sprintf("Scan%s(per:%d)", n.Dir.Name(), n.Count)
	default:
		return n.Kind.String()
	}
}

// Equal reports deep structural equality of two trees.
func (t Tree) Equal(o Tree) bool {
	if len(t) != len(o) {
		return false
	}

	for i := range t {
		if !t[i].Equal(o[i]) {
			return false
		}
	}

	return true
}

// Len counts the nodes of the tree, descending into loop bodies. A loop counts
// as one node plus its body.
func (t Tree) Len() int {
	n := 0
	for _, node := range t {
		n++
		if node.Kind == Loop {
			n += node.Body.Len()
		}
	}

	return n
}

// Depth returns the maximal loop nesting depth.
func (t Tree) Depth() int {
	depth := 0
	for _, node := range t {
		if node.Kind != Loop {
			continue
		}

		if d := node.Body.Depth() + 1; d > depth {
			depth = d
		}
	}

	return depth
}

func (t Tree) String() string {
	parts := make([]string, len(t))
	for i, node := range t {
		parts[i] = node.String()
	}

	return strings.Join(parts, " ")
}

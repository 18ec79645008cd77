package parser

import (
	"fmt"
	"strings"

	"github.com/sarchlab/tapesim/inst"
)

// BracketError describes one unbalanced bracket.
type BracketError struct {
	Pos Pos
	// Unclosed is true for a '[' without a matching ']', false for a stray ']'.
	Unclosed bool
}

func (e BracketError) Error() string {
	if e.Unclosed {
		return fmt.Sprintf("%s: incomplete loop: '[' is never closed", e.Pos)
	}
	return fmt.Sprintf("%s: incomplete loop: unexpected ']'", e.Pos)
}

// ParseError collects every bracket error found in one parse.
type ParseError struct {
	Errors []BracketError
}

func (e *ParseError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, be := range e.Errors {
		msgs[i] = be.Error()
	}

	return strings.Join(msgs, "; ")
}

type frame struct {
	open  Pos
	nodes inst.Tree
}

// Parse builds an instruction tree from a token stream. Every command becomes
// a node with a count of one; merging runs is the optimizer's job.
func Parse(tokens []Token) (inst.Tree, error) {
	stack := []*frame{{nodes: inst.Tree{}}}
	var errs []BracketError

	for _, tok := range tokens {
		top := stack[len(stack)-1]

		switch tok.Type {
		case RightAngle:
			top.nodes = append(top.nodes, inst.MoveRight(1))
		case LeftAngle:
			top.nodes = append(top.nodes, inst.MoveLeft(1))
		case Plus:
			top.nodes = append(top.nodes, inst.Inc(1))
		case Minus:
			top.nodes = append(top.nodes, inst.Dec(1))
		case Dot:
			top.nodes = append(top.nodes, inst.Out())
		case Comma:
			top.nodes = append(top.nodes, inst.In())
		case LeftBracket:
			stack = append(stack, &frame{open: tok.Pos, nodes: inst.Tree{}})
		case RightBracket:
			if len(stack) == 1 {
				errs = append(errs, BracketError{Pos: tok.Pos})
				continue
			}

			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.nodes = append(parent.nodes, inst.NewLoop(top.nodes...))
		}
	}

	for i := len(stack) - 1; i > 0; i-- {
		errs = append(errs, BracketError{Pos: stack[i].open, Unclosed: true})
	}

	if len(errs) > 0 {
		return nil, &ParseError{Errors: errs}
	}

	return stack[0].nodes, nil
}

// ParseString scans and parses src.
func ParseString(src string) (inst.Tree, error) {
	return Parse(Scan(src))
}

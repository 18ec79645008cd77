// Package opt rewrites instruction trees into smaller equivalent trees.
//
// Two passes run in order. Coalesce merges runs of adjacent moves and adjusts
// of the same direction. SubstituteIdioms replaces loops whose coalesced body
// has one of a few fixed shapes by a single instruction.
package opt

import (
	"log/slog"

	"github.com/sarchlab/tapesim/inst"
)

// Stats counts the idioms substituted by an Optimizer.
type Stats struct {
	Loads      int
	ScansRight int
	ScansLeft  int
	AddsRight  int
	AddsLeft   int
}

// Total returns the number of substituted loops.
func (s Stats) Total() int {
	return s.Loads + s.ScansRight + s.ScansLeft + s.AddsRight + s.AddsLeft
}

func (s *Stats) record(n inst.Node) {
	switch {
	case n.Kind == inst.Load:
		s.Loads++
	case n.Kind == inst.Scan && n.Dir == inst.Right:
		s.ScansRight++
	case n.Kind == inst.Scan && n.Dir == inst.Left:
		s.ScansLeft++
	case n.Kind == inst.AddTo && n.Dir == inst.Right:
		s.AddsRight++
	case n.Kind == inst.AddTo && n.Dir == inst.Left:
		s.AddsLeft++
	}
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithoutCoalesce disables the run-length pass.
func WithoutCoalesce() Option {
	return func(o *Optimizer) { o.coalesce = false }
}

// WithoutIdioms disables the idiom pass.
func WithoutIdioms() Option {
	return func(o *Optimizer) { o.idioms = false }
}

// Optimizer runs the enabled passes over a tree.
type Optimizer struct {
	coalesce bool
	idioms   bool
	stats    Stats
}

// NewOptimizer creates an optimizer with both passes enabled unless an option
// turns one off.
func NewOptimizer(opts ...Option) *Optimizer {
	o := &Optimizer{coalesce: true, idioms: true}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Stats returns the idioms substituted so far.
func (o *Optimizer) Stats() Stats {
	return o.stats
}

// Optimize returns the optimized tree. The input is not modified.
func (o *Optimizer) Optimize(tree inst.Tree) inst.Tree {
	before := tree.Len()

	if o.coalesce {
		tree = Coalesce(tree)
	}

	if o.idioms {
		tree = substitute(tree, &o.stats)
	}

	slog.Debug("optimized tree",
		"before", before,
		"after", tree.Len(),
		"idioms", o.stats.Total(),
	)

	return tree
}

// Coalesce merges adjacent sibling moves and adjusts of the same direction by
// summing their counts. Loop bodies are coalesced on their own; a loop is
// never merged with its neighbours. Coalesce is idempotent.
func Coalesce(tree inst.Tree) inst.Tree {
	result := make(inst.Tree, 0, len(tree))

	for _, n := range tree {
		if n.Kind == inst.Loop {
			result = append(result, inst.NewLoop(Coalesce(n.Body)...))
			continue
		}

		if n.IsRunLength() && len(result) > 0 {
			last := &result[len(result)-1]
			if last.Kind == n.Kind && last.Dir == n.Dir {
				last.Count += n.Count
				continue
			}
		}

		result = append(result, n)
	}

	return result
}

// SubstituteIdioms replaces recognized loops at every depth. It expects a
// coalesced tree; an uncoalesced body such as [- -] is not recognized.
func SubstituteIdioms(tree inst.Tree) inst.Tree {
	var stats Stats
	return substitute(tree, &stats)
}

func substitute(tree inst.Tree, stats *Stats) inst.Tree {
	result := make(inst.Tree, 0, len(tree))

	for _, n := range tree {
		if n.Kind != inst.Loop {
			result = append(result, n)
			continue
		}

		body := substitute(n.Body, stats)
		if idiom, ok := matchIdiom(body); ok {
			stats.record(idiom)
			result = append(result, idiom)
			continue
		}

		result = append(result, inst.NewLoop(body...))
	}

	return result
}

// matchIdiom matches a loop body against the fixed idiom shapes.
func matchIdiom(body inst.Tree) (inst.Node, bool) {
	switch len(body) {
	case 1:
		return matchSingle(body[0])
	case 4:
		return matchTransfer(body)
	default:
		return inst.Node{}, false
	}
}

func matchSingle(n inst.Node) (inst.Node, bool) {
	switch {
	case isAdjust(n, inst.Left, 1):
		return inst.LoadValue(0), true
	case n.Kind == inst.MovePointer && n.Dir == inst.Right:
		return inst.ScanRight(n.Count), true
	case n.Kind == inst.MovePointer && n.Dir == inst.Left:
		return inst.ScanLeft(n.Count), true
	default:
		return inst.Node{}, false
	}
}

// matchTransfer matches [-, >n, +, <n] and [-, <n, +, >n].
func matchTransfer(body inst.Tree) (inst.Node, bool) {
	if !isAdjust(body[0], inst.Left, 1) || !isAdjust(body[2], inst.Right, 1) {
		return inst.Node{}, false
	}

	out, back := body[1], body[3]
	if out.Kind != inst.MovePointer || back.Kind != inst.MovePointer {
		return inst.Node{}, false
	}

	if out.Dir == back.Dir || out.Count != back.Count {
		return inst.Node{}, false
	}

	if out.Dir == inst.Right {
		return inst.AddToRight(out.Count), true
	}

	return inst.AddToLeft(out.Count), true
}

func isAdjust(n inst.Node, dir inst.Dir, count int) bool {
	return n.Kind == inst.AdjustValue && n.Dir == dir && n.Count == count
}

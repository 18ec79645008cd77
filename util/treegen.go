// Package util holds generators built from closures, used to produce random
// programs and inputs for property tests.
package util

import (
	"math/rand"

	"github.com/sarchlab/tapesim/inst"
)

// MakeIncreasingGen returns a generator yielding start+1, start+2, ...
func MakeIncreasingGen(start int) func() int {
	current := start
	return func() int {
		current++
		return current
	}
}

// TreeGenConfig bounds the shape of generated trees.
type TreeGenConfig struct {
	MaxDepth int // deepest loop nesting
	MaxLen   int // most nodes per level
	// IdiomRate is the probability that a generated loop has one of the
	// shapes the optimizer recognizes.
	IdiomRate float64
}

// MakeTreeGen returns a generator of random well-formed single-step trees, as
// the parser would produce them.
func MakeTreeGen(seed int64, cfg TreeGenConfig) func() inst.Tree {
	rng := rand.New(rand.NewSource(seed))

	var gen func(depth int) inst.Tree
	gen = func(depth int) inst.Tree {
		n := rng.Intn(cfg.MaxLen + 1)
		tree := make(inst.Tree, 0, n)

		for i := 0; i < n; i++ {
			if depth < cfg.MaxDepth && rng.Intn(5) == 0 {
				if rng.Float64() < cfg.IdiomRate {
					tree = append(tree, idiom(rng))
				} else {
					tree = append(tree, inst.NewLoop(gen(depth+1)...))
				}
				continue
			}

			tree = append(tree, leaf(rng))
		}

		return tree
	}

	return func() inst.Tree {
		return gen(0)
	}
}

// MakeNestedTreeGen returns a generator of trees holding a chain of loops
// nested exactly depth deep, with random leaves at each level.
func MakeNestedTreeGen(seed int64, depth int) func() inst.Tree {
	rng := rand.New(rand.NewSource(seed))

	return func() inst.Tree {
		tree := inst.Tree{leaf(rng)}
		for d := 0; d < depth; d++ {
			body := append(inst.Tree{leaf(rng)}, tree...)
			body = append(body, leaf(rng))
			tree = inst.Tree{leaf(rng), inst.NewLoop(body...), leaf(rng)}
		}

		return tree
	}
}

// MakeInputGen returns a generator of random byte strings up to maxLen long.
func MakeInputGen(seed int64, maxLen int) func() []byte {
	rng := rand.New(rand.NewSource(seed))

	return func() []byte {
		buf := make([]byte, rng.Intn(maxLen+1))
		rng.Read(buf)
		return buf
	}
}

func leaf(rng *rand.Rand) inst.Node {
	switch rng.Intn(10) {
	case 0, 1:
		return inst.MoveRight(1)
	case 2:
		return inst.MoveLeft(1)
	case 3, 4, 5:
		return inst.Inc(1)
	case 6, 7:
		return inst.Dec(1)
	case 8:
		return inst.Out()
	default:
		return inst.In()
	}
}

func idiom(rng *rand.Rand) inst.Node {
	n := 1 + rng.Intn(3)

	steps := func(node func(int) inst.Node) []inst.Node {
		nodes := make([]inst.Node, n)
		for i := range nodes {
			nodes[i] = node(1)
		}
		return nodes
	}

	var body inst.Tree
	switch rng.Intn(5) {
	case 0:
		body = inst.Tree{inst.Dec(1)}
	case 1:
		body = steps(inst.MoveRight)
	case 2:
		body = steps(inst.MoveLeft)
	case 3:
		body = append(inst.Tree{inst.Dec(1)}, steps(inst.MoveRight)...)
		body = append(body, inst.Inc(1))
		body = append(body, steps(inst.MoveLeft)...)
	default:
		body = append(inst.Tree{inst.Dec(1)}, steps(inst.MoveLeft)...)
		body = append(body, inst.Inc(1))
		body = append(body, steps(inst.MoveRight)...)
	}

	return inst.NewLoop(body...)
}

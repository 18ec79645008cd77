package verify

import (
	"sort"

	"github.com/sarchlab/tapesim/inst"
)

// Pattern is a loop shape and the number of times it occurs.
type Pattern struct {
	Shape string
	Count int
}

// Analyzer counts loops by their printed shape across any number of trees.
type Analyzer struct {
	counts map[string]int
	loops  int
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{counts: make(map[string]int)}
}

// CountPatterns adds every loop of tree, nested loops included.
func (a *Analyzer) CountPatterns(tree inst.Tree) {
	for _, n := range tree {
		if n.Kind != inst.Loop {
			continue
		}

		a.counts[n.String()]++
		a.loops++
		a.CountPatterns(n.Body)
	}
}

// Loops returns the number of loops counted.
func (a *Analyzer) Loops() int {
	return a.loops
}

// Top returns the n most frequent shapes, most frequent first. Ties are
// ordered by shape.
func (a *Analyzer) Top(n int) []Pattern {
	patterns := make([]Pattern, 0, len(a.counts))
	for shape, count := range a.counts {
		patterns = append(patterns, Pattern{Shape: shape, Count: count})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Shape < patterns[j].Shape
	})

	if n >= 0 && n < len(patterns) {
		patterns = patterns[:n]
	}

	return patterns
}

// Package verify provides debugging tools for tape programs.
//
// This package implements three complementary stages:
//
// 1. Static Lint (lint.go): structural checks on a flat program
//   - STRUCT checks: unknown opcodes, non-positive counts, jump distances
//     that do not resolve to their partner
//   - ADDR checks: a straight-line prefix whose cursor provably leaves the
//     tape
//
// 2. Equivalence (equivalence.go): runs a tree with and without the
// optimizer on the same input and compares what an observer can see, the
// output bytes and the class of the terminal error.
//
// 3. Pattern analysis (analyze.go): counts loop shapes, to find idioms worth
// substituting.
//
// # Usage Example
//
//	tree, _ := parser.ParseString(src)
//
//	report := verify.GenerateReport(tree, input, 1_000_000)
//	report.WriteReport(os.Stdout)
//
// # Limitations
//
// - Equivalence is checked for one input at a time
// - Runs that exceed the step limit are inconclusive
// - ADDR checks stop at the first loop, scan or transfer
package verify

import (
	"github.com/sarchlab/tapesim/inst"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Malformed program (bad opcode, count, or jump)
	IssueAddr   IssueType = "ADDR"   // Cursor provably leaves the tape
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType              // STRUCT or ADDR
	IP      int                    // Instruction position
	Instr   inst.Instr             // Offending instruction
	Message string                 // Human-readable description
	Details map[string]interface{} // Additional structured data
}

package verify

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/tapesim/inst"
	"github.com/sarchlab/tapesim/lower"
	"github.com/sarchlab/tapesim/opt"
)

// VerificationReport represents a complete verification report
type VerificationReport struct {
	TreeNodes      int
	Depth          int
	Instructions   int
	LintIssues     []Issue
	StructIssues   []Issue
	AddrIssues     []Issue
	Equivalence    *Equivalence
	EquivalenceErr error
	Patterns       []Pattern
}

// GenerateReport lints the program optimized with opts, checks equivalence
// on input, and collects the most frequent loop shapes of the unoptimized
// tree.
func GenerateReport(
	tree inst.Tree,
	input []byte,
	maxSteps int,
	opts ...opt.Option,
) *VerificationReport {
	prog := lower.Lower(opt.NewOptimizer(opts...).Optimize(tree))

	report := &VerificationReport{
		TreeNodes:    tree.Len(),
		Depth:        tree.Depth(),
		Instructions: len(prog),
	}

	report.LintIssues = RunLint(prog)

	for _, issue := range report.LintIssues {
		if issue.Type == IssueStruct {
			report.StructIssues = append(report.StructIssues, issue)
		} else {
			report.AddrIssues = append(report.AddrIssues, issue)
		}
	}

	report.Equivalence, report.EquivalenceErr = CheckEquivalence(tree, input, maxSteps, opts...)

	a := NewAnalyzer()
	a.CountPatterns(tree)
	report.Patterns = a.Top(10)

	return report
}

// Passed reports whether lint found nothing and the runs agreed.
func (r *VerificationReport) Passed() bool {
	return len(r.LintIssues) == 0 &&
		r.EquivalenceErr == nil &&
		r.Equivalence != nil && r.Equivalence.Equal
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("Program")
	summary.AppendHeader(table.Row{"Tree Nodes", "Depth", "Instructions"})
	summary.AppendRow(table.Row{r.TreeNodes, r.Depth, r.Instructions})
	summary.Render()

	lint := table.NewWriter()
	lint.SetOutputMirror(w)
	lint.SetTitle(fmt.Sprintf("Lint: %d issues (%d STRUCT, %d ADDR)",
		len(r.LintIssues), len(r.StructIssues), len(r.AddrIssues)))
	lint.AppendHeader(table.Row{"Type", "IP", "Instr", "Message"})
	for _, issue := range r.LintIssues {
		lint.AppendRow(table.Row{issue.Type, issue.IP, issue.Instr.String(), issue.Message})
	}
	lint.Render()

	eq := table.NewWriter()
	eq.SetOutputMirror(w)
	switch {
	case r.EquivalenceErr != nil:
		eq.SetTitle("Equivalence: INCONCLUSIVE")
		eq.AppendRow(table.Row{"error", r.EquivalenceErr.Error()})
	case r.Equivalence.Equal:
		eq.SetTitle("Equivalence: PASSED")
	default:
		eq.SetTitle("Equivalence: FAILED")
	}

	if r.Equivalence != nil {
		eq.AppendHeader(table.Row{"Run", "Steps", "Output Bytes", "Status"})
		eq.AppendRow(table.Row{"raw", r.Equivalence.Raw.Steps,
			len(r.Equivalence.Raw.Output), r.Equivalence.Raw.Status()})
		eq.AppendRow(table.Row{"optimized", r.Equivalence.Optimized.Steps,
			len(r.Equivalence.Optimized.Output), r.Equivalence.Optimized.Status()})
		for _, d := range r.Equivalence.Diff {
			eq.AppendFooter(table.Row{"diff", d})
		}
	}
	eq.Render()

	if r.Equivalence != nil {
		stats := r.Equivalence.Stats
		idioms := table.NewWriter()
		idioms.SetOutputMirror(w)
		idioms.SetTitle("Idioms")
		idioms.AppendHeader(table.Row{"Load", "ScanRight", "ScanLeft", "AddToRight", "AddToLeft"})
		idioms.AppendRow(table.Row{stats.Loads, stats.ScansRight, stats.ScansLeft,
			stats.AddsRight, stats.AddsLeft})
		idioms.Render()
	}

	patterns := table.NewWriter()
	patterns.SetOutputMirror(w)
	patterns.SetTitle("Loop Shapes")
	patterns.AppendHeader(table.Row{"Count", "Shape"})
	for _, p := range r.Patterns {
		patterns.AppendRow(table.Row{p.Count, p.Shape})
	}
	patterns.Render()
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}

package verify

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/kr/pretty"
	"github.com/sarchlab/tapesim/api"
	"github.com/sarchlab/tapesim/core"
	"github.com/sarchlab/tapesim/inst"
	"github.com/sarchlab/tapesim/lower"
	"github.com/sarchlab/tapesim/opt"
)

// ErrInconclusive is returned by CheckEquivalence when the unoptimized run
// does not finish within the step limit.
var ErrInconclusive = errors.New("run did not finish within the step limit")

// Run is the observable outcome of one execution.
type Run struct {
	Output []byte
	Err    error
	Steps  uint64
}

// Status names the class of the terminal error, "ok" for a normal halt.
func (r Run) Status() string {
	switch {
	case r.Err == nil:
		return "ok"
	case errors.Is(r.Err, core.ErrAddressing):
		return "addressing"
	case errors.Is(r.Err, core.ErrIOExhausted):
		return "io-exhausted"
	case errors.Is(r.Err, core.ErrMalformedJump):
		return "malformed-jump"
	case errors.Is(r.Err, core.ErrOutput):
		return "output"
	case errors.Is(r.Err, api.ErrStepLimit):
		return "step-limit"
	default:
		return "error"
	}
}

// observation is what two runs must agree on.
type observation struct {
	Output string
	Status string
}

func (r Run) observe() observation {
	return observation{Output: string(r.Output), Status: r.Status()}
}

// Equivalence compares the unoptimized and optimized runs of one tree on
// one input.
type Equivalence struct {
	Raw       Run
	Optimized Run
	Stats     opt.Stats
	Equal     bool
	Diff      []string
}

// CheckEquivalence runs the tree as written and after optimization with
// opts, each on its own copy of input, and compares output bytes and
// terminal status. A step limit of zero or less means no limit.
func CheckEquivalence(
	tree inst.Tree,
	input []byte,
	maxSteps int,
	opts ...opt.Option,
) (*Equivalence, error) {
	raw := execute(lower.Lower(tree), input, maxSteps)
	if errors.Is(raw.Err, api.ErrStepLimit) {
		return nil, fmt.Errorf("raw program after %d steps: %w",
			raw.Steps, ErrInconclusive)
	}

	o := opt.NewOptimizer(opts...)
	optimized := execute(lower.Lower(o.Optimize(tree)), input, maxSteps)

	eq := &Equivalence{
		Raw:       raw,
		Optimized: optimized,
		Stats:     o.Stats(),
		Diff:      pretty.Diff(raw.observe(), optimized.observe()),
	}
	eq.Equal = len(eq.Diff) == 0

	return eq, nil
}

func execute(prog inst.Program, input []byte, maxSteps int) Run {
	out := &bytes.Buffer{}
	m := core.NewMachine(prog, bytes.NewReader(input), out)

	err := api.StartSession(m, maxSteps).Wait()

	return Run{
		Output: out.Bytes(),
		Err:    err,
		Steps:  m.Retired(),
	}
}

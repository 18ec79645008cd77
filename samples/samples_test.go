package samples

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/tapesim/api"
	"github.com/sarchlab/tapesim/core"
	"github.com/sarchlab/tapesim/inst"
	"github.com/sarchlab/tapesim/lower"
	"github.com/sarchlab/tapesim/opt"
	"github.com/sarchlab/tapesim/parser"
)

type sample struct {
	input  string
	output string
	err    error
}

var expected = map[string]sample{
	"hello": {output: "Hello World!\n"},
	"add":   {input: "\x02\x03", output: "\x05"},
	"echo":  {input: "tape", output: "tape", err: core.ErrIOExhausted},
	"clear": {output: "\x01"},
}

func build(name string, optimize bool) inst.Program {
	src, err := Source(name)
	Expect(err).NotTo(HaveOccurred())

	tree, err := parser.ParseString(src)
	Expect(err).NotTo(HaveOccurred())

	if optimize {
		tree = opt.NewOptimizer().Optimize(tree)
	}

	return lower.Lower(tree)
}

func check(s sample, out *bytes.Buffer, err error) {
	if s.err == nil {
		Expect(err).NotTo(HaveOccurred())
	} else {
		Expect(errors.Is(err, s.err)).To(BeTrue(), "got %v", err)
	}

	Expect(out.String()).To(Equal(s.output))
}

var _ = Describe("Samples", func() {
	It("should bundle every expected program", func() {
		Expect(Names()).To(ConsistOf("add", "clear", "echo", "hello"))
	})

	It("should not find a missing program", func() {
		_, err := Source("missing")
		Expect(err).To(HaveOccurred())
	})

	for _, name := range []string{"hello", "add", "echo", "clear"} {
		name := name
		s := expected[name]

		Context(name, func() {
			It("should run unoptimized", func() {
				out := &bytes.Buffer{}
				m := core.NewMachine(build(name, false), strings.NewReader(s.input), out)

				check(s, out, m.Run())
			})

			It("should run optimized", func() {
				out := &bytes.Buffer{}
				m := core.NewMachine(build(name, true), strings.NewReader(s.input), out)

				check(s, out, m.Run())
			})

			It("should run on the engine", func() {
				out := &bytes.Buffer{}
				driver := api.DriverBuilder{}.
					WithEngine(sim.NewSerialEngine()).
					WithFreq(1 * sim.GHz).
					WithStepsPerTick(16).
					Build("Driver")
				driver.MapProgram(build(name, true), strings.NewReader(s.input), out)

				check(s, out, driver.Run())
			})
		})
	}
})

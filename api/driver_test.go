package api

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/tapesim/core"
	"github.com/sarchlab/tapesim/inst"
	"github.com/sarchlab/tapesim/lower"
	"github.com/sarchlab/tapesim/opt"
	"github.com/sarchlab/tapesim/parser"
)

func compile(src string) inst.Program {
	tree, err := parser.ParseString(src)
	Expect(err).NotTo(HaveOccurred())

	return lower.Lower(opt.NewOptimizer().Optimize(tree))
}

// spin loops forever on a non-zero cell.
var spin = inst.Program{
	{Op: inst.OpInc, Arg: 1},
	{Op: inst.OpLoopStart, Arg: 2},
	{Op: inst.OpLoopEnd, Arg: 1},
}

var _ = Describe("Driver", func() {
	var (
		engine sim.Engine
		driver Driver
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		driver = DriverBuilder{}.
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithStepsPerTick(4).
			Build("Driver")
		out = &bytes.Buffer{}
	})

	It("should refuse to run without a program", func() {
		Expect(driver.Run()).To(MatchError(ErrNoProgram))
	})

	It("should run a program to completion", func() {
		driver.MapProgram(compile("+++++++[>++++++++++<-]>++."), nil, out)

		Expect(driver.Run()).To(Succeed())
		Expect(out.String()).To(Equal("H"))
		Expect(driver.Core().Machine().Halted()).To(BeTrue())
	})

	It("should read input", func() {
		driver.MapProgram(compile(",[.,]"), strings.NewReader("abc"), out)

		err := driver.Run()

		Expect(errors.Is(err, core.ErrIOExhausted)).To(BeTrue())
		Expect(out.String()).To(Equal("abc"))
	})

	It("should return the fault", func() {
		driver.MapProgram(compile("<"), nil, out)

		Expect(errors.Is(driver.Run(), core.ErrAddressing)).To(BeTrue())
	})

	It("should build with defaults", func() {
		d := DriverBuilder{}.Build("Default")
		d.MapProgram(compile("++."), nil, out)

		Expect(d.Run()).To(Succeed())
		Expect(out.Bytes()).To(Equal([]byte{2}))
	})
})

var _ = Describe("Session", func() {
	It("should run until the machine halts", func() {
		out := &bytes.Buffer{}
		s := StartSession(core.NewMachine(compile("+++."), nil, out), 0)

		Expect(s.Wait()).To(Succeed())
		Expect(out.Bytes()).To(Equal([]byte{3}))
		Expect(s.Machine().Halted()).To(BeTrue())
	})

	It("should stop at the step limit", func() {
		s := StartSession(core.NewMachine(spin, nil, nil), 100)

		Expect(s.Wait()).To(MatchError(ErrStepLimit))
		Expect(s.Machine().Retired()).To(Equal(uint64(100)))
	})

	It("should stop when asked", func() {
		s := StartSession(core.NewMachine(spin, nil, nil), 0)
		s.Stop()

		Expect(s.Wait()).To(MatchError(ErrStopped))
		Expect(s.Machine().Halted()).To(BeFalse())
	})

	It("should report the machine fault", func() {
		s := StartSession(core.NewMachine(compile(">>><<<<"), nil, nil), 0)

		Expect(errors.Is(s.Wait(), core.ErrAddressing)).To(BeTrue())
	})

	It("should keep the outcome after a late stop", func() {
		s := StartSession(core.NewMachine(compile("+"), nil, nil), 0)

		Expect(s.Wait()).To(Succeed())
		s.Stop()
		Expect(s.Wait()).To(Succeed())
		Expect(s.Machine().Halted()).To(BeTrue())
	})

	It("should keep the fault after a late stop", func() {
		s := StartSession(core.NewMachine(compile("<"), nil, nil), 0)

		Expect(errors.Is(s.Wait(), core.ErrAddressing)).To(BeTrue())
		s.Stop()
		Expect(errors.Is(s.Wait(), core.ErrAddressing)).To(BeTrue())
	})

	It("should keep the step limit after a late stop", func() {
		s := StartSession(core.NewMachine(spin, nil, nil), 10)

		Expect(s.Wait()).To(MatchError(ErrStepLimit))
		s.Stop()
		Expect(s.Wait()).To(MatchError(ErrStepLimit))
	})
})

package core

import (
	"bytes"
	"errors"
	"strings"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
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

var _ = Describe("Machine", func() {
	var out *bytes.Buffer

	BeforeEach(func() {
		out = &bytes.Buffer{}
	})

	It("should start zeroed", func() {
		m := NewMachine(inst.Program{}, nil, out)

		Expect(m.IP()).To(Equal(0))
		Expect(m.Cursor()).To(Equal(0))
		Expect(m.Window(0, TapeSize)).To(Equal(make([]byte, TapeSize)))
		Expect(m.Halted()).To(BeTrue())
		Expect(m.Run()).To(Succeed())
	})

	It("should step one instruction at a time", func() {
		m := NewMachine(compile("+++>+"), nil, out)

		Expect(m.Step()).To(Succeed())
		Expect(m.IP()).To(Equal(1))
		Expect(m.Cell(0)).To(Equal(byte(3)))

		Expect(m.Step()).To(Succeed())
		Expect(m.Cursor()).To(Equal(1))

		next, ok := m.Next()
		Expect(ok).To(BeTrue())
		Expect(next).To(Equal(inst.Instr{Op: inst.OpInc, Arg: 1}))

		Expect(m.Step()).To(Succeed())
		Expect(m.Halted()).To(BeTrue())
		Expect(m.Retired()).To(Equal(uint64(3)))

		Expect(m.Step()).To(Succeed())
		Expect(m.Retired()).To(Equal(uint64(3)))
	})

	It("should print H", func() {
		m := NewMachine(compile("+++++++[>++++++++++<-]>++."), nil, out)

		Expect(m.Run()).To(Succeed())
		Expect(out.Bytes()).To(Equal([]byte{72}))
	})

	It("should give the same output unoptimized", func() {
		tree, err := parser.ParseString("+++++++[>++++++++++<-]>++.")
		Expect(err).NotTo(HaveOccurred())

		m := NewMachine(lower.Lower(tree), nil, out)

		Expect(m.Run()).To(Succeed())
		Expect(out.String()).To(Equal("H"))
	})

	It("should echo input in order", func() {
		m := NewMachine(
			compile(",>,>,>,>,<<<<.>.>.>.>."),
			strings.NewReader("hello"),
			out,
		)

		Expect(m.Run()).To(Succeed())
		Expect(out.String()).To(Equal("hello"))
	})

	It("should echo only what it reads", func() {
		m := NewMachine(
			compile(",>,>,>,<<<.>.>.>."),
			strings.NewReader("hello"),
			out,
		)

		Expect(m.Run()).To(Succeed())
		Expect(out.String()).To(Equal("hell"))
	})

	It("should fail when input runs out", func() {
		m := NewMachine(compile(",.,."), strings.NewReader("a"), out)

		err := m.Run()

		Expect(errors.Is(err, ErrIOExhausted)).To(BeTrue())
		Expect(out.String()).To(Equal("a"))
	})

	It("should stop output at an addressing fault on the left", func() {
		m := NewMachine(compile("+.<."), nil, out)

		err := m.Run()

		Expect(errors.Is(err, ErrAddressing)).To(BeTrue())
		Expect(out.Bytes()).To(Equal([]byte{1}))
		Expect(m.Cursor()).To(Equal(0))
	})

	It("should stop output at an addressing fault on the right", func() {
		prog := inst.Program{
			{Op: inst.OpMoveRight, Arg: TapeSize - 1},
			{Op: inst.OpInc, Arg: 1},
			{Op: inst.OpOutput},
			{Op: inst.OpMoveRight, Arg: 1},
			{Op: inst.OpOutput},
		}
		m := NewMachine(prog, nil, out)

		err := m.Run()

		var addrErr *AddressingError
		Expect(errors.As(err, &addrErr)).To(BeTrue())
		Expect(addrErr.IP).To(Equal(3))
		Expect(out.Bytes()).To(Equal([]byte{1}))
	})

	It("should stay failed", func() {
		m := NewMachine(compile("<+"), nil, out)

		first := m.Step()
		Expect(first).To(HaveOccurred())
		Expect(m.Step()).To(BeIdenticalTo(first))
		Expect(m.Run()).To(BeIdenticalTo(first))
		Expect(m.Done()).To(BeTrue())
		Expect(m.Halted()).To(BeFalse())
		Expect(m.Cell(0)).To(Equal(byte(0)))

		_, ok := m.Next()
		Expect(ok).To(BeFalse())
	})

	It("should clamp the tape window", func() {
		m := NewMachine(compile("+>++"), nil, out)
		Expect(m.Run()).To(Succeed())

		Expect(m.Window(-5, 3)).To(Equal([]byte{1, 2, 0}))
		Expect(m.Window(TapeSize-1, TapeSize+10)).To(Equal([]byte{0}))
		Expect(m.Window(10, 5)).To(BeNil())
	})

	It("should dump its state", func() {
		m := NewMachine(compile("+>++"), nil, out)
		Expect(m.Run()).To(Succeed())

		dump := &bytes.Buffer{}
		PrintState(dump, m, 2)

		Expect(dump.String()).To(ContainSubstring("halted"))
		Expect(dump.String()).To(ContainSubstring("*1"))
	})

	Context("with a buffered sink", func() {
		var (
			mockCtrl *gomock.Controller
			sink     *MockFlushWriter
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			sink = NewMockFlushWriter(mockCtrl)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should flush after every output", func() {
			gomock.InOrder(
				sink.EXPECT().Write([]byte{1}).Return(1, nil),
				sink.EXPECT().Flush().Return(nil),
				sink.EXPECT().Write([]byte{2}).Return(1, nil),
				sink.EXPECT().Flush().Return(nil),
			)

			m := NewMachine(compile("+.+."), nil, sink)

			Expect(m.Run()).To(Succeed())
		})

		It("should fail when the flush fails", func() {
			flushErr := errors.New("broken pipe")
			sink.EXPECT().Write([]byte{1}).Return(1, nil)
			sink.EXPECT().Flush().Return(flushErr)

			m := NewMachine(compile("+.+."), nil, sink)
			err := m.Run()

			Expect(errors.Is(err, ErrOutput)).To(BeTrue())
			Expect(errors.Is(err, flushErr)).To(BeTrue())
		})
	})
})

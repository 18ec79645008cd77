package opt_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tapesim/inst"
	"github.com/sarchlab/tapesim/opt"
	"github.com/sarchlab/tapesim/parser"
	"github.com/sarchlab/tapesim/util"
)

func mustParse(src string) inst.Tree {
	tree, err := parser.ParseString(src)
	Expect(err).NotTo(HaveOccurred())
	return tree
}

var _ = Describe("Coalesce", func() {
	It("should merge runs inside and outside loops", func() {
		tree := inst.Tree{
			inst.MoveRight(1), inst.MoveRight(1), inst.MoveRight(1),
			inst.NewLoop(inst.Dec(1), inst.Dec(1), inst.Dec(1)),
		}

		Expect(opt.Coalesce(tree).Equal(inst.Tree{
			inst.MoveRight(3),
			inst.NewLoop(inst.Dec(3)),
		})).To(BeTrue())
	})

	It("should not merge across a loop", func() {
		tree := mustParse("++[>]++")

		Expect(opt.Coalesce(tree).Equal(inst.Tree{
			inst.Inc(2),
			inst.NewLoop(inst.MoveRight(1)),
			inst.Inc(2),
		})).To(BeTrue())
	})

	It("should keep opposite directions apart", func() {
		tree := mustParse("+-><")

		Expect(opt.Coalesce(tree).Equal(inst.Tree{
			inst.Inc(1), inst.Dec(1), inst.MoveRight(1), inst.MoveLeft(1),
		})).To(BeTrue())
	})

	It("should not merge I/O", func() {
		tree := mustParse("..,,")

		Expect(opt.Coalesce(tree)).To(HaveLen(4))
	})

	It("should not modify its input", func() {
		tree := mustParse(">>")
		_ = opt.Coalesce(tree)

		Expect(tree.Equal(inst.Tree{inst.MoveRight(1), inst.MoveRight(1)})).To(BeTrue())
	})

	It("should be idempotent", func() {
		seeds := util.MakeIncreasingGen(0)
		for i := 0; i < 200; i++ {
			gen := util.MakeTreeGen(int64(seeds()), util.TreeGenConfig{
				MaxDepth:  6,
				MaxLen:    12,
				IdiomRate: 0.3,
			})
			tree := gen()

			once := opt.Coalesce(tree)
			twice := opt.Coalesce(once)

			Expect(twice.Equal(once)).To(BeTrue(), "tree: %s", tree)
		}
	})
})

var _ = Describe("SubstituteIdioms", func() {
	DescribeTable("loop bodies",
		func(src string, expected inst.Node) {
			tree := opt.SubstituteIdioms(opt.Coalesce(mustParse(src)))

			Expect(tree).To(HaveLen(1))
			Expect(tree[0].Equal(expected)).To(BeTrue(), "got %s", tree)
		},
		Entry("clear", "[-]", inst.LoadValue(0)),
		Entry("scan right", "[>]", inst.ScanRight(1)),
		Entry("scan right by stride", "[>>>]", inst.ScanRight(3)),
		Entry("scan left", "[<<]", inst.ScanLeft(2)),
		Entry("add right", "[->+<]", inst.AddToRight(1)),
		Entry("add right far", "[->>>>+<<<<]", inst.AddToRight(4)),
		Entry("add left", "[-<<+>>]", inst.AddToLeft(2)),
		Entry("decrement by two", "[--]", inst.NewLoop(inst.Dec(2))),
		Entry("increment", "[+]", inst.NewLoop(inst.Inc(1))),
		Entry("unequal distances", "[->>+<]", inst.NewLoop(inst.Dec(1), inst.MoveRight(2), inst.Inc(1), inst.MoveLeft(1))),
		Entry("same direction", "[->+>]", inst.NewLoop(inst.Dec(1), inst.MoveRight(1), inst.Inc(1), inst.MoveRight(1))),
		Entry("transfer by two", "[-->+<]", inst.NewLoop(inst.Dec(2), inst.MoveRight(1), inst.Inc(1), inst.MoveLeft(1))),
		Entry("increment first", "[+>-<]", inst.NewLoop(inst.Inc(1), inst.MoveRight(1), inst.Dec(1), inst.MoveLeft(1))),
		Entry("empty", "[]", inst.NewLoop()),
	)

	It("should match only the coalesced form", func() {
		tree := opt.SubstituteIdioms(mustParse("[>>]"))

		Expect(tree[0].Kind).To(Equal(inst.Loop))
	})

	It("should substitute nested loops", func() {
		tree := opt.SubstituteIdioms(opt.Coalesce(mustParse("+[>[-]<[->+<]-]")))

		Expect(tree.Equal(inst.Tree{
			inst.Inc(1),
			inst.NewLoop(
				inst.MoveRight(1),
				inst.LoadValue(0),
				inst.MoveLeft(1),
				inst.AddToRight(1),
				inst.Dec(1),
			),
		})).To(BeTrue(), "got %s", tree)
	})

	It("should substitute a loop whose body becomes an idiom", func() {
		tree := opt.SubstituteIdioms(inst.Tree{inst.NewLoop(inst.NewLoop(inst.Dec(1)))})

		Expect(tree.Equal(inst.Tree{inst.NewLoop(inst.LoadValue(0))})).To(BeTrue())
	})
})

var _ = Describe("Optimizer", func() {
	It("should rewrite the scenario trees", func() {
		o := opt.NewOptimizer()

		Expect(o.Optimize(inst.Tree{inst.NewLoop(inst.Dec(1))}).
			Equal(inst.Tree{inst.LoadValue(0)})).To(BeTrue())
		Expect(o.Optimize(inst.Tree{inst.NewLoop(inst.MoveRight(1))}).
			Equal(inst.Tree{inst.ScanRight(1)})).To(BeTrue())
	})

	It("should count substitutions", func() {
		o := opt.NewOptimizer()
		o.Optimize(mustParse("[-][>][<][->+<][-<+>][-]"))

		Expect(o.Stats()).To(Equal(opt.Stats{
			Loads: 2, ScansRight: 1, ScansLeft: 1, AddsRight: 1, AddsLeft: 1,
		}))
		Expect(o.Stats().Total()).To(Equal(6))
	})

	It("should skip disabled passes", func() {
		tree := mustParse("++[-]")

		Expect(opt.NewOptimizer(opt.WithoutIdioms()).Optimize(tree).
			Equal(inst.Tree{inst.Inc(2), inst.NewLoop(inst.Dec(1))})).To(BeTrue())

		Expect(opt.NewOptimizer(opt.WithoutCoalesce()).Optimize(tree).
			Equal(inst.Tree{inst.Inc(1), inst.Inc(1), inst.LoadValue(0)})).To(BeTrue())

		Expect(opt.NewOptimizer(opt.WithoutCoalesce(), opt.WithoutIdioms()).
			Optimize(tree).Equal(tree)).To(BeTrue())
	})

	It("should never grow a tree", func() {
		gen := util.MakeTreeGen(42, util.TreeGenConfig{MaxDepth: 5, MaxLen: 10, IdiomRate: 0.5})
		for i := 0; i < 100; i++ {
			tree := gen()
			Expect(opt.NewOptimizer().Optimize(tree).Len()).To(BeNumerically("<=", tree.Len()))
		}
	})
})

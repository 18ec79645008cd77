package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/tapesim/api"
	"github.com/sarchlab/tapesim/lower"
	"github.com/sarchlab/tapesim/opt"
	"github.com/sarchlab/tapesim/parser"
	"github.com/sarchlab/tapesim/samples"
	"github.com/tebeka/atexit"
)

func main() {
	src, err := samples.Source("hello")
	if err != nil {
		panic(err)
	}

	tree, err := parser.ParseString(src)
	if err != nil {
		panic(err)
	}

	o := opt.NewOptimizer()
	program := lower.Lower(o.Optimize(tree))
	fmt.Printf("%d instructions, %d idioms\n", len(program), o.Stats().Total())

	engine := sim.NewSerialEngine()

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Driver")

	out := bufio.NewWriter(os.Stdout)
	driver.MapProgram(program, nil, out)

	if err := driver.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	fmt.Printf("finished at %.0f ns, %d instructions retired\n",
		float64(engine.CurrentTime()*1e9),
		driver.Core().Machine().Retired())
	atexit.Exit(0)
}

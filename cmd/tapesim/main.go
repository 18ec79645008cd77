// Command tapesim runs tape programs.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/kr/pretty"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/tapesim/api"
	"github.com/sarchlab/tapesim/cache"
	"github.com/sarchlab/tapesim/config"
	"github.com/sarchlab/tapesim/core"
	"github.com/sarchlab/tapesim/inst"
	"github.com/sarchlab/tapesim/lower"
	"github.com/sarchlab/tapesim/parser"
	"github.com/sarchlab/tapesim/verify"
	"github.com/tebeka/atexit"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2

	defaultVerifySteps = 10_000_000
)

var (
	configPath = flag.String("config", "", "YAML run configuration")
	optimize   = flag.Bool("O", true, "optimize the program")
	dumpTree   = flag.Bool("dump-tree", false, "print the instruction tree to stderr")
	dumpCode   = flag.Bool("dump-code", false, "print the flat program to stderr")
	lint       = flag.Bool("lint", false, "lint the flat program and print issues to stderr")
	verifyRun  = flag.Bool("verify", false, "compare runs with and without the configured passes on stdin and print a report")
	cacheDir   = flag.String("cache", "", "directory of the compiled program cache")
	maxSteps   = flag.Int("max-steps", 0, "stop after this many instructions, 0 for no limit")
	useAkita   = flag.Bool("akita", false, "run on the simulation engine")
	dumpState  = flag.Bool("dump-state", false, "print the machine state to stderr after a fault")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] program.bf\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		atexit.Exit(exitUsage)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(exitUsage)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	})
	slog.SetDefault(slog.New(handler))

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(exitUsage)
	}

	tree, err := parser.ParseString(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", flag.Arg(0), err)
		atexit.Exit(exitUsage)
	}

	if *dumpTree {
		pretty.Fprintf(os.Stderr, "%# v\n", tree)
	}

	if *verifyRun {
		atexit.Exit(runVerify(tree, cfg))
	}

	prog, err := compile(src, tree, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(exitRuntime)
	}

	if *dumpCode {
		if err := prog.Dump(os.Stderr); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	if *lint {
		for _, issue := range verify.RunLint(prog) {
			fmt.Fprintf(os.Stderr, "[%s] %d %s: %s\n",
				issue.Type, issue.IP, issue.Instr, issue.Message)
		}
	}

	atexit.Exit(run(prog, cfg))
}

// loadConfig reads the configuration file, if any, and applies the flags
// given on the command line on top of it.
func loadConfig() (config.RunConfig, error) {
	cfg := config.Default()

	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "O":
			cfg.Optimize = *optimize
		case "max-steps":
			cfg.MaxSteps = *maxSteps
		case "akita":
			cfg.Akita.Enabled = *useAkita
		}
	})

	return cfg, cfg.Validate()
}

func compile(src []byte, tree inst.Tree, cfg config.RunConfig) (inst.Program, error) {
	build := func() inst.Program {
		if o := cfg.NewOptimizer(); o != nil {
			tree = o.Optimize(tree)
		}

		return lower.Lower(tree)
	}

	if *cacheDir == "" {
		return build(), nil
	}

	store, err := cache.Open(*cacheDir)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	atexit.Register(func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing cache", "error", err)
		}
	})

	passes := cfg.EnabledPasses()
	key := cache.Key(src, cache.Passes{
		Coalesce: passes.Coalesce,
		Idioms:   passes.Idioms,
	})

	prog, ok, err := store.Get(key)
	if err != nil {
		slog.Warn("reading cache", "error", err)
	}

	if ok {
		slog.Debug("cache hit", "instructions", len(prog))
		return prog, nil
	}

	prog = build()
	if err := store.Put(key, prog); err != nil {
		slog.Warn("writing cache", "error", err)
	}

	return prog, nil
}

func runVerify(tree inst.Tree, cfg config.RunConfig) int {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}

	limit := cfg.MaxSteps
	if limit == 0 {
		limit = defaultVerifySteps
	}

	report := verify.GenerateReport(tree, input, limit, cfg.OptimizerOptions()...)
	report.WriteReport(os.Stdout)

	if !report.Passed() {
		return exitRuntime
	}

	return exitOK
}

func run(prog inst.Program, cfg config.RunConfig) int {
	in := bufio.NewReader(os.Stdin)
	out := bufio.NewWriter(os.Stdout)

	var (
		m   *core.Machine
		err error
	)

	if cfg.Akita.Enabled {
		driver := cfg.DriverBuilder(sim.NewSerialEngine()).Build("Driver")
		driver.MapProgram(prog, in, out)
		err = driver.Run()
		m = driver.Core().Machine()
	} else {
		m = core.NewMachine(prog, in, out)
		session := api.StartSession(m, cfg.MaxSteps)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				session.Stop()
			case <-done:
			}
		}()

		err = session.Wait()
		close(done)
		stop()
	}

	if err == nil {
		return exitOK
	}

	fmt.Fprintf(os.Stderr, "tapesim: %v\n", err)

	if *dumpState {
		core.PrintState(os.Stderr, m, 8)
	}

	return exitRuntime
}

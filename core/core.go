package core

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/tapesim/inst"
)

// HookPosInstRetired marks the completion of one instruction. The hook item
// is the inst.Instr.
var HookPosInstRetired = &sim.HookPos{Name: "Inst Retired"}

// HookPosOutput marks a byte written by an Output. The hook item is the byte.
var HookPosOutput = &sim.HookPos{Name: "Output"}

// Core drives a Machine from the simulation engine, executing a bounded
// number of instructions per cycle.
type Core struct {
	*sim.TickingComponent

	machine      *Machine
	stepsPerTick int
}

// MapProgram sets the program that the core needs to run. The tape and
// registers start from scratch.
func (c *Core) MapProgram(prog inst.Program, in io.Reader, out io.Writer) {
	c.machine = NewMachine(prog, in, out)
	Trace("Core",
		"Behavior", "MapProgram",
		"Name", c.Name(),
		"Length", len(prog),
	)
}

// Machine returns the machine mapped to the core, or nil.
func (c *Core) Machine() *Machine {
	return c.machine
}

// Err returns the fatal error that stopped the program, if any.
func (c *Core) Err() error {
	if c.machine == nil {
		return nil
	}

	return c.machine.Err()
}

// Tick runs the program for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.machine == nil || c.machine.Done() {
		return false
	}

	for i := 0; i < c.stepsPerTick && !c.machine.Done(); i++ {
		in, _ := c.machine.Next()
		cursor := c.machine.Cursor()

		err := c.machine.Step()
		madeProgress = true

		if err != nil {
			Trace("Core",
				"Behavior", "Fault",
				"Name", c.Name(),
				"Time", float64(c.Engine.CurrentTime()*1e9),
				"Error", err.Error(),
			)
			break
		}

		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosInstRetired,
			Item:   in,
		})

		if in.Op == inst.OpOutput {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosOutput,
				Item:   c.machine.Cell(cursor),
			})
		}
	}

	if c.machine.Done() {
		Trace("Core",
			"Behavior", "Stop",
			"Name", c.Name(),
			"Time", float64(c.Engine.CurrentTime()*1e9),
			"Retired", c.machine.Retired(),
		)
		LogState(c.machine)
	}

	return madeProgress
}

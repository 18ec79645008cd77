// Package api defines the driver API for running tape programs on the
// simulation engine.
package api

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/tapesim/core"
	"github.com/sarchlab/tapesim/inst"
)

// ErrNoProgram is returned by Run when no program has been mapped.
var ErrNoProgram = errors.New("no program mapped")

// Driver provides the interface to control a core.
type Driver interface {
	// MapProgram loads the program into the core, with in as the input
	// stream and out as the output sink. The core starts from a zeroed
	// tape.
	MapProgram(prog inst.Program, in io.Reader, out io.Writer)

	// Run ticks the core until it halts or fails and returns the fatal
	// error, if any.
	Run() error

	// Core returns the core the driver controls.
	Core() *core.Core
}

type driverImpl struct {
	name   string
	engine sim.Engine
	core   *core.Core
	mapped bool
}

// MapProgram dispatches a program to the core.
func (d *driverImpl) MapProgram(prog inst.Program, in io.Reader, out io.Writer) {
	d.core.MapProgram(prog, in, out)
	d.mapped = true
}

// Run runs the core on the engine.
func (d *driverImpl) Run() error {
	if !d.mapped {
		return ErrNoProgram
	}

	d.core.TickNow()

	if err := d.engine.Run(); err != nil {
		return fmt.Errorf("%s: engine: %w", d.name, err)
	}

	core.Trace("Driver",
		"Behavior", "Finish",
		"Name", d.name,
		"Time", float64(d.engine.CurrentTime()*1e9),
		"Retired", d.core.Machine().Retired(),
	)

	return d.core.Err()
}

func (d *driverImpl) Core() *core.Core {
	return d.core
}

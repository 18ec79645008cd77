package api

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/tapesim/core"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	engine       sim.Engine
	freq         sim.Freq
	stepsPerTick int
}

// WithEngine sets the engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the driver.
func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

// WithStepsPerTick sets how many instructions the core retires per cycle.
func (b DriverBuilder) WithStepsPerTick(n int) DriverBuilder {
	b.stepsPerTick = n
	return b
}

// Build create a driver.
func (b DriverBuilder) Build(name string) Driver {
	if b.engine == nil {
		b.engine = sim.NewSerialEngine()
	}

	if b.freq == 0 {
		b.freq = 1 * sim.GHz
	}

	cb := core.NewBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq)
	if b.stepsPerTick > 0 {
		cb = cb.WithStepsPerTick(b.stepsPerTick)
	}

	return &driverImpl{
		name:   name,
		engine: b.engine,
		core:   cb.Build(name + ".Core"),
	}
}

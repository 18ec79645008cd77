package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create new cores.
type Builder struct {
	engine       sim.Engine
	freq         sim.Freq
	stepsPerTick int
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithStepsPerTick sets how many instructions the core executes per cycle.
func (b Builder) WithStepsPerTick(n int) Builder {
	if n < 1 {
		panic("need at least 1 step per tick")
	}
	b.stepsPerTick = n
	return b
}

func NewBuilder() Builder {
	return Builder{
		freq:         1 * sim.GHz,
		stepsPerTick: 1,
	}
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	c := &Core{
		stepsPerTick: b.stepsPerTick,
	}

	if c.stepsPerTick == 0 {
		c.stepsPerTick = 1
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}

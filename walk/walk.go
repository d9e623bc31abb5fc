// Package walk builds discrete-time coined quantum walks on cycle graphs.
// The walker position lives in a power-of-two register shifted by modular
// increment and decrement networks, and a one-qubit coin decides the
// direction of every step. Besides the unitary walk, the package builds the
// semiclassical variant that measures the position after every step.
//
// The circuits use only gates that the compiler lowers to Clifford+T without
// rotation synthesis, so compiled walks can be evaluated under the
// homomorphic encryption protocol.
package walk

import (
	"fmt"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
)

// Names of the registers added by the walk constructors. The semiclassical
// walk measures step i into the classical register "step_i".
const (
	CoinRegister     = "coin"
	PositionRegister = "pos"
	OutputRegister   = "pos_out"
	stepPrefix       = "step"
)

// Increment appends to c the modular +1 shift of the position qubits,
// ordered least significant first. Additional control qubits gate the whole
// shift. It panics if the position register is empty or overlaps the
// controls.
func Increment(c *circuit.Circuit, pos []int, controls ...int) {

	if len(pos) == 0 {
		panic(fmt.Errorf("cannot Increment: empty position register"))
	}

	for j := len(pos) - 1; j >= 1; j-- {
		c.MCX(append(append([]int{}, controls...), pos[:j]...), pos[j])
	}

	flip(c, pos[0], controls)
}

// Decrement appends to c the modular -1 shift of the position qubits, the
// inverse of [Increment].
func Decrement(c *circuit.Circuit, pos []int, controls ...int) {

	if len(pos) == 0 {
		panic(fmt.Errorf("cannot Decrement: empty position register"))
	}

	flip(c, pos[0], controls)

	for j := 1; j <= len(pos)-1; j++ {
		c.MCX(append(append([]int{}, controls...), pos[:j]...), pos[j])
	}
}

// flip applies X to the target, gated on the controls when there are any.
func flip(c *circuit.Circuit, target int, controls []int) {
	if len(controls) == 0 {
		c.X(target)
		return
	}
	c.MCX(append([]int(nil), controls...), target)
}

// step appends one walk step: the optional Hadamard coin toss, a right
// shift on coin 1 and a left shift on coin 0.
func step(c *circuit.Circuit, params Parameters, coin int, pos []int) {

	if params.CoinH() {
		c.H(coin)
	}

	Increment(c, pos, coin)
	c.X(coin)
	Decrement(c, pos, coin)
	c.X(coin)
}

// NewQuantumWalk builds the coined walk circuit over the registers "coin"
// and "pos", walking for the configured number of steps and measuring the
// final position into the register "pos_out".
func NewQuantumWalk(params Parameters) (*circuit.Circuit, error) {

	c := circuit.NewCircuit()

	coin, err := c.AddRegister(CoinRegister, 1)
	if err != nil {
		return nil, fmt.Errorf("cannot NewQuantumWalk: %w", err)
	}

	pos, err := c.AddRegister(PositionRegister, params.LogNodes())
	if err != nil {
		return nil, fmt.Errorf("cannot NewQuantumWalk: %w", err)
	}

	out, err := c.AddClassicalRegister(OutputRegister, params.LogNodes())
	if err != nil {
		return nil, fmt.Errorf("cannot NewQuantumWalk: %w", err)
	}

	for i := 0; i < params.Steps(); i++ {
		step(c, params, coin.Index(0), pos.Indices())
	}

	c.Barrier()
	for i, q := range pos.Indices() {
		c.Measure(q, out.Index(i))
	}

	return c, nil
}

// NewSemiclassicalWalk builds the measured walk: after every step the
// position is measured into its own register "step_i" and the coin is
// reset, so a single shot records the full trajectory of the walker.
func NewSemiclassicalWalk(params Parameters) (*circuit.Circuit, error) {

	c := circuit.NewCircuit()

	coin, err := c.AddRegister(CoinRegister, 1)
	if err != nil {
		return nil, fmt.Errorf("cannot NewSemiclassicalWalk: %w", err)
	}

	pos, err := c.AddRegister(PositionRegister, params.LogNodes())
	if err != nil {
		return nil, fmt.Errorf("cannot NewSemiclassicalWalk: %w", err)
	}

	steps := make([]circuit.ClassicalRegister, params.Steps())
	for i := range steps {
		if steps[i], err = c.AddClassicalRegister(fmt.Sprintf("%s_%d", stepPrefix, i), params.LogNodes()); err != nil {
			return nil, fmt.Errorf("cannot NewSemiclassicalWalk: %w", err)
		}
	}

	for i := 0; i < params.Steps(); i++ {
		step(c, params, coin.Index(0), pos.Indices())
		c.Barrier()
		for k, q := range pos.Indices() {
			c.Measure(q, steps[i].Index(k))
		}
		c.Reset(coin.Index(0))
	}

	return c, nil
}

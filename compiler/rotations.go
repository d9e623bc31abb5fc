package compiler

import (
	"context"

	"github.com/pkg/errors"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
	"github.com/OrtegaSA/cqc-qhe-repo/gridsynth"
	"github.com/OrtegaSA/cqc-qhe-repo/utils/bignum"
)

// anglePrec is the precision of the angle normalization, in bits.
const anglePrec = 128

// Rotations replaces every RZ and P gate of the circuit by the gridsynth
// Clifford+T sequence approximating it. Angles are first normalized to
// [0, 2*pi). The per rotation error is GateBudget when set, or CircuitBudget
// divided by the number of rotations; with neither, the synthesizer settings
// apply. A circuit without rotations is returned as a copy, without invoking
// gridsynth.
func Rotations(ctx context.Context, c *circuit.Circuit, opts Options) (*circuit.Circuit, error) {

	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "cannot Rotations")
	}

	nRot := c.CountGates(circuit.RZ, circuit.P)
	if nRot == 0 {
		return c.CopyNew(), nil
	}

	var synth gridsynth.Synthesizer
	if opts.Synth != nil {
		synth = *opts.Synth
	}

	eps := opts.GateBudget
	if opts.CircuitBudget > 0 {
		eps = opts.CircuitBudget / float64(nRot)
	}

	if eps > 0 {
		synth.Epsilon = eps
		synth.Digits = 0
	}

	if opts.Seed != 0 {
		seed := opts.Seed
		synth.Seed = &seed
	} else if synth.Seed == nil {
		seed := DefaultSeed
		synth.Seed = &seed
	}

	out, err := emptyLike(c, 0, false)
	if err != nil {
		return nil, errors.Wrap(err, "cannot Rotations")
	}

	e := &emitter{c: out}

	for _, inst := range c.Instructions() {

		if inst.Gate != circuit.RZ && inst.Gate != circuit.P {
			e.append(*inst)
			continue
		}

		seq, err := synth.Synthesize(ctx, normalizeAngle(inst.Params[0]))
		if err != nil {
			return nil, errors.Wrap(err, "cannot Rotations")
		}

		e.sequence(seq.RewritePauli(), inst.Qubits[0], inst.Cond)
	}

	if e.err != nil {
		return nil, errors.Wrap(e.err, "cannot Rotations")
	}

	return out, nil
}

// sequence appends a gridsynth sequence on the given qubit, in reverse
// order. I and W contribute no instruction.
func (e *emitter) sequence(seq gridsynth.Sequence, qubit int, cond *circuit.Condition) {

	for i := len(seq) - 1; i >= 0; i-- {
		switch seq[i] {
		case 'S':
			e.emit(circuit.S, []int{qubit}, cond)
		case 'T':
			e.emit(circuit.T, []int{qubit}, cond)
		case 'H':
			e.emit(circuit.H, []int{qubit}, cond)
		case 'X':
			e.emit(circuit.X, []int{qubit}, cond)
		case 'Z':
			e.emit(circuit.Z, []int{qubit}, cond)
		case 'I', 'W':
		default:
			e.err = errors.Errorf("wrong gate in the RZ decomposition: %q", seq[i])
		}

		if e.err != nil {
			return
		}
	}
}

// normalizeAngle reduces theta to [0, 2*pi) in high precision arithmetic.
func normalizeAngle(theta float64) float64 {
	normalized, _ := bignum.ModTwoPi(bignum.NewFloat(theta, anglePrec), anglePrec).Float64()
	return normalized
}

// TCount returns the number of T and Tdg gates in the circuit, the cost
// driver of homomorphic evaluation.
func TCount(c *circuit.Circuit) int {
	return c.CountGates(circuit.T, circuit.Tdg)
}

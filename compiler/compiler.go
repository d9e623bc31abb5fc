// Package compiler lowers circuits over the extended gate set to the
// Clifford+T set {X, Z, H, S, Sdg, T, Tdg, CX}, the one evaluable under the
// gate-teleportation homomorphic scheme. Lowering is a two pass process:
// [CliffordT] rewrites every gate to Clifford+T gates and RZ/P rotations,
// and [Rotations] replaces each remaining rotation by a gridsynth sequence.
package compiler

import (
	"context"

	"github.com/pkg/errors"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
	"github.com/OrtegaSA/cqc-qhe-repo/gridsynth"
)

// DefaultSeed seeds the gridsynth algorithm when [Options] leaves Seed unset,
// making compilation reproducible by default.
const DefaultSeed int64 = 32

// ancillaName is the register holding the qubits borrowed by the MCX ladder.
const ancillaName = "anc"

// Options configures the compilation passes.
type Options struct {
	// CircuitBudget is the total approximation error of the circuit, split
	// evenly across its rotations. Mutually exclusive with GateBudget.
	CircuitBudget float64
	// GateBudget is the approximation error of each individual rotation.
	GateBudget float64
	// AncillaTop places the ancilla register before the original qubits
	// instead of after them.
	AncillaTop bool
	// KeepRotations skips the rotation pass, leaving RZ and P gates in the
	// compiled circuit.
	KeepRotations bool
	// Seed seeds the gridsynth algorithm. 0 means DefaultSeed.
	Seed int64
	// Synth synthesizes the rotations. Nil means a zero
	// [gridsynth.Synthesizer]; its error and seed are overridden by the
	// budgets and seed above when those are set.
	Synth *gridsynth.Synthesizer
}

// validate rejects ambiguous budget declarations.
func (o Options) validate() error {
	if o.CircuitBudget > 0 && o.GateBudget > 0 {
		return errors.New("the declaration of both CircuitBudget and GateBudget is ambiguous, use only one")
	}
	return nil
}

// CliffordT compiles the circuit to Clifford+T gates. Gates outside the set
// are lowered in place, consuming an ancilla register when the circuit holds
// MCX gates with more than two controls. Unless KeepRotations is set, the
// rotation pass then replaces every RZ and P gate by its gridsynth sequence,
// which requires the gridsynth binary: without it the returned error wraps
// [gridsynth.ErrNotInstalled].
//
// Classical conditions are carried onto every gate of a lowering, which is
// equivalent to conditioning the lowered block.
func CliffordT(ctx context.Context, c *circuit.Circuit, opts Options) (*circuit.Circuit, error) {

	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "cannot CliffordT")
	}

	nAncilla := 0
	for _, inst := range c.Instructions() {
		if inst.Gate == circuit.MCX {
			if n := len(inst.Qubits) - 3; n > nAncilla {
				nAncilla = n
			}
		}
	}

	out, err := emptyLike(c, nAncilla, opts.AncillaTop)
	if err != nil {
		return nil, errors.Wrap(err, "cannot CliffordT")
	}

	shift := 0
	if opts.AncillaTop {
		shift = nAncilla
	}

	nOrig := c.NumQubits()
	anc := func(j int) int {
		if opts.AncillaTop {
			return j
		}
		return nOrig + j
	}

	e := &emitter{c: out}

	for _, inst := range c.Instructions() {

		q := make([]int, len(inst.Qubits))
		for i, v := range inst.Qubits {
			q[i] = v + shift
		}
		cond := inst.Cond

		switch inst.Gate {

		case circuit.X, circuit.Z, circuit.H, circuit.S, circuit.Sdg, circuit.T, circuit.Tdg, circuit.CX:
			e.emit(inst.Gate, q, cond)

		case circuit.Barrier:
			e.append(circuit.Instruction{Gate: circuit.Barrier, Qubits: q})

		case circuit.Y:
			e.emit(circuit.X, q, cond)
			e.emit(circuit.Z, q, cond)

		case circuit.CY:
			e.emit(circuit.Sdg, q[1:], cond)
			e.emit(circuit.CX, q, cond)
			e.emit(circuit.S, q[1:], cond)

		case circuit.CZ:
			e.emit(circuit.H, q[1:], cond)
			e.emit(circuit.CX, q, cond)
			e.emit(circuit.H, q[1:], cond)

		case circuit.CH:
			e.controlH(q[0], q[1], cond)

		case circuit.CCX:
			e.toffoli(q[0], q[1], q[2], cond)

		case circuit.MCX:
			k := len(q) - 1
			switch k {
			case 1:
				e.emit(circuit.CX, q, cond)
			case 2:
				e.toffoli(q[0], q[1], q[2], cond)
			default:
				nAnc := k - 2
				e.toffoli(q[0], q[1], anc(0), cond)
				for i := 1; i < nAnc; i++ {
					e.toffoli(q[1+i], anc(i-1), anc(i), cond)
				}
				e.toffoli(q[k-1], anc(nAnc-1), q[k], cond)
				for i := nAnc - 1; i >= 1; i-- {
					e.toffoli(q[1+i], anc(i-1), anc(i), cond)
				}
				e.toffoli(q[0], q[1], anc(0), cond)
			}

		case circuit.Swap:
			e.emit(circuit.CX, []int{q[0], q[1]}, cond)
			e.emit(circuit.CX, []int{q[1], q[0]}, cond)
			e.emit(circuit.CX, []int{q[0], q[1]}, cond)

		case circuit.RX:
			e.emit(circuit.H, q, cond)
			e.rotation(circuit.RZ, inst.Params[0], q[0], cond)
			e.emit(circuit.H, q, cond)

		case circuit.RY:
			e.emit(circuit.Sdg, q, cond)
			e.emit(circuit.H, q, cond)
			e.rotation(circuit.RZ, inst.Params[0], q[0], cond)
			e.emit(circuit.H, q, cond)
			e.emit(circuit.S, q, cond)

		case circuit.RZ, circuit.P:
			e.rotation(inst.Gate, inst.Params[0], q[0], cond)

		case circuit.CRX:
			e.controlRX(inst.Params[0], q[0], q[1], cond)

		case circuit.CRY:
			e.controlRY(inst.Params[0], q[0], q[1], cond)

		case circuit.CRZ:
			e.controlRZ(inst.Params[0], q[0], q[1], cond)

		case circuit.CP:
			e.controlP(inst.Params[0], q[0], q[1], cond)

		case circuit.U:
			theta, phi, lambda := inst.Params[0], inst.Params[1], inst.Params[2]
			e.rotation(circuit.RZ, lambda, q[0], cond)
			e.emit(circuit.H, q, cond)
			e.emit(circuit.S, q, cond)
			e.emit(circuit.H, q, cond)
			e.rotation(circuit.RZ, theta, q[0], cond)
			e.emit(circuit.H, q, cond)
			e.emit(circuit.Sdg, q, cond)
			e.emit(circuit.H, q, cond)
			e.rotation(circuit.RZ, phi, q[0], cond)

		case circuit.Measure:
			e.append(circuit.Instruction{Gate: circuit.Measure, Qubits: q, Clbits: inst.Clbits, Cond: cond})

		case circuit.Reset:
			e.append(circuit.Instruction{Gate: circuit.Reset, Qubits: q, Cond: cond})

		default:
			return nil, errors.Errorf("cannot CliffordT: wrong gate in the circuit: %s", inst.Gate)
		}
	}

	if e.err != nil {
		return nil, errors.Wrap(e.err, "cannot CliffordT")
	}

	if opts.KeepRotations {
		return out, nil
	}

	return Rotations(ctx, out, opts)
}

// emptyLike creates a circuit with the registers of c, plus an ancilla
// register of the given size placed before or after the original qubits.
func emptyLike(c *circuit.Circuit, nAncilla int, ancillaTop bool) (*circuit.Circuit, error) {

	out := circuit.NewCircuit()

	if ancillaTop && nAncilla > 0 {
		if _, err := out.AddRegister(ancillaName, nAncilla); err != nil {
			return nil, err
		}
	}

	for _, r := range c.QuantumRegisters() {
		if _, err := out.AddRegister(r.Name, r.Size()); err != nil {
			return nil, err
		}
	}

	if !ancillaTop && nAncilla > 0 {
		if _, err := out.AddRegister(ancillaName, nAncilla); err != nil {
			return nil, err
		}
	}

	for _, r := range c.ClassicalRegisters() {
		if _, err := out.AddClassicalRegister(r.Name, r.Size()); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// emitter appends lowered instructions to a circuit, holding on to the first
// error.
type emitter struct {
	c   *circuit.Circuit
	err error
}

func (e *emitter) append(inst circuit.Instruction) {
	if e.err != nil {
		return
	}
	e.err = e.c.Append(inst)
}

func (e *emitter) emit(g circuit.Gate, qubits []int, cond *circuit.Condition) {
	e.append(circuit.Instruction{Gate: g, Qubits: qubits, Cond: cond})
}

func (e *emitter) rotation(g circuit.Gate, theta float64, qubit int, cond *circuit.Condition) {
	e.append(circuit.Instruction{Gate: g, Qubits: []int{qubit}, Params: []float64{theta}, Cond: cond})
}

// toffoli lowers a CCX gate to the 7 T gate network.
func (e *emitter) toffoli(q0, q1, q2 int, cond *circuit.Condition) {
	e.emit(circuit.H, []int{q2}, cond)
	e.emit(circuit.CX, []int{q1, q2}, cond)
	e.emit(circuit.Tdg, []int{q2}, cond)
	e.emit(circuit.CX, []int{q0, q2}, cond)
	e.emit(circuit.T, []int{q2}, cond)
	e.emit(circuit.CX, []int{q1, q2}, cond)
	e.emit(circuit.Tdg, []int{q2}, cond)
	e.emit(circuit.CX, []int{q0, q2}, cond)
	e.emit(circuit.T, []int{q1}, cond)
	e.emit(circuit.T, []int{q2}, cond)
	e.emit(circuit.CX, []int{q0, q1}, cond)
	e.emit(circuit.H, []int{q2}, cond)
	e.emit(circuit.T, []int{q0}, cond)
	e.emit(circuit.Tdg, []int{q1}, cond)
	e.emit(circuit.CX, []int{q0, q1}, cond)
}

// controlH conjugates CX by the basis change H = V X V*, with
// V = S H T H Sdg H.
func (e *emitter) controlH(control, target int, cond *circuit.Condition) {
	e.emit(circuit.Sdg, []int{target}, cond)
	e.emit(circuit.H, []int{target}, cond)
	e.emit(circuit.Tdg, []int{target}, cond)
	e.emit(circuit.H, []int{target}, cond)
	e.emit(circuit.S, []int{target}, cond)
	e.emit(circuit.H, []int{target}, cond)
	e.emit(circuit.CX, []int{control, target}, cond)
	e.emit(circuit.H, []int{target}, cond)
	e.emit(circuit.Sdg, []int{target}, cond)
	e.emit(circuit.H, []int{target}, cond)
	e.emit(circuit.T, []int{target}, cond)
	e.emit(circuit.H, []int{target}, cond)
	e.emit(circuit.S, []int{target}, cond)
}

func (e *emitter) controlRX(theta float64, control, target int, cond *circuit.Condition) {
	e.emit(circuit.H, []int{target}, cond)
	e.emit(circuit.CX, []int{control, target}, cond)
	e.rotation(circuit.RZ, -theta/2, target, cond)
	e.emit(circuit.CX, []int{control, target}, cond)
	e.rotation(circuit.RZ, theta/2, target, cond)
	e.emit(circuit.H, []int{target}, cond)
}

func (e *emitter) controlRY(theta float64, control, target int, cond *circuit.Condition) {
	e.emit(circuit.Sdg, []int{target}, cond)
	e.emit(circuit.H, []int{target}, cond)
	e.emit(circuit.CX, []int{control, target}, cond)
	e.rotation(circuit.RZ, -theta/2, target, cond)
	e.emit(circuit.CX, []int{control, target}, cond)
	e.rotation(circuit.RZ, theta/2, target, cond)
	e.emit(circuit.H, []int{target}, cond)
	e.emit(circuit.S, []int{target}, cond)
}

func (e *emitter) controlRZ(theta float64, control, target int, cond *circuit.Condition) {
	e.emit(circuit.CX, []int{control, target}, cond)
	e.rotation(circuit.RZ, -theta/2, target, cond)
	e.emit(circuit.CX, []int{control, target}, cond)
	e.rotation(circuit.RZ, theta/2, target, cond)
}

func (e *emitter) controlP(theta float64, control, target int, cond *circuit.Condition) {
	e.rotation(circuit.P, theta/2, control, cond)
	e.emit(circuit.CX, []int{control, target}, cond)
	e.rotation(circuit.RZ, -theta/2, target, cond)
	e.emit(circuit.CX, []int{control, target}, cond)
	e.rotation(circuit.RZ, theta/2, target, cond)
}

// Package qhe assembles classical-quantum circuits implementing the gate
// teleportation scheme for quantum homomorphic encryption. The client one
// time pads its qubits with random X and Z keys, the server evaluates a
// Clifford+T circuit on the padded state, and the pad keys are updated gate
// by gate with classical rules emulated in-circuit by ancilla qubits,
// classically controlled gates and measurements. Every T and Tdg gate
// consumes a Bell pair through gate teleportation.
//
// The whole protocol, keys included, runs as a single [circuit.Circuit], so
// one simulation samples the key generation, the encrypted evaluation and
// the key updates at once. [Decrypt] removes the pad from the simulated
// counts.
package qhe

import (
	"fmt"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
)

// Register names of the protocol. The output register is measured last and
// decrypted against the final X key.
const (
	XInitKeyRegister = "x_init_key"
	ZInitKeyRegister = "z_init_key"
	XKeyRegister     = "x_key"
	ZKeyRegister     = "z_key"
	RARegister       = "ra"
	RBRegister       = "rb"
	bellPrefix       = "bell"
	OutputRegister   = "circ"
)

// Variant selects how the protocol provisions Bell pairs for the T gate
// teleportations.
type Variant uint8

const (
	// PerGateBell gives every T and Tdg gate its own Bell register and
	// defers the Bell measurements to the key update pass, after the output
	// measurement. The first two main qubits are recycled as ancillas for
	// the classical key updates.
	PerGateBell Variant = iota
	// RecycledBell reuses a single Bell register for every teleportation
	// and for the classical key updates, resetting it each time. Updates
	// are interleaved with the server pass and the output is measured last.
	RecycledBell
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case PerGateBell:
		return "PerGateBell"
	case RecycledBell:
		return "RecycledBell"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}

// Layout records the classical structure of a homomorphic circuit, as
// needed to read and decrypt its simulation counts.
type Layout struct {
	// Registers are the classical registers of the circuit, in addition
	// order, matching the space separated groups of a counts key.
	Registers []circuit.ClassicalRegister
	// Measured holds, for the i-th output bit, the main circuit position of
	// the qubit it measured.
	Measured []int
	// MainQubits is the number of qubits of the main circuit, the width of
	// the key registers.
	MainQubits int
	// TCount is the number of teleported T and Tdg gates.
	TCount int
	// Variant is the Bell register strategy the circuit was built with.
	Variant Variant
}

// GroupIndex returns the position of the named classical register among the
// space separated groups of a counts key.
func (l *Layout) GroupIndex(name string) (int, bool) {
	for i, r := range l.Registers {
		if r.Name == name {
			return i, true
		}
	}
	return 0, false
}

// NewHomomorphicCircuit builds the protocol circuit evaluating main on a
// state prepared by init and one time padded with fresh random keys. The
// main circuit must be compiled to {X, Z, H, S, Sdg, T, Tdg, CX} plus
// measure, reset and barrier, without classical conditions. The qubits
// listed in measured are measured into the output register after the
// evaluation; their bits stay padded by the final X key until [Decrypt].
//
// The init circuit prepares the client state on the main qubits and cannot
// touch classical bits. A nil init prepares nothing.
func NewHomomorphicCircuit(init, main *circuit.Circuit, measured []int, variant Variant) (*circuit.Circuit, *Layout, error) {

	n := main.NumQubits()
	if n < 1 {
		return nil, nil, fmt.Errorf("cannot NewHomomorphicCircuit: the main circuit has no qubits")
	}
	if variant == PerGateBell && n < 2 {
		return nil, nil, fmt.Errorf("cannot NewHomomorphicCircuit: %s recycles the first two main qubits as classical gate ancillas but the main circuit has %d qubit", variant, n)
	}

	for _, inst := range main.Instructions() {
		switch inst.Gate {
		case circuit.X, circuit.Z, circuit.H, circuit.S, circuit.Sdg, circuit.T, circuit.Tdg,
			circuit.CX, circuit.Barrier, circuit.Measure, circuit.Reset:
		default:
			return nil, nil, fmt.Errorf("cannot NewHomomorphicCircuit: wrong gate in the circuit: %s", inst.Gate)
		}
		if inst.Cond != nil {
			return nil, nil, fmt.Errorf("cannot NewHomomorphicCircuit: the main circuit cannot condition on classical bits")
		}
	}

	if init != nil {
		if init.NumQubits() > n {
			return nil, nil, fmt.Errorf("cannot NewHomomorphicCircuit: the client circuit uses %d qubits but the main circuit has %d", init.NumQubits(), n)
		}
		for _, inst := range init.Instructions() {
			if inst.Gate == circuit.Measure || inst.Cond != nil {
				return nil, nil, fmt.Errorf("cannot NewHomomorphicCircuit: the client circuit cannot touch classical bits")
			}
		}
	}

	for _, q := range measured {
		if q < 0 || q >= n {
			return nil, nil, fmt.Errorf("cannot NewHomomorphicCircuit: measured qubit %d out of range [0, %d)", q, n)
		}
	}

	b := &builder{
		hc:       circuit.NewCircuit(),
		main:     main,
		init:     init,
		measured: measured,
		variant:  variant,
		n:        n,
		tCount:   main.CountGates(circuit.T, circuit.Tdg),
	}

	if err := b.addRegisters(); err != nil {
		return nil, nil, fmt.Errorf("cannot NewHomomorphicCircuit: %w", err)
	}

	b.keygen()
	b.prepare()
	b.encrypt()

	switch variant {
	case PerGateBell:
		b.serverPass()
		b.measureOutput()
		b.updatePass()
	case RecycledBell:
		b.interleavedPass()
		b.measureOutput()
	default:
		return nil, nil, fmt.Errorf("cannot NewHomomorphicCircuit: unknown variant %s", variant)
	}

	layout := &Layout{
		Registers:  b.hc.ClassicalRegisters(),
		Measured:   append([]int(nil), measured...),
		MainQubits: n,
		TCount:     b.tCount,
		Variant:    variant,
	}

	return b.hc, layout, nil
}

// builder assembles the protocol circuit. All user inputs are validated
// before it runs, so its methods go through the panicking circuit builders.
type builder struct {
	hc       *circuit.Circuit
	main     *circuit.Circuit
	init     *circuit.Circuit
	measured []int
	variant  Variant

	n      int
	tCount int

	xInit, zInit circuit.ClassicalRegister
	xKey, zKey   circuit.ClassicalRegister
	ra, rb       circuit.ClassicalRegister
	out          circuit.ClassicalRegister

	// mainCl is the offset of the main circuit's own classical bits.
	mainCl int

	// bellBase is the index of the first Bell qubit.
	bellBase int
}

// addRegisters lays out the quantum and classical registers: the main
// registers first, one Bell register per teleportation (or a single reused
// one), then the key, Bell measurement, carried over and output classical
// registers.
func (b *builder) addRegisters() error {

	for _, r := range b.main.QuantumRegisters() {
		if _, err := b.hc.AddRegister(r.Name, r.Size()); err != nil {
			return err
		}
	}

	b.bellBase = b.n

	switch {
	case b.variant == RecycledBell:
		if _, err := b.hc.AddRegister(bellPrefix, 2); err != nil {
			return err
		}
	case b.tCount > 0:
		for t := 0; t < b.tCount; t++ {
			if _, err := b.hc.AddRegister(fmt.Sprintf("%s_%d", bellPrefix, t), 2); err != nil {
				return err
			}
		}
	}

	var err error
	if b.xInit, err = b.hc.AddClassicalRegister(XInitKeyRegister, b.n); err != nil {
		return err
	}
	if b.zInit, err = b.hc.AddClassicalRegister(ZInitKeyRegister, b.n); err != nil {
		return err
	}
	if b.xKey, err = b.hc.AddClassicalRegister(XKeyRegister, b.n); err != nil {
		return err
	}
	if b.zKey, err = b.hc.AddClassicalRegister(ZKeyRegister, b.n); err != nil {
		return err
	}

	if b.tCount > 0 {
		if b.ra, err = b.hc.AddClassicalRegister(RARegister, b.tCount); err != nil {
			return err
		}
		if b.rb, err = b.hc.AddClassicalRegister(RBRegister, b.tCount); err != nil {
			return err
		}
	}

	b.mainCl = b.hc.NumClbits()
	for _, r := range b.main.ClassicalRegisters() {
		if _, err := b.hc.AddClassicalRegister(r.Name, r.Size()); err != nil {
			return err
		}
	}

	if len(b.measured) > 0 {
		if b.out, err = b.hc.AddClassicalRegister(OutputRegister, len(b.measured)); err != nil {
			return err
		}
	}

	return nil
}

// bell returns the Bell pair qubits of the t-th teleportation.
func (b *builder) bell(t int) (b0, b1 int) {
	if b.variant == RecycledBell {
		return b.bellBase, b.bellBase + 1
	}
	return b.bellBase + 2*t, b.bellBase + 2*t + 1
}

// mains returns the main circuit qubits, which keep their indices in the
// protocol circuit.
func (b *builder) mains() []int {
	qubits := make([]int, b.n)
	for i := range qubits {
		qubits[i] = i
	}
	return qubits
}

// keygen samples the X and Z keys: each main qubit is put in superposition
// and measured twice, into the immutable init copy and into the running key.
func (b *builder) keygen() {

	mains := b.mains()

	b.hc.H(mains...)
	for i, q := range mains {
		b.hc.Measure(q, b.xInit.Index(i))
	}
	for i, q := range mains {
		b.hc.Measure(q, b.xKey.Index(i))
	}
	b.hc.Reset(mains...)
	b.hc.Barrier()

	b.hc.H(mains...)
	for i, q := range mains {
		b.hc.Measure(q, b.zInit.Index(i))
	}
	for i, q := range mains {
		b.hc.Measure(q, b.zKey.Index(i))
	}
	b.hc.Reset(mains...)
	b.hc.Barrier()
}

// prepare inlines the client preparation circuit.
func (b *builder) prepare() {

	if b.init != nil {
		for _, inst := range b.init.Instructions() {
			if err := b.hc.Append(*inst); err != nil {
				panic(fmt.Errorf("cannot prepare: %w", err))
			}
		}
	}

	b.hc.Barrier()
}

// encrypt applies the one time pad X^x Z^z under classical control of the
// initial keys.
func (b *builder) encrypt() {

	for i, q := range b.mains() {
		b.hc.X(q).CIf(b.xInit.Index(i), 1)
		b.hc.Z(q).CIf(b.zInit.Index(i), 1)
	}
	b.hc.Barrier()
}

// serverPass evaluates the main circuit on the padded state. Every T and
// Tdg gate prepares a fresh Bell pair and swaps the data qubit with one
// half; the Bell measurement is deferred to the update pass.
func (b *builder) serverPass() {

	t := 0
	for _, inst := range b.main.Instructions() {

		switch inst.Gate {
		case circuit.X:
			b.hc.X(inst.Qubits...)
		case circuit.Z:
			b.hc.Z(inst.Qubits...)
		case circuit.H:
			b.hc.H(inst.Qubits...)
		case circuit.S:
			b.hc.S(inst.Qubits...)
		case circuit.Sdg:
			b.hc.Sdg(inst.Qubits...)
		case circuit.CX:
			b.hc.CX(inst.Qubits[0], inst.Qubits[1])

		case circuit.T, circuit.Tdg:
			b0, b1 := b.bell(t)
			b.hc.Barrier()
			if inst.Gate == circuit.T {
				b.hc.T(inst.Qubits[0])
			} else {
				b.hc.Tdg(inst.Qubits[0])
			}
			b.hc.H(b0)
			b.hc.CX(b0, b1)
			b.hc.Swap(inst.Qubits[0], b0)
			t++
			b.hc.Barrier()

		case circuit.Barrier:
			b.hc.Barrier(inst.Qubits...)
		case circuit.Measure:
			b.hc.Measure(inst.Qubits[0], b.mainCl+inst.Clbits[0])
		case circuit.Reset:
			b.hc.Reset(inst.Qubits...)
		}
	}
}

// updatePass replays the main circuit on the classical keys: Clifford gates
// update the pad deterministically, T and Tdg gates finish their
// teleportation with the conditional S correction and the Bell measurement.
// The first two main qubits serve as ancillas for the classical gates.
func (b *builder) updatePass() {

	t := 0
	for _, inst := range b.main.Instructions() {

		switch inst.Gate {
		case circuit.X, circuit.Z:

		case circuit.H:
			q := inst.Qubits[0]
			b.classicalSwap(b.xKey.Index(q), b.zKey.Index(q))

		case circuit.S, circuit.Sdg:
			q := inst.Qubits[0]
			b.classicalCNOT(b.xKey.Index(q), b.zKey.Index(q))

		case circuit.CX:
			qc, qt := inst.Qubits[0], inst.Qubits[1]
			b.classicalCNOT(b.xKey.Index(qc), b.xKey.Index(qt))
			b.classicalCNOT(b.zKey.Index(qt), b.zKey.Index(qc))

		case circuit.T, circuit.Tdg:
			q := inst.Qubits[0]
			b0, b1 := b.bell(t)
			b.hc.Barrier()
			b.hc.S(b0).CIf(b.xKey.Index(q), 1)
			b.hc.CX(b0, b1)
			b.hc.H(b0)
			b.hc.Measure(b0, b.rb.Index(t))
			b.hc.Measure(b1, b.ra.Index(t))

			if inst.Gate == circuit.T {
				b.classicalCNOT(b.xKey.Index(q), b.zKey.Index(q))
			}
			b.classicalCNOT(b.rb.Index(t), b.zKey.Index(q))
			b.classicalCNOT(b.ra.Index(t), b.xKey.Index(q))

			t++
			b.hc.Barrier()

		case circuit.Barrier:
			b.hc.Barrier(inst.Qubits...)

		case circuit.Measure:
			b.classicalReset(b.zKey.Index(inst.Qubits[0]))

		case circuit.Reset:
			q := inst.Qubits[0]
			b.classicalReset(b.xKey.Index(q))
			b.classicalReset(b.zKey.Index(q))
		}
	}
}

// interleavedPass evaluates the main circuit with the key updates applied
// right after each gate, recycling the single Bell register for both the
// teleportations and the classical gate ancillas.
func (b *builder) interleavedPass() {

	t := 0
	for _, inst := range b.main.Instructions() {

		switch inst.Gate {
		case circuit.X:
			b.hc.X(inst.Qubits...)
		case circuit.Z:
			b.hc.Z(inst.Qubits...)

		case circuit.H:
			q := inst.Qubits[0]
			b.hc.H(q)
			b.classicalSwap(b.xKey.Index(q), b.zKey.Index(q))

		case circuit.S:
			q := inst.Qubits[0]
			b.hc.S(q)
			b.classicalCNOT(b.xKey.Index(q), b.zKey.Index(q))

		case circuit.Sdg:
			q := inst.Qubits[0]
			b.hc.Sdg(q)
			b.classicalCNOT(b.xKey.Index(q), b.zKey.Index(q))

		case circuit.CX:
			qc, qt := inst.Qubits[0], inst.Qubits[1]
			b.hc.CX(qc, qt)
			b.classicalCNOT(b.xKey.Index(qc), b.xKey.Index(qt))
			b.classicalCNOT(b.zKey.Index(qt), b.zKey.Index(qc))

		case circuit.T, circuit.Tdg:
			q := inst.Qubits[0]
			b0, b1 := b.bell(t)
			b.hc.Barrier()
			if inst.Gate == circuit.T {
				b.hc.T(q)
			} else {
				b.hc.Tdg(q)
			}
			b.hc.Reset(b0, b1)
			b.hc.H(b0)
			b.hc.CX(b0, b1)
			b.hc.Swap(q, b0)
			b.hc.S(b0).CIf(b.xKey.Index(q), 1)
			b.hc.CX(b0, b1)
			b.hc.H(b0)
			b.hc.Measure(b0, b.rb.Index(t))
			b.hc.Measure(b1, b.ra.Index(t))

			if inst.Gate == circuit.T {
				b.classicalCNOT(b.xKey.Index(q), b.zKey.Index(q))
			}
			b.classicalCNOT(b.rb.Index(t), b.zKey.Index(q))
			b.classicalCNOT(b.ra.Index(t), b.xKey.Index(q))

			t++
			b.hc.Barrier()

		case circuit.Barrier:
			b.hc.Barrier(inst.Qubits...)

		case circuit.Measure:
			b.hc.Measure(inst.Qubits[0], b.mainCl+inst.Clbits[0])
			b.classicalReset(b.zKey.Index(inst.Qubits[0]))

		case circuit.Reset:
			q := inst.Qubits[0]
			b.hc.Reset(q)
			b.classicalReset(b.xKey.Index(q))
			b.classicalReset(b.zKey.Index(q))
		}
	}
}

// measureOutput measures the requested qubits into the output register.
func (b *builder) measureOutput() {

	if len(b.measured) == 0 {
		return
	}

	b.hc.Barrier()
	for i, q := range b.measured {
		b.hc.Measure(q, b.out.Index(i))
	}
}

// ancillas returns the two qubits recycled for the classical gates.
func (b *builder) ancillas() (int, int) {
	if b.variant == RecycledBell {
		return b.bellBase, b.bellBase + 1
	}
	return 0, 1
}

// classicalCNOT xors the control bit into the target bit: a reset ancilla
// qubit accumulates both bits with classically controlled flips and is
// measured back into the target.
func (b *builder) classicalCNOT(cbit, tbit int) {
	anc, _ := b.ancillas()
	b.hc.Reset(anc)
	b.hc.X(anc).CIf(tbit, 1)
	b.hc.X(anc).CIf(cbit, 1)
	b.hc.Measure(anc, tbit)
}

// classicalSwap exchanges two classical bits through two ancilla qubits,
// measured back crosswise.
func (b *builder) classicalSwap(bit1, bit2 int) {
	anc0, anc1 := b.ancillas()
	b.hc.Reset(anc0, anc1)
	b.hc.X(anc0).CIf(bit1, 1)
	b.hc.X(anc1).CIf(bit2, 1)
	b.hc.Measure(anc1, bit1)
	b.hc.Measure(anc0, bit2)
}

// classicalReset zeroes a classical bit through a reset ancilla.
func (b *builder) classicalReset(bit int) {
	anc, _ := b.ancillas()
	b.hc.Reset(anc)
	b.hc.Measure(anc, bit)
}

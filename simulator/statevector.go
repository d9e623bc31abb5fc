package simulator

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
	"github.com/OrtegaSA/cqc-qhe-repo/utils/sampling"
)

// MaxQubits bounds the number of simulated qubits. A dense statevector over
// 30 qubits already requires 16GiB of amplitudes.
const MaxQubits = 30

// phase returns e^(i*theta).
func phase(theta float64) complex128 {
	return cmplx.Rect(1, theta)
}

var (
	invSqrt2 = complex(1/math.Sqrt2, 0)

	matY = [2][2]complex128{{0, -1i}, {1i, 0}}
	matH = [2][2]complex128{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}
)

func matRX(theta float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return [2][2]complex128{{c, s}, {s, c}}
}

func matRY(theta float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return [2][2]complex128{{c, -s}, {s, c}}
}

func matRZ(theta float64) [2][2]complex128 {
	return [2][2]complex128{{phase(-theta / 2), 0}, {0, phase(theta / 2)}}
}

func matU(theta, phi, lambda float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return [2][2]complex128{
		{c, -phase(lambda) * s},
		{phase(phi) * s, phase(phi+lambda) * c},
	}
}

// Statevector holds the dense state of a register of qubits along with the
// PRNG that drives its measurement outcomes. Qubit q is bit q of the basis
// index.
type Statevector struct {
	n    int
	amps []complex128
	prng sampling.PRNG
}

// NewStatevector creates a new Statevector of numQubits qubits initialized to
// the all-zero state. Measurement outcomes are sampled from prng.
func NewStatevector(numQubits int, prng sampling.PRNG) (*Statevector, error) {

	if numQubits < 1 || numQubits > MaxQubits {
		return nil, fmt.Errorf("cannot NewStatevector: numQubits must be in [1, %d] but is %d", MaxQubits, numQubits)
	}

	if prng == nil {
		return nil, fmt.Errorf("cannot NewStatevector: prng is nil")
	}

	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1

	return &Statevector{n: numQubits, amps: amps, prng: prng}, nil
}

// NumQubits returns the number of qubits of the state.
func (sv *Statevector) NumQubits() int {
	return sv.n
}

// Amplitudes returns the amplitude vector of the state. The returned slice is
// owned by the Statevector and must not be modified.
func (sv *Statevector) Amplitudes() []complex128 {
	return sv.amps
}

// Probabilities returns the probability of each basis state.
func (sv *Statevector) Probabilities() []float64 {
	prob := make([]float64, len(sv.amps))
	for i, a := range sv.amps {
		prob[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return prob
}

// ApplyGate applies a unitary gate to the state. Measure, Reset and Barrier
// are not accepted, see [Statevector.Measure] and [Statevector.Reset].
func (sv *Statevector) ApplyGate(g circuit.Gate, qubits []int, params []float64) error {

	if arity := g.Arity(); arity >= 0 {
		if len(qubits) != arity {
			return fmt.Errorf("cannot ApplyGate: gate %s expects %d qubits but got %d", g, arity, len(qubits))
		}
	} else if g == circuit.MCX && len(qubits) < 2 {
		return fmt.Errorf("cannot ApplyGate: gate %s expects at least 1 control and a target", g)
	}

	for _, q := range qubits {
		if q < 0 || q >= sv.n {
			return fmt.Errorf("cannot ApplyGate: qubit %d out of range [0, %d)", q, sv.n)
		}
	}

	if len(params) != g.NumParams() {
		return fmt.Errorf("cannot ApplyGate: gate %s expects %d parameters but got %d", g, g.NumParams(), len(params))
	}

	switch g {
	case circuit.X:
		sv.applyFlip(qubits[0])
	case circuit.Y:
		sv.applyMatrix(matY, qubits[0])
	case circuit.Z:
		sv.applyPhase(-1, qubits...)
	case circuit.H:
		sv.applyMatrix(matH, qubits[0])
	case circuit.S:
		sv.applyPhase(1i, qubits...)
	case circuit.Sdg:
		sv.applyPhase(-1i, qubits...)
	case circuit.T:
		sv.applyPhase(phase(math.Pi/4), qubits...)
	case circuit.Tdg:
		sv.applyPhase(phase(-math.Pi/4), qubits...)
	case circuit.CX:
		sv.applyFlip(qubits[1], qubits[0])
	case circuit.CY:
		sv.applyMatrix(matY, qubits[1], qubits[0])
	case circuit.CZ:
		sv.applyPhase(-1, qubits...)
	case circuit.CH:
		sv.applyMatrix(matH, qubits[1], qubits[0])
	case circuit.CCX:
		sv.applyFlip(qubits[2], qubits[0], qubits[1])
	case circuit.MCX:
		sv.applyFlip(qubits[len(qubits)-1], qubits[:len(qubits)-1]...)
	case circuit.Swap:
		sv.applySwap(qubits[0], qubits[1])
	case circuit.RX:
		sv.applyMatrix(matRX(params[0]), qubits[0])
	case circuit.RY:
		sv.applyMatrix(matRY(params[0]), qubits[0])
	case circuit.RZ:
		sv.applyMatrix(matRZ(params[0]), qubits[0])
	case circuit.P:
		sv.applyPhase(phase(params[0]), qubits...)
	case circuit.CRX:
		sv.applyMatrix(matRX(params[0]), qubits[1], qubits[0])
	case circuit.CRY:
		sv.applyMatrix(matRY(params[0]), qubits[1], qubits[0])
	case circuit.CRZ:
		sv.applyMatrix(matRZ(params[0]), qubits[1], qubits[0])
	case circuit.CP:
		sv.applyPhase(phase(params[0]), qubits...)
	case circuit.U:
		sv.applyMatrix(matU(params[0], params[1], params[2]), qubits[0])
	default:
		return fmt.Errorf("cannot ApplyGate: gate %s is not unitary", g)
	}

	return nil
}

// applyMatrix applies a single-qubit matrix to target, restricted to the
// subspace where all control qubits are 1.
func (sv *Statevector) applyMatrix(m [2][2]complex128, target int, controls ...int) {

	tMask := 1 << target

	var cMask int
	for _, c := range controls {
		cMask |= 1 << c
	}

	for i := range sv.amps {
		if i&tMask == 0 && i&cMask == cMask {
			j := i | tMask
			a0, a1 := sv.amps[i], sv.amps[j]
			sv.amps[i] = m[0][0]*a0 + m[0][1]*a1
			sv.amps[j] = m[1][0]*a0 + m[1][1]*a1
		}
	}
}

// applyFlip applies an X to target restricted to the subspace where all
// control qubits are 1, as a pairwise amplitude swap.
func (sv *Statevector) applyFlip(target int, controls ...int) {

	tMask := 1 << target

	var cMask int
	for _, c := range controls {
		cMask |= 1 << c
	}

	for i := range sv.amps {
		if i&tMask == 0 && i&cMask == cMask {
			j := i | tMask
			sv.amps[i], sv.amps[j] = sv.amps[j], sv.amps[i]
		}
	}
}

// applyPhase multiplies by p the amplitude of every basis state in which all
// the listed qubits are 1.
func (sv *Statevector) applyPhase(p complex128, qubits ...int) {

	var mask int
	for _, q := range qubits {
		mask |= 1 << q
	}

	for i := range sv.amps {
		if i&mask == mask {
			sv.amps[i] *= p
		}
	}
}

// applySwap exchanges the states of qubits a and b.
func (sv *Statevector) applySwap(a, b int) {

	aMask, bMask := 1<<a, 1<<b

	for i := range sv.amps {
		if i&aMask != 0 && i&bMask == 0 {
			j := i ^ aMask ^ bMask
			sv.amps[i], sv.amps[j] = sv.amps[j], sv.amps[i]
		}
	}
}

// Measure measures the target qubit in the computational basis, sampling the
// outcome from the PRNG of the state. The state is collapsed onto the
// measured outcome and renormalized.
func (sv *Statevector) Measure(target int) (bit uint8, err error) {

	if target < 0 || target >= sv.n {
		return 0, fmt.Errorf("cannot Measure: qubit %d out of range [0, %d)", target, sv.n)
	}

	mask := 1 << target

	var p1 float64
	for i, a := range sv.amps {
		if i&mask != 0 {
			p1 += real(a)*real(a) + imag(a)*imag(a)
		}
	}

	if sampling.Float64FromPRNG(sv.prng) < p1 {
		bit = 1
	}

	var keep int
	if bit == 1 {
		keep = mask
	}

	var norm float64
	for i, a := range sv.amps {
		if i&mask != keep {
			sv.amps[i] = 0
		} else {
			norm += real(a)*real(a) + imag(a)*imag(a)
		}
	}

	if norm == 0 {
		return 0, fmt.Errorf("cannot Measure: collapse onto a zero-probability outcome")
	}

	scale := complex(1/math.Sqrt(norm), 0)
	for i := range sv.amps {
		sv.amps[i] *= scale
	}

	return bit, nil
}

// Reset measures the target qubit and flips it back to 0 if the outcome was 1.
func (sv *Statevector) Reset(target int) error {

	bit, err := sv.Measure(target)
	if err != nil {
		return fmt.Errorf("cannot Reset: %w", err)
	}

	if bit == 1 {
		sv.applyFlip(target)
	}

	return nil
}

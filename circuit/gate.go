// Package circuit implements a register-based quantum circuit representation
// with classically conditioned instructions, mirroring the gate set that the
// homomorphic evaluation and compilation layers operate on.
package circuit

import "fmt"

// Gate identifies a circuit operation. The set covers the Clifford+T gates
// that the homomorphic evaluator accepts, the parametric and multi-controlled
// gates that the compiler lowers to Clifford+T, and the non-unitary
// operations measure, reset and barrier.
type Gate uint8

const (
	X Gate = iota
	Y
	Z
	H
	S
	Sdg
	T
	Tdg
	CX
	CY
	CZ
	CH
	CCX
	MCX
	Swap
	RX
	RY
	RZ
	P
	CRX
	CRY
	CRZ
	CP
	U
	Measure
	Reset
	Barrier
)

// gateMax is the highest valid opcode, used to validate deserialized gates.
const gateMax = Barrier

var gateNames = map[Gate]string{
	X:       "x",
	Y:       "y",
	Z:       "z",
	H:       "h",
	S:       "s",
	Sdg:     "sdg",
	T:       "t",
	Tdg:     "tdg",
	CX:      "cx",
	CY:      "cy",
	CZ:      "cz",
	CH:      "ch",
	CCX:     "ccx",
	MCX:     "mcx",
	Swap:    "swap",
	RX:      "rx",
	RY:      "ry",
	RZ:      "rz",
	P:       "p",
	CRX:     "crx",
	CRY:     "cry",
	CRZ:     "crz",
	CP:      "cp",
	U:       "u",
	Measure: "measure",
	Reset:   "reset",
	Barrier: "barrier",
}

// String returns the lower-case mnemonic of the gate.
func (g Gate) String() string {
	if name, ok := gateNames[g]; ok {
		return name
	}
	return fmt.Sprintf("gate(%d)", uint8(g))
}

// Arity returns the number of qubits the gate acts on, or -1 for gates with
// a variable number of qubits (MCX and Barrier).
func (g Gate) Arity() int {
	switch g {
	case X, Y, Z, H, S, Sdg, T, Tdg, RX, RY, RZ, P, U, Measure, Reset:
		return 1
	case CX, CY, CZ, CH, Swap, CRX, CRY, CRZ, CP:
		return 2
	case CCX:
		return 3
	case MCX, Barrier:
		return -1
	default:
		return -1
	}
}

// NumParams returns the number of real parameters the gate carries.
func (g Gate) NumParams() int {
	switch g {
	case RX, RY, RZ, P, CRX, CRY, CRZ, CP:
		return 1
	case U:
		return 3
	default:
		return 0
	}
}

// IsClifford returns true if the gate is an element of the Clifford group.
func (g Gate) IsClifford() bool {
	switch g {
	case X, Y, Z, H, S, Sdg, CX, CY, CZ, Swap:
		return true
	default:
		return false
	}
}

// IsCliffordT returns true if the gate is an element of the Clifford group
// extended with T and its adjoint.
func (g Gate) IsCliffordT() bool {
	return g.IsClifford() || g == T || g == Tdg
}

// IsUnitary returns true for every gate except measure, reset and barrier.
func (g Gate) IsUnitary() bool {
	switch g {
	case Measure, Reset, Barrier:
		return false
	default:
		return true
	}
}

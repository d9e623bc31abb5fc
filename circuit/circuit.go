package circuit

import (
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/OrtegaSA/cqc-qhe-repo/utils"
)

// Condition attaches a classical control to an instruction: the instruction
// is applied in a given shot only if the classical bit Clbit holds Value at
// that point of the execution.
type Condition struct {
	Clbit int
	Value uint8
}

// Instruction is a single circuit operation: a gate, the qubits it acts on,
// the classical bits it writes (measurements only), its real parameters
// (rotations only) and an optional classical condition.
type Instruction struct {
	Gate   Gate
	Qubits []int
	Clbits []int
	Params []float64
	Cond   *Condition
}

// CIf conditions the instruction on the classical bit clbit holding value.
// It returns the instruction to allow chaining on the builder methods.
func (inst *Instruction) CIf(clbit int, value uint8) *Instruction {
	if inst.Gate == Barrier {
		panic(fmt.Errorf("cannot CIf: barrier cannot be conditioned"))
	}
	if value > 1 {
		panic(fmt.Errorf("cannot CIf: condition value must be 0 or 1 but is %d", value))
	}
	if clbit < 0 {
		panic(fmt.Errorf("cannot CIf: classical bit %d out of range", clbit))
	}
	inst.Cond = &Condition{Clbit: clbit, Value: value}
	return inst
}

// CopyNew returns a deep copy of the instruction.
func (inst *Instruction) CopyNew() *Instruction {
	cp := &Instruction{Gate: inst.Gate}
	if inst.Qubits != nil {
		cp.Qubits = append([]int(nil), inst.Qubits...)
	}
	if inst.Clbits != nil {
		cp.Clbits = append([]int(nil), inst.Clbits...)
	}
	if inst.Params != nil {
		cp.Params = append([]float64(nil), inst.Params...)
	}
	if inst.Cond != nil {
		cond := *inst.Cond
		cp.Cond = &cond
	}
	return cp
}

// Circuit is an ordered list of instructions over named quantum and classical
// registers. Registers name contiguous ranges of global indices, in the order
// they were added.
//
// The zero value is not ready for use, see [NewCircuit].
type Circuit struct {
	qregs []Register
	cregs []ClassicalRegister
	insts []*Instruction
}

// NewCircuit creates an empty circuit with no registers.
func NewCircuit() *Circuit {
	return &Circuit{}
}

// AddRegister appends a quantum register of the given size to the circuit and
// returns it. Register names must be unique among quantum registers and sizes
// must be strictly positive.
func (c *Circuit) AddRegister(name string, size int) (Register, error) {
	if size < 1 {
		return Register{}, fmt.Errorf("cannot AddRegister: register %q has non-positive size %d", name, size)
	}
	for _, r := range c.qregs {
		if r.Name == name {
			return Register{}, fmt.Errorf("cannot AddRegister: register %q already exists", name)
		}
	}
	r := Register{Name: name, size: size, offset: c.NumQubits()}
	c.qregs = append(c.qregs, r)
	return r, nil
}

// AddClassicalRegister appends a classical register of the given size to the
// circuit and returns it. Register names must be unique among classical
// registers and sizes must be strictly positive.
func (c *Circuit) AddClassicalRegister(name string, size int) (ClassicalRegister, error) {
	if size < 1 {
		return ClassicalRegister{}, fmt.Errorf("cannot AddClassicalRegister: register %q has non-positive size %d", name, size)
	}
	for _, r := range c.cregs {
		if r.Name == name {
			return ClassicalRegister{}, fmt.Errorf("cannot AddClassicalRegister: register %q already exists", name)
		}
	}
	r := ClassicalRegister{Name: name, size: size, offset: c.NumClbits()}
	c.cregs = append(c.cregs, r)
	return r, nil
}

// NumQubits returns the total number of qubits of the circuit.
func (c *Circuit) NumQubits() (n int) {
	for _, r := range c.qregs {
		n += r.size
	}
	return
}

// NumClbits returns the total number of classical bits of the circuit.
func (c *Circuit) NumClbits() (n int) {
	for _, r := range c.cregs {
		n += r.size
	}
	return
}

// QuantumRegisters returns the quantum registers in the order they were added.
func (c *Circuit) QuantumRegisters() []Register {
	return append([]Register(nil), c.qregs...)
}

// ClassicalRegisters returns the classical registers in the order they were added.
func (c *Circuit) ClassicalRegisters() []ClassicalRegister {
	return append([]ClassicalRegister(nil), c.cregs...)
}

// FindQuantumRegister returns the quantum register with the given name.
func (c *Circuit) FindQuantumRegister(name string) (Register, bool) {
	for _, r := range c.qregs {
		if r.Name == name {
			return r, true
		}
	}
	return Register{}, false
}

// FindClassicalRegister returns the classical register with the given name.
func (c *Circuit) FindClassicalRegister(name string) (ClassicalRegister, bool) {
	for _, r := range c.cregs {
		if r.Name == name {
			return r, true
		}
	}
	return ClassicalRegister{}, false
}

// Instructions returns the instruction list of the circuit. The returned
// slice and the instructions it points to are owned by the circuit and must
// not be modified.
func (c *Circuit) Instructions() []*Instruction {
	return c.insts
}

// CountGates returns the number of instructions whose gate is one of the
// given gates.
func (c *Circuit) CountGates(gates ...Gate) (count int) {
	for _, inst := range c.insts {
		if utils.IsInSlice(inst.Gate, gates) {
			count++
		}
	}
	return
}

// Append validates inst and appends a copy of it to the circuit.
func (c *Circuit) Append(inst Instruction) error {

	g := inst.Gate

	if g > gateMax {
		return fmt.Errorf("cannot Append: unknown gate opcode %d", uint8(g))
	}

	if arity := g.Arity(); arity >= 0 {
		if len(inst.Qubits) != arity {
			return fmt.Errorf("cannot Append: gate %s expects %d qubits but got %d", g, arity, len(inst.Qubits))
		}
	} else {
		switch g {
		case MCX:
			if len(inst.Qubits) < 2 {
				return fmt.Errorf("cannot Append: gate %s expects at least 1 control and a target but got %d qubits", g, len(inst.Qubits))
			}
		case Barrier:
			if len(inst.Qubits) < 1 {
				return fmt.Errorf("cannot Append: gate %s expects at least 1 qubit", g)
			}
		}
	}

	nQubits := c.NumQubits()
	for _, q := range inst.Qubits {
		if q < 0 || q >= nQubits {
			return fmt.Errorf("cannot Append: gate %s qubit %d out of range [0, %d)", g, q, nQubits)
		}
	}

	if !utils.AllDistinct(inst.Qubits) {
		return fmt.Errorf("cannot Append: gate %s acts twice on the same qubit %v", g, inst.Qubits)
	}

	nClbits := c.NumClbits()
	if g == Measure {
		if len(inst.Clbits) != 1 {
			return fmt.Errorf("cannot Append: gate %s expects 1 classical bit but got %d", g, len(inst.Clbits))
		}
	} else if len(inst.Clbits) != 0 {
		return fmt.Errorf("cannot Append: gate %s does not write classical bits", g)
	}

	for _, cl := range inst.Clbits {
		if cl < 0 || cl >= nClbits {
			return fmt.Errorf("cannot Append: gate %s classical bit %d out of range [0, %d)", g, cl, nClbits)
		}
	}

	if len(inst.Params) != g.NumParams() {
		return fmt.Errorf("cannot Append: gate %s expects %d parameters but got %d", g, g.NumParams(), len(inst.Params))
	}

	if cond := inst.Cond; cond != nil {
		if g == Barrier {
			return fmt.Errorf("cannot Append: barrier cannot be conditioned")
		}
		if cond.Clbit < 0 || cond.Clbit >= nClbits {
			return fmt.Errorf("cannot Append: condition bit %d out of range [0, %d)", cond.Clbit, nClbits)
		}
		if cond.Value > 1 {
			return fmt.Errorf("cannot Append: condition value must be 0 or 1 but is %d", cond.Value)
		}
	}

	c.insts = append(c.insts, inst.CopyNew())
	return nil
}

// mustAppend appends inst and returns the stored copy. Builder methods route
// through it so that malformed calls surface at construction.
func (c *Circuit) mustAppend(inst Instruction) *Instruction {
	if err := c.Append(inst); err != nil {
		panic(err)
	}
	return c.insts[len(c.insts)-1]
}

// apply1 appends one single-qubit instruction per listed qubit and returns
// the last one.
func (c *Circuit) apply1(g Gate, qubits []int) (inst *Instruction) {
	if len(qubits) == 0 {
		panic(fmt.Errorf("cannot %s: at least one qubit is required", g))
	}
	for _, q := range qubits {
		inst = c.mustAppend(Instruction{Gate: g, Qubits: []int{q}})
	}
	return
}

// X applies the Pauli X gate to the listed qubits and returns the last
// appended instruction.
func (c *Circuit) X(qubits ...int) *Instruction {
	return c.apply1(X, qubits)
}

// Y applies the Pauli Y gate to the listed qubits.
func (c *Circuit) Y(qubits ...int) *Instruction {
	return c.apply1(Y, qubits)
}

// Z applies the Pauli Z gate to the listed qubits.
func (c *Circuit) Z(qubits ...int) *Instruction {
	return c.apply1(Z, qubits)
}

// H applies the Hadamard gate to the listed qubits.
func (c *Circuit) H(qubits ...int) *Instruction {
	return c.apply1(H, qubits)
}

// S applies the phase gate S to the listed qubits.
func (c *Circuit) S(qubits ...int) *Instruction {
	return c.apply1(S, qubits)
}

// Sdg applies the adjoint of the phase gate S to the listed qubits.
func (c *Circuit) Sdg(qubits ...int) *Instruction {
	return c.apply1(Sdg, qubits)
}

// T applies the T gate to the listed qubits.
func (c *Circuit) T(qubits ...int) *Instruction {
	return c.apply1(T, qubits)
}

// Tdg applies the adjoint of the T gate to the listed qubits.
func (c *Circuit) Tdg(qubits ...int) *Instruction {
	return c.apply1(Tdg, qubits)
}

// Reset resets the listed qubits to the state 0.
func (c *Circuit) Reset(qubits ...int) *Instruction {
	return c.apply1(Reset, qubits)
}

// CX applies a controlled X gate.
func (c *Circuit) CX(control, target int) *Instruction {
	return c.mustAppend(Instruction{Gate: CX, Qubits: []int{control, target}})
}

// CY applies a controlled Y gate.
func (c *Circuit) CY(control, target int) *Instruction {
	return c.mustAppend(Instruction{Gate: CY, Qubits: []int{control, target}})
}

// CZ applies a controlled Z gate.
func (c *Circuit) CZ(control, target int) *Instruction {
	return c.mustAppend(Instruction{Gate: CZ, Qubits: []int{control, target}})
}

// CH applies a controlled Hadamard gate.
func (c *Circuit) CH(control, target int) *Instruction {
	return c.mustAppend(Instruction{Gate: CH, Qubits: []int{control, target}})
}

// CCX applies a Toffoli gate with controls c0 and c1.
func (c *Circuit) CCX(c0, c1, target int) *Instruction {
	return c.mustAppend(Instruction{Gate: CCX, Qubits: []int{c0, c1, target}})
}

// MCX applies a multi-controlled X gate.
func (c *Circuit) MCX(controls []int, target int) *Instruction {
	qubits := make([]int, 0, len(controls)+1)
	qubits = append(qubits, controls...)
	qubits = append(qubits, target)
	return c.mustAppend(Instruction{Gate: MCX, Qubits: qubits})
}

// Swap applies a swap gate.
func (c *Circuit) Swap(a, b int) *Instruction {
	return c.mustAppend(Instruction{Gate: Swap, Qubits: []int{a, b}})
}

// RX applies a rotation of theta radians around the X axis.
func (c *Circuit) RX(theta float64, qubit int) *Instruction {
	return c.mustAppend(Instruction{Gate: RX, Qubits: []int{qubit}, Params: []float64{theta}})
}

// RY applies a rotation of theta radians around the Y axis.
func (c *Circuit) RY(theta float64, qubit int) *Instruction {
	return c.mustAppend(Instruction{Gate: RY, Qubits: []int{qubit}, Params: []float64{theta}})
}

// RZ applies a rotation of theta radians around the Z axis.
func (c *Circuit) RZ(theta float64, qubit int) *Instruction {
	return c.mustAppend(Instruction{Gate: RZ, Qubits: []int{qubit}, Params: []float64{theta}})
}

// P applies a phase of theta radians to the state 1.
func (c *Circuit) P(theta float64, qubit int) *Instruction {
	return c.mustAppend(Instruction{Gate: P, Qubits: []int{qubit}, Params: []float64{theta}})
}

// CRX applies a controlled rotation of theta radians around the X axis.
func (c *Circuit) CRX(theta float64, control, target int) *Instruction {
	return c.mustAppend(Instruction{Gate: CRX, Qubits: []int{control, target}, Params: []float64{theta}})
}

// CRY applies a controlled rotation of theta radians around the Y axis.
func (c *Circuit) CRY(theta float64, control, target int) *Instruction {
	return c.mustAppend(Instruction{Gate: CRY, Qubits: []int{control, target}, Params: []float64{theta}})
}

// CRZ applies a controlled rotation of theta radians around the Z axis.
func (c *Circuit) CRZ(theta float64, control, target int) *Instruction {
	return c.mustAppend(Instruction{Gate: CRZ, Qubits: []int{control, target}, Params: []float64{theta}})
}

// CP applies a controlled phase of theta radians.
func (c *Circuit) CP(theta float64, control, target int) *Instruction {
	return c.mustAppend(Instruction{Gate: CP, Qubits: []int{control, target}, Params: []float64{theta}})
}

// U applies the generic single-qubit gate U(theta, phi, lambda).
func (c *Circuit) U(theta, phi, lambda float64, qubit int) *Instruction {
	return c.mustAppend(Instruction{Gate: U, Qubits: []int{qubit}, Params: []float64{theta, phi, lambda}})
}

// Measure measures a qubit into a classical bit.
func (c *Circuit) Measure(qubit, clbit int) *Instruction {
	return c.mustAppend(Instruction{Gate: Measure, Qubits: []int{qubit}, Clbits: []int{clbit}})
}

// MeasureAll measures qubits[i] into clbits[i] for every i and returns the
// last appended instruction.
func (c *Circuit) MeasureAll(qubits, clbits []int) (inst *Instruction) {
	if len(qubits) != len(clbits) {
		panic(fmt.Errorf("cannot MeasureAll: %d qubits but %d classical bits", len(qubits), len(clbits)))
	}
	if len(qubits) == 0 {
		panic(fmt.Errorf("cannot MeasureAll: at least one qubit is required"))
	}
	for i := range qubits {
		inst = c.Measure(qubits[i], clbits[i])
	}
	return
}

// Barrier separates the listed qubits from reordering across it. With no
// arguments the barrier spans all qubits of the circuit.
func (c *Circuit) Barrier(qubits ...int) *Instruction {
	if len(qubits) == 0 {
		qubits = make([]int, c.NumQubits())
		for i := range qubits {
			qubits[i] = i
		}
	}
	return c.mustAppend(Instruction{Gate: Barrier, Qubits: qubits})
}

// Compose appends the instructions of other to c, remapping the i-th qubit
// of other to qubits[i] and the i-th classical bit to clbits[i]. A nil
// mapping is the identity. Registers of other are not carried over.
func (c *Circuit) Compose(other *Circuit, qubits, clbits []int) error {

	if qubits == nil {
		qubits = make([]int, other.NumQubits())
		for i := range qubits {
			qubits[i] = i
		}
	}

	if clbits == nil {
		clbits = make([]int, other.NumClbits())
		for i := range clbits {
			clbits[i] = i
		}
	}

	if len(qubits) != other.NumQubits() {
		return fmt.Errorf("cannot Compose: mapping covers %d qubits but the composed circuit has %d", len(qubits), other.NumQubits())
	}

	if len(clbits) != other.NumClbits() {
		return fmt.Errorf("cannot Compose: mapping covers %d classical bits but the composed circuit has %d", len(clbits), other.NumClbits())
	}

	if !utils.AllDistinct(qubits) {
		return fmt.Errorf("cannot Compose: qubit mapping %v is not injective", qubits)
	}

	for _, inst := range other.insts {

		mapped := inst.CopyNew()

		for i, q := range mapped.Qubits {
			if q < 0 || q >= len(qubits) {
				return fmt.Errorf("cannot Compose: qubit %d out of mapping range", q)
			}
			mapped.Qubits[i] = qubits[q]
		}

		for i, cl := range mapped.Clbits {
			if cl < 0 || cl >= len(clbits) {
				return fmt.Errorf("cannot Compose: classical bit %d out of mapping range", cl)
			}
			mapped.Clbits[i] = clbits[cl]
		}

		if mapped.Cond != nil {
			if mapped.Cond.Clbit < 0 || mapped.Cond.Clbit >= len(clbits) {
				return fmt.Errorf("cannot Compose: condition bit %d out of mapping range", mapped.Cond.Clbit)
			}
			mapped.Cond.Clbit = clbits[mapped.Cond.Clbit]
		}

		if err := c.Append(*mapped); err != nil {
			return err
		}
	}

	return nil
}

// CopyNew returns a deep copy of the circuit.
func (c *Circuit) CopyNew() *Circuit {
	cp := &Circuit{
		qregs: append([]Register(nil), c.qregs...),
		cregs: append([]ClassicalRegister(nil), c.cregs...),
		insts: make([]*Instruction, len(c.insts)),
	}
	for i, inst := range c.insts {
		cp.insts[i] = inst.CopyNew()
	}
	return cp
}

// Equal performs a deep equal between the receiver and other.
func (c *Circuit) Equal(other *Circuit) bool {
	return cmp.Equal(c.qregs, other.qregs) && cmp.Equal(c.cregs, other.cregs) && cmp.Equal(c.insts, other.insts)
}

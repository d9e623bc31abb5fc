package circuit

import "fmt"

// Register is a named group of consecutively indexed qubits. Qubit indices
// are global to the circuit; a register only names a contiguous range.
type Register struct {
	Name string

	size   int
	offset int
}

// Size returns the number of qubits in the register.
func (r Register) Size() int {
	return r.size
}

// Offset returns the global index of the first qubit of the register.
func (r Register) Offset() int {
	return r.offset
}

// Index returns the global index of the i-th qubit of the register.
func (r Register) Index(i int) int {
	if i < 0 || i >= r.size {
		panic(fmt.Errorf("cannot Index: bit %d out of range for register %q of size %d", i, r.Name, r.size))
	}
	return r.offset + i
}

// Indices returns the global indices of all qubits of the register.
func (r Register) Indices() []int {
	indices := make([]int, r.size)
	for i := range indices {
		indices[i] = r.offset + i
	}
	return indices
}

// Equal returns true if the two registers have the same name, size and offset.
func (r Register) Equal(other Register) bool {
	return r.Name == other.Name && r.size == other.size && r.offset == other.offset
}

// ClassicalRegister is a named group of consecutively indexed classical bits.
type ClassicalRegister struct {
	Name string

	size   int
	offset int
}

// Size returns the number of bits in the register.
func (r ClassicalRegister) Size() int {
	return r.size
}

// Offset returns the global index of the first bit of the register.
func (r ClassicalRegister) Offset() int {
	return r.offset
}

// Index returns the global index of the i-th bit of the register.
func (r ClassicalRegister) Index(i int) int {
	if i < 0 || i >= r.size {
		panic(fmt.Errorf("cannot Index: bit %d out of range for register %q of size %d", i, r.Name, r.size))
	}
	return r.offset + i
}

// Indices returns the global indices of all bits of the register.
func (r ClassicalRegister) Indices() []int {
	indices := make([]int, r.size)
	for i := range indices {
		indices[i] = r.offset + i
	}
	return indices
}

// Equal returns true if the two registers have the same name, size and offset.
func (r ClassicalRegister) Equal(other ClassicalRegister) bool {
	return r.Name == other.Name && r.size == other.size && r.offset == other.offset
}

package circuit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
	"github.com/OrtegaSA/cqc-qhe-repo/utils/buffer"
)

func TestRegisters(t *testing.T) {

	t.Run("Offsets", func(t *testing.T) {

		c := circuit.NewCircuit()

		q, err := c.AddRegister("q", 3)
		require.NoError(t, err)
		require.Equal(t, 0, q.Offset())
		require.Equal(t, 3, q.Size())

		anc, err := c.AddRegister("anc", 2)
		require.NoError(t, err)
		require.Equal(t, 3, anc.Offset())
		require.Equal(t, []int{3, 4}, anc.Indices())
		require.Equal(t, 4, anc.Index(1))

		require.Equal(t, 5, c.NumQubits())

		meas, err := c.AddClassicalRegister("meas", 3)
		require.NoError(t, err)
		require.Equal(t, 0, meas.Offset())
		require.Equal(t, 3, c.NumClbits())

		found, ok := c.FindQuantumRegister("anc")
		require.True(t, ok)
		require.True(t, anc.Equal(found))

		_, ok = c.FindQuantumRegister("nope")
		require.False(t, ok)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		c := circuit.NewCircuit()
		_, err := c.AddRegister("q", 1)
		require.NoError(t, err)
		_, err = c.AddRegister("q", 2)
		require.Error(t, err)
	})

	t.Run("NonPositiveSize", func(t *testing.T) {
		c := circuit.NewCircuit()
		_, err := c.AddRegister("q", 0)
		require.Error(t, err)
		_, err = c.AddClassicalRegister("c", -1)
		require.Error(t, err)
	})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		c := circuit.NewCircuit()
		q, err := c.AddRegister("q", 2)
		require.NoError(t, err)
		require.Panics(t, func() { q.Index(2) })
	})
}

func TestBuilders(t *testing.T) {

	newCircuit := func(t *testing.T) *circuit.Circuit {
		c := circuit.NewCircuit()
		_, err := c.AddRegister("q", 4)
		require.NoError(t, err)
		_, err = c.AddClassicalRegister("c", 2)
		require.NoError(t, err)
		return c
	}

	t.Run("Chaining", func(t *testing.T) {

		c := newCircuit(t)

		inst := c.X(0).CIf(1, 1)
		require.Equal(t, circuit.X, inst.Gate)
		require.NotNil(t, inst.Cond)
		require.Equal(t, 1, inst.Cond.Clbit)
		require.Equal(t, uint8(1), inst.Cond.Value)

		stored := c.Instructions()
		require.Len(t, stored, 1)
		require.Equal(t, inst, stored[0])
	})

	t.Run("Variadic", func(t *testing.T) {
		c := newCircuit(t)
		c.H(0, 1, 2, 3)
		require.Equal(t, 4, c.CountGates(circuit.H))
	})

	t.Run("OutOfRange", func(t *testing.T) {
		c := newCircuit(t)
		require.Panics(t, func() { c.X(4) })
		require.Panics(t, func() { c.CX(0, 7) })
		require.Panics(t, func() { c.Measure(0, 2) })
	})

	t.Run("RepeatedQubit", func(t *testing.T) {
		c := newCircuit(t)
		require.Panics(t, func() { c.CX(1, 1) })
		require.Panics(t, func() { c.CCX(0, 1, 0) })
	})

	t.Run("ConditionalBarrier", func(t *testing.T) {
		c := newCircuit(t)
		require.Panics(t, func() { c.Barrier().CIf(0, 1) })
	})

	t.Run("BarrierSpansAll", func(t *testing.T) {
		c := newCircuit(t)
		inst := c.Barrier()
		require.Equal(t, []int{0, 1, 2, 3}, inst.Qubits)
	})

	t.Run("Params", func(t *testing.T) {

		c := newCircuit(t)

		inst := c.RZ(0.25, 2)
		require.Equal(t, []float64{0.25}, inst.Params)

		inst = c.U(0.1, 0.2, 0.3, 0)
		require.Equal(t, []float64{0.1, 0.2, 0.3}, inst.Params)

		err := c.Append(circuit.Instruction{Gate: circuit.RZ, Qubits: []int{0}})
		require.Error(t, err)
	})

	t.Run("MCX", func(t *testing.T) {

		c := newCircuit(t)

		inst := c.MCX([]int{0, 1, 2}, 3)
		require.Equal(t, []int{0, 1, 2, 3}, inst.Qubits)

		err := c.Append(circuit.Instruction{Gate: circuit.MCX, Qubits: []int{0}})
		require.Error(t, err)
	})

	t.Run("MeasureAll", func(t *testing.T) {
		c := newCircuit(t)
		c.MeasureAll([]int{0, 1}, []int{0, 1})
		require.Equal(t, 2, c.CountGates(circuit.Measure))
		require.Panics(t, func() { c.MeasureAll([]int{0, 1}, []int{0}) })
	})
}

func TestCountGates(t *testing.T) {

	c := circuit.NewCircuit()
	_, err := c.AddRegister("q", 3)
	require.NoError(t, err)

	// Decomposed Toffoli: 7 T-like gates, 6 CX, 2 H.
	c.H(2)
	c.CX(1, 2)
	c.Tdg(2)
	c.CX(0, 2)
	c.T(2)
	c.CX(1, 2)
	c.Tdg(2)
	c.CX(0, 2)
	c.T(1, 2)
	c.CX(0, 1)
	c.H(2)
	c.T(0)
	c.Tdg(1)
	c.CX(0, 1)

	require.Equal(t, 7, c.CountGates(circuit.T, circuit.Tdg))
	require.Equal(t, 6, c.CountGates(circuit.CX))
	require.Equal(t, 2, c.CountGates(circuit.H))
	require.Equal(t, 0, c.CountGates(circuit.CCX))
}

func TestCompose(t *testing.T) {

	t.Run("Identity", func(t *testing.T) {

		inner := circuit.NewCircuit()
		_, err := inner.AddRegister("q", 2)
		require.NoError(t, err)
		inner.H(0)
		inner.CX(0, 1)

		outer := circuit.NewCircuit()
		_, err = outer.AddRegister("main", 2)
		require.NoError(t, err)
		_, err = outer.AddRegister("aux", 2)
		require.NoError(t, err)

		require.NoError(t, outer.Compose(inner, nil, nil))

		insts := outer.Instructions()
		require.Len(t, insts, 2)
		require.Equal(t, []int{0}, insts[0].Qubits)
		require.Equal(t, []int{0, 1}, insts[1].Qubits)
	})

	t.Run("Remapped", func(t *testing.T) {

		inner := circuit.NewCircuit()
		_, err := inner.AddRegister("q", 2)
		require.NoError(t, err)
		_, err = inner.AddClassicalRegister("c", 1)
		require.NoError(t, err)
		inner.CX(0, 1)
		inner.X(1).CIf(0, 1)
		inner.Measure(1, 0)

		outer := circuit.NewCircuit()
		_, err = outer.AddRegister("main", 4)
		require.NoError(t, err)
		_, err = outer.AddClassicalRegister("bits", 3)
		require.NoError(t, err)

		require.NoError(t, outer.Compose(inner, []int{3, 1}, []int{2}))

		insts := outer.Instructions()
		require.Len(t, insts, 3)
		require.Equal(t, []int{3, 1}, insts[0].Qubits)
		require.Equal(t, []int{1}, insts[1].Qubits)
		require.Equal(t, 2, insts[1].Cond.Clbit)
		require.Equal(t, []int{2}, insts[2].Clbits)
	})

	t.Run("BadMapping", func(t *testing.T) {

		inner := circuit.NewCircuit()
		_, err := inner.AddRegister("q", 2)
		require.NoError(t, err)
		inner.CX(0, 1)

		outer := circuit.NewCircuit()
		_, err = outer.AddRegister("main", 4)
		require.NoError(t, err)

		require.Error(t, outer.Compose(inner, []int{0}, nil))
		require.Error(t, outer.Compose(inner, []int{0, 0}, nil))
		require.Error(t, outer.Compose(inner, []int{0, 9}, nil))
	})
}

func TestCopyNewEqual(t *testing.T) {

	c := circuit.NewCircuit()
	_, err := c.AddRegister("q", 2)
	require.NoError(t, err)
	_, err = c.AddClassicalRegister("c", 2)
	require.NoError(t, err)

	c.H(0)
	c.CX(0, 1)
	c.RZ(0.5, 1)
	c.X(0).CIf(1, 1)
	c.Measure(0, 0)

	cp := c.CopyNew()
	require.True(t, c.Equal(cp))

	cp.Z(1)
	require.False(t, c.Equal(cp))

	cp2 := c.CopyNew()
	cp2.Instructions()[2].Params[0] = 0.75
	require.False(t, c.Equal(cp2))
}

func TestSerialization(t *testing.T) {

	t.Run("RoundTrip", func(t *testing.T) {

		c := circuit.NewCircuit()
		_, err := c.AddRegister("q", 3)
		require.NoError(t, err)
		_, err = c.AddRegister("bell_0", 2)
		require.NoError(t, err)
		_, err = c.AddClassicalRegister("x_key", 3)
		require.NoError(t, err)
		_, err = c.AddClassicalRegister("circ", 3)
		require.NoError(t, err)

		c.H(0)
		c.CX(0, 1)
		c.T(1)
		c.RZ(1.5707963267948966, 2)
		c.U(0.1, 0.2, 0.3, 0)
		c.MCX([]int{0, 1, 2}, 4)
		c.Barrier()
		c.X(2).CIf(1, 1)
		c.Measure(2, 5)
		c.Reset(2)

		buffer.RequireSerializerCorrect(t, c)
	})

	t.Run("Empty", func(t *testing.T) {
		buffer.RequireSerializerCorrect(t, circuit.NewCircuit())
	})

	t.Run("BadMagic", func(t *testing.T) {

		c := circuit.NewCircuit()
		_, err := c.AddRegister("q", 1)
		require.NoError(t, err)
		c.H(0)

		p, err := c.MarshalBinary()
		require.NoError(t, err)

		p[0] = 'Z'
		require.Error(t, circuit.NewCircuit().UnmarshalBinary(p))
	})

	t.Run("UnknownOpcode", func(t *testing.T) {

		c := circuit.NewCircuit()
		_, err := c.AddRegister("q", 1)
		require.NoError(t, err)
		c.H(0)

		p, err := c.MarshalBinary()
		require.NoError(t, err)

		// A bare single-qubit instruction serializes to 18 bytes, the first
		// of which is the opcode.
		p[len(p)-18] = 0xff
		require.Error(t, circuit.NewCircuit().UnmarshalBinary(p))
	})
}

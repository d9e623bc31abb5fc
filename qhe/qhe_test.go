package qhe

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
	"github.com/OrtegaSA/cqc-qhe-repo/compiler"
	"github.com/OrtegaSA/cqc-qhe-repo/simulator"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testSeed = []byte{
	0x6b, 0x23, 0x1c, 0xf0, 0x3e, 0x51, 0x88, 0x2d,
	0x90, 0x4f, 0x0a, 0xc4, 0x7e, 0x1b, 0x62, 0xa9,
	0x35, 0xe8, 0x5d, 0x07, 0xb1, 0x94, 0x6c, 0xd3,
	0x28, 0xfa, 0x41, 0x9e, 0x73, 0x0b, 0xc6, 0x57,
}

var variants = []Variant{PerGateBell, RecycledBell}

// runCounts samples the circuit with a fixed seed and returns the counts.
func runCounts(t *testing.T, hc *circuit.Circuit, shots int) simulator.Counts {
	t.Helper()
	sim, err := simulator.NewSimulator(simulator.Options{Shots: shots, Seed: testSeed})
	require.NoError(t, err)
	res, err := sim.Run(context.Background(), hc)
	require.NoError(t, err)
	return res.Counts
}

// newMain returns an empty two-qubit circuit with a register named q.
func newMain(t *testing.T) *circuit.Circuit {
	t.Helper()
	c := circuit.NewCircuit()
	_, err := c.AddRegister("q", 2)
	require.NoError(t, err)
	return c
}

func TestVariantString(t *testing.T) {
	require.Equal(t, "PerGateBell", PerGateBell.String())
	require.Equal(t, "RecycledBell", RecycledBell.String())
	require.Equal(t, "Variant(7)", Variant(7).String())
}

// TestHomomorphicEvaluation runs the full protocol on circuits with a
// deterministic plaintext outcome: whatever keys and teleportation bits a
// shot samples, the decrypted output must always be the same.
func TestHomomorphicEvaluation(t *testing.T) {

	const shots = 16

	cases := []struct {
		name     string
		init     func(t *testing.T) *circuit.Circuit
		build    func(c *circuit.Circuit)
		measured []int
		want     string
	}{
		{
			// H T^4 H = H Z H = X.
			name: "TFourth",
			build: func(c *circuit.Circuit) {
				c.H(0)
				c.T(0, 0, 0, 0)
				c.H(0)
			},
			measured: []int{0},
			want:     "1",
		},
		{
			// H Tdg^4 H = X as well.
			name: "TdgFourth",
			build: func(c *circuit.Circuit) {
				c.H(0)
				c.Tdg(0, 0, 0, 0)
				c.H(0)
			},
			measured: []int{0},
			want:     "1",
		},
		{
			// H S^2 H = X.
			name: "SSquared",
			build: func(c *circuit.Circuit) {
				c.H(0)
				c.S(0, 0)
				c.H(0)
			},
			measured: []int{0},
			want:     "1",
		},
		{
			name: "EntangledFlip",
			build: func(c *circuit.Circuit) {
				c.X(0)
				c.CX(0, 1)
			},
			measured: []int{0, 1},
			want:     "11",
		},
		{
			// The client prepares 1, the server applies H S^2 H = X.
			name: "PreparedPlaintext",
			init: func(t *testing.T) *circuit.Circuit {
				init := circuit.NewCircuit()
				_, err := init.AddRegister("q", 1)
				require.NoError(t, err)
				init.X(0)
				return init
			},
			build: func(c *circuit.Circuit) {
				c.H(0)
				c.S(0, 0)
				c.H(0)
			},
			measured: []int{0},
			want:     "0",
		},
		{
			// A mid-circuit measurement and reset, then a flip: the output
			// is 1 whatever the measurement sampled.
			name: "MidCircuitReset",
			build: func(c *circuit.Circuit) {
				m, err := c.AddClassicalRegister("m", 1)
				require.NoError(t, err)
				c.H(0)
				c.Measure(0, m.Index(0))
				c.Reset(0)
				c.X(0)
			},
			measured: []int{0},
			want:     "1",
		},
	}

	for _, variant := range variants {
		variant := variant
		t.Run(variant.String(), func(t *testing.T) {
			for _, tc := range cases {
				tc := tc
				t.Run(tc.name, func(t *testing.T) {

					main := newMain(t)
					tc.build(main)

					var init *circuit.Circuit
					if tc.init != nil {
						init = tc.init(t)
					}

					hc, layout, err := NewHomomorphicCircuit(init, main, tc.measured, variant)
					require.NoError(t, err)

					decrypted, err := Decrypt(runCounts(t, hc, shots), layout)
					require.NoError(t, err)
					require.Equal(t, simulator.Counts{tc.want: shots}, decrypted)
				})
			}
		})
	}
}

// TestCompiledEvaluation chains the compiler and the protocol: a circuit
// with gates outside the homomorphic set is first lowered to Clifford+T.
func TestCompiledEvaluation(t *testing.T) {

	const shots = 16

	main := newMain(t)
	main.Y(0)
	main.CZ(0, 1)

	compiled, err := compiler.CliffordT(context.Background(), main, compiler.Options{})
	require.NoError(t, err)

	for _, variant := range variants {
		variant := variant
		t.Run(variant.String(), func(t *testing.T) {

			hc, layout, err := NewHomomorphicCircuit(nil, compiled, []int{0, 1}, variant)
			require.NoError(t, err)

			decrypted, err := Decrypt(runCounts(t, hc, shots), layout)
			require.NoError(t, err)
			require.Equal(t, simulator.Counts{"10": shots}, decrypted)
		})
	}
}

// TestKeyUpdateRules checks the classical pad arithmetic gate by gate: in
// every sampled shot the final keys must relate to the initial keys by the
// update rule of the evaluated gate.
func TestKeyUpdateRules(t *testing.T) {

	const shots = 32

	bit := func(group string, i int) uint8 { return group[i] - '0' }

	cases := []struct {
		name  string
		build func(c *circuit.Circuit)
		// check receives the counts key split into register groups, in the
		// order x_init_key, z_init_key, x_key, z_key and, for circuits with
		// teleportations, ra and rb.
		check func(t *testing.T, g []string)
	}{
		{
			name:  "PauliKeepsKeys",
			build: func(c *circuit.Circuit) { c.X(0); c.Z(1) },
			check: func(t *testing.T, g []string) {
				require.Equal(t, g[0], g[2])
				require.Equal(t, g[1], g[3])
			},
		},
		{
			name:  "HadamardSwapsKeys",
			build: func(c *circuit.Circuit) { c.H(0) },
			check: func(t *testing.T, g []string) {
				require.Equal(t, bit(g[1], 0), bit(g[2], 0))
				require.Equal(t, bit(g[0], 0), bit(g[3], 0))
				require.Equal(t, bit(g[0], 1), bit(g[2], 1))
				require.Equal(t, bit(g[1], 1), bit(g[3], 1))
			},
		},
		{
			name:  "PhaseAddsXToZ",
			build: func(c *circuit.Circuit) { c.S(0) },
			check: func(t *testing.T, g []string) {
				require.Equal(t, bit(g[0], 0), bit(g[2], 0))
				require.Equal(t, bit(g[1], 0)^bit(g[0], 0), bit(g[3], 0))
			},
		},
		{
			name:  "CXPropagatesKeys",
			build: func(c *circuit.Circuit) { c.CX(0, 1) },
			check: func(t *testing.T, g []string) {
				require.Equal(t, bit(g[0], 0), bit(g[2], 0))
				require.Equal(t, bit(g[0], 0)^bit(g[0], 1), bit(g[2], 1))
				require.Equal(t, bit(g[1], 0)^bit(g[1], 1), bit(g[3], 0))
				require.Equal(t, bit(g[1], 1), bit(g[3], 1))
			},
		},
		{
			// x' = x + ra, z' = z + x + rb.
			name:  "TAbsorbsCorrections",
			build: func(c *circuit.Circuit) { c.T(0) },
			check: func(t *testing.T, g []string) {
				require.Equal(t, bit(g[0], 0)^bit(g[4], 0), bit(g[2], 0))
				require.Equal(t, bit(g[1], 0)^bit(g[0], 0)^bit(g[5], 0), bit(g[3], 0))
			},
		},
		{
			// x' = x + ra, z' = z + rb.
			name:  "TdgAbsorbsCorrections",
			build: func(c *circuit.Circuit) { c.Tdg(0) },
			check: func(t *testing.T, g []string) {
				require.Equal(t, bit(g[0], 0)^bit(g[4], 0), bit(g[2], 0))
				require.Equal(t, bit(g[1], 0)^bit(g[5], 0), bit(g[3], 0))
			},
		},
	}

	for _, variant := range variants {
		variant := variant
		t.Run(variant.String(), func(t *testing.T) {
			for _, tc := range cases {
				tc := tc
				t.Run(tc.name, func(t *testing.T) {

					main := newMain(t)
					tc.build(main)

					hc, layout, err := NewHomomorphicCircuit(nil, main, nil, variant)
					require.NoError(t, err)

					counts := runCounts(t, hc, shots)
					for key := range counts {
						g := strings.Split(key, " ")
						require.Equal(t, len(layout.Registers), len(g))
						tc.check(t, g)
					}
				})
			}
		})
	}
}

func TestRegisterStructure(t *testing.T) {

	names := func(qregs []circuit.Register) []string {
		out := make([]string, len(qregs))
		for i, r := range qregs {
			out[i] = r.Name
		}
		return out
	}

	clNames := func(cregs []circuit.ClassicalRegister) []string {
		out := make([]string, len(cregs))
		for i, r := range cregs {
			out[i] = r.Name
		}
		return out
	}

	t.Run("PerGateBell", func(t *testing.T) {

		main := newMain(t)
		main.T(0)
		main.Tdg(1)
		main.T(0)

		hc, layout, err := NewHomomorphicCircuit(nil, main, []int{1}, PerGateBell)
		require.NoError(t, err)

		require.Equal(t, []string{"q", "bell_0", "bell_1", "bell_2"}, names(hc.QuantumRegisters()))
		require.Equal(t,
			[]string{"x_init_key", "z_init_key", "x_key", "z_key", "ra", "rb", "circ"},
			clNames(hc.ClassicalRegisters()))

		require.Equal(t, 3, layout.TCount)
		require.Equal(t, 2, layout.MainQubits)
		require.Equal(t, []int{1}, layout.Measured)
		require.Equal(t, PerGateBell, layout.Variant)

		ra, ok := hc.FindClassicalRegister("ra")
		require.True(t, ok)
		require.Equal(t, 3, ra.Size())
	})

	t.Run("RecycledBell", func(t *testing.T) {

		main := newMain(t)
		main.T(0)
		main.Tdg(1)
		main.T(0)

		hc, layout, err := NewHomomorphicCircuit(nil, main, []int{1}, RecycledBell)
		require.NoError(t, err)

		require.Equal(t, []string{"q", "bell"}, names(hc.QuantumRegisters()))
		require.Equal(t,
			[]string{"x_init_key", "z_init_key", "x_key", "z_key", "ra", "rb", "circ"},
			clNames(hc.ClassicalRegisters()))
		require.Equal(t, 3, layout.TCount)
	})

	t.Run("TFree", func(t *testing.T) {

		main := newMain(t)
		main.H(0)

		hc, layout, err := NewHomomorphicCircuit(nil, main, nil, PerGateBell)
		require.NoError(t, err)
		require.Equal(t, []string{"q"}, names(hc.QuantumRegisters()))
		require.Equal(t,
			[]string{"x_init_key", "z_init_key", "x_key", "z_key"},
			clNames(hc.ClassicalRegisters()))
		require.Equal(t, 0, layout.TCount)
		require.Empty(t, layout.Measured)

		hc, _, err = NewHomomorphicCircuit(nil, main, nil, RecycledBell)
		require.NoError(t, err)
		require.Equal(t, []string{"q", "bell"}, names(hc.QuantumRegisters()))
	})

	t.Run("CarriedMainRegister", func(t *testing.T) {

		main := newMain(t)
		m, err := main.AddClassicalRegister("m", 1)
		require.NoError(t, err)
		main.H(0)
		main.Measure(0, m.Index(0))

		hc, _, err := NewHomomorphicCircuit(nil, main, []int{1}, RecycledBell)
		require.NoError(t, err)
		require.Equal(t,
			[]string{"x_init_key", "z_init_key", "x_key", "z_key", "m", "circ"},
			clNames(hc.ClassicalRegisters()))
	})
}

func TestHomomorphicCircuitErrors(t *testing.T) {

	t.Run("WrongGate", func(t *testing.T) {
		main := newMain(t)
		main.Y(0)
		_, _, err := NewHomomorphicCircuit(nil, main, nil, PerGateBell)
		require.ErrorContains(t, err, "wrong gate in the circuit: y")

		main = newMain(t)
		main.RZ(0.5, 0)
		_, _, err = NewHomomorphicCircuit(nil, main, nil, RecycledBell)
		require.ErrorContains(t, err, "wrong gate in the circuit: rz")
	})

	t.Run("ConditionedMain", func(t *testing.T) {
		main := newMain(t)
		m, err := main.AddClassicalRegister("m", 1)
		require.NoError(t, err)
		main.X(0).CIf(m.Index(0), 1)
		_, _, err = NewHomomorphicCircuit(nil, main, nil, RecycledBell)
		require.ErrorContains(t, err, "condition")
	})

	t.Run("TooFewQubits", func(t *testing.T) {
		main := circuit.NewCircuit()
		_, err := main.AddRegister("q", 1)
		require.NoError(t, err)
		main.H(0)

		_, _, err = NewHomomorphicCircuit(nil, main, nil, PerGateBell)
		require.ErrorContains(t, err, "ancillas")

		// The recycled variant keeps its ancillas in the Bell register and
		// accepts single qubit circuits.
		_, _, err = NewHomomorphicCircuit(nil, main, nil, RecycledBell)
		require.NoError(t, err)
	})

	t.Run("NoQubits", func(t *testing.T) {
		_, _, err := NewHomomorphicCircuit(nil, circuit.NewCircuit(), nil, PerGateBell)
		require.ErrorContains(t, err, "no qubits")
	})

	t.Run("MeasuredOutOfRange", func(t *testing.T) {
		main := newMain(t)
		main.H(0)
		_, _, err := NewHomomorphicCircuit(nil, main, []int{2}, PerGateBell)
		require.ErrorContains(t, err, "out of range")
		_, _, err = NewHomomorphicCircuit(nil, main, []int{-1}, PerGateBell)
		require.ErrorContains(t, err, "out of range")
	})

	t.Run("InitTooWide", func(t *testing.T) {
		init := circuit.NewCircuit()
		_, err := init.AddRegister("q", 3)
		require.NoError(t, err)
		main := newMain(t)
		_, _, err = NewHomomorphicCircuit(init, main, nil, PerGateBell)
		require.ErrorContains(t, err, "client circuit")
	})

	t.Run("InitMeasures", func(t *testing.T) {
		init := circuit.NewCircuit()
		_, err := init.AddRegister("q", 1)
		require.NoError(t, err)
		m, err := init.AddClassicalRegister("m", 1)
		require.NoError(t, err)
		init.Measure(0, m.Index(0))
		main := newMain(t)
		_, _, err = NewHomomorphicCircuit(init, main, nil, PerGateBell)
		require.ErrorContains(t, err, "client circuit")
	})
}

func TestDecrypt(t *testing.T) {

	layout := &Layout{
		Registers: []circuit.ClassicalRegister{
			{Name: "x_init_key"},
			{Name: "z_init_key"},
			{Name: "x_key"},
			{Name: "z_key"},
			{Name: "circ"},
		},
		Measured:   []int{1, 0},
		MainQubits: 2,
	}

	counts := simulator.Counts{
		"00 00 10 01 01": 3,
		"00 00 01 00 01": 5,
		"00 00 00 00 00": 2,
	}

	decrypted, err := Decrypt(counts, layout)
	require.NoError(t, err)
	require.Equal(t, simulator.Counts{"00": 5, "11": 5}, decrypted)

	t.Run("NoOutput", func(t *testing.T) {
		_, err := Decrypt(counts, &Layout{MainQubits: 2})
		require.ErrorContains(t, err, "no output register")
		_, err = Decrypt(counts, nil)
		require.ErrorContains(t, err, "no output register")
	})

	t.Run("MissingKeyRegister", func(t *testing.T) {
		bad := &Layout{
			Registers:  []circuit.ClassicalRegister{{Name: "circ"}},
			Measured:   []int{0},
			MainQubits: 1,
		}
		_, err := Decrypt(simulator.Counts{"0": 1}, bad)
		require.ErrorContains(t, err, `no "x_key" register`)
	})

	t.Run("MalformedKey", func(t *testing.T) {
		_, err := Decrypt(simulator.Counts{"00 00": 1}, layout)
		require.ErrorContains(t, err, "does not match the register layout")
	})
}

func TestKeyBits(t *testing.T) {

	layout := &Layout{
		Registers: []circuit.ClassicalRegister{
			{Name: "x_key"},
			{Name: "z_key"},
		},
	}

	counts := simulator.Counts{
		"01 11": 4,
		"01 00": 6,
		"10 01": 1,
	}

	marginal, err := KeyBits(counts, layout, "x_key")
	require.NoError(t, err)
	require.Equal(t, simulator.Counts{"01": 10, "10": 1}, marginal)

	_, err = KeyBits(counts, layout, "ra")
	require.ErrorContains(t, err, `no "ra" register`)

	_, err = KeyBits(counts, nil, "x_key")
	require.ErrorContains(t, err, "nil layout")
}

package gridsynth

import (
	"fmt"
	"strings"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
)

// Sequence is a gridsynth output word over the alphabet {S, T, H, X, Z, I, W}.
// It reads as a matrix product, so it applies to a qubit in reverse order.
// W denotes the global phase omega = e^(i*pi/4) and has no per-qubit
// realization.
type Sequence string

// ParseSequence validates a raw gridsynth output line. The empty word is
// normalized to the identity sequence "I".
func ParseSequence(raw string) (Sequence, error) {

	if raw == "" {
		return "I", nil
	}

	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case 'S', 'T', 'H', 'X', 'Z', 'I', 'W':
		default:
			return "", fmt.Errorf("cannot ParseSequence: invalid gate %q", raw[i])
		}
	}

	return Sequence(raw), nil
}

// RewritePauli contracts runs of S gates into Z gates, first SSS -> SZ and
// then SS -> Z.
func (s Sequence) RewritePauli() Sequence {
	out := strings.ReplaceAll(string(s), "SSS", "SZ")
	out = strings.ReplaceAll(out, "SS", "Z")
	return Sequence(out)
}

// TCount returns the number of T gates in the sequence.
func (s Sequence) TCount() int {
	return strings.Count(string(s), "T")
}

// Apply appends the sequence to the circuit on the given qubit, in reverse
// order. I and W contribute no instruction.
func (s Sequence) Apply(c *circuit.Circuit, qubit int) error {

	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case 'S':
			c.S(qubit)
		case 'T':
			c.T(qubit)
		case 'H':
			c.H(qubit)
		case 'X':
			c.X(qubit)
		case 'Z':
			c.Z(qubit)
		case 'I', 'W':
		default:
			return fmt.Errorf("cannot Apply: invalid gate %q", s[i])
		}
	}

	return nil
}

package qhe

import (
	"fmt"
	"strings"

	"github.com/OrtegaSA/cqc-qhe-repo/simulator"
)

// Decrypt removes the one time pad from the output register of simulated
// counts: output bit i is xored with the final X key bit of the qubit it
// measured. Outcomes mapping to the same plaintext are summed. The counts
// must be in the native orientation (see [simulator.Counts]).
func Decrypt(counts simulator.Counts, layout *Layout) (simulator.Counts, error) {

	if layout == nil || len(layout.Measured) == 0 {
		return nil, fmt.Errorf("cannot Decrypt: the circuit has no output register")
	}

	xIdx, ok := layout.GroupIndex(XKeyRegister)
	if !ok {
		return nil, fmt.Errorf("cannot Decrypt: no %q register in the layout", XKeyRegister)
	}

	outIdx, ok := layout.GroupIndex(OutputRegister)
	if !ok {
		return nil, fmt.Errorf("cannot Decrypt: no %q register in the layout", OutputRegister)
	}

	decrypted := make(simulator.Counts, len(counts))
	for key, count := range counts {

		groups := strings.Split(key, " ")
		if len(groups) != len(layout.Registers) {
			return nil, fmt.Errorf("cannot Decrypt: key %q does not match the register layout", key)
		}

		xKey, out := groups[xIdx], groups[outIdx]
		if len(xKey) != layout.MainQubits || len(out) != len(layout.Measured) {
			return nil, fmt.Errorf("cannot Decrypt: key %q does not match the register layout", key)
		}

		plain := []byte(out)
		for i, q := range layout.Measured {
			plain[i] ^= xKey[q] - '0'
		}

		decrypted.Add(string(plain), count)
	}

	return decrypted, nil
}

// KeyBits marginalizes the counts onto the named classical register of the
// layout, summing over all other registers. It reads the pad registers of a
// protocol run, e.g. the final X key under the name "x_key".
func KeyBits(counts simulator.Counts, layout *Layout, name string) (simulator.Counts, error) {

	if layout == nil {
		return nil, fmt.Errorf("cannot KeyBits: nil layout")
	}

	idx, ok := layout.GroupIndex(name)
	if !ok {
		return nil, fmt.Errorf("cannot KeyBits: no %q register in the layout", name)
	}

	marginal := make(simulator.Counts, len(counts))
	for key, count := range counts {
		groups := strings.Split(key, " ")
		if len(groups) != len(layout.Registers) {
			return nil, fmt.Errorf("cannot KeyBits: key %q does not match the register layout", key)
		}
		marginal.Add(groups[idx], count)
	}

	return marginal, nil
}

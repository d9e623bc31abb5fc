// Package simulator implements a dense statevector simulator for the circuit
// package, with mid-circuit measurements, classically conditioned gates and
// deterministic seeded sampling of measurement outcomes.
package simulator

import (
	"fmt"
	"strings"

	"github.com/OrtegaSA/cqc-qhe-repo/utils"
)

// Counts maps measurement outcomes to the number of shots that produced them.
// Keys are space-separated classical register groups in the order the
// registers were added to the circuit, with bit 0 of each register leftmost.
type Counts map[string]uint64

// Add adds count occurrences of the outcome key.
func (c Counts) Add(key string, count uint64) {
	c[key] += count
}

// Total returns the total number of recorded shots.
func (c Counts) Total() (total uint64) {
	for _, count := range c {
		total += count
	}
	return
}

// ReverseBits returns a new Counts with every key reversed, spaces included.
// This maps between the native key orientation (registers in addition order,
// bit 0 leftmost) and the raw qiskit orientation (registers in reverse
// addition order, highest bit of each register leftmost).
func (c Counts) ReverseBits() Counts {

	reversed := make(Counts, len(c))

	for key, count := range c {
		b := []byte(key)
		for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
		reversed.Add(string(b), count)
	}

	return reversed
}

// LastRegister marginalizes the counts onto the last register group of the
// keys, summing over the remaining groups.
func (c Counts) LastRegister() Counts {

	last := make(Counts, len(c))

	for key, count := range c {
		groups := strings.Split(key, " ")
		last.Add(groups[len(groups)-1], count)
	}

	return last
}

// Probabilities expands single-register counts into a probability vector of
// size 2^w, with w the key width. The key character i is read as bit i of the
// basis index. Keys spanning several registers or of unequal width are
// rejected.
func (c Counts) Probabilities() ([]float64, error) {

	if len(c) == 0 {
		return nil, fmt.Errorf("cannot Probabilities: empty counts")
	}

	width := -1
	for key := range c {
		if strings.Contains(key, " ") {
			return nil, fmt.Errorf("cannot Probabilities: key %q spans several registers, marginalize first", key)
		}
		if width == -1 {
			width = len(key)
		} else if len(key) != width {
			return nil, fmt.Errorf("cannot Probabilities: keys of unequal width %d and %d", width, len(key))
		}
	}

	if width > 30 {
		return nil, fmt.Errorf("cannot Probabilities: key width %d exceeds 30 bits", width)
	}

	prob := make([]float64, 1<<width)

	var total float64
	for key, count := range c {
		var index int
		for i := 0; i < len(key); i++ {
			switch key[i] {
			case '1':
				index |= 1 << i
			case '0':
			default:
				return nil, fmt.Errorf("cannot Probabilities: key %q contains a character other than 0 and 1", key)
			}
		}
		prob[index] += float64(count)
		total += float64(count)
	}

	for i := range prob {
		prob[i] /= total
	}

	return prob, nil
}

// String returns the counts sorted by key.
func (c Counts) String() string {

	var sb strings.Builder
	sb.WriteString("{")

	for i, key := range utils.GetSortedKeys(c) {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%q:%d", key, c[key]))
	}

	sb.WriteString("}")
	return sb.String()
}

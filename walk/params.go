package walk

import (
	"fmt"

	"github.com/OrtegaSA/cqc-qhe-repo/simulator"
)

// ParametersLiteral is a literal representation of the parameters of a
// discrete-time walk on the cycle graph with 2^LogNodes nodes.
//
// CoinH enables the Hadamard coin toss opening every step. Without it the
// coin is never flipped and the walker deterministically steps around the
// cycle, which is mostly useful for testing.
type ParametersLiteral struct {
	LogNodes int
	Steps    int
	CoinH    bool
}

// Parameters are validated walk parameters. The zero value is not valid, see
// [NewParametersFromLiteral].
type Parameters struct {
	logNodes int
	steps    int
	coinH    bool
}

// NewParametersFromLiteral validates the literal and returns the
// corresponding Parameters.
func NewParametersFromLiteral(lit ParametersLiteral) (Parameters, error) {

	if lit.LogNodes < 1 {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: LogNodes must be at least 1 but is %d", lit.LogNodes)
	}

	if lit.LogNodes+1 > simulator.MaxQubits {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %d position qubits and the coin exceed the %d simulable qubits", lit.LogNodes, simulator.MaxQubits)
	}

	if lit.Steps < 1 {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: Steps must be at least 1 but is %d", lit.Steps)
	}

	return Parameters{logNodes: lit.LogNodes, steps: lit.Steps, coinH: lit.CoinH}, nil
}

// LogNodes returns the base two logarithm of the number of nodes.
func (p Parameters) LogNodes() int {
	return p.logNodes
}

// Nodes returns the number of nodes of the cycle.
func (p Parameters) Nodes() int {
	return 1 << p.logNodes
}

// Steps returns the number of walk steps.
func (p Parameters) Steps() int {
	return p.steps
}

// CoinH returns true if every step opens with a Hadamard coin toss.
func (p Parameters) CoinH() bool {
	return p.coinH
}

// Literal returns the literal representation of the parameters.
func (p Parameters) Literal() ParametersLiteral {
	return ParametersLiteral{LogNodes: p.logNodes, Steps: p.steps, CoinH: p.coinH}
}

// Equal returns true if both parameter sets are identical.
func (p Parameters) Equal(other Parameters) bool {
	return p == other
}

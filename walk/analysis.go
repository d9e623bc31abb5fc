package walk

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/OrtegaSA/cqc-qhe-repo/simulator"
)

// PositionDistribution expands position counts into a probability vector
// over the 2^logNodes nodes of the cycle. The counts must hold a single
// register group of width logNodes, bit 0 leftmost.
func PositionDistribution(counts simulator.Counts, logNodes int) ([]float64, error) {

	for key := range counts {
		if len(key) != logNodes {
			return nil, fmt.Errorf("cannot PositionDistribution: key %q does not hold %d position bits", key, logNodes)
		}
	}

	dist, err := counts.Probabilities()
	if err != nil {
		return nil, fmt.Errorf("cannot PositionDistribution: %w", err)
	}

	return dist, nil
}

// Moments are sample statistics of measured walker positions.
type Moments struct {
	Mean   float64
	Median float64
	StdDev float64
}

// NewMoments computes the sample moments of the node indices in the counts,
// weighting each outcome by its number of shots.
func NewMoments(counts simulator.Counts) (Moments, error) {

	if len(counts) == 0 {
		return Moments{}, fmt.Errorf("cannot NewMoments: empty counts")
	}

	sample := make([]float64, 0, counts.Total())
	for key, count := range counts {
		node, err := nodeIndex(key)
		if err != nil {
			return Moments{}, fmt.Errorf("cannot NewMoments: %w", err)
		}
		for i := uint64(0); i < count; i++ {
			sample = append(sample, float64(node))
		}
	}

	mean, err := stats.Mean(sample)
	if err != nil {
		return Moments{}, fmt.Errorf("cannot NewMoments: %w", err)
	}

	median, err := stats.Median(sample)
	if err != nil {
		return Moments{}, fmt.Errorf("cannot NewMoments: %w", err)
	}

	stddev, err := stats.StandardDeviation(sample)
	if err != nil {
		return Moments{}, fmt.Errorf("cannot NewMoments: %w", err)
	}

	return Moments{Mean: mean, Median: median, StdDev: stddev}, nil
}

// TotalVariation returns the total variation distance between two
// probability vectors of equal size.
func TotalVariation(p, q []float64) (float64, error) {

	if len(p) != len(q) {
		return 0, fmt.Errorf("cannot TotalVariation: distributions of size %d and %d", len(p), len(q))
	}

	var tv float64
	for i := range p {
		tv += math.Abs(p[i] - q[i])
	}

	return tv / 2, nil
}

// nodeIndex reads a position key as a node number, bit 0 leftmost.
func nodeIndex(key string) (int, error) {

	if len(key) == 0 || len(key) > 30 {
		return 0, fmt.Errorf("position key %q is not between 1 and 30 bits", key)
	}

	var node int
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '1':
			node |= 1 << i
		case '0':
		default:
			return 0, fmt.Errorf("position key %q contains a character other than 0 and 1", key)
		}
	}

	return node, nil
}

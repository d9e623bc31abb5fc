package simulator

import (
	"context"
	"encoding/binary"
	"fmt"
	"runtime"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
	"github.com/OrtegaSA/cqc-qhe-repo/utils/sampling"
)

// DefaultShots is the number of shots sampled when Options.Shots is left 0.
const DefaultShots = 1024

const keySize = 32

// Options configures a Simulator.
type Options struct {
	// Shots is the number of times the circuit is sampled. Defaults to
	// DefaultShots.
	Shots int
	// Seed keys the measurement sampling. Two runs with the same seed return
	// identical counts. A nil seed is replaced by fresh system entropy.
	Seed []byte
	// Workers is the number of goroutines sampling shots. Defaults to
	// runtime.GOMAXPROCS(0). The counts do not depend on the worker count.
	Workers int
	// ReverseBits returns the counts keyed in the raw qiskit orientation
	// instead of the native one (see [Counts]).
	ReverseBits bool
}

// Simulator samples measurement outcomes of circuits by dense statevector
// simulation. Each shot replays the full instruction stream on a fresh
// statevector, so mid-circuit measurements, resets and classical conditions
// are sampled per shot.
type Simulator struct {
	shots   int
	seed    []byte
	workers int
	reverse bool
}

// NewSimulator creates a new Simulator from the given options.
func NewSimulator(opts Options) (*Simulator, error) {

	shots := opts.Shots
	if shots == 0 {
		shots = DefaultShots
	}

	if shots < 0 {
		return nil, fmt.Errorf("cannot NewSimulator: shots must be positive but is %d", shots)
	}

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if workers < 0 {
		return nil, fmt.Errorf("cannot NewSimulator: workers must be positive but is %d", workers)
	}

	var seed []byte
	if opts.Seed == nil {
		seed = make([]byte, keySize)
		prng, err := sampling.NewPRNG()
		if err != nil {
			return nil, fmt.Errorf("cannot NewSimulator: %w", err)
		}
		if _, err := prng.Read(seed); err != nil {
			return nil, fmt.Errorf("cannot NewSimulator: %w", err)
		}
	} else {
		seed = append([]byte(nil), opts.Seed...)
	}

	return &Simulator{shots: shots, seed: seed, workers: workers, reverse: opts.ReverseBits}, nil
}

// Shots returns the number of shots sampled per run.
func (s *Simulator) Shots() int {
	return s.shots
}

// Seed returns a copy of the seed keying the measurement sampling. Passing it
// to a new Simulator reproduces the same counts.
func (s *Simulator) Seed() []byte {
	return append([]byte(nil), s.seed...)
}

// Result stores the counts of a run together with the classical register
// layout of the sampled circuit.
type Result struct {
	Counts Counts
	Layout []circuit.ClassicalRegister
	Shots  int

	reversed bool
}

// Register marginalizes the counts onto the classical register with the given
// name, summing over all other registers.
func (r *Result) Register(name string) (Counts, error) {

	if r.reversed {
		return nil, fmt.Errorf("cannot Register: counts are in raw bit order, rerun without ReverseBits")
	}

	index := -1
	for k, reg := range r.Layout {
		if reg.Name == name {
			index = k
			break
		}
	}

	if index == -1 {
		return nil, fmt.Errorf("cannot Register: no classical register %q", name)
	}

	counts := make(Counts, len(r.Counts))
	for key, count := range r.Counts {
		groups := strings.Split(key, " ")
		if len(groups) != len(r.Layout) {
			return nil, fmt.Errorf("cannot Register: key %q does not match the register layout", key)
		}
		counts.Add(groups[index], count)
	}

	return counts, nil
}

// Run samples the circuit. Shots are distributed over the workers and each
// shot is keyed independently from the simulator seed and the shot index, so
// the counts are reproducible for a given seed regardless of the worker
// count. Cancelling the context aborts the run between shots.
func (s *Simulator) Run(ctx context.Context, c *circuit.Circuit) (*Result, error) {

	numQubits := c.NumQubits()
	if numQubits < 1 {
		return nil, fmt.Errorf("cannot Run: circuit has no qubits")
	}

	if numQubits > MaxQubits {
		return nil, fmt.Errorf("cannot Run: circuit has %d qubits, the maximum is %d", numQubits, MaxQubits)
	}

	numClbits := c.NumClbits()
	if numClbits < 1 {
		return nil, fmt.Errorf("cannot Run: circuit has no classical bits to sample")
	}

	for _, inst := range c.Instructions() {
		if cond := inst.Cond; cond != nil && (cond.Clbit < 0 || cond.Clbit >= numClbits) {
			return nil, fmt.Errorf("cannot Run: condition bit %d out of range [0, %d)", cond.Clbit, numClbits)
		}
	}

	layout := c.ClassicalRegisters()

	workers := s.workers
	if workers > s.shots {
		workers = s.shots
	}

	g, gctx := errgroup.WithContext(ctx)
	partial := make([]Counts, workers)

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			local := make(Counts)
			for shot := w; shot < s.shots; shot += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				key, err := s.runShot(c, shot, layout)
				if err != nil {
					return err
				}
				local.Add(key, 1)
			}
			partial[w] = local
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(Counts)
	for _, local := range partial {
		for key, count := range local {
			counts.Add(key, count)
		}
	}

	if s.reverse {
		counts = counts.ReverseBits()
	}

	return &Result{Counts: counts, Layout: layout, Shots: s.shots, reversed: s.reverse}, nil
}

// runShot executes the full instruction stream on a fresh statevector and
// returns the outcome key.
func (s *Simulator) runShot(c *circuit.Circuit, shot int, layout []circuit.ClassicalRegister) (string, error) {

	prng, err := sampling.NewKeyedPRNG(s.shotKey(shot))
	if err != nil {
		return "", fmt.Errorf("cannot runShot: %w", err)
	}

	sv, err := NewStatevector(c.NumQubits(), prng)
	if err != nil {
		return "", fmt.Errorf("cannot runShot: %w", err)
	}

	clbits := make([]uint8, c.NumClbits())

	for _, inst := range c.Instructions() {

		if cond := inst.Cond; cond != nil && clbits[cond.Clbit] != cond.Value {
			continue
		}

		switch inst.Gate {
		case circuit.Measure:
			bit, err := sv.Measure(inst.Qubits[0])
			if err != nil {
				return "", err
			}
			clbits[inst.Clbits[0]] = bit
		case circuit.Reset:
			if err := sv.Reset(inst.Qubits[0]); err != nil {
				return "", err
			}
		case circuit.Barrier:
		default:
			if err := sv.ApplyGate(inst.Gate, inst.Qubits, inst.Params); err != nil {
				return "", err
			}
		}
	}

	return formatKey(clbits, layout), nil
}

// shotKey derives the PRNG key of a shot by hashing the simulator seed and
// the shot index.
func (s *Simulator) shotKey(shot int) []byte {
	hasher := blake3.New()
	hasher.Write(s.seed)
	var index [8]byte
	binary.BigEndian.PutUint64(index[:], uint64(shot))
	hasher.Write(index[:])
	sum := hasher.Sum(nil)
	return sum[:keySize]
}

// formatKey renders the classical bits as space-separated register groups in
// register-addition order, bit 0 of each register leftmost.
func formatKey(clbits []uint8, layout []circuit.ClassicalRegister) string {

	var sb strings.Builder

	for k, reg := range layout {
		if k > 0 {
			sb.WriteByte(' ')
		}
		offset := reg.Offset()
		for i := 0; i < reg.Size(); i++ {
			sb.WriteByte('0' + clbits[offset+i])
		}
	}

	return sb.String()
}

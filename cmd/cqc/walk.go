package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
	"github.com/OrtegaSA/cqc-qhe-repo/compiler"
	"github.com/OrtegaSA/cqc-qhe-repo/qhe"
	"github.com/OrtegaSA/cqc-qhe-repo/simulator"
	"github.com/OrtegaSA/cqc-qhe-repo/walk"
)

func walkCommand() cli.Command {
	return cli.Command{
		Name:  "walk",
		Usage: "sample a coined quantum walk on a cycle graph",
		Flags: []cli.Flag{
			cli.IntFlag{
				Name:  "log-nodes",
				Usage: "log2 of the cycle size",
				Value: 3,
			},
			cli.IntFlag{
				Name:  "steps",
				Usage: "number of walk steps",
				Value: 4,
			},
			cli.BoolFlag{
				Name:  "semiclassical",
				Usage: "measure the position after every step",
			},
			cli.BoolFlag{
				Name:  "no-coin",
				Usage: "skip the Hadamard coin toss, walking deterministically",
			},
			cli.IntFlag{
				Name:  "shots",
				Usage: "number of sampled shots",
				Value: simulator.DefaultShots,
			},
			cli.BoolFlag{
				Name:  "encrypted",
				Usage: "compile the walk to Clifford+T and evaluate it under homomorphic encryption",
			},
		},
		Action: walkAction,
	}
}

func walkAction(c *cli.Context) error {

	params, err := walk.NewParametersFromLiteral(walk.ParametersLiteral{
		LogNodes: c.Int("log-nodes"),
		Steps:    c.Int("steps"),
		CoinH:    !c.Bool("no-coin"),
	})
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "invalid walk parameters"), 1)
	}

	var wc *circuit.Circuit
	if c.Bool("semiclassical") {
		wc, err = walk.NewSemiclassicalWalk(params)
	} else {
		wc, err = walk.NewQuantumWalk(params)
	}
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot build the walk"), 1)
	}

	ctx := context.Background()
	shots := c.Int("shots")

	if c.Bool("encrypted") {
		return encryptedWalk(ctx, params, wc, shots)
	}

	sim, err := simulator.NewSimulator(simulator.Options{Shots: shots})
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot create the simulator"), 1)
	}

	res, err := sim.Run(ctx, wc)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot run the walk"), 1)
	}

	if c.Bool("semiclassical") {
		return stepMoments(res, params)
	}

	return printDistribution(res.Counts, params)
}

// encryptedWalk compiles the walk to Clifford+T, evaluates it blindly under
// the recycled-ancilla homomorphic scheme and prints the decrypted position
// distribution. Only the final position is decryptable; the per-step
// registers of a semiclassical walk come back one-time padded.
func encryptedWalk(ctx context.Context, params walk.Parameters, wc *circuit.Circuit, shots int) error {

	compiled, err := compiler.CliffordT(ctx, wc, compiler.Options{})
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot compile the walk"), 1)
	}

	pos, ok := compiled.FindQuantumRegister(walk.PositionRegister)
	if !ok {
		return cli.NewExitError("the compiled walk lost its position register", 1)
	}

	hc, layout, err := qhe.NewHomomorphicCircuit(nil, compiled, pos.Indices(), qhe.RecycledBell)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot encrypt the walk"), 1)
	}

	logger.Info("evaluating the encrypted walk",
		zap.Int("qubits", hc.NumQubits()),
		zap.Int("tCount", layout.TCount),
		zap.Int("shots", shots))

	sim, err := simulator.NewSimulator(simulator.Options{Shots: shots})
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot create the simulator"), 1)
	}

	res, err := sim.Run(ctx, hc)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot run the encrypted walk"), 1)
	}

	decrypted, err := qhe.Decrypt(res.Counts, layout)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot decrypt the counts"), 1)
	}

	return printDistribution(decrypted, params)
}

// stepMoments prints the position moments of every step register of a
// semiclassical walk.
func stepMoments(res *simulator.Result, params walk.Parameters) error {

	for _, reg := range res.Layout {

		counts, err := res.Register(reg.Name)
		if err != nil {
			return cli.NewExitError(errors.Wrap(err, "cannot marginalize the counts"), 1)
		}

		moments, err := walk.NewMoments(counts)
		if err != nil {
			return cli.NewExitError(errors.Wrap(err, "cannot compute the moments"), 1)
		}

		fmt.Printf("%s: mean %.3f, median %.3f, stddev %.3f\n",
			reg.Name, moments.Mean, moments.Median, moments.StdDev)
	}

	return nil
}

// printDistribution prints the position distribution and its moments.
func printDistribution(counts simulator.Counts, params walk.Parameters) error {

	dist, err := walk.PositionDistribution(counts, params.LogNodes())
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot compute the distribution"), 1)
	}

	for node, p := range dist {
		fmt.Printf("node %3d: %.4f\n", node, p)
	}

	moments, err := walk.NewMoments(counts)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot compute the moments"), 1)
	}

	fmt.Printf("mean %.3f, median %.3f, stddev %.3f\n", moments.Mean, moments.Median, moments.StdDev)

	return nil
}

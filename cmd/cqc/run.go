package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/OrtegaSA/cqc-qhe-repo/simulator"
)

func runCommand() cli.Command {
	return cli.Command{
		Name:  "run",
		Usage: "sample a circuit file on the statevector simulator",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "in",
				Usage: "input circuit file",
			},
			cli.IntFlag{
				Name:  "shots",
				Usage: "number of sampled shots",
				Value: simulator.DefaultShots,
			},
			cli.StringFlag{
				Name:  "seed",
				Usage: "hex seed of the measurement sampling (empty draws one)",
			},
			cli.BoolFlag{
				Name:  "reverse",
				Usage: "key the counts in the raw qiskit bit order",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {

	if c.String("in") == "" {
		return cli.NewExitError("the --in flag is required", 1)
	}

	circ, err := readCircuit(c.String("in"))
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot read the circuit"), 1)
	}

	opts := simulator.Options{
		Shots:       c.Int("shots"),
		ReverseBits: c.Bool("reverse"),
	}

	if s := c.String("seed"); s != "" {
		seed, err := hex.DecodeString(s)
		if err != nil {
			return cli.NewExitError(errors.Wrap(err, "cannot parse the seed"), 1)
		}
		opts.Seed = seed
	}

	sim, err := simulator.NewSimulator(opts)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot create the simulator"), 1)
	}

	res, err := sim.Run(context.Background(), circ)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot run the circuit"), 1)
	}

	logger.Info("sampled",
		zap.Int("qubits", circ.NumQubits()),
		zap.Int("shots", res.Shots),
		zap.String("seed", hex.EncodeToString(sim.Seed())))

	fmt.Println(res.Counts)

	return nil
}

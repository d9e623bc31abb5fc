package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/OrtegaSA/cqc-qhe-repo/compiler"
)

func compileCommand() cli.Command {
	return cli.Command{
		Name:  "compile",
		Usage: "lower a circuit file to the Clifford+T gate set",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "in",
				Usage: "input circuit file",
			},
			cli.StringFlag{
				Name:  "out",
				Usage: "output circuit file",
			},
			cli.Float64Flag{
				Name:  "budget",
				Usage: "total approximation error of the circuit (0 uses the synthesizer default per rotation)",
			},
			cli.BoolFlag{
				Name:  "keep-rotations",
				Usage: "skip the rotation synthesis pass",
			},
			cli.Int64Flag{
				Name:  "seed",
				Usage: "seed of the rotation synthesis",
				Value: compiler.DefaultSeed,
			},
		},
		Action: compileAction,
	}
}

func compileAction(c *cli.Context) error {

	if c.String("in") == "" || c.String("out") == "" {
		return cli.NewExitError("the --in and --out flags are required", 1)
	}

	circ, err := readCircuit(c.String("in"))
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot read the circuit"), 1)
	}

	logger.Debug("read",
		zap.String("file", c.String("in")),
		zap.Int("qubits", circ.NumQubits()),
		zap.Int("gates", len(circ.Instructions())))

	opts := compiler.Options{
		CircuitBudget: c.Float64("budget"),
		KeepRotations: c.Bool("keep-rotations"),
		Seed:          c.Int64("seed"),
	}

	compiled, err := compiler.CliffordT(context.Background(), circ, opts)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot compile the circuit"), 1)
	}

	if err := writeCircuit(c.String("out"), compiled); err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot write the circuit"), 1)
	}

	logger.Info("compiled",
		zap.String("file", c.String("out")),
		zap.Int("qubits", compiled.NumQubits()),
		zap.Int("gates", len(compiled.Instructions())),
		zap.Int("tCount", compiler.TCount(compiled)))

	return nil
}
